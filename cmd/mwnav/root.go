package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/mwnav/mediawikinav/internal/adapters/logger"
	"github.com/mwnav/mediawikinav/internal/adapters/normalizer"
	"github.com/mwnav/mediawikinav/internal/adapters/storage/memory"
	"github.com/mwnav/mediawikinav/internal/adapters/storage/sqlite"
	"github.com/mwnav/mediawikinav/internal/adapters/wikiapi"
	"github.com/mwnav/mediawikinav/internal/config"
	"github.com/mwnav/mediawikinav/internal/ports"
)

// session carries what every subcommand needs once flags are parsed.
type session struct {
	configPath string
	baseURL    string
	user       string
	password   string
	verbose    bool

	cfg     *config.Config
	log     ports.Logger
	factory *normalizer.NormalizerFactory
}

func newRootCmd() *cobra.Command {
	s := &session{factory: normalizer.NewNormalizerFactory()}

	cmd := &cobra.Command{
		Use:           "mwnav",
		Short:         "Normalize MediaWiki templates",
		Long:          `Rewrite the templates of MediaWiki pages in a canonical form, locally or on a live wiki.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return s.init(cmd.ErrOrStderr())
		},
		PersistentPostRunE: func(*cobra.Command, []string) error {
			if s.log != nil {
				return s.log.Close()
			}
			return nil
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVarP(&s.configPath, "config", "c", "", "YAML config file")
	flags.StringVar(&s.baseURL, "base-url", "", "Wiki base URL, overrides wiki.base_url")
	flags.StringVar(&s.user, "user", "", "Wiki user, overrides wiki.user")
	flags.StringVar(&s.password, "password", "", "Wiki password, overrides wiki.password")
	flags.BoolVarP(&s.verbose, "verbose", "v", false, "Log to stderr")

	cmd.AddCommand(
		newNormalizeCmd(s),
		newRawCmd(s),
		newRenderCmd(s),
		newCategoriesCmd(s),
		newMembersCmd(s),
		newInfoCmd(s),
		newFixCmd(s),
		newHistoryCmd(s),
		newConfigCmd(s),
	)
	return cmd
}

func (s *session) init(stderr io.Writer) error {
	cfg, err := config.Load(s.configPath)
	if err != nil {
		return err
	}
	if s.baseURL != "" {
		cfg.Wiki.BaseURL = s.baseURL
	}
	if s.user != "" {
		cfg.Wiki.User = s.user
	}
	if s.password != "" {
		cfg.Wiki.Password = s.password
	}
	s.cfg = cfg

	if !s.verbose && cfg.Log.File == "" {
		s.log = logger.Nop()
		return nil
	}
	out := stderr
	if cfg.Log.File != "" {
		file, err := os.OpenFile(cfg.Log.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o666)
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}
		out = file
	}
	lc := logger.DefaultConfig(out)
	lc.JsonFormat = cfg.Log.JSON
	lc.AsyncWrite = cfg.Log.Async
	s.log, err = logger.NewCustomStdLogger(lc)
	return err
}

// client connects to the configured wiki, logging in when a user is set.
func (s *session) client(cmd *cobra.Command) (*wikiapi.Client, error) {
	if s.cfg.Wiki.BaseURL == "" {
		return nil, fmt.Errorf("no wiki configured: set --base-url, wiki.base_url or MWNAV_WIKI_BASE_URL")
	}
	return wikiapi.NewWithLogin(cmd.Context(), s.cfg.Wiki.BaseURL, s.cfg.Wiki.User, s.cfg.Wiki.Password,
		wikiapi.WithTimeout(s.cfg.Wiki.Timeout),
		wikiapi.WithRetries(uint64(s.cfg.Wiki.MaxRetries), wikiapi.DefaultRetryBase),
		wikiapi.WithLogger(s.log),
	)
}

// journal opens the configured journal. An empty path keeps it in memory.
func (s *session) journal() (ports.Journal, error) {
	if s.cfg.Journal.Path == "" {
		return memory.New(), nil
	}
	return sqlite.Open(s.cfg.Journal.Path)
}
