package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/mwnav/mediawikinav/internal/app"
	"github.com/mwnav/mediawikinav/internal/ports"
)

func newFixCmd(s *session) *cobra.Command {
	var (
		category string
		summary  string
		dryRun   bool
		diff     bool
	)

	cmd := &cobra.Command{
		Use:   "fix [title...]",
		Short: "Normalize pages on the wiki and save the result",
		Long: `Fetch each page, normalize its templates and save it back with an edit
summary. Pages that are already normalized are not edited. With --category
every main namespace member of the category is processed.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if category == "" && len(args) == 0 {
				return fmt.Errorf("give at least one title or --category")
			}
			if summary == "" {
				summary = s.cfg.Wiki.Summary
			}

			c, err := s.client(cmd)
			if err != nil {
				return err
			}
			j, err := s.journal()
			if err != nil {
				return err
			}
			defer j.Close()

			nav := app.NewNavigator(c, s.cfg.Normalize.Pipeline(s.factory, s.log),
				app.WithJournal(j),
				app.WithLogger(s.log),
				app.WithRenderOptions(s.cfg.Normalize.RenderOptions()),
				app.WithConcurrency(s.cfg.Wiki.Concurrency),
			)

			var (
				results []app.Result
				runErr  error
			)
			if category != "" {
				results, runErr = nav.NormalizeCategory(cmd.Context(), category, summary, dryRun)
			}
			for _, title := range args {
				res, err := nav.NormalizePage(cmd.Context(), title, summary, dryRun)
				results = append(results, res)
				if err != nil && runErr == nil {
					runErr = err
				}
			}

			out := cmd.OutOrStdout()
			if diff {
				for _, res := range results {
					if res.Changed {
						fmt.Fprintf(out, "=== %s\n%s\n", res.Title, res.After)
					}
				}
			}
			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "TITLE\tSTATUS")
			for _, res := range results {
				fmt.Fprintf(tw, "%s\t%s\n", res.Title, statusLabel(res))
			}
			if err := tw.Flush(); err != nil {
				return err
			}
			return runErr
		},
	}

	cmd.Flags().StringVar(&category, "category", "", "Process every page of this category")
	cmd.Flags().StringVarP(&summary, "summary", "m", "", "Edit summary, defaults to wiki.summary")
	cmd.Flags().BoolVarP(&dryRun, "dry-run", "n", false, "Do not save anything")
	cmd.Flags().BoolVar(&diff, "show", false, "Print the new text of changed pages")
	return cmd
}

func statusLabel(res app.Result) string {
	if res.Status == ports.StatusFailed && res.Err != nil {
		return fmt.Sprintf("%s (%v)", res.Status, res.Err)
	}
	return string(res.Status)
}

func newHistoryCmd(s *session) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history [title]",
		Short: "List journaled page runs, newest first",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			j, err := s.journal()
			if err != nil {
				return err
			}
			defer j.Close()

			title := ""
			if len(args) == 1 {
				title = args[0]
			}
			entries, err := j.List(cmd.Context(), title, limit)
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tTIME\tTITLE\tSTATUS\tSUMMARY")
			for _, e := range entries {
				fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", e.ID, e.CreatedAt.Format("2006-01-02 15:04:05"), e.Title, e.Status, e.Summary)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum entries")
	return cmd
}
