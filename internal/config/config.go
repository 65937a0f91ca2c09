// Package config loads the navigator configuration from defaults, an optional
// YAML file and MWNAV_ environment variables, in that order of precedence.
package config

import (
	"time"

	"github.com/mwnav/mediawikinav/internal/adapters/normalizer"
	"github.com/mwnav/mediawikinav/internal/core/template"
)

// EnvPrefix marks the environment variables read by Load.
const EnvPrefix = "MWNAV_"

type Config struct {
	Wiki      WikiConfig      `koanf:"wiki"      yaml:"wiki"`
	Normalize NormalizeConfig `koanf:"normalize" yaml:"normalize"`
	Journal   JournalConfig   `koanf:"journal"   yaml:"journal"`
	Log       LogConfig       `koanf:"log"       yaml:"log"`
	Server    ServerConfig    `koanf:"server"    yaml:"server"`
}

// WikiConfig locates the wiki and the account used for edits. A zero Timeout
// means the client default.
type WikiConfig struct {
	BaseURL     string        `koanf:"base_url"    yaml:"base_url"    validate:"omitempty,url"`
	User        string        `koanf:"user"        yaml:"user"`
	Password    string        `koanf:"password"    yaml:"password"`
	Timeout     time.Duration `koanf:"timeout"     yaml:"timeout"     validate:"min=0"`
	MaxRetries  int           `koanf:"max_retries" yaml:"max_retries" validate:"min=0,max=10"`
	Summary     string        `koanf:"summary"     yaml:"summary"`
	Concurrency int           `koanf:"concurrency" yaml:"concurrency" validate:"min=1,max=64"`
}

// NormalizeConfig names the transforms and derived fields to run, in order.
type NormalizeConfig struct {
	Transforms  []string `koanf:"transforms"   yaml:"transforms"`
	Derived     []string `koanf:"derived"      yaml:"derived"`
	SplitParams bool     `koanf:"split_params" yaml:"split_params"`
	Separator   string   `koanf:"separator"    yaml:"separator"`
	SortParams  bool     `koanf:"sort_params"  yaml:"sort_params"`
	Close       bool     `koanf:"close"        yaml:"close"`
}

type JournalConfig struct {
	// Path of the sqlite journal. Empty keeps the journal in memory.
	Path string `koanf:"path" yaml:"path"`
}

type LogConfig struct {
	JSON  bool   `koanf:"json"  yaml:"json"`
	File  string `koanf:"file"  yaml:"file"`
	Async bool   `koanf:"async" yaml:"async"`
}

type ServerConfig struct {
	Addr string `koanf:"addr" yaml:"addr" validate:"required,hostname_port"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Wiki: WikiConfig{
			Timeout:     30 * time.Second,
			MaxRetries:  3,
			Summary:     "#mn-edit",
			Concurrency: 4,
		},
		Normalize: NormalizeConfig{
			Transforms:  []string{normalizer.SpacesTransformName},
			Derived:     []string{},
			SplitParams: true,
			Separator:   template.DefaultSeparator,
			SortParams:  true,
			Close:       true,
		},
		Log: LogConfig{
			Async: true,
		},
		Server: ServerConfig{
			Addr: "127.0.0.1:8080",
		},
	}
}

// RenderOptions converts the normalize section into pipeline options.
func (c NormalizeConfig) RenderOptions() template.RenderOptions {
	return template.RenderOptions{
		SplitParams: c.SplitParams,
		UntokenizeOptions: template.UntokenizeOptions{
			Separator:  c.Separator,
			Close:      c.Close,
			SortParams: c.SortParams,
		},
	}
}
