package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/tliron/commonlog"

	"github.com/dhamidi/classinfo/classinfo"
)

// Config is the merged view of classinfo.yaml, CLASSINFO_* environment
// variables and command line flags, later sources winning.
type Config struct {
	Format        string   `mapstructure:"format"`
	Code          bool     `mapstructure:"code"`
	NoisePrefixes []string `mapstructure:"noise_prefixes"`
	NoNoiseFilter bool     `mapstructure:"no_noise_filter"`
	Workers       int      `mapstructure:"workers"`
	Verbose       int      `mapstructure:"verbose"`
	NoColor       bool     `mapstructure:"no_color"`
	MavenRepo     string   `mapstructure:"maven_repo"`
}

// flagKeys maps command line flags to configuration keys.
var flagKeys = map[string]string{
	"format":          "format",
	"code":            "code",
	"noise":           "noise_prefixes",
	"no-noise-filter": "no_noise_filter",
	"workers":         "workers",
	"verbose":         "verbose",
	"no-color":        "no_color",
	"maven-repo":      "maven_repo",
}

func newViper() *viper.Viper {
	v := viper.New()

	v.SetDefault("format", "json")
	v.SetDefault("code", false)
	v.SetDefault("noise_prefixes", classinfo.DefaultNoisePrefixes)
	v.SetDefault("no_noise_filter", false)
	v.SetDefault("workers", 8)
	v.SetDefault("verbose", 0)
	v.SetDefault("no_color", false)
	v.SetDefault("maven_repo", defaultMavenRepo)

	v.SetConfigName("classinfo")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	v.SetEnvPrefix("CLASSINFO")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	return v
}

// loadConfig reads the configuration for cmd and applies its logging and
// color settings.
func loadConfig(cmd *cobra.Command) (*Config, error) {
	v := newViper()

	if path, _ := cmd.Flags().GetString("config"); path != "" {
		v.SetConfigFile(path)
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	for name, key := range flagKeys {
		if flag := cmd.Flags().Lookup(name); flag != nil {
			if err := v.BindPFlag(key, flag); err != nil {
				return nil, fmt.Errorf("bind flag %s: %w", name, err)
			}
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if config.Workers < 1 {
		config.Workers = 1
	}

	commonlog.Configure(config.Verbose, nil)
	if config.NoColor {
		color.NoColor = true
	}
	log.Debugf("config: %+v", config)
	return &config, nil
}

// Options turns the configuration into decoder options.
func (c *Config) Options() []classinfo.Option {
	var opts []classinfo.Option
	if c.Code {
		opts = append(opts, classinfo.WithCode())
	}
	if c.NoNoiseFilter {
		opts = append(opts, classinfo.WithoutNoiseFilter())
	} else {
		opts = append(opts, classinfo.WithNoisePrefixes(c.NoisePrefixes...))
	}
	return opts
}
