// Package config loads CLI settings from shroud.yaml, SHROUD_* environment
// variables and command flags, in increasing order of precedence.
package config

import (
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Keys. Flags bound through Load use the same names.
const (
	KeyDatabase = "database"
	KeyCodec    = "codec"
	KeySession  = "session"
	KeySecret   = "secret"
	KeyLogLevel = "log-level"
)

// Config holds resolved settings.
type Config struct {
	Database string `mapstructure:"database"`
	Codec    string `mapstructure:"codec"`
	Session  string `mapstructure:"session"`
	Secret   string `mapstructure:"secret"`
	LogLevel string `mapstructure:"log-level"`

	// File is the config file that was read, if any.
	File string `mapstructure:"-"`
}

// Defaults.
const (
	DefaultDatabase = "shroud.db"
	DefaultCodec    = "json"
	DefaultSession  = "default"
	DefaultLogLevel = "info"
)

// Load resolves settings. file names an explicit config file; when empty,
// shroud.yaml is looked up in the working directory and then the home
// directory. A missing default file is not an error. Flags of cmd named
// after a key override every other source once they are set.
func Load(cmd *cobra.Command, file string) (*Config, error) {
	v := viper.New()
	v.SetDefault(KeyDatabase, DefaultDatabase)
	v.SetDefault(KeyCodec, DefaultCodec)
	v.SetDefault(KeySession, DefaultSession)
	v.SetDefault(KeyLogLevel, DefaultLogLevel)
	v.SetDefault(KeySecret, "")

	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
		v.SetConfigType("yaml")
		v.SetConfigName("shroud")
	}

	v.SetEnvPrefix("SHROUD")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if cmd != nil {
		for _, key := range []string{KeyDatabase, KeyCodec, KeySession, KeySecret, KeyLogLevel} {
			if f := cmd.Flags().Lookup(key); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("failed to bind flag %s: %w", key, err)
				}
			}
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	cfg.File = v.ConfigFileUsed()
	return &cfg, nil
}

// SecretBytes decodes the hex session secret. An empty secret returns nil,
// which makes the session generate a random one.
func (c *Config) SecretBytes() ([]byte, error) {
	if c.Secret == "" {
		return nil, nil
	}
	b, err := hex.DecodeString(c.Secret)
	if err != nil {
		return nil, fmt.Errorf("secret must be hex encoded: %w", err)
	}
	return b, nil
}
