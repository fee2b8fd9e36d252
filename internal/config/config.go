// Package config reads the YAML configuration of the editable server.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/pthm/editable"
)

// Config is the configuration data as present in a config file, usually
// 'editable.yaml'.
type Config struct {
	Listen   string `yaml:"listen"`
	Key      string `yaml:"key"`
	Prefix   string `yaml:"prefix"`
	LogLevel string `yaml:"log-level"`
	Timeout  string `yaml:"timeout"`

	Pages    []Page                       `yaml:"pages"`
	Datasets map[string][]editable.Record `yaml:"datasets"`
	Store    Store                        `yaml:"store"`
	Post     Post                         `yaml:"post"`
}

// A Page is a markup file served under an id.
type Page struct {
	ID   string `yaml:"id"`
	Path string `yaml:"path"`
}

// Store names the databases backing the sqlite and bolt targets. An empty
// path leaves the target kind unregistered.
type Store struct {
	SQLite string `yaml:"sqlite,omitempty"`
	Bolt   string `yaml:"bolt,omitempty"`
}

// Post configures the transport of the generic poster target.
type Post struct {
	Codec   string            `yaml:"codec"`
	Headers map[string]string `yaml:"headers,omitempty"`
}

// Load reads the file at path and augments the defaults with it.
func Load(path string) (Config, error) {
	yamlData, err := os.ReadFile(path)
	if err != nil {
		return Default(), fmt.Errorf("can't read config file: %w", err)
	}
	return ParseConfigAugmentDefaults(yamlData)
}

// ParseConfigAugmentDefaults parses the configuration specified in
// YAML-formatted data and uses it to augment the default configuration.
func ParseConfigAugmentDefaults(yamlData []byte) (Config, error) {
	defaultConfig := Default()

	parsedConfig := Config{}
	if err := yaml.Unmarshal(yamlData, &parsedConfig); err != nil {
		return defaultConfig, fmt.Errorf("error unmarshaling yaml (%s)", err)
	}

	result := defaultConfig.augmentWith(parsedConfig)
	if err := result.Validate(); err != nil {
		return result, err
	}
	return result, nil
}

func (base Config) augmentWith(augment Config) Config {
	result := base
	if augment.Listen != "" {
		result.Listen = augment.Listen
	}
	if augment.Key != "" {
		result.Key = augment.Key
	}
	if augment.Prefix != "" {
		result.Prefix = augment.Prefix
	}
	if augment.LogLevel != "" {
		result.LogLevel = augment.LogLevel
	}
	if augment.Timeout != "" {
		result.Timeout = augment.Timeout
	}
	if len(augment.Pages) > 0 {
		result.Pages = augment.Pages
	}
	if len(augment.Datasets) > 0 {
		result.Datasets = augment.Datasets
	}
	if augment.Store.SQLite != "" {
		result.Store.SQLite = augment.Store.SQLite
	}
	if augment.Store.Bolt != "" {
		result.Store.Bolt = augment.Store.Bolt
	}
	if augment.Post.Codec != "" {
		result.Post.Codec = augment.Post.Codec
	}
	if len(augment.Post.Headers) > 0 {
		result.Post.Headers = augment.Post.Headers
	}
	return result
}

// Validate checks the values that cannot be checked by the YAML decoder.
func (c Config) Validate() error {
	if _, err := c.Level(); err != nil {
		return err
	}
	if _, err := c.TimeoutDuration(); err != nil {
		return err
	}
	if _, err := c.Codec(); err != nil {
		return err
	}
	seen := make(map[string]bool, len(c.Pages))
	for _, p := range c.Pages {
		if p.ID == "" || p.Path == "" {
			return fmt.Errorf("page needs both id and path (got id '%s', path '%s')", p.ID, p.Path)
		}
		if seen[p.ID] {
			return fmt.Errorf("duplicate page id '%s'", p.ID)
		}
		seen[p.ID] = true
	}
	return nil
}

// Level returns the configured log level.
func (c Config) Level() (zerolog.Level, error) {
	lvl, err := zerolog.ParseLevel(c.LogLevel)
	if err != nil {
		return zerolog.InfoLevel, fmt.Errorf("invalid log level '%s'", c.LogLevel)
	}
	return lvl, nil
}

// TimeoutDuration returns the time a gesture may wait for its targets.
func (c Config) TimeoutDuration() (time.Duration, error) {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid timeout '%s'", c.Timeout)
	}
	return d, nil
}

// Codec returns the request encoding of the generic poster.
func (c Config) Codec() (editable.Codec, error) {
	switch c.Post.Codec {
	case "", "form":
		return editable.CodecForm, nil
	case "msgpack":
		return editable.CodecMsgpack, nil
	}
	return editable.CodecForm, fmt.Errorf("unknown post codec '%s'", c.Post.Codec)
}
