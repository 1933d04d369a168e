// Package config loads and saves the gpt_helper_config.json project
// configuration.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

const (
	// DefaultFileName is the config file looked up in the working directory.
	DefaultFileName = "gpt_helper_config.json"
	// DefaultInstructionsDir holds background.txt, rules.txt and
	// current_goal.txt relative to the working directory.
	DefaultInstructionsDir = "instructions"
)

// Segment is one configured project directory, local or remote.
type Segment struct {
	Name        string   `mapstructure:"name" json:"name"`
	Directory   string   `mapstructure:"directory" json:"directory"`
	Remote      bool     `mapstructure:"is_remote" json:"is_remote"`
	OutputFiles []string `mapstructure:"output_files" json:"output_files,omitempty"`
}

// Config mirrors gpt_helper_config.json.
type Config struct {
	ProjectRoot        string              `mapstructure:"project_root" json:"project_root"`
	HasSingleRoot      bool                `mapstructure:"has_single_root" json:"has_single_root"`
	SystemType         string              `mapstructure:"system_type" json:"system_type"` // "local" or "remote"
	SSHCommand         string              `mapstructure:"ssh_command" json:"ssh_command,omitempty"`
	Directories        []Segment           `mapstructure:"directories" json:"directories"`
	Blacklist          map[string][]string `mapstructure:"blacklist" json:"blacklist,omitempty"`
	ProjectOutputFiles []string            `mapstructure:"project_output_files" json:"project_output_files,omitempty"`
	InstructionsDir    string              `mapstructure:"instructions_dir" json:"instructions_dir,omitempty"`
	CacheDir           string              `mapstructure:"cache_dir" json:"cache_dir,omitempty"`
	CacheTTLHours      int                 `mapstructure:"cache_ttl_hours" json:"cache_ttl_hours,omitempty"`
}

// Load reads the configuration from path (or DefaultFileName when path is
// empty) and normalizes it.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultFileName
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("json")
	v.SetDefault("system_type", "local")
	v.SetDefault("instructions_dir", DefaultInstructionsDir)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	cfg.normalize()
	return &cfg, nil
}

// Save writes the configuration as indented JSON.
func (c *Config) Save(path string) error {
	if path == "" {
		path = DefaultFileName
	}
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("failed to write config %s: %w", path, err)
	}
	return nil
}

// normalize resolves the project root and expands the single-root
// convenience form into an explicit one-segment directory list.
func (c *Config) normalize() {
	if c.ProjectRoot == "" {
		if wd, err := os.Getwd(); err == nil {
			c.ProjectRoot = wd
		}
	}
	if abs, err := filepath.Abs(c.ProjectRoot); err == nil {
		c.ProjectRoot = abs
	}
	if c.InstructionsDir == "" {
		c.InstructionsDir = DefaultInstructionsDir
	}

	if c.HasSingleRoot {
		name := filepath.Base(c.ProjectRoot)
		if name == "." || name == string(filepath.Separator) {
			name = c.ProjectRoot
		}
		c.Directories = []Segment{{
			Name:        name,
			Directory:   c.ProjectRoot,
			Remote:      c.SystemType == "remote",
			OutputFiles: c.ProjectOutputFiles,
		}}
	}
}

// BlacklistFor returns the exclusion entries configured for a directory
// root.
func (c *Config) BlacklistFor(root string) []string {
	if c.Blacklist == nil {
		return nil
	}
	return c.Blacklist[root]
}

// RemoteSegments reports whether any configured directory is remote.
func (c *Config) RemoteSegments() bool {
	for _, seg := range c.Directories {
		if seg.Remote {
			return true
		}
	}
	return false
}
