package config

import (
	"github.com/mcncl/credscrub/internal/strategy"
)

// Overrides carries command-line values. Nil or empty fields leave the
// config untouched, so only flags the user actually passed take precedence.
type Overrides struct {
	Root        string
	FilePattern string
	ExcludeDirs []string
	Workers     int
	DryRun      *bool
	LogLevel    string
	LogDir      string
	NoLogFile   bool

	// Strategy switches. When any of them is set they replace the
	// configured replace_for block as a whole.
	Secret   bool
	Hash     bool
	Blank    bool
	Strategy string
}

// Apply merges o into c
func (o Overrides) Apply(c *Config) error {
	if o.Root != "" {
		c.Root = o.Root
	}
	if o.FilePattern != "" {
		c.FilePattern = o.FilePattern
	}
	if len(o.ExcludeDirs) > 0 {
		c.ExcludeDirs = append([]string(nil), o.ExcludeDirs...)
	}
	if o.Workers > 0 {
		c.Workers = o.Workers
	}
	if o.DryRun != nil {
		c.DryRun = *o.DryRun
	}
	if o.LogLevel != "" {
		c.Log.Level = o.LogLevel
	}
	if o.LogDir != "" {
		c.Log.Dir = o.LogDir
	}
	if o.NoLogFile {
		c.Log.Persist = false
	}

	if o.Secret || o.Hash || o.Blank || o.Strategy != "" {
		rf := ReplaceFor{Secret: o.Secret, Hash: o.Hash, Blank: o.Blank}
		if o.Strategy != "" {
			s, err := strategy.Parse(o.Strategy)
			if err != nil {
				return err
			}
			named := ForStrategy(s)
			rf.Secret = rf.Secret || named.Secret
			rf.Hash = rf.Hash || named.Hash
			rf.Blank = rf.Blank || named.Blank
		}
		c.ReplaceFor = rf
	}
	return nil
}

// Load builds the effective configuration: defaults, then the config file
// (explicit path or the nearest one found), then the environment, then o.
func Load(configPath string, o Overrides) (*Config, error) {
	LoadDotEnv()

	if configPath == "" {
		configPath = FindConfigFile()
	}

	cfg := NewConfig()
	if configPath != "" {
		fileConfig, err := LoadConfig(configPath)
		if err != nil {
			return nil, err
		}
		cfg = fileConfig
	}

	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	if err := o.Apply(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
