// Package logging builds the zap logger used by a run. Besides the console
// output it can persist every line of a run to a timestamped file, so the
// record of which files were scrubbed survives the terminal session.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config controls logger construction
type Config struct {
	Level   string `yaml:"level" toml:"level"`
	Format  string `yaml:"format" toml:"format"`
	Dir     string `yaml:"dir" toml:"dir"`
	Persist bool   `yaml:"persist" toml:"persist"`
}

// NewDefaultConfig returns the logging defaults
func NewDefaultConfig() Config {
	return Config{
		Level:   "info",
		Format:  "console",
		Dir:     "Log",
		Persist: true,
	}
}

// Validate checks level and format
func (c Config) Validate() error {
	if _, err := zapcore.ParseLevel(c.Level); err != nil {
		return fmt.Errorf("invalid log level '%s': %w", c.Level, err)
	}
	if c.Format != "console" && c.Format != "json" {
		return fmt.Errorf("invalid log format '%s': must be console or json", c.Format)
	}
	if c.Persist && c.Dir == "" {
		return fmt.Errorf("log dir must be set when persist is enabled")
	}
	return nil
}

// Logger bundles the zap logger with the run-log file it may be writing to
type Logger struct {
	*zap.Logger
	file *os.File
}

// Path returns the run-log file path, or "" when persistence is off
func (l *Logger) Path() string {
	if l.file == nil {
		return ""
	}
	return l.file.Name()
}

// Close flushes the logger and closes the run-log file
func (l *Logger) Close() error {
	_ = l.Sync()
	if l.file == nil {
		return nil
	}
	return l.file.Close()
}

// New builds a logger writing to console. When cfg.Persist is set, a plain
// text copy goes to <dir>/<yyyyMMddTHHmmss>_<process>.log.
func New(cfg Config, process string, console io.Writer) (*Logger, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	level, _ := zapcore.ParseLevel(cfg.Level)

	cores := []zapcore.Core{
		zapcore.NewCore(newEncoder(cfg.Format), zapcore.AddSync(console), level),
	}

	var file *os.File
	if cfg.Persist {
		if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create log dir: %w", err)
		}
		name := fmt.Sprintf("%s_%s.log", time.Now().Format("20060102T150405"), process)
		f, err := os.OpenFile(filepath.Join(cfg.Dir, name), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, fmt.Errorf("failed to open run log: %w", err)
		}
		file = f
		// The file always gets debug detail, whatever the console level
		cores = append(cores, zapcore.NewCore(newEncoder("console"), zapcore.AddSync(f), zapcore.DebugLevel))
	}

	return &Logger{
		Logger: zap.New(zapcore.NewTee(cores...)).Named(process),
		file:   file,
	}, nil
}

// newEncoder creates JSON or console encoder
func newEncoder(format string) zapcore.Encoder {
	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "ts"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	if format == "console" {
		encoderCfg.EncodeLevel = zapcore.CapitalLevelEncoder
		return zapcore.NewConsoleEncoder(encoderCfg)
	}
	return zapcore.NewJSONEncoder(encoderCfg)
}
