// ABOUTME: Structured logger construction on charmbracelet/log.
// ABOUTME: Logs go to stderr so command output on stdout stays clean.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"
)

// Config selects level and output format.
type Config struct {
	// Level is one of debug, info, warn, error. Defaults to warn.
	Level string
	// Format is text, json or logfmt. Defaults to text.
	Format string
}

// New builds a stderr logger from cfg.
func New(cfg Config) (*log.Logger, error) {
	return NewWriter(os.Stderr, cfg)
}

// NewWriter builds a logger writing to w.
func NewWriter(w io.Writer, cfg Config) (*log.Logger, error) {
	level := log.WarnLevel
	if cfg.Level != "" {
		l, err := log.ParseLevel(strings.ToLower(cfg.Level))
		if err != nil {
			return nil, fmt.Errorf("parse log level: %w", err)
		}
		level = l
	}

	var formatter log.Formatter
	switch strings.ToLower(cfg.Format) {
	case "", "text":
		formatter = log.TextFormatter
	case "json":
		formatter = log.JSONFormatter
	case "logfmt":
		formatter = log.LogfmtFormatter
	default:
		return nil, fmt.Errorf("unknown log format: %q", cfg.Format)
	}

	return log.NewWithOptions(w, log.Options{
		Level:           level,
		Formatter:       formatter,
		ReportTimestamp: formatter != log.TextFormatter,
		Prefix:          "big3",
	}), nil
}

// Discard returns a logger that drops everything.
func Discard() *log.Logger {
	return log.New(io.Discard)
}
