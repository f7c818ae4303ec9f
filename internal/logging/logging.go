// Package logging builds the process logger: the log/slog API backed by a
// charmbracelet/log handler.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	charmlog "github.com/charmbracelet/log"

	"github.com/mesh-intelligence/recyclebin/pkg/types"
)

// Output formats accepted in LogConfig.Format.
const (
	FormatText   = "text"
	FormatJSON   = "json"
	FormatLogfmt = "logfmt"
)

// Option customizes a logger built by New.
type Option func(*options)

type options struct {
	writer     io.Writer
	timestamp  bool
	setDefault bool
}

// WithWriter sends output to w instead of stderr.
func WithWriter(w io.Writer) Option {
	return func(o *options) { o.writer = w }
}

// WithTimestamp toggles the timestamp column.
func WithTimestamp(report bool) Option {
	return func(o *options) { o.timestamp = report }
}

// AsDefault installs the logger as slog.Default.
func AsDefault() Option {
	return func(o *options) { o.setDefault = true }
}

// New returns a logger configured from cfg. An empty level means info and an
// empty format means text.
func New(cfg types.LogConfig, opts ...Option) (*slog.Logger, error) {
	o := &options{writer: os.Stderr, timestamp: true}
	for _, opt := range opts {
		opt(o)
	}

	level := charmlog.InfoLevel
	if cfg.Level != "" {
		l, err := charmlog.ParseLevel(strings.ToLower(cfg.Level))
		if err != nil {
			return nil, fmt.Errorf("parsing log level %q: %w", cfg.Level, err)
		}
		level = l
	}

	var formatter charmlog.Formatter
	switch strings.ToLower(cfg.Format) {
	case "", FormatText:
		formatter = charmlog.TextFormatter
	case FormatJSON:
		formatter = charmlog.JSONFormatter
	case FormatLogfmt:
		formatter = charmlog.LogfmtFormatter
	default:
		return nil, fmt.Errorf("unknown log format %q", cfg.Format)
	}

	handler := charmlog.NewWithOptions(o.writer, charmlog.Options{
		Level:           level,
		Formatter:       formatter,
		ReportTimestamp: o.timestamp,
	})
	logger := slog.New(handler)
	if o.setDefault {
		charmlog.SetDefault(handler)
		slog.SetDefault(logger)
	}
	return logger, nil
}

// Discard returns a logger that drops every record. Tests use it to keep
// output quiet.
func Discard() *slog.Logger {
	return slog.New(charmlog.NewWithOptions(io.Discard, charmlog.Options{Level: charmlog.FatalLevel}))
}
