package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"time"
)

// SlogManager owns the process logger.
type SlogManager struct {
	console io.Writer
	logger  *slog.Logger
}

// NewSlogManager creates a manager that logs to console when no file is
// configured. A nil console means stderr; stdout is left to command output.
func NewSlogManager(console io.Writer) *SlogManager {
	if console == nil {
		console = os.Stderr
	}
	return &SlogManager{console: console}
}

// ParseLevel converts a string log level to slog.Level.
func ParseLevel(level string) slog.Level {
	switch strings.ToUpper(level) {
	case "DEBUG":
		return slog.LevelDebug
	case "INFO":
		return slog.LevelInfo
	case "WARN":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Setup (re)builds the logger. Records go to file when one is given and to
// the console otherwise; with a file, errors are echoed to the console too.
// provider may add attributes to every record.
func (m *SlogManager) Setup(file io.Writer, level string, provider ContextProvider) {
	minLevel := ParseLevel(level)
	handlerOpts := func(l slog.Level) *slog.HandlerOptions {
		return &slog.HandlerOptions{
			Level: l,
			ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
				if a.Key == slog.TimeKey {
					if t, ok := a.Value.Any().(time.Time); ok {
						a.Value = slog.StringValue(t.UTC().Format(time.RFC3339))
					}
				}
				return a
			},
		}
	}

	var handlers []slog.Handler
	if file != nil {
		handlers = append(handlers,
			slog.NewTextHandler(file, handlerOpts(minLevel)),
			slog.NewTextHandler(m.console, handlerOpts(max(minLevel, slog.LevelError))),
		)
	} else {
		handlers = append(handlers, slog.NewTextHandler(m.console, handlerOpts(minLevel)))
	}

	var handler slog.Handler = NewMultiHandler(handlers...)
	if provider != nil {
		handler = NewContextHandler(handler, provider)
	}

	m.logger = slog.New(handler)
	m.logger.Debug("Logging initialized", "level", level)
}

// Logger returns the configured slog.Logger.
func (m *SlogManager) Logger() *slog.Logger {
	if m.logger == nil {
		return slog.Default()
	}
	return m.logger
}
