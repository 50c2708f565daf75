// Command markerctl validates, normalizes and stores marker documents.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/OCAP2/markerset/internal/config"
	"github.com/OCAP2/markerset/internal/logging"
	"github.com/OCAP2/markerset/internal/markerset"
	"github.com/OCAP2/markerset/pkg/core"
	"github.com/OCAP2/markerset/pkg/marker"
)

// module defs - BuildDate can be set at build time via ldflags
var (
	CurrentVersion string = "0.0.1"
	BuildDate      string = "unknown"

	AppName string = "markerctl"
)

// Logger is the logging surface shared by the internal packages.
type Logger interface {
	Debug(msg string, keysAndValues ...any)
	Info(msg string, keysAndValues ...any)
	Error(msg string, keysAndValues ...any)
}

// app carries the state shared by all commands of one invocation.
type app struct {
	stdout io.Writer
	stderr io.Writer

	configDir string
	logLevel  string
	logJSON   bool
	logToFile bool
	mapIDs    []string
	document  string

	slogManager *logging.SlogManager
	logger      Logger
	logFile     *os.File
	started     time.Time
}

func newApp(stdout, stderr io.Writer) *app {
	return &app{stdout: stdout, stderr: stderr, started: time.Now()}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := newApp(os.Stdout, os.Stderr).run(ctx, os.Args[1:]); err != nil {
		os.Exit(1)
	}
}

// run executes one command line and releases what setup opened.
func (a *app) run(ctx context.Context, args []string) error {
	defer a.teardown()
	root := a.rootCmd()
	root.SetArgs(args)
	return root.ExecuteContext(ctx)
}

func (a *app) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          AppName,
		Short:        "Validate, normalize and store marker documents",
		Version:      fmt.Sprintf("%s (built %s)", CurrentVersion, BuildDate),
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}
	root.SetOut(a.stdout)
	root.SetErr(a.stderr)

	root.PersistentFlags().StringVar(&a.configDir, "config-dir", ".", "Directory containing "+config.FileName)
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "Log level (debug, info, warn, error); overrides the config file")
	root.PersistentFlags().BoolVar(&a.logJSON, "log-json", false, "Write component logs as JSON lines")
	root.PersistentFlags().BoolVar(&a.logToFile, "log-file", false, "Write logs to a file in logsDir instead of stderr")
	root.PersistentFlags().StringSliceVar(&a.mapIDs, "maps", nil, "Known map ids; markers on other maps are rejected")

	root.AddCommand(
		a.validateCmd(),
		a.normalizeCmd(),
		a.inspectCmd(),
		a.listCmd(),
		a.exportCmd(),
		a.importCmd(),
		a.addCmd(),
		a.watchCmd(),
	)
	return root
}

// setup loads the config file and builds the loggers.
func (a *app) setup(cmd *cobra.Command) error {
	if err := config.Load(a.configDir); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return err
		}
	}

	level := a.logLevel
	if level == "" {
		level = config.GetString("logLevel")
	}

	var file io.Writer
	if a.logToFile {
		f, err := logging.OpenLogFile(config.GetString("logsDir"), AppName, a.started)
		if err != nil {
			return err
		}
		a.logFile = f
		file = f
	}

	a.slogManager = logging.NewSlogManager(a.stderr)
	a.slogManager.Setup(file, level, func() []slog.Attr {
		return []slog.Attr{
			slog.String("command", cmd.Name()),
			slog.String("document", a.document),
		}
	})

	if a.logJSON {
		out := io.Writer(a.stderr)
		if file != nil {
			out = file
		}
		zl := zerolog.New(out).With().Timestamp().Str("command", cmd.Name()).Logger().
			Level(zerologLevel(level))
		a.logger = logging.NewZerologAdapter(zl)
	} else {
		a.logger = logging.NewSlogAdapter(a.slogManager.Logger())
	}
	return nil
}

func (a *app) teardown() {
	if a.logFile != nil {
		a.logFile.Close()
		a.logFile = nil
	}
}

func zerologLevel(level string) zerolog.Level {
	switch logging.ParseLevel(level) {
	case slog.LevelDebug:
		return zerolog.DebugLevel
	case slog.LevelWarn:
		return zerolog.WarnLevel
	case slog.LevelError:
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// resolver restricts map ids to --maps. Without the flag any id is accepted.
func (a *app) resolver() marker.MapResolver {
	if len(a.mapIDs) == 0 {
		return nil
	}
	known := make(map[string]bool, len(a.mapIDs))
	for _, id := range a.mapIDs {
		known[strings.TrimSpace(id)] = true
	}
	return marker.MapResolverFunc(func(id string) (core.MapRef, bool) {
		if !known[id] {
			return core.MapRef{}, false
		}
		return core.MapRef{ID: id}, true
	})
}

func (a *app) newDocument() *markerset.Document {
	return markerset.NewDocument(markerset.WithLogger(a.logger))
}
