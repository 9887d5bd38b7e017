package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/quocvuong92/qcli/internal/api"
	"github.com/quocvuong92/qcli/internal/config"
	"github.com/quocvuong92/qcli/internal/constants"
	"github.com/quocvuong92/qcli/internal/display"
	"github.com/quocvuong92/qcli/internal/grammar"
	"github.com/quocvuong92/qcli/internal/logging"
)

// App holds the application state
type App struct {
	cfg       *config.Config
	logger    *logging.Logger
	transport api.Transport
	out       io.Writer
	errOut    io.Writer

	configPath string
	verbose    bool
	logLevel   string
	logFormat  string
	initConfig bool
}

// NewApp creates a new App instance with default configuration
func NewApp() *App {
	return &App{
		cfg:    config.NewConfig(),
		logger: logging.DefaultLogger,
		out:    os.Stdout,
		errOut: os.Stderr,
	}
}

// Execute runs the root command
func Execute() {
	app := NewApp()
	rootCmd := app.newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		display.ShowError(err.Error())
		os.Exit(1)
	}
}

func (app *App) newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   constants.AppName + " <command>",
		Short: "An interactive command shell for HTTP calls",
		Long: `An interactive command shell that issues HTTP get and put calls.
The prompt shows the current time and refreshes while you type.

Commands:
  interactive                  Start the interactive shell
  http get <uri>               Make an http get call
  http put <uri> [content...]  Make an http put call
  quit                         End the program

Examples:
  qcli interactive
  qcli http get https://example.com/
  qcli http put https://example.com/items hello world
  qcli -c ./cli.yaml -v interactive`,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		Run: func(cmd *cobra.Command, args []string) {
			if len(args) == 0 && !app.initConfig {
				_ = cmd.Help()
				os.Exit(1)
			}
			if code := app.run(cmd.Context(), args); code != 0 {
				os.Exit(code)
			}
		},
	}

	// Everything after the first command word belongs to the command grammar.
	rootCmd.Flags().SetInterspersed(false)

	rootCmd.Flags().StringVarP(&app.configPath, "config", "c", "", "Config file (default: "+constants.DefaultConfigFile+")")
	rootCmd.Flags().BoolVarP(&app.verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.Flags().StringVar(&app.logLevel, "log-level", "", "Log level: debug, info, warn, error, none")
	rootCmd.Flags().StringVar(&app.logFormat, "log-format", "", "Log format: text or json")
	rootCmd.Flags().BoolVar(&app.initConfig, "init-config", false, "Write a commented config file and exit")

	return rootCmd
}

// run executes a single-shot command line and returns the exit code
func (app *App) run(ctx context.Context, args []string) int {
	if ctx == nil {
		ctx = context.Background()
	}
	printer := display.NewPrinter(app.out, app.errOut)

	if app.initConfig {
		path, err := config.CreateDefaultConfigFile(app.configPath)
		if err != nil {
			printer.ShowError(err.Error())
			return 1
		}
		printer.Println("Created config file at " + path)
		return 0
	}

	settings, loadErr := config.Load(app.configPath)
	cfg, err := config.FromSettings(settings)
	if err != nil {
		printer.ShowError(fmt.Sprintf("invalid configuration: %v", err))
		return 1
	}
	app.cfg = cfg

	closeLog, err := app.setupLogging()
	if err != nil {
		printer.ShowError(err.Error())
		return 1
	}
	defer closeLog()

	if loadErr != nil {
		app.logger.Warn("Could not read configuration file", logging.Fields{"error": loadErr.Error()})
		printer.ShowWarning(loadErr.Error())
	}
	app.logger.Debug("Configuration loaded", logging.Fields{"settings": config.Describe(settings)})

	if app.transport == nil {
		app.transport = api.NewHTTPClient(cfg, app.logger)
	}
	if cfg.Render {
		if err := printer.InitRenderer(); err != nil {
			app.logger.Warn("Failed to initialize renderer", logging.Fields{"error": err.Error()})
		}
	}

	g := grammar.New(grammar.Options{Name: cfg.AppName, Version: constants.Version, AllowInteractive: true})
	command, err := g.Parse(args)
	if err != nil {
		var help *grammar.HelpRequested
		var version *grammar.VersionRequested
		var gerr *grammar.GrammarError
		switch {
		case errors.As(err, &help):
			printer.Println(help.Text)
			return 0
		case errors.As(err, &version):
			printer.Println(version.Text())
			return 0
		case errors.As(err, &gerr):
			printer.ShowParseError(gerr.Error(), gerr.HelpHint(true))
			return 1
		}
		printer.ShowError(err.Error())
		return 1
	}

	if _, ok := command.(grammar.EnterInteractive); ok {
		if err := app.runInteractive(ctx); err != nil {
			printer.ShowError(err.Error())
			return 1
		}
		return 0
	}

	dispatcher := NewDispatcher(g, app.transport, printer, app.logger)
	if _, err := dispatcher.Run(ctx, command); err != nil {
		printer.ShowError(err.Error())
		var terr *api.TransportError
		if errors.As(err, &terr) {
			return 1
		}
	}
	return 0
}

// setupLogging applies config then flags to the default logger. The
// returned func closes the log file, if any.
func (app *App) setupLogging() (func(), error) {
	level := logging.ParseLevel(app.cfg.LogLevel)
	if app.logLevel != "" {
		level = logging.ParseLevel(app.logLevel)
	}
	if app.verbose {
		level = logging.LevelDebug
	}

	format := logging.ParseFormat(app.cfg.LogFormat)
	if app.logFormat != "" {
		format = logging.ParseFormat(app.logFormat)
	}

	app.logger.SetLevel(level)
	app.logger.SetFormat(format)

	if app.cfg.LogFile == "" {
		return func() { _ = app.logger.Sync() }, nil
	}

	f, err := os.OpenFile(app.cfg.LogFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	app.logger.SetOutput(f)
	return func() {
		_ = app.logger.Sync()
		_ = f.Close()
	}, nil
}
