package cli

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/alecthomas/kong"
	"t0ast.cc/floorpier/gui"
	"t0ast.cc/floorpier/internal"
	uerror "t0ast.cc/floorpier/util/error"
	uio "t0ast.cc/floorpier/util/io"
)

var CLI struct {
	ConfigPath string `help:"Path of the configuration file to use (default: ~/.config/floorpier/config.yaml, then /etc/floorpier/config.yaml, then built-in defaults)" name:"config" optional:"" type:"path"`
	Verbose    bool   `help:"Log debug messages" short:"v"`
	Yes        bool   `help:"Answer every confirmation with yes" short:"y"`
	Rofi       bool   `help:"Ask for confirmation through rofi instead of the terminal"`

	Install InstallCmd `cmd:"" default:"1" help:"Render the theme and install it into the browser profile (default if no arguments are given)"`
	Render  RenderCmd  `cmd:"" help:"Render the theme into the build directory without installing it"`
	Watch   WatchCmd   `cmd:"" help:"Render the theme again whenever its source changes"`
	Locate  LocateCmd  `cmd:"" help:"Print the detected browser profile directory"`
}

type CommandContext struct {
	Config    internal.Configuration
	Confirmer internal.Confirmer
	Context   context.Context
}

func Run(args []string) error {
	kctx, err := kong.Must(&CLI,
		kong.Name("floorpier"),
		kong.Description("Installs the floorpier theme into a Floorp profile and its Sidebery extension."),
	).Parse(args[1:])
	if err != nil {
		return uerror.WithStackTrace(err)
	}

	setUpLogging(CLI.Verbose)

	config, err := loadConfig(CLI.ConfigPath)
	if err != nil {
		return uerror.WithExitCodeFor(uerror.WithStackTrace(err), internal.ErrInvalidConfiguration, uerror.ExitCodeInvalidConfig)
	}
	if err := config.Validate(); err != nil {
		return uerror.WithExitCode(uerror.ExitCodeInvalidConfig, err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	err = kctx.Run(CommandContext{
		Config:    config,
		Confirmer: newConfirmer(ctx),
		Context:   ctx,
	})
	err = uerror.WithExitCodeFor(err, internal.ErrUnsupportedPlatform, uerror.ExitCodeUnsupportedPlatform)
	return uerror.WithExitCodeFor(err, internal.ErrProfileNotFound, uerror.ExitCodeProfileNotFound)
}

func setUpLogging(verbose bool) {
	logLevel := slog.LevelInfo
	if verbose {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	})))
}

func newConfirmer(ctx context.Context) internal.Confirmer {
	switch {
	case CLI.Yes:
		return internal.AlwaysConfirm
	case CLI.Rofi:
		return gui.RofiConfirmer{Context: ctx}
	default:
		return gui.NewConsoleConfirmer(os.Stdin, os.Stdout)
	}
}

func loadConfig(cliPath string) (internal.Configuration, error) {
	if cliPath != "" {
		return internal.ReadConfiguration(cliPath)
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return internal.Configuration{}, uerror.WithStackTrace(err)
	}
	homeConfigFile := filepath.Join(home, ".config/floorpier/config.yaml")
	homeConfigFileExists, err := uio.FileExists(homeConfigFile)
	if err != nil {
		return internal.Configuration{}, uerror.WithStackTrace(err)
	}
	if homeConfigFileExists {
		return internal.ReadConfiguration(homeConfigFile)
	}

	etcConfigFile := "/etc/floorpier/config.yaml"
	etcConfigFileExists, err := uio.FileExists(etcConfigFile)
	if err != nil {
		return internal.Configuration{}, uerror.WithStackTrace(err)
	}
	if etcConfigFileExists {
		return internal.ReadConfiguration(etcConfigFile)
	}

	slog.Debug("no configuration file found, using defaults")
	return internal.DefaultConfiguration(), nil
}
