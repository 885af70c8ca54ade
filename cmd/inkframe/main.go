package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"

	"github.com/five82/inkframe/internal/app"
)

var version = "dev"

// CLI holds global flags and subcommands.
type CLI struct {
	Config  string           `short:"c" help:"Config file path" default:"~/.config/inkframe/config.toml" type:"path"`
	Prefs   string           `help:"Simulator preferences path (optional)"`
	Verbose bool             `short:"v" help:"Enable debug logging"`
	Version kong.VersionFlag `name:"version" help:"Show version and exit"`

	Run   RunCmd   `cmd:"" default:"1" help:"Drive the frame until interrupted"`
	Sim   SimCmd   `cmd:"" help:"Run the frame against a simulated panel in the terminal"`
	State StateCmd `cmd:"" help:"Print the persisted state record"`
}

func (c *CLI) options() app.Options {
	return app.Options{ConfigPath: c.Config, PrefsPath: c.Prefs, Verbose: c.Verbose}
}

// RunCmd drives the configured device.
type RunCmd struct{}

func (RunCmd) Run(ctx context.Context, root *CLI) error {
	return app.Run(ctx, root.options())
}

// SimCmd runs the terminal simulator.
type SimCmd struct {
	Launcher bool `help:"Boot with A and E held to open the launcher"`
}

func (s SimCmd) Run(ctx context.Context, root *CLI) error {
	opts := root.options()
	opts.Launcher = s.Launcher
	return app.Sim(ctx, opts)
}

// StateCmd prints state.json.
type StateCmd struct{}

func (StateCmd) Run(root *CLI) error {
	return app.PrintState(root.options(), os.Stdout)
}

func main() {
	os.Exit(run())
}

func run() int {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var cli CLI
	kctx := kong.Parse(&cli,
		kong.Name("inkframe"),
		kong.Description("Five-button e-ink picture frame."),
		kong.UsageOnError(),
		kong.Vars{"version": version},
		kong.BindTo(ctx, (*context.Context)(nil)),
	)
	if err := kctx.Run(&cli); err != nil {
		fmt.Fprintf(os.Stderr, "inkframe: %v\n", err)
		return 1
	}
	return 0
}
