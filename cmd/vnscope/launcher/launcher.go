package launcher

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	cli "gopkg.in/urfave/cli.v1"

	"github.com/rony4d/vnscope/flags"
)

var app = newApp()

// newContext returns the context a long-running command lives in. It ends on
// SIGINT or SIGTERM.
var newContext = func() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func newApp() *cli.App {
	app := flags.NewApp()
	app.Commands = []cli.Command{
		watchCommand,
		statusCommand,
		txCommand,
	}
	app.Action = func(ctx *cli.Context) error {
		return cli.ShowAppHelp(ctx)
	}
	return app
}

// Launch parses args and runs the selected command.
func Launch(args []string) error {
	return app.Run(args)
}
