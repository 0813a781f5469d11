package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/common-nighthawk/go-figure"
	"github.com/jrsteele09/studygroup-client/internal/app"
	"github.com/jrsteele09/studygroup-client/internal/config"
	"github.com/jrsteele09/studygroup-client/internal/logging"
	"github.com/rs/zerolog/log"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.New()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	logging.Setup(cfg.GetEnv(), cfg.GetLogLevel())

	if err := run(ctx, cfg, os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, args []string, out io.Writer, opts ...app.Option) error {
	if len(args) == 0 || args[0] == "help" || args[0] == "-h" || args[0] == "--help" {
		displayAppname(out, cfg.GetAppName())
		usage(out)
		return nil
	}

	cmd, ok := commands[args[0]]
	if !ok {
		usage(out)
		return fmt.Errorf("unknown command %q", args[0])
	}

	opts = append(opts, app.WithRedirectHook(func(entryPoint string, _ error) {
		fmt.Fprintf(out, "Session expired. Log in again (%s).\n", entryPoint)
	}))
	a, err := app.New(ctx, cfg, opts...)
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Close(); err != nil {
			log.Err(err).Msg("Failed to close app")
		}
	}()

	return cmd.run(ctx, a, args[1:], out)
}

func usage(out io.Writer) {
	fmt.Fprintln(out, "Usage: studygroup <command> [flags]")
	fmt.Fprintln(out)
	for _, name := range commandNames() {
		fmt.Fprintf(out, "  %-13s %s\n", name, commands[name].help)
	}
}

func displayAppname(out io.Writer, appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	fmt.Fprintln(out, myFigure.String())
}
