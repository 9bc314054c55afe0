package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"flightroute/internal/config"
	"flightroute/internal/infra/log"
	"flightroute/internal/infra/version"
)

const usage = `usage: flightroute <command> [flags]

commands:
  search       find one route: -origin KHI -destination LHR -date 2030-05-01 [-mode cheapest|shortest] [-max 100]
  interactive  choose airports, date and mode from menus
  serve        run the HTTP API
  version      print build information
`

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		fmt.Fprint(stderr, usage)
		return 2
	}
	cmd, rest := args[0], args[1:]
	if cmd == "version" || cmd == "-version" || cmd == "--version" {
		fmt.Fprintln(stdout, version.Get())
		return 0
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	logger := log.NewLogger(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	switch cmd {
	case "search":
		err = runSearch(ctx, cfg, logger, rest, stdout)
	case "interactive":
		err = runInteractive(ctx, cfg, logger, stdin, stdout)
	case "serve":
		err = runServe(ctx, cfg, logger)
	default:
		fmt.Fprintf(stderr, "unknown command %q\n\n%s", cmd, usage)
		return 2
	}
	switch {
	case err == nil:
		return 0
	case errors.Is(err, flag.ErrHelp):
		return 2
	default:
		fmt.Fprintln(stderr, "error:", err)
		return 1
	}
}
