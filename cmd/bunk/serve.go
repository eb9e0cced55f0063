package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/bayneri/bunk/internal/config"
	"github.com/bayneri/bunk/internal/server"
)

func runServe(args []string) error {
	defaults, err := config.LoadDefaults(config.DotEnvFile)
	if err != nil {
		return err
	}

	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	addr := fs.String("addr", defaults.Addr, "listen address")
	if err := fs.Parse(args); err != nil {
		return err
	}

	app, err := server.New(server.Options{Defaults: defaults})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Fprintf(os.Stdout, "Listening on %s\n", *addr)
	if err := server.Run(ctx, app, *addr); err != nil {
		return fmt.Errorf("serve: %w", err)
	}
	fmt.Fprintln(os.Stdout, "Server stopped.")
	return nil
}
