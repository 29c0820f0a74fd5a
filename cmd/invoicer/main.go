package main

import (
	"context"
	"fmt"
	"os"

	"github.com/andy/invoicer/internal/app"
	"github.com/andy/invoicer/internal/cli"
	"github.com/andy/invoicer/internal/config"
	"github.com/andy/invoicer/internal/repository"
)

func main() {
	// If the user asked for help, avoid initializing the full app (which may prompt)
	skipInit := false
	ephemeral := false
	for _, a := range os.Args[1:] {
		switch a {
		case "-h", "--help", "help":
			skipInit = true
		case "--ephemeral":
			ephemeral = true
		}
	}

	if !skipInit {
		a, err := newApp(ephemeral)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to initialize app: %v\n", err)
			os.Exit(1)
		}
		defer a.Close()
		cli.SetApp(a)
	}

	if err := cli.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// newApp opens the encrypted store, or an in-memory one that is gone on exit
func newApp(ephemeral bool) (*app.App, error) {
	if !ephemeral {
		return app.New(context.Background())
	}
	cfg, err := config.LoadDefault()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return app.NewWithStore(cfg, repository.NewMemStore(), nil), nil
}
