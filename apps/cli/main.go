// Command masomo is a terminal client of the platform.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/trezcool/masomo/apps/shared"
	"github.com/trezcool/masomo/core"
	"github.com/trezcool/masomo/core/cache"
	"github.com/trezcool/masomo/services/backend"
	logsvc "github.com/trezcool/masomo/services/logger"
)

func main() {
	os.Exit(run())
}

func run() int {
	conf, err := core.NewConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}

	std, err := logsvc.NewZap("cli", conf)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}
	defer func() { _ = std.Sync() }()
	logger := logsvc.NewZapLogger(std)

	store := cache.NewStore(
		logger,
		cache.WithKeepUnusedFor(conf.Cache.KeepUnusedFor),
		cache.WithPruneInterval(conf.Cache.PruneInterval),
	)
	defer store.Close()

	validate, translator := shared.NewValidator()
	client := backend.NewClientFromConfig(conf, store, validate, translator, logger)

	cli := newCommandLine(client, conf.CLI.TokenFile, conf.CLI.PollInterval)
	if client.Token() == "" {
		if err = cli.loadToken(); err != nil {
			logger.Warn("could not read the saved token", err)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err = cli.run(ctx, os.Args); err != nil {
		if err != errHelp {
			printError(os.Stderr, err)
		}
		return 1
	}
	return 0
}
