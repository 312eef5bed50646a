// Command ibctl is a terminal client for the IB admin API.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/mehrbod2002/ibadmin/internal/apiclient"
	"github.com/mehrbod2002/ibadmin/internal/config"
	"github.com/mehrbod2002/ibadmin/internal/logger"
	"github.com/mehrbod2002/ibadmin/internal/tokenstore"
)

func main() {
	cfg, err := config.LoadClient()
	if err != nil {
		fatal(err)
	}
	log := logger.New(logger.Config{Level: cfg.LogLevel, Production: cfg.Env == config.EnvProduction})
	defer log.Sync()

	store, err := tokenstore.Open(cfg.StorePath)
	if err != nil {
		fatal(err)
	}
	defer store.Close()

	client, err := apiclient.New(apiclient.Options{
		BaseURL: cfg.BaseURL(),
		Timeout: cfg.RequestTimeout(),
		Store:   store,
		OnUnauthorized: func() {
			fmt.Fprintln(os.Stderr, "session expired, run `ibctl login` again")
		},
		Log: log,
	})
	if err != nil {
		fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a := &app{
		client:       client,
		store:        store,
		out:          os.Stdout,
		log:          log,
		syncInterval: cfg.SyncInterval,
	}
	if err := a.run(ctx, os.Args[1:]); err != nil {
		log.Debug("command failed", zap.Error(err))
		stop()
		store.Close()
		fatal(err)
	}
}

func fatal(err error) {
	fmt.Fprintln(os.Stderr, "error:", err.Error())
	os.Exit(1)
}
