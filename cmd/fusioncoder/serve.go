package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/fusionworks/fusioncoder/bus"
)

func newServeCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run as a worker draining workflow requests from NATS",
		Long: "Starts an embedded NATS server (or connects to bus.url), subscribes to " +
			"the workflow request subject and publishes lifecycle events and results. " +
			"Stops cleanly on SIGINT or SIGTERM.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd, root)
		},
	}
}

func serve(cmd *cobra.Command, root *rootOptions) error {
	cfg, logger, err := root.load()
	if err != nil {
		return err
	}

	url := cfg.Bus.URL
	if cfg.Bus.Embedded {
		srv, err := bus.StartEmbedded(cfg.Bus.Port)
		if err != nil {
			return err
		}
		defer srv.Shutdown()
		url = srv.ClientURL()
		logger.Info("embedded nats server started", "url", url)
	}

	client, err := bus.Connect(url)
	if err != nil {
		return err
	}
	defer client.Close()

	orch, err := buildOrchestrator(cfg, root, logger)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	listener := bus.NewListener(orch, client, func(o *bus.ListenerOptions) { o.Logger = logger })
	if err := listener.Start(ctx); err != nil {
		return err
	}

	<-ctx.Done()
	logger.Info("shutting down")
	return listener.Stop()
}
