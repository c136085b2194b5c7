package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/zulandar/fishbuddy/internal/assistant"
	"github.com/zulandar/fishbuddy/internal/config"
	"github.com/zulandar/fishbuddy/internal/server"
)

func newServeCmd() *cobra.Command {
	var (
		configPath string
		port       int
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP backend",
		Long:  "Runs the FishBuddy backend: thread creation, SSE chat, and upload management for the web frontend.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, configPath, port)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "fishbuddy.yaml", "path to config file")
	cmd.Flags().IntVarP(&port, "port", "p", 0, "port to listen on (overrides config)")
	return cmd
}

func runServe(cmd *cobra.Command, configPath string, port int) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	registry, err := buildRegistry(cfg)
	if err != nil {
		return err
	}
	client := assistant.NewOpenAI(cfg.OpenAI.APIKey, cfg.OpenAI.AssistantID)

	if port <= 0 {
		port = cfg.Server.Port
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		fmt.Fprintf(cmd.OutOrStdout(), "\nReceived %s, shutting down...\n", sig)
		cancel()
	}()

	return server.Start(ctx, server.StartOpts{
		Client:        client,
		Driver:        newDriver(cfg, client, registry, cfg.Poll.StreamBudget),
		MessagePage:   cfg.Poll.MessagePage,
		Files:         server.NewFileStore(),
		UploadTTL:     cfg.UploadTTL(),
		Port:          port,
		AllowedOrigin: cfg.Server.AllowedOrigin,
		Out:           cmd.OutOrStdout(),
	})
}
