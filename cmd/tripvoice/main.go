// tripvoice: voice travel-assistant relay bridging browser clients to
// the Gemini Live API.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/tripvoice/go-tripvoice/internal/config"
	"github.com/tripvoice/go-tripvoice/internal/log"
	"github.com/tripvoice/go-tripvoice/internal/server"
	"github.com/tripvoice/go-tripvoice/pkg/logstore"
	"github.com/tripvoice/go-tripvoice/pkg/tools"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "fatal:", err)
		os.Exit(1)
	}
}

func run() error {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return err
	}

	// Structured logs are teed into the in-memory store backing
	// /api/logs and the dashboard stream.
	store := logstore.New(cfg.LogStoreSize)
	log.Init(cfg.LogLevel, logstore.NewHandler(store, log.ParseLevel(cfg.LogLevel)))

	registry := tools.NewRegistry()
	if err := tools.NewSuite(store, 0).RegisterAll(registry); err != nil {
		return fmt.Errorf("register tools: %w", err)
	}

	srv := server.New(cfg, store, registry)

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	log.Info("tripvoice started",
		"port", cfg.HTTPPort,
		"model", cfg.ModelName,
		"vertex", cfg.UseVertexAI)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case s := <-sig:
		log.Info("shutting down", "signal", s.String())
		return srv.Shutdown()
	}
}
