// Package server wires the HTTP surface: the /listen voice websocket,
// log retrieval, the log-stream dashboard socket, and metrics.
package server

import (
	"context"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tripvoice/go-tripvoice/internal/config"
	"github.com/tripvoice/go-tripvoice/internal/log"
	"github.com/tripvoice/go-tripvoice/pkg/gemini"
	"github.com/tripvoice/go-tripvoice/pkg/hub"
	"github.com/tripvoice/go-tripvoice/pkg/logstore"
	"github.com/tripvoice/go-tripvoice/pkg/relay"
	"github.com/tripvoice/go-tripvoice/pkg/tools"
)

// Server hosts the relay endpoints.
type Server struct {
	app      *fiber.App
	cfg      config.Config
	store    *logstore.Store
	registry *tools.Registry
	logHub   *hub.Hub
}

// New builds the fiber app and routes. Structured log entries appended
// to the store are fanned out live to dashboard websocket clients.
func New(cfg config.Config, store *logstore.Store, registry *tools.Registry) *Server {
	s := &Server{
		cfg:      cfg,
		store:    store,
		registry: registry,
		logHub:   hub.New("logs"),
	}

	app := fiber.New(fiber.Config{
		AppName:               "tripvoice",
		DisableStartupMessage: true,
	})
	app.Use(cors.New())

	app.Get("/ping", s.handlePing)
	app.Get("/api/logs", s.handleLogs)
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	app.Use("/listen", upgradeRequired)
	app.Get("/listen", websocket.New(s.handleListen))

	app.Use("/ws", upgradeRequired)
	app.Get("/ws/logs", websocket.New(s.handleLogStream))

	store.OnAppend(func(e logstore.Entry) {
		s.logHub.BroadcastJSON(e)
	})

	s.app = app
	return s
}

func upgradeRequired(c *fiber.Ctx) error {
	if websocket.IsWebSocketUpgrade(c) {
		return c.Next()
	}
	return fiber.ErrUpgradeRequired
}

// Start runs the hub and blocks serving HTTP.
func (s *Server) Start() error {
	go s.logHub.Run()
	log.Info("http server listening", "port", s.cfg.HTTPPort)
	return s.app.Listen(":" + s.cfg.HTTPPort)
}

// Shutdown stops accepting connections and drains in-flight requests.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

func (s *Server) handlePing(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok", "message": "pong"})
}

func (s *Server) handleLogs(c *fiber.Ctx) error {
	entries := s.store.Entries()
	return c.JSON(fiber.Map{
		"count": len(entries),
		"logs":  entries,
	})
}

// handleListen runs one relay session for the lifetime of the client
// websocket.
func (s *Server) handleListen(conn *websocket.Conn) {
	defer conn.Close()

	client := newWSClient(conn)
	defer client.stop()

	gc, err := gemini.NewClient(gemini.Config{
		APIKey:            s.cfg.GeminiAPIKey,
		UseVertexAI:       s.cfg.UseVertexAI,
		Project:           s.cfg.CloudProject,
		Location:          s.cfg.CloudLocation,
		Model:             s.cfg.ModelName,
		SystemInstruction: systemInstruction,
		VoiceName:         s.cfg.VoiceName,
		LanguageCode:      s.cfg.LanguageCode,
		DisableVAD:        s.cfg.DisableVAD,
		InputSampleRate:   s.cfg.InputSampleRate,
		Tools:             s.registry.Declarations(),
	})
	if err != nil {
		log.Error("gemini client configuration failed", "error", err)
		client.SendText("[ERROR_FROM_GEMINI]: " + err.Error())
		return
	}

	session, err := gc.Connect(context.Background())
	if err != nil {
		log.Error("gemini connect failed", "error", err)
		client.SendText("[ERROR_FROM_GEMINI]: " + err.Error())
		return
	}

	r := relay.New(client, session, s.registry, relay.Config{
		InputSampleRate:    s.cfg.InputSampleRate,
		OutputSampleRate:   s.cfg.OutputSampleRate,
		MaxBufferSize:      s.cfg.MaxBufferSize,
		BufferTimeout:      s.cfg.BufferTimeout,
		SpeechGapThreshold: s.cfg.SpeechGapThreshold,
		DisableVAD:         s.cfg.DisableVAD,
	})
	if err := r.Run(context.Background()); err != nil {
		log.Error("relay session ended with error", "error", err)
	}
}

func (s *Server) handleLogStream(conn *websocket.Conn) {
	hub.NewClient(s.logHub, conn).Run()
}
