package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"condominium-service/logger"
	"condominium-service/src/config"
	"condominium-service/src/db"
	"condominium-service/src/middleware"
	"condominium-service/src/rabbitmq"
	"condominium-service/src/repository"
	"condominium-service/src/router"
	"condominium-service/src/service"
	"condominium-service/src/ws"
)

// Server represents the HTTP server and the process-lifetime components
// it owns: the session store, the approval sweep, the notification
// publisher and the websocket hub.
type Server struct {
	config          *config.GlobalConfig
	database        *db.DB
	publisher       *rabbitmq.AMQPPublisher
	hub             *ws.Hub
	store           *repository.SessionStore
	approvals       *service.ApprovalCorrelator
	http            *http.Server
	sweepCancel     context.CancelFunc
	shutdownHandler ShutdownHandlerInterface
}

// NewServer creates a new server instance
func NewServer(cfg *config.GlobalConfig) (*Server, error) {
	database, err := db.NewDB(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	publisher, err := rabbitmq.NewAMQPPublisher(cfg.GetAMQPURL())
	if err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	store := repository.NewSessionStore()

	server := &Server{
		config:    cfg,
		database:  database,
		publisher: publisher,
		hub:       ws.NewHub(),
		store:     store,
		approvals: service.NewApprovalCorrelator(store, cfg.GetApprovalTTL()),
	}

	// Create and assign shutdown handler
	server.shutdownHandler = NewShutdownHandler(server)

	return server, nil
}

// Run starts the server with graceful shutdown using ShutdownHandler
func (s *Server) Run() error {
	osSignals := make(chan os.Signal, 1)
	signal.Notify(osSignals, syscall.SIGINT, syscall.SIGTERM)

	sweepCtx, cancel := context.WithCancel(context.Background())
	s.sweepCancel = cancel
	go s.approvals.Run(sweepCtx)

	serverDone := s.startServerGoroutine()

	return s.shutdownHandler.HandleShutdown(serverDone, osSignals)
}

// startServerGoroutine starts the HTTP server in a goroutine and returns a channel for errors
func (s *Server) startServerGoroutine() chan error {
	serverDone := make(chan error, 1)

	go func() {
		mw := middleware.NewMiddleware(s.config)
		r := router.NewRouter(s.config, s.database, mw, router.Dependencies{
			Logger:    logger.Logger,
			Publisher: s.publisher,
			Hub:       s.hub,
			Store:     s.store,
			Approvals: s.approvals,
		})

		httpServer := &http.Server{
			Addr:    fmt.Sprintf("%s:%s", s.config.GetHost(), s.config.GetPort()),
			Handler: r,
		}
		s.http = httpServer

		slog.Info("Starting condominium service",
			"host", s.config.GetHost(),
			"port", s.config.GetPort())

		serverDone <- s.startServer()
	}()

	return serverDone
}

// startServer starts the HTTP server and handles errors
func (s *Server) startServer() error {
	if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return nil
}
