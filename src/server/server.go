package server

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	logger "github.com/sirupsen/logrus"

	"signalrelay/src/connectors"
	"signalrelay/src/handler"
	"signalrelay/src/notify"
	"signalrelay/src/processor"
	"signalrelay/src/repository"
	"signalrelay/src/risk"
)

// StartServer wires the relay together and serves until SIGINT or SIGTERM.
func StartServer(port string) {
	tracker := risk.NewTracker()
	events := repository.NewSignalEventRepository()
	notifier := notify.NewNotifier()

	orders, err := connectors.NewClient()
	if err != nil {
		logger.WithError(err).Fatal("Failed to build exchange client")
	}

	signals := processor.New(tracker, orders, events, notifier)

	// Router with middleware
	r := chi.NewRouter()

	r.Post("/webhook", handler.WebhookHandler(signals))
	r.Get("/logs", handler.LogsHandler(events))
	r.Get("/strategies", handler.StrategiesHandler(tracker))

	// Public routes
	r.Get("/healthcheck", func(w http.ResponseWriter, r *http.Request) {
		if _, err := w.Write([]byte("OK")); err != nil {
			logger.WithError(err).Error(" \"/health error")
		}
	})

	streamCtx, stopStream := context.WithCancel(context.Background())
	defer stopStream()
	startExecutionStream(streamCtx, events)

	// Graceful server
	// Server setup
	addr := ":" + port
	srv := &http.Server{
		Addr:    addr,
		Handler: r,
	}

	// Start server in goroutine
	go func() {
		logger.Infof("Listening on %s", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("Server crashed")
		}
	}()

	// Shutdown on SIGINT or SIGTERM
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Info("Shutting down gracefully...")
	stopStream()
	ctx, cancel := context.WithTimeout(context.Background(), GetConfig().ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.WithError(err).Error("Shutdown error")
	}
}

// startExecutionStream attaches the private execution feed to the event log
// when configured. The relay works without it; fills just go unrecorded.
func startExecutionStream(ctx context.Context, events *repository.SignalEventRepository) {
	cfg := connectors.GetConfig()
	if !cfg.StreamEnabled {
		return
	}

	stream, err := connectors.NewStreamWithConfig(cfg, events)
	if err != nil {
		logger.WithError(err).Error("Execution stream disabled: bad config")
		return
	}

	go stream.Run(ctx)
}
