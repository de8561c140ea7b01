package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	logger "github.com/sirupsen/logrus"

	"signalrelay/src/model"
	"signalrelay/src/repository"
	"signalrelay/src/risk"
)

const maxLogsLimit = 500

// eventReader is the slice of the event repository the dashboard needs.
type eventReader interface {
	Recent(ctx context.Context, limit int, strategyID string) ([]model.SignalEvent, error)
}

// LogsHandler returns a handler that lists recent signal events, newest
// first. Supports ?limit= and ?strategy_id= filters.
func LogsHandler(repo eventReader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := 50
		if limitParam := r.URL.Query().Get("limit"); limitParam != "" {
			parsed, err := strconv.Atoi(limitParam)
			if err != nil || parsed <= 0 {
				http.Error(w, "invalid limit", http.StatusBadRequest)
				return
			}
			if parsed > maxLogsLimit {
				parsed = maxLogsLimit
			}
			limit = parsed
		}

		strategyID := r.URL.Query().Get("strategy_id")

		events, err := repo.Recent(r.Context(), limit, strategyID)
		if err != nil {
			logger.WithError(err).Error("failed to list signal events")
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(events); err != nil {
			logger.WithError(err).Error("failed to encode signal events response")
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}
	}
}

// DefaultLogsHandler wires the handler to the production repository implementation.
func DefaultLogsHandler() http.HandlerFunc {
	return LogsHandler(repository.NewSignalEventRepository())
}

// strategyReader is the slice of risk.Tracker the status endpoint needs.
type strategyReader interface {
	Snapshot() []risk.StrategyStatus
}

// StrategiesHandler returns a handler with the live per-strategy drawdown
// state, for dashboards and operators.
func StrategiesHandler(tracker strategyReader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(tracker.Snapshot()); err != nil {
			logger.WithError(err).Error("failed to encode strategies response")
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}
	}
}
