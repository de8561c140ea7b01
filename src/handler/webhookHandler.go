package handler

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/google/uuid"
	logger "github.com/sirupsen/logrus"

	"signalrelay/src/processor"
	"signalrelay/src/trace"
)

// Charting platforms send small alert payloads; anything bigger is noise.
const maxBodyBytes = 1 << 20

// signalHandler is the slice of processor.Processor the webhook needs.
type signalHandler interface {
	Handle(ctx context.Context, raw []byte) processor.Outcome
}

// WebhookHandler returns the POST /webhook handler. Every request gets a
// correlation id so one signal's log lines can be traced together.
func WebhookHandler(signals signalHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		correlationID := uuid.NewString()
		log := logger.WithField("correlation_id", correlationID)

		raw, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
		if err != nil {
			log.WithError(err).Warn("Failed to read webhook body")
			http.Error(w, "Bad Request", http.StatusBadRequest)
			return
		}

		ctx := trace.WithCorrelationID(r.Context(), correlationID)
		outcome := signals.Handle(ctx, raw)

		log.WithFields(map[string]interface{}{
			"status":      outcome.Status,
			"strategy_id": outcome.StrategyID,
			"http_status": outcome.HTTPStatus,
		}).Info("Webhook processed")

		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("X-Correlation-ID", correlationID)
		w.WriteHeader(outcome.HTTPStatus)
		if err := json.NewEncoder(w).Encode(outcome); err != nil {
			log.WithError(err).Error("failed to encode webhook response")
		}
	}
}
