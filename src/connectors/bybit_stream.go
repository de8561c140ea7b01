package connectors

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	logger "github.com/sirupsen/logrus"

	"signalrelay/src/externalmodel"
	"signalrelay/src/mapper"
	"signalrelay/src/model"
)

const (
	streamPingInterval   = 20 * time.Second
	streamReadTimeout    = 60 * time.Second
	streamReconnectDelay = 5 * time.Second
	streamAuthWindow     = 10 * time.Second
)

// executionRecorder is the slice of the event repository the stream needs.
type executionRecorder interface {
	Append(ctx context.Context, event *model.SignalEvent) error
}

// Stream consumes the private v5 execution topic so fills and their realized
// PnL land in the event log next to the signals that caused them.
type Stream struct {
	apiKey    string
	apiSecret string
	wsURL     string
	log       *logger.Entry
	events    executionRecorder
	dialer    *websocket.Dialer
}

func NewStream(events executionRecorder) (*Stream, error) {
	return NewStreamWithConfig(GetConfig(), events)
}

func NewStreamWithConfig(cfg *Config, events executionRecorder) (*Stream, error) {
	apiKey, apiSecret, err := resolveCredentials(cfg)
	if err != nil {
		return nil, err
	}

	return &Stream{
		apiKey:    apiKey,
		apiSecret: apiSecret,
		wsURL:     cfg.WSURL,
		log:       logger.WithField("component", "execution_stream"),
		events:    events,
		dialer: &websocket.Dialer{
			HandshakeTimeout: 15 * time.Second,
			Proxy:            http.ProxyFromEnvironment,
		},
	}, nil
}

// Run keeps one stream connection alive until the context is cancelled,
// reconnecting with a fixed delay. Stream problems never propagate to the
// request path; they are logged and retried here.
func (s *Stream) Run(ctx context.Context) {
	for {
		if err := s.consume(ctx); err != nil {
			s.log.WithError(err).Error("Execution stream disconnected")
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(streamReconnectDelay):
		}
	}
}

type wsEnvelope struct {
	Op      string          `json:"op,omitempty"`
	Success *bool           `json:"success,omitempty"`
	RetMsg  string          `json:"ret_msg,omitempty"`
	Topic   string          `json:"topic,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

func (s *Stream) consume(ctx context.Context) error {
	conn, _, err := s.dialer.DialContext(ctx, s.wsURL, nil)
	if err != nil {
		return fmt.Errorf("ws dial failed: %w", err)
	}
	defer conn.Close()

	expires := time.Now().Add(streamAuthWindow).UnixMilli()
	auth := map[string]interface{}{
		"op":   "auth",
		"args": []interface{}{s.apiKey, expires, SignWS(s.apiSecret, expires)},
	}
	if err := conn.WriteJSON(auth); err != nil {
		return fmt.Errorf("ws auth failed: %w", err)
	}

	sub := map[string]interface{}{
		"op":     "subscribe",
		"req_id": uuid.NewString(),
		"args":   []string{"execution"},
	}
	if err := conn.WriteJSON(sub); err != nil {
		return fmt.Errorf("ws subscribe failed: %w", err)
	}

	// After this point keepAlive is the only writer on the connection.
	done := make(chan struct{})
	defer close(done)
	go s.keepAlive(ctx, conn, done)

	for {
		if err := conn.SetReadDeadline(time.Now().Add(streamReadTimeout)); err != nil {
			return err
		}
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("ws read failed: %w", err)
		}

		var env wsEnvelope
		if err := json.Unmarshal(msg, &env); err != nil {
			s.log.WithError(err).Warn("Skipping unparseable stream frame")
			continue
		}

		switch {
		case env.Op == "auth" || env.Op == "subscribe":
			if env.Success != nil && !*env.Success {
				return fmt.Errorf("%s rejected: %s", env.Op, env.RetMsg)
			}
		case env.Topic == "execution":
			s.handleExecutions(ctx, env.Data)
		}
	}
}

func (s *Stream) keepAlive(ctx context.Context, conn *websocket.Conn, done <-chan struct{}) {
	ticker := time.NewTicker(streamPingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ctx.Done():
			conn.Close() // unblocks the read loop
			return
		case <-ticker.C:
			if err := conn.WriteJSON(map[string]string{"op": "ping"}); err != nil {
				return
			}
		}
	}
}

func (s *Stream) handleExecutions(ctx context.Context, data json.RawMessage) {
	var entries []externalmodel.BybitExecution
	if err := json.Unmarshal(data, &entries); err != nil {
		s.log.WithError(err).Warn("Skipping malformed execution batch")
		return
	}

	for i := range entries {
		event := mapper.MapExecutionToEvent(&entries[i])
		if event == nil {
			continue
		}

		if err := s.events.Append(ctx, event); err != nil {
			s.log.WithError(err).WithFields(map[string]interface{}{
				"symbol":   event.Symbol,
				"order_id": event.ExchangeOrderID,
			}).Error("Failed to record execution")
		}
	}
}
