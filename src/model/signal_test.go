package model

import (
	"strings"
	"testing"
)

// Test index:
// - TestDecodeEnvelope_RequiredFields: boundary fields every payload must carry
// - TestEnvelopeSignal_EquityUpdate / _Reset / _OrderIntent: variant construction
// - TestEnvelopeSignal_Validation: per-type field errors

func TestDecodeEnvelope_RequiredFields(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{"valid", `{"strategy_id":"S1","signal_type":"reset","secret":"x"}`, ""},
		{"malformed json", `{"strategy_id":`, "malformed payload"},
		{"non-numeric equity", `{"strategy_id":"S1","signal_type":"equity_update","equity":"abc"}`, "malformed payload"},
		{"missing strategy_id", `{"signal_type":"reset"}`, "strategy_id is required"},
		{"missing signal_type", `{"strategy_id":"S1"}`, "signal_type is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env, err := DecodeEnvelope([]byte(tt.body))
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if env == nil {
					t.Fatal("expected envelope, got nil")
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestEnvelopeSignal_EquityUpdate(t *testing.T) {
	env, err := DecodeEnvelope([]byte(`{"strategy_id":"S1","signal_type":"equity_update","secret":"x","equity":1250.5}`))
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}

	sig, err := env.Signal()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	up, ok := sig.(EquityUpdate)
	if !ok {
		t.Fatalf("expected EquityUpdate, got %T", sig)
	}
	if up.StrategyID != "S1" || up.Equity != 1250.5 {
		t.Fatalf("unexpected variant: %+v", up)
	}
}

func TestEnvelopeSignal_Reset(t *testing.T) {
	env, err := DecodeEnvelope([]byte(`{"strategy_id":"S1","signal_type":"reset","secret":"x"}`))
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}

	sig, err := env.Signal()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := sig.(ResetRequest); !ok {
		t.Fatalf("expected ResetRequest, got %T", sig)
	}
	if sig.Strategy() != "S1" {
		t.Fatalf("expected strategy S1, got %q", sig.Strategy())
	}
}

func TestEnvelopeSignal_OrderIntent(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		wantSide string
		wantSize float64
	}{
		{
			"entry long sized by percent",
			`{"strategy_id":"S1","signal_type":"entry_long","secret":"x","symbol":"ETHUSDT","action":"buy","price":2000,"capital_percent":10}`,
			SideBuy, 0,
		},
		{
			"exit short with explicit position_size",
			`{"strategy_id":"S1","signal_type":"exit_short","secret":"x","symbol":"ETHUSDT","action":"sell","position_size":0.25}`,
			SideSell, 0.25,
		},
		{
			"quantity is an alias for position_size",
			`{"strategy_id":"S1","signal_type":"entry_short","secret":"x","symbol":"BTCUSDT","action":"SELL","quantity":0.01}`,
			SideSell, 0.01,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env, err := DecodeEnvelope([]byte(tt.body))
			if err != nil {
				t.Fatalf("decode failed: %v", err)
			}
			sig, err := env.Signal()
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			intent, ok := sig.(OrderIntent)
			if !ok {
				t.Fatalf("expected OrderIntent, got %T", sig)
			}
			if intent.Side != tt.wantSide {
				t.Fatalf("expected side %q, got %q", tt.wantSide, intent.Side)
			}
			if intent.PositionSize != tt.wantSize {
				t.Fatalf("expected position size %v, got %v", tt.wantSize, intent.PositionSize)
			}
		})
	}
}

func TestEnvelopeSignal_Validation(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{"equity_update without equity", `{"strategy_id":"S1","signal_type":"equity_update","secret":"x"}`, "equity is required"},
		{"order without action", `{"strategy_id":"S1","signal_type":"entry_long","secret":"x","symbol":"ETHUSDT"}`, "action is required"},
		{"order with unknown action", `{"strategy_id":"S1","signal_type":"entry_long","secret":"x","symbol":"ETHUSDT","action":"hold"}`, "unknown action"},
		{"order without symbol", `{"strategy_id":"S1","signal_type":"entry_long","secret":"x","action":"buy"}`, "symbol is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env, err := DecodeEnvelope([]byte(tt.body))
			if err != nil {
				t.Fatalf("decode failed: %v", err)
			}
			if _, err := env.Signal(); err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}
