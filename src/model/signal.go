package model

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Signal type values recognized on the webhook. Anything else that carries a
// buy/sell action is treated as an order intent (entry_long, exit_short, ...).
const (
	SignalTypeEquityUpdate = "equity_update"
	SignalTypeReset        = "reset"
)

// Bybit v5 side values.
const (
	SideBuy  = "Buy"
	SideSell = "Sell"
)

// Envelope is the raw webhook payload as sent by the charting platform.
// Numeric fields are pointers so absent and zero can be told apart.
type Envelope struct {
	StrategyID     string   `json:"strategy_id"`
	SignalType     string   `json:"signal_type"`
	Secret         string   `json:"secret"`
	Equity         *float64 `json:"equity,omitempty"`
	Symbol         string   `json:"symbol,omitempty"`
	Action         string   `json:"action,omitempty"`
	Price          *float64 `json:"price,omitempty"`
	CapitalPercent *float64 `json:"capital_percent,omitempty"`
	PositionSize   *float64 `json:"position_size,omitempty"`
	Quantity       *float64 `json:"quantity,omitempty"`
	OrderID        string   `json:"order_id,omitempty"`
}

// DecodeEnvelope parses a webhook body and checks the fields every signal
// must carry. Per-type validation happens in Envelope.Signal.
func DecodeEnvelope(raw []byte) (*Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("malformed payload: %w", err)
	}
	if env.StrategyID == "" {
		return nil, fmt.Errorf("strategy_id is required")
	}
	if env.SignalType == "" {
		return nil, fmt.Errorf("signal_type is required")
	}
	return &env, nil
}

// Signal is the validated, typed form of an Envelope. Exactly one concrete
// type is produced per payload, decided by signal_type.
type Signal interface {
	Strategy() string
	signal()
}

type EquityUpdate struct {
	StrategyID string
	Equity     float64
}

func (s EquityUpdate) Strategy() string { return s.StrategyID }
func (EquityUpdate) signal()            {}

type ResetRequest struct {
	StrategyID string
}

func (s ResetRequest) Strategy() string { return s.StrategyID }
func (ResetRequest) signal()            {}

// OrderIntent is any signal asking for a market order. Sizing fields are
// optional; PositionSize wins over Price+CapitalPercent when both are set.
type OrderIntent struct {
	StrategyID     string
	SignalType     string
	Symbol         string
	Side           string
	Price          float64
	CapitalPercent float64
	PositionSize   float64
}

func (s OrderIntent) Strategy() string { return s.StrategyID }
func (OrderIntent) signal()            {}

// Signal validates type-specific fields and returns the typed signal.
func (e *Envelope) Signal() (Signal, error) {
	switch e.SignalType {
	case SignalTypeEquityUpdate:
		if e.Equity == nil {
			return nil, fmt.Errorf("equity is required for %s", SignalTypeEquityUpdate)
		}
		return EquityUpdate{StrategyID: e.StrategyID, Equity: *e.Equity}, nil
	case SignalTypeReset:
		return ResetRequest{StrategyID: e.StrategyID}, nil
	default:
		side, err := sideFromAction(e.Action)
		if err != nil {
			return nil, err
		}
		if e.Symbol == "" {
			return nil, fmt.Errorf("symbol is required for order signals")
		}
		intent := OrderIntent{
			StrategyID: e.StrategyID,
			SignalType: e.SignalType,
			Symbol:     e.Symbol,
			Side:       side,
		}
		if e.Price != nil {
			intent.Price = *e.Price
		}
		if e.CapitalPercent != nil {
			intent.CapitalPercent = *e.CapitalPercent
		}
		if e.PositionSize != nil {
			intent.PositionSize = *e.PositionSize
		} else if e.Quantity != nil {
			intent.PositionSize = *e.Quantity
		}
		return intent, nil
	}
}

func sideFromAction(action string) (string, error) {
	switch strings.ToLower(action) {
	case "buy":
		return SideBuy, nil
	case "sell":
		return SideSell, nil
	case "":
		return "", fmt.Errorf("action is required for order signals")
	default:
		return "", fmt.Errorf("unknown action %q", action)
	}
}
