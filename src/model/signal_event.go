package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// EventStatus constants are the outcome values recorded per processed signal
// and returned to the webhook caller.
const (
	EventStatusOK        = "ok"
	EventStatusPaused    = "paused"
	EventStatusBlocked   = "blocked"
	EventStatusReset     = "reset"
	EventStatusDuplicate = "duplicate"
	EventStatusSkipped   = "skipped"
	EventStatusSuccess   = "success"
	EventStatusError     = "error"
	// EventStatusExecution rows come from the private execution stream,
	// not from inbound signals.
	EventStatusExecution = "execution"
)

// SignalEvent is the append-only record of one processed signal or one
// exchange execution report. The dashboard endpoints read these rows and
// the processor queries order_id against them for dedup.
type SignalEvent struct {
	ID         uint   `gorm:"primaryKey" json:"id"`
	StrategyID string `gorm:"size:100;index" json:"strategy_id"`
	SignalType string `gorm:"size:50" json:"signal_type"`

	// Dedup key; nil when the inbound signal carried none.
	OrderID *string `gorm:"size:255;index" json:"order_id,omitempty"`

	Symbol   string          `gorm:"size:100" json:"symbol,omitempty"`
	Side     string          `gorm:"size:20" json:"side,omitempty"`
	Quantity decimal.Decimal `gorm:"type:double precision" json:"quantity"`

	Equity      decimal.Decimal `gorm:"type:double precision" json:"equity"`
	DrawdownPct decimal.Decimal `gorm:"type:double precision" json:"drawdown_pct"`

	Status       string  `gorm:"size:50;not null" json:"status"` // see EventStatus* constants
	Reason       string  `gorm:"size:255" json:"reason,omitempty"`
	ErrorMessage *string `json:"error_message,omitempty"`

	ExchangeOrderID string          `gorm:"size:255" json:"exchange_order_id,omitempty"`
	RetCode         int             `json:"ret_code"`
	RetMsg          string          `gorm:"size:255" json:"ret_msg,omitempty"`
	RealizedPnl     decimal.Decimal `gorm:"type:double precision" json:"realized_pnl"`

	CreatedAt time.Time `gorm:"index" json:"created_at"`
}

// TableName allows you to control the exact table name for signal events.
func (SignalEvent) TableName() string {
	return "signal_events"
}
