package mapper

import (
	"testing"

	"github.com/shopspring/decimal"

	"signalrelay/src/externalmodel"
	"signalrelay/src/model"
)

func TestMapExecutionToEvent(t *testing.T) {
	exec := &externalmodel.BybitExecution{
		Symbol:    "ETHUSDT",
		Side:      "Sell",
		OrderID:   "order-123",
		ExecID:    "exec-abc",
		ExecQty:   "0.5",
		ExecPrice: "2500.10",
		ClosedPnl: "12.34",
		ExecTime:  "1714000000000",
	}

	event := MapExecutionToEvent(exec)
	if event == nil {
		t.Fatalf("expected mapped event, got nil")
	}

	if event.Symbol != "ETHUSDT" || event.Side != "Sell" || event.ExchangeOrderID != "order-123" {
		t.Fatalf("unexpected identity fields: %+v", event)
	}
	if event.Status != model.EventStatusExecution || event.SignalType != model.EventStatusExecution {
		t.Fatalf("execution rows must be tagged as executions: %+v", event)
	}
	if !event.Quantity.Equal(decimal.RequireFromString("0.5")) || !event.RealizedPnl.Equal(decimal.RequireFromString("12.34")) {
		t.Fatalf("numeric fields not parsed correctly: %+v", event)
	}
}

func TestMapExecutionToEventDefaultsBadNumbers(t *testing.T) {
	exec := &externalmodel.BybitExecution{
		Symbol:    "ETHUSDT",
		Side:      "Buy",
		OrderID:   "order-456",
		ExecQty:   "not-a-number",
		ClosedPnl: "",
	}

	event := MapExecutionToEvent(exec)
	if event == nil {
		t.Fatalf("expected mapped event, got nil")
	}
	if !event.Quantity.IsZero() || !event.RealizedPnl.IsZero() {
		t.Fatalf("bad numeric fields must default to zero: %+v", event)
	}
}

func TestMapExecutionToEventNilInput(t *testing.T) {
	if event := MapExecutionToEvent(nil); event != nil {
		t.Fatalf("expected nil for nil input, got %+v", event)
	}
}
