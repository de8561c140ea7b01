package mapper

import (
	"github.com/shopspring/decimal"
	logger "github.com/sirupsen/logrus"

	"signalrelay/src/externalmodel"
	"signalrelay/src/model"
)

// MapExecutionToEvent converts a Bybit execution report into an event log row.
// Unparseable numeric fields default to zero rather than dropping the fill.
func MapExecutionToEvent(exec *externalmodel.BybitExecution) *model.SignalEvent {
	if exec == nil {
		logger.WithField("mapper", "MapExecutionToEvent").
			Error("Nil BybitExecution received")
		return nil
	}

	parseDecimalSafe := func(field, v string) decimal.Decimal {
		if v == "" {
			logger.WithField("field", field).Debug("Empty numeric field received, defaulting to 0")
			return decimal.Zero
		}
		d, err := decimal.NewFromString(v)
		if err != nil {
			logger.WithFields(map[string]interface{}{
				"field": field,
				"value": v,
			}).WithError(err).Error("Failed to parse decimal from execution field; defaulting to 0")
			return decimal.Zero
		}
		return d
	}

	event := &model.SignalEvent{
		SignalType:      model.EventStatusExecution,
		Symbol:          exec.Symbol,
		Side:            exec.Side,
		Quantity:        parseDecimalSafe("execQty", exec.ExecQty),
		RealizedPnl:     parseDecimalSafe("closedPnl", exec.ClosedPnl),
		Status:          model.EventStatusExecution,
		ExchangeOrderID: exec.OrderID,
	}

	logger.WithFields(map[string]interface{}{
		"mapper":           "MapExecutionToEvent",
		"exchange_orderID": exec.OrderID,
		"symbol":           exec.Symbol,
		"side":             exec.Side,
	}).Debug("Execution report mapped to event")

	return event
}
