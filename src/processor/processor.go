package processor

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
	logger "github.com/sirupsen/logrus"

	"signalrelay/src/connectors"
	"signalrelay/src/model"
	"signalrelay/src/risk"
	"signalrelay/src/security"
	"signalrelay/src/trace"
)

// Reason strings reported to the caller alongside the outcome status.
const (
	ReasonInvalidSecret = "invalid secret"
	ReasonMDDStop       = "MDD stop active"
	ReasonDuplicate     = "duplicate order_id"
	ReasonTooSmall      = "quantity zero or below minimum"
	ReasonNoTrade       = "no-trade window"
)

var oneHundred = decimal.NewFromInt(100)

// equityTracker is the slice of risk.Tracker the processor needs.
type equityTracker interface {
	ObserveEquity(strategyID string, equity float64) risk.EquityStatus
	Reset(strategyID string)
	IsPaused(strategyID string) bool
	LastEquity(strategyID string) (decimal.Decimal, bool)
}

// orderPlacer is the slice of connectors.Client the processor needs.
type orderPlacer interface {
	PlaceMarketOrder(ctx context.Context, symbol, side string, qty decimal.Decimal) (*connectors.OrderResult, error)
}

// eventStore is the slice of the event repository the processor needs.
type eventStore interface {
	Append(ctx context.Context, event *model.SignalEvent) error
	ExistsByOrderID(ctx context.Context, orderID string) (bool, error)
}

// notifier is a best-effort operator side channel. Failures never reach
// the webhook caller.
type notifier interface {
	Send(ctx context.Context, message string)
}

// Outcome is the structured result returned to the webhook caller.
// HTTPStatus is carried out-of-band for the handler.
type Outcome struct {
	HTTPStatus int `json:"-"`

	Status     string `json:"status"`
	StrategyID string `json:"strategy_id,omitempty"`
	Reason     string `json:"reason,omitempty"`

	Drawdown *decimal.Decimal `json:"drawdown,omitempty"`

	Symbol          string           `json:"symbol,omitempty"`
	Side            string           `json:"side,omitempty"`
	Quantity        *decimal.Decimal `json:"quantity,omitempty"`
	ExchangeOrderID string           `json:"exchange_order_id,omitempty"`

	Error string `json:"error,omitempty"`
}

// Processor runs inbound signals through secret check, dedup, the drawdown
// gate and finally order placement. One instance serves all strategies.
type Processor struct {
	secret    string
	precision int32
	minQty    decimal.Decimal

	tracker  equityTracker
	orders   orderPlacer
	events   eventStore
	notify   notifier
	sessions *risk.SessionSizeConfig // nil disables session scaling

	log *logger.Entry
}

func New(tracker equityTracker, orders orderPlacer, events eventStore, notify notifier) *Processor {
	return NewWithConfig(GetConfig(), security.GetConfig().WebhookSecret, tracker, orders, events, notify)
}

func NewWithConfig(
	cfg *Config,
	webhookSecret string,
	tracker equityTracker,
	orders orderPlacer,
	events eventStore,
	notify notifier,
) *Processor {
	p := &Processor{
		secret:    webhookSecret,
		precision: cfg.QtyPrecision,
		minQty:    cfg.MinOrderQty,
		tracker:   tracker,
		orders:    orders,
		events:    events,
		notify:    notify,
		log:       logger.WithField("component", "processor"),
	}
	if cfg.SessionSizingEnabled {
		p.sessions = risk.DefaultSessionSizeConfig()
	}
	return p
}

// WithSessionSizing overrides the session multipliers. Mostly for tests.
func (p *Processor) WithSessionSizing(cfg *risk.SessionSizeConfig) *Processor {
	p.sessions = cfg
	return p
}

// Handle runs one raw webhook payload through the pipeline.
//
// Nothing in here panics or retries: every failure surfaces as an Outcome
// and the process keeps serving the next signal.
func (p *Processor) Handle(ctx context.Context, raw []byte) Outcome {
	env, err := model.DecodeEnvelope(raw)
	if err != nil {
		p.logFor(ctx).WithError(err).Warn("Rejected undecodable signal")
		return Outcome{
			HTTPStatus: http.StatusBadRequest,
			Status:     model.EventStatusError,
			Reason:     err.Error(),
		}
	}

	log := p.logFor(ctx).WithFields(map[string]interface{}{
		"strategy_id": env.StrategyID,
		"signal_type": env.SignalType,
	})

	if !security.SecureCompare(env.Secret, p.secret) {
		log.Warn("Rejected signal with invalid secret")
		return Outcome{
			HTTPStatus: http.StatusUnauthorized,
			Status:     model.EventStatusBlocked,
			StrategyID: env.StrategyID,
			Reason:     ReasonInvalidSecret,
		}
	}

	// Nothing unauthenticated gets past this line, so everything below is
	// also recorded in the event log.

	if env.OrderID != "" {
		seen, err := p.events.ExistsByOrderID(ctx, env.OrderID)
		if err != nil {
			log.WithError(err).Error("Dedup lookup failed")
			// Fail closed: placing a possible duplicate market order is
			// worse than dropping one signal.
			return Outcome{
				HTTPStatus: http.StatusInternalServerError,
				Status:     model.EventStatusError,
				StrategyID: env.StrategyID,
				Reason:     "duplicate check failed",
			}
		}
		if seen {
			log.WithField("order_id", env.OrderID).Info("Dropping duplicate signal")
			out := Outcome{
				HTTPStatus: http.StatusOK,
				Status:     model.EventStatusDuplicate,
				StrategyID: env.StrategyID,
				Reason:     ReasonDuplicate,
			}
			p.append(ctx, &model.SignalEvent{
				StrategyID: env.StrategyID,
				SignalType: env.SignalType,
				OrderID:    orderIDPtr(env.OrderID),
				Status:     model.EventStatusDuplicate,
				Reason:     ReasonDuplicate,
			})
			return out
		}
	}

	sig, err := env.Signal()
	if err != nil {
		log.WithError(err).Warn("Rejected invalid signal")
		out := Outcome{
			HTTPStatus: http.StatusBadRequest,
			Status:     model.EventStatusError,
			StrategyID: env.StrategyID,
			Reason:     err.Error(),
		}
		p.append(ctx, &model.SignalEvent{
			StrategyID: env.StrategyID,
			SignalType: env.SignalType,
			OrderID:    orderIDPtr(env.OrderID),
			Status:     model.EventStatusError,
			Reason:     err.Error(),
		})
		return out
	}

	switch s := sig.(type) {
	case model.EquityUpdate:
		return p.handleEquityUpdate(ctx, env, s)
	case model.ResetRequest:
		return p.handleReset(ctx, env, s)
	case model.OrderIntent:
		return p.handleOrder(ctx, env, s)
	default:
		log.Error("Unhandled signal variant")
		return Outcome{
			HTTPStatus: http.StatusInternalServerError,
			Status:     model.EventStatusError,
			StrategyID: env.StrategyID,
			Reason:     "unhandled signal variant",
		}
	}
}

func (p *Processor) handleEquityUpdate(ctx context.Context, env *model.Envelope, sig model.EquityUpdate) Outcome {
	st := p.tracker.ObserveEquity(sig.StrategyID, sig.Equity)

	status := model.EventStatusOK
	if st.Paused {
		status = model.EventStatusPaused
	}

	p.logFor(ctx).WithFields(map[string]interface{}{
		"strategy_id": sig.StrategyID,
		"equity":      sig.Equity,
		"drawdown":    st.DrawdownPct,
		"paused":      st.Paused,
	}).Info("Equity observed")

	p.append(ctx, &model.SignalEvent{
		StrategyID:  sig.StrategyID,
		SignalType:  env.SignalType,
		OrderID:     orderIDPtr(env.OrderID),
		Equity:      decimal.NewFromFloat(sig.Equity),
		DrawdownPct: st.DrawdownPct,
		Status:      status,
	})

	if st.Paused {
		p.notify.Send(ctx, fmt.Sprintf(
			"[%s] trading paused: drawdown %s%% from peak %s",
			sig.StrategyID, st.DrawdownPct.StringFixed(2), st.PeakEquity.String(),
		))
	}

	dd := st.DrawdownPct
	return Outcome{
		HTTPStatus: http.StatusOK,
		Status:     status,
		StrategyID: sig.StrategyID,
		Drawdown:   &dd,
	}
}

func (p *Processor) handleReset(ctx context.Context, env *model.Envelope, sig model.ResetRequest) Outcome {
	p.tracker.Reset(sig.StrategyID)

	p.logFor(ctx).WithField("strategy_id", sig.StrategyID).Info("Strategy reset to active")

	p.append(ctx, &model.SignalEvent{
		StrategyID: sig.StrategyID,
		SignalType: env.SignalType,
		OrderID:    orderIDPtr(env.OrderID),
		Status:     model.EventStatusReset,
	})

	p.notify.Send(ctx, fmt.Sprintf("[%s] MDD stop cleared by manual reset", sig.StrategyID))

	return Outcome{
		HTTPStatus: http.StatusOK,
		Status:     model.EventStatusReset,
		StrategyID: sig.StrategyID,
	}
}

func (p *Processor) handleOrder(ctx context.Context, env *model.Envelope, sig model.OrderIntent) Outcome {
	log := p.logFor(ctx).WithFields(map[string]interface{}{
		"strategy_id": sig.StrategyID,
		"signal_type": sig.SignalType,
		"symbol":      sig.Symbol,
		"side":        sig.Side,
	})

	if p.tracker.IsPaused(sig.StrategyID) {
		log.Warn("Order blocked by MDD stop")
		p.append(ctx, &model.SignalEvent{
			StrategyID: sig.StrategyID,
			SignalType: sig.SignalType,
			OrderID:    orderIDPtr(env.OrderID),
			Symbol:     sig.Symbol,
			Side:       sig.Side,
			Status:     model.EventStatusBlocked,
			Reason:     ReasonMDDStop,
		})
		return Outcome{
			HTTPStatus: http.StatusOK,
			Status:     model.EventStatusBlocked,
			StrategyID: sig.StrategyID,
			Reason:     ReasonMDDStop,
		}
	}

	qty, err := p.computeQuantity(sig)
	if err != nil {
		log.WithError(err).Warn("Rejected unsizable order signal")
		p.append(ctx, &model.SignalEvent{
			StrategyID: sig.StrategyID,
			SignalType: sig.SignalType,
			OrderID:    orderIDPtr(env.OrderID),
			Symbol:     sig.Symbol,
			Side:       sig.Side,
			Status:     model.EventStatusError,
			Reason:     err.Error(),
		})
		return Outcome{
			HTTPStatus: http.StatusBadRequest,
			Status:     model.EventStatusError,
			StrategyID: sig.StrategyID,
			Reason:     err.Error(),
		}
	}

	if p.sessions != nil {
		scaled, session := risk.ApplySessionSize(qty, time.Now(), p.sessions)
		if session == risk.SessionNoTrade {
			log.WithField("session", session).Info("Skipping order inside no-trade window")
			p.append(ctx, &model.SignalEvent{
				StrategyID: sig.StrategyID,
				SignalType: sig.SignalType,
				OrderID:    orderIDPtr(env.OrderID),
				Symbol:     sig.Symbol,
				Side:       sig.Side,
				Quantity:   qty,
				Status:     model.EventStatusSkipped,
				Reason:     ReasonNoTrade,
			})
			return Outcome{
				HTTPStatus: http.StatusOK,
				Status:     model.EventStatusSkipped,
				StrategyID: sig.StrategyID,
				Reason:     ReasonNoTrade,
				Quantity:   &qty,
			}
		}
		log = log.WithField("session", session)
		qty = scaled
	}

	if !qty.IsPositive() || qty.LessThan(p.minQty) {
		log.WithField("qty", qty).Info("Skipping order below exchange minimum")
		p.append(ctx, &model.SignalEvent{
			StrategyID: sig.StrategyID,
			SignalType: sig.SignalType,
			OrderID:    orderIDPtr(env.OrderID),
			Symbol:     sig.Symbol,
			Side:       sig.Side,
			Quantity:   qty,
			Status:     model.EventStatusSkipped,
			Reason:     ReasonTooSmall,
		})
		return Outcome{
			HTTPStatus: http.StatusOK,
			Status:     model.EventStatusSkipped,
			StrategyID: sig.StrategyID,
			Reason:     ReasonTooSmall,
			Quantity:   &qty,
		}
	}

	result, err := p.orders.PlaceMarketOrder(ctx, sig.Symbol, sig.Side, qty)
	if err != nil {
		msg := err.Error()
		log.WithError(err).Error("Order placement failed")

		event := &model.SignalEvent{
			StrategyID:   sig.StrategyID,
			SignalType:   sig.SignalType,
			OrderID:      orderIDPtr(env.OrderID),
			Symbol:       sig.Symbol,
			Side:         sig.Side,
			Quantity:     qty,
			Status:       model.EventStatusError,
			ErrorMessage: &msg,
		}
		var orderErr *connectors.OrderError
		if errors.As(err, &orderErr) {
			event.RetCode = orderErr.RetCode
			event.Reason = string(orderErr.Kind)
		}
		p.append(ctx, event)

		p.notify.Send(ctx, fmt.Sprintf(
			"[%s] order failed: %s %s qty=%s: %s",
			sig.StrategyID, sig.Side, sig.Symbol, qty.String(), msg,
		))

		return Outcome{
			HTTPStatus: http.StatusBadGateway,
			Status:     model.EventStatusError,
			StrategyID: sig.StrategyID,
			Symbol:     sig.Symbol,
			Side:       sig.Side,
			Quantity:   &qty,
			Error:      msg,
		}
	}

	log.WithFields(map[string]interface{}{
		"qty":               qty,
		"exchange_order_id": result.OrderID,
	}).Info("Order placed")

	p.append(ctx, &model.SignalEvent{
		StrategyID:      sig.StrategyID,
		SignalType:      sig.SignalType,
		OrderID:         orderIDPtr(env.OrderID),
		Symbol:          sig.Symbol,
		Side:            sig.Side,
		Quantity:        qty,
		Status:          model.EventStatusSuccess,
		ExchangeOrderID: result.OrderID,
		RetCode:         result.RetCode,
		RetMsg:          result.RetMsg,
	})

	p.notify.Send(ctx, fmt.Sprintf(
		"[%s] %s %s qty=%s placed (order %s)",
		sig.StrategyID, sig.Side, sig.Symbol, qty.String(), result.OrderID,
	))

	return Outcome{
		HTTPStatus:      http.StatusOK,
		Status:          model.EventStatusSuccess,
		StrategyID:      sig.StrategyID,
		Symbol:          sig.Symbol,
		Side:            sig.Side,
		Quantity:        &qty,
		ExchangeOrderID: result.OrderID,
	}
}

// computeQuantity sizes the order. An explicit position size always wins;
// otherwise the size is equity * capital_percent / 100 / price rounded to
// the configured precision.
func (p *Processor) computeQuantity(sig model.OrderIntent) (decimal.Decimal, error) {
	if sig.PositionSize > 0 {
		return decimal.NewFromFloat(sig.PositionSize), nil
	}

	if sig.Price <= 0 || sig.CapitalPercent <= 0 {
		return decimal.Zero, fmt.Errorf("position_size or price and capital_percent are required for sizing")
	}

	equity, ok := p.tracker.LastEquity(sig.StrategyID)
	if !ok {
		return decimal.Zero, fmt.Errorf("no equity on record for strategy %s", sig.StrategyID)
	}

	qty := equity.
		Mul(decimal.NewFromFloat(sig.CapitalPercent)).
		Div(oneHundred).
		Div(decimal.NewFromFloat(sig.Price)).
		Round(p.precision)

	return qty, nil
}

// append records an outcome, best effort. A failing event store must never
// change what the caller sees.
func (p *Processor) append(ctx context.Context, event *model.SignalEvent) {
	if err := p.events.Append(ctx, event); err != nil {
		p.logFor(ctx).WithError(err).WithFields(map[string]interface{}{
			"strategy_id": event.StrategyID,
			"status":      event.Status,
		}).Error("Failed to append signal event")
	}
}

// logFor folds the request correlation id, when present, into the entry.
func (p *Processor) logFor(ctx context.Context) *logger.Entry {
	if id, ok := trace.CorrelationIDFromContext(ctx); ok {
		return p.log.WithField("correlation_id", id)
	}
	return p.log
}

func orderIDPtr(orderID string) *string {
	if orderID == "" {
		return nil
	}
	return &orderID
}
