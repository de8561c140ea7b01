package risk

import (
	"sort"
	"sync"

	"github.com/shopspring/decimal"
)

var oneHundred = decimal.NewFromInt(100)

// record holds the equity figures for one strategy id. All field access
// goes through mu so same-id observations apply in arrival order.
type record struct {
	mu         sync.Mutex
	peakEquity decimal.Decimal
	lastEquity decimal.Decimal
	paused     bool
}

// Tracker owns the per-strategy drawdown state machine. A strategy starts
// Active on its first equity observation and is Paused once its drawdown
// from peak equity meets the configured threshold. While paused, order
// intents are blocked; equity updates keep flowing.
type Tracker struct {
	mu      sync.RWMutex
	records map[string]*record

	threshold  decimal.Decimal
	autoResume bool
}

func NewTracker() *Tracker {
	return NewTrackerWithConfig(GetConfig())
}

func NewTrackerWithConfig(cfg *Config) *Tracker {
	return &Tracker{
		records:    make(map[string]*record),
		threshold:  decimal.NewFromFloat(cfg.MaxDrawdownPercent),
		autoResume: cfg.AutoResume,
	}
}

// EquityStatus is the result of one equity observation.
type EquityStatus struct {
	Paused      bool
	DrawdownPct decimal.Decimal
	PeakEquity  decimal.Decimal
	LastEquity  decimal.Decimal
}

// StrategyStatus is one row of Snapshot, shaped for the status endpoint.
type StrategyStatus struct {
	StrategyID  string          `json:"strategy_id"`
	PeakEquity  decimal.Decimal `json:"peak_equity"`
	LastEquity  decimal.Decimal `json:"last_equity"`
	DrawdownPct decimal.Decimal `json:"drawdown_pct"`
	Paused      bool            `json:"paused"`
}

// ObserveEquity applies one reported equity value. A new high lifts the
// peak (and, under the auto-resume policy, clears a pause); anything else
// updates the drawdown and pauses the strategy once the threshold is met.
func (t *Tracker) ObserveEquity(strategyID string, equity float64) EquityStatus {
	eq := decimal.NewFromFloat(equity)
	rec := t.getOrCreate(strategyID, eq)

	rec.mu.Lock()
	defer rec.mu.Unlock()

	if eq.GreaterThan(rec.peakEquity) {
		rec.peakEquity = eq
		rec.lastEquity = eq
		if t.autoResume {
			rec.paused = false
		}
		return t.status(rec)
	}

	rec.lastEquity = eq
	if t.drawdown(rec).GreaterThanOrEqual(t.threshold) {
		rec.paused = true
	}
	return t.status(rec)
}

// Reset forces a strategy back to Active. Equity figures are untouched, so
// the next observation still measures against the old peak.
func (t *Tracker) Reset(strategyID string) {
	rec := t.getOrCreate(strategyID, decimal.Zero)
	rec.mu.Lock()
	rec.paused = false
	rec.mu.Unlock()
}

// IsPaused reports the gate for a strategy id; unknown ids are not paused.
func (t *Tracker) IsPaused(strategyID string) bool {
	rec, ok := t.get(strategyID)
	if !ok {
		return false
	}
	rec.mu.Lock()
	defer rec.mu.Unlock()
	return rec.paused
}

// LastEquity returns the most recent reported equity for sizing.
func (t *Tracker) LastEquity(strategyID string) (decimal.Decimal, bool) {
	rec, ok := t.get(strategyID)
	if !ok {
		return decimal.Zero, false
	}
	rec.mu.Lock()
	defer rec.mu.Unlock()
	return rec.lastEquity, true
}

// Snapshot returns a consistent copy of every tracked strategy, sorted by
// id for stable output.
func (t *Tracker) Snapshot() []StrategyStatus {
	t.mu.RLock()
	ids := make([]string, 0, len(t.records))
	recs := make(map[string]*record, len(t.records))
	for id, rec := range t.records {
		ids = append(ids, id)
		recs[id] = rec
	}
	t.mu.RUnlock()

	sort.Strings(ids)
	out := make([]StrategyStatus, 0, len(ids))
	for _, id := range ids {
		rec := recs[id]
		rec.mu.Lock()
		out = append(out, StrategyStatus{
			StrategyID:  id,
			PeakEquity:  rec.peakEquity,
			LastEquity:  rec.lastEquity,
			DrawdownPct: t.drawdown(rec),
			Paused:      rec.paused,
		})
		rec.mu.Unlock()
	}
	return out
}

func (t *Tracker) get(strategyID string) (*record, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	rec, ok := t.records[strategyID]
	return rec, ok
}

func (t *Tracker) getOrCreate(strategyID string, initial decimal.Decimal) *record {
	if rec, ok := t.get(strategyID); ok {
		return rec
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if rec, ok := t.records[strategyID]; ok {
		return rec
	}
	rec := &record{peakEquity: initial, lastEquity: initial}
	t.records[strategyID] = rec
	return rec
}

// drawdown computes the peak-to-last decline in percent. A zero peak reads
// as no drawdown rather than a division by zero.
func (t *Tracker) drawdown(rec *record) decimal.Decimal {
	if rec.peakEquity.IsZero() {
		return decimal.Zero
	}
	return rec.peakEquity.Sub(rec.lastEquity).Div(rec.peakEquity).Mul(oneHundred)
}

func (t *Tracker) status(rec *record) EquityStatus {
	return EquityStatus{
		Paused:      rec.paused,
		DrawdownPct: t.drawdown(rec),
		PeakEquity:  rec.peakEquity,
		LastEquity:  rec.lastEquity,
	}
}
