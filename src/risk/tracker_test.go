package risk

import (
	"testing"

	"github.com/shopspring/decimal"
)

func newTestTracker(thresholdPct float64, autoResume bool) *Tracker {
	return NewTrackerWithConfig(&Config{
		MaxDrawdownPercent: thresholdPct,
		AutoResume:         autoResume,
	})
}

func TestObserveEquity_IncreasingEquityNeverPauses(t *testing.T) {
	tracker := newTestTracker(10.0, true)

	for _, equity := range []float64{100, 150, 151, 200.5, 1000} {
		st := tracker.ObserveEquity("S1", equity)
		if st.Paused {
			t.Fatalf("paused at equity %v", equity)
		}
		if !st.DrawdownPct.IsZero() {
			t.Fatalf("expected zero drawdown at equity %v, got %s", equity, st.DrawdownPct)
		}
	}
}

func TestObserveEquity_DrawdownAndThreshold(t *testing.T) {
	tests := []struct {
		name         string
		sequence     []float64
		wantDrawdown decimal.Decimal
		wantPaused   bool
	}{
		{
			name:         "below threshold stays active",
			sequence:     []float64{100, 95},
			wantDrawdown: decimal.RequireFromString("5"),
			wantPaused:   false,
		},
		{
			name:         "exactly at threshold pauses",
			sequence:     []float64{100, 90},
			wantDrawdown: decimal.RequireFromString("10"),
			wantPaused:   true,
		},
		{
			name:         "drop to 89 from peak 100 is an 11 percent drawdown",
			sequence:     []float64{100, 97, 89},
			wantDrawdown: decimal.RequireFromString("11"),
			wantPaused:   true,
		},
		{
			name:         "recovery below peak stays paused",
			sequence:     []float64{100, 85, 99},
			wantDrawdown: decimal.RequireFromString("1"),
			wantPaused:   true,
		},
		{
			name:         "zero peak reads as zero drawdown",
			sequence:     []float64{0, 0},
			wantDrawdown: decimal.Zero,
			wantPaused:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tracker := newTestTracker(10.0, true)

			var st EquityStatus
			for _, equity := range tt.sequence {
				st = tracker.ObserveEquity("S1", equity)
			}
			if !st.DrawdownPct.Equal(tt.wantDrawdown) {
				t.Fatalf("drawdown = %s, want %s", st.DrawdownPct, tt.wantDrawdown)
			}
			if st.Paused != tt.wantPaused {
				t.Fatalf("paused = %v, want %v", st.Paused, tt.wantPaused)
			}
		})
	}
}

func TestObserveEquity_NewHighAutoResumes(t *testing.T) {
	tracker := newTestTracker(10.0, true)

	tracker.ObserveEquity("S1", 100)
	if st := tracker.ObserveEquity("S1", 85); !st.Paused {
		t.Fatal("expected pause at 15 percent drawdown")
	}

	st := tracker.ObserveEquity("S1", 120)
	if st.Paused {
		t.Fatal("expected new equity high to resume the strategy")
	}
	if !st.PeakEquity.Equal(decimal.RequireFromString("120")) {
		t.Fatalf("peak = %s, want 120", st.PeakEquity)
	}
}

func TestObserveEquity_NewHighKeepsPauseWithoutAutoResume(t *testing.T) {
	tracker := newTestTracker(10.0, false)

	tracker.ObserveEquity("S1", 100)
	tracker.ObserveEquity("S1", 85)

	if st := tracker.ObserveEquity("S1", 120); !st.Paused {
		t.Fatal("expected pause to survive a new high when auto-resume is off")
	}

	tracker.Reset("S1")
	if tracker.IsPaused("S1") {
		t.Fatal("expected reset to clear the pause")
	}
}

func TestReset_ForcesActiveAndKeepsEquity(t *testing.T) {
	tracker := newTestTracker(10.0, true)

	tracker.ObserveEquity("S1", 100)
	tracker.ObserveEquity("S1", 85)
	if !tracker.IsPaused("S1") {
		t.Fatal("expected strategy to be paused")
	}

	tracker.Reset("S1")
	if tracker.IsPaused("S1") {
		t.Fatal("expected strategy to be active after reset")
	}

	last, ok := tracker.LastEquity("S1")
	if !ok || !last.Equal(decimal.RequireFromString("85")) {
		t.Fatalf("last equity = %s (ok=%v), want 85", last, ok)
	}

	// The old peak still applies: dropping further re-pauses immediately.
	if st := tracker.ObserveEquity("S1", 84); !st.Paused {
		t.Fatal("expected re-pause against the untouched peak")
	}
}

func TestIsPausedAndLastEquity_UnknownStrategy(t *testing.T) {
	tracker := newTestTracker(10.0, true)

	if tracker.IsPaused("missing") {
		t.Fatal("unknown strategy must not be paused")
	}
	if _, ok := tracker.LastEquity("missing"); ok {
		t.Fatal("unknown strategy must not report equity")
	}
}

func TestSnapshot_SortedAndConsistent(t *testing.T) {
	tracker := newTestTracker(10.0, true)

	tracker.ObserveEquity("S2", 200)
	tracker.ObserveEquity("S1", 100)
	tracker.ObserveEquity("S1", 85)

	snap := tracker.Snapshot()
	if len(snap) != 2 {
		t.Fatalf("expected 2 strategies, got %d", len(snap))
	}
	if snap[0].StrategyID != "S1" || snap[1].StrategyID != "S2" {
		t.Fatalf("expected snapshot sorted by id, got %q then %q", snap[0].StrategyID, snap[1].StrategyID)
	}
	if !snap[0].Paused || !snap[0].DrawdownPct.Equal(decimal.RequireFromString("15")) {
		t.Fatalf("S1 snapshot = %+v, want paused with 15 percent drawdown", snap[0])
	}
	if snap[1].Paused || !snap[1].LastEquity.Equal(decimal.RequireFromString("200")) {
		t.Fatalf("S2 snapshot = %+v, want active at 200", snap[1])
	}
}
