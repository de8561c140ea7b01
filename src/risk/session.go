package risk

import (
	"time"

	"github.com/shopspring/decimal"
)

// Session labels the New York liquidity window an order lands in.
type Session string

const (
	SessionWeekendHoliday Session = "weekend_holiday"
	SessionDeadZone       Session = "dead_zone"
	SessionAsia           Session = "asia_session"
	SessionLondon         Session = "london_session"
	SessionUS             Session = "us_session"
	SessionDefault        Session = "default"
	SessionNoTrade        Session = "no_trade"
)

const (
	daysPerWeek          = 7
	sundayHolidayOffset  = 1
	thirdMondayOffset    = 2
	fourthThursdayOffset = 3
)

// SessionSizeConfig holds one size multiplier per session. With the no-trade
// window enabled, orders between Friday 09:00 NY and Sunday 03:00 NY (and on
// US market holidays) are zeroed instead of scaled.
type SessionSizeConfig struct {
	WeekendHolidayMultiplier decimal.Decimal
	DeadZoneMultiplier       decimal.Decimal
	AsiaMultiplier           decimal.Decimal
	LondonMultiplier         decimal.Decimal
	USMultiplier             decimal.Decimal
	DefaultMultiplier        decimal.Decimal

	EnableNoTradeWindow bool
}

// DefaultSessionSizeConfig trades full size through London, leans into the US
// session, and cuts thin-book windows hard.
func DefaultSessionSizeConfig() *SessionSizeConfig {
	return &SessionSizeConfig{
		WeekendHolidayMultiplier: decimal.NewFromFloat(0.15),
		DeadZoneMultiplier:       decimal.NewFromFloat(0.15),
		AsiaMultiplier:           decimal.NewFromFloat(0.75),
		LondonMultiplier:         decimal.NewFromFloat(1.0),
		USMultiplier:             decimal.NewFromFloat(1.25),
		DefaultMultiplier:        decimal.NewFromFloat(0.15),
		EnableNoTradeWindow:      true,
	}
}

// ApplySessionSize scales a base order size by the multiplier of the current
// NY session. Returns zero size with SessionNoTrade inside the no-trade
// window.
func ApplySessionSize(baseSize decimal.Decimal, now time.Time, cfg *SessionSizeConfig) (decimal.Decimal, Session) {
	if baseSize.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero, SessionDefault
	}

	et := easternTime(now)

	if cfg.EnableNoTradeWindow && inNoTradeWindow(et) {
		return decimal.Zero, SessionNoTrade
	}

	sess := detectSession(et)
	return baseSize.Mul(cfg.multiplier(sess)), sess
}

func (cfg *SessionSizeConfig) multiplier(s Session) decimal.Decimal {
	switch s {
	case SessionWeekendHoliday:
		return cfg.WeekendHolidayMultiplier
	case SessionDeadZone:
		return cfg.DeadZoneMultiplier
	case SessionAsia:
		return cfg.AsiaMultiplier
	case SessionLondon:
		return cfg.LondonMultiplier
	case SessionUS:
		return cfg.USMultiplier
	default:
		return cfg.DefaultMultiplier
	}
}

func easternTime(t time.Time) time.Time {
	nyLocation, err := time.LoadLocation("America/New_York")
	if err != nil {
		return t.UTC()
	}
	return t.In(nyLocation)
}

// inNoTradeWindow covers Friday 09:00 NY through Sunday 03:00 NY plus full
// holiday days. Sunday during the London open is already tradeable.
func inNoTradeWindow(t time.Time) bool {
	if t.Weekday() == time.Sunday && isLondonSession(t) {
		return t.Hour() < 3
	}

	if isHoliday(t) {
		return true
	}

	switch t.Weekday() {
	case time.Friday:
		return t.Hour() >= 9
	case time.Saturday:
		return true
	case time.Sunday:
		return t.Hour() < 3
	default:
		return false
	}
}

func detectSession(t time.Time) Session {
	if t.Weekday() == time.Sunday && isLondonSession(t) {
		return SessionLondon
	}

	if t.Weekday() == time.Saturday || t.Weekday() == time.Sunday || isHoliday(t) {
		return SessionWeekendHoliday
	}

	switch {
	case isDeadZone(t):
		return SessionDeadZone
	case isAsiaSession(t):
		return SessionAsia
	case isLondonSession(t):
		return SessionLondon
	case isUSSession(t):
		return SessionUS
	default:
		return SessionDefault
	}
}

// Hour bands are NY local time.
func isDeadZone(t time.Time) bool { return t.Hour() >= 17 && t.Hour() < 20 }

func isAsiaSession(t time.Time) bool { return t.Hour() >= 20 || t.Hour() < 3 }

func isLondonSession(t time.Time) bool { return t.Hour() >= 3 && t.Hour() < 9 }

func isUSSession(t time.Time) bool { return t.Hour() >= 9 && t.Hour() <= 17 }

// isHoliday reproduces the US market holiday calendar: fixed-date holidays
// shift to Monday when they land on a Sunday.
func isHoliday(t time.Time) bool {
	year := t.Year()

	newYearsDay := observedFixedHoliday(year, time.January, 1)
	independenceDay := observedFixedHoliday(year, time.July, 4)
	christmasDay := observedFixedHoliday(year, time.December, 25)

	mlkDay := nthMonday(year, time.January, thirdMondayOffset)
	presidentsDay := nthMonday(year, time.February, thirdMondayOffset)
	laborDay := nthMonday(year, time.September, 0)
	thanksgivingDay := nthThursday(year, time.November, fourthThursdayOffset)

	// Memorial Day is the last Monday of May.
	memorialDay := time.Date(year, time.May, 31, 0, 0, 0, 0, time.UTC)
	for memorialDay.Weekday() != time.Monday {
		memorialDay = memorialDay.AddDate(0, 0, -1)
	}

	holidays := []time.Time{
		newYearsDay,
		mlkDay,
		presidentsDay,
		memorialDay,
		independenceDay,
		laborDay,
		thanksgivingDay,
		christmasDay,
	}

	for _, d := range holidays {
		if t.Format("2006-01-02") == d.Format("2006-01-02") {
			return true
		}
	}
	return false
}

func observedFixedHoliday(year int, month time.Month, day int) time.Time {
	d := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	if d.Weekday() == time.Sunday {
		d = d.AddDate(0, 0, sundayHolidayOffset)
	}
	return d
}

func nthMonday(year int, month time.Month, weekOffset int) time.Time {
	firstOfMonth := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	offset := int(time.Monday-firstOfMonth.Weekday()+daysPerWeek) % daysPerWeek
	return firstOfMonth.AddDate(0, 0, offset+weekOffset*daysPerWeek)
}

func nthThursday(year int, month time.Month, weekOffset int) time.Time {
	firstOfMonth := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	offset := int(time.Thursday-firstOfMonth.Weekday()+daysPerWeek) % daysPerWeek
	return firstOfMonth.AddDate(0, 0, offset+weekOffset*daysPerWeek)
}
