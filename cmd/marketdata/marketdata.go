package marketdata

import (
	"database/sql"
	"errors"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
	logger "github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/nntaoli-project/goex"
	"github.com/nntaoli-project/goex/binance"

	"signalrelay/src/model"
)

const (
	Duration1m = "1m"
	Duration1h = "1h"
)

// MarketData backfills OHLCV candles for the symbols the relay trades, so
// dashboards can chart signal events against price history.
type MarketData struct {
	Log      *logger.Entry
	DB       *gorm.DB
	Config   *Config
	exchange goex.API
}

func (m *MarketData) Start() error {
	m.Config = GetConfig()

	m.exchange = m.newBinanceInstance()

	if m.Config.AutoMode {
		if err := m.determineStartPoint(); err != nil {
			return err
		}
	}

	return m.fetchAndStore()
}

func (*MarketData) newBinanceInstance() *binance.Binance {
	apiConfig := &goex.APIConfig{
		HttpClient: http.DefaultClient,
		Endpoint:   binance.GLOBAL_API_BASE_URL,
	}
	return binance.NewWithConfig(apiConfig)
}

func (m *MarketData) fetchAndStore() error {
	series, err := m.fetchOHLCVSeries()
	if err != nil {
		return err
	}

	for i := range series {
		result := series[i]

		candle := model.Candle{
			Datetime: time.Unix(result.Timestamp, 0).UTC(),
			Open:     decimal.NewFromFloat(result.Open),
			High:     decimal.NewFromFloat(result.High),
			Low:      decimal.NewFromFloat(result.Low),
			Close:    decimal.NewFromFloat(result.Close),
			Volume:   decimal.NewFromFloat(result.Vol),
			Symbol:   result.Pair.String(),
		}

		var target interface{}
		switch m.Config.DurationStr {
		case Duration1m:
			target = candle.ToCandle1m()
		case Duration1h:
			target = candle.ToCandle1h()
		default:
			panic("invalid DURATION env var")
		}

		// Upsert: on conflict on (symbol, datetime) do update
		if err := m.DB.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "symbol"}, {Name: "datetime"}},
			DoUpdates: clause.AssignmentColumns([]string{"open", "high", "low", "close", "volume"}),
		}).Create(target).Error; err != nil {
			m.Log.WithError(err).Error("fetchAndStore, Create, ")
			return err
		}
	}

	m.Log.WithFields(logger.Fields{
		"Symbol":  m.Config.Symbol,
		"Candles": len(series),
	}).Info("OHLCV data inserted or updated in database")

	return nil
}

func (m *MarketData) determineStartPoint() error {
	m.Config.StartDt = m.Config.StartDt.Add(-m.parseDuration())
	m.Config.EndDt = time.Now()

	var latestTime *sql.NullTime
	result := m.getModel().
		Select("MAX(datetime)").
		Where("symbol = ?", m.Config.Symbol+"_"+m.Config.Quote).
		Take(&latestTime)

	m.Log.
		WithField("latestTime", latestTime).
		Info("determineStartPoint")

	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			m.Log.
				WithError(result.Error).
				WithField("StartDt", m.Config.StartDt.String()).
				WithField("EndDt", m.Config.EndDt.String()).
				Error("no records found, start from the configured StartDt")
		} else {
			m.Log.
				WithError(result.Error).
				Error("Failed to query latest datetime")
			return result.Error
		}
	}

	if latestTime.Valid {
		// Re-fetch the last stored candle too, in case it was still open.
		m.Config.StartDt = latestTime.Time.Add(-m.parseDuration())
		m.Log.
			WithField("StartDt", m.Config.StartDt.String()).
			WithField("EndDt", m.Config.EndDt.String()).
			Info("determineStartPoint valid date found")
	} else {
		err := errors.New("no existing MAX(datetime) found")
		m.Log.
			WithError(err).
			WithField("StartDt", m.Config.StartDt.String()).
			WithField("EndDt", m.Config.EndDt.String()).
			Error("determineStartPoint invalid date found")
	}

	return nil
}

func (m *MarketData) fetchOHLCVSeries() ([]goex.Kline, error) {
	targetSymbol := goex.NewCurrencyPair(goex.Currency{Symbol: m.Config.Symbol}, goex.Currency{Symbol: m.Config.Quote})

	const millis = 1000
	klines, err := m.exchange.GetKlineRecords(
		targetSymbol,
		m.parseDurationToGoex(),
		m.Config.Limit,
		goex.OptionalParameter{}.
			Optional("startTime", m.Config.StartDt.Unix()*millis).
			Optional("endTime", m.Config.EndDt.Unix()*millis),
	)
	if err != nil {
		return nil, err
	}

	return klines, nil
}

func (m *MarketData) parseDuration() time.Duration {
	var duration time.Duration
	switch m.Config.DurationStr {
	case Duration1m:
		duration = time.Minute
	case Duration1h:
		duration = time.Hour
	default:
		panic("invalid DURATION env var")
	}
	return duration
}

func (m *MarketData) parseDurationToGoex() goex.KlinePeriod {
	var duration goex.KlinePeriod
	switch m.Config.DurationStr {
	case Duration1m:
		duration = goex.KLINE_PERIOD_1MIN
	case Duration1h:
		duration = goex.KLINE_PERIOD_1H
	default:
		panic("invalid DURATION env var")
	}
	return duration
}

func (m *MarketData) getModel() (tx *gorm.DB) {
	switch m.Config.DurationStr {
	case Duration1m:
		tx = m.DB.Model(&model.Candle1m{})
	case Duration1h:
		tx = m.DB.Model(&model.Candle1h{})
	default:
		panic("getModel, invalid DURATION")
	}
	return tx
}
