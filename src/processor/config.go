package processor

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
	"github.com/shopspring/decimal"
)

type Config struct {
	// QtyPrecision is the number of decimal places the computed quantity is
	// rounded to before it goes on the wire.
	QtyPrecision int32           `envconfig:"QTY_PRECISION" default:"3"`
	MinOrderQty  decimal.Decimal `envconfig:"MIN_ORDER_QTY" default:"0.001"`
	// SessionSizingEnabled scales order quantities by the NY liquidity
	// session and blocks the weekend no-trade window. Off by default so
	// sizing stays exactly equity * capital_percent / 100 / price.
	SessionSizingEnabled bool `envconfig:"SESSION_SIZING_ENABLED" default:"false"`
}

func GetConfig() *Config {
	var config Config
	if err := envconfig.Process("", &config); err != nil {
		panic(fmt.Errorf("error processing env config: %w", err))
	}
	return &config
}
