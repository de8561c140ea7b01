package risk

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	// MaxDrawdownPercent is the peak-to-trough decline that pauses a
	// strategy's order flow.
	MaxDrawdownPercent float64 `envconfig:"MAX_DRAWDOWN_PERCENT" default:"10.0"`
	// AutoResume clears a pause as soon as a strategy prints a new equity
	// high. Disable to require an explicit reset signal instead.
	AutoResume bool `envconfig:"MDD_AUTO_RESUME" default:"true"`
}

func GetConfig() *Config {
	var config Config
	if err := envconfig.Process("", &config); err != nil {
		panic(fmt.Errorf("error processing env config: %w", err))
	}
	return &config
}
