package connectors

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	APIKey    string `envconfig:"EXCHANGE_API_KEY"`
	APISecret string `envconfig:"EXCHANGE_API_SECRET"`
	// Encrypted variants take precedence over the plaintext ones when set;
	// they are decrypted with the credentials key at client construction.
	APIKeyEnc    string `envconfig:"EXCHANGE_API_KEY_ENC"`
	APISecretEnc string `envconfig:"EXCHANGE_API_SECRET_ENC"`

	BaseURL string `envconfig:"EXCHANGE_API_URL" default:"https://api.bybit.com"`
	// Timeout bounds one order attempt end to end, independent of the
	// receive window the exchange applies to the signed timestamp.
	Timeout      time.Duration `envconfig:"EXCHANGE_API_TIMEOUT" default:"10s"`
	RecvWindowMs int           `envconfig:"RECEIVE_WINDOW_MS" default:"5000"`

	WSURL         string `envconfig:"EXCHANGE_WS_URL" default:"wss://stream.bybit.com/v5/private"`
	StreamEnabled bool   `envconfig:"EXECUTION_STREAM_ENABLED" default:"false"`
}

func GetConfig() *Config {
	var config Config
	if err := envconfig.Process("", &config); err != nil {
		panic(fmt.Errorf("error processing env config: %w", err))
	}
	return &config
}
