package notify

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	// ChannelToken and UserID configure LINE push messages. Leaving the
	// token empty disables the notifier.
	ChannelToken string        `envconfig:"LINE_CHANNEL_TOKEN"`
	UserID       string        `envconfig:"LINE_USER_ID"`
	APIURL       string        `envconfig:"LINE_API_URL" default:"https://api.line.me"`
	Timeout      time.Duration `envconfig:"LINE_TIMEOUT" default:"5s"`
}

func GetConfig() *Config {
	var config Config
	if err := envconfig.Process("", &config); err != nil {
		panic(fmt.Errorf("error processing env config: %w", err))
	}
	return &config
}
