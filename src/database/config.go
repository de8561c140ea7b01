package database

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	// DatabaseURL selects PostgreSQL when set. When empty the event store
	// falls back to a local SQLite file at EventDBPath.
	DatabaseURL  string `envconfig:"DATABASE_URL" default:""`
	EventDBPath  string `envconfig:"EVENT_DB_PATH" default:"signalrelay.db"`
	GormLogLevel int    `envconfig:"GORM_LOG_LEVEL" default:"2"`
}

func GetConfig() Config {
	var config Config
	if err := envconfig.Process("", &config); err != nil {
		panic(fmt.Errorf("error processing env config: %w", err))
	}
	return config
}
