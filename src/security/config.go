package security

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	// WebhookSecret is the shared secret every inbound signal must carry.
	WebhookSecret string `envconfig:"WEBHOOK_SECRET"`
	// CredentialsKey is the base64-encoded 32-byte key used to encrypt
	// exchange credentials at rest. The default is a development key.
	CredentialsKey string `envconfig:"CREDENTIALS_KEY" default:"GcwbTLP1ggRN45exC1kVYrEscZhRPOgOcjzeAefz8jo="`
}

func GetConfig() Config {
	var config Config
	if err := envconfig.Process("", &config); err != nil {
		panic(fmt.Errorf("error processing env config: %w", err))
	}
	return config
}
