package keys

import (
	"context"
	"fmt"

	logger "github.com/sirupsen/logrus"

	"signalrelay/src/connectors"
	"signalrelay/src/notify"
	"signalrelay/src/security"
)

// Encrypt seals an exchange API key pair under CREDENTIALS_KEY and prints
// the values to paste into the _ENC environment variables. The plaintext
// never touches disk.
func Encrypt(apiKey, apiSecret string) error {
	keyEnc, err := security.EncryptString(apiKey)
	if err != nil {
		return fmt.Errorf("encrypting api key: %w", err)
	}

	secretEnc, err := security.EncryptString(apiSecret)
	if err != nil {
		return fmt.Errorf("encrypting api secret: %w", err)
	}

	fmt.Printf("EXCHANGE_API_KEY_ENC=%s\n", keyEnc)
	fmt.Printf("EXCHANGE_API_SECRET_ENC=%s\n", secretEnc)
	return nil
}

// Check builds the exchange client from the environment and runs one signed
// read-only request, so a bad key or clock skew shows up here instead of on
// the first live order. When the notifier is configured it also pushes a
// probe message.
func Check(ctx context.Context) error {
	config := GetConfig()

	client, err := connectors.NewClient()
	if err != nil {
		return fmt.Errorf("building exchange client: %w", err)
	}

	balance, err := client.GetWalletBalance(ctx, config.BalanceCoin)
	if err != nil {
		return fmt.Errorf("wallet balance check: %w", err)
	}

	logger.WithFields(logger.Fields{
		"coin":    config.BalanceCoin,
		"balance": balance.String(),
	}).Info("Exchange credentials verified")

	notifier := notify.NewNotifier()
	if !notifier.Enabled() {
		logger.Info("Notifier not configured, skipping probe")
		return nil
	}

	if err := notifier.Test(ctx); err != nil {
		return fmt.Errorf("notifier probe: %w", err)
	}
	logger.Info("Notifier probe delivered")

	return nil
}
