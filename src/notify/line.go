package notify

import (
	"context"
	"fmt"

	"github.com/go-resty/resty/v2"
	logger "github.com/sirupsen/logrus"
)

// Notifier pushes operator messages to LINE. Best effort by contract: Send
// failures are logged and swallowed, never surfaced to the signal path.
type Notifier struct {
	token  string
	userID string
	log    *logger.Entry
	http   *resty.Client
}

func NewNotifier() *Notifier {
	return NewNotifierWithConfig(GetConfig())
}

func NewNotifierWithConfig(cfg *Config) *Notifier {
	return &Notifier{
		token:  cfg.ChannelToken,
		userID: cfg.UserID,
		log:    logger.WithField("component", "notify"),
		http: resty.New().
			SetBaseURL(cfg.APIURL).
			SetTimeout(cfg.Timeout),
	}
}

// Enabled reports whether the channel is configured.
func (n *Notifier) Enabled() bool {
	return n.token != "" && n.userID != ""
}

type pushRequest struct {
	To       string        `json:"to"`
	Messages []textMessage `json:"messages"`
}

type textMessage struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// Send pushes one text message, fire and forget.
func (n *Notifier) Send(ctx context.Context, message string) {
	if !n.Enabled() {
		return
	}
	if err := n.push(ctx, message); err != nil {
		n.log.WithError(err).Warn("Notification push failed")
	}
}

// Test pushes a probe message and surfaces the result, for configuration
// checks from the CLI.
func (n *Notifier) Test(ctx context.Context) error {
	if !n.Enabled() {
		return fmt.Errorf("notifier disabled: channel token or user id missing")
	}
	return n.push(ctx, "signalrelay notification test")
}

func (n *Notifier) push(ctx context.Context, message string) error {
	resp, err := n.http.R().
		SetContext(ctx).
		SetAuthToken(n.token).
		SetHeader("Content-Type", "application/json").
		SetBody(pushRequest{
			To:       n.userID,
			Messages: []textMessage{{Type: "text", Text: message}},
		}).
		Post("/v2/bot/message/push")
	if err != nil {
		return err
	}
	if resp.StatusCode() != 200 {
		return fmt.Errorf("HTTP %d: %s", resp.StatusCode(), string(resp.Body()))
	}
	return nil
}
