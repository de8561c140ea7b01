package notify

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-resty/resty/v2"
	logrustest "github.com/sirupsen/logrus/hooks/test"
)

// Test index:
//
//  1. TestNotifier_Send               - happy path: path, bearer token and body
//  2. TestNotifier_SendSwallowsErrors - HTTP 500 does not panic or propagate
//  3. TestNotifier_DisabledIsNoop     - missing config sends nothing
//  4. TestNotifier_Test               - probe surfaces errors

func newTestNotifier(baseURL, token, userID string) *Notifier {
	log, _ := logrustest.NewNullLogger()
	return &Notifier{
		token:  token,
		userID: userID,
		log:    log.WithField("component", "notify"),
		http: resty.New().
			SetBaseURL(baseURL).
			SetTimeout(2 * time.Second),
	}
}

func TestNotifier_Send(t *testing.T) {
	var gotPath, gotAuth string
	var gotBody []byte

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		gotBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	n := newTestNotifier(server.URL, "channel-token", "U1234")
	n.Send(context.Background(), "order placed: ETHUSDT Buy 0.05")

	if gotPath != "/v2/bot/message/push" {
		t.Fatalf("expected push path, got %q", gotPath)
	}
	if gotAuth != "Bearer channel-token" {
		t.Fatalf("expected bearer auth header, got %q", gotAuth)
	}

	var req pushRequest
	if err := json.Unmarshal(gotBody, &req); err != nil {
		t.Fatalf("failed to decode request body: %v", err)
	}
	if req.To != "U1234" {
		t.Fatalf("expected recipient U1234, got %q", req.To)
	}
	if len(req.Messages) != 1 || req.Messages[0].Type != "text" {
		t.Fatalf("expected a single text message, got %+v", req.Messages)
	}
	if req.Messages[0].Text != "order placed: ETHUSDT Buy 0.05" {
		t.Fatalf("unexpected message text: %q", req.Messages[0].Text)
	}
}

func TestNotifier_SendSwallowsErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"message":"Internal error"}`))
	}))
	defer server.Close()

	n := newTestNotifier(server.URL, "channel-token", "U1234")

	// Must not panic and must not surface the failure.
	n.Send(context.Background(), "equity update")
}

func TestNotifier_DisabledIsNoop(t *testing.T) {
	requests := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	n := newTestNotifier(server.URL, "", "")
	if n.Enabled() {
		t.Fatal("expected notifier without credentials to be disabled")
	}
	n.Send(context.Background(), "should not be sent")

	if requests != 0 {
		t.Fatalf("expected no requests from a disabled notifier, got %d", requests)
	}
}

func TestNotifier_Test(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"message":"Invalid token"}`))
	}))
	defer server.Close()

	n := newTestNotifier(server.URL, "bad-token", "U1234")
	if err := n.Test(context.Background()); err == nil {
		t.Fatal("expected an error from a rejected probe")
	}

	disabled := newTestNotifier(server.URL, "", "")
	if err := disabled.Test(context.Background()); err == nil {
		t.Fatal("expected an error from a disabled notifier probe")
	}
}
