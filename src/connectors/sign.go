package connectors

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Sign builds the Bybit v5 REST signature: hex-encoded HMAC-SHA256 over
// timestamp + apiKey + recvWindow + payload, keyed by the API secret. The
// payload must be the exact bytes transmitted (the JSON body for POST, the
// raw query string for GET) or the exchange rejects the request. Timestamp
// and receive window are passed as strings so the signed bytes and the
// header values cannot drift apart.
func Sign(apiKey, apiSecret, timestampMs, recvWindowMs, payload string) string {
	mac := hmac.New(sha256.New, []byte(apiSecret))
	mac.Write([]byte(timestampMs + apiKey + recvWindowMs + payload))
	return hex.EncodeToString(mac.Sum(nil))
}

// SignWS builds the auth signature for the private websocket stream:
// hex-encoded HMAC-SHA256 over "GET/realtime" + expires.
func SignWS(apiSecret string, expiresMs int64) string {
	mac := hmac.New(sha256.New, []byte(apiSecret))
	fmt.Fprintf(mac, "GET/realtime%d", expiresMs)
	return hex.EncodeToString(mac.Sum(nil))
}
