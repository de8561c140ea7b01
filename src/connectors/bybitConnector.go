// REST API CLIENT FOR BYBIT V5 USDT-PERPETUAL TRADING
// RESTY ONLY, SINGLE ATTEMPT PER ORDER
package connectors

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/shopspring/decimal"
	logger "github.com/sirupsen/logrus"

	"signalrelay/src/security"
)

// -----------------------------
// API RESPONSE WRAPPER
// -----------------------------
type APIResponse struct {
	RetCode int             `json:"retCode"`
	RetMsg  string          `json:"retMsg"`
	Result  json.RawMessage `json:"result"`
	Time    int64           `json:"time"`
}

// orderCreateRequest is the exact transmitted body. Field order matters:
// the signature is computed over these bytes, so the struct order is the
// canonical order and qty travels as a string per exchange convention.
type orderCreateRequest struct {
	Category    string `json:"category"`
	Symbol      string `json:"symbol"`
	Side        string `json:"side"`
	OrderType   string `json:"orderType"`
	Qty         string `json:"qty"`
	TimeInForce string `json:"timeInForce"`
}

// OrderResult is the accepted-order acknowledgement.
type OrderResult struct {
	OrderID     string `json:"orderId"`
	OrderLinkID string `json:"orderLinkId"`
	RetCode     int    `json:"-"`
	RetMsg      string `json:"-"`
}

// -----------------------------
// ORDER ERRORS
// -----------------------------
type OrderErrorKind string

const (
	OrderErrorNetwork  OrderErrorKind = "network"
	OrderErrorTimeout  OrderErrorKind = "timeout"
	OrderErrorRejected OrderErrorKind = "exchange_rejected"
)

// OrderError carries the failure class so callers can record it without
// string-matching. Timeouts are failures, never treated as placed orders.
type OrderError struct {
	Kind    OrderErrorKind
	RetCode int
	Detail  string
}

func (e *OrderError) Error() string {
	if e.RetCode != 0 {
		return fmt.Sprintf("%s: retCode %d: %s", e.Kind, e.RetCode, e.Detail)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Detail)
}

func classifyTransportError(err error) *OrderError {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return &OrderError{Kind: OrderErrorTimeout, Detail: err.Error()}
	}
	return &OrderError{Kind: OrderErrorNetwork, Detail: err.Error()}
}

// -----------------------------
// AUTHENTICATED CLIENT
// -----------------------------
type Client struct {
	apiKey     string
	apiSecret  string
	baseURL    string
	recvWindow string
	http       *resty.Client
}

func NewClient() (*Client, error) {
	return NewClientWithConfig(GetConfig())
}

func NewClientWithConfig(cfg *Config) (*Client, error) {
	apiKey, apiSecret, err := resolveCredentials(cfg)
	if err != nil {
		return nil, err
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "https://api-testnet.bybit.com"
		logger.Warnf("No base URL provided, using default: %s", baseURL)
	}

	// No retry conditions here: a timed-out market order must not be sent
	// twice. Failures surface to the caller as OrderError.
	httpClient := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(cfg.Timeout).
		SetRetryCount(0)

	return &Client{
		apiKey:     apiKey,
		apiSecret:  apiSecret,
		baseURL:    baseURL,
		recvWindow: strconv.Itoa(cfg.RecvWindowMs),
		http:       httpClient,
	}, nil
}

// resolveCredentials prefers the encrypted credential pair when configured.
func resolveCredentials(cfg *Config) (string, string, error) {
	apiKey, apiSecret := cfg.APIKey, cfg.APISecret
	if cfg.APIKeyEnc != "" {
		k, err := security.DecryptString(cfg.APIKeyEnc)
		if err != nil {
			return "", "", fmt.Errorf("decrypting api key: %w", err)
		}
		apiKey = k
	}
	if cfg.APISecretEnc != "" {
		s, err := security.DecryptString(cfg.APISecretEnc)
		if err != nil {
			return "", "", fmt.Errorf("decrypting api secret: %w", err)
		}
		apiSecret = s
	}
	return apiKey, apiSecret, nil
}

func (c *Client) doRequest(ctx context.Context, method, path, query string, body []byte) (*APIResponse, error) {
	ts := strconv.FormatInt(time.Now().UnixMilli(), 10)

	payload := query
	if body != nil {
		payload = string(body)
	}
	sig := Sign(c.apiKey, c.apiSecret, ts, c.recvWindow, payload)

	req := c.http.R().
		SetContext(ctx).
		SetHeader("X-BAPI-API-KEY", c.apiKey).
		SetHeader("X-BAPI-TIMESTAMP", ts).
		SetHeader("X-BAPI-RECV-WINDOW", c.recvWindow).
		SetHeader("X-BAPI-SIGN-TYPE", "2").
		SetHeader("X-BAPI-SIGN", sig)

	if query != "" {
		req = req.SetQueryString(query)
	}
	if body != nil {
		req = req.SetBody(body).SetHeader("Content-Type", "application/json")
	}

	resp, err := req.Execute(method, path)
	if err != nil {
		return nil, classifyTransportError(err)
	}

	raw := resp.Body()

	if resp.StatusCode() != 200 {
		return nil, &OrderError{
			Kind:   OrderErrorRejected,
			Detail: fmt.Sprintf("HTTP %d: %s", resp.StatusCode(), string(raw)),
		}
	}

	var apiResp APIResponse
	if err := json.Unmarshal(raw, &apiResp); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	return &apiResp, nil
}

// -----------------------------
// TRADING METHODS
// -----------------------------

// PlaceMarketOrder sends one IOC market order for a linear contract. The
// quantity is serialized as a string before signing; a changed byte there
// would invalidate the signature exchange-side.
func (c *Client) PlaceMarketOrder(ctx context.Context, symbol, side string, qty decimal.Decimal) (*OrderResult, error) {
	body, err := json.Marshal(orderCreateRequest{
		Category:    "linear",
		Symbol:      symbol,
		Side:        side,
		OrderType:   "Market",
		Qty:         qty.String(),
		TimeInForce: "IOC",
	})
	if err != nil {
		return nil, fmt.Errorf("encoding order: %w", err)
	}

	logger.WithFields(map[string]interface{}{
		"symbol": symbol,
		"side":   side,
		"qty":    qty.String(),
	}).Info("Placing market order")

	apiResp, err := c.doRequest(ctx, "POST", "/v5/order/create", "", body)
	if err != nil {
		return nil, err
	}
	if apiResp.RetCode != 0 {
		return nil, &OrderError{
			Kind:    OrderErrorRejected,
			RetCode: apiResp.RetCode,
			Detail:  GetErrorMsg(apiResp.RetCode, apiResp.RetMsg),
		}
	}

	var result OrderResult
	if err := json.Unmarshal(apiResp.Result, &result); err != nil {
		return nil, fmt.Errorf("decoding order result: %w", err)
	}
	result.RetCode = apiResp.RetCode
	result.RetMsg = apiResp.RetMsg
	return &result, nil
}

// -----------------------------
// ACCOUNT METHODS
// -----------------------------
type walletBalanceResult struct {
	List []struct {
		AccountType string `json:"accountType"`
		TotalEquity string `json:"totalEquity"`
		Coin        []struct {
			Coin          string `json:"coin"`
			Equity        string `json:"equity"`
			WalletBalance string `json:"walletBalance"`
		} `json:"coin"`
	} `json:"list"`
}

// GetWalletBalance reads the unified-account wallet balance for one coin.
// GET requests sign the raw query string instead of a body.
func (c *Client) GetWalletBalance(ctx context.Context, coin string) (decimal.Decimal, error) {
	query := "accountType=UNIFIED&coin=" + coin

	apiResp, err := c.doRequest(ctx, "GET", "/v5/account/wallet-balance", query, nil)
	if err != nil {
		return decimal.Zero, err
	}
	if apiResp.RetCode != 0 {
		return decimal.Zero, &OrderError{
			Kind:    OrderErrorRejected,
			RetCode: apiResp.RetCode,
			Detail:  GetErrorMsg(apiResp.RetCode, apiResp.RetMsg),
		}
	}

	var parsed walletBalanceResult
	if err := json.Unmarshal(apiResp.Result, &parsed); err != nil {
		return decimal.Zero, fmt.Errorf("decoding wallet balance: %w", err)
	}

	for _, account := range parsed.List {
		for _, entry := range account.Coin {
			if entry.Coin != coin {
				continue
			}
			balance, err := decimal.NewFromString(entry.WalletBalance)
			if err != nil {
				return decimal.Zero, fmt.Errorf("invalid balance %q for %s: %w", entry.WalletBalance, coin, err)
			}
			return balance, nil
		}
	}

	return decimal.Zero, fmt.Errorf("no balance entry for %s", coin)
}
