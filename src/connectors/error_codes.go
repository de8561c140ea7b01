package connectors

import "fmt"

// BybitErrorCodes maps Bybit v5 retCode values to human-readable messages.
var BybitErrorCodes = map[int]string{
	10001:  "PARAMS_ERROR",            // Request parameter error
	10002:  "REQUEST_EXPIRED",         // Timestamp outside the receive window
	10003:  "INVALID_API_KEY",         // API key invalid or revoked
	10004:  "INVALID_SIGNATURE",       // Signature does not match the signed payload
	10005:  "PERMISSION_DENIED",       // Key lacks the required permission
	10006:  "RATE_LIMIT_EXCEEDED",     // Too many visits
	10010:  "UNMATCHED_IP",            // Key is bound to another IP
	10016:  "SERVER_ERROR",            // Exchange-side error
	10017:  "ROUTE_NOT_FOUND",         // Request path not found
	10018:  "IP_RATE_LIMIT",           // Exceeded IP rate limit
	110001: "ORDER_NOT_EXISTS",        // Order does not exist
	110003: "PRICE_OUT_OF_RANGE",      // Order price exceeds the allowable range
	110004: "INSUFFICIENT_WALLET",     // Wallet balance is insufficient
	110007: "INSUFFICIENT_AVAILABLE",  // Available balance is insufficient
	110009: "STOP_ORDER_LIMIT",        // Too many conditional orders
	110012: "INSUFFICIENT_BALANCE",    // Insufficient available balance
	110017: "QTY_BELOW_MINIMUM",       // Order quantity below the minimum allowed
	110020: "TOO_MANY_ACTIVE_ORDERS",  // Active order cap reached for symbol
	110025: "POSITION_MODE_MISMATCH",  // Position mode not switched
	110043: "LEVERAGE_NOT_MODIFIED",   // Set leverage has not been modified
	170131: "INSUFFICIENT_SPOT_FUNDS", // Balance insufficient (spot)
}

// GetErrorMsg resolves a Bybit retCode to a readable label, falling back to
// the exchange-provided retMsg when the code is not in the table.
func GetErrorMsg(code int, retMsg string) string {
	if msg, ok := BybitErrorCodes[code]; ok {
		return msg
	}
	if retMsg != "" {
		return retMsg
	}
	return fmt.Sprintf("UNKNOWN_BYBIT_ERROR_%d", code)
}
