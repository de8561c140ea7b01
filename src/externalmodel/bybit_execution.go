package externalmodel

// BybitExecution is one entry of the private v5 "execution" stream topic.
// All numeric fields arrive as strings on the wire.
type BybitExecution struct {
	Symbol    string `json:"symbol"`
	Side      string `json:"side"`
	OrderID   string `json:"orderId"`
	ExecID    string `json:"execId"`
	ExecQty   string `json:"execQty"`
	ExecPrice string `json:"execPrice"`
	ClosedPnl string `json:"closedPnl"`
	ExecTime  string `json:"execTime"`
}
