package api

import "quotebot/pkg/exchange"

// StatusInfo summarises the running session.
type StatusInfo struct {
	Bot           string `json:"bot"`
	Turns         int64  `json:"turns"`
	NextOrderID   int64  `json:"nextOrderId"`
	OpenOrders    int    `json:"openOrders"`
	UptimeSeconds int64  `json:"uptimeSeconds"`
}

// PositionInfo is one instrument's net position.
// Positive size is long, negative is short.
type PositionInfo struct {
	Ticker   string `json:"ticker"`
	Position int64  `json:"position"`
	PosLimit int64  `json:"posLimit"` // 0 = unbounded
}

// OrderInfo is one open resting order.
type OrderInfo struct {
	OrderID int64         `json:"orderId"`
	Ticker  string        `json:"ticker"`
	Side    exchange.Side `json:"side"`
	Size    int64         `json:"size"`
	Price   float64       `json:"price"`
}

// ErrorResponse is returned for all errors.
type ErrorResponse struct {
	Error string `json:"error"`
}
