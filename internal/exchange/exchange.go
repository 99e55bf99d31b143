// Package exchange
package exchange

import (
	"context"
	"time"
)

// OrderSide is the exchange's order side.
type OrderSide string

const (
	SideBid OrderSide = "bid"
	SideAsk OrderSide = "ask"
)

// OrderType mirrors the exchange's ord_type values: "limit" for limit
// orders, "price" for market buys (sized by total), "market" for market
// sells (sized by volume).
type OrderType string

const (
	TypeLimit       OrderType = "limit"
	TypeMarketPrice OrderType = "price"
	TypeMarket      OrderType = "market"
)

// OrderState is the exchange's order lifecycle state.
type OrderState string

const (
	StateWait   OrderState = "wait"
	StateDone   OrderState = "done"
	StateCancel OrderState = "cancel"
)

// Order is the exchange-side view of a submitted order. The bot only holds
// the handle and polls state; the exchange owns the order.
type Order struct {
	ID             string
	Market         string
	Side           OrderSide
	Type           OrderType
	Price          float64 // limit price, or locked total for market buys
	Quantity       float64
	State          OrderState
	ExecutedVolume float64
	PaidFee        float64
	CreatedAt      time.Time
}

// FullyDone reports whether the order is completely filled.
func (o Order) FullyDone() bool { return o.State == StateDone }

// BidAccount is the buy-side view of the account for a market.
type BidAccount struct {
	Balance  float64 // available KRW
	MinTotal float64 // minimum order notional in KRW
}

// AskAccount is the sell-side view of the account for a market.
type AskAccount struct {
	Balance     float64 // available base-asset quantity
	MinTotal    float64
	AvgBuyPrice float64 // volume-weighted average acquisition price
}

// OrderChance is the per-market account snapshot. It is fetched fresh for
// every decision and never cached across the sell/buy boundary.
type OrderChance struct {
	Bid BidAccount
	Ask AskAccount
}

// Exchange is the capability set the trading engine consumes. Every call
// may fail transiently; callers wrap them with the retry policy.
type Exchange interface {
	Name() string
	GetQuote(ctx context.Context, market string) (float64, error)
	GetOrderChance(ctx context.Context, market string) (OrderChance, error)
	PlaceLimitBuy(ctx context.Context, market string, price, quantity float64) (Order, error)
	PlaceMarketBuy(ctx context.Context, market string, notional float64) (Order, error)
	PlaceMarketSell(ctx context.Context, market string, quantity float64) (Order, error)
	CancelOrder(ctx context.Context, orderID string) error
	GetOrderStatus(ctx context.Context, orderID string) (Order, error)
}
