package exchange

import (
	"context"
	"fmt"
)

// Mock is a scripted Exchange for tests and dry runs. Unset hooks fail
// loudly so a test exercising an unexpected call does not pass by accident.
type Mock struct {
	QuoteFn       func(ctx context.Context, market string) (float64, error)
	OrderChanceFn func(ctx context.Context, market string) (OrderChance, error)
	LimitBuyFn    func(ctx context.Context, market string, price, quantity float64) (Order, error)
	MarketBuyFn   func(ctx context.Context, market string, notional float64) (Order, error)
	MarketSellFn  func(ctx context.Context, market string, quantity float64) (Order, error)
	CancelFn      func(ctx context.Context, orderID string) error
	StatusFn      func(ctx context.Context, orderID string) (Order, error)
}

var _ Exchange = (*Mock)(nil)

func (m *Mock) Name() string { return "mock" }

func (m *Mock) GetQuote(ctx context.Context, market string) (float64, error) {
	if m.QuoteFn == nil {
		return 0, fmt.Errorf("mock: GetQuote not scripted")
	}
	return m.QuoteFn(ctx, market)
}

func (m *Mock) GetOrderChance(ctx context.Context, market string) (OrderChance, error) {
	if m.OrderChanceFn == nil {
		return OrderChance{}, fmt.Errorf("mock: GetOrderChance not scripted")
	}
	return m.OrderChanceFn(ctx, market)
}

func (m *Mock) PlaceLimitBuy(ctx context.Context, market string, price, quantity float64) (Order, error) {
	if m.LimitBuyFn == nil {
		return Order{}, fmt.Errorf("mock: PlaceLimitBuy not scripted")
	}
	return m.LimitBuyFn(ctx, market, price, quantity)
}

func (m *Mock) PlaceMarketBuy(ctx context.Context, market string, notional float64) (Order, error) {
	if m.MarketBuyFn == nil {
		return Order{}, fmt.Errorf("mock: PlaceMarketBuy not scripted")
	}
	return m.MarketBuyFn(ctx, market, notional)
}

func (m *Mock) PlaceMarketSell(ctx context.Context, market string, quantity float64) (Order, error) {
	if m.MarketSellFn == nil {
		return Order{}, fmt.Errorf("mock: PlaceMarketSell not scripted")
	}
	return m.MarketSellFn(ctx, market, quantity)
}

func (m *Mock) CancelOrder(ctx context.Context, orderID string) error {
	if m.CancelFn == nil {
		return fmt.Errorf("mock: CancelOrder not scripted")
	}
	return m.CancelFn(ctx, orderID)
}

func (m *Mock) GetOrderStatus(ctx context.Context, orderID string) (Order, error) {
	if m.StatusFn == nil {
		return Order{}, fmt.Errorf("mock: GetOrderStatus not scripted")
	}
	return m.StatusFn(ctx, orderID)
}
