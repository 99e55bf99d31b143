package exchange

import (
	"bytes"
	"context"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const defaultBaseURL = "https://api.bithumb.com"

// BithumbExchange talks to the Bithumb 2.0 REST API. Private endpoints are
// authenticated with an HS256 JWT bearer token carrying a uuid nonce and a
// SHA512 hash of the request parameters.
type BithumbExchange struct {
	accessKey string
	secretKey string
	baseURL   string
	httpc     *http.Client
}

// BithumbOption customizes the client; used by tests to point at a local
// server.
type BithumbOption func(*BithumbExchange)

func WithBaseURL(u string) BithumbOption {
	return func(b *BithumbExchange) { b.baseURL = u }
}

func WithHTTPClient(c *http.Client) BithumbOption {
	return func(b *BithumbExchange) { b.httpc = c }
}

func NewBithumbExchange(accessKey, secretKey string, opts ...BithumbOption) *BithumbExchange {
	b := &BithumbExchange{
		accessKey: accessKey,
		secretKey: secretKey,
		baseURL:   defaultBaseURL,
		httpc:     &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

func (b *BithumbExchange) Name() string { return "bithumb" }

func (b *BithumbExchange) authToken(params url.Values) (string, error) {
	claims := jwt.MapClaims{
		"access_key": b.accessKey,
		"nonce":      uuid.NewString(),
		"timestamp":  time.Now().UnixMilli(),
	}
	if len(params) > 0 {
		sum := sha512.Sum512([]byte(params.Encode()))
		claims["query_hash"] = hex.EncodeToString(sum[:])
		claims["query_hash_alg"] = "SHA512"
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(b.secretKey))
	if err != nil {
		return "", fmt.Errorf("signing auth token: %w", err)
	}
	return signed, nil
}

// do performs one API request. params double as the query string (GET/DELETE)
// or the JSON body (POST); they are always the input to the query hash.
func (b *BithumbExchange) do(ctx context.Context, method, path string, params url.Values, private bool, out any) error {
	endpoint := b.baseURL + path
	var body io.Reader
	if method == http.MethodPost {
		payload := make(map[string]string, len(params))
		for k := range params {
			payload[k] = params.Get(k)
		}
		buf, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("encoding request body: %w", err)
		}
		body = bytes.NewReader(buf)
	} else if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if method == http.MethodPost {
		req.Header.Set("Content-Type", "application/json")
	}
	if private {
		token, err := b.authToken(params)
		if err != nil {
			return err
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := b.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%s %s: reading response: %w", method, path, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%s %s: status %d: %s", method, path, resp.StatusCode, bytes.TrimSpace(data))
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%s %s: decoding response: %w", method, path, err)
	}
	return nil
}

type tickerResponse struct {
	Market     string  `json:"market"`
	TradePrice float64 `json:"trade_price"`
}

func (b *BithumbExchange) GetQuote(ctx context.Context, market string) (float64, error) {
	params := url.Values{"markets": {market}}
	var tickers []tickerResponse
	if err := b.do(ctx, http.MethodGet, "/v1/ticker", params, false, &tickers); err != nil {
		return 0, fmt.Errorf("fetching quote: %w", err)
	}
	if len(tickers) == 0 {
		return 0, fmt.Errorf("fetching quote: empty ticker response for %s", market)
	}
	return tickers[0].TradePrice, nil
}

// Numeric fields arrive as JSON strings on private endpoints.
type chanceResponse struct {
	Market struct {
		Bid struct {
			MinTotal string `json:"min_total"`
		} `json:"bid"`
		Ask struct {
			MinTotal string `json:"min_total"`
		} `json:"ask"`
	} `json:"market"`
	BidAccount struct {
		Balance string `json:"balance"`
	} `json:"bid_account"`
	AskAccount struct {
		Balance     string `json:"balance"`
		AvgBuyPrice string `json:"avg_buy_price"`
	} `json:"ask_account"`
}

func (b *BithumbExchange) GetOrderChance(ctx context.Context, market string) (OrderChance, error) {
	params := url.Values{"market": {market}}
	var resp chanceResponse
	if err := b.do(ctx, http.MethodGet, "/v1/orders/chance", params, true, &resp); err != nil {
		return OrderChance{}, fmt.Errorf("fetching order chance: %w", err)
	}
	return OrderChance{
		Bid: BidAccount{
			Balance:  parseFloat(resp.BidAccount.Balance),
			MinTotal: parseFloat(resp.Market.Bid.MinTotal),
		},
		Ask: AskAccount{
			Balance:     parseFloat(resp.AskAccount.Balance),
			MinTotal:    parseFloat(resp.Market.Ask.MinTotal),
			AvgBuyPrice: parseFloat(resp.AskAccount.AvgBuyPrice),
		},
	}, nil
}

type orderResponse struct {
	UUID           string `json:"uuid"`
	Side           string `json:"side"`
	OrdType        string `json:"ord_type"`
	Price          string `json:"price"`
	State          string `json:"state"`
	Market         string `json:"market"`
	CreatedAt      string `json:"created_at"`
	Volume         string `json:"volume"`
	ExecutedVolume string `json:"executed_volume"`
	PaidFee        string `json:"paid_fee"`
}

func (r orderResponse) toOrder() Order {
	createdAt, _ := time.Parse(time.RFC3339, r.CreatedAt)
	return Order{
		ID:             r.UUID,
		Market:         r.Market,
		Side:           OrderSide(r.Side),
		Type:           OrderType(r.OrdType),
		Price:          parseFloat(r.Price),
		Quantity:       parseFloat(r.Volume),
		State:          OrderState(r.State),
		ExecutedVolume: parseFloat(r.ExecutedVolume),
		PaidFee:        parseFloat(r.PaidFee),
		CreatedAt:      createdAt,
	}
}

func (b *BithumbExchange) placeOrder(ctx context.Context, params url.Values) (Order, error) {
	var resp orderResponse
	if err := b.do(ctx, http.MethodPost, "/v1/orders", params, true, &resp); err != nil {
		return Order{}, err
	}
	return resp.toOrder(), nil
}

func (b *BithumbExchange) PlaceLimitBuy(ctx context.Context, market string, price, quantity float64) (Order, error) {
	order, err := b.placeOrder(ctx, url.Values{
		"market":   {market},
		"side":     {string(SideBid)},
		"ord_type": {string(TypeLimit)},
		"price":    {formatFloat(price)},
		"volume":   {formatFloat(quantity)},
	})
	if err != nil {
		return Order{}, fmt.Errorf("placing limit buy: %w", err)
	}
	return order, nil
}

// PlaceMarketBuy submits a market buy sized by total KRW notional.
func (b *BithumbExchange) PlaceMarketBuy(ctx context.Context, market string, notional float64) (Order, error) {
	order, err := b.placeOrder(ctx, url.Values{
		"market":   {market},
		"side":     {string(SideBid)},
		"ord_type": {string(TypeMarketPrice)},
		"price":    {formatFloat(notional)},
	})
	if err != nil {
		return Order{}, fmt.Errorf("placing market buy: %w", err)
	}
	return order, nil
}

func (b *BithumbExchange) PlaceMarketSell(ctx context.Context, market string, quantity float64) (Order, error) {
	order, err := b.placeOrder(ctx, url.Values{
		"market":   {market},
		"side":     {string(SideAsk)},
		"ord_type": {string(TypeMarket)},
		"volume":   {formatFloat(quantity)},
	})
	if err != nil {
		return Order{}, fmt.Errorf("placing market sell: %w", err)
	}
	return order, nil
}

func (b *BithumbExchange) CancelOrder(ctx context.Context, orderID string) error {
	params := url.Values{"uuid": {orderID}}
	if err := b.do(ctx, http.MethodDelete, "/v1/order", params, true, nil); err != nil {
		return fmt.Errorf("cancelling order %s: %w", orderID, err)
	}
	return nil
}

func (b *BithumbExchange) GetOrderStatus(ctx context.Context, orderID string) (Order, error) {
	params := url.Values{"uuid": {orderID}}
	var resp orderResponse
	if err := b.do(ctx, http.MethodGet, "/v1/order", params, true, &resp); err != nil {
		return Order{}, fmt.Errorf("fetching order %s: %w", orderID, err)
	}
	return resp.toOrder(), nil
}

func parseFloat(s string) float64 {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return f
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
