package bitvavo

import (
	"time"

	"bitvavo-stream/internal/num"
)

// SubscriptionBuilder accumulates the channels for one subscribe command.
// Channels not selected are simply omitted from the payload.
type SubscriptionBuilder struct {
	market          string
	trades          bool
	account         bool
	book            bool
	ticker          bool
	candlesInterval string
}

func NewSubscription(market string) *SubscriptionBuilder {
	return &SubscriptionBuilder{market: market}
}

func (b *SubscriptionBuilder) WithTrades() *SubscriptionBuilder {
	b.trades = true
	return b
}

func (b *SubscriptionBuilder) WithAccount() *SubscriptionBuilder {
	b.account = true
	return b
}

func (b *SubscriptionBuilder) WithBook() *SubscriptionBuilder {
	b.book = true
	return b
}

func (b *SubscriptionBuilder) WithTicker() *SubscriptionBuilder {
	b.ticker = true
	return b
}

func (b *SubscriptionBuilder) WithCandles(interval string) *SubscriptionBuilder {
	b.candlesInterval = interval
	return b
}

func (b *SubscriptionBuilder) payload() map[string]any {
	channel := func(name string) map[string]any {
		return map[string]any{"name": name, "markets": []string{b.market}}
	}

	channels := []map[string]any{}
	if b.trades {
		channels = append(channels, channel("trades"))
	}
	if b.account {
		channels = append(channels, channel("account"))
	}
	if b.book {
		channels = append(channels, channel("book"))
	}
	if b.ticker {
		channels = append(channels, channel("ticker"))
	}
	if b.candlesInterval != "" {
		ch := channel("candles")
		ch["interval"] = []string{b.candlesInterval}
		channels = append(channels, ch)
	}

	return map[string]any{"action": "subscribe", "channels": channels}
}

// Authenticate sends the signed websocket handshake. Must precede any
// private action on the connection.
func (f *Feed) Authenticate(key, secret string) error {
	return f.send(NewAuthRequest(key, secret, time.Now()))
}

// Subscribe requests the channels accumulated in the builder. The exchange
// acknowledges with a subscribed frame, or a subscribe action carrying an
// error payload.
func (f *Feed) Subscribe(sub *SubscriptionBuilder) error {
	return f.send(sub.payload())
}

// GetBook requests a whole-book snapshot for one market.
func (f *Feed) GetBook(market string) error {
	return f.send(map[string]any{"action": "getBook", "market": market})
}

// GetMarkets requests the list of tradable markets.
func (f *Feed) GetMarkets() error {
	return f.send(map[string]any{"action": "getMarkets"})
}

// GetBalances requests all non-zero account balances. Requires a prior
// Authenticate on this connection.
func (f *Feed) GetBalances() error {
	return f.send(map[string]any{"action": "privateGetBalance"})
}

// GetTickerBook requests the current best bid/ask for one market.
func (f *Feed) GetTickerBook(market string) error {
	return f.send(map[string]any{"action": "getTickerBook", "market": market})
}

// PlaceLimitOrder places a limit order; side is "buy" or "sell".
func (f *Feed) PlaceLimitOrder(market, side string, amount, price num.Decimal) error {
	return f.send(map[string]any{
		"action":    "placeOrder",
		"market":    market,
		"side":      side,
		"orderType": "limit",
		"amount":    amount.String(),
		"price":     price.String(),
	})
}

// PlaceMarketOrder places a market order; side is "buy" or "sell".
func (f *Feed) PlaceMarketOrder(market, side string, amount num.Decimal) error {
	return f.send(map[string]any{
		"action":    "placeOrder",
		"market":    market,
		"side":      side,
		"orderType": "market",
		"amount":    amount.String(),
	})
}

// CancelOrder cancels a single order by id.
func (f *Feed) CancelOrder(orderID string) error {
	return f.send(map[string]any{"action": "cancelOrder", "orderId": orderID})
}

// CancelAllOrders cancels every open order; with a non-empty market only the
// orders in that market.
func (f *Feed) CancelAllOrders(market string) error {
	payload := map[string]any{"action": "cancelOrders"}
	if market != "" {
		payload["market"] = market
	}
	return f.send(payload)
}
