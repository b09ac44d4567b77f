package bitvavo

import (
	"bitvavo-stream/internal/num"
)

// Event is one decoded frame. The union is closed: every variant lives in
// this package and Decode produces exactly one of them per frame, never a
// partially populated value.
type Event interface {
	event()
}

// Subscribed acknowledges a subscribe command; it carries no payload.
type Subscribed struct{}

// Ticker is a top-of-book push. Any of the four fields may be absent: a
// ticker can carry only a bid, only an ask, or both.
type Ticker struct {
	Market      string       `json:"market"`
	BestBid     *num.Decimal `json:"bestBid"`
	BestBidSize *num.Decimal `json:"bestBidSize"`
	BestAsk     *num.Decimal `json:"bestAsk"`
	BestAskSize *num.Decimal `json:"bestAskSize"`
}

// Ticker24h is the rolling 24-hour statistics push.
type Ticker24h struct {
	Market      string      `json:"market"`
	Open        num.Decimal `json:"open"`
	High        num.Decimal `json:"high"`
	Low         num.Decimal `json:"low"`
	Last        num.Decimal `json:"last"`
	Volume      num.Decimal `json:"volume"`
	VolumeQuote num.Decimal `json:"volumeQuote"`
	Bid         num.Decimal `json:"bid"`
	Ask         num.Decimal `json:"ask"`
	Timestamp   int64       `json:"timestamp"`
	BidSize     num.Decimal `json:"bidSize"`
	AskSize     num.Decimal `json:"askSize"`
}

// TickerBook is the best bid/ask reply to a getTickerBook request.
type TickerBook struct {
	Market  string      `json:"market"`
	Bid     num.Decimal `json:"bid"`
	Ask     num.Decimal `json:"ask"`
	BidSize num.Decimal `json:"bidSize"`
	AskSize num.Decimal `json:"askSize"`
}

// Trade is one public trade push.
type Trade struct {
	Timestamp int64       `json:"timestamp"`
	ID        string      `json:"id"`
	Amount    num.Decimal `json:"amount"`
	Price     num.Decimal `json:"price"`
	Side      string      `json:"side"` // "buy" or "sell"
}

// Candle is one OHLCV bar, unpacked from the 6-tuple wire form
// [timestamp, open, high, low, close, volume].
type Candle struct {
	Market    string
	Interval  string
	Timestamp int64
	Open      num.Decimal
	High      num.Decimal
	Low       num.Decimal
	Close     num.Decimal
	Volume    num.Decimal
}

// Market describes one tradable market from getMarkets.
type Market struct {
	Status               string       `json:"status"`
	Base                 string       `json:"base"`
	Quote                string       `json:"quote"`
	Market               string       `json:"market"`
	PricePrecision       *int         `json:"pricePrecision"`
	MinOrderInQuoteAsset *num.Decimal `json:"minOrderInQuoteAsset"`
	MinOrderInBaseAsset  *num.Decimal `json:"minOrderInBaseAsset"`
	OrderTypes           []string     `json:"orderTypes"`
}

// Markets is the full market list from getMarkets.
type Markets []Market

// Balance is one asset balance from privateGetBalance.
type Balance struct {
	Symbol    string      `json:"symbol"`
	Available num.Decimal `json:"available"`
	InOrder   num.Decimal `json:"inOrder"`
}

// Balances maps asset symbol to balance. The exchange replies with a list;
// the decoder reshapes it, later entries overwriting earlier ones.
type Balances map[string]Balance

func (Subscribed) event() {}
func (Book) event()       {}
func (Ticker) event()     {}
func (Ticker24h) event()  {}
func (TickerBook) event() {}
func (Trade) event()      {}
func (Candle) event()     {}
func (Markets) event()    {}
func (Balances) event()   {}

// EventName returns a short stable name for an event variant, for logs and
// metric labels.
func EventName(ev Event) string {
	switch ev.(type) {
	case Subscribed:
		return "subscribed"
	case Book:
		return "book"
	case Ticker:
		return "ticker"
	case Ticker24h:
		return "ticker24h"
	case TickerBook:
		return "tickerBook"
	case Trade:
		return "trade"
	case Candle:
		return "candle"
	case Markets:
		return "markets"
	case Balances:
		return "balances"
	default:
		return "unknown"
	}
}
