package book

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bitvavo-stream/internal/bitvavo"
	"bitvavo-stream/internal/num"
)

func mustBook(t *testing.T, payload string) bitvavo.Book {
	t.Helper()
	var snap bitvavo.Book
	require.NoError(t, json.Unmarshal([]byte(payload), &snap))
	return snap
}

func TestIngestBookSkipsLeadingZeroQuantity(t *testing.T) {
	b := New()
	b.IngestBook(mustBook(t, `{
		"market": "BTC-EUR", "nonce": 1,
		"bids": [["10","0"], ["10","0"], ["9","5"]],
		"asks": [["11","1"]]
	}`))

	top := b.TopBid()
	assert.True(t, top.Price.Equal(num.MustParse("9")), "zero-quantity levels are not real liquidity")
	assert.True(t, top.Quantity.Equal(num.MustParse("5")))
	assert.True(t, b.TopAsk().Price.Equal(num.MustParse("11")))
}

func TestIngestBookAllZeroSideYieldsSentinel(t *testing.T) {
	b := New()
	b.IngestBook(mustBook(t, `{
		"market": "BTC-EUR", "nonce": 1,
		"bids": [["10","0"], ["9","0"]],
		"asks": [["11","1"]]
	}`))

	assert.Equal(t, bitvavo.PriceLevel{}, b.TopBid())
}

func TestReadsBeforeAnyIngest(t *testing.T) {
	b := New()
	assert.Equal(t, bitvavo.PriceLevel{}, b.TopBid())
	assert.Equal(t, bitvavo.PriceLevel{}, b.TopAsk())
	assert.True(t, b.Spread().IsZero(), "missing sides mean zero spread, not an error")
}

func TestIngestTickerUpdatesOnlyPresentSides(t *testing.T) {
	b := New()
	b.IngestBook(mustBook(t, `{
		"market": "BTC-EUR", "nonce": 1,
		"bids": [["10","1"]],
		"asks": [["12","2"]]
	}`))

	bid := num.MustParse("11")
	size := num.MustParse("1")
	b.IngestTicker(bitvavo.Ticker{Market: "BTC-EUR", BestBid: &bid, BestBidSize: &size})

	assert.True(t, b.TopBid().Price.Equal(num.MustParse("11")), "bid side replaced")
	assert.True(t, b.TopAsk().Price.Equal(num.MustParse("12")), "ask side untouched")
	assert.True(t, b.TopAsk().Quantity.Equal(num.MustParse("2")))
}

func TestIngestTickerBothSides(t *testing.T) {
	b := New()
	bid, bidSize := num.MustParse("100"), num.MustParse("1")
	ask, askSize := num.MustParse("102"), num.MustParse("2")
	b.IngestTicker(bitvavo.Ticker{
		BestBid: &bid, BestBidSize: &bidSize,
		BestAsk: &ask, BestAskSize: &askSize,
	})

	assert.True(t, b.TopBid().Price.Equal(bid))
	assert.True(t, b.TopAsk().Price.Equal(ask))
}

func TestSpread(t *testing.T) {
	b := New()
	b.IngestBook(mustBook(t, `{
		"market": "BTC-EUR", "nonce": 1,
		"bids": [["100","1"]],
		"asks": [["102","1"]]
	}`))

	// (102-100) / ((100+102)/2), rounded toward +inf at 10 places
	assert.Equal(t, "0.0198019802", b.Spread().String())
}

func TestSpreadWithZeroMid(t *testing.T) {
	b := New()
	bid, ask := num.MustParse("0"), num.MustParse("0")
	size := num.MustParse("1")
	b.IngestTicker(bitvavo.Ticker{
		BestBid: &bid, BestBidSize: &size,
		BestAsk: &ask, BestAskSize: &size,
	})

	// Both prices zero means a zero mid; the spread is undefined, not a
	// division failure.
	assert.True(t, b.Spread().IsZero())
}

func TestSpreadWithoutOneSide(t *testing.T) {
	b := New()
	bid, size := num.MustParse("100"), num.MustParse("1")
	b.IngestTicker(bitvavo.Ticker{BestBid: &bid, BestBidSize: &size})

	assert.True(t, b.Spread().IsZero())
}

func TestIngestBookReplacesPriorState(t *testing.T) {
	b := New()
	b.IngestBook(mustBook(t, `{
		"market": "BTC-EUR", "nonce": 1,
		"bids": [["100","1"]],
		"asks": [["102","1"]]
	}`))
	b.IngestBook(mustBook(t, `{
		"market": "BTC-EUR", "nonce": 2,
		"bids": [["99","3"]],
		"asks": [["101","4"]]
	}`))

	assert.True(t, b.TopBid().Price.Equal(num.MustParse("99")), "snapshots replace, never merge")
	assert.True(t, b.TopAsk().Price.Equal(num.MustParse("101")))
}
