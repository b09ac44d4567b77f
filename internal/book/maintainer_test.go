package book

import (
	"testing"
	"time"

	"bitvavo-stream/internal/bitvavo"
	"bitvavo-stream/internal/num"
)

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not reached before deadline")
}

func TestMaintainerAppliesInOrder(t *testing.T) {
	lb := New()
	m := NewMaintainer(lb)
	defer m.Stop()

	snap := mustBook(t, `{
		"market": "BTC-EUR", "nonce": 1,
		"bids": [["100","1"]],
		"asks": [["102","1"]]
	}`)
	bid, size := num.MustParse("101"), num.MustParse("2")

	m.Enqueue(snap)
	m.Enqueue(bitvavo.Ticker{Market: "BTC-EUR", BestBid: &bid, BestBidSize: &size})

	// The ticker was enqueued after the snapshot, so it must win.
	waitFor(t, func() bool { return lb.TopBid().Price.Equal(num.MustParse("101")) })
	if !lb.TopAsk().Price.Equal(num.MustParse("102")) {
		t.Fatalf("ask side got %s want 102", lb.TopAsk().Price)
	}
}

func TestMaintainerIgnoresNonBookEvents(t *testing.T) {
	lb := New()
	m := NewMaintainer(lb)
	defer m.Stop()

	m.Enqueue(bitvavo.Subscribed{})
	m.Enqueue(bitvavo.Trade{ID: "x"})

	time.Sleep(50 * time.Millisecond)
	if got := lb.TopBid(); got != (bitvavo.PriceLevel{}) {
		t.Fatalf("book should be untouched, got bid %v", got)
	}
}
