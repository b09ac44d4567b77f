package book

import (
	"sync"

	"bitvavo-stream/internal/bitvavo"
	"bitvavo-stream/internal/num"
)

// LocalBook folds book snapshots and top-of-book tickers into the current
// best bid and ask. Exactly one writer ingests events in wire order; any
// number of readers may look at the top of book between ingests. Each ingest
// fully replaces the prior state for the sides it covers, so no history
// accumulates.
type LocalBook struct {
	mu   sync.RWMutex
	bids []bitvavo.PriceLevel
	asks []bitvavo.PriceLevel
}

func New() *LocalBook {
	return &LocalBook{}
}

// IngestBook replaces both sides with the snapshot contents, in the order
// received (best-first; the book never re-sorts). Leading levels with zero
// quantity are dropped first: the exchange may emit just-emptied levels at
// the front of a snapshot and those are not real liquidity.
func (b *LocalBook) IngestBook(snap bitvavo.Book) {
	bids := skipEmptyLevels(snap.Bids)
	asks := skipEmptyLevels(snap.Asks)

	b.mu.Lock()
	b.bids = bids
	b.asks = asks
	b.mu.Unlock()
}

// IngestTicker replaces only the sides the ticker carries; a side absent
// from the payload keeps its previous state.
func (b *LocalBook) IngestTicker(t bitvavo.Ticker) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if t.BestBid != nil {
		level := bitvavo.PriceLevel{Price: *t.BestBid}
		if t.BestBidSize != nil {
			level.Quantity = *t.BestBidSize
		}
		b.bids = []bitvavo.PriceLevel{level}
	}
	if t.BestAsk != nil {
		level := bitvavo.PriceLevel{Price: *t.BestAsk}
		if t.BestAskSize != nil {
			level.Quantity = *t.BestAskSize
		}
		b.asks = []bitvavo.PriceLevel{level}
	}
}

// TopBid returns the best bid, or the zero sentinel level while the side is
// empty. Never fails.
func (b *LocalBook) TopBid() bitvavo.PriceLevel {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if len(b.bids) == 0 {
		return bitvavo.PriceLevel{}
	}
	return b.bids[0]
}

// TopAsk is the ask-side counterpart of TopBid.
func (b *LocalBook) TopAsk() bitvavo.PriceLevel {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if len(b.asks) == 0 {
		return bitvavo.PriceLevel{}
	}
	return b.asks[0]
}

// Spread returns the signed relative spread (ask-bid)/((bid+ask)/2), or the
// zero Decimal while either side is missing or the mid price is zero. Spread
// is a best-effort display quantity, never a hard failure.
func (b *LocalBook) Spread() num.Decimal {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if len(b.bids) == 0 || len(b.asks) == 0 {
		return num.Decimal{}
	}
	bid := b.bids[0].Price
	ask := b.asks[0].Price
	sum := bid.Add(ask)
	if sum.IsZero() {
		return num.Decimal{}
	}
	return ask.Sub(bid).Div(sum.Div(num.FromInt(2)))
}

func skipEmptyLevels(side []bitvavo.PriceLevel) []bitvavo.PriceLevel {
	for i, level := range side {
		if !level.Quantity.IsZero() {
			return side[i:]
		}
	}
	return nil
}
