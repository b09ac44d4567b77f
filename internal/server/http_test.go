package server

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bitvavo-stream/internal/bitvavo"
	"bitvavo-stream/internal/book"
	"bitvavo-stream/internal/config"
	"bitvavo-stream/internal/num"
)

func newTestServer(t *testing.T) (*StatusServer, *httptest.Server) {
	t.Helper()
	lb := book.New()
	lb.IngestBook(bitvavo.Book{
		Market: "BTC-EUR",
		Nonce:  1,
		Bids:   []bitvavo.PriceLevel{{Price: num.MustParse("100"), Quantity: num.MustParse("1")}},
		Asks:   []bitvavo.PriceLevel{{Price: num.MustParse("102"), Quantity: num.MustParse("2")}},
	})

	cfg := config.Config{BaseAsset: "BTC", QuoteAsset: "EUR"}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s := NewStatusServer(cfg, lb, func() bool { return true }, logger)
	ts := httptest.NewServer(s.Router())
	t.Cleanup(ts.Close)
	return s, ts
}

func TestAPIBook(t *testing.T) {
	_, ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/api/book")
	require.NoError(t, err)
	defer resp.Body.Close()

	var top topOfBook
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&top))
	assert.Equal(t, "BTC-EUR", top.Market)
	assert.Equal(t, "100", top.BidPrice)
	assert.Equal(t, "102", top.AskPrice)
	assert.Equal(t, "0.0198019802", top.Spread)
}

func TestAPIHealth(t *testing.T) {
	_, ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/api/health")
	require.NoError(t, err)
	defer resp.Body.Close()

	var health struct {
		OK        bool `json:"ok"`
		Connected bool `json:"connected"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&health))
	assert.True(t, health.OK)
	assert.True(t, health.Connected)
}

func TestWSObserverGetsGreeting(t *testing.T) {
	_, ts := newTestServer(t)

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	// A fresh observer receives the current top-of-book right away, before
	// any broadcast happens.
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var msg struct {
		Type string `json:"type"`
		Data struct {
			BidPrice string `json:"bidPrice"`
			AskPrice string `json:"askPrice"`
		} `json:"data"`
	}
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, "book", msg.Type)
	assert.Equal(t, "100", msg.Data.BidPrice)
	assert.Equal(t, "102", msg.Data.AskPrice)
}
