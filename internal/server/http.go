package server

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"bitvavo-stream/internal/book"
	"bitvavo-stream/internal/config"
)

// StatusServer exposes the current top-of-book over plain HTTP and pushes
// updates to websocket observers. It only ever reads the LocalBook; the
// frame-processing pipeline remains the single writer.
type StatusServer struct {
	cfg       config.Config
	book      *book.LocalBook
	connected func() bool
	hub       *hub
	log       *slog.Logger
	mux       *http.ServeMux
}

func NewStatusServer(cfg config.Config, b *book.LocalBook, connected func() bool, logger *slog.Logger) *StatusServer {
	s := &StatusServer{
		cfg:       cfg,
		book:      b,
		connected: connected,
		log:       logger,
		mux:       http.NewServeMux(),
	}
	s.hub = newHub(logger, func() []byte { return marshalWS("book", s.top()) })
	s.routes()
	go s.hub.run()
	return s
}

func (s *StatusServer) Router() http.Handler { return s.mux }

func (s *StatusServer) routes() {
	s.mux.HandleFunc("/api/health", s.apiHealth)
	s.mux.HandleFunc("/api/book", s.apiBook)
	s.mux.HandleFunc("/ws", s.hub.serveWS)
}

type topOfBook struct {
	Market      string `json:"market"`
	BidPrice    string `json:"bidPrice"`
	BidQuantity string `json:"bidQuantity"`
	AskPrice    string `json:"askPrice"`
	AskQuantity string `json:"askQuantity"`
	Spread      string `json:"spread"`
}

func (s *StatusServer) top() topOfBook {
	bid := s.book.TopBid()
	ask := s.book.TopAsk()
	return topOfBook{
		Market:      s.cfg.Market(),
		BidPrice:    bid.Price.String(),
		BidQuantity: bid.Quantity.String(),
		AskPrice:    ask.Price.String(),
		AskQuantity: ask.Quantity.String(),
		Spread:      s.book.Spread().String(),
	}
}

// BroadcastTop pushes the current top-of-book to every websocket observer.
func (s *StatusServer) BroadcastTop() {
	s.hub.broadcast <- marshalWS("book", s.top())
}

// BroadcastStatus pushes a connectivity transition to every observer.
func (s *StatusServer) BroadcastStatus() {
	s.hub.broadcast <- marshalWS("status", map[string]any{
		"connected": s.connected(),
		"market":    s.cfg.Market(),
	})
}

func (s *StatusServer) apiHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]any{
		"ok":        true,
		"connected": s.connected(),
	})
}

func (s *StatusServer) apiBook(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.top())
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	_ = json.NewEncoder(w).Encode(v)
}
