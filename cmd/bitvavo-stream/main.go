package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"bitvavo-stream/internal/bitvavo"
	"bitvavo-stream/internal/book"
	"bitvavo-stream/internal/config"
	"bitvavo-stream/internal/metrics"
	"bitvavo-stream/internal/server"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load() // best-effort: .env is optional

	cfg, err := config.Load("config.yaml")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config.yaml: %v\n", err)
		os.Exit(1)
	}

	logger := config.NewLogger(cfg.LogLevel)

	// Credentials come from the environment, never from config.yaml. With no
	// key the feed runs public-only: no account channel, no balances.
	apiKey := os.Getenv("BITVAVO_API_KEY")
	apiSecret := os.Getenv("BITVAVO_API_SECRET")

	logger.Info("bitvavo-stream starting",
		slog.String("market", cfg.Market()),
		slog.String("ws_url", cfg.WSURL),
		slog.Bool("authenticated", apiKey != ""),
	)

	localBook := book.New()
	maintainer := book.NewMaintainer(localBook)

	feed := bitvavo.NewFeed(cfg.WSURL, logger)
	feed.OnConnect(func(f *bitvavo.Feed) error {
		if apiKey != "" {
			if err := f.Authenticate(apiKey, apiSecret); err != nil {
				return fmt.Errorf("authenticate: %w", err)
			}
			if err := f.GetBalances(); err != nil {
				return err
			}
		}
		if err := f.GetBook(cfg.Market()); err != nil {
			return err
		}
		sub := bitvavo.NewSubscription(cfg.Market()).
			WithTicker().
			WithBook().
			WithTrades().
			WithCandles(cfg.CandleInterval)
		if apiKey != "" {
			sub.WithAccount()
		}
		return f.Subscribe(sub)
	})

	srv := server.NewStatusServer(cfg, localBook, feed.Connected, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go metrics.StartServer(fmt.Sprintf(":%d", cfg.MetricsPort), logger)

	go feed.Run(ctx, func(connected bool) {
		srv.BroadcastStatus()
	})

	// Pipe feed → local book; everything that is not book state is the
	// caller's own bookkeeping and gets logged.
	go func() {
		for {
			select {
			case ev, ok := <-feed.Events():
				if !ok {
					return
				}
				switch e := ev.(type) {
				case bitvavo.Book, bitvavo.Ticker:
					maintainer.Enqueue(ev)
				case bitvavo.Subscribed:
					logger.Debug("subscription confirmed")
				case bitvavo.Trade:
					logger.Debug("trade",
						slog.String("side", e.Side),
						slog.String("price", e.Price.String()),
						slog.String("amount", e.Amount.String()),
					)
				case bitvavo.Candle:
					logger.Debug("candle",
						slog.String("interval", e.Interval),
						slog.Int64("ts", e.Timestamp),
						slog.String("close", e.Close.String()),
					)
				case bitvavo.Ticker24h:
					logger.Debug("ticker24h",
						slog.String("last", e.Last.String()),
						slog.String("volume", e.Volume.String()),
					)
				case bitvavo.TickerBook:
					logger.Debug("tickerBook",
						slog.String("bid", e.Bid.String()),
						slog.String("ask", e.Ask.String()),
					)
				case bitvavo.Markets:
					logger.Info("markets listed", slog.Int("count", len(e)))
				case bitvavo.Balances:
					for _, sym := range []string{cfg.BaseAsset, cfg.QuoteAsset} {
						if bal, ok := e[sym]; ok {
							logger.Info("balance",
								slog.String("symbol", sym),
								slog.String("available", bal.Available.String()),
								slog.String("in_order", bal.InOrder.String()),
							)
						}
					}
				}
			case err, ok := <-feed.Errors():
				if !ok {
					return
				}
				var subErr *bitvavo.SubscriptionError
				if errors.As(err, &subErr) {
					logger.Error("subscription rejected",
						slog.String("message", subErr.Message),
						slog.String("code", subErr.Code),
					)
					continue
				}
				logger.Error("feed error", slog.String("err", err.Error()))
			case <-ctx.Done():
				return
			}
		}
	}()

	// Periodic top-of-book report for observers and the log.
	go func() {
		tick := time.NewTicker(time.Second)
		defer tick.Stop()
		for {
			select {
			case <-tick.C:
				if !feed.Connected() {
					continue
				}
				srv.BroadcastTop()
				logger.Debug("top of book",
					slog.String("bid", localBook.TopBid().String()),
					slog.String("ask", localBook.TopAsk().String()),
					slog.String("spread", localBook.Spread().String()),
				)
			case <-ctx.Done():
				return
			}
		}
	}()

	httpSrv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.StatusPort),
		Handler: srv.Router(),
	}

	done := make(chan struct{})
	go func() {
		logger.Info("status server listening", slog.Int("port", cfg.StatusPort))
		if err := httpSrv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			logger.Error("status server failed", slog.String("err", err.Error()))
			cancel()
		}
		close(done)
	}()

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	<-sigc

	logger.Info("shutting down...")
	shCtx, shCancel := context.WithTimeout(context.Background(), 8*time.Second)
	defer shCancel()

	_ = httpSrv.Shutdown(shCtx)
	cancel()
	maintainer.Stop()
	feed.Close()
	<-done
	logger.Info("bye")
}
