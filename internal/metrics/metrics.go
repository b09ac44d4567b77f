package metrics

import (
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var Frames = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "bitvavo_frames_total",
		Help: "decoded frames by event type",
	},
	[]string{"event"},
)

var DecodeErrors = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "bitvavo_decode_errors_total",
		Help: "frames that failed decoding, by failure kind",
	},
	[]string{"kind"},
)

var BookUpdates = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "local_book_updates_total",
		Help: "ingests applied to the local book, by source",
	},
	[]string{"source"},
)

var Connected = prometheus.NewGauge(
	prometheus.GaugeOpts{
		Name: "bitvavo_connected",
		Help: "1 while the websocket connection is up",
	},
)

// StartServer serves /metrics on addr. Blocks; run it in a goroutine.
func StartServer(addr string, logger *slog.Logger) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(Frames, DecodeErrors, BookUpdates, Connected)
	reg.MustRegister(collectors.NewGoCollector())

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	logger.Info("metrics server listening", slog.String("addr", addr))
	if err := http.ListenAndServe(addr, mux); err != nil {
		logger.Error("metrics server failed", slog.String("err", err.Error()))
	}
}
