package bitvavo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"bitvavo-stream/internal/metrics"
)

// ErrNotConnected is returned by command methods while the socket is down;
// commands are not queued across reconnects.
var ErrNotConnected = errors.New("websocket not connected")

// Feed maintains the websocket connection to the exchange and turns incoming
// text frames into decoded Events. It reconnects with exponential backoff and
// replays the configured post-connect setup (authenticate, subscribe, ...)
// after every successful dial.
type Feed struct {
	url string
	log *slog.Logger

	mu        sync.RWMutex
	conn      *websocket.Conn
	connected bool
	writeMu   sync.Mutex

	// onConnect runs after each successful dial, before the read loop.
	onConnect func(*Feed) error

	evCh  chan Event
	errCh chan error

	ctx    context.Context
	cancel context.CancelFunc
}

func NewFeed(url string, logger *slog.Logger) *Feed {
	return &Feed{
		url:   url,
		log:   logger,
		evCh:  make(chan Event, 1024),
		errCh: make(chan error, 16),
	}
}

// Events delivers decoded frames in wire order.
func (f *Feed) Events() <-chan Event { return f.evCh }

// Errors delivers escalated failures: transport errors and non-recoverable
// decode failures. Recoverable classification misses are logged and skipped.
func (f *Feed) Errors() <-chan error { return f.errCh }

// OnConnect registers the setup replayed after every (re)connect. Must be
// called before Run.
func (f *Feed) OnConnect(fn func(*Feed) error) { f.onConnect = fn }

func (f *Feed) Connected() bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.connected
}

func (f *Feed) setConnected(v bool) {
	f.mu.Lock()
	f.connected = v
	f.mu.Unlock()
	if v {
		metrics.Connected.Set(1)
	} else {
		metrics.Connected.Set(0)
	}
}

// Run dials and reads until ctx is cancelled, reconnecting on failure.
// onStatus is invoked on every connectivity transition. Run is the only
// goroutine that sends on the event and error channels, so it also closes
// them on the way out; Close must never touch them.
func (f *Feed) Run(ctx context.Context, onStatus func(connected bool)) {
	if f.cancel != nil {
		return
	}
	f.ctx, f.cancel = context.WithCancel(ctx)
	defer close(f.evCh)
	defer close(f.errCh)

	backoff := time.Second
	for {
		select {
		case <-f.ctx.Done():
			return
		default:
		}

		dialer := websocket.Dialer{
			Proxy:            http.ProxyFromEnvironment,
			HandshakeTimeout: 10 * time.Second,
		}
		conn, _, err := dialer.DialContext(f.ctx, f.url, nil)
		if err != nil {
			onStatus(false)
			f.setConnected(false)
			f.emitErr(fmt.Errorf("dial %s: %w", f.url, err))
			f.sleep(backoff)
			backoff = min(backoff*2, 30*time.Second)
			continue
		}

		f.mu.Lock()
		f.conn = conn
		f.mu.Unlock()

		if f.onConnect != nil {
			if err := f.onConnect(f); err != nil {
				f.emitErr(fmt.Errorf("post-connect setup: %w", err))
				_ = conn.Close()
				f.sleep(backoff)
				backoff = min(backoff*2, 30*time.Second)
				continue
			}
		}

		f.setConnected(true)
		onStatus(true)
		backoff = time.Second
		f.log.Info("connected", slog.String("url", f.url))

		f.readLoop(conn)

		f.setConnected(false)
		onStatus(false)
		f.sleep(backoff)
	}
}

// readLoop reads until the connection breaks. Decode errors never end the
// loop: a single malformed or unexpected frame must not take down a
// long-running consumer.
func (f *Feed) readLoop(conn *websocket.Conn) {
	defer conn.Close()
	for {
		msgType, msg, err := conn.ReadMessage()
		if err != nil {
			select {
			case <-f.ctx.Done():
			default:
				f.emitErr(fmt.Errorf("read: %w", err))
			}
			return
		}
		// Ping/pong control frames are answered by the websocket library;
		// anything else non-text never reaches the decoder.
		if msgType != websocket.TextMessage {
			continue
		}

		ev, err := Decode(msg)
		if err != nil {
			metrics.DecodeErrors.WithLabelValues(ErrorKind(err)).Inc()
			if IsRecoverable(err) {
				f.log.Debug("skipping frame", slog.String("err", err.Error()))
				continue
			}
			f.emitErr(err)
			continue
		}

		metrics.Frames.WithLabelValues(EventName(ev)).Inc()
		select {
		case f.evCh <- ev:
		case <-f.ctx.Done():
			return
		}
	}
}

func (f *Feed) emitErr(err error) {
	select {
	case f.errCh <- err:
	default:
		f.log.Warn("error channel full, dropping", slog.String("err", err.Error()))
	}
}

func (f *Feed) sleep(d time.Duration) {
	select {
	case <-time.After(d):
	case <-f.ctx.Done():
	}
}

// send writes one JSON command. Writes are serialized; gorilla allows only
// one concurrent writer per connection.
func (f *Feed) send(v any) error {
	f.mu.RLock()
	conn := f.conn
	f.mu.RUnlock()
	if conn == nil {
		return ErrNotConnected
	}
	f.writeMu.Lock()
	defer f.writeMu.Unlock()
	return conn.WriteJSON(v)
}

// Close stops the run loop. The output channels are closed by Run itself
// once it returns, never here: Run may still be mid-send when Close is
// called from another goroutine.
func (f *Feed) Close() {
	if f.cancel != nil {
		f.cancel()
	}
	f.mu.Lock()
	if f.conn != nil {
		_ = f.conn.Close()
	}
	f.mu.Unlock()
}
