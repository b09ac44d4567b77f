package book

import (
	"sync"
	"time"

	"github.com/gammazero/deque"

	"bitvavo-stream/internal/bitvavo"
	"bitvavo-stream/internal/metrics"
)

// Maintainer serializes ingestion into a LocalBook. Events may be enqueued
// from any goroutine; a single reader applies them in arrival order, which
// is the one ordering guarantee the book needs. Concurrent unsynchronized
// mutation of the book is the forbidden usage pattern this guards against.
type Maintainer struct {
	book *LocalBook

	mu    sync.Mutex
	queue deque.Deque[bitvavo.Event]

	done chan struct{}
	once sync.Once
}

func NewMaintainer(book *LocalBook) *Maintainer {
	m := &Maintainer{
		book: book,
		done: make(chan struct{}),
	}
	go m.run()
	return m
}

// Enqueue accepts Book and Ticker events and ignores every other variant,
// so the caller can pass the raw event stream through unfiltered.
func (m *Maintainer) Enqueue(ev bitvavo.Event) {
	switch ev.(type) {
	case bitvavo.Book, bitvavo.Ticker:
	default:
		return
	}
	m.mu.Lock()
	m.queue.PushBack(ev)
	m.mu.Unlock()
}

func (m *Maintainer) Stop() {
	m.once.Do(func() { close(m.done) })
}

func (m *Maintainer) run() {
	for {
		select {
		case <-m.done:
			return
		default:
		}

		m.mu.Lock()
		if m.queue.Len() == 0 {
			m.mu.Unlock()
			time.Sleep(10 * time.Millisecond)
			continue
		}
		ev := m.queue.PopFront()
		m.mu.Unlock()

		switch e := ev.(type) {
		case bitvavo.Book:
			m.book.IngestBook(e)
			metrics.BookUpdates.WithLabelValues("snapshot").Inc()
		case bitvavo.Ticker:
			m.book.IngestTicker(e)
			metrics.BookUpdates.WithLabelValues("ticker").Inc()
		}
	}
}
