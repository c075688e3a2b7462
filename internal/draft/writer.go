package draft

import (
	"context"
	"sync"

	"github.com/debemdeboas/notes-editor/internal/model"
)

// DefaultQueueSize bounds the number of keys waiting to be written.
const DefaultQueueSize = 64

type pendingWrite struct {
	draft  model.Draft
	remove bool
}

type request struct {
	key   model.SessionKey
	flush chan struct{}
}

// Writer applies draft writes in the background. Only the latest write per key
// is kept; a write that finds the queue full is dropped and logged.
type Writer struct {
	store *Store

	mu      sync.Mutex
	pending map[model.SessionKey]pendingWrite
	queued  map[model.SessionKey]bool
	closed  bool

	// Held while a write reaches the store so Clear cannot interleave with it.
	writeMu sync.Mutex

	queue chan request
	quit  chan struct{}
	done  chan struct{}
}

func NewWriter(store *Store, queueSize int) *Writer {
	if queueSize <= 0 {
		queueSize = DefaultQueueSize
	}
	w := &Writer{
		store:   store,
		pending: make(map[model.SessionKey]pendingWrite),
		queued:  make(map[model.SessionKey]bool),
		queue:   make(chan request, queueSize),
		quit:    make(chan struct{}),
		done:    make(chan struct{}),
	}
	go w.run()
	return w
}

func (w *Writer) Store() *Store {
	return w.store
}

// Save schedules d as the draft for k. It never blocks.
func (w *Writer) Save(k model.SessionKey, d model.Draft) {
	w.enqueue(k, pendingWrite{draft: d})
}

// Remove schedules the deletion of the draft for k. It never blocks.
func (w *Writer) Remove(k model.SessionKey) {
	w.enqueue(k, pendingWrite{remove: true})
}

func (w *Writer) enqueue(k model.SessionKey, p pendingWrite) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		draftLogger.Warn().Str("session_key", string(k)).Msg("Draft writer closed, dropping write")
		return
	}

	w.pending[k] = p
	if w.queued[k] {
		return
	}

	select {
	case w.queue <- request{key: k}:
		w.queued[k] = true
	default:
		delete(w.pending, k)
		draftLogger.Warn().Str("session_key", string(k)).Msg("Draft queue full, dropping write")
	}
}

// Clear drops any scheduled write for k and removes the stored draft before returning.
func (w *Writer) Clear(ctx context.Context, k model.SessionKey) error {
	w.writeMu.Lock()
	defer w.writeMu.Unlock()

	w.mu.Lock()
	delete(w.pending, k)
	w.mu.Unlock()

	return w.store.Clear(ctx, k)
}

// Flush waits until every write scheduled before the call has been applied.
func (w *Writer) Flush(ctx context.Context) error {
	ack := make(chan struct{})
	select {
	case w.queue <- request{flush: ack}:
	case <-w.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case <-ack:
		return nil
	case <-w.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close applies the remaining writes and stops the background goroutine.
func (w *Writer) Close() {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return
	}
	w.closed = true
	close(w.quit)
	w.mu.Unlock()

	<-w.done
}

func (w *Writer) run() {
	defer close(w.done)

	for {
		select {
		case req := <-w.queue:
			w.handle(req)
		case <-w.quit:
			for {
				select {
				case req := <-w.queue:
					w.handle(req)
				default:
					return
				}
			}
		}
	}
}

func (w *Writer) handle(req request) {
	if req.flush != nil {
		close(req.flush)
		return
	}
	w.apply(req.key)
}

func (w *Writer) apply(k model.SessionKey) {
	w.writeMu.Lock()
	defer w.writeMu.Unlock()

	w.mu.Lock()
	p, ok := w.pending[k]
	delete(w.pending, k)
	delete(w.queued, k)
	w.mu.Unlock()

	if !ok {
		return
	}

	ctx := context.Background()
	var err error
	if p.remove {
		err = w.store.Clear(ctx, k)
	} else {
		err = w.store.Save(ctx, k, p.draft)
	}
	if err != nil {
		draftLogger.Error().Err(err).Str("session_key", string(k)).Bool("remove", p.remove).Msg("Draft write failed")
	}
}
