package core

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Watcher resolves in-flight document ingestion by re-fetching a
// conversation's document list at a fixed interval until nothing is left in
// the processing state. There is at most one poll loop per conversation;
// overlapping triggers join the running loop instead of starting another.
//
// A loop is never cancelled when the user switches conversation: it keeps
// polling to completion or failure, and its writes are gated at the cache
// boundary by conversation id and fetch sequence, so a loop for an abandoned
// conversation finishes harmlessly.
type Watcher struct {
	mu       sync.Mutex
	store    Store
	cache    *Cache
	log      *zap.Logger
	notify   notifyFunc
	interval time.Duration

	running map[string]bool
	wg      sync.WaitGroup
}

func newWatcher(store Store, cache *Cache, log *zap.Logger, notify notifyFunc, interval time.Duration) *Watcher {
	return &Watcher{
		store:    store,
		cache:    cache,
		log:      log,
		notify:   notify,
		interval: interval,
		running:  make(map[string]bool),
	}
}

// Ensure starts a poll loop for the conversation unless one is already
// running.
func (w *Watcher) Ensure(convID string) {
	w.mu.Lock()
	if w.running[convID] {
		w.mu.Unlock()
		return
	}
	w.running[convID] = true
	w.wg.Add(1)
	w.mu.Unlock()

	w.log.Debug("watcher started", zap.String("conversation", convID))
	w.notify(Event{Kind: EventWatcher, ConversationID: convID})
	go w.poll(convID)
}

// Running reports whether a poll loop is active for the conversation.
func (w *Watcher) Running(convID string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running[convID]
}

// Wait blocks until every poll loop has exited. Used by tests and shutdown.
func (w *Watcher) Wait() {
	w.wg.Wait()
}

func (w *Watcher) poll(convID string) {
	defer func() {
		w.mu.Lock()
		delete(w.running, convID)
		w.mu.Unlock()
		w.notify(Event{Kind: EventWatcher, ConversationID: convID})
		w.wg.Done()
	}()

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for range ticker.C {
		seq := w.cache.nextFetchSeq()
		detail, err := w.store.GetChat(context.Background(), convID)
		if err != nil {
			// A broken connection must not spin forever, but it also
			// resolves nothing: documents stay processing until the
			// user re-triggers a load.
			w.log.Warn("poll failed, watcher stopping",
				zap.String("conversation", convID), zap.Error(err))
			w.notify(Event{Kind: EventError, ConversationID: convID, Err: err})
			return
		}

		w.cache.applyDocuments(convID, seq, detail.Documents)

		if !anyProcessing(detail.Documents) {
			w.log.Debug("watcher resolved", zap.String("conversation", convID))
			return
		}
	}
}
