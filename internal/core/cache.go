package core

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Cache holds the transcript and document set of the currently selected
// conversation. It is the only mutable shared state in the core; every write
// goes through its methods, and every write is gated on the conversation id
// it was issued for so late results from an abandoned conversation cannot
// contaminate the one on screen.
type Cache struct {
	mu      sync.Mutex
	store   Store
	log     *zap.Logger
	notify  notifyFunc
	watcher *Watcher

	loads singleflight.Group

	conversationID string
	messages       []Message
	documents      []Document
	sending        bool

	// Document snapshots are sequence-stamped at fetch issue time and
	// applied last-write-wins by completion order: a poll response older
	// than the last applied snapshot is discarded rather than allowed to
	// resurrect a stale processing status.
	fetchSeq   uint64
	appliedSeq uint64
}

func newCache(store Store, log *zap.Logger, notify notifyFunc) *Cache {
	return &Cache{store: store, log: log, notify: notify}
}

// ConversationID returns the conversation this cache is valid for.
func (c *Cache) ConversationID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conversationID
}

// Messages returns a copy of the current transcript.
func (c *Cache) Messages() []Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Message, len(c.messages))
	copy(out, c.messages)
	return out
}

// Documents returns a copy of the current document set.
func (c *Cache) Documents() []Document {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Document, len(c.documents))
	copy(out, c.documents)
	return out
}

// Sending reports whether a message send is in flight. The presentation
// layer uses it for the pending indicator; the core itself does not block
// further sends.
func (c *Cache) Sending() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sending
}

// Reset discards all cached state and rebinds the cache to id ("" for none).
func (c *Cache) Reset(id string) {
	c.mu.Lock()
	c.conversationID = id
	c.messages = nil
	c.documents = nil
	c.mu.Unlock()

	c.notify(Event{Kind: EventTranscript, ConversationID: id})
	c.notify(Event{Kind: EventDocuments, ConversationID: id})
}

// Load rebinds the cache to id and replaces it with a fresh fetch.
// Concurrent loads of the same conversation are collapsed into one request.
// If any fetched document is still processing, the ingestion watcher is
// started for the conversation.
func (c *Cache) Load(ctx context.Context, id string) error {
	c.Reset(id)

	seq := c.nextFetchSeq()
	detail, err, _ := c.loads.Do(id, func() (interface{}, error) {
		return c.store.GetChat(ctx, id)
	})
	if err != nil {
		c.log.Warn("load conversation failed", zap.String("id", id), zap.Error(err))
		return err
	}

	d := detail.(ChatDetail)

	c.mu.Lock()
	if c.conversationID == id {
		c.messages = append([]Message(nil), d.Messages...)
		if seq > c.appliedSeq {
			c.appliedSeq = seq
			c.documents = append([]Document(nil), d.Documents...)
		}
	}
	c.mu.Unlock()

	c.notify(Event{Kind: EventTranscript, ConversationID: id})
	c.notify(Event{Kind: EventDocuments, ConversationID: id})

	if c.watcher != nil && anyProcessing(d.Documents) {
		c.watcher.Ensure(id)
	}
	return nil
}

// Send appends an optimistic local copy of the user message, issues the
// remote call, and appends whatever record the store returns. The optimistic
// entry is intentionally kept alongside the authoritative one; on failure it
// stays visible and no error is injected into the transcript.
func (c *Cache) Send(ctx context.Context, content string) error {
	c.mu.Lock()
	convID := c.conversationID
	c.messages = append(c.messages, Message{
		ID:        "local-" + uuid.NewString(),
		Role:      RoleUser,
		Content:   content,
		CreatedAt: time.Now(),
	})
	c.sending = true
	c.mu.Unlock()
	c.notify(Event{Kind: EventTranscript, ConversationID: convID})

	reply, err := c.store.PostMessage(ctx, convID, content, RoleUser)

	c.mu.Lock()
	c.sending = false
	if err == nil && c.conversationID == convID {
		c.messages = append(c.messages, reply)
	}
	c.mu.Unlock()
	c.notify(Event{Kind: EventTranscript, ConversationID: convID})

	if err != nil {
		c.log.Warn("send message failed", zap.String("conversation", convID), zap.Error(err))
		return err
	}
	return nil
}

// AddDocument appends a freshly accepted document record, provided the cache
// is still bound to the conversation it belongs to.
func (c *Cache) AddDocument(convID string, doc Document) {
	c.mu.Lock()
	if c.conversationID == convID {
		c.documents = append(c.documents, doc)
	}
	c.mu.Unlock()
	c.notify(Event{Kind: EventDocuments, ConversationID: convID})
}

// nextFetchSeq stamps a document fetch at issue time.
func (c *Cache) nextFetchSeq() uint64 {
	return atomic.AddUint64(&c.fetchSeq, 1)
}

// applyDocuments overwrites the document set with a fetched snapshot. The
// write is dropped when the cache has moved to another conversation or when
// a newer snapshot was already applied. Reports whether the write landed.
func (c *Cache) applyDocuments(convID string, seq uint64, docs []Document) bool {
	c.mu.Lock()
	if c.conversationID != convID || seq <= c.appliedSeq {
		c.mu.Unlock()
		return false
	}
	c.appliedSeq = seq
	c.documents = append([]Document(nil), docs...)
	c.mu.Unlock()

	c.notify(Event{Kind: EventDocuments, ConversationID: convID})
	return true
}

func anyProcessing(docs []Document) bool {
	for _, d := range docs {
		if d.Status == DocumentProcessing {
			return true
		}
	}
	return false
}
