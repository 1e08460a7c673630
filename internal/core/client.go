package core

import (
	"context"
	"io"
	"strings"

	"go.uber.org/zap"
)

// Client wires the registry, cache, watcher and uploader over one Store and
// publishes their change events on a single channel for the presentation
// layer.
type Client struct {
	store   Store
	log     *zap.Logger
	timings Timings

	registry *Registry
	cache    *Cache
	watcher  *Watcher
	uploader *Uploader

	events chan Event
}

// Option configures a Client.
type Option func(*Client)

// WithTimings overrides the default delays. Tests use millisecond-scale
// values; production keeps DefaultTimings.
func WithTimings(t Timings) Option {
	return func(c *Client) { c.timings = t }
}

// New builds a fully wired client over the given store.
func New(store Store, log *zap.Logger, opts ...Option) *Client {
	if log == nil {
		log = zap.NewNop()
	}
	c := &Client{
		store:   store,
		log:     log,
		timings: DefaultTimings(),
		events:  make(chan Event, 64),
	}
	for _, opt := range opts {
		opt(c)
	}

	c.cache = newCache(store, log, c.emit)
	c.watcher = newWatcher(store, c.cache, log, c.emit, c.timings.PollInterval)
	c.cache.watcher = c.watcher
	c.registry = newRegistry(store, c.cache, log, c.emit)
	c.uploader = newUploader(store, c.cache, c.watcher, log, c.emit, c.timings)
	return c
}

// Events is the change-notification stream. Events are coalescing edge
// triggers; consumers re-read snapshots on receipt.
func (c *Client) Events() <-chan Event {
	return c.events
}

// Registry returns the session registry.
func (c *Client) Registry() *Registry { return c.registry }

// Cache returns the conversation cache.
func (c *Client) Cache() *Cache { return c.cache }

// Watcher returns the ingestion watcher.
func (c *Client) Watcher() *Watcher { return c.watcher }

// Uploader returns the upload lifecycle controller.
func (c *Client) Uploader() *Uploader { return c.uploader }

// Send delivers a user message to the selected conversation, creating one
// first when none is selected. Empty or whitespace-only content is silently
// ignored: no message, no remote call.
func (c *Client) Send(ctx context.Context, content string) error {
	if strings.TrimSpace(content) == "" {
		return nil
	}
	if _, err := c.ensureConversation(ctx, TitleFromContent(content)); err != nil {
		return err
	}
	return c.cache.Send(ctx, content)
}

// Upload attaches a file to the selected conversation, creating one first
// when none is selected.
func (c *Client) Upload(ctx context.Context, fileName string, payload io.Reader) error {
	if c.uploader.Busy() {
		return ErrUploadInFlight
	}
	convID, err := c.ensureConversation(ctx, TitleFromFile(fileName))
	if err != nil {
		return err
	}
	return c.uploader.Upload(ctx, convID, fileName, payload)
}

// ensureConversation returns the selected conversation id, creating a fresh
// conversation with the given title when nothing is selected. Both the first
// message and the first upload funnel through here; only the title policy
// differs between the two callers.
func (c *Client) ensureConversation(ctx context.Context, title string) (string, error) {
	if id := c.registry.SelectedID(); id != "" {
		return id, nil
	}
	chat, err := c.registry.Create(ctx, title)
	if err != nil {
		return "", err
	}
	return chat.ID, nil
}

// emit publishes an event without ever blocking a component. When the buffer
// is full the event is dropped; snapshots make this safe (see Event).
func (c *Client) emit(e Event) {
	select {
	case c.events <- e:
	default:
	}
}
