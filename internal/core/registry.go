package core

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// Registry owns the set of known conversations and the current selection.
// All mutations are remote-first: local state only changes after the store
// acknowledged, so the list never references a conversation that does not
// exist remotely.
type Registry struct {
	mu     sync.RWMutex
	store  Store
	log    *zap.Logger
	notify notifyFunc
	cache  *Cache

	conversations []Conversation
	selectedID    string
}

func newRegistry(store Store, cache *Cache, log *zap.Logger, notify notifyFunc) *Registry {
	return &Registry{
		store:  store,
		cache:  cache,
		log:    log,
		notify: notify,
	}
}

// Refresh replaces the conversation list with the store's authoritative
// ordering. On failure the prior list is kept.
func (r *Registry) Refresh(ctx context.Context) error {
	chats, err := r.store.ListChats(ctx)
	if err != nil {
		r.log.Warn("list conversations failed", zap.Error(err))
		return err
	}

	r.mu.Lock()
	r.conversations = chats
	r.mu.Unlock()

	r.notify(Event{Kind: EventConversations})
	return nil
}

// Conversations returns a copy of the current list, most recent first.
func (r *Registry) Conversations() []Conversation {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Conversation, len(r.conversations))
	copy(out, r.conversations)
	return out
}

// SelectedID returns the id of the selected conversation, or "" when none.
func (r *Registry) SelectedID() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.selectedID
}

// Select makes id the active conversation and loads its cache. The previous
// conversation's cache is discarded before the fetch, so a failed load shows
// an empty transcript rather than stale entries from another conversation.
func (r *Registry) Select(ctx context.Context, id string) error {
	r.mu.Lock()
	r.selectedID = id
	r.mu.Unlock()
	r.notify(Event{Kind: EventConversations, ConversationID: id})

	return r.cache.Load(ctx, id)
}

// Create asks the store for a new conversation, inserts it at the front of
// the list and selects it. An empty title falls back to DefaultTitle. On
// failure nothing changes locally.
func (r *Registry) Create(ctx context.Context, title string) (Conversation, error) {
	if title == "" {
		title = DefaultTitle
	}

	chat, err := r.store.CreateChat(ctx, title)
	if err != nil {
		r.log.Warn("create conversation failed", zap.String("title", title), zap.Error(err))
		return Conversation{}, err
	}

	r.mu.Lock()
	r.conversations = append([]Conversation{chat}, r.conversations...)
	r.selectedID = chat.ID
	r.mu.Unlock()

	r.cache.Reset(chat.ID)
	r.notify(Event{Kind: EventConversations, ConversationID: chat.ID})
	r.log.Info("conversation created", zap.String("id", chat.ID), zap.String("title", chat.Title))
	return chat, nil
}

// Rename updates a conversation title after remote acknowledgment. There is
// no optimistic rename: on failure the displayed title is unchanged. Exiting
// edit mode on submit is the presentation layer's job regardless of outcome.
func (r *Registry) Rename(ctx context.Context, id, title string) error {
	chat, err := r.store.RenameChat(ctx, id, title)
	if err != nil {
		r.log.Warn("rename conversation failed", zap.String("id", id), zap.Error(err))
		return err
	}

	r.mu.Lock()
	for i := range r.conversations {
		if r.conversations[i].ID == id {
			r.conversations[i] = chat
			break
		}
	}
	r.mu.Unlock()

	r.notify(Event{Kind: EventConversations, ConversationID: id})
	return nil
}

// Archive moves a conversation out of the active list, remote call first.
func (r *Registry) Archive(ctx context.Context, id string) error {
	if _, err := r.store.ArchiveChat(ctx, id); err != nil {
		r.log.Warn("archive conversation failed", zap.String("id", id), zap.Error(err))
		return err
	}
	r.removeLocal(id)
	return nil
}

// Delete removes a conversation from the registry and the remote store.
func (r *Registry) Delete(ctx context.Context, id string) error {
	if err := r.store.DeleteChat(ctx, id); err != nil {
		r.log.Warn("delete conversation failed", zap.String("id", id), zap.Error(err))
		return err
	}
	r.removeLocal(id)
	return nil
}

// removeLocal drops id from the list. If it was selected, the selection
// becomes none and the cache is cleared as a unit so messages and documents
// from the removed conversation never linger on screen.
func (r *Registry) removeLocal(id string) {
	r.mu.Lock()
	kept := r.conversations[:0]
	for _, c := range r.conversations {
		if c.ID != id {
			kept = append(kept, c)
		}
	}
	r.conversations = kept
	wasSelected := r.selectedID == id
	if wasSelected {
		r.selectedID = ""
	}
	r.mu.Unlock()

	if wasSelected {
		r.cache.Reset("")
	}
	r.notify(Event{Kind: EventConversations})
}
