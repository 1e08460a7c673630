package core

import (
	"context"
	"fmt"
	"io"
	"sync"
	"testing"
	"time"
)

// fakeStore is a func-field test double for the remote store. Unset
// functions succeed with zero values so tests only wire what they assert.
type fakeStore struct {
	mu    sync.Mutex
	calls map[string]int

	listFn    func(ctx context.Context) ([]Conversation, error)
	createFn  func(ctx context.Context, title string) (Conversation, error)
	renameFn  func(ctx context.Context, id, title string) (Conversation, error)
	archiveFn func(ctx context.Context, id string) (Conversation, error)
	deleteFn  func(ctx context.Context, id string) error
	getFn     func(ctx context.Context, id string) (ChatDetail, error)
	postFn    func(ctx context.Context, chatID, content string, role Role) (Message, error)
	ingestFn  func(ctx context.Context, chatID, fileName string, payload io.Reader) (Document, error)
}

func (s *fakeStore) record(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.calls == nil {
		s.calls = make(map[string]int)
	}
	s.calls[name]++
}

func (s *fakeStore) callCount(name string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[name]
}

func (s *fakeStore) ListChats(ctx context.Context) ([]Conversation, error) {
	s.record("list")
	if s.listFn != nil {
		return s.listFn(ctx)
	}
	return nil, nil
}

func (s *fakeStore) CreateChat(ctx context.Context, title string) (Conversation, error) {
	s.record("create")
	if s.createFn != nil {
		return s.createFn(ctx, title)
	}
	return Conversation{
		ID:        fmt.Sprintf("chat-%d", s.callCount("create")),
		Title:     title,
		Status:    ConversationActive,
		CreatedAt: time.Now(),
	}, nil
}

func (s *fakeStore) RenameChat(ctx context.Context, id, title string) (Conversation, error) {
	s.record("rename")
	if s.renameFn != nil {
		return s.renameFn(ctx, id, title)
	}
	return Conversation{ID: id, Title: title, Status: ConversationActive}, nil
}

func (s *fakeStore) ArchiveChat(ctx context.Context, id string) (Conversation, error) {
	s.record("archive")
	if s.archiveFn != nil {
		return s.archiveFn(ctx, id)
	}
	return Conversation{ID: id, Status: ConversationArchived}, nil
}

func (s *fakeStore) DeleteChat(ctx context.Context, id string) error {
	s.record("delete")
	if s.deleteFn != nil {
		return s.deleteFn(ctx, id)
	}
	return nil
}

func (s *fakeStore) GetChat(ctx context.Context, id string) (ChatDetail, error) {
	s.record("get")
	if s.getFn != nil {
		return s.getFn(ctx, id)
	}
	return ChatDetail{}, nil
}

func (s *fakeStore) PostMessage(ctx context.Context, chatID, content string, role Role) (Message, error) {
	s.record("post")
	if s.postFn != nil {
		return s.postFn(ctx, chatID, content, role)
	}
	return Message{ID: "remote-1", Role: RoleAssistant, Content: "ok"}, nil
}

func (s *fakeStore) IngestFile(ctx context.Context, chatID, fileName string, payload io.Reader) (Document, error) {
	s.record("ingest")
	if s.ingestFn != nil {
		return s.ingestFn(ctx, chatID, fileName, payload)
	}
	return Document{ID: "doc-1", FileName: fileName, Status: DocumentProcessing}, nil
}

// fastTimings keeps the timing-sensitive tests at millisecond scale.
func fastTimings() Timings {
	return Timings{
		PollInterval: 20 * time.Millisecond,
		UploadFloor:  120 * time.Millisecond,
		SuccessClear: 150 * time.Millisecond,
		ErrorClear:   150 * time.Millisecond,
	}
}

func newTestClient(store Store) *Client {
	return New(store, nil, WithTimings(fastTimings()))
}

// eventually polls cond until it holds or the deadline passes.
func eventually(t *testing.T, d time.Duration, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(d)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatalf("condition not reached within %v: %s", d, msg)
}
