package core

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSendEmptyContentIsNoOp(t *testing.T) {
	store := &fakeStore{}
	client := newTestClient(store)
	ctx := context.Background()

	for _, content := range []string{"", "   ", "\n\t "} {
		if err := client.Send(ctx, content); err != nil {
			t.Fatalf("Send(%q): %v", content, err)
		}
	}

	if n := store.callCount("post"); n != 0 {
		t.Errorf("expected no remote calls, got %d", n)
	}
	if n := store.callCount("create"); n != 0 {
		t.Errorf("blank send must not create a conversation, got %d creates", n)
	}
	if len(client.Cache().Messages()) != 0 {
		t.Error("blank send must not produce a message")
	}
}

func TestSendCreatesConversationFromContent(t *testing.T) {
	long := strings.Repeat("a", 40)
	cases := []struct {
		content string
		title   string
	}{
		{"Hello", "Hello"},
		{strings.Repeat("b", 30), strings.Repeat("b", 30)},
		{long, strings.Repeat("a", 30) + "..."},
	}

	for _, tc := range cases {
		store := &fakeStore{}
		client := newTestClient(store)

		require.NoError(t, client.Send(context.Background(), tc.content))

		chats := client.Registry().Conversations()
		require.Len(t, chats, 1)
		assert.Equal(t, tc.title, chats[0].Title)
		assert.Equal(t, chats[0].ID, client.Registry().SelectedID())
	}
}

// Pins the literal behavior of the send path: the optimistic local copy is
// appended first and the store's reply is appended additively, so the
// transcript holds both the local "Hello" and the authoritative exchange
// without any merging of the two.
func TestSendKeepsOptimisticCopy(t *testing.T) {
	store := &fakeStore{
		postFn: func(ctx context.Context, chatID, content string, role Role) (Message, error) {
			return Message{ID: "m-2", Role: RoleAssistant, Content: "Hi there"}, nil
		},
	}
	client := newTestClient(store)

	require.NoError(t, client.Send(context.Background(), "Hello"))

	msgs := client.Cache().Messages()
	require.Len(t, msgs, 2)

	assert.Equal(t, RoleUser, msgs[0].Role)
	assert.Equal(t, "Hello", msgs[0].Content)
	assert.True(t, strings.HasPrefix(msgs[0].ID, "local-"), "optimistic entry keeps its local id")

	assert.Equal(t, RoleAssistant, msgs[1].Role)
	assert.Equal(t, "Hi there", msgs[1].Content)
}

func TestSendFailureKeepsOptimisticEntry(t *testing.T) {
	store := &fakeStore{
		postFn: func(ctx context.Context, chatID, content string, role Role) (Message, error) {
			return Message{}, errRemote
		},
	}
	client := newTestClient(store)

	err := client.Send(context.Background(), "Hello")
	require.Error(t, err)

	msgs := client.Cache().Messages()
	require.Len(t, msgs, 1, "optimistic entry stays, no error message is injected")
	assert.Equal(t, "Hello", msgs[0].Content)
	assert.False(t, client.Cache().Sending())
}

func TestSendOrderFollowsCallOrder(t *testing.T) {
	var replies int
	store := &fakeStore{
		postFn: func(ctx context.Context, chatID, content string, role Role) (Message, error) {
			replies++
			return Message{ID: fmt.Sprintf("m-%d", replies), Role: RoleAssistant, Content: "re: " + content}, nil
		},
	}
	client := newTestClient(store)
	ctx := context.Background()

	for _, content := range []string{"one", "two", "three"} {
		require.NoError(t, client.Send(ctx, content))
	}

	var got []string
	for _, m := range client.Cache().Messages() {
		got = append(got, m.Content)
	}
	want := []string{"one", "re: one", "two", "re: two", "three", "re: three"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("transcript order mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadReplacesCacheAndStartsWatcher(t *testing.T) {
	processing := []Document{{ID: "d1", FileName: "handbook.pdf", Status: DocumentProcessing}}
	done := []Document{{ID: "d1", FileName: "handbook.pdf", Status: DocumentCompleted}}

	store := &fakeStore{}
	store.getFn = func(ctx context.Context, id string) (ChatDetail, error) {
		if store.callCount("get") == 1 {
			return ChatDetail{
				Messages:  []Message{{ID: "m1", Role: RoleUser, Content: "hi"}},
				Documents: processing,
			}, nil
		}
		return ChatDetail{Documents: done}, nil
	}

	client := newTestClient(store)
	require.NoError(t, client.Cache().Load(context.Background(), "chat-1"))

	require.Len(t, client.Cache().Messages(), 1)
	require.True(t, client.Watcher().Running("chat-1") || store.callCount("get") > 1,
		"processing document must trigger the watcher")

	eventually(t, time.Second, func() bool {
		docs := client.Cache().Documents()
		return len(docs) == 1 && docs[0].Status == DocumentCompleted
	}, "watcher should resolve the document set")
	client.Watcher().Wait()
}

func TestSwitchingConversationDiscardsCache(t *testing.T) {
	store := &fakeStore{
		getFn: func(ctx context.Context, id string) (ChatDetail, error) {
			if id == "chat-a" {
				return ChatDetail{Messages: []Message{{ID: "a1", Role: RoleUser, Content: "from a"}}}, nil
			}
			return ChatDetail{}, nil
		},
	}
	client := newTestClient(store)
	ctx := context.Background()

	require.NoError(t, client.Cache().Load(ctx, "chat-a"))
	require.Len(t, client.Cache().Messages(), 1)

	require.NoError(t, client.Cache().Load(ctx, "chat-b"))
	assert.Empty(t, client.Cache().Messages(), "previous conversation's transcript must not leak")
	assert.Equal(t, "chat-b", client.Cache().ConversationID())
}

func TestStaleSnapshotIsDiscarded(t *testing.T) {
	client := newTestClient(&fakeStore{})
	cache := client.Cache()
	cache.Reset("chat-1")

	early := cache.nextFetchSeq()
	late := cache.nextFetchSeq()

	fresh := []Document{{ID: "d1", Status: DocumentCompleted}}
	stale := []Document{{ID: "d1", Status: DocumentProcessing}}

	if !cache.applyDocuments("chat-1", late, fresh) {
		t.Fatal("fresh snapshot must apply")
	}
	if cache.applyDocuments("chat-1", early, stale) {
		t.Fatal("out-of-order snapshot must be discarded")
	}

	docs := cache.Documents()
	if diff := cmp.Diff(fresh, docs); diff != "" {
		t.Errorf("stale poll resurrected old status (-want +got):\n%s", diff)
	}
}

func TestApplyDocumentsIgnoresOtherConversations(t *testing.T) {
	client := newTestClient(&fakeStore{})
	cache := client.Cache()
	cache.Reset("chat-current")

	seq := cache.nextFetchSeq()
	if cache.applyDocuments("chat-old", seq, []Document{{ID: "d9"}}) {
		t.Fatal("write for a different conversation must be dropped")
	}
	if len(cache.Documents()) != 0 {
		t.Error("displayed cache was contaminated by another conversation")
	}
}
