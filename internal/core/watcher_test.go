package core

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/goleak"
)

func TestWatcherResolvesToTerminal(t *testing.T) {
	defer goleak.VerifyNone(t)

	var polls int32
	store := &fakeStore{
		getFn: func(ctx context.Context, id string) (ChatDetail, error) {
			n := atomic.AddInt32(&polls, 1)
			status := DocumentProcessing
			if n >= 3 {
				status = DocumentCompleted
			}
			return ChatDetail{Documents: []Document{{ID: "d1", Status: status}}}, nil
		},
	}
	client := newTestClient(store)
	client.Cache().Reset("chat-1")

	client.Watcher().Ensure("chat-1")
	client.Watcher().Wait()

	if client.Watcher().Running("chat-1") {
		t.Error("watcher must return to idle once nothing is processing")
	}
	docs := client.Cache().Documents()
	if len(docs) != 1 || docs[0].Status != DocumentCompleted {
		t.Errorf("cache should hold the terminal snapshot, got %+v", docs)
	}
	if got := atomic.LoadInt32(&polls); got != 3 {
		t.Errorf("expected 3 polls, got %d", got)
	}
}

func TestWatcherStopsOnPollFailure(t *testing.T) {
	defer goleak.VerifyNone(t)

	store := &fakeStore{
		getFn: func(ctx context.Context, id string) (ChatDetail, error) {
			return ChatDetail{}, errRemote
		},
	}
	client := newTestClient(store)
	client.Cache().Reset("chat-1")
	client.Cache().applyDocuments("chat-1", client.Cache().nextFetchSeq(),
		[]Document{{ID: "d1", Status: DocumentProcessing}})

	client.Watcher().Ensure("chat-1")
	client.Watcher().Wait()

	if store.callCount("get") != 1 {
		t.Errorf("a failed poll must not be retried, got %d polls", store.callCount("get"))
	}
	docs := client.Cache().Documents()
	if len(docs) != 1 || docs[0].Status != DocumentProcessing {
		t.Error("a failed poll must not resolve documents locally")
	}
}

func TestEnsureDeduplicatesLoops(t *testing.T) {
	defer goleak.VerifyNone(t)

	var inFlight, maxInFlight, polls int32
	release := make(chan struct{})
	store := &fakeStore{
		getFn: func(ctx context.Context, id string) (ChatDetail, error) {
			cur := atomic.AddInt32(&inFlight, 1)
			for {
				prev := atomic.LoadInt32(&maxInFlight)
				if cur <= prev || atomic.CompareAndSwapInt32(&maxInFlight, prev, cur) {
					break
				}
			}
			defer atomic.AddInt32(&inFlight, -1)

			status := DocumentProcessing
			select {
			case <-release:
				status = DocumentCompleted
			default:
			}
			atomic.AddInt32(&polls, 1)
			return ChatDetail{Documents: []Document{{ID: "d1", Status: status}}}, nil
		},
	}
	client := newTestClient(store)
	client.Cache().Reset("chat-1")

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			client.Watcher().Ensure("chat-1")
		}()
	}
	wg.Wait()

	// Let the single loop tick a few times while still processing.
	eventually(t, time.Second, func() bool {
		return atomic.LoadInt32(&polls) >= 4
	}, "watcher should keep polling at the fixed interval")

	close(release)
	client.Watcher().Wait()

	if got := atomic.LoadInt32(&maxInFlight); got != 1 {
		t.Errorf("overlapping triggers must collapse to one poll loop, saw %d concurrent polls", got)
	}
}

func TestWatchersForDifferentConversationsAreIndependent(t *testing.T) {
	defer goleak.VerifyNone(t)

	store := &fakeStore{
		getFn: func(ctx context.Context, id string) (ChatDetail, error) {
			return ChatDetail{Documents: []Document{{ID: "d-" + id, Status: DocumentCompleted}}}, nil
		},
	}
	client := newTestClient(store)
	client.Cache().Reset("chat-b")

	client.Watcher().Ensure("chat-a")
	client.Watcher().Ensure("chat-b")
	client.Watcher().Wait()

	// Only the loop bound to the displayed conversation may land its write.
	docs := client.Cache().Documents()
	if len(docs) != 1 || docs[0].ID != "d-chat-b" {
		t.Errorf("cache holds %+v, want only chat-b's snapshot", docs)
	}
}
