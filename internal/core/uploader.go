package core

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"go.uber.org/zap"
)

// ErrUploadInFlight is returned when an upload is attempted while another is
// still in the uploading phase. The presentation layer is expected to check
// Busy first and disable the control instead of showing this as an error.
var ErrUploadInFlight = errors.New("upload already in progress")

// UploadPhase is the observable state of one upload attempt.
type UploadPhase int

const (
	PhaseUploading UploadPhase = iota
	PhaseSuccess
	PhaseError
)

func (p UploadPhase) String() string {
	switch p {
	case PhaseUploading:
		return "uploading"
	case PhaseSuccess:
		return "success"
	case PhaseError:
		return "error"
	default:
		return "unknown"
	}
}

// Ticket is the ephemeral visible record of one upload attempt. At most one
// ticket exists at a time; a new upload replaces it outright.
type Ticket struct {
	FileName string
	Phase    UploadPhase
}

// Uploader drives the upload lifecycle: uploading -> success/error ->
// cleared. The uploading phase is held on screen for at least the configured
// floor even when the remote call resolves faster, and terminal phases clear
// themselves after a fixed delay. Every timer callback re-checks that the
// ticket it would mutate is still the current one, so a superseding upload
// deterministically invalidates a pending dismissal.
type Uploader struct {
	mu      sync.Mutex
	store   Store
	cache   *Cache
	watcher *Watcher
	log     *zap.Logger
	notify  notifyFunc
	timings Timings

	ticket *Ticket
	gen    uint64
}

func newUploader(store Store, cache *Cache, watcher *Watcher, log *zap.Logger, notify notifyFunc, timings Timings) *Uploader {
	return &Uploader{
		store:   store,
		cache:   cache,
		watcher: watcher,
		log:     log,
		notify:  notify,
		timings: timings,
	}
}

// Busy reports whether an upload is in the uploading phase.
func (u *Uploader) Busy() bool {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.ticket != nil && u.ticket.Phase == PhaseUploading
}

// Ticket returns the current ticket, if any.
func (u *Uploader) Ticket() (Ticket, bool) {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.ticket == nil {
		return Ticket{}, false
	}
	return *u.ticket, true
}

// Upload sends the file to the ingestion endpoint for convID and walks the
// ticket through its phases. It blocks until the terminal phase is entered
// (including the minimum-visible floor) and returns the remote error, if
// any. The underlying document work is never cancelled by later uploads.
func (u *Uploader) Upload(ctx context.Context, convID, fileName string, payload io.Reader) error {
	u.mu.Lock()
	if u.ticket != nil && u.ticket.Phase == PhaseUploading {
		u.mu.Unlock()
		return ErrUploadInFlight
	}
	u.gen++
	gen := u.gen
	u.ticket = &Ticket{FileName: fileName, Phase: PhaseUploading}
	u.mu.Unlock()
	u.notify(Event{Kind: EventTicket, ConversationID: convID})

	start := time.Now()
	doc, err := u.store.IngestFile(ctx, convID, fileName, payload)

	// Hold the uploading phase for the remainder of the floor so fast
	// networks don't produce a flicker.
	if remain := u.timings.UploadFloor - time.Since(start); remain > 0 {
		time.Sleep(remain)
	}

	clearAfter := u.timings.SuccessClear
	u.mu.Lock()
	if u.gen != gen {
		// Superseded while waiting; the newer ticket owns the display.
		u.mu.Unlock()
		return err
	}
	if err != nil {
		u.ticket.Phase = PhaseError
		clearAfter = u.timings.ErrorClear
	} else {
		u.ticket.Phase = PhaseSuccess
	}
	u.mu.Unlock()
	u.notify(Event{Kind: EventTicket, ConversationID: convID})

	if err != nil {
		u.log.Warn("upload failed", zap.String("conversation", convID),
			zap.String("file", fileName), zap.Error(err))
	} else {
		u.log.Info("upload accepted", zap.String("conversation", convID),
			zap.String("file", fileName), zap.String("document", doc.ID))
		u.cache.AddDocument(convID, doc)
		u.watcher.Ensure(convID)
	}

	time.AfterFunc(clearAfter, func() {
		u.mu.Lock()
		stale := u.gen != gen || u.ticket == nil
		if !stale {
			u.ticket = nil
		}
		u.mu.Unlock()
		if !stale {
			u.notify(Event{Kind: EventTicket, ConversationID: convID})
		}
	})

	return err
}
