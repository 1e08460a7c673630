package core

// EventKind labels a change notification from the core.
type EventKind int

const (
	// EventConversations: the conversation list or selection changed.
	EventConversations EventKind = iota
	// EventTranscript: messages of the selected conversation changed.
	EventTranscript
	// EventDocuments: the document set of the selected conversation changed.
	EventDocuments
	// EventTicket: the upload ticket appeared, advanced phase, or cleared.
	EventTicket
	// EventWatcher: a poll loop started or stopped.
	EventWatcher
	// EventError: a remote call failed; Err carries the cause.
	EventError
)

// Event is an edge trigger, not a state carrier: consumers react by
// re-reading the relevant snapshot (Conversations, Messages, Documents,
// Ticket). Dropping a coalesced event is therefore harmless as long as a
// later one arrives, which the buffered emitter guarantees for bursts.
type Event struct {
	Kind           EventKind
	ConversationID string
	Err            error
}

// notifyFunc is how components publish change events.
type notifyFunc func(Event)
