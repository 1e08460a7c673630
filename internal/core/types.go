// Package core implements the client-side synchronization state machine for
// FusionChat: the conversation registry, the per-conversation cache, the
// document ingestion watcher, and the upload lifecycle controller. The remote
// store itself is consumed through the Store interface; internal/gateway
// provides the HTTP implementation.
package core

import (
	"context"
	"io"
	"time"
)

// Role identifies the author of a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ConversationStatus is the lifecycle state of a conversation.
type ConversationStatus string

const (
	ConversationActive   ConversationStatus = "active"
	ConversationArchived ConversationStatus = "archived"
)

// DocumentStatus is the ingestion state of an attached document.
// Completed and Failed are terminal.
type DocumentStatus string

const (
	DocumentProcessing DocumentStatus = "processing"
	DocumentCompleted  DocumentStatus = "completed"
	DocumentFailed     DocumentStatus = "failed"
)

// Terminal reports whether no further status transition can occur.
func (s DocumentStatus) Terminal() bool {
	return s == DocumentCompleted || s == DocumentFailed
}

// Conversation is a titled thread of messages and documents.
type Conversation struct {
	ID        string             `json:"id"`
	Title     string             `json:"title"`
	Status    ConversationStatus `json:"status"`
	CreatedAt time.Time          `json:"created_at"`
}

// Message is a single transcript entry. Messages are append-only and never
// mutated after creation.
type Message struct {
	ID        string    `json:"id"`
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// Document is a file attached to a conversation. Only the watcher poll loop
// moves its status, and never out of a terminal state.
type Document struct {
	ID       string         `json:"id"`
	FileName string         `json:"file_name"`
	FileSize int64          `json:"file_size"`
	FileType string         `json:"file_type"`
	Status   DocumentStatus `json:"status"`
}

// ChatDetail is the full state of one conversation as held by the remote
// store: the ordered transcript plus the attached document set.
type ChatDetail struct {
	Messages  []Message  `json:"messages"`
	Documents []Document `json:"documents"`
}

// Store is the remote store gateway consumed by the core. All calls are
// plain request/response; status changes are observed only by re-fetching.
type Store interface {
	ListChats(ctx context.Context) ([]Conversation, error)
	CreateChat(ctx context.Context, title string) (Conversation, error)
	RenameChat(ctx context.Context, id, title string) (Conversation, error)
	ArchiveChat(ctx context.Context, id string) (Conversation, error)
	DeleteChat(ctx context.Context, id string) error
	GetChat(ctx context.Context, id string) (ChatDetail, error)
	PostMessage(ctx context.Context, chatID, content string, role Role) (Message, error)
	IngestFile(ctx context.Context, chatID, fileName string, payload io.Reader) (Document, error)
}

// Timings holds the delays that shape the observable behavior of the core.
// Production uses Defaults; tests inject millisecond-scale values.
type Timings struct {
	// PollInterval is the fixed delay between watcher polls.
	PollInterval time.Duration
	// UploadFloor is the minimum visible duration of the uploading phase.
	UploadFloor time.Duration
	// SuccessClear is how long a successful upload ticket stays visible.
	SuccessClear time.Duration
	// ErrorClear is how long a failed upload ticket stays visible.
	ErrorClear time.Duration
}

// DefaultTimings returns the production delays.
func DefaultTimings() Timings {
	return Timings{
		PollInterval: 3 * time.Second,
		UploadFloor:  800 * time.Millisecond,
		SuccessClear: 2 * time.Second,
		ErrorClear:   3 * time.Second,
	}
}

const (
	// DefaultTitle is used when a conversation is created without one.
	DefaultTitle = "New Conversation"

	titleMaxRunes = 30
)

// TitleFromContent derives a conversation title from the first message sent
// into a not-yet-created conversation: the first 30 characters, with an
// ellipsis marker only when the content was longer.
func TitleFromContent(content string) string {
	rs := []rune(content)
	if len(rs) <= titleMaxRunes {
		return content
	}
	return string(rs[:titleMaxRunes]) + "..."
}

// TitleFromFile derives a conversation title when the first action in a
// fresh session is a document upload.
func TitleFromFile(fileName string) string {
	return "Doc: " + fileName
}
