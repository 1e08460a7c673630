// Package gateway is the HTTP implementation of the remote store contract:
// chat CRUD under /chats and document ingestion under /ingest/file. All
// calls are synchronous request/response; there is no streaming or webhook
// channel, so ingestion progress is observed by re-fetching GET /chats/{id}.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hereisSwapnil/FusionChat/internal/core"
)

// DefaultServerURL matches the development backend.
const DefaultServerURL = "http://localhost:8000"

// Client talks to the FusionChat backend. It implements core.Store.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New returns a gateway client for the given server. The timeout is generous
// because sending a message blocks on assistant generation server-side.
func New(baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultServerURL
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 90 * time.Second},
	}
}

// ListChats returns the active conversations, most recent first.
func (c *Client) ListChats(ctx context.Context) ([]core.Conversation, error) {
	var chats []core.Conversation
	err := c.doJSON(ctx, http.MethodGet, "/chats?status="+string(core.ConversationActive), nil, &chats)
	return chats, err
}

// CreateChat creates a conversation with the given title.
func (c *Client) CreateChat(ctx context.Context, title string) (core.Conversation, error) {
	var chat core.Conversation
	err := c.doJSON(ctx, http.MethodPost, "/chats", map[string]string{"title": title}, &chat)
	return chat, err
}

// RenameChat updates a conversation title.
func (c *Client) RenameChat(ctx context.Context, id, title string) (core.Conversation, error) {
	var chat core.Conversation
	err := c.doJSON(ctx, http.MethodPatch, "/chats/"+url.PathEscape(id), map[string]string{"title": title}, &chat)
	return chat, err
}

// ArchiveChat flips a conversation to archived status.
func (c *Client) ArchiveChat(ctx context.Context, id string) (core.Conversation, error) {
	var chat core.Conversation
	err := c.doJSON(ctx, http.MethodPatch, "/chats/"+url.PathEscape(id),
		map[string]string{"status": string(core.ConversationArchived)}, &chat)
	return chat, err
}

// DeleteChat removes a conversation permanently.
func (c *Client) DeleteChat(ctx context.Context, id string) error {
	return c.doJSON(ctx, http.MethodDelete, "/chats/"+url.PathEscape(id), nil, nil)
}

// GetChat fetches the full transcript and document set of a conversation.
func (c *Client) GetChat(ctx context.Context, id string) (core.ChatDetail, error) {
	var detail core.ChatDetail
	err := c.doJSON(ctx, http.MethodGet, "/chats/"+url.PathEscape(id), nil, &detail)
	return detail, err
}

// PostMessage delivers a message and returns the record the backend answers
// with (the generated assistant reply).
func (c *Client) PostMessage(ctx context.Context, chatID, content string, role core.Role) (core.Message, error) {
	var msg core.Message
	body := map[string]string{"content": content, "role": string(role)}
	err := c.doJSON(ctx, http.MethodPost, "/chats/"+url.PathEscape(chatID)+"/messages", body, &msg)
	return msg, err
}

// IngestFile uploads a document as multipart form data. The backend answers
// with the accepted document record, normally still processing.
func (c *Client) IngestFile(ctx context.Context, chatID, fileName string, payload io.Reader) (core.Document, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", fileName)
	if err != nil {
		return core.Document{}, fmt.Errorf("build multipart request: %w", err)
	}
	if _, err := io.Copy(part, payload); err != nil {
		return core.Document{}, fmt.Errorf("read upload payload: %w", err)
	}
	if err := mw.WriteField("chat_id", chatID); err != nil {
		return core.Document{}, fmt.Errorf("build multipart request: %w", err)
	}
	if err := mw.Close(); err != nil {
		return core.Document{}, fmt.Errorf("build multipart request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/ingest/file", &buf)
	if err != nil {
		return core.Document{}, fmt.Errorf("build ingest request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	var doc core.Document
	if err := c.send(req, &doc); err != nil {
		return core.Document{}, err
	}
	return doc, nil
}

// doJSON issues a JSON request and decodes the response into out (skipped
// when out is nil, e.g. DELETE).
func (c *Client) doJSON(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.send(req, out)
}

func (c *Client) send(req *http.Request, out interface{}) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRemoteUnavailable, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: read response: %v", ErrRemoteUnavailable, err)
	}
	if resp.StatusCode >= 300 {
		return &RemoteError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(raw))}
	}
	if out == nil || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("parse response: %w", err)
	}
	return nil
}
