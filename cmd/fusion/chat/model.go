// Package chat provides the interactive TUI for FusionChat. The
// functionality is split across files for maintainability:
//   - model.go: types and initialization
//   - messages.go: async commands and their result messages
//   - model_update.go: the Update loop
//   - view.go: rendering
package chat

import (
	"os"
	"sync"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"go.uber.org/zap"

	"github.com/hereisSwapnil/FusionChat/cmd/fusion/config"
	"github.com/hereisSwapnil/FusionChat/cmd/fusion/ui"
	"github.com/hereisSwapnil/FusionChat/internal/core"
)

// ViewMode determines which component is focused.
type ViewMode int

const (
	ChatView ViewMode = iota
	ListView
	FilePickerView
)

// conversationItem adapts a core.Conversation for the sidebar list.
type conversationItem struct {
	conv core.Conversation
}

func (i conversationItem) Title() string       { return i.conv.Title }
func (i conversationItem) Description() string { return i.conv.CreatedAt.Format("Jan 2 15:04") }
func (i conversationItem) FilterValue() string { return i.conv.Title }

// relay forwards messages into the running program from callbacks that fire
// outside the Update loop (the resize debouncer). The send func is attached
// once the program exists.
type relay struct {
	mu   sync.Mutex
	send func(tea.Msg)
}

func (r *relay) post(msg tea.Msg) {
	r.mu.Lock()
	send := r.send
	r.mu.Unlock()
	if send != nil {
		send(msg)
	}
}

func (r *relay) attach(send func(tea.Msg)) {
	r.mu.Lock()
	r.send = send
	r.mu.Unlock()
}

// Model is the bubbletea model for the interactive chat.
type Model struct {
	client *core.Client
	log    *zap.Logger

	styles   ui.Styles
	renderer *glamour.TermRenderer

	textinput  textinput.Model
	editInput  textinput.Model
	viewport   viewport.Model
	spinner    spinner.Model
	list       list.Model
	filepicker filepicker.Model

	resize *ui.ResizeDebouncer
	relay  *relay

	viewMode  ViewMode
	editing   bool
	editingID string

	width  int
	height int
	ready  bool

	err error
}

// InitChat builds the chat model.
func InitChat(client *core.Client, cfg config.Config, log *zap.Logger) Model {
	if log == nil {
		log = zap.NewNop()
	}

	styles := ui.DefaultStyles()
	if cfg.Theme == "dark" {
		styles = ui.NewStyles(ui.DarkTheme())
	}

	ti := textinput.New()
	ti.Placeholder = "Ask anything... (Enter to send, Ctrl+C to quit)"
	ti.Focus()
	ti.Prompt = "| "
	ti.CharLimit = 4096
	ti.Width = 80
	ti.PromptStyle = styles.Prompt
	ti.TextStyle = styles.UserInput

	edit := textinput.New()
	edit.Prompt = "Title: "
	edit.CharLimit = 120
	edit.Width = 40
	edit.PromptStyle = styles.Prompt

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styles.Spinner

	vp := viewport.New(80, 20)
	vp.SetContent("")

	delegate := list.NewDefaultDelegate()
	sidebar := list.New(nil, delegate, 40, 20)
	sidebar.Title = "Conversations"
	sidebar.SetShowStatusBar(false)

	fp := filepicker.New()
	if home, err := os.UserHomeDir(); err == nil {
		fp.CurrentDirectory = home
	}

	var renderer *glamour.TermRenderer
	if styles.Theme.IsDark {
		renderer, _ = glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(80),
		)
	} else {
		renderer, _ = glamour.NewTermRenderer(
			glamour.WithStylePath("light"),
			glamour.WithWordWrap(80),
		)
	}

	return Model{
		client:     client,
		log:        log,
		styles:     styles,
		renderer:   renderer,
		textinput:  ti,
		editInput:  edit,
		viewport:   vp,
		spinner:    sp,
		list:       sidebar,
		filepicker: fp,
		resize:     ui.NewResizeDebouncer(ui.DefaultResizeDuration),
		relay:      &relay{},
	}
}

// Init starts the event pump and the initial conversation fetch.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		textinput.Blink,
		m.spinner.Tick,
		m.refreshCmd(),
		m.waitEvent(),
	)
}

// Run starts the interactive chat program.
func Run(client *core.Client, cfg config.Config, log *zap.Logger) error {
	m := InitChat(client, cfg, log)
	p := tea.NewProgram(m, tea.WithAltScreen())
	m.relay.attach(p.Send)
	_, err := p.Run()
	return err
}

// composerEnabled mirrors the web client: the input is disabled while a send
// or an upload is in flight.
func (m Model) composerEnabled() bool {
	return !m.client.Cache().Sending() && !m.client.Uploader().Busy()
}
