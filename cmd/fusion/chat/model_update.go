package chat

import (
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/hereisSwapnil/FusionChat/internal/core"
)

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		switch m.viewMode {
		case ListView:
			return m.updateListKeys(msg)
		case FilePickerView:
			return m.updateFilePickerKeys(msg)
		default:
			return m.updateChatKeys(msg)
		}

	case tea.WindowSizeMsg:
		if !m.ready {
			// First size arrives before anything is drawn; apply it
			// immediately so the UI comes up laid out.
			m.ready = true
			m.applySize(msg.Width, msg.Height)
			return m, nil
		}
		relay := m.relay
		m.resize.Resize(msg.Width, msg.Height, func(w, h int) {
			relay.post(sizedMsg{width: w, height: h})
		})
		return m, nil

	case sizedMsg:
		m.applySize(msg.width, msg.height)
		return m, nil

	case eventMsg:
		return m.handleEvent(msg)

	case opDoneMsg:
		m.err = msg.err
		if msg.err != nil {
			m.log.Warn("operation failed", zap.String("op", msg.op), zap.Error(msg.err))
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	// Everything else (cursor blinks, filepicker reads, ...) goes to the
	// focused components.
	return m.updateComponents(msg)
}

func (m Model) updateChatKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+l":
		m.viewMode = ListView
		return m, m.refreshCmd()
	case "ctrl+o":
		if m.client.Uploader().Busy() {
			// Attach is disabled while an upload is in flight.
			return m, nil
		}
		m.viewMode = FilePickerView
		return m, m.filepicker.Init()
	case "enter":
		if !m.composerEnabled() {
			return m, nil
		}
		content := m.textinput.Value()
		if strings.TrimSpace(content) == "" {
			return m, nil
		}
		m.textinput.SetValue("")
		return m, m.sendCmd(content)
	}
	return m.updateComponents(msg)
}

func (m Model) updateListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.editing {
		switch msg.String() {
		case "enter":
			// Edit mode always exits on submit, whatever the remote says.
			title := m.editInput.Value()
			id := m.editingID
			m.editing = false
			m.editInput.Blur()
			return m, m.renameCmd(id, title)
		case "esc":
			m.editing = false
			m.editInput.Blur()
			return m, nil
		}
		var cmd tea.Cmd
		m.editInput, cmd = m.editInput.Update(msg)
		return m, cmd
	}

	switch msg.String() {
	case "esc":
		m.viewMode = ChatView
		return m, nil
	case "enter":
		if item, ok := m.list.SelectedItem().(conversationItem); ok {
			m.viewMode = ChatView
			return m, m.selectCmd(item.conv.ID)
		}
		return m, nil
	case "n":
		m.viewMode = ChatView
		return m, m.newChatCmd()
	case "r":
		if item, ok := m.list.SelectedItem().(conversationItem); ok {
			m.editing = true
			m.editingID = item.conv.ID
			m.editInput.SetValue(item.conv.Title)
			m.editInput.Focus()
		}
		return m, nil
	case "a":
		if item, ok := m.list.SelectedItem().(conversationItem); ok {
			return m, m.archiveCmd(item.conv.ID)
		}
		return m, nil
	case "d":
		if item, ok := m.list.SelectedItem().(conversationItem); ok {
			return m, m.deleteCmd(item.conv.ID)
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) updateFilePickerKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "esc" {
		m.viewMode = ChatView
		return m, nil
	}

	var cmd tea.Cmd
	m.filepicker, cmd = m.filepicker.Update(msg)
	if didSelect, path := m.filepicker.DidSelectFile(msg); didSelect {
		m.viewMode = ChatView
		return m, tea.Batch(cmd, m.uploadCmd(path))
	}
	return m, cmd
}

func (m Model) handleEvent(e eventMsg) (tea.Model, tea.Cmd) {
	cmds := []tea.Cmd{m.waitEvent()}

	if e.Kind == core.EventConversations {
		items := make([]list.Item, 0)
		for _, conv := range m.client.Registry().Conversations() {
			items = append(items, conversationItem{conv: conv})
		}
		cmds = append(cmds, m.list.SetItems(items))
	}

	if e.Err != nil {
		m.err = e.Err
	}

	// Transcript, documents and tickets all render from snapshots; any
	// event is a reason to redraw the viewport.
	m.refreshViewport()
	return m, tea.Batch(cmds...)
}

func (m *Model) refreshViewport() {
	var sb strings.Builder
	if tray := m.renderDocTray(m.client.Cache().Documents()); tray != "" {
		sb.WriteString(tray)
		sb.WriteString("\n\n")
	}
	sb.WriteString(m.renderTranscript(m.client.Cache().Messages(), m.client.Cache().Sending()))
	m.viewport.SetContent(sb.String())
	m.viewport.GotoBottom()
}

func (m *Model) applySize(width, height int) {
	m.width = width
	m.height = height

	m.viewport.Width = width - 2
	m.viewport.Height = height - 7
	if m.viewport.Height < 3 {
		m.viewport.Height = 3
	}
	m.textinput.Width = width - 6
	m.list.SetSize(width-2, height-4)
	m.filepicker.Height = height - 6
	m.refreshViewport()
}

func (m Model) updateComponents(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	var cmd tea.Cmd

	switch m.viewMode {
	case ListView:
		if m.editing {
			m.editInput, cmd = m.editInput.Update(msg)
			cmds = append(cmds, cmd)
		} else {
			m.list, cmd = m.list.Update(msg)
			cmds = append(cmds, cmd)
		}
	case FilePickerView:
		m.filepicker, cmd = m.filepicker.Update(msg)
		cmds = append(cmds, cmd)
	default:
		m.textinput, cmd = m.textinput.Update(msg)
		cmds = append(cmds, cmd)
		m.viewport, cmd = m.viewport.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}
