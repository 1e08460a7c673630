package chat

import (
	"context"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/hereisSwapnil/FusionChat/internal/core"
)

// eventMsg carries a core change event into the Update loop.
type eventMsg core.Event

// sizedMsg is a debounced terminal resize.
type sizedMsg struct {
	width  int
	height int
}

// opDoneMsg is the result of any fire-and-forget remote operation. The op
// label is only used for logging; failures surface in the footer.
type opDoneMsg struct {
	op  string
	err error
}

// waitEvent blocks on the next core event and re-arms itself from Update.
func (m Model) waitEvent() tea.Cmd {
	events := m.client.Events()
	return func() tea.Msg {
		e, ok := <-events
		if !ok {
			return nil
		}
		return eventMsg(e)
	}
}

func (m Model) refreshCmd() tea.Cmd {
	client := m.client
	return func() tea.Msg {
		return opDoneMsg{op: "refresh", err: client.Registry().Refresh(context.Background())}
	}
}

func (m Model) sendCmd(content string) tea.Cmd {
	client := m.client
	return func() tea.Msg {
		return opDoneMsg{op: "send", err: client.Send(context.Background(), content)}
	}
}

func (m Model) selectCmd(id string) tea.Cmd {
	client := m.client
	return func() tea.Msg {
		return opDoneMsg{op: "select", err: client.Registry().Select(context.Background(), id)}
	}
}

func (m Model) newChatCmd() tea.Cmd {
	client := m.client
	return func() tea.Msg {
		_, err := client.Registry().Create(context.Background(), "")
		return opDoneMsg{op: "create", err: err}
	}
}

func (m Model) renameCmd(id, title string) tea.Cmd {
	client := m.client
	return func() tea.Msg {
		return opDoneMsg{op: "rename", err: client.Registry().Rename(context.Background(), id, title)}
	}
}

func (m Model) archiveCmd(id string) tea.Cmd {
	client := m.client
	return func() tea.Msg {
		return opDoneMsg{op: "archive", err: client.Registry().Archive(context.Background(), id)}
	}
}

func (m Model) deleteCmd(id string) tea.Cmd {
	client := m.client
	return func() tea.Msg {
		return opDoneMsg{op: "delete", err: client.Registry().Delete(context.Background(), id)}
	}
}

// uploadCmd streams a picked file into the ingestion endpoint.
func (m Model) uploadCmd(path string) tea.Cmd {
	client := m.client
	return func() tea.Msg {
		f, err := os.Open(path)
		if err != nil {
			return opDoneMsg{op: "upload", err: err}
		}
		defer f.Close()
		return opDoneMsg{op: "upload", err: client.Upload(context.Background(), filepath.Base(path), f)}
	}
}
