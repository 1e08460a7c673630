package chat

import (
	"fmt"
	"strings"

	"github.com/hereisSwapnil/FusionChat/cmd/fusion/ui"
	"github.com/hereisSwapnil/FusionChat/internal/core"
)

func (m Model) View() string {
	if !m.ready {
		return "Initializing..."
	}

	switch m.viewMode {
	case ListView:
		return m.viewList()
	case FilePickerView:
		return m.viewFilePicker()
	default:
		return m.viewChat()
	}
}

func (m Model) viewChat() string {
	var sb strings.Builder

	sb.WriteString(m.styles.Header.Render("FusionChat"))
	if id := m.client.Registry().SelectedID(); id != "" {
		if conv, ok := m.selectedConversation(id); ok {
			sb.WriteString("  ")
			sb.WriteString(m.styles.Subtitle.Render(conv.Title))
		}
	}
	sb.WriteString("\n")
	sb.WriteString(m.styles.RenderDivider(m.width))
	sb.WriteString("\n")

	sb.WriteString(m.viewport.View())
	sb.WriteString("\n")

	if line := m.renderTicket(m.client.Uploader().Ticket()); line != "" {
		sb.WriteString(line)
		sb.WriteString("\n")
	}

	sb.WriteString(m.styles.RenderDivider(m.width))
	sb.WriteString("\n")
	if m.composerEnabled() {
		sb.WriteString(m.textinput.View())
	} else {
		sb.WriteString(m.styles.Muted.Render(m.spinner.View() + " working..."))
	}
	sb.WriteString("\n")
	sb.WriteString(m.renderFooter())

	return sb.String()
}

func (m Model) viewList() string {
	var sb strings.Builder
	sb.WriteString(m.list.View())
	sb.WriteString("\n")
	if m.editing {
		sb.WriteString(m.editInput.View())
	} else {
		sb.WriteString(m.styles.Footer.Render(
			"enter open · n new · r rename · a archive · d delete · esc back"))
	}
	return sb.String()
}

func (m Model) viewFilePicker() string {
	var sb strings.Builder
	sb.WriteString(m.styles.Title.Render("Attach a document"))
	sb.WriteString("\n")
	sb.WriteString(m.filepicker.View())
	sb.WriteString("\n")
	sb.WriteString(m.styles.Footer.Render("enter attach · esc cancel"))
	return sb.String()
}

func (m Model) renderFooter() string {
	if m.err != nil {
		return m.styles.Error.Render("error: " + m.err.Error())
	}
	return m.styles.Footer.Render("enter send · ctrl+l conversations · ctrl+o attach · ctrl+c quit")
}

func (m Model) selectedConversation(id string) (core.Conversation, bool) {
	for _, conv := range m.client.Registry().Conversations() {
		if conv.ID == id {
			return conv, true
		}
	}
	return core.Conversation{}, false
}

// renderTranscript renders the cached messages top to bottom, with a thinking
// indicator appended while a send is awaiting its reply.
func (m Model) renderTranscript(msgs []core.Message, sending bool) string {
	if len(msgs) == 0 && !sending {
		return ui.Logo(m.styles) + "\n" +
			m.styles.Subtitle.Render("How can I help you today?")
	}

	var sb strings.Builder
	for i, msg := range msgs {
		if i > 0 {
			sb.WriteString("\n\n")
		}
		switch msg.Role {
		case core.RoleUser:
			sb.WriteString(m.styles.Prompt.Render("You"))
			sb.WriteString("\n")
			sb.WriteString(m.styles.UserInput.Render(msg.Content))
		default:
			sb.WriteString(m.styles.Bold.Render("Assistant"))
			sb.WriteString("\n")
			sb.WriteString(m.styles.AgentResponse.Render(m.renderMarkdown(msg.Content)))
		}
	}
	if sending {
		if len(msgs) > 0 {
			sb.WriteString("\n\n")
		}
		sb.WriteString(m.spinner.View())
		sb.WriteString(m.styles.Muted.Render(" Thinking..."))
	}
	return sb.String()
}

// renderDocTray renders the attached documents as a row of chips.
func (m Model) renderDocTray(docs []core.Document) string {
	if len(docs) == 0 {
		return ""
	}
	chips := make([]string, 0, len(docs))
	for _, doc := range docs {
		label := statusGlyph(doc.Status) + " " + doc.FileName
		if size := humanSize(doc.FileSize); size != "" {
			label += " " + size
		}
		chips = append(chips, m.styles.Chip.Render(label))
	}
	return strings.Join(chips, " ")
}

// renderTicket renders the transient upload status line.
func (m Model) renderTicket(t core.Ticket, ok bool) string {
	if !ok {
		return ""
	}
	switch t.Phase {
	case core.PhaseUploading:
		return m.spinner.View() + m.styles.Muted.Render(" Uploading "+t.FileName+"...")
	case core.PhaseSuccess:
		return m.styles.Success.Render("✓ " + t.FileName + " uploaded")
	case core.PhaseError:
		return m.styles.Error.Render("✗ " + t.FileName + " failed to upload")
	}
	return ""
}

func (m Model) renderMarkdown(content string) string {
	if m.renderer == nil {
		return content
	}
	out, err := m.renderer.Render(content)
	if err != nil {
		return content
	}
	return strings.TrimRight(out, "\n")
}

func statusGlyph(s core.DocumentStatus) string {
	switch s {
	case core.DocumentCompleted:
		return "✓"
	case core.DocumentFailed:
		return "✗"
	default:
		return "…"
	}
}

func humanSize(n int64) string {
	switch {
	case n >= 1<<20:
		return fmt.Sprintf("(%.1f MB)", float64(n)/(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("(%.1f KB)", float64(n)/(1<<10))
	case n > 0:
		return fmt.Sprintf("(%d B)", n)
	default:
		return ""
	}
}
