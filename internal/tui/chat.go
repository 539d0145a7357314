package tui

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"adhdrpg/internal/companion"
	"adhdrpg/internal/ui"
)

// Chatter is the companion as seen by the chat screen.
type Chatter interface {
	Send(ctx context.Context, message string) (companion.Response, error)
}

var (
	youStyle       = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63"))
	companionStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
)

type chatModel struct {
	ctx     context.Context
	chat    Chatter
	online  func() bool
	input   textinput.Model
	view    viewport.Model
	lines   []string
	waiting bool
	ready   bool
}

type replyMsg struct {
	resp companion.Response
	err  error
}

func newChatModel(ctx context.Context, chat Chatter, online func() bool) chatModel {
	in := textinput.New()
	in.Placeholder = "Tell your companion what you did or need…"
	in.CharLimit = 500
	in.Prompt = "> "
	in.Focus()
	return chatModel{
		ctx:    ctx,
		chat:   chat,
		online: online,
		input:  in,
		lines:  []string{ui.Muted.Render("Say hi! Press esc to leave.")},
	}
}

func (m chatModel) Init() tea.Cmd { return textinput.Blink }

func (m chatModel) sendCmd(text string) tea.Cmd {
	return func() tea.Msg {
		resp, err := m.chat.Send(m.ctx, text)
		return replyMsg{resp: resp, err: err}
	}
}

func (m chatModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		height := max(msg.Height-4, 3)
		if !m.ready {
			m.view = viewport.New(msg.Width, height)
			m.ready = true
		} else {
			m.view.Width = msg.Width
			m.view.Height = height
		}
		m.input.Width = max(msg.Width-4, 10)
		m.refresh()
	case replyMsg:
		m.waiting = false
		if msg.err != nil {
			m.lines = append(m.lines, ui.Bad.Render(ui.IconError+" "+msg.err.Error()))
		} else {
			m.lines = append(m.lines, companionStyle.Render("Companion:")+" "+msg.resp.Text)
			if msg.resp.Outcome != nil {
				for _, n := range msg.resp.Outcome.Notices {
					m.lines = append(m.lines, "  "+ui.NoticeText(n))
				}
			}
		}
		m.refresh()
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			return m, tea.Quit
		case "enter":
			text := strings.TrimSpace(m.input.Value())
			if text == "" || m.waiting {
				return m, nil
			}
			m.input.Reset()
			m.waiting = true
			m.lines = append(m.lines, youStyle.Render("You:")+" "+text)
			m.refresh()
			return m, m.sendCmd(text)
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)
	if m.ready {
		m.view, cmd = m.view.Update(msg)
		cmds = append(cmds, cmd)
	}
	return m, tea.Batch(cmds...)
}

func (m *chatModel) refresh() {
	if !m.ready {
		return
	}
	m.view.SetContent(lipgloss.NewStyle().Width(m.view.Width).Render(strings.Join(m.lines, "\n")))
	m.view.GotoBottom()
}

func (m chatModel) status() string {
	switch {
	case m.waiting:
		return ui.Muted.Render("thinking…")
	case m.online != nil && !m.online():
		return ui.Warn.Render("offline")
	default:
		return ui.Good.Render("online")
	}
}

func (m chatModel) View() string {
	if !m.ready {
		return "Starting chat…"
	}
	header := fmt.Sprintf("%s %s", ui.Heading(ui.IconChat, "Companion"), m.status())
	return header + "\n" + m.view.View() + "\n" + m.input.View()
}

// RunChat opens the companion chat screen. online may be nil.
func RunChat(ctx context.Context, chat Chatter, online func() bool, out io.Writer) error {
	p := tea.NewProgram(newChatModel(ctx, chat, online), tea.WithOutput(out), tea.WithContext(ctx), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
