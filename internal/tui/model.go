package tui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"helpbot/internal/domain"
)

// LocalUserID identifies the single local chat session.
const LocalUserID = "local"

// Model is the Bubble Tea model for the local chat client.
type Model struct {
	responder domain.Responder
	sessions  domain.Sessions
	input     textinput.Model
	viewport  viewport.Model
	lines     []string
	status    string
	thinking  bool
	ready     bool
}

type replyMsg string

// New creates a new chat model instance.
func New(responder domain.Responder, sessions domain.Sessions, status string) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Type a message and press Enter (/reset clears the session)"
	ti.Focus()
	ti.CharLimit = 0
	vp := viewport.New(0, 0)
	return Model{responder: responder, sessions: sessions, input: ti, viewport: vp, status: status}
}

// Init initializes the model (text input cursor blink).
func (m Model) Init() tea.Cmd { return textinput.Blink }

// Update handles key and window events and updates the view state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		_, th := transcriptBoxStyle.GetFrameSize()
		_, ih := inputBoxStyle.GetFrameSize()
		reserved := 1 + 1 + ih + 1 // header + status + input frame + spacer
		vh := msg.Height - reserved - th
		if vh < 3 {
			vh = 3
		}
		m.viewport.Width = max(20, msg.Width)
		m.viewport.Height = vh
		m.viewport.SetContent(m.transcript())
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyCtrlD {
			return m, tea.Quit
		}
		if msg.String() == "enter" && !m.thinking {
			text := strings.TrimSpace(m.input.Value())
			if text == "" {
				return m, nil
			}
			m.input.SetValue("")
			if text == "/reset" {
				m.sessions.Reset(LocalUserID)
				m.lines = nil
				m.status = "Conversation reset."
				m.viewport.SetContent(m.transcript())
				return m, nil
			}
			m.lines = append(m.lines, userStyle.Render("you: ")+text)
			m.status = "Thinking..."
			m.thinking = true
			m.viewport.SetContent(m.transcript())
			m.viewport.GotoBottom()
			responder := m.responder
			return m, func() tea.Msg {
				return replyMsg(responder.Respond(context.Background(), LocalUserID, text))
			}
		}
	case replyMsg:
		m.thinking = false
		m.status = "Ready."
		m.lines = append(m.lines, botStyle.Render("claude: ")+string(msg))
		m.viewport.SetContent(m.transcript())
		m.viewport.GotoBottom()
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// View renders the chat layout.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	header := lipgloss.NewStyle().Bold(true).Render("Helpbot Chat")
	transcript := transcriptBoxStyle.Render(m.viewport.View())
	input := inputBoxStyle.Render(m.input.View())
	status := lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Render(m.status)
	return header + "\n" + transcript + "\n" + input + "\n" + status
}

func (m Model) transcript() string {
	if len(m.lines) == 0 {
		return "No messages yet."
	}
	return strings.Join(m.lines, "\n\n")
}

var (
	transcriptBoxStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	inputBoxStyle      = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	userStyle          = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
	botStyle           = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true)
)

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
