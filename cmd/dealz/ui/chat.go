// Package ui holds the terminal chat view.
package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	dealz "github.com/collegedealz/dealz-go"
	"github.com/muesli/reflow/wordwrap"
)

// RefreshMsg asks the view to re-render the conversation. The live chat's
// OnUpdate hook sends it whenever the message list changes.
type RefreshMsg struct{}

type sendResultMsg struct {
	err error
}

type ChatModel struct {
	live   *dealz.LiveChat
	selfID int

	viewport     viewport.Model
	textarea     textarea.Model
	spinner      spinner.Model
	sending      bool
	err          error
	windowWidth  int
	windowHeight int
}

func NewChatModel(live *dealz.LiveChat, selfID int) ChatModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = statusStyle

	vp := viewport.New(80, 20)

	ta := textarea.New()
	ta.Placeholder = "Type your message..."
	ta.CharLimit = 1000
	ta.SetHeight(3)
	ta.ShowLineNumbers = false
	ta.Focus()

	return ChatModel{
		live:         live,
		selfID:       selfID,
		viewport:     vp,
		textarea:     ta,
		spinner:      s,
		windowWidth:  80,
		windowHeight: 30,
	}
}

func (m ChatModel) Init() tea.Cmd {
	return tea.Batch(textarea.Blink, m.spinner.Tick)
}

func (m ChatModel) sendCmd(content string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		_, err := m.live.Send(ctx, content)
		return sendResultMsg{err: err}
	}
}

func (m ChatModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.windowWidth = msg.Width
		m.windowHeight = msg.Height

		headerHeight := 4
		textareaHeight := 5
		helpHeight := 2
		m.viewport.Width = msg.Width - 4
		m.viewport.Height = msg.Height - headerHeight - textareaHeight - helpHeight
		m.textarea.SetWidth(msg.Width - 4)

		m.renderConversation()
		return m, nil

	case RefreshMsg:
		atBottom := m.viewport.AtBottom()
		m.renderConversation()
		if atBottom {
			m.viewport.GotoBottom()
		}
		return m, nil

	case sendResultMsg:
		m.sending = false
		m.err = msg.err
		m.renderConversation()
		m.viewport.GotoBottom()
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			return m, tea.Quit

		case "enter":
			text := strings.TrimSpace(m.textarea.Value())
			if text == "" || m.sending {
				return m, nil
			}
			m.sending = true
			m.err = nil
			m.textarea.Reset()
			return m, tea.Batch(m.spinner.Tick, m.sendCmd(text))

		case "pgup", "pgdown", "ctrl+u", "ctrl+d":
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd

		default:
			var cmd tea.Cmd
			m.textarea, cmd = m.textarea.Update(msg)
			return m, cmd
		}
	}

	return m, nil
}

func (m *ChatModel) renderConversation() {
	wrapWidth := m.viewport.Width
	if wrapWidth <= 0 {
		wrapWidth = 80
	}

	var content strings.Builder
	for item := range m.live.ByDay() {
		if item.IsDayMarker() {
			marker := fmt.Sprintf("── %s ──", item.Day.Format("Monday, Jan 2"))
			content.WriteString(dayMarkerStyle.Width(wrapWidth).Render(marker) + "\n\n")
			continue
		}

		msg := item.Message
		timestamp := ""
		if at := msg.SentAt(); !at.IsZero() {
			timestamp = at.Format("3:04 PM")
		}

		if msg.SenderID == m.selfID {
			header := fmt.Sprintf("You · %s%s", timestamp, statusSuffix(msg.Status))
			content.WriteString(lipgloss.NewStyle().Align(lipgloss.Right).Width(wrapWidth).
				Render(messageHeaderStyle.Render(header)) + "\n")
			body := messageFromMeStyle.Render(wordwrap.String(msg.Content, wrapWidth-10))
			content.WriteString(lipgloss.NewStyle().Align(lipgloss.Right).Width(wrapWidth).
				Render(body) + "\n\n")
		} else {
			sender := m.live.Chat().PeerName(m.selfID)
			if sender == "" {
				sender = "Them"
			}
			header := fmt.Sprintf("%s · %s", sender, timestamp)
			content.WriteString(messageHeaderStyle.Render(header) + "\n")
			content.WriteString(messageFromOtherStyle.Render(wordwrap.String(msg.Content, wrapWidth-10)) + "\n\n")
		}
	}

	if content.Len() == 0 {
		content.WriteString(helpStyle.Render("  No messages yet. Say hi!"))
	}
	m.viewport.SetContent(content.String())
}

func statusSuffix(s dealz.MessageStatus) string {
	switch s {
	case dealz.StatusPendingSend:
		return " · sending"
	case dealz.StatusDeliveryError:
		return " · FAILED"
	default:
		return ""
	}
}

func (m ChatModel) connBadge() string {
	switch m.live.ConnState() {
	case dealz.StateConnected:
		return statusStyle.Render("● live")
	case dealz.StateConnecting:
		return degradedStyle.Render("● connecting")
	default:
		return degradedStyle.Render("● polling")
	}
}

func (m ChatModel) View() string {
	chat := m.live.Chat()
	title := chat.PeerName(m.selfID)
	if chat.ProductName != "" {
		title += fmt.Sprintf(" · %s", chat.ProductName)
	}

	s := titleStyle.Render(title) + "  " + m.connBadge() + "\n\n"

	if m.err != nil {
		s += errorStyle.Render(fmt.Sprintf("Send failed: %v", m.err)) + "\n"
	}

	s += m.viewport.View() + "\n\n"

	if m.sending {
		s += fmt.Sprintf("%s Sending...\n", m.spinner.View())
	}
	s += inputStyle.Render("Message:") + "\n"
	s += m.textarea.View() + "\n"
	s += helpStyle.Render("enter: send • pgup/pgdn: scroll • esc: quit")

	return s
}
