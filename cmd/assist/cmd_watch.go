package main

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/voicekit/assist-core/assist/events"
)

const watchHistorySize = 200

func init() {
	rootCmd.AddCommand(watchCmd)
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Start the assistant and watch its events in a terminal UI",
	RunE:  runWatch,
}

func runWatch(cmd *cobra.Command, args []string) error {
	_, seq, cleanup, err := startSession(cmd.Context())
	if err != nil {
		return err
	}
	defer cleanup()

	program := tea.NewProgram(watchModel{}, tea.WithAltScreen())
	go func() {
		for event := range seq {
			program.Send(eventMsg(event))
		}
		program.Send(sessionEndedMsg{})
	}()

	if _, err := program.Run(); err != nil {
		return fmt.Errorf("event viewer failed: %w", err)
	}
	return nil
}

type (
	eventMsg        events.Event
	sessionEndedMsg struct{}
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	kindStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))
	payloadStyle = lipgloss.NewStyle().Faint(true)
	endedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
)

type watchModel struct {
	events []events.Event
	height int
	ended  bool
}

func (m watchModel) Init() tea.Cmd { return nil }

func (m watchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.height = msg.Height
	case eventMsg:
		m.events = append(m.events, events.Event(msg))
		if len(m.events) > watchHistorySize {
			m.events = m.events[len(m.events)-watchHistorySize:]
		}
	case sessionEndedMsg:
		m.ended = true
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m watchModel) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("assistant events"))
	b.WriteString("  (q to quit)\n\n")

	visible := m.events
	if m.height > 4 && len(visible) > m.height-4 {
		visible = visible[len(visible)-(m.height-4):]
	}
	for _, event := range visible {
		b.WriteString(event.Timestamp().Format("15:04:05.000"))
		b.WriteString("  ")
		b.WriteString(kindStyle.Render(event.Kind().String()))
		if payload := event.Payload(); len(payload) > 0 {
			b.WriteString("  ")
			b.WriteString(payloadStyle.Render(fmt.Sprintf("%v", payload)))
		}
		b.WriteString("\n")
	}

	if m.ended {
		b.WriteString("\n")
		b.WriteString(endedStyle.Render("session ended"))
		b.WriteString("\n")
	}
	return b.String()
}
