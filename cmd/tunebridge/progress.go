package main

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var spinnerFrames = []string{"|", "/", "-", "\\"}

type progressModel struct {
	frame int
	label string
	done  bool
}

type tickMsg time.Time
type doneMsg struct{}

func tickCmd() tea.Cmd {
	return tea.Tick(120*time.Millisecond, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m progressModel) Init() tea.Cmd { return tickCmd() }

func (m progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg.(type) {
	case tickMsg:
		if m.done {
			return m, tea.Quit
		}
		m.frame = (m.frame + 1) % len(spinnerFrames)
		return m, tickCmd()
	case doneMsg:
		m.done = true
		return m, nil
	}
	return m, nil
}

func (m progressModel) View() string {
	style := lipgloss.NewStyle().Foreground(lipgloss.Color("14"))
	if m.done {
		return style.Foreground(lipgloss.Color("10")).Render("done") + "\n"
	}
	return style.Render(spinnerFrames[m.frame]) + " " + m.label + "\n"
}

// synthesisProgress runs a small bubbletea spinner on a background goroutine
// while a synthesis call is in flight.
type synthesisProgress struct {
	program *tea.Program
	done    chan struct{}
}

func startSynthesisProgress() *synthesisProgress {
	p := tea.NewProgram(progressModel{label: "synthesizing"})
	done := make(chan struct{})
	go func() {
		defer close(done)
		if _, err := p.Run(); err != nil {
			fmt.Println(err)
		}
	}()
	return &synthesisProgress{program: p, done: done}
}

func (s *synthesisProgress) stop() {
	s.program.Send(doneMsg{})
	<-s.done
}
