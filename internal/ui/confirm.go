package ui

import (
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/rivo/tview"
)

// ConfirmForget asks before a learned rule is dropped. Returns (approved,
// whether an interactive backend ran, error).
func ConfirmForget(backend string, key, correct string) (bool, bool, error) {
	var firstErr error
	for _, candidate := range backendCandidates(backend) {
		var (
			approved bool
			err      error
		)
		switch candidate {
		case BackendBubbleTea:
			approved, err = confirmWithBubbleTea(key, correct)
		case BackendHuh:
			approved, err = confirmWithHuh(key, correct)
		case BackendTView:
			approved, err = confirmWithTView(key, correct)
		default:
			continue
		}
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		return approved, true, nil
	}
	if firstErr != nil {
		return false, false, firstErr
	}
	return false, false, nil
}

type bubbleConfirmModel struct {
	key      string
	correct  string
	approved bool
	done     bool
}

func (m bubbleConfirmModel) Init() tea.Cmd { return nil }

func (m bubbleConfirmModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch k := msg.(type) {
	case tea.KeyMsg:
		switch strings.ToLower(k.String()) {
		case "y":
			m.approved = true
			m.done = true
			return m, tea.Quit
		case "n", "esc", "ctrl+c", "enter":
			m.approved = false
			m.done = true
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m bubbleConfirmModel) View() string {
	return fmt.Sprintf(
		"Forget this learned pattern?\n\n%s -> %s\n\n[y] forget  [n] keep",
		m.key,
		m.correct,
	)
}

func confirmWithBubbleTea(key, correct string) (bool, error) {
	model := bubbleConfirmModel{key: key, correct: correct}
	final, err := tea.NewProgram(model, tea.WithAltScreen()).Run()
	if err != nil {
		return false, err
	}
	out, ok := final.(bubbleConfirmModel)
	if !ok || !out.done {
		return false, nil
	}
	return out.approved, nil
}

func confirmWithHuh(key, correct string) (bool, error) {
	approved := false
	prompt := huh.NewConfirm().
		Title("Forget this learned pattern?").
		Description(fmt.Sprintf("%s -> %s", key, correct)).
		Affirmative("Forget").
		Negative("Keep").
		Value(&approved).
		WithTheme(huh.ThemeCharm())
	err := prompt.Run()
	if err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return false, nil
		}
		return false, err
	}
	return approved, nil
}

func confirmWithTView(key, correct string) (bool, error) {
	app := tview.NewApplication()
	approved := false
	done := false

	text := fmt.Sprintf("Forget this learned pattern?\n\n%s -> %s", key, correct)
	modal := tview.NewModal().
		SetText(text).
		AddButtons([]string{"Forget", "Keep"}).
		SetDoneFunc(func(_ int, label string) {
			done = true
			approved = strings.EqualFold(strings.TrimSpace(label), "forget")
			app.Stop()
		})

	if err := app.SetRoot(modal, true).Run(); err != nil {
		return false, err
	}
	if !done {
		return false, nil
	}
	return approved, nil
}
