package ui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/rivo/tview"
)

// PatternItem is one learned rule as shown in the review picker.
type PatternItem struct {
	Key        string
	Correct    string
	Count      int
	Confidence float64
}

func (p PatternItem) label() string {
	return fmt.Sprintf("%s -> %s  (count %d, confidence %.2f)", p.Key, p.Correct, p.Count, p.Confidence)
}

// SelectPattern shows the learned rules and returns the key the user picked
// for removal. The second result reports whether any interactive backend
// actually ran; callers fall back to plain output when it is false.
func SelectPattern(backend string, items []PatternItem) (string, bool, error) {
	if len(items) == 0 {
		return "", false, nil
	}

	var firstErr error
	for _, candidate := range backendCandidates(backend) {
		var (
			key  string
			used bool
			err  error
		)
		switch candidate {
		case BackendBubbleTea:
			key, used, err = selectWithBubbleTea(items)
		case BackendHuh:
			key, used, err = selectWithHuh(items)
		case BackendTView:
			key, used, err = selectWithTView(items)
		default:
			continue
		}
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		if used {
			return key, true, nil
		}
	}
	if firstErr != nil {
		return "", false, firstErr
	}
	return "", false, nil
}

type bubbleReviewItem struct {
	item PatternItem
}

func (i bubbleReviewItem) Title() string       { return i.item.label() }
func (i bubbleReviewItem) Description() string { return "" }
func (i bubbleReviewItem) FilterValue() string { return i.item.Key + " " + i.item.Correct }

type bubbleReviewModel struct {
	list      list.Model
	selection string
	cancelled bool
	options   int
}

func (m bubbleReviewModel) Init() tea.Cmd { return nil }

func (m bubbleReviewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch k := msg.(type) {
	case tea.WindowSizeMsg:
		width, height := pickerSize(k.Width, k.Height, m.options)
		m.list.SetSize(width, height)
		return m, nil
	case tea.KeyMsg:
		switch k.String() {
		case "q", "esc", "ctrl+c":
			m.cancelled = true
			return m, tea.Quit
		case "enter":
			if item, ok := m.list.SelectedItem().(bubbleReviewItem); ok {
				m.selection = item.item.Key
			}
			return m, tea.Quit
		}
	}
	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m bubbleReviewModel) View() string {
	return m.list.View()
}

func selectWithBubbleTea(items []PatternItem) (string, bool, error) {
	listItems := make([]list.Item, 0, len(items))
	for _, item := range items {
		listItems = append(listItems, bubbleReviewItem{item: item})
	}

	delegate := list.NewDefaultDelegate()
	delegate.ShowDescription = false
	delegate.SetSpacing(0)

	width, height := pickerSize(80, 24, len(listItems))
	picker := list.New(listItems, delegate, width, height)
	picker.Title = "cmdsense learned patterns: pick one to forget"
	picker.SetShowHelp(false)
	picker.SetFilteringEnabled(true)

	model := bubbleReviewModel{list: picker, options: len(listItems)}
	final, err := tea.NewProgram(model, tea.WithAltScreen()).Run()
	if err != nil {
		return "", false, err
	}
	out, ok := final.(bubbleReviewModel)
	if !ok || out.cancelled {
		return "", true, nil
	}
	return strings.TrimSpace(out.selection), true, nil
}

func selectWithHuh(items []PatternItem) (string, bool, error) {
	options := make([]huh.Option[string], 0, len(items))
	for _, item := range items {
		options = append(options, huh.NewOption(item.label(), item.Key))
	}

	choice := ""
	prompt := huh.NewSelect[string]().
		Title("cmdsense learned patterns").
		Description("Pick a pattern to forget").
		Options(options...).
		Filtering(true).
		Height(selectHeight(len(options))).
		Value(&choice).
		WithTheme(huh.ThemeCharm())
	if err := prompt.Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return "", true, nil
		}
		return "", false, err
	}
	return strings.TrimSpace(choice), true, nil
}

func selectWithTView(items []PatternItem) (string, bool, error) {
	app := tview.NewApplication()
	listView := tview.NewList()
	listView.SetBorder(true)
	listView.SetTitle("cmdsense learned patterns: pick one to forget")
	listView.ShowSecondaryText(false)

	selected := ""
	used := false
	for _, item := range items {
		current := item
		listView.AddItem(current.label(), "", 0, func() {
			selected = current.Key
			used = true
			app.Stop()
		})
	}
	listView.SetDoneFunc(func() {
		app.Stop()
	})

	if err := app.SetRoot(listView, true).SetFocus(listView).Run(); err != nil {
		return "", false, err
	}
	if !used {
		return "", true, nil
	}
	return selected, true, nil
}

func clampInt(v, minV, maxV int) int {
	if v < minV {
		return minV
	}
	if v > maxV {
		return maxV
	}
	return v
}

func pickerSize(termWidth, termHeight, optionCount int) (int, int) {
	if termWidth <= 0 {
		termWidth = 80
	}
	if termHeight <= 0 {
		termHeight = 24
	}
	if optionCount < 1 {
		optionCount = 1
	}

	maxWidth := termWidth
	minWidth := 32
	if maxWidth < minWidth {
		minWidth = maxWidth
	}
	width := clampInt(termWidth-4, minWidth, maxWidth)

	visibleItems := clampInt(optionCount, 3, 12)
	desiredHeight := visibleItems + 6

	maxHeight := termHeight - 2
	if maxHeight <= 0 {
		maxHeight = 1
	}
	minHeight := 8
	if maxHeight < minHeight {
		minHeight = maxHeight
	}
	height := clampInt(desiredHeight, minHeight, maxHeight)
	return width, height
}

func selectHeight(optionCount int) int {
	if optionCount < 1 {
		optionCount = 1
	}
	return clampInt(optionCount+1, 4, 10)
}
