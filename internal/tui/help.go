package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"

	"tasklistd/internal/views"
)

type KeyBinding struct {
	Key    string
	Action string
}

type helpKeyMap struct {
	short []key.Binding
	full  [][]key.Binding
}

func (k helpKeyMap) ShortHelp() []key.Binding  { return k.short }
func (k helpKeyMap) FullHelp() [][]key.Binding { return k.full }

func (m Model) renderHelpIfVisible() string {
	if !m.HelpVisible {
		return ""
	}
	return m.renderHelpView()
}

func (m Model) renderHelpView() string {
	bindings := m.helpBindings()
	var plain []string
	for _, kb := range m.paneBindings() {
		plain = append(plain, fmt.Sprintf("- %s: %s", kb.Key, kb.Action))
	}
	return views.RenderHelpPanel(views.HelpPanelData{
		CurrentPane: string(m.CurrentPane),
		Bindings:    plain,
		HelpView: m.helpModel.View(helpKeyMap{
			short: bindings,
			full:  [][]key.Binding{bindings},
		}),
	})
}

func (m Model) globalBindings() []KeyBinding {
	return []KeyBinding{
		{Key: m.Keys.Lists, Action: "focus lists pane"},
		{Key: m.Keys.Tasks, Action: "focus tasks pane"},
		{Key: m.Keys.Detail, Action: "focus detail pane"},
		{Key: "a", Action: "quick-add a task"},
		{Key: "/", Action: "open command palette"},
		{Key: m.Keys.Refresh, Action: "reload from daemon"},
		{Key: m.Keys.Help, Action: "toggle help panel"},
		{Key: m.Keys.Quit, Action: "quit app"},
	}
}

func (m Model) paneBindings() []KeyBinding {
	switch m.CurrentPane {
	case PaneLists:
		return []KeyBinding{
			{Key: "j/k", Action: "move cursor"},
			{Key: "enter", Action: "open list"},
		}
	case PaneTasks:
		return []KeyBinding{
			{Key: "j/k", Action: "move cursor"},
			{Key: "enter", Action: "open detail"},
			{Key: "c", Action: "complete task"},
			{Key: "f", Action: "toggle favorite"},
			{Key: "x", Action: "delete task"},
		}
	default:
		return []KeyBinding{{Key: m.Keys.Tasks, Action: "back to tasks"}}
	}
}

func (m Model) helpBindings() []key.Binding {
	out := make([]key.Binding, 0, len(m.globalBindings())+len(m.paneBindings()))
	for _, kb := range m.globalBindings() {
		out = append(out, key.NewBinding(key.WithKeys(kb.Key), key.WithHelp(kb.Key, kb.Action)))
	}
	for _, kb := range m.paneBindings() {
		out = append(out, key.NewBinding(key.WithKeys(kb.Key), key.WithHelp(kb.Key, kb.Action)))
	}
	return out
}
