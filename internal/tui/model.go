package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	"github.com/google/uuid"

	"tasklistd/internal/model"
	"tasklistd/internal/rpc"
)

type Pane string

const (
	PaneLists  Pane = "Lists"
	PaneTasks  Pane = "Tasks"
	PaneDetail Pane = "Detail"
)

type StatusBar struct {
	Text    string
	IsError bool
}

type GlobalKeyMap struct {
	Lists   string
	Tasks   string
	Detail  string
	Refresh string
	Help    string
	Quit    string
}

type CommandPaletteState struct {
	Active bool
	Input  string
}

type QuickAddState struct {
	Active bool
	Input  string
}

type Toast struct {
	Title string
	Body  string
	At    time.Time
}

type Model struct {
	CurrentPane    Pane
	Lists          []model.List
	Tasks          []model.Task
	ListCursor     int
	TaskCursor     int
	SelectedListID string
	SelectedTaskID string
	Palette        CommandPaletteState
	QuickAdd       QuickAddState
	Status         StatusBar
	Toasts         []Toast
	HelpVisible    bool
	Quitting       bool
	LastError      error
	Keys           GlobalKeyMap

	backend Backend
	// newID is swapped out by tests for deterministic IDs.
	newID func() string
	now   func() time.Time

	listsList      list.Model
	tasksList      list.Model
	quickAddInput  textinput.Model
	commandInput   textinput.Model
	detailViewport viewport.Model
	rpcSpinner     spinner.Model
	helpModel      help.Model
	spinnerActive  bool
	reminderCh     <-chan rpc.ReminderEvent
}

type listItem struct {
	title       string
	description string
}

func (i listItem) FilterValue() string { return i.title + " " + i.description }
func (i listItem) Title() string       { return i.title }
func (i listItem) Description() string { return i.description }

type SetListsMsg struct {
	Lists []model.List
}

type SetTasksMsg struct {
	ListID string
	Tasks  []model.Task
}

// TaskMutatedMsg carries the envelope of a create/update/delete RPC.
// Unsuccessful envelopes surface in the status bar, not as errors.
type TaskMutatedMsg struct {
	Verb     string
	Response model.TaskResponse
}

type ListCreatedMsg struct {
	Response model.ListResponse
}

type SetStatusMsg struct {
	Text    string
	IsError bool
}

type ClearStatusMsg struct{}

type AppErrorMsg struct {
	Err error
}

type ReminderDueMsg struct {
	Event rpc.ReminderEvent
}

type reminderStreamMsg struct {
	ch <-chan rpc.ReminderEvent
}

func NewModel(backend Backend) Model {
	m := Model{
		CurrentPane: PaneLists,
		backend:     backend,
		newID:       uuid.NewString,
		now:         func() time.Time { return time.Now().UTC() },
		Keys: GlobalKeyMap{
			Lists:   "1",
			Tasks:   "2",
			Detail:  "3",
			Refresh: "r",
			Help:    "?",
			Quit:    "q",
		},
	}
	m.initBubbleComponents()
	m.syncBubbleData()
	return m
}

func (m *Model) initBubbleComponents() {
	m.listsList = list.New([]list.Item{}, list.NewDefaultDelegate(), 56, 12)
	m.listsList.Title = "Lists"
	m.listsList.SetShowHelp(false)
	m.listsList.SetFilteringEnabled(false)

	m.tasksList = list.New([]list.Item{}, list.NewDefaultDelegate(), 56, 12)
	m.tasksList.Title = "Tasks"
	m.tasksList.SetShowHelp(false)
	m.tasksList.SetFilteringEnabled(false)

	m.quickAddInput = textinput.New()
	m.quickAddInput.Prompt = "add> "
	m.quickAddInput.CharLimit = 256
	m.quickAddInput.Width = 42

	m.commandInput = textinput.New()
	m.commandInput.Prompt = "/"
	m.commandInput.CharLimit = 256
	m.commandInput.Width = 48

	m.detailViewport = viewport.New(54, 12)

	m.rpcSpinner = spinner.New()
	m.rpcSpinner.Spinner = spinner.Dot

	m.helpModel = help.New()
}

func (m *Model) syncBubbleData() {
	listItems := make([]list.Item, 0, len(m.Lists))
	for _, l := range m.Lists {
		desc := l.Provider
		if l.IsOwner {
			desc = desc + " (owner)"
		}
		listItems = append(listItems, listItem{title: l.Name, description: desc})
	}
	m.listsList.SetItems(listItems)
	if len(listItems) > 0 && m.ListCursor < len(listItems) {
		m.listsList.Select(m.ListCursor)
	}

	taskItems := make([]list.Item, 0, len(m.Tasks))
	for _, t := range m.Tasks {
		taskItems = append(taskItems, listItem{title: t.Title, description: taskBadge(t)})
	}
	m.tasksList.SetItems(taskItems)
	if len(taskItems) > 0 && m.TaskCursor < len(taskItems) {
		m.tasksList.Select(m.TaskCursor)
	}

	m.quickAddInput.SetValue(m.QuickAdd.Input)
	m.commandInput.SetValue(m.Palette.Input)
	if m.QuickAdd.Active {
		m.quickAddInput.Focus()
	}
	if m.Palette.Active {
		m.commandInput.Focus()
	}
}

func taskBadge(t model.Task) string {
	badge := "[ ]"
	if t.Status == model.StatusCompleted {
		badge = "[x]"
	}
	if t.Favorite {
		badge += " *"
	}
	if t.DueDate != nil {
		badge += " due:" + t.DueDate.Format("2006-01-02")
	}
	return badge
}

func (m Model) currentList() (model.List, bool) {
	if m.ListCursor < 0 || m.ListCursor >= len(m.Lists) {
		return model.List{}, false
	}
	return m.Lists[m.ListCursor], true
}

func (m Model) currentTask() (model.Task, bool) {
	if m.TaskCursor < 0 || m.TaskCursor >= len(m.Tasks) {
		return model.Task{}, false
	}
	return m.Tasks[m.TaskCursor], true
}

func (m Model) taskByTarget(target string) (model.Task, bool) {
	if target == "" || target == "selected" {
		return m.currentTask()
	}
	for _, t := range m.Tasks {
		if t.ID == target {
			return t, true
		}
	}
	return model.Task{}, false
}
