package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

const maxToasts = 20

func (m Model) Init() tea.Cmd {
	if m.backend == nil {
		return nil
	}
	return tea.Batch(m.loadListsCmd(), m.openReminderStreamCmd())
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch typed := msg.(type) {
	case tea.KeyMsg:
		if m.Palette.Active {
			return m.handlePaletteKey(typed)
		}
		if m.QuickAdd.Active {
			return m.handleQuickAddKey(typed)
		}
		return m.handleGlobalKey(typed)

	case spinner.TickMsg:
		if m.spinnerActive {
			var cmd tea.Cmd
			m.rpcSpinner, cmd = m.rpcSpinner.Update(typed)
			return m, cmd
		}

	case SetListsMsg:
		m.Lists = typed.Lists
		if m.ListCursor >= len(m.Lists) {
			m.ListCursor = 0
		}
		m.spinnerActive = false
		if list, ok := m.currentList(); ok && m.SelectedListID == "" {
			m.SelectedListID = list.ID
			return m, m.loadTasksCmd(list.ID)
		}
		return m, nil

	case SetTasksMsg:
		m.Tasks = typed.Tasks
		m.SelectedListID = typed.ListID
		if m.TaskCursor >= len(m.Tasks) {
			m.TaskCursor = 0
		}
		m.syncSelectedTask()
		m.spinnerActive = false
		return m, nil

	case TaskMutatedMsg:
		m.spinnerActive = false
		if !typed.Response.Successful {
			m.Status = StatusBar{Text: fmt.Sprintf("%s failed: %s", typed.Verb, typed.Response.Message), IsError: true}
			return m, nil
		}
		m.Status = StatusBar{Text: typed.Response.Message, IsError: false}
		if m.SelectedListID != "" {
			return m, m.loadTasksCmd(m.SelectedListID)
		}
		return m, nil

	case ListCreatedMsg:
		m.spinnerActive = false
		if !typed.Response.Successful {
			m.Status = StatusBar{Text: "create list failed: " + typed.Response.Message, IsError: true}
			return m, nil
		}
		m.Status = StatusBar{Text: typed.Response.Message, IsError: false}
		return m, m.loadListsCmd()

	case SetStatusMsg:
		m.Status = StatusBar{Text: typed.Text, IsError: typed.IsError}
		return m, nil

	case ClearStatusMsg:
		m.Status = StatusBar{}
		return m, nil

	case AppErrorMsg:
		m.spinnerActive = false
		m.LastError = typed.Err
		if typed.Err != nil {
			m.Status = StatusBar{Text: typed.Err.Error(), IsError: true}
		}
		return m, nil

	case reminderStreamMsg:
		m.reminderCh = typed.ch
		return m, waitForReminderCmd(typed.ch)

	case ReminderDueMsg:
		m.pushToast(Toast{
			Title: "Reminder",
			Body:  fmt.Sprintf("%s (%s)", typed.Event.Title, typed.Event.TaskID),
			At:    time.Now().UTC(),
		})
		m.Status = StatusBar{Text: "reminder: " + typed.Event.Title, IsError: false}
		if m.reminderCh != nil {
			return m, waitForReminderCmd(m.reminderCh)
		}
		return m, nil
	}

	return m, nil
}

func (m Model) handleGlobalKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "/":
		m.Palette.Active = true
		m.Palette.Input = ""
		m.commandInput.SetValue("")
		m.commandInput.Focus()
		m.Status = StatusBar{Text: "command palette active"}
		return m, nil
	case "a":
		m.QuickAdd.Active = true
		m.QuickAdd.Input = ""
		m.quickAddInput.SetValue("")
		m.quickAddInput.Focus()
		return m, nil
	case m.Keys.Lists:
		m.CurrentPane = PaneLists
		return m, nil
	case m.Keys.Tasks:
		m.CurrentPane = PaneTasks
		return m, nil
	case m.Keys.Detail:
		m.CurrentPane = PaneDetail
		return m, nil
	case m.Keys.Refresh:
		m.spinnerActive = true
		cmds := []tea.Cmd{m.rpcSpinner.Tick, m.loadListsCmd()}
		if m.SelectedListID != "" {
			cmds = append(cmds, m.loadTasksCmd(m.SelectedListID))
		}
		return m, tea.Batch(cmds...)
	case m.Keys.Help:
		m.HelpVisible = !m.HelpVisible
		return m, nil
	case "ctrl+c", m.Keys.Quit:
		m.Quitting = true
		return m, tea.Quit
	}

	switch m.CurrentPane {
	case PaneLists:
		return m.handleListsKey(msg)
	case PaneTasks:
		return m.handleTasksKey(msg)
	}
	return m, nil
}

func (m Model) handleListsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "j", "down":
		if m.ListCursor < len(m.Lists)-1 {
			m.ListCursor++
		}
	case "k", "up":
		if m.ListCursor > 0 {
			m.ListCursor--
		}
	case "enter":
		if list, ok := m.currentList(); ok {
			m.SelectedListID = list.ID
			m.CurrentPane = PaneTasks
			m.TaskCursor = 0
			m.spinnerActive = true
			return m, tea.Batch(m.rpcSpinner.Tick, m.loadTasksCmd(list.ID))
		}
	}
	return m, nil
}

func (m Model) handleTasksKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "j", "down":
		if m.TaskCursor < len(m.Tasks)-1 {
			m.TaskCursor++
		}
		m.syncSelectedTask()
	case "k", "up":
		if m.TaskCursor > 0 {
			m.TaskCursor--
		}
		m.syncSelectedTask()
	case "enter":
		if _, ok := m.currentTask(); ok {
			m.CurrentPane = PaneDetail
		}
	case "c":
		if task, ok := m.currentTask(); ok {
			m.spinnerActive = true
			return m, tea.Batch(m.rpcSpinner.Tick, m.updateTaskCmd("done", m.completedTask(task)))
		}
	case "f":
		if task, ok := m.currentTask(); ok {
			m.spinnerActive = true
			return m, tea.Batch(m.rpcSpinner.Tick, m.updateTaskCmd("fav", m.favoritedTask(task)))
		}
	case "x":
		if task, ok := m.currentTask(); ok {
			m.spinnerActive = true
			return m, tea.Batch(m.rpcSpinner.Tick, m.deleteTaskCmd(task.ID))
		}
	}
	return m, nil
}

func (m Model) handleQuickAddKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.QuickAdd.Active = false
		m.QuickAdd.Input = ""
		m.quickAddInput.SetValue("")
		m.quickAddInput.Blur()
		return m, nil
	case "enter":
		title := strings.TrimSpace(m.QuickAdd.Input)
		m.QuickAdd.Active = false
		m.QuickAdd.Input = ""
		m.quickAddInput.SetValue("")
		m.quickAddInput.Blur()
		if title == "" {
			return m, nil
		}
		task, ok := m.quickAddTask(title)
		if !ok {
			m.Status = StatusBar{Text: "no list selected", IsError: true}
			return m, nil
		}
		m.spinnerActive = true
		return m, tea.Batch(m.rpcSpinner.Tick, m.createTaskCmd(task))
	default:
		if msg.Type == tea.KeyRunes {
			m.QuickAdd.Input += string(msg.Runes)
			m.quickAddInput.SetValue(m.QuickAdd.Input)
			return m, nil
		}
		var cmd tea.Cmd
		m.quickAddInput, cmd = m.quickAddInput.Update(msg)
		m.QuickAdd.Input = m.quickAddInput.Value()
		return m, cmd
	}
}

func (m *Model) syncSelectedTask() {
	if task, ok := m.currentTask(); ok {
		m.SelectedTaskID = task.ID
	} else {
		m.SelectedTaskID = ""
	}
}

func (m *Model) pushToast(t Toast) {
	m.Toasts = append(m.Toasts, t)
	if len(m.Toasts) > maxToasts {
		m.Toasts = m.Toasts[len(m.Toasts)-maxToasts:]
	}
}
