package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"tasklistd/internal/commands"
)

func (m Model) handlePaletteKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.Palette.Active = false
		m.Palette.Input = ""
		m.commandInput.SetValue("")
		m.commandInput.Blur()
		m.Status = StatusBar{Text: "command palette closed"}
		return m, nil
	case "enter":
		m.Palette.Input = m.commandInput.Value()
		return m.executePaletteCommand()
	default:
		if msg.Type == tea.KeyRunes {
			m.commandInput.SetValue(m.commandInput.Value() + string(msg.Runes))
			m.Palette.Input = m.commandInput.Value()
			return m, nil
		}
		var cmd tea.Cmd
		m.commandInput, cmd = m.commandInput.Update(msg)
		m.Palette.Input = m.commandInput.Value()
		return m, cmd
	}
}

func (m Model) executePaletteCommand() (tea.Model, tea.Cmd) {
	raw := strings.TrimSpace(m.Palette.Input)
	m.Palette.Active = false
	m.Palette.Input = ""
	m.commandInput.SetValue("")
	m.commandInput.Blur()

	cmd, err := commands.Parse(raw)
	if err != nil {
		m.Status = StatusBar{Text: err.Error(), IsError: true}
		return m, nil
	}

	var teaCmd tea.Cmd
	res, err := commands.Execute(cmd, commands.Handlers{
		Add: func(a commands.AddArgs) (commands.Result, error) {
			task, ok := m.quickAddTask(a.Title)
			if !ok {
				return commands.Result{}, &commands.CommandError{Code: commands.ErrCodeInvalidArgument, Message: "no list selected"}
			}
			teaCmd = m.createTaskCmd(task)
			return commands.Result{Message: fmt.Sprintf("adding task: %s", a.Title)}, nil
		},
		Open: func(o commands.OpenArgs) (commands.Result, error) {
			for i, l := range m.Lists {
				if strings.EqualFold(l.Name, o.List) || l.ID == o.List {
					m.ListCursor = i
					m.SelectedListID = l.ID
					m.CurrentPane = PaneTasks
					m.TaskCursor = 0
					teaCmd = m.loadTasksCmd(l.ID)
					return commands.Result{Message: "opened list: " + l.Name}, nil
				}
			}
			return commands.Result{}, &commands.CommandError{Code: commands.ErrCodeInvalidArgument, Message: "no such list: " + o.List}
		},
		Done: func(d commands.DoneArgs) (commands.Result, error) {
			task, ok := m.taskByTarget(d.Target)
			if !ok {
				return commands.Result{}, &commands.CommandError{Code: commands.ErrCodeInvalidArgument, Message: "no task matches: " + d.Target}
			}
			teaCmd = m.updateTaskCmd("done", m.completedTask(task))
			return commands.Result{Message: "completing task: " + task.Title}, nil
		},
		Fav: func(f commands.FavArgs) (commands.Result, error) {
			task, ok := m.taskByTarget(f.Target)
			if !ok {
				return commands.Result{}, &commands.CommandError{Code: commands.ErrCodeInvalidArgument, Message: "no task matches: " + f.Target}
			}
			teaCmd = m.updateTaskCmd("fav", m.favoritedTask(task))
			return commands.Result{Message: "toggling favorite: " + task.Title}, nil
		},
		Del: func(d commands.DelArgs) (commands.Result, error) {
			task, ok := m.taskByTarget(d.Target)
			if !ok {
				return commands.Result{}, &commands.CommandError{Code: commands.ErrCodeInvalidArgument, Message: "no task matches: " + d.Target}
			}
			teaCmd = m.deleteTaskCmd(task.ID)
			return commands.Result{Message: "deleting task: " + task.Title}, nil
		},
		Refresh: func() (commands.Result, error) {
			cmds := []tea.Cmd{m.loadListsCmd()}
			if m.SelectedListID != "" {
				cmds = append(cmds, m.loadTasksCmd(m.SelectedListID))
			}
			teaCmd = tea.Batch(cmds...)
			return commands.Result{Message: "refreshing"}, nil
		},
	})
	if err != nil {
		m.Status = StatusBar{Text: err.Error(), IsError: true}
		return m, nil
	}

	m.Status = StatusBar{Text: res.Message}
	if teaCmd != nil {
		m.spinnerActive = true
		return m, tea.Batch(m.rpcSpinner.Tick, teaCmd)
	}
	return m, nil
}
