package tui

import (
	"context"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"tasklistd/internal/model"
	"tasklistd/internal/rpc"
)

func (m Model) loadListsCmd() tea.Cmd {
	backend := m.backend
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), rpcTimeout)
		defer cancel()
		lists, err := backend.Lists(ctx)
		if err != nil {
			return AppErrorMsg{Err: err}
		}
		return SetListsMsg{Lists: lists}
	}
}

func (m Model) loadTasksCmd(listID string) tea.Cmd {
	backend := m.backend
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), rpcTimeout)
		defer cancel()
		tasks, err := backend.Tasks(ctx, listID)
		if err != nil {
			return AppErrorMsg{Err: err}
		}
		return SetTasksMsg{ListID: listID, Tasks: tasks}
	}
}

// quickAddTask builds a fresh task for the active list. The client owns
// ID generation; the daemon stores whatever ID it is handed.
func (m Model) quickAddTask(title string) (model.Task, bool) {
	list, ok := m.currentList()
	if !ok && m.SelectedListID == "" {
		return model.Task{}, false
	}
	listID := m.SelectedListID
	if listID == "" {
		listID = list.ID
	}
	now := m.now()
	return model.Task{
		ID:                   m.newID(),
		ParentList:           listID,
		Title:                strings.TrimSpace(title),
		Importance:           model.ImportanceNormal,
		Status:               model.StatusNotStarted,
		CreatedDateTime:      now,
		LastModifiedDateTime: now,
	}, true
}

func (m Model) createTaskCmd(task model.Task) tea.Cmd {
	backend := m.backend
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), rpcTimeout)
		defer cancel()
		resp, err := backend.CreateTask(ctx, task)
		if err != nil {
			return AppErrorMsg{Err: err}
		}
		return TaskMutatedMsg{Verb: "create", Response: resp}
	}
}

func (m Model) updateTaskCmd(verb string, task model.Task) tea.Cmd {
	backend := m.backend
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), rpcTimeout)
		defer cancel()
		resp, err := backend.UpdateTask(ctx, task)
		if err != nil {
			return AppErrorMsg{Err: err}
		}
		return TaskMutatedMsg{Verb: verb, Response: resp}
	}
}

func (m Model) deleteTaskCmd(id string) tea.Cmd {
	backend := m.backend
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), rpcTimeout)
		defer cancel()
		resp, err := backend.DeleteTask(ctx, id)
		if err != nil {
			return AppErrorMsg{Err: err}
		}
		return TaskMutatedMsg{Verb: "delete", Response: resp}
	}
}

// completedTask flips a task to Completed, stamping completed_on.
func (m Model) completedTask(task model.Task) model.Task {
	now := m.now()
	task.Status = model.StatusCompleted
	task.CompletedOn = &now
	task.LastModifiedDateTime = now
	return task
}

func (m Model) favoritedTask(task model.Task) model.Task {
	task.Favorite = !task.Favorite
	task.LastModifiedDateTime = m.now()
	return task
}

func (m Model) openReminderStreamCmd() tea.Cmd {
	backend := m.backend
	return func() tea.Msg {
		ch, err := backend.WatchReminders(context.Background())
		if err != nil {
			return AppErrorMsg{Err: err}
		}
		return reminderStreamMsg{ch: ch}
	}
}

func waitForReminderCmd(ch <-chan rpc.ReminderEvent) tea.Cmd {
	return func() tea.Msg {
		event, ok := <-ch
		if !ok {
			return nil
		}
		return ReminderDueMsg{Event: event}
	}
}
