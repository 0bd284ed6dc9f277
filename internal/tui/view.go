package tui

import (
	"fmt"
	"strings"

	"tasklistd/internal/views"
)

func (m Model) View() string {
	m.syncBubbleData()

	status := ""
	if m.Status.Text != "" {
		if m.Status.IsError {
			status = fmt.Sprintf("status: error: %s", m.Status.Text)
		} else {
			status = fmt.Sprintf("status: %s", m.Status.Text)
		}
	}

	leftPane := ""
	rightPane := ""
	switch m.CurrentPane {
	case PaneLists:
		leftPane = m.renderListsPanel()
		rightPane = m.renderTasksPanel()
	case PaneTasks:
		leftPane = m.renderTasksPanel()
		rightPane = m.renderDetailPanel()
	case PaneDetail:
		leftPane = m.renderTasksPanel()
		rightPane = m.renderDetailPanel()
	}
	rightPane += m.renderOverlays()

	notification := ""
	if len(m.Toasts) > 0 {
		last := m.Toasts[len(m.Toasts)-1]
		notification = strings.TrimSpace(views.RenderToast(views.ToastData{Title: last.Title, Body: last.Body}))
	}
	if m.spinnerActive {
		notification = strings.TrimSpace(strings.Join([]string{notification, "rpc: " + m.rpcSpinner.View() + " in flight"}, "\n"))
	}

	return views.RenderApp(views.AppData{
		Header:       fmt.Sprintf("tasklist | pane: %s | selected: %s", m.CurrentPane, m.SelectedTaskID),
		LeftPane:     leftPane,
		RightPane:    rightPane,
		StatusLine:   status,
		StatusIsErr:  m.Status.IsError,
		Notification: notification,
		Footer:       fmt.Sprintf("keys: %s lists | %s tasks | %s detail | a add | / cmd | %s refresh | %s help | %s quit", m.Keys.Lists, m.Keys.Tasks, m.Keys.Detail, m.Keys.Refresh, m.Keys.Help, m.Keys.Quit),
	})
}

func (m Model) renderListsPanel() string {
	items := make([]views.ListItemData, 0, len(m.Lists))
	for _, l := range m.Lists {
		items = append(items, views.ListItemData{
			ID:       l.ID,
			Name:     l.Name,
			Provider: l.Provider,
			IsOwner:  l.IsOwner,
		})
	}
	selectedID := ""
	if list, ok := m.currentList(); ok {
		selectedID = list.ID
	}
	return views.RenderListsPanel(views.ListsPanelData{
		ListView:   m.listsList.View(),
		Items:      items,
		SelectedID: selectedID,
	})
}

func (m Model) renderTasksPanel() string {
	items := make([]views.TaskItemData, 0, len(m.Tasks))
	for _, t := range m.Tasks {
		due := ""
		if t.DueDate != nil {
			due = t.DueDate.Format("2006-01-02")
		}
		items = append(items, views.TaskItemData{
			ID:         t.ID,
			Title:      t.Title,
			Status:     string(t.Status),
			Importance: string(t.Importance),
			Favorite:   t.Favorite,
			DueDate:    due,
		})
	}
	return views.RenderTasksPanel(views.TasksPanelData{
		ListName:   m.selectedListName(),
		ListView:   m.tasksList.View(),
		Items:      items,
		SelectedID: m.SelectedTaskID,
	})
}

func (m Model) renderDetailPanel() string {
	task, ok := m.currentTask()
	if !ok {
		return views.RenderDetailPanel(views.DetailPanelData{})
	}
	body := task.Body
	if strings.TrimSpace(body) == "" {
		body = "_No notes_"
	}
	m.detailViewport.SetContent(views.RenderMarkdown(body))
	due := ""
	if task.DueDate != nil {
		due = task.DueDate.Format("2006-01-02")
	}
	reminder := ""
	if task.IsReminderOn && task.ReminderDate != nil {
		reminder = task.ReminderDate.Format("2006-01-02 15:04")
	}
	return views.RenderDetailPanel(views.DetailPanelData{
		ID:           task.ID,
		Title:        task.Title,
		ListName:     m.selectedListName(),
		Status:       string(task.Status),
		Importance:   string(task.Importance),
		Favorite:     task.Favorite,
		DueDate:      due,
		ReminderDate: reminder,
		BodyView:     m.detailViewport.View(),
	})
}

func (m Model) renderOverlays() string {
	out := ""
	if palette := views.RenderCommandPalette(m.Palette.Active, m.Palette.Input); palette != "" {
		out += "\n" + palette
	}
	if quick := views.RenderQuickAdd(views.QuickAddData{Active: m.QuickAdd.Active, InputView: m.quickAddInput.View()}); quick != "" {
		out += "\n" + quick
	}
	if help := m.renderHelpIfVisible(); help != "" {
		out += "\n" + help
	}
	return out
}

func (m Model) selectedListName() string {
	for _, l := range m.Lists {
		if l.ID == m.SelectedListID {
			return l.Name
		}
	}
	if m.SelectedListID != "" {
		return m.SelectedListID
	}
	return "(none)"
}
