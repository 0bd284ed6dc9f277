package views

import (
	"fmt"
	"strings"
)

type ListItemData struct {
	ID       string
	Name     string
	Provider string
	IsOwner  bool
}

type ListsPanelData struct {
	ListView   string
	Items      []ListItemData
	SelectedID string
}

type TaskItemData struct {
	ID         string
	Title      string
	Status     string
	Importance string
	Favorite   bool
	DueDate    string
}

type TasksPanelData struct {
	ListName   string
	ListView   string
	Items      []TaskItemData
	SelectedID string
}

type DetailPanelData struct {
	ID           string
	Title        string
	ListName     string
	Status       string
	Importance   string
	Favorite     bool
	DueDate      string
	ReminderDate string
	BodyView     string
}

type QuickAddData struct {
	Active    bool
	InputView string
}

type ToastData struct {
	Title string
	Body  string
}

type HelpPanelData struct {
	CurrentPane string
	Bindings    []string
	HelpView    string
}

func RenderListsPanel(data ListsPanelData) string {
	var b strings.Builder
	b.WriteString("lists:\n")
	b.WriteString("actions: [j/k]move [enter]open [a]add-task [/]cmd\n")
	b.WriteString(data.ListView + "\n")
	if len(data.Items) == 0 {
		b.WriteString("(no lists)")
		return strings.TrimSpace(b.String())
	}
	for _, item := range data.Items {
		cursor := " "
		if data.SelectedID == item.ID {
			cursor = ">"
		}
		owner := ""
		if item.IsOwner {
			owner = " (owner)"
		}
		b.WriteString(fmt.Sprintf("%s %s [%s]%s\n", cursor, item.Name, item.Provider, owner))
	}
	return strings.TrimSpace(b.String())
}

func RenderTasksPanel(data TasksPanelData) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("tasks: %s\n", data.ListName))
	b.WriteString("actions: [j/k]move [enter]detail [c]done [f]fav [x]del\n")
	b.WriteString(data.ListView + "\n")
	if len(data.Items) == 0 {
		b.WriteString("(no tasks)")
		return strings.TrimSpace(b.String())
	}
	for _, item := range data.Items {
		cursor := " "
		if data.SelectedID == item.ID {
			cursor = ">"
		}
		b.WriteString(fmt.Sprintf("%s %s %s", cursor, statusBadge(item), item.Title))
		if item.DueDate != "" {
			b.WriteString(" due:" + item.DueDate)
		}
		b.WriteString("\n")
	}
	return strings.TrimSpace(b.String())
}

func RenderDetailPanel(data DetailPanelData) string {
	if strings.TrimSpace(data.ID) == "" {
		return "detail:\n(no selection)"
	}
	var b strings.Builder
	b.WriteString("detail:\n")
	b.WriteString(fmt.Sprintf("id: %s\n", data.ID))
	b.WriteString(fmt.Sprintf("title: %s\n", data.Title))
	b.WriteString(fmt.Sprintf("list: %s\n", data.ListName))
	b.WriteString(fmt.Sprintf("status: %s | importance: %s | favorite: %t\n", data.Status, data.Importance, data.Favorite))
	if data.DueDate != "" {
		b.WriteString(fmt.Sprintf("due: %s\n", data.DueDate))
	}
	if data.ReminderDate != "" {
		b.WriteString(fmt.Sprintf("reminder: %s\n", data.ReminderDate))
	}
	b.WriteString("\nbody:\n")
	b.WriteString(data.BodyView)
	return strings.TrimSpace(b.String())
}

func RenderCommandPalette(active bool, input string) string {
	if !active {
		return ""
	}
	return fmt.Sprintf("command: /%s", input)
}

func RenderQuickAdd(data QuickAddData) string {
	if !data.Active {
		return ""
	}
	return "quick-add:\n" + data.InputView
}

func RenderToast(data ToastData) string {
	if strings.TrimSpace(data.Body) == "" {
		return ""
	}
	return fmt.Sprintf("\n%s: %s", strings.ToLower(data.Title), data.Body)
}

func RenderHelpPanel(data HelpPanelData) string {
	return fmt.Sprintf("help:\nglobal:\n%s pane:\n%s\n%s",
		strings.ToLower(data.CurrentPane),
		strings.Join(data.Bindings, "\n"),
		data.HelpView,
	)
}

func statusBadge(item TaskItemData) string {
	badge := "[ ]"
	if item.Status == "Completed" {
		badge = "[x]"
	}
	if item.Favorite {
		badge += "*"
	}
	if item.Importance == "High" {
		badge += " !"
	}
	return badge
}
