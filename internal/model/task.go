package model

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrInvalidStatus     = errors.New("model: invalid task status")
	ErrInvalidImportance = errors.New("model: invalid task importance")
)

type Status string

const (
	StatusNotStarted Status = "NotStarted"
	StatusCompleted  Status = "Completed"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusNotStarted, StatusCompleted:
		return true
	default:
		return false
	}
}

type Importance string

const (
	ImportanceLow    Importance = "Low"
	ImportanceNormal Importance = "Normal"
	ImportanceHigh   Importance = "High"
)

func (i Importance) IsValid() bool {
	switch i {
	case ImportanceLow, ImportanceNormal, ImportanceHigh:
		return true
	default:
		return false
	}
}

// Task is the wire form of a task record. ParentList names the owning
// List by ID; the reference is never checked against the lists table.
type Task struct {
	ID                   string     `json:"id"`
	ParentList           string     `json:"parent_list"`
	Title                string     `json:"title"`
	Body                 string     `json:"body"`
	CompletedOn          *time.Time `json:"completed_on,omitempty"`
	DueDate              *time.Time `json:"due_date,omitempty"`
	Importance           Importance `json:"importance"`
	Favorite             bool       `json:"favorite"`
	IsReminderOn         bool       `json:"is_reminder_on"`
	ReminderDate         *time.Time `json:"reminder_date,omitempty"`
	Status               Status     `json:"status"`
	CreatedDateTime      time.Time  `json:"created_date_time"`
	LastModifiedDateTime time.Time  `json:"last_modified_date_time"`
}

func (t Task) Validate() error {
	if strings.TrimSpace(t.ID) == "" {
		return errors.New("model: task id is required")
	}
	if strings.TrimSpace(t.Title) == "" {
		return errors.New("model: task title is required")
	}
	if !t.Importance.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidImportance, t.Importance)
	}
	if !t.Status.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, t.Status)
	}
	if t.IsReminderOn && t.ReminderDate == nil {
		return errors.New("model: reminder_date is required when is_reminder_on is set")
	}
	if t.Status == StatusCompleted && t.CompletedOn == nil {
		return errors.New("model: completed_on is required when task status is Completed")
	}
	return nil
}
