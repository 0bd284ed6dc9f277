package storage

import (
	"database/sql"
	"reflect"
	"testing"
	"time"

	"tasklistd/internal/model"
)

func TestTaskRowRoundTripFromModel(t *testing.T) {
	created := time.Date(2026, 3, 2, 9, 30, 0, 123456789, time.UTC)
	due := time.Date(2026, 3, 5, 17, 0, 0, 0, time.UTC)
	reminder := time.Date(2026, 3, 5, 8, 0, 0, 0, time.UTC)

	task := model.Task{
		ID:                   "task-1",
		ParentList:           "list-1",
		Title:                "Ship the release",
		Body:                 "Cut the tag and publish notes.",
		DueDate:              &due,
		Importance:           model.ImportanceHigh,
		Favorite:             true,
		IsReminderOn:         true,
		ReminderDate:         &reminder,
		Status:               model.StatusNotStarted,
		CreatedDateTime:      created,
		LastModifiedDateTime: created,
	}

	back, err := TaskRowFromModel(task).ToModel()
	if err != nil {
		t.Fatalf("row to model: %v", err)
	}
	if !reflect.DeepEqual(task, back) {
		t.Fatalf("task round trip mismatch:\n in: %#v\nout: %#v", task, back)
	}
}

func TestTaskRowRoundTripFromRow(t *testing.T) {
	row := TaskRow{
		IDTask:               "task-2",
		ParentList:           "list-9",
		Title:                "Canonical row",
		Body:                 "",
		CompletedOn:          sql.NullString{String: "2026-03-01T10:00:00Z", Valid: true},
		Importance:           "Low",
		Status:               "Completed",
		CreatedDateTime:      "2026-02-09T12:00:00Z",
		LastModifiedDateTime: "2026-03-01T10:00:00Z",
	}

	task, err := row.ToModel()
	if err != nil {
		t.Fatalf("row to model: %v", err)
	}
	back := TaskRowFromModel(task)
	if !reflect.DeepEqual(row, back) {
		t.Fatalf("row round trip mismatch:\n in: %#v\nout: %#v", row, back)
	}
}

func TestTaskRowEmptyIdentifierPassesThrough(t *testing.T) {
	now := time.Date(2026, 2, 9, 12, 0, 0, 0, time.UTC)
	row := TaskRowFromModel(model.Task{
		Title:                "No identifier",
		Importance:           model.ImportanceNormal,
		Status:               model.StatusNotStarted,
		CreatedDateTime:      now,
		LastModifiedDateTime: now,
	})
	if row.IDTask != "" {
		t.Fatalf("expected empty id to pass through, got %q", row.IDTask)
	}
}

func TestTaskRowMalformedTimestampFails(t *testing.T) {
	row := TaskRow{
		IDTask:               "task-bad",
		Title:                "Broken row",
		CreatedDateTime:      "yesterday",
		LastModifiedDateTime: "2026-02-09T12:00:00Z",
	}
	if _, err := row.ToModel(); err == nil {
		t.Fatal("expected parse error for malformed created_date_time, got nil")
	}

	row.CreatedDateTime = "2026-02-09T12:00:00Z"
	row.ReminderDate = sql.NullString{String: "soon", Valid: true}
	if _, err := row.ToModel(); err == nil {
		t.Fatal("expected parse error for malformed reminder_date, got nil")
	}
}

func TestListRowRoundTrip(t *testing.T) {
	list := model.List{
		ID:       "list-1",
		Name:     "Home",
		IsOwner:  true,
		IconName: "house",
		Provider: "local",
	}
	if got := ListRowFromModel(list).ToModel(); !reflect.DeepEqual(list, got) {
		t.Fatalf("list round trip mismatch:\n in: %#v\nout: %#v", list, got)
	}

	row := ListRow{IDList: "list-2", Name: "Work", Provider: "exchange"}
	if got := ListRowFromModel(row.ToModel()); !reflect.DeepEqual(row, got) {
		t.Fatalf("row round trip mismatch:\n in: %#v\nout: %#v", row, got)
	}
}
