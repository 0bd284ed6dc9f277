package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
)

func setupStore(t *testing.T) *Store {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "tasklistd-test.db")
	db, err := sqlx.Connect("sqlite3", dbPath)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err := MigrateUp(db); err != nil {
		t.Fatalf("migrate up: %v", err)
	}

	store, err := NewStore(NewPoolGatewayFromDB(db))
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	return store
}

func taskRowFixture(id, parentList, title string) TaskRow {
	stamp := mustTime(time.Date(2026, 2, 9, 12, 0, 0, 0, time.UTC))
	return TaskRow{
		IDTask:               id,
		ParentList:           parentList,
		Title:                title,
		Importance:           "Normal",
		Status:               "NotStarted",
		CreatedDateTime:      stamp,
		LastModifiedDateTime: stamp,
	}
}

func TestTaskCRUD(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	task := taskRowFixture("task-1", "list-1", "Write schema")
	if err := store.CreateTask(ctx, task); err != nil {
		t.Fatalf("create task: %v", err)
	}

	got, err := store.GetTask(ctx, task.IDTask)
	if err != nil {
		t.Fatalf("get task: %v", err)
	}
	if got.Title != task.Title || got.ParentList != "list-1" {
		t.Fatalf("unexpected task get result: %#v", got)
	}

	task.Title = "Write schema v2"
	task.ParentList = "list-2"
	task.Favorite = true
	task.Status = "Completed"
	task.CompletedOn = nullTime(ptrTime(time.Date(2026, 2, 10, 8, 0, 0, 0, time.UTC)))
	if err := store.UpdateTask(ctx, task); err != nil {
		t.Fatalf("update task: %v", err)
	}

	got, err = store.GetTask(ctx, task.IDTask)
	if err != nil {
		t.Fatalf("get after update: %v", err)
	}
	if got.Title != "Write schema v2" || got.ParentList != "list-2" || !got.Favorite || got.Status != "Completed" || !got.CompletedOn.Valid {
		t.Fatalf("update did not replace all columns: %#v", got)
	}

	if err := store.DeleteTask(ctx, task.IDTask); err != nil {
		t.Fatalf("delete task: %v", err)
	}
	if _, err := store.GetTask(ctx, task.IDTask); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got: %v", err)
	}
}

func TestUpdateAndDeleteMissingTaskSucceed(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	if err := store.UpdateTask(ctx, taskRowFixture("ghost", "", "Nobody home")); err != nil {
		t.Fatalf("update of missing row must succeed: %v", err)
	}
	if err := store.DeleteTask(ctx, "ghost"); err != nil {
		t.Fatalf("delete of missing row must succeed: %v", err)
	}
}

func TestTasksFromListFiltersByParent(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	for _, row := range []TaskRow{
		taskRowFixture("t1", "L1", "First"),
		taskRowFixture("t2", "L1", "Second"),
		taskRowFixture("t3", "L2", "Other list"),
	} {
		if err := store.CreateTask(ctx, row); err != nil {
			t.Fatalf("create %s: %v", row.IDTask, err)
		}
	}

	rows, err := store.TasksFromList(ctx, "L1")
	if err != nil {
		t.Fatalf("tasks from list: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 tasks in L1, got %d: %#v", len(rows), rows)
	}
	for _, row := range rows {
		if row.ParentList != "L1" {
			t.Fatalf("task %s leaked from list %s", row.IDTask, row.ParentList)
		}
	}

	ids, err := store.TaskIDsFromList(ctx, "L1")
	if err != nil {
		t.Fatalf("task ids from list: %v", err)
	}
	if len(ids) != 2 {
		t.Fatalf("expected 2 ids, got %v", ids)
	}
}

func TestCountColumns(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	for _, row := range []TaskRow{
		taskRowFixture("t1", "L1", "First"),
		taskRowFixture("t2", "L1", "Second"),
	} {
		if err := store.CreateTask(ctx, row); err != nil {
			t.Fatalf("create %s: %v", row.IDTask, err)
		}
	}

	byID, err := store.CountTasksByID(ctx, "t1")
	if err != nil {
		t.Fatalf("count by id: %v", err)
	}
	if byID != 1 {
		t.Fatalf("expected count 1 by id, got %d", byID)
	}

	byParent, err := store.CountTasksByParentList(ctx, "L1")
	if err != nil {
		t.Fatalf("count by parent list: %v", err)
	}
	if byParent != 2 {
		t.Fatalf("expected count 2 by parent list, got %d", byParent)
	}
}

func TestListCRUDAndNoCascade(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	list := ListRow{IDList: "L1", Name: "Home", IsOwner: true, Provider: "local"}
	if err := store.CreateList(ctx, list); err != nil {
		t.Fatalf("create list: %v", err)
	}

	got, err := store.GetList(ctx, "L1")
	if err != nil {
		t.Fatalf("get list: %v", err)
	}
	if got.Name != "Home" || !got.IsOwner {
		t.Fatalf("unexpected list get result: %#v", got)
	}

	list.Name = "Home v2"
	list.IconName = "house"
	if err := store.UpdateList(ctx, list); err != nil {
		t.Fatalf("update list: %v", err)
	}
	got, err = store.GetList(ctx, "L1")
	if err != nil {
		t.Fatalf("get after update: %v", err)
	}
	if got.Name != "Home v2" || got.IconName != "house" {
		t.Fatalf("update did not replace columns: %#v", got)
	}

	if err := store.CreateTask(ctx, taskRowFixture("T1", "L1", "Buy milk")); err != nil {
		t.Fatalf("create task: %v", err)
	}
	if err := store.DeleteList(ctx, "L1"); err != nil {
		t.Fatalf("delete list: %v", err)
	}
	if _, err := store.GetList(ctx, "L1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for deleted list, got: %v", err)
	}

	// Deleting the parent list must not touch its tasks.
	task, err := store.GetTask(ctx, "T1")
	if err != nil {
		t.Fatalf("task must survive list deletion: %v", err)
	}
	if task.ParentList != "L1" {
		t.Fatalf("task back-reference changed: %#v", task)
	}
}

func TestListIDsAndAllLists(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	for _, row := range []ListRow{
		{IDList: "L1", Name: "Home"},
		{IDList: "L2", Name: "Work"},
	} {
		if err := store.CreateList(ctx, row); err != nil {
			t.Fatalf("create %s: %v", row.IDList, err)
		}
	}

	lists, err := store.AllLists(ctx)
	if err != nil {
		t.Fatalf("all lists: %v", err)
	}
	if len(lists) != 2 {
		t.Fatalf("expected 2 lists, got %#v", lists)
	}

	ids, err := store.ListIDs(ctx)
	if err != nil {
		t.Fatalf("list ids: %v", err)
	}
	if len(ids) != 2 {
		t.Fatalf("expected 2 ids, got %v", ids)
	}
}

func TestReminderArmedTasks(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	armed := taskRowFixture("armed", "L1", "Armed task")
	armed.IsReminderOn = true
	armed.ReminderDate = nullTime(ptrTime(time.Date(2026, 2, 10, 8, 0, 0, 0, time.UTC)))
	disarmed := taskRowFixture("disarmed", "L1", "No reminder")

	for _, row := range []TaskRow{armed, disarmed} {
		if err := store.CreateTask(ctx, row); err != nil {
			t.Fatalf("create %s: %v", row.IDTask, err)
		}
	}

	rows, err := store.ReminderArmedTasks(ctx)
	if err != nil {
		t.Fatalf("reminder armed tasks: %v", err)
	}
	if len(rows) != 1 || rows[0].IDTask != "armed" {
		t.Fatalf("expected only the armed task, got %#v", rows)
	}
}

func ptrTime(v time.Time) *time.Time { return &v }
