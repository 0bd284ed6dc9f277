package storage

import (
	"context"
	"database/sql"
	"errors"
)

// Store executes queries and mutations over the tasks and lists tables.
// Every method acquires a handle from the gateway for the duration of that
// one operation and releases it before returning. No operation imposes an
// ORDER BY: result order is whatever the storage engine produces.
type Store struct {
	gateway Gateway
}

func NewStore(gateway Gateway) (*Store, error) {
	if gateway == nil {
		return nil, errors.New("storage: nil gateway")
	}
	return &Store{gateway: gateway}, nil
}

// Ping verifies the store is reachable through the gateway.
func (s *Store) Ping(ctx context.Context) error {
	db, release, err := s.gateway.Acquire(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = release() }()
	return db.PingContext(ctx)
}

func (s *Store) CreateTask(ctx context.Context, row TaskRow) error {
	db, release, err := s.gateway.Acquire(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = release() }()

	_, err = db.NamedExecContext(ctx, `
		INSERT INTO tasks (id_task, parent_list, title, body, completed_on, due_date, importance, favorite, is_reminder_on, reminder_date, status, created_date_time, last_modified_date_time)
		VALUES (:id_task, :parent_list, :title, :body, :completed_on, :due_date, :importance, :favorite, :is_reminder_on, :reminder_date, :status, :created_date_time, :last_modified_date_time)`,
		row,
	)
	return err
}

func (s *Store) GetTask(ctx context.Context, id string) (TaskRow, error) {
	db, release, err := s.gateway.Acquire(ctx)
	if err != nil {
		return TaskRow{}, err
	}
	defer func() { _ = release() }()

	var row TaskRow
	err = db.GetContext(ctx, &row, `
		SELECT id_task, parent_list, title, body, completed_on, due_date, importance, favorite, is_reminder_on, reminder_date, status, created_date_time, last_modified_date_time
		FROM tasks WHERE id_task = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return TaskRow{}, ErrNotFound
	}
	if err != nil {
		return TaskRow{}, err
	}
	return row, nil
}

// UpdateTask replaces every column of the row matching the primary key.
// A missing row is not an error: no rows-affected check is made.
func (s *Store) UpdateTask(ctx context.Context, row TaskRow) error {
	db, release, err := s.gateway.Acquire(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = release() }()

	_, err = db.NamedExecContext(ctx, `
		UPDATE tasks
		SET parent_list = :parent_list, title = :title, body = :body, completed_on = :completed_on, due_date = :due_date, importance = :importance, favorite = :favorite, is_reminder_on = :is_reminder_on, reminder_date = :reminder_date, status = :status, created_date_time = :created_date_time, last_modified_date_time = :last_modified_date_time
		WHERE id_task = :id_task`,
		row,
	)
	return err
}

// DeleteTask removes all rows matching the primary-key filter, whether that
// is zero rows or one.
func (s *Store) DeleteTask(ctx context.Context, id string) error {
	db, release, err := s.gateway.Acquire(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = release() }()

	_, err = db.ExecContext(ctx, `DELETE FROM tasks WHERE id_task = ?`, id)
	return err
}

func (s *Store) AllTasks(ctx context.Context) ([]TaskRow, error) {
	db, release, err := s.gateway.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = release() }()

	rows := make([]TaskRow, 0)
	err = db.SelectContext(ctx, &rows, `
		SELECT id_task, parent_list, title, body, completed_on, due_date, importance, favorite, is_reminder_on, reminder_date, status, created_date_time, last_modified_date_time
		FROM tasks`)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (s *Store) TasksFromList(ctx context.Context, listID string) ([]TaskRow, error) {
	db, release, err := s.gateway.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = release() }()

	rows := make([]TaskRow, 0)
	err = db.SelectContext(ctx, &rows, `
		SELECT id_task, parent_list, title, body, completed_on, due_date, importance, favorite, is_reminder_on, reminder_date, status, created_date_time, last_modified_date_time
		FROM tasks WHERE parent_list = ?`, listID)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (s *Store) TaskIDsFromList(ctx context.Context, listID string) ([]string, error) {
	db, release, err := s.gateway.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = release() }()

	ids := make([]string, 0)
	err = db.SelectContext(ctx, &ids, `SELECT id_task FROM tasks WHERE parent_list = ?`, listID)
	if err != nil {
		return nil, err
	}
	return ids, nil
}

func (s *Store) CountTasksByID(ctx context.Context, taskID string) (int64, error) {
	db, release, err := s.gateway.Acquire(ctx)
	if err != nil {
		return 0, err
	}
	defer func() { _ = release() }()

	var count int64
	err = db.GetContext(ctx, &count, `SELECT COUNT(*) FROM tasks WHERE id_task = ?`, taskID)
	if err != nil {
		return 0, err
	}
	return count, nil
}

func (s *Store) CountTasksByParentList(ctx context.Context, listID string) (int64, error) {
	db, release, err := s.gateway.Acquire(ctx)
	if err != nil {
		return 0, err
	}
	defer func() { _ = release() }()

	var count int64
	err = db.GetContext(ctx, &count, `SELECT COUNT(*) FROM tasks WHERE parent_list = ?`, listID)
	if err != nil {
		return 0, err
	}
	return count, nil
}

// ReminderArmedTasks returns the tasks whose reminder toggle is on and
// whose reminder timestamp is set.
func (s *Store) ReminderArmedTasks(ctx context.Context) ([]TaskRow, error) {
	db, release, err := s.gateway.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = release() }()

	rows := make([]TaskRow, 0)
	err = db.SelectContext(ctx, &rows, `
		SELECT id_task, parent_list, title, body, completed_on, due_date, importance, favorite, is_reminder_on, reminder_date, status, created_date_time, last_modified_date_time
		FROM tasks WHERE is_reminder_on = 1 AND reminder_date IS NOT NULL`)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (s *Store) CreateList(ctx context.Context, row ListRow) error {
	db, release, err := s.gateway.Acquire(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = release() }()

	_, err = db.NamedExecContext(ctx, `
		INSERT INTO lists (id_list, name, is_owner, icon_name, provider)
		VALUES (:id_list, :name, :is_owner, :icon_name, :provider)`,
		row,
	)
	return err
}

func (s *Store) GetList(ctx context.Context, id string) (ListRow, error) {
	db, release, err := s.gateway.Acquire(ctx)
	if err != nil {
		return ListRow{}, err
	}
	defer func() { _ = release() }()

	var row ListRow
	err = db.GetContext(ctx, &row, `
		SELECT id_list, name, is_owner, icon_name, provider
		FROM lists WHERE id_list = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return ListRow{}, ErrNotFound
	}
	if err != nil {
		return ListRow{}, err
	}
	return row, nil
}

// UpdateList replaces every non-key column of the row matching the primary
// key. A missing row is not an error.
func (s *Store) UpdateList(ctx context.Context, row ListRow) error {
	db, release, err := s.gateway.Acquire(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = release() }()

	_, err = db.NamedExecContext(ctx, `
		UPDATE lists
		SET name = :name, is_owner = :is_owner, icon_name = :icon_name, provider = :provider
		WHERE id_list = :id_list`,
		row,
	)
	return err
}

func (s *Store) DeleteList(ctx context.Context, id string) error {
	db, release, err := s.gateway.Acquire(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = release() }()

	_, err = db.ExecContext(ctx, `DELETE FROM lists WHERE id_list = ?`, id)
	return err
}

func (s *Store) AllLists(ctx context.Context) ([]ListRow, error) {
	db, release, err := s.gateway.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = release() }()

	rows := make([]ListRow, 0)
	err = db.SelectContext(ctx, &rows, `
		SELECT id_list, name, is_owner, icon_name, provider
		FROM lists`)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (s *Store) ListIDs(ctx context.Context) ([]string, error) {
	db, release, err := s.gateway.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = release() }()

	ids := make([]string, 0)
	err = db.SelectContext(ctx, &ids, `SELECT id_list FROM lists`)
	if err != nil {
		return nil, err
	}
	return ids, nil
}
