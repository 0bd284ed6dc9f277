package storage

import (
	"database/sql"
	"time"

	"tasklistd/internal/model"
)

const sqliteTimeLayout = time.RFC3339Nano

// TaskRow mirrors one row of the tasks table. Columns align 1:1 with
// model.Task fields; timestamps are RFC3339Nano UTC text.
type TaskRow struct {
	IDTask               string         `db:"id_task"`
	ParentList           string         `db:"parent_list"`
	Title                string         `db:"title"`
	Body                 string         `db:"body"`
	CompletedOn          sql.NullString `db:"completed_on"`
	DueDate              sql.NullString `db:"due_date"`
	Importance           string         `db:"importance"`
	Favorite             bool           `db:"favorite"`
	IsReminderOn         bool           `db:"is_reminder_on"`
	ReminderDate         sql.NullString `db:"reminder_date"`
	Status               string         `db:"status"`
	CreatedDateTime      string         `db:"created_date_time"`
	LastModifiedDateTime string         `db:"last_modified_date_time"`
}

// ListRow mirrors one row of the lists table.
type ListRow struct {
	IDList   string `db:"id_list"`
	Name     string `db:"name"`
	IsOwner  bool   `db:"is_owner"`
	IconName string `db:"icon_name"`
	Provider string `db:"provider"`
}

// TaskRowFromModel converts a wire task into its row form. No defaulting,
// no validation: an empty identifier passes through unchanged.
func TaskRowFromModel(t model.Task) TaskRow {
	return TaskRow{
		IDTask:               t.ID,
		ParentList:           t.ParentList,
		Title:                t.Title,
		Body:                 t.Body,
		CompletedOn:          nullTime(t.CompletedOn),
		DueDate:              nullTime(t.DueDate),
		Importance:           string(t.Importance),
		Favorite:             t.Favorite,
		IsReminderOn:         t.IsReminderOn,
		ReminderDate:         nullTime(t.ReminderDate),
		Status:               string(t.Status),
		CreatedDateTime:      mustTime(t.CreatedDateTime),
		LastModifiedDateTime: mustTime(t.LastModifiedDateTime),
	}
}

// ToModel converts a row back into its wire form. The only failure mode is
// timestamp text that does not parse, which means malformed storage data.
func (r TaskRow) ToModel() (model.Task, error) {
	created, err := parseRequiredTime(r.CreatedDateTime)
	if err != nil {
		return model.Task{}, err
	}
	modified, err := parseRequiredTime(r.LastModifiedDateTime)
	if err != nil {
		return model.Task{}, err
	}
	completed, err := parseNullableTime(r.CompletedOn)
	if err != nil {
		return model.Task{}, err
	}
	due, err := parseNullableTime(r.DueDate)
	if err != nil {
		return model.Task{}, err
	}
	reminder, err := parseNullableTime(r.ReminderDate)
	if err != nil {
		return model.Task{}, err
	}
	return model.Task{
		ID:                   r.IDTask,
		ParentList:           r.ParentList,
		Title:                r.Title,
		Body:                 r.Body,
		CompletedOn:          completed,
		DueDate:              due,
		Importance:           model.Importance(r.Importance),
		Favorite:             r.Favorite,
		IsReminderOn:         r.IsReminderOn,
		ReminderDate:         reminder,
		Status:               model.Status(r.Status),
		CreatedDateTime:      created,
		LastModifiedDateTime: modified,
	}, nil
}

// ListRowFromModel converts a wire list into its row form.
func ListRowFromModel(l model.List) ListRow {
	return ListRow{
		IDList:   l.ID,
		Name:     l.Name,
		IsOwner:  l.IsOwner,
		IconName: l.IconName,
		Provider: l.Provider,
	}
}

// ToModel converts a row back into its wire form; list rows carry no
// timestamps, so the conversion cannot fail.
func (r ListRow) ToModel() model.List {
	return model.List{
		ID:       r.IDList,
		Name:     r.Name,
		IsOwner:  r.IsOwner,
		IconName: r.IconName,
		Provider: r.Provider,
	}
}

func nullTime(v *time.Time) sql.NullString {
	if v == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: v.UTC().Format(sqliteTimeLayout), Valid: true}
}

func mustTime(v time.Time) string {
	return v.UTC().Format(sqliteTimeLayout)
}

func parseNullableTime(v sql.NullString) (*time.Time, error) {
	if !v.Valid || v.String == "" {
		return nil, nil
	}
	tm, err := time.Parse(sqliteTimeLayout, v.String)
	if err != nil {
		return nil, err
	}
	return &tm, nil
}

func parseRequiredTime(v string) (time.Time, error) {
	return time.Parse(sqliteTimeLayout, v)
}
