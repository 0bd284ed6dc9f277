package provider

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"tasklistd/internal/model"
	"tasklistd/internal/storage"
)

const DefaultStreamBuffer = 4

// Metadata holds the fixed strings returned by the metadata getters. They
// are set once at construction and cannot fail.
type Metadata struct {
	ID          string
	Name        string
	Description string
	IconName    string
}

// TaskObserver is notified after a task mutation commits. Used to keep the
// reminder notifier in sync; a nil observer is allowed.
type TaskObserver interface {
	TaskUpserted(task model.Task)
	TaskDeleted(taskID string)
}

type Options struct {
	// StreamBuffer bounds the channel every streaming call emits over.
	StreamBuffer int
	// CountByParentList switches ReadTaskCountFromList to filter on the
	// parent_list column instead of id_task.
	CountByParentList bool
	Observer          TaskObserver
}

// Service implements every provider operation. Unary handlers never return
// a Go error for business failures: the envelope always comes back with
// Successful, Message and, on failure, Kind filled in.
type Service struct {
	store             *storage.Store
	meta              Metadata
	streamBuffer      int
	countByParentList bool
	observer          TaskObserver
}

func NewService(store *storage.Store, meta Metadata, opts Options) (*Service, error) {
	if store == nil {
		return nil, errors.New("provider: nil store")
	}
	buffer := opts.StreamBuffer
	if buffer <= 0 {
		buffer = DefaultStreamBuffer
	}
	return &Service{
		store:             store,
		meta:              meta,
		streamBuffer:      buffer,
		countByParentList: opts.CountByParentList,
		observer:          opts.Observer,
	}, nil
}

func (s *Service) ID() string          { return s.meta.ID }
func (s *Service) Name() string        { return s.meta.Name }
func (s *Service) Description() string { return s.meta.Description }
func (s *Service) IconName() string    { return s.meta.IconName }

// Ping reports whether the store is reachable. Used by the health endpoint.
func (s *Service) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}

func (s *Service) CreateTask(ctx context.Context, task model.Task) model.TaskResponse {
	if err := s.store.CreateTask(ctx, storage.TaskRowFromModel(task)); err != nil {
		return taskFailure("create_task", err)
	}
	s.notifyUpserted(task)
	// The created task is echoed back; lists do not get the same treatment.
	return model.TaskResponse{Successful: true, Message: "Task created successfully.", Task: &task}
}

func (s *Service) ReadTask(ctx context.Context, taskID string) model.TaskResponse {
	row, err := s.store.GetTask(ctx, taskID)
	if err != nil {
		return taskFailure("read_task", err)
	}
	task, err := row.ToModel()
	if err != nil {
		return taskFailure("read_task", err)
	}
	return model.TaskResponse{Successful: true, Message: "Task fetched successfully.", Task: &task}
}

func (s *Service) UpdateTask(ctx context.Context, task model.Task) model.TaskResponse {
	if err := s.store.UpdateTask(ctx, storage.TaskRowFromModel(task)); err != nil {
		return taskFailure("update_task", err)
	}
	s.notifyUpserted(task)
	return model.TaskResponse{Successful: true, Message: "Task updated successfully."}
}

func (s *Service) DeleteTask(ctx context.Context, taskID string) model.TaskResponse {
	if err := s.store.DeleteTask(ctx, taskID); err != nil {
		return taskFailure("delete_task", err)
	}
	if s.observer != nil {
		s.observer.TaskDeleted(taskID)
	}
	return model.TaskResponse{Successful: true, Message: "Task deleted successfully."}
}

func (s *Service) ReadTaskIDsFromList(ctx context.Context, listID string) model.TaskIDResponse {
	ids, err := s.store.TaskIDsFromList(ctx, listID)
	if err != nil {
		logFailure("read_task_ids_from_list", err)
		return model.TaskIDResponse{Message: err.Error(), Kind: classify(err)}
	}
	return model.TaskIDResponse{Successful: true, Message: "Task ids fetched successfully.", TaskIDs: ids}
}

// ReadTaskCountFromList filters on id_task by default, matching the historical
// behavior of this operation. The parent_list filter is an explicit opt-in.
func (s *Service) ReadTaskCountFromList(ctx context.Context, filterID string) model.CountResponse {
	var (
		count int64
		err   error
	)
	if s.countByParentList {
		count, err = s.store.CountTasksByParentList(ctx, filterID)
	} else {
		count, err = s.store.CountTasksByID(ctx, filterID)
	}
	if err != nil {
		logFailure("read_task_count_from_list", err)
		return model.CountResponse{Message: err.Error(), Kind: classify(err)}
	}
	return model.CountResponse{Successful: true, Message: "Task count fetched successfully.", Count: count}
}

func (s *Service) CreateList(ctx context.Context, list model.List) model.ListResponse {
	if err := s.store.CreateList(ctx, storage.ListRowFromModel(list)); err != nil {
		return listFailure("create_list", err)
	}
	// Unlike create_task, the created list is not echoed back.
	return model.ListResponse{Successful: true, Message: "List created successfully."}
}

func (s *Service) ReadList(ctx context.Context, listID string) model.ListResponse {
	row, err := s.store.GetList(ctx, listID)
	if err != nil {
		return listFailure("read_list", err)
	}
	list := row.ToModel()
	return model.ListResponse{Successful: true, Message: "List fetched successfully.", List: &list}
}

func (s *Service) UpdateList(ctx context.Context, list model.List) model.ListResponse {
	if err := s.store.UpdateList(ctx, storage.ListRowFromModel(list)); err != nil {
		return listFailure("update_list", err)
	}
	return model.ListResponse{Successful: true, Message: "List updated successfully."}
}

func (s *Service) DeleteList(ctx context.Context, listID string) model.ListResponse {
	if err := s.store.DeleteList(ctx, listID); err != nil {
		return listFailure("delete_list", err)
	}
	return model.ListResponse{Successful: true, Message: "List deleted successfully."}
}

func (s *Service) ReadAllListIDs(ctx context.Context) model.ListIDResponse {
	ids, err := s.store.ListIDs(ctx)
	if err != nil {
		logFailure("read_all_list_ids", err)
		return model.ListIDResponse{Message: err.Error(), Kind: classify(err)}
	}
	return model.ListIDResponse{Successful: true, Message: "List ids fetched successfully.", ListIDs: ids}
}

func (s *Service) notifyUpserted(task model.Task) {
	if s.observer != nil {
		s.observer.TaskUpserted(task)
	}
}

func classify(err error) model.FailureKind {
	switch {
	case errors.Is(err, storage.ErrConnection):
		return model.FailureConnection
	case errors.Is(err, storage.ErrNotFound):
		return model.FailureNotFound
	default:
		return model.FailureQuery
	}
}

func taskFailure(op string, err error) model.TaskResponse {
	logFailure(op, err)
	return model.TaskResponse{Message: err.Error(), Kind: classify(err)}
}

func listFailure(op string, err error) model.ListResponse {
	logFailure(op, err)
	return model.ListResponse{Message: err.Error(), Kind: classify(err)}
}

func logFailure(op string, err error) {
	zap.L().Warn("operation failed", zap.String("op", op), zap.Error(err))
}
