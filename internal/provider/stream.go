package provider

import (
	"context"

	"tasklistd/internal/model"
	"tasklistd/internal/storage"
)

// Streaming operations. Each call spawns one producer goroutine and hands
// back the receive end of a bounded channel immediately. One successful
// envelope is sent per entity; the channel close signals end-of-sequence.
// If the query fails, exactly one failure envelope is sent before the close,
// so a consumer can tell an empty result from a failed one. The producer
// checks for cancellation before every send and stops without retry when
// its consumer is gone.

func (s *Service) ReadAllTasks(ctx context.Context) <-chan model.TaskResponse {
	out := make(chan model.TaskResponse, s.streamBuffer)
	go s.produceTasks(ctx, out, func() ([]storage.TaskRow, error) {
		return s.store.AllTasks(ctx)
	})
	return out
}

func (s *Service) ReadTasksFromList(ctx context.Context, listID string) <-chan model.TaskResponse {
	out := make(chan model.TaskResponse, s.streamBuffer)
	go s.produceTasks(ctx, out, func() ([]storage.TaskRow, error) {
		return s.store.TasksFromList(ctx, listID)
	})
	return out
}

func (s *Service) ReadAllLists(ctx context.Context) <-chan model.ListResponse {
	out := make(chan model.ListResponse, s.streamBuffer)
	go func() {
		defer close(out)
		rows, err := s.store.AllLists(ctx)
		if err != nil {
			sendList(ctx, out, listFailure("read_all_lists", err))
			return
		}
		for _, row := range rows {
			list := row.ToModel()
			ok := sendList(ctx, out, model.ListResponse{
				Successful: true,
				Message:    "List fetched successfully.",
				List:       &list,
			})
			if !ok {
				return
			}
		}
	}()
	return out
}

func (s *Service) produceTasks(ctx context.Context, out chan<- model.TaskResponse, query func() ([]storage.TaskRow, error)) {
	defer close(out)
	rows, err := query()
	if err != nil {
		sendTask(ctx, out, taskFailure("stream_tasks", err))
		return
	}
	for _, row := range rows {
		task, err := row.ToModel()
		if err != nil {
			sendTask(ctx, out, taskFailure("stream_tasks", err))
			return
		}
		ok := sendTask(ctx, out, model.TaskResponse{
			Successful: true,
			Message:    "Task fetched successfully.",
			Task:       &task,
		})
		if !ok {
			return
		}
	}
}

func sendTask(ctx context.Context, out chan<- model.TaskResponse, resp model.TaskResponse) bool {
	select {
	case <-ctx.Done():
		return false
	case out <- resp:
		return true
	}
}

func sendList(ctx context.Context, out chan<- model.ListResponse, resp model.ListResponse) bool {
	select {
	case <-ctx.Done():
		return false
	case out <- resp:
		return true
	}
}
