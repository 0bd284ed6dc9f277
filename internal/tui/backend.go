package tui

import (
	"context"
	"fmt"
	"time"

	"tasklistd/internal/model"
	"tasklistd/internal/rpc"
	"tasklistd/internal/rpcclient"
)

const rpcTimeout = 10 * time.Second

// Backend is the slice of the daemon API the terminal client needs.
// Tests substitute an in-memory fake.
type Backend interface {
	Lists(ctx context.Context) ([]model.List, error)
	Tasks(ctx context.Context, listID string) ([]model.Task, error)
	CreateTask(ctx context.Context, task model.Task) (model.TaskResponse, error)
	UpdateTask(ctx context.Context, task model.Task) (model.TaskResponse, error)
	DeleteTask(ctx context.Context, id string) (model.TaskResponse, error)
	CreateList(ctx context.Context, list model.List) (model.ListResponse, error)
	WatchReminders(ctx context.Context) (<-chan rpc.ReminderEvent, error)
}

// ClientBackend adapts the JSON-RPC client to the Backend interface,
// draining the SSE read streams into slices.
type ClientBackend struct {
	Client *rpcclient.Client
}

func (b ClientBackend) Lists(ctx context.Context) ([]model.List, error) {
	ch, err := b.Client.ReadAllLists(ctx)
	if err != nil {
		return nil, err
	}
	lists := make([]model.List, 0)
	for envelope := range ch {
		if !envelope.Successful {
			return nil, fmt.Errorf("read_all_lists: %s", envelope.Message)
		}
		if envelope.List != nil {
			lists = append(lists, *envelope.List)
		}
	}
	return lists, nil
}

func (b ClientBackend) Tasks(ctx context.Context, listID string) ([]model.Task, error) {
	ch, err := b.Client.ReadTasksFromList(ctx, listID)
	if err != nil {
		return nil, err
	}
	tasks := make([]model.Task, 0)
	for envelope := range ch {
		if !envelope.Successful {
			return nil, fmt.Errorf("read_tasks_from_list: %s", envelope.Message)
		}
		if envelope.Task != nil {
			tasks = append(tasks, *envelope.Task)
		}
	}
	return tasks, nil
}

func (b ClientBackend) CreateTask(ctx context.Context, task model.Task) (model.TaskResponse, error) {
	return b.Client.CreateTask(ctx, task)
}

func (b ClientBackend) UpdateTask(ctx context.Context, task model.Task) (model.TaskResponse, error) {
	return b.Client.UpdateTask(ctx, task)
}

func (b ClientBackend) DeleteTask(ctx context.Context, id string) (model.TaskResponse, error) {
	return b.Client.DeleteTask(ctx, id)
}

func (b ClientBackend) CreateList(ctx context.Context, list model.List) (model.ListResponse, error) {
	return b.Client.CreateList(ctx, list)
}

func (b ClientBackend) WatchReminders(ctx context.Context) (<-chan rpc.ReminderEvent, error) {
	return b.Client.WatchReminders(ctx)
}
