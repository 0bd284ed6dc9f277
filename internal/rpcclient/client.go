// Package rpcclient is the thin JSON-RPC + SSE client the terminal
// frontend talks to the daemon through.
package rpcclient

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"tasklistd/internal/model"
	"tasklistd/internal/rpc"
)

const defaultCallTimeout = 10 * time.Second

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *rpcError) Error() string {
	return fmt.Sprintf("rpc error %d: %s", e.Code, e.Message)
}

type Client struct {
	baseURL string
	// unary has a request timeout; stream must not, SSE responses stay open.
	unary  *http.Client
	stream *http.Client
}

func New(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		unary:   &http.Client{Timeout: defaultCallTimeout},
		stream:  &http.Client{},
	}
}

// Call performs one JSON-RPC request and decodes the result into out.
// A non-nil out must be a pointer.
func (c *Client) Call(ctx context.Context, method string, params, out any) error {
	payload := map[string]any{"jsonrpc": "2.0", "id": 1, "method": method}
	if params != nil {
		payload["params"] = params
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("rpcclient: encode %s: %w", method, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/rpc", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("rpcclient: %s: %w", method, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.unary.Do(req)
	if err != nil {
		return fmt.Errorf("rpcclient: %s: %w", method, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("rpcclient: %s: unexpected status %d", method, resp.StatusCode)
	}

	var decoded struct {
		Result json.RawMessage `json:"result"`
		Error  *rpcError       `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return fmt.Errorf("rpcclient: decode %s: %w", method, err)
	}
	if decoded.Error != nil {
		return fmt.Errorf("rpcclient: %s: %w", method, decoded.Error)
	}
	if out != nil {
		if err := json.Unmarshal(decoded.Result, out); err != nil {
			return fmt.Errorf("rpcclient: decode %s result: %w", method, err)
		}
	}
	return nil
}

func (c *Client) Ping(ctx context.Context) error {
	var ok bool
	if err := c.Call(ctx, "ping", nil, &ok); err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("rpcclient: ping returned false")
	}
	return nil
}

func (c *Client) ProviderName(ctx context.Context) (string, error) {
	var name string
	err := c.Call(ctx, "get_name", nil, &name)
	return name, err
}

func (c *Client) CreateTask(ctx context.Context, task model.Task) (model.TaskResponse, error) {
	var out model.TaskResponse
	err := c.Call(ctx, "create_task", task, &out)
	return out, err
}

func (c *Client) ReadTask(ctx context.Context, id string) (model.TaskResponse, error) {
	var out model.TaskResponse
	err := c.Call(ctx, "read_task", []string{id}, &out)
	return out, err
}

func (c *Client) UpdateTask(ctx context.Context, task model.Task) (model.TaskResponse, error) {
	var out model.TaskResponse
	err := c.Call(ctx, "update_task", task, &out)
	return out, err
}

func (c *Client) DeleteTask(ctx context.Context, id string) (model.TaskResponse, error) {
	var out model.TaskResponse
	err := c.Call(ctx, "delete_task", []string{id}, &out)
	return out, err
}

func (c *Client) ReadTaskIDsFromList(ctx context.Context, listID string) (model.TaskIDResponse, error) {
	var out model.TaskIDResponse
	err := c.Call(ctx, "read_task_ids_from_list", []string{listID}, &out)
	return out, err
}

func (c *Client) ReadTaskCountFromList(ctx context.Context, listID string) (model.CountResponse, error) {
	var out model.CountResponse
	err := c.Call(ctx, "read_task_count_from_list", []string{listID}, &out)
	return out, err
}

func (c *Client) CreateList(ctx context.Context, list model.List) (model.ListResponse, error) {
	var out model.ListResponse
	err := c.Call(ctx, "create_list", list, &out)
	return out, err
}

func (c *Client) ReadList(ctx context.Context, id string) (model.ListResponse, error) {
	var out model.ListResponse
	err := c.Call(ctx, "read_list", []string{id}, &out)
	return out, err
}

func (c *Client) UpdateList(ctx context.Context, list model.List) (model.ListResponse, error) {
	var out model.ListResponse
	err := c.Call(ctx, "update_list", list, &out)
	return out, err
}

func (c *Client) DeleteList(ctx context.Context, id string) (model.ListResponse, error) {
	var out model.ListResponse
	err := c.Call(ctx, "delete_list", []string{id}, &out)
	return out, err
}

func (c *Client) ReadAllListIDs(ctx context.Context) (model.ListIDResponse, error) {
	var out model.ListIDResponse
	err := c.Call(ctx, "read_all_list_ids", nil, &out)
	return out, err
}

// ReadAllTasks subscribes to the read_all_tasks stream. The channel closes
// when the server finishes the sequence or ctx is canceled.
func (c *Client) ReadAllTasks(ctx context.Context) (<-chan model.TaskResponse, error) {
	return openStream[model.TaskResponse](ctx, c, "read_all_tasks", nil)
}

func (c *Client) ReadTasksFromList(ctx context.Context, listID string) (<-chan model.TaskResponse, error) {
	return openStream[model.TaskResponse](ctx, c, "read_tasks_from_list", url.Values{"list_id": {listID}})
}

func (c *Client) ReadAllLists(ctx context.Context) (<-chan model.ListResponse, error) {
	return openStream[model.ListResponse](ctx, c, "read_all_lists", nil)
}

// WatchReminders subscribes to reminder fire events. Unlike the read
// streams this one stays open until ctx is canceled.
func (c *Client) WatchReminders(ctx context.Context) (<-chan rpc.ReminderEvent, error) {
	return openStream[rpc.ReminderEvent](ctx, c, "watch_reminders", nil)
}

func openStream[T any](ctx context.Context, c *Client, method string, extra url.Values) (<-chan T, error) {
	query := url.Values{"method": {method}}
	for key, vals := range extra {
		query[key] = vals
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/rpc/stream?"+query.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("rpcclient: stream %s: %w", method, err)
	}
	req.Header.Set("Accept", "text/event-stream")

	resp, err := c.stream.Do(req)
	if err != nil {
		return nil, fmt.Errorf("rpcclient: stream %s: %w", method, err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("rpcclient: stream %s: unexpected status %d", method, resp.StatusCode)
	}

	out := make(chan T)
	go func() {
		defer close(out)
		defer resp.Body.Close()

		scanner := bufio.NewScanner(resp.Body)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		for scanner.Scan() {
			line := scanner.Text()
			// Only data lines matter; id lines and keepalive comments
			// carry no payload.
			if !strings.HasPrefix(line, "data: ") {
				continue
			}
			var event T
			if err := json.Unmarshal([]byte(strings.TrimPrefix(line, "data: ")), &event); err != nil {
				continue
			}
			select {
			case out <- event:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}
