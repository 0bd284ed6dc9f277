package rpc

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"tasklistd/internal/config"
	"tasklistd/internal/model"
	"tasklistd/internal/provider"
	"tasklistd/internal/reminder"
	"tasklistd/internal/storage"
)

func setupServer(t *testing.T, rateLimit config.RateLimitConfig) (*httptest.Server, *provider.Service, *reminder.Notifier) {
	t.Helper()
	db, err := sqlx.Connect("sqlite3", filepath.Join(t.TempDir(), "rpc-test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, storage.MigrateUp(db))

	store, err := storage.NewStore(storage.NewPoolGatewayFromDB(db))
	require.NoError(t, err)

	engine := reminder.NewEngine(64)
	engine.Start()
	notifier := reminder.NewNotifier(engine, store)
	notifier.Start()
	t.Cleanup(notifier.Stop)

	svc, err := provider.NewService(store, provider.Metadata{
		ID:          "tasklistd",
		Name:        "Task Lists",
		Description: "Local task provider",
		IconName:    "checklist",
	}, provider.Options{Observer: notifier})
	require.NoError(t, err)

	server := NewServer("", svc, Options{
		RateLimit: rateLimit,
		Notifier:  notifier,
		Logger:    zap.NewNop(),
	})
	ts := httptest.NewServer(server.Handler())
	t.Cleanup(ts.Close)
	return ts, svc, notifier
}

func callRPC(t *testing.T, ts *httptest.Server, method string, params any) rpcResponse {
	t.Helper()
	body := map[string]any{"jsonrpc": "2.0", "id": 1, "method": method}
	if params != nil {
		body["params"] = params
	}
	payload, err := json.Marshal(body)
	require.NoError(t, err)

	resp, err := http.Post(ts.URL+"/rpc", "application/json", bytes.NewReader(payload))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out rpcResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func resultInto(t *testing.T, resp rpcResponse, target any) {
	t.Helper()
	require.Nil(t, resp.Error, "unexpected rpc error: %+v", resp.Error)
	raw, err := json.Marshal(resp.Result)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, target))
}

func wireTask(id, listID, title string) map[string]any {
	stamp := time.Date(2026, 2, 9, 12, 0, 0, 0, time.UTC).Format(time.RFC3339)
	return map[string]any{
		"id":                      id,
		"parent_list":             listID,
		"title":                   title,
		"importance":              "Normal",
		"status":                  "NotStarted",
		"created_date_time":       stamp,
		"last_modified_date_time": stamp,
	}
}

func TestMetadataGettersOverRPC(t *testing.T) {
	ts, _, _ := setupServer(t, config.RateLimitConfig{})

	for method, want := range map[string]string{
		"get_id":          "tasklistd",
		"get_name":        "Task Lists",
		"get_description": "Local task provider",
		"get_icon_name":   "checklist",
	} {
		resp := callRPC(t, ts, method, nil)
		var got string
		resultInto(t, resp, &got)
		require.Equal(t, want, got, "method %s", method)
	}
}

func TestTaskLifecycleOverRPC(t *testing.T) {
	ts, _, _ := setupServer(t, config.RateLimitConfig{})

	create := callRPC(t, ts, "create_task", wireTask("T1", "L1", "Buy milk"))
	var taskResp model.TaskResponse
	resultInto(t, create, &taskResp)
	require.True(t, taskResp.Successful)
	require.NotNil(t, taskResp.Task)
	require.Equal(t, "T1", taskResp.Task.ID)

	read := callRPC(t, ts, "read_task", []string{"T1"})
	resultInto(t, read, &taskResp)
	require.True(t, taskResp.Successful)
	require.Equal(t, "Buy milk", taskResp.Task.Title)

	del := callRPC(t, ts, "delete_task", []string{"T1"})
	var delResp model.TaskResponse
	resultInto(t, del, &delResp)
	require.True(t, delResp.Successful)
	require.Nil(t, delResp.Task, "delete_task must not echo the task")

	// Business failure still travels as a JSON-RPC success.
	missing := callRPC(t, ts, "read_task", []string{"T1"})
	var missingResp model.TaskResponse
	resultInto(t, missing, &missingResp)
	require.False(t, missingResp.Successful)
	require.Equal(t, model.FailureNotFound, missingResp.Kind)
	require.NotEmpty(t, missingResp.Message)
}

func TestListLifecycleOverRPC(t *testing.T) {
	ts, _, _ := setupServer(t, config.RateLimitConfig{})

	create := callRPC(t, ts, "create_list", map[string]any{"id": "L1", "name": "Home", "provider": "local"})
	var listResp model.ListResponse
	resultInto(t, create, &listResp)
	require.True(t, listResp.Successful)
	require.Nil(t, listResp.List, "create_list must not echo the list")

	read := callRPC(t, ts, "read_list", []string{"L1"})
	resultInto(t, read, &listResp)
	require.True(t, listResp.Successful)
	require.Equal(t, "Home", listResp.List.Name)

	ids := callRPC(t, ts, "read_all_list_ids", nil)
	var idResp model.ListIDResponse
	resultInto(t, ids, &idResp)
	require.True(t, idResp.Successful)
	require.Equal(t, []string{"L1"}, idResp.ListIDs)
}

func TestCountOverRPC(t *testing.T) {
	ts, _, _ := setupServer(t, config.RateLimitConfig{})
	callRPC(t, ts, "create_task", wireTask("T1", "L1", "One"))

	resp := callRPC(t, ts, "read_task_count_from_list", []string{"T1"})
	var countResp model.CountResponse
	resultInto(t, resp, &countResp)
	require.True(t, countResp.Successful)
	require.Equal(t, int64(1), countResp.Count)
}

func TestTransportErrors(t *testing.T) {
	ts, _, _ := setupServer(t, config.RateLimitConfig{})

	resp := callRPC(t, ts, "no_such_method", nil)
	require.NotNil(t, resp.Error)
	require.Equal(t, -32601, resp.Error.Code)

	resp = callRPC(t, ts, "read_task", []string{})
	require.NotNil(t, resp.Error)
	require.Equal(t, -32602, resp.Error.Code)

	resp = callRPC(t, ts, "read_all_tasks", nil)
	require.NotNil(t, resp.Error)
	require.Equal(t, -32601, resp.Error.Code)
	require.Contains(t, resp.Error.Message, "/rpc/stream")

	// Malformed JSON bodies yield a parse error, not a transport fault.
	raw, err := http.Post(ts.URL+"/rpc", "application/json", strings.NewReader("{not json"))
	require.NoError(t, err)
	defer raw.Body.Close()
	var parsed rpcResponse
	require.NoError(t, json.NewDecoder(raw.Body).Decode(&parsed))
	require.NotNil(t, parsed.Error)
	require.Equal(t, -32700, parsed.Error.Code)
}

func TestEmptyIdentifierReachesLookup(t *testing.T) {
	ts, _, _ := setupServer(t, config.RateLimitConfig{})

	// An empty identifier is not a params error; the lookup decides.
	resp := callRPC(t, ts, "read_task", []string{""})
	var taskResp model.TaskResponse
	resultInto(t, resp, &taskResp)
	require.False(t, taskResp.Successful)
	require.Equal(t, model.FailureNotFound, taskResp.Kind)

	resp = callRPC(t, ts, "read_list", []string{""})
	var listResp model.ListResponse
	resultInto(t, resp, &listResp)
	require.False(t, listResp.Successful)
	require.Equal(t, model.FailureNotFound, listResp.Kind)

	// Mutations match zero rows and report success; affected rows are
	// deliberately not checked.
	resp = callRPC(t, ts, "delete_task", []string{""})
	var delResp model.TaskResponse
	resultInto(t, resp, &delResp)
	require.True(t, delResp.Successful)
}

func readSSEData(t *testing.T, ts *httptest.Server, path string) []string {
	t.Helper()
	resp, err := http.Get(ts.URL + path)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	events := make([]string, 0)
	scanner := bufio.NewScanner(resp.Body)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(line, "data: ") {
			events = append(events, strings.TrimPrefix(line, "data: "))
		}
	}
	return events
}

func TestStreamReadAllTasks(t *testing.T) {
	ts, _, _ := setupServer(t, config.RateLimitConfig{})
	for i := 1; i <= 3; i++ {
		callRPC(t, ts, "create_task", wireTask(fmt.Sprintf("T%d", i), "L1", "Task"))
	}

	events := readSSEData(t, ts, "/rpc/stream?method=read_all_tasks")
	require.Len(t, events, 3)
	for _, raw := range events {
		var envelope model.TaskResponse
		require.NoError(t, json.Unmarshal([]byte(raw), &envelope))
		require.True(t, envelope.Successful)
		require.NotNil(t, envelope.Task)
	}
}

func TestStreamFiltersByList(t *testing.T) {
	ts, _, _ := setupServer(t, config.RateLimitConfig{})
	callRPC(t, ts, "create_task", wireTask("T1", "L1", "Mine"))
	callRPC(t, ts, "create_task", wireTask("T2", "L2", "Other"))

	events := readSSEData(t, ts, "/rpc/stream?method=read_tasks_from_list&list_id=L1")
	require.Len(t, events, 1)
	var envelope model.TaskResponse
	require.NoError(t, json.Unmarshal([]byte(events[0]), &envelope))
	require.Equal(t, "T1", envelope.Task.ID)
}

func TestStreamEmptyResultClosesWithZeroEvents(t *testing.T) {
	ts, _, _ := setupServer(t, config.RateLimitConfig{})
	events := readSSEData(t, ts, "/rpc/stream?method=read_all_lists")
	require.Empty(t, events)
}

func TestStreamRequiresListID(t *testing.T) {
	ts, _, _ := setupServer(t, config.RateLimitConfig{})
	resp, err := http.Get(ts.URL + "/rpc/stream?method=read_tasks_from_list")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, err = http.Get(ts.URL + "/rpc/stream?method=bogus")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHealthz(t *testing.T) {
	ts, _, _ := setupServer(t, config.RateLimitConfig{})
	resp, err := http.Get(ts.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var status map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&status))
	require.Equal(t, "ok", status["status"])
	require.Equal(t, "ok", status["store"])
}

func TestMetricsEndpoint(t *testing.T) {
	ts, _, _ := setupServer(t, config.RateLimitConfig{})
	callRPC(t, ts, "get_name", nil)

	resp, err := http.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body bytes.Buffer
	_, err = body.ReadFrom(resp.Body)
	require.NoError(t, err)
	require.Contains(t, body.String(), "tasklistd_rpc_requests_total")
}

func TestRateLimitRejectsBursts(t *testing.T) {
	ts, _, _ := setupServer(t, config.RateLimitConfig{Enabled: true, RPS: 1, Burst: 2})

	seenTooMany := false
	for i := 0; i < 10; i++ {
		payload := []byte(`{"jsonrpc":"2.0","id":1,"method":"get_name"}`)
		resp, err := http.Post(ts.URL+"/rpc", "application/json", bytes.NewReader(payload))
		require.NoError(t, err)
		resp.Body.Close()
		if resp.StatusCode == http.StatusTooManyRequests {
			seenTooMany = true
			break
		}
	}
	require.True(t, seenTooMany, "expected a 429 once the burst was spent")
}

func TestWatchRemindersStreamsEvent(t *testing.T) {
	ts, svc, _ := setupServer(t, config.RateLimitConfig{})

	req, err := http.NewRequest(http.MethodGet, ts.URL+"/rpc/stream?method=watch_reminders", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	reminderAt := time.Now().UTC().Add(150 * time.Millisecond)
	task := model.Task{
		ID:                   "T1",
		ParentList:           "L1",
		Title:                "Armed",
		Importance:           model.ImportanceNormal,
		IsReminderOn:         true,
		ReminderDate:         &reminderAt,
		Status:               model.StatusNotStarted,
		CreatedDateTime:      time.Now().UTC(),
		LastModifiedDateTime: time.Now().UTC(),
	}
	require.True(t, svc.CreateTask(t.Context(), task).Successful)

	type scanResult struct {
		data string
		err  error
	}
	results := make(chan scanResult, 1)
	go func() {
		scanner := bufio.NewScanner(resp.Body)
		for scanner.Scan() {
			line := scanner.Text()
			if strings.HasPrefix(line, "data: ") {
				results <- scanResult{data: strings.TrimPrefix(line, "data: ")}
				return
			}
		}
		results <- scanResult{err: scanner.Err()}
	}()

	select {
	case got := <-results:
		require.NoError(t, got.err)
		var ev ReminderEvent
		require.NoError(t, json.Unmarshal([]byte(got.data), &ev))
		require.Equal(t, "T1", ev.TaskID)
		require.Equal(t, "L1", ev.ListID)
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for reminder event")
	}
}
