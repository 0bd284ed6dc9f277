package rpc

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"tasklistd/internal/model"
)

const maxRPCBodyBytes int64 = 1 << 20 // 1 MiB

type rpcRequest struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type rpcResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id,omitempty"`
	Result  any             `json:"result,omitempty"`
	Error   *rpcError       `json:"error,omitempty"`
}

var errInvalidParams = errors.New("rpc: invalid params")

func (s *Server) handleRPC(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if !s.limiter.allow(clientKey(r), time.Now()) {
		http.Error(w, "too many requests", http.StatusTooManyRequests)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxRPCBodyBytes)
	var req rpcRequest
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(&req); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			http.Error(w, "request body too large", http.StatusRequestEntityTooLarge)
			return
		}
		writeRPC(w, rpcResponse{
			JSONRPC: "2.0",
			Error:   &rpcError{Code: -32700, Message: "parse error"},
		})
		return
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		writeRPCInvalidRequest(w, req.ID)
		return
	}
	if req.JSONRPC != "2.0" || req.Method == "" {
		writeRPCInvalidRequest(w, req.ID)
		return
	}

	started := time.Now()
	result, rpcErr := s.dispatch(r, req.Method, req.Params)

	outcome := "ok"
	if rpcErr != nil {
		outcome = "error"
		s.logger.Warn("rpc failed",
			zap.String("method", req.Method),
			zap.Int("rpc_code", rpcErr.Code),
			zap.Duration("latency", time.Since(started)))
	} else {
		s.logger.Info("rpc request",
			zap.String("method", req.Method),
			zap.Duration("latency", time.Since(started)))
	}
	s.metrics.requests.WithLabelValues(req.Method, outcome).Inc()
	s.metrics.duration.WithLabelValues(req.Method).Observe(time.Since(started).Seconds())

	writeRPC(w, rpcResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result:  result,
		Error:   rpcErr,
	})
}

func (s *Server) dispatch(r *http.Request, method string, rawParams json.RawMessage) (any, *rpcError) {
	ctx := r.Context()
	switch method {
	case "ping":
		return s.provider.Ping(ctx) == nil, nil

	case "get_id":
		return s.provider.ID(), nil
	case "get_name":
		return s.provider.Name(), nil
	case "get_description":
		return s.provider.Description(), nil
	case "get_icon_name":
		return s.provider.IconName(), nil

	case "create_task":
		task, err := decodeTaskParam(rawParams)
		if err != nil {
			return nil, rpcInvalidParams()
		}
		return s.provider.CreateTask(ctx, task), nil
	case "read_task":
		id, err := decodeSingleStringParam(rawParams)
		if err != nil {
			return nil, rpcInvalidParams()
		}
		return s.provider.ReadTask(ctx, id), nil
	case "update_task":
		task, err := decodeTaskParam(rawParams)
		if err != nil {
			return nil, rpcInvalidParams()
		}
		return s.provider.UpdateTask(ctx, task), nil
	case "delete_task":
		id, err := decodeSingleStringParam(rawParams)
		if err != nil {
			return nil, rpcInvalidParams()
		}
		return s.provider.DeleteTask(ctx, id), nil
	case "read_task_ids_from_list":
		id, err := decodeSingleStringParam(rawParams)
		if err != nil {
			return nil, rpcInvalidParams()
		}
		return s.provider.ReadTaskIDsFromList(ctx, id), nil
	case "read_task_count_from_list":
		id, err := decodeSingleStringParam(rawParams)
		if err != nil {
			return nil, rpcInvalidParams()
		}
		return s.provider.ReadTaskCountFromList(ctx, id), nil

	case "create_list":
		list, err := decodeListParam(rawParams)
		if err != nil {
			return nil, rpcInvalidParams()
		}
		return s.provider.CreateList(ctx, list), nil
	case "read_list":
		id, err := decodeSingleStringParam(rawParams)
		if err != nil {
			return nil, rpcInvalidParams()
		}
		return s.provider.ReadList(ctx, id), nil
	case "update_list":
		list, err := decodeListParam(rawParams)
		if err != nil {
			return nil, rpcInvalidParams()
		}
		return s.provider.UpdateList(ctx, list), nil
	case "delete_list":
		id, err := decodeSingleStringParam(rawParams)
		if err != nil {
			return nil, rpcInvalidParams()
		}
		return s.provider.DeleteList(ctx, id), nil
	case "read_all_list_ids":
		return s.provider.ReadAllListIDs(ctx), nil

	case "read_all_tasks", "read_tasks_from_list", "read_all_lists", "watch_reminders":
		return nil, &rpcError{Code: -32601, Message: "streaming method; use GET /rpc/stream?method=" + method}

	default:
		return nil, &rpcError{Code: -32601, Message: "method not found"}
	}
}

// decodeSingleStringParam accepts the positional shape ["value"].
func decodeSingleStringParam(raw json.RawMessage) (string, error) {
	var arr []string
	if err := json.Unmarshal(raw, &arr); err == nil && len(arr) == 1 {
		return arr[0], nil
	}
	return "", errInvalidParams
}

// decodeTaskParam accepts a bare task object or the positional shape
// [ { ...task } ].
func decodeTaskParam(raw json.RawMessage) (model.Task, error) {
	var arr []model.Task
	if err := json.Unmarshal(raw, &arr); err == nil && len(arr) == 1 {
		return arr[0], nil
	}
	var task model.Task
	if err := json.Unmarshal(raw, &task); err == nil {
		return task, nil
	}
	return model.Task{}, errInvalidParams
}

func decodeListParam(raw json.RawMessage) (model.List, error) {
	var arr []model.List
	if err := json.Unmarshal(raw, &arr); err == nil && len(arr) == 1 {
		return arr[0], nil
	}
	var list model.List
	if err := json.Unmarshal(raw, &list); err == nil {
		return list, nil
	}
	return model.List{}, errInvalidParams
}

func rpcInvalidParams() *rpcError {
	return &rpcError{Code: -32602, Message: "invalid params"}
}

func writeRPC(w http.ResponseWriter, resp rpcResponse) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

func writeRPCInvalidRequest(w http.ResponseWriter, id json.RawMessage) {
	writeRPC(w, rpcResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error:   &rpcError{Code: -32600, Message: "invalid request"},
	})
}
