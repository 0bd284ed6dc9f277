package rpc

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
)

const reminderKeepaliveInterval = 20 * time.Second

// ReminderEvent is the wire shape of one watch_reminders event.
type ReminderEvent struct {
	TaskID    string    `json:"task_id"`
	ListID    string    `json:"list_id"`
	Title     string    `json:"title"`
	TriggerAt time.Time `json:"trigger_at"`
}

func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if !s.limiter.allow(clientKey(r), time.Now()) {
		http.Error(w, "too many requests", http.StatusTooManyRequests)
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming is not supported", http.StatusInternalServerError)
		return
	}

	method := r.URL.Query().Get("method")
	listID := r.URL.Query().Get("list_id")

	switch method {
	case "read_all_tasks", "read_tasks_from_list", "read_all_lists", "watch_reminders":
	default:
		http.Error(w, "unknown streaming method", http.StatusBadRequest)
		return
	}
	if method == "read_tasks_from_list" && listID == "" {
		http.Error(w, "list_id is required", http.StatusBadRequest)
		return
	}
	if method == "watch_reminders" && s.notifier == nil {
		http.Error(w, "reminders are not enabled", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	started := time.Now()
	s.logger.Info("stream opened", zap.String("method", method))
	defer func() {
		s.logger.Info("stream closed", zap.String("method", method), zap.Duration("duration", time.Since(started)))
	}()

	switch method {
	case "read_all_tasks":
		streamEnvelopes(s, w, r, flusher, method, s.provider.ReadAllTasks(r.Context()))
	case "read_tasks_from_list":
		streamEnvelopes(s, w, r, flusher, method, s.provider.ReadTasksFromList(r.Context(), listID))
	case "read_all_lists":
		streamEnvelopes(s, w, r, flusher, method, s.provider.ReadAllLists(r.Context()))
	case "watch_reminders":
		s.streamReminders(w, r, flusher)
	}
}

// streamEnvelopes writes one SSE event per envelope and returns when the
// producer closes its channel or the client disconnects.
func streamEnvelopes[T any](s *Server, w http.ResponseWriter, r *http.Request, flusher http.Flusher, method string, ch <-chan T) {
	seq := 0
	for {
		select {
		case <-r.Context().Done():
			return
		case resp, ok := <-ch:
			if !ok {
				return
			}
			seq++
			if err := writeSSEEvent(w, seq, resp); err != nil {
				return
			}
			s.metrics.streamEvents.WithLabelValues(method).Inc()
			flusher.Flush()
		}
	}
}

func (s *Server) streamReminders(w http.ResponseWriter, r *http.Request, flusher http.Flusher) {
	events, cancel := s.notifier.Subscribe()
	defer cancel()

	keepalive := time.NewTicker(reminderKeepaliveInterval)
	defer keepalive.Stop()

	seq := 0
	for {
		select {
		case <-r.Context().Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			seq++
			err := writeSSEEvent(w, seq, ReminderEvent{
				TaskID:    ev.TaskID,
				ListID:    ev.ListID,
				Title:     ev.Title,
				TriggerAt: ev.TriggerAt,
			})
			if err != nil {
				return
			}
			s.metrics.streamEvents.WithLabelValues("watch_reminders").Inc()
			flusher.Flush()
		case <-keepalive.C:
			if _, err := fmt.Fprint(w, ": keepalive\n\n"); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}

func writeSSEEvent(w http.ResponseWriter, seq int, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "id: %d\n", seq); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "data: %s\n\n", string(data)); err != nil {
		return err
	}
	return nil
}
