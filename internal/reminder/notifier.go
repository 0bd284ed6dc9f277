package reminder

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"tasklistd/internal/model"
	"tasklistd/internal/storage"
)

const defaultSubscriberBuffer = 8

// Notifier keeps the engine in sync with task mutations and fans fired
// events out to watch_reminders subscribers. It implements the provider's
// TaskObserver contract: every upsert or delete bumps the task's generation,
// so events queued before the mutation are dropped at fire time.
type Notifier struct {
	engine *Engine
	store  *storage.Store

	mu          sync.Mutex
	generations map[string]uint64
	subscribers map[int]chan Event
	nextSubID   int
	closed      bool

	dropped uint64
	doneCh  chan struct{}
}

func NewNotifier(engine *Engine, store *storage.Store) *Notifier {
	return &Notifier{
		engine:      engine,
		store:       store,
		generations: make(map[string]uint64),
		subscribers: make(map[int]chan Event),
		doneCh:      make(chan struct{}),
	}
}

// Start begins the fan-out loop. The engine must be started separately.
func (n *Notifier) Start() {
	go n.run()
}

// Stop shuts the engine down and closes every subscriber channel.
func (n *Notifier) Stop() {
	n.engine.Stop()
	<-n.doneCh

	n.mu.Lock()
	defer n.mu.Unlock()
	n.closed = true
	for id, ch := range n.subscribers {
		close(ch)
		delete(n.subscribers, id)
	}
}

// Load schedules every reminder-armed task already in the store. Tasks whose
// reminder time has passed are skipped rather than fired in a burst.
func (n *Notifier) Load(ctx context.Context) error {
	rows, err := n.store.ReminderArmedTasks(ctx)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	for _, row := range rows {
		task, err := row.ToModel()
		if err != nil {
			zap.L().Warn("skipping malformed reminder row", zap.String("task_id", row.IDTask), zap.Error(err))
			continue
		}
		if task.ReminderDate == nil || !task.ReminderDate.After(now) {
			continue
		}
		n.TaskUpserted(task)
	}
	return nil
}

func (n *Notifier) TaskUpserted(task model.Task) {
	gen := n.bumpGeneration(task.ID)
	if !task.IsReminderOn || task.ReminderDate == nil {
		return
	}
	err := n.engine.Schedule(Event{
		TaskID:     task.ID,
		ListID:     task.ParentList,
		Title:      task.Title,
		Generation: gen,
		TriggerAt:  task.ReminderDate.UTC(),
	})
	if err != nil {
		zap.L().Warn("reminder schedule failed", zap.String("task_id", task.ID), zap.Error(err))
	}
}

func (n *Notifier) TaskDeleted(taskID string) {
	n.bumpGeneration(taskID)
}

// Subscribe returns a buffered event channel and a cancel function. The
// channel closes on cancel or when the notifier stops.
func (n *Notifier) Subscribe() (<-chan Event, func()) {
	n.mu.Lock()
	defer n.mu.Unlock()

	ch := make(chan Event, defaultSubscriberBuffer)
	if n.closed {
		close(ch)
		return ch, func() {}
	}

	id := n.nextSubID
	n.nextSubID++
	n.subscribers[id] = ch

	cancel := func() {
		n.mu.Lock()
		defer n.mu.Unlock()
		if sub, ok := n.subscribers[id]; ok {
			close(sub)
			delete(n.subscribers, id)
		}
	}
	return ch, cancel
}

// Dropped counts events lost to slow consumers, on both the engine side and
// the per-subscriber side.
func (n *Notifier) Dropped() uint64 {
	return n.engine.Dropped() + atomic.LoadUint64(&n.dropped)
}

func (n *Notifier) run() {
	defer close(n.doneCh)
	for ev := range n.engine.C() {
		if n.isStale(ev) {
			continue
		}
		n.fanOut(ev)
	}
}

func (n *Notifier) isStale(ev Event) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.generations[ev.TaskID] != ev.Generation
}

func (n *Notifier) fanOut(ev Event) {
	n.mu.Lock()
	defer n.mu.Unlock()
	for _, ch := range n.subscribers {
		select {
		case ch <- ev:
		default:
			atomic.AddUint64(&n.dropped, 1)
		}
	}
}

func (n *Notifier) bumpGeneration(taskID string) uint64 {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.generations[taskID]++
	return n.generations[taskID]
}
