package cloudsync

import (
	"context"
	"slices"
	"sync"
	"time"

	"kakeibo/internal/core"
	"kakeibo/internal/log"
)

// State of the sync indicator.
type State string

const (
	StateIdle    State = ""
	StateSyncing State = "syncing"
	StateSynced  State = "synced"
	StateFailed  State = "error"
)

// Text returns the indicator label for the state.
func (s State) Text() string {
	switch s {
	case StateSyncing:
		return "同期中..."
	case StateSynced:
		return "同期完了"
	case StateFailed:
		return "同期失敗"
	default:
		return ""
	}
}

// Status is the transient indicator shown next to the ledger.
type Status struct {
	State     State     `json:"state"`
	Text      string    `json:"text"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// StatusEvent reports the outcome of one upload.
type StatusEvent struct {
	State  State
	Count  int
	Silent bool
	Err    error
	At     time.Time
}

const eventBuffer = 16

// Options tunes a Dispatcher.
type Options struct {
	Timeout      time.Duration
	SuccessClear time.Duration
	FailureClear time.Duration
	Logger       *log.Logger
}

func DefaultOptions() Options {
	return Options{
		Timeout:      15 * time.Second,
		SuccessClear: 3 * time.Second,
		FailureClear: 5 * time.Second,
	}
}

// Dispatcher launches uploads and tracks the status indicator. A nil
// publisher disables sync entirely.
type Dispatcher struct {
	publisher Publisher
	opts      Options
	logger    *log.Logger

	mu     sync.Mutex
	status Status
	timer  *time.Timer
	events chan StatusEvent
	wg     sync.WaitGroup
}

func NewDispatcher(publisher Publisher, opts Options) *Dispatcher {
	def := DefaultOptions()
	if opts.Timeout <= 0 {
		opts.Timeout = def.Timeout
	}
	if opts.SuccessClear <= 0 {
		opts.SuccessClear = def.SuccessClear
	}
	if opts.FailureClear <= 0 {
		opts.FailureClear = def.FailureClear
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Discard()
	}
	return &Dispatcher{
		publisher: publisher,
		opts:      opts,
		logger:    logger.WithComponent(log.ComponentSync),
		events:    make(chan StatusEvent, eventBuffer),
	}
}

// Enabled reports whether a publisher is configured.
func (d *Dispatcher) Enabled() bool {
	return d != nil && d.publisher != nil
}

// Sync uploads a copy of expenses in the background and drives the
// indicator. It returns false when sync is disabled.
func (d *Dispatcher) Sync(expenses []core.Expense) bool {
	return d.dispatch(expenses, false)
}

// SyncSilently uploads without touching the indicator. Used at startup.
func (d *Dispatcher) SyncSilently(expenses []core.Expense) bool {
	return d.dispatch(expenses, true)
}

func (d *Dispatcher) dispatch(expenses []core.Expense, silent bool) bool {
	if !d.Enabled() {
		return false
	}
	payload := NewPayload(slices.Clone(expenses))

	d.mu.Lock()
	d.stopTimerLocked()
	if !silent {
		d.setLocked(StateSyncing)
	}
	d.mu.Unlock()

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), d.opts.Timeout)
		defer cancel()

		err := d.publisher.Publish(ctx, payload)
		d.finish(len(payload.Expenses), silent, err)
	}()
	return true
}

func (d *Dispatcher) finish(count int, silent bool, err error) {
	ev := StatusEvent{State: StateSynced, Count: count, Silent: silent, Err: err, At: time.Now()}
	if err != nil {
		ev.State = StateFailed
		d.logger.Error("Failed to sync to cloud", log.FieldError, err, log.FieldCount, count)
	} else {
		d.logger.Debug("Ledger synced", log.FieldCount, count, "silent", silent)
	}

	if !silent {
		clearAfter := d.opts.SuccessClear
		if err != nil {
			clearAfter = d.opts.FailureClear
		}
		d.mu.Lock()
		d.setLocked(ev.State)
		d.stopTimerLocked()
		var t *time.Timer
		t = time.AfterFunc(clearAfter, func() {
			d.mu.Lock()
			defer d.mu.Unlock()
			if d.timer == t {
				d.timer = nil
				d.setLocked(StateIdle)
			}
		})
		d.timer = t
		d.mu.Unlock()
	}

	select {
	case d.events <- ev:
	default:
		d.logger.Warn("Sync event dropped, no listener", log.FieldSyncState, string(ev.State))
	}
}

func (d *Dispatcher) setLocked(s State) {
	d.status = Status{State: s, Text: s.Text(), UpdatedAt: time.Now()}
}

func (d *Dispatcher) stopTimerLocked() {
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}

// Status returns the current indicator.
func (d *Dispatcher) Status() Status {
	if d == nil {
		return Status{}
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.status
}

// Events delivers one event per finished upload. Events are dropped when
// nobody drains the channel.
func (d *Dispatcher) Events() <-chan StatusEvent {
	return d.events
}

// Wait blocks until every in-flight upload has finished.
func (d *Dispatcher) Wait() {
	if d == nil {
		return
	}
	d.wg.Wait()
}

// Close waits for uploads and stops the indicator timer.
func (d *Dispatcher) Close() {
	if d == nil {
		return
	}
	d.wg.Wait()
	d.mu.Lock()
	d.stopTimerLocked()
	d.mu.Unlock()
}
