package editor

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrWriterClosed is returned by Enqueue after Close.
var ErrWriterClosed = errors.New("persistence writer closed")

// Write operations issued by sessions.
const (
	OpUpdateDate   = "update_item_date"
	OpReorder      = "reorder_items"
	OpRefreshTotal = "refresh_total"
)

// WriteResult is posted back to the session after every write.
type WriteResult struct {
	Op     string
	Target string
	Err    error
	At     time.Time
}

type writeTask struct {
	op      string
	target  string
	run     func(ctx context.Context) error
	barrier chan struct{}
}

// Writer executes store writes one at a time in the order they were
// enqueued. Enqueue never blocks, so a session can keep accepting commands
// while writes are in flight. Each write gets its own timeout.
type Writer struct {
	timeout  time.Duration
	onResult func(WriteResult)

	mu      sync.Mutex
	queue   []writeTask
	running bool
	closed  bool
	wake    chan struct{}
	done    chan struct{}
}

// NewWriter starts a writer. onResult is called from the writer goroutine.
func NewWriter(timeout time.Duration, onResult func(WriteResult)) *Writer {
	w := &Writer{
		timeout:  timeout,
		onResult: onResult,
		wake:     make(chan struct{}, 1),
		done:     make(chan struct{}),
	}
	go w.run()
	return w
}

// Enqueue schedules fn after every previously enqueued write.
func (w *Writer) Enqueue(op, target string, fn func(ctx context.Context) error) error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return ErrWriterClosed
	}
	w.queue = append(w.queue, writeTask{op: op, target: target, run: fn})
	w.mu.Unlock()
	w.signal()
	return nil
}

// Pending returns the number of queued writes not yet started.
func (w *Writer) Pending() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	n := 0
	for _, t := range w.queue {
		if t.barrier == nil {
			n++
		}
	}
	return n
}

// Discard removes queued writes that match and have not started yet, and
// returns how many were removed.
func (w *Writer) Discard(match func(op, target string) bool) int {
	w.mu.Lock()
	defer w.mu.Unlock()
	kept := w.queue[:0]
	dropped := 0
	for _, t := range w.queue {
		if t.barrier == nil && match(t.op, t.target) {
			dropped++
			continue
		}
		kept = append(kept, t)
	}
	for i := len(kept); i < len(w.queue); i++ {
		w.queue[i] = writeTask{}
	}
	w.queue = kept
	return dropped
}

// Idle reports whether no write is queued or running.
func (w *Writer) Idle() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.running {
		return false
	}
	for _, t := range w.queue {
		if t.barrier == nil {
			return false
		}
	}
	return true
}

// Flush waits until every write enqueued before the call has finished.
func (w *Writer) Flush(ctx context.Context) error {
	barrier := make(chan struct{})
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		<-w.done
		return nil
	}
	w.queue = append(w.queue, writeTask{barrier: barrier})
	w.mu.Unlock()
	w.signal()

	select {
	case <-barrier:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops accepting writes and waits for the queue to drain.
func (w *Writer) Close() {
	w.mu.Lock()
	w.closed = true
	w.mu.Unlock()
	w.signal()
	<-w.done
}

func (w *Writer) signal() {
	select {
	case w.wake <- struct{}{}:
	default:
	}
}

func (w *Writer) run() {
	defer close(w.done)
	for {
		w.mu.Lock()
		if len(w.queue) == 0 {
			closed := w.closed
			w.mu.Unlock()
			if closed {
				return
			}
			<-w.wake
			continue
		}
		task := w.queue[0]
		w.queue = w.queue[1:]
		w.running = task.barrier == nil
		w.mu.Unlock()

		w.execute(task)

		w.mu.Lock()
		w.running = false
		w.mu.Unlock()
	}
}

func (w *Writer) execute(task writeTask) {
	if task.barrier != nil {
		close(task.barrier)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), w.timeout)
	err := task.run(ctx)
	cancel()

	if w.onResult != nil {
		w.onResult(WriteResult{Op: task.op, Target: task.target, Err: err, At: time.Now()})
	}
}
