package lending

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Emin3mUI/library-management-task/core"
)

const (
	defaultMirrorQueueSize   = 256
	defaultMirrorTaskTimeout = 5 * time.Second

	logMsgMirrorTaskDropped  = "mirror task dropped after exhausting retries"
	logMsgMirrorQueueFull    = "mirror queue full, task dropped"
	logMsgMirrorAfterClose   = "mirror task enqueued after close, dropped"
	logAttrTaskKind          = "task_kind"
	logAttrBookID            = "book_id"
	logAttrBorrowerEmail     = "borrower_email"
	logAttrMirrorError       = "error"
	logAttrDroppedTotalCount = "dropped_total"
)

type mirrorTaskKind string

const (
	mirrorTaskBorrowed mirrorTaskKind = "borrowed"
	mirrorTaskReturned mirrorTaskKind = "returned"
	mirrorTaskWipe     mirrorTaskKind = "wipe"
)

type mirrorTask struct {
	kind       mirrorTaskKind
	edge       core.BorrowedEdge
	returnDate core.Date
}

// RelationshipStore defines the interface the mirror worker needs from
// the graph store.
type RelationshipStore interface {
	CreateBorrowedEdge(ctx context.Context, edge core.BorrowedEdge) error
	MarkEdgeReturned(ctx context.Context, borrowerEmail string, bookID string, returnDate core.Date) error
	DeleteAllBorrowedEdges(ctx context.Context) error
}

// Mirrorer applies ledger changes to the relationship store as an
// asynchronous, at-least-once task queue. Each task is retried with
// exponential backoff; a task that exhausts its retry budget is dropped
// with an error log and counted, which bounds the staleness window
// between the ledger and the graph and keeps it observable.
//
// Mirror writes happen strictly after the primary transaction has
// committed and hold no lock shared with it.
type Mirrorer struct {
	graph        RelationshipStore
	tasks        chan mirrorTask
	queueSize    int
	taskTimeout  time.Duration
	retryOptions []RetryOption
	logger       Logger

	startOnce sync.Once
	closeOnce sync.Once
	mu        sync.RWMutex
	closed    bool
	done      chan struct{}
	dropped   atomic.Uint64
}

// MirrorOption defines a functional option for configuring a Mirrorer.
type MirrorOption func(*Mirrorer) error

// WithMirrorQueueSize sets the capacity of the task queue. A full queue
// drops new tasks rather than blocking the request path.
func WithMirrorQueueSize(size int) MirrorOption {
	return func(m *Mirrorer) error {
		if size <= 0 {
			return ErrInvalidQueueSize
		}

		m.queueSize = size

		return nil
	}
}

// WithMirrorTaskTimeout bounds the duration of a single mirror write attempt.
func WithMirrorTaskTimeout(timeout time.Duration) MirrorOption {
	return func(m *Mirrorer) error {
		if timeout <= 0 {
			return ErrInvalidTaskTimeout
		}

		m.taskTimeout = timeout

		return nil
	}
}

// WithMirrorRetryOptions sets a custom retry configuration for mirror writes.
func WithMirrorRetryOptions(options ...RetryOption) MirrorOption {
	return func(m *Mirrorer) error {
		m.retryOptions = options
		return nil
	}
}

// WithMirrorLogger sets the logger for the Mirrorer.
func WithMirrorLogger(logger Logger) MirrorOption {
	return func(m *Mirrorer) error {
		m.logger = logger
		return nil
	}
}

// NewMirrorer creates a mirror worker over the given relationship store
// with optional configuration. Call Start before enqueueing and Close on
// shutdown to drain the queue.
func NewMirrorer(graph RelationshipStore, options ...MirrorOption) (*Mirrorer, error) {
	if graph == nil {
		return nil, ErrNilRelationshipStore
	}

	mirrorer := &Mirrorer{
		graph:       graph,
		queueSize:   defaultMirrorQueueSize,
		taskTimeout: defaultMirrorTaskTimeout,
		done:        make(chan struct{}),
	}

	for _, option := range options {
		if err := option(mirrorer); err != nil {
			return nil, err
		}
	}

	mirrorer.tasks = make(chan mirrorTask, mirrorer.queueSize)

	return mirrorer, nil
}

// Start launches the worker goroutine. Safe to call once; subsequent
// calls are no-ops.
func (m *Mirrorer) Start() {
	m.startOnce.Do(func() {
		go m.work()
	})
}

// Close stops accepting tasks, drains the queue and waits for the worker
// to finish its last task. The write lock waits out in-flight enqueues,
// so no send can hit the closed channel.
func (m *Mirrorer) Close() {
	m.closeOnce.Do(func() {
		m.mu.Lock()
		m.closed = true
		close(m.tasks)
		m.mu.Unlock()

		<-m.done
	})
}

// DroppedTasks returns how many mirror tasks were dropped, either because
// the queue was full or because retries were exhausted.
func (m *Mirrorer) DroppedTasks() uint64 {
	return m.dropped.Load()
}

// EnqueueBorrowed schedules the mirror write for a fresh borrowing.
func (m *Mirrorer) EnqueueBorrowed(record core.BorrowingRecord) {
	m.enqueue(mirrorTask{kind: mirrorTaskBorrowed, edge: core.EdgeFromRecord(record)})
}

// EnqueueReturned schedules the mirror write for a completed return.
func (m *Mirrorer) EnqueueReturned(borrowerEmail string, bookID string, returnDate core.Date) {
	m.enqueue(mirrorTask{
		kind:       mirrorTaskReturned,
		edge:       core.BorrowedEdge{BorrowerEmail: borrowerEmail, BookID: bookID},
		returnDate: returnDate,
	})
}

// EnqueueWipe schedules deletion of all BORROWED edges after a bulk reset.
func (m *Mirrorer) EnqueueWipe() {
	m.enqueue(mirrorTask{kind: mirrorTaskWipe})
}

func (m *Mirrorer) enqueue(task mirrorTask) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		m.dropTask(task, logMsgMirrorAfterClose, nil)
		return
	}

	// The send never blocks, so the read lock is held only briefly.
	select {
	case m.tasks <- task:
	default:
		m.dropTask(task, logMsgMirrorQueueFull, nil)
	}
}

func (m *Mirrorer) work() {
	defer close(m.done)

	for task := range m.tasks {
		m.applyWithRetry(task)
	}
}

func (m *Mirrorer) applyWithRetry(task mirrorTask) {
	err := RetryWithExponentialBackoff(context.Background(), func(ctx context.Context) error {
		attemptCtx, cancel := context.WithTimeout(ctx, m.taskTimeout)
		defer cancel()

		return m.apply(attemptCtx, task)
	}, m.retryOptions...)

	if err != nil {
		m.dropTask(task, logMsgMirrorTaskDropped, err)
	}
}

func (m *Mirrorer) apply(ctx context.Context, task mirrorTask) error {
	switch task.kind {
	case mirrorTaskBorrowed:
		return m.graph.CreateBorrowedEdge(ctx, task.edge)

	case mirrorTaskReturned:
		return m.graph.MarkEdgeReturned(ctx, task.edge.BorrowerEmail, task.edge.BookID, task.returnDate)

	case mirrorTaskWipe:
		return m.graph.DeleteAllBorrowedEdges(ctx)
	}

	return nil
}

func (m *Mirrorer) dropTask(task mirrorTask, msg string, err error) {
	total := m.dropped.Add(1)

	if m.logger == nil {
		return
	}

	args := []any{
		logAttrTaskKind, string(task.kind),
		logAttrBookID, task.edge.BookID,
		logAttrBorrowerEmail, task.edge.BorrowerEmail,
		logAttrDroppedTotalCount, total,
	}
	if err != nil {
		args = append(args, logAttrMirrorError, err.Error())
	}

	m.logger.Error(msg, args...)
}
