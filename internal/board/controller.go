// Package board holds the client-side state of a project's kanban board:
// the task list, the card being dragged, the card open in the detail editor
// and the status changes still waiting on the remote store.
//
// Status changes are optimistic: the local copy moves first and is rolled
// back if the store rejects the change. Text edits are applied locally only
// after the store confirms them.
package board

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/adanyl0v/swifttrack/internal/models"
	"github.com/adanyl0v/swifttrack/internal/services"
)

// Store is the remote persistence a board writes through.
// services.TaskService satisfies it.
type Store interface {
	CreateTask(ctx context.Context, params services.CreateTaskParams) (*models.Task, error)
	UpdateTask(ctx context.Context, params services.UpdateTaskParams) (*models.Task, error)
	UpdateTaskStatus(ctx context.Context, params services.UpdateTaskStatusParams) (*models.Task, error)
}

type Options struct {
	// RemoteTimeout bounds each remote status update. Zero means no bound.
	RemoteTimeout time.Duration
}

// ErrClosed is returned for status changes issued after the hub closed the
// session.
var ErrClosed = fmt.Errorf("%w: board session is closed", services.ErrConflict)

// inflight tracks the unresolved status changes of one task. The task stays
// pending until calls drops to zero.
type inflight struct {
	latest uint64
	calls  int
	// failed is set when the change numbered latest was rejected.
	failed bool
}

// stored is the last status the store is known to hold for a task.
type stored struct {
	status models.TaskStatus
	seq    uint64
}

type selection struct {
	taskID string
	draft  Draft
}

// Draft is the in-progress edit of the selected task.
type Draft struct {
	Title       string
	Description string
	Err         error
}

// Controller is safe for concurrent use. All state transitions are
// serialized on one mutex and remote calls never run while it is held.
type Controller struct {
	logger    zerolog.Logger
	store     Store
	userID    string
	projectID string
	opts      Options

	mu        sync.Mutex
	tasks     []models.Task
	activeID  string
	selected  *selection
	pending   map[string]*inflight
	confirmed map[string]stored
	seq       map[string]uint64
	epoch     uint64
	closed    bool
	lastErr   error
	remoteOps sync.WaitGroup
}

func NewController(
	logger zerolog.Logger,
	store Store,
	userID string,
	projectID string,
	opts Options,
) *Controller {
	return &Controller{
		logger: logger.With().
			Str("user_id", userID).
			Str("project_id", projectID).
			Logger(),
		store:     store,
		userID:    userID,
		projectID: projectID,
		opts:      opts,
		pending:   make(map[string]*inflight),
		confirmed: make(map[string]stored),
		seq:       make(map[string]uint64),
	}
}

func (c *Controller) ProjectID() string {
	return c.projectID
}

// LoadInitial replaces the board state with tasks. Responses of status
// changes issued before the reload are discarded.
func (c *Controller) LoadInitial(tasks []*models.Task) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.epoch++
	clear(c.pending)
	clear(c.confirmed)

	c.tasks = make([]models.Task, 0, len(tasks))
	for _, t := range tasks {
		if t != nil {
			c.tasks = append(c.tasks, *t)
			c.confirmed[t.ID] = stored{status: t.Status, seq: c.seq[t.ID]}
		}
	}
	c.activeID = ""
	c.selected = nil
	c.lastErr = nil

	c.logger.Debug().
		Int("count", len(c.tasks)).
		Msg("loaded board")
}

// BeginDrag marks the task as being dragged. Unknown ids are ignored.
func (c *Controller) BeginDrag(taskID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.indexOf(taskID) < 0 {
		c.logger.Debug().
			Str("task_id", taskID).
			Msg("drag of unknown task ignored")
		return
	}
	c.activeID = taskID
}

// CancelDrag ends a drag that was released outside every drop zone.
func (c *Controller) CancelDrag() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.activeID = ""
}

// CompleteDrag moves the task to target. The local copy changes before the
// call returns and the remote update runs in the background. Dropping a
// task on its own column, or dropping an unknown task, does nothing.
// After the hub closed the session it fails with ErrClosed.
func (c *Controller) CompleteDrag(ctx context.Context, taskID string, target models.TaskStatus) error {
	c.mu.Lock()
	c.activeID = ""
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	if !target.Valid() {
		c.mu.Unlock()
		return services.ErrInvalidTaskStatus
	}

	i := c.indexOf(taskID)
	if i < 0 || c.tasks[i].Status == target {
		c.mu.Unlock()
		return nil
	}

	prior := c.tasks[i].Status
	c.tasks[i].Status = target
	c.seq[taskID]++
	seq := c.seq[taskID]
	change, ok := c.pending[taskID]
	if !ok {
		change = &inflight{}
		c.pending[taskID] = change
	}
	change.latest = seq
	change.calls++
	change.failed = false
	epoch := c.epoch
	c.remoteOps.Add(1)
	c.mu.Unlock()

	c.logger.Debug().
		Str("task_id", taskID).
		Str("from", prior.String()).
		Str("to", target.String()).
		Uint64("seq", seq).
		Msg("moved task")

	go c.persistStatus(ctx, epoch, taskID, target, seq)
	return nil
}

func (c *Controller) persistStatus(ctx context.Context, epoch uint64, taskID string, status models.TaskStatus, seq uint64) {
	defer c.remoteOps.Done()

	ctx, cancel := c.remoteContext(ctx)
	defer cancel()

	_, err := c.store.UpdateTaskStatus(ctx, services.UpdateTaskStatusParams{
		ID:     taskID,
		UserID: c.userID,
		Status: status,
	})
	c.resolveStatus(epoch, taskID, status, seq, err)
}

// remoteContext keeps the caller's values but not its cancellation:
// a remote update outlives the request that issued it.
func (c *Controller) remoteContext(ctx context.Context) (context.Context, context.CancelFunc) {
	ctx = context.WithoutCancel(ctx)
	if c.opts.RemoteTimeout > 0 {
		return context.WithTimeout(ctx, c.opts.RemoteTimeout)
	}
	return context.WithCancel(ctx)
}

// resolveStatus records the outcome of one remote status update. A success
// becomes the stored status unless a newer change was already confirmed. A
// failure of the newest change puts the task back to the stored status;
// failures of superseded changes only drop their call.
func (c *Controller) resolveStatus(epoch uint64, taskID string, status models.TaskStatus, seq uint64, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	change, ok := c.pending[taskID]
	if epoch != c.epoch || !ok {
		c.logger.Debug().
			Err(err).
			Str("task_id", taskID).
			Uint64("seq", seq).
			Msg("discarded stale status response")
		return
	}
	change.calls--

	last, known := c.confirmed[taskID]
	switch {
	case err == nil:
		if !known || seq > last.seq {
			c.confirmed[taskID] = stored{status: status, seq: seq}
		}
		c.logger.Debug().
			Str("task_id", taskID).
			Uint64("seq", seq).
			Msg("status change confirmed")
	case seq == change.latest:
		change.failed = true
		c.lastErr = err
		if known {
			c.setStatus(taskID, last.status)
		}
		c.logger.Error().
			Err(err).
			Str("task_id", taskID).
			Str("restored", last.status.String()).
			Msg("status change failed, rolled back")
	default:
		c.logger.Warn().
			Err(err).
			Str("task_id", taskID).
			Uint64("seq", seq).
			Msg("superseded status change failed")
	}

	if change.calls > 0 {
		return
	}
	delete(c.pending, taskID)
	if change.failed {
		c.setStatus(taskID, c.confirmed[taskID].status)
	}
}

func (c *Controller) setStatus(taskID string, status models.TaskStatus) {
	if i := c.indexOf(taskID); i >= 0 {
		c.tasks[i].Status = status
	}
}

// SelectTask opens the task in the detail editor with a fresh draft.
// Unknown ids are ignored.
func (c *Controller) SelectTask(taskID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	i := c.indexOf(taskID)
	if i < 0 {
		return
	}
	t := c.tasks[i]
	c.selected = &selection{
		taskID: taskID,
		draft: Draft{
			Title:       t.Title,
			Description: deref(t.Description),
		},
	}
}

// Deselect closes the detail editor and drops its draft.
func (c *Controller) Deselect() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.selected = nil
}

// UpdateDraft records typing in the detail editor.
func (c *Controller) UpdateDraft(title, description string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.selected == nil {
		return
	}
	c.selected.draft.Title = title
	c.selected.draft.Description = description
}

// ApplyEdit saves a new title and description. Nothing changes locally until
// the store confirms; on success the editor is closed. A blank title fails
// with a validation error before the store is called.
func (c *Controller) ApplyEdit(ctx context.Context, taskID, title, description string) error {
	title = strings.TrimSpace(title)
	description = strings.TrimSpace(description)

	c.mu.Lock()
	if c.indexOf(taskID) < 0 {
		c.mu.Unlock()
		return services.ErrTaskNotFound
	}
	if title == "" {
		c.setDraftError(taskID, services.ErrEmptyTaskTitle)
		c.mu.Unlock()
		return services.ErrEmptyTaskTitle
	}
	c.mu.Unlock()

	_, err := c.store.UpdateTask(ctx, services.UpdateTaskParams{
		ID:          taskID,
		UserID:      c.userID,
		Title:       title,
		Description: description,
	})

	c.mu.Lock()
	defer c.mu.Unlock()

	if err != nil {
		c.setDraftError(taskID, err)
		c.logger.Error().
			Err(err).
			Str("task_id", taskID).
			Msg("failed to save task edit")
		return err
	}

	if i := c.indexOf(taskID); i >= 0 {
		c.tasks[i].Title = title
		c.tasks[i].Description = nil
		if description != "" {
			c.tasks[i].Description = &description
		}
	}
	if c.selected != nil && c.selected.taskID == taskID {
		c.selected = nil
	}
	c.logger.Debug().
		Str("task_id", taskID).
		Msg("saved task edit")
	return nil
}

// AddTask creates a task in the todo column once the store confirms it.
func (c *Controller) AddTask(ctx context.Context, title, description string) (*models.Task, error) {
	if strings.TrimSpace(title) == "" {
		return nil, services.ErrEmptyTaskTitle
	}

	task, err := c.store.CreateTask(ctx, services.CreateTaskParams{
		UserID:      c.userID,
		ProjectID:   c.projectID,
		Title:       title,
		Description: description,
	})
	if err != nil {
		c.mu.Lock()
		c.lastErr = err
		c.mu.Unlock()
		return nil, err
	}

	c.mu.Lock()
	c.tasks = append(c.tasks, *task)
	c.confirmed[task.ID] = stored{status: task.Status, seq: c.seq[task.ID]}
	c.mu.Unlock()
	return task, nil
}

// DismissError clears the transient error indicator.
func (c *Controller) DismissError() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.lastErr = nil
}

// close makes the controller refuse further remote status updates so that
// Wait cannot race a new one.
func (c *Controller) close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.closed = true
}

// Wait blocks until every remote status update issued so far has resolved.
func (c *Controller) Wait() {
	c.remoteOps.Wait()
}

func (c *Controller) setDraftError(taskID string, err error) {
	if c.selected != nil && c.selected.taskID == taskID {
		c.selected.draft.Err = err
	}
}

func (c *Controller) indexOf(taskID string) int {
	return slices.IndexFunc(c.tasks, func(t models.Task) bool {
		return t.ID == taskID
	})
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
