package board

import (
	"slices"

	"github.com/adanyl0v/swifttrack/internal/models"
)

type Column struct {
	Status models.TaskStatus
	Tasks  []models.Task
}

// Snapshot is a read-only copy of the board for rendering.
type Snapshot struct {
	ProjectID string
	// Columns always holds one entry per status, in board order.
	Columns  []Column
	Active   *models.Task
	Selected *models.Task
	Draft    *Draft
	// Pending lists the tasks whose status change awaits the store.
	Pending []string
	Err     error
}

func (s Snapshot) Column(status models.TaskStatus) []models.Task {
	for _, col := range s.Columns {
		if col.Status == status {
			return col.Tasks
		}
	}
	return nil
}

func (s Snapshot) IsPending(taskID string) bool {
	return slices.Contains(s.Pending, taskID)
}

// Task returns the task with the given id from any column.
func (s Snapshot) Task(taskID string) (models.Task, bool) {
	for _, col := range s.Columns {
		for _, t := range col.Tasks {
			if t.ID == taskID {
				return t, true
			}
		}
	}
	return models.Task{}, false
}

// Snapshot partitions the flat task list by status. The grouping is rebuilt
// on every call.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	snap := Snapshot{
		ProjectID: c.projectID,
		Columns:   groupByStatus(c.tasks),
		Err:       c.lastErr,
	}
	if i := c.indexOf(c.activeID); i >= 0 {
		t := c.tasks[i]
		snap.Active = &t
	}
	if c.selected != nil {
		if i := c.indexOf(c.selected.taskID); i >= 0 {
			t := c.tasks[i]
			d := c.selected.draft
			snap.Selected = &t
			snap.Draft = &d
		}
	}
	for id := range c.pending {
		snap.Pending = append(snap.Pending, id)
	}
	slices.Sort(snap.Pending)
	return snap
}

func groupByStatus(tasks []models.Task) []Column {
	columns := make([]Column, len(models.Statuses))
	for i, status := range models.Statuses {
		columns[i] = Column{Status: status, Tasks: []models.Task{}}
	}
	for _, t := range tasks {
		i := slices.Index(models.Statuses[:], t.Status)
		if i < 0 {
			continue
		}
		columns[i].Tasks = append(columns[i].Tasks, t)
	}
	return columns
}
