package models

import "time"

type TaskStatus string

const (
	StatusTodo       TaskStatus = "todo"
	StatusInProgress TaskStatus = "in_progress"
	StatusDone       TaskStatus = "done"
)

// Statuses lists every task status in board column order.
var Statuses = [...]TaskStatus{
	StatusTodo,
	StatusInProgress,
	StatusDone,
}

func (s TaskStatus) Valid() bool {
	switch s {
	case StatusTodo, StatusInProgress, StatusDone:
		return true
	default:
		return false
	}
}

func (s TaskStatus) String() string {
	return string(s)
}

type Task struct {
	ID          string
	ProjectID   string
	UserID      string
	Title       string
	Description *string
	Status      TaskStatus
	CreatedAt   time.Time
}
