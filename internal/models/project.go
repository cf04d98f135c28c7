package models

import "time"

type Project struct {
	ID          string
	UserID      string
	Name        string
	Description *string
	CreatedAt   time.Time
}
