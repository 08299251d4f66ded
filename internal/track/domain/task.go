package domain

import "time"

type Task struct {
	ID        string
	ProjectID string
	Name      string
	Done      bool
	CreatedBy string
	CreatedAt time.Time
	UpdatedAt time.Time
}
