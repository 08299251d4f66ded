package domain

import "time"

type Project struct {
	ID          string
	TeamID      string
	Name        string
	Description string
	Archived    bool
	CreatedBy   string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
