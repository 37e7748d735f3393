package tasks

import "time"

const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
)

type Task struct {
	ID          int    `json:"id"`
	UserID      int    `json:"-"`
	Title       string `json:"title"`
	Description string `json:"description"`
	// DueDate is a calendar date, formatted as YYYY-MM-DD.
	DueDate     *string    `json:"dueDate"`
	Priority    string     `json:"priority"`
	Completed   bool       `json:"completed"`
	CompletedAt *time.Time `json:"completedAt"`
	CreatedAt   time.Time  `json:"createdAt"`
}
