package domain

import (
	"context"
	"time"

	"github.com/tair/shop-inventory/internal/apperr"
)

// Task types
const (
	TypeRestock  = "restock"
	TypeAssembly = "assembly"
	TypeOther    = "other"
)

// Task priorities
const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
)

// Task statuses
const (
	StatusPending    = "pending"
	StatusInProgress = "in_progress"
	StatusCompleted  = "completed"
)

// OpenStatuses block creation of another task of the same kind.
var OpenStatuses = []string{StatusPending, StatusInProgress}

// Task represents a to-do work order
type Task struct {
	ID             uint       `json:"id" gorm:"primaryKey"`
	TaskType       string     `json:"task_type" gorm:"size:20;not null;index:idx_task_product_type"`
	Description    string     `json:"description" gorm:"not null"`
	ProductID      *uint      `json:"product_id,omitempty" gorm:"index:idx_task_product_type"`
	QuantityNeeded int        `json:"quantity_needed" gorm:"not null"`
	Priority       string     `json:"priority" gorm:"size:10;not null;index"`
	Status         string     `json:"status" gorm:"size:20;not null;index"`
	AssignedTo     string     `json:"assigned_to" gorm:"size:100"`
	Notes          string     `json:"notes"`
	CreatedAt      time.Time  `json:"created_at" gorm:"index"`
	StartedAt      *time.Time `json:"started_at,omitempty"`
	CompletedAt    *time.Time `json:"completed_at,omitempty"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// TableName specifies the table name
func (Task) TableName() string {
	return "todo_tasks"
}

// IsOpen reports whether the task still blocks duplicates.
func (t *Task) IsOpen() bool {
	return t.Status == StatusPending || t.Status == StatusInProgress
}

// CanTransitionTo checks whether a status transition is valid
func (t *Task) CanTransitionTo(next string) bool {
	switch t.Status {
	case StatusPending:
		return next == StatusInProgress
	case StatusInProgress:
		return next == StatusCompleted
	default:
		return false
	}
}

func (t *Task) transition(next string) error {
	if !t.CanTransitionTo(next) {
		return apperr.Validation("invalid status transition from %s to %s for task %d", t.Status, next, t.ID)
	}
	t.Status = next
	return nil
}

// Start moves a pending task to in_progress.
func (t *Task) Start(now time.Time) error {
	if err := t.transition(StatusInProgress); err != nil {
		return err
	}
	t.StartedAt = &now
	return nil
}

// Complete moves an in_progress task to completed.
func (t *Task) Complete(now time.Time, notes string) error {
	if err := t.transition(StatusCompleted); err != nil {
		return err
	}
	t.CompletedAt = &now
	if notes != "" {
		t.Notes = notes
	}
	return nil
}

// Validate checks a new task before it is stored.
func (t *Task) Validate() error {
	switch t.TaskType {
	case TypeRestock, TypeAssembly:
		if t.ProductID == nil {
			return apperr.Validation("%s task requires a product", t.TaskType)
		}
	case TypeOther:
	default:
		return apperr.Validation("unknown task type %q", t.TaskType)
	}
	switch t.Priority {
	case PriorityLow, PriorityMedium, PriorityHigh:
	default:
		return apperr.Validation("unknown priority %q", t.Priority)
	}
	if t.QuantityNeeded <= 0 {
		return apperr.Validation("quantity needed must be positive")
	}
	if t.Description == "" {
		return apperr.Validation("description is required")
	}
	if t.Status != StatusPending {
		return apperr.Validation("tasks are created pending, not %s", t.Status)
	}
	return nil
}

// TaskFilter narrows task listings. Empty fields match everything.
type TaskFilter struct {
	Status     string
	TaskType   string
	Priority   string
	AssignedTo string
	ProductID  *uint
	OpenOnly   bool
}

// TaskRepository defines the contract for task data access
type TaskRepository interface {
	Create(ctx context.Context, task *Task) error
	FindByID(ctx context.Context, id uint) (*Task, error)
	FindAll(ctx context.Context, filter TaskFilter) ([]Task, error)
	Update(ctx context.Context, task *Task) error
	HasOpen(ctx context.Context, productID uint, taskType string) (bool, error)
}
