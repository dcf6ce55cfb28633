package query

import (
	"context"
	"fmt"

	"github.com/tair/shop-inventory/internal/todo/domain"
)

// GetTaskHandler handles get task query
type GetTaskHandler struct {
	tasks domain.TaskRepository
}

// NewGetTaskHandler creates a new get task handler
func NewGetTaskHandler(tasks domain.TaskRepository) *GetTaskHandler {
	return &GetTaskHandler{tasks: tasks}
}

// Handle executes the get task query
func (h *GetTaskHandler) Handle(ctx context.Context, id uint) (*domain.Task, error) {
	task, err := h.tasks.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get task: %w", err)
	}
	return task, nil
}

// ListTasksQuery represents the query to list tasks
type ListTasksQuery struct {
	Status     string
	TaskType   string
	AssignedTo string
	ProductID  *uint
}

// ListTasksHandler handles list tasks query
type ListTasksHandler struct {
	tasks domain.TaskRepository
}

// NewListTasksHandler creates a new list tasks handler
func NewListTasksHandler(tasks domain.TaskRepository) *ListTasksHandler {
	return &ListTasksHandler{tasks: tasks}
}

// Handle executes the list tasks query, newest first
func (h *ListTasksHandler) Handle(ctx context.Context, query ListTasksQuery) ([]domain.Task, error) {
	tasks, err := h.tasks.FindAll(ctx, domain.TaskFilter{
		Status:     query.Status,
		TaskType:   query.TaskType,
		AssignedTo: query.AssignedTo,
		ProductID:  query.ProductID,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	return tasks, nil
}

// ListHighPriorityHandler lists open high priority tasks
type ListHighPriorityHandler struct {
	tasks domain.TaskRepository
}

// NewListHighPriorityHandler creates a new list high priority handler
func NewListHighPriorityHandler(tasks domain.TaskRepository) *ListHighPriorityHandler {
	return &ListHighPriorityHandler{tasks: tasks}
}

// Handle executes the high priority query
func (h *ListHighPriorityHandler) Handle(ctx context.Context) ([]domain.Task, error) {
	tasks, err := h.tasks.FindAll(ctx, domain.TaskFilter{
		Priority: domain.PriorityHigh,
		OpenOnly: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list high priority tasks: %w", err)
	}
	return tasks, nil
}
