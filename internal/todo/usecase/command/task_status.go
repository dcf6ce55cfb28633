package command

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/tair/shop-inventory/internal/apperr"
	invdomain "github.com/tair/shop-inventory/internal/inventory/domain"
	invcommand "github.com/tair/shop-inventory/internal/inventory/usecase/command"
	invquery "github.com/tair/shop-inventory/internal/inventory/usecase/query"
	"github.com/tair/shop-inventory/internal/todo/domain"
	"github.com/tair/shop-inventory/pkg/database"
	"github.com/tair/shop-inventory/pkg/logger"
	"github.com/tair/shop-inventory/pkg/metrics"
	"github.com/tair/shop-inventory/pkg/tracing"
)

// CreateTaskCommand represents a manually entered task
type CreateTaskCommand struct {
	TaskType       string
	Description    string
	ProductID      *uint
	QuantityNeeded int
	Priority       string
	AssignedTo     string
	Notes          string
}

// CreateTaskHandler handles create task command
type CreateTaskHandler struct {
	tasks    domain.TaskRepository
	products ProductGetter
	metrics  *metrics.Metrics
}

// NewCreateTaskHandler creates a new create task handler
func NewCreateTaskHandler(tasks domain.TaskRepository, products ProductGetter, m *metrics.Metrics) *CreateTaskHandler {
	return &CreateTaskHandler{tasks: tasks, products: products, metrics: m}
}

// Handle executes the create task command
func (h *CreateTaskHandler) Handle(ctx context.Context, cmd CreateTaskCommand) (*domain.Task, error) {
	if cmd.Priority == "" {
		cmd.Priority = domain.PriorityMedium
	}
	if cmd.QuantityNeeded == 0 && cmd.TaskType == domain.TypeOther {
		cmd.QuantityNeeded = 1
	}

	task := &domain.Task{
		TaskType:       cmd.TaskType,
		Description:    cmd.Description,
		ProductID:      cmd.ProductID,
		QuantityNeeded: cmd.QuantityNeeded,
		Priority:       cmd.Priority,
		Status:         domain.StatusPending,
		AssignedTo:     cmd.AssignedTo,
		Notes:          cmd.Notes,
	}
	if err := task.Validate(); err != nil {
		return nil, err
	}
	if cmd.ProductID != nil {
		if _, err := h.products.Handle(ctx, invquery.GetProductQuery{ID: *cmd.ProductID}); err != nil {
			return nil, err
		}
	}

	if err := h.tasks.Create(ctx, task); err != nil {
		logger.Error(ctx).Err(err).Str("type", task.TaskType).Msg("Failed to create task")
		return nil, fmt.Errorf("failed to create task: %w", err)
	}
	if h.metrics != nil {
		h.metrics.TasksCreated.WithLabelValues(task.TaskType).Inc()
	}

	logger.Info(ctx).
		Uint("task_id", task.ID).
		Str("type", task.TaskType).
		Msg("Task created")
	return task, nil
}

// StartTaskHandler moves a task from pending to in_progress
type StartTaskHandler struct {
	tx    *database.Transactor
	tasks domain.TaskRepository
	now   func() time.Time
}

// NewStartTaskHandler creates a new start task handler
func NewStartTaskHandler(tx *database.Transactor, tasks domain.TaskRepository) *StartTaskHandler {
	return &StartTaskHandler{tx: tx, tasks: tasks, now: time.Now}
}

// Handle executes the start task command
func (h *StartTaskHandler) Handle(ctx context.Context, id uint) (*domain.Task, error) {
	ctx, span := tracing.Start(ctx, tracerName, "todo.start", attribute.Int("task.id", int(id)))
	defer span.End()

	var task *domain.Task
	err := h.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		t, err := h.tasks.FindByID(ctx, id)
		if err != nil {
			return err
		}
		if err := t.Start(h.now()); err != nil {
			return err
		}
		task = t
		return h.tasks.Update(ctx, t)
	})
	if err != nil {
		tracing.Fail(span, err)
		return nil, fmt.Errorf("failed to start task: %w", err)
	}

	logger.Info(ctx).Uint("task_id", id).Msg("Task started")
	return task, nil
}

// AssignTaskCommand represents the command to assign a task
type AssignTaskCommand struct {
	ID         uint
	AssignedTo string
}

// AssignTaskHandler handles assign task command
type AssignTaskHandler struct {
	tx    *database.Transactor
	tasks domain.TaskRepository
}

// NewAssignTaskHandler creates a new assign task handler
func NewAssignTaskHandler(tx *database.Transactor, tasks domain.TaskRepository) *AssignTaskHandler {
	return &AssignTaskHandler{tx: tx, tasks: tasks}
}

// Handle executes the assign task command
func (h *AssignTaskHandler) Handle(ctx context.Context, cmd AssignTaskCommand) (*domain.Task, error) {
	var task *domain.Task
	err := h.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		t, err := h.tasks.FindByID(ctx, cmd.ID)
		if err != nil {
			return err
		}
		if !t.IsOpen() {
			return apperr.Validation("task %d is already completed", t.ID)
		}
		t.AssignedTo = cmd.AssignedTo
		task = t
		return h.tasks.Update(ctx, t)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to assign task: %w", err)
	}
	return task, nil
}

// CompleteTaskCommand represents the command to complete a task
type CompleteTaskCommand struct {
	ID    uint
	Notes string
}

// CompleteTaskHandler completes a task and applies its stock effect in the
// same transaction: restocks transfer warehouse stock to the store and
// assemblies receive the built units.
type CompleteTaskHandler struct {
	tx       *database.Transactor
	tasks    domain.TaskRepository
	transfer StockTransferer
	receive  StockReceiver
	policy   domain.Policy
	metrics  *metrics.Metrics
	now      func() time.Time
}

// NewCompleteTaskHandler creates a new complete task handler
func NewCompleteTaskHandler(
	tx *database.Transactor,
	tasks domain.TaskRepository,
	transfer StockTransferer,
	receive StockReceiver,
	policy domain.Policy,
	m *metrics.Metrics,
) *CompleteTaskHandler {
	return &CompleteTaskHandler{
		tx:       tx,
		tasks:    tasks,
		transfer: transfer,
		receive:  receive,
		policy:   policy,
		metrics:  m,
		now:      time.Now,
	}
}

// Handle executes the complete task command. If the stock effect fails the
// task keeps its previous status. When err is an *database.AfterCommitError
// the completion has been committed and the task is valid.
func (h *CompleteTaskHandler) Handle(ctx context.Context, cmd CompleteTaskCommand) (*domain.Task, error) {
	ctx, span := tracing.Start(ctx, tracerName, "todo.complete", attribute.Int("task.id", int(cmd.ID)))
	defer span.End()

	var task *domain.Task
	err := h.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		t, err := h.tasks.FindByID(ctx, cmd.ID)
		if err != nil {
			return err
		}
		if !t.CanTransitionTo(domain.StatusCompleted) {
			return apperr.Validation("invalid status transition from %s to %s for task %d", t.Status, domain.StatusCompleted, t.ID)
		}
		span.SetAttributes(attribute.String("task.type", t.TaskType))

		if err := h.apply(ctx, t); err != nil {
			return err
		}
		if err := t.Complete(h.now(), cmd.Notes); err != nil {
			return err
		}
		if err := h.tasks.Update(ctx, t); err != nil {
			return err
		}
		task = t

		return database.AfterCommit(ctx, func(context.Context) error {
			if h.metrics != nil {
				h.metrics.TasksCompleted.WithLabelValues(t.TaskType).Inc()
			}
			return nil
		})
	})
	if err != nil && !database.IsAfterCommit(err) {
		tracing.Fail(span, err)
		logger.Warn(ctx).Err(err).Uint("task_id", cmd.ID).Msg("Task completion failed")
		return nil, fmt.Errorf("failed to complete task: %w", err)
	}

	logger.Info(ctx).
		Uint("task_id", task.ID).
		Str("type", task.TaskType).
		Int("quantity", task.QuantityNeeded).
		Msg("Task completed")
	return task, err
}

func (h *CompleteTaskHandler) apply(ctx context.Context, t *domain.Task) error {
	reference := fmt.Sprintf("task-%d", t.ID)

	switch t.TaskType {
	case domain.TypeRestock:
		if t.ProductID == nil {
			return apperr.Validation("restock task %d has no product", t.ID)
		}
		_, err := h.transfer.Handle(ctx, invcommand.TransferStockCommand{
			ProductID: *t.ProductID,
			Quantity:  t.QuantityNeeded,
			From:      invdomain.LocationWarehouse,
			To:        invdomain.LocationStore,
			Reference: reference,
		})
		return err

	case domain.TypeAssembly:
		if t.ProductID == nil {
			return apperr.Validation("assembly task %d has no product", t.ID)
		}
		cmd := invcommand.ReceiveStockCommand{
			ProductID: *t.ProductID,
			Reference: reference,
			Note:      "assembled",
		}
		if h.policy.AssemblyDestination == invdomain.LocationStore {
			cmd.StoreQuantity = t.QuantityNeeded
		} else {
			cmd.WarehouseQuantity = t.QuantityNeeded
		}
		_, err := h.receive.Handle(ctx, cmd)
		return err
	}
	return nil
}
