package command

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"

	invdomain "github.com/tair/shop-inventory/internal/inventory/domain"
	invquery "github.com/tair/shop-inventory/internal/inventory/usecase/query"
	"github.com/tair/shop-inventory/internal/todo/domain"
	"github.com/tair/shop-inventory/pkg/database"
	"github.com/tair/shop-inventory/pkg/logger"
	"github.com/tair/shop-inventory/pkg/metrics"
	"github.com/tair/shop-inventory/pkg/tracing"
)

// ReconcileHandler runs the task generation pass over every product
type ReconcileHandler struct {
	tx       *database.Transactor
	tasks    domain.TaskRepository
	products ProductLister
	policy   domain.Policy
	metrics  *metrics.Metrics
}

// NewReconcileHandler creates a new reconcile handler
func NewReconcileHandler(tx *database.Transactor, tasks domain.TaskRepository, products ProductLister, policy domain.Policy, m *metrics.Metrics) *ReconcileHandler {
	return &ReconcileHandler{tx: tx, tasks: tasks, products: products, policy: policy, metrics: m}
}

// Handle executes one reconciliation pass and returns the tasks it created.
// A product may get both a restock and an assembly task in the same pass;
// neither is created while an open task of that type exists.
func (h *ReconcileHandler) Handle(ctx context.Context) ([]domain.Task, error) {
	ctx, span := tracing.Start(ctx, tracerName, "todo.reconcile")
	defer span.End()
	started := time.Now()

	var (
		created []domain.Task
		low     int
	)
	err := h.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		products, err := h.products.Handle(ctx, invquery.ListProductsQuery{})
		if err != nil {
			return err
		}

		for i := range products {
			p := &products[i]
			if p.IsLowStock() {
				low++
			}

			if qty, priority, ok := h.policy.Restock(p.StoreQuantity, p.WarehouseQuantity, p.ReorderThreshold); ok {
				task, err := h.createIfAbsent(ctx, p, domain.TypeRestock, qty, priority, domain.RestockDescription(qty, p.Name))
				if err != nil {
					return err
				}
				if task != nil {
					created = append(created, *task)
				}
			}

			if qty, ok := h.policy.Assembly(p.StoreQuantity, p.WarehouseQuantity, p.ReorderThreshold); ok {
				task, err := h.createIfAbsent(ctx, p, domain.TypeAssembly, qty, domain.PriorityMedium, domain.AssemblyDescription(qty, p.Name))
				if err != nil {
					return err
				}
				if task != nil {
					created = append(created, *task)
				}
			}
		}

		return database.AfterCommit(ctx, func(context.Context) error {
			if h.metrics != nil {
				for _, task := range created {
					h.metrics.TasksCreated.WithLabelValues(task.TaskType).Inc()
				}
				h.metrics.LowStockProducts.Set(float64(low))
			}
			return nil
		})
	})
	if h.metrics != nil {
		h.metrics.ReconcileDuration.Observe(time.Since(started).Seconds())
	}
	if err != nil {
		tracing.Fail(span, err)
		logger.Error(ctx).Err(err).Msg("Task reconciliation failed")
		return nil, fmt.Errorf("failed to reconcile tasks: %w", err)
	}

	span.SetAttributes(
		attribute.Int("tasks.created", len(created)),
		attribute.Int("products.low_stock", low),
	)
	logger.Info(ctx).
		Int("created", len(created)).
		Int("low_stock", low).
		Msg("Task reconciliation finished")
	return created, nil
}

func (h *ReconcileHandler) createIfAbsent(ctx context.Context, p *invdomain.Product, taskType string, qty int, priority, description string) (*domain.Task, error) {
	open, err := h.tasks.HasOpen(ctx, p.ID, taskType)
	if err != nil {
		return nil, err
	}
	if open {
		return nil, nil
	}

	productID := p.ID
	task := &domain.Task{
		TaskType:       taskType,
		Description:    description,
		ProductID:      &productID,
		QuantityNeeded: qty,
		Priority:       priority,
		Status:         domain.StatusPending,
	}
	if err := h.tasks.Create(ctx, task); err != nil {
		return nil, err
	}

	logger.Debug(ctx).
		Uint("task_id", task.ID).
		Uint("product_id", p.ID).
		Str("type", taskType).
		Int("quantity", qty).
		Msg("Task generated")
	return task, nil
}
