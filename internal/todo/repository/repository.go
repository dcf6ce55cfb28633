package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/tair/shop-inventory/internal/apperr"
	"github.com/tair/shop-inventory/internal/todo/domain"
	"github.com/tair/shop-inventory/pkg/database"
)

type GormTaskRepository struct {
	db *gorm.DB
}

func NewGormTaskRepository(db *gorm.DB) *GormTaskRepository {
	return &GormTaskRepository{db: db}
}

func (r *GormTaskRepository) Create(ctx context.Context, task *domain.Task) error {
	if err := database.Conn(ctx, r.db).Create(task).Error; err != nil {
		return apperr.Persistence("create task", err)
	}
	return nil
}

func (r *GormTaskRepository) FindByID(ctx context.Context, id uint) (*domain.Task, error) {
	var task domain.Task
	if err := database.Conn(ctx, r.db).First(&task, id).Error; err != nil {
		return nil, apperr.FromGorm(err, "task", id)
	}
	return &task, nil
}

// FindAll returns matching tasks, newest first.
func (r *GormTaskRepository) FindAll(ctx context.Context, filter domain.TaskFilter) ([]domain.Task, error) {
	q := database.Conn(ctx, r.db).Order("created_at DESC, id DESC")
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.OpenOnly {
		q = q.Where("status IN ?", domain.OpenStatuses)
	}
	if filter.TaskType != "" {
		q = q.Where("task_type = ?", filter.TaskType)
	}
	if filter.Priority != "" {
		q = q.Where("priority = ?", filter.Priority)
	}
	if filter.AssignedTo != "" {
		q = q.Where("assigned_to = ?", filter.AssignedTo)
	}
	if filter.ProductID != nil {
		q = q.Where("product_id = ?", *filter.ProductID)
	}

	var tasks []domain.Task
	if err := q.Find(&tasks).Error; err != nil {
		return nil, apperr.Persistence("list tasks", err)
	}
	return tasks, nil
}

func (r *GormTaskRepository) Update(ctx context.Context, task *domain.Task) error {
	if err := database.Conn(ctx, r.db).Save(task).Error; err != nil {
		return apperr.Persistence("update task", err)
	}
	return nil
}

// HasOpen reports whether a pending or in-progress task of taskType exists
// for the product.
func (r *GormTaskRepository) HasOpen(ctx context.Context, productID uint, taskType string) (bool, error) {
	var n int64
	err := database.Conn(ctx, r.db).Model(&domain.Task{}).
		Where("product_id = ? AND task_type = ? AND status IN ?", productID, taskType, domain.OpenStatuses).
		Count(&n).Error
	if err != nil {
		return false, apperr.Persistence("look up open tasks", err)
	}
	return n > 0, nil
}
