package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/tair/shop-inventory/internal/apperr"
	"github.com/tair/shop-inventory/internal/repair/domain"
	"github.com/tair/shop-inventory/pkg/database"
)

type GormRepairRepository struct {
	db *gorm.DB
}

func NewGormRepairRepository(db *gorm.DB) *GormRepairRepository {
	return &GormRepairRepository{db: db}
}

func (r *GormRepairRepository) Create(ctx context.Context, repair *domain.RepairTask) error {
	if err := database.Conn(ctx, r.db).Omit("Parts").Create(repair).Error; err != nil {
		return apperr.Persistence("create repair", err)
	}
	return nil
}

func (r *GormRepairRepository) FindByID(ctx context.Context, id uint) (*domain.RepairTask, error) {
	var repair domain.RepairTask
	err := database.Conn(ctx, r.db).
		Preload("Parts", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		First(&repair, id).Error
	if err != nil {
		return nil, apperr.FromGorm(err, "repair", id)
	}
	return &repair, nil
}

// FindAll returns repairs newest first, without their parts.
func (r *GormRepairRepository) FindAll(ctx context.Context, filter domain.RepairFilter) ([]domain.RepairTask, error) {
	q := database.Conn(ctx, r.db).Order("created_at DESC, id DESC")
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.CustomerID != 0 {
		q = q.Where("customer_id = ?", filter.CustomerID)
	}

	var repairs []domain.RepairTask
	if err := q.Find(&repairs).Error; err != nil {
		return nil, apperr.Persistence("list repairs", err)
	}
	return repairs, nil
}

// Update saves the job's own columns. Parts are written with AddPart and
// DeletePart.
func (r *GormRepairRepository) Update(ctx context.Context, repair *domain.RepairTask) error {
	if err := database.Conn(ctx, r.db).Omit("Parts").Save(repair).Error; err != nil {
		return apperr.Persistence("update repair", err)
	}
	return nil
}

func (r *GormRepairRepository) AddPart(ctx context.Context, part *domain.RepairPart) error {
	if err := database.Conn(ctx, r.db).Create(part).Error; err != nil {
		return apperr.Persistence("add repair part", err)
	}
	return nil
}

func (r *GormRepairRepository) DeletePart(ctx context.Context, id uint) error {
	res := database.Conn(ctx, r.db).Delete(&domain.RepairPart{}, id)
	if res.Error != nil {
		return apperr.Persistence("delete repair part", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("repair part", id)
	}
	return nil
}
