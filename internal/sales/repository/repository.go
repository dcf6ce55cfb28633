package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/tair/shop-inventory/internal/apperr"
	"github.com/tair/shop-inventory/internal/sales/domain"
	"github.com/tair/shop-inventory/pkg/database"
)

type GormSaleRepository struct {
	db *gorm.DB
}

func NewGormSaleRepository(db *gorm.DB) *GormSaleRepository {
	return &GormSaleRepository{db: db}
}

// Create stores the sale together with its items.
func (r *GormSaleRepository) Create(ctx context.Context, sale *domain.Sale) error {
	if err := database.Conn(ctx, r.db).Create(sale).Error; err != nil {
		return apperr.Persistence("create sale", err)
	}
	return nil
}

func (r *GormSaleRepository) FindByID(ctx context.Context, id uint) (*domain.Sale, error) {
	var sale domain.Sale
	err := database.Conn(ctx, r.db).Preload("Items").First(&sale, id).Error
	if err != nil {
		return nil, apperr.FromGorm(err, "sale", id)
	}
	return &sale, nil
}

func (r *GormSaleRepository) FindByReceipt(ctx context.Context, receipt string) (*domain.Sale, error) {
	var sale domain.Sale
	err := database.Conn(ctx, r.db).Preload("Items").
		Where("receipt_number = ?", receipt).
		First(&sale).Error
	if err != nil {
		return nil, apperr.FromGorm(err, "sale", receipt)
	}
	return &sale, nil
}

// FindBetween returns sales dated within [from, to], oldest first. Sale dates
// are stored in UTC.
func (r *GormSaleRepository) FindBetween(ctx context.Context, from, to time.Time) ([]domain.Sale, error) {
	var sales []domain.Sale
	err := database.Conn(ctx, r.db).Preload("Items").
		Where("sale_date BETWEEN ? AND ?", from.UTC(), to.UTC()).
		Order("sale_date ASC, id ASC").
		Find(&sales).Error
	if err != nil {
		return nil, apperr.Persistence("list sales", err)
	}
	return sales, nil
}
