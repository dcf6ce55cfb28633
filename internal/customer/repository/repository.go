package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/tair/shop-inventory/internal/apperr"
	"github.com/tair/shop-inventory/internal/customer/domain"
	"github.com/tair/shop-inventory/pkg/database"
)

type GormCustomerRepository struct {
	db *gorm.DB
}

func NewGormCustomerRepository(db *gorm.DB) *GormCustomerRepository {
	return &GormCustomerRepository{db: db}
}

func (r *GormCustomerRepository) Create(ctx context.Context, customer *domain.Customer) error {
	if err := database.Conn(ctx, r.db).Create(customer).Error; err != nil {
		return apperr.Persistence("create customer", err)
	}
	return nil
}

func (r *GormCustomerRepository) FindByID(ctx context.Context, id uint) (*domain.Customer, error) {
	var customer domain.Customer
	if err := database.Conn(ctx, r.db).First(&customer, id).Error; err != nil {
		return nil, apperr.FromGorm(err, "customer", id)
	}
	return &customer, nil
}

func (r *GormCustomerRepository) FindAll(ctx context.Context, search string) ([]domain.Customer, error) {
	q := database.Conn(ctx, r.db).Order("name ASC, id ASC")
	if search != "" {
		like := "%" + search + "%"
		q = q.Where("name LIKE ? OR phone LIKE ? OR email LIKE ?", like, like, like)
	}

	var customers []domain.Customer
	if err := q.Find(&customers).Error; err != nil {
		return nil, apperr.Persistence("list customers", err)
	}
	return customers, nil
}

func (r *GormCustomerRepository) Update(ctx context.Context, customer *domain.Customer) error {
	if err := database.Conn(ctx, r.db).Save(customer).Error; err != nil {
		return apperr.Persistence("update customer", err)
	}
	return nil
}

// AddPoints increments the balance in place so concurrent sales do not
// overwrite each other.
func (r *GormCustomerRepository) AddPoints(ctx context.Context, id uint, points int) error {
	res := database.Conn(ctx, r.db).Model(&domain.Customer{}).
		Where("id = ?", id).
		Update("loyalty_points", gorm.Expr("loyalty_points + ?", points))
	if res.Error != nil {
		return apperr.Persistence("add loyalty points", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("customer", id)
	}
	return nil
}
