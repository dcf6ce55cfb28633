package repository

import (
	"context"
	"database/sql"

	"gorm.io/gorm"

	"github.com/tair/shop-inventory/internal/apperr"
	"github.com/tair/shop-inventory/internal/inventory/domain"
	"github.com/tair/shop-inventory/pkg/database"
)

// GormProductRepository implements domain.ProductRepository
type GormProductRepository struct {
	db *gorm.DB
}

func NewGormProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db}
}

func (r *GormProductRepository) Create(ctx context.Context, product *domain.Product) error {
	if err := database.Conn(ctx, r.db).Create(product).Error; err != nil {
		return apperr.Persistence("create product", err)
	}
	return nil
}

func (r *GormProductRepository) FindByID(ctx context.Context, id uint) (*domain.Product, error) {
	var product domain.Product
	err := database.Conn(ctx, r.db).First(&product, id).Error
	if err != nil {
		return nil, apperr.FromGorm(err, "product", id)
	}
	return &product, nil
}

func (r *GormProductRepository) FindAll(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, error) {
	q := database.Conn(ctx, r.db).Order("id ASC")
	if filter.Category != "" {
		q = q.Where("category = ?", filter.Category)
	}
	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		q = q.Where("name LIKE ? OR category LIKE ?", like, like)
	}
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit).Offset(filter.Offset)
	}

	var products []domain.Product
	if err := q.Find(&products).Error; err != nil {
		return nil, apperr.Persistence("list products", err)
	}
	return products, nil
}

func (r *GormProductRepository) Update(ctx context.Context, product *domain.Product) error {
	if err := database.Conn(ctx, r.db).Save(product).Error; err != nil {
		return apperr.Persistence("update product", err)
	}
	return nil
}

func (r *GormProductRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := database.Conn(ctx, r.db).Model(&domain.Product{}).Count(&n).Error; err != nil {
		return 0, apperr.Persistence("count products", err)
	}
	return n, nil
}

// itemBatchSize keeps a single statement under SQLite's bind variable limit.
const itemBatchSize = 500

// GormItemRepository implements domain.ItemRepository
type GormItemRepository struct {
	db *gorm.DB
}

func NewGormItemRepository(db *gorm.DB) *GormItemRepository {
	return &GormItemRepository{db: db}
}

func (r *GormItemRepository) CreateBatch(ctx context.Context, items []domain.ProductItem) error {
	if len(items) == 0 {
		return nil
	}
	if err := database.Conn(ctx, r.db).CreateInBatches(&items, itemBatchSize).Error; err != nil {
		return apperr.Persistence("create product items", err)
	}
	return nil
}

func (r *GormItemRepository) MaxItemNumber(ctx context.Context, productID uint) (int, error) {
	var max sql.NullInt64
	err := database.Conn(ctx, r.db).Model(&domain.ProductItem{}).
		Where("product_id = ?", productID).
		Select("MAX(item_number)").
		Row().Scan(&max)
	if err != nil {
		return 0, apperr.Persistence("max item number", err)
	}
	return int(max.Int64), nil
}

// FindInStock returns in-stock items at location, oldest item number first.
func (r *GormItemRepository) FindInStock(ctx context.Context, productID uint, location string, limit int, exclude []uint) ([]domain.ProductItem, error) {
	q := database.Conn(ctx, r.db).
		Where("product_id = ? AND location = ? AND status = ?", productID, location, domain.ItemInStock).
		Order("item_number ASC")
	if len(exclude) > 0 {
		q = q.Where("id NOT IN ?", exclude)
	}
	if limit > 0 {
		q = q.Limit(limit)
	}

	var items []domain.ProductItem
	if err := q.Find(&items).Error; err != nil {
		return nil, apperr.Persistence("find in-stock items", err)
	}
	return items, nil
}

func (r *GormItemRepository) FindBySerial(ctx context.Context, serial string) (*domain.ProductItem, error) {
	var item domain.ProductItem
	err := database.Conn(ctx, r.db).Where("serial_number = ?", serial).First(&item).Error
	if err != nil {
		return nil, apperr.FromGorm(err, "product item", serial)
	}
	return &item, nil
}

func (r *GormItemRepository) FindByProduct(ctx context.Context, productID uint) ([]domain.ProductItem, error) {
	var items []domain.ProductItem
	err := database.Conn(ctx, r.db).
		Where("product_id = ?", productID).
		Order("item_number ASC").
		Find(&items).Error
	if err != nil {
		return nil, apperr.Persistence("list product items", err)
	}
	return items, nil
}

func (r *GormItemRepository) Move(ctx context.Context, ids []uint, location, status string) error {
	if len(ids) == 0 {
		return nil
	}
	conn := database.Conn(ctx, r.db)
	for start := 0; start < len(ids); start += itemBatchSize {
		end := min(start+itemBatchSize, len(ids))
		err := conn.Model(&domain.ProductItem{}).
			Where("id IN ?", ids[start:end]).
			Updates(map[string]any{"location": location, "status": status}).Error
		if err != nil {
			return apperr.Persistence("move product items", err)
		}
	}
	return nil
}

type itemCountRow struct {
	ProductID uint
	Location  string
	Status    string
	N         int
}

func (r *GormItemRepository) Counts(ctx context.Context, productID uint) (domain.ItemCounts, error) {
	counts, err := r.CountsByProduct(ctx, []uint{productID})
	if err != nil {
		return domain.ItemCounts{}, err
	}
	return counts[productID], nil
}

func (r *GormItemRepository) CountsByProduct(ctx context.Context, productIDs []uint) (map[uint]domain.ItemCounts, error) {
	result := make(map[uint]domain.ItemCounts, len(productIDs))
	if len(productIDs) == 0 {
		return result, nil
	}

	var rows []itemCountRow
	err := database.Conn(ctx, r.db).Model(&domain.ProductItem{}).
		Select("product_id, location, status, COUNT(*) AS n").
		Where("product_id IN ?", productIDs).
		Group("product_id, location, status").
		Scan(&rows).Error
	if err != nil {
		return nil, apperr.Persistence("count product items", err)
	}

	for _, row := range rows {
		c := result[row.ProductID]
		switch {
		case row.Status == domain.ItemSold:
			c.Sold += row.N
		case row.Status == domain.ItemDamaged:
			c.Damaged += row.N
		case row.Location == domain.LocationStore:
			c.Store += row.N
		case row.Location == domain.LocationWarehouse:
			c.Warehouse += row.N
		}
		result[row.ProductID] = c
	}
	return result, nil
}

// GormMovementRepository implements domain.MovementRepository
type GormMovementRepository struct {
	db *gorm.DB
}

func NewGormMovementRepository(db *gorm.DB) *GormMovementRepository {
	return &GormMovementRepository{db: db}
}

func (r *GormMovementRepository) Create(ctx context.Context, movement *domain.StockMovement) error {
	if err := database.Conn(ctx, r.db).Create(movement).Error; err != nil {
		return apperr.Persistence("create stock movement", err)
	}
	return nil
}

// FindByProduct returns the newest movements first.
func (r *GormMovementRepository) FindByProduct(ctx context.Context, productID uint, limit int) ([]domain.StockMovement, error) {
	q := database.Conn(ctx, r.db).
		Where("product_id = ?", productID).
		Order("id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}

	var movements []domain.StockMovement
	if err := q.Find(&movements).Error; err != nil {
		return nil, apperr.Persistence("list stock movements", err)
	}
	return movements, nil
}

// GormSupplierRepository implements domain.SupplierRepository
type GormSupplierRepository struct {
	db *gorm.DB
}

func NewGormSupplierRepository(db *gorm.DB) *GormSupplierRepository {
	return &GormSupplierRepository{db: db}
}

func (r *GormSupplierRepository) Create(ctx context.Context, supplier *domain.Supplier) error {
	if err := database.Conn(ctx, r.db).Create(supplier).Error; err != nil {
		return apperr.Persistence("create supplier", err)
	}
	return nil
}

func (r *GormSupplierRepository) FindByID(ctx context.Context, id uint) (*domain.Supplier, error) {
	var supplier domain.Supplier
	if err := database.Conn(ctx, r.db).First(&supplier, id).Error; err != nil {
		return nil, apperr.FromGorm(err, "supplier", id)
	}
	return &supplier, nil
}

func (r *GormSupplierRepository) FindAll(ctx context.Context) ([]domain.Supplier, error) {
	var suppliers []domain.Supplier
	if err := database.Conn(ctx, r.db).Order("name ASC").Find(&suppliers).Error; err != nil {
		return nil, apperr.Persistence("list suppliers", err)
	}
	return suppliers, nil
}
