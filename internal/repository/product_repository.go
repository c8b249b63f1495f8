package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/brightcart/storefront-backend/internal/domain"
	"github.com/brightcart/storefront-backend/internal/observability"
)

var ErrProductNotFound = errors.New("product not found")

// ProductListQuery filters the catalog listing.
type ProductListQuery struct {
	PageRequest
	Name    string
	InStock bool
}

type ProductRepository interface {
	Create(product *domain.Product) error
	FindByID(id uint) (*domain.Product, error)
	Update(id uint, updates map[string]any) (*domain.Product, error)
	DeleteByID(id uint) error
	DecrementStock(id uint, qty int) error
	IncrementStock(id uint, qty int) error
	ListPaged(q ProductListQuery) (PageResult[domain.Product], error)
}

// ErrInsufficientStock is returned when a decrement would take stock negative.
var ErrInsufficientStock = errors.New("insufficient stock")

type GormProductRepository struct{ db *gorm.DB }

func NewProductRepository(db *gorm.DB) ProductRepository { return &GormProductRepository{db: db} }

func (r *GormProductRepository) Create(product *domain.Product) error {
	if err := r.db.Create(product).Error; err != nil {
		observability.RecordRepositoryOperation(context.Background(), "product", "create", "error")
		return err
	}
	observability.RecordRepositoryOperation(context.Background(), "product", "create", "success")
	return nil
}

func (r *GormProductRepository) FindByID(id uint) (*domain.Product, error) {
	var p domain.Product
	if err := r.db.First(&p, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	return &p, nil
}

// Update applies a partial column update and returns the fresh row.
func (r *GormProductRepository) Update(id uint, updates map[string]any) (*domain.Product, error) {
	res := r.db.Model(&domain.Product{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		observability.RecordRepositoryOperation(context.Background(), "product", "update", "error")
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		observability.RecordRepositoryOperation(context.Background(), "product", "update", "not_found")
		return nil, ErrProductNotFound
	}
	observability.RecordRepositoryOperation(context.Background(), "product", "update", "success")
	return r.FindByID(id)
}

func (r *GormProductRepository) DeleteByID(id uint) error {
	res := r.db.Delete(&domain.Product{}, id)
	if res.Error != nil {
		observability.RecordRepositoryOperation(context.Background(), "product", "delete", "error")
		return res.Error
	}
	if res.RowsAffected == 0 {
		observability.RecordRepositoryOperation(context.Background(), "product", "delete", "not_found")
		return ErrProductNotFound
	}
	observability.RecordRepositoryOperation(context.Background(), "product", "delete", "success")
	return nil
}

// DecrementStock takes qty units off the shelf. The stock guard in the
// WHERE clause keeps concurrent checkouts from overselling.
func (r *GormProductRepository) DecrementStock(id uint, qty int) error {
	if qty <= 0 {
		return nil
	}
	res := r.db.Model(&domain.Product{}).
		Where("id = ? AND stock >= ?", id, qty).
		Update("stock", gorm.Expr("stock - ?", qty))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		var count int64
		if err := r.db.Model(&domain.Product{}).Where("id = ?", id).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return ErrProductNotFound
		}
		return ErrInsufficientStock
	}
	return nil
}

// IncrementStock puts units back, e.g. when a pending order is cancelled.
func (r *GormProductRepository) IncrementStock(id uint, qty int) error {
	if qty <= 0 {
		return nil
	}
	res := r.db.Model(&domain.Product{}).
		Where("id = ?", id).
		Update("stock", gorm.Expr("stock + ?", qty))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrProductNotFound
	}
	return nil
}

func (r *GormProductRepository) ListPaged(q ProductListQuery) (PageResult[domain.Product], error) {
	normalized := normalizePageRequest(q.PageRequest)
	result := PageResult[domain.Product]{Page: normalized.Page, PageSize: normalized.PageSize}

	base := r.db.Model(&domain.Product{})
	if q.Name != "" {
		base = base.Where("name LIKE ?", "%"+q.Name+"%")
	}
	if q.InStock {
		base = base.Where("stock > 0")
	}

	if err := base.Count(&result.Total).Error; err != nil {
		return PageResult[domain.Product]{}, err
	}
	if err := base.Order("id desc").Offset(normalized.Offset()).Limit(normalized.PageSize).Find(&result.Items).Error; err != nil {
		return PageResult[domain.Product]{}, err
	}
	result.TotalPages = calcTotalPages(result.Total, normalized.PageSize)
	return result, nil
}
