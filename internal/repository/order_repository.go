package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/brightcart/storefront-backend/internal/domain"
	"github.com/brightcart/storefront-backend/internal/observability"
)

var ErrOrderNotFound = errors.New("order not found")

// OrderListQuery filters the order listing. UserID of zero means all users.
type OrderListQuery struct {
	PageRequest
	UserID uint
	Status string
}

// SalesSummary aggregates paid and fulfilled orders for reporting.
type SalesSummary struct {
	OrderCount   int64
	Revenue      float64
	AverageOrder float64
}

type OrderRepository interface {
	Create(order *domain.Order) error
	FindByID(id uint) (*domain.Order, error)
	FindByNumber(number string) (*domain.Order, error)
	UpdateStatus(id uint, from, to string) error
	MarkPaid(id uint, paymentRef string) error
	ListPaged(q OrderListQuery) (PageResult[domain.Order], error)
	SalesSummary() (SalesSummary, error)
	TopProducts(limit int) ([]ProductSales, error)
}

// ProductSales is one row of the best-sellers report.
type ProductSales struct {
	ProductID uint
	Name      string
	Quantity  int64
	Revenue   float64
}

type GormOrderRepository struct{ db *gorm.DB }

func NewOrderRepository(db *gorm.DB) OrderRepository { return &GormOrderRepository{db: db} }

func (r *GormOrderRepository) Create(order *domain.Order) error {
	if err := r.db.Create(order).Error; err != nil {
		observability.RecordRepositoryOperation(context.Background(), "order", "create", "error")
		return err
	}
	observability.RecordRepositoryOperation(context.Background(), "order", "create", "success")
	return nil
}

func (r *GormOrderRepository) FindByID(id uint) (*domain.Order, error) {
	var o domain.Order
	if err := r.db.Preload("Items").First(&o, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	return &o, nil
}

func (r *GormOrderRepository) FindByNumber(number string) (*domain.Order, error) {
	var o domain.Order
	if err := r.db.Preload("Items").Where("number = ?", number).First(&o).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	return &o, nil
}

// UpdateStatus moves an order from one status to another. The from guard
// makes concurrent transitions lose cleanly instead of clobbering.
func (r *GormOrderRepository) UpdateStatus(id uint, from, to string) error {
	res := r.db.Model(&domain.Order{}).
		Where("id = ? AND status = ?", id, from).
		Update("status", to)
	if res.Error != nil {
		observability.RecordRepositoryOperation(context.Background(), "order", "update_status", "error")
		return res.Error
	}
	if res.RowsAffected == 0 {
		observability.RecordRepositoryOperation(context.Background(), "order", "update_status", "not_found")
		return ErrOrderNotFound
	}
	observability.RecordRepositoryOperation(context.Background(), "order", "update_status", "success")
	return nil
}

// MarkPaid records the payment reference while moving pending -> paid.
func (r *GormOrderRepository) MarkPaid(id uint, paymentRef string) error {
	res := r.db.Model(&domain.Order{}).
		Where("id = ? AND status = ?", id, domain.OrderStatusPending).
		Updates(map[string]any{"status": domain.OrderStatusPaid, "payment_ref": paymentRef})
	if res.Error != nil {
		observability.RecordRepositoryOperation(context.Background(), "order", "mark_paid", "error")
		return res.Error
	}
	if res.RowsAffected == 0 {
		observability.RecordRepositoryOperation(context.Background(), "order", "mark_paid", "not_found")
		return ErrOrderNotFound
	}
	observability.RecordRepositoryOperation(context.Background(), "order", "mark_paid", "success")
	return nil
}

func (r *GormOrderRepository) ListPaged(q OrderListQuery) (PageResult[domain.Order], error) {
	normalized := normalizePageRequest(q.PageRequest)
	result := PageResult[domain.Order]{Page: normalized.Page, PageSize: normalized.PageSize}

	base := r.db.Model(&domain.Order{})
	if q.UserID != 0 {
		base = base.Where("user_id = ?", q.UserID)
	}
	if q.Status != "" {
		base = base.Where("status = ?", q.Status)
	}

	if err := base.Count(&result.Total).Error; err != nil {
		return PageResult[domain.Order]{}, err
	}
	if err := base.Preload("Items").Order("id desc").
		Offset(normalized.Offset()).Limit(normalized.PageSize).
		Find(&result.Items).Error; err != nil {
		return PageResult[domain.Order]{}, err
	}
	result.TotalPages = calcTotalPages(result.Total, normalized.PageSize)
	return result, nil
}

func (r *GormOrderRepository) SalesSummary() (SalesSummary, error) {
	var row struct {
		OrderCount int64
		Revenue    float64
	}
	err := r.db.Model(&domain.Order{}).
		Where("status IN ?", []string{domain.OrderStatusPaid, domain.OrderStatusFulfilled}).
		Select("COUNT(*) AS order_count, COALESCE(SUM(total), 0) AS revenue").
		Scan(&row).Error
	if err != nil {
		return SalesSummary{}, err
	}
	summary := SalesSummary{OrderCount: row.OrderCount, Revenue: row.Revenue}
	if row.OrderCount > 0 {
		summary.AverageOrder = row.Revenue / float64(row.OrderCount)
	}
	return summary, nil
}

func (r *GormOrderRepository) TopProducts(limit int) ([]ProductSales, error) {
	if limit <= 0 {
		limit = 5
	}
	var rows []ProductSales
	err := r.db.Model(&domain.OrderItem{}).
		Joins("JOIN orders ON orders.id = order_items.order_id").
		Where("orders.status IN ?", []string{domain.OrderStatusPaid, domain.OrderStatusFulfilled}).
		Select("order_items.product_id AS product_id, order_items.name AS name, SUM(order_items.quantity) AS quantity, SUM(order_items.unit_price * order_items.quantity) AS revenue").
		Group("order_items.product_id, order_items.name").
		Order("quantity DESC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
