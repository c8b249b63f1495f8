package service

import (
	"context"
	"io"

	"github.com/brightcart/storefront-backend/internal/domain"
	"github.com/brightcart/storefront-backend/internal/repository"
)

type AuthServiceInterface interface {
	Register(ctx context.Context, input RegisterInput) (*LoginResult, error)
	Login(ctx context.Context, email, password string) (*LoginResult, error)
	Logout(ctx context.Context, sessionID string) error
}

type UserServiceInterface interface {
	GetByID(ctx context.Context, id uint) (*domain.User, error)
	ListPaged(ctx context.Context, q repository.UserListQuery) (repository.PageResult[domain.User], error)
	ChangeRole(ctx context.Context, actorID uint, targetID uint, newRole string) (*domain.User, error)
}

type CatalogServiceInterface interface {
	Create(ctx context.Context, input CreateProductInput) (*domain.Product, error)
	GetByID(ctx context.Context, id uint) (*domain.Product, error)
	ListPaged(ctx context.Context, q repository.ProductListQuery) (repository.PageResult[domain.Product], error)
	Update(ctx context.Context, id uint, input UpdateProductInput) (*domain.Product, error)
	DeleteByID(ctx context.Context, id uint) error
	AttachImage(ctx context.Context, id uint, file io.Reader, size int64, contentType string) (*domain.Product, error)
}

type OrderServiceInterface interface {
	Checkout(ctx context.Context, userID uint, input CheckoutInput) (*domain.Order, error)
	GetByID(ctx context.Context, id uint) (*domain.Order, error)
	ListForUser(ctx context.Context, userID uint, req repository.PageRequest) (repository.PageResult[domain.Order], error)
	ListAll(ctx context.Context, q repository.OrderListQuery) (repository.PageResult[domain.Order], error)
	MarkPaid(ctx context.Context, number, paymentRef string) (*domain.Order, error)
	Fulfill(ctx context.Context, id uint) error
	Cancel(ctx context.Context, id uint) (*domain.Order, error)
}

type ReportServiceInterface interface {
	Sales(ctx context.Context) (*SalesReport, error)
}
