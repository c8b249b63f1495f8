package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"

	"github.com/brightcart/storefront-backend/internal/domain"
	"github.com/brightcart/storefront-backend/internal/repository"
)

var (
	ErrProductInvalidName        = errors.New("name must be between 3 and 120 characters")
	ErrProductInvalidDescription = errors.New("description must be <= 500 characters")
	ErrProductInvalidPrice       = errors.New("price must be greater than 0")
	ErrProductInvalidStock       = errors.New("stock must be >= 0")
	ErrProductNoUpdates          = errors.New("no updates provided")
)

type CreateProductInput struct {
	Name        string
	Description string
	Price       float64
	Stock       int
}

type UpdateProductInput struct {
	Name        *string
	Description *string
	Price       *float64
	Stock       *int
}

type CatalogService struct {
	repo    repository.ProductRepository
	storage StorageService
}

func NewCatalogService(repo repository.ProductRepository, storage StorageService) *CatalogService {
	return &CatalogService{repo: repo, storage: storage}
}

func (s *CatalogService) Create(ctx context.Context, input CreateProductInput) (*domain.Product, error) {
	name := strings.TrimSpace(input.Name)
	description := strings.TrimSpace(input.Description)
	if len(name) < 3 || len(name) > 120 {
		return nil, ErrProductInvalidName
	}
	if len(description) > 500 {
		return nil, ErrProductInvalidDescription
	}
	if input.Price <= 0 {
		return nil, ErrProductInvalidPrice
	}
	if input.Stock < 0 {
		return nil, ErrProductInvalidStock
	}

	product := &domain.Product{Name: name, Description: description, Price: input.Price, Stock: input.Stock}
	if err := s.repo.Create(product); err != nil {
		return nil, err
	}
	return product, nil
}

func (s *CatalogService) GetByID(ctx context.Context, id uint) (*domain.Product, error) {
	product, err := s.repo.FindByID(id)
	if err != nil {
		return nil, err
	}
	s.decorateImageURL(ctx, product)
	return product, nil
}

func (s *CatalogService) ListPaged(ctx context.Context, q repository.ProductListQuery) (repository.PageResult[domain.Product], error) {
	res, err := s.repo.ListPaged(q)
	if err != nil {
		return repository.PageResult[domain.Product]{}, err
	}
	for i := range res.Items {
		s.decorateImageURL(ctx, &res.Items[i])
	}
	return res, nil
}

func (s *CatalogService) Update(ctx context.Context, id uint, input UpdateProductInput) (*domain.Product, error) {
	updates := map[string]any{}
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if len(name) < 3 || len(name) > 120 {
			return nil, ErrProductInvalidName
		}
		updates["name"] = name
	}
	if input.Description != nil {
		description := strings.TrimSpace(*input.Description)
		if len(description) > 500 {
			return nil, ErrProductInvalidDescription
		}
		updates["description"] = description
	}
	if input.Price != nil {
		if *input.Price <= 0 {
			return nil, ErrProductInvalidPrice
		}
		updates["price"] = *input.Price
	}
	if input.Stock != nil {
		if *input.Stock < 0 {
			return nil, ErrProductInvalidStock
		}
		updates["stock"] = *input.Stock
	}
	if len(updates) == 0 {
		return nil, ErrProductNoUpdates
	}

	product, err := s.repo.Update(id, updates)
	if err != nil {
		return nil, err
	}
	s.decorateImageURL(ctx, product)
	return product, nil
}

func (s *CatalogService) DeleteByID(ctx context.Context, id uint) error {
	product, err := s.repo.FindByID(id)
	if err != nil {
		return err
	}
	if err := s.repo.DeleteByID(id); err != nil {
		return err
	}
	if product.ImageKey != "" && s.storage != nil {
		if err := s.storage.DeleteProductImage(ctx, id, product.ImageKey); err != nil {
			slog.WarnContext(ctx, "orphaned product image", "product_id", id, "error", err)
		}
	}
	return nil
}

// AttachImage uploads a product image and stores its object key.
func (s *CatalogService) AttachImage(ctx context.Context, id uint, file io.Reader, size int64, contentType string) (*domain.Product, error) {
	if _, err := s.repo.FindByID(id); err != nil {
		return nil, err
	}
	key, err := s.storage.UploadProductImage(ctx, id, file, size, contentType)
	if err != nil {
		return nil, err
	}
	product, err := s.repo.Update(id, map[string]any{"image_key": key})
	if err != nil {
		return nil, err
	}
	s.decorateImageURL(ctx, product)
	return product, nil
}

func (s *CatalogService) decorateImageURL(ctx context.Context, product *domain.Product) {
	if product == nil || product.ImageKey == "" || s.storage == nil {
		return
	}
	url, err := s.storage.GenerateImageURL(ctx, product.ImageKey)
	if err != nil {
		slog.WarnContext(ctx, "presign product image failed", "product_id", product.ID, "error", err)
		return
	}
	product.ImageURL = url
}
