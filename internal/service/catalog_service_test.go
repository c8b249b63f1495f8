package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/brightcart/storefront-backend/internal/domain"
	"github.com/brightcart/storefront-backend/internal/repository"
)

type stubProductRepo struct {
	products map[uint]*domain.Product
	nextID   uint
}

func newStubProductRepo() *stubProductRepo {
	return &stubProductRepo{products: map[uint]*domain.Product{}, nextID: 1}
}

func (s *stubProductRepo) add(p *domain.Product) *domain.Product {
	if p.ID == 0 {
		p.ID = s.nextID
		s.nextID++
	}
	s.products[p.ID] = p
	return p
}

func (s *stubProductRepo) Create(p *domain.Product) error {
	s.add(p)
	return nil
}

func (s *stubProductRepo) FindByID(id uint) (*domain.Product, error) {
	p, ok := s.products[id]
	if !ok {
		return nil, repository.ErrProductNotFound
	}
	copied := *p
	return &copied, nil
}

func (s *stubProductRepo) Update(id uint, updates map[string]any) (*domain.Product, error) {
	p, ok := s.products[id]
	if !ok {
		return nil, repository.ErrProductNotFound
	}
	for col, v := range updates {
		switch col {
		case "name":
			p.Name = v.(string)
		case "description":
			p.Description = v.(string)
		case "price":
			p.Price = v.(float64)
		case "stock":
			p.Stock = v.(int)
		case "image_key":
			p.ImageKey = v.(string)
		}
	}
	copied := *p
	return &copied, nil
}

func (s *stubProductRepo) DeleteByID(id uint) error {
	if _, ok := s.products[id]; !ok {
		return repository.ErrProductNotFound
	}
	delete(s.products, id)
	return nil
}

func (s *stubProductRepo) DecrementStock(id uint, qty int) error {
	p, ok := s.products[id]
	if !ok {
		return repository.ErrProductNotFound
	}
	if p.Stock < qty {
		return repository.ErrInsufficientStock
	}
	p.Stock -= qty
	return nil
}

func (s *stubProductRepo) IncrementStock(id uint, qty int) error {
	p, ok := s.products[id]
	if !ok {
		return repository.ErrProductNotFound
	}
	p.Stock += qty
	return nil
}

func (s *stubProductRepo) ListPaged(q repository.ProductListQuery) (repository.PageResult[domain.Product], error) {
	out := repository.PageResult[domain.Product]{Page: 1, PageSize: len(s.products), TotalPages: 1}
	for _, p := range s.products {
		out.Items = append(out.Items, *p)
	}
	out.Total = int64(len(out.Items))
	return out, nil
}

type stubStorage struct {
	uploads  int
	deletes  []string
	uploaded string
	failURL  bool
}

func (s *stubStorage) UploadProductImage(ctx context.Context, productID uint, file io.Reader, size int64, contentType string) (string, error) {
	s.uploads++
	s.uploaded = fmt.Sprintf("products/product-%d/test.png", productID)
	return s.uploaded, nil
}

func (s *stubStorage) DeleteProductImage(ctx context.Context, productID uint, objectKey string) error {
	s.deletes = append(s.deletes, objectKey)
	return nil
}

func (s *stubStorage) GenerateImageURL(ctx context.Context, objectKey string) (string, error) {
	if s.failURL {
		return "", ErrURLGenerationFailed
	}
	return "https://cdn.example.com/" + objectKey, nil
}

func TestCatalogCreateValidation(t *testing.T) {
	svc := NewCatalogService(newStubProductRepo(), &stubStorage{})
	ctx := context.Background()

	cases := []struct {
		name  string
		input CreateProductInput
		want  error
	}{
		{"short name", CreateProductInput{Name: "ab", Price: 1}, ErrProductInvalidName},
		{"long description", CreateProductInput{Name: "Widget", Description: strings.Repeat("x", 501), Price: 1}, ErrProductInvalidDescription},
		{"zero price", CreateProductInput{Name: "Widget", Price: 0}, ErrProductInvalidPrice},
		{"negative stock", CreateProductInput{Name: "Widget", Price: 1, Stock: -1}, ErrProductInvalidStock},
	}
	for _, tc := range cases {
		if _, err := svc.Create(ctx, tc.input); !errors.Is(err, tc.want) {
			t.Fatalf("%s: expected %v, got %v", tc.name, tc.want, err)
		}
	}

	product, err := svc.Create(ctx, CreateProductInput{Name: "  Widget  ", Description: " A widget ", Price: 9.99, Stock: 3})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if product.Name != "Widget" || product.Description != "A widget" {
		t.Fatalf("expected trimmed fields, got %+v", product)
	}
}

func TestCatalogUpdateRequiresChanges(t *testing.T) {
	repo := newStubProductRepo()
	repo.add(&domain.Product{Name: "Widget", Price: 5, Stock: 1})
	svc := NewCatalogService(repo, &stubStorage{})

	if _, err := svc.Update(context.Background(), 1, UpdateProductInput{}); !errors.Is(err, ErrProductNoUpdates) {
		t.Fatalf("expected ErrProductNoUpdates, got %v", err)
	}

	newPrice := 7.5
	updated, err := svc.Update(context.Background(), 1, UpdateProductInput{Price: &newPrice})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Price != 7.5 {
		t.Fatalf("expected price updated, got %v", updated.Price)
	}
}

func TestCatalogAttachImageStoresKeyAndURL(t *testing.T) {
	repo := newStubProductRepo()
	repo.add(&domain.Product{Name: "Widget", Price: 5})
	storage := &stubStorage{}
	svc := NewCatalogService(repo, storage)

	product, err := svc.AttachImage(context.Background(), 1, strings.NewReader("png-bytes"), 9, "image/png")
	if err != nil {
		t.Fatalf("attach image: %v", err)
	}
	if storage.uploads != 1 {
		t.Fatalf("expected one upload, got %d", storage.uploads)
	}
	if product.ImageKey != storage.uploaded {
		t.Fatalf("expected image key stored, got %q", product.ImageKey)
	}
	if product.ImageURL == "" {
		t.Fatal("expected presigned URL decorated")
	}
}

func TestCatalogDeleteCleansUpImage(t *testing.T) {
	repo := newStubProductRepo()
	repo.add(&domain.Product{Name: "Widget", Price: 5, ImageKey: "products/product-1/a.png"})
	storage := &stubStorage{}
	svc := NewCatalogService(repo, storage)

	if err := svc.DeleteByID(context.Background(), 1); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if len(storage.deletes) != 1 || storage.deletes[0] != "products/product-1/a.png" {
		t.Fatalf("expected image delete, got %+v", storage.deletes)
	}
}

func TestCatalogGetToleratesPresignFailure(t *testing.T) {
	repo := newStubProductRepo()
	repo.add(&domain.Product{Name: "Widget", Price: 5, ImageKey: "products/product-1/a.png"})
	svc := NewCatalogService(repo, &stubStorage{failURL: true})

	product, err := svc.GetByID(context.Background(), 1)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if product.ImageURL != "" {
		t.Fatalf("expected empty URL on presign failure, got %q", product.ImageURL)
	}
}
