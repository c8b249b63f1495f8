package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/brightcart/storefront-backend/internal/authz"
	"github.com/brightcart/storefront-backend/internal/domain"
	"github.com/brightcart/storefront-backend/internal/http/middleware"
	"github.com/brightcart/storefront-backend/internal/repository"
	"github.com/brightcart/storefront-backend/internal/service"
)

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	return body["error"]
}

func withPrincipal(req *http.Request, p *middleware.Principal) *http.Request {
	return req.WithContext(middleware.WithPrincipal(req.Context(), p))
}

func withURLParam(req *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func asUser(req *http.Request, id uint, role authz.Role) *http.Request {
	return withPrincipal(req, &middleware.Principal{
		UserID:    id,
		Email:     "actor@example.com",
		Role:      role,
		SessionID: "sess-1",
		Source:    "session",
	})
}

type stubAuthService struct {
	registerResult *service.LoginResult
	registerErr    error
	loginResult    *service.LoginResult
	loginErr       error
	logoutErr      error
	loggedOut      []string
}

func (s *stubAuthService) Register(ctx context.Context, input service.RegisterInput) (*service.LoginResult, error) {
	return s.registerResult, s.registerErr
}

func (s *stubAuthService) Login(ctx context.Context, email, password string) (*service.LoginResult, error) {
	return s.loginResult, s.loginErr
}

func (s *stubAuthService) Logout(ctx context.Context, sessionID string) error {
	s.loggedOut = append(s.loggedOut, sessionID)
	return s.logoutErr
}

type stubUserService struct {
	users       map[uint]*domain.User
	listResult  repository.PageResult[domain.User]
	listErr     error
	changeErr   error
	changeCalls []struct {
		ActorID  uint
		TargetID uint
		NewRole  string
	}
}

func (s *stubUserService) GetByID(ctx context.Context, id uint) (*domain.User, error) {
	u, ok := s.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	return u, nil
}

func (s *stubUserService) ListPaged(ctx context.Context, q repository.UserListQuery) (repository.PageResult[domain.User], error) {
	return s.listResult, s.listErr
}

func (s *stubUserService) ChangeRole(ctx context.Context, actorID, targetID uint, newRole string) (*domain.User, error) {
	s.changeCalls = append(s.changeCalls, struct {
		ActorID  uint
		TargetID uint
		NewRole  string
	}{actorID, targetID, newRole})
	if s.changeErr != nil {
		return nil, s.changeErr
	}
	u, ok := s.users[targetID]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	u.Role = newRole
	return u, nil
}

type stubCatalogService struct {
	products  map[uint]*domain.Product
	createErr error
	updateErr error
	deleteErr error
	attachErr error
}

func (s *stubCatalogService) Create(ctx context.Context, input service.CreateProductInput) (*domain.Product, error) {
	if s.createErr != nil {
		return nil, s.createErr
	}
	p := &domain.Product{ID: uint(len(s.products) + 1), Name: input.Name, Description: input.Description, Price: input.Price, Stock: input.Stock}
	s.products[p.ID] = p
	return p, nil
}

func (s *stubCatalogService) GetByID(ctx context.Context, id uint) (*domain.Product, error) {
	p, ok := s.products[id]
	if !ok {
		return nil, repository.ErrProductNotFound
	}
	return p, nil
}

func (s *stubCatalogService) ListPaged(ctx context.Context, q repository.ProductListQuery) (repository.PageResult[domain.Product], error) {
	items := make([]domain.Product, 0, len(s.products))
	for _, p := range s.products {
		items = append(items, *p)
	}
	return repository.PageResult[domain.Product]{Items: items, Page: q.Page, PageSize: q.PageSize, Total: int64(len(items)), TotalPages: 1}, nil
}

func (s *stubCatalogService) Update(ctx context.Context, id uint, input service.UpdateProductInput) (*domain.Product, error) {
	if s.updateErr != nil {
		return nil, s.updateErr
	}
	p, ok := s.products[id]
	if !ok {
		return nil, repository.ErrProductNotFound
	}
	if input.Name != nil {
		p.Name = *input.Name
	}
	if input.Price != nil {
		p.Price = *input.Price
	}
	return p, nil
}

func (s *stubCatalogService) DeleteByID(ctx context.Context, id uint) error {
	if s.deleteErr != nil {
		return s.deleteErr
	}
	if _, ok := s.products[id]; !ok {
		return repository.ErrProductNotFound
	}
	delete(s.products, id)
	return nil
}

func (s *stubCatalogService) AttachImage(ctx context.Context, id uint, file io.Reader, size int64, contentType string) (*domain.Product, error) {
	if s.attachErr != nil {
		return nil, s.attachErr
	}
	p, ok := s.products[id]
	if !ok {
		return nil, repository.ErrProductNotFound
	}
	p.ImageKey = "products/key"
	return p, nil
}

type stubOrderService struct {
	orders      map[uint]*domain.Order
	checkoutErr error
	cancelErr   error
	fulfillErr  error
	markPaidErr error
	paid        []string
}

func (s *stubOrderService) Checkout(ctx context.Context, userID uint, input service.CheckoutInput) (*domain.Order, error) {
	if s.checkoutErr != nil {
		return nil, s.checkoutErr
	}
	order := &domain.Order{ID: uint(len(s.orders) + 1), Number: "ORD-TEST", UserID: userID, Status: domain.OrderStatusPending}
	s.orders[order.ID] = order
	return order, nil
}

func (s *stubOrderService) GetByID(ctx context.Context, id uint) (*domain.Order, error) {
	o, ok := s.orders[id]
	if !ok {
		return nil, repository.ErrOrderNotFound
	}
	return o, nil
}

func (s *stubOrderService) ListForUser(ctx context.Context, userID uint, req repository.PageRequest) (repository.PageResult[domain.Order], error) {
	var items []domain.Order
	for _, o := range s.orders {
		if o.UserID == userID {
			items = append(items, *o)
		}
	}
	return repository.PageResult[domain.Order]{Items: items, Page: 1, PageSize: 20, Total: int64(len(items)), TotalPages: 1}, nil
}

func (s *stubOrderService) ListAll(ctx context.Context, q repository.OrderListQuery) (repository.PageResult[domain.Order], error) {
	items := make([]domain.Order, 0, len(s.orders))
	for _, o := range s.orders {
		items = append(items, *o)
	}
	return repository.PageResult[domain.Order]{Items: items, Page: 1, PageSize: 20, Total: int64(len(items)), TotalPages: 1}, nil
}

func (s *stubOrderService) MarkPaid(ctx context.Context, number, paymentRef string) (*domain.Order, error) {
	if s.markPaidErr != nil {
		return nil, s.markPaidErr
	}
	for _, o := range s.orders {
		if o.Number == number {
			o.Status = domain.OrderStatusPaid
			o.PaymentRef = paymentRef
			s.paid = append(s.paid, number)
			return o, nil
		}
	}
	return nil, repository.ErrOrderNotFound
}

func (s *stubOrderService) Fulfill(ctx context.Context, id uint) error {
	return s.fulfillErr
}

func (s *stubOrderService) Cancel(ctx context.Context, id uint) (*domain.Order, error) {
	if s.cancelErr != nil {
		return nil, s.cancelErr
	}
	o, ok := s.orders[id]
	if !ok {
		return nil, repository.ErrOrderNotFound
	}
	o.Status = domain.OrderStatusCancelled
	return o, nil
}

type stubReportService struct {
	report *service.SalesReport
	err    error
}

func (s *stubReportService) Sales(ctx context.Context) (*service.SalesReport, error) {
	return s.report, s.err
}

var errBoom = errors.New("boom")
