package repository

import (
	"errors"
	"fmt"
	"testing"

	"github.com/brightcart/storefront-backend/internal/domain"
)

func TestUserRepositoryCreateAndFind(t *testing.T) {
	repo := NewUserRepository(newRepositoryDBForTest(t))

	u := &domain.User{Email: "alice@example.com", Name: "Alice", PasswordHash: "x", Role: "USER", Status: "active"}
	if err := repo.Create(u); err != nil {
		t.Fatalf("create: %v", err)
	}
	if u.ID == 0 {
		t.Fatal("expected assigned ID")
	}

	byID, err := repo.FindByID(u.ID)
	if err != nil {
		t.Fatalf("find by id: %v", err)
	}
	if byID.Email != "alice@example.com" {
		t.Fatalf("unexpected email %q", byID.Email)
	}

	byEmail, err := repo.FindByEmail("alice@example.com")
	if err != nil {
		t.Fatalf("find by email: %v", err)
	}
	if byEmail.ID != u.ID {
		t.Fatalf("expected id %d, got %d", u.ID, byEmail.ID)
	}
}

func TestUserRepositoryFindMissingReturnsNotFound(t *testing.T) {
	repo := NewUserRepository(newRepositoryDBForTest(t))

	if _, err := repo.FindByID(999); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
	if _, err := repo.FindByEmail("nobody@example.com"); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestUserRepositoryUpdateRole(t *testing.T) {
	repo := NewUserRepository(newRepositoryDBForTest(t))

	u := &domain.User{Email: "bob@example.com", Name: "Bob", PasswordHash: "x", Role: "USER", Status: "active"}
	if err := repo.Create(u); err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := repo.UpdateRole(u.ID, "MANAGER"); err != nil {
		t.Fatalf("update role: %v", err)
	}
	got, err := repo.FindByID(u.ID)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if got.Role != "MANAGER" {
		t.Fatalf("expected MANAGER, got %q", got.Role)
	}

	if err := repo.UpdateRole(999, "ADMIN"); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestUserRepositoryListPagedFilters(t *testing.T) {
	repo := NewUserRepository(newRepositoryDBForTest(t))

	for i := 0; i < 5; i++ {
		role := "USER"
		if i == 0 {
			role = "ADMIN"
		}
		u := &domain.User{
			Email:        fmt.Sprintf("user%d@example.com", i),
			Name:         fmt.Sprintf("User %d", i),
			PasswordHash: "x",
			Role:         role,
			Status:       "active",
		}
		if err := repo.Create(u); err != nil {
			t.Fatalf("create %d: %v", i, err)
		}
	}

	page, err := repo.ListPaged(UserListQuery{PageRequest: PageRequest{Page: 1, PageSize: 2}})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if page.Total != 5 || page.TotalPages != 3 || len(page.Items) != 2 {
		t.Fatalf("unexpected page: total=%d pages=%d items=%d", page.Total, page.TotalPages, len(page.Items))
	}

	admins, err := repo.ListPaged(UserListQuery{PageRequest: PageRequest{Page: 1, PageSize: 10}, Role: "ADMIN"})
	if err != nil {
		t.Fatalf("list admins: %v", err)
	}
	if admins.Total != 1 || admins.Items[0].Role != "ADMIN" {
		t.Fatalf("unexpected admin listing: %+v", admins)
	}

	byEmail, err := repo.ListPaged(UserListQuery{PageRequest: PageRequest{Page: 1, PageSize: 10}, Email: "user3"})
	if err != nil {
		t.Fatalf("list by email: %v", err)
	}
	if byEmail.Total != 1 || byEmail.Items[0].Email != "user3@example.com" {
		t.Fatalf("unexpected email filter result: %+v", byEmail)
	}
}

func TestUserRepositoryListPagedNormalizesBadInput(t *testing.T) {
	repo := NewUserRepository(newRepositoryDBForTest(t))

	page, err := repo.ListPaged(UserListQuery{PageRequest: PageRequest{Page: -3, PageSize: 0}})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if page.Page != DefaultPage || page.PageSize != DefaultPageSize {
		t.Fatalf("expected normalized defaults, got page=%d size=%d", page.Page, page.PageSize)
	}
}
