package database

import (
	"fmt"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/brightcart/storefront-backend/internal/authz"
	"github.com/brightcart/storefront-backend/internal/domain"
)

func newSeedDBForTest(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func TestSeedCreatesAdminAndCatalog(t *testing.T) {
	db := newSeedDBForTest(t)

	report, err := Seed(db, "root@example.com", "Sup3rSecret")
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	if !report.AdminCreated {
		t.Fatal("expected admin account created")
	}
	if report.ProductsCreated != len(demoCatalog) {
		t.Fatalf("expected %d demo products, got %d", len(demoCatalog), report.ProductsCreated)
	}

	var admin domain.User
	if err := db.Where("email = ?", "root@example.com").First(&admin).Error; err != nil {
		t.Fatalf("load admin: %v", err)
	}
	if admin.Role != string(authz.RoleAdmin) {
		t.Fatalf("expected ADMIN role, got %s", admin.Role)
	}
}

func TestSeedIsIdempotent(t *testing.T) {
	db := newSeedDBForTest(t)

	if _, err := Seed(db, "root@example.com", "Sup3rSecret"); err != nil {
		t.Fatalf("first seed: %v", err)
	}
	report, err := Seed(db, "root@example.com", "Sup3rSecret")
	if err != nil {
		t.Fatalf("second seed: %v", err)
	}
	if !report.Noop {
		t.Fatalf("expected no-op on repeat, got %+v", report)
	}
}

func TestSeedPromotesExistingUser(t *testing.T) {
	db := newSeedDBForTest(t)

	user := domain.User{Email: "boss@example.com", Name: "Boss", PasswordHash: "x", Role: string(authz.RoleUser), Status: "active"}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}

	report, err := Seed(db, "boss@example.com", "")
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	if !report.AdminPromoted {
		t.Fatal("expected existing user promoted to ADMIN")
	}

	var reloaded domain.User
	if err := db.First(&reloaded, user.ID).Error; err != nil {
		t.Fatalf("reload: %v", err)
	}
	if reloaded.Role != string(authz.RoleAdmin) {
		t.Fatalf("expected ADMIN, got %s", reloaded.Role)
	}
}
