package database

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/brightcart/storefront-backend/internal/authz"
	"github.com/brightcart/storefront-backend/internal/domain"
	"github.com/brightcart/storefront-backend/internal/security"
)

// SeedReport summarizes what a seed run actually changed, so repeated
// runs can be verified as no-ops.
type SeedReport struct {
	AdminCreated    bool `json:"admin_created"`
	AdminPromoted   bool `json:"admin_promoted"`
	ProductsCreated int  `json:"products_created"`
	Noop            bool `json:"noop"`
}

// Summary renders the report as a short human-readable line.
func (r *SeedReport) Summary() string {
	if r.Noop {
		return "no changes"
	}
	var parts []string
	if r.AdminCreated {
		parts = append(parts, "admin created")
	}
	if r.AdminPromoted {
		parts = append(parts, "admin promoted")
	}
	if r.ProductsCreated > 0 {
		parts = append(parts, fmt.Sprintf("%d products seeded", r.ProductsCreated))
	}
	return strings.Join(parts, ", ")
}

var demoCatalog = []domain.Product{
	{Name: "Walnut Standing Desk", Description: "Height adjustable, 140x70cm top", Price: 549.00, Stock: 12},
	{Name: "Mechanical Keyboard", Description: "Tenkeyless, brown switches", Price: 89.90, Stock: 40},
	{Name: "4K Monitor 27\"", Description: "IPS panel, USB-C with 90W delivery", Price: 379.00, Stock: 25},
	{Name: "Desk Lamp", Description: "Warm white, touch dimmer", Price: 24.50, Stock: 80},
	{Name: "Ergonomic Chair", Description: "Mesh back, adjustable lumbar support", Price: 289.00, Stock: 15},
}

// Seed is idempotent: it ensures the bootstrap admin account exists with
// the ADMIN role and fills an empty catalog with demo products.
func Seed(db *gorm.DB, bootstrapEmail, bootstrapPassword string) (*SeedReport, error) {
	report := &SeedReport{}

	email := strings.TrimSpace(strings.ToLower(bootstrapEmail))
	if email != "" {
		changed, created, err := ensureBootstrapAdmin(db, email, bootstrapPassword)
		if err != nil {
			return nil, err
		}
		report.AdminCreated = created
		report.AdminPromoted = changed && !created
	}

	var count int64
	if err := db.Model(&domain.Product{}).Count(&count).Error; err != nil {
		return nil, err
	}
	if count == 0 {
		for i := range demoCatalog {
			product := demoCatalog[i]
			if err := db.Create(&product).Error; err != nil {
				return nil, fmt.Errorf("seed product %q: %w", product.Name, err)
			}
			report.ProductsCreated++
		}
	}

	report.Noop = !report.AdminCreated && !report.AdminPromoted && report.ProductsCreated == 0
	return report, nil
}

func ensureBootstrapAdmin(db *gorm.DB, email, password string) (changed, created bool, err error) {
	var user domain.User
	err = db.Where("email = ?", email).First(&user).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		if password == "" {
			// Without a password we cannot create the account; registration
			// with this email will still be promoted to ADMIN.
			return false, false, nil
		}
		hash, hashErr := security.HashPassword(password)
		if hashErr != nil {
			return false, false, hashErr
		}
		user = domain.User{
			Email:        email,
			Name:         "Administrator",
			PasswordHash: hash,
			Role:         string(authz.RoleAdmin),
			Status:       "active",
		}
		if err := db.Create(&user).Error; err != nil {
			return false, false, err
		}
		return true, true, nil
	case err != nil:
		return false, false, err
	}

	if authz.ParseRole(user.Role) == authz.RoleAdmin {
		return false, false, nil
	}
	if err := db.Model(&user).Update("role", string(authz.RoleAdmin)).Error; err != nil {
		return false, false, err
	}
	return true, false, nil
}
