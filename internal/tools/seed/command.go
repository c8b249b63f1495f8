package seed

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/brightcart/storefront-backend/internal/authz"
	"github.com/brightcart/storefront-backend/internal/config"
	"github.com/brightcart/storefront-backend/internal/database"
	"github.com/brightcart/storefront-backend/internal/domain"
	"github.com/brightcart/storefront-backend/internal/tools/common"
	"github.com/brightcart/storefront-backend/internal/tools/ui"
)

type options struct {
	envFile                string
	bootstrapAdminEmail    string
	bootstrapAdminPassword string
	ci                     bool
}

func NewRootCommand() *cobra.Command {
	opts := &options{}
	cmd := &cobra.Command{Use: "seed", Short: "Database seed tooling"}
	cmd.PersistentFlags().StringVar(&opts.envFile, "env-file", ".env", "path to env file")
	cmd.PersistentFlags().StringVar(&opts.bootstrapAdminEmail, "bootstrap-admin-email", "", "override bootstrap admin email")
	cmd.PersistentFlags().StringVar(&opts.bootstrapAdminPassword, "bootstrap-admin-password", "", "override bootstrap admin password")
	cmd.PersistentFlags().BoolVar(&opts.ci, "ci", false, "non-interactive machine-readable output")
	cmd.AddCommand(newApplyCommand(opts), newDryRunCommand(opts))
	return cmd
}

func newApplyCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "apply",
		Short: "Apply default seed data",
		RunE: func(cmd *cobra.Command, args []string) error {
			details, err := run(opts, "seed apply", func(ctx context.Context) ([]string, error) {
				cfg, db, err := loadConfigDB(opts.envFile)
				if err != nil {
					return nil, err
				}
				email, password := resolveBootstrap(cfg, opts)
				report, err := database.Seed(db, email, password)
				if err != nil {
					return nil, err
				}
				details := []string{"seed result: " + report.Summary()}
				if email != "" {
					details = append(details, "bootstrap admin: "+email)
				}
				return details, nil
			})
			if opts.ci {
				common.PrintCIResult(err == nil, "seed apply", details, err)
			}
			if err != nil {
				os.Exit(3)
			}
			return nil
		},
	}
}

func newDryRunCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "dry-run",
		Short: "Show what seeding would do",
		RunE: func(cmd *cobra.Command, args []string) error {
			details, err := run(opts, "seed dry-run", func(ctx context.Context) ([]string, error) {
				cfg, db, err := loadConfigDB(opts.envFile)
				if err != nil {
					return nil, err
				}
				email, password := resolveBootstrap(cfg, opts)

				var details []string
				var productCount int64
				if err := db.Model(&domain.Product{}).Count(&productCount).Error; err != nil {
					return nil, err
				}
				if productCount == 0 {
					details = append(details, "would seed demo catalog products")
				} else {
					details = append(details, fmt.Sprintf("catalog already has %d products, no demo seed", productCount))
				}

				switch {
				case email == "":
					details = append(details, "no bootstrap admin email configured")
				default:
					var admin domain.User
					err := db.Where("email = ?", email).First(&admin).Error
					switch {
					case errors.Is(err, gorm.ErrRecordNotFound) && password != "":
						details = append(details, "would create bootstrap admin: "+email)
					case errors.Is(err, gorm.ErrRecordNotFound):
						details = append(details, "bootstrap admin absent and no password set, would skip: "+email)
					case err != nil:
						return nil, err
					case authz.ParseRole(admin.Role) == authz.RoleAdmin:
						details = append(details, "bootstrap admin already has ADMIN role: "+email)
					default:
						details = append(details, "would promote to ADMIN: "+email)
					}
				}
				details = append(details, "no mutation executed in dry-run mode")
				return details, nil
			})
			if opts.ci {
				common.PrintCIResult(err == nil, "seed dry-run", details, err)
			}
			if err != nil {
				os.Exit(3)
			}
			return nil
		},
	}
}

func resolveBootstrap(cfg *config.Config, opts *options) (email, password string) {
	email = cfg.BootstrapAdminEmail
	if opts.bootstrapAdminEmail != "" {
		email = opts.bootstrapAdminEmail
	}
	password = cfg.BootstrapAdminPassword
	if opts.bootstrapAdminPassword != "" {
		password = opts.bootstrapAdminPassword
	}
	return email, password
}

func run(opts *options, title string, fn func(context.Context) ([]string, error)) ([]string, error) {
	if opts.ci {
		return fn(context.Background())
	}
	return ui.Run(title, fn)
}

func loadConfigDB(envFile string) (*config.Config, *gorm.DB, error) {
	if err := common.LoadEnvFile(envFile); err != nil {
		return nil, nil, err
	}
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	db, err := database.Open(cfg)
	if err != nil {
		return nil, nil, err
	}
	return cfg, db, nil
}
