package service

import (
	"context"
	"errors"

	"github.com/brightcart/storefront-backend/internal/authz"
	"github.com/brightcart/storefront-backend/internal/domain"
	"github.com/brightcart/storefront-backend/internal/observability"
	"github.com/brightcart/storefront-backend/internal/repository"
)

var (
	ErrUnknownRole     = errors.New("unknown role")
	ErrOwnRoleChange   = errors.New("cannot modify your own role")
	ErrAdminRoleChange = errors.New("cannot modify admin user roles")
)

type UserService struct {
	users repository.UserRepository
}

func NewUserService(users repository.UserRepository) *UserService {
	return &UserService{users: users}
}

func (s *UserService) GetByID(ctx context.Context, id uint) (*domain.User, error) {
	return s.users.FindByID(id)
}

func (s *UserService) ListPaged(ctx context.Context, q repository.UserListQuery) (repository.PageResult[domain.User], error) {
	return s.users.ListPaged(q)
}

// ChangeRole applies the role-change business rules: the actor may not
// change their own role, and nobody may change the role of an ADMIN.
// Both checks run after the caller has already cleared users:manage.
func (s *UserService) ChangeRole(ctx context.Context, actorID uint, targetID uint, newRole string) (*domain.User, error) {
	role := authz.ParseRole(newRole)
	if !role.Valid() {
		observability.RecordRoleMutation(ctx, "bad_request")
		return nil, ErrUnknownRole
	}
	if actorID == targetID {
		observability.RecordRoleMutation(ctx, "own_role_denied")
		return nil, ErrOwnRoleChange
	}

	target, err := s.users.FindByID(targetID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			observability.RecordRoleMutation(ctx, "not_found")
		} else {
			observability.RecordRoleMutation(ctx, "error")
		}
		return nil, err
	}
	if authz.ParseRole(target.Role) == authz.RoleAdmin {
		observability.RecordRoleMutation(ctx, "admin_target_denied")
		return nil, ErrAdminRoleChange
	}

	if err := s.users.UpdateRole(targetID, string(role)); err != nil {
		observability.RecordRoleMutation(ctx, "error")
		return nil, err
	}
	target.Role = string(role)
	observability.RecordRoleMutation(ctx, "success")
	return target, nil
}
