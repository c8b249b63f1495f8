package service

import (
	"context"
	"errors"
	"net/mail"
	"regexp"
	"strings"
	"time"

	"github.com/brightcart/storefront-backend/internal/authz"
	"github.com/brightcart/storefront-backend/internal/config"
	"github.com/brightcart/storefront-backend/internal/domain"
	"github.com/brightcart/storefront-backend/internal/observability"
	"github.com/brightcart/storefront-backend/internal/repository"
	"github.com/brightcart/storefront-backend/internal/security"
	"github.com/brightcart/storefront-backend/internal/session"
)

var (
	ErrInvalidEmail       = errors.New("invalid email address")
	ErrNameRequired       = errors.New("name is required")
	ErrEmailTaken         = errors.New("email already registered")
	ErrWeakPassword       = errors.New("password does not meet policy requirements")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountDisabled    = errors.New("account is disabled")
)

var (
	uppercaseRe = regexp.MustCompile(`[A-Z]`)
	lowercaseRe = regexp.MustCompile(`[a-z]`)
	digitRe     = regexp.MustCompile(`[0-9]`)
)

type RegisterInput struct {
	Email    string
	Name     string
	Password string
}

// LoginResult carries everything the handler needs to establish both
// credentials: the redis session and the signed bearer token.
type LoginResult struct {
	User      *domain.User `json:"user"`
	SessionID string       `json:"-"`
	Token     string       `json:"-"`
	ExpiresAt time.Time    `json:"expires_at"`
}

type AuthService struct {
	cfg      *config.Config
	users    repository.UserRepository
	sessions *session.Manager
	tokens   *security.TokenManager
}

func NewAuthService(cfg *config.Config, users repository.UserRepository, sessions *session.Manager, tokens *security.TokenManager) *AuthService {
	return &AuthService{cfg: cfg, users: users, sessions: sessions, tokens: tokens}
}

func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*LoginResult, error) {
	email := strings.TrimSpace(strings.ToLower(input.Email))
	name := strings.TrimSpace(input.Name)

	if err := validateEmail(email); err != nil {
		observability.RecordAuthFlow(ctx, "register", "bad_request")
		return nil, err
	}
	if name == "" {
		observability.RecordAuthFlow(ctx, "register", "bad_request")
		return nil, ErrNameRequired
	}
	if err := validatePassword(input.Password); err != nil {
		observability.RecordAuthFlow(ctx, "register", "bad_request")
		return nil, err
	}

	if _, err := s.users.FindByEmail(email); err == nil {
		observability.RecordAuthFlow(ctx, "register", "conflict")
		return nil, ErrEmailTaken
	} else if !errors.Is(err, repository.ErrUserNotFound) {
		observability.RecordAuthFlow(ctx, "register", "error")
		return nil, err
	}

	hash, err := security.HashPassword(input.Password)
	if err != nil {
		observability.RecordAuthFlow(ctx, "register", "error")
		return nil, err
	}

	role := authz.RoleUser
	if s.cfg.BootstrapAdminEmail != "" && email == s.cfg.BootstrapAdminEmail {
		role = authz.RoleAdmin
	}
	user := &domain.User{
		Email:        email,
		Name:         name,
		PasswordHash: hash,
		Role:         string(role),
		Status:       "active",
	}
	if err := s.users.Create(user); err != nil {
		observability.RecordAuthFlow(ctx, "register", "error")
		return nil, err
	}

	result, err := s.establish(ctx, user)
	if err != nil {
		return nil, err
	}
	observability.RecordAuthFlow(ctx, "register", "success")
	return result, nil
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	email = strings.TrimSpace(strings.ToLower(email))

	user, err := s.users.FindByEmail(email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			observability.RecordAuthLogin(ctx, "invalid_credentials")
			return nil, ErrInvalidCredentials
		}
		observability.RecordAuthLogin(ctx, "error")
		return nil, err
	}

	ok, err := security.VerifyPassword(user.PasswordHash, password)
	if err != nil || !ok {
		observability.RecordAuthLogin(ctx, "invalid_credentials")
		return nil, ErrInvalidCredentials
	}
	if user.Status != "active" {
		observability.RecordAuthLogin(ctx, "disabled")
		return nil, ErrAccountDisabled
	}

	now := time.Now().UTC()
	user.LastLoginAt = &now
	if err := s.users.Update(user); err != nil {
		observability.RecordAuthLogin(ctx, "error")
		return nil, err
	}

	result, err := s.establish(ctx, user)
	if err != nil {
		observability.RecordAuthLogin(ctx, "error")
		return nil, err
	}
	observability.RecordAuthLogin(ctx, "success")
	return result, nil
}

func (s *AuthService) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	if err := s.sessions.Destroy(ctx, sessionID); err != nil {
		observability.RecordAuthFlow(ctx, "logout", "error")
		return err
	}
	observability.RecordAuthFlow(ctx, "logout", "success")
	return nil
}

func (s *AuthService) establish(ctx context.Context, user *domain.User) (*LoginResult, error) {
	sessionID, err := s.sessions.Create(ctx, session.Record{
		UserID: user.ID,
		Email:  user.Email,
		Role:   user.Role,
	})
	if err != nil {
		return nil, err
	}
	token, err := s.tokens.Sign(user.ID, user.Email, authz.Role(user.Role))
	if err != nil {
		return nil, err
	}
	return &LoginResult{
		User:      user,
		SessionID: sessionID,
		Token:     token,
		ExpiresAt: time.Now().Add(s.tokens.TTL()),
	}, nil
}

func validateEmail(email string) error {
	if email == "" {
		return ErrInvalidEmail
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return ErrInvalidEmail
	}
	return nil
}

func validatePassword(password string) error {
	if len(password) < 8 || len(password) > 128 {
		return ErrWeakPassword
	}
	if !uppercaseRe.MatchString(password) || !lowercaseRe.MatchString(password) || !digitRe.MatchString(password) {
		return ErrWeakPassword
	}
	return nil
}
