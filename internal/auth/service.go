package auth

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/mrlokans/bookcatalog/internal/config"
	"github.com/mrlokans/bookcatalog/internal/database/users"
	"github.com/mrlokans/bookcatalog/internal/entities"
)

var loginPattern = regexp.MustCompile(`^[_.@A-Za-z0-9-]{1,50}$`)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserExists         = errors.New("user already exists")
	ErrLoginRequired      = errors.New("login is required")
	ErrLoginInvalid       = errors.New("login must be 1-50 characters of letters, digits and _.@-")
	ErrPasswordRequired   = errors.New("password is required")
)

// UserStore defines the user data access the service needs.
type UserStore interface {
	CreateUser(ctx context.Context, user *entities.User) error
	GetUserByLogin(ctx context.Context, login string) (*entities.User, error)
	CountUsers(ctx context.Context) (int64, error)
}

// Service handles credential checks and account creation.
type Service struct {
	users  UserStore
	tokens *TokenProvider
	config config.Auth
}

// NewService creates a new authentication service.
func NewService(users UserStore, tokens *TokenProvider, cfg config.Auth) *Service {
	return &Service{
		users:  users,
		tokens: tokens,
		config: cfg,
	}
}

// CreateUser creates an activated account. Admins also get ROLE_USER.
func (s *Service) CreateUser(ctx context.Context, login, password string, admin bool) (*entities.User, error) {
	login = normalizeLogin(login)
	if login == "" {
		return nil, ErrLoginRequired
	}
	if !loginPattern.MatchString(login) {
		return nil, ErrLoginInvalid
	}
	if password == "" {
		return nil, ErrPasswordRequired
	}

	hash, err := HashPassword(password, s.config.BcryptCost)
	if err != nil {
		return nil, err
	}

	authorities := []string{entities.AuthorityUser}
	if admin {
		authorities = append([]string{entities.AuthorityAdmin}, authorities...)
	}

	user := &entities.User{
		Login:        login,
		PasswordHash: hash,
		Authorities:  strings.Join(authorities, ","),
		Activated:    true,
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, users.ErrUserExists) {
			return nil, ErrUserExists
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return user, nil
}

// Authenticate validates credentials and issues a bearer token.
// Unknown logins, wrong passwords and deactivated accounts are
// indistinguishable to the caller.
func (s *Service) Authenticate(ctx context.Context, login, password string, rememberMe bool) (string, *entities.User, error) {
	user, err := s.users.GetUserByLogin(ctx, normalizeLogin(login))
	if err != nil {
		if errors.Is(err, users.ErrUserNotFound) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, fmt.Errorf("failed to find user: %w", err)
	}

	if err := CheckPassword(password, user.PasswordHash); err != nil {
		if errors.Is(err, ErrInvalidPassword) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, err
	}
	if !user.Activated {
		return "", nil, ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user, rememberMe)
	if err != nil {
		return "", nil, fmt.Errorf("failed to issue token: %w", err)
	}
	return token, user, nil
}

// HasUsers returns true if any accounts exist.
func (s *Service) HasUsers(ctx context.Context) (bool, error) {
	count, err := s.users.CountUsers(ctx)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// IsAuthEnabled returns true if API requests need a token.
func (s *Service) IsAuthEnabled() bool {
	return s.config.Mode == config.AuthModeJWT
}

// Tokens exposes the provider used to validate bearer tokens.
func (s *Service) Tokens() *TokenProvider {
	return s.tokens
}

func normalizeLogin(login string) string {
	return strings.ToLower(strings.TrimSpace(login))
}
