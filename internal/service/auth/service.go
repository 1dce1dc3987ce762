package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"log/slog"

	"github.com/lakshmeeshman/SIH-2025/internal/domain"
	"github.com/lakshmeeshman/SIH-2025/internal/repository"
	"github.com/lakshmeeshman/SIH-2025/pkg/config"
	"github.com/lakshmeeshman/SIH-2025/pkg/crypto"
	jwtpkg "github.com/lakshmeeshman/SIH-2025/pkg/jwt"
)

var (
	// ErrInvalidCredentials covers both unknown email and wrong password so
	// login failures are indistinguishable to the caller.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrTokenRequired indicates a protected request arrived without a token.
	ErrTokenRequired = errors.New("bearer token required")
	// ErrForbidden indicates the account's role is not in the allowed set.
	ErrForbidden = errors.New("insufficient role")
)

// Service authenticates accounts and enforces role membership.
type Service struct {
	accounts repository.AccountRepository
	logger   *slog.Logger
	cfg      config.APIConfig
}

// New constructs a Service.
func New(accounts repository.AccountRepository, logger *slog.Logger, cfg config.APIConfig) Service {
	return Service{accounts: accounts, logger: logger, cfg: cfg}
}

// Login verifies the email/password pair and returns the account plus a
// signed access token.
func (s Service) Login(ctx context.Context, email, password string) (*domain.Account, string, error) {
	account, err := s.accounts.GetAccountByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", err
	}
	if err := crypto.ComparePassword(account.PasswordHash, password); err != nil {
		return nil, "", ErrInvalidCredentials
	}
	token, err := jwtpkg.Issue(account.Email, s.cfg.JWTSecret, s.cfg.AccessTokenTTL)
	if err != nil {
		return nil, "", err
	}
	s.logger.Info("account logged in", "account_id", account.ID, "role", account.Role)
	return account, token, nil
}

// Authorize validates a bearer token and loads the account it asserts. A
// token whose subject no longer exists fails here, so deleting an account
// immediately invalidates its outstanding tokens.
func (s Service) Authorize(ctx context.Context, token string) (*domain.Account, error) {
	trimmed := strings.TrimSpace(token)
	if trimmed == "" {
		return nil, ErrTokenRequired
	}
	subject, err := jwtpkg.Parse(trimmed, s.cfg.JWTSecret)
	if err != nil {
		return nil, err
	}
	account, err := s.accounts.GetAccountByEmail(ctx, subject)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("no account for token subject: %w", repository.ErrNotFound)
		}
		return nil, err
	}
	return account, nil
}

// RequireRole fails closed unless the account's role is one of the allowed
// roles. Callers must authenticate first; this only decides authorization.
func (s Service) RequireRole(account *domain.Account, allowed ...domain.Role) error {
	if account == nil {
		return ErrForbidden
	}
	for _, role := range allowed {
		if account.Role == role {
			return nil
		}
	}
	return ErrForbidden
}
