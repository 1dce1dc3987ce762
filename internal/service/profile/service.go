package profile

import (
	"context"
	"errors"
	"fmt"

	"log/slog"

	"github.com/lakshmeeshman/SIH-2025/internal/domain"
	"github.com/lakshmeeshman/SIH-2025/internal/repository"
)

// Service reads and replaces account profile documents.
type Service struct {
	accounts repository.AccountRepository
	logger   *slog.Logger
}

// New constructs a Service.
func New(accounts repository.AccountRepository, logger *slog.Logger) Service {
	return Service{accounts: accounts, logger: logger}
}

// Get returns the account's current profile verbatim.
func (s Service) Get(ctx context.Context, account *domain.Account) (domain.Profile, error) {
	if account == nil {
		return domain.Profile{}, fmt.Errorf("account required")
	}
	stored, err := s.accounts.GetAccountByID(ctx, account.ID)
	if err != nil {
		return domain.Profile{}, err
	}
	profile := stored.Profile
	profile.Normalize()
	return profile, nil
}

// Replace validates the whole incoming document and, only when it is valid,
// overwrites the stored profile atomically. The previous document survives
// any validation failure untouched.
func (s Service) Replace(ctx context.Context, account *domain.Account, incoming domain.Profile) (domain.Profile, error) {
	if account == nil {
		return domain.Profile{}, fmt.Errorf("account required")
	}
	incoming.Normalize()
	if err := incoming.Validate(); err != nil {
		return domain.Profile{}, err
	}
	if err := s.accounts.ReplaceProfile(ctx, account.ID, incoming); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.Profile{}, err
		}
		return domain.Profile{}, fmt.Errorf("replace profile: %w", err)
	}
	s.logger.Info("profile replaced", "account_id", account.ID)
	return incoming, nil
}
