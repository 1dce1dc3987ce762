package admin

import (
	"context"
	"errors"
	"net/mail"
	"strings"
	"time"

	"log/slog"

	"github.com/google/uuid"

	"github.com/lakshmeeshman/SIH-2025/internal/domain"
	"github.com/lakshmeeshman/SIH-2025/internal/repository"
	"github.com/lakshmeeshman/SIH-2025/pkg/config"
	"github.com/lakshmeeshman/SIH-2025/pkg/crypto"
)

const minPasswordLength = 6

// Service provisions and removes student accounts. Every operation here is
// admin-only; the transport invokes the authorization gate before dispatch.
type Service struct {
	accounts repository.AccountRepository
	logger   *slog.Logger
	cfg      config.APIConfig
}

// New constructs a Service.
func New(accounts repository.AccountRepository, logger *slog.Logger, cfg config.APIConfig) Service {
	return Service{accounts: accounts, logger: logger, cfg: cfg}
}

// CreateStudent provisions a new account. The role is always student no
// matter what the caller supplied, and the profile starts empty. A taken
// email yields repository.ErrConflict.
func (s Service) CreateStudent(ctx context.Context, email, password string) (*domain.Account, error) {
	if err := validateCredentials(email, password); err != nil {
		return nil, err
	}
	hash, err := crypto.HashPassword(password, s.cfg.BcryptCost)
	if err != nil {
		return nil, err
	}
	account := &domain.Account{
		ID:           uuid.NewString(),
		Email:        strings.TrimSpace(email),
		PasswordHash: hash,
		Role:         domain.RoleStudent,
		CreatedAt:    time.Now().UTC(),
	}
	account.Profile.Normalize()
	if err := s.accounts.CreateAccount(ctx, account); err != nil {
		return nil, err
	}
	s.logger.Info("student account created", "account_id", account.ID)
	return account, nil
}

// DeleteStudent removes a student account immediately and irreversibly. An
// unknown id or an admin id both surface as repository.ErrNotFound.
func (s Service) DeleteStudent(ctx context.Context, id string) (*domain.Account, error) {
	if strings.TrimSpace(id) == "" {
		return nil, repository.ErrNotFound
	}
	account, err := s.accounts.DeleteStudentByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s.logger.Info("student account deleted", "account_id", account.ID)
	return account, nil
}

// ListStudents returns student accounts ordered by creation time.
func (s Service) ListStudents(ctx context.Context) ([]domain.StudentSummary, error) {
	return s.accounts.ListStudents(ctx)
}

// EnsureAccount creates an account with an explicit role when the email is
// not yet taken. It backs the seeding command and is the only path that may
// create an admin.
func (s Service) EnsureAccount(ctx context.Context, email, password string, role domain.Role) (*domain.Account, bool, error) {
	if !role.Valid() {
		return nil, false, errors.New("invalid role")
	}
	if err := validateCredentials(email, password); err != nil {
		return nil, false, err
	}
	existing, err := s.accounts.GetAccountByEmail(ctx, email)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, false, err
	}
	hash, err := crypto.HashPassword(password, s.cfg.BcryptCost)
	if err != nil {
		return nil, false, err
	}
	account := &domain.Account{
		ID:           uuid.NewString(),
		Email:        strings.TrimSpace(email),
		PasswordHash: hash,
		Role:         role,
		CreatedAt:    time.Now().UTC(),
	}
	account.Profile.Normalize()
	if err := s.accounts.CreateAccount(ctx, account); err != nil {
		return nil, false, err
	}
	s.logger.Info("account seeded", "account_id", account.ID, "role", role)
	return account, true, nil
}

func validateCredentials(email, password string) error {
	var verr domain.ValidationError
	trimmed := strings.TrimSpace(email)
	if trimmed == "" {
		verr.Add("email", "must not be empty")
	} else if _, err := mail.ParseAddress(trimmed); err != nil {
		verr.Add("email", "must be a valid email address")
	}
	if len(password) < minPasswordLength {
		verr.Add("password", "must be at least 6 characters")
	}
	if len(verr.Fields) > 0 {
		return &verr
	}
	return nil
}
