package admin

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"log/slog"

	"github.com/lakshmeeshman/SIH-2025/internal/domain"
	"github.com/lakshmeeshman/SIH-2025/internal/repository"
	"github.com/lakshmeeshman/SIH-2025/pkg/config"
	"github.com/lakshmeeshman/SIH-2025/pkg/crypto"
	"golang.org/x/crypto/bcrypt"
)

type stubAccounts struct {
	accounts map[string]*domain.Account // keyed by email
}

func newStub() *stubAccounts {
	return &stubAccounts{accounts: make(map[string]*domain.Account)}
}

func (s *stubAccounts) CreateAccount(ctx context.Context, account *domain.Account) error {
	if _, ok := s.accounts[account.Email]; ok {
		return repository.ErrConflict
	}
	s.accounts[account.Email] = account
	return nil
}

func (s *stubAccounts) GetAccountByEmail(ctx context.Context, email string) (*domain.Account, error) {
	if account, ok := s.accounts[email]; ok {
		return account, nil
	}
	return nil, repository.ErrNotFound
}

func (s *stubAccounts) GetAccountByID(ctx context.Context, id string) (*domain.Account, error) {
	for _, account := range s.accounts {
		if account.ID == id {
			return account, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (s *stubAccounts) ReplaceProfile(ctx context.Context, accountID string, profile domain.Profile) error {
	return nil
}

func (s *stubAccounts) DeleteStudentByID(ctx context.Context, id string) (*domain.Account, error) {
	for email, account := range s.accounts {
		if account.ID == id && account.Role == domain.RoleStudent {
			delete(s.accounts, email)
			return account, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (s *stubAccounts) ListStudents(ctx context.Context) ([]domain.StudentSummary, error) {
	students := make([]domain.StudentSummary, 0)
	for _, account := range s.accounts {
		if account.Role == domain.RoleStudent {
			students = append(students, domain.StudentSummary{ID: account.ID, Email: account.Email, CreatedAt: account.CreatedAt})
		}
	}
	return students, nil
}

func newService() (Service, *stubAccounts) {
	repo := newStub()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(repo, log, config.APIConfig{BcryptCost: bcrypt.MinCost}), repo
}

func TestCreateStudentForcesStudentRole(t *testing.T) {
	svc, _ := newService()
	account, err := svc.CreateStudent(context.Background(), "a@b.com", "secret1")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if account.Role != domain.RoleStudent {
		t.Fatalf("expected student role, got %s", account.Role)
	}
	if account.ID == "" || account.CreatedAt.IsZero() {
		t.Fatalf("expected id and created_at set: %+v", account)
	}
	if len(account.Profile.Skills) != 0 || len(account.Profile.Projects) != 0 {
		t.Fatalf("expected empty profile, got %+v", account.Profile)
	}
	if err := crypto.ComparePassword(account.PasswordHash, "secret1"); err != nil {
		t.Fatalf("stored hash does not match password: %v", err)
	}
}

func TestCreateStudentDuplicateEmailConflicts(t *testing.T) {
	svc, repo := newService()
	if _, err := svc.CreateStudent(context.Background(), "a@b.com", "secret1"); err != nil {
		t.Fatalf("first create: %v", err)
	}
	if _, err := svc.CreateStudent(context.Background(), "a@b.com", "secret2"); !errors.Is(err, repository.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
	if len(repo.accounts) != 1 {
		t.Fatalf("expected account count unchanged, got %d", len(repo.accounts))
	}
}

func TestCreateStudentRejectsShortPassword(t *testing.T) {
	svc, repo := newService()
	_, err := svc.CreateStudent(context.Background(), "a@b.com", "12345")
	var verr *domain.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if len(repo.accounts) != 0 {
		t.Fatalf("expected nothing persisted")
	}
}

func TestCreateStudentRejectsBadEmail(t *testing.T) {
	svc, _ := newService()
	if _, err := svc.CreateStudent(context.Background(), "not-an-email", "secret1"); err == nil {
		t.Fatalf("expected validation failure for bad email")
	}
}

func TestDeleteStudentNeverDeletesAdmin(t *testing.T) {
	svc, repo := newService()
	repo.accounts["admin@example.com"] = &domain.Account{ID: "admin-1", Email: "admin@example.com", Role: domain.RoleAdmin}

	if _, err := svc.DeleteStudent(context.Background(), "admin-1"); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for admin id, got %v", err)
	}
	if _, ok := repo.accounts["admin@example.com"]; !ok {
		t.Fatalf("admin account must survive")
	}
}

func TestDeleteStudentRemovesAccount(t *testing.T) {
	svc, repo := newService()
	created, err := svc.CreateStudent(context.Background(), "a@b.com", "secret1")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	deleted, err := svc.DeleteStudent(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if deleted.Email != "a@b.com" {
		t.Fatalf("unexpected deleted account: %+v", deleted)
	}
	if len(repo.accounts) != 0 {
		t.Fatalf("expected account removed")
	}
}

func TestDeleteStudentUnknownID(t *testing.T) {
	svc, _ := newService()
	if _, err := svc.DeleteStudent(context.Background(), "missing"); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestListStudentsExcludesAdmins(t *testing.T) {
	svc, repo := newService()
	repo.accounts["admin@example.com"] = &domain.Account{ID: "admin-1", Email: "admin@example.com", Role: domain.RoleAdmin, CreatedAt: time.Now()}
	if _, err := svc.CreateStudent(context.Background(), "a@b.com", "secret1"); err != nil {
		t.Fatalf("create: %v", err)
	}

	students, err := svc.ListStudents(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(students) != 1 || students[0].Email != "a@b.com" {
		t.Fatalf("unexpected listing: %+v", students)
	}
}

func TestEnsureAccountIsIdempotent(t *testing.T) {
	svc, _ := newService()
	first, created, err := svc.EnsureAccount(context.Background(), "admin@example.com", "admin123", domain.RoleAdmin)
	if err != nil || !created {
		t.Fatalf("expected fresh admin created, err=%v created=%v", err, created)
	}
	if first.Role != domain.RoleAdmin {
		t.Fatalf("expected admin role, got %s", first.Role)
	}
	second, created, err := svc.EnsureAccount(context.Background(), "admin@example.com", "admin123", domain.RoleAdmin)
	if err != nil || created {
		t.Fatalf("expected existing account reused, err=%v created=%v", err, created)
	}
	if second.ID != first.ID {
		t.Fatalf("expected same account, got %s vs %s", second.ID, first.ID)
	}
}
