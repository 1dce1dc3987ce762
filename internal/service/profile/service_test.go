package profile

import (
	"context"
	"errors"
	"fmt"
	"io"
	"reflect"
	"testing"

	"log/slog"

	"github.com/lakshmeeshman/SIH-2025/internal/domain"
	"github.com/lakshmeeshman/SIH-2025/internal/repository"
)

type stubAccounts struct {
	stored       map[string]domain.Profile
	replaceCalls int
}

func (s *stubAccounts) CreateAccount(ctx context.Context, account *domain.Account) error {
	return nil
}

func (s *stubAccounts) GetAccountByEmail(ctx context.Context, email string) (*domain.Account, error) {
	return nil, repository.ErrNotFound
}

func (s *stubAccounts) GetAccountByID(ctx context.Context, id string) (*domain.Account, error) {
	profile, ok := s.stored[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &domain.Account{ID: id, Email: "s@x.com", Role: domain.RoleStudent, Profile: profile}, nil
}

func (s *stubAccounts) ReplaceProfile(ctx context.Context, accountID string, profile domain.Profile) error {
	if _, ok := s.stored[accountID]; !ok {
		return repository.ErrNotFound
	}
	s.replaceCalls++
	s.stored[accountID] = profile
	return nil
}

func (s *stubAccounts) DeleteStudentByID(ctx context.Context, id string) (*domain.Account, error) {
	return nil, repository.ErrNotFound
}

func (s *stubAccounts) ListStudents(ctx context.Context) ([]domain.StudentSummary, error) {
	return nil, nil
}

func newService() (Service, *stubAccounts) {
	repo := &stubAccounts{stored: map[string]domain.Profile{"acc-1": {}}}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(repo, log), repo
}

func student() *domain.Account {
	return &domain.Account{ID: "acc-1", Email: "s@x.com", Role: domain.RoleStudent}
}

func TestGetReturnsEmptyProfileByDefault(t *testing.T) {
	svc, _ := newService()
	profile, err := svc.Get(context.Background(), student())
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(profile.Skills) != 0 || len(profile.Projects) != 0 || len(profile.Experience) != 0 {
		t.Fatalf("expected empty profile, got %+v", profile)
	}
	if profile.Skills == nil {
		t.Fatalf("expected normalized skills slice")
	}
}

func TestReplaceIsFullDocumentNotMerge(t *testing.T) {
	svc, repo := newService()
	first := domain.Profile{Name: "John Doe", Skills: []string{"Python", "SQL"}}
	if _, err := svc.Replace(context.Background(), student(), first); err != nil {
		t.Fatalf("replace: %v", err)
	}

	second := domain.Profile{Skills: []string{"Go"}}
	stored, err := svc.Replace(context.Background(), student(), second)
	if err != nil {
		t.Fatalf("replace: %v", err)
	}
	if stored.Name != "" {
		t.Fatalf("expected name cleared by full replace, got %q", stored.Name)
	}
	if !reflect.DeepEqual(stored.Skills, []string{"Go"}) {
		t.Fatalf("unexpected skills: %+v", stored.Skills)
	}
	got, err := svc.Get(context.Background(), student())
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !reflect.DeepEqual(got, stored) {
		t.Fatalf("stored document mismatch: %+v vs %+v", got, stored)
	}
	if repo.replaceCalls != 2 {
		t.Fatalf("expected 2 writes, got %d", repo.replaceCalls)
	}
}

func TestReplaceIsIdempotent(t *testing.T) {
	svc, _ := newService()
	doc := domain.Profile{Skills: []string{"Go"}, Projects: []domain.Project{{Title: "t", Description: "d"}}}
	first, err := svc.Replace(context.Background(), student(), doc)
	if err != nil {
		t.Fatalf("replace: %v", err)
	}
	second, err := svc.Replace(context.Background(), student(), doc)
	if err != nil {
		t.Fatalf("replace: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("expected identical stored state, got %+v vs %+v", first, second)
	}
}

func TestReplaceSkillsBoundary(t *testing.T) {
	svc, repo := newService()
	skills := func(n int) []string {
		out := make([]string, n)
		for i := range out {
			out[i] = fmt.Sprintf("skill-%d", i)
		}
		return out
	}

	if _, err := svc.Replace(context.Background(), student(), domain.Profile{Skills: skills(20)}); err != nil {
		t.Fatalf("expected 20 skills accepted, got %v", err)
	}

	_, err := svc.Replace(context.Background(), student(), domain.Profile{Skills: skills(21)})
	var verr *domain.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError for 21 skills, got %v", err)
	}
	if repo.replaceCalls != 1 {
		t.Fatalf("expected rejected document to never reach storage, writes=%d", repo.replaceCalls)
	}
	if got := repo.stored["acc-1"]; len(got.Skills) != 20 {
		t.Fatalf("expected prior document intact, got %d skills", len(got.Skills))
	}
}

func TestReplaceValidatesBeforeWrite(t *testing.T) {
	svc, repo := newService()
	bad := domain.Profile{Projects: []domain.Project{{Title: "", Description: ""}}}
	if _, err := svc.Replace(context.Background(), student(), bad); err == nil {
		t.Fatalf("expected validation failure")
	}
	if repo.replaceCalls != 0 {
		t.Fatalf("expected no storage writes, got %d", repo.replaceCalls)
	}
}
