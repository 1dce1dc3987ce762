package repository

import (
	"context"

	"github.com/lakshmeeshman/SIH-2025/internal/domain"
)

// AccountRepository persists accounts and their profile documents.
type AccountRepository interface {
	CreateAccount(ctx context.Context, account *domain.Account) error
	GetAccountByEmail(ctx context.Context, email string) (*domain.Account, error)
	GetAccountByID(ctx context.Context, id string) (*domain.Account, error)
	// ReplaceProfile overwrites the whole profile document of one account.
	ReplaceProfile(ctx context.Context, accountID string, profile domain.Profile) error
	// DeleteStudentByID removes an account only when its role is student and
	// returns the deleted record. An admin id yields ErrNotFound.
	DeleteStudentByID(ctx context.Context, id string) (*domain.Account, error)
	ListStudents(ctx context.Context) ([]domain.StudentSummary, error)
}
