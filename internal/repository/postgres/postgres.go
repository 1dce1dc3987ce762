package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lakshmeeshman/SIH-2025/internal/domain"
	"github.com/lakshmeeshman/SIH-2025/internal/repository"
)

// Repository implements persistence interfaces on PostgreSQL. Profiles are
// stored as a JSONB document on the accounts row, not normalized.
type Repository struct {
	pool *pgxpool.Pool
}

// New constructs a Repository.
func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

var _ repository.AccountRepository = (*Repository)(nil)

const accountColumns = `id, email, password_hash, role, profile, created_at`

// CreateAccount inserts an account inside its own transaction. A duplicate
// email maps to ErrConflict.
func (r *Repository) CreateAccount(ctx context.Context, account *domain.Account) error {
	if account == nil {
		return fmt.Errorf("account required")
	}
	profileJSON, err := json.Marshal(account.Profile)
	if err != nil {
		return fmt.Errorf("encode profile: %w", err)
	}

	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	const query = `INSERT INTO accounts (id, email, password_hash, role, profile, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`
	if _, err := tx.Exec(ctx, query,
		account.ID,
		account.Email,
		account.PasswordHash,
		string(account.Role),
		profileJSON,
		account.CreatedAt,
	); err != nil {
		return mapPgError(err)
	}
	return tx.Commit(ctx)
}

// GetAccountByEmail fetches an account by its email.
func (r *Repository) GetAccountByEmail(ctx context.Context, email string) (*domain.Account, error) {
	const query = `SELECT ` + accountColumns + ` FROM accounts WHERE email = $1`
	return r.scanAccount(r.pool.QueryRow(ctx, query, email))
}

// GetAccountByID fetches an account by identifier.
func (r *Repository) GetAccountByID(ctx context.Context, id string) (*domain.Account, error) {
	const query = `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1`
	return r.scanAccount(r.pool.QueryRow(ctx, query, id))
}

// ReplaceProfile overwrites the whole profile document of one account in a
// transaction. Concurrent readers see either the old or the new document.
func (r *Repository) ReplaceProfile(ctx context.Context, accountID string, profile domain.Profile) error {
	profileJSON, err := json.Marshal(profile)
	if err != nil {
		return fmt.Errorf("encode profile: %w", err)
	}

	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	const query = `UPDATE accounts SET profile = $2 WHERE id = $1`
	tag, err := tx.Exec(ctx, query, accountID, profileJSON)
	if err != nil {
		return mapPgError(err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return tx.Commit(ctx)
}

// DeleteStudentByID hard-deletes a student account and returns the removed
// record. The role filter lives in the SQL so an admin id can never match.
func (r *Repository) DeleteStudentByID(ctx context.Context, id string) (*domain.Account, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	const query = `DELETE FROM accounts WHERE id = $1 AND role = 'student'
		RETURNING ` + accountColumns
	account, err := r.scanAccount(tx.QueryRow(ctx, query, id))
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return account, nil
}

// ListStudents returns student accounts ordered by creation time. Password
// hashes and profiles are never selected.
func (r *Repository) ListStudents(ctx context.Context) ([]domain.StudentSummary, error) {
	const query = `SELECT id, email, created_at FROM accounts
		WHERE role = 'student'
		ORDER BY created_at ASC`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	students := make([]domain.StudentSummary, 0)
	for rows.Next() {
		var s domain.StudentSummary
		if err := rows.Scan(&s.ID, &s.Email, &s.CreatedAt); err != nil {
			return nil, err
		}
		students = append(students, s)
	}
	return students, rows.Err()
}

// Ping checks database connectivity.
func (r *Repository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

func (r *Repository) scanAccount(row pgx.Row) (*domain.Account, error) {
	var (
		a           domain.Account
		role        string
		profileJSON []byte
	)
	if err := row.Scan(&a.ID, &a.Email, &a.PasswordHash, &role, &profileJSON, &a.CreatedAt); err != nil {
		return nil, mapPgError(err)
	}
	parsedRole, err := domain.ParseRole(role)
	if err != nil {
		return nil, fmt.Errorf("stored role invalid: %w", err)
	}
	a.Role = parsedRole
	if len(profileJSON) > 0 {
		if err := json.Unmarshal(profileJSON, &a.Profile); err != nil {
			return nil, fmt.Errorf("decode profile: %w", err)
		}
	}
	a.Profile.Normalize()
	return &a, nil
}

// mapPgError translates driver errors into repository sentinels. 23505 is
// unique_violation, 22P02 covers non-uuid identifiers in lookups.
func mapPgError(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return repository.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505":
			return repository.ErrConflict
		case "22P02":
			return repository.ErrNotFound
		}
	}
	return err
}
