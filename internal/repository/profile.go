package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"loan4farm-api/internal/model"
)

const profileColumns = `id, name, location, method, identifier_hmac, identifier_enc,
		crop, loan_status, loan_amount, email, created_at, updated_at`

type ProfileRepository struct {
	db     *sql.DB
	logger *logrus.Logger
}

func NewProfileRepository(db *sql.DB, logger *logrus.Logger) *ProfileRepository {
	return &ProfileRepository{db: db, logger: logger}
}

func (r *ProfileRepository) Create(ctx context.Context, p *model.UserProfile) error {
	query := `
		INSERT INTO profiles (` + profileColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	_, err := r.db.ExecContext(
		ctx,
		query,
		p.ID,
		p.Name,
		p.Location,
		string(p.Method),
		p.IdentifierHMAC,
		p.IdentifierEnc,
		p.Crop,
		string(p.LoanStatus),
		p.LoanAmount,
		p.Email,
		p.CreatedAt,
		p.UpdatedAt,
	)

	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("profile for identifier: %w", ErrDuplicate)
		}
		return fmt.Errorf("failed to create profile: %w", err)
	}

	return nil
}

func (r *ProfileRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.UserProfile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE id = $1`
	return r.scanOne(r.db.QueryRowContext(ctx, query, id))
}

func (r *ProfileRepository) FindByIdentifierHMAC(ctx context.Context, digest string) (*model.UserProfile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE identifier_hmac = $1`
	return r.scanOne(r.db.QueryRowContext(ctx, query, digest))
}

// ListActiveLoans returns every profile with an active loan
func (r *ProfileRepository) ListActiveLoans(ctx context.Context) ([]model.UserProfile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE loan_status = $1 ORDER BY created_at`

	rows, err := r.db.QueryContext(ctx, query, string(model.LoanActive))
	if err != nil {
		return nil, fmt.Errorf("failed to list profiles: %w", err)
	}
	defer rows.Close()

	var profiles []model.UserProfile
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan profile: %w", err)
		}
		profiles = append(profiles, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate profiles: %w", err)
	}

	return profiles, nil
}

func (r *ProfileRepository) UpdateCrop(ctx context.Context, id uuid.UUID, crop string) error {
	return r.exec(ctx, "crop", `UPDATE profiles SET crop = $1, updated_at = $2 WHERE id = $3`, crop, time.Now().UTC(), id)
}

func (r *ProfileRepository) UpdateEmail(ctx context.Context, id uuid.UUID, email string) error {
	return r.exec(ctx, "email", `UPDATE profiles SET email = $1, updated_at = $2 WHERE id = $3`, email, time.Now().UTC(), id)
}

func (r *ProfileRepository) UpdateLoan(ctx context.Context, id uuid.UUID, status model.LoanStatus, amount float64) error {
	return r.exec(ctx, "loan",
		`UPDATE profiles SET loan_status = $1, loan_amount = $2, updated_at = $3 WHERE id = $4`,
		string(status), amount, time.Now().UTC(), id)
}

func (r *ProfileRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.exec(ctx, "delete", `DELETE FROM profiles WHERE id = $1`, id)
}

func (r *ProfileRepository) exec(ctx context.Context, op, query string, args ...any) error {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to %s profile: %w", op, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check %s result: %w", op, err)
	}
	if affected == 0 {
		r.logger.WithField("op", op).Debug("No profile row affected")
		return ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *ProfileRepository) scanOne(row *sql.Row) (*model.UserProfile, error) {
	p, err := scanProfile(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find profile: %w", err)
	}
	return p, nil
}

func scanProfile(s rowScanner) (*model.UserProfile, error) {
	var (
		p          model.UserProfile
		method     string
		loanStatus string
	)
	err := s.Scan(
		&p.ID,
		&p.Name,
		&p.Location,
		&method,
		&p.IdentifierHMAC,
		&p.IdentifierEnc,
		&p.Crop,
		&loanStatus,
		&p.LoanAmount,
		&p.Email,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	p.Method = model.LoginMethod(method)
	p.LoanStatus = model.LoanStatus(loanStatus)
	return &p, nil
}
