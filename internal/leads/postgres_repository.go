package leads

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// pgxDB is the subset of *pgxpool.Pool the repository needs, so pgxmock
// pools can stand in for it.
type pgxDB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresRepository stores submissions in the form_submissions table.
type PostgresRepository struct {
	db  pgxDB
	now func() time.Time
}

// NewPostgresRepository initializes a repo backed by a pgx pool.
func NewPostgresRepository(db pgxDB) *PostgresRepository {
	if db == nil {
		panic("leads: pgx pool required")
	}
	return &PostgresRepository{db: db, now: time.Now}
}

// WithClock overrides the time source used for CreatedAt.
func (r *PostgresRepository) WithClock(now func() time.Time) *PostgresRepository {
	if now != nil {
		r.now = now
	}
	return r
}

const selectColumns = "id, name, email, phone, city, project_type, message, consent, " +
	"utm_source, utm_medium, utm_campaign, utm_content, utm_term, status, created_at"

// Append inserts a new row.
func (r *PostgresRepository) Append(ctx context.Context, sub *Submission) (string, error) {
	id := uuid.New()
	createdAt := ToZone(r.now())
	status := sub.Status
	if status == "" {
		status = DefaultStatus
	}

	query := `
		INSERT INTO form_submissions (id, name, email, phone, city, project_type, message, consent,
			utm_source, utm_medium, utm_campaign, utm_content, utm_term, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`
	if _, err := r.db.Exec(ctx, query,
		id,
		sub.Name,
		sub.Email,
		sub.Phone,
		sub.City,
		string(sub.ProjectType),
		sub.Message,
		sub.Consent,
		sub.UTMSource,
		sub.UTMMedium,
		sub.UTMCampaign,
		sub.UTMContent,
		sub.UTMTerm,
		status,
		createdAt,
	); err != nil {
		return "", fmt.Errorf("%w: insert failed: %w", ErrStoreUnavailable, err)
	}

	sub.ID = id.String()
	sub.CreatedAt = createdAt
	sub.Status = status
	return sub.ID, nil
}

// List returns submissions ordered newest first.
func (r *PostgresRepository) List(ctx context.Context, filter ListFilter) ([]*Submission, error) {
	var (
		query strings.Builder
		args  []any
	)
	query.WriteString("SELECT " + selectColumns + " FROM form_submissions ORDER BY created_at DESC, id DESC")
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		fmt.Fprintf(&query, " LIMIT $%d", len(args))
	}
	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		fmt.Fprintf(&query, " OFFSET $%d", len(args))
	}

	rows, err := r.db.Query(ctx, query.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("%w: select failed: %w", ErrStoreUnavailable, err)
	}
	defer rows.Close()

	out := []*Submission{}
	for rows.Next() {
		sub, err := scanSubmission(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scan failed: %w", ErrStoreUnavailable, err)
		}
		out = append(out, sub)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: rows: %w", ErrStoreUnavailable, err)
	}
	return out, nil
}

// DeleteByEmail removes every row with the exact email.
func (r *PostgresRepository) DeleteByEmail(ctx context.Context, email string) (int64, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM form_submissions WHERE email = $1`, email)
	if err != nil {
		return 0, fmt.Errorf("%w: delete failed: %w", ErrStoreUnavailable, err)
	}
	return tag.RowsAffected(), nil
}

// UpdateStatus sets the status label of one submission.
func (r *PostgresRepository) UpdateStatus(ctx context.Context, id, status string) error {
	status = strings.TrimSpace(status)
	if status == "" {
		return ErrInvalidStatus
	}
	leadID, err := uuid.Parse(id)
	if err != nil {
		return ErrLeadNotFound
	}
	tag, err := r.db.Exec(ctx, `UPDATE form_submissions SET status = $1 WHERE id = $2`, status, leadID)
	if err != nil {
		return fmt.Errorf("%w: update failed: %w", ErrStoreUnavailable, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrLeadNotFound
	}
	return nil
}

func scanSubmission(row pgx.Row) (*Submission, error) {
	var (
		sub         Submission
		projectType string
		createdAt   time.Time
	)
	if err := row.Scan(
		&sub.ID,
		&sub.Name,
		&sub.Email,
		&sub.Phone,
		&sub.City,
		&projectType,
		&sub.Message,
		&sub.Consent,
		&sub.UTMSource,
		&sub.UTMMedium,
		&sub.UTMCampaign,
		&sub.UTMContent,
		&sub.UTMTerm,
		&sub.Status,
		&createdAt,
	); err != nil {
		return nil, err
	}
	sub.ProjectType = ProjectType(projectType)
	sub.CreatedAt = ToZone(createdAt)
	return &sub, nil
}

var _ Repository = (*PostgresRepository)(nil)
