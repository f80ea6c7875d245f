package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/autoescuela/reservas-bot/internal/model"
)

type LinkCodeRepository struct {
	pool *pgxpool.Pool
}

func NewLinkCodeRepository(pool *pgxpool.Pool) *LinkCodeRepository {
	return &LinkCodeRepository{pool: pool}
}

// Create stores a freshly issued link code.
func (r *LinkCodeRepository) Create(ctx context.Context, code *model.LinkCode) error {
	query := `
		INSERT INTO link_codes (code, role, backend_id, alumno_id, instructor_id, created_by)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`

	err := r.pool.QueryRow(
		ctx, query,
		code.Code,
		code.Role,
		code.BackendID,
		code.AlumnoID,
		code.InstructorID,
		code.CreatedBy,
	).Scan(&code.ID, &code.CreatedAt)

	if err != nil {
		return fmt.Errorf("create link code: %w", err)
	}

	return nil
}

// GetByCode returns the code record, or nil when unknown.
func (r *LinkCodeRepository) GetByCode(ctx context.Context, code string) (*model.LinkCode, error) {
	query := `
		SELECT id, code, role, backend_id, alumno_id, instructor_id, created_by, used_by, created_at, used_at
		FROM link_codes
		WHERE code = $1
	`

	var lc model.LinkCode
	err := r.pool.QueryRow(ctx, query, code).Scan(
		&lc.ID,
		&lc.Code,
		&lc.Role,
		&lc.BackendID,
		&lc.AlumnoID,
		&lc.InstructorID,
		&lc.CreatedBy,
		&lc.UsedBy,
		&lc.CreatedAt,
		&lc.UsedAt,
	)

	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get link code: %w", err)
	}

	return &lc, nil
}

// MarkUsed burns the code atomically; returns false when it was already
// redeemed by a concurrent /vincular.
func (r *LinkCodeRepository) MarkUsed(ctx context.Context, codeID, botUserID int64) (bool, error) {
	query := `
		UPDATE link_codes
		SET used_by = $1, used_at = now()
		WHERE id = $2 AND used_by IS NULL
	`

	tag, err := r.pool.Exec(ctx, query, botUserID, codeID)
	if err != nil {
		return false, fmt.Errorf("mark link code used: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}
