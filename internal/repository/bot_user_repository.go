package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/autoescuela/reservas-bot/internal/model"
)

type BotUserRepository struct {
	pool *pgxpool.Pool
}

func NewBotUserRepository(pool *pgxpool.Pool) *BotUserRepository {
	return &BotUserRepository{pool: pool}
}

// Create stores a newly linked account.
func (r *BotUserRepository) Create(ctx context.Context, user *model.BotUser) error {
	query := `
		INSERT INTO bot_users (telegram_id, username, first_name, role, backend_id, alumno_id, instructor_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, linked_at
	`

	err := r.pool.QueryRow(
		ctx, query,
		user.TelegramID,
		user.Username,
		user.FirstName,
		user.Role,
		user.BackendID,
		user.AlumnoID,
		user.InstructorID,
	).Scan(&user.ID, &user.LinkedAt)

	if err != nil {
		return fmt.Errorf("create bot user: %w", err)
	}

	return nil
}

// GetByTelegramID returns the linked account, or nil when the Telegram user
// has never linked.
func (r *BotUserRepository) GetByTelegramID(ctx context.Context, telegramID int64) (*model.BotUser, error) {
	query := `
		SELECT id, telegram_id, username, first_name, role, backend_id, alumno_id, instructor_id, linked_at
		FROM bot_users
		WHERE telegram_id = $1
	`

	var user model.BotUser
	err := r.pool.QueryRow(ctx, query, telegramID).Scan(
		&user.ID,
		&user.TelegramID,
		&user.Username,
		&user.FirstName,
		&user.Role,
		&user.BackendID,
		&user.AlumnoID,
		&user.InstructorID,
		&user.LinkedAt,
	)

	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get bot user by telegram id: %w", err)
	}

	return &user, nil
}

// UpdateIdentity refreshes the Telegram-side display fields on re-link.
func (r *BotUserRepository) UpdateIdentity(ctx context.Context, id int64, username, firstName string) error {
	query := `
		UPDATE bot_users
		SET username = $1, first_name = $2
		WHERE id = $3
	`

	if _, err := r.pool.Exec(ctx, query, username, firstName, id); err != nil {
		return fmt.Errorf("update bot user identity: %w", err)
	}
	return nil
}

// Delete unlinks a Telegram account.
func (r *BotUserRepository) Delete(ctx context.Context, telegramID int64) error {
	if _, err := r.pool.Exec(ctx, `DELETE FROM bot_users WHERE telegram_id = $1`, telegramID); err != nil {
		return fmt.Errorf("delete bot user: %w", err)
	}
	return nil
}
