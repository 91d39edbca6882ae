package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Freeeeeet/tutoring_bot/internal/model"
)

// SessionRepository хранит токены в PostgreSQL (таблица sessions)
type SessionRepository struct {
	pool *pgxpool.Pool
}

func NewSessionRepository(pool *pgxpool.Pool) *SessionRepository {
	return &SessionRepository{pool: pool}
}

// Ping для /health
func (r *SessionRepository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

const sessionColumns = `telegram_id, chat_id, email, access_token, refresh_token, created_at, updated_at`

func scanSession(row pgx.Row) (*model.Session, error) {
	var s model.Session
	err := row.Scan(
		&s.TelegramID,
		&s.ChatID,
		&s.Email,
		&s.AccessToken,
		&s.RefreshToken,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// Get возвращает сессию или nil, если пользователь не входил
func (r *SessionRepository) Get(ctx context.Context, telegramID int64) (*model.Session, error) {
	query := `SELECT ` + sessionColumns + ` FROM sessions WHERE telegram_id = $1`

	s, err := scanSession(r.pool.QueryRow(ctx, query, telegramID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get session: %w", err)
	}
	return s, nil
}

// Save upsert по telegram_id; created_at сохраняется от первого входа
func (r *SessionRepository) Save(ctx context.Context, s *model.Session) error {
	query := `
		INSERT INTO sessions (telegram_id, chat_id, email, access_token, refresh_token, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (telegram_id) DO UPDATE SET
			chat_id = EXCLUDED.chat_id,
			email = EXCLUDED.email,
			access_token = EXCLUDED.access_token,
			refresh_token = EXCLUDED.refresh_token,
			updated_at = EXCLUDED.updated_at
	`

	_, err := r.pool.Exec(ctx, query,
		s.TelegramID,
		s.ChatID,
		s.Email,
		s.AccessToken,
		s.RefreshToken,
		s.CreatedAt,
		s.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

func (r *SessionRepository) Delete(ctx context.Context, telegramID int64) error {
	if _, err := r.pool.Exec(ctx, `DELETE FROM sessions WHERE telegram_id = $1`, telegramID); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// List все сессии, свежие первыми
func (r *SessionRepository) List(ctx context.Context) ([]model.Session, error) {
	query := `SELECT ` + sessionColumns + ` FROM sessions ORDER BY updated_at DESC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var sessions []model.Session
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		sessions = append(sessions, *s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sessions: %w", err)
	}
	return sessions, nil
}
