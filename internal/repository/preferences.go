package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// PreferenceRepository — пользовательские настройки (активный объект).
type PreferenceRepository interface {
	// GetActiveSite возвращает идентификатор активного объекта пользователя.
	// ErrNotFound — активный объект не выбран.
	GetActiveSite(ctx context.Context, userID string) (string, error)
	// SetActiveSite запоминает активный объект пользователя (upsert).
	SetActiveSite(ctx context.Context, userID, siteID string) error
}

// preferenceRepo — реализация PreferenceRepository.
type preferenceRepo struct {
	db DBTX
}

// NewPreferenceRepository создаёт репозиторий настроек.
func NewPreferenceRepository(db DBTX) PreferenceRepository {
	return &preferenceRepo{db: db}
}

func (r *preferenceRepo) GetActiveSite(ctx context.Context, userID string) (string, error) {
	var siteID string
	err := r.db.QueryRow(ctx,
		`SELECT site_id FROM user_site_preferences WHERE user_id = $1`,
		userID,
	).Scan(&siteID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("ошибка чтения активного объекта: %w", err)
	}
	return siteID, nil
}

func (r *preferenceRepo) SetActiveSite(ctx context.Context, userID, siteID string) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO user_site_preferences (user_id, site_id) VALUES ($1, $2)
		 ON CONFLICT (user_id) DO UPDATE SET site_id = EXCLUDED.site_id`,
		userID, siteID,
	)
	if err != nil {
		return fmt.Errorf("ошибка сохранения активного объекта: %w", err)
	}
	return nil
}
