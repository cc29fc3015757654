package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// SiteAccessRepository — гранты доступа пользователей к объектам.
type SiteAccessRepository interface {
	// HasAccess проверяет наличие гранта (user, site).
	// Возвращает ErrNotFound если гранта нет; прочие ошибки — сбой хранилища.
	HasAccess(ctx context.Context, userID, siteID string) error
	// Grant создаёт грант (идемпотентно).
	Grant(ctx context.Context, userID, siteID string) error
	// Revoke удаляет грант.
	Revoke(ctx context.Context, userID, siteID string) error
}

// siteAccessRepo — реализация SiteAccessRepository.
type siteAccessRepo struct {
	db DBTX
}

// NewSiteAccessRepository создаёт репозиторий грантов доступа.
func NewSiteAccessRepository(db DBTX) SiteAccessRepository {
	return &siteAccessRepo{db: db}
}

func (r *siteAccessRepo) HasAccess(ctx context.Context, userID, siteID string) error {
	var one int
	err := r.db.QueryRow(ctx,
		`SELECT 1 FROM site_access WHERE user_id = $1 AND site_id = $2`,
		userID, siteID,
	).Scan(&one)
	if err != nil {
		if err == pgx.ErrNoRows {
			return ErrNotFound
		}
		return fmt.Errorf("ошибка проверки доступа к объекту: %w", err)
	}
	return nil
}

func (r *siteAccessRepo) Grant(ctx context.Context, userID, siteID string) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO site_access (user_id, site_id) VALUES ($1, $2)
		 ON CONFLICT (user_id, site_id) DO NOTHING`,
		userID, siteID,
	)
	if err != nil {
		return fmt.Errorf("ошибка выдачи доступа к объекту: %w", err)
	}
	return nil
}

func (r *siteAccessRepo) Revoke(ctx context.Context, userID, siteID string) error {
	tag, err := r.db.Exec(ctx,
		`DELETE FROM site_access WHERE user_id = $1 AND site_id = $2`,
		userID, siteID,
	)
	if err != nil {
		return fmt.Errorf("ошибка отзыва доступа к объекту: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
