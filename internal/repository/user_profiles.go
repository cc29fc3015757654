package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/arturkryukov/stroysklad/internal/domain/model"
)

// UserProfileRepository — доступ к профилям пользователей.
type UserProfileRepository interface {
	// Create создаёт профиль (при регистрации).
	Create(ctx context.Context, p *model.UserProfile) error
	// GetByUserID возвращает профиль по идентификатору пользователя.
	GetByUserID(ctx context.Context, userID string) (*model.UserProfile, error)
}

// userProfileRepo — реализация UserProfileRepository.
type userProfileRepo struct {
	db DBTX
}

// NewUserProfileRepository создаёт репозиторий профилей.
func NewUserProfileRepository(db DBTX) UserProfileRepository {
	return &userProfileRepo{db: db}
}

func (r *userProfileRepo) Create(ctx context.Context, p *model.UserProfile) error {
	query := `
		INSERT INTO user_profiles (user_id, full_name, role, email)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at`

	err := r.db.QueryRow(ctx, query,
		p.UserID, p.FullName, p.Role, p.Email,
	).Scan(&p.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: профиль пользователя уже существует", ErrConflict)
		}
		return fmt.Errorf("ошибка создания профиля: %w", err)
	}
	return nil
}

func (r *userProfileRepo) GetByUserID(ctx context.Context, userID string) (*model.UserProfile, error) {
	query := `
		SELECT user_id, full_name, role, email, created_at
		FROM user_profiles
		WHERE user_id = $1`

	p := &model.UserProfile{}
	err := r.db.QueryRow(ctx, query, userID).Scan(
		&p.UserID, &p.FullName, &p.Role, &p.Email, &p.CreatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("ошибка получения профиля: %w", err)
	}
	return p, nil
}
