// auth.go — сервис аутентификации.
// Делегирует проверку учётных данных провайдеру идентификации и ведёт
// профили пользователей (user_profiles) с ролью.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/arturkryukov/stroysklad/internal/domain/model"
	"github.com/arturkryukov/stroysklad/internal/domain/rbac"
	"github.com/arturkryukov/stroysklad/internal/identity"
	"github.com/arturkryukov/stroysklad/internal/repository"
	"github.com/arturkryukov/stroysklad/internal/session"
)

// ErrInvalidCredentials — неверный email или пароль.
var ErrInvalidCredentials = errors.New("неверный email или пароль")

// AuthService — сервис аутентификации.
type AuthService struct {
	idp         *identity.Client
	profileRepo repository.UserProfileRepository
	logger      *slog.Logger
}

// NewAuthService создаёт сервис аутентификации.
func NewAuthService(idp *identity.Client, profileRepo repository.UserProfileRepository, logger *slog.Logger) *AuthService {
	return &AuthService{
		idp:         idp,
		profileRepo: profileRepo,
		logger:      logger.With(slog.String("component", "auth_service")),
	}
}

// Login выполняет вход и возвращает данные новой сессии.
// Роль берётся из профиля пользователя; при отсутствии профиля —
// из метаданных провайдера.
func (s *AuthService) Login(ctx context.Context, email, password string) (*session.Data, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, fmt.Errorf("%w: email обязателен", ErrValidation)
	}
	if password == "" {
		return nil, fmt.Errorf("%w: пароль обязателен", ErrValidation)
	}

	token, err := s.idp.SignIn(ctx, email, password)
	if err != nil {
		switch {
		case errors.Is(err, identity.ErrUnavailable):
			return nil, ErrIDPUnavailable
		case errors.Is(err, identity.ErrInvalidCredentials):
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("вход: %w", err)
	}

	role := token.User.Role()
	if profile, pErr := s.profileRepo.GetByUserID(ctx, token.User.ID); pErr == nil {
		role = profile.Role
	}

	s.logger.Info("Пользователь вошёл",
		slog.String("user_id", token.User.ID),
		slog.String("role", role),
	)

	return &session.Data{
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		UserID:       token.User.ID,
		Email:        token.User.Email,
		Role:         role,
	}, nil
}

// Signup регистрирует пользователя у провайдера и создаёт профиль с ролью.
func (s *AuthService) Signup(ctx context.Context, fullName, email, password, role string) (*session.Data, error) {
	fullName = strings.TrimSpace(fullName)
	email = strings.TrimSpace(email)
	if fullName == "" {
		return nil, fmt.Errorf("%w: имя обязательно", ErrValidation)
	}
	if email == "" {
		return nil, fmt.Errorf("%w: email обязателен", ErrValidation)
	}
	if len(password) < 6 {
		return nil, fmt.Errorf("%w: пароль короче 6 символов", ErrValidation)
	}
	if !rbac.IsValidRole(role) {
		return nil, ErrInvalidRole
	}

	token, err := s.idp.SignUp(ctx, email, password, fullName, role)
	if err != nil {
		switch {
		case errors.Is(err, identity.ErrUnavailable):
			return nil, ErrIDPUnavailable
		case errors.Is(err, identity.ErrUserExists):
			return nil, fmt.Errorf("%w: пользователь с таким email уже зарегистрирован", ErrConflict)
		}
		return nil, fmt.Errorf("регистрация: %w", err)
	}

	profile := &model.UserProfile{
		UserID:   token.User.ID,
		FullName: fullName,
		Role:     role,
		Email:    email,
	}
	if err := s.profileRepo.Create(ctx, profile); err != nil && !errors.Is(err, repository.ErrConflict) {
		return nil, fmt.Errorf("создание профиля: %w", err)
	}

	s.logger.Info("Пользователь зарегистрирован",
		slog.String("user_id", token.User.ID),
		slog.String("role", role),
	)

	return &session.Data{
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		UserID:       token.User.ID,
		Email:        email,
		Role:         role,
	}, nil
}

// Logout аннулирует сессию у провайдера. Недоступность провайдера
// не мешает выходу: локальная сессия в любом случае уничтожается.
func (s *AuthService) Logout(ctx context.Context, accessToken string) {
	if accessToken == "" {
		return
	}
	if err := s.idp.SignOut(ctx, accessToken); err != nil {
		s.logger.Warn("Не удалось аннулировать сессию у провайдера",
			slog.String("error", err.Error()),
		)
	}
}

// Profile возвращает профиль пользователя.
func (s *AuthService) Profile(ctx context.Context, userID string) (*model.UserProfile, error) {
	profile, err := s.profileRepo.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("чтение профиля: %w", err)
	}
	return profile, nil
}
