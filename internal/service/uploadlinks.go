// uploadlinks.go — сервис ссылок для внешней загрузки накладных.
// Администратор выпускает временные (одноразовые, с истечением) и
// постоянные ссылки; внешние пользователи открывают их без входа.
package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/arturkryukov/stroysklad/internal/domain/model"
	"github.com/arturkryukov/stroysklad/internal/repository"
)

// UploadLinkService — сервис ссылок загрузки.
type UploadLinkService struct {
	linkRepo   repository.UploadLinkRepository
	defaultTTL time.Duration
	logger     *slog.Logger
}

// NewUploadLinkService создаёт сервис ссылок загрузки.
// defaultTTL — срок жизни временной ссылки, когда он не задан явно.
func NewUploadLinkService(linkRepo repository.UploadLinkRepository, defaultTTL time.Duration, logger *slog.Logger) *UploadLinkService {
	return &UploadLinkService{
		linkRepo:   linkRepo,
		defaultTTL: defaultTTL,
		logger:     logger.With(slog.String("component", "upload_link_service")),
	}
}

// UploadLinkInput — входные данные выпуска ссылки.
// ExpiresIn — срок жизни временной ссылки в минутах, текстом из формы;
// пустое или нечисловое значение даёт срок по умолчанию.
type UploadLinkInput struct {
	Type        string
	ExpiresIn   string
	Description string
}

// Issue выпускает новую ссылку загрузки.
func (s *UploadLinkService) Issue(ctx context.Context, actorID string, in UploadLinkInput) (*model.UploadLink, error) {
	if !model.ValidLinkType(in.Type) {
		return nil, fmt.Errorf("%w: недопустимый тип ссылки %q", ErrValidation, in.Type)
	}

	token, err := generateToken()
	if err != nil {
		return nil, fmt.Errorf("генерация токена: %w", err)
	}

	link := &model.UploadLink{
		Token:       token,
		Type:        in.Type,
		CreatedBy:   actorID,
		Active:      true,
		Description: strings.TrimSpace(in.Description),
	}

	if in.Type == model.LinkTypeTemporary {
		ttl := s.defaultTTL
		if minutes, convErr := strconv.Atoi(strings.TrimSpace(in.ExpiresIn)); convErr == nil && minutes > 0 {
			ttl = time.Duration(minutes) * time.Minute
		}
		expires := time.Now().Add(ttl).UTC()
		link.ExpiresAt = &expires
	}

	if err := s.linkRepo.Create(ctx, link); err != nil {
		return nil, fmt.Errorf("создание ссылки: %w", err)
	}

	s.logger.Info("Ссылка загрузки выпущена",
		slog.String("link_id", link.ID),
		slog.String("type", link.Type),
		slog.String("created_by", actorID),
	)

	return link, nil
}

// List возвращает все ссылки, новые первыми.
func (s *UploadLinkService) List(ctx context.Context) ([]*model.UploadLink, error) {
	links, err := s.linkRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("список ссылок: %w", err)
	}
	return links, nil
}

// Validate проверяет пригодность ссылки по токену.
// Возвращает ссылку либо одну из ошибок состояния:
// ErrNotFound, ErrLinkInactive, ErrLinkUsed, ErrLinkExpired.
func (s *UploadLinkService) Validate(ctx context.Context, token string) (*model.UploadLink, error) {
	link, err := s.linkRepo.GetByToken(ctx, token)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("чтение ссылки: %w", err)
	}

	if !link.Active {
		return nil, ErrLinkInactive
	}

	if link.Type == model.LinkTypeTemporary {
		if link.Used {
			return nil, ErrLinkUsed
		}
		if link.ExpiresAt != nil && time.Now().After(*link.ExpiresAt) {
			return nil, ErrLinkExpired
		}
	}

	return link, nil
}

// Redeem гасит временную ссылку после использования.
// Постоянные ссылки не гасятся: для них возвращается ErrNotFound.
func (s *UploadLinkService) Redeem(ctx context.Context, token string) error {
	if err := s.linkRepo.MarkUsed(ctx, token); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("гашение ссылки: %w", err)
	}

	s.logger.Info("Временная ссылка погашена", slog.String("token_prefix", tokenPrefix(token)))
	return nil
}

// Delete удаляет ссылку.
func (s *UploadLinkService) Delete(ctx context.Context, id string) error {
	if err := s.linkRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("удаление ссылки: %w", err)
	}
	return nil
}

// generateToken создаёт криптостойкий токен: 32 случайных байта в hex.
func generateToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

// tokenPrefix возвращает первые символы токена для логов.
func tokenPrefix(token string) string {
	if len(token) > 8 {
		return token[:8]
	}
	return token
}
