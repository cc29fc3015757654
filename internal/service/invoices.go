// invoices.go — сервис приёма накладных.
// Фотография накладной сохраняется во временный файл, пересылается
// сервису распознавания и удаляется; распознанные данные попадают
// в pending_invoices до подтверждения пользователем.
package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/arturkryukov/stroysklad/internal/domain/model"
	"github.com/arturkryukov/stroysklad/internal/extractor"
	"github.com/arturkryukov/stroysklad/internal/repository"
)

// InvoiceService — сервис приёма накладных.
type InvoiceService struct {
	extractorClient *extractor.Client
	pendingRepo     repository.PendingInvoiceRepository
	uploadDir       string
	logger          *slog.Logger
}

// NewInvoiceService создаёт сервис приёма накладных.
// uploadDir — каталог для временных файлов загрузки.
func NewInvoiceService(
	extractorClient *extractor.Client,
	pendingRepo repository.PendingInvoiceRepository,
	uploadDir string,
	logger *slog.Logger,
) *InvoiceService {
	return &InvoiceService{
		extractorClient: extractorClient,
		pendingRepo:     pendingRepo,
		uploadDir:       uploadDir,
		logger:          logger.With(slog.String("component", "invoice_service")),
	}
}

// UploadImage принимает фотографию накладной: сохраняет во временный файл,
// отправляет на распознавание, удаляет файл и кладёт результат
// в отложенные накладные пользователя.
func (s *InvoiceService) UploadImage(ctx context.Context, userID, filename string, file io.Reader) error {
	staged, err := s.stage(filename, file)
	if err != nil {
		return err
	}
	defer func() {
		if rmErr := os.Remove(staged); rmErr != nil {
			s.logger.Warn("Не удалось удалить временный файл",
				slog.String("path", staged),
				slog.String("error", rmErr.Error()),
			)
		}
	}()

	f, err := os.Open(staged)
	if err != nil {
		return fmt.Errorf("открытие временного файла: %w", err)
	}
	defer f.Close()

	invoice, err := s.extractorClient.ExtractImage(ctx, filename, f)
	if err != nil {
		if errors.Is(err, extractor.ErrUnavailable) {
			return ErrExtractorUnavailable
		}
		return fmt.Errorf("распознавание накладной: %w", err)
	}

	if err := s.pendingRepo.Put(ctx, userID, invoice); err != nil {
		return fmt.Errorf("сохранение отложенной накладной: %w", err)
	}

	s.logger.Info("Накладная распознана",
		slog.String("user_id", userID),
		slog.Int("fields", len(invoice)),
	)

	return nil
}

// stage сохраняет загруженный файл во временный файл под uploadDir.
func (s *InvoiceService) stage(filename string, file io.Reader) (string, error) {
	// Имя файла из формы не используется в пути
	staged := filepath.Join(s.uploadDir, uuid.NewString()+filepath.Ext(filepath.Base(filename)))

	dst, err := os.Create(staged)
	if err != nil {
		return "", fmt.Errorf("создание временного файла: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, file); err != nil {
		os.Remove(staged)
		return "", fmt.Errorf("запись временного файла: %w", err)
	}

	return staged, nil
}

// ExtractData пересылает введённые вручную данные накладной на обработку
// и кладёт нормализованный результат в отложенные накладные.
func (s *InvoiceService) ExtractData(ctx context.Context, userID string, payload model.Invoice) (model.Invoice, error) {
	invoice, err := s.extractorClient.ExtractData(ctx, payload)
	if err != nil {
		if errors.Is(err, extractor.ErrUnavailable) {
			return nil, ErrExtractorUnavailable
		}
		return nil, fmt.Errorf("обработка накладной: %w", err)
	}

	if err := s.pendingRepo.Put(ctx, userID, invoice); err != nil {
		return nil, fmt.Errorf("сохранение отложенной накладной: %w", err)
	}

	return invoice, nil
}

// Pending возвращает отложенную накладную пользователя для экрана проверки.
func (s *InvoiceService) Pending(ctx context.Context, userID string) (model.Invoice, error) {
	invoice, err := s.pendingRepo.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("чтение отложенной накладной: %w", err)
	}
	return invoice, nil
}

// Submit отправляет подтверждённую накладную в обработку
// и очищает отложенную накладную пользователя.
func (s *InvoiceService) Submit(ctx context.Context, userID string, payload model.Invoice) (model.Invoice, error) {
	result, err := s.extractorClient.Submit(ctx, payload)
	if err != nil {
		if errors.Is(err, extractor.ErrUnavailable) {
			return nil, ErrExtractorUnavailable
		}
		return nil, fmt.Errorf("отправка накладной: %w", err)
	}

	if err := s.pendingRepo.Clear(ctx, userID); err != nil {
		s.logger.Warn("Не удалось очистить отложенную накладную",
			slog.String("user_id", userID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.Info("Накладная подтверждена и отправлена", slog.String("user_id", userID))

	return result, nil
}
