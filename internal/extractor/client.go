// Пакет extractor — HTTP-клиент сервиса распознавания накладных.
// Операции: ExtractImage (multipart POST фотографии накладной),
// ExtractData и Submit (JSON POST структурированных данных).
//
// Сервис распознавания может вернуть результат, завёрнутый в строковое
// поле content с markdown-ограждениями (```json ... ```) — клиент
// нормализует такой ответ в плоский объект накладной.
package extractor

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/arturkryukov/stroysklad/internal/domain/model"
)

// ErrUnavailable — сервис распознавания недоступен или вернул не-2xx.
var ErrUnavailable = errors.New("сервис распознавания недоступен")

// Client — HTTP-клиент сервиса распознавания.
type Client struct {
	imageURL string // Endpoint распознавания изображений
	dataURL  string // Endpoint обработки структурированных данных

	httpClient *http.Client
	logger     *slog.Logger
}

// New создаёт клиент сервиса распознавания.
// imageURL — endpoint приёма изображений, dataURL — endpoint приёма данных.
func New(imageURL, dataURL string, timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		imageURL: imageURL,
		dataURL:  dataURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger.With(slog.String("component", "extractor_client")),
	}
}

// ExtractImage отправляет файл накладной на распознавание (multipart POST)
// и возвращает нормализованные данные накладной.
func (c *Client) ExtractImage(ctx context.Context, filename string, file io.Reader) (model.Invoice, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return nil, fmt.Errorf("ExtractImage: подготовка формы: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return nil, fmt.Errorf("ExtractImage: чтение файла: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("ExtractImage: закрытие формы: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.imageURL, &buf)
	if err != nil {
		return nil, fmt.Errorf("ExtractImage: создание запроса: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	invoice, err := c.do(req)
	if err != nil {
		return nil, fmt.Errorf("ExtractImage: %w", err)
	}
	return invoice, nil
}

// ExtractData отправляет структурированные данные накладной на обработку.
func (c *Client) ExtractData(ctx context.Context, payload model.Invoice) (model.Invoice, error) {
	invoice, err := c.postJSON(ctx, payload)
	if err != nil {
		return nil, fmt.Errorf("ExtractData: %w", err)
	}
	return invoice, nil
}

// Submit отправляет подтверждённую накладную в обработку.
func (c *Client) Submit(ctx context.Context, payload model.Invoice) (model.Invoice, error) {
	invoice, err := c.postJSON(ctx, payload)
	if err != nil {
		return nil, fmt.Errorf("Submit: %w", err)
	}
	return invoice, nil
}

// postJSON выполняет JSON POST на dataURL.
func (c *Client) postJSON(ctx context.Context, payload model.Invoice) (model.Invoice, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("сериализация накладной: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.dataURL, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("создание запроса: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	return c.do(req)
}

// do выполняет запрос и нормализует ответ.
func (c *Client) do(req *http.Request) (model.Invoice, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("Сервис распознавания недоступен", slog.String("error", err.Error()))
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("чтение ответа: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Warn("Сервис распознавания вернул ошибку",
			slog.Int("status", resp.StatusCode),
			slog.String("body", string(body)),
		)
		return nil, fmt.Errorf("%w: статус %d", ErrUnavailable, resp.StatusCode)
	}

	return normalize(body, c.logger)
}

// normalize превращает сырой ответ сервиса в объект накладной.
// Если ответ содержит строковое поле content — снимает markdown-ограждения
// и разбирает вложенный JSON. Неразборчивый content даёт пустую накладную,
// а не ошибку: пользователь дозаполнит поля вручную на экране проверки.
func normalize(body []byte, logger *slog.Logger) (model.Invoice, error) {
	var raw model.Invoice
	if err := json.Unmarshal(body, &raw); err != nil {
		// Сервис иногда отвечает массивом с одним элементом
		var arr []model.Invoice
		if errArr := json.Unmarshal(body, &arr); errArr == nil && len(arr) > 0 {
			raw = arr[0]
		} else {
			return nil, fmt.Errorf("декодирование ответа сервиса: %w", err)
		}
	}

	content, ok := raw["content"].(string)
	if !ok {
		return raw, nil
	}

	inner := stripFences(content)

	var invoice model.Invoice
	if err := json.Unmarshal([]byte(inner), &invoice); err != nil {
		logger.Warn("Содержимое content не является JSON, возвращаем пустую накладную",
			slog.String("error", err.Error()),
		)
		return model.Invoice{}, nil
	}

	return invoice, nil
}

// stripFences снимает markdown-ограждения ```json / ``` вокруг текста.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

// CheckReady проверяет доступность сервиса распознавания.
// Реализует handlers.ReadinessChecker.
func (c *Client) CheckReady() (string, string) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, c.dataURL, nil)
	if err != nil {
		return "fail", fmt.Sprintf("создание запроса: %v", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "fail", fmt.Sprintf("сервис распознавания недоступен: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		return "degraded", fmt.Sprintf("сервис распознавания вернул статус %d", resp.StatusCode)
	}

	return "ok", "сервис распознавания доступен"
}
