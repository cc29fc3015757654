// client.go — HTTP-клиент к GoTrue-совместимому провайдеру идентификации.
// Операции: SignIn (password grant), SignUp, Refresh (refresh_token grant),
// GetUser, SignOut.
//
// Клиент различает окончательный отказ провайдера (неверные учётные данные,
// протухший токен) и его недоступность (сетевая ошибка, 5xx): во втором
// случае возвращается ErrUnavailable, и вызывающий код не должен разрушать
// сессию пользователя.
package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// Ошибки провайдера идентификации.
var (
	// ErrInvalidCredentials — провайдер окончательно отверг учётные данные.
	ErrInvalidCredentials = errors.New("неверные учётные данные")
	// ErrUnauthorized — переданный access token недействителен.
	ErrUnauthorized = errors.New("токен недействителен")
	// ErrUserExists — пользователь с таким email уже зарегистрирован.
	ErrUserExists = errors.New("пользователь уже существует")
	// ErrUnavailable — провайдер недоступен, ответ не является окончательным.
	ErrUnavailable = errors.New("провайдер идентификации недоступен")
)

// Client — HTTP-клиент к провайдеру идентификации.
type Client struct {
	baseURL string // Базовый URL провайдера (без trailing slash)
	anonKey string // Публичный API-ключ (заголовок apikey)

	httpClient *http.Client
	logger     *slog.Logger
}

// New создаёт клиент к провайдеру идентификации.
// baseURL — базовый URL auth API (например, https://auth.example.com/auth/v1).
// anonKey — публичный API-ключ провайдера.
func New(baseURL, anonKey string, timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		anonKey: anonKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger.With(slog.String("component", "identity_client")),
	}
}

// --- Операции ---

// SignIn выполняет вход по email и паролю.
// При отказе провайдера (400/401) возвращает ErrInvalidCredentials.
func (c *Client) SignIn(ctx context.Context, email, password string) (*TokenResponse, error) {
	resp, err := c.post(ctx, "/token?grant_type=password", passwordGrantRequest{
		Email:    email,
		Password: password,
	}, "")
	if err != nil {
		return nil, err
	}

	var token TokenResponse
	if err := c.decodeToken(resp, &token, ErrInvalidCredentials); err != nil {
		return nil, fmt.Errorf("SignIn: %w", err)
	}

	return &token, nil
}

// SignUp регистрирует пользователя. fullName и role сохраняются
// в user_metadata провайдера.
// При конфликте email возвращает ErrUserExists.
func (c *Client) SignUp(ctx context.Context, email, password, fullName, role string) (*TokenResponse, error) {
	resp, err := c.post(ctx, "/signup", signUpRequest{
		Email:    email,
		Password: password,
		Data: map[string]any{
			"full_name": fullName,
			"role":      role,
		},
	}, "")
	if err != nil {
		return nil, err
	}

	var token TokenResponse
	if err := c.decodeToken(resp, &token, ErrUserExists); err != nil {
		return nil, fmt.Errorf("SignUp: %w", err)
	}

	return &token, nil
}

// Refresh обменивает refresh token на новую пару токенов.
// При окончательном отказе (refresh token отозван) возвращает ErrUnauthorized.
func (c *Client) Refresh(ctx context.Context, refreshToken string) (*TokenResponse, error) {
	resp, err := c.post(ctx, "/token?grant_type=refresh_token", refreshGrantRequest{
		RefreshToken: refreshToken,
	}, "")
	if err != nil {
		return nil, err
	}

	var token TokenResponse
	if err := c.decodeToken(resp, &token, ErrUnauthorized); err != nil {
		return nil, fmt.Errorf("Refresh: %w", err)
	}

	return &token, nil
}

// GetUser возвращает пользователя по access token.
// 401/403 означает недействительный токен (ErrUnauthorized),
// 5xx и сетевые ошибки — ErrUnavailable.
func (c *Client) GetUser(ctx context.Context, accessToken string) (*User, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/user", nil)
	if err != nil {
		return nil, fmt.Errorf("GetUser: создание запроса: %w", err)
	}
	c.setHeaders(req, accessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("Провайдер идентификации недоступен", slog.String("error", err.Error()))
		return nil, fmt.Errorf("GetUser: %w: %w", ErrUnavailable, err)
	}

	var user User
	if err := c.decode(resp, &user, ErrUnauthorized); err != nil {
		return nil, fmt.Errorf("GetUser: %w", err)
	}

	return &user, nil
}

// SignOut аннулирует сессию провайдера по access token.
// Недействительный токен не считается ошибкой: сессии уже нет.
func (c *Client) SignOut(ctx context.Context, accessToken string) error {
	resp, err := c.post(ctx, "/logout", nil, accessToken)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return nil
	case resp.StatusCode == http.StatusUnauthorized, resp.StatusCode == http.StatusForbidden:
		return nil
	case resp.StatusCode >= 500:
		return fmt.Errorf("SignOut: %w: статус %d", ErrUnavailable, resp.StatusCode)
	default:
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("SignOut: провайдер вернул статус %d: %s", resp.StatusCode, string(body))
	}
}

// --- HTTP helpers ---

// post выполняет POST-запрос. Сетевая ошибка оборачивается в ErrUnavailable.
func (c *Client) post(ctx context.Context, path string, body any, accessToken string) (*http.Response, error) {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("сериализация тела запроса: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("создание запроса: %w", err)
	}
	c.setHeaders(req, accessToken)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("Провайдер идентификации недоступен", slog.String("error", err.Error()))
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}

	return resp, nil
}

// setHeaders устанавливает apikey и, если передан, Authorization.
func (c *Client) setHeaders(req *http.Request, accessToken string) {
	req.Header.Set("apikey", c.anonKey)
	if accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+accessToken)
	}
}

// decodeToken декодирует TokenResponse из ответа провайдера.
func (c *Client) decodeToken(resp *http.Response, token *TokenResponse, rejected error) error {
	return c.decode(resp, token, rejected)
}

// decode декодирует JSON ответ в target.
// 4xx трактуется как окончательный отказ (rejected), 5xx — как ErrUnavailable.
func (c *Client) decode(resp *http.Response, target any, rejected error) error {
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
			return fmt.Errorf("декодирование ответа провайдера: %w", err)
		}
		return nil

	case resp.StatusCode >= 500:
		body, _ := io.ReadAll(resp.Body)
		c.logger.Warn("Провайдер идентификации вернул 5xx",
			slog.Int("status", resp.StatusCode),
			slog.String("body", string(body)),
		)
		return fmt.Errorf("%w: статус %d", ErrUnavailable, resp.StatusCode)

	default:
		var apiErr apiError
		_ = json.NewDecoder(resp.Body).Decode(&apiErr)
		if msg := apiErr.text(); msg != "" {
			return fmt.Errorf("%w: %s", rejected, msg)
		}
		return fmt.Errorf("%w: статус %d", rejected, resp.StatusCode)
	}
}

// --- Readiness checker ---

// CheckReady проверяет доступность провайдера через health endpoint.
// Реализует handlers.ReadinessChecker.
func (c *Client) CheckReady() (string, string) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return "fail", fmt.Sprintf("создание запроса: %v", err)
	}
	req.Header.Set("apikey", c.anonKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "fail", fmt.Sprintf("провайдер идентификации недоступен: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "degraded", fmt.Sprintf("провайдер идентификации вернул статус %d", resp.StatusCode)
	}

	return "ok", "провайдер идентификации доступен"
}
