// Пакет session — управление пользовательскими сессиями.
// Данные сессии (токены провайдера идентификации, роль) хранятся
// в HTTP cookie, зашифрованном AES-256-GCM.
package session

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Имя cookie зашифрованной сессии.
const CookieName = "ss_session"

// Максимальный возраст cookie сессии (7 суток — срок жизни refresh token).
const CookieMaxAge = 7 * 24 * 60 * 60

// Data — данные сессии, хранящиеся в зашифрованном cookie.
type Data struct {
	// AccessToken — access token провайдера идентификации.
	AccessToken string `json:"access_token"`
	// RefreshToken — refresh token для обновления access token.
	RefreshToken string `json:"refresh_token"`
	// UserID — идентификатор пользователя у провайдера.
	UserID string `json:"user_id"`
	// Email — email пользователя.
	Email string `json:"email"`
	// Role — роль пользователя (admin, manager, worker).
	Role string `json:"role"`
}

// IsExpired проверяет, истёк ли access token, по его exp claim.
// Подпись не проверяется: токен проверяет провайдер, здесь нужен только
// момент истечения, чтобы заранее обновить пару токенов.
// Возвращает true, если до истечения менее 30 секунд, а также для
// токена, из которого exp извлечь не удалось.
func (d *Data) IsExpired() bool {
	parser := jwt.NewParser()
	claims := jwt.MapClaims{}
	if _, _, err := parser.ParseUnverified(d.AccessToken, claims); err != nil {
		return true
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return true
	}

	return time.Now().Add(30 * time.Second).After(exp.Time)
}

// Manager шифрует и дешифрует Data в HTTP cookies через AES-256-GCM.
type Manager struct {
	gcm    cipher.AEAD
	secure bool // Secure flag для cookie (true для HTTPS)
}

// NewManager создаёт менеджер сессий.
// key — секрет шифрования (base64 32 bytes либо произвольная строка,
// которая хешируется до 32 bytes через SHA-256).
// Если key пустой — генерируется случайный ключ; сессии не переживут
// рестарт процесса.
func NewManager(key string, secure bool) (*Manager, error) {
	var keyBytes []byte

	if key == "" {
		keyBytes = make([]byte, 32)
		if _, err := io.ReadFull(rand.Reader, keyBytes); err != nil {
			return nil, fmt.Errorf("ошибка генерации ключа сессии: %w", err)
		}
	} else {
		var err error
		keyBytes, err = base64.StdEncoding.DecodeString(key)
		if err != nil || len(keyBytes) != 32 {
			h := sha256.Sum256([]byte(key))
			keyBytes = h[:]
		}
	}

	block, err := aes.NewCipher(keyBytes)
	if err != nil {
		return nil, fmt.Errorf("ошибка создания AES cipher: %w", err)
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("ошибка создания GCM: %w", err)
	}

	return &Manager{
		gcm:    gcm,
		secure: secure,
	}, nil
}

// Encrypt шифрует Data и возвращает base64-строку.
func (m *Manager) Encrypt(data *Data) (string, error) {
	plaintext, err := json.Marshal(data)
	if err != nil {
		return "", fmt.Errorf("ошибка сериализации сессии: %w", err)
	}

	// Уникальный nonce на каждое шифрование, prepended к ciphertext
	nonce := make([]byte, m.gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("ошибка генерации nonce: %w", err)
	}

	ciphertext := m.gcm.Seal(nonce, nonce, plaintext, nil)

	return base64.URLEncoding.EncodeToString(ciphertext), nil
}

// Decrypt дешифрует base64-строку обратно в Data.
func (m *Manager) Decrypt(encrypted string) (*Data, error) {
	ciphertext, err := base64.URLEncoding.DecodeString(encrypted)
	if err != nil {
		return nil, fmt.Errorf("ошибка декодирования base64: %w", err)
	}

	nonceSize := m.gcm.NonceSize()
	if len(ciphertext) < nonceSize {
		return nil, errors.New("зашифрованные данные слишком короткие")
	}

	nonce, ciphertext := ciphertext[:nonceSize], ciphertext[nonceSize:]
	plaintext, err := m.gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, fmt.Errorf("ошибка дешифрования сессии: %w", err)
	}

	var data Data
	if err := json.Unmarshal(plaintext, &data); err != nil {
		return nil, fmt.Errorf("ошибка десериализации сессии: %w", err)
	}

	return &data, nil
}

// SetCookie устанавливает зашифрованный session cookie в ответ.
func (m *Manager) SetCookie(w http.ResponseWriter, data *Data) error {
	encrypted, err := m.Encrypt(data)
	if err != nil {
		return err
	}

	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    encrypted,
		Path:     "/",
		MaxAge:   CookieMaxAge,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// FromRequest извлекает и дешифрует Data из cookie запроса.
// Возвращает nil, nil если cookie отсутствует.
func (m *Manager) FromRequest(r *http.Request) (*Data, error) {
	cookie, err := r.Cookie(CookieName)
	if err != nil {
		if errors.Is(err, http.ErrNoCookie) {
			return nil, nil
		}
		return nil, err
	}

	return m.Decrypt(cookie.Value)
}

// ClearCookie удаляет session cookie из ответа (выход).
func (m *Manager) ClearCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
}
