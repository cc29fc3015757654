package session

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// makeToken создаёт неподписанный JWT с указанным временем истечения.
func makeToken(t *testing.T, exp time.Time) string {
	t.Helper()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "11111111-1111-1111-1111-111111111111",
		"exp": exp.Unix(),
	})
	signed, err := token.SignedString([]byte("test-signing-key"))
	if err != nil {
		t.Fatalf("Ошибка создания тестового токена: %v", err)
	}
	return signed
}

// TestEncryptDecryptRoundTrip проверяет шифрование и дешифрование Data.
func TestEncryptDecryptRoundTrip(t *testing.T) {
	m, err := NewManager("", false)
	if err != nil {
		t.Fatalf("Ошибка создания Manager: %v", err)
	}

	original := &Data{
		AccessToken:  "test-access-token-12345",
		RefreshToken: "test-refresh-token-67890",
		UserID:       "11111111-1111-1111-1111-111111111111",
		Email:        "ivan@example.com",
		Role:         "manager",
	}

	encrypted, err := m.Encrypt(original)
	if err != nil {
		t.Fatalf("Ошибка шифрования: %v", err)
	}
	if encrypted == "" {
		t.Fatal("Зашифрованная строка пустая")
	}

	decrypted, err := m.Decrypt(encrypted)
	if err != nil {
		t.Fatalf("Ошибка дешифрования: %v", err)
	}

	if decrypted.AccessToken != original.AccessToken {
		t.Errorf("AccessToken: want %q, got %q", original.AccessToken, decrypted.AccessToken)
	}
	if decrypted.RefreshToken != original.RefreshToken {
		t.Errorf("RefreshToken: want %q, got %q", original.RefreshToken, decrypted.RefreshToken)
	}
	if decrypted.UserID != original.UserID {
		t.Errorf("UserID: want %q, got %q", original.UserID, decrypted.UserID)
	}
	if decrypted.Email != original.Email {
		t.Errorf("Email: want %q, got %q", original.Email, decrypted.Email)
	}
	if decrypted.Role != original.Role {
		t.Errorf("Role: want %q, got %q", original.Role, decrypted.Role)
	}
}

// TestManagerWithStringKey проверяет инициализацию с произвольной строкой-ключом.
func TestManagerWithStringKey(t *testing.T) {
	m, err := NewManager("my-secret-key-for-testing", false)
	if err != nil {
		t.Fatalf("Ошибка создания Manager со string-ключом: %v", err)
	}

	data := &Data{AccessToken: "token123", Role: "worker"}

	encrypted, err := m.Encrypt(data)
	if err != nil {
		t.Fatalf("Ошибка шифрования: %v", err)
	}
	decrypted, err := m.Decrypt(encrypted)
	if err != nil {
		t.Fatalf("Ошибка дешифрования: %v", err)
	}
	if decrypted.AccessToken != data.AccessToken || decrypted.Role != data.Role {
		t.Errorf("Decrypt() = %+v", decrypted)
	}
}

// TestDecryptTamperedData проверяет отказ на повреждённых данных.
func TestDecryptTamperedData(t *testing.T) {
	m, _ := NewManager("key", false)

	encrypted, err := m.Encrypt(&Data{AccessToken: "token"})
	if err != nil {
		t.Fatalf("Ошибка шифрования: %v", err)
	}

	// Портим последний символ ciphertext
	tampered := encrypted[:len(encrypted)-2] + "xx"
	if _, err := m.Decrypt(tampered); err == nil {
		t.Error("Decrypt(повреждённые данные) не вернул ошибку")
	}

	if _, err := m.Decrypt("не-base64!"); err == nil {
		t.Error("Decrypt(не base64) не вернул ошибку")
	}

	if _, err := m.Decrypt("c2hvcnQ="); err == nil {
		t.Error("Decrypt(слишком короткие данные) не вернул ошибку")
	}
}

// TestDecryptDifferentKey проверяет, что сессия другого ключа не читается.
func TestDecryptDifferentKey(t *testing.T) {
	m1, _ := NewManager("key-one", false)
	m2, _ := NewManager("key-two", false)

	encrypted, _ := m1.Encrypt(&Data{AccessToken: "token"})
	if _, err := m2.Decrypt(encrypted); err == nil {
		t.Error("Decrypt() чужим ключом не вернул ошибку")
	}
}

// TestIsExpired проверяет разбор exp claim без проверки подписи.
func TestIsExpired(t *testing.T) {
	tests := []struct {
		name  string
		token string
		want  bool
	}{
		{"токен на час вперёд", makeToken(t, time.Now().Add(time.Hour)), false},
		{"токен истёк", makeToken(t, time.Now().Add(-time.Minute)), true},
		{"токен истекает через 10 секунд (буфер 30s)", makeToken(t, time.Now().Add(10*time.Second)), true},
		{"мусор вместо токена", "не-jwt-вообще", true},
		{"пустой токен", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := &Data{AccessToken: tt.token}
			if got := d.IsExpired(); got != tt.want {
				t.Errorf("IsExpired() = %v, хотели %v", got, tt.want)
			}
		})
	}
}

// TestCookieRoundTrip проверяет установку и чтение session cookie.
func TestCookieRoundTrip(t *testing.T) {
	m, _ := NewManager("cookie-key", false)

	data := &Data{
		AccessToken: "token",
		UserID:      "11111111-1111-1111-1111-111111111111",
		Role:        "admin",
	}

	rec := httptest.NewRecorder()
	if err := m.SetCookie(rec, data); err != nil {
		t.Fatalf("SetCookie() ошибка: %v", err)
	}

	cookies := rec.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Name != CookieName {
		t.Fatalf("cookies = %+v", cookies)
	}
	if !cookies[0].HttpOnly || cookies[0].SameSite != http.SameSiteLaxMode {
		t.Errorf("флаги cookie: HttpOnly=%v, SameSite=%v", cookies[0].HttpOnly, cookies[0].SameSite)
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookies[0])

	got, err := m.FromRequest(req)
	if err != nil {
		t.Fatalf("FromRequest() ошибка: %v", err)
	}
	if got.UserID != data.UserID || got.Role != data.Role {
		t.Errorf("FromRequest() = %+v", got)
	}
}

// TestFromRequestNoCookie проверяет отсутствие cookie.
func TestFromRequestNoCookie(t *testing.T) {
	m, _ := NewManager("key", false)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	data, err := m.FromRequest(req)
	if err != nil {
		t.Errorf("FromRequest(без cookie) ошибка: %v", err)
	}
	if data != nil {
		t.Errorf("FromRequest(без cookie) = %+v, хотели nil", data)
	}
}

// TestClearCookie проверяет сброс cookie при выходе.
func TestClearCookie(t *testing.T) {
	m, _ := NewManager("key", false)

	rec := httptest.NewRecorder()
	m.ClearCookie(rec)

	cookies := rec.Result().Cookies()
	if len(cookies) != 1 || cookies[0].MaxAge != -1 {
		t.Errorf("cookies = %+v", cookies)
	}
}
