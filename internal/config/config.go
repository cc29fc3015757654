// Пакет config — загрузка и валидация конфигурации stroysklad
// из переменных окружения.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// Версия приложения, задаётся при сборке через -ldflags.
var Version = "dev"

// Config содержит все параметры конфигурации stroysklad.
type Config struct {
	// --- Сервер ---

	// Порт HTTP-сервера
	Port int
	// Уровень логирования (debug, info, warn, error)
	LogLevel slog.Level
	// Формат логов (json, text)
	LogFormat string

	// --- PostgreSQL (внешнее реляционное хранилище) ---

	// Хост PostgreSQL
	DBHost string
	// Порт PostgreSQL
	DBPort int
	// Имя базы данных
	DBName string
	// Имя пользователя PostgreSQL
	DBUser string
	// Пароль пользователя PostgreSQL
	DBPassword string
	// Режим SSL: disable, require, verify-ca, verify-full
	DBSSLMode string
	// Применять миграции при старте (для self-hosted инсталляций;
	// на managed-хранилище схемой владеет провайдер)
	DBMigrate bool

	// --- Identity-провайдер (GoTrue-совместимый) ---

	// Базовый URL identity-провайдера
	IdentityURL string
	// Публичный ключ (apikey) провайдера
	IdentityAnonKey string
	// Таймаут исходящих запросов к провайдеру
	IdentityTimeout time.Duration

	// --- Внешний workflow извлечения накладных ---

	// URL вебхука для извлечения из изображения (multipart)
	ExtractorImageURL string
	// URL вебхука для извлечения/отправки структурированных данных (JSON)
	ExtractorDataURL string
	// Таймаут исходящих запросов к workflow
	ExtractorTimeout time.Duration

	// --- Сессии и загрузки ---

	// Секрет шифрования сессионных cookie (AES-256-GCM)
	SessionSecret string
	// Secure flag для cookie (true за TLS-терминацией)
	SecureCookie bool
	// Каталог временной выгрузки файлов накладных
	UploadDir string

	// --- Upload-ссылки ---

	// Срок действия temporary-ссылки по умолчанию
	LinkDefaultTTL time.Duration

	// --- Мониторинг зависимостей ---

	// Интервал проверки зависимостей (topologymetrics)
	DephealthCheckInterval time.Duration

	// --- Graceful shutdown ---

	// Таймаут graceful shutdown HTTP-сервера
	ShutdownTimeout time.Duration
}

// Load загружает конфигурацию из переменных окружения, валидирует
// обязательные поля и возвращает Config или ошибку.
func Load() (*Config, error) {
	cfg := &Config{}
	var err error

	// --- Сервер ---

	// SS_PORT — порт HTTP-сервера (по умолчанию 8080)
	cfg.Port, err = getEnvInt("SS_PORT", 8080)
	if err != nil {
		return nil, fmt.Errorf("SS_PORT: %w", err)
	}
	if cfg.Port < 1 || cfg.Port > 65535 {
		return nil, fmt.Errorf("SS_PORT: значение %d вне допустимого диапазона 1-65535", cfg.Port)
	}

	// SS_LOG_LEVEL — уровень логирования (по умолчанию info)
	cfg.LogLevel, err = parseLogLevel(getEnvDefault("SS_LOG_LEVEL", "info"))
	if err != nil {
		return nil, fmt.Errorf("SS_LOG_LEVEL: %w", err)
	}

	// SS_LOG_FORMAT — формат логов (по умолчанию json)
	cfg.LogFormat = getEnvDefault("SS_LOG_FORMAT", "json")
	if cfg.LogFormat != "json" && cfg.LogFormat != "text" {
		return nil, fmt.Errorf("SS_LOG_FORMAT: недопустимое значение %q, допустимые: json, text", cfg.LogFormat)
	}

	// --- PostgreSQL ---

	// SS_DB_HOST — обязательный
	cfg.DBHost, err = getEnvRequired("SS_DB_HOST")
	if err != nil {
		return nil, err
	}

	// SS_DB_PORT — порт PostgreSQL (по умолчанию 5432)
	cfg.DBPort, err = getEnvInt("SS_DB_PORT", 5432)
	if err != nil {
		return nil, fmt.Errorf("SS_DB_PORT: %w", err)
	}

	// SS_DB_NAME — обязательный
	cfg.DBName, err = getEnvRequired("SS_DB_NAME")
	if err != nil {
		return nil, err
	}

	// SS_DB_USER — обязательный
	cfg.DBUser, err = getEnvRequired("SS_DB_USER")
	if err != nil {
		return nil, err
	}

	// SS_DB_PASSWORD — обязательный
	cfg.DBPassword, err = getEnvRequired("SS_DB_PASSWORD")
	if err != nil {
		return nil, err
	}

	// SS_DB_SSL_MODE — режим SSL (по умолчанию disable)
	cfg.DBSSLMode = getEnvDefault("SS_DB_SSL_MODE", "disable")
	validSSLModes := map[string]bool{
		"disable": true, "require": true, "verify-ca": true, "verify-full": true,
	}
	if !validSSLModes[cfg.DBSSLMode] {
		return nil, fmt.Errorf("SS_DB_SSL_MODE: недопустимое значение %q, допустимые: disable, require, verify-ca, verify-full", cfg.DBSSLMode)
	}

	// SS_DB_MIGRATE — применять миграции при старте (по умолчанию false)
	cfg.DBMigrate, err = getEnvBool("SS_DB_MIGRATE", false)
	if err != nil {
		return nil, fmt.Errorf("SS_DB_MIGRATE: %w", err)
	}

	// --- Identity-провайдер ---

	// SS_IDENTITY_URL — обязательный
	cfg.IdentityURL, err = getEnvRequired("SS_IDENTITY_URL")
	if err != nil {
		return nil, err
	}
	// Убираем trailing slash
	cfg.IdentityURL = strings.TrimRight(cfg.IdentityURL, "/")

	// SS_IDENTITY_ANON_KEY — обязательный
	cfg.IdentityAnonKey, err = getEnvRequired("SS_IDENTITY_ANON_KEY")
	if err != nil {
		return nil, err
	}

	// SS_IDENTITY_TIMEOUT — таймаут запросов к провайдеру (по умолчанию 15s)
	cfg.IdentityTimeout, err = getEnvDuration("SS_IDENTITY_TIMEOUT", 15*time.Second)
	if err != nil {
		return nil, fmt.Errorf("SS_IDENTITY_TIMEOUT: %w", err)
	}

	// --- Workflow извлечения ---

	// SS_EXTRACTOR_IMAGE_URL — обязательный
	cfg.ExtractorImageURL, err = getEnvRequired("SS_EXTRACTOR_IMAGE_URL")
	if err != nil {
		return nil, err
	}

	// SS_EXTRACTOR_DATA_URL — обязательный
	cfg.ExtractorDataURL, err = getEnvRequired("SS_EXTRACTOR_DATA_URL")
	if err != nil {
		return nil, err
	}

	// SS_EXTRACTOR_TIMEOUT — таймаут запросов к workflow (по умолчанию 60s,
	// извлечение из изображения может быть долгим)
	cfg.ExtractorTimeout, err = getEnvDuration("SS_EXTRACTOR_TIMEOUT", 60*time.Second)
	if err != nil {
		return nil, fmt.Errorf("SS_EXTRACTOR_TIMEOUT: %w", err)
	}

	// --- Сессии и загрузки ---

	// SS_SESSION_SECRET — секрет шифрования cookie (опциональный,
	// при отсутствии генерируется случайный — сессии не переживают рестарт)
	cfg.SessionSecret = getEnvDefault("SS_SESSION_SECRET", "")

	// SS_SECURE_COOKIE — Secure flag для cookie (по умолчанию false)
	cfg.SecureCookie, err = getEnvBool("SS_SECURE_COOKIE", false)
	if err != nil {
		return nil, fmt.Errorf("SS_SECURE_COOKIE: %w", err)
	}

	// SS_UPLOAD_DIR — каталог временной выгрузки (по умолчанию системный temp)
	cfg.UploadDir = getEnvDefault("SS_UPLOAD_DIR", os.TempDir())

	// --- Upload-ссылки ---

	// SS_LINK_DEFAULT_TTL — срок temporary-ссылки по умолчанию (30m)
	cfg.LinkDefaultTTL, err = getEnvDuration("SS_LINK_DEFAULT_TTL", 30*time.Minute)
	if err != nil {
		return nil, fmt.Errorf("SS_LINK_DEFAULT_TTL: %w", err)
	}

	// --- Мониторинг зависимостей ---

	// SS_DEPHEALTH_CHECK_INTERVAL — интервал проверки зависимостей (30s)
	cfg.DephealthCheckInterval, err = getEnvDuration("SS_DEPHEALTH_CHECK_INTERVAL", 30*time.Second)
	if err != nil {
		return nil, fmt.Errorf("SS_DEPHEALTH_CHECK_INTERVAL: %w", err)
	}

	// --- Graceful shutdown ---

	// SS_SHUTDOWN_TIMEOUT — таймаут graceful shutdown (по умолчанию 5s)
	cfg.ShutdownTimeout, err = getEnvDuration("SS_SHUTDOWN_TIMEOUT", 5*time.Second)
	if err != nil {
		return nil, fmt.Errorf("SS_SHUTDOWN_TIMEOUT: %w", err)
	}

	return cfg, nil
}

// DatabaseDSN возвращает строку подключения к PostgreSQL.
func (c *Config) DatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d dbname=%s user=%s password=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBName, c.DBUser, c.DBPassword, c.DBSSLMode,
	)
}

// SetupLogger настраивает глобальный slog-логгер на основе конфигурации.
func SetupLogger(cfg *Config) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}

	var handler slog.Handler
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}

// --- Вспомогательные функции ---

// getEnvRequired возвращает значение переменной окружения или ошибку, если она не задана.
func getEnvRequired(key string) (string, error) {
	val := os.Getenv(key)
	if val == "" {
		return "", fmt.Errorf("%s: обязательная переменная окружения не задана", key)
	}
	return val, nil
}

// getEnvDefault возвращает значение переменной окружения или значение по умолчанию.
func getEnvDefault(key, defaultVal string) string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	return val
}

// getEnvInt возвращает целочисленное значение переменной окружения или значение по умолчанию.
func getEnvInt(key string, defaultVal int) (int, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return 0, fmt.Errorf("некорректное целое число: %q", val)
	}
	return n, nil
}

// getEnvBool возвращает булево значение переменной окружения или значение по умолчанию.
func getEnvBool(key string, defaultVal bool) (bool, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	b, err := strconv.ParseBool(val)
	if err != nil {
		return false, fmt.Errorf("некорректное булево значение: %q", val)
	}
	return b, nil
}

// getEnvDuration возвращает time.Duration из переменной окружения или значение по умолчанию.
func getEnvDuration(key string, defaultVal time.Duration) (time.Duration, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return 0, fmt.Errorf("некорректная длительность: %q (используйте формат Go: 30s, 1h, 15m)", val)
	}
	return d, nil
}

// parseLogLevel преобразует строку уровня логирования в slog.Level.
func parseLogLevel(level string) (slog.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("недопустимый уровень %q, допустимые: debug, info, warn, error", level)
	}
}
