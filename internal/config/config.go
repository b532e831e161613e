// Пакет config — загрузка и валидация конфигурации Luom Selector
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

// Config содержит все параметры конфигурации сервиса.
type Config struct {
	// --- Сервер ---

	// Порт HTTP-сервера
	Port int
	// Уровень логирования (debug, info, warn, error)
	LogLevel slog.Level
	// Формат логов (json, text)
	LogFormat string
	// Внешний базовый URL сервиса (для OIDC callback и share-ссылок).
	// Если пустой — вычисляется из заголовков запроса.
	BaseURL string

	// --- PostgreSQL ---

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

	// --- Google OIDC (вход через Google) ---

	// OAuth Client ID приложения Google
	GoogleClientID string
	// OAuth Client Secret (опционально — пустой для public client с PKCE)
	GoogleClientSecret string

	// --- Google Drive ---

	// API-ключ Google Drive для листинга публичных папок
	DriveAPIKey string
	// Таймаут HTTP-запросов к Drive API
	DriveTimeout time.Duration

	// --- Авторизация ---

	// Email-адреса администраторов (через запятую, сравнение регистронезависимое)
	AdminEmails []string

	// --- UI-сессии ---

	// Секрет шифрования session cookie (пустой — случайный ключ на время процесса)
	SessionSecret string
	// Secure flag для cookies (true при работе за HTTPS)
	SecureCookies bool

	// --- Мониторинг ---

	// Интервал проверки зависимостей topologymetrics
	DephealthCheckInterval time.Duration
	// Имя группы topologymetrics
	DephealthGroup string

	// --- Graceful shutdown ---

	// Таймаут graceful shutdown HTTP-сервера
	ShutdownTimeout time.Duration
}

// Load загружает конфигурацию из переменных окружения, валидирует
// обязательные поля и возвращает Config или ошибку.
// Отсутствие GoogleClientID или DriveAPIKey ошибкой не считается:
// сервис запускается в режиме Setup (см. Valid).
func Load() (*Config, error) {
	cfg := &Config{}
	var err error

	// --- Сервер ---

	// LS_PORT — порт HTTP-сервера (по умолчанию 8080)
	cfg.Port, err = getEnvInt("LS_PORT", 8080)
	if err != nil {
		return nil, fmt.Errorf("LS_PORT: %w", err)
	}
	if cfg.Port < 1 || cfg.Port > 65535 {
		return nil, fmt.Errorf("LS_PORT: значение %d вне допустимого диапазона 1-65535", cfg.Port)
	}

	// LS_LOG_LEVEL — уровень логирования (по умолчанию info)
	cfg.LogLevel, err = parseLogLevel(getEnvDefault("LS_LOG_LEVEL", "info"))
	if err != nil {
		return nil, fmt.Errorf("LS_LOG_LEVEL: %w", err)
	}

	// LS_LOG_FORMAT — формат логов (по умолчанию json)
	cfg.LogFormat = getEnvDefault("LS_LOG_FORMAT", "json")
	if cfg.LogFormat != "json" && cfg.LogFormat != "text" {
		return nil, fmt.Errorf("LS_LOG_FORMAT: недопустимое значение %q, допустимые: json, text", cfg.LogFormat)
	}

	// LS_BASE_URL — внешний базовый URL (опционально)
	cfg.BaseURL = strings.TrimRight(getEnvDefault("LS_BASE_URL", ""), "/")

	// --- PostgreSQL ---

	// LS_DB_HOST — обязательный
	cfg.DBHost, err = getEnvRequired("LS_DB_HOST")
	if err != nil {
		return nil, err
	}

	// LS_DB_PORT — порт PostgreSQL (по умолчанию 5432)
	cfg.DBPort, err = getEnvInt("LS_DB_PORT", 5432)
	if err != nil {
		return nil, fmt.Errorf("LS_DB_PORT: %w", err)
	}

	// LS_DB_NAME — обязательный
	cfg.DBName, err = getEnvRequired("LS_DB_NAME")
	if err != nil {
		return nil, err
	}

	// LS_DB_USER — обязательный
	cfg.DBUser, err = getEnvRequired("LS_DB_USER")
	if err != nil {
		return nil, err
	}

	// LS_DB_PASSWORD — обязательный
	cfg.DBPassword, err = getEnvRequired("LS_DB_PASSWORD")
	if err != nil {
		return nil, err
	}

	// LS_DB_SSL_MODE — режим SSL (по умолчанию disable)
	cfg.DBSSLMode = getEnvDefault("LS_DB_SSL_MODE", "disable")
	validSSLModes := map[string]bool{
		"disable": true, "require": true, "verify-ca": true, "verify-full": true,
	}
	if !validSSLModes[cfg.DBSSLMode] {
		return nil, fmt.Errorf("LS_DB_SSL_MODE: недопустимое значение %q, допустимые: disable, require, verify-ca, verify-full", cfg.DBSSLMode)
	}

	// --- Google OIDC ---

	// LS_GOOGLE_CLIENT_ID — Client ID (пустой → режим Setup)
	cfg.GoogleClientID = getEnvDefault("LS_GOOGLE_CLIENT_ID", "")

	// LS_GOOGLE_CLIENT_SECRET — Client Secret (опционально)
	cfg.GoogleClientSecret = getEnvDefault("LS_GOOGLE_CLIENT_SECRET", "")

	// --- Google Drive ---

	// LS_DRIVE_API_KEY — API-ключ Drive (пустой → режим Setup)
	cfg.DriveAPIKey = getEnvDefault("LS_DRIVE_API_KEY", "")

	// LS_DRIVE_TIMEOUT — таймаут запросов к Drive API (по умолчанию 30s)
	cfg.DriveTimeout, err = getEnvDuration("LS_DRIVE_TIMEOUT", 30*time.Second)
	if err != nil {
		return nil, fmt.Errorf("LS_DRIVE_TIMEOUT: %w", err)
	}

	// --- Авторизация ---

	// LS_ADMIN_EMAILS — email-адреса администраторов (через запятую)
	cfg.AdminEmails = parseCSV(getEnvDefault("LS_ADMIN_EMAILS", ""))

	// --- UI-сессии ---

	// LS_SESSION_SECRET — секрет шифрования session cookie (опционально)
	cfg.SessionSecret = getEnvDefault("LS_SESSION_SECRET", "")

	// LS_SECURE_COOKIES — Secure flag для cookies (по умолчанию — вывод из LS_BASE_URL)
	secureDefault := strings.HasPrefix(cfg.BaseURL, "https")
	cfg.SecureCookies, err = getEnvBool("LS_SECURE_COOKIES", secureDefault)
	if err != nil {
		return nil, fmt.Errorf("LS_SECURE_COOKIES: %w", err)
	}

	// --- Мониторинг ---

	// LS_DEPHEALTH_CHECK_INTERVAL — интервал проверки зависимостей (по умолчанию 15s)
	cfg.DephealthCheckInterval, err = getEnvDuration("LS_DEPHEALTH_CHECK_INTERVAL", 15*time.Second)
	if err != nil {
		return nil, fmt.Errorf("LS_DEPHEALTH_CHECK_INTERVAL: %w", err)
	}

	// LS_DEPHEALTH_GROUP — имя группы topologymetrics (по умолчанию "luom")
	cfg.DephealthGroup = getEnvDefault("LS_DEPHEALTH_GROUP", "luom")

	// --- Graceful shutdown ---

	// LS_SHUTDOWN_TIMEOUT — таймаут graceful shutdown (по умолчанию 5s)
	cfg.ShutdownTimeout, err = getEnvDuration("LS_SHUTDOWN_TIMEOUT", 5*time.Second)
	if err != nil {
		return nil, fmt.Errorf("LS_SHUTDOWN_TIMEOUT: %w", err)
	}

	return cfg, nil
}

// Valid сообщает, заполнены ли ключи внешних сервисов.
// Вычисляется один раз при старте; при false все экранные маршруты
// показывают страницу Setup, и состояние не пересматривается до рестарта.
func (c *Config) Valid() bool {
	return c.GoogleClientID != "" && c.DriveAPIKey != ""
}

// DatabaseDSN возвращает строку подключения к PostgreSQL.
func (c *Config) DatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d dbname=%s user=%s password=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBName, c.DBUser, c.DBPassword, c.DBSSLMode,
	)
}

// DatabaseURL возвращает URL подключения к PostgreSQL (для метрик и миграций).
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName, c.DBSSLMode,
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

// parseCSV разбирает строку, разделённую запятыми, на срез строк.
// Пробелы вокруг элементов убираются, пустые элементы игнорируются.
func parseCSV(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			result = append(result, p)
		}
	}
	return result
}
