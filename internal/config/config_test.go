package config

import (
	"log/slog"
	"testing"
	"time"
)

// setEnvs устанавливает переменные окружения на время теста.
func setEnvs(t *testing.T, envs map[string]string) {
	t.Helper()
	for k, v := range envs {
		t.Setenv(k, v)
	}
}

// minimalEnvs возвращает минимальный набор обязательных переменных.
func minimalEnvs() map[string]string {
	return map[string]string{
		"LS_DB_HOST":     "localhost",
		"LS_DB_NAME":     "luom",
		"LS_DB_USER":     "luom",
		"LS_DB_PASSWORD": "secret",
	}
}

func TestLoad_MinimalConfig(t *testing.T) {
	setEnvs(t, minimalEnvs())

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() вернул ошибку: %v", err)
	}

	// Проверяем значения по умолчанию
	if cfg.Port != 8080 {
		t.Errorf("Port = %d, ожидается 8080", cfg.Port)
	}
	if cfg.LogLevel != slog.LevelInfo {
		t.Errorf("LogLevel = %v, ожидается Info", cfg.LogLevel)
	}
	if cfg.LogFormat != "json" {
		t.Errorf("LogFormat = %q, ожидается json", cfg.LogFormat)
	}
	if cfg.DBPort != 5432 {
		t.Errorf("DBPort = %d, ожидается 5432", cfg.DBPort)
	}
	if cfg.DBSSLMode != "disable" {
		t.Errorf("DBSSLMode = %q, ожидается disable", cfg.DBSSLMode)
	}
	if cfg.DriveTimeout != 30*time.Second {
		t.Errorf("DriveTimeout = %v, ожидается 30s", cfg.DriveTimeout)
	}
	if cfg.DephealthCheckInterval != 15*time.Second {
		t.Errorf("DephealthCheckInterval = %v, ожидается 15s", cfg.DephealthCheckInterval)
	}
	if cfg.ShutdownTimeout != 5*time.Second {
		t.Errorf("ShutdownTimeout = %v, ожидается 5s", cfg.ShutdownTimeout)
	}
}

func TestLoad_MissingRequired(t *testing.T) {
	envs := minimalEnvs()
	delete(envs, "LS_DB_HOST")
	setEnvs(t, envs)
	t.Setenv("LS_DB_HOST", "")

	if _, err := Load(); err == nil {
		t.Fatal("Load() должен вернуть ошибку при отсутствии LS_DB_HOST")
	}
}

func TestLoad_InvalidLogLevel(t *testing.T) {
	setEnvs(t, minimalEnvs())
	t.Setenv("LS_LOG_LEVEL", "verbose")

	if _, err := Load(); err == nil {
		t.Fatal("Load() должен вернуть ошибку при недопустимом LS_LOG_LEVEL")
	}
}

// TestValid проверяет сигнал "configuration valid": Setup-режим при
// отсутствии любого из ключей внешних сервисов.
func TestValid(t *testing.T) {
	tests := []struct {
		name     string
		clientID string
		driveKey string
		want     bool
	}{
		{"оба ключа заданы", "client-id", "drive-key", true},
		{"нет client id", "", "drive-key", false},
		{"нет drive key", "client-id", "", false},
		{"нет обоих", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setEnvs(t, minimalEnvs())
			t.Setenv("LS_GOOGLE_CLIENT_ID", tt.clientID)
			t.Setenv("LS_DRIVE_API_KEY", tt.driveKey)

			cfg, err := Load()
			if err != nil {
				t.Fatalf("Load() вернул ошибку: %v", err)
			}
			if got := cfg.Valid(); got != tt.want {
				t.Errorf("Valid() = %v, want %v", got, tt.want)
			}
		})
	}
}

// TestAdminEmailsCSV проверяет разбор списка администраторов.
func TestAdminEmailsCSV(t *testing.T) {
	setEnvs(t, minimalEnvs())
	t.Setenv("LS_ADMIN_EMAILS", " owner@studio.vn , photographer@example.com,,")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() вернул ошибку: %v", err)
	}

	want := []string{"owner@studio.vn", "photographer@example.com"}
	if len(cfg.AdminEmails) != len(want) {
		t.Fatalf("AdminEmails = %v, ожидается %v", cfg.AdminEmails, want)
	}
	for i := range want {
		if cfg.AdminEmails[i] != want[i] {
			t.Errorf("AdminEmails[%d] = %q, ожидается %q", i, cfg.AdminEmails[i], want[i])
		}
	}
}

func TestDatabaseDSN(t *testing.T) {
	setEnvs(t, minimalEnvs())

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() вернул ошибку: %v", err)
	}

	want := "host=localhost port=5432 dbname=luom user=luom password=secret sslmode=disable"
	if got := cfg.DatabaseDSN(); got != want {
		t.Errorf("DatabaseDSN() = %q, ожидается %q", got, want)
	}
}
