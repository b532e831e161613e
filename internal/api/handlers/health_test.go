package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

// stubChecker — фиксированный результат проверки готовности.
type stubChecker struct {
	status  string
	message string
}

func (s *stubChecker) CheckReady() (string, string) {
	return s.status, s.message
}

// TestHealthLive проверяет liveness probe.
func TestHealthLive(t *testing.T) {
	h := NewHealthHandler(nil, nil)

	rec := httptest.NewRecorder()
	h.HealthLive(rec, httptest.NewRequest(http.MethodGet, "/health/live", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("HealthLive: want 200, got %d", rec.Code)
	}

	var resp healthLiveResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("Ошибка парсинга ответа: %v", err)
	}
	if resp.Status != "ok" || resp.Service != serviceName {
		t.Errorf("HealthLive: want {ok, %s}, got %+v", serviceName, resp)
	}
}

// TestHealthReady проверяет readiness probe с разными статусами зависимостей.
func TestHealthReady(t *testing.T) {
	tests := []struct {
		name       string
		pg         ReadinessChecker
		google     ReadinessChecker
		wantCode   int
		wantStatus string
	}{
		{
			name:       "обе зависимости ok",
			pg:         &stubChecker{status: "ok"},
			google:     &stubChecker{status: "ok"},
			wantCode:   http.StatusOK,
			wantStatus: "ok",
		},
		{
			name:       "PostgreSQL fail",
			pg:         &stubChecker{status: "fail", message: "connection refused"},
			google:     &stubChecker{status: "ok"},
			wantCode:   http.StatusServiceUnavailable,
			wantStatus: "fail",
		},
		{
			name:       "Google degraded",
			pg:         &stubChecker{status: "ok"},
			google:     &stubChecker{status: "degraded", message: "медленный ответ"},
			wantCode:   http.StatusOK,
			wantStatus: "degraded",
		},
		{
			name:       "nil зависимости",
			pg:         nil,
			google:     nil,
			wantCode:   http.StatusServiceUnavailable,
			wantStatus: "fail",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHealthHandler(tt.pg, tt.google)

			rec := httptest.NewRecorder()
			h.HealthReady(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))

			if rec.Code != tt.wantCode {
				t.Errorf("HealthReady: want %d, got %d", tt.wantCode, rec.Code)
			}

			var resp healthReadyResponse
			if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
				t.Fatalf("Ошибка парсинга ответа: %v", err)
			}
			if resp.Status != tt.wantStatus {
				t.Errorf("Status: want %q, got %q", tt.wantStatus, resp.Status)
			}
		})
	}
}

// TestOverallStatus проверяет свёртку статусов зависимостей.
func TestOverallStatus(t *testing.T) {
	tests := []struct {
		statuses []string
		want     string
	}{
		{[]string{"ok", "ok"}, "ok"},
		{[]string{"ok", "degraded"}, "degraded"},
		{[]string{"degraded", "fail"}, "fail"},
		{[]string{"fail", "ok"}, "fail"},
		{[]string{}, "ok"},
	}

	for _, tt := range tests {
		if got := overallStatus(tt.statuses...); got != tt.want {
			t.Errorf("overallStatus(%v) = %q, want %q", tt.statuses, got, tt.want)
		}
	}
}
