// ready.go — проверка доступности Google для readiness probe.
package auth

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

// GoogleReadinessChecker — проверка доступности Google JWKS endpoint.
// Реализует интерфейс handlers.ReadinessChecker.
type GoogleReadinessChecker struct {
	url        string
	httpClient *http.Client
}

// NewGoogleReadinessChecker создаёт проверку доступности Google.
// Пустой url заменяется стандартным JWKS endpoint.
func NewGoogleReadinessChecker(url string, timeout time.Duration) *GoogleReadinessChecker {
	if url == "" {
		url = GoogleJWKSURL
	}
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	return &GoogleReadinessChecker{
		url:        url,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// CheckReady выполняет GET к JWKS endpoint.
// Возвращает статус ("ok", "fail") и сообщение.
func (c *GoogleReadinessChecker) CheckReady() (status string, message string) {
	ctx, cancel := context.WithTimeout(context.Background(), c.httpClient.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return "fail", fmt.Sprintf("некорректный JWKS URL: %v", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "fail", fmt.Sprintf("Google недоступен: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "fail", fmt.Sprintf("Google вернул статус %d", resp.StatusCode)
	}
	return "ok", "JWKS endpoint доступен"
}
