// Пакет driveclient — HTTP-клиент Google Drive API v3.
// Единственная операция: листинг изображений публичной папки
// (GET /drive/v3/files с фильтром q). Папка должна быть открыта
// по ссылке ("Anyone with the link can view").
package driveclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/luomphoto/luom-selector/internal/domain/model"
)

// Базовый URL Drive API.
const defaultBaseURL = "https://www.googleapis.com/drive/v3"

// Максимальное количество файлов за один листинг.
// Продолжение пагинации намеренно не реализовано.
const listPageSize = 1000

// Шаблоны URL миниатюры и прямой ссылки. Вычисляются из ID файла,
// в хранилище не сохраняются. Вариант lh3 даёт миниатюры большего
// разрешения для публичных файлов, чем thumbnailLink из API.
const (
	thumbnailURLTemplate = "https://lh3.googleusercontent.com/d/%s=w600-h600-p-k-nu-iv1"
	directURLTemplate    = "https://drive.google.com/uc?export=download&id=%s"
)

// ErrAccess — папка недоступна: не публичная или идентификатор неверен.
var ErrAccess = errors.New("папка Drive недоступна или не является публичной")

// Client — клиент Google Drive API.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *slog.Logger
}

// New создаёт Drive-клиент.
// apiKey — API-ключ Google Drive (из конфигурации).
func New(apiKey string, timeout time.Duration, logger *slog.Logger) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL:    defaultBaseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger.With(slog.String("component", "drive_client")),
	}
}

// WithBaseURL заменяет базовый URL API (для тестов).
func (c *Client) WithBaseURL(baseURL string) *Client {
	c.baseURL = baseURL
	return c
}

// driveFileItem — элемент ответа Drive API.
type driveFileItem struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	MimeType    string `json:"mimeType"`
	CreatedTime string `json:"createdTime"`
}

// driveListResponse — ответ Drive API на листинг файлов.
type driveListResponse struct {
	Files []driveFileItem `json:"files"`
}

// driveErrorResponse — ошибка Drive API.
type driveErrorResponse struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// ListImages возвращает изображения папки folderID.
// Список запрашивается заново при каждом вызове, кэширования нет.
// При 403/404 возвращает ErrAccess (папка закрыта или не существует).
func (c *Client) ListImages(ctx context.Context, folderID string) ([]*model.DriveFile, error) {
	query := fmt.Sprintf("'%s' in parents and trashed = false and mimeType contains 'image/'", folderID)

	params := url.Values{
		"q":        {query},
		"key":      {c.apiKey},
		"fields":   {"nextPageToken, files(id, name, mimeType, createdTime)"},
		"pageSize": {fmt.Sprintf("%d", listPageSize)},
	}
	reqURL := c.baseURL + "/files?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("создание запроса к Drive API: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("запрос к Drive API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)

		var apiErr driveErrorResponse
		message := string(body)
		if jsonErr := json.Unmarshal(body, &apiErr); jsonErr == nil && apiErr.Error.Message != "" {
			message = apiErr.Error.Message
		}

		c.logger.Warn("Drive API вернул ошибку",
			slog.String("folder_id", folderID),
			slog.Int("status", resp.StatusCode),
			slog.String("message", message),
		)

		if resp.StatusCode == http.StatusForbidden || resp.StatusCode == http.StatusNotFound {
			return nil, fmt.Errorf("%w: %s", ErrAccess, message)
		}
		return nil, fmt.Errorf("Drive API вернул статус %d: %s", resp.StatusCode, message)
	}

	var listResp driveListResponse
	if err := json.NewDecoder(resp.Body).Decode(&listResp); err != nil {
		return nil, fmt.Errorf("декодирование ответа Drive API: %w", err)
	}

	files := make([]*model.DriveFile, 0, len(listResp.Files))
	for _, f := range listResp.Files {
		files = append(files, &model.DriveFile{
			ID:            f.ID,
			Name:          f.Name,
			MimeType:      f.MimeType,
			CreatedTime:   f.CreatedTime,
			ThumbnailLink: fmt.Sprintf(thumbnailURLTemplate, f.ID),
			DirectLink:    fmt.Sprintf(directURLTemplate, f.ID),
		})
	}

	c.logger.Debug("Листинг папки Drive выполнен",
		slog.String("folder_id", folderID),
		slog.Int("files", len(files)),
	)

	return files, nil
}
