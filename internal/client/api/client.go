package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/iudanet/cvvault/internal/models"
	"github.com/iudanet/cvvault/pkg/api"
)

// ErrNotLoggedIn возвращается, если защищенный запрос выполняется без сессии
var ErrNotLoggedIn = errors.New("not logged in")

// StatusError ответ сервера с кодом вне 2xx
type StatusError struct {
	Message    string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("server error (%d): %s", e.StatusCode, e.Message)
}

// IsStatus проверяет, что err это ответ сервера с указанным кодом
func IsStatus(err error, code int) bool {
	var se *StatusError
	return errors.As(err, &se) && se.StatusCode == code
}

// Client представляет HTTP клиент для взаимодействия с сервером хранилища
type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string
}

// NewClient создает новый API клиент
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 10 {
					return fmt.Errorf("stopped after 10 redirects")
				}
				// Копируем заголовок Authorization при редиректе
				if len(via) > 0 && via[0].Header.Get("Authorization") != "" {
					req.Header.Set("Authorization", via[0].Header.Get("Authorization"))
				}
				return nil
			},
		},
	}
}

// Health проверяет доступность сервера
func (c *Client) Health(ctx context.Context) (*api.HealthResponse, error) {
	var resp api.HealthResponse
	if err := c.doRequest(ctx, http.MethodGet, "/health", nil, &resp); err != nil {
		return nil, fmt.Errorf("health request failed: %w", err)
	}
	return &resp, nil
}

// Login открывает сессию по PIN и запоминает токен для следующих запросов
func (c *Client) Login(ctx context.Context, pin string) (*api.LoginResponse, error) {
	var resp api.LoginResponse
	if err := c.doRequest(ctx, http.MethodPost, "/api/v1/auth/login", api.LoginRequest{PIN: pin}, &resp); err != nil {
		return nil, fmt.Errorf("login request failed: %w", err)
	}
	c.token = resp.AccessToken
	return &resp, nil
}

// Logout закрывает сессию на сервере
func (c *Client) Logout(ctx context.Context) error {
	if c.token == "" {
		return nil
	}
	if err := c.doAuthorized(ctx, http.MethodPost, "/api/v1/auth/logout", nil, nil); err != nil {
		return fmt.Errorf("logout request failed: %w", err)
	}
	c.token = ""
	return nil
}

// Rekey перешифровывает документы сессии под новый PIN
func (c *Client) Rekey(ctx context.Context, newPIN string) (*api.RekeyResponse, error) {
	var resp api.RekeyResponse
	if err := c.doAuthorized(ctx, http.MethodPost, "/api/v1/auth/rekey", api.RekeyRequest{NewPIN: newPIN}, &resp); err != nil {
		return nil, fmt.Errorf("rekey request failed: %w", err)
	}
	return &resp, nil
}

// ListFiles возвращает документы, открывающиеся PIN текущей сессии
func (c *Client) ListFiles(ctx context.Context) ([]api.FileInfo, error) {
	var resp api.FilesResponse
	if err := c.doAuthorized(ctx, http.MethodGet, "/api/v1/files", nil, &resp); err != nil {
		return nil, fmt.Errorf("list files request failed: %w", err)
	}
	return resp.Files, nil
}

// CreateFile создает пустой документ и возвращает его id
func (c *Client) CreateFile(ctx context.Context, name string) (string, error) {
	var resp api.CreateFileResponse
	if err := c.doAuthorized(ctx, http.MethodPost, "/api/v1/files", api.CreateFileRequest{Name: name}, &resp); err != nil {
		return "", fmt.Errorf("create file request failed: %w", err)
	}
	return resp.ID, nil
}

// GetFile возвращает расшифрованный документ
func (c *Client) GetFile(ctx context.Context, id string) (*models.Document, error) {
	var resp api.DocumentResponse
	if err := c.doAuthorized(ctx, http.MethodGet, filePath(id), nil, &resp); err != nil {
		return nil, fmt.Errorf("get file request failed: %w", err)
	}
	if resp.Profile == nil {
		return nil, fmt.Errorf("get file request failed: empty profile in response")
	}
	return resp.Profile, nil
}

// SaveFile сохраняет документ
func (c *Client) SaveFile(ctx context.Context, id string, doc *models.Document) error {
	if err := c.doAuthorized(ctx, http.MethodPut, filePath(id), api.SaveFileRequest{Profile: doc}, nil); err != nil {
		return fmt.Errorf("save file request failed: %w", err)
	}
	return nil
}

// RenameFile меняет отображаемое имя документа
func (c *Client) RenameFile(ctx context.Context, id, name string) error {
	if err := c.doAuthorized(ctx, http.MethodPost, filePath(id)+"/rename", api.RenameFileRequest{Name: name}, nil); err != nil {
		return fmt.Errorf("rename file request failed: %w", err)
	}
	return nil
}

// DeleteFile удаляет документ
func (c *Client) DeleteFile(ctx context.Context, id string) error {
	if err := c.doAuthorized(ctx, http.MethodDelete, filePath(id), nil, nil); err != nil {
		return fmt.Errorf("delete file request failed: %w", err)
	}
	return nil
}

func filePath(id string) string {
	return "/api/v1/files/" + url.PathEscape(id)
}

func (c *Client) doAuthorized(ctx context.Context, method, path string, body, result any) error {
	if c.token == "" {
		return ErrNotLoggedIn
	}
	return c.doRequest(ctx, method, path, body, result)
}

// doRequest выполняет HTTP запрос
func (c *Client) doRequest(ctx context.Context, method, path string, body, result any) error {
	var bodyReader io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		statusErr := &StatusError{StatusCode: resp.StatusCode, Message: string(bytes.TrimSpace(respBody))}
		var errResp api.ErrorResponse
		if err := json.Unmarshal(respBody, &errResp); err == nil {
			switch {
			case errResp.Message != "":
				statusErr.Message = errResp.Message
			case errResp.Error != "":
				statusErr.Message = errResp.Error
			}
		}
		return statusErr
	}

	if result != nil {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}
