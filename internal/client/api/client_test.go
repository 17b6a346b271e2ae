package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/cvvault/internal/models"
	"github.com/iudanet/cvvault/pkg/api"
)

// TestNewClient проверяет создание нового клиента
func TestNewClient(t *testing.T) {
	baseURL := "http://localhost:8080"
	client := NewClient(baseURL)

	assert.NotNil(t, client)
	assert.Equal(t, baseURL, client.baseURL)
	assert.NotNil(t, client.httpClient)
	assert.Equal(t, 30*time.Second, client.httpClient.Timeout)
	assert.Empty(t, client.token)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// loggedIn возвращает клиент с уже выданным токеном
func loggedIn(url string) *Client {
	c := NewClient(url)
	c.token = "token-123"
	return c
}

func TestClient_Health(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/health", r.URL.Path)
		writeJSON(w, http.StatusOK, api.HealthResponse{Status: "ok", Version: "1.0.0"})
	}))
	defer server.Close()

	resp, err := NewClient(server.URL).Health(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "1.0.0", resp.Version)
}

// TestClient_Login проверяет успешный вход и сохранение токена
func TestClient_Login(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v1/auth/login", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Empty(t, r.Header.Get("Authorization"))

		var req api.LoginRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "7421", req.PIN)

		writeJSON(w, http.StatusOK, api.LoginResponse{
			AccessToken: "access_token_123",
			ExpiresIn:   1800,
			Files:       []api.FileInfo{{ID: "a", Name: "My CV"}},
		})
	}))
	defer server.Close()

	client := NewClient(server.URL)
	resp, err := client.Login(context.Background(), "7421")

	require.NoError(t, err)
	assert.Equal(t, "access_token_123", resp.AccessToken)
	assert.Equal(t, int64(1800), resp.ExpiresIn)
	require.Len(t, resp.Files, 1)
	assert.Equal(t, "My CV", resp.Files[0].Name)
	assert.Equal(t, "access_token_123", client.token)
}

func TestClient_Login_Errors(t *testing.T) {
	tests := []struct {
		name        string
		body        any
		wantMessage string
		status      int
	}{
		{
			name:        "lockout",
			status:      http.StatusTooManyRequests,
			body:        api.ErrorResponse{Error: "Too Many Requests", Message: "too many failed attempts"},
			wantMessage: "too many failed attempts",
		},
		{
			name:        "error without message",
			status:      http.StatusBadRequest,
			body:        api.ErrorResponse{Error: "Bad Request"},
			wantMessage: "Bad Request",
		},
		{
			name:        "plain text body",
			status:      http.StatusInternalServerError,
			body:        "boom",
			wantMessage: `"boom"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, tt.status, tt.body)
			}))
			defer server.Close()

			client := NewClient(server.URL)
			_, err := client.Login(context.Background(), "7421")

			require.Error(t, err)
			assert.True(t, IsStatus(err, tt.status))
			assert.Contains(t, err.Error(), tt.wantMessage)
			assert.Empty(t, client.token)
		})
	}
}

func TestClient_RequiresLogin(t *testing.T) {
	client := NewClient("http://127.0.0.1:0")
	ctx := context.Background()

	_, err := client.ListFiles(ctx)
	assert.ErrorIs(t, err, ErrNotLoggedIn)

	_, err = client.CreateFile(ctx, "CV")
	assert.ErrorIs(t, err, ErrNotLoggedIn)

	_, err = client.GetFile(ctx, "id")
	assert.ErrorIs(t, err, ErrNotLoggedIn)

	_, err = client.Rekey(ctx, "1234")
	assert.ErrorIs(t, err, ErrNotLoggedIn)

	assert.ErrorIs(t, client.DeleteFile(ctx, "id"), ErrNotLoggedIn)

	// без сессии logout ничего не отправляет
	assert.NoError(t, client.Logout(ctx))
}

func TestClient_Logout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v1/auth/logout", r.URL.Path)
		assert.Equal(t, "Bearer token-123", r.Header.Get("Authorization"))
		writeJSON(w, http.StatusOK, api.StatusResponse{Status: "ok"})
	}))
	defer server.Close()

	client := loggedIn(server.URL)
	require.NoError(t, client.Logout(context.Background()))
	assert.Empty(t, client.token)
}

func TestClient_Files(t *testing.T) {
	created := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/files", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer token-123", r.Header.Get("Authorization"))
		writeJSON(w, http.StatusOK, api.FilesResponse{Files: []api.FileInfo{
			{ID: "doc-1", Name: "My CV", Created: created, Modified: created},
		}})
	})
	mux.HandleFunc("POST /api/v1/files", func(w http.ResponseWriter, r *http.Request) {
		var req api.CreateFileRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "Backend CV", req.Name)
		writeJSON(w, http.StatusCreated, api.CreateFileResponse{ID: "doc-2"})
	})
	mux.HandleFunc("GET /api/v1/files/{id}", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "doc-1", r.PathValue("id"))
		doc := models.NewDocument("My CV", created)
		doc.Name = "Alice"
		writeJSON(w, http.StatusOK, api.DocumentResponse{ID: "doc-1", Profile: doc})
	})
	mux.HandleFunc("PUT /api/v1/files/{id}", func(w http.ResponseWriter, r *http.Request) {
		var req api.SaveFileRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.NotNil(t, req.Profile)
		assert.Equal(t, "Bob", req.Profile.Name)
		writeJSON(w, http.StatusOK, api.StatusResponse{Status: "saved"})
	})
	mux.HandleFunc("POST /api/v1/files/{id}/rename", func(w http.ResponseWriter, r *http.Request) {
		var req api.RenameFileRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "Renamed", req.Name)
		writeJSON(w, http.StatusOK, api.StatusResponse{Status: "renamed"})
	})
	mux.HandleFunc("DELETE /api/v1/files/{id}", func(w http.ResponseWriter, r *http.Request) {
		if r.PathValue("id") == "missing" {
			writeJSON(w, http.StatusNotFound, api.ErrorResponse{Error: "Not Found", Message: "document not found"})
			return
		}
		writeJSON(w, http.StatusOK, api.StatusResponse{Status: "deleted"})
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	client := loggedIn(server.URL)
	ctx := context.Background()

	files, err := client.ListFiles(ctx)
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "doc-1", files[0].ID)
	assert.True(t, created.Equal(files[0].Created))

	id, err := client.CreateFile(ctx, "Backend CV")
	require.NoError(t, err)
	assert.Equal(t, "doc-2", id)

	doc, err := client.GetFile(ctx, "doc-1")
	require.NoError(t, err)
	assert.Equal(t, "Alice", doc.Name)
	assert.Equal(t, "My CV", doc.Meta.Name)

	doc.Name = "Bob"
	require.NoError(t, client.SaveFile(ctx, "doc-1", doc))
	require.NoError(t, client.RenameFile(ctx, "doc-1", "Renamed"))
	require.NoError(t, client.DeleteFile(ctx, "doc-1"))

	err = client.DeleteFile(ctx, "missing")
	require.Error(t, err)
	assert.True(t, IsStatus(err, http.StatusNotFound))
	assert.Contains(t, err.Error(), "document not found")
}

func TestClient_GetFile_EmptyProfile(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, api.DocumentResponse{ID: "doc-1"})
	}))
	defer server.Close()

	_, err := loggedIn(server.URL).GetFile(context.Background(), "doc-1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty profile")
}

func TestClient_Rekey(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/auth/rekey", r.URL.Path)
		var req api.RekeyRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "1234", req.NewPIN)
		writeJSON(w, http.StatusOK, api.RekeyResponse{Moved: 2})
	}))
	defer server.Close()

	resp, err := loggedIn(server.URL).Rekey(context.Background(), "1234")
	require.NoError(t, err)
	assert.Equal(t, 2, resp.Moved)
}

func TestClient_ServerUnavailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	_, err := NewClient(url).Login(context.Background(), "7421")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "request failed")
	assert.False(t, IsStatus(err, http.StatusInternalServerError))
}
