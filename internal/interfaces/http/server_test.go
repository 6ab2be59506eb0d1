package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/easybills/easybills/internal/auth"
	"github.com/easybills/easybills/internal/report"
	"github.com/easybills/easybills/internal/repository"
	"github.com/easybills/easybills/internal/storage"
	"github.com/easybills/easybills/internal/workflow"
	"github.com/easybills/easybills/migrations"
	"github.com/easybills/easybills/pkg/database"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	logger := zap.NewNop()

	db, err := database.New(database.Config{
		Path:         filepath.Join(t.TempDir(), "claims.db"),
		MaxOpenConns: 4,
	}, logger)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	migrator := database.NewMigrator(db, logger)
	require.NoError(t, migrator.RunMigrations(context.Background(), migrations.FS))

	userRepo := repository.NewUserRepository(db.DB, logger)
	claimRepo := repository.NewClaimRepository(db.DB, logger)
	docRepo := repository.NewDocumentRepository(db.DB, logger)
	auditRepo := repository.NewAuditRepository(db.DB, logger)
	notifRepo := repository.NewNotificationRepository(db.DB, logger)

	engine := workflow.NewEngine(db, claimRepo, docRepo, auditRepo, notifRepo, workflow.DefaultConfig(), logger)

	uploads, err := storage.NewUploadStore(t.TempDir(), logger)
	require.NoError(t, err)

	tokens := auth.NewTokenManager("test-secret", time.Hour)
	authService := auth.NewService(userRepo, tokens, nil, logger)

	return NewServer(DefaultServerConfig(), engine, authService, tokens,
		notifRepo, userRepo, uploads, report.NewExcelWriter(logger), logger)
}

func doJSON(t *testing.T, server *Server, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	server.Router().ServeHTTP(rec, req)
	return rec
}

func registerUser(t *testing.T, server *Server, email, role string) string {
	t.Helper()
	rec := doJSON(t, server, http.MethodPost, "/api/auth/register", "", map[string]interface{}{
		"name":     "Test User",
		"email":    email,
		"password": "pass-word-123",
		"role":     role,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp struct {
		Data struct {
			Token string `json:"token"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Data.Token)
	return resp.Data.Token
}

func TestHealthEndpoint(t *testing.T) {
	server := newTestServer(t)

	rec := doJSON(t, server, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)
}

func TestAuthFlow(t *testing.T) {
	server := newTestServer(t)

	token := registerUser(t, server, "asha@college.edu", "")
	require.NotEmpty(t, token)

	// Duplicate registration fails.
	rec := doJSON(t, server, http.MethodPost, "/api/auth/register", "", map[string]interface{}{
		"name":     "Test User",
		"email":    "asha@college.edu",
		"password": "pass-word-123",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, server, http.MethodPost, "/api/auth/login", "", map[string]interface{}{
		"email":    "asha@college.edu",
		"password": "pass-word-123",
	})
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, server, http.MethodPost, "/api/auth/login", "", map[string]interface{}{
		"email":    "asha@college.edu",
		"password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestClaimEndpointsRequireAuth(t *testing.T) {
	server := newTestServer(t)

	rec := doJSON(t, server, http.MethodGet, "/api/claims", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doJSON(t, server, http.MethodGet, "/api/claims", "not-a-token", nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestClaimLifecycleOverHTTP(t *testing.T) {
	server := newTestServer(t)
	facultyToken := registerUser(t, server, "asha@college.edu", "")
	accountsToken := registerUser(t, server, "accounts@college.edu", "accounts")

	// Faculty creates a claim.
	rec := doJSON(t, server, http.MethodPost, "/api/claims", facultyToken, map[string]interface{}{
		"claim_type":       "Travel",
		"license_category": "General",
		"expense_category": "Conference",
		"description":      "Conference travel",
		"claimed_amount":   15000,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var created struct {
		Data struct {
			ID     int64  `json:"id"`
			Status string `json:"status"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, "Draft", created.Data.Status)
	claimPath := fmt.Sprintf("/api/claims/%d", created.Data.ID)

	// Accounts cannot create claims.
	rec = doJSON(t, server, http.MethodPost, "/api/claims", accountsToken, map[string]interface{}{
		"claim_type":       "Travel",
		"license_category": "General",
		"expense_category": "Conference",
		"description":      "not allowed",
		"claimed_amount":   100,
	})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// Submitting without documents is rejected.
	rec = doJSON(t, server, http.MethodPost, claimPath+"/submit", facultyToken, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	uploadDocument(t, server, facultyToken, claimPath)

	rec = doJSON(t, server, http.MethodPost, claimPath+"/submit", facultyToken, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	// Faculty cannot review; accounts can.
	rec = doJSON(t, server, http.MethodPut, claimPath+"/verify", facultyToken, map[string]interface{}{
		"status": "Verified",
	})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = doJSON(t, server, http.MethodPut, claimPath+"/verify", accountsToken, map[string]interface{}{
		"status": "Verified",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = doJSON(t, server, http.MethodPut, claimPath+"/verify", accountsToken, map[string]interface{}{
		"status":          "Approved",
		"approved_amount": 12000,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = doJSON(t, server, http.MethodPost, claimPath+"/pay", accountsToken, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	// Paid is terminal: a second pay attempt conflicts.
	rec = doJSON(t, server, http.MethodPost, claimPath+"/pay", accountsToken, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	// The owner sees the full history and notifications.
	rec = doJSON(t, server, http.MethodGet, claimPath+"/history", facultyToken, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, server, http.MethodGet, "/api/notifications?unread=true", facultyToken, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "claim_paid")
}

func uploadDocument(t *testing.T, server *Server, token, claimPath string) {
	t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("document", "receipt.pdf")
	require.NoError(t, err)
	_, err = part.Write([]byte("%PDF-1.4 minimal test payload"))
	require.NoError(t, err)
	require.NoError(t, mw.WriteField("document_type", "receipt"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, claimPath+"/documents", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)

	rec := httptest.NewRecorder()
	server.Router().ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
}

func TestGetMissingClaim(t *testing.T) {
	server := newTestServer(t)
	token := registerUser(t, server, "asha@college.edu", "")

	rec := doJSON(t, server, http.MethodGet, "/api/claims/99999", token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doJSON(t, server, http.MethodGet, "/api/claims/not-a-number", token, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPendingAndExportRequireAccountsRole(t *testing.T) {
	server := newTestServer(t)
	facultyToken := registerUser(t, server, "asha@college.edu", "")
	accountsToken := registerUser(t, server, "accounts@college.edu", "accounts")

	rec := doJSON(t, server, http.MethodGet, "/api/claims/accounts/pending", facultyToken, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = doJSON(t, server, http.MethodGet, "/api/claims/accounts/pending", accountsToken, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, server, http.MethodGet, "/api/claims/accounts/export", accountsToken, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t,
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		rec.Header().Get("Content-Type"))
}
