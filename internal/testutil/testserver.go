// Package testutil поднимает полный роутер поверх тестовой БД.
// Тесты пропускаются, если TEST_DATABASE_URL не задан.
package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"os"
	"sync"
	"testing"
	"time"

	"jobportal_backend/database"
	"jobportal_backend/internal/app"
	"jobportal_backend/internal/auth"
	"jobportal_backend/internal/config"
	"jobportal_backend/internal/models"
	"jobportal_backend/pkg/contextkeys"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const jwtSecret = "test-secret"

type TestServer struct {
	Router *gin.Engine
	DB     *gorm.DB
	JWT    *auth.JWTManager
}

var (
	server     *TestServer
	serverErr  error
	serverOnce sync.Once
)

// NewTestServer возвращает общий на пакет сервер; схема мигрируется один раз
func NewTestServer(t *testing.T) *TestServer {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL is not set")
	}

	serverOnce.Do(func() {
		cfg := &config.Config{}
		cfg.Server.Env = "test"
		cfg.Server.ShutdownTimeoutSeconds = 1
		cfg.Database.DSN = dsn
		cfg.Database.MaxOpenConns = 5
		cfg.Database.MaxIdleConns = 1
		cfg.JWT.Secret = jwtSecret
		cfg.JWT.TTL = 60
		cfg.Meeting.BaseURL = "https://meet.example.com"
		cfg.RateLimit.MessagesPerMinute = 600
		cfg.RateLimit.Burst = 100

		db, err := database.Connect(cfg)
		if err != nil {
			serverErr = err
			return
		}
		if err := database.AutoMigrate(db); err != nil {
			serverErr = err
			return
		}
		router, err := app.SetupRouter(cfg, db)
		if err != nil {
			serverErr = err
			return
		}
		server = &TestServer{
			Router: router,
			DB:     db,
			JWT:    auth.NewJWTManager(jwtSecret, time.Hour),
		}
	})
	require.NoError(t, serverErr, "test server setup")
	return server
}

// BeginTransaction открывает транзакцию, которая откатывается в t.Cleanup
func (ts *TestServer) BeginTransaction(t *testing.T) *gorm.DB {
	t.Helper()
	tx := ts.DB.Begin()
	require.NoError(t, tx.Error)
	t.Cleanup(func() { tx.Rollback() })
	return tx
}

// SendRequest прогоняет запрос через роутер; tx уходит в DBMiddleware через context запроса
func (ts *TestServer) SendRequest(t *testing.T, tx *gorm.DB, method, path, token string, body interface{}) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()

	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		require.NoError(t, err)
	}

	req := httptest.NewRequest(method, path, bytes.NewReader(payload))
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if tx != nil {
		req = req.WithContext(context.WithValue(req.Context(), contextkeys.DBContextKey, tx))
	}

	w := httptest.NewRecorder()
	ts.Router.ServeHTTP(w, req)

	var parsed map[string]interface{}
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &parsed), "response: %s", w.Body.String())
	}
	return w, parsed
}

// CreateUser создает пользователя и выдает ему токен
func (ts *TestServer) CreateUser(t *testing.T, tx *gorm.DB, role models.UserRole, grade *float64) (string, *models.User) {
	t.Helper()
	user := &models.User{
		Fullname: "Test " + string(role),
		Email:    uuid.NewString() + "@jobportal.test",
		Role:     role,
		Grade:    grade,
	}
	require.NoError(t, tx.Create(user).Error)

	token, _, err := ts.JWT.GenerateToken(user.ID, string(role))
	require.NoError(t, err)
	return token, user
}

func (ts *TestServer) CreateJob(t *testing.T, tx *gorm.DB, ownerID string, deadline *time.Time) *models.Job {
	t.Helper()
	job := &models.Job{
		Title:               "Backend Engineer",
		CreatedBy:           ownerID,
		ApplicationDeadline: deadline,
		Status:              models.JobStatusOpen,
	}
	require.NoError(t, tx.Create(job).Error)
	return job
}
