package server

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"docchat-backend/internal/shared/auth"
	"docchat-backend/internal/shared/config"
)

var routerSecret = []byte("router-test-secret")

func newTestRouter(t *testing.T, deps RouterDeps) *gin.Engine {
	t.Helper()
	deps.JWTSecret = routerSecret
	deps.Config = config.Config{CORSAllowOrigin: []string{"http://localhost:5173"}}.WithDefaults()
	return NewRouter(deps)
}

func TestHealthIsPublic(t *testing.T) {
	r := newTestRouter(t, RouterDeps{})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotEmpty(t, rec.Header().Get("X-Request-Id"))
}

func TestHealthReportsDatabaseFailure(t *testing.T) {
	sqlDB, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })
	mock.ExpectPing().WillReturnError(errors.New("connection refused"))

	r := newTestRouter(t, RouterDeps{DB: sqlDB})
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestMeRequiresToken(t *testing.T) {
	r := newTestRouter(t, RouterDeps{})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/me", nil))
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	token, err := auth.SignToken(routerSecret, auth.Identity{UserID: "user-7", Email: "u7@example.com"}, time.Hour)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"email":"u7@example.com","userId":"user-7"}`, rec.Body.String())
}

func TestAddr(t *testing.T) {
	cases := map[string]string{"": ":8080", "9000": ":9000", ":7000": ":7000"}
	for in, want := range cases {
		require.Equal(t, want, Addr(in), "Addr(%q)", in)
	}
}
