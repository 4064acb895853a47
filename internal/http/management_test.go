package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/bookcatalog/internal/audit"
	"github.com/mrlokans/bookcatalog/internal/config"
	"github.com/mrlokans/bookcatalog/internal/database"
	auditrepo "github.com/mrlokans/bookcatalog/internal/database/audit"
	"github.com/mrlokans/bookcatalog/internal/database/books"
	"github.com/mrlokans/bookcatalog/internal/entities"
	"github.com/mrlokans/bookcatalog/internal/metrics"
)

type stubPinger struct {
	err error
}

func (s stubPinger) Ping(context.Context) error { return s.err }

func TestHealth(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("all components up", func(t *testing.T) {
		router := NewRouter(RouterConfig{
			Books:        newFakeBookRepository(),
			Pages:        testPages(),
			Logger:       silentLogger(),
			HealthChecks: map[string]Pinger{"db": stubPinger{}, "cache": nil},
		})

		w := doJSON(router, http.MethodGet, "/management/health", "", nil)
		require.Equal(t, http.StatusOK, w.Code)

		var resp HealthResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "UP", resp.Status)
		assert.Equal(t, "UP", resp.Components["db"].Status)
		assert.NotContains(t, resp.Components, "cache")
	})

	t.Run("one component down", func(t *testing.T) {
		router := NewRouter(RouterConfig{
			Books:  newFakeBookRepository(),
			Pages:  testPages(),
			Logger: silentLogger(),
			HealthChecks: map[string]Pinger{
				"db":    stubPinger{},
				"cache": stubPinger{err: errors.New("dial tcp: connection refused")},
			},
		})

		w := doJSON(router, http.MethodGet, "/management/health", "", nil)
		require.Equal(t, http.StatusServiceUnavailable, w.Code)

		var resp HealthResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "DOWN", resp.Status)
		assert.Equal(t, "DOWN", resp.Components["cache"].Status)
		assert.Equal(t, "UP", resp.Components["db"].Status)
	})
}

func TestInfo(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := NewRouter(RouterConfig{
		Books:   newFakeBookRepository(),
		Pages:   testPages(),
		AppName: testAppName,
		Version: "1.2.3",
		Commit:  "abcdef0",
		Logger:  silentLogger(),
	})

	w := doJSON(router, http.MethodGet, "/management/info", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"app":"bookcatalogApp","version":"1.2.3","commit":"abcdef0","authMode":"none"}`, w.Body.String())
}

func TestPrometheusEndpoint(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := NewRouter(RouterConfig{
		Books:   newFakeBookRepository(),
		Pages:   testPages(),
		AppName: testAppName,
		Metrics: metrics.New(),
		Logger:  silentLogger(),
	})

	w := doJSON(router, http.MethodPost, "/api/books", "application/json", gin.H{"title": defaultTitle})
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(router, http.MethodGet, "/management/prometheus", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, `bookcatalog_books_operations_total{operation="create",outcome="success"} 1`)
	assert.Contains(t, body, `bookcatalog_http_requests_total{method="POST",path="/api/books",status="201"} 1`)
}

func TestAuditEndpoint(t *testing.T) {
	gin.SetMode(gin.TestMode)

	db, err := database.NewDatabase(config.Database{
		Driver:   config.DriverSQLite,
		Path:     filepath.Join(t.TempDir(), "audit.db"),
		LogLevel: "silent",
	})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	auditService := audit.NewService(auditrepo.NewRepository(db.DB), silentLogger())
	router := NewRouter(RouterConfig{
		Books:    books.NewRepository(db.DB),
		Pages:    testPages(),
		AppName:  testAppName,
		Changes:  auditService,
		AuditLog: auditService,
		Logger:   silentLogger(),
	})

	for _, title := range []string{"First audited", "Second audited", "Third audited"} {
		w := doJSON(router, http.MethodPost, "/api/books", "application/json", gin.H{"title": title})
		require.Equal(t, http.StatusCreated, w.Code)
	}
	w := doJSON(router, http.MethodDelete, "/api/books/1", "", nil)
	require.Equal(t, http.StatusNoContent, w.Code)
	auditService.Wait()

	w = doJSON(router, http.MethodGet, "/management/audits?page=0&size=2&sort=principal,asc", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "4", w.Header().Get("X-Total-Count"))
	assert.True(t, strings.Contains(w.Header().Get("Link"), `rel="next"`))

	var events []entities.AuditEvent
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &events))
	require.Len(t, events, 2)
	assert.Equal(t, entities.AuditActionDeleted, events[0].Action)
	assert.Equal(t, int64(1), events[0].EntityID)
	assert.Equal(t, "anonymousUser", events[0].Principal)
	assert.Equal(t, "book", events[0].EntityType)
}
