package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/haircarelog/haircarelog-api/internal/adapters/handler/http/middleware"
	"github.com/haircarelog/haircarelog-api/internal/adapters/repository"
	"github.com/haircarelog/haircarelog-api/internal/core/domain"
)

const testUserID = "user-1"

// asUser stands in for the auth middleware.
func asUser(id string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.ContextUserIDKey, id)
		c.Next()
	}
}

func newTestEngine() *gin.Engine {
	gin.SetMode(gin.TestMode)
	return gin.New()
}

func seedUser(t *testing.T, repo *repository.InMemoryUserRepository, id, name, email string) *domain.User {
	t.Helper()
	u, err := domain.NewUser(id, name, email)
	require.NoError(t, err)
	require.NoError(t, u.SetPassword("secret123"))
	require.NoError(t, repo.Create(context.Background(), u))
	return u
}

func doJSON(router http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	var r io.Reader
	if body != nil {
		b, _ := json.Marshal(body)
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}
