package response

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func serveUnexpected(err error) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/boom", func(c *gin.Context) {
		Unexpected(c, err)
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/boom", nil)
	router.ServeHTTP(w, req)
	return w
}

func TestUnexpected_DeadlineIsServiceUnavailable(t *testing.T) {
	w := serveUnexpected(fmt.Errorf("query failed: %w", context.DeadlineExceeded))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "SERVICE_UNAVAILABLE")
}

func TestUnexpected_ConnectionClassIsServiceUnavailable(t *testing.T) {
	w := serveUnexpected(&pgconn.PgError{Code: "08006", Message: "connection failure"})
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	w = serveUnexpected(&pgconn.PgError{Code: "53300", Message: "too many connections"})
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestUnexpected_UnknownErrorIsInternal(t *testing.T) {
	w := serveUnexpected(errors.New("broken pipe in the business logic"))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "INTERNAL_ERROR")
}

func TestIsTransient(t *testing.T) {
	assert.True(t, IsTransient(context.DeadlineExceeded))
	assert.True(t, IsTransient(&pgconn.PgError{Code: "08003"}))
	assert.True(t, IsTransient(&pgconn.PgError{Code: "57P03"}))
	assert.False(t, IsTransient(&pgconn.PgError{Code: "23505"}))
	assert.False(t, IsTransient(errors.New("nil pointer elsewhere")))
}
