package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	apperrors "github.com/commexhq/comms-api/pkg/errors"
)

func setupErrorRouter(err error) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestID(), ErrorHandler(zerolog.Nop()))
	r.GET("/fail", func(c *gin.Context) {
		c.Error(err)
	})
	return r
}

func TestErrorHandlerMapsAppErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"not found", apperrors.NotFound("communication", nil), http.StatusNotFound},
		{"invalid transition", apperrors.InvalidTransition("not mapped", nil), http.StatusBadRequest},
		{"conflict", apperrors.Conflict("duplicate", nil), http.StatusConflict},
		{"transient", apperrors.Transient("db down", nil), http.StatusInternalServerError},
		{"plain error", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := setupErrorRouter(tt.err)
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/fail", nil)
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.want, w.Code)
			assert.Contains(t, w.Body.String(), `"message"`)
		})
	}
}

func TestErrorHandlerIncludesTraceID(t *testing.T) {
	r := setupErrorRouter(apperrors.NotFound("member", nil))
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/fail", nil)
	req.Header.Set(HeaderXRequestID, "trace-123")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "trace-123")
}
