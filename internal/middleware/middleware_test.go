package middleware

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Name   string `validate:"required"`
	Amount int64  `validate:"gt=0"`
	Other  string `validate:"nefield=Name"`
}

func TestValidateRequest(t *testing.T) {
	assert.Nil(t, ValidateRequest(sample{Name: "a", Amount: 1, Other: "b"}))

	errs := ValidateRequest(sample{Amount: 0, Other: ""})
	require.Len(t, errs, 3)
	byField := map[string]ValidationError{}
	for _, e := range errs {
		byField[e.Field] = e
	}
	assert.Equal(t, "required", byField["Name"].Type)
	assert.Equal(t, "gt", byField["Amount"].Type)
	assert.Equal(t, "Value must be greater than 0", byField["Amount"].Message)
	assert.Equal(t, "nefield", byField["Other"].Type)
}

func TestOwnerMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name           string
		header         string
		expectedStatus int
		expectedOwner  string
	}{
		{name: "owner present", header: "usr-1", expectedStatus: http.StatusOK, expectedOwner: "usr-1"},
		{name: "owner trimmed", header: "  usr-2 ", expectedStatus: http.StatusOK, expectedOwner: "usr-2"},
		{name: "owner missing", header: "", expectedStatus: http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got string
			r := gin.New()
			r.Use(OwnerMiddleware())
			r.GET("/x", func(c *gin.Context) {
				got, _ = GetOwnerID(c)
				c.Status(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodGet, "/x", nil)
			if tt.header != "" {
				req.Header.Set(OwnerHeader, tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Equal(t, tt.expectedOwner, got)
		})
	}
}

func TestLoggingMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	r := gin.New()
	r.Use(LoggingMiddleware(logger))
	r.GET("/boom", func(c *gin.Context) { c.Status(http.StatusInternalServerError) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))

	assert.Contains(t, buf.String(), `"level":"ERROR"`)
	assert.Contains(t, buf.String(), `"path":"/boom"`)
	assert.Contains(t, buf.String(), `"status":500`)
}
