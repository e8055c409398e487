package middlewares

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"macrolog/services"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRouter(t *testing.T, logger *slog.Logger) (*gin.Engine, *services.SessionManager) {
	gin.SetMode(gin.TestMode)
	sm, err := services.NewSessionManager(services.SessionOptions{Secret: []byte("mw-secret"), RedirectURL: "/auth", RedirectAfter: 5 * time.Second})
	require.NoError(t, err)

	r := gin.New()
	r.Use(RequestLogger(logger))
	r.GET("/whoami", AuthMiddleware(sm), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user_id": UserID(c)})
	})
	return r, sm
}

func TestAuthMiddleware(t *testing.T) {
	r, sm := newRouter(t, slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)))
	tok, err := sm.Mint("user-7", time.Hour)
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
		query  string
		status int
	}{
		{"bearer header", "Bearer " + tok, "", http.StatusOK},
		{"query token", "", "?access_token=" + tok, http.StatusOK},
		{"missing", "", "", http.StatusUnauthorized},
		{"wrong scheme", "Token " + tok, "", http.StatusUnauthorized},
		{"tampered", "Bearer " + tok + "x", "", http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/whoami"+tt.query, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			require.Equal(t, tt.status, w.Code)

			var body map[string]any
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			if tt.status == http.StatusOK {
				assert.Equal(t, "user-7", body["user_id"])
				return
			}
			assert.Equal(t, "/auth", body["redirect"])
			assert.EqualValues(t, 5, body["retryAfterSeconds"])
			assert.NotEmpty(t, body["error"])
		})
	}
}

func TestRequestLoggerRecordsUser(t *testing.T) {
	var buf bytes.Buffer
	r, sm := newRouter(t, slog.New(slog.NewJSONHandler(&buf, nil)))
	tok, err := sm.Mint("user-9", time.Hour)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	r.ServeHTTP(httptest.NewRecorder(), req)

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "INFO", line["level"])
	assert.Equal(t, "/whoami", line["path"])
	assert.EqualValues(t, 200, line["status"])
	assert.Equal(t, "user-9", line["user_id"])

	buf.Reset()
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/whoami", nil))
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "WARN", line["level"])
}
