package logging_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/celerix-dev/celerix-admin/internal/logging"
)

func TestLog(t *testing.T) {
	buff := bytes.NewBuffer([]byte{})
	templogger, err := logging.New().FromBuffer(buff).Make()
	require.NoError(t, err)
	require.NotNil(t, templogger)
	require.Equal(t, buff.Len(), 0)
	templogger.Logger.Info().Msg("Test")
	require.Contains(t, buff.String(), "Test")
}

func TestLevel(t *testing.T) {
	buff := bytes.NewBuffer([]byte{})
	l, err := logging.New().FromBuffer(buff).Level("warn").Make()
	require.NoError(t, err)
	l.Logger.Info().Msg("hidden")
	require.Zero(t, buff.Len())
	l.Logger.Warn().Msg("shown")
	require.Contains(t, buff.String(), "shown")

	_, err = logging.New().Level("loud").Make()
	require.Error(t, err)
}

func TestFromPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "admin.log")
	l, err := logging.New().FromPath(path).Make()
	require.NoError(t, err)
	l.Logger.Info().Str("collection", "clients").Msg("served")
	require.NoError(t, l.Close())

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(content), `"collection":"clients"`)
}

func TestMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	buff := bytes.NewBuffer([]byte{})
	l, err := logging.New().FromBuffer(buff).Make()
	require.NoError(t, err)

	r := gin.New()
	r.Use(logging.Middleware(l.Logger))
	r.GET("/missing", func(c *gin.Context) { c.Status(http.StatusNotFound) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/missing", nil))

	var line map[string]any
	require.NoError(t, json.Unmarshal(buff.Bytes(), &line))
	require.Equal(t, "warn", line["level"])
	require.Equal(t, "/missing", line["path"])
	require.Equal(t, float64(404), line["status"])
}
