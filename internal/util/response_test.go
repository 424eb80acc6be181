package util

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serve(t *testing.T, handler gin.HandlerFunc) (int, map[string]interface{}) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/x", func(c *gin.Context) {
		c.Set(ContextRequestIDKey, "req-1")
		handler(c)
	})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return w.Code, body
}

func TestPageCountsPages(t *testing.T) {
	code, body := serve(t, func(c *gin.Context) { Page(c, []int{1, 2}, 21, 3, 10) })
	require.Equal(t, http.StatusOK, code)
	data := body["data"].(map[string]interface{})
	assert.EqualValues(t, 21, data["total"])
	assert.EqualValues(t, 3, data["pages"])
	assert.NotContains(t, body, "requestId")

	_, body = serve(t, func(c *gin.Context) { Page(c, []int{}, 0, 1, 10) })
	assert.EqualValues(t, 0, body["data"].(map[string]interface{})["pages"])
}

func TestErrorCarriesRequestID(t *testing.T) {
	code, body := serve(t, func(c *gin.Context) { Conflict(c, "taken") })
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "taken", body["message"])
	assert.Equal(t, "req-1", body["requestId"])

	code, body = serve(t, func(c *gin.Context) { LogInternalError(c, errors.New("db down")) })
	assert.Equal(t, http.StatusInternalServerError, code)
	assert.Equal(t, "Internal server error", body["message"])
	assert.Equal(t, "req-1", body["requestId"])
}
