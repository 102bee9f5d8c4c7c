package middleware

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"prizewheel/pkg/errutil"
)

func newRouter(handler gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Logger(zap.NewNop()), Error())
	r.GET("/", handler)
	return r
}

func TestErrorMapsBaseError(t *testing.T) {
	r := newRouter(func(c *gin.Context) {
		_ = c.Error(errutil.TooManyRequest("locked", nil, errutil.WithDetails(errutil.Detail{Field: "retry_after", Message: "01:00:00"})))
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusTooManyRequests, w.Code)

	var body struct {
		Error struct {
			Code    string           `json:"code"`
			Message string           `json:"message"`
			Details []errutil.Detail `json:"details"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Equal(t, "too_many_requests", body.Error.Code)
	require.Equal(t, "retry_after", body.Error.Details[0].Field)
}

func TestErrorHidesPlainErrors(t *testing.T) {
	r := newRouter(func(c *gin.Context) {
		_ = c.Error(errors.New("disk on fire"))
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusInternalServerError, w.Code)
	require.NotContains(t, w.Body.String(), "disk on fire")
}

func TestErrorLeavesSuccessAlone(t *testing.T) {
	r := newRouter(func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "ok", w.Body.String())
}
