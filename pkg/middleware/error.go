package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"prizewheel/pkg/errutil"
)

// Error renders the last handler error as a JSON body whose HTTP status
// follows the error's CoreStatus.
func Error() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		last := c.Errors.Last()
		if last == nil || c.Writer.Written() {
			return
		}

		var be errutil.BaseError
		if errutil.As(last.Err, &be) {
			if be.Code.HTTPStatus() >= http.StatusInternalServerError {
				zap.L().Error("request failed",
					zap.String("path", c.FullPath()),
					zap.Error(last.Err),
				)
			}
			c.JSON(be.Code.HTTPStatus(), be.JSON())
			return
		}

		zap.L().Error("unhandled request error", zap.String("path", c.FullPath()), zap.Error(last.Err))
		internal := errutil.BaseError{Code: errutil.StatusInternal, Message: "internal error"}
		c.JSON(http.StatusInternalServerError, internal.JSON())
	}
}
