package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"fitclass/internal/apperr"
	"fitclass/internal/logger"

	"github.com/gin-gonic/gin"
)

// RetryAfter is the Retry-After hint sent with 503 store-busy responses.
const RetryAfter = time.Second

func StatusFor(kind apperr.Kind) int {
	switch kind {
	case apperr.KindPermissionDenied:
		return http.StatusForbidden
	case apperr.KindNotFound:
		return http.StatusNotFound
	case apperr.KindConflict:
		return http.StatusConflict
	case apperr.KindInvalidState:
		return http.StatusUnprocessableEntity
	case apperr.KindInvalidArgument:
		return http.StatusBadRequest
	case apperr.KindStoreBusy:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// WriteError maps err onto a status code and a JSON body. Internal errors are
// logged and replaced by a generic message.
func WriteError(c *gin.Context, err error) {
	kind := apperr.KindOf(err)
	status := StatusFor(kind)

	switch kind {
	case apperr.KindUnknown:
		logger.Error("request failed", "method", c.Request.Method, "path", c.FullPath(), "error", err)
		c.AbortWithStatusJSON(status, ErrorResponse{Error: "internal error", Code: string(kind)})
		return
	case apperr.KindStoreBusy:
		c.Header("Retry-After", strconv.Itoa(int(RetryAfter.Seconds())))
		if errors.Is(err, context.Canceled) {
			logger.Info("request cancelled", "path", c.FullPath(), "error", err)
		} else {
			logger.Warn("store busy", "path", c.FullPath(), "error", err)
		}
		err = apperr.ErrStoreBusy
	}

	c.AbortWithStatusJSON(status, ErrorResponse{Error: err.Error(), Code: string(kind)})
}

func BadRequest(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, ErrorResponse{Error: msg, Code: string(apperr.KindInvalidArgument)})
}
