package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/atharv3903/freightpath/internal/algo"
	"github.com/atharv3903/freightpath/internal/logging"
)

const (
	CodeBadRequest         = "BAD_REQUEST"
	CodeInvalidNetwork     = "INVALID_NETWORK"
	CodeNotFound           = "RESOURCE_NOT_FOUND"
	CodeTooLarge           = "PAYLOAD_TOO_LARGE"
	CodeServiceUnavailable = "SERVICE_UNAVAILABLE"
	CodeInternalError      = "INTERNAL_ERROR"
)

type apiError struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`
}

func abort(c *gin.Context, status int, code, msg string, details map[string]string) {
	c.AbortWithStatusJSON(status, apiError{Code: code, Message: msg, Details: details})
}

// respondError maps planning failures onto HTTP statuses.
func respondError(c *gin.Context, err error) {
	var (
		me *algo.MalformedEdgeError
		de *algo.DuplicateEdgeError
	)
	switch {
	case errors.As(err, &me):
		abort(c, http.StatusUnprocessableEntity, CodeInvalidNetwork, err.Error(), map[string]string{
			"index":  strconv.Itoa(me.Index),
			"field":  me.Field,
			"reason": me.Reason,
		})
	case errors.As(err, &de):
		abort(c, http.StatusUnprocessableEntity, CodeInvalidNetwork, err.Error(), map[string]string{
			"index": strconv.Itoa(de.Index),
			"from":  de.From,
			"to":    de.To,
		})
	default:
		logging.FromContext(c.Request.Context()).Error("request failed", "error", err)
		abort(c, http.StatusInternalServerError, CodeInternalError, "an internal error occurred", nil)
	}
}
