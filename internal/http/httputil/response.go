package httputil

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/0xProject/protocol-sub016/internal/common"
)

type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    data,
	})
}

func Error(c *gin.Context, status int, err string) {
	c.JSON(status, Response{
		Success: false,
		Error:   err,
	})
}

func BadRequest(c *gin.Context, err string) {
	Error(c, http.StatusBadRequest, err)
}

func InternalError(c *gin.Context, err string) {
	Error(c, http.StatusInternalServerError, err)
}

func NotFound(c *gin.Context, err string) {
	Error(c, http.StatusNotFound, err)
}

// Aliases for compatibility
func HandleSuccess(c *gin.Context, data interface{}) {
	Success(c, data)
}

func HandleBadRequest(c *gin.Context, err string) {
	BadRequest(c, err)
}

func HandleNotFound(c *gin.Context, err string) {
	NotFound(c, err)
}

func HandleInternalError(c *gin.Context, err string) {
	InternalError(c, err)
}

// HandleError maps pipeline errors onto HTTP statuses. Sentinel errors get
// dedicated statuses; an HttpError carries its own; anything else is a 500
// with the detail kept out of the response body.
func HandleError(c *gin.Context, err error) {
	var httpErr *common.HttpError
	switch {
	case errors.As(err, &httpErr):
		Error(c, httpErr.StatusCode, httpErr.Message)
	case errors.Is(err, common.ErrNoLiquidityAvailable):
		NotFound(c, err.Error())
	case errors.Is(err, common.ErrNoGasPriceAvailable):
		Error(c, http.StatusServiceUnavailable, common.ErrNoGasPriceAvailable.Error())
	case errors.Is(err, context.DeadlineExceeded):
		Error(c, http.StatusGatewayTimeout, "quote timed out")
	default:
		InternalError(c, "internal server error")
	}
}
