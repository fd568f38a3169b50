// Package common provides shared utilities used across all features
package common

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinel errors surfaced by the quoting pipeline. Callers match these with
// errors.Is; everything else is wrapped context.
var (
	// ErrNoLiquidityAvailable is returned when every sampled source produced
	// zero output for the requested pair and amount.
	ErrNoLiquidityAvailable = errors.New("no liquidity available for the requested pair")

	// ErrNoGasPriceAvailable is returned once the gas price provider has
	// failed repeatedly without ever obtaining a usable value.
	ErrNoGasPriceAvailable = errors.New("no gas price available from oracle")

	// ErrMissingSourceAddress is returned at construction time when a source
	// adapter is given a zero router/quoter address.
	ErrMissingSourceAddress = errors.New("source contract address is unset")
)

// HttpError represents an HTTP error with status code and message
type HttpError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *HttpError) Error() string {
	return fmt.Sprintf("HTTP error: %d %s %s", e.StatusCode, e.Code, e.Message)
}

func messageOrDefault(msg string, defaultMsg string) string {
	if msg != "" {
		return msg
	}
	return defaultMsg
}

// HTTP Error constructors

func HTTPErrorBadRequest(msg string) *HttpError {
	return &HttpError{
		StatusCode: http.StatusBadRequest,
		Code:       "BAD_REQUEST",
		Message:    messageOrDefault(msg, "Bad request"),
	}
}

func HTTPErrorNotFound(msg string) *HttpError {
	return &HttpError{
		StatusCode: http.StatusNotFound,
		Code:       "NOT_FOUND",
		Message:    messageOrDefault(msg, "Not found"),
	}
}

func HTTPErrorInternalError(msg string) *HttpError {
	return &HttpError{
		StatusCode: http.StatusInternalServerError,
		Code:       "INTERNAL_SERVER_ERROR",
		Message:    messageOrDefault(msg, "Internal server error"),
	}
}

func HTTPErrorUnprocessable(msg string) *HttpError {
	return &HttpError{
		StatusCode: http.StatusUnprocessableEntity,
		Code:       "UNPROCESSABLE_ENTITY",
		Message:    messageOrDefault(msg, "Unprocessable entity"),
	}
}

func HTTPErrorGatewayTimeout(msg string) *HttpError {
	return &HttpError{
		StatusCode: http.StatusGatewayTimeout,
		Code:       "GATEWAY_TIMEOUT",
		Message:    messageOrDefault(msg, "Upstream timeout"),
	}
}
