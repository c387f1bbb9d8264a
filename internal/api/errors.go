package api

import (
	"errors"
	"net/http"
	"strconv"
)

// AppError carries an HTTP status and a client-safe, French-language message.
// Internal detail never travels through it; that stays in server-side logs.
type AppError struct {
	Code       int    `json:"-"`
	Message    string `json:"error"`
	RetryAfter int    `json:"retryAfter,omitempty"`
}

func (e *AppError) Error() string {
	return e.Message
}

var (
	ErrBadRequest     = &AppError{Code: http.StatusBadRequest, Message: "requête invalide"}
	ErrInternalServer = &AppError{Code: http.StatusInternalServerError, Message: "erreur interne du serveur"}

	// ErrUpstreamBusy maps an upstream 429, independent of the local limiter.
	ErrUpstreamBusy = &AppError{
		Code:    http.StatusTooManyRequests,
		Message: "L'assistant est très sollicité. Veuillez réessayer dans un instant.",
	}

	// ErrUpstreamQuota maps an upstream 402 (credits exhausted).
	ErrUpstreamQuota = &AppError{
		Code:    http.StatusPaymentRequired,
		Message: "Service temporairement indisponible. Veuillez réessayer plus tard.",
	}

	// ErrUpstreamFailure covers every other upstream failure. The upstream
	// body is logged server-side and never forwarded.
	ErrUpstreamFailure = &AppError{
		Code:    http.StatusInternalServerError,
		Message: "Erreur de communication avec l'assistant.",
	}
)

func NewValidationError(msg string) *AppError {
	return &AppError{Code: http.StatusBadRequest, Message: msg}
}

func HandleError(w http.ResponseWriter, err error) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		if appErr.RetryAfter > 0 {
			w.Header().Set("Retry-After", strconv.Itoa(appErr.RetryAfter))
		}
		JSON(w, appErr.Code, appErr)
		return
	}
	JSONErrorMessage(w, http.StatusInternalServerError, ErrInternalServer.Message)
}
