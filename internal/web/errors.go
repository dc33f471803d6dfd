package web

// errors.go turns handler errors into responses.
//
// The technical error is logged with the request context; the client gets
// the mapped UserMessage, as JSON for API callers or as an HTML alert for
// HTMX requests. The status code is derived from the error itself.

import (
	"context"
	"errors"
	"net/http"

	"github.com/JonMunkholm/drillbook/internal/importer"
	"github.com/JonMunkholm/drillbook/internal/logging"
	"github.com/JonMunkholm/drillbook/internal/web/templates"
)

var (
	errNoFile     = errors.New("no file provided")
	errBadRequest = errors.New("malformed request body")
)

// ErrorResponse is the JSON body of every error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Action  string `json:"action,omitempty"`
	Code    string `json:"code"`
}

// statusFor maps an error to its HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, importer.ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, importer.ErrUnsupportedFormat):
		return http.StatusUnsupportedMediaType
	case errors.Is(err, importer.ErrParse):
		return http.StatusUnprocessableEntity
	case errors.Is(err, importer.ErrTooManyImports), errors.Is(err, errRateLimited):
		return http.StatusTooManyRequests
	case errors.Is(err, importer.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, errNoFile), errors.Is(err, errBadRequest), errors.Is(err, importer.ErrNoRows):
		return http.StatusBadRequest
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, context.Canceled):
		return http.StatusRequestTimeout
	default:
		return http.StatusInternalServerError
	}
}

// respondError logs err and writes the user-facing message.
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	msg := importer.MapError(err)

	log := logging.FromContext(r.Context())
	attrs := []any{
		"path", r.URL.Path,
		"method", r.Method,
		"status", status,
		"error", err.Error(),
		"code", msg.Code,
	}
	if status >= http.StatusInternalServerError {
		log.Error("request error", attrs...)
	} else {
		log.Warn("request rejected", attrs...)
	}

	if isHTMX(r) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(status)
		if err := templates.ErrorAlert(msg.Message, msg.Action, msg.Code).Render(r.Context(), w); err != nil {
			log.Error("render error alert", "error", err)
		}
		return
	}

	writeJSON(w, status, ErrorResponse{
		Error:   msg.Message,
		Message: msg.Message,
		Action:  msg.Action,
		Code:    msg.Code,
	})
}

// isHTMX checks if the request is an HTMX request.
func isHTMX(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}
