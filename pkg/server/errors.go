package server

import (
	"encoding/json"
	stderrors "errors"
	"net/http"

	"github.com/matzehuels/stratum/pkg/errors"
	"github.com/matzehuels/stratum/pkg/observability"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error     ErrorBody `json:"error"`
	RequestID string    `json:"request_id,omitempty"`
}

// ErrorBody describes one failure.
type ErrorBody struct {
	Code    errors.Code `json:"code"`
	Message string      `json:"message"`
}

// StatusFor maps an error code to an HTTP status.
func StatusFor(code errors.Code) int {
	switch code {
	case errors.ErrCodeInvalidInput, errors.ErrCodeInvalidFormat, errors.ErrCodeInvalidStrategy,
		errors.ErrCodeInvalidConfig, errors.ErrCodeInvalidPath, errors.ErrCodeInvalidNodeID:
		return http.StatusBadRequest
	case errors.ErrCodeNotFound, errors.ErrCodeFileNotFound:
		return http.StatusNotFound
	case errors.ErrCodeGraphInconsistent, errors.ErrCodeInvariant:
		return http.StatusUnprocessableEntity
	case errors.ErrCodeTimeout:
		return http.StatusGatewayTimeout
	case errors.ErrCodeCanceled:
		return http.StatusRequestTimeout
	case errors.ErrCodeUnsupported:
		return http.StatusNotImplemented
	default:
		return http.StatusInternalServerError
	}
}

func errNotFound(path string) error {
	return errors.New(errors.ErrCodeNotFound, "no route for %s", path)
}

// writeError reports err to the HTTP hooks and writes it as JSON. Errors
// without a code are internal and their text is not exposed.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	ctx := r.Context()
	id := RequestIDFromContext(ctx)
	observability.HTTP().OnError(ctx, id, r.Method, r.URL.Path, err)

	code := errors.GetCode(err)
	msg := errors.UserMessage(err)
	status := StatusFor(code)

	var tooLarge *http.MaxBytesError
	switch {
	case stderrors.As(err, &tooLarge):
		code, status = errors.ErrCodeInvalidInput, http.StatusRequestEntityTooLarge
		msg = "request body too large"
	case code == "":
		code, msg = errors.ErrCodeInternal, "internal error"
	}

	writeJSON(w, status, ErrorResponse{
		Error:     ErrorBody{Code: code, Message: msg},
		RequestID: id,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
