package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/templui/drive/internal/ctxkeys"
	"github.com/templui/drive/internal/service"
)

// maxJSONBody bounds every JSON request body
const maxJSONBody = 1 << 20

// ErrorResponse is the envelope every failed request answers with
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

type ErrorBody struct {
	Code    service.Code `json:"code"`
	Message string       `json:"message"`
}

var statusByCode = map[service.Code]int{
	service.CodeValidation:       http.StatusBadRequest,
	service.CodeNotFound:         http.StatusNotFound,
	service.CodeParentNotFound:   http.StatusNotFound,
	service.CodeForbidden:        http.StatusForbidden,
	service.CodeDuplicateName:    http.StatusConflict,
	service.CodeDuplicateEmail:   http.StatusConflict,
	service.CodeInvalidMove:      http.StatusBadRequest,
	service.CodeExpired:          http.StatusGone,
	service.CodePasswordRequired: http.StatusUnauthorized,
	service.CodeInvalidPassword:  http.StatusUnauthorized,
	service.CodeUnauthorized:     http.StatusUnauthorized,
	service.CodeRateLimited:      http.StatusTooManyRequests,
	service.CodeStoreUnavailable: http.StatusInternalServerError,
}

// StatusOf returns the HTTP status for an error code
func StatusOf(code service.Code) int {
	if status, ok := statusByCode[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// JSON writes data with the given status code
func JSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

// Error writes the error envelope. Store failures are logged with their
// cause and answered with a generic message.
func Error(w http.ResponseWriter, r *http.Request, err error) {
	code := service.CodeOf(err)
	status := StatusOf(code)

	message := err.Error()
	if code == service.CodeStoreUnavailable {
		attrs := []any{"error", err, "method", r.Method}
		if user := ctxkeys.User(r.Context()); user != nil {
			attrs = append(attrs, "user_id", user.ID)
		}
		slog.Error("request failed", attrs...)
		message = service.ErrStoreUnavailable.Error()
	}

	JSON(w, status, ErrorResponse{Error: ErrorBody{Code: code, Message: message}})
}

// decode reads a JSON body into v. Unknown fields are rejected.
func decode(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxJSONBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("%w: request body is empty", service.ErrValidation)
		}
		return fmt.Errorf("%w: invalid request body: %v", service.ErrValidation, err)
	}
	return nil
}

// principal is the authenticated user's id. Routes using it sit behind
// RequireAuth.
func principal(r *http.Request) string {
	if user := ctxkeys.User(r.Context()); user != nil {
		return user.ID
	}
	return ""
}

// optionalID tells an absent field apart from an explicit null, which means
// the root.
type optionalID struct {
	Set   bool
	Value *string
}

func (o *optionalID) UnmarshalJSON(data []byte) error {
	o.Set = true
	if string(data) == "null" {
		o.Value = nil
		return nil
	}
	var id string
	if err := json.Unmarshal(data, &id); err != nil {
		return err
	}
	o.Value = &id
	return nil
}

var errNothingToUpdate = fmt.Errorf("%w: nothing to update", service.ErrValidation)

func invalidField(got, want string) error {
	return fmt.Errorf("%w: unknown field %q, use %q", service.ErrValidation, got, want)
}
