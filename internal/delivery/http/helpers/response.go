package helpers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"seatplanner/internal/domain"
)

// Generic messages for the classes whose cause is never shown to the caller.
const (
	MsgUnauthorized  = "authentication required"
	MsgForbidden     = "insufficient permissions"
	MsgNotFound      = "not found"
	MsgValidation    = "validation failed"
	MsgInternalError = "internal server error"
)

// FieldError is one rejected input field.
// swagger:model FieldError
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// APIResponse is the envelope every endpoint returns.
// swagger:model APIResponse
type APIResponse struct {
	Success bool         `json:"success"`
	Data    any          `json:"data,omitempty"`
	Message string       `json:"message,omitempty"`
	Errors  []FieldError `json:"errors,omitempty"`
}

func writeJSON(w http.ResponseWriter, statusCode int, body APIResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(body)
}

// WriteJSONResponse writes a fully built envelope, for replies that carry data on failure.
func WriteJSONResponse(w http.ResponseWriter, statusCode int, body APIResponse) {
	writeJSON(w, statusCode, body)
}

// WriteJSONSuccess writes {success:true, data}.
func WriteJSONSuccess(w http.ResponseWriter, statusCode int, data any) {
	writeJSON(w, statusCode, APIResponse{Success: true, Data: data})
}

// WriteJSONCreated writes a 201 with the created entity and a confirmation message.
func WriteJSONCreated(w http.ResponseWriter, data any, message string) {
	writeJSON(w, http.StatusCreated, APIResponse{Success: true, Data: data, Message: message})
}

// WriteJSONMessage writes {success:true, message} for operations with no payload.
func WriteJSONMessage(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, APIResponse{Success: true, Message: message})
}

// WriteJSONError writes {success:false, message}.
func WriteJSONError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, APIResponse{Success: false, Message: message})
}

// WriteValidationError writes a 400 carrying one FieldError per "field: message" entry.
func WriteValidationError(w http.ResponseWriter, fields []string) {
	writeJSON(w, http.StatusBadRequest, APIResponse{
		Success: false,
		Message: MsgValidation,
		Errors:  ToFieldErrors(fields),
	})
}

// ToFieldErrors splits "field: message" strings. Entries without a separator keep an empty Field.
func ToFieldErrors(fields []string) []FieldError {
	out := make([]FieldError, 0, len(fields))
	for _, f := range fields {
		name, msg, ok := strings.Cut(f, ": ")
		if !ok {
			out = append(out, FieldError{Message: f})
			continue
		}
		out = append(out, FieldError{Field: name, Message: msg})
	}
	return out
}

// WriteServiceError maps a service error onto the response taxonomy. Anything unclassified
// is logged and returned as a generic 500 so store errors never reach the client.
func WriteServiceError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	var verr *domain.ValidationError
	var rule *domain.RuleError
	switch {
	case errors.As(err, &verr):
		WriteValidationError(w, verr.Fields)
	case errors.As(err, &rule):
		WriteJSONError(w, http.StatusBadRequest, rule.Message)
	case errors.Is(err, domain.ErrNotFound):
		WriteJSONError(w, http.StatusNotFound, MsgNotFound)
	case errors.Is(err, domain.ErrUserNotFound):
		WriteJSONError(w, http.StatusNotFound, domain.ErrUserNotFound.Error())
	case errors.Is(err, domain.ErrForbidden):
		WriteJSONError(w, http.StatusForbidden, MsgForbidden)
	case errors.Is(err, domain.ErrInvalidCredentials):
		WriteJSONError(w, http.StatusUnauthorized, domain.ErrInvalidCredentials.Error())
	case errors.Is(err, domain.ErrUnauthorized):
		WriteJSONError(w, http.StatusUnauthorized, MsgUnauthorized)
	case errors.Is(err, domain.ErrDuplicateEmail):
		WriteJSONError(w, http.StatusBadRequest, domain.ErrDuplicateEmail.Error())
	default:
		logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		WriteJSONError(w, http.StatusInternalServerError, MsgInternalError)
	}
}
