package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"kakeibo/internal/core"
	"kakeibo/internal/ledger"
)

// ErrorResponse is the body of every non-2xx reply.
type ErrorResponse struct {
	Error      string `json:"error"`
	Message    string `json:"message"`
	Field      string `json:"field,omitempty"`
	Suggestion string `json:"suggestion,omitempty"`
}

// CreatedResponse answers POST /api/expenses. Warning is set when the record
// exists but could not be saved.
type CreatedResponse struct {
	Expense core.Expense `json:"expense"`
	Warning string       `json:"warning,omitempty"`
}

// DeletedResponse answers DELETE /api/expenses/{id}.
type DeletedResponse struct {
	ID      string `json:"id"`
	Deleted bool   `json:"deleted"`
	Warning string `json:"warning,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, ErrorResponse{Error: code, Message: message})
}

// writeValidationError reports the first rule the input broke as 422.
func writeValidationError(w http.ResponseWriter, err error) bool {
	var verr *ledger.ValidationError
	if !errors.As(err, &verr) {
		return false
	}
	writeJSON(w, http.StatusUnprocessableEntity, ErrorResponse{
		Error:      string(verr.Reason),
		Message:    verr.Message,
		Field:      verr.Field,
		Suggestion: string(verr.Suggestion),
	})
	return true
}
