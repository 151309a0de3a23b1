package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"kakeibo/internal/core"
	"kakeibo/internal/ledger"
	"kakeibo/internal/log"
)

func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	expenses := s.ledger.Expenses()
	if expenses == nil {
		expenses = []core.Expense{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"expenses": expenses,
		"count":    len(expenses),
	})
}

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	c, err := ParseCandidate(r)
	if err != nil {
		log.FromContext(ctx).DebugContext(ctx, "Unreadable expense body", log.FieldError, err)
		writeError(w, http.StatusBadRequest, "bad_request", "invalid request body")
		return
	}

	e, err := s.ledger.AddExpense(ctx, c)
	switch {
	case err == nil:
		writeJSON(w, http.StatusCreated, CreatedResponse{Expense: e})
	case errors.Is(err, ledger.ErrPersist):
		writeJSON(w, http.StatusCreated, CreatedResponse{Expense: e, Warning: ledger.PersistWarning})
	case writeValidationError(w, err):
	default:
		log.FromContext(ctx).ErrorContext(ctx, "Failed to add expense", log.FieldError, err, log.FieldOperation, log.OpCreate)
		writeError(w, http.StatusInternalServerError, "internal", "internal server error")
	}
}

func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := strings.TrimSpace(chi.URLParam(r, "id"))
	if id == "" {
		writeError(w, http.StatusBadRequest, "bad_request", "missing expense id")
		return
	}

	removed, err := s.ledger.DeleteExpense(ctx, id)
	switch {
	case !removed:
		writeJSON(w, http.StatusNotFound, DeletedResponse{ID: id, Deleted: false})
	case errors.Is(err, ledger.ErrPersist):
		writeJSON(w, http.StatusOK, DeletedResponse{ID: id, Deleted: true, Warning: ledger.PersistWarning})
	case err != nil:
		log.FromContext(ctx).ErrorContext(ctx, "Failed to delete expense", log.FieldError, err, log.FieldExpenseID, id)
		writeError(w, http.StatusInternalServerError, "internal", "internal server error")
	default:
		writeJSON(w, http.StatusOK, DeletedResponse{ID: id, Deleted: true})
	}
}
