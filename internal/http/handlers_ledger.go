package http

import (
	"log/slog"
	"net/http"
	"strconv"

	"budget/internal/core"
)

type transactionJSON struct {
	ID          int64  `json:"id"`
	Date        string `json:"date"`
	Amount      string `json:"amount"`
	Category    string `json:"category"`
	Kind        string `json:"kind"`
	Description string `json:"description,omitempty"`
}

func toTransactionJSON(tx core.Transaction) transactionJSON {
	return transactionJSON{
		ID:          tx.ID,
		Date:        tx.Date.String(),
		Amount:      core.FormatCents(tx.Amount.Cents),
		Category:    tx.Category,
		Kind:        string(tx.Kind),
		Description: tx.Description,
	}
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	ownerID := ownerFromContext(r.Context())

	items, err := s.ledger.ListAll(r.Context(), ownerID)
	if err != nil {
		slog.ErrorContext(r.Context(), "List transactions error", "error", err, "owner_id", ownerID)
		writeError(w, err)
		return
	}

	out := make([]transactionJSON, 0, len(items))
	for _, tx := range items {
		out = append(out, toTransactionJSON(tx))
	}
	writeJSON(w, http.StatusOK, map[string]any{"transactions": out})
}

func (s *Server) handleAddTransaction(w http.ResponseWriter, r *http.Request) {
	ownerID := ownerFromContext(r.Context())

	body, err := parseBody(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	tx, err := transactionFromBody(body)
	if err != nil {
		writeError(w, err)
		return
	}

	id, err := s.ledger.Add(r.Context(), ownerID, tx)
	if err != nil {
		if statusForError(err) >= http.StatusInternalServerError {
			slog.ErrorContext(r.Context(), "Add transaction error", "error", err, "owner_id", ownerID)
		} else {
			slog.WarnContext(r.Context(), "Add transaction rejected", "error", err, "owner_id", ownerID)
		}
		writeError(w, err)
		return
	}
	tx.ID = id

	s.invalidateSummaries(ownerID)
	slog.InfoContext(r.Context(), "Transaction added",
		"owner_id", ownerID, "transaction_id", id, "kind", tx.Kind, "amount_cents", tx.Amount.Cents)
	writeJSON(w, http.StatusCreated, toTransactionJSON(tx))
}

func (s *Server) handleEditTransaction(w http.ResponseWriter, r *http.Request) {
	ownerID := ownerFromContext(r.Context())

	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, core.ErrNotFound)
		return
	}

	body, err := parseBody(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	tx, err := transactionFromBody(body)
	if err != nil {
		writeError(w, err)
		return
	}

	if err := s.ledger.Edit(r.Context(), ownerID, id, tx); err != nil {
		slog.WarnContext(r.Context(), "Edit transaction error", "error", err, "owner_id", ownerID, "transaction_id", id)
		writeError(w, err)
		return
	}
	tx.ID = id

	s.invalidateSummaries(ownerID)
	slog.InfoContext(r.Context(), "Transaction updated", "owner_id", ownerID, "transaction_id", id)
	writeJSON(w, http.StatusOK, toTransactionJSON(tx))
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	ownerID := ownerFromContext(r.Context())

	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, core.ErrNotFound)
		return
	}

	if err := s.ledger.Delete(r.Context(), ownerID, id); err != nil {
		slog.WarnContext(r.Context(), "Delete transaction error", "error", err, "owner_id", ownerID, "transaction_id", id)
		writeError(w, err)
		return
	}

	s.invalidateSummaries(ownerID)
	slog.InfoContext(r.Context(), "Transaction deleted", "owner_id", ownerID, "transaction_id", id)
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
