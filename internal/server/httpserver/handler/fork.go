package handler

import (
	"net/http"
)

// handleCreateFork handles POST /fork/create.
func (h *Handler) handleCreateFork(w http.ResponseWriter, r *http.Request) {
	info := h.forks.CreateFork(r.Context())
	h.writeJSON(w, r, http.StatusCreated, ForkResponse(info))
}

// handleListForks handles GET /forks.
func (h *Handler) handleListForks(w http.ResponseWriter, r *http.Request) {
	items := h.forks.ListForks(r.Context())
	h.writeJSON(w, r, http.StatusOK, ListForksResponse{
		Items: items,
		Total: len(items),
	})
}

// handleGetFork handles GET /fork/{id}.
func (h *Handler) handleGetFork(w http.ResponseWriter, r *http.Request) {
	info, err := h.forks.GetFork(r.Context(), r.PathValue("id"))
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, ForkResponse(*info))
}

// handleRevokeFork handles POST /fork/{id}/revoke.
func (h *Handler) handleRevokeFork(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := h.forks.RevokeFork(r.Context(), id); err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, RevokeForkResponse{ForkID: id, Revoked: true})
}

// handleTransactions handles GET /fork/{id}/transactions.
func (h *Handler) handleTransactions(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	history, err := h.forks.History(r.Context(), id)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, TransactionsResponse{
		ForkID:       id,
		Transactions: history,
	})
}
