package handlers

import (
	"errors"
	"net/http"

	"github.com/empleo-corredor/apiserver/internal/services"
	"github.com/empleo-corredor/apiserver/internal/store"
	"github.com/go-chi/chi/v5"
)

// CompanyHandler provides company-profile endpoints.
type CompanyHandler struct {
	accounts *services.AccountService
}

// CompanyRouter registers company routes on the given router.
func CompanyRouter(r chi.Router, accounts *services.AccountService) {
	handler := &CompanyHandler{accounts: accounts}

	r.Get("/usuario/{userID}", handler.GetByUser)
}

// GetByUser returns the company profile linked to a user account.
func (h *CompanyHandler) GetByUser(w http.ResponseWriter, r *http.Request) {
	userID, err := parseIDParam(r, "userID")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	company, err := h.accounts.CompanyForUser(r.Context(), userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "company not found")
			return
		}
		writeInternal(w, "failed to load company", err)
		return
	}

	writeData(w, http.StatusOK, "", company)
}
