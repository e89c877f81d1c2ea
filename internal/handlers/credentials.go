package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/upwardright/rebalance/internal/services"
)

type CredentialHandler struct {
	store services.CredentialStore
}

func NewCredentialHandler(store services.CredentialStore) *CredentialHandler {
	return &CredentialHandler{store: store}
}

// HandleCredentials clears cached account passwords.
// @Summary Delete cached credentials
// @Description Delete one cached credential (account + organization query) or every cached credential when no query is given
// @Tags credentials
// @Produce json
// @Param account query string false "Account number"
// @Param organization query string false "Institution code"
// @Success 200 {object} map[string]string
// @Failure 500 {string} string "Internal server error"
// @Router /credentials [delete]
func (h *CredentialHandler) HandleCredentials(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if r.Method != http.MethodDelete {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	account := r.URL.Query().Get("account")
	organization := r.URL.Query().Get("organization")

	var err error
	if account != "" {
		err = h.store.Remove(r.Context(), account, organization)
	} else {
		err = h.store.ClearAll(r.Context())
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	json.NewEncoder(w).Encode(map[string]string{"status": "cleared"})
}
