package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/upwardright/rebalance/internal/models"
	"github.com/upwardright/rebalance/internal/services"
)

type SessionHandler struct {
	session *services.AccountSession
	fx      services.FXProvider
}

func NewSessionHandler(session *services.AccountSession, fx services.FXProvider) *SessionHandler {
	return &SessionHandler{session: session, fx: fx}
}

type selectRequest struct {
	Account    models.BrokerageAccount `json:"account"`
	Position   int                     `json:"position"`
	Candidates []models.LinkHandle     `json:"candidates"`
}

type passwordRequest struct {
	Password string `json:"password"`
}

type rebalanceRequest struct {
	Targets           []models.RebalanceTarget `json:"targets"`
	ReferenceCurrency string                   `json:"reference_currency"`
}

// HandleSelect starts a session for one account.
// @Summary Select an account
// @Description Resolve the account's link handle and fetch its balance, prompting for a password when none is cached
// @Tags session
// @Accept json
// @Produce json
// @Success 200 {object} services.SessionStatus
// @Failure 400 {string} string "Invalid request"
// @Router /session/select [post]
func (h *SessionHandler) HandleSelect(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req selectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	status, err := h.session.Select(r.Context(), &req.Account, req.Position, req.Candidates)
	if err != nil && status.State != services.StateFailed {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	json.NewEncoder(w).Encode(status)
}

// HandlePassword submits a password for an awaiting session.
// @Summary Submit account password
// @Tags session
// @Accept json
// @Produce json
// @Success 200 {object} services.SessionStatus
// @Failure 409 {string} string "Session not awaiting a password"
// @Router /session/password [post]
func (h *SessionHandler) HandlePassword(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req passwordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	status, err := h.session.SubmitPassword(r.Context(), req.Password)
	if err != nil && status.State != services.StateAwaitingPassword && status.State != services.StateFailed {
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}
	json.NewEncoder(w).Encode(status)
}

// HandleCancel abandons the current account.
// @Summary Cancel the session
// @Tags session
// @Produce json
// @Success 200 {object} services.SessionStatus
// @Router /session/cancel [post]
func (h *SessionHandler) HandleCancel(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	json.NewEncoder(w).Encode(h.session.Cancel())
}

// HandleStatus reports the session phase.
// @Summary Session status
// @Tags session
// @Produce json
// @Success 200 {object} services.SessionStatus
// @Router /session/status [get]
func (h *SessionHandler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	json.NewEncoder(w).Encode(h.session.Status())
}

// HandleResult returns the fetched balance (GET) or computes a rebalancing
// plan against submitted target weights (POST).
// @Summary Session result
// @Description GET returns the normalized balance snapshot; POST computes weights and deltas for the given targets
// @Tags session
// @Accept json
// @Produce json
// @Success 200 {object} models.RebalanceResult
// @Failure 409 {string} string "No balance available"
// @Router /session/result [get]
// @Router /session/result [post]
func (h *SessionHandler) HandleResult(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	switch r.Method {
	case http.MethodGet:
		h.getSnapshot(w, r)
	case http.MethodPost:
		h.computeRebalance(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

type snapshotResponse struct {
	*models.BalanceSnapshot
	TotalDisplay string `json:"total_display"`
}

func (h *SessionHandler) getSnapshot(w http.ResponseWriter, r *http.Request) {
	snapshot, err := h.session.Snapshot()
	if err != nil {
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}
	json.NewEncoder(w).Encode(snapshotResponse{
		BalanceSnapshot: snapshot,
		TotalDisplay:    models.FormatAmount(snapshot.TotalAmount, models.CurrencyKRW),
	})
}

func (h *SessionHandler) computeRebalance(w http.ResponseWriter, r *http.Request) {
	snapshot, err := h.session.Snapshot()
	if err != nil {
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}

	var req rebalanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.ReferenceCurrency == "" {
		req.ReferenceCurrency = models.CurrencyUSD
	}

	rate := decimal.NewFromInt(1)
	if needsRate(snapshot, req.ReferenceCurrency) {
		rate, err = h.fx.GetRate(r.Context(), models.CurrencyUSD, models.CurrencyKRW)
		if err != nil {
			http.Error(w, "Exchange rate unavailable", http.StatusBadGateway)
			return
		}
	}

	result := services.ComputeRebalance(snapshot, req.Targets, rate, req.ReferenceCurrency)
	json.NewEncoder(w).Encode(result)
}

// needsRate reports whether any value sits in a currency other than the
// reference, making the KRW/USD rate load-bearing.
func needsRate(snapshot *models.BalanceSnapshot, referenceCurrency string) bool {
	for currency := range snapshot.CashByCurrency {
		if currency != referenceCurrency {
			return true
		}
	}
	for i := range snapshot.Holdings {
		if snapshot.Holdings[i].Currency != referenceCurrency {
			return true
		}
	}
	return false
}
