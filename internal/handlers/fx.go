package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/upwardright/rebalance/internal/models"
	"github.com/upwardright/rebalance/internal/services"
)

type FXHandler struct {
	provider services.FXProvider
}

func NewFXHandler(provider services.FXProvider) *FXHandler {
	return &FXHandler{provider: provider}
}

type fxRateResponse struct {
	From string          `json:"from"`
	To   string          `json:"to"`
	Rate decimal.Decimal `json:"rate"`
}

// HandleRate returns the cached exchange rate for a currency pair.
// @Summary Get an exchange rate
// @Tags fx
// @Produce json
// @Param from query string false "Base currency (default USD)"
// @Param to query string false "Quote currency (default KRW)"
// @Success 200 {object} fxRateResponse
// @Failure 502 {string} string "Upstream FX API unavailable"
// @Router /fx/rate [get]
func (h *FXHandler) HandleRate(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	q := r.URL.Query()
	from := strings.ToUpper(q.Get("from"))
	to := strings.ToUpper(q.Get("to"))
	if from == "" {
		from = models.CurrencyUSD
	}
	if to == "" {
		to = models.CurrencyKRW
	}

	rate, err := h.provider.GetRate(r.Context(), from, to)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}
	json.NewEncoder(w).Encode(fxRateResponse{From: from, To: to, Rate: rate})
}
