package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/upwardright/rebalance/internal/apperrors"
	"github.com/upwardright/rebalance/internal/models"
	"github.com/upwardright/rebalance/internal/services"
)

type RecordHandler struct {
	service services.RecordService
}

func NewRecordHandler(service services.RecordService) *RecordHandler {
	return &RecordHandler{service: service}
}

// HandleRecords handles collection-level operations for rebalancing records.
// @Summary List or create rebalancing records
// @Tags records
// @Accept json
// @Produce json
// @Param account query string true "Account number"
// @Success 200 {array} models.RebalanceRecord
// @Failure 400 {string} string "Invalid request"
// @Failure 500 {string} string "Internal server error"
// @Router /records [get]
// @Router /records [post]
func (h *RecordHandler) HandleRecords(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	switch r.Method {
	case http.MethodGet:
		h.listRecords(w, r)
	case http.MethodPost:
		h.createRecord(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// HandleRecord handles item-level operations for one record.
// @Summary Get or delete a rebalancing record
// @Tags records
// @Produce json
// @Param id path string true "Record ID"
// @Success 200 {object} models.RebalanceRecord
// @Failure 404 {string} string "Not found"
// @Router /records/{id} [get]
// @Router /records/{id} [delete]
func (h *RecordHandler) HandleRecord(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	id := mux.Vars(r)["id"]
	if id == "" {
		http.Error(w, "Record ID is required", http.StatusBadRequest)
		return
	}

	switch r.Method {
	case http.MethodGet:
		record, err := h.service.Get(r.Context(), id)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				http.Error(w, "Record not found", http.StatusNotFound)
				return
			}
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		json.NewEncoder(w).Encode(record)
	case http.MethodDelete:
		if err := h.service.Delete(r.Context(), id); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *RecordHandler) listRecords(w http.ResponseWriter, r *http.Request) {
	account := r.URL.Query().Get("account")
	if account == "" {
		http.Error(w, "account query parameter is required", http.StatusBadRequest)
		return
	}

	records, err := h.service.ListByAccount(r.Context(), account)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if records == nil {
		records = []*models.RebalanceRecord{}
	}
	json.NewEncoder(w).Encode(records)
}

func (h *RecordHandler) createRecord(w http.ResponseWriter, r *http.Request) {
	var record models.RebalanceRecord
	if err := json.NewDecoder(r.Body).Decode(&record); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.service.Save(r.Context(), &record); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(record)
}
