package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/logbookhq/logbook/internal/model"
	"github.com/logbookhq/logbook/internal/server/middleware"
	"github.com/logbookhq/logbook/internal/service"
)

// VehicleHandler exposes vehicle search and record editing.
type VehicleHandler struct {
	vehicleSvc *service.VehicleService
}

// NewVehicleHandler creates a VehicleHandler.
func NewVehicleHandler(vehicleSvc *service.VehicleService) *VehicleHandler {
	return &VehicleHandler{vehicleSvc: vehicleSvc}
}

// Search queries the gateway with the criteria given as query parameters.
// At least one of logbookNumber, ownerName, regoNumber must be non-blank.
// GET /api/v1/vehicles
func (h *VehicleHandler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	criteria := model.Criteria{
		LogbookNumber: q.Get("logbookNumber"),
		OwnerName:     q.Get("ownerName"),
		RegoNumber:    q.Get("regoNumber"),
	}

	start := time.Now()
	results, err := h.vehicleSvc.Search(r.Context(), criteria)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, model.SearchResponse{
		Results: results,
		Meta: &model.ResponseMeta{
			Count:  len(results),
			TookMs: float64(time.Since(start).Microseconds()) / 1000.0,
		},
	})
}

// Update submits a full record edit. The row locator in the URL wins over
// any rowIndex in the body, so a record can never be written to a different
// row than the one addressed.
// PUT /api/v1/vehicles/{rowIndex}
func (h *VehicleHandler) Update(w http.ResponseWriter, r *http.Request) {
	var record model.VehicleRecord
	if err := readJSON(r, &record); err != nil {
		writeBadRequest(w, "Invalid request body: "+err.Error())
		return
	}
	record.RowIndex = chi.URLParam(r, "rowIndex")

	sess := middleware.GetSession(r.Context())
	if err := h.vehicleSvc.UpdateRecord(r.Context(), sess, record); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Record updated",
	})
}
