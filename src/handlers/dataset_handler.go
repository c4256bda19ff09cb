package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/LinhLe223/GMV-MAX/src/logger"
	"github.com/LinhLe223/GMV-MAX/src/models"
	"github.com/LinhLe223/GMV-MAX/src/services"
	"github.com/LinhLe223/GMV-MAX/src/utils"
)

// DatasetHandler manages the loaded dataset and the fee configuration applied to it.
type DatasetHandler struct {
	service services.ReconciliationService
}

func NewDatasetHandler(service services.ReconciliationService) *DatasetHandler {
	return &DatasetHandler{service: service}
}

func (h *DatasetHandler) HandleGetCostStructure(w http.ResponseWriter, r *http.Request) {
	utils.SendJSON(w, h.service.CostStructure(), http.StatusOK)
}

func (h *DatasetHandler) HandlePutCostStructure(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())

	var cs models.CostStructure
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&cs); err != nil {
		log.Warn("Invalid cost structure body", "error", err)
		utils.SendJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if cs.OperatingFee.Type == "" {
		cs.OperatingFee.Type = models.FeeFixed
	}

	if err := h.service.SetCostStructure(r.Context(), cs); err != nil {
		sendServiceError(w, r, err)
		return
	}
	utils.SendJSON(w, h.service.CostStructure(), http.StatusOK)
}

func (h *DatasetHandler) HandleDeleteDataset(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Reset(r.Context()); err != nil {
		sendServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
