package handlers

import (
	"net/http"
	"strings"

	"github.com/LinhLe223/GMV-MAX/src/services"
	"github.com/LinhLe223/GMV-MAX/src/utils"
)

// AdsHandler serves the ads-only views, which need no orders or inventory.
type AdsHandler struct {
	service services.ReconciliationService
}

func NewAdsHandler(service services.ReconciliationService) *AdsHandler {
	return &AdsHandler{service: service}
}

func (h *AdsHandler) HandleSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.service.AdsSummary()
	if err != nil {
		sendServiceError(w, r, err)
		return
	}
	utils.SendJSONWithETag(w, r, summary)
}

func (h *AdsHandler) HandleCampaigns(w http.ResponseWriter, r *http.Request) {
	campaigns, err := h.service.Campaigns()
	if err != nil {
		sendServiceError(w, r, err)
		return
	}
	utils.SendJSONWithETag(w, r, campaigns)
}

// HandleCampaignCreators lists the creators advertising ?product=, matched by campaign or product id.
func (h *AdsHandler) HandleCampaignCreators(w http.ResponseWriter, r *http.Request) {
	product := strings.TrimSpace(r.URL.Query().Get("product"))
	if product == "" {
		utils.SendJSONError(w, "query parameter 'product' is required", http.StatusBadRequest)
		return
	}
	creators, err := h.service.AdCreators(product)
	if err != nil {
		sendServiceError(w, r, err)
		return
	}
	utils.SendJSONWithETag(w, r, creators)
}

func (h *AdsHandler) HandleRoiDistribution(w http.ResponseWriter, r *http.Request) {
	buckets, err := h.service.RoiDistribution()
	if err != nil {
		sendServiceError(w, r, err)
		return
	}
	utils.SendJSONWithETag(w, r, buckets)
}
