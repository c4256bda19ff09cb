package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/LinhLe223/GMV-MAX/src/logger"
	"github.com/LinhLe223/GMV-MAX/src/models"
	"github.com/LinhLe223/GMV-MAX/src/reports"
	"github.com/LinhLe223/GMV-MAX/src/services"
	"github.com/LinhLe223/GMV-MAX/src/utils"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type ReportHandler struct {
	service services.ReconciliationService
}

func NewReportHandler(service services.ReconciliationService) *ReportHandler {
	return &ReportHandler{service: service}
}

// listQuery reads sort, page, perPage and the filters from the query string. Bad numbers fall back to defaults.
func listQuery(r *http.Request) services.ListQuery {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	perPage, _ := strconv.Atoi(q.Get("perPage"))
	sortKey := q.Get("sort")
	if sortKey == "" {
		sortKey = reports.DefaultSortKey
	}
	return services.ListQuery{
		Sort:    sortKey,
		Page:    page,
		PerPage: perPage,
		Filter: reports.Filter{
			Search:  strings.TrimSpace(q.Get("search")),
			Health:  models.HealthStatus(strings.ToUpper(strings.TrimSpace(q.Get("health")))),
			Command: models.Command(strings.ToUpper(strings.TrimSpace(q.Get("command")))),
			Bcg:     models.Quadrant(strings.ToUpper(strings.TrimSpace(q.Get("bcg")))),
		},
	}
}

func (h *ReportHandler) handleList(kind models.EntityKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page, err := h.service.Entities(kind, listQuery(r))
		if err != nil {
			sendServiceError(w, r, err)
			return
		}
		utils.SendJSONWithETag(w, r, page)
	}
}

func (h *ReportHandler) HandleListCreators(w http.ResponseWriter, r *http.Request) {
	h.handleList(models.KindCreator)(w, r)
}

func (h *ReportHandler) HandleListProducts(w http.ResponseWriter, r *http.Request) {
	h.handleList(models.KindProduct)(w, r)
}

func (h *ReportHandler) HandleCreatorVideos(w http.ResponseWriter, r *http.Request) {
	videos, err := h.service.CreatorVideos(r.PathValue("key"))
	if err != nil {
		sendServiceError(w, r, err)
		return
	}
	utils.SendJSONWithETag(w, r, videos)
}

func (h *ReportHandler) HandleCreatorOrders(w http.ResponseWriter, r *http.Request) {
	lines, err := h.service.CreatorOrders(r.PathValue("key"))
	if err != nil {
		sendServiceError(w, r, err)
		return
	}
	utils.SendJSONWithETag(w, r, lines)
}

func (h *ReportHandler) HandleProductCreators(w http.ResponseWriter, r *http.Request) {
	creators, err := h.service.ProductCreators(r.PathValue("key"))
	if err != nil {
		sendServiceError(w, r, err)
		return
	}
	utils.SendJSONWithETag(w, r, creators)
}

func (h *ReportHandler) HandleSummary(w http.ResponseWriter, r *http.Request) {
	kind, err := services.ParseEntityKind(r.URL.Query().Get("kind"))
	if err != nil {
		sendServiceError(w, r, err)
		return
	}
	summary, err := h.service.Summary(kind)
	if err != nil {
		sendServiceError(w, r, err)
		return
	}
	utils.SendJSONWithETag(w, r, summary)
}

func (h *ReportHandler) HandleUnmapped(w http.ResponseWriter, r *http.Request) {
	kind, err := services.ParseEntityKind(r.URL.Query().Get("kind"))
	if err != nil {
		sendServiceError(w, r, err)
		return
	}
	unmapped, err := h.service.Unmapped(kind)
	if err != nil {
		sendServiceError(w, r, err)
		return
	}
	utils.SendJSONWithETag(w, r, unmapped)
}

func (h *ReportHandler) HandleDiagnostics(w http.ResponseWriter, r *http.Request) {
	diag, err := h.service.Diagnostics()
	if err != nil {
		sendServiceError(w, r, err)
		return
	}
	utils.SendJSON(w, diag, http.StatusOK)
}

func (h *ReportHandler) HandleAnalysis(w http.ResponseWriter, r *http.Request) {
	payload, err := h.service.Analysis()
	if err != nil {
		sendServiceError(w, r, err)
		return
	}
	utils.SendJSONWithETag(w, r, payload)
}

// HandleExport streams the entity list as an xlsx workbook.
func (h *ReportHandler) HandleExport(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())
	kind, err := services.ParseEntityKind(r.URL.Query().Get("kind"))
	if err != nil {
		sendServiceError(w, r, err)
		return
	}
	rows, err := h.service.Export(kind)
	if err != nil {
		sendServiceError(w, r, err)
		return
	}

	xl, err := buildWorkbook(string(kind), rows)
	if err != nil {
		log.Error("Failed to build export workbook", "kind", kind, "error", err)
		utils.SendJSONError(w, "Failed to build export", http.StatusInternalServerError)
		return
	}
	defer xl.Close()

	fileName := fmt.Sprintf("gmv-max-%ss-%s.xlsx", kind, time.Now().Format("20060102"))
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", fileName))
	if err := xl.Write(w); err != nil {
		log.Error("Failed to write export workbook", "kind", kind, "error", err)
		return
	}
	log.Info("Export written", "kind", kind, "rows", len(rows)-1)
}

// buildWorkbook writes rows to a single sheet. Cells that parse as numbers are
// stored as numbers so the sheet can be summed.
func buildWorkbook(sheet string, rows [][]string) (*excelize.File, error) {
	xl := excelize.NewFile()
	if err := xl.SetSheetName(xl.GetSheetName(0), sheet); err != nil {
		xl.Close()
		return nil, err
	}
	for i, row := range rows {
		cells := make([]interface{}, len(row))
		for j, v := range row {
			cells[j] = v
			if i > 0 && j >= reports.ExportTextColumns {
				if f, err := strconv.ParseFloat(v, 64); err == nil {
					cells[j] = f
				}
			}
		}
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			xl.Close()
			return nil, err
		}
		if err := xl.SetSheetRow(sheet, cell, &cells); err != nil {
			xl.Close()
			return nil, err
		}
	}
	return xl, nil
}
