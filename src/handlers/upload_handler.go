package handlers

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/LinhLe223/GMV-MAX/src/logger"
	"github.com/LinhLe223/GMV-MAX/src/models"
	"github.com/LinhLe223/GMV-MAX/src/parsers"
	"github.com/LinhLe223/GMV-MAX/src/security/validation"
	"github.com/LinhLe223/GMV-MAX/src/services"
	"github.com/LinhLe223/GMV-MAX/src/utils"
)

// uploadFields are the accepted multipart fields. "files" carries exports whose
// kind is taken from the file name alone.
var uploadFields = []string{"ads", "orders", "inventory", "files"}

type UploadHandler struct {
	service       services.ReconciliationService
	maxUploadSize int64
}

func NewUploadHandler(service services.ReconciliationService, maxUploadSize int64) *UploadHandler {
	return &UploadHandler{service: service, maxUploadSize: maxUploadSize}
}

type uploadResponse struct {
	GenerationID     string                       `json:"generationId"`
	Sources          []services.SourceInfo        `json:"sources"`
	Creators         int                          `json:"creators"`
	Products         int                          `json:"products"`
	UnmappedCreators int                          `json:"unmappedCreators"`
	UnmappedProducts int                          `json:"unmappedProducts"`
	NotFoundSkus     []string                     `json:"notFoundSkus"`
	UnmappedFields   map[models.FileKind][]string `json:"unmappedFields"`
}

func (h *UploadHandler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())

	// One request may carry all three exports.
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize*int64(len(models.AllFileKinds)))
	if err := r.ParseMultipartForm(h.maxUploadSize); err != nil {
		log.Warn("Failed to parse multipart form or request too large", "error", err, "limit", h.maxUploadSize)
		utils.SendJSONError(w, fmt.Sprintf("Failed to parse form or request too large (max %d MB)", h.maxUploadSize/(1024*1024)), http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	var files []services.SourceFile
	for _, field := range uploadFields {
		for _, fileHeader := range r.MultipartForm.File[field] {
			sf, err := h.readUpload(r, field, fileHeader)
			if err != nil {
				utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
				return
			}
			files = append(files, sf)
		}
	}
	if len(files) == 0 {
		utils.SendJSONError(w, "No file received. Use the 'ads', 'orders' or 'inventory' fields.", http.StatusBadRequest)
		return
	}

	log.Info("Processing upload request", "files", len(files))
	gen, err := h.service.Ingest(r.Context(), files)
	if err != nil {
		sendServiceError(w, r, err)
		return
	}

	utils.SendJSON(w, uploadResponse{
		GenerationID:     gen.ID,
		Sources:          gen.Sources,
		Creators:         len(gen.Creators),
		Products:         len(gen.Products),
		UnmappedCreators: len(gen.UnmappedCreators),
		UnmappedProducts: len(gen.UnmappedProducts),
		NotFoundSkus:     gen.NotFoundSkus,
		UnmappedFields:   gen.UnmappedFields,
	}, http.StatusOK)
}

// readUpload validates one part and reads it whole. Spreadsheets are small enough to hold in memory.
func (h *UploadHandler) readUpload(r *http.Request, field string, fileHeader *multipart.FileHeader) (services.SourceFile, error) {
	log := logger.FromContext(r.Context())
	fileName := validation.SanitizeFileName(fileHeader.Filename)

	if fileHeader.Size > h.maxUploadSize {
		log.Warn("Uploaded file header reports size too large", "fileName", fileName, "fileSize", fileHeader.Size, "limit", h.maxUploadSize)
		return services.SourceFile{}, fmt.Errorf("file %q too large, max %d MB", fileName, h.maxUploadSize/(1024*1024))
	}

	clientContentType := fileHeader.Header.Get("Content-Type")
	if err := validation.ValidateClientContentType(clientContentType); err != nil {
		log.Warn("Invalid client-declared file type", "fileName", fileName, "contentType", clientContentType, "error", err)
		return services.SourceFile{}, err
	}

	file, err := fileHeader.Open()
	if err != nil {
		return services.SourceFile{}, fmt.Errorf("failed to read uploaded file %q", fileName)
	}
	defer file.Close()
	data, err := io.ReadAll(file)
	if err != nil {
		return services.SourceFile{}, fmt.Errorf("failed to read uploaded file %q", fileName)
	}

	detectedContentType, err := validation.ValidateFileContentByMagicBytes(fileName, data)
	if err != nil {
		log.Warn("Server-side file content validation failed", "fileName", fileName, "error", err)
		return services.SourceFile{}, err
	}

	declared := field
	if field == "files" {
		declared = ""
	}
	kind, err := parsers.ResolveFileKind(fileName, declared)
	if err != nil {
		return services.SourceFile{}, err
	}
	log.Info("File content validated", "fileName", fileName, "field", field, "kind", kind,
		"clientType", clientContentType, "detectedType", detectedContentType, "bytes", len(data))

	return services.SourceFile{Kind: kind, FileName: fileName, Data: data}, nil
}
