package validation

import (
	"bytes"
	"fmt"
	"net/http"
	"strings"

	"github.com/LinhLe223/GMV-MAX/src/logger"
)

// AllowedClientContentTypes is a map for quick lookup of allowed client-declared MIME types.
var AllowedClientContentTypes = map[string]bool{
	"text/csv":                 true,
	"application/csv":          true,
	"application/vnd.ms-excel": true, // .xls, and CSV from older Excel
	"text/plain":               true,
	"application/octet-stream": true, // browsers send this when they cannot tell
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet": true,
	"application/vnd.ms-excel.sheet.macroenabled.12":                    true,
	"application/zip":          false, // a bare archive is never an export
	"application/x-msdownload": false,
}

var (
	zipMagic = []byte("PK\x03\x04")
	oleMagic = []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}
)

// ValidateClientContentType checks the Content-Type header provided by the client.
// An empty header is accepted; the magic bytes decide.
func ValidateClientContentType(contentType string) error {
	ct := strings.ToLower(strings.TrimSpace(strings.Split(contentType, ";")[0]))
	if ct == "" {
		return nil
	}
	if allowed, exists := AllowedClientContentTypes[ct]; !exists || !allowed {
		logger.L.Warn("Disallowed client-declared Content-Type", "contentType", contentType)
		return fmt.Errorf("client-declared file type '%s' is not allowed for spreadsheet upload", contentType)
	}
	return nil
}

// ValidateFileContentByMagicBytes checks the actual file content signature.
// xlsx files are zip archives, xls files are OLE compound documents, and CSV must be text.
// It returns the detected content type and an error if validation fails.
func ValidateFileContentByMagicBytes(fileName string, data []byte) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("file %q is empty", fileName)
	}
	head := data
	if len(head) > 512 {
		head = head[:512]
	}

	ext := strings.ToLower(fileName)
	if i := strings.LastIndex(ext, "."); i >= 0 {
		ext = ext[i:]
	} else {
		ext = ""
	}

	switch {
	case bytes.HasPrefix(head, zipMagic):
		if ext != "" && ext != ".xlsx" && ext != ".xlsm" {
			return "application/zip", fmt.Errorf("file %q is a zip archive but not named .xlsx", fileName)
		}
		logger.L.Debug("File content type (magic bytes) validated", "fileName", fileName, "detected", "xlsx")
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", nil
	case bytes.HasPrefix(head, oleMagic):
		if ext != "" && ext != ".xls" {
			return "application/x-ole-storage", fmt.Errorf("file %q is an OLE document but not named .xls", fileName)
		}
		logger.L.Debug("File content type (magic bytes) validated", "fileName", fileName, "detected", "xls")
		return "application/vnd.ms-excel", nil
	}

	detectedContentType := http.DetectContentType(head)
	detectedContentType = strings.ToLower(strings.Split(detectedContentType, ";")[0])

	allowedDetectedTypes := map[string]bool{
		"text/plain":               true,
		"text/csv":                 true,
		"application/csv":          true,
		"application/octet-stream": true, // UTF-8 text with a BOM or unusual bytes
	}
	if !allowedDetectedTypes[detectedContentType] {
		logger.L.Warn("Disallowed detected file content type (magic bytes)", "fileName", fileName, "detectedContentType", detectedContentType)
		return detectedContentType, fmt.Errorf("detected file content type '%s' is not consistent with a spreadsheet export", detectedContentType)
	}

	logger.L.Debug("File content type (magic bytes) validated", "fileName", fileName, "detectedContentType", detectedContentType)
	return detectedContentType, nil
}
