package parsers

import (
	"io"

	"github.com/LinhLe223/GMV-MAX/src/models"
	"github.com/LinhLe223/GMV-MAX/src/parsers/tabular"
)

// Parser turns one uploaded spreadsheet into typed records.
type Parser interface {
	Kind() models.FileKind
	Parse(file io.Reader, fileName string) (*models.ParsedFile, error)
}

// Errors raised while parsing, re-exported for callers that only import this package.
var (
	ErrMalformedFile   = tabular.ErrMalformedFile
	ErrUnknownFileKind = errUnknownFileKind
)

type HeaderNotFoundError = tabular.HeaderNotFoundError
type MissingFieldsError = tabular.MissingFieldsError
