package tabular

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrMalformedFile means the spreadsheet is unreadable or is not the expected export.
	ErrMalformedFile = errors.New("malformed file")
)

// HeaderNotFoundError reports a file whose first rows carry none of the expected header keywords.
type HeaderNotFoundError struct {
	FileName string
	FirstRow []string
}

func (e *HeaderNotFoundError) Error() string {
	return fmt.Sprintf("không tìm thấy dòng tiêu đề hợp lệ trong file %q (dòng đầu: %s)", e.FileName, strings.Join(e.FirstRow, " | "))
}

func (e *HeaderNotFoundError) Unwrap() error { return ErrMalformedFile }

// MissingFieldsError reports required columns none of whose aliases are present.
type MissingFieldsError struct {
	FileName string
	Fields   []string
}

func (e *MissingFieldsError) Error() string {
	return fmt.Sprintf("file %q is missing required columns: %s", e.FileName, strings.Join(e.Fields, ", "))
}

func (e *MissingFieldsError) Unwrap() error { return ErrMalformedFile }
