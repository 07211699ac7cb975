// Package extract talks to the external extraction service that turns
// statement batches and receipt images into structured transaction records.
package extract

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Request is one unit of work for the extraction service: either a CSV
// batch (header row included) or the raw bytes of an image or PDF.
type Request struct {
	ID       string
	FileName string
	CSV      string
	Data     []byte
	MIMEType string
}

// NewCSVRequest builds a request for a CSV batch.
func NewCSVRequest(fileName, csvText string) Request {
	return Request{ID: uuid.NewString(), FileName: fileName, CSV: csvText, MIMEType: "text/csv"}
}

// NewImageRequest builds a request for an image or PDF.
func NewImageRequest(fileName string, data []byte, mimeType string) Request {
	return Request{ID: uuid.NewString(), FileName: fileName, Data: data, MIMEType: mimeType}
}

// IsImage reports whether the request carries binary content.
func (r Request) IsImage() bool {
	return len(r.Data) > 0
}

// Result is what the service returned for one request. Rejected counts
// records that were present in the response but failed schema validation.
type Result struct {
	Records  []Record
	Rejected int
}

// Extractor sends one request to the extraction service. Any transport
// failure, non-2xx status, non-JSON body, {"error": ...} payload or
// schema-invalid payload is returned as an error.
//
//go:generate mockgen -destination=mocks/mock_extractor.go -package=mock_extract -source=extractor.go Extractor
type Extractor interface {
	Extract(ctx context.Context, req Request) (*Result, error)
}

var imageMIMETypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".webp": "image/webp",
	".heic": "image/heic",
	".gif":  "image/gif",
	".pdf":  "application/pdf",
}

// ImageMIMEType returns the MIME type for an image or PDF file name.
func ImageMIMEType(fileName string) (string, bool) {
	mime, ok := imageMIMETypes[strings.ToLower(filepath.Ext(fileName))]
	return mime, ok
}

// ServiceError is an error payload returned by the extraction service.
type ServiceError struct {
	Message string
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("extraction service error: %s", e.Message)
}
