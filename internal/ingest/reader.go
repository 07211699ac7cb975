package ingest

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"fleetops/fleet-ledger/internal/extract"
	"fleetops/fleet-ledger/internal/ledgererror"

	"github.com/xuri/excelize/v2"
	"golang.org/x/net/html/charset"
	"golang.org/x/text/transform"
)

// Source is one uploaded statement or receipt. Data holds the file
// content; Name is used for logging and for the staged rows' source file.
type Source struct {
	Name string
	Data []byte
}

// Kind is the input class of a source.
type Kind int

const (
	KindUnsupported Kind = iota
	KindCSV
	KindXLSX
	KindImage
)

// KindOf classifies a file by its extension.
func KindOf(name string) Kind {
	switch ext := strings.ToLower(filepath.Ext(name)); ext {
	case ".csv":
		return KindCSV
	case ".xlsx":
		return KindXLSX
	default:
		if _, ok := extract.ImageMIMEType(name); ok {
			return KindImage
		}
		return KindUnsupported
	}
}

// SupportedFormats lists the accepted extensions for error messages.
const SupportedFormats = ".csv, .xlsx, .jpg, .jpeg, .png, .webp, .heic, .gif, .pdf"

// ReadTable returns the rows of a tabular source. CSV content is decoded
// with csvCharset first; spreadsheets use their first sheet.
func ReadTable(src Source, csvCharset string) ([][]string, error) {
	switch KindOf(src.Name) {
	case KindCSV:
		return readCSV(src.Data, csvCharset)
	case KindXLSX:
		return readXLSX(src.Data)
	default:
		return nil, &ledgererror.InvalidFormatError{
			FilePath:       src.Name,
			ExpectedFormat: ".csv or .xlsx",
			Msg:            "not a tabular file",
		}
	}
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

func readCSV(data []byte, label string) ([][]string, error) {
	var r io.Reader = bytes.NewReader(bytes.TrimPrefix(data, utf8BOM))

	label = strings.ToLower(strings.TrimSpace(label))
	if label != "" && label != "utf-8" && label != "utf8" {
		enc, _ := charset.Lookup(label)
		if enc == nil {
			return nil, fmt.Errorf("unknown charset %q", label)
		}
		r = transform.NewReader(r, enc.NewDecoder())
	}

	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("error parsing CSV file: %w", err)
	}
	return rows, nil
}

func readXLSX(data []byte) ([][]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("error opening workbook: %w", err)
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("error reading sheet %q: %w", sheets[0], err)
	}
	return rows, nil
}
