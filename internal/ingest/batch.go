package ingest

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strings"
)

// headerKeywords mark a statement's header row: date, amount and
// merchant/description columns in the layouts Korean banks and card
// companies export.
var headerKeywords = []string{
	"날짜", "일자", "일시", "거래일", "이용일", "승인일",
	"금액", "출금", "입금", "이용금액", "승인금액",
	"가맹점", "거래처", "내용", "적요", "사용처",
	"date", "amount", "merchant", "description", "payee",
}

// FindHeaderRow returns the index of the first row among the first
// scanRows rows that contains a header keyword, or 0 when none does.
func FindHeaderRow(rows [][]string, scanRows int) int {
	for i := 0; i < len(rows) && i < scanRows; i++ {
		if isHeaderRow(rows[i]) {
			return i
		}
	}
	return 0
}

func isHeaderRow(row []string) bool {
	for _, cell := range row {
		cell = strings.ToLower(strings.TrimSpace(cell))
		if cell == "" {
			continue
		}
		for _, kw := range headerKeywords {
			if strings.Contains(cell, kw) {
				return true
			}
		}
	}
	return false
}

func isBlankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// SplitBatches locates the header, drops blank body rows and splits the
// rest into batches of at most size rows. Every batch is re-encoded as CSV
// text with the header row first.
func SplitBatches(rows [][]string, scanRows, size int) ([]string, error) {
	if size <= 0 {
		return nil, fmt.Errorf("batch size must be positive, got %d", size)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	headerIdx := FindHeaderRow(rows, scanRows)
	header := rows[headerIdx]

	body := make([][]string, 0, len(rows)-headerIdx-1)
	for _, row := range rows[headerIdx+1:] {
		if !isBlankRow(row) {
			body = append(body, row)
		}
	}

	var batches []string
	for start := 0; start < len(body); start += size {
		end := min(start+size, len(body))
		text, err := encodeCSV(header, body[start:end])
		if err != nil {
			return nil, err
		}
		batches = append(batches, text)
	}
	return batches, nil
}

func encodeCSV(header []string, rows [][]string) (string, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(header); err != nil {
		return "", fmt.Errorf("error writing CSV header: %w", err)
	}
	if err := w.WriteAll(rows); err != nil {
		return "", fmt.Errorf("error writing CSV rows: %w", err)
	}
	return buf.String(), nil
}
