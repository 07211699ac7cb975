package storage

import (
	"context"
	"fmt"
	"io"

	"fleetops/fleet-ledger/internal/models"

	"github.com/gocarina/gocsv"
)

// ExportLedgerCSV writes the entries of month to w as CSV with a header
// row and returns how many entries were written.
func (s *SQLiteStorage) ExportLedgerCSV(ctx context.Context, month models.Month, w io.Writer) (int, error) {
	entries, err := s.ListLedgerEntries(ctx, month)
	if err != nil {
		return 0, err
	}
	if err := WriteLedgerCSV(w, entries); err != nil {
		return 0, err
	}
	return len(entries), nil
}

// WriteLedgerCSV writes entries to w as CSV with a header row.
func WriteLedgerCSV(w io.Writer, entries []models.LedgerEntry) error {
	rows := make([]models.LedgerExportRow, len(entries))
	for i, e := range entries {
		rows[i] = e.ExportRow()
	}
	if err := gocsv.Marshal(&rows, w); err != nil {
		return fmt.Errorf("failed to write ledger CSV: %w", err)
	}
	return nil
}
