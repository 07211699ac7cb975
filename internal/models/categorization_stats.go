package models

import (
	"fleetops/fleet-ledger/internal/logging"
)

// IngestionStats tracks what an ingestion run produced.
type IngestionStats struct {
	Files          int // files submitted
	FailedFiles    int // files that contributed nothing because reading or extraction failed
	Batches        int // extraction requests sent
	FailedBatches  int // extraction requests that contributed zero rows
	Records        int // records returned by the extraction service
	SkippedRecords int // records that could not be mapped to a row
	Staged         int // rows appended to the review buffer
	Unmatched      int // staged rows that fell through to the fallback category
}

// LogSummary logs a summary of the run.
func (s IngestionStats) LogSummary(logger logging.Logger) {
	if logger == nil {
		return
	}

	logger.Info("Ingestion summary",
		logging.Field{Key: "files", Value: s.Files},
		logging.Field{Key: "failed_files", Value: s.FailedFiles},
		logging.Field{Key: "batches", Value: s.Batches},
		logging.Field{Key: "failed_batches", Value: s.FailedBatches},
		logging.Field{Key: "records", Value: s.Records},
		logging.Field{Key: "skipped_records", Value: s.SkippedRecords},
		logging.Field{Key: "staged", Value: s.Staged},
		logging.Field{Key: "match_rate", Value: s.MatchRate()},
	)
}

// MatchRate is the share of staged rows that matched something other than
// the fallback category, as a percentage.
func (s IngestionStats) MatchRate() float64 {
	if s.Staged == 0 {
		return 0
	}
	return float64(s.Staged-s.Unmatched) / float64(s.Staged) * 100
}

// HasFailures reports whether any file or batch was skipped.
func (s IngestionStats) HasFailures() bool {
	return s.FailedFiles > 0 || s.FailedBatches > 0
}
