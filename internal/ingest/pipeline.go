// Package ingest turns uploaded statements and receipt images into
// classified rows held in a review session until they are committed to the
// ledger.
package ingest

import (
	"context"
	"fmt"

	"fleetops/fleet-ledger/internal/categorizer"
	"fleetops/fleet-ledger/internal/extract"
	"fleetops/fleet-ledger/internal/ledgererror"
	"fleetops/fleet-ledger/internal/logging"
	"fleetops/fleet-ledger/internal/models"
)

// Default tuning used when Options leaves a value unset.
const (
	DefaultBatchSize      = 30
	DefaultHeaderScanRows = 20
)

// EntitySnapshotter serves the current entity registry snapshot.
type EntitySnapshotter interface {
	Snapshot() models.EntitySet
}

// RuleSnapshotter serves the current classification rules.
type RuleSnapshotter interface {
	Snapshot() []models.ClassificationRule
}

// RulePinner stores a new classification rule.
type RulePinner interface {
	Pin(ctx context.Context, rule models.ClassificationRule) error
}

// RuleStore is what the pipeline and its sessions need from the rule store.
type RuleStore interface {
	RuleSnapshotter
	RulePinner
}

// LedgerWriter persists committed rows in one all-or-nothing write.
type LedgerWriter interface {
	InsertLedgerEntries(ctx context.Context, entries []models.LedgerEntry) ([]models.LedgerEntry, error)
}

// Options tunes tabular processing.
type Options struct {
	BatchSize      int
	HeaderScanRows int
	CSVCharset     string
}

func (o Options) withDefaults() Options {
	if o.BatchSize <= 0 {
		o.BatchSize = DefaultBatchSize
	}
	if o.HeaderScanRows <= 0 {
		o.HeaderScanRows = DefaultHeaderScanRows
	}
	if o.CSVCharset == "" {
		o.CSVCharset = "utf-8"
	}
	return o
}

// Pipeline runs statement ingestion. Files and batches are processed one
// at a time, in order.
type Pipeline struct {
	extractor  extract.Extractor
	classifier *categorizer.Classifier
	entities   EntitySnapshotter
	rules      RuleStore
	ledger     LedgerWriter
	opts       Options
	logger     logging.Logger
}

// NewPipeline wires a pipeline.
func NewPipeline(
	extractor extract.Extractor,
	classifier *categorizer.Classifier,
	entities EntitySnapshotter,
	rules RuleStore,
	ledger LedgerWriter,
	opts Options,
	logger logging.Logger,
) *Pipeline {
	if logger == nil {
		logger = logging.NewDiscardLogger()
	}
	if classifier == nil {
		classifier = categorizer.NewClassifier(logger)
	}
	return &Pipeline{
		extractor:  extractor,
		classifier: classifier,
		entities:   entities,
		rules:      rules,
		ledger:     ledger,
		opts:       opts.withDefaults(),
		logger:     logger,
	}
}

// Ingest extracts, classifies and stages every source. A file or batch
// that fails contributes no rows and is counted in the returned stats; it
// never stops the remaining work.
func (p *Pipeline) Ingest(ctx context.Context, sources []Source, progress ProgressFunc) (*Session, models.IngestionStats) {
	snap := categorizer.Snapshot{
		Rules:    p.rules.Snapshot(),
		Entities: p.entities.Snapshot(),
	}
	session := newSession(snap.Entities, p.rules, p.ledger, p.logger)
	stats := models.IngestionStats{Files: len(sources)}
	tracker := newProgressTracker(len(sources), progress)

	logger := p.logger.WithField(logging.FieldSession, session.ID())
	logger.Info("Starting ingestion",
		logging.Field{Key: logging.FieldCount, Value: len(sources)},
		logging.Field{Key: "rules", Value: len(snap.Rules)},
		logging.Field{Key: "entities", Value: snap.Entities.Size()})

	for _, src := range sources {
		rows := p.ingestFile(ctx, src, &stats, tracker, logger.WithField(logging.FieldFile, src.Name))
		for _, row := range rows {
			staged := p.classifier.Stage(snap, row, src.Name)
			if staged.Category == models.CategoryOtherOperatingExpense && staged.LinkedEntity == nil {
				stats.Unmatched++
			}
			session.rows = append(session.rows, staged)
		}
		stats.Staged += len(rows)
		tracker.fileDone()
	}
	tracker.finish()

	stats.LogSummary(logger)
	return session, stats
}

func (p *Pipeline) ingestFile(ctx context.Context, src Source, stats *models.IngestionStats, tracker *progressTracker, logger logging.Logger) []models.RawTransactionRow {
	requests, err := p.buildRequests(src)
	if err != nil {
		stats.FailedFiles++
		logger.WithError(err).Warn("Skipping file")
		return nil
	}
	tracker.read()

	logger.Debug("File prepared", logging.Field{Key: logging.FieldBatches, Value: len(requests)})

	var rows []models.RawTransactionRow
	failed := 0
	for i, req := range requests {
		stats.Batches++
		batch := 0
		if KindOf(src.Name) != KindImage {
			batch = i + 1
		}

		result, err := p.extractor.Extract(ctx, req)
		if err != nil {
			failed++
			stats.FailedBatches++
			extErr := &ledgererror.ExtractionError{FilePath: src.Name, Batch: batch, Err: err}
			logger.WithError(extErr).Warn("Extraction failed, batch skipped",
				logging.Field{Key: logging.FieldBatch, Value: batch},
				logging.Field{Key: logging.FieldRequestID, Value: req.ID})
			tracker.batch(i+1, len(requests))
			continue
		}

		stats.Records += len(result.Records) + result.Rejected
		stats.SkippedRecords += result.Rejected
		for j, rec := range result.Records {
			row, err := rec.ToRow()
			if err != nil {
				stats.SkippedRecords++
				logger.WithError(err).Debug("Dropping unmappable record",
					logging.Field{Key: logging.FieldBatch, Value: batch},
					logging.Field{Key: logging.FieldRowIndex, Value: j})
				continue
			}
			rows = append(rows, row)
		}
		tracker.batch(i+1, len(requests))
	}

	if len(requests) > 0 && failed == len(requests) {
		stats.FailedFiles++
	}
	return rows
}

// buildRequests reads a source and turns it into extraction requests: one
// per batch for tabular files, a single one for images.
func (p *Pipeline) buildRequests(src Source) ([]extract.Request, error) {
	switch KindOf(src.Name) {
	case KindImage:
		if len(src.Data) == 0 {
			return nil, fmt.Errorf("file %s is empty", src.Name)
		}
		mime, _ := extract.ImageMIMEType(src.Name)
		return []extract.Request{extract.NewImageRequest(src.Name, src.Data, mime)}, nil

	case KindCSV, KindXLSX:
		table, err := ReadTable(src, p.opts.CSVCharset)
		if err != nil {
			return nil, err
		}
		batches, err := SplitBatches(table, p.opts.HeaderScanRows, p.opts.BatchSize)
		if err != nil {
			return nil, err
		}
		requests := make([]extract.Request, len(batches))
		for i, text := range batches {
			requests[i] = extract.NewCSVRequest(src.Name, text)
		}
		return requests, nil

	default:
		return nil, &ledgererror.InvalidFormatError{
			FilePath:       src.Name,
			ExpectedFormat: SupportedFormats,
			Msg:            "unsupported file type",
		}
	}
}
