package ingest

import (
	"context"
	"fmt"
	"strings"

	"fleetops/fleet-ledger/internal/currencyutils"
	"fleetops/fleet-ledger/internal/dateutils"
	"fleetops/fleet-ledger/internal/ledgererror"
	"fleetops/fleet-ledger/internal/logging"
	"fleetops/fleet-ledger/internal/models"

	"github.com/google/uuid"
)

// Editable review fields.
const (
	FieldDate         = "date"
	FieldCounterparty = "counterparty"
	FieldMemo         = "memo"
	FieldCategory     = "category"
	FieldLink         = "link"
	FieldAmount       = "amount"
)

// EditableFields lists the fields Edit accepts.
var EditableFields = []string{FieldDate, FieldCounterparty, FieldMemo, FieldCategory, FieldLink, FieldAmount}

// Session is the review buffer of one ingestion run. It is owned by a
// single caller and is not safe for concurrent use. Nothing is persisted
// until Commit.
type Session struct {
	id       string
	rows     []models.StagedTransaction
	entities models.EntitySet
	rules    RulePinner
	ledger   LedgerWriter
	logger   logging.Logger
}

func newSession(entities models.EntitySet, rules RulePinner, ledger LedgerWriter, logger logging.Logger) *Session {
	id := uuid.NewString()
	return &Session{
		id:       id,
		entities: entities,
		rules:    rules,
		ledger:   ledger,
		logger:   logger.WithField(logging.FieldSession, id),
	}
}

// ID identifies the session in logs.
func (s *Session) ID() string {
	return s.id
}

// Rows returns a copy of the staged rows.
func (s *Session) Rows() []models.StagedTransaction {
	out := make([]models.StagedTransaction, len(s.rows))
	copy(out, s.rows)
	return out
}

// Len returns the number of staged rows.
func (s *Session) Len() int {
	return len(s.rows)
}

func (s *Session) row(index int) (*models.StagedTransaction, error) {
	if index < 0 || index >= len(s.rows) {
		return nil, fmt.Errorf("row %d: %w (have %d rows)", index, ledgererror.ErrNotFound, len(s.rows))
	}
	return &s.rows[index], nil
}

// Edit changes one field of a staged row. Category and link edits mark
// the row as reviewed. A category must come from the taxonomy and a link
// must name a registered entity; "none" clears the link.
func (s *Session) Edit(index int, field, value string) error {
	row, err := s.row(index)
	if err != nil {
		return err
	}
	invalid := func(reason string) error {
		return &ledgererror.ValidationError{Row: index, Field: field, Reason: reason}
	}

	value = strings.TrimSpace(value)
	switch strings.ToLower(field) {
	case FieldDate:
		date, _, err := dateutils.ParseDate(value)
		if err != nil {
			return invalid(err.Error())
		}
		row.TransactionDate = date

	case FieldCounterparty:
		row.CounterpartyName = value

	case FieldMemo:
		row.Memo = value

	case FieldCategory:
		if !models.IsKnownCategory(value) {
			return invalid(fmt.Sprintf("%q is not in the taxonomy", value))
		}
		row.Category = value
		row.ReviewEdited = true

	case FieldLink:
		ref, err := models.ParseEntityRef(value)
		if err != nil {
			return invalid(err.Error())
		}
		if ref != nil && !s.entities.Contains(*ref) {
			return invalid(fmt.Sprintf("%s is not registered", ref))
		}
		row.LinkedEntity = ref
		row.ReviewEdited = true

	case FieldAmount:
		amount, err := currencyutils.ParseWholeAmount(value)
		if err != nil {
			return invalid("must be a non-negative whole number")
		}
		row.Amount = amount

	default:
		return invalid(fmt.Sprintf("unknown field, want one of %s", strings.Join(EditableFields, ", ")))
	}

	s.logger.Debug("Staged row edited",
		logging.Field{Key: logging.FieldRowIndex, Value: index},
		logging.Field{Key: "field", Value: field})
	return nil
}

// Delete removes a staged row. Later rows shift down by one.
func (s *Session) Delete(index int) error {
	if _, err := s.row(index); err != nil {
		return err
	}
	s.rows = append(s.rows[:index], s.rows[index+1:]...)
	return nil
}

// Pin saves the row's classification as a rule. An empty keyword means
// the row's counterparty name.
func (s *Session) Pin(ctx context.Context, index int, keyword string) error {
	row, err := s.row(index)
	if err != nil {
		return err
	}
	if strings.TrimSpace(keyword) == "" {
		keyword = row.CounterpartyName
	}
	if s.rules == nil {
		return fmt.Errorf("no rule store configured")
	}

	rule := models.ClassificationRule{
		Keyword:      keyword,
		Category:     row.Category,
		LinkedEntity: row.LinkedEntity,
	}
	return s.rules.Pin(ctx, rule)
}

// Validate checks every row for the fields a ledger entry needs.
func (s *Session) Validate() error {
	for i, row := range s.rows {
		switch {
		case row.TransactionDate.IsZero():
			return &ledgererror.ValidationError{Row: i, Field: FieldDate, Reason: "is not set"}
		case strings.TrimSpace(row.CounterpartyName) == "":
			return &ledgererror.ValidationError{Row: i, Field: FieldCounterparty, Reason: "must not be empty"}
		case row.Amount <= 0:
			return &ledgererror.ValidationError{Row: i, Field: FieldAmount, Reason: "must be greater than zero"}
		case !row.Direction.Valid():
			return &ledgererror.ValidationError{Row: i, Field: "type", Reason: "must be income or expense"}
		}
	}
	return nil
}

// Commit writes every staged row to the ledger in one batch. On any
// failure nothing is written and the buffer is left as it was; on success
// the buffer is emptied and the number of rows written is returned.
func (s *Session) Commit(ctx context.Context) (int, error) {
	if len(s.rows) == 0 {
		return 0, nil
	}
	if err := s.Validate(); err != nil {
		return 0, err
	}

	entries := make([]models.LedgerEntry, len(s.rows))
	for i, row := range s.rows {
		entries[i] = row.ToLedgerEntry("")
	}

	stored, err := s.ledger.InsertLedgerEntries(ctx, entries)
	if err != nil {
		s.logger.WithError(err).Error("Commit failed, review buffer kept",
			logging.Field{Key: logging.FieldCount, Value: len(entries)})
		return 0, &ledgererror.CommitError{Rows: len(entries), Err: err}
	}

	s.rows = nil
	s.logger.Info("Committed staged rows", logging.Field{Key: logging.FieldCount, Value: len(stored)})
	return len(stored), nil
}

// Discard drops every staged row.
func (s *Session) Discard() {
	s.logger.Info("Discarded staged rows", logging.Field{Key: logging.FieldCount, Value: len(s.rows)})
	s.rows = nil
}
