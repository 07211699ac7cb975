package ingest

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"fleetops/fleet-ledger/internal/ledgererror"
	"fleetops/fleet-ledger/internal/logging"
	"fleetops/fleet-ledger/internal/models"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSession struct {
	rows      []models.StagedTransaction
	pinned    []string
	pinErr    error
	commitErr error
	committed int
	discarded bool
}

func (f *fakeSession) Rows() []models.StagedTransaction { return f.rows }
func (f *fakeSession) Len() int                         { return len(f.rows) }

func (f *fakeSession) Edit(index int, field, value string) error {
	if field != "memo" {
		return &ledgererror.ValidationError{Row: index, Field: field, Reason: "not allowed here"}
	}
	f.rows[index].Memo = value
	return nil
}

func (f *fakeSession) Delete(index int) error {
	f.rows = append(f.rows[:index], f.rows[index+1:]...)
	return nil
}

func (f *fakeSession) Pin(_ context.Context, index int, keyword string) error {
	if f.pinErr != nil {
		return f.pinErr
	}
	f.pinned = append(f.pinned, fmt.Sprintf("%d:%s", index, keyword))
	return nil
}

func (f *fakeSession) Commit(context.Context) (int, error) {
	if f.commitErr != nil {
		return 0, f.commitErr
	}
	f.committed = len(f.rows)
	f.rows = nil
	return f.committed, nil
}

func (f *fakeSession) Discard() {
	f.discarded = true
	f.rows = nil
}

func twoRows() []models.StagedTransaction {
	row := func(party string) models.StagedTransaction {
		return models.StagedTransaction{
			RawTransactionRow: models.RawTransactionRow{
				TransactionDate:  time.Date(2025, 6, 3, 0, 0, 0, 0, time.UTC),
				Direction:        models.Expense,
				CounterpartyName: party,
				Amount:           55000,
				PaymentMethod:    models.PaymentCard,
			},
			Category: models.CategoryFuel,
		}
	}
	return []models.StagedTransaction{row("GS칼텍스"), row("SK에너지")}
}

func runReview(t *testing.T, s *fakeSession, input string) string {
	t.Helper()
	var out bytes.Buffer
	require.NoError(t, NewReviewer(s, strings.NewReader(input), &out).Run(context.Background()))
	return out.String()
}

func TestReviewer_EditDeleteCommit(t *testing.T) {
	s := &fakeSession{rows: twoRows()}
	out := runReview(t, s, "edit 1 memo 강남점 셀프\ndelete 2\ncommit\nlist\n")

	assert.Equal(t, 1, s.committed)
	assert.Contains(t, out, "강남점 셀프")
	assert.Contains(t, out, "Deleted row 2, 1 left.")
	assert.Contains(t, out, "Committed 1 rows to the ledger.")
	assert.NotContains(t, out, "No staged rows.", "loop stops after commit")
}

func TestReviewer_CommitFailureKeepsLooping(t *testing.T) {
	s := &fakeSession{rows: twoRows(), commitErr: errors.New("database is locked")}
	out := runReview(t, s, "commit\n")

	assert.Contains(t, out, "Commit failed, nothing was written: database is locked")
	assert.Contains(t, out, "Leaving without commit: 2 staged rows were not written.")
}

func TestReviewer_Pin(t *testing.T) {
	s := &fakeSession{rows: twoRows()}
	out := runReview(t, s, "pin 1\npin 2 SK 에너지\nquit\n")

	assert.Equal(t, []string{"0:", "1:SK 에너지"}, s.pinned)
	assert.Contains(t, out, `Pinned "GS칼텍스" -> fuel.`)

	s = &fakeSession{rows: twoRows(), pinErr: fmt.Errorf("rule %q: %w", "GS칼텍스", ledgererror.ErrDuplicateKeyword)}
	out = runReview(t, s, "pin 1\n")
	assert.Contains(t, out, "Rule not saved: keyword already exists.")
}

func TestReviewer_BadInput(t *testing.T) {
	s := &fakeSession{rows: twoRows()}
	out := runReview(t, s, "edit 9 memo x\nedit 1 category coffee\ndelete\nfrobnicate\n\nedit 1\n")

	assert.Contains(t, out, `No row "9" (have 2 rows).`)
	assert.Contains(t, out, "Edit rejected: row 0: invalid category")
	assert.Contains(t, out, "Usage: delete <n>")
	assert.Contains(t, out, `Unknown command "frobnicate"`)
	assert.Contains(t, out, "Usage: edit <n> <field> <value>")
	assert.Len(t, s.rows, 2)
}

func TestReviewer_Discard(t *testing.T) {
	s := &fakeSession{rows: twoRows()}
	out := runReview(t, s, "discard\ncommit\n")

	assert.True(t, s.discarded)
	assert.Equal(t, 0, s.committed)
	assert.Contains(t, out, "Discarded 2 rows.")
}

func TestPrintRows(t *testing.T) {
	rows := twoRows()
	rows[1].LinkedEntity = &models.EntityRef{Type: models.EntityVehicle, ID: "v1"}
	rows[1].ReviewEdited = true

	var out bytes.Buffer
	PrintRows(&out, rows)
	text := out.String()
	assert.Contains(t, text, "COUNTERPARTY")
	assert.Contains(t, text, "2025-06-03")
	assert.Contains(t, text, "55,000")
	assert.Contains(t, text, "car:v1")
	assert.Contains(t, text, "fuel *")

	out.Reset()
	PrintRows(&out, nil)
	assert.Equal(t, "No staged rows.\n", out.String())
}

func TestPrintStats(t *testing.T) {
	var out bytes.Buffer
	PrintStats(&out, models.IngestionStats{Files: 2, FailedFiles: 1, Batches: 5, FailedBatches: 1, Records: 40, Staged: 40, Unmatched: 10})
	assert.Contains(t, out.String(), "Batches: 5 (1 failed)")
	assert.Contains(t, out.String(), "Matched: 75%")
	assert.Contains(t, out.String(), "Some files or batches failed")

	out.Reset()
	PrintStats(&out, models.IngestionStats{Files: 1, Batches: 1, Records: 3, Staged: 3})
	assert.NotContains(t, out.String(), "failed;")
}

func TestHoldLogs_FlushesAfterRelease(t *testing.T) {
	var stderr bytes.Buffer
	l := logrus.New()
	l.SetOutput(&stderr)
	l.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	logger := logging.NewLogrusAdapterFromLogger(l)

	release := holdLogs(logger)
	logger.WithField("file", "june.csv").Warn("extraction failed")
	assert.Empty(t, stderr.String())

	release()
	assert.Contains(t, stderr.String(), "extraction failed")

	logger.Info("after release")
	assert.Contains(t, stderr.String(), "after release")
}

func TestHoldLogs_IgnoresFixedOutputLoggers(t *testing.T) {
	logger := logging.NewMockLogger()
	release := holdLogs(logger)
	logger.Warn("kept")
	release()
	assert.True(t, logger.HasEntry("WARN", "kept"))
}

func TestLoadSources(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "june.csv"), []byte("날짜,금액\n"), 0600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "receipt.png"), []byte{1, 2}, 0600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("skip"), 0600))

	sources, err := LoadSources([]string{dir})
	require.NoError(t, err)
	require.Len(t, sources, 2)
	assert.Equal(t, filepath.Join(dir, "june.csv"), sources[0].Name)
	assert.Equal(t, []byte{1, 2}, sources[1].Data)

	_, err = LoadSources([]string{filepath.Join(dir, "missing.csv")})
	assert.Error(t, err)
}
