package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"fleetops/fleet-ledger/internal/dateutils"
	"fleetops/fleet-ledger/internal/ledgererror"
	"fleetops/fleet-ledger/internal/logging"
	"fleetops/fleet-ledger/internal/models"

	"github.com/google/uuid"
)

const ledgerColumns = `id, transaction_date, type, status, category, client_name, description,
	amount, payment_method, related_type, related_id, created_at`

// InsertLedgerEntries writes every entry in one transaction. Either all
// entries are stored or none are. Entries without an id get a new uuid;
// the stored entries are returned.
func (s *SQLiteStorage) InsertLedgerEntries(ctx context.Context, entries []models.LedgerEntry) ([]models.LedgerEntry, error) {
	if len(entries) == 0 {
		return nil, nil
	}

	now := time.Now().UTC()
	stored := make([]models.LedgerEntry, len(entries))
	copy(stored, entries)

	err := s.withTx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO ledger_entries (`+ledgerColumns+`)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`)
		if err != nil {
			return fmt.Errorf("failed to prepare statement: %w", err)
		}
		defer func() { _ = stmt.Close() }()

		for i := range stored {
			e := &stored[i]
			if e.ID == "" {
				e.ID = uuid.NewString()
			}
			if e.CreatedAt.IsZero() {
				e.CreatedAt = now
			}
			if e.Amount < 0 {
				return fmt.Errorf("entry %s: negative amount %d", e.ID, e.Amount)
			}
			_, err := stmt.ExecContext(ctx,
				e.ID,
				dateutils.ToISODate(e.TransactionDate),
				string(e.Type),
				string(e.Status),
				e.Category,
				e.ClientName,
				e.Description,
				e.Amount,
				string(e.PaymentMethod),
				string(e.RelatedType),
				e.RelatedID,
				e.CreatedAt,
			)
			if err != nil {
				return fmt.Errorf("failed to insert ledger entry %d: %w", i, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Debug("Inserted ledger entries", logging.Field{Key: logging.FieldCount, Value: len(stored)})
	return stored, nil
}

// ListLedgerEntries returns the entries dated within month, oldest first.
func (s *SQLiteStorage) ListLedgerEntries(ctx context.Context, month models.Month) ([]models.LedgerEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+ledgerColumns+`
		FROM ledger_entries
		WHERE transaction_date BETWEEN ? AND ?
		ORDER BY transaction_date, created_at, id
	`, dateutils.ToISODate(month.Start()), dateutils.ToISODate(month.End()))
	if err != nil {
		return nil, fmt.Errorf("failed to query ledger entries: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var entries []models.LedgerEntry
	for rows.Next() {
		e, err := scanLedgerEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// ExistingObligationKeys returns the (related id, category) pairs already
// present in month, across all statuses.
func (s *SQLiteStorage) ExistingObligationKeys(ctx context.Context, month models.Month) (map[models.ObligationKey]struct{}, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT related_id, category
		FROM ledger_entries
		WHERE transaction_date BETWEEN ? AND ? AND related_id != ''
	`, dateutils.ToISODate(month.Start()), dateutils.ToISODate(month.End()))
	if err != nil {
		return nil, fmt.Errorf("failed to query obligation keys: %w", err)
	}
	defer func() { _ = rows.Close() }()

	keys := make(map[models.ObligationKey]struct{})
	for rows.Next() {
		var key models.ObligationKey
		if err := rows.Scan(&key.ContractID, &key.Category); err != nil {
			return nil, fmt.Errorf("failed to scan obligation key: %w", err)
		}
		keys[key] = struct{}{}
	}
	return keys, rows.Err()
}

// GetLedgerEntry returns one entry or ledgererror.ErrNotFound.
func (s *SQLiteStorage) GetLedgerEntry(ctx context.Context, id string) (models.LedgerEntry, error) {
	return s.getLedgerEntry(ctx, s.db, id)
}

func (s *SQLiteStorage) getLedgerEntry(ctx context.Context, q queryable, id string) (models.LedgerEntry, error) {
	row := q.QueryRowContext(ctx, `SELECT `+ledgerColumns+` FROM ledger_entries WHERE id = ?`, id)
	e, err := scanLedgerEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.LedgerEntry{}, fmt.Errorf("ledger entry %s: %w", id, ledgererror.ErrNotFound)
	}
	return e, err
}

// UpdateLedgerEntryStatus moves an entry from one status to another,
// optionally replacing its amount. It returns ledgererror.ErrNotFound when
// the entry does not exist and ledgererror.ErrInvalidTransition when the
// entry is not in the from status.
func (s *SQLiteStorage) UpdateLedgerEntryStatus(ctx context.Context, id string, from, to models.Status, amount *int64) error {
	if amount != nil && *amount < 0 {
		return ledgererror.NewValidationError("amount", "must not be negative")
	}

	return s.withTx(ctx, func(tx *sql.Tx) error {
		var res sql.Result
		var err error
		if amount != nil {
			res, err = tx.ExecContext(ctx,
				`UPDATE ledger_entries SET status = ?, amount = ? WHERE id = ? AND status = ?`,
				string(to), *amount, id, string(from))
		} else {
			res, err = tx.ExecContext(ctx,
				`UPDATE ledger_entries SET status = ? WHERE id = ? AND status = ?`,
				string(to), id, string(from))
		}
		if err != nil {
			return fmt.Errorf("failed to update ledger entry %s: %w", id, err)
		}

		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to read rows affected: %w", err)
		}
		if n == 1 {
			return nil
		}

		current, err := s.getLedgerEntry(ctx, tx, id)
		if err != nil {
			return err
		}
		return fmt.Errorf("ledger entry %s is %s, not %s: %w", id, current.Status, from, ledgererror.ErrInvalidTransition)
	})
}

// DeleteLedgerEntry removes an entry regardless of status.
func (s *SQLiteStorage) DeleteLedgerEntry(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM ledger_entries WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete ledger entry %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("ledger entry %s: %w", id, ledgererror.ErrNotFound)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanLedgerEntry(r rowScanner) (models.LedgerEntry, error) {
	var (
		e                               models.LedgerEntry
		date, typ, status, method, relT string
		createdAt                       sql.NullTime
	)
	err := r.Scan(&e.ID, &date, &typ, &status, &e.Category, &e.ClientName, &e.Description,
		&e.Amount, &method, &relT, &e.RelatedID, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return e, err
		}
		return e, fmt.Errorf("failed to scan ledger entry: %w", err)
	}

	if e.TransactionDate, err = time.Parse(dateutils.DateLayoutISO, date); err != nil {
		return e, fmt.Errorf("ledger entry %s has invalid date %q: %w", e.ID, date, err)
	}
	e.Type = models.Direction(typ)
	e.Status = models.Status(status)
	e.PaymentMethod = models.PaymentMethod(method)
	e.RelatedType = models.EntityType(relT)
	if createdAt.Valid {
		e.CreatedAt = createdAt.Time
	}
	return e, nil
}
