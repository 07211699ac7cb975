package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"fleetops/fleet-ledger/internal/logging"
)

// ExpectedSchemaVersion is the latest schema version that the application expects.
const ExpectedSchemaVersion = 3

// Migration represents a database schema migration.
type Migration struct {
	Up          func(*sql.Tx) error
	Description string
	Version     int
}

var migrations = []Migration{
	{
		Version:     1,
		Description: "Initial schema",
		Up: execAll(
			`CREATE TABLE IF NOT EXISTS vehicles (
				id TEXT PRIMARY KEY,
				plate_number TEXT NOT NULL UNIQUE,
				model TEXT NOT NULL DEFAULT ''
			)`,
			`CREATE TABLE IF NOT EXISTS investors (
				id TEXT PRIMARY KEY,
				name TEXT NOT NULL,
				invest_amount INTEGER NOT NULL CHECK (invest_amount >= 0),
				interest_rate TEXT NOT NULL DEFAULT '0',
				payment_day INTEGER NOT NULL DEFAULT 0,
				active INTEGER NOT NULL DEFAULT 1
			)`,
			`CREATE TABLE IF NOT EXISTS consignment_contracts (
				id TEXT PRIMARY KEY,
				party_name TEXT NOT NULL,
				vehicle_id TEXT NOT NULL DEFAULT '',
				payout_day INTEGER NOT NULL DEFAULT 0,
				active INTEGER NOT NULL DEFAULT 1
			)`,
			`CREATE TABLE IF NOT EXISTS classification_rules (
				keyword TEXT PRIMARY KEY,
				category TEXT NOT NULL,
				related_type TEXT NOT NULL DEFAULT '',
				related_id TEXT NOT NULL DEFAULT '',
				created_at DATETIME DEFAULT CURRENT_TIMESTAMP
			)`,
		),
	},
	{
		Version:     2,
		Description: "Ledger entries",
		Up: execAll(
			`CREATE TABLE IF NOT EXISTS ledger_entries (
				id TEXT PRIMARY KEY,
				transaction_date TEXT NOT NULL,
				type TEXT NOT NULL CHECK (type IN ('income', 'expense')),
				status TEXT NOT NULL CHECK (status IN ('pending', 'completed')),
				category TEXT NOT NULL,
				client_name TEXT NOT NULL DEFAULT '',
				description TEXT NOT NULL DEFAULT '',
				amount INTEGER NOT NULL CHECK (amount >= 0),
				payment_method TEXT NOT NULL DEFAULT '',
				related_type TEXT NOT NULL DEFAULT '',
				related_id TEXT NOT NULL DEFAULT '',
				created_at DATETIME DEFAULT CURRENT_TIMESTAMP
			)`,
			`CREATE INDEX IF NOT EXISTS idx_ledger_entries_date ON ledger_entries(transaction_date)`,
			`CREATE INDEX IF NOT EXISTS idx_ledger_entries_related ON ledger_entries(related_id, category)`,
		),
	},
	{
		Version:     3,
		Description: "Case-insensitive rule keywords",
		Up:          foldRuleKeywords,
	},
}

// matchKey is the form under which keywords are unique; it mirrors how
// the classifier compares them.
func matchKey(keyword string) string {
	return strings.ToLower(strings.TrimSpace(keyword))
}

// foldRuleKeywords adds the match_key column and drops rules that only
// differ from an earlier one by case. The survivor is the first keyword in
// listing order, which is the one the classifier already matched.
func foldRuleKeywords(tx *sql.Tx) error {
	if _, err := tx.Exec(`ALTER TABLE classification_rules ADD COLUMN match_key TEXT NOT NULL DEFAULT ''`); err != nil {
		return fmt.Errorf("failed to add match_key: %w", err)
	}

	rows, err := tx.Query(`SELECT keyword FROM classification_rules ORDER BY keyword`)
	if err != nil {
		return fmt.Errorf("failed to query rules: %w", err)
	}
	var keywords []string
	for rows.Next() {
		var kw string
		if err := rows.Scan(&kw); err != nil {
			_ = rows.Close()
			return fmt.Errorf("failed to scan rule: %w", err)
		}
		keywords = append(keywords, kw)
	}
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return err
	}
	_ = rows.Close()

	seen := make(map[string]bool, len(keywords))
	for _, kw := range keywords {
		key := matchKey(kw)
		if seen[key] {
			if _, err := tx.Exec(`DELETE FROM classification_rules WHERE keyword = ?`, kw); err != nil {
				return fmt.Errorf("failed to drop duplicate rule %q: %w", kw, err)
			}
			continue
		}
		seen[key] = true
		if _, err := tx.Exec(`UPDATE classification_rules SET match_key = ? WHERE keyword = ?`, key, kw); err != nil {
			return fmt.Errorf("failed to fold rule %q: %w", kw, err)
		}
	}

	_, err = tx.Exec(`CREATE UNIQUE INDEX IF NOT EXISTS idx_classification_rules_match_key ON classification_rules(match_key)`)
	return err
}

func execAll(queries ...string) func(*sql.Tx) error {
	return func(tx *sql.Tx) error {
		for _, query := range queries {
			if _, err := tx.Exec(query); err != nil {
				return fmt.Errorf("failed to execute query: %w", err)
			}
		}
		return nil
	}
}

// Migrate applies all pending database migrations.
func (s *SQLiteStorage) Migrate(ctx context.Context) error {
	var currentVersion int
	if err := s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&currentVersion); err != nil {
		return fmt.Errorf("failed to get schema version: %w", err)
	}

	for _, migration := range migrations {
		if migration.Version <= currentVersion {
			continue
		}

		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("failed to begin transaction: %w", err)
		}

		if err := migration.Up(tx); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("migration %d failed: %w", migration.Version, err)
		}

		if _, err := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", migration.Version)); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to update schema version: %w", err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("failed to commit migration %d: %w", migration.Version, err)
		}

		s.logger.Debug("Applied migration",
			logging.Field{Key: "version", Value: migration.Version},
			logging.Field{Key: "description", Value: migration.Description})
	}

	var finalVersion int
	if err := s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&finalVersion); err != nil {
		return fmt.Errorf("failed to verify final schema version: %w", err)
	}

	if finalVersion != ExpectedSchemaVersion {
		return fmt.Errorf("database schema version mismatch: expected %d, got %d", ExpectedSchemaVersion, finalVersion)
	}

	return nil
}
