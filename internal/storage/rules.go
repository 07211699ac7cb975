package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"fleetops/fleet-ledger/internal/ledgererror"
	"fleetops/fleet-ledger/internal/models"
)

// ListRules returns every classification rule ordered by keyword.
func (s *SQLiteStorage) ListRules(ctx context.Context) ([]models.ClassificationRule, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT keyword, category, related_type, related_id
		FROM classification_rules
		ORDER BY keyword
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query rules: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var rules []models.ClassificationRule
	for rows.Next() {
		var r models.ClassificationRule
		var relatedType, relatedID string
		if err := rows.Scan(&r.Keyword, &r.Category, &relatedType, &relatedID); err != nil {
			return nil, fmt.Errorf("failed to scan rule: %w", err)
		}
		r.LinkedEntity = entityRef(relatedType, relatedID)
		rules = append(rules, r)
	}
	return rules, rows.Err()
}

// InsertRule stores a new rule. A keyword that is already registered,
// ignoring case, yields ledgererror.ErrDuplicateKeyword.
func (s *SQLiteStorage) InsertRule(ctx context.Context, rule models.ClassificationRule) error {
	err := s.insertRule(ctx, s.db, rule)
	if isConstraintViolation(err) {
		return fmt.Errorf("rule %q: %w", rule.Keyword, ledgererror.ErrDuplicateKeyword)
	}
	return err
}

// InsertRulesIfAbsent stores every rule whose keyword is not yet registered
// (ignoring case),
// in one transaction, and reports how many were inserted and skipped.
func (s *SQLiteStorage) InsertRulesIfAbsent(ctx context.Context, rules []models.ClassificationRule) (inserted, skipped int, err error) {
	err = s.withTx(ctx, func(tx *sql.Tx) error {
		inserted, skipped = 0, 0
		for _, rule := range rules {
			relatedType, relatedID := refColumns(rule.LinkedEntity)
			res, err := tx.ExecContext(ctx, `
				INSERT INTO classification_rules (keyword, match_key, category, related_type, related_id, created_at)
				VALUES (?, ?, ?, ?, ?, ?)
				ON CONFLICT DO NOTHING
			`, rule.Keyword, matchKey(rule.Keyword), rule.Category, relatedType, relatedID, time.Now().UTC())
			if err != nil {
				return fmt.Errorf("failed to insert rule %q: %w", rule.Keyword, err)
			}
			n, err := res.RowsAffected()
			if err != nil {
				return fmt.Errorf("failed to read rows affected: %w", err)
			}
			if n == 0 {
				skipped++
			} else {
				inserted++
			}
		}
		return nil
	})
	return inserted, skipped, err
}

func (s *SQLiteStorage) insertRule(ctx context.Context, q queryable, rule models.ClassificationRule) error {
	relatedType, relatedID := refColumns(rule.LinkedEntity)
	_, err := q.ExecContext(ctx, `
		INSERT INTO classification_rules (keyword, match_key, category, related_type, related_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, rule.Keyword, matchKey(rule.Keyword), rule.Category, relatedType, relatedID, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to insert rule: %w", err)
	}
	return nil
}

func refColumns(ref *models.EntityRef) (string, string) {
	if ref == nil {
		return "", ""
	}
	return string(ref.Type), ref.ID
}

func entityRef(relatedType, relatedID string) *models.EntityRef {
	if relatedType == "" || relatedID == "" {
		return nil
	}
	return &models.EntityRef{Type: models.EntityType(relatedType), ID: relatedID}
}
