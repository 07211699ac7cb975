// Package rulestore manages user-curated keyword rules and serves a
// snapshot of them to the classifier.
package rulestore

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"fleetops/fleet-ledger/internal/ledgererror"
	"fleetops/fleet-ledger/internal/logging"
	"fleetops/fleet-ledger/internal/models"
)

// Backend persists classification rules.
type Backend interface {
	ListRules(ctx context.Context) ([]models.ClassificationRule, error)
	InsertRule(ctx context.Context, rule models.ClassificationRule) error
	InsertRulesIfAbsent(ctx context.Context, rules []models.ClassificationRule) (inserted, skipped int, err error)
}

// EntityChecker verifies that a linked entity exists.
type EntityChecker interface {
	Contains(ref models.EntityRef) bool
}

// Store is the rule store. Rules are only ever added; nothing here deletes
// or overwrites an existing keyword.
type Store struct {
	backend  Backend
	entities EntityChecker
	logger   logging.Logger

	mu    sync.RWMutex
	rules []models.ClassificationRule
}

// New creates a rule store. Call Reload to populate the snapshot.
func New(backend Backend, entities EntityChecker, logger logging.Logger) *Store {
	if logger == nil {
		logger = logging.NewDiscardLogger()
	}
	return &Store{backend: backend, entities: entities, logger: logger}
}

// Reload re-reads every rule. On failure the previous snapshot is kept.
func (s *Store) Reload(ctx context.Context) error {
	rules, err := s.backend.ListRules(ctx)
	if err != nil {
		return fmt.Errorf("failed to reload rules: %w", err)
	}

	s.mu.Lock()
	s.rules = rules
	s.mu.Unlock()

	s.logger.Debug("Rule store reloaded", logging.Field{Key: logging.FieldCount, Value: len(rules)})
	return nil
}

// Snapshot returns the current rules, ordered by keyword. Callers must not
// modify the returned slice.
func (s *Store) Snapshot() []models.ClassificationRule {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.rules
}

// Validate checks a rule without touching storage. The keyword is trimmed
// in place.
func (s *Store) Validate(rule *models.ClassificationRule) error {
	rule.Keyword = strings.TrimSpace(rule.Keyword)
	if rule.Keyword == "" {
		return ledgererror.NewValidationError("keyword", "must not be empty")
	}
	if !models.IsKnownCategory(rule.Category) {
		return ledgererror.NewValidationError("category", fmt.Sprintf("%q is not in the taxonomy", rule.Category))
	}
	if rule.LinkedEntity != nil && (s.entities == nil || !s.entities.Contains(*rule.LinkedEntity)) {
		return ledgererror.NewValidationError("linked entity", fmt.Sprintf("%s does not exist", rule.LinkedEntity))
	}
	return nil
}

// Pin stores a new rule and refreshes the snapshot. A keyword that is
// already registered, in any letter case, fails with
// ledgererror.ErrDuplicateKeyword since matching ignores case.
func (s *Store) Pin(ctx context.Context, rule models.ClassificationRule) error {
	if err := s.Validate(&rule); err != nil {
		return err
	}

	if err := s.backend.InsertRule(ctx, rule); err != nil {
		return err
	}

	s.logger.Info("Pinned classification rule",
		logging.Field{Key: logging.FieldKeyword, Value: rule.Keyword},
		logging.Field{Key: logging.FieldCategory, Value: rule.Category})

	return s.Reload(ctx)
}

// Seed stores every rule whose keyword is not yet registered. Rules that
// fail validation are skipped and counted with the existing ones.
func (s *Store) Seed(ctx context.Context, rules []models.ClassificationRule) (inserted, skipped int, err error) {
	valid := make([]models.ClassificationRule, 0, len(rules))
	invalid := 0
	for _, rule := range rules {
		if err := s.Validate(&rule); err != nil {
			s.logger.WithError(err).Warn("Skipping invalid seed rule",
				logging.Field{Key: logging.FieldKeyword, Value: rule.Keyword})
			invalid++
			continue
		}
		valid = append(valid, rule)
	}

	inserted, skipped, err = s.backend.InsertRulesIfAbsent(ctx, valid)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to seed rules: %w", err)
	}
	skipped += invalid

	s.logger.Info("Seeded classification rules",
		logging.Field{Key: logging.FieldCreated, Value: inserted},
		logging.Field{Key: logging.FieldSkipped, Value: skipped})

	return inserted, skipped, s.Reload(ctx)
}
