// Package store reads and writes the YAML fixture files used to populate the
// registry and to seed classification rules.
package store

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"fleetops/fleet-ledger/internal/logging"
	"fleetops/fleet-ledger/internal/models"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// FixtureStore manages loading and saving of YAML fixture files.
type FixtureStore struct {
	logger logging.Logger
}

// NewFixtureStore creates a new store. A nil logger discards output.
func NewFixtureStore(logger logging.Logger) *FixtureStore {
	if logger == nil {
		logger = logging.NewDiscardLogger()
	}
	return &FixtureStore{logger: logger}
}

// EntityFile is the on-disk shape of an entity fixture file.
type EntityFile struct {
	Vehicles     []VehicleRecord     `yaml:"vehicles"`
	Investors    []InvestorRecord    `yaml:"investors"`
	Consignments []ConsignmentRecord `yaml:"consignments"`
}

// VehicleRecord is one vehicle in an entity fixture file.
type VehicleRecord struct {
	ID          string `yaml:"id"`
	PlateNumber string `yaml:"plate_number"`
	Model       string `yaml:"model,omitempty"`
}

// InvestorRecord is one investor contract in an entity fixture file.
// InterestRate is kept as text so rates like "8.5" survive exactly.
type InvestorRecord struct {
	ID           string `yaml:"id"`
	Name         string `yaml:"name"`
	InvestAmount int64  `yaml:"invest_amount"`
	InterestRate string `yaml:"interest_rate"`
	PaymentDay   int    `yaml:"payment_day,omitempty"`
	Active       *bool  `yaml:"active,omitempty"`
}

// ConsignmentRecord is one consignment contract in an entity fixture file.
type ConsignmentRecord struct {
	ID        string `yaml:"id"`
	PartyName string `yaml:"party_name"`
	VehicleID string `yaml:"vehicle_id,omitempty"`
	PayoutDay int    `yaml:"payout_day,omitempty"`
	Active    *bool  `yaml:"active,omitempty"`
}

// RuleFile is the on-disk shape of a rule set.
type RuleFile struct {
	Rules []RuleRecord `yaml:"rules"`
}

// RuleRecord is one rule in a rule set. Link uses the "type:id" form.
type RuleRecord struct {
	Keyword  string `yaml:"keyword"`
	Category string `yaml:"category"`
	Link     string `yaml:"link,omitempty"`
}

// FindConfigFile looks for a fixture file in standard locations
func (s *FixtureStore) FindConfigFile(filename string) (string, error) {
	if filepath.IsAbs(filename) {
		if _, err := os.Stat(filename); err == nil {
			return filename, nil
		}
		return "", os.ErrNotExist
	}

	locations := []string{
		filename,
		filepath.Join("config", filename),
		filepath.Join(".fleet-ledger", filename),
	}

	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location, nil
		}
	}

	homeDir, err := os.UserHomeDir()
	if err == nil {
		configPath := filepath.Join(homeDir, ".fleet-ledger", filename)
		if _, err := os.Stat(configPath); err == nil {
			return configPath, nil
		}
	}

	return "", os.ErrNotExist
}

func (s *FixtureStore) readFile(filename string) ([]byte, string, error) {
	filePath, err := s.FindConfigFile(filename)
	if err != nil {
		return nil, "", fmt.Errorf("fixture file %s: %w", filename, err)
	}
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, "", fmt.Errorf("error reading %s: %w", filePath, err)
	}
	return data, filePath, nil
}

// LoadEntities loads vehicles, investors and consignment contracts from a
// YAML fixture file. Contracts without an explicit active flag are active.
func (s *FixtureStore) LoadEntities(filename string) (models.EntitySet, error) {
	data, filePath, err := s.readFile(filename)
	if err != nil {
		return models.EntitySet{}, err
	}

	var file EntityFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return models.EntitySet{}, fmt.Errorf("error parsing entity file %s: %w", filePath, err)
	}

	set, err := file.toEntitySet()
	if err != nil {
		return models.EntitySet{}, fmt.Errorf("entity file %s: %w", filePath, err)
	}

	s.logger.Debug("Loaded entity fixtures",
		logging.Field{Key: logging.FieldFile, Value: filePath},
		logging.Field{Key: logging.FieldCount, Value: set.Size()})
	return set, nil
}

func (f EntityFile) toEntitySet() (models.EntitySet, error) {
	var set models.EntitySet
	seen := make(map[string]bool)
	claim := func(kind, id string) error {
		if strings.TrimSpace(id) == "" {
			return fmt.Errorf("%s with empty id", kind)
		}
		key := kind + ":" + id
		if seen[key] {
			return fmt.Errorf("duplicate %s id %q", kind, id)
		}
		seen[key] = true
		return nil
	}

	for _, v := range f.Vehicles {
		if err := claim("vehicle", v.ID); err != nil {
			return set, err
		}
		set.Vehicles = append(set.Vehicles, models.Vehicle{
			ID:          v.ID,
			PlateNumber: strings.TrimSpace(v.PlateNumber),
			Model:       v.Model,
		})
	}

	for _, inv := range f.Investors {
		if err := claim("investor", inv.ID); err != nil {
			return set, err
		}
		if inv.InvestAmount < 0 {
			return set, fmt.Errorf("investor %q: negative invest_amount", inv.ID)
		}
		rate := decimal.Zero
		if inv.InterestRate != "" {
			r, err := decimal.NewFromString(inv.InterestRate)
			if err != nil {
				return set, fmt.Errorf("investor %q: invalid interest_rate %q: %w", inv.ID, inv.InterestRate, err)
			}
			rate = r
		}
		set.Investors = append(set.Investors, models.Investor{
			ID:           inv.ID,
			Name:         strings.TrimSpace(inv.Name),
			InvestAmount: inv.InvestAmount,
			InterestRate: rate,
			PaymentDay:   inv.PaymentDay,
			Active:       activeOrDefault(inv.Active),
		})
	}

	for _, c := range f.Consignments {
		if err := claim("consignment", c.ID); err != nil {
			return set, err
		}
		set.Consignments = append(set.Consignments, models.ConsignmentContract{
			ID:        c.ID,
			PartyName: strings.TrimSpace(c.PartyName),
			VehicleID: c.VehicleID,
			PayoutDay: c.PayoutDay,
			Active:    activeOrDefault(c.Active),
		})
	}

	return set, nil
}

func activeOrDefault(b *bool) bool {
	if b == nil {
		return true
	}
	return *b
}

// LoadRules loads a rule set from YAML. An empty filename yields the
// built-in default rule set. Link references are parsed but not checked
// against the registry; that happens when the rules are seeded.
func (s *FixtureStore) LoadRules(filename string) ([]models.ClassificationRule, error) {
	if filename == "" {
		return DefaultRules(), nil
	}

	data, filePath, err := s.readFile(filename)
	if err != nil {
		return nil, err
	}

	var file RuleFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("error parsing rule file %s: %w", filePath, err)
	}

	rules := make([]models.ClassificationRule, 0, len(file.Rules))
	for i, r := range file.Rules {
		link, err := models.ParseEntityRef(r.Link)
		if err != nil {
			return nil, fmt.Errorf("rule file %s, rule %d: %w", filePath, i+1, err)
		}
		rules = append(rules, models.ClassificationRule{
			Keyword:      r.Keyword,
			Category:     r.Category,
			LinkedEntity: link,
		})
	}

	s.logger.Debug("Loaded rule set",
		logging.Field{Key: logging.FieldFile, Value: filePath},
		logging.Field{Key: logging.FieldCount, Value: len(rules)})
	return rules, nil
}

// SaveRules writes rules to path as a YAML rule set, creating parent
// directories as needed.
func (s *FixtureStore) SaveRules(path string, rules []models.ClassificationRule) error {
	file := RuleFile{Rules: make([]RuleRecord, 0, len(rules))}
	for _, r := range rules {
		rec := RuleRecord{Keyword: r.Keyword, Category: r.Category}
		if r.LinkedEntity != nil {
			rec.Link = r.LinkedEntity.String()
		}
		file.Rules = append(file.Rules, rec)
	}

	data, err := yaml.Marshal(file)
	if err != nil {
		return fmt.Errorf("error marshaling rules: %w", err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("error creating directory: %w", err)
		}
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("error writing rules: %w", err)
	}

	s.logger.Debug("Saved rule set",
		logging.Field{Key: logging.FieldFile, Value: path},
		logging.Field{Key: logging.FieldCount, Value: len(rules)})
	return nil
}
