// Package container provides dependency injection for the fleet-ledger
// application. It centralizes the creation and wiring of all application
// dependencies, making them explicit and testable.
package container

import (
	"context"
	"fmt"
	"time"

	"fleetops/fleet-ledger/internal/categorizer"
	"fleetops/fleet-ledger/internal/config"
	"fleetops/fleet-ledger/internal/extract"
	"fleetops/fleet-ledger/internal/ingest"
	"fleetops/fleet-ledger/internal/logging"
	"fleetops/fleet-ledger/internal/registry"
	"fleetops/fleet-ledger/internal/rulestore"
	"fleetops/fleet-ledger/internal/schedule"
	"fleetops/fleet-ledger/internal/storage"
	"fleetops/fleet-ledger/internal/store"
)

// Container holds all application dependencies. It is immutable after
// creation; dependencies are reached through getters.
type Container struct {
	logger     logging.Logger
	config     *config.Config
	storage    *storage.SQLiteStorage
	fixtures   *store.FixtureStore
	registry   *registry.Registry
	rules      *rulestore.Store
	classifier *categorizer.Classifier
	extractor  extract.Extractor
	pipeline   *ingest.Pipeline
	generator  *schedule.Generator
}

// NewContainer creates and wires all application dependencies, logging
// through a logger built from cfg.
func NewContainer(ctx context.Context, cfg *config.Config) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration cannot be nil")
	}
	return NewContainerWithLogger(ctx, cfg, config.NewLoggerFromConfig(cfg))
}

// NewContainerWithLogger is NewContainer with an explicit logger.
//
// The database is opened and migrated, and the entity registry and rule
// store snapshots are loaded, before the container is returned.
func NewContainerWithLogger(ctx context.Context, cfg *config.Config, logger logging.Logger) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration cannot be nil")
	}
	if logger == nil {
		logger = logging.NewDiscardLogger()
	}

	db, err := storage.NewSQLiteStorage(cfg.Storage.Path, logger)
	if err != nil {
		return nil, err
	}
	if err := db.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	reg := registry.New(db, logger)
	if err := reg.Reload(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	rules := rulestore.New(db, reg, logger)
	if err := rules.Reload(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	extractor, err := newExtractor(ctx, cfg, logger)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	classifier := categorizer.NewClassifier(logger)
	pipeline := ingest.NewPipeline(extractor, classifier, reg, rules, db, ingest.Options{
		BatchSize:      cfg.Ingest.BatchSize,
		HeaderScanRows: cfg.Ingest.HeaderScanRows,
		CSVCharset:     cfg.Ingest.CSVCharset,
	}, logger)
	generator := schedule.NewGenerator(reg, db, cfg.Schedule.DefaultDay, logger)

	logger.Debug("Container initialized",
		logging.Field{Key: "storage", Value: db.Path()},
		logging.Field{Key: logging.FieldProvider, Value: cfg.Extraction.Provider})

	return &Container{
		logger:     logger,
		config:     cfg,
		storage:    db,
		fixtures:   store.NewFixtureStore(logger),
		registry:   reg,
		rules:      rules,
		classifier: classifier,
		extractor:  extractor,
		pipeline:   pipeline,
		generator:  generator,
	}, nil
}

func newExtractor(ctx context.Context, cfg *config.Config, logger logging.Logger) (extract.Extractor, error) {
	timeout := time.Duration(cfg.Extraction.TimeoutSeconds) * time.Second

	switch cfg.Extraction.Provider {
	case config.ProviderHTTP, "":
		return extract.NewHTTPClient(cfg.Extraction.Endpoint, timeout, nil, logger), nil
	case config.ProviderGemini:
		return extract.NewGeminiClient(ctx, cfg.Extraction.APIKey, cfg.Extraction.Model, logger)
	default:
		return nil, fmt.Errorf("unknown extraction provider: %s", cfg.Extraction.Provider)
	}
}

// GetLogger returns the container's logger instance.
func (c *Container) GetLogger() logging.Logger {
	return c.logger
}

// GetConfig returns the container's configuration instance.
func (c *Container) GetConfig() *config.Config {
	return c.config
}

// GetStorage returns the SQLite storage backing the ledger, rules and
// entities.
func (c *Container) GetStorage() *storage.SQLiteStorage {
	return c.storage
}

// GetFixtureStore returns the YAML fixture loader.
func (c *Container) GetFixtureStore() *store.FixtureStore {
	return c.fixtures
}

// GetRegistry returns the entity registry.
func (c *Container) GetRegistry() *registry.Registry {
	return c.registry
}

// GetRuleStore returns the rule store.
func (c *Container) GetRuleStore() *rulestore.Store {
	return c.rules
}

// GetClassifier returns the classifier.
func (c *Container) GetClassifier() *categorizer.Classifier {
	return c.classifier
}

// GetExtractor returns the configured extraction service client.
func (c *Container) GetExtractor() extract.Extractor {
	return c.extractor
}

// GetPipeline returns the ingestion pipeline.
func (c *Container) GetPipeline() *ingest.Pipeline {
	return c.pipeline
}

// GetGenerator returns the recurring schedule generator.
func (c *Container) GetGenerator() *schedule.Generator {
	return c.generator
}

// Close releases the extraction client and the database.
func (c *Container) Close() error {
	var firstErr error
	if closer, ok := c.extractor.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			firstErr = err
		}
	}
	if err := c.storage.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	c.logger.Debug("Container closed")
	return firstErr
}
