package service

import (
	"context"
	"errors"
	"fmt"

	"smellsense/internal/classifier"
	"smellsense/internal/config"
	"smellsense/internal/ensemble"
	"smellsense/internal/parse"
	"smellsense/internal/smells/catalog"
	"smellsense/internal/store"
	"smellsense/internal/unit"

	"go.uber.org/zap"
)

// ErrHistoryDisabled is returned by history operations when no store is
// configured
var ErrHistoryDisabled = errors.New("verdict history is not configured")

// SmellService owns the classification engine and its resources
type SmellService struct {
	config   *config.Config
	registry *parse.Registry
	engine   *ensemble.Engine
	db       store.GraphDatabase
	history  *store.VerdictStore
	release  func()
	logger   *zap.Logger
}

// NewSmellService builds the engine described by cfg. Classifier and store
// backends are connected here; a failure to reach them is an error.
func NewSmellService(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*SmellService, error) {
	settings, err := ensemble.NewSettings(cfg)
	if err != nil {
		return nil, err
	}
	bank, err := catalog.NewBank(cfg.Thresholds, logger)
	if err != nil {
		return nil, err
	}

	registry, err := parse.NewDefaultRegistry(logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create parsers: %w", err)
	}

	adapter, release, err := classifier.NewFromConfig(ctx, cfg, logger)
	if err != nil {
		registry.Close()
		return nil, err
	}

	db, err := store.Open(ctx, cfg, logger)
	if err != nil {
		release()
		registry.Close()
		return nil, err
	}

	s := &SmellService{
		config:   cfg,
		registry: registry,
		engine: ensemble.NewEngine(
			unit.NewBuilder(registry, cfg.App.ServiceSuffixes, logger),
			bank, adapter, settings, logger),
		db:      db,
		release: release,
		logger:  logger,
	}
	if db != nil {
		s.history = store.NewVerdictStore(db, logger)
	}

	classifierName := "none"
	if adapter != nil {
		classifierName = adapter.Name()
	}
	logger.Info("Smell service initialized",
		zap.String("classifier", classifierName),
		zap.String("store", cfg.Store.Backend),
		zap.Int("detectors", len(bank.Detectors())))
	return s, nil
}

func (s *SmellService) Engine() *ensemble.Engine {
	return s.engine
}

func (s *SmellService) Registry() *parse.Registry {
	return s.registry
}

// HistoryEnabled reports whether verdicts can be recorded
func (s *SmellService) HistoryEnabled() bool {
	return s.history != nil
}

// Classify classifies one input and records the verdict when save is set
func (s *SmellService) Classify(ctx context.Context, in unit.Input, save bool) (*ensemble.Verdict, *store.Record, error) {
	verdict, err := s.engine.Classify(ctx, in)
	if err != nil {
		return nil, nil, err
	}
	if !save {
		return verdict, nil, nil
	}

	record, err := s.Record(ctx, in, verdict)
	if err != nil {
		return verdict, nil, err
	}
	return verdict, record, nil
}

// Record stores a verdict for in
func (s *SmellService) Record(ctx context.Context, in unit.Input, verdict *ensemble.Verdict) (*store.Record, error) {
	if s.history == nil {
		return nil, ErrHistoryDisabled
	}
	lang := string(in.Language)
	if lang == "" {
		if detected, ok := s.registry.LanguageForPath(in.Path); ok {
			lang = string(detected)
		}
	}
	return s.history.Save(ctx, in.Path, lang, verdict)
}

// Recent returns the newest stored verdicts
func (s *SmellService) Recent(ctx context.Context, limit int) ([]*store.Record, error) {
	if s.history == nil {
		return nil, ErrHistoryDisabled
	}
	return s.history.Recent(ctx, limit)
}

// Stats counts stored verdicts per smell
func (s *SmellService) Stats(ctx context.Context) (*store.Stats, error) {
	if s.history == nil {
		return nil, ErrHistoryDisabled
	}
	return s.history.CountBySmell(ctx)
}

// Close releases the classifier, the store and the parsers
func (s *SmellService) Close(ctx context.Context) error {
	var err error
	if s.db != nil {
		err = s.db.Close(ctx)
	}
	s.release()
	s.registry.Close()
	return err
}
