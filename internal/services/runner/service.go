// Package runner orchestrates the backup pipeline.
package runner

import (
	"context"
	"fmt"
	"time"

	"github.com/fgeck/mysql-backup/internal/config"
	"github.com/fgeck/mysql-backup/internal/models"
	"github.com/fgeck/mysql-backup/internal/services/lzma"
	"github.com/fgeck/mysql-backup/internal/services/mysqldump"
	"github.com/fgeck/mysql-backup/internal/services/openssl"
	"github.com/fgeck/mysql-backup/internal/services/planner"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Service defines the interface for the backup runner.
type Service interface {
	Run(ctx context.Context, settings models.Settings) (*models.RunResult, error)
}

// Impl implements the runner Service interface.
type Impl struct {
	plannerSvc  planner.Service
	dumpSvc     mysqldump.Service
	compressSvc lzma.Service
	encryptSvc  openssl.Service
	logger      zerolog.Logger
	now         func() time.Time
}

// New creates a new runner service.
func New(logger zerolog.Logger) *Impl {
	return &Impl{
		plannerSvc:  planner.New(logger),
		dumpSvc:     mysqldump.New(logger),
		compressSvc: lzma.New(logger),
		encryptSvc:  openssl.New(logger),
		logger:      logger,
		now:         time.Now,
	}
}

// NewWithServices creates a new runner service with custom services (for testing).
func NewWithServices(
	logger zerolog.Logger,
	plannerSvc planner.Service,
	dumpSvc mysqldump.Service,
	compressSvc lzma.Service,
	encryptSvc openssl.Service,
	now func() time.Time,
) *Impl {
	return &Impl{
		plannerSvc:  plannerSvc,
		dumpSvc:     dumpSvc,
		compressSvc: compressSvc,
		encryptSvc:  encryptSvc,
		logger:      logger,
		now:         now,
	}
}

// NewRunContext captures the timestamp once and derives the target
// directory and stem from it.
func NewRunContext(settings models.Settings, now time.Time) models.RunContext {
	directory, stem := planner.Plan(settings.Destination, now)
	return models.RunContext{
		RunID:     uuid.New(),
		Timestamp: now,
		Directory: directory,
		Stem:      stem,
	}
}

// Run executes dump, compress and, when a passphrase is set, encrypt.
// Each stage consumes the previous stage's output path unchanged.
func (s *Impl) Run(ctx context.Context, settings models.Settings) (*models.RunResult, error) {
	start := time.Now()
	runCtx := NewRunContext(settings, s.now())
	logger := s.logger.With().Str("run_id", runCtx.RunID.String()).Logger()
	ctx = logger.WithContext(ctx)

	logger.Debug().
		Str("database", scope(settings)).
		Str("directory", runCtx.Directory).
		Bool("encrypt", settings.Encrypt()).
		Bool("dry_run", settings.DryRun).
		Msg("starting backup run")

	if settings.DryRun {
		logger.Info().Str("directory", runCtx.Directory).Msg("dry run, not creating target directory")
	} else {
		directory, err := s.plannerSvc.Ensure(runCtx.Directory)
		if err != nil {
			return nil, fmt.Errorf("preparing target directory: %w", err)
		}
		runCtx.Directory = directory
	}

	config.LogSettings(logger, settings, runCtx)

	result := &models.RunResult{Context: runCtx}

	// Step 1: Dump
	dumpResult, err := s.dumpSvc.Dump(ctx, settings, runCtx)
	if err != nil {
		return nil, fmt.Errorf("dump failed: %w", err)
	}
	result.Stages = append(result.Stages, *dumpResult)

	// Step 2: Compress
	compressResult, err := s.compressSvc.Compress(ctx, settings, dumpResult.OutputPath)
	if err != nil {
		return nil, fmt.Errorf("compress failed: %w", err)
	}
	result.Stages = append(result.Stages, *compressResult)
	result.FinalPath = compressResult.OutputPath

	// Step 3: Encrypt (if configured)
	if settings.Encrypt() {
		encryptResult, err := s.encryptSvc.Encrypt(ctx, settings, compressResult.OutputPath)
		if err != nil {
			return nil, fmt.Errorf("encrypt failed: %w", err)
		}
		result.Stages = append(result.Stages, *encryptResult)
		result.FinalPath = encryptResult.OutputPath
	}

	result.Duration = time.Since(start)

	logger.Debug().
		Str("output", result.FinalPath).
		Int("stages", len(result.Stages)).
		Dur("duration", result.Duration).
		Msg("backup run completed successfully")

	return result, nil
}

func scope(settings models.Settings) string {
	if settings.All {
		return "all"
	}
	return settings.Database
}
