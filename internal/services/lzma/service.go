// Package lzma provides the compression stage.
package lzma

import (
	"context"
	"os"
	"time"

	"github.com/fgeck/mysql-backup/internal/models"
	"github.com/fgeck/mysql-backup/internal/services/command"
	"github.com/rs/zerolog"
)

// Extension is appended by the lzma tool to the compressed file.
const Extension = ".lzma"

// Service defines the interface for compression operations.
type Service interface {
	Compress(ctx context.Context, settings models.Settings, path string) (*models.StageResult, error)
}

// Impl implements the lzma Service interface.
type Impl struct {
	executor command.Executor
	logger   zerolog.Logger
}

// New creates a new lzma service.
func New(logger zerolog.Logger) *Impl {
	return &Impl{
		executor: &command.DefaultExecutor{},
		logger:   logger,
	}
}

// NewWithExecutor creates a new lzma service with a custom executor (for testing).
func NewWithExecutor(logger zerolog.Logger, executor command.Executor) *Impl {
	return &Impl{
		executor: executor,
		logger:   logger,
	}
}

// Compress compresses path in place. The tool appends its own extension
// and removes the source on success.
func (s *Impl) Compress(ctx context.Context, settings models.Settings, path string) (*models.StageResult, error) {
	start := time.Now()
	logger := command.Logger(ctx, s.logger)
	cmd := BuildCommand(settings, path)

	result := &models.StageResult{
		Stage:      models.StageCompress,
		InputPath:  path,
		OutputPath: path + Extension,
		Command:    cmd,
	}

	logger.Debug().Str("input", path).Msg("compressing file")
	logger.Debug().Str("command", cmd.String()).Msg("compress command")

	if settings.DryRun {
		logger.Info().Str("command", cmd.String()).Msg("dry run, skipping compression")
		result.Duration = time.Since(start)
		return result, nil
	}

	if err := s.executor.Run(ctx, cmd); err != nil {
		return nil, &models.SubprocessError{
			Stage:    models.StageCompress,
			Command:  cmd.String(),
			ExitCode: command.ExitCode(err),
			Err:      err,
		}
	}

	result.Executed = true
	if info, err := os.Stat(result.OutputPath); err == nil {
		result.SizeBytes = info.Size()
	}
	result.Duration = time.Since(start)

	logger.Debug().
		Str("output", result.OutputPath).
		Int64("size_bytes", result.SizeBytes).
		Dur("duration", result.Duration).
		Msg("compression completed")

	return result, nil
}

// BuildCommand returns the lzma invocation compressing path.
func BuildCommand(settings models.Settings, path string) models.Command {
	var args []string
	if settings.CompressionLevel != "" {
		args = append(args, "-"+settings.CompressionLevel)
	}
	args = append(args, "-z", path)

	return command.WithNice(settings.Tools.Nice, settings.Nice, settings.Tools.LZMA, args...)
}
