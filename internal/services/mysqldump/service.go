// Package mysqldump provides the database dump stage.
package mysqldump

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fgeck/mysql-backup/internal/models"
	"github.com/fgeck/mysql-backup/internal/services/command"
	"github.com/rs/zerolog"
)

// Extension is appended to the stem of every dump file.
const Extension = ".sql"

// Service defines the interface for dump operations.
type Service interface {
	Dump(ctx context.Context, settings models.Settings, runCtx models.RunContext) (*models.StageResult, error)
}

// Impl implements the mysqldump Service interface.
type Impl struct {
	executor command.Executor
	logger   zerolog.Logger
}

// New creates a new mysqldump service.
func New(logger zerolog.Logger) *Impl {
	return &Impl{
		executor: &command.DefaultExecutor{},
		logger:   logger,
	}
}

// NewWithExecutor creates a new mysqldump service with a custom executor (for testing).
func NewWithExecutor(logger zerolog.Logger, executor command.Executor) *Impl {
	return &Impl{
		executor: executor,
		logger:   logger,
	}
}

// Dump runs mysqldump into a new file under runCtx.Directory. Under
// dry-run nothing is executed but the same path is returned.
func (s *Impl) Dump(ctx context.Context, settings models.Settings, runCtx models.RunContext) (*models.StageResult, error) {
	start := time.Now()
	logger := command.Logger(ctx, s.logger)
	outputPath := Filename(settings, runCtx.Directory, runCtx.Stem)
	cmd := BuildCommand(settings, outputPath)

	result := &models.StageResult{
		Stage:      models.StageDump,
		OutputPath: outputPath,
		Command:    cmd,
	}

	logger.Debug().Str("output", outputPath).Msg("dumping to file")
	logger.Debug().Str("command", cmd.String()).Msg("dump command")

	if settings.DryRun {
		logger.Info().Str("command", cmd.String()).Msg("dry run, skipping dump")
		result.Duration = time.Since(start)
		return result, nil
	}

	if err := s.executor.Run(ctx, cmd); err != nil {
		// Clean up partial file
		_ = os.Remove(outputPath)
		return nil, &models.SubprocessError{
			Stage:    models.StageDump,
			Command:  cmd.String(),
			ExitCode: command.ExitCode(err),
			Err:      err,
		}
	}

	result.Executed = true
	if info, err := os.Stat(outputPath); err == nil {
		result.SizeBytes = info.Size()
	}
	result.Duration = time.Since(start)

	logger.Debug().
		Str("output", outputPath).
		Int64("size_bytes", result.SizeBytes).
		Dur("duration", result.Duration).
		Msg("database dump completed")

	return result, nil
}

// Filename returns the dump file path. Name components are joined with
// "_" and empty components are left out.
func Filename(settings models.Settings, directory, stem string) string {
	var parts []string

	if settings.AppendName != "" {
		parts = append(parts, settings.AppendName)
	}

	if settings.All {
		parts = append(parts, "all")
	} else if settings.Database != "" {
		parts = append(parts, settings.Database)
	}

	if opts := strings.TrimSpace(strings.ReplaceAll(settings.DumpOptions, "-", "")); opts != "" {
		parts = append(parts, opts)
	}

	if len(settings.SkipTables) > 0 {
		parts = append(parts, "no_"+strings.Join(settings.SkipTables, "_"))
	}

	parts = append(parts, stem+Extension)

	return filepath.Join(directory, strings.Join(parts, "_"))
}

// BuildCommand returns the mysqldump invocation writing to outputPath.
func BuildCommand(settings models.Settings, outputPath string) models.Command {
	var args []string

	if settings.DBUsername != "" {
		args = append(args, "-u"+settings.DBUsername)
	}
	if settings.DBPassword != "" {
		args = append(args, "-p"+settings.DBPassword)
	}

	args = append(args, strings.Fields(settings.DumpOptions)...)

	// --ignore-table only makes sense for a single database
	if settings.Database != "" {
		for _, table := range settings.SkipTables {
			args = append(args, fmt.Sprintf("--ignore-table=%s.%s", settings.Database, table))
		}
	}

	if settings.All {
		args = append(args, "--all-databases")
	} else {
		args = append(args, settings.Database)
	}

	cmd := command.WithNice(settings.Tools.Nice, settings.Nice, settings.Tools.MySQLDump, args...)
	cmd.Stdout = outputPath
	cmd.Secrets = []string{settings.DBPassword}

	return cmd
}
