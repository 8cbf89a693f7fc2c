// Package openssl provides the encryption stage.
package openssl

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/fgeck/mysql-backup/internal/models"
	"github.com/fgeck/mysql-backup/internal/services/command"
	"github.com/rs/zerolog"
)

const (
	// Extension is appended to the encrypted file.
	Extension = ".enc"

	// PassphraseEnv carries the passphrase to openssl so it stays out of argv.
	PassphraseEnv = "MYSQL_BACKUP_PASSPHRASE"
)

// Service defines the interface for encryption operations.
type Service interface {
	Encrypt(ctx context.Context, settings models.Settings, path string) (*models.StageResult, error)
}

// Impl implements the openssl Service interface.
type Impl struct {
	executor command.Executor
	logger   zerolog.Logger
}

// New creates a new openssl service.
func New(logger zerolog.Logger) *Impl {
	return &Impl{
		executor: &command.DefaultExecutor{},
		logger:   logger,
	}
}

// NewWithExecutor creates a new openssl service with a custom executor (for testing).
func NewWithExecutor(logger zerolog.Logger, executor command.Executor) *Impl {
	return &Impl{
		executor: executor,
		logger:   logger,
	}
}

// Encrypt writes path.enc and removes path once openssl succeeded.
func (s *Impl) Encrypt(ctx context.Context, settings models.Settings, path string) (*models.StageResult, error) {
	if !settings.Encrypt() {
		return nil, fmt.Errorf("encryption requested without a passphrase")
	}

	start := time.Now()
	logger := command.Logger(ctx, s.logger)
	cmd := BuildCommand(settings, path)

	result := &models.StageResult{
		Stage:      models.StageEncrypt,
		InputPath:  path,
		OutputPath: path + Extension,
		Command:    cmd,
	}

	logger.Debug().Str("input", path).Str("cipher", settings.Cipher).Msg("encrypting file")
	logger.Debug().Str("command", cmd.String()).Msg("encrypt command")

	if settings.DryRun {
		logger.Info().Str("command", cmd.String()).Msg("dry run, skipping encryption")
		result.Duration = time.Since(start)
		return result, nil
	}

	if err := s.executor.Run(ctx, cmd); err != nil {
		// Keep the unencrypted input, drop whatever output was written
		_ = os.Remove(result.OutputPath)
		return nil, &models.SubprocessError{
			Stage:    models.StageEncrypt,
			Command:  cmd.String(),
			ExitCode: command.ExitCode(err),
			Err:      err,
		}
	}

	result.Executed = true

	if err := os.RemoveAll(path); err != nil {
		logger.Warn().Err(err).Str("path", path).Msg("failed to remove unencrypted file")
	}

	if info, err := os.Stat(result.OutputPath); err == nil {
		result.SizeBytes = info.Size()
	}
	result.Duration = time.Since(start)

	logger.Debug().
		Str("output", result.OutputPath).
		Int64("size_bytes", result.SizeBytes).
		Dur("duration", result.Duration).
		Msg("encryption completed")

	return result, nil
}

// BuildCommand returns the openssl invocation encrypting path.
func BuildCommand(settings models.Settings, path string) models.Command {
	args := []string{
		"enc",
		"-" + settings.Cipher,
		"-salt",
		"-in", path,
		"-out", path + Extension,
		"-pass", "env:" + PassphraseEnv,
	}

	cmd := command.WithNice(settings.Tools.Nice, settings.Nice, settings.Tools.OpenSSL, args...)
	cmd.Env = []string{PassphraseEnv + "=" + settings.Passphrase}
	cmd.Secrets = []string{settings.Passphrase}

	return cmd
}
