// Package planner computes and prepares the backup target directory.
package planner

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fgeck/mysql-backup/internal/models"
	"github.com/rs/zerolog"
)

const (
	// FallbackRoot is used when the destination directory cannot be created.
	FallbackRoot = "/tmp"

	// StemLayout formats the timestamp shared by all artifacts of a run.
	StemLayout = "20060102_150405"

	dirMode os.FileMode = 0o700
)

// Service defines the interface for directory preparation.
type Service interface {
	Ensure(directory string) (string, error)
}

// Filesystem allows mocking directory creation in tests.
type Filesystem interface {
	MkdirAll(path string, perm os.FileMode) error
}

// OSFilesystem is the default Filesystem using package os.
type OSFilesystem struct{}

// MkdirAll creates path and any missing parents.
func (OSFilesystem) MkdirAll(path string, perm os.FileMode) error {
	return os.MkdirAll(path, perm)
}

// Impl implements the planner Service interface.
type Impl struct {
	fs           Filesystem
	logger       zerolog.Logger
	fallbackRoot string
}

// New creates a new planner service.
func New(logger zerolog.Logger) *Impl {
	return &Impl{
		fs:           OSFilesystem{},
		logger:       logger,
		fallbackRoot: FallbackRoot,
	}
}

// NewWithFilesystem creates a new planner service with a custom filesystem (for testing).
func NewWithFilesystem(logger zerolog.Logger, fs Filesystem, fallbackRoot string) *Impl {
	return &Impl{
		fs:           fs,
		logger:       logger,
		fallbackRoot: fallbackRoot,
	}
}

// Plan returns the date-partitioned directory and the filename stem for ts.
func Plan(destination string, ts time.Time) (string, string) {
	directory := filepath.Join(
		destination,
		"backup",
		"mysql",
		fmt.Sprintf("%04d", ts.Year()),
		fmt.Sprintf("%02d", int(ts.Month())),
		fmt.Sprintf("%02d", ts.Day()),
	)
	return directory, ts.Format(StemLayout)
}

// Ensure creates directory with owner-only permissions. If that fails it
// tries once more below the fallback root and returns the directory used.
func (s *Impl) Ensure(directory string) (string, error) {
	err := s.fs.MkdirAll(directory, dirMode)
	if err == nil {
		s.logger.Debug().Str("directory", directory).Msg("target directory ready")
		return directory, nil
	}

	fallback := filepath.Join(s.fallbackRoot, directory)
	s.logger.Warn().
		Err(err).
		Str("directory", directory).
		Str("fallback", fallback).
		Msg("cannot create target directory, using fallback")

	if fbErr := s.fs.MkdirAll(fallback, dirMode); fbErr != nil {
		return "", &models.FilesystemError{Path: directory, Fallback: fallback, Err: fbErr}
	}

	return fallback, nil
}
