// Package models contains the data structures used throughout mysql-backup.
package models

import (
	"time"

	"github.com/google/uuid"
)

// Settings holds the resolved configuration for a backup run.
// It is built once by the config parser and passed by value afterwards.
type Settings struct {
	Verbose          bool
	DryRun           bool
	Database         string
	All              bool
	AppendName       string
	DumpOptions      string   // extra mysqldump arguments, split on whitespace
	SkipTables       []string // table names inside Database
	SQL              string   // accepted but not used by any stage
	Passphrase       string   // empty disables encryption
	Cipher           string   // openssl cipher name without the leading dash
	CompressionLevel string   // lzma preset, empty uses the tool default
	Nice             string   // niceness for every subprocess, empty disables nice
	Destination      string
	DBUsername       string
	DBPassword       string
	Tools            Tools
}

// Tools holds the names (or paths) of the external binaries.
type Tools struct {
	MySQLDump string
	LZMA      string
	OpenSSL   string
	Nice      string
}

// Encrypt reports whether the encryption stage should run.
func (s Settings) Encrypt() bool {
	return s.Passphrase != ""
}

// RunContext holds values derived once at the start of a run.
type RunContext struct {
	RunID     uuid.UUID
	Timestamp time.Time
	Directory string
	Stem      string // YYYYMMDD_HHMMSS, shared by every artifact of the run
}
