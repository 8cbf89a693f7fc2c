package models

import "time"

// Pipeline stage names.
const (
	StageDump     = "dump"
	StageCompress = "compress"
	StageEncrypt  = "encrypt"
)

// StageResult holds the outcome of one pipeline stage.
type StageResult struct {
	Stage      string
	InputPath  string // empty for the dump stage
	OutputPath string
	Command    Command
	Executed   bool // false under dry-run
	SizeBytes  int64
	Duration   time.Duration
}

// RunResult holds the outcome of a complete pipeline run.
type RunResult struct {
	Context   RunContext
	Stages    []StageResult
	FinalPath string
	Duration  time.Duration
}
