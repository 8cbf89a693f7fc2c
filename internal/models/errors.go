package models

import "fmt"

// ConfigurationError reports an invalid combination of options.
type ConfigurationError struct {
	Message string
}

func (e *ConfigurationError) Error() string {
	return "invalid configuration: " + e.Message
}

// FilesystemError reports that no target directory could be created.
type FilesystemError struct {
	Path     string
	Fallback string
	Err      error
}

func (e *FilesystemError) Error() string {
	return fmt.Sprintf("cannot create directory %s (fallback %s): %v", e.Path, e.Fallback, e.Err)
}

func (e *FilesystemError) Unwrap() error {
	return e.Err
}

// SubprocessError reports a failed external command.
type SubprocessError struct {
	Stage    string
	Command  string // rendered with secrets masked
	ExitCode int    // -1 when the process did not exit normally
	Err      error
}

func (e *SubprocessError) Error() string {
	return fmt.Sprintf("%s stage failed (exit code %d) running %q: %v", e.Stage, e.ExitCode, e.Command, e.Err)
}

func (e *SubprocessError) Unwrap() error {
	return e.Err
}
