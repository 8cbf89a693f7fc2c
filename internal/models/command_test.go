package models

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCommand_String(t *testing.T) {
	cmd := Command{
		Name:   "nice",
		Args:   []string{"-n", "18", "mysqldump", "-uroot", "-psecret", "shop"},
		Stdout: "/backup/shop.sql",
	}

	assert.Equal(t, "nice -n 18 mysqldump -uroot -psecret shop > /backup/shop.sql", cmd.String())
}

func TestCommand_String_RedactsSecrets(t *testing.T) {
	cmd := Command{
		Name:    "mysqldump",
		Args:    []string{"-uroot", "-ps3cr3t", "shop"},
		Secrets: []string{"s3cr3t", ""},
	}

	out := cmd.String()
	assert.NotContains(t, out, "s3cr3t")
	assert.Equal(t, "mysqldump -uroot -p**** shop", out)
}

func TestCommand_Argv(t *testing.T) {
	cmd := Command{Name: "lzma", Args: []string{"-2", "-z", "file.sql"}}

	assert.Equal(t, []string{"lzma", "-2", "-z", "file.sql"}, cmd.Argv())
	assert.Equal(t, []string{"-2", "-z", "file.sql"}, cmd.Args)
}

func TestSettings_Encrypt(t *testing.T) {
	assert.False(t, Settings{}.Encrypt())
	assert.True(t, Settings{Passphrase: "x"}.Encrypt())
}

func TestErrors_Unwrap(t *testing.T) {
	cause := errors.New("exit status 2")

	subErr := fmt.Errorf("pipeline: %w", &SubprocessError{Stage: StageDump, ExitCode: 2, Err: cause})
	var target *SubprocessError
	assert.True(t, errors.As(subErr, &target))
	assert.Equal(t, StageDump, target.Stage)
	assert.ErrorIs(t, subErr, cause)

	fsErr := &FilesystemError{Path: "/a", Fallback: "/tmp/a", Err: cause}
	assert.ErrorIs(t, fsErr, cause)
	assert.Contains(t, fsErr.Error(), "/tmp/a")

	cfgErr := &ConfigurationError{Message: "database or all required"}
	assert.Equal(t, "invalid configuration: database or all required", cfgErr.Error())
}
