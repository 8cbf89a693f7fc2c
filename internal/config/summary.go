package config

import (
	"strings"

	"github.com/fgeck/mysql-backup/internal/models"
	"github.com/rs/zerolog"
)

const configured = "(configured)"

// LogSettings logs the resolved settings and the planned target when
// verbose output is enabled. Secrets are never logged.
func LogSettings(logger zerolog.Logger, settings models.Settings, runCtx models.RunContext) {
	if !settings.Verbose {
		return
	}

	event := logger.Debug().
		Bool("all", settings.All).
		Str("db_username", settings.DBUsername).
		Str("db_password", mask(settings.DBPassword)).
		Str("lzma_compression", settings.CompressionLevel).
		Str("nice", settings.Nice).
		Str("destination", settings.Destination).
		Str("final_path", runCtx.Directory).
		Str("final_filename", runCtx.Stem).
		Bool("dry_run", settings.DryRun)

	if settings.Database != "" {
		event = event.Str("database", settings.Database)
	}
	if settings.DumpOptions != "" {
		event = event.Str("dump_options", settings.DumpOptions)
	}
	if settings.AppendName != "" {
		event = event.Str("append_name", settings.AppendName)
	}
	if len(settings.SkipTables) > 0 {
		event = event.Str("skip_tables", strings.Join(settings.SkipTables, ","))
	}
	if settings.SQL != "" {
		event = event.Str("sql", settings.SQL)
	}
	if settings.Encrypt() {
		event = event.Str("rsa_password", configured).Str("cipher", settings.Cipher)
	}

	event.Msg("configuration")
}

func mask(secret string) string {
	if secret == "" {
		return ""
	}
	return configured
}
