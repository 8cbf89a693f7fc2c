package config

import (
	"errors"
	"testing"

	"github.com/fgeck/mysql-backup/internal/models"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFlagParser(t *testing.T, args ...string) *Parser {
	t.Helper()

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.BoolP("verbose", "v", false, "verbose")
	RegisterFlags(fs)
	require.NoError(t, fs.Parse(args))

	parser := NewParser()
	require.NoError(t, parser.BindFlags(fs))
	return parser
}

func TestResolve_Defaults(t *testing.T) {
	parser := newFlagParser(t, "--database=shop")

	settings, err := parser.Resolve()

	require.NoError(t, err)
	assert.Equal(t, "shop", settings.Database)
	assert.False(t, settings.All)
	assert.False(t, settings.Verbose)
	assert.False(t, settings.DryRun)
	assert.Equal(t, "2", settings.CompressionLevel)
	assert.Equal(t, "18", settings.Nice)
	assert.Equal(t, "/backup", settings.Destination)
	assert.Equal(t, "bf-cbc", settings.Cipher)
	assert.Empty(t, settings.SkipTables)
	assert.Empty(t, settings.Passphrase)
	assert.False(t, settings.Encrypt())
	assert.Equal(t, models.Tools{
		MySQLDump: "mysqldump",
		LZMA:      "lzma",
		OpenSSL:   "openssl",
		Nice:      "nice",
	}, settings.Tools)
}

func TestResolve_AllFlags(t *testing.T) {
	parser := newFlagParser(t,
		"--verbose",
		"--database=shop",
		"--append-name=nightly",
		"--dump-options=--single-transaction",
		"--skip-tables=orders,sessions",
		"--sql=SELECT 1",
		"--rsa-password=pass",
		"--cipher=-aes-256-cbc",
		"--lzma-compression=9",
		"--nice=10",
		"--destination=/srv",
		"--db-password=dbpass",
		"--db-username=backup",
		"--dry-run",
	)

	settings, err := parser.Resolve()

	require.NoError(t, err)
	assert.True(t, settings.Verbose)
	assert.True(t, settings.DryRun)
	assert.Equal(t, "nightly", settings.AppendName)
	assert.Equal(t, "--single-transaction", settings.DumpOptions)
	assert.Equal(t, []string{"orders", "sessions"}, settings.SkipTables)
	assert.Equal(t, "SELECT 1", settings.SQL)
	assert.Equal(t, "pass", settings.Passphrase)
	assert.Equal(t, "aes-256-cbc", settings.Cipher)
	assert.Equal(t, "9", settings.CompressionLevel)
	assert.Equal(t, "10", settings.Nice)
	assert.Equal(t, "/srv", settings.Destination)
	assert.Equal(t, "dbpass", settings.DBPassword)
	assert.Equal(t, "backup", settings.DBUsername)
}

func TestResolve_ConfigFile(t *testing.T) {
	t.Setenv("TEST_BACKUP_PASS", "from-env")

	yaml := `
all: true
destination: /data
rsa_password: "${TEST_BACKUP_PASS}"
tools:
  mysqldump: /usr/local/bin/mysqldump
`
	parser := NewParser()
	require.NoError(t, parser.LoadReader(yaml))

	settings, err := parser.Resolve()

	require.NoError(t, err)
	assert.True(t, settings.All)
	assert.Equal(t, "/data", settings.Destination)
	assert.Equal(t, "from-env", settings.Passphrase)
	assert.Equal(t, "/usr/local/bin/mysqldump", settings.Tools.MySQLDump)
	assert.Equal(t, "lzma", settings.Tools.LZMA)
}

func TestResolve_SkipTablesString(t *testing.T) {
	yaml := `
database: shop
skip_tables: "orders, sessions,,"
`
	parser := NewParser()
	require.NoError(t, parser.LoadReader(yaml))

	settings, err := parser.Resolve()

	require.NoError(t, err)
	assert.Equal(t, []string{"orders", "sessions"}, settings.SkipTables)
}

func TestResolve_FlagOverridesConfig(t *testing.T) {
	parser := newFlagParser(t, "--database=override", "--db-password=pa$$word")
	require.NoError(t, parser.LoadReader(`
database: fromfile
db_password: other
nice: "5"
`))

	settings, err := parser.Resolve()

	require.NoError(t, err)
	assert.Equal(t, "override", settings.Database)
	assert.Equal(t, "pa$$word", settings.DBPassword)
	assert.Equal(t, "5", settings.Nice)
}

func TestResolve_Environment(t *testing.T) {
	t.Setenv("MYSQL_BACKUP_DATABASE", "envdb")
	t.Setenv("MYSQL_BACKUP_DB_PASSWORD", "env$pass")
	t.Setenv("MYSQL_BACKUP_TOOLS_OPENSSL", "/opt/openssl")

	parser := NewParser()
	settings, err := parser.Resolve()

	require.NoError(t, err)
	assert.Equal(t, "envdb", settings.Database)
	assert.Equal(t, "env$pass", settings.DBPassword)
	assert.Equal(t, "/opt/openssl", settings.Tools.OpenSSL)
}

func TestResolve_InvalidConfig(t *testing.T) {
	parser := newFlagParser(t, "--skip-tables=orders")

	_, err := parser.Resolve()

	var cfgErr *models.ConfigurationError
	require.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, "database or all required", cfgErr.Message)
}

func TestLoadReader_InvalidYAML(t *testing.T) {
	parser := NewParser()
	err := parser.LoadReader("database: [unclosed")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "reading config")
}

func TestLoadFile_Missing(t *testing.T) {
	parser := NewParser()
	err := parser.LoadFile("/nonexistent/config.yaml")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "reading config file")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name     string
		settings models.Settings
		wantErr  string
	}{
		{
			name:     "neither database nor all",
			settings: models.Settings{},
			wantErr:  "database or all required",
		},
		{
			name:     "all without database",
			settings: models.Settings{All: true},
		},
		{
			name:     "database with skip tables",
			settings: models.Settings{Database: "x", SkipTables: []string{"t"}},
		},
		{
			name:     "skip tables in all mode",
			settings: models.Settings{All: true, SkipTables: []string{"t"}},
			wantErr:  "skip_tables requires database",
		},
		{
			name:     "first failing rule wins",
			settings: models.Settings{SkipTables: []string{"t"}},
			wantErr:  "database or all required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.settings)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}

			var cfgErr *models.ConfigurationError
			require.True(t, errors.As(err, &cfgErr))
			assert.Equal(t, tt.wantErr, cfgErr.Message)
		})
	}
}
