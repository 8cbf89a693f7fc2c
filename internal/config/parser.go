// Package config resolves flags, environment and config file into settings.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/fgeck/mysql-backup/internal/models"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable, e.g. MYSQL_BACKUP_DB_PASSWORD.
const EnvPrefix = "MYSQL_BACKUP"

// Config keys.
const (
	KeyVerbose         = "verbose"
	KeyDatabase        = "database"
	KeyAppendName      = "append_name"
	KeyDumpOptions     = "dump_options"
	KeyAll             = "all"
	KeySkipTables      = "skip_tables"
	KeySQL             = "sql"
	KeyRSAPassword     = "rsa_password"
	KeyCipher          = "cipher"
	KeyLZMACompression = "lzma_compression"
	KeyNice            = "nice"
	KeyDestination     = "destination"
	KeyDBPassword      = "db_password"
	KeyDBUsername      = "db_username"
	KeyDryRun          = "dry_run"
	KeyToolsMySQLDump  = "tools.mysqldump"
	KeyToolsLZMA       = "tools.lzma"
	KeyToolsOpenSSL    = "tools.openssl"
	KeyToolsNice       = "tools.nice"
)

const (
	defaultDestination  = "/backup"
	defaultCompression  = "2"
	defaultNice         = "18"
	defaultCipher       = "bf-cbc"
	defaultMySQLDumpBin = "mysqldump"
	defaultLZMABin      = "lzma"
	defaultOpenSSLBin   = "openssl"
	defaultNiceBin      = "nice"
)

// Parser handles configuration resolution.
type Parser struct {
	v     *viper.Viper
	flags *pflag.FlagSet
}

// NewParser creates a new configuration parser.
func NewParser() *Parser {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault(KeyVerbose, false)
	v.SetDefault(KeyDatabase, "")
	v.SetDefault(KeyAppendName, "")
	v.SetDefault(KeyDumpOptions, "")
	v.SetDefault(KeyAll, false)
	v.SetDefault(KeySkipTables, []string{})
	v.SetDefault(KeySQL, "")
	v.SetDefault(KeyRSAPassword, "")
	v.SetDefault(KeyCipher, defaultCipher)
	v.SetDefault(KeyLZMACompression, defaultCompression)
	v.SetDefault(KeyNice, defaultNice)
	v.SetDefault(KeyDestination, defaultDestination)
	v.SetDefault(KeyDBPassword, "")
	v.SetDefault(KeyDBUsername, "")
	v.SetDefault(KeyDryRun, false)
	v.SetDefault(KeyToolsMySQLDump, defaultMySQLDumpBin)
	v.SetDefault(KeyToolsLZMA, defaultLZMABin)
	v.SetDefault(KeyToolsOpenSSL, defaultOpenSSLBin)
	v.SetDefault(KeyToolsNice, defaultNiceBin)

	return &Parser{v: v}
}

// LoadFile loads configuration from a file path.
func (p *Parser) LoadFile(path string) error {
	p.v.SetConfigFile(path)

	if err := p.v.ReadInConfig(); err != nil {
		return fmt.Errorf("reading config file: %w", err)
	}

	return nil
}

// LoadReader loads configuration from a string (useful for testing).
func (p *Parser) LoadReader(content string) error {
	if err := p.v.ReadConfig(strings.NewReader(content)); err != nil {
		return fmt.Errorf("reading config: %w", err)
	}

	return nil
}

// Resolve builds the settings and validates them.
func (p *Parser) Resolve() (models.Settings, error) {
	settings := models.Settings{
		Verbose:          p.v.GetBool(KeyVerbose),
		DryRun:           p.v.GetBool(KeyDryRun),
		Database:         p.getString(KeyDatabase),
		All:              p.v.GetBool(KeyAll),
		AppendName:       p.getString(KeyAppendName),
		DumpOptions:      p.getString(KeyDumpOptions),
		SkipTables:       splitList(p.v.GetStringSlice(KeySkipTables)),
		SQL:              p.getString(KeySQL),
		Passphrase:       p.getString(KeyRSAPassword),
		Cipher:           strings.TrimPrefix(p.getString(KeyCipher), "-"),
		CompressionLevel: p.getString(KeyLZMACompression),
		Nice:             p.getString(KeyNice),
		Destination:      p.getString(KeyDestination),
		DBUsername:       p.getString(KeyDBUsername),
		DBPassword:       p.getString(KeyDBPassword),
		Tools: models.Tools{
			MySQLDump: p.getString(KeyToolsMySQLDump),
			LZMA:      p.getString(KeyToolsLZMA),
			OpenSSL:   p.getString(KeyToolsOpenSSL),
			Nice:      p.getString(KeyToolsNice),
		},
	}

	if err := Validate(settings); err != nil {
		return models.Settings{}, err
	}

	return settings, nil
}

// getString expands environment variables in values that come from the
// config file. Flags and environment values are used verbatim.
func (p *Parser) getString(key string) string {
	s := p.v.GetString(key)
	if p.v.InConfig(key) && !p.flagChanged(key) && os.Getenv(envName(key)) == "" {
		return p.expandEnv(s)
	}
	return s
}

// expandEnv expands environment variables in the format ${VAR} or $VAR.
func (p *Parser) expandEnv(s string) string {
	return os.ExpandEnv(s)
}

func envName(key string) string {
	return EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
}

// splitList accepts both list values and comma separated strings.
func splitList(in []string) []string {
	out := []string{}
	for _, item := range in {
		for _, part := range strings.Split(item, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

// Validate checks option combinations. The first failing rule wins.
func Validate(settings models.Settings) error {
	if settings.Database == "" && !settings.All {
		return &models.ConfigurationError{Message: "database or all required"}
	}

	if len(settings.SkipTables) > 0 && settings.Database == "" {
		return &models.ConfigurationError{Message: "skip_tables requires database"}
	}

	return nil
}
