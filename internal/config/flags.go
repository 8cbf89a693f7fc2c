package config

import (
	"fmt"

	"github.com/spf13/pflag"
)

// flagKeys maps CLI flag names to config keys.
var flagKeys = map[string]string{
	"verbose":          KeyVerbose,
	"database":         KeyDatabase,
	"append-name":      KeyAppendName,
	"dump-options":     KeyDumpOptions,
	"all":              KeyAll,
	"skip-tables":      KeySkipTables,
	"sql":              KeySQL,
	"rsa-password":     KeyRSAPassword,
	"cipher":           KeyCipher,
	"lzma-compression": KeyLZMACompression,
	"nice":             KeyNice,
	"destination":      KeyDestination,
	"db-password":      KeyDBPassword,
	"db-username":      KeyDBUsername,
	"dry-run":          KeyDryRun,
}

// RegisterFlags adds the backup option flags to fs. The verbose flag is
// owned by the root command and only bound here.
func RegisterFlags(fs *pflag.FlagSet) {
	fs.String("database", "", "database to back up")
	fs.String("append-name", "", "name prepended to the backup file name")
	fs.String("dump-options", "", "extra options passed to mysqldump")
	fs.Bool("all", false, "back up all databases")
	fs.StringSlice("skip-tables", nil, "tables to skip, comma separated (requires --database)")
	fs.String("sql", "", "custom SQL (accepted, currently unused)")
	fs.String("rsa-password", "", "passphrase to encrypt the backup with")
	fs.String("cipher", defaultCipher, "openssl cipher used for encryption")
	fs.String("lzma-compression", defaultCompression, "lzma compression level")
	fs.String("nice", defaultNice, "nice level for all subprocesses")
	fs.String("destination", defaultDestination, "root directory of the backup tree")
	fs.String("db-password", "", "mysql password")
	fs.String("db-username", "", "mysql username")
	fs.Bool("dry-run", false, "print the planned commands without running them")
}

// BindFlags binds every known flag present in fs to its config key.
func (p *Parser) BindFlags(fs *pflag.FlagSet) error {
	p.flags = fs
	for name, key := range flagKeys {
		flag := fs.Lookup(name)
		if flag == nil {
			continue
		}
		if err := p.v.BindPFlag(key, flag); err != nil {
			return fmt.Errorf("binding flag %s: %w", name, err)
		}
	}
	return nil
}

func (p *Parser) flagChanged(key string) bool {
	if p.flags == nil {
		return false
	}
	for name, k := range flagKeys {
		if k == key {
			flag := p.flags.Lookup(name)
			return flag != nil && flag.Changed
		}
	}
	return false
}
