package main

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/fgeck/mysql-backup/internal/config"
	"github.com/fgeck/mysql-backup/internal/models"
	"github.com/fgeck/mysql-backup/internal/services/lzma"
	"github.com/fgeck/mysql-backup/internal/services/mysqldump"
	"github.com/fgeck/mysql-backup/internal/services/openssl"
	"github.com/fgeck/mysql-backup/internal/services/runner"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate options and show the planned backup",
	Long:  `Validate the options and print the planned artifact path without executing anything.`,
	RunE:  validateConfig,
}

func init() {
	config.RegisterFlags(validateCmd.Flags())
}

func validateConfig(cmd *cobra.Command, args []string) error {
	settings, err := loadSettings(cmd)
	if err != nil {
		return err
	}

	runCtx := runner.NewRunContext(settings, time.Now())
	printSummary(settings, runCtx)

	return nil
}

func printSummary(settings models.Settings, runCtx models.RunContext) {
	final := mysqldump.Filename(settings, runCtx.Directory, runCtx.Stem) + lzma.Extension
	if settings.Encrypt() {
		final += openssl.Extension
	}

	fmt.Println("Configuration is valid!")
	fmt.Println()
	fmt.Println("Summary:")
	if settings.All {
		fmt.Println("  Scope: all databases")
	} else {
		fmt.Printf("  Database: %s\n", settings.Database)
	}
	if len(settings.SkipTables) > 0 {
		fmt.Printf("  Skip tables: %s\n", strings.Join(settings.SkipTables, ","))
	}
	if settings.DumpOptions != "" {
		fmt.Printf("  Dump options: %s\n", settings.DumpOptions)
	}
	if settings.DBUsername != "" {
		fmt.Printf("  MySQL username: %s\n", settings.DBUsername)
	}
	if settings.DBPassword != "" {
		fmt.Printf("  MySQL password: (configured)\n")
	}
	fmt.Printf("  LZMA level: %s\n", settings.CompressionLevel)
	fmt.Printf("  Nice level: %s\n", settings.Nice)
	fmt.Printf("  Encryption: %v\n", settings.Encrypt())
	if settings.Encrypt() {
		fmt.Printf("  Cipher: %s\n", settings.Cipher)
	}
	fmt.Println()
	fmt.Println("Output:")
	fmt.Printf("  Directory: %s\n", runCtx.Directory)
	fmt.Printf("  Final file: %s\n", filepath.Base(final))
}
