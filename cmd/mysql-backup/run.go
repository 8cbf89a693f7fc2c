package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/fgeck/mysql-backup/internal/config"
	"github.com/fgeck/mysql-backup/internal/models"
	"github.com/fgeck/mysql-backup/internal/services/runner"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Execute the backup pipeline",
	Long: `Execute the backup pipeline:
1. Create the date-partitioned target directory
2. Dump the database with mysqldump
3. Compress the dump with lzma
4. Encrypt the archive with openssl (if --rsa-password is set)`,
	Example: `  mysql-backup run --database=shop --skip-tables=sessions
  mysql-backup run --all --rsa-password="$PASS" --destination=/srv
  mysql-backup run --database=shop --dry-run -v`,
	RunE: runBackup,
}

func init() {
	config.RegisterFlags(runCmd.Flags())
}

// loadSettings resolves settings from the command's flags, the
// environment and the optional config file.
func loadSettings(cmd *cobra.Command) (models.Settings, error) {
	parser := config.NewParser()
	if err := parser.BindFlags(cmd.Flags()); err != nil {
		return models.Settings{}, err
	}

	if configFile != "" {
		if err := parser.LoadFile(configFile); err != nil {
			log.Error().Err(err).Str("file", configFile).Msg("failed to load config")
			return models.Settings{}, err
		}
	}

	settings, err := parser.Resolve()
	if err != nil {
		log.Error().Err(err).Msg("invalid configuration")
		return models.Settings{}, err
	}

	// verbose may also come from the config file or environment
	if settings.Verbose && !quiet {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	return settings, nil
}

func runBackup(cmd *cobra.Command, args []string) error {
	settings, err := loadSettings(cmd)
	if err != nil {
		return err
	}

	// Set up context with signal handling
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigChan
		log.Warn().Str("signal", sig.String()).Msg("received signal, shutting down")
		cancel()
	}()

	runnerSvc := runner.New(log.Logger)
	result, err := runnerSvc.Run(ctx, settings)
	if err != nil {
		log.Error().Err(err).Msg("backup failed")
		return err
	}

	log.Debug().Str("output", result.FinalPath).Msg("backup completed successfully")
	return nil
}
