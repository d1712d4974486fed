package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"studyquest/internal/config"
	"studyquest/internal/logger"
	"studyquest/internal/repository"
	"studyquest/internal/service"
	"studyquest/internal/store"
)

const envHelp = `Environment Variables:
  STORE_BACKEND    Record store: sql, redis, or memory (default: sql)
  DB_TYPE          Database type: sqlite, postgres, or mysql (default: sqlite)
  DB_PATH          SQLite database path (default: ./studyquest.db)
  DATABASE_URL     PostgreSQL or MySQL connection URL
  REDIS_URL        Redis connection URL`

func main() {
	rootCmd := &cobra.Command{
		Use:          "backup",
		Short:        "StudyQuest backup tool",
		Long:         "Export and import every StudyQuest collection through the configured record store.\n\n" + envHelp,
		SilenceUsage: true,
	}

	rootCmd.AddCommand(exportCmd())
	rootCmd.AddCommand(importCmd())
	rootCmd.AddCommand(inspectCmd())

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

// withBackupService opens the configured store and hands a backup service to fn
func withBackupService(ctx context.Context, fn func(*service.BackupService, *logger.Logger) error) error {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return err
	}
	log, err := logger.New(cfg.Environment)
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	defer log.Sync()

	recordStore, closeStore, err := store.Open(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeStore()

	backupService := service.NewBackupService(
		repository.NewUserRepository(recordStore),
		repository.NewRewardRepository(recordStore),
		repository.NewClaimRepository(recordStore),
		repository.NewTaskRepository(recordStore),
		repository.NewQuestionRepository(recordStore),
		cfg.StoreBackend,
		log,
	)
	return fn(backupService, log)
}

func exportCmd() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export all records to a JSON file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if output == "" {
				output = fmt.Sprintf("backup_%s.json", time.Now().Format("20060102_150405"))
			}
			if dir := filepath.Dir(output); dir != "." && dir != "" {
				if err := os.MkdirAll(dir, 0755); err != nil {
					return fmt.Errorf("failed to create output directory: %w", err)
				}
			}

			return withBackupService(cmd.Context(), func(backupService *service.BackupService, log *logger.Logger) error {
				log.Info("exporting records", "path", output)
				if err := backupService.Export(cmd.Context(), output); err != nil {
					return fmt.Errorf("export failed: %w", err)
				}
				if info, err := os.Stat(output); err == nil {
					log.Info("export complete", "size_mb", fmt.Sprintf("%.2f", float64(info.Size())/1024/1024))
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file path (default: backup_YYYYMMDD_HHMMSS.json)")
	return cmd
}

func importCmd() *cobra.Command {
	var (
		input   string
		replace bool
		yes     bool
	)
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import records from a JSON file",
		Long:  "Import records from a JSON file. Records are merged by id unless --clear is given.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := os.Stat(input); os.IsNotExist(err) {
				return fmt.Errorf("input file does not exist: %s", input)
			}

			if replace && !yes {
				fmt.Fprint(cmd.OutOrStdout(), "WARNING: This will replace all existing data. Type 'yes' to confirm: ")
				var confirmation string
				fmt.Fscanln(cmd.InOrStdin(), &confirmation)
				if confirmation != "yes" {
					fmt.Fprintln(cmd.OutOrStdout(), "Import cancelled")
					return nil
				}
			}

			return withBackupService(cmd.Context(), func(backupService *service.BackupService, log *logger.Logger) error {
				log.Info("importing records", "path", input, "replace", replace)
				if err := backupService.Import(cmd.Context(), input, replace); err != nil {
					return fmt.Errorf("import failed: %w", err)
				}
				log.Info("import complete")
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&input, "input", "i", "", "Input file path (required)")
	cmd.Flags().BoolVar(&replace, "clear", false, "Replace existing data instead of merging (WARNING: destructive)")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt for --clear")
	_ = cmd.MarkFlagRequired("input")
	return cmd
}

func inspectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <file>",
		Short: "Print a summary of a backup file without importing it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			file, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("failed to open backup: %w", err)
			}
			defer file.Close()

			backup, err := service.ReadBackup(file)
			if err != nil {
				return err
			}

			data, err := yaml.Marshal(backup.Summarize())
			if err != nil {
				return fmt.Errorf("failed to marshal summary: %w", err)
			}
			fmt.Fprint(cmd.OutOrStdout(), string(data))
			return nil
		},
	}
}
