package cli

import (
	"fmt"
	"os"

	"github.com/arnold/blueprint-api/internal/config"
	"github.com/arnold/blueprint-api/internal/database"
	"github.com/arnold/blueprint-api/internal/storage"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// localNamespace scopes the terminal client's keys in a database shared
// with the server.
const localNamespace = "local"

var (
	dbURL   string
	rootCmd *cobra.Command
)

var (
	green  = color.New(color.FgGreen).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	red    = color.New(color.FgRed).SprintFunc()
	cyan   = color.New(color.FgCyan).SprintFunc()
	gray   = color.New(color.FgHiBlack).SprintFunc()
	bold   = color.New(color.Bold).SprintFunc()
)

func init() {
	rootCmd = &cobra.Command{
		Use:   "blueprint",
		Short: "Success Blueprint goal-setting wizard",
		Long: `Success Blueprint walks you through a yearly goal-setting exercise:
rate your life areas, pick a focus, set goals, actions, habits and motivation,
then export the result as a PDF, a CSV or a Markdown outline.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&dbURL, "db", "", "Database URL (overrides DATABASE_URL)")
}

// Execute runs the root command
func Execute(version string) error {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(wizardCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(verifyCmd)

	rootCmd.Version = version
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, red("Error:"), err)
		return err
	}
	return nil
}

func loadConfig() *config.Config {
	cfg := config.Load()
	if dbURL != "" {
		cfg.DatabaseURL = dbURL
	}
	return cfg
}

// openLocalStore opens the terminal client's view of the key/value store.
func openLocalStore(cfg *config.Config) (*storage.SafeStore, error) {
	db, err := database.Open(cfg.DatabaseURL, cfg.DBDebug)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := database.MigrateDB(db); err != nil {
		return nil, fmt.Errorf("migrate database: %w", err)
	}

	store, err := storage.NewGormStore(db, cfg.StorageQuotaBytes)
	if err != nil {
		return nil, err
	}
	return storage.NewSafeStore(storage.Namespace(store, localNamespace), printNotice), nil
}

func printNotice(level storage.NoticeLevel, message string) {
	switch level {
	case storage.NoticeSuccess:
		fmt.Fprintln(os.Stderr, green(message))
	case storage.NoticeError:
		fmt.Fprintln(os.Stderr, red(message))
	default:
		fmt.Fprintln(os.Stderr, cyan(message))
	}
}
