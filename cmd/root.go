package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dgcastano/provision/internal/config"
	"github.com/dgcastano/provision/internal/store"
)

var (
	flagDB       string
	flagWeeks    int
	flagCategory string
	flagQuiet    bool

	cfg config.Config
)

var rootCmd = &cobra.Command{
	Use:   "provision",
	Short: "Procurement planning for food service",
	Long: "Project sales demand, explode recipes into raw-material requirements,\n" +
		"and turn them into purchase quantities and monthly budgets.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load()
		if err != nil {
			return err
		}
		if !cmd.Flags().Changed("weeks") && cfg.General.HorizonWeeks > 0 {
			flagWeeks = cfg.General.HorizonWeeks
		}
		return nil
	},
}

// Execute is the main entry point called from main.go.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagDB, "db", "", "Database path (default: XDG data dir)")
	rootCmd.PersistentFlags().IntVarP(&flagWeeks, "weeks", "w", 4, "Planning horizon in weeks")
	rootCmd.PersistentFlags().StringVarP(&flagCategory, "category", "c", "", "Restrict to one material category")
	rootCmd.PersistentFlags().BoolVarP(&flagQuiet, "quiet", "q", false, "Suppress progress output")
}

// openStore resolves the database path from the flag or config and opens it.
func openStore() (*store.Store, error) {
	path := flagDB
	if path == "" {
		path = config.DBPath(cfg)
	}
	st, err := store.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening database at %s: %w", path, err)
	}
	return st, nil
}

func currency() string {
	if cfg.General.Currency != "" {
		return cfg.General.Currency
	}
	return "$"
}

func progress(format string, args ...any) {
	if flagQuiet {
		return
	}
	fmt.Fprintf(os.Stderr, format, args...)
}
