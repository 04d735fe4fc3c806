// Package cmd implements the provision CLI commands.
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dgcastano/provision/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show current configuration",
	RunE:  runConfig,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a config file with the current defaults",
	RunE:  runConfigInit,
}

func init() {
	configCmd.AddCommand(configInitCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfig(_ *cobra.Command, _ []string) error {
	fmt.Printf("  Config file: %s\n", config.ConfigPath())
	if config.Exists() {
		fmt.Println("  Status: loaded")
	} else {
		fmt.Println("  Status: using defaults (no config file)")
	}
	fmt.Println()

	fmt.Println("  [General]")
	fmt.Printf("    Database:      %s\n", config.DBPath(cfg))
	fmt.Printf("    Horizon weeks: %d\n", cfg.General.HorizonWeeks)
	fmt.Printf("    Currency:      %s\n", cfg.General.Currency)
	fmt.Println()

	fmt.Println("  [Appearance]")
	fmt.Printf("    Theme: %s\n", cfg.Appearance.Theme)
	return nil
}

func runConfigInit(_ *cobra.Command, _ []string) error {
	if config.Exists() {
		return fmt.Errorf("config file already exists at %s", config.ConfigPath())
	}
	if err := config.Save(cfg); err != nil {
		return err
	}
	fmt.Printf("Wrote %s\n", config.ConfigPath())
	return nil
}
