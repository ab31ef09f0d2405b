package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/griefbot/grief/config"
	"github.com/griefbot/grief/database"
)

func main() {
	var configPath string

	rootCmd := &cobra.Command{
		Use:          "grief-setup",
		Short:        "Interactively creates the grief config file and data directory",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(configPath)
		},
	}
	rootCmd.Flags().StringVar(&configPath, "config", config.DefaultPath(), "where to write the config file")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(configPath string) error {
	if _, err := os.Stat(configPath); err == nil {
		fmt.Printf("A config already exists at %v.\n", configPath)
		if !confirm("Overwrite it?") {
			return nil
		}
	}

	cfg := config.Default()

	cfg.Token = prompt("Bot token", "")
	if strings.TrimSpace(cfg.Token) == "" {
		return fmt.Errorf("a bot token is required")
	}

	cfg.Prefix = prompt("Command prefix", cfg.Prefix)

	if owners := prompt("Owner user IDs (comma separated)", ""); owners != "" {
		for _, id := range strings.Split(owners, ",") {
			if id = strings.TrimSpace(id); id != "" {
				cfg.OwnerIDs = append(cfg.OwnerIDs, id)
			}
		}
	}

	cfg.DataDir = prompt("Data directory", cfg.DataDir)

	if confirm("Enable music playback through a Lavalink node?") {
		cfg.Lavalink.Enabled = true
		cfg.Lavalink.Address = prompt("Lavalink address", cfg.Lavalink.Address)
		cfg.Lavalink.Password = prompt("Lavalink password", "")
	}

	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := cfg.EnsureDirectories(); err != nil {
		return err
	}
	if err := cfg.Write(configPath); err != nil {
		return err
	}

	// open the database once so the schema exists before first run
	db, err := database.NewSqliteDatabase(&database.Config{Path: cfg.DatabasePath})
	if err != nil {
		return fmt.Errorf("initialize database: %w", err)
	}
	if err := db.Close(); err != nil {
		return err
	}

	fmt.Printf("\nWrote %v\nDatabase at %v\n\nStart the bot with `grief-launcher` or `grief`.\n", configPath, cfg.DatabasePath)
	return nil
}

var stdin = bufio.NewReader(os.Stdin)

func prompt(question, fallback string) string {
	if fallback != "" {
		fmt.Printf("%v [%v]: ", question, fallback)
	} else {
		fmt.Printf("%v: ", question)
	}

	line, err := stdin.ReadString('\n')
	if err != nil {
		return fallback
	}
	line = strings.TrimSpace(line)
	if line == "" {
		return fallback
	}
	return line
}

func confirm(question string) bool {
	answer := prompt(question+" (y/n)", "n")
	return strings.EqualFold(answer, "y") || strings.EqualFold(answer, "yes")
}
