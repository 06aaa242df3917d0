package main

import (
	"fmt"
	"os"

	"wadcat/internal/app"
	"wadcat/internal/config"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// newApp reads the config and creates an App. The caller must defer app.Close().
// operation identifies the CLI command being run (e.g. "Index", "Snapshot").
func newApp(operation string) (*app.App, error) {
	cfg, err := readConfig()
	if err != nil {
		return nil, err
	}

	a, err := app.NewApp(cfg, operation)
	if err != nil {
		return nil, fmt.Errorf("initializing app: %w", err)
	}

	return a, nil
}

func readConfig() (*config.Config, error) {
	defaults, err := app.GetDefaults()
	if err != nil {
		return nil, fmt.Errorf("getting defaults: %w", err)
	}

	cfg, err := config.ReadFromFile(defaults["config_path"])
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	return cfg, nil
}

// readPassphrase prompts for a passphrase without echoing it.
func readPassphrase(prompt string) (string, error) {
	fmt.Fprint(os.Stderr, prompt)
	pass, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("reading passphrase: %w", err)
	}
	return string(pass), nil
}

var rootCmd = &cobra.Command{
	Use:   "wadcat",
	Short: "WAD archive cataloging tool",
}

// config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		cfg := config.NewConfig(defaults["base_dir"])

		if err := config.Init(defaults["config_path"], cfg); err != nil {
			return fmt.Errorf("failed to initialize config: %w", err)
		}

		fmt.Printf("Configuration initialized at %s\n", defaults["config_path"])
		fmt.Printf("Base Dir: %s\n", defaults["base_dir"])
		return nil
	},
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "View configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		cfg, err := config.ReadFromFile(defaults["config_path"])
		if err != nil {
			return fmt.Errorf("failed to read config: %w", err)
		}

		fmt.Printf("Configuration from %s:\n\n", defaults["config_path"])
		fmt.Printf("Base Dir:    %s\n", cfg.BaseDir)
		fmt.Printf("Log Dir:     %s\n", cfg.LogDir)
		fmt.Printf("Scratch Dir: %s\n", cfg.ScratchDir)
		fmt.Printf("Database:    %s (%s)\n", cfg.Database.Path, cfg.Database.Type)
		fmt.Printf("Lookup:      %s\n", cfg.Lookup.Type)
		fmt.Printf("Vault:       %s\n", cfg.Vault.Type)
		return nil
	},
}

// db command
var dbCmd = &cobra.Command{
	Use:   "db",
	Short: "Manage the catalog database",
}

var dbInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create or migrate the catalog schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := readConfig()
		if err != nil {
			return err
		}

		if err := app.InitCatalog(cfg); err != nil {
			return err
		}

		fmt.Printf("Catalog ready at %s\n", cfg.Database.Path)
		return nil
	},
}

// index command
var indexCmd = &cobra.Command{
	Use:   "index PATH",
	Short: "Index archives under a directory tree",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("Index")
		if err != nil {
			return err
		}
		defer a.Close()

		stats, err := a.Index(args[0])
		if stats != nil {
			fmt.Printf("Visited %d file(s): %d archive(s) recorded, %d container(s) indexed, %d level(s), %d error(s)\n",
				stats.FilesVisited, stats.ArchivesRecorded, stats.WadsIndexed, stats.LevelsIndexed, stats.Errors)
			fmt.Printf("Elapsed %s (%s hashing over %d checksum call(s))\n",
				app.Elapsed(stats.Elapsed), app.Elapsed(stats.ChecksumTime), stats.ChecksumCalls)
		}
		if err != nil {
			return fmt.Errorf("indexing failed: %w", err)
		}
		return nil
	},
}

// history command
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "View index run history",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		a, err := newApp("History")
		if err != nil {
			return err
		}
		defer a.Close()

		runs, err := a.History(limit)
		if err != nil {
			return err
		}

		if len(runs) == 0 {
			fmt.Println("No index runs recorded.")
			return nil
		}

		for _, run := range runs {
			duration := ""
			if run.FinishedAt.Valid {
				duration = app.Elapsed(run.FinishedAt.Time.Sub(run.StartedAt))
			}
			fmt.Printf("#%d  %-10s  %s  %-8s  visited:%d wads:%d errors:%d  %s\n",
				run.ID,
				run.Operation,
				run.StartedAt.Format("2006-01-02 15:04:05"),
				run.Status,
				run.FilesVisited,
				run.WadsIndexed,
				run.Errors,
				duration,
			)
		}
		return nil
	},
}

// snapshot command
var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Store a catalog snapshot in the vault",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("Snapshot")
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.Snapshot(); err != nil {
			return fmt.Errorf("snapshot failed: %w", err)
		}

		fmt.Println("Snapshot stored.")
		return nil
	},
}

var snapshotRestoreCmd = &cobra.Command{
	Use:   "restore DEST",
	Short: "Restore the latest catalog snapshot from the vault",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("RestoreSnapshot")
		if err != nil {
			return err
		}
		defer a.Close()

		cfg, err := readConfig()
		if err != nil {
			return err
		}

		passphrase := ""
		if cfg.Encryption.Type != "none" && cfg.Encryption.Type != "" {
			passphrase, err = readPassphrase("Passphrase: ")
			if err != nil {
				return err
			}
		}

		version, err := a.RestoreSnapshot(args[0], passphrase)
		if err != nil {
			return fmt.Errorf("restore failed: %w", err)
		}

		fmt.Printf("Snapshot version %d restored to %s\n", version, args[0])
		return nil
	},
}

// keys command
var keysCmd = &cobra.Command{
	Use:   "keys",
	Short: "Manage snapshot encryption keys",
}

var keysInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Generate the snapshot encryption key pair",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("SetupKeys")
		if err != nil {
			return err
		}
		defer a.Close()

		passphrase, err := readPassphrase("New passphrase: ")
		if err != nil {
			return err
		}
		confirm, err := readPassphrase("Confirm passphrase: ")
		if err != nil {
			return err
		}
		if passphrase != confirm {
			return fmt.Errorf("passphrases do not match")
		}

		if err := a.SetupKeys(passphrase); err != nil {
			return fmt.Errorf("key setup failed: %w", err)
		}

		fmt.Println("Key pair generated.")
		return nil
	},
}

func init() {
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configListCmd)

	dbCmd.AddCommand(dbInitCmd)

	snapshotCmd.AddCommand(snapshotRestoreCmd)
	keysCmd.AddCommand(keysInitCmd)

	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(dbCmd)
	rootCmd.AddCommand(indexCmd)
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().IntP("limit", "n", 50, "Maximum number of runs to show")
	rootCmd.AddCommand(snapshotCmd)
	rootCmd.AddCommand(keysCmd)
}
