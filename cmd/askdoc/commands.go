package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/askdoc/askdoc/internal/config"
)

// --- index ---

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Download the document and build the vector index",
	Long: `Download the document and build the vector index without starting a chat.

An existing index is reused as-is. Pass --rebuild to delete it and
re-embed the document from scratch, for example after changing the
document URL or chunking settings.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		rebuild, _ := cmd.Flags().GetBool("rebuild")

		cfg, err := config.Load()
		if err != nil {
			return err
		}
		setupLogging(cfg.Log.Level)

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if rebuild {
			printStep("Removing existing index")
			if err := os.RemoveAll(cfg.IndexDir()); err != nil {
				return fmt.Errorf("removing index: %w", err)
			}
		}

		p, err := buildPipeline(ctx, cfg)
		if err != nil {
			reportError(err)
			return err
		}
		defer p.Close()

		count, err := p.store.Count()
		if err != nil {
			return fmt.Errorf("counting index records: %w", err)
		}
		printSuccess("Index ready (%d records)", count)
		return nil
	},
}

func init() {
	indexCmd.Flags().Bool("rebuild", false, "delete the existing index and rebuild it")
}

// --- config ---

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect and modify configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration (secrets omitted)",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		for _, info := range config.ShowAll(cfg) {
			printStatus(info.Key, "%s", info.Value)
		}
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, value := args[0], args[1]
		if err := config.SetKey(key, value); err != nil {
			if strings.Contains(err.Error(), "unknown config key") {
				return fmt.Errorf("%w\nvalid keys: %s", err, strings.Join(config.ValidKeys(), ", "))
			}
			return err
		}
		printSuccess("Set %s = %s", key, value)
		return nil
	},
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}
