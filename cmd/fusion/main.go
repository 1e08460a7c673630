package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/hereisSwapnil/FusionChat/cmd/fusion/chat"
	"github.com/hereisSwapnil/FusionChat/cmd/fusion/config"
	"github.com/hereisSwapnil/FusionChat/internal/core"
	"github.com/hereisSwapnil/FusionChat/internal/gateway"
	"github.com/hereisSwapnil/FusionChat/internal/logging"
)

// Version is the client version, stamped at release time.
var Version = "1.0.0"

var (
	serverURL string
	verbose   bool

	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "fusion",
	Short: "FusionChat - document-aware chat in your terminal",
	Long: `FusionChat is a terminal client for the FusionChat backend.

Conversations, messages and documents live on the server; this client keeps a
local view in sync, polls document ingestion until it settles, and renders
assistant replies as markdown.

Run without arguments to start the interactive chat interface.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		dir, err := config.Dir()
		if err != nil {
			return fmt.Errorf("resolve config directory: %w", err)
		}
		logger, err = logging.New(dir, verbose)
		if err != nil {
			return fmt.Errorf("initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runInteractive()
	},
}

var chatsCmd = &cobra.Command{
	Use:   "chats",
	Short: "List active conversations",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		store := gateway.New(cfg.ServerURL)

		ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
		defer cancel()

		chats, err := store.ListChats(ctx)
		if err != nil {
			return fmt.Errorf("list conversations: %w", err)
		}
		if len(chats) == 0 {
			fmt.Println("No active conversations.")
			return nil
		}
		for _, c := range chats {
			fmt.Printf("%-36s  %-19s  %s\n", c.ID, c.CreatedAt.Format("2006-01-02 15:04:05"), c.Title)
		}
		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the client version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("fusion %s\n", Version)
	},
}

func runInteractive() error {
	cfg := loadConfig()
	store := gateway.New(cfg.ServerURL)
	client := core.New(store, logger)

	logger.Info("starting interactive chat",
		zap.String("server", cfg.ServerURL),
		zap.String("version", Version))

	return chat.Run(client, cfg, logger)
}

// loadConfig layers the persisted config, the env override and the --server
// flag, strongest last.
func loadConfig() config.Config {
	cfg, err := config.Load()
	if err != nil && logger != nil {
		logger.Warn("config load failed, using defaults", zap.Error(err))
	}
	if serverURL != "" {
		cfg.ServerURL = serverURL
	}
	return cfg
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&serverURL, "server", "s", "", "FusionChat backend base URL (overrides config)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(chatsCmd)
	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
