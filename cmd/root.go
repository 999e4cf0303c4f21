package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rset-labs/campus-assist/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "campus-assist",
	Short: "Retrieval-augmented chat assistant for the college website",
	Long:  "Searches the college's approved domains, scrapes and scores page content, and answers questions strictly from that context via a hosted LLM.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
