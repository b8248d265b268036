package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

const version = "0.3.0"

var rootCmd = &cobra.Command{
	Use:     "helpline",
	Short:   "Helpline is an ISP customer support conversation engine",
	Long:    `Helpline drives multi-turn ISP support conversations: identifying the caller, running line diagnostics and guiding troubleshooting, with checkpointed state so conversations survive restarts.`,
	Version: version,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringP("config", "c", "config.yaml", "Path to the configuration file")
}
