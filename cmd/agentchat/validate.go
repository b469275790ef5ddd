package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/hupe1980/agentchat/config"
)

var validateCmd = &cobra.Command{
	Use:   "validate [file]",
	Short: "Validate a group chat definition",
	Long: `Parses a group chat YAML file and reports every problem found: unknown
keys, missing agents, bad transitions, unknown providers and seed senders
that are not members.

Examples:
  agentchat validate review.yaml`,
	Args: cobra.ExactArgs(1),
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(args[0])
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s is valid: %d agents, %d transitions\n",
		filepath.Base(args[0]), len(cfg.Agents), len(cfg.Transitions))
	return nil
}
