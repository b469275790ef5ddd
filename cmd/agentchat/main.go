// Command agentchat runs and validates YAML defined group chats.
package main

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:          "agentchat",
	Short:        "Multi-agent group chat orchestrator",
	SilenceUsage: true, // Don't print usage on error
	Long: `agentchat drives a conversation between several LLM backed agents.

Each round one agent speaks. Who may follow whom is constrained by a
transition graph, and an admin agent arbitrates when several speakers are
eligible. The chat ends on a TERMINATE message, a selection or agent failure,
or when the round budget is spent.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		// Error already printed by cobra
		os.Exit(1)
	}
}

func main() {
	Execute()
}
