package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nikhilbhutani/voicerelay/internal/assistant"
	"github.com/nikhilbhutani/voicerelay/internal/llm"
)

var askCmd = &cobra.Command{
	Use:   "ask MESSAGE...",
	Short: "Send one message to the assistant and print the reply",
	Long: `Send one message through the same prompt the server uses and print the
reply. Connection failures print the same apology the browser would see.

  voicerelay ask translate good morning to French`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		provider, err := llm.NewProvider(cfg.LLM)
		if err != nil {
			return err
		}

		a := assistant.New(provider, cfg.LLM.Model)
		fmt.Fprintln(cmd.OutOrStdout(), a.Reply(cmd.Context(), strings.Join(args, " ")))
		return nil
	},
}
