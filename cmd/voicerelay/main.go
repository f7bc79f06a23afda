// voicerelay relays transcribed speech from the browser client to a local
// Ollama server and returns the assistant's reply.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/nikhilbhutani/voicerelay/internal/config"
)

var (
	version = "dev"
	envFile string
)

var rootCmd = &cobra.Command{
	Use:   "voicerelay",
	Short: "voicerelay - voice assistant relay for a local LLM",
	Long: `voicerelay serves the voice assistant page and forwards each message to a
locally running Ollama server.

  voicerelay serve                  Start the HTTP server (default)
  voicerelay ask "what time is it"  Send one message and print the reply

Configuration is read from the environment and, if present, a .env file.`,
	Version:           version,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
	RunE:              runServe,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file to load before reading the environment")
	rootCmd.AddCommand(serveCmd, askCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var cfg *config.Config

// setup loads configuration and installs the JSON logger. Logs go to stdout
// for the server and to stderr for one-shot commands, whose stdout is the reply.
func setup(cmd *cobra.Command, args []string) error {
	if err := config.LoadEnvFile(envFile); err != nil {
		return err
	}

	c, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return err
	}
	cfg = c

	out := os.Stdout
	if cmd.Name() == "ask" {
		out = os.Stderr
	}
	logger := slog.New(slog.NewJSONHandler(out, &slog.HandlerOptions{Level: cfg.Log.SlogLevel()}))
	slog.SetDefault(logger)
	return nil
}
