package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
)

var (
	serverURL string
	timeout   time.Duration
)

var rootCmd = &cobra.Command{
	Use:   "llmbridge-cli",
	Short: "A CLI client to interact with the LLMBridge API",
	Long: `A command-line interface for turning a chat history export into a user profile
and rendering model-specific system prompts from it.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Whoops. There was an error while executing your CLI: %s\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", envOr("LLMBRIDGE_URL", "http://localhost:3001"), "base URL of the LLMBridge server")
	// 提取可能耗时数分钟
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 3*time.Minute, "request timeout")
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
