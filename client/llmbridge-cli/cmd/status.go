package cmd

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"LLMBridge/internal/prompt"

	"github.com/spf13/cobra"
)

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "List the supported prompt templates",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return listModels(cmd.Context())
	},
}

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check that the server is up",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return checkHealth(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(modelsCmd)
	rootCmd.AddCommand(healthCmd)
}

type modelsResponse struct {
	Models  []prompt.ModelInfo `json:"models"`
	Default string             `json:"default"`
}

func listModels(ctx context.Context) error {
	client, err := newAPIClient()
	if err != nil {
		return err
	}
	var resp modelsResponse
	if err := client.getJSON(ctx, "/api/models", &resp); err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tLABEL")
	for _, m := range resp.Models {
		id := m.ID
		if id == resp.Default {
			id += " (default)"
		}
		fmt.Fprintf(w, "%s\t%s\n", id, m.Label)
	}
	return w.Flush()
}

type healthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Env       string `json:"env"`
	SSL       string `json:"ssl"`
}

func checkHealth(ctx context.Context) error {
	client, err := newAPIClient()
	if err != nil {
		return err
	}
	var resp healthResponse
	if err := client.getJSON(ctx, "/api/health", &resp); err != nil {
		return err
	}
	fmt.Printf("Status: %s\nEnvironment: %s\nScheme: %s\nServer time: %s\n", resp.Status, resp.Env, resp.SSL, resp.Timestamp)
	return nil
}
