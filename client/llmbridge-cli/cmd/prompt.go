package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	promptModel      string
	promptProfile    string
	promptProfileID  string
	promptRegenerate bool
)

var promptCmd = &cobra.Command{
	Use:   "prompt",
	Short: "Render a model-specific system prompt from a profile",
	RunE: func(cmd *cobra.Command, args []string) error {
		return generatePrompt(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(promptCmd)
	promptCmd.Flags().StringVarP(&promptModel, "model", "m", "claude", "target model template")
	promptCmd.Flags().StringVarP(&promptProfile, "profile", "p", "", "profile JSON file")
	promptCmd.Flags().StringVar(&promptProfileID, "profile-id", "", "id of a profile stored on the server")
	promptCmd.Flags().BoolVar(&promptRegenerate, "regenerate", false, "ask the server's LLM to enhance the prompt")
	promptCmd.MarkFlagsMutuallyExclusive("profile", "profile-id")
}

// promptRequest 对应 /api/generate-prompt 的请求体。
type promptRequest struct {
	Profile    json.RawMessage `json:"profile,omitempty"`
	ProfileID  string          `json:"profileId,omitempty"`
	Model      string          `json:"model"`
	Regenerate bool            `json:"regenerate,omitempty"`
}

type promptResponse struct {
	Success bool   `json:"success"`
	Prompt  string `json:"prompt"`
	Model   string `json:"model"`
}

func generatePrompt(ctx context.Context) error {
	req := promptRequest{
		ProfileID:  promptProfileID,
		Model:      promptModel,
		Regenerate: promptRegenerate,
	}
	switch {
	case promptProfile != "":
		data, err := os.ReadFile(promptProfile)
		if err != nil {
			return err
		}
		if !json.Valid(data) {
			return fmt.Errorf("%s is not a valid JSON file", promptProfile)
		}
		req.Profile = data
	case promptProfileID == "":
		return errors.New("either --profile or --profile-id is required")
	}

	client, err := newAPIClient()
	if err != nil {
		return err
	}
	var resp promptResponse
	if err := client.postJSON(ctx, "/api/generate-prompt", req, &resp); err != nil {
		return err
	}

	if resp.Model != promptModel {
		fmt.Fprintf(os.Stderr, "Model %q is not supported, rendered %q instead.\n", promptModel, resp.Model)
	}
	fmt.Println(resp.Prompt)
	return nil
}
