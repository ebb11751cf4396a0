package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"LLMBridge/internal/models"

	"github.com/spf13/cobra"
)

var profileOut string

var uploadCmd = &cobra.Command{
	Use:   "upload [file-path]",
	Short: "Validate a chat history export with the server",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return uploadFile(cmd.Context(), args[0])
	},
}

var extractCmd = &cobra.Command{
	Use:   "extract [file-path]",
	Short: "Extract a user profile from a chat history export",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return extractProfile(cmd.Context(), args[0])
	},
}

func init() {
	rootCmd.AddCommand(uploadCmd)
	rootCmd.AddCommand(extractCmd)
	extractCmd.Flags().StringVarP(&profileOut, "out", "o", "", "write the extracted profile to this file")
}

func uploadFile(ctx context.Context, path string) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	defer clear(content)

	client, err := newAPIClient()
	if err != nil {
		return err
	}
	var receipt models.UploadReceipt
	if err := client.postFile(ctx, "/api/upload", filepath.Base(path), content, &receipt); err != nil {
		return err
	}

	fmt.Printf("%s\nName: %s\nSize: %d bytes\nHash: %s\n",
		receipt.Message, receipt.OriginalName, receipt.Size, receipt.ContentHash)
	return nil
}

// extractResponse 对应 /api/extract-memory 的响应。
type extractResponse struct {
	Profile   models.MemoryProfile `json:"profile"`
	LLMPrompt string               `json:"llmPrompt"`
	ProfileID string               `json:"profileId"`
}

func extractProfile(ctx context.Context, path string) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	defer clear(content)
	if !json.Valid(content) {
		return fmt.Errorf("%s is not a valid JSON file", path)
	}

	client, err := newAPIClient()
	if err != nil {
		return err
	}
	var resp extractResponse
	body := map[string]interface{}{
		"fileContent": json.RawMessage(content),
		"fileName":    filepath.Base(path),
	}
	if err := client.postJSON(ctx, "/api/extract-memory", body, &resp); err != nil {
		return err
	}

	out, err := json.MarshalIndent(resp.Profile, "", "  ")
	if err != nil {
		return err
	}
	if profileOut != "" {
		if err := os.WriteFile(profileOut, out, 0o600); err != nil {
			return err
		}
		fmt.Printf("Profile written to %s\n", profileOut)
	} else {
		fmt.Println(string(out))
	}
	if resp.ProfileID != "" {
		fmt.Printf("Profile ID: %s\n", resp.ProfileID)
		fmt.Printf("To render a prompt, run: llmbridge-cli prompt --profile-id %s --model claude\n", resp.ProfileID)
	}
	return nil
}
