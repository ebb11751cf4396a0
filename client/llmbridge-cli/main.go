package main

import "LLMBridge/client/llmbridge-cli/cmd"

func main() {
	cmd.Execute()
}
