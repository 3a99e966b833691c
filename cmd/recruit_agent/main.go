// Package main provides the entry point for the recruitment pipeline server.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "recruit_agent",
	Short: "AI Recruitment Pipeline Server",
	Long:  "Webhook server orchestrating a three-stage AI interview pipeline: phone screening, technical interview, and video behavioral interview, with results recorded to a shared spreadsheet.",
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
