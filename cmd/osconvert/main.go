// Package main provides the entry point for the Other Support converter CLI.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "osconvert",
	Short: "Convert NIH Other Support documents to SciENcv XML",
	Long:  "osconvert reads NIH Other Support disclosure documents (.docx) and produces SciENcv-compatible XML, from local files, from remote URLs, or as an HTTP service.",
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
