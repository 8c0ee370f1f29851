// Package main provides the entry point for the Resume2Portfolio web app.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "resume2portfolio",
	Short: "Resume2Portfolio web app",
	Long:  "Resume2Portfolio accepts a resume upload, sends it to the extraction backend and renders the result as a portfolio page with export links.",
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
