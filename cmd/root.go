// Package cmd implements the sabi command line interface.
package cmd

import (
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "sabi",
	Short: "Sabi - culturally-grounded science tutor",
	Long: `Sabi is a retrieval-augmented tutoring service. It explains science
topics using culturally-relevant analogies retrieved from a pgvector
knowledge base, in standard English or Pidgin, as a tutor or a Griot
storyteller.

Run "sabi serve" to start the HTTP API, or "sabi teach <subject>" for a
one-off lesson in the terminal.`,
}

// Execute runs the root command.
func Execute() error {
	// .env is optional; absence is not an error.
	_ = godotenv.Load()
	return rootCmd.Execute()
}
