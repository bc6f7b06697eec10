package main

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "ragforge",
	Short: "ragforge collects a forge repository and serves a RAG query API over it",
	Long:  `ragforge ingests commits, pull requests, issues, and file trees from a GitHub repository into a document store, chunks and embeds them, and answers questions against the resulting index.`,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(ingestCmd)
}
