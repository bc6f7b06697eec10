// Command ragforge is the single entrypoint for the ingestion-to-RAG
// pipeline, adapted from sevigo-code-warden/cmd/cli/main.go's
// Execute()-and-exit shape and sevigo-code-warden/cmd/server/main.go's
// run()/signal-handling shape, merged into one cobra root with "serve"
// and "ingest" subcommands instead of separate binaries.
package main

import (
	"log/slog"
	"os"
)

func main() {
	if err := Execute(); err != nil {
		slog.Error("ragforge failed to run", "error", err)
		os.Exit(1)
	}
}
