package main

import (
	"os"

	"github.com/dev-bhaskar8/lp-data/cmd/corrscan/commands"
)

// main is the entry point for the corrscan CLI
// ⭐ 통합 CLI 진입점: go run ./cmd/corrscan [command]
func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
