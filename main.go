// main is the entrypoint of the mlscore CLI.
package main

import (
	"fmt"
	"os"

	"github.com/huangsam/mlscore/cmd"
	"github.com/huangsam/mlscore/internal/iocache"
)

func main() {
	cmd.SetStoreManager(iocache.Manager)
	if err := run(); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	defer iocache.CloseStores()
	return cmd.Execute()
}
