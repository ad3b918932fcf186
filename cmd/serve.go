package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/huangsam/mlscore/internal/httpapi"
	"github.com/spf13/cobra"
)

// serveCmd runs the HTTP API.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the scoring API over HTTP",
	Long: `Start an HTTP server exposing scoring and the artifact store.

Routes:
  GET    /health
  POST   /artifacts          score {"url": "..."}
  GET    /artifacts          list (with ?limit=N)
  POST   /artifacts/byregex  search {"regex": "..."}
  GET    /artifacts/:id
  GET    /artifacts/:id/rate
  DELETE /artifacts/:id

Examples:
  mlscore serve --listen :9090`,
	Args:    cobra.NoArgs,
	PreRunE: noArgsSetupWrapper,
	RunE: func(_ *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(rootCtx, os.Interrupt, syscall.SIGTERM)
		defer stop()
		return httpapi.Start(ctx, cfg, storeManager)
	},
}
