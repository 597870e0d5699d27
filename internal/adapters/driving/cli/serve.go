package cli

import (
	"errors"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/chengahtung/local-lode/internal/adapters/driving/httpapi"
	"github.com/chengahtung/local-lode/internal/logger"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the HTTP API for local frontends",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "127.0.0.1:8000", "listen address")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	if queryService == nil || ingestService == nil {
		return errors.New("services not configured")
	}

	handler := httpapi.New(httpapi.Services{
		Query:    queryService,
		Ingest:   ingestService,
		Admin:    adminService,
		Settings: settingsService,
	})

	server := &http.Server{
		Addr:              serveAddr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info("serving HTTP API on %s", serveAddr)
	cmd.Printf("Listening on http://%s\n", serveAddr)
	return server.ListenAndServe()
}
