// Package cli provides the command line interface for Local Lode.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/chengahtung/local-lode/internal/core/ports/driving"
	"github.com/chengahtung/local-lode/internal/logger"
)

// Services bundles the driving ports the CLI operates on. Wired once
// from main before Execute.
type Services struct {
	Query    driving.QueryService
	Ingest   driving.IngestService
	Admin    driving.IndexAdmin
	Settings driving.SettingsService
}

var (
	verbose bool

	queryService    driving.QueryService
	ingestService   driving.IngestService
	adminService    driving.IndexAdmin
	settingsService driving.SettingsService
)

var rootCmd = &cobra.Command{
	Use:   "local-lode",
	Short: "Local search over your own documents",
	Long: `Local Lode indexes a folder of markdown, text and docx files into a
local vector store and answers natural-language queries over them,
optionally reranked by a cross-encoder and summarised by a local LLM.
Everything runs on your machine.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logger.SetVerbose(verbose)
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
}

// SetServices wires the service implementations into the commands.
func SetServices(s Services) {
	queryService = s.Query
	ingestService = s.Ingest
	adminService = s.Admin
	settingsService = s.Settings
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
