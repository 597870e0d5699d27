package cli

import (
	"errors"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/chengahtung/local-lode/internal/adapters/driving/tui"
)

var (
	tuiNResults int
	tuiRerank   bool
	tuiLLM      bool
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Interactive terminal search",
	RunE:  runTUI,
}

func init() {
	tuiCmd.Flags().IntVarP(&tuiNResults, "n-results", "n", 5, "number of results per query")
	tuiCmd.Flags().BoolVar(&tuiRerank, "rerank", true, "rerank results with the cross-encoder")
	tuiCmd.Flags().BoolVar(&tuiLLM, "llm", true, "stream a generated answer below the results")
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(cmd *cobra.Command, args []string) error {
	if queryService == nil {
		return errors.New("query service not configured")
	}
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return errors.New("tui requires an interactive terminal")
	}

	app := tui.New(queryService, tui.Options{
		NResults:  tuiNResults,
		UseRerank: tuiRerank,
		UseLLM:    tuiLLM,
	})
	return app.Run()
}
