package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/chengahtung/local-lode/internal/core/domain"
)

var (
	queryNResults int
	queryRerank   bool
	queryLLM      bool
	queryStream   bool
	queryJSON     bool
)

var queryCmd = &cobra.Command{
	Use:   "query [text]",
	Short: "Query the indexed corpus",
	Long: `Runs a similarity search over the indexed corpus, optionally reranked
by the cross-encoder and answered by the local LLM.`,
	Args: cobra.ExactArgs(1),
	RunE: runQuery,
}

func init() {
	queryCmd.Flags().IntVarP(&queryNResults, "n-results", "n", 5, "number of results to retrieve")
	queryCmd.Flags().BoolVar(&queryRerank, "rerank", true, "rerank results with the cross-encoder")
	queryCmd.Flags().BoolVar(&queryLLM, "llm", false, "generate an answer with the local LLM")
	queryCmd.Flags().BoolVar(&queryStream, "stream", false, "stream the answer as it is generated")
	queryCmd.Flags().BoolVar(&queryJSON, "json", false, "output as JSON")
	rootCmd.AddCommand(queryCmd)
}

func runQuery(cmd *cobra.Command, args []string) error {
	if queryService == nil {
		return errors.New("query service not configured")
	}

	spec := domain.QuerySpec{
		Text:      args[0],
		NResults:  queryNResults,
		UseRerank: queryRerank,
		UseLLM:    queryLLM,
	}

	if queryStream {
		return runQueryStream(cmd, spec)
	}

	result, err := queryService.Query(context.Background(), spec)
	if err != nil {
		return fmt.Errorf("query failed: %w", err)
	}

	if queryJSON {
		data, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal result: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	printResults(cmd, result.Results)
	if result.LLMResponse != nil {
		cmd.Println("Answer:")
		cmd.Println(*result.LLMResponse)
	}
	return nil
}

func runQueryStream(cmd *cobra.Command, spec domain.QuerySpec) error {
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	for event := range queryService.QueryStream(ctx, spec) {
		switch event.Type {
		case domain.EventResults:
			if result, ok := event.Payload.(*domain.QueryResult); ok {
				printResults(cmd, result.Results)
				if spec.UseLLM && result.TotalResults > 0 {
					cmd.Println("Answer:")
				}
			}
		case domain.EventChunk:
			if fragment, ok := event.Payload.(string); ok {
				cmd.Print(fragment)
			}
		case domain.EventDone:
			cmd.Println()
			return nil
		case domain.EventError:
			cmd.Println()
			return fmt.Errorf("query failed: %v", event.Payload)
		}
	}
	return nil
}

func printResults(cmd *cobra.Command, results []domain.FormattedResult) {
	if len(results) == 0 {
		cmd.Println("No results found.")
		return
	}

	cmd.Println("Results:")
	cmd.Println()
	for _, r := range results {
		if r.Similarity != nil {
			cmd.Printf("  [%d] %s (%.2f)\n", r.Rank, r.Title, *r.Similarity)
		} else {
			cmd.Printf("  [%d] %s\n", r.Rank, r.Title)
		}
		if r.Source != "" {
			cmd.Printf("      Source: %s\n", r.Source)
		}
		if r.Snippet != "" {
			cmd.Printf("      %s\n", r.Snippet)
		}
		cmd.Println()
	}
}
