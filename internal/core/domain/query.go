package domain

// QuerySpec describes one search request. The core treats it as read-only;
// validation happens at the calling surface.
type QuerySpec struct {
	// Text is the natural-language query.
	Text string `json:"query"`

	// NResults is the number of candidates to retrieve. Must be >= 1.
	NResults int `json:"n_results"`

	// UseRerank enables cross-encoder reranking of the candidates.
	UseRerank bool `json:"use_rerank"`

	// UseLLM enables answer generation over the selected records.
	UseLLM bool `json:"use_llm"`
}

// QueryResult is the synchronous query response.
type QueryResult struct {
	// Results are the formatted records, ranked 1..N with no gaps.
	Results []FormattedResult `json:"results"`

	// LLMResponse is the generated answer, nil when generation was not
	// requested or the selected set was empty. When the generator fails
	// it carries a human-readable failure marker instead.
	LLMResponse *string `json:"llm_response"`

	// TotalResults is len(Results).
	TotalResults int `json:"total_results"`
}
