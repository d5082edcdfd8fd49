package advisor

import (
	"context"
	"fmt"
	"strings"

	"advisor/internal/adapters/search"
	"advisor/internal/metrics"
	"advisor/internal/tools"
	"advisor/pkg/errors"
	"advisor/pkg/logger"
)

// WebsearchToolName is the tool identifier advertised to the model.
const WebsearchToolName = "websearch"

// NoResultsMessage is returned instead of an empty result set; callers
// embed tool output into prompts and expect non-empty text.
const NoResultsMessage = "No results found."

// RateLimitMessage is the fixed advisory returned on search throttling.
// The adapter never retries on the caller's behalf.
const RateLimitMessage = "Rate limit reached. Please try again after a short delay."

// Searcher is the web-search capability consumed by the adapter.
type Searcher interface {
	Search(ctx context.Context, keywords string, region string, maxResults int) ([]search.Result, error)
}

// SearchAdapter folds every search failure mode into descriptive text.
// It never returns an error: a failed search becomes tool output like
// any other, and the model works with whatever text it gets.
type SearchAdapter struct {
	searcher   Searcher
	region     string
	maxResults int
	log        *logger.Logger
}

// NewSearchAdapter creates a search adapter with default region and result cap.
func NewSearchAdapter(searcher Searcher, region string, maxResults int) *SearchAdapter {
	return &SearchAdapter{
		searcher:   searcher,
		region:     region,
		maxResults: maxResults,
		log:        logger.Get().With("component", "websearch"),
	}
}

// Websearch performs a web search and returns results or an error message.
// An empty region or non-positive maxResults falls back to the configured defaults.
func (a *SearchAdapter) Websearch(ctx context.Context, keywords string, region string, maxResults int) string {
	if region == "" {
		region = a.region
	}
	if maxResults <= 0 {
		maxResults = a.maxResults
	}

	results, err := a.searcher.Search(ctx, keywords, region, maxResults)
	if err != nil {
		var rateErr *search.RateLimitError
		var provErr *search.ProviderError

		switch {
		case errors.As(err, &rateErr):
			a.log.Warnf("Search rate limited: %v", err)
			metrics.SearchCalls.WithLabelValues("rate_limited").Inc()
			return RateLimitMessage
		case errors.As(err, &provErr):
			a.log.Errorf("Search provider error: %v", err)
			metrics.SearchCalls.WithLabelValues("provider_error").Inc()
			return fmt.Sprintf("Search provider error: %v", provErr)
		default:
			a.log.Errorf("Search failed: %v", err)
			metrics.SearchCalls.WithLabelValues("error").Inc()
			return fmt.Sprintf("Search error: %v", err)
		}
	}

	if len(results) == 0 {
		metrics.SearchCalls.WithLabelValues("empty").Inc()
		return NoResultsMessage
	}

	metrics.SearchCalls.WithLabelValues("success").Inc()
	return formatResults(results)
}

// Tool exposes the adapter as a model-callable tool.
func (a *SearchAdapter) Tool() tools.Tool {
	return tools.New(tools.Definition{
		Name:        WebsearchToolName,
		Description: "Search the web to get updated information.",
		Parameters: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"keywords": map[string]interface{}{
					"type":        "string",
					"description": "The search query",
				},
				"region": map[string]interface{}{
					"type":        "string",
					"description": "Region code like 'wt-wt', 'us-en', 'uk-en'",
				},
				"max_results": map[string]interface{}{
					"type":        "integer",
					"description": "Maximum number of results to return",
				},
			},
			"required": []string{"keywords"},
		},
	}, func(ctx context.Context, args map[string]interface{}) (string, error) {
		keywords := tools.StringArg(args, "keywords", "")
		region := tools.StringArg(args, "region", "")
		maxResults := tools.IntArg(args, "max_results", 0)
		return a.Websearch(ctx, keywords, region, maxResults), nil
	})
}

func formatResults(results []search.Result) string {
	var sb strings.Builder
	for i, r := range results {
		fmt.Fprintf(&sb, "%d. %s\n   %s\n", i+1, r.Title, r.URL)
		if r.Snippet != "" {
			fmt.Fprintf(&sb, "   %s\n", r.Snippet)
		}
	}
	return strings.TrimRight(sb.String(), "\n")
}
