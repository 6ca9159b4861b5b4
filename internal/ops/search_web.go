package ops

import (
	"context"
	"fmt"

	"github.com/tmc/langchaingo/tools/duckduckgo"
)

// SearchWebOp searches the web for real-time financial information.
// With an optional url argument it fetches and extracts that page
// instead.
type SearchWebOp struct {
	client  *duckduckgo.Tool
	fetcher *PageFetcher
}

func NewSearchWebOp() (*SearchWebOp, error) {
	ddg, err := duckduckgo.New(10, duckduckgo.DefaultUserAgent)
	if err != nil {
		return nil, err
	}
	return &SearchWebOp{
		client:  ddg,
		fetcher: NewPageFetcher(),
	}, nil
}

func (o *SearchWebOp) Name() string {
	return "search_web"
}

func (o *SearchWebOp) Description() string {
	return "Search the web for real-time information, or extract the content of a specific URL."
}

func (o *SearchWebOp) AcceptedArgs() []string {
	return []string{"query", "url"}
}

func (o *SearchWebOp) RequiredFields() map[string]string {
	return map[string]string{
		"query": "What would you like me to search for?",
	}
}

func (o *SearchWebOp) Dependencies() []string {
	return nil
}

func (o *SearchWebOp) Execute(ctx context.Context, args map[string]any) (any, error) {
	if rawURL, ok := args["url"].(string); ok && rawURL != "" {
		return o.fetcher.Fetch(ctx, rawURL)
	}

	query, err := stringArg(args, "query")
	if err != nil {
		return nil, err
	}

	res, err := o.client.Call(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}
	return res, nil
}
