package ops

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/tools/duckduckgo"
)

// defaultIndicators is always searched for, with or without a user query.
var defaultIndicators = []string{
	"GDP growth rate",
	"Federal Reserve interest rates",
	"Inflation rate (CPI)",
	"Unemployment rate",
	"Housing prices and trends",
	"Industrial production index",
	"Consumer confidence index",
}

// MacrosOp researches current macroeconomic conditions. It needs no
// input: without a query it asks the model for a relevant one, then
// searches and summarizes the standard indicator set.
type MacrosOp struct {
	client       *duckduckgo.Tool
	model        llms.Model
	systemPrompt string
}

func NewMacrosOp(model llms.Model) (*MacrosOp, error) {
	ddg, err := duckduckgo.New(10, duckduckgo.DefaultUserAgent)
	if err != nil {
		return nil, err
	}
	return &MacrosOp{
		client:       ddg,
		model:        model,
		systemPrompt: "You are a macroeconomic data research specialist. Report current values, recent trends and central bank policy updates factually, with the most important data points first.",
	}, nil
}

func (o *MacrosOp) Name() string {
	return "get_macros"
}

func (o *MacrosOp) Description() string {
	return "Research current macroeconomic indicators (GDP, rates, inflation, unemployment) and summarize what they suggest about the economy."
}

func (o *MacrosOp) AcceptedArgs() []string {
	return []string{"query"}
}

func (o *MacrosOp) RequiredFields() map[string]string {
	return map[string]string{}
}

func (o *MacrosOp) Dependencies() []string {
	return nil
}

func (o *MacrosOp) Execute(ctx context.Context, args map[string]any) (any, error) {
	query, _ := args["query"].(string)
	query = strings.TrimSpace(query)
	now := time.Now().Format("Monday, January 2, 2006")

	if query == "" {
		generated, err := generate(ctx, o.model, o.systemPrompt, fmt.Sprintf(
			"Today is %s. Generate one specific web search query that would surface the most useful current information for macroeconomic and market analysis. Reply with only the query itself.",
			now,
		))
		if err == nil {
			query = strings.TrimSpace(generated)
		}
	}

	results, err := o.client.Call(ctx, buildMacroQuery(query, now))
	if err != nil {
		return nil, fmt.Errorf("macro search failed: %w", err)
	}

	prompt := fmt.Sprintf(
		"Today is %s. Search results on current US macroeconomic conditions:\n\n%s\n\nSummarize: current values for each indicator, recent trends, Federal Reserve policy updates, and a brief read on what the data suggests about the economy.",
		now, results,
	)
	return generate(ctx, o.model, o.systemPrompt, prompt)
}

// buildMacroQuery combines an optional focus query with the standard
// indicator list.
func buildMacroQuery(query string, date string) string {
	indicators := strings.Join(defaultIndicators, ", ")
	if query != "" {
		return fmt.Sprintf("Latest US macroeconomic data as of %s: %s. Also include current data for: %s", date, query, indicators)
	}
	return fmt.Sprintf("Latest US macroeconomic data and current values as of %s for: %s", date, indicators)
}
