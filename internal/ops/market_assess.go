package ops

import (
	"context"
	"fmt"

	"github.com/tmc/langchaingo/llms"
)

// MarketAssessOp produces an LLM assessment of current market
// conditions from the live snapshot. It is the most common prerequisite
// in the dependency table.
type MarketAssessOp struct {
	Client       *MarketClient
	Model        llms.Model
	SystemPrompt string
}

func NewMarketAssessOp(client *MarketClient, model llms.Model) *MarketAssessOp {
	return &MarketAssessOp{
		Client:       client,
		Model:        model,
		SystemPrompt: "You are a market analyst. Assess conditions factually from the data given; no investment advice disclaimers, no hedging boilerplate.",
	}
}

func (o *MarketAssessOp) Name() string {
	return "market_assess"
}

func (o *MarketAssessOp) Description() string {
	return "Assess current market conditions from the live index, rate and volatility snapshot."
}

func (o *MarketAssessOp) AcceptedArgs() []string {
	return nil
}

func (o *MarketAssessOp) RequiredFields() map[string]string {
	return map[string]string{}
}

func (o *MarketAssessOp) Dependencies() []string {
	return nil
}

func (o *MarketAssessOp) Execute(ctx context.Context, args map[string]any) (any, error) {
	snapshot, err := o.Client.Snapshot(ctx)
	if err != nil {
		return nil, err
	}

	prompt := fmt.Sprintf(
		"Current market snapshot:\n%s\n\nGive a short assessment of the market regime: direction, breadth, rates backdrop, volatility, and what it means for risk appetite.",
		asText(snapshot),
	)
	return generate(ctx, o.Model, o.SystemPrompt, prompt)
}
