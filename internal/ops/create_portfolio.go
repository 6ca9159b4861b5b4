package ops

import (
	"context"
	"fmt"

	"github.com/tmc/langchaingo/llms"
)

// CreatePortfolioOp proposes a portfolio from the collected criteria,
// screener output and market assessment.
type CreatePortfolioOp struct {
	Model        llms.Model
	Source       ResultSource
	SystemPrompt string
}

func NewCreatePortfolioOp(model llms.Model) *CreatePortfolioOp {
	return &CreatePortfolioOp{
		Model:        model,
		SystemPrompt: "You are a portfolio constructor. Build a concrete allocation from the inputs given: named assets, weights summing to 100%, a sentence of rationale each.",
	}
}

func (o *CreatePortfolioOp) Name() string {
	return "create_portfolio"
}

func (o *CreatePortfolioOp) Description() string {
	return "Construct a portfolio proposal from the user's criteria, screened assets and market conditions."
}

func (o *CreatePortfolioOp) AcceptedArgs() []string {
	return []string{"user_id", "filters"}
}

func (o *CreatePortfolioOp) RequiredFields() map[string]string {
	return map[string]string{}
}

func (o *CreatePortfolioOp) Dependencies() []string {
	return []string{"get_investment_criteria", "screen_assets", "market_assess"}
}

func (o *CreatePortfolioOp) Execute(ctx context.Context, args map[string]any) (any, error) {
	userID, _ := args["user_id"].(string)

	criteria, ok := collectedValue(o.Source, userID, "get_investment_criteria")
	if !ok {
		return nil, fmt.Errorf("investment criteria are not available")
	}

	screened, ok := collectedValue(o.Source, userID, "screen_assets")
	if !ok {
		screened = "No screener output available; choose broadly diversified candidates."
	}

	marketView, ok := collectedValue(o.Source, userID, "market_assess")
	if !ok {
		marketView = "No market assessment available."
	}

	prompt := fmt.Sprintf(
		"Investor criteria:\n%s\n\nScreened candidates:\n%s\n\nMarket assessment:\n%s\n\nPropose a portfolio: 5-10 positions with weights, matched to the criteria and the regime.",
		asText(criteria), asText(screened), asText(marketView),
	)
	return generate(ctx, o.Model, o.SystemPrompt, prompt)
}
