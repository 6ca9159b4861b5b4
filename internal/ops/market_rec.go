package ops

import (
	"context"
	"fmt"

	"github.com/priya/fincoach/internal/store"
	"github.com/tmc/langchaingo/llms"
)

// MarketRecOp turns the market assessment into positioning
// recommendations, tilted by the user's stored risk profile when one
// exists.
type MarketRecOp struct {
	Model        llms.Model
	Profiles     *store.ProfileStore
	Source       ResultSource
	SystemPrompt string
}

func NewMarketRecOp(model llms.Model, profiles *store.ProfileStore) *MarketRecOp {
	return &MarketRecOp{
		Model:        model,
		Profiles:     profiles,
		SystemPrompt: "You are a portfolio strategist. Give concrete positioning recommendations from the assessment given.",
	}
}

func (o *MarketRecOp) Name() string {
	return "market_rec"
}

func (o *MarketRecOp) Description() string {
	return "Recommend market positioning based on the current market assessment."
}

func (o *MarketRecOp) AcceptedArgs() []string {
	return []string{"user_id"}
}

func (o *MarketRecOp) RequiredFields() map[string]string {
	return map[string]string{}
}

func (o *MarketRecOp) Dependencies() []string {
	return []string{"market_assess"}
}

func (o *MarketRecOp) Execute(ctx context.Context, args map[string]any) (any, error) {
	userID, _ := args["user_id"].(string)

	marketView, ok := collectedValue(o.Source, userID, "market_assess")
	if !ok {
		return nil, fmt.Errorf("market_assess result is not available")
	}

	profileText := "No stored risk profile; assume a balanced investor."
	if o.Profiles != nil && userID != "" {
		if profile, ok, err := o.Profiles.GetProfile(userID); err == nil && ok {
			profileText = asText(profile)
		}
	}

	prompt := fmt.Sprintf(
		"Market assessment:\n%s\n\nInvestor profile:\n%s\n\nRecommend positioning: asset-class weights, sectors to favor or avoid, and one risk to watch.",
		asText(marketView), profileText,
	)
	return generate(ctx, o.Model, o.SystemPrompt, prompt)
}
