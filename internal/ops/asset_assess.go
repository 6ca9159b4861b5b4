package ops

import (
	"context"
	"fmt"

	"github.com/priya/fincoach/internal/store"
	"github.com/tmc/langchaingo/llms"
)

// AssetAssessOp evaluates one asset against current market conditions.
// It reads its prerequisites' outputs from the current stack run and
// falls back to long-term memory when a prerequisite failed.
type AssetAssessOp struct {
	Model        llms.Model
	Profiles     *store.ProfileStore
	Source       ResultSource
	SystemPrompt string
}

func NewAssetAssessOp(model llms.Model, profiles *store.ProfileStore) *AssetAssessOp {
	return &AssetAssessOp{
		Model:        model,
		Profiles:     profiles,
		SystemPrompt: "You are an equity analyst. Evaluate the asset from the data given: valuation, momentum, fit with the market regime. Be direct.",
	}
}

func (o *AssetAssessOp) Name() string {
	return "asset_assess"
}

func (o *AssetAssessOp) Description() string {
	return "Evaluate an asset against its fundamentals and the current market regime."
}

func (o *AssetAssessOp) AcceptedArgs() []string {
	return []string{"symbol", "user_id"}
}

func (o *AssetAssessOp) RequiredFields() map[string]string {
	return map[string]string{
		"symbol": "Which asset (ticker) would you like to assess?",
	}
}

func (o *AssetAssessOp) Dependencies() []string {
	return []string{"get_asset_info", "market_assess"}
}

func (o *AssetAssessOp) Execute(ctx context.Context, args map[string]any) (any, error) {
	symbol, err := stringArg(args, "symbol")
	if err != nil {
		return nil, err
	}
	userID, _ := args["user_id"].(string)

	assetInfo, ok := collectedValue(o.Source, userID, "get_asset_info")
	if !ok && o.Profiles != nil {
		// Prerequisite failed this run; try the last stored result.
		if stored, err := o.Profiles.LatestResult(userID, "get_asset_info"); err == nil {
			assetInfo = stored
			ok = true
		}
	}
	if !ok {
		assetInfo = fmt.Sprintf("Asset info for %s is not available from prerequisite steps.", symbol)
	}

	marketView, ok := collectedValue(o.Source, userID, "market_assess")
	if !ok {
		marketView = "No market assessment available for this run."
	}

	prompt := fmt.Sprintf(
		"Asset: %s\n\nAsset data:\n%s\n\nMarket assessment:\n%s\n\nAssess this asset: valuation, quality, momentum, and how it fits the current market regime. End with a one-line verdict.",
		symbol, asText(assetInfo), asText(marketView),
	)
	return generate(ctx, o.Model, o.SystemPrompt, prompt)
}
