package ops

import (
	"context"
)

// AssetInfoOp fetches the current quote and profile for one asset.
type AssetInfoOp struct {
	Client *MarketClient
}

func NewAssetInfoOp(client *MarketClient) *AssetInfoOp {
	return &AssetInfoOp{Client: client}
}

func (o *AssetInfoOp) Name() string {
	return "get_asset_info"
}

func (o *AssetInfoOp) Description() string {
	return "Fetch the current price, volume and company profile for a ticker symbol."
}

func (o *AssetInfoOp) AcceptedArgs() []string {
	return []string{"symbol"}
}

func (o *AssetInfoOp) RequiredFields() map[string]string {
	return map[string]string{
		"symbol": "Which asset (ticker) would you like to look up?",
	}
}

func (o *AssetInfoOp) Dependencies() []string {
	return nil
}

func (o *AssetInfoOp) Execute(ctx context.Context, args map[string]any) (any, error) {
	symbol, err := stringArg(args, "symbol")
	if err != nil {
		return nil, err
	}
	return o.Client.Quote(ctx, symbol)
}
