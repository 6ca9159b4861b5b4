package ops

import (
	"context"
)

// MarketDataOp fetches the broad market snapshot: indices, rates,
// volatility.
type MarketDataOp struct {
	Client *MarketClient
}

func NewMarketDataOp(client *MarketClient) *MarketDataOp {
	return &MarketDataOp{Client: client}
}

func (o *MarketDataOp) Name() string {
	return "get_market_data"
}

func (o *MarketDataOp) Description() string {
	return "Fetch the current broad market snapshot: major indices, rates and volatility."
}

func (o *MarketDataOp) AcceptedArgs() []string {
	return nil
}

func (o *MarketDataOp) RequiredFields() map[string]string {
	return map[string]string{}
}

func (o *MarketDataOp) Dependencies() []string {
	return nil
}

func (o *MarketDataOp) Execute(ctx context.Context, args map[string]any) (any, error) {
	return o.Client.Snapshot(ctx)
}
