package ops

import (
	"context"
)

// EarningsOp fetches past and upcoming earnings for one asset.
type EarningsOp struct {
	Client *MarketClient
}

func NewEarningsOp(client *MarketClient) *EarningsOp {
	return &EarningsOp{Client: client}
}

func (o *EarningsOp) Name() string {
	return "get_earnings"
}

func (o *EarningsOp) Description() string {
	return "Fetch recent and upcoming earnings reports for a ticker symbol."
}

func (o *EarningsOp) AcceptedArgs() []string {
	return []string{"symbol"}
}

func (o *EarningsOp) RequiredFields() map[string]string {
	return map[string]string{
		"symbol": "Which asset (ticker) do you want earnings for?",
	}
}

func (o *EarningsOp) Dependencies() []string {
	return nil
}

func (o *EarningsOp) Execute(ctx context.Context, args map[string]any) (any, error) {
	symbol, err := stringArg(args, "symbol")
	if err != nil {
		return nil, err
	}
	return o.Client.Earnings(ctx, symbol)
}
