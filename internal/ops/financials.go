package ops

import (
	"context"
)

// FinancialsOp fetches fundamentals for one asset.
type FinancialsOp struct {
	Client *MarketClient
}

func NewFinancialsOp(client *MarketClient) *FinancialsOp {
	return &FinancialsOp{Client: client}
}

func (o *FinancialsOp) Name() string {
	return "get_financials"
}

func (o *FinancialsOp) Description() string {
	return "Fetch fundamentals for a ticker symbol: revenue, margins, key ratios."
}

func (o *FinancialsOp) AcceptedArgs() []string {
	return []string{"symbol"}
}

func (o *FinancialsOp) RequiredFields() map[string]string {
	return map[string]string{
		"symbol": "Which asset (ticker) do you want financials for?",
	}
}

func (o *FinancialsOp) Dependencies() []string {
	return nil
}

func (o *FinancialsOp) Execute(ctx context.Context, args map[string]any) (any, error) {
	symbol, err := stringArg(args, "symbol")
	if err != nil {
		return nil, err
	}
	return o.Client.Financials(ctx, symbol)
}
