package ops

import (
	"context"

	"github.com/priya/fincoach/internal/store"
)

// UserPortfolioOp returns the user's holdings with live market values.
type UserPortfolioOp struct {
	Profiles *store.ProfileStore
	Client   *MarketClient
}

func NewUserPortfolioOp(profiles *store.ProfileStore, client *MarketClient) *UserPortfolioOp {
	return &UserPortfolioOp{Profiles: profiles, Client: client}
}

func (o *UserPortfolioOp) Name() string {
	return "get_user_portfolio"
}

func (o *UserPortfolioOp) Description() string {
	return "Fetch the user's current holdings with cost basis and live market values."
}

func (o *UserPortfolioOp) AcceptedArgs() []string {
	return []string{"user_id"}
}

func (o *UserPortfolioOp) RequiredFields() map[string]string {
	return map[string]string{}
}

func (o *UserPortfolioOp) Dependencies() []string {
	return nil
}

func (o *UserPortfolioOp) Execute(ctx context.Context, args map[string]any) (any, error) {
	userID, err := stringArg(args, "user_id")
	if err != nil {
		return nil, err
	}

	holdings, err := o.Profiles.GetHoldings(userID)
	if err != nil {
		return nil, err
	}
	if len(holdings) == 0 {
		return map[string]any{
			"holdings": []map[string]any{},
			"note":     "No holdings on record.",
		}, nil
	}

	return map[string]any{
		"holdings":   holdings,
		"total_cost": o.valueHoldings(ctx, holdings),
	}, nil
}

// valueHoldings annotates each holding with its cost basis and live
// market value, returning the total cost. Rows missing the expected
// fields are marked and skipped rather than trusted.
func (o *UserPortfolioOp) valueHoldings(ctx context.Context, holdings []map[string]any) float64 {
	totalCost := 0.0
	for _, h := range holdings {
		symbol, sok := h["symbol"].(string)
		quantity, qok := h["quantity"].(float64)
		avgPrice, pok := h["avg_price"].(float64)
		if !sok || !qok || !pok {
			h["error"] = "malformed holding record"
			continue
		}

		cost := quantity * avgPrice
		totalCost += cost
		h["cost_basis"] = cost

		quote, err := o.Client.Quote(ctx, symbol)
		if err != nil {
			// A single dead quote should not sink the whole portfolio view.
			h["quote_error"] = err.Error()
			continue
		}
		if price, ok := quote["price"].(float64); ok {
			h["market_value"] = quantity * price
		}
	}
	return totalCost
}
