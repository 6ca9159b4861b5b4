package ops

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// ScreenAssetsOp runs the market screener with user-supplied filters.
type ScreenAssetsOp struct {
	Client *MarketClient
}

func NewScreenAssetsOp(client *MarketClient) *ScreenAssetsOp {
	return &ScreenAssetsOp{Client: client}
}

func (o *ScreenAssetsOp) Name() string {
	return "screen_assets"
}

func (o *ScreenAssetsOp) Description() string {
	return "Screen the market for assets matching filters (sector, market cap, dividend yield, ...)."
}

func (o *ScreenAssetsOp) AcceptedArgs() []string {
	return []string{"filters"}
}

func (o *ScreenAssetsOp) RequiredFields() map[string]string {
	return map[string]string{
		"filters": "What screening filters should I apply? (e.g. sector, minimum market cap, dividend yield)",
	}
}

func (o *ScreenAssetsOp) Dependencies() []string {
	return nil
}

func (o *ScreenAssetsOp) Execute(ctx context.Context, args map[string]any) (any, error) {
	filters, err := ParseFilters(args["filters"])
	if err != nil {
		return nil, err
	}
	return o.Client.Screen(ctx, filters)
}

// ParseFilters accepts filters as a structured map, a JSON string, or a
// plain description the extractor produced from chat.
func ParseFilters(v any) (map[string]any, error) {
	switch t := v.(type) {
	case map[string]any:
		return t, nil
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return nil, fmt.Errorf("missing argument: filters")
		}
		if strings.HasPrefix(s, "{") {
			var m map[string]any
			if err := json.Unmarshal([]byte(s), &m); err != nil {
				return nil, fmt.Errorf("invalid filters JSON: %v", err)
			}
			return m, nil
		}
		return map[string]any{"description": s}, nil
	case nil:
		return nil, fmt.Errorf("missing argument: filters")
	default:
		return nil, fmt.Errorf("filters must be an object or string")
	}
}
