package ops

import (
	"context"
	"fmt"
	"strconv"

	"github.com/priya/fincoach/internal/store"
)

// InvestmentCriteriaOp collects the user's goal, horizon and risk level.
// Its three required fields make it the usual trigger for mid-stack
// input collection; once gathered they are persisted to the profile.
type InvestmentCriteriaOp struct {
	Profiles *store.ProfileStore
}

func NewInvestmentCriteriaOp(profiles *store.ProfileStore) *InvestmentCriteriaOp {
	return &InvestmentCriteriaOp{Profiles: profiles}
}

func (o *InvestmentCriteriaOp) Name() string {
	return "get_investment_criteria"
}

func (o *InvestmentCriteriaOp) Description() string {
	return "Establish the user's investment goal, horizon and risk tolerance."
}

func (o *InvestmentCriteriaOp) AcceptedArgs() []string {
	return []string{"user_id", "goal", "duration", "risk_level"}
}

func (o *InvestmentCriteriaOp) RequiredFields() map[string]string {
	return map[string]string{
		"goal":       "What is your investment goal? (e.g. retirement, income, growth)",
		"duration":   "How long do you plan to invest? (in years)",
		"risk_level": "What's your risk level? (low, medium, high)",
	}
}

func (o *InvestmentCriteriaOp) Dependencies() []string {
	return nil
}

func (o *InvestmentCriteriaOp) Execute(ctx context.Context, args map[string]any) (any, error) {
	goal, err := stringArg(args, "goal")
	if err != nil {
		return nil, err
	}
	risk, err := stringArg(args, "risk_level")
	if err != nil {
		return nil, err
	}
	duration, err := intArg(args, "duration")
	if err != nil {
		return nil, err
	}

	if userID, ok := args["user_id"].(string); ok && userID != "" && o.Profiles != nil {
		if err := o.Profiles.SaveCriteria(userID, goal, duration, risk); err != nil {
			return nil, fmt.Errorf("failed to save criteria: %v", err)
		}
	}

	return map[string]any{
		"goal":       goal,
		"duration":   duration,
		"risk_level": risk,
		"summary":    fmt.Sprintf("Strategy for a %s-risk investor over %d years, aiming for %s.", risk, duration, goal),
	}, nil
}

// intArg coerces an argument that may arrive as a number or as extracted
// text ("10", "10 years").
func intArg(args map[string]any, key string) (int, error) {
	v, ok := args[key]
	if !ok {
		return 0, fmt.Errorf("missing argument: %s", key)
	}
	switch t := v.(type) {
	case int:
		return t, nil
	case float64:
		return int(t), nil
	case string:
		n, err := strconv.Atoi(t)
		if err == nil {
			return n, nil
		}
		// Take leading digits of answers like "10 years".
		digits := ""
		for _, r := range t {
			if r < '0' || r > '9' {
				break
			}
			digits += string(r)
		}
		if digits != "" {
			return strconv.Atoi(digits)
		}
		return 0, fmt.Errorf("argument %s is not a number: %q", key, t)
	default:
		return 0, fmt.Errorf("argument %s is not a number", key)
	}
}
