package ops

import (
	"context"
	"fmt"

	"github.com/priya/fincoach/internal/store"
)

// UserInfoOp returns the user's stored investment profile and holdings.
// No required fields: the engine fills user_id from the session.
type UserInfoOp struct {
	Profiles *store.ProfileStore
}

func NewUserInfoOp(profiles *store.ProfileStore) *UserInfoOp {
	return &UserInfoOp{Profiles: profiles}
}

func (o *UserInfoOp) Name() string {
	return "get_user_info"
}

func (o *UserInfoOp) Description() string {
	return "Look up the user's stored investment profile: goal, horizon, risk level and holdings."
}

func (o *UserInfoOp) AcceptedArgs() []string {
	return []string{"user_id"}
}

func (o *UserInfoOp) RequiredFields() map[string]string {
	return map[string]string{}
}

func (o *UserInfoOp) Dependencies() []string {
	return nil
}

func (o *UserInfoOp) Execute(ctx context.Context, args map[string]any) (any, error) {
	userID, err := stringArg(args, "user_id")
	if err != nil {
		return nil, err
	}

	profile, ok, err := o.Profiles.GetProfile(userID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return map[string]any{
			"profile": nil,
			"note":    "No investment profile on record yet.",
		}, nil
	}

	holdings, err := o.Profiles.GetHoldings(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load holdings: %v", err)
	}

	return map[string]any{
		"profile":  profile,
		"holdings": holdings,
	}, nil
}
