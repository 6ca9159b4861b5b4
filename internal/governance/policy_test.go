package governance

import (
	"context"
	"testing"
)

func TestDefaultPolicyEngine_Evaluate(t *testing.T) {
	engine := NewDefaultPolicyEngine()
	ctx := context.Background()

	// Test Allow (Default)
	req1 := Request{Operation: "get_asset_info"}
	res1, err := engine.Evaluate(ctx, req1)
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	if res1.Effect != EffectAllow {
		t.Errorf("Expected EffectAllow, got %s", res1.Effect)
	}

	// Test Deny
	engine.DenyOperation("execute_trade")
	req2 := Request{Operation: "execute_trade"}
	res2, err := engine.Evaluate(ctx, req2)
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	if res2.Effect != EffectDeny {
		t.Errorf("Expected EffectDeny, got %s", res2.Effect)
	}

	// Test argument pattern deny
	if err := engine.DenyArguments(`"leverage":\s*[2-9][0-9]`); err != nil {
		t.Fatalf("DenyArguments failed: %v", err)
	}
	req3 := Request{Operation: "simulate_portfolio", Arguments: `{"leverage": 50}`}
	res3, err := engine.Evaluate(ctx, req3)
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	if res3.Effect != EffectDeny {
		t.Errorf("Expected EffectDeny for restricted arguments, got %s", res3.Effect)
	}
}
