package ops

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

type stubOp struct {
	name string
}

func (s *stubOp) Name() string                     { return s.name }
func (s *stubOp) Description() string              { return "stub" }
func (s *stubOp) AcceptedArgs() []string           { return nil }
func (s *stubOp) RequiredFields() map[string]string { return map[string]string{} }
func (s *stubOp) Dependencies() []string           { return nil }
func (s *stubOp) Execute(ctx context.Context, args map[string]any) (any, error) {
	return nil, nil
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	r.Register(&stubOp{name: "get_asset_info"})

	if op := r.Get("get_asset_info"); op == nil || op.Name() != "get_asset_info" {
		t.Error("Expected registered operation back")
	}
	if op := r.Get("missing"); op != nil {
		t.Error("Expected nil for unregistered operation")
	}
}

func TestParseFilters(t *testing.T) {
	m, err := ParseFilters(map[string]any{"sector": "tech"})
	if err != nil || m["sector"] != "tech" {
		t.Errorf("Map filters should pass through, got %v %v", m, err)
	}

	m, err = ParseFilters(`{"sector": "energy", "min_dividend_yield": 0.03}`)
	if err != nil || m["sector"] != "energy" {
		t.Errorf("JSON string filters should parse, got %v %v", m, err)
	}

	m, err = ParseFilters("large cap dividend payers")
	if err != nil || m["description"] != "large cap dividend payers" {
		t.Errorf("Plain text should become a description filter, got %v %v", m, err)
	}

	if _, err = ParseFilters(nil); err == nil {
		t.Error("Nil filters must error")
	}
	if _, err = ParseFilters("  "); err == nil {
		t.Error("Blank filters must error")
	}
	if _, err = ParseFilters(`{broken`); err == nil {
		t.Error("Malformed JSON must error")
	}
	if _, err = ParseFilters(42); err == nil {
		t.Error("Numeric filters must error")
	}
}

func TestIntArg(t *testing.T) {
	cases := []struct {
		in   any
		want int
		ok   bool
	}{
		{10, 10, true},
		{float64(7), 7, true},
		{"12", 12, true},
		{"10 years", 10, true},
		{"a decade", 0, false},
		{true, 0, false},
	}
	for _, c := range cases {
		got, err := intArg(map[string]any{"duration": c.in}, "duration")
		if c.ok && (err != nil || got != c.want) {
			t.Errorf("intArg(%v): expected %d, got %d (%v)", c.in, c.want, got, err)
		}
		if !c.ok && err == nil {
			t.Errorf("intArg(%v): expected error", c.in)
		}
	}

	if _, err := intArg(map[string]any{}, "duration"); err == nil {
		t.Error("Missing argument must error")
	}
}

func TestStringArg(t *testing.T) {
	s, err := stringArg(map[string]any{"symbol": "NVDA"}, "symbol")
	if err != nil || s != "NVDA" {
		t.Errorf("Expected NVDA, got %q (%v)", s, err)
	}
	if _, err := stringArg(map[string]any{}, "symbol"); err == nil {
		t.Error("Missing argument must error")
	}
	if _, err := stringArg(map[string]any{"symbol": 1}, "symbol"); err == nil {
		t.Error("Non-string argument must error")
	}
}

func TestBuildMacroQuery(t *testing.T) {
	q := buildMacroQuery("", "Monday, January 5, 2026")
	for _, indicator := range defaultIndicators {
		if !strings.Contains(q, indicator) {
			t.Errorf("Default query missing indicator %q", indicator)
		}
	}
	if !strings.Contains(q, "January 5, 2026") {
		t.Error("Default query should carry the date")
	}

	q = buildMacroQuery("impact of tariffs on semiconductors", "Monday, January 5, 2026")
	if !strings.Contains(q, "impact of tariffs on semiconductors") {
		t.Error("Focused query should include the user query")
	}
	if !strings.Contains(q, "Inflation rate (CPI)") {
		t.Error("Focused query should still include the default indicators")
	}
}

func TestValueHoldingsSkipsMalformedRows(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"price": 100.0}`))
	}))
	defer server.Close()

	op := NewUserPortfolioOp(nil, NewMarketClient(server.URL, ""))
	holdings := []map[string]any{
		{"symbol": "NVDA", "quantity": 2.0, "avg_price": 50.0},
		{"symbol": "AAPL", "quantity": "not a number", "avg_price": 10.0},
		{"quantity": 1.0, "avg_price": 5.0},
	}

	total := op.valueHoldings(context.Background(), holdings)

	if total != 100.0 {
		t.Errorf("Expected only the valid row counted (total 100), got %v", total)
	}
	if holdings[0]["cost_basis"] != 100.0 || holdings[0]["market_value"] != 200.0 {
		t.Errorf("Valid row not valued: %+v", holdings[0])
	}
	for _, h := range holdings[1:] {
		if _, ok := h["cost_basis"]; ok {
			t.Errorf("Malformed row must be skipped, got %+v", h)
		}
		if h["error"] != "malformed holding record" {
			t.Errorf("Malformed row should be marked, got %+v", h)
		}
	}
}
