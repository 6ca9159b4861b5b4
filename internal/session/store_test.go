package session

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestMemStoreGetUnknownSession(t *testing.T) {
	store := NewMemStore()
	st, err := store.Get("nobody")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if len(st.Stack) != 0 || st.Pending != nil {
		t.Errorf("Expected zero state for unknown session, got %+v", st)
	}
}

func TestMemStoreMergeIsShallow(t *testing.T) {
	store := NewMemStore()
	goal := "eval NVDA"
	err := store.Merge("u1", Patch{
		Stack:   []Step{{Name: "get_asset_info", Status: StatusPending}},
		Results: []StepResult{},
		Goal:    &goal,
	})
	if err != nil {
		t.Fatalf("Merge failed: %v", err)
	}

	// A patch touching only Pending must leave the rest intact.
	err = store.Merge("u1", Patch{Pending: &PendingInput{StepIndex: 0, Missing: []string{"symbol"}}})
	if err != nil {
		t.Fatalf("Merge failed: %v", err)
	}

	st, _ := store.Get("u1")
	if len(st.Stack) != 1 || st.Stack[0].Name != "get_asset_info" {
		t.Errorf("Stack should be untouched, got %+v", st.Stack)
	}
	if st.Goal != "eval NVDA" {
		t.Errorf("Goal should be untouched, got %q", st.Goal)
	}
	if st.Pending == nil || st.Pending.Missing[0] != "symbol" {
		t.Errorf("Pending should be set, got %+v", st.Pending)
	}
	if st.CreatedAt.IsZero() || st.UpdatedAt.IsZero() {
		t.Error("Timestamps should be populated on merge")
	}
}

func TestMemStoreClearPending(t *testing.T) {
	store := NewMemStore()
	if err := store.Merge("u1", Patch{Pending: &PendingInput{StepIndex: 0}}); err != nil {
		t.Fatal(err)
	}

	// A zero patch changes nothing.
	if err := store.Merge("u1", Patch{}); err != nil {
		t.Fatal(err)
	}
	st, _ := store.Get("u1")
	if st.Pending == nil {
		t.Fatal("Zero patch must not clear pending")
	}

	if err := store.Merge("u1", Patch{ClearPending: true}); err != nil {
		t.Fatal(err)
	}
	st, _ = store.Get("u1")
	if st.Pending != nil {
		t.Errorf("Expected pending cleared, got %+v", st.Pending)
	}
}

func TestMemStorePurgeExpired(t *testing.T) {
	store := NewMemStore()
	if err := store.Merge("old", Patch{}); err != nil {
		t.Fatal(err)
	}
	st := store.sessions["old"]
	st.UpdatedAt = time.Now().Add(-48 * time.Hour)
	store.sessions["old"] = st
	if err := store.Merge("fresh", Patch{}); err != nil {
		t.Fatal(err)
	}

	n, err := store.PurgeExpired(24 * time.Hour)
	if err != nil {
		t.Fatalf("PurgeExpired failed: %v", err)
	}
	if n != 1 {
		t.Errorf("Expected 1 session purged, got %d", n)
	}
	if _, ok := store.sessions["fresh"]; !ok {
		t.Error("Fresh session should survive the purge")
	}
}

func TestSQLiteStoreRoundTrip(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "sessions.db")
	store, err := NewSQLiteStore(dbPath)
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	defer store.Close()

	goal := "build me a portfolio"
	err = store.Merge("tg:42", Patch{
		Stack: []Step{
			{Name: "get_investment_criteria", Kind: KindPrerequisite, Status: StatusWaitingInput,
				Args: map[string]any{"goal": "income"}, MissingFields: []string{"duration", "risk_level"}},
			{Name: "create_portfolio", Kind: KindMain, Status: StatusPending},
		},
		Results: []StepResult{{Name: "market_assess", Value: "neutral", Prerequisite: true}},
		Pending: &PendingInput{StepIndex: 0, Missing: []string{"duration", "risk_level"}},
		Goal:    &goal,
	})
	if err != nil {
		t.Fatalf("Merge failed: %v", err)
	}

	st, err := store.Get("tg:42")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if len(st.Stack) != 2 || st.Stack[0].Name != "get_investment_criteria" {
		t.Fatalf("Stack did not survive round trip: %+v", st.Stack)
	}
	if st.Stack[0].Status != StatusWaitingInput || st.Stack[0].Args["goal"] != "income" {
		t.Errorf("Step detail lost: %+v", st.Stack[0])
	}
	if st.Pending == nil || st.Pending.StepIndex != 0 || len(st.Pending.Missing) != 2 {
		t.Errorf("Pending lost: %+v", st.Pending)
	}
	if st.Goal != goal {
		t.Errorf("Goal lost: %q", st.Goal)
	}
	if len(st.Results) != 1 || st.Results[0].Name != "market_assess" {
		t.Errorf("Results lost: %+v", st.Results)
	}
}

func TestSQLiteStoreMergePreservesUntouchedFields(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "sessions.db")
	store, err := NewSQLiteStore(dbPath)
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	defer store.Close()

	goal := "eval NVDA"
	if err := store.Merge("u1", Patch{Stack: []Step{{Name: "solo"}}, Goal: &goal}); err != nil {
		t.Fatal(err)
	}
	if err := store.Merge("u1", Patch{Results: []StepResult{{Name: "solo", Value: "ok"}}}); err != nil {
		t.Fatal(err)
	}

	st, _ := store.Get("u1")
	if len(st.Stack) != 1 || st.Goal != goal {
		t.Errorf("Untouched fields must survive later merges: %+v", st)
	}
	if len(st.Results) != 1 {
		t.Errorf("Patched field missing: %+v", st.Results)
	}
}

func TestSQLiteStoreSurvivesReopen(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "sessions.db")
	store, err := NewSQLiteStore(dbPath)
	if err != nil {
		t.Fatal(err)
	}
	if err := store.Merge("u1", Patch{Stack: []Step{{Name: "get_asset_info", Status: StatusDone}}}); err != nil {
		t.Fatal(err)
	}
	store.Close()

	if _, err := os.Stat(dbPath); err != nil {
		t.Fatalf("Database file missing: %v", err)
	}
	reopened, err := NewSQLiteStore(dbPath)
	if err != nil {
		t.Fatal(err)
	}
	defer reopened.Close()

	st, err := reopened.Get("u1")
	if err != nil {
		t.Fatal(err)
	}
	if len(st.Stack) != 1 || st.Stack[0].Status != StatusDone {
		t.Errorf("State did not survive reopen: %+v", st)
	}
}
