package engine

import (
	"context"

	"github.com/priya/fincoach/internal/session"
)

// IsAwaitingInput reports whether the session has a step blocked on
// user-supplied values. An expired stack no longer awaits anything.
func (e *Engine) IsAwaitingInput(sessionID string) bool {
	st, err := e.Store.Get(sessionID)
	if err != nil {
		return false
	}
	return st.Pending != nil && !e.stale(st)
}

// PendingFields returns the still-missing fields of the blocked step and
// their user prompts, for the chat layer to ask with. Empty when nothing
// is pending.
func (e *Engine) PendingFields(sessionID string) ([]string, map[string]string) {
	st, err := e.Store.Get(sessionID)
	if err != nil || st.Pending == nil {
		return nil, nil
	}
	return append([]string(nil), st.Pending.Missing...), st.Pending.FieldMeta
}

// ReceiveAnswer feeds a free-text answer to the field extractor and
// merges whatever it recovered into the blocked step's args. Each call
// only ever narrows the missing set; fields filled by an earlier call
// are never touched again. Returns true once every missing field is
// filled, at which point the step is set back to pending and the next
// Run call picks it up — resumption is explicit, not automatic. With no
// pending request, or when the stack has expired, this is a no-op
// returning false: merging an answer into an expired stack would
// refresh its timestamp and revive a stack Run already considers dead.
func (e *Engine) ReceiveAnswer(ctx context.Context, sessionID string, text string) (bool, error) {
	mu := e.sessionLock(sessionID)
	mu.Lock()
	defer mu.Unlock()

	st, err := e.Store.Get(sessionID)
	if err != nil {
		return false, err
	}
	if st.Pending == nil || e.stale(st) || st.Pending.StepIndex >= len(st.Stack) {
		return false, nil
	}

	step := &st.Stack[st.Pending.StepIndex]

	// Only ask the extractor about fields still missing.
	want := make(map[string]string, len(st.Pending.Missing))
	for _, f := range st.Pending.Missing {
		want[f] = st.Pending.FieldMeta[f]
	}

	extracted, err := e.Extractor.Extract(ctx, text, want)
	if err != nil {
		return false, err
	}

	var remaining []string
	for _, f := range st.Pending.Missing {
		if v, ok := extracted[f]; ok && v != nil {
			if step.Args == nil {
				step.Args = make(map[string]any)
			}
			step.Args[f] = v
			continue
		}
		remaining = append(remaining, f)
	}
	st.Pending.Missing = remaining
	step.MissingFields = remaining

	if len(remaining) == 0 {
		step.Status = session.StatusPending
		step.MissingFields = nil
		if err := e.Store.Merge(sessionID, session.Patch{Stack: st.Stack, ClearPending: true}); err != nil {
			return false, err
		}
		if e.Logger != nil {
			e.Logger.LogInput(sessionID, step.Name, nil)
		}
		return true, nil
	}

	if err := e.Store.Merge(sessionID, session.Patch{Stack: st.Stack, Pending: st.Pending}); err != nil {
		return false, err
	}
	return false, nil
}
