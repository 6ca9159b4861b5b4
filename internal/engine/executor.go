package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"time"

	"github.com/priya/fincoach/internal/governance"
	"github.com/priya/fincoach/internal/session"
)

// StepError is a contained step failure, reported structurally rather
// than unwound past Run.
type StepError struct {
	Step  string `json:"step"`
	Error string `json:"error"`
}

// RunResult is what one Run call produced. NeedsInput means execution
// halted at BlockedStep waiting for the user to supply MissingFields;
// state is persisted and a later Run resumes from the same position.
// NothingToResume means the session had no runnable stack (none built,
// already completed, or expired).
type RunResult struct {
	Results         []session.StepResult `json:"results"`
	Errors          []StepError          `json:"errors"`
	MainResult      any                  `json:"main_result,omitempty"`
	NeedsInput      bool                 `json:"needs_input"`
	BlockedStep     int                  `json:"blocked_step"`
	MissingFields   []string             `json:"missing_fields,omitempty"`
	NothingToResume bool                 `json:"nothing_to_resume,omitempty"`
}

var stepRef = regexp.MustCompile(`\{\{step:([a-zA-Z0-9_\-]+)\.output\}\}`)

// Run walks the stack from the front, executing each pending step in
// order. Status and results are persisted before and after every single
// step, so an interruption between steps loses at most the step that was
// executing, never the whole stack. The first step found missing
// required fields halts the call; a failed step is recorded and does not
// block later steps.
func (e *Engine) Run(ctx context.Context, sessionID string) (RunResult, error) {
	mu := e.sessionLock(sessionID)
	mu.Lock()
	defer mu.Unlock()

	out := RunResult{BlockedStep: -1}

	st, err := e.Store.Get(sessionID)
	if err != nil {
		return out, err
	}

	if len(st.Stack) == 0 || e.stale(st) {
		out.NothingToResume = true
		return out, nil
	}

	// While an input request is pending the executor must not advance.
	if st.Pending != nil {
		out.NeedsInput = true
		out.BlockedStep = st.Pending.StepIndex
		out.MissingFields = append([]string(nil), st.Pending.Missing...)
		return out, nil
	}

	sawPending := false

	for i := range st.Stack {
		step := &st.Stack[i]
		if step.Status != session.StatusPending {
			continue
		}
		sawPending = true

		op := e.Registry.Get(step.Name)
		if op == nil {
			// Registry misconfiguration is caught at build time; if the
			// registry changed underneath a persisted stack, contain it.
			e.failStep(sessionID, &st, step, fmt.Sprintf("unknown operation: %s", step.Name), &out)
			continue
		}

		step.Args = resolveStepRefs(step.Args, st.Results)

		missing := missingFields(op, step.Args)
		if len(missing) > 0 {
			step.Status = session.StatusWaitingInput
			step.MissingFields = missing
			pending := &session.PendingInput{
				StepIndex: i,
				Missing:   append([]string(nil), missing...),
				FieldMeta: op.RequiredFields(),
			}
			if err := e.Store.Merge(sessionID, session.Patch{Stack: st.Stack, Pending: pending}); err != nil {
				return out, err
			}
			if e.Logger != nil {
				e.Logger.LogInput(sessionID, step.Name, missing)
			}
			out.NeedsInput = true
			out.BlockedStep = i
			out.MissingFields = missing
			return out, nil
		}

		if e.Policy != nil {
			argsJSON, _ := json.Marshal(step.Args)
			res, perr := e.Policy.Evaluate(ctx, governance.Request{
				Operation: step.Name,
				Arguments: string(argsJSON),
				SessionID: sessionID,
			})
			// Fail closed: a policy the engine cannot evaluate must not
			// let a restricted operation through.
			if perr != nil {
				e.failStep(sessionID, &st, step, fmt.Sprintf("policy evaluation failed: %v", perr), &out)
				continue
			}
			if res.Effect == governance.EffectDeny {
				e.failStep(sessionID, &st, step, res.Reason, &out)
				continue
			}
		}

		start := time.Now()
		step.Status = session.StatusExecuting
		step.ExecutionStart = &start
		if err := e.Store.Merge(sessionID, session.Patch{Stack: st.Stack}); err != nil {
			return out, err
		}
		if e.Logger != nil {
			e.Logger.LogStep(sessionID, step.Name, string(step.Status))
		}

		result, execErr := op.Execute(ctx, step.Args)
		end := time.Now()
		step.ExecutionEnd = &end

		if execErr != nil {
			e.failStep(sessionID, &st, step, execErr.Error(), &out)
			continue
		}

		step.Status = session.StatusDone
		step.Result = result
		entry := session.StepResult{
			Name:         step.Name,
			Value:        result,
			Prerequisite: step.Kind == session.KindPrerequisite,
		}
		st.Results = append(st.Results, entry)
		if err := e.Store.Merge(sessionID, session.Patch{Stack: st.Stack, Results: st.Results}); err != nil {
			return out, err
		}
		out.Results = append(out.Results, entry)
		if e.Logger != nil {
			e.Logger.LogStep(sessionID, step.Name, string(step.Status))
		}
		if e.Sink != nil {
			if err := e.Sink.SaveResult(sessionID, step.Name, summarize(result)); err != nil && e.Logger != nil {
				e.Logger.LogStep(sessionID, step.Name, "sink_error: "+err.Error())
			}
		}
	}

	for _, step := range st.Stack {
		if step.Kind == session.KindMain && step.Status == session.StatusDone {
			out.MainResult = step.Result
		}
	}

	if !sawPending {
		out.NothingToResume = true
	}

	return out, nil
}

func (e *Engine) failStep(sessionID string, st *session.State, step *session.Step, reason string, out *RunResult) {
	step.Status = session.StatusFailed
	step.Error = reason
	if step.ExecutionEnd == nil {
		end := time.Now()
		step.ExecutionEnd = &end
	}
	// Best effort: a persist failure here must not mask the step error.
	_ = e.Store.Merge(sessionID, session.Patch{Stack: st.Stack})
	out.Errors = append(out.Errors, StepError{Step: step.Name, Error: reason})
	if e.Logger != nil {
		e.Logger.LogStep(sessionID, step.Name, "failed: "+reason)
	}
}

func (e *Engine) stale(st session.State) bool {
	if e.TTL <= 0 || st.UpdatedAt.IsZero() {
		return false
	}
	return time.Since(st.UpdatedAt) > e.TTL
}

// resolveStepRefs substitutes {{step:NAME.output}} references in a
// step's args with the named earlier step's output, making inter-step
// data flow explicit instead of relying on cache scanning. A value that
// is exactly one reference keeps the output's original type; embedded
// references are stringified in place.
func resolveStepRefs(args map[string]any, results []session.StepResult) map[string]any {
	if args == nil {
		return nil
	}
	byName := make(map[string]any, len(results))
	for _, r := range results {
		byName[r.Name] = r.Value
	}
	out := make(map[string]any, len(args))
	for k, v := range args {
		out[k] = resolveValue(v, byName)
	}
	return out
}

func resolveValue(v any, byName map[string]any) any {
	switch t := v.(type) {
	case string:
		if m := stepRef.FindStringSubmatch(t); m != nil && m[0] == t {
			if val, ok := byName[m[1]]; ok {
				return val
			}
			return t
		}
		return stepRef.ReplaceAllStringFunc(t, func(ref string) string {
			name := stepRef.FindStringSubmatch(ref)[1]
			if val, ok := byName[name]; ok {
				return stringify(val)
			}
			return ref
		})
	case map[string]any:
		m := make(map[string]any, len(t))
		for k, inner := range t {
			m[k] = resolveValue(inner, byName)
		}
		return m
	case []any:
		a := make([]any, len(t))
		for i := range t {
			a[i] = resolveValue(t[i], byName)
		}
		return a
	default:
		return v
	}
}

func stringify(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	b, _ := json.Marshal(v)
	return string(b)
}

// summarize trims a step result for long-term storage.
func summarize(result any) string {
	s := stringify(result)
	if len(s) > 2000 {
		s = s[:2000] + "..."
	}
	return s
}
