package engine

import (
	"github.com/priya/fincoach/internal/session"
)

// CollectedResults returns the outputs of the current stack's completed
// prerequisite steps, in stack order. Pure read; failed steps, the main
// step, and historical stacks are excluded.
func (e *Engine) CollectedResults(sessionID string) ([]session.StepResult, error) {
	st, err := e.Store.Get(sessionID)
	if err != nil {
		return nil, err
	}

	var out []session.StepResult
	for _, step := range st.Stack {
		if step.Kind != session.KindPrerequisite || step.Status != session.StatusDone {
			continue
		}
		out = append(out, session.StepResult{
			Name:         step.Name,
			Value:        step.Result,
			Prerequisite: true,
		})
	}
	return out, nil
}

// Goal returns the free-text goal the current stack was built for.
func (e *Engine) Goal(sessionID string) string {
	st, err := e.Store.Get(sessionID)
	if err != nil {
		return ""
	}
	return st.Goal
}
