package engine

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/priya/fincoach/internal/governance"
	"github.com/priya/fincoach/internal/observability"
	"github.com/priya/fincoach/internal/ops"
	"github.com/priya/fincoach/internal/session"
)

// Extractor maps a free-text answer onto a set of missing fields. Fields
// it cannot determine are simply absent from the result.
type Extractor interface {
	Extract(ctx context.Context, text string, fields map[string]string) (map[string]any, error)
}

// ResultSink receives a summary of every completed step, for long-term
// memory outside the session's lifetime.
type ResultSink interface {
	SaveResult(userID string, operation string, summary string) error
}

// UnknownOperationError is a configuration error: a stack references an
// operation name absent from the registry. It is fatal at build time,
// never deferred to run time.
type UnknownOperationError struct {
	Name string
}

func (e *UnknownOperationError) Error() string {
	return fmt.Sprintf("unknown operation: %s", e.Name)
}

// Engine expands a requested operation into an ordered stack of
// prerequisite and main steps, executes it against the registry, and can
// suspend mid-stack when a step is missing required input, resuming
// exactly where it left off once the input arrives.
type Engine struct {
	Registry  *ops.Registry
	Store     session.Store
	Extractor Extractor

	// Optional collaborators, nil-safe.
	Policy governance.PolicyEngine
	Logger *observability.Logger
	Sink   ResultSink

	// TTL after which an untouched session's stack is treated as stale.
	TTL time.Duration

	locksMu sync.Mutex
	locks   map[string]*sync.Mutex
}

func New(registry *ops.Registry, store session.Store, extractor Extractor) *Engine {
	return &Engine{
		Registry:  registry,
		Store:     store,
		Extractor: extractor,
		TTL:       24 * time.Hour,
		locks:     make(map[string]*sync.Mutex),
	}
}

// sessionLock serializes engine calls per session so two executors can
// never observe the same pending step and double-execute it. Sessions
// remain independent of each other.
func (e *Engine) sessionLock(sessionID string) *sync.Mutex {
	e.locksMu.Lock()
	defer e.locksMu.Unlock()
	mu, ok := e.locks[sessionID]
	if !ok {
		mu = &sync.Mutex{}
		e.locks[sessionID] = mu
	}
	return mu
}

// Build resolves the dependency list for mainOp, constructs the stack
// (prerequisites first, in declared order, main step last) and writes it
// to the session, replacing any stack already present. Nothing is
// executed. Building over an in-flight stack abandons it.
func (e *Engine) Build(sessionID string, mainOp string, args map[string]any, goal string) ([]session.Step, error) {
	mu := e.sessionLock(sessionID)
	mu.Lock()
	defer mu.Unlock()

	main := e.Registry.Get(mainOp)
	if main == nil {
		return nil, &UnknownOperationError{Name: mainOp}
	}

	now := time.Now()
	var stack []session.Step

	for _, depName := range main.Dependencies() {
		dep := e.Registry.Get(depName)
		if dep == nil {
			return nil, &UnknownOperationError{Name: depName}
		}
		stack = append(stack, session.Step{
			Name:      depName,
			Args:      projectArgs(dep, args, sessionID),
			Kind:      session.KindPrerequisite,
			Status:    session.StatusPending,
			Goal:      goal,
			CreatedAt: now,
		})
	}

	stack = append(stack, session.Step{
		Name:      mainOp,
		Args:      mainArgs(main, args, sessionID),
		Kind:      session.KindMain,
		Status:    session.StatusPending,
		Goal:      goal,
		CreatedAt: now,
	})

	err := e.Store.Merge(sessionID, session.Patch{
		Stack:        stack,
		Results:      []session.StepResult{},
		ClearPending: true,
		Goal:         &goal,
	})
	if err != nil {
		return nil, err
	}

	if e.Logger != nil {
		e.Logger.LogStack(sessionID, mainOp, goal, len(stack))
	}

	return stack, nil
}

// projectArgs limits the caller-supplied args to the subset a
// prerequisite operation is declared to accept. The session's user id is
// filled in when the operation's schema calls for it.
func projectArgs(op ops.Operation, args map[string]any, sessionID string) map[string]any {
	out := make(map[string]any)
	for _, name := range op.AcceptedArgs() {
		if v, ok := args[name]; ok {
			out[name] = v
		}
	}
	injectUserID(op, out, sessionID)
	return out
}

// mainArgs copies the full caller args for the main step.
func mainArgs(op ops.Operation, args map[string]any, sessionID string) map[string]any {
	out := make(map[string]any, len(args))
	for k, v := range args {
		out[k] = v
	}
	injectUserID(op, out, sessionID)
	return out
}

func injectUserID(op ops.Operation, args map[string]any, sessionID string) {
	if _, ok := args["user_id"]; ok {
		return
	}
	for _, name := range op.AcceptedArgs() {
		if name == "user_id" {
			args["user_id"] = sessionID
			return
		}
	}
	if _, ok := op.RequiredFields()["user_id"]; ok {
		args["user_id"] = sessionID
	}
}

// missingFields returns the required fields absent from args, sorted for
// deterministic prompting.
func missingFields(op ops.Operation, args map[string]any) []string {
	var missing []string
	for field := range op.RequiredFields() {
		if _, ok := args[field]; !ok {
			missing = append(missing, field)
		}
	}
	sort.Strings(missing)
	return missing
}
