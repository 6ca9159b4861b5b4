package session

import "time"

// StepKind distinguishes dependency steps from the originally requested operation.
type StepKind string

const (
	KindPrerequisite StepKind = "prerequisite"
	KindMain         StepKind = "main"
)

// StepStatus is the lifecycle state of a single step.
type StepStatus string

const (
	StatusPending      StepStatus = "pending"
	StatusExecuting    StepStatus = "executing"
	StatusWaitingInput StepStatus = "waiting_for_input"
	StatusDone         StepStatus = "done"
	StatusFailed       StepStatus = "failed"
)

// Step is one scheduled operation instance within a stack.
type Step struct {
	Name           string         `json:"name"`
	Args           map[string]any `json:"args"`
	Kind           StepKind       `json:"kind"`
	Status         StepStatus     `json:"status"`
	Goal           string         `json:"goal,omitempty"`
	Result         any            `json:"result,omitempty"`
	Error          string         `json:"error,omitempty"`
	MissingFields  []string       `json:"missing_fields,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`
	ExecutionStart *time.Time     `json:"execution_start,omitempty"`
	ExecutionEnd   *time.Time     `json:"execution_end,omitempty"`
}

// StepResult is one completed step's output, accumulated per session as the
// stack executes. Prerequisite marks whether it came from a dependency step.
type StepResult struct {
	Name         string `json:"name"`
	Value        any    `json:"value"`
	Prerequisite bool   `json:"prerequisite"`
}

// PendingInput records which fields the currently blocked step is still
// missing. At most one exists per session; while it exists the executor
// must not advance.
type PendingInput struct {
	StepIndex int               `json:"step_index"`
	Missing   []string          `json:"missing"`
	FieldMeta map[string]string `json:"field_meta"`
}

// State is the per-session container: one active stack (or none), the
// results accumulated during the current run, and at most one pending
// input request.
type State struct {
	Stack     []Step        `json:"stack,omitempty"`
	Results   []StepResult  `json:"results,omitempty"`
	Pending   *PendingInput `json:"pending,omitempty"`
	Goal      string        `json:"goal,omitempty"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}
