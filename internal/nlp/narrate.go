package nlp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/priya/fincoach/internal/engine"
	"github.com/priya/fincoach/internal/observability"
	"github.com/priya/fincoach/internal/session"
	"github.com/tmc/langchaingo/llms"
)

// Narrator turns a finished stack run into the chat reply: the main
// result summarized against the collected prerequisite context, with
// failed steps reported as partial degradation rather than a dead end.
type Narrator struct {
	Model        llms.Model
	SystemPrompt string
	Logger       *observability.Logger
}

func NewNarrator(model llms.Model, systemPrompt string) *Narrator {
	return &Narrator{
		Model:        model,
		SystemPrompt: systemPrompt,
	}
}

func (n *Narrator) Narrate(ctx context.Context, goal string, run engine.RunResult, collected []session.StepResult) (string, error) {
	var b strings.Builder
	if goal != "" {
		fmt.Fprintf(&b, "The user's goal: %s\n\n", goal)
	}

	if len(collected) > 0 {
		b.WriteString("Supporting data gathered for this request, in order:\n")
		for _, r := range collected {
			fmt.Fprintf(&b, "## %s\n%s\n\n", r.Name, truncate(stringifyResult(r.Value), 4000))
		}
	}

	if run.MainResult != nil {
		fmt.Fprintf(&b, "Primary result:\n%s\n\n", truncate(stringifyResult(run.MainResult), 8000))
	}

	if len(run.Errors) > 0 {
		b.WriteString("Steps that failed (mention briefly, do not dwell):\n")
		for _, e := range run.Errors {
			fmt.Fprintf(&b, "- %s: %s\n", e.Step, e.Error)
		}
		b.WriteString("\n")
	}

	b.WriteString("Write a concise, friendly answer for the user based on the data above. Use plain language, no raw JSON.")

	messages := []llms.MessageContent{
		{
			Role:  llms.ChatMessageTypeSystem,
			Parts: []llms.ContentPart{llms.TextPart(n.SystemPrompt)},
		},
		{
			Role:  llms.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{llms.TextPart(b.String())},
		},
	}

	resp, err := n.Model.GenerateContent(ctx, messages)
	if err != nil {
		return "", fmt.Errorf("narration failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("narration returned no choices")
	}

	answer := resp.Choices[0].Content
	if n.Logger != nil {
		n.Logger.LogLLM("", b.String(), answer)
	}
	return answer, nil
}

func stringifyResult(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(b)
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "\n... (truncated) ..."
}
