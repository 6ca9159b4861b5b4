package ops

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/priya/fincoach/internal/session"
	"github.com/tmc/langchaingo/llms"
)

// ResultSource exposes the prerequisite results collected in the current
// stack run, in stack order. Synthesis operations read their upstream
// data through it instead of scanning a shared cache.
type ResultSource interface {
	CollectedResults(sessionID string) ([]session.StepResult, error)
}

// generate is the shared single-turn LLM call used by synthesis
// operations.
func generate(ctx context.Context, model llms.Model, system string, prompt string) (string, error) {
	messages := []llms.MessageContent{
		{
			Role:  llms.ChatMessageTypeSystem,
			Parts: []llms.ContentPart{llms.TextPart(system)},
		},
		{
			Role:  llms.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{llms.TextPart(prompt)},
		},
	}

	resp, err := model.GenerateContent(ctx, messages)
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("model returned no choices")
	}
	return resp.Choices[0].Content, nil
}

// collectedValue finds a named prerequisite result in the current run.
func collectedValue(source ResultSource, sessionID string, name string) (any, bool) {
	if source == nil {
		return nil, false
	}
	results, err := source.CollectedResults(sessionID)
	if err != nil {
		return nil, false
	}
	for _, r := range results {
		if r.Name == name {
			return r.Value, true
		}
	}
	return nil, false
}

func stringArg(args map[string]any, key string) (string, error) {
	v, ok := args[key]
	if !ok {
		return "", fmt.Errorf("missing argument: %s", key)
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("argument %s must be a string", key)
	}
	return s, nil
}

func asText(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(b)
}
