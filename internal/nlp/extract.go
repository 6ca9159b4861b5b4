package nlp

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/priya/fincoach/internal/observability"
	"github.com/tmc/langchaingo/llms"
)

// LLMExtractor maps a free-text user answer onto a set of named fields
// using the language model. Best-effort: fields the model cannot
// determine are absent from the result, never nil-valued.
type LLMExtractor struct {
	Model        llms.Model
	SystemPrompt string
	Logger       *observability.Logger
}

func NewLLMExtractor(model llms.Model, systemPrompt string) *LLMExtractor {
	return &LLMExtractor{
		Model:        model,
		SystemPrompt: systemPrompt,
	}
}

func (x *LLMExtractor) Extract(ctx context.Context, text string, fields map[string]string) (map[string]any, error) {
	if len(fields) == 0 {
		return map[string]any{}, nil
	}

	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	b.WriteString("Extract the following fields from the user input:\n")
	for _, name := range names {
		if prompt := fields[name]; prompt != "" {
			fmt.Fprintf(&b, "- %s (%s)\n", name, prompt)
		} else {
			fmt.Fprintf(&b, "- %s\n", name)
		}
	}
	fmt.Fprintf(&b, "\nUser input: %q\n\n", text)
	b.WriteString("Return ONLY a valid JSON object with the extracted fields. ")
	b.WriteString("If a field cannot be determined, use null.\n")
	b.WriteString(`Example format: {"field1": "value1", "field2": null}`)

	messages := []llms.MessageContent{
		{
			Role:  llms.ChatMessageTypeSystem,
			Parts: []llms.ContentPart{llms.TextPart(x.SystemPrompt)},
		},
		{
			Role:  llms.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{llms.TextPart(b.String())},
		},
	}

	resp, err := x.Model.GenerateContent(ctx, messages)
	if err != nil {
		return nil, fmt.Errorf("field extraction failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return map[string]any{}, nil
	}

	content := resp.Choices[0].Content
	if x.Logger != nil {
		x.Logger.LogLLM("", b.String(), content)
	}

	var extracted map[string]any
	if err := json.Unmarshal([]byte(cleanJSON(content)), &extracted); err != nil {
		// The model returned something unparseable; treat as "nothing
		// extracted" rather than failing the turn.
		return map[string]any{}, nil
	}

	for key, value := range extracted {
		if value == nil {
			delete(extracted, key)
		}
	}
	return extracted, nil
}

// cleanJSON strips markdown code fences the model sometimes wraps
// around its JSON output.
func cleanJSON(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		if idx := strings.LastIndex(s, "```"); idx >= 0 {
			s = s[:idx]
		}
	}
	return strings.TrimSpace(s)
}
