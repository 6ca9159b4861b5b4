package assistant

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/priya/fincoach/internal/engine"
	"github.com/priya/fincoach/internal/nlp"
	"github.com/priya/fincoach/internal/observability"
	"github.com/priya/fincoach/internal/ops"
	"github.com/tmc/langchaingo/llms"
)

// Assistant glues the chat gateways to the stack engine: it parses a
// turn into an operation request, runs the stack, asks for missing
// fields when the engine suspends, and narrates finished runs.
type Assistant struct {
	Engine   *engine.Engine
	Registry *ops.Registry
	Narrator *nlp.Narrator
	Model    llms.Model
	Prompts  *PromptManager
	Logger   *observability.Logger
}

func New(eng *engine.Engine, registry *ops.Registry, narrator *nlp.Narrator, model llms.Model, prompts *PromptManager, logger *observability.Logger) *Assistant {
	return &Assistant{
		Engine:   eng,
		Registry: registry,
		Narrator: narrator,
		Model:    model,
		Prompts:  prompts,
		Logger:   logger,
	}
}

// HandleMessage processes one chat turn for a session.
func (a *Assistant) HandleMessage(ctx context.Context, sessionID string, text string) (string, error) {
	// A blocked stack takes priority: the user is answering our question.
	if a.Engine.IsAwaitingInput(sessionID) {
		observability.SetStatus(observability.ModeAwaitingInput, a.Engine.Goal(sessionID))
		filled, err := a.Engine.ReceiveAnswer(ctx, sessionID, text)
		if err != nil {
			return "", err
		}
		if !filled {
			return a.askForFields(sessionID), nil
		}
		return a.runAndRespond(ctx, sessionID)
	}

	name, args, ok := ParseCommand(text)
	if !ok {
		inferredName, inferredArgs, reply, err := a.inferCommand(ctx, sessionID, text)
		if err != nil {
			return "", err
		}
		if inferredName == "" {
			// Plain conversation, no operation requested.
			return reply, nil
		}
		name, args = inferredName, inferredArgs
	}

	if _, err := a.Engine.Build(sessionID, name, args, text); err != nil {
		var unknown *engine.UnknownOperationError
		if errors.As(err, &unknown) {
			return fmt.Sprintf("I don't know how to do %q.", unknown.Name), nil
		}
		return "", err
	}

	return a.runAndRespond(ctx, sessionID)
}

func (a *Assistant) runAndRespond(ctx context.Context, sessionID string) (string, error) {
	observability.SetStatus(observability.ModeExecuting, a.Engine.Goal(sessionID))
	defer observability.SetStatus(observability.ModeIdle, "")

	run, err := a.Engine.Run(ctx, sessionID)
	if err != nil {
		return "", err
	}

	if run.NeedsInput {
		observability.SetStatus(observability.ModeAwaitingInput, a.Engine.Goal(sessionID))
		return a.askForFields(sessionID), nil
	}
	if run.NothingToResume {
		return "There's nothing in progress for you right now. Ask me to assess an asset, screen the market, or build a portfolio.", nil
	}

	collected, err := a.Engine.CollectedResults(sessionID)
	if err != nil {
		log.Printf("Failed to collect prerequisite results: %v", err)
	}

	answer, err := a.Narrator.Narrate(ctx, a.Engine.Goal(sessionID), run, collected)
	if err != nil {
		// Narration is presentation; fall back to the raw result rather
		// than losing a completed run.
		log.Printf("Narration failed: %v", err)
		if run.MainResult != nil {
			return fmt.Sprintf("%v", run.MainResult), nil
		}
		return "I completed what I could, but every step failed. Please try again.", nil
	}
	return answer, nil
}

// askForFields renders the blocked step's missing-field prompts as a
// question for the user.
func (a *Assistant) askForFields(sessionID string) string {
	missing, meta := a.Engine.PendingFields(sessionID)
	if len(missing) == 0 {
		return "I'm waiting on some information, but I've lost track of what. Please restate your request."
	}

	var b strings.Builder
	b.WriteString("I need a bit more information:\n")
	for _, field := range missing {
		prompt := meta[field]
		if prompt == "" {
			prompt = field
		}
		fmt.Fprintf(&b, "• %s\n", prompt)
	}
	return b.String()
}

// inferCommand asks the model to map a free-text request onto one of the
// registered operations, or answer directly when none applies.
func (a *Assistant) inferCommand(ctx context.Context, sessionID string, text string) (string, map[string]any, string, error) {
	systemPrompt, err := a.Prompts.GetSystemPrompt()
	if err != nil {
		log.Printf("Warning: Failed to load system prompt: %v", err)
	}

	var opList []string
	for _, op := range a.Registry.Ops {
		opList = append(opList, fmt.Sprintf("- %s: %s", op.Name(), op.Description()))
	}

	instructions := fmt.Sprintf(
		"%s\n\n## Available operations:\n%s\n\nIf the user's message asks for one of these operations, reply with EXACTLY one line:\n#COMMAND <operation_name> {\"arg\": \"value\", ...}\nusing only arguments you are sure about. Otherwise answer the user directly in plain text.",
		systemPrompt, strings.Join(opList, "\n"),
	)

	messages := []llms.MessageContent{
		{
			Role:  llms.ChatMessageTypeSystem,
			Parts: []llms.ContentPart{llms.TextPart(instructions)},
		},
		{
			Role:  llms.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{llms.TextPart(text)},
		},
	}

	resp, err := a.Model.GenerateContent(ctx, messages)
	if err != nil {
		return "", nil, "", err
	}
	if len(resp.Choices) == 0 {
		return "", nil, "I'm having trouble thinking right now...", nil
	}

	content := resp.Choices[0].Content
	if a.Logger != nil {
		a.Logger.LogLLM(sessionID, text, content)
	}

	if name, args, ok := ParseCommand(content); ok {
		return name, args, "", nil
	}
	return "", nil, content, nil
}
