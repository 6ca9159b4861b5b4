package ops

import (
	"context"
	"fmt"

	"github.com/tmc/langchaingo/llms"
)

// SectorAssessOp assesses one sector against the broad market backdrop.
type SectorAssessOp struct {
	Client       *MarketClient
	Model        llms.Model
	SystemPrompt string
}

func NewSectorAssessOp(client *MarketClient, model llms.Model) *SectorAssessOp {
	return &SectorAssessOp{
		Client:       client,
		Model:        model,
		SystemPrompt: "You are a sector analyst. Assess the named sector factually against the market backdrop given.",
	}
}

func (o *SectorAssessOp) Name() string {
	return "sector_assess"
}

func (o *SectorAssessOp) Description() string {
	return "Assess a market sector (e.g. technology, energy) against current conditions."
}

func (o *SectorAssessOp) AcceptedArgs() []string {
	return []string{"sector"}
}

func (o *SectorAssessOp) RequiredFields() map[string]string {
	return map[string]string{
		"sector": "Which sector would you like assessed?",
	}
}

func (o *SectorAssessOp) Dependencies() []string {
	return nil
}

func (o *SectorAssessOp) Execute(ctx context.Context, args map[string]any) (any, error) {
	sector, err := stringArg(args, "sector")
	if err != nil {
		return nil, err
	}

	snapshot, err := o.Client.Snapshot(ctx)
	if err != nil {
		return nil, err
	}

	prompt := fmt.Sprintf(
		"Market snapshot:\n%s\n\nAssess the %s sector: positioning in the current cycle, headwinds, tailwinds, and relative attractiveness.",
		asText(snapshot), sector,
	)
	return generate(ctx, o.Model, o.SystemPrompt, prompt)
}
