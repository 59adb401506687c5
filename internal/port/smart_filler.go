package port

import (
	"context"

	"smartinvoice/internal/domain"
)

// SmartFillInput carries the free-form text to extract from.
type SmartFillInput struct {
	Text string
}

// SmartFillOutput is a validated patch plus provenance for logging.
type SmartFillOutput struct {
	Patch      *domain.SmartFillPatch
	RawText    string
	ModelUsed  string
	PromptUsed string
}

// SmartFiller turns free-form text into a structured invoice patch.
type SmartFiller interface {
	Fill(ctx context.Context, input SmartFillInput) (*SmartFillOutput, error)
}
