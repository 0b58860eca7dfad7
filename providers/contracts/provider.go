package contracts

import (
	"context"

	"github.com/josehu07/codetective/providers/models"
)

// IDetectionProvider is the capability every AI provider adapter implements:
// validate the configured credential, and classify a piece of code into an AI
// authorship likelihood with a rationale. The detection core depends only on
// this interface, never on which provider backs it.
type IDetectionProvider interface {
	// Name returns the display name of the provider and model.
	Name() string

	// ValidateApiKey checks the configured API key against the provider,
	// returning a kinded error (Parse/Status/Limit/Ascii) on failure.
	ValidateApiKey(ctx context.Context) error

	// DetectAICode runs the classification call on the given code text,
	// returning a kinded error (Parse/Status) on failure.
	DetectAICode(ctx context.Context, code string) (*models.DetectResult, error)
}
