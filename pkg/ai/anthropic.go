package ai

import (
	"context"
	"fmt"
)

// AnthropicConfig placeholder for anthropic integration configuration.
type AnthropicConfig struct {
	APIKey string
	Model  string
}

// AnthropicAdvisor is a stub implementation that can be expanded once the SDK is available.
type AnthropicAdvisor struct{}

// NewAnthropicAdvisor constructs a new stub advisor.
func NewAnthropicAdvisor(cfg AnthropicConfig) (*AnthropicAdvisor, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("anthropic api key is required")
	}
	return &AnthropicAdvisor{}, nil
}

// Analyze is not yet implemented for Anthropic models.
func (a *AnthropicAdvisor) Analyze(ctx context.Context, input AdvisoryInput) (AdvisoryReport, error) {
	return AdvisoryReport{}, fmt.Errorf("%w: anthropic advisor not implemented", ErrAdvisoryUnavailable)
}
