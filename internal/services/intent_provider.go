package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/yungbote/workshoplive-backend/internal/logger"
)

// IntentProvider derives the actionable intent behind an utterance. A nil
// result with a nil error means the provider could not produce one; callers
// treat that the same as a failed call: no intent, no pipeline failure.
type IntentProvider interface {
	DeriveIntent(ctx context.Context, text string) (*string, error)
}

type intentProvider struct {
	log *logger.Logger
	ai  AIClient
}

func NewIntentProvider(log *logger.Logger, ai AIClient) IntentProvider {
	return &intentProvider{
		log: log.With("service", "IntentProvider"),
		ai:  ai,
	}
}

var intentSchema = map[string]any{
	"type":                 "object",
	"additionalProperties": false,
	"required":             []string{"intent"},
	"properties": map[string]any{
		"intent": map[string]any{"type": []string{"string", "null"}},
	},
}

const intentSystemPrompt = `You read a single utterance from a live group workshop and state,
in one short sentence, what the speaker is trying to achieve. Return null when the utterance
carries no discernible intent.`

func (p *intentProvider) DeriveIntent(ctx context.Context, text string) (*string, error) {
	if p.ai == nil {
		p.log.Debug("No model integration configured, skipping intent derivation")
		return nil, nil
	}

	raw, err := p.ai.GenerateJSON(ctx, intentSystemPrompt, text, "utterance_intent", intentSchema)
	if err != nil {
		return nil, fmt.Errorf("derive intent: %w", err)
	}

	intent, _ := raw["intent"].(string)
	intent = strings.TrimSpace(intent)
	if intent == "" {
		return nil, nil
	}
	return &intent, nil
}
