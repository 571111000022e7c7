package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/yungbote/workshoplive-backend/internal/logger"
	"github.com/yungbote/workshoplive-backend/internal/types"
)

const maxKeywords = 8

type ClassificationResult struct {
	PrimaryType   string   `json:"primary_type"`
	Confidence    *float64 `json:"confidence,omitempty"`
	Keywords      []string `json:"keywords,omitempty"`
	SuggestedArea *string  `json:"suggested_area,omitempty"`
}

// ClassifierProvider is the call contract to the external classification
// function: text in, structured result out. A provider built without a model
// integration degrades to the default result instead of failing the pipeline.
type ClassifierProvider interface {
	Classify(ctx context.Context, text string) (*ClassificationResult, error)
}

type classifierProvider struct {
	log *logger.Logger
	ai  AIClient
}

func NewClassifierProvider(log *logger.Logger, ai AIClient) ClassifierProvider {
	return &classifierProvider{
		log: log.With("service", "ClassifierProvider"),
		ai:  ai,
	}
}

var classificationSchema = map[string]any{
	"type":                 "object",
	"additionalProperties": false,
	"required":             []string{"primary_type", "confidence", "keywords", "suggested_area"},
	"properties": map[string]any{
		"primary_type": map[string]any{
			"type": "string",
			"enum": []string{
				types.ClassificationTypeVisionary,
				types.ClassificationTypeOpportunity,
				types.ClassificationTypeConstraint,
				types.ClassificationTypeRisk,
				types.ClassificationTypeEnabler,
				types.ClassificationTypeAction,
				types.ClassificationTypeQuestion,
				types.ClassificationTypeInsight,
			},
		},
		"confidence":     map[string]any{"type": []string{"number", "null"}},
		"keywords":       map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
		"suggested_area": map[string]any{"type": []string{"string", "null"}},
	},
}

const classifierSystemPrompt = `You classify a single utterance from a live group workshop.
Pick the one primary_type that best describes the utterance, estimate your confidence in [0,1],
extract up to 8 short keywords, and optionally suggest a focus area the utterance belongs to.`

func (p *classifierProvider) Classify(ctx context.Context, text string) (*ClassificationResult, error) {
	if p.ai == nil {
		p.log.Debug("No model integration configured, returning default classification")
		return NormalizeClassification("", nil, nil, nil), nil
	}

	raw, err := p.ai.GenerateJSON(ctx, classifierSystemPrompt, text, "utterance_classification", classificationSchema)
	if err != nil {
		return nil, fmt.Errorf("classify: %w", err)
	}

	primaryType, _ := raw["primary_type"].(string)
	var confidence *float64
	if v, ok := raw["confidence"].(float64); ok {
		confidence = &v
	}
	var keywords []string
	if items, ok := raw["keywords"].([]any); ok {
		for _, item := range items {
			if s, ok := item.(string); ok {
				keywords = append(keywords, s)
			}
		}
	}
	var suggestedArea *string
	if s, ok := raw["suggested_area"].(string); ok {
		suggestedArea = &s
	}

	return NormalizeClassification(primaryType, confidence, keywords, suggestedArea), nil
}

// NormalizeClassification forces malformed model output into shape:
// unrecognized types fall back to insight, confidence clamps into [0,1],
// keyword lists truncate to 8 entries, blank values become nil.
func NormalizeClassification(primaryType string, confidence *float64, keywords []string, suggestedArea *string) *ClassificationResult {
	normalizedType := strings.ToLower(strings.TrimSpace(primaryType))
	if !types.IsValidClassificationType(normalizedType) {
		normalizedType = types.ClassificationTypeInsight
	}

	if confidence != nil {
		v := *confidence
		if v < 0 {
			v = 0
		}
		if v > 1 {
			v = 1
		}
		confidence = &v
	}

	cleaned := make([]string, 0, len(keywords))
	for _, kw := range keywords {
		kw = strings.TrimSpace(kw)
		if kw == "" {
			continue
		}
		cleaned = append(cleaned, kw)
		if len(cleaned) == maxKeywords {
			break
		}
	}
	if len(cleaned) == 0 {
		cleaned = nil
	}

	if suggestedArea != nil {
		area := strings.TrimSpace(*suggestedArea)
		if area == "" {
			suggestedArea = nil
		} else {
			suggestedArea = &area
		}
	}

	return &ClassificationResult{
		PrimaryType:   normalizedType,
		Confidence:    confidence,
		Keywords:      cleaned,
		SuggestedArea: suggestedArea,
	}
}
