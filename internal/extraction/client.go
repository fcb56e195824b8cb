// Package extraction turns a free-text job description into a structured
// material list by calling an external text-completion model and coercing
// whatever comes back into domain invariants.
package extraction

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/fixhub/estimator-cli/internal/model"
	"github.com/fixhub/estimator-cli/pkg/anthropic"
)

// ErrExtraction marks a failed model round trip. Transport failures only;
// malformed content degrades to fallback parsing instead.
var ErrExtraction = eris.New("extraction failed")

// ParseMode tags which parsing path produced a Result.
type ParseMode string

const (
	ParseModeStructured ParseMode = "structured"
	ParseModeFallback   ParseMode = "fallback"
)

// fallbackConfidence is reported whenever the structured payload could not
// be parsed and the line-scanning heuristic was used instead.
const fallbackConfidence = 50

// FallbackReasoning is the reasoning string attached to heuristic results.
const FallbackReasoning = "fallback parsing used: model response was not valid JSON"

const (
	// Low temperature: favor deterministic extraction over creativity.
	extractionTemperature = 0.1
	extractionMaxTokens   = 2000
)

const systemPrompt = "You are a construction material estimator for a home services marketplace. " +
	"Given a job description, list the materials needed. Return a valid JSON object with keys " +
	`"materials" (array of {category, name, quantity, unit, specifications, estimated_size, quality, notes}), ` +
	`"confidence" (0-100), and "reasoning" (string). ` +
	"Categories: plumbing, electrical, hardware, lumber, paint, tools, other."

const userPromptTemplate = `Analyze this job and extract the materials required.

Job description: %s
Service type: %s
Location: %s
Urgency: %s
Budget: %s

Return a valid JSON object:
{"materials": [{"category": "...", "name": "...", "quantity": 1, "unit": "each", "specifications": ["..."], "estimated_size": "medium", "quality": "mid-grade", "notes": ""}], "confidence": 85, "reasoning": "..."}`

// Result holds one extraction outcome.
type Result struct {
	Materials      []model.ExtractedMaterial `json:"materials"`
	Confidence     int                       `json:"confidence"` // model-reported, 0-100
	Reasoning      string                    `json:"reasoning"`
	Mode           ParseMode                 `json:"mode"`
	ProcessingTime int64                     `json:"processing_time_ms"`
}

// Extractor calls the completion model and normalizes its output.
type Extractor struct {
	client anthropic.Client
	model  string
}

// NewExtractor creates an Extractor bound to a completion client and model id.
func NewExtractor(client anthropic.Client, modelID string) *Extractor {
	return &Extractor{client: client, model: modelID}
}

// Model returns the model identifier results are tagged with.
func (e *Extractor) Model() string {
	return e.model
}

// Extract produces a normalized material list for the request. A transport
// failure returns ErrExtraction; a malformed response never fails, it
// degrades to the line-scanning fallback with fixed low confidence.
func (e *Extractor) Extract(ctx context.Context, req model.ExtractionRequest) (*Result, error) {
	start := time.Now()
	temp := extractionTemperature

	resp, err := e.client.CreateMessage(ctx, anthropic.MessageRequest{
		Model:       e.model,
		MaxTokens:   extractionMaxTokens,
		System:      systemPrompt,
		Temperature: &temp,
		Messages: []anthropic.Message{
			{Role: "user", Content: BuildPrompt(req)},
		},
	})
	if err != nil {
		return nil, eris.Wrap(ErrExtraction, err.Error())
	}

	resp.Usage.LogCost(e.model, "extract_materials")

	result := parseResponse(resp.Text())
	result.ProcessingTime = time.Since(start).Milliseconds()

	zap.L().Info("extraction: materials extracted",
		zap.String("service_type", req.ServiceType),
		zap.Int("material_count", len(result.Materials)),
		zap.Int("confidence", result.Confidence),
		zap.String("mode", string(result.Mode)),
		zap.Int64("processing_ms", result.ProcessingTime),
	)

	return result, nil
}

// BuildPrompt renders the deterministic user prompt. Optional fields render
// as an explicit placeholder instead of being omitted, so the prompt shape
// is stable.
func BuildPrompt(req model.ExtractionRequest) string {
	budget := "Not specified"
	if req.Budget != nil {
		budget = fmt.Sprintf("$%.2f", *req.Budget)
	}
	return fmt.Sprintf(userPromptTemplate,
		req.JobDescription,
		req.ServiceType,
		placeholder(req.Location),
		placeholder(req.Urgency),
		budget,
	)
}

func placeholder(s string) string {
	if s == "" {
		return "Not specified"
	}
	return s
}

// rawPayload is the loose shape expected inside the model's response text.
type rawPayload struct {
	Materials  []map[string]any `json:"materials"`
	Confidence any              `json:"confidence"`
	Reasoning  string           `json:"reasoning"`
}

// parseResponse attempts structured parsing and falls back to the keyword
// heuristic. It never returns an error: any text at all yields a usable
// Result.
func parseResponse(text string) *Result {
	cleaned := cleanJSON(text)

	var payload rawPayload
	if err := json.Unmarshal([]byte(cleaned), &payload); err != nil {
		zap.L().Warn("extraction: structured parse failed, using fallback",
			zap.Error(err),
		)
		return fallbackParse(text)
	}

	materials := make([]model.ExtractedMaterial, 0, len(payload.Materials))
	for _, raw := range payload.Materials {
		materials = append(materials, model.NewExtractedMaterial(raw))
	}

	return &Result{
		Materials:  materials,
		Confidence: clampConfidence(payload.Confidence),
		Reasoning:  payload.Reasoning,
		Mode:       ParseModeStructured,
	}
}

// fallbackParse scans the raw text line by line: any line mentioning a
// material-indicative keyword becomes a one-off unspecified material entry.
func fallbackParse(text string) *Result {
	var materials []model.ExtractedMaterial
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || !containsMaterialKeyword(line) {
			continue
		}
		materials = append(materials, model.NewExtractedMaterial(map[string]any{
			"name":  line,
			"notes": "identified by fallback parser",
		}))
	}

	return &Result{
		Materials:  materials,
		Confidence: fallbackConfidence,
		Reasoning:  FallbackReasoning,
		Mode:       ParseModeFallback,
	}
}

var materialKeywords = []string{"material", "pipe", "wire"}

func containsMaterialKeyword(line string) bool {
	lower := strings.ToLower(line)
	for _, kw := range materialKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// cleanJSON strips markdown code fences and extracts the first top-level
// JSON object from the text, tolerating prose around the payload.
func cleanJSON(text string) string {
	text = strings.TrimSpace(text)

	if strings.HasPrefix(text, "```json") {
		text = strings.TrimPrefix(text, "```json")
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
	} else if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```")
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
	}

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start >= 0 && end > start {
		text = text[start : end+1]
	}

	return strings.TrimSpace(text)
}

// clampConfidence coerces a loose confidence value into [0, 100].
func clampConfidence(v any) int {
	var c int
	switch n := v.(type) {
	case float64:
		c = int(n)
	case int:
		c = n
	case string:
		fmt.Sscanf(n, "%d", &c)
	}
	if c < 0 {
		return 0
	}
	if c > 100 {
		return 100
	}
	return c
}
