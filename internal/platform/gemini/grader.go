package gemini

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"google.golang.org/genai"

	"github.com/ssl2010/englishlearn-api/internal/config"
	"github.com/ssl2010/englishlearn-api/internal/domain"
	"github.com/ssl2010/englishlearn-api/internal/grading"
	"github.com/ssl2010/englishlearn-api/internal/platform/logger"
)

// VisionGrader implements the grading provider interface against the
// Gemini API.
type VisionGrader struct {
	logger *slog.Logger
	config config.LLMConfig
	client *genai.Client
	model  string
}

// Interface conformance check.
var _ grading.Grader = (*VisionGrader)(nil)

// NewVisionGrader creates a VisionGrader, establishing the API client.
// Returns ErrInvalidConfig when the key or model name is missing; callers
// that want heuristic-only operation should not construct one at all.
func NewVisionGrader(ctx context.Context, log *slog.Logger, cfg config.LLMConfig) (*VisionGrader, error) {
	if log == nil {
		return nil, errors.New("logger cannot be nil")
	}
	if cfg.GeminiAPIKey == "" {
		return nil, fmt.Errorf("%w: gemini API key cannot be empty", grading.ErrInvalidConfig)
	}
	if cfg.ModelName == "" {
		return nil, fmt.Errorf("%w: model name cannot be empty", grading.ErrInvalidConfig)
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.GeminiAPIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: creating gemini client: %v", grading.ErrInvalidConfig, err)
	}

	return &VisionGrader{
		logger: log.With(slog.String("component", "vision_grader")),
		config: cfg,
		client: client,
		model:  cfg.ModelName,
	}, nil
}

// GradeMarkedPhoto sends the photos and expected items to the model and
// recovers a proposal from whatever comes back.
//
// A call that fails at the transport level is reported as
// ErrProviderUnavailable. A response that truncates mid-document is
// retried once with a doubled token budget before being reported as
// ErrTruncatedResponse. A complete response that defeats the whole
// recovery chain is ErrUngradeableResponse, with the raw text logged for
// offline inspection.
func (g *VisionGrader) GradeMarkedPhoto(
	ctx context.Context,
	photos [][]byte,
	items []domain.ExerciseItem,
) (*grading.ProposedGrading, error) {
	log := logger.FromContextOrDefault(ctx, g.logger)

	if len(items) == 0 {
		return nil, grading.ErrNoExpectedItems
	}
	if len(photos) == 0 {
		return nil, fmt.Errorf("%w: %v", grading.ErrProviderUnavailable, ErrNoPhotos)
	}

	prompt, err := buildPrompt(items)
	if err != nil {
		return nil, err
	}
	contents := buildContents(prompt, photos)

	budget := g.config.MaxOutputTokens
	jsonMode := true

	text, truncated, err := g.generate(ctx, contents, budget, jsonMode)
	if err != nil && structuredModeRejected(err) {
		log.Warn("model rejected structured JSON mode, retrying without it",
			slog.String("model", g.model))
		jsonMode = false
		text, truncated, err = g.generate(ctx, contents, budget, jsonMode)
	}
	if err != nil {
		return nil, err
	}
	if truncated {
		log.Warn("model response truncated, retrying with doubled budget",
			slog.Int("budget", budget))
		text, truncated, err = g.generate(ctx, contents, budget*2, jsonMode)
		if err != nil {
			return nil, err
		}
		if truncated {
			return nil, fmt.Errorf("%w: response still truncated at %d tokens",
				grading.ErrTruncatedResponse, budget*2)
		}
	}

	schema, strategy, ok := recoverResponse(text)
	if !ok {
		log.Error("model response defeated recovery chain",
			slog.Int("response_len", len(text)),
			slog.String("raw_response", text))
		return nil, fmt.Errorf("%w: no parse strategy succeeded", grading.ErrUngradeableResponse)
	}
	if strategy != "strict" {
		log.Info("recovered non-strict model response",
			slog.String("strategy", strategy))
	}

	marks := adaptResponse(schema)
	if len(marks) == 0 {
		log.Error("recovered response carried no entries",
			slog.String("strategy", strategy),
			slog.String("raw_response", text))
		return nil, fmt.Errorf("%w: %v", grading.ErrUngradeableResponse, ErrNoEntries)
	}

	log.Info("vision grading proposal ready",
		slog.Int("marks", len(marks)),
		slog.Int("expected", len(items)),
		slog.String("strategy", strategy))

	return &grading.ProposedGrading{
		Provider: grading.ProviderVision,
		Marks:    marks,
	}, nil
}

// generate makes one model call and returns the candidate text plus
// whether the model stopped on its token budget.
func (g *VisionGrader) generate(
	ctx context.Context,
	contents []*genai.Content,
	maxTokens int,
	jsonMode bool,
) (text string, truncated bool, err error) {
	callCtx, cancel := context.WithTimeout(ctx, time.Duration(g.config.TimeoutSeconds)*time.Second)
	defer cancel()

	genCfg := &genai.GenerateContentConfig{
		MaxOutputTokens: int32(maxTokens),
	}
	if jsonMode {
		genCfg.ResponseMIMEType = "application/json"
	}

	resp, err := g.client.Models.GenerateContent(callCtx, g.model, contents, genCfg)
	if err != nil {
		return "", false, fmt.Errorf("%w: %v", grading.ErrProviderUnavailable, err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", false, fmt.Errorf("%w: %v", grading.ErrUngradeableResponse, ErrEmptyResponse)
	}

	cand := resp.Candidates[0]
	for _, part := range cand.Content.Parts {
		text += part.Text
	}
	if text == "" {
		return "", false, fmt.Errorf("%w: %v", grading.ErrUngradeableResponse, ErrEmptyResponse)
	}

	return text, cand.FinishReason == genai.FinishReasonMaxTokens, nil
}

// structuredModeRejected reports whether the API refused the request because
// the model does not support the structured JSON output mode.
func structuredModeRejected(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "response_mime_type") ||
		strings.Contains(msg, "responsemimetype")
}

// buildContents assembles the user turn: instruction text first, then one
// inline image part per photo.
func buildContents(prompt string, photos [][]byte) []*genai.Content {
	parts := make([]*genai.Part, 0, 1+len(photos))
	parts = append(parts, &genai.Part{Text: prompt})
	for _, photo := range photos {
		parts = append(parts, &genai.Part{
			InlineData: &genai.Blob{
				MIMEType: http.DetectContentType(photo),
				Data:     photo,
			},
		})
	}
	return []*genai.Content{{Role: "user", Parts: parts}}
}
