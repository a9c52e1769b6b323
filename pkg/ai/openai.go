package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	openai "github.com/sashabaranov/go-openai"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var (
	advisoryDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "praxis",
		Subsystem: "advisory",
		Name:      "request_duration_seconds",
		Help:      "Duration of advisory analysis requests",
	}, []string{"model"})

	advisoryFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "praxis",
		Subsystem: "advisory",
		Name:      "request_failures_total",
		Help:      "Number of advisory analysis failures",
	}, []string{"model"})
)

// OpenAIConfig defines configuration options for the OpenAI advisor.
type OpenAIConfig struct {
	APIKey      string
	Model       string
	MaxTokens   int
	Temperature float32
	Logger      zerolog.Logger
}

// OpenAIAdvisor implements Advisor against the OpenAI chat completion API.
type OpenAIAdvisor struct {
	client *openai.Client
	cfg    OpenAIConfig
	tracer trace.Tracer
	logger zerolog.Logger
}

// NewOpenAIAdvisor builds a new advisor using the provided configuration.
func NewOpenAIAdvisor(cfg OpenAIConfig) (*OpenAIAdvisor, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai api key is required")
	}

	if cfg.Model == "" {
		cfg.Model = "gpt-4o-mini"
	}

	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = 512
	}

	logger := cfg.Logger
	if logger.GetLevel() == zerolog.Disabled {
		logger = zerolog.Nop()
	}

	config := openai.DefaultConfig(cfg.APIKey)
	client := openai.NewClientWithConfig(config)

	return &OpenAIAdvisor{
		client: client,
		cfg:    cfg,
		tracer: otel.Tracer("github.com/praxis-lms/praxis-go-api/pkg/ai/openai"),
		logger: logger,
	}, nil
}

// Analyze sends the submission to OpenAI and parses the complexity report.
// Failures are wrapped in ErrAdvisoryUnavailable so callers can degrade.
func (a *OpenAIAdvisor) Analyze(parent context.Context, input AdvisoryInput) (AdvisoryReport, error) {
	ctx, span := a.tracer.Start(parent, "openai.analyze", trace.WithAttributes(
		attribute.String("model", a.cfg.Model),
	))
	defer span.End()

	start := time.Now()
	request := openai.ChatCompletionRequest{
		Model:       a.cfg.Model,
		MaxTokens:   a.cfg.MaxTokens,
		Temperature: a.cfg.Temperature,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: advisorSystemPrompt(),
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: buildAdvisoryPrompt(input),
			},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{Type: openai.ChatCompletionResponseFormatTypeJSONObject},
	}

	resp, err := a.client.CreateChatCompletion(ctx, request)
	advisoryDuration.WithLabelValues(a.cfg.Model).Observe(time.Since(start).Seconds())
	if err != nil {
		advisoryFailures.WithLabelValues(a.cfg.Model).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return AdvisoryReport{}, fmt.Errorf("%w: %v", ErrAdvisoryUnavailable, err)
	}

	if len(resp.Choices) == 0 {
		advisoryFailures.WithLabelValues(a.cfg.Model).Inc()
		span.SetStatus(codes.Error, "no choices returned")
		return AdvisoryReport{}, fmt.Errorf("%w: no choices returned", ErrAdvisoryUnavailable)
	}

	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	report, err := parseAdvisoryResponse(content)
	if err != nil {
		advisoryFailures.WithLabelValues(a.cfg.Model).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return AdvisoryReport{}, fmt.Errorf("%w: %v", ErrAdvisoryUnavailable, err)
	}

	return report, nil
}

func advisorSystemPrompt() string {
	return "You are a code complexity reviewer. Respond with a JSON object containing time_complexity (big-O string), " +
		"space_complexity (big-O string), feedback (short paragraph), and optimizations (array of concrete suggestions). " +
		"Comment on algorithmic efficiency only; do not judge correctness."
}

func buildAdvisoryPrompt(input AdvisoryInput) string {
	builder := strings.Builder{}
	builder.WriteString("# Problem\n")
	builder.WriteString(input.ProblemStatement)
	builder.WriteString("\n\n## Language\n")
	builder.WriteString(input.Language)
	builder.WriteString("\n\n## Submission\n")
	builder.WriteString(input.Source)
	builder.WriteString("\nReturn JSON.")
	return builder.String()
}

func parseAdvisoryResponse(content string) (AdvisoryReport, error) {
	var report AdvisoryReport
	if err := json.Unmarshal([]byte(content), &report); err != nil {
		return AdvisoryReport{}, fmt.Errorf("parse advisory json: %w", err)
	}
	return report, nil
}
