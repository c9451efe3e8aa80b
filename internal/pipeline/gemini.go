package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"google.golang.org/genai"
)

// DefaultModelName is the Gemini model used for cheque extraction.
const DefaultModelName = "gemini-2.5-flash"

const (
	maxAttempts    = 5
	initialBackoff = 1 * time.Second
	maxBackoff     = 32 * time.Second

	// courtesyDelay is imposed before every call to stay under the
	// per-minute quota.
	courtesyDelay = 1 * time.Second
)

// errEmptyResponse marks an empty model response; treated as retryable.
var errEmptyResponse = errors.New("empty response from API")

// Extractor sends a rasterized cheque image plus an instruction prompt to a
// vision model and returns the raw output text.
type Extractor interface {
	Extract(ctx context.Context, image []byte, prompt string) (string, error)
}

// GeminiExtractor calls the Gemini vision API with deterministic sampling
// and an exponential-backoff retry loop for rate-limit conditions.
type GeminiExtractor struct {
	APIKey string
	Model  string

	log zerolog.Logger

	// Injected for tests.
	sleep    func(time.Duration)
	generate func(ctx context.Context, prompt string, image []byte) (string, error)
}

var _ Extractor = (*GeminiExtractor)(nil)

// NewGeminiExtractor creates an extractor using the given API key.
func NewGeminiExtractor(apiKey string, log zerolog.Logger) *GeminiExtractor {
	e := &GeminiExtractor{
		APIKey: apiKey,
		Model:  DefaultModelName,
		log:    log,
		sleep:  time.Sleep,
	}
	e.generate = e.generateContent
	return e
}

// Extract submits {prompt, image} as a single generation request. Rate-limit
// errors and empty responses are retried with exponential backoff (1s, 2s,
// 4s, ... capped at 32s) for up to maxAttempts attempts; any other failure
// propagates immediately as UnexpectedAPIError.
func (e *GeminiExtractor) Extract(ctx context.Context, image []byte, prompt string) (string, error) {
	if strings.TrimSpace(e.APIKey) == "" {
		return "", ErrMissingCredential
	}

	e.sleep(courtesyDelay)

	backoff := initialBackoff
	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		text, err := e.generate(ctx, prompt, image)
		switch {
		case err == nil && strings.TrimSpace(text) != "":
			return strings.TrimSpace(text), nil
		case err == nil:
			lastErr = errEmptyResponse
		case isRateLimited(err):
			lastErr = err
		default:
			return "", &UnexpectedAPIError{Err: err}
		}

		if attempt < maxAttempts {
			e.log.Warn().
				Err(lastErr).
				Int("attempt", attempt).
				Dur("backoff", backoff).
				Msg("Rate limited by extraction API, backing off")
			e.sleep(backoff)
			backoff *= 2
			if backoff > maxBackoff {
				backoff = maxBackoff
			}
		}
	}

	return "", &RateLimitError{Attempts: maxAttempts, Last: lastErr}
}

// isRateLimited classifies an API failure as a retryable rate-limit
// condition.
func isRateLimited(err error) bool {
	msg := err.Error()
	if strings.Contains(msg, "429") {
		return true
	}
	lower := strings.ToLower(msg)
	return strings.Contains(lower, "resource has been exhausted") ||
		strings.Contains(lower, "resource_exhausted") ||
		strings.Contains(lower, "rate limit")
}

// generateContent performs the real Gemini call: one user turn containing the
// instruction prompt and the PNG as an inline blob, temperature pinned to 0.
func (e *GeminiExtractor) generateContent(ctx context.Context, prompt string, image []byte) (string, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      e.APIKey,
		Backend:     genai.BackendGeminiAPI,
		HTTPOptions: genai.HTTPOptions{APIVersion: "v1"},
	})
	if err != nil {
		return "", fmt.Errorf("create genai client: %w", err)
	}

	contents := []*genai.Content{
		{
			Role: "user",
			Parts: []*genai.Part{
				{Text: prompt},
				{
					InlineData: &genai.Blob{
						MIMEType: "image/png",
						Data:     image,
					},
				},
			},
		},
	}

	config := &genai.GenerateContentConfig{
		Temperature: genai.Ptr[float32](0),
	}

	resp, err := client.Models.GenerateContent(ctx, e.Model, contents, config)
	if err != nil {
		return "", err
	}
	return resp.Text(), nil
}
