package icongen

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"strings"

	"jelly-icon-server/modules/common/config"
	"jelly-icon-server/modules/common/fallback"
)

const (
	defaultSize    = "1024x1024"
	defaultQuality = "auto"
)

// Service - the image request gateway. Configuration is injected so tests can
// point the base URL at a fake provider.
type Service struct {
	cfg        *config.Config
	httpClient *http.Client
}

// NewService - gateway against the configured OpenAI-compatible provider.
// The HTTP client carries no timeout of its own; the per-request context
// deadline is the single cancellation source, so a timeout is always
// distinguishable from other transport failures.
func NewService(cfg *config.Config) *Service {
	return &Service{
		cfg:        cfg,
		httpClient: &http.Client{},
	}
}

// Generate - submit one prompt (plus optional source image) upstream and
// normalize the response to a single URL. No retries: a failed call surfaces
// immediately and the caller owns any retry policy.
func (s *Service) Generate(ctx context.Context, req *Request) (*Result, error) {
	if strings.TrimSpace(s.cfg.OpenAIAPIKey) == "" {
		return nil, fmt.Errorf("%w: server image credential not configured", ErrMissingCredential)
	}
	if strings.TrimSpace(req.Prompt) == "" {
		return nil, fmt.Errorf("%w: prompt must be a non-empty string", ErrInvalidInput)
	}

	model := fallback.SafeString(req.Model, s.cfg.OpenAIModel)
	size := fallback.SafeString(req.Size, defaultSize)
	// Quality vocabularies differ per model family; passed through verbatim,
	// the provider owns validation
	quality := fallback.SafeString(req.Quality, defaultQuality)

	ctx, cancel := context.WithTimeout(ctx, s.cfg.UpstreamTimeout)
	defer cancel()

	var (
		httpReq *http.Request
		err     error
	)
	if len(req.SourceImage) > 0 {
		log.Printf("🎨 [IconGen] Edit request - model: %s, size: %s, quality: %s, source: %d bytes",
			model, size, quality, len(req.SourceImage))
		httpReq, err = s.buildEditRequest(ctx, req, model, size, quality)
	} else {
		log.Printf("🎨 [IconGen] Generation request - model: %s, size: %s, quality: %s", model, size, quality)
		httpReq, err = s.buildGenerationRequest(ctx, req.Prompt, model, size, quality)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransport, err)
	}

	resp, err := s.httpClient.Do(httpReq)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w after %s", ErrUpstreamTimeout, s.cfg.UpstreamTimeout)
		}
		return nil, fmt.Errorf("%w: %v", ErrTransport, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w after %s", ErrUpstreamTimeout, s.cfg.UpstreamTimeout)
		}
		return nil, fmt.Errorf("%w: %v", ErrTransport, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, upstreamError(resp.StatusCode, body)
	}

	var parsed providerResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("%w: unparseable success response: %v", ErrUpstream, err)
	}
	if len(parsed.Data) == 0 {
		return nil, fmt.Errorf("%w: provider returned empty data", ErrNoImage)
	}

	return normalize(parsed.Data[0])
}

// buildGenerationRequest - JSON submission to the generation endpoint
func (s *Service) buildGenerationRequest(ctx context.Context, promptText, model, size, quality string) (*http.Request, error) {
	payload := generationPayload{
		Model:        model,
		Prompt:       promptText,
		Size:         size,
		Quality:      quality,
		N:            1,
		Background:   "transparent",
		OutputFormat: "png",
	}

	jsonBody, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", s.cfg.OpenAIBaseURL+"/images/generations", bytes.NewReader(jsonBody))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+s.cfg.OpenAIAPIKey)
	req.Header.Set("Content-Type", "application/json")
	return req, nil
}

// buildEditRequest - multipart submission to the edit endpoint, source image attached
func (s *Service) buildEditRequest(ctx context.Context, genReq *Request, model, size, quality string) (*http.Request, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	fields := map[string]string{
		"model":         model,
		"prompt":        genReq.Prompt,
		"size":          size,
		"quality":       quality,
		"background":    "transparent",
		"output_format": "png",
	}
	for name, value := range fields {
		if err := writer.WriteField(name, value); err != nil {
			return nil, fmt.Errorf("failed to write field %s: %w", name, err)
		}
	}

	fileName := fallback.SafeString(genReq.SourceName, "logo.png")
	part, err := writer.CreateFormFile("image", fileName)
	if err != nil {
		return nil, fmt.Errorf("failed to create image part: %w", err)
	}
	if _, err := part.Write(genReq.SourceImage); err != nil {
		return nil, fmt.Errorf("failed to write image bytes: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", s.cfg.OpenAIBaseURL+"/images/edits", &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+s.cfg.OpenAIAPIKey)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req, nil
}

// upstreamError - surface the provider's embedded message when present,
// otherwise a generic status-code message. The body parse is tolerant: junk
// bodies fall back to the empty envelope.
func upstreamError(status int, body []byte) error {
	var parsed providerError
	if err := json.Unmarshal(body, &parsed); err != nil {
		parsed = providerError{}
	}

	message := strings.TrimSpace(parsed.Error.Message)
	if message == "" {
		message = fmt.Sprintf("upstream request failed (%d)", status)
	}
	log.Printf("❌ [IconGen] Provider error - status: %d, message: %s", status, message)
	return fmt.Errorf("%w: %s", ErrUpstream, message)
}

// normalize - collapse the provider's two representations (hosted URL vs
// embedded base64) into the single URL contract at the gateway boundary.
func normalize(img providerImage) (*Result, error) {
	switch {
	case img.URL != "":
		log.Printf("✅ [IconGen] Image ready (hosted URL)")
		return &Result{URL: img.URL}, nil
	case img.B64JSON != "":
		log.Printf("✅ [IconGen] Image ready (embedded, %d chars base64)", len(img.B64JSON))
		return &Result{URL: "data:image/png;base64," + img.B64JSON}, nil
	default:
		return nil, fmt.Errorf("%w: item carries neither url nor b64_json", ErrNoImage)
	}
}
