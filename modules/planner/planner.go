package planner

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"github.com/redis/go-redis/v9"
	"google.golang.org/api/option"

	"jelly-icon-server/modules/common/config"
)

// ErrPlannerUnavailable - the planner could not produce a refined prompt.
// Callers must catch this and use the base prompt unmodified; the planner is
// a quality enhancement, never a hard dependency.
var ErrPlannerUnavailable = errors.New("prompt planner unavailable")

const cacheTTL = 24 * time.Hour

// systemInstruction - fixed constraints for the auxiliary model
const systemInstruction = `You are an expert visual designer who writes world-class prompts for generating Jelly 3D app icons.
Output only the improved prompt text, nothing else.
Constraints:
- Keep it concise (< 220 tokens).
- Always specify: rounded square base, translucent jelly/glass material, inner glow, soft studio lighting, soft ambient shadow.
- Prefer neutral/warm background and 1024x1024 square output.
- Stay faithful to the given description; do not invent brand elements.`

type Service struct {
	client      *genai.Client
	model       string
	temperature float32
	rdb         *redis.Client
}

// NewService - planner backed by Gemini with a best-effort Redis cache.
// Returns nil when no Gemini key is configured.
func NewService(cfg *config.Config, rdb *redis.Client) *Service {
	if cfg.GeminiAPIKey == "" {
		log.Println("⚠️ [Planner] GEMINI_API_KEY not configured")
		return nil
	}

	client, err := genai.NewClient(context.Background(), option.WithAPIKey(cfg.GeminiAPIKey))
	if err != nil {
		log.Printf("❌ [Planner] Failed to create Gemini client: %v", err)
		return nil
	}

	log.Printf("✅ [Planner] Service initialized (model: %s)", cfg.PlannerModel)
	return &Service{
		client:      client,
		model:       cfg.PlannerModel,
		temperature: cfg.PlannerTemperature,
		rdb:         rdb,
	}
}

// Plan - refine a base prompt into a shorter, higher-quality one.
// One chat call; the trimmed text of the first candidate is returned.
func (s *Service) Plan(ctx context.Context, basePrompt string) (string, error) {
	if s == nil {
		return "", fmt.Errorf("%w: not configured", ErrPlannerUnavailable)
	}

	cacheKey := "planner:" + hashPrompt(basePrompt)
	if cached := s.cacheGet(ctx, cacheKey); cached != "" {
		log.Println("🗄️ [Planner] Cache hit")
		return cached, nil
	}

	model := s.client.GenerativeModel(s.model)
	model.SetTemperature(s.temperature)
	model.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(systemInstruction)},
	}

	user := fmt.Sprintf("Base description for the icon:\n\n%s\n\nNow return only the refined image generation prompt for a Jelly 3D icon.", basePrompt)

	log.Printf("🧠 [Planner] Refining prompt (%d chars)", len(basePrompt))
	resp, err := model.GenerateContent(ctx, genai.Text(user))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrPlannerUnavailable, err)
	}

	planned := strings.TrimSpace(extractText(resp))
	if planned == "" {
		return "", fmt.Errorf("%w: empty response", ErrPlannerUnavailable)
	}

	s.cacheSet(ctx, cacheKey, planned)
	log.Printf("✅ [Planner] Refined prompt ready (%d chars)", len(planned))
	return planned, nil
}

// extractText - concatenate the text parts of the first candidate
func extractText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}
	return sb.String()
}

func hashPrompt(prompt string) string {
	sum := sha256.Sum256([]byte(prompt))
	return hex.EncodeToString(sum[:])
}

// cacheGet / cacheSet - best-effort; a dead cache never blocks planning
func (s *Service) cacheGet(ctx context.Context, key string) string {
	if s.rdb == nil {
		return ""
	}
	value, err := s.rdb.Get(ctx, key).Result()
	if err != nil {
		return ""
	}
	return value
}

func (s *Service) cacheSet(ctx context.Context, key, value string) {
	if s.rdb == nil {
		return
	}
	if err := s.rdb.Set(ctx, key, value, cacheTTL).Err(); err != nil {
		log.Printf("⚠️ [Planner] Failed to cache planned prompt: %v", err)
	}
}
