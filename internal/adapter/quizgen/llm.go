package quizgen

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"vidquiz/internal/config"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/googleai"
	"github.com/tmc/langchaingo/llms/ollama"
)

// NewLLM builds the langchaingo model selected by the generator config.
func NewLLM(ctx context.Context, cfg config.GeneratorConfig) (llms.Model, error) {
	switch cfg.Source {
	case "googleai":
		if cfg.GoogleAI.APIKey == "" {
			return nil, fmt.Errorf("googleai generator requires an API key")
		}
		return googleai.New(ctx,
			googleai.WithAPIKey(cfg.GoogleAI.APIKey),
			googleai.WithDefaultModel(cfg.GoogleAI.Model),
		)
	case "ollama":
		httpClient := &http.Client{Timeout: 60 * time.Second}
		return ollama.New(
			ollama.WithServerURL(cfg.Ollama.ServerURL),
			ollama.WithModel(cfg.Ollama.Model),
			ollama.WithHTTPClient(httpClient),
		)
	default:
		return nil, fmt.Errorf("unsupported generator source: %s", cfg.Source)
	}
}
