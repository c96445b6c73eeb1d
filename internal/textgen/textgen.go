// Package textgen wraps the external generative-text collaborators. The
// portal treats them as unreliable, latent black boxes: callers bound every
// Generate with a timeout and map failures onto the portal error taxonomy.
package textgen

import (
	"context"
	"fmt"
	"strings"

	"github.com/svsu-dev/samadhan/internal/config"
)

// Generator produces free text from an instruction prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// FromConfig constructs the configured provider. Supported providers are
// "gemini" (the default) and "bedrock".
func FromConfig(ctx context.Context, cfg config.GeneratorConfig) (Generator, error) {
	switch strings.ToLower(cfg.Provider) {
	case "", "gemini":
		return NewGeminiGenerator(ctx, cfg)
	case "bedrock":
		return NewBedrockGenerator(ctx, cfg)
	default:
		return nil, fmt.Errorf("unknown generator provider %q", cfg.Provider)
	}
}
