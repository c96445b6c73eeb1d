package textgen

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/svsu-dev/samadhan/internal/config"
)

func TestFromConfig_UnknownProvider(t *testing.T) {
	_, err := FromConfig(context.Background(), config.GeneratorConfig{Provider: "watson"})
	assert.ErrorContains(t, err, "unknown generator provider")
}

func TestFromConfig_GeminiRequiresAPIKey(t *testing.T) {
	_, err := FromConfig(context.Background(), config.GeneratorConfig{Provider: "gemini"})
	assert.ErrorContains(t, err, "API key is required")
}
