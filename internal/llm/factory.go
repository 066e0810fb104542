package llm

import (
	"fmt"
	"strings"

	"github.com/matzpen-project/matzpen/internal/model"
)

// NewProvider creates a provider from configuration. An empty provider
// name means observations are disabled; callers get (nil, nil) and
// skip the layer entirely.
func NewProvider(cfg model.LLMConfig) (Provider, error) {
	switch strings.ToLower(cfg.Provider) {
	case "openai":
		return NewOpenAIProvider(cfg)
	case "":
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown LLM provider: %s (supported: openai)", cfg.Provider)
	}
}
