package factory

import (
	"fmt"
	"time"

	"apin-chat/internal/constant"
	"apin-chat/pkg/llm"
	"apin-chat/pkg/llm/huggingface"
	"apin-chat/pkg/llm/ollama"
)

type ProviderConfig struct {
	Provider       string
	Model          string
	BaseURL        string
	APIKey         string
	AutoPull       bool
	RequestTimeout time.Duration
}

func NewLLMProvider(cfg ProviderConfig) (llm.LLMProvider, error) {
	switch cfg.Provider {
	case "ollama":
		baseURL := cfg.BaseURL
		if baseURL == "" {
			baseURL = constant.OllamaDefaultBaseURL
		}
		model := cfg.Model
		if model == "" {
			model = constant.OllamaDefaultModel
		}
		p := ollama.NewOllamaProvider(baseURL, model)
		p.AutoPull = cfg.AutoPull
		if cfg.RequestTimeout > 0 {
			p.Client.Timeout = cfg.RequestTimeout
		}
		return p, nil
	case "huggingface":
		if cfg.Model == "" {
			return nil, fmt.Errorf("huggingface provider needs a model name")
		}
		p := huggingface.NewHuggingFaceProvider(cfg.APIKey, cfg.BaseURL, cfg.Model)
		if cfg.RequestTimeout > 0 {
			p.Client.Timeout = cfg.RequestTimeout
		}
		return p, nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", cfg.Provider)
	}
}
