package server

import (
	"strings"

	"github.com/perhapsishould/contract-processor/internal/config"
	"github.com/perhapsishould/contract-processor/internal/core/publish"
	"github.com/perhapsishould/contract-processor/internal/core/structured"
	"github.com/rs/zerolog/log"
)

// Provider mode is decided once here, at wiring time, and logged. "auto"
// picks the real provider only when usable credentials are configured.

func buildStructuredExtractor(cfg config.StructuredConfig) structured.Extractor {
	mode := cfg.Mode
	if mode == "auto" {
		if placeholderCredential(cfg.APIKey) {
			mode = "demo"
		} else {
			mode = "openai"
		}
	}

	switch mode {
	case "openai":
		log.Info().Str("mode", mode).Str("model", cfg.Model).Msg("structured extraction provider selected")
		return structured.NewOpenAIExtractor(structured.OpenAIConfig{
			APIKey:      cfg.APIKey,
			BaseURL:     cfg.BaseURL,
			Model:       cfg.Model,
			Temperature: cfg.Temperature,
			Timeout:     config.ParseTimeout(cfg.Timeout, 0),
		})
	default:
		log.Info().Str("mode", "demo").Msg("structured extraction provider selected")
		return structured.NewDemoExtractor()
	}
}

func buildPublisher(cfg config.PublishingConfig) publish.Publisher {
	mode := cfg.Mode
	if mode == "auto" {
		if cfg.BaseURL == "" || placeholderCredential(cfg.Token) {
			mode = "demo"
		} else {
			mode = "wiki"
		}
	}

	switch mode {
	case "wiki":
		log.Info().Str("mode", mode).Str("base_url", cfg.BaseURL).Msg("publishing provider selected")
		return publish.NewWikiPublisher(publish.WikiConfig{
			BaseURL:      cfg.BaseURL,
			Token:        cfg.Token,
			DefaultSpace: cfg.DefaultSpace,
			Timeout:      config.ParseTimeout(cfg.Timeout, 0),
		})
	default:
		log.Info().Str("mode", "demo").Msg("publishing provider selected")
		return publish.NewDemoPublisher(cfg.DefaultSpace)
	}
}

func placeholderCredential(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	switch {
	case s == "", s == "changeme", s == "your-api-key", s == "demo":
		return true
	case strings.Contains(s, "placeholder"), strings.Contains(s, "xxx"):
		return true
	}
	return false
}
