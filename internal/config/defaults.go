package config

import (
	"github.com/knadh/koanf/v2"
)

func loadDefaults(k *koanf.Koanf) error {
	defaults := map[string]any{
		"server.host": "0.0.0.0",
		"server.port": 8080,

		"upload.dir":      "/tmp/contract-processor/uploads",
		"upload.max_size": int64(25 << 20),

		"extraction.pdftotext": "pdftotext",
		"extraction.timeout":   "60s",

		"structured.mode":        "auto",
		"structured.base_url":    "https://api.openai.com/v1",
		"structured.model":       "gpt-4o-mini",
		"structured.temperature": 0.1,
		"structured.timeout":     "45s",

		"publishing.mode":          "auto",
		"publishing.default_space": "contracts",
		"publishing.timeout":       "30s",

		"logging.level":  "info",
		"logging.format": "pretty",
	}

	for key, val := range defaults {
		k.Set(key, val)
	}
	return nil
}
