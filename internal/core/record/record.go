// Package record defines the structured contract record produced by the
// extraction stage and consumed by publishing.
package record

// Party is one contracting party named in the document.
type Party struct {
	Name string `json:"name"`
	Role string `json:"role,omitempty"`
}

// ContractRecord is the normalized shape extracted from a contract document.
type ContractRecord struct {
	Title          string   `json:"title"`
	Parties        []Party  `json:"parties"`
	EffectiveDate  string   `json:"effective_date,omitempty"`  // YYYY-MM-DD
	ExpirationDate string   `json:"expiration_date,omitempty"` // YYYY-MM-DD
	ContractValue  string   `json:"contract_value,omitempty"`  // decimal
	CurrencyCode   string   `json:"currency_code,omitempty"`   // ISO 4217
	GoverningLaw   string   `json:"governing_law,omitempty"`
	KeyTerms       []string `json:"key_terms,omitempty"`
	Summary        string   `json:"summary"`
	Confidence     float32  `json:"confidence,omitempty"` // 0..1
}

// JSONSchema returns the contract record schema (draft 2020-12 subset) as a
// generic map. It is sent to the extraction model as an output constraint and
// used locally to validate whatever comes back.
func JSONSchema() map[string]any {
	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"title": map[string]any{"type": "string", "minLength": 1},
			"parties": map[string]any{
				"type":     "array",
				"minItems": 1,
				"items": map[string]any{
					"type":                 "object",
					"additionalProperties": false,
					"properties": map[string]any{
						"name": map[string]any{"type": "string", "minLength": 1},
						"role": map[string]any{"type": "string"},
					},
					"required": []string{"name"},
				},
			},
			"effective_date":  dateProp(),
			"expiration_date": dateProp(),
			"contract_value":  map[string]any{"type": "string", "pattern": `^-?\d+(\.\d{1,2})?$`},
			"currency_code":   map[string]any{"type": "string", "minLength": 3, "maxLength": 3},
			"governing_law":   map[string]any{"type": "string"},
			"key_terms": map[string]any{
				"type":  "array",
				"items": map[string]any{"type": "string"},
			},
			"summary":    map[string]any{"type": "string", "minLength": 1},
			"confidence": map[string]any{"type": "number", "minimum": 0.0, "maximum": 1.0},
		},
		"required": []string{"title", "parties", "summary"},
	}
}

func dateProp() map[string]any {
	return map[string]any{"type": "string", "pattern": `^\d{4}-\d{2}-\d{2}$`}
}
