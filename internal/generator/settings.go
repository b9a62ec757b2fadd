package generator

import (
	"encoding/json"
	"garage-site/internal/config"
	"garage-site/internal/data"
	"garage-site/internal/errs"
	"strings"
)

// Settings reads and writes the generator options document.
type Settings struct {
	store    *data.Store
	defaults config.GeneratorConfig
}

// NewSettings creates a Settings backed by the store. Values from cfg are used
// when the document leaves them empty.
func NewSettings(store *data.Store, cfg config.GeneratorConfig) *Settings {
	return &Settings{store: store, defaults: cfg}
}

// Load returns the effective options.
func (s *Settings) Load() (data.GeneratorOptions, error) {
	opts, err := data.ReadObject[data.GeneratorOptions](s.store, data.GeneratorSettings)
	if err != nil {
		return opts, err
	}
	if opts.APIKey == "" {
		opts.APIKey = s.defaults.APIKey
	}
	if opts.Model == "" {
		opts.Model = s.defaults.Model
	}
	return opts, nil
}

// Masked returns the stored options with the API key hidden.
func (s *Settings) Masked() (data.GeneratorOptions, error) {
	opts, err := s.Load()
	if err != nil {
		return opts, err
	}
	opts.APIKey = MaskKey(opts.APIKey)
	return opts, nil
}

// Update shallow-merges patch into the stored document. A masked key sent
// back unchanged keeps the stored key.
func (s *Settings) Update(patch json.RawMessage) (data.GeneratorOptions, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(patch, &fields); err != nil {
		return data.GeneratorOptions{}, errs.Validation("payload must be a JSON object")
	}

	current, err := data.ReadObject[data.GeneratorOptions](s.store, data.GeneratorSettings)
	if err != nil {
		return current, err
	}
	next := current
	if err := json.Unmarshal(patch, &next); err != nil {
		return current, errs.Validation("payload has fields of the wrong type")
	}
	if strings.Contains(next.APIKey, "*") {
		next.APIKey = current.APIKey
	}

	if err := data.WriteObject(s.store, data.GeneratorSettings, next); err != nil {
		return current, err
	}
	next.APIKey = MaskKey(next.APIKey)
	return next, nil
}

// MaskKey keeps the last four characters of a key.
func MaskKey(key string) string {
	if key == "" {
		return ""
	}
	if len(key) <= 4 {
		return "****"
	}
	return strings.Repeat("*", len(key)-4) + key[len(key)-4:]
}
