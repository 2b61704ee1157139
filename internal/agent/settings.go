// Movie Agent Demo - Web front-end for a movie recommendation agent
// Copyright 2026 abzanganeh
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/abzanganeh/movie-agent-demo

package agent

import (
	"fmt"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/abzanganeh/movie-agent-demo/internal/logging"
	"github.com/abzanganeh/movie-agent-demo/internal/secrets"
	"github.com/abzanganeh/movie-agent-demo/internal/validation"
)

// Defaults applied to keys missing from the stored configuration.
const (
	DefaultLLMProvider    = validation.ProviderOpenAI
	DefaultLLMModel       = "gpt-4o-mini"
	DefaultMemoryMaxTurns = 10
)

// Settings is the typed view of the stored configuration that the agent
// service is initialized from.
type Settings struct {
	LLMProvider    string `json:"llm_provider"`
	LLMModel       string `json:"llm_model"`
	EnableVision   bool   `json:"enable_vision"`
	EnableMemory   bool   `json:"enable_memory"`
	MemoryMaxTurns int    `json:"memory_max_turns"`
	FAISSIndexPath string `json:"faiss_index_path,omitempty"`

	GroqAPIKey      string `json:"groq_api_key,omitempty"`
	OpenAIAPIKey    string `json:"openai_api_key,omitempty"`
	OpenAILLMAPIKey string `json:"openai_llm_api_key,omitempty"`
}

// DefaultSettings returns the settings used for an empty configuration.
func DefaultSettings() Settings {
	return Settings{
		LLMProvider:    DefaultLLMProvider,
		LLMModel:       DefaultLLMModel,
		EnableVision:   true,
		EnableMemory:   true,
		MemoryMaxTurns: DefaultMemoryMaxTurns,
	}
}

// FromConfiguration converts a stored configuration into Settings. Keys the
// mapping does not carry (or carries as null) keep their defaults; unknown
// keys are ignored. A value of the wrong type is an error.
func FromConfiguration(cfg secrets.Settings) (Settings, error) {
	s := DefaultSettings()
	if len(cfg) == 0 {
		return s, nil
	}

	raw, err := json.Marshal(map[string]any(cfg))
	if err != nil {
		return s, fmt.Errorf("encode configuration: %w", err)
	}
	if err := json.Unmarshal(raw, &s); err != nil {
		return DefaultSettings(), fmt.Errorf("invalid agent settings: %w", err)
	}
	return s, nil
}

// Credentials are the API keys handed to the agent service.
type Credentials struct {
	LLMAPIKey       string
	EmbeddingAPIKey string
}

// ResolveCredentials picks the LLM key for the configured provider. Groq uses
// groq_api_key; OpenAI prefers a dedicated openai_llm_api_key and falls back
// to openai_api_key. Embeddings always use openai_api_key.
func ResolveCredentials(s Settings) Credentials {
	c := Credentials{EmbeddingAPIKey: s.OpenAIAPIKey}
	switch s.LLMProvider {
	case validation.ProviderGroq:
		c.LLMAPIKey = s.GroqAPIKey
	case validation.ProviderOpenAI:
		c.LLMAPIKey = s.OpenAILLMAPIKey
		if c.LLMAPIKey == "" {
			c.LLMAPIKey = s.OpenAIAPIKey
		}
	}
	return c
}

// MarshalZerologObject logs the settings with every key masked.
func (s Settings) MarshalZerologObject(e *zerolog.Event) {
	e.Str("llm_provider", s.LLMProvider).
		Str("llm_model", s.LLMModel).
		Bool("enable_vision", s.EnableVision).
		Bool("enable_memory", s.EnableMemory).
		Int("memory_max_turns", s.MemoryMaxTurns)
	if s.GroqAPIKey != "" {
		e.Str("groq_api_key", logging.MaskSecret(s.GroqAPIKey))
	}
	if s.OpenAIAPIKey != "" {
		e.Str("openai_api_key", logging.MaskSecret(s.OpenAIAPIKey))
	}
	if s.OpenAILLMAPIKey != "" {
		e.Str("openai_llm_api_key", logging.MaskSecret(s.OpenAILLMAPIKey))
	}
}
