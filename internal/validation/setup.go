// Movie Agent Demo - Web front-end for a movie recommendation agent
// Copyright 2026 abzanganeh
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/abzanganeh/movie-agent-demo

package validation

import "errors"

// Supported reasoning providers.
const (
	ProviderGroq   = "groq"
	ProviderOpenAI = "openai"
)

// Setup data keys.
const (
	KeyLLMProvider  = "llm_provider"
	KeyGroqAPIKey   = "groq_api_key"
	KeyOpenAIAPIKey = "openai_api_key"
)

// Reasons returned by ValidateSetup.
const (
	MsgProviderRequired     = "LLM provider is required"
	MsgGroqKeyRequired      = "Groq API key is required when using Groq"
	MsgOpenAIKeyRequired    = "OpenAI API key is required when using OpenAI"
	MsgEmbeddingKeyRequired = "OpenAI API key is required for embeddings"
	MsgOpenAIKeyFormat      = "OpenAI API key format appears invalid (should start with 'sk-')"
	MsgGroqKeyFormat        = "Groq API key format appears invalid (should start with 'gsk_')"
)

// ErrSetupInvalid is matched by every *SetupError.
var ErrSetupInvalid = errors.New("setup data invalid")

// SetupError carries the first failed setup rule.
type SetupError struct {
	Reason string
}

func (e *SetupError) Error() string { return e.Reason }

// Is makes errors.Is(err, ErrSetupInvalid) hold.
func (e *SetupError) Is(target error) bool { return target == ErrSetupInvalid }

// ValidateSetup checks first-run setup data. Rules run in order and the
// first failure is reported:
//
//  1. llm_provider is set
//  2. groq provider needs groq_api_key
//  3. openai provider needs openai_api_key
//  4. openai_api_key is set regardless of provider (embeddings)
//  5. openai_api_key starts with "sk-"
//  6. groq_api_key, when set, starts with "gsk_"
//
// A value counts as set when it is non-nil and not a zero value ("", false,
// 0). The prefix checks are a format hint, not a check that the key works.
func ValidateSetup(data map[string]any) (bool, string) {
	provider := data[KeyLLMProvider]
	if !isSet(provider) {
		return false, MsgProviderRequired
	}

	groqKey := data[KeyGroqAPIKey]
	openaiKey := data[KeyOpenAIAPIKey]

	if provider == ProviderGroq && !isSet(groqKey) {
		return false, MsgGroqKeyRequired
	}
	if provider == ProviderOpenAI && !isSet(openaiKey) {
		return false, MsgOpenAIKeyRequired
	}
	if !isSet(openaiKey) {
		return false, MsgEmbeddingKeyRequired
	}
	if !hasPrefix(openaiKey, "sk-") {
		return false, MsgOpenAIKeyFormat
	}
	if isSet(groqKey) && !hasPrefix(groqKey, "gsk_") {
		return false, MsgGroqKeyFormat
	}
	return true, ""
}

// ValidateSetupData is ValidateSetup in error form: nil or *SetupError.
func ValidateSetupData(data map[string]any) error {
	if ok, reason := ValidateSetup(data); !ok {
		return &SetupError{Reason: reason}
	}
	return nil
}

func isSet(v any) bool {
	return GetValidator().Var(v, "required") == nil
}

func hasPrefix(v any, prefix string) bool {
	s, ok := v.(string)
	if !ok {
		return false
	}
	return GetValidator().Var(s, "startswith="+prefix) == nil
}
