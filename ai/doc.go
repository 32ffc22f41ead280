// Package ai defines the interfaces and configuration for the external
// language-model services: text embedding and classification-code advisory
// (independent proposal and candidate re-ranking).
//
// Implementations live in subpackages: openai for OpenAI-compatible HTTP
// services, mock for deterministic test doubles.
package ai
