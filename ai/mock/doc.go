// Package mock provides test doubles for the ai package interfaces.
//
// The mocks produce deterministic output by default and support behavior
// injection through exported function fields, so tests can simulate
// failures, slow calls, or specific model responses without a live service.
package mock
