// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package openai

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/poiesic/hscode/ai"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// Advisor implements ai.Advisor using OpenAI-compatible chat APIs.
// Responses are decoded strictly; any malformed reply is returned as an
// error so the caller can skip the pipeline stage.
type Advisor struct {
	client  llms.Model
	timeout timeoutFunc
	logger  *slog.Logger
}

// timeoutFunc wraps a context with the configured per-call deadline.
type timeoutFunc func(ctx context.Context) (context.Context, context.CancelFunc)

func boundedTimeout(d time.Duration) timeoutFunc {
	return func(ctx context.Context) (context.Context, context.CancelFunc) {
		return context.WithTimeout(ctx, d)
	}
}

// newAdvisor is an internal constructor that returns the concrete type.
func newAdvisor(config *ai.Config) (*Advisor, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	client, err := openai.New(
		openai.WithBaseURL(config.AdvisorHost),
		openai.WithToken("none"),
		openai.WithModel(config.AdvisorModel),
	)
	if err != nil {
		return nil, err
	}

	return &Advisor{
		client:  client,
		timeout: boundedTimeout(config.Timeout),
		logger:  slog.Default().With("component", "openai-advisor"),
	}, nil
}

// NewAdvisor creates a new advisor using the provided configuration.
//
// Returns ai.Advisor interface to enforce abstraction.
func NewAdvisor(config *ai.Config) (ai.Advisor, error) {
	return newAdvisor(config)
}

// ProposeCodes asks the model to independently propose classification codes.
// No retrieval context is supplied; the proposals reflect the model's own
// judgment only.
func (a *Advisor) ProposeCodes(ctx context.Context, description, material, usage string) ([]ai.CodeProposal, error) {
	raw, err := a.generate(ctx, proposalSystemPrompt, buildProposalPrompt(description, material, usage))
	if err != nil {
		return nil, err
	}

	parsed := decodeProposals(raw)
	if !parsed.OK {
		a.logger.Warn("proposal response rejected", "reason", parsed.Reason)
		return nil, fmt.Errorf("proposal response rejected: %s", parsed.Reason)
	}
	return parsed.Proposals, nil
}

// RankCandidates asks the model to score the given candidates from 1 to 10.
func (a *Advisor) RankCandidates(ctx context.Context, description string, candidates []ai.RankingInput) ([]ai.CodeRanking, error) {
	if len(candidates) == 0 {
		return nil, nil
	}
	raw, err := a.generate(ctx, rankingSystemPrompt, buildRankingPrompt(description, candidates))
	if err != nil {
		return nil, err
	}

	parsed := decodeRankings(raw)
	if !parsed.OK {
		a.logger.Warn("ranking response rejected", "reason", parsed.Reason)
		return nil, fmt.Errorf("ranking response rejected: %s", parsed.Reason)
	}
	return parsed.Rankings, nil
}

// generate performs one bounded chat completion in JSON mode.
// There is no retry: on timeout or error the stage is skipped by the caller
// to bound total pipeline latency.
func (a *Advisor) generate(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	ctx, cancel := a.timeout(ctx)
	defer cancel()

	content := []llms.MessageContent{
		{
			Role:  llms.ChatMessageTypeSystem,
			Parts: []llms.ContentPart{llms.TextPart(systemPrompt)},
		},
		{
			Role:  llms.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{llms.TextPart(userPrompt)},
		},
	}

	response, err := a.client.GenerateContent(ctx, content, llms.WithTemperature(0.0), llms.WithJSONMode())
	if err != nil {
		a.logger.Error("advisor call failed", "err", err)
		return "", err
	}
	if len(response.Choices) < 1 {
		return "", fmt.Errorf("no choices returned from model")
	}
	return response.Choices[0].Content, nil
}
