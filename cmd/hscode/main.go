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


package main

import (
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/urfave/cli/v2"

	"github.com/poiesic/hscode"
	"github.com/poiesic/hscode/ai"
	"github.com/poiesic/hscode/catalog"
	"github.com/poiesic/hscode/core"
	"github.com/poiesic/hscode/recommend"
)

// envConfig carries environment defaults; command-line flags override them.
type envConfig struct {
	Primary        string        `env:"HSCODE_PRIMARY_CSV"`
	StandardNames  string        `env:"HSCODE_STANDARD_CSV"`
	Notes          string        `env:"HSCODE_NOTES_CSV"`
	CacheDir       string        `env:"HSCODE_CACHE_DIR" envDefault:".hscode-cache"`
	EmbeddingHost  string        `env:"HSCODE_EMBEDDING_HOST" envDefault:"http://localhost:11434/v1"`
	AdvisorHost    string        `env:"HSCODE_ADVISOR_HOST" envDefault:"http://localhost:11434/v1"`
	EmbeddingModel string        `env:"HSCODE_EMBEDDING_MODEL" envDefault:"embeddinggemma"`
	AdvisorModel   string        `env:"HSCODE_ADVISOR_MODEL" envDefault:"qwen2.5:3b"`
	LLMTimeout     time.Duration `env:"HSCODE_LLM_TIMEOUT" envDefault:"20s"`
}

func main() {
	var cfg envConfig
	if err := env.Parse(&cfg); err != nil {
		log.Fatalf("parsing environment: %v", err)
	}

	app := &cli.App{
		Name:  "hscode",
		Usage: "HS code recommendation engine for Korean tariff classification",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
			&cli.StringFlag{
				Name:  "primary",
				Usage: "Path to the primary tariff classification CSV",
				Value: cfg.Primary,
			},
			&cli.StringFlag{
				Name:  "standard",
				Usage: "Path to the standard product-name CSV",
				Value: cfg.StandardNames,
			},
			&cli.StringFlag{
				Name:  "notes",
				Usage: "Path to the tariff-notes CSV",
				Value: cfg.Notes,
			},
			&cli.StringFlag{
				Name:  "cache-dir",
				Usage: "Directory for cached index artifacts",
				Value: cfg.CacheDir,
			},
			&cli.StringFlag{
				Name:  "embedding-host",
				Usage: "Embedding service host URL",
				Value: cfg.EmbeddingHost,
			},
			&cli.StringFlag{
				Name:  "advisor-host",
				Usage: "Advisor (chat) service host URL",
				Value: cfg.AdvisorHost,
			},
			&cli.StringFlag{
				Name:  "embedding-model",
				Usage: "Embedding model name",
				Value: cfg.EmbeddingModel,
			},
			&cli.StringFlag{
				Name:  "advisor-model",
				Usage: "Advisor model name",
				Value: cfg.AdvisorModel,
			},
			&cli.DurationFlag{
				Name:  "llm-timeout",
				Usage: "Per-call timeout for LLM services",
				Value: cfg.LLMTimeout,
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:      "query",
				Usage:     "Recommend HS codes for a product description",
				ArgsUsage: "<description>",
				Action:    queryCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "material",
						Usage: "Product material hint",
					},
					&cli.StringFlag{
						Name:  "usage",
						Usage: "Product usage hint",
					},
					&cli.IntFlag{
						Name:    "top-k",
						Aliases: []string{"k"},
						Usage:   "Number of recommendations to return",
						Value:   5,
					},
					&cli.BoolFlag{
						Name:  "llm",
						Usage: "Blend an LLM rating into the results",
					},
					&cli.BoolFlag{
						Name:  "ultimate",
						Usage: "Run the full five-stage pipeline",
					},
				},
			},
			{
				Name:   "rebuild",
				Usage:  "Rebuild the index from source files",
				Action: rebuildCommand,
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "force",
						Usage: "Rebuild even when the cached snapshot is valid",
					},
				},
			},
			{
				Name:   "clear",
				Usage:  "Delete all cached index artifacts",
				Action: clearCommand,
			},
			{
				Name:   "info",
				Usage:  "Show cached snapshot metadata",
				Action: infoCommand,
			},
			{
				Name:   "status",
				Usage:  "Show index and cache health",
				Action: statusCommand,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func openEngine(c *cli.Context) (*hscode.Engine, error) {
	sources := catalog.Sources{
		Primary:       c.String("primary"),
		StandardNames: c.String("standard"),
		Notes:         c.String("notes"),
	}
	if sources.Primary == "" {
		return nil, fmt.Errorf("no primary source file: set --primary or HSCODE_PRIMARY_CSV")
	}

	aiConfig := ai.NewConfig(
		ai.WithEmbeddingHost(c.String("embedding-host")),
		ai.WithAdvisorHost(c.String("advisor-host")),
		ai.WithEmbeddingModel(c.String("embedding-model")),
		ai.WithAdvisorModel(c.String("advisor-model")),
		ai.WithTimeout(c.Duration("llm-timeout")),
	)

	return hscode.NewEngine(sources, c.String("cache-dir"), hscode.WithAIConfig(aiConfig))
}

func queryCommand(c *cli.Context) error {
	description := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
	if description == "" {
		return fmt.Errorf("usage: hscode query <description>")
	}

	engine, err := openEngine(c)
	if err != nil {
		return err
	}
	defer engine.Close()

	req := recommend.Request{
		Description: description,
		Material:    c.String("material"),
		Usage:       c.String("usage"),
		TopK:        c.Int("top-k"),
		UseLLM:      c.Bool("llm"),
	}

	result, err := runQuery(c, engine, req)
	if err != nil {
		return err
	}

	fmt.Printf("query: %s\n", result.Query)
	if result.ExpandedQuery != "" && result.ExpandedQuery != result.Query {
		fmt.Printf("expanded: %s\n", result.ExpandedQuery)
	}
	if len(result.StagesDegraded) > 0 {
		fmt.Printf("degraded stages: %s\n", strings.Join(result.StagesDegraded, ", "))
	}
	fmt.Printf("method: %s, candidates: %d, elapsed: %s\n\n", result.Method, result.TotalCandidates, result.Elapsed.Round(time.Millisecond))

	for i, cand := range result.Candidates {
		name := cand.NameKo
		if name == "" {
			name = cand.NameEn
		}
		fmt.Printf("%2d. %s  %s\n", i+1, cand.Code, name)
		fmt.Printf("    confidence %.2f  match %s  source %s\n", cand.Confidence, cand.MatchType, cand.Provenance)
		fmt.Printf("    %s\n", cand.Justification)
	}
	return nil
}

func runQuery(c *cli.Context, engine *hscode.Engine, req recommend.Request) (*core.RecommendationBatch, error) {
	if c.Bool("ultimate") {
		return engine.RecommendUltimate(c.Context, req)
	}
	return engine.Recommend(c.Context, req)
}

func rebuildCommand(c *cli.Context) error {
	engine, err := openEngine(c)
	if err != nil {
		return err
	}
	defer engine.Close()

	if err := engine.Rebuild(c.Context, c.Bool("force")); err != nil {
		return err
	}
	st := engine.Status()
	fmt.Printf("index ready: %d rows, vector dim %d\n", st.Rows, st.VectorDim)
	return nil
}

func clearCommand(c *cli.Context) error {
	engine, err := openEngine(c)
	if err != nil {
		return err
	}
	defer engine.Close()

	deleted, err := engine.ClearCache()
	if err != nil {
		return err
	}
	fmt.Printf("deleted %d cached artifacts\n", deleted)
	return nil
}

func infoCommand(c *cli.Context) error {
	engine, err := openEngine(c)
	if err != nil {
		return err
	}
	defer engine.Close()

	meta, err := engine.Info()
	if err != nil {
		return err
	}
	fmt.Printf("created:    %s\n", meta.CreatedAt.Format(time.RFC3339))
	fmt.Printf("model:      %s\n", meta.ModelID)
	fmt.Printf("rows:       %d\n", meta.RowCount)
	fmt.Printf("vector dim: %d\n", meta.VectorDim)
	fmt.Printf("hash:       %s\n", meta.Hash)
	return nil
}

func statusCommand(c *cli.Context) error {
	engine, err := openEngine(c)
	if err != nil {
		return err
	}
	defer engine.Close()

	st := engine.Status()
	fmt.Printf("cache valid: %v\n", st.CacheValid)
	fmt.Printf("index ready: %v\n", st.IndexReady)
	if st.IndexReady {
		fmt.Printf("rows:        %d\n", st.Rows)
		fmt.Printf("vector dim:  %d\n", st.VectorDim)
	}
	return nil
}

func setupLogger(c *cli.Context) error {
	levelStr := strings.ToLower(c.String("log-level"))

	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
