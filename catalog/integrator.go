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


package catalog

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/poiesic/hscode/core"
)

// Sources names the tabular source files feeding the integrated catalog.
// Primary is required; the two secondaries are optional.
type Sources struct {
	Primary       string
	StandardNames string
	Notes         string
}

// Paths returns the configured, non-empty source paths in a fixed order.
// The cache layer hashes these to detect staleness.
func (s Sources) Paths() []string {
	paths := make([]string, 0, 3)
	for _, p := range []string{s.Primary, s.StandardNames, s.Notes} {
		if p != "" {
			paths = append(paths, p)
		}
	}
	return paths
}

// Field weights for the combined bag-of-words text. The most specific
// naming field is repeated most often so it dominates lexical scoring.
const (
	weightNameKo      = 3
	weightNameEn      = 2
	weightDescription = 1
)

// Integrator merges the heterogeneous tabular sources into one canonical,
// code-keyed catalog. It performs no disk writes.
type Integrator struct {
	sources Sources
	columns ColumnCandidates
	now     func() time.Time
	logger  *slog.Logger
}

// Option configures an Integrator.
type Option func(*Integrator)

// WithLogger sets a custom logger. Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(i *Integrator) {
		if logger == nil {
			logger = slog.Default()
		}
		i.logger = logger
	}
}

// WithColumnCandidates overrides the header-detection candidate lists.
func WithColumnCandidates(c ColumnCandidates) Option {
	return func(i *Integrator) {
		i.columns = c
	}
}

// WithClock overrides the time source used for validity-window filtering.
// Intended for tests.
func WithClock(now func() time.Time) Option {
	return func(i *Integrator) {
		if now != nil {
			i.now = now
		}
	}
}

// NewIntegrator creates an integrator over the given sources.
func NewIntegrator(sources Sources, opts ...Option) *Integrator {
	i := &Integrator{
		sources: sources,
		columns: defaultColumnCandidates(),
		now:     time.Now,
		logger:  slog.Default().With("component", "catalog-integrator"),
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Integrate loads all sources and produces the integrated catalog.
// A missing primary source is fatal; missing secondaries degrade the
// feature set and are logged.
func (i *Integrator) Integrate() (*core.Catalog, error) {
	records, err := i.LoadPrimary()
	if err != nil {
		return nil, err
	}

	cat := &core.Catalog{
		Records:             records,
		StandardNames:       map[string]string{},
		ChapterDescriptions: chapterDescriptions(),
	}

	byKey := make(map[string]int, len(records))
	for idx := range cat.Records {
		byKey[cat.Records[idx].Key] = idx
	}

	stdRows, err := i.LoadStandardNames()
	if err != nil {
		i.logger.Warn("standard-name source unavailable, continuing without it", "path", i.sources.StandardNames, "err", err)
	}
	matched := 0
	for _, row := range stdRows {
		cat.StandardNames[core.NormalizeText(row.Name)] = row.Key
		idx, ok := byKey[row.Key]
		if !ok {
			continue
		}
		rec := &cat.Records[idx]
		rec.FinalText = appendText(rec.FinalText, row.Name)
		rec.Provenance |= core.SourceStandard
		matched++
	}
	if len(stdRows) > 0 {
		i.logger.Info("merged standard names", "rows", len(stdRows), "matched", matched)
	}

	noteRows, err := i.LoadNotes()
	if err != nil {
		i.logger.Warn("notes source unavailable, continuing without it", "path", i.sources.Notes, "err", err)
	}
	matched = 0
	for _, row := range noteRows {
		idx, ok := byKey[row.Key]
		if !ok {
			continue
		}
		rec := &cat.Records[idx]
		rec.FinalText = appendText(rec.FinalText, row.Text)
		rec.Provenance |= core.SourceNotes
		matched++
	}
	if len(noteRows) > 0 {
		i.logger.Info("merged tariff notes", "rows", len(noteRows), "matched", matched)
	}

	// Backfill rows whose text is still empty: chapter description first,
	// then the key itself.
	backfilled := 0
	for idx := range cat.Records {
		rec := &cat.Records[idx]
		if strings.TrimSpace(rec.FinalText) != "" {
			continue
		}
		if desc, ok := cat.ChapterDescriptions[rec.Chapter]; ok && desc != "" {
			rec.FinalText = desc
		} else {
			rec.FinalText = rec.Key
		}
		backfilled++
	}
	if backfilled > 0 {
		i.logger.Info("backfilled rows with empty text", "count", backfilled)
	}

	i.logger.Info("catalog integrated",
		"rows", len(cat.Records),
		"standardNames", len(cat.StandardNames))
	return cat, nil
}

// LoadPrimary reads the primary classification table. The code column and
// descriptive fields are located by flexible header matching; codes are
// normalized to 10-digit keys; the combined text repeats each field by its
// weight to simulate lexical importance.
func (i *Integrator) LoadPrimary() ([]core.ClassificationRecord, error) {
	if i.sources.Primary == "" {
		return nil, fmt.Errorf("%w: primary source not configured", core.ErrDataIntegrity)
	}
	if _, err := os.Stat(i.sources.Primary); err != nil {
		return nil, fmt.Errorf("%w: primary source %s: %v", core.ErrDataIntegrity, i.sources.Primary, err)
	}

	headers, rows, err := readTable(i.sources.Primary)
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s: %v", core.ErrDataIntegrity, i.sources.Primary, err)
	}

	codeCol := findColumn(headers, i.columns.Code)
	if codeCol < 0 {
		return nil, fmt.Errorf("%w: no classification-code column in %s (headers: %v)",
			core.ErrDataIntegrity, i.sources.Primary, headers)
	}
	nameKoCol := findColumn(headers, i.columns.NameKo)
	nameEnCol := findColumn(headers, i.columns.NameEn)
	descCol := findColumn(headers, i.columns.Description)
	if nameKoCol < 0 && nameEnCol < 0 && descCol < 0 {
		i.logger.Warn("no descriptive columns detected in primary source", "headers", headers)
	}

	seen := make(map[string]bool, len(rows))
	records := make([]core.ClassificationRecord, 0, len(rows))
	for _, row := range rows {
		key := core.NormalizeCode(cell(row, codeCol))
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true

		rec := core.ClassificationRecord{
			Key:         key,
			NameKo:      strings.TrimSpace(cell(row, nameKoCol)),
			NameEn:      strings.TrimSpace(cell(row, nameEnCol)),
			Description: strings.TrimSpace(cell(row, descCol)),
			Provenance:  core.SourcePrimary,
		}
		rec.RestorePrefixes()
		rec.FinalText = weightedText([]weightedField{
			{rec.NameKo, weightNameKo},
			{rec.NameEn, weightNameEn},
			{rec.Description, weightDescription},
		})
		records = append(records, rec)
	}

	i.logger.Info("primary source loaded", "path", i.sources.Primary, "rows", len(records))
	return records, nil
}

type standardRow struct {
	Key  string
	Name string
}

// LoadStandardNames reads the standard product-name table, filtering rows by
// their validity window when the table declares one.
func (i *Integrator) LoadStandardNames() ([]standardRow, error) {
	if i.sources.StandardNames == "" {
		return nil, nil
	}
	headers, rows, err := readTable(i.sources.StandardNames)
	if err != nil {
		return nil, err
	}
	codeCol := findColumn(headers, i.columns.Code)
	nameCol := findColumn(headers, i.columns.NameKo)
	if codeCol < 0 || nameCol < 0 {
		return nil, fmt.Errorf("standard-name table %s lacks code/name columns", i.sources.StandardNames)
	}
	fromCol := findColumn(headers, i.columns.ValidFrom)
	toCol := findColumn(headers, i.columns.ValidTo)

	out := make([]standardRow, 0, len(rows))
	for _, row := range rows {
		if !i.withinValidity(cell(row, fromCol), cell(row, toCol)) {
			continue
		}
		key := core.NormalizeCode(cell(row, codeCol))
		name := strings.TrimSpace(cell(row, nameCol))
		if key == "" || name == "" {
			continue
		}
		out = append(out, standardRow{Key: key, Name: name})
	}
	return out, nil
}

type noteRow struct {
	Key  string
	Text string
}

// LoadNotes reads the supplementary tariff-notes table.
func (i *Integrator) LoadNotes() ([]noteRow, error) {
	if i.sources.Notes == "" {
		return nil, nil
	}
	headers, rows, err := readTable(i.sources.Notes)
	if err != nil {
		return nil, err
	}
	codeCol := findColumn(headers, i.columns.Code)
	textCol := findColumn(headers, i.columns.Description)
	if textCol < 0 {
		textCol = findColumn(headers, i.columns.NameKo)
	}
	if codeCol < 0 || textCol < 0 {
		return nil, fmt.Errorf("notes table %s lacks code/text columns", i.sources.Notes)
	}
	fromCol := findColumn(headers, i.columns.ValidFrom)
	toCol := findColumn(headers, i.columns.ValidTo)

	out := make([]noteRow, 0, len(rows))
	for _, row := range rows {
		if !i.withinValidity(cell(row, fromCol), cell(row, toCol)) {
			continue
		}
		key := core.NormalizeCode(cell(row, codeCol))
		text := strings.TrimSpace(cell(row, textCol))
		if key == "" || text == "" {
			continue
		}
		out = append(out, noteRow{Key: key, Text: text})
	}
	return out, nil
}

// withinValidity keeps rows whose [from, to] window contains now.
// Rows without parsable dates are kept.
func (i *Integrator) withinValidity(from, to string) bool {
	now := i.now()
	if t, ok := parseDate(from); ok && now.Before(t) {
		return false
	}
	if t, ok := parseDate(to); ok && now.After(t.Add(24*time.Hour)) {
		return false
	}
	return true
}

var dateLayouts = []string{"2006-01-02", "20060102", "2006/01/02"}

func parseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

type weightedField struct {
	value  string
	weight int
}

// weightedText concatenates each field repeated weight times.
func weightedText(fields []weightedField) string {
	parts := make([]string, 0, 8)
	for _, f := range fields {
		v := strings.TrimSpace(f.value)
		if v == "" {
			continue
		}
		for n := 0; n < f.weight; n++ {
			parts = append(parts, v)
		}
	}
	return strings.Join(parts, " ")
}

func appendText(base, extra string) string {
	extra = strings.TrimSpace(extra)
	if extra == "" {
		return base
	}
	if base == "" {
		return extra
	}
	return base + " " + extra
}

func cell(row []string, col int) string {
	if col < 0 || col >= len(row) {
		return ""
	}
	return row[col]
}
