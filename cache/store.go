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


package cache

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/dgraph-io/badger/v4/options"
	"github.com/poiesic/hscode/core"
)

// LexicalState is the persisted model state of the lexical index: the fitted
// vocabulary with document frequencies plus corpus statistics. The index
// itself is rebuilt from the catalog text on load.
type LexicalState struct {
	Vocabulary map[string]int `json:"vocabulary"`
	DocCount   int            `json:"doc_count"`
	AvgDocLen  float64        `json:"avg_doc_len"`
}

// Metadata describes a persisted snapshot.
type Metadata struct {
	Hash         string    `json:"hash"`
	CreatedAt    time.Time `json:"created_at"`
	ModelID      string    `json:"model_id"`
	RowCount     int       `json:"row_count"`
	VectorDim    int       `json:"vector_dim"`
	TextField    string    `json:"text_field"`
	TextCoverage float64   `json:"text_coverage"` // fraction of rows with non-empty text
}

// textField is the expected text column of the stored catalog.
const textField = "final_text"

// Snapshot is the full set of cache artifacts: catalog, dense embeddings,
// lexical model state, mapping tables and metadata. Validity is
// all-or-nothing; a snapshot is never used partially.
type Snapshot struct {
	Catalog *core.Catalog
	Vectors [][]float32
	Lexical LexicalState
	Meta    Metadata
}

// Store persists and reloads snapshots in a Badger database under a cache
// directory. It is not safe for concurrent writers; the engine serializes
// rebuilds around it.
type Store struct {
	db       *badger.DB
	dir      string
	sources  []string
	inMemory bool
	logger   *slog.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets a custom logger. Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
	}
}

// WithInMemory opens the store without backing files. Intended for tests.
func WithInMemory() Option {
	return func(s *Store) {
		s.inMemory = true
	}
}

// badgerLoggerAdapter adapts slog.Logger to badger.Logger.
type badgerLoggerAdapter struct {
	logger *slog.Logger
}

var _ badger.Logger = (*badgerLoggerAdapter)(nil)

func (bl *badgerLoggerAdapter) Errorf(msg string, items ...any)   { bl.logger.Error(fmt.Sprintf(msg, items...)) }
func (bl *badgerLoggerAdapter) Warningf(msg string, items ...any) { bl.logger.Warn(fmt.Sprintf(msg, items...)) }
func (bl *badgerLoggerAdapter) Infof(msg string, items ...any)    { bl.logger.Debug(fmt.Sprintf(msg, items...)) }
func (bl *badgerLoggerAdapter) Debugf(msg string, items ...any)   { bl.logger.Debug(fmt.Sprintf(msg, items...)) }

// Open opens (creating if necessary) the cache store at dir. The source
// paths participate in content hashing for staleness detection.
func Open(dir string, sources []string, opts ...Option) (*Store, error) {
	s := &Store{
		dir:     dir,
		sources: sources,
		logger:  slog.Default().With("component", "cache-store"),
	}
	for _, opt := range opts {
		opt(s)
	}

	db, err := openBadger(dir, s.inMemory, s.logger)
	if err != nil {
		return nil, err
	}
	s.db = db
	return s, nil
}

func openBadger(dir string, inMemory bool, logger *slog.Logger) (*badger.DB, error) {
	var opts badger.Options
	if inMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
		opts = badger.DefaultOptions(dir)
	}
	opts.Logger = &badgerLoggerAdapter{logger: logger}
	opts.Compression = options.None
	return badger.Open(opts)
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// ComputeHash returns the current content hash over all configured source
// files and the embedding-model identifier.
func (s *Store) ComputeHash(modelID string) (string, error) {
	return computeSourceHash(s.sources, modelID)
}

// IsValid reports whether the persisted snapshot can be served: the stored
// hash must match the current sources and model, every artifact must be
// present, and the stored catalog must carry the expected text column.
// Any failing condition, including read errors, yields false.
func (s *Store) IsValid(modelID string) bool {
	meta, err := s.Info()
	if err != nil {
		s.logger.Debug("cache metadata unavailable", "err", err)
		return false
	}

	current, err := s.ComputeHash(modelID)
	if err != nil || meta.Hash != current {
		s.logger.Info("cache hash mismatch, snapshot stale", "stored", meta.Hash, "err", err)
		return false
	}
	if meta.TextField != textField || meta.TextCoverage <= 0 {
		s.logger.Warn("cached catalog lacks expected text column", "field", meta.TextField)
		return false
	}

	catCount, vecCount, artifactsOK := s.countArtifacts()
	if !artifactsOK {
		s.logger.Warn("cache artifact missing")
		return false
	}
	if catCount != meta.RowCount || vecCount != meta.RowCount {
		s.logger.Warn("cache artifact counts inconsistent",
			"meta", meta.RowCount, "catalog", catCount, "vectors", vecCount)
		return false
	}
	return true
}

// countArtifacts counts catalog and vector entries and verifies the
// singleton artifacts exist.
func (s *Store) countArtifacts() (catCount, vecCount int, ok bool) {
	ok = true
	err := s.db.View(func(txn *badger.Txn) error {
		catCount = countPrefix(txn, []byte(catalogRecordPrefix))
		vecCount = countPrefix(txn, []byte(vectorRecordPrefix))
		for _, key := range ArtifactKeys() {
			if _, err := txn.Get([]byte(key)); err != nil {
				ok = false
				return nil
			}
		}
		return nil
	})
	if err != nil {
		return 0, 0, false
	}
	return catCount, vecCount, ok
}

func countPrefix(txn *badger.Txn, prefix []byte) int {
	opts := badger.DefaultIteratorOptions
	opts.Prefix = prefix
	opts.PrefetchValues = false
	it := txn.NewIterator(opts)
	defer it.Close()
	n := 0
	for it.Rewind(); it.Valid(); it.Next() {
		n++
	}
	return n
}

// Save persists a complete snapshot, replacing any prior one.
func (s *Store) Save(snap *Snapshot) error {
	if snap == nil || snap.Catalog == nil {
		return errors.New("nil snapshot")
	}
	if err := s.db.DropAll(); err != nil {
		return err
	}

	wb := s.db.NewWriteBatch()
	defer wb.Cancel()

	for idx := range snap.Catalog.Records {
		data, err := marshalRecord(&snap.Catalog.Records[idx])
		if err != nil {
			return err
		}
		if err := wb.Set(makeIndexedKey(catalogRecordPrefix, uint32(idx)), data); err != nil {
			return err
		}
	}
	for idx, vec := range snap.Vectors {
		if err := wb.Set(makeIndexedKey(vectorRecordPrefix, uint32(idx)), marshalVector(vec)); err != nil {
			return err
		}
	}

	lexData, err := marshalJSON(snap.Lexical)
	if err != nil {
		return err
	}
	if err := wb.Set([]byte(lexicalStateKey), lexData); err != nil {
		return err
	}
	stdData, err := marshalJSON(snap.Catalog.StandardNames)
	if err != nil {
		return err
	}
	if err := wb.Set([]byte(standardNamesKey), stdData); err != nil {
		return err
	}
	chapData, err := marshalJSON(snap.Catalog.ChapterDescriptions)
	if err != nil {
		return err
	}
	if err := wb.Set([]byte(chapterDescKey), chapData); err != nil {
		return err
	}

	metaData, err := marshalJSON(snap.Meta)
	if err != nil {
		return err
	}
	if err := wb.Set([]byte(metadataKey), metaData); err != nil {
		return err
	}

	if err := wb.Flush(); err != nil {
		return err
	}
	s.logger.Info("snapshot saved",
		"rows", len(snap.Catalog.Records),
		"vectors", len(snap.Vectors),
		"hash", snap.Meta.Hash)
	return nil
}

// Load reconstructs the persisted snapshot. Rows missing the primary text
// column fall back to the configured alternatives; missing hierarchical
// prefix fields are regenerated from the key. Any read or deserialization
// failure is reported as cache corruption, never a panic.
func (s *Store) Load() (*Snapshot, error) {
	snap := &Snapshot{Catalog: &core.Catalog{
		StandardNames:       map[string]string{},
		ChapterDescriptions: map[string]string{},
	}}

	err := s.db.View(func(txn *badger.Txn) error {
		metaData, err := getValue(txn, metadataKey)
		if err != nil {
			return err
		}
		if err := unmarshalJSON(metaData, &snap.Meta, "metadata"); err != nil {
			return err
		}

		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(catalogRecordPrefix)
		it := txn.NewIterator(opts)
		for it.Rewind(); it.Valid(); it.Next() {
			var rec *core.ClassificationRecord
			err := it.Item().Value(func(val []byte) error {
				var err error
				rec, err = unmarshalRecord(val)
				return err
			})
			if err != nil {
				it.Close()
				return err
			}
			snap.Catalog.Records = append(snap.Catalog.Records, *rec)
		}
		it.Close()

		opts = badger.DefaultIteratorOptions
		opts.Prefix = []byte(vectorRecordPrefix)
		it = txn.NewIterator(opts)
		for it.Rewind(); it.Valid(); it.Next() {
			var vec []float32
			err := it.Item().Value(func(val []byte) error {
				var err error
				vec, err = unmarshalVector(val)
				return err
			})
			if err != nil {
				it.Close()
				return err
			}
			snap.Vectors = append(snap.Vectors, vec)
		}
		it.Close()

		lexData, err := getValue(txn, lexicalStateKey)
		if err != nil {
			return err
		}
		if err := unmarshalJSON(lexData, &snap.Lexical, "lexical state"); err != nil {
			return err
		}
		stdData, err := getValue(txn, standardNamesKey)
		if err != nil {
			return err
		}
		if err := unmarshalJSON(stdData, &snap.Catalog.StandardNames, "standard names"); err != nil {
			return err
		}
		chapData, err := getValue(txn, chapterDescKey)
		if err != nil {
			return err
		}
		return unmarshalJSON(chapData, &snap.Catalog.ChapterDescriptions, "chapter descriptions")
	})
	if err != nil {
		if errors.Is(err, core.ErrCacheCorruption) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", core.ErrCacheCorruption, err)
	}

	s.repairRecords(snap)
	return snap, nil
}

// repairRecords applies the text-column fallbacks and regenerates prefix
// fields on loaded rows.
func (s *Store) repairRecords(snap *Snapshot) {
	repaired := 0
	for idx := range snap.Catalog.Records {
		rec := &snap.Catalog.Records[idx]
		if rec.FinalText == "" {
			switch {
			case rec.Description != "":
				rec.FinalText = rec.Description
			case rec.NameKo != "":
				rec.FinalText = rec.NameKo
			default:
				rec.FinalText = rec.Key
			}
			repaired++
		}
		if rec.Chapter == "" || rec.Heading == "" || rec.Subheading == "" {
			rec.RestorePrefixes()
		}
	}
	if repaired > 0 {
		s.logger.Warn("loaded rows used fallback text column", "count", repaired)
	}
}

func getValue(txn *badger.Txn, key string) ([]byte, error) {
	item, err := txn.Get([]byte(key))
	if err != nil {
		return nil, fmt.Errorf("%w: artifact %s: %v", core.ErrCacheCorruption, key, err)
	}
	return item.ValueCopy(nil)
}

// Info returns the stored snapshot metadata.
func (s *Store) Info() (*Metadata, error) {
	var meta Metadata
	err := s.db.View(func(txn *badger.Txn) error {
		data, err := getValue(txn, metadataKey)
		if err != nil {
			return err
		}
		return unmarshalJSON(data, &meta, "metadata")
	})
	if err != nil {
		return nil, err
	}
	return &meta, nil
}

// Delete removes a single artifact entry. Exposed for corruption drills and
// operator tooling; normal operation only ever replaces whole snapshots.
func (s *Store) Delete(key string) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(key))
	})
}

// Clear deletes all artifacts and returns the number of entries removed.
func (s *Store) Clear() (int, error) {
	count := 0
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			count++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	if err := s.db.DropAll(); err != nil {
		return 0, err
	}
	s.logger.Info("cache cleared", "entries", count)
	return count, nil
}

// CopyFrom bulk-copies a foreign cache directory's Badger files into this
// store's directory and verifies the resulting structure by reading its
// metadata. Not supported for in-memory stores.
func (s *Store) CopyFrom(externalDir string) error {
	if s.inMemory {
		return errors.New("copy-from not supported for in-memory store")
	}
	entries, err := os.ReadDir(externalDir)
	if err != nil {
		return err
	}

	if err := s.db.Close(); err != nil {
		return err
	}
	if err := s.replaceFiles(externalDir, entries); err != nil {
		s.reset()
		return err
	}

	db, err := openBadger(s.dir, false, s.logger)
	if err != nil {
		s.reset()
		return fmt.Errorf("%w: reopening copied cache: %v", core.ErrCacheCorruption, err)
	}
	s.db = db

	if _, err := s.Info(); err != nil {
		return fmt.Errorf("%w: copied cache has no metadata: %v", core.ErrCacheCorruption, err)
	}
	if _, _, ok := s.countArtifacts(); !ok {
		return fmt.Errorf("%w: copied cache incomplete", core.ErrCacheCorruption)
	}
	s.logger.Info("cache copied from external directory", "from", externalDir)
	return nil
}

func (s *Store) replaceFiles(externalDir string, entries []os.DirEntry) error {
	if err := os.RemoveAll(s.dir); err != nil {
		return err
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return err
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if err := copyFile(
			filepath.Join(externalDir, entry.Name()),
			filepath.Join(s.dir, entry.Name()),
		); err != nil {
			return err
		}
	}
	return nil
}

// reset reopens an empty database after a failed copy so the store stays
// usable as a cache miss instead of wedging on a closed handle.
func (s *Store) reset() {
	if err := os.RemoveAll(s.dir); err != nil {
		s.logger.Error("resetting cache directory failed", "err", err)
		return
	}
	db, err := openBadger(s.dir, false, s.logger)
	if err != nil {
		s.logger.Error("reopening empty cache failed", "err", err)
		return
	}
	s.db = db
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

// BuildMetadata assembles snapshot metadata for a freshly integrated
// catalog.
func BuildMetadata(cat *core.Catalog, vectors [][]float32, hash, modelID string) Metadata {
	nonEmpty := 0
	for i := range cat.Records {
		if cat.Records[i].FinalText != "" {
			nonEmpty++
		}
	}
	coverage := 0.0
	if len(cat.Records) > 0 {
		coverage = float64(nonEmpty) / float64(len(cat.Records))
	}
	dim := 0
	if len(vectors) > 0 {
		dim = len(vectors[0])
	}
	return Metadata{
		Hash:         hash,
		CreatedAt:    time.Now(),
		ModelID:      modelID,
		RowCount:     len(cat.Records),
		VectorDim:    dim,
		TextField:    textField,
		TextCoverage: coverage,
	}
}

// ArtifactKeys lists the singleton artifact keys, for operator tooling.
func ArtifactKeys() []string {
	return []string{metadataKey, lexicalStateKey, standardNamesKey, chapterDescKey}
}
