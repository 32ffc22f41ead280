package cache

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/poiesic/hscode/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCatalog() *core.Catalog {
	records := []core.ClassificationRecord{
		{Key: "8539500000", NameKo: "엘이디 램프", NameEn: "LED lamps", FinalText: "엘이디 램프 LED lamps", Provenance: core.SourcePrimary | core.SourceStandard},
		{Key: "8539310000", NameKo: "형광램프", FinalText: "형광램프", Provenance: core.SourcePrimary},
	}
	for i := range records {
		records[i].RestorePrefixes()
	}
	return &core.Catalog{
		Records:             records,
		StandardNames:       map[string]string{"led 전구": "8539500000"},
		ChapterDescriptions: map[string]string{"85": "전기기기 조명 음향기기"},
	}
}

func testSnapshot(t *testing.T, s *Store, modelID string) *Snapshot {
	t.Helper()
	cat := testCatalog()
	vectors := [][]float32{{0.1, 0.2, 0.3}, {0.4, 0.5, 0.6}}
	hash, err := s.ComputeHash(modelID)
	require.NoError(t, err)
	return &Snapshot{
		Catalog: cat,
		Vectors: vectors,
		Lexical: LexicalState{
			Vocabulary: map[string]int{"램프": 2, "led": 1},
			DocCount:   2,
			AvgDocLen:  3.5,
		},
		Meta: BuildMetadata(cat, vectors, hash, modelID),
	}
}

func openTestStore(t *testing.T, sources []string) *Store {
	t.Helper()
	s, err := Open("", sources, WithInMemory())
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func writeSource(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestSaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	src := writeSource(t, dir, "primary.csv", "code,name\n8539,lamp\n")
	s := openTestStore(t, []string{src})

	snap := testSnapshot(t, s, "embeddinggemma")
	require.NoError(t, s.Save(snap))

	loaded, err := s.Load()
	require.NoError(t, err)
	require.Equal(t, 2, loaded.Catalog.Len())
	assert.Equal(t, snap.Catalog.Records, loaded.Catalog.Records)
	assert.Equal(t, snap.Vectors, loaded.Vectors)
	assert.Equal(t, snap.Lexical.Vocabulary, loaded.Lexical.Vocabulary)
	assert.Equal(t, snap.Catalog.StandardNames, loaded.Catalog.StandardNames)
	assert.Equal(t, snap.Meta.Hash, loaded.Meta.Hash)
	assert.True(t, s.IsValid("embeddinggemma"))
}

func TestHashIdempotence(t *testing.T) {
	dir := t.TempDir()
	src := writeSource(t, dir, "primary.csv", "code,name\n8539,lamp\n")
	s := openTestStore(t, []string{src})

	h1, err := s.ComputeHash("model-a")
	require.NoError(t, err)
	h2, err := s.ComputeHash("model-a")
	require.NoError(t, err)
	assert.Equal(t, h1, h2)
}

func TestHashSensitivity(t *testing.T) {
	dir := t.TempDir()
	src := writeSource(t, dir, "primary.csv", "code,name\n8539,lamp\n")
	s := openTestStore(t, []string{src})

	require.NoError(t, s.Save(testSnapshot(t, s, "model-a")))
	require.True(t, s.IsValid("model-a"))

	t.Run("single byte change flips validity", func(t *testing.T) {
		writeSource(t, dir, "primary.csv", "code,name\n8539,lamq\n")
		h, err := s.ComputeHash("model-a")
		require.NoError(t, err)
		meta, err := s.Info()
		require.NoError(t, err)
		assert.NotEqual(t, meta.Hash, h)
		assert.False(t, s.IsValid("model-a"))
	})

	t.Run("model change flips validity", func(t *testing.T) {
		writeSource(t, dir, "primary.csv", "code,name\n8539,lamp\n")
		require.True(t, s.IsValid("model-a"))
		assert.False(t, s.IsValid("model-b"))
	})
}

func TestIsValidMissingArtifact(t *testing.T) {
	dir := t.TempDir()
	src := writeSource(t, dir, "primary.csv", "code,name\n8539,lamp\n")
	s := openTestStore(t, []string{src})

	require.NoError(t, s.Save(testSnapshot(t, s, "model-a")))
	require.True(t, s.IsValid("model-a"))

	// Deleting any single artifact invalidates the whole snapshot.
	require.NoError(t, s.Delete(lexicalStateKey))
	assert.False(t, s.IsValid("model-a"))
}

func TestIsValidEmptyStore(t *testing.T) {
	dir := t.TempDir()
	src := writeSource(t, dir, "primary.csv", "x\n")
	s := openTestStore(t, []string{src})
	assert.False(t, s.IsValid("model-a"))
}

func TestLoadRepairsRecords(t *testing.T) {
	dir := t.TempDir()
	src := writeSource(t, dir, "primary.csv", "x\n")
	s := openTestStore(t, []string{src})

	snap := testSnapshot(t, s, "model-a")
	// Simulate an older snapshot: no text, no prefix columns.
	snap.Catalog.Records[0].FinalText = ""
	snap.Catalog.Records[0].Description = "조명용 엘이디 램프"
	snap.Catalog.Records[1].FinalText = ""
	snap.Catalog.Records[1].NameKo = ""
	snap.Catalog.Records[1].Chapter = ""
	snap.Catalog.Records[1].Heading = ""
	snap.Catalog.Records[1].Subheading = ""
	require.NoError(t, s.Save(snap))

	loaded, err := s.Load()
	require.NoError(t, err)
	// Description fallback, then key fallback.
	assert.Equal(t, "조명용 엘이디 램프", loaded.Catalog.Records[0].FinalText)
	assert.Equal(t, "8539310000", loaded.Catalog.Records[1].FinalText)
	// Prefixes regenerated arithmetically from the key.
	assert.Equal(t, "85", loaded.Catalog.Records[1].Chapter)
	assert.Equal(t, "8539", loaded.Catalog.Records[1].Heading)
	assert.Equal(t, "853931", loaded.Catalog.Records[1].Subheading)
}

func TestLoadMissingMetadataIsCorruption(t *testing.T) {
	dir := t.TempDir()
	src := writeSource(t, dir, "primary.csv", "x\n")
	s := openTestStore(t, []string{src})

	_, err := s.Load()
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrCacheCorruption)
}

func TestClear(t *testing.T) {
	dir := t.TempDir()
	src := writeSource(t, dir, "primary.csv", "x\n")
	s := openTestStore(t, []string{src})

	require.NoError(t, s.Save(testSnapshot(t, s, "model-a")))
	count, err := s.Clear()
	require.NoError(t, err)
	// 2 catalog rows + 2 vectors + lexical + 2 mappings + metadata.
	assert.Equal(t, 8, count)
	assert.False(t, s.IsValid("model-a"))

	count, err = s.Clear()
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestCopyFrom(t *testing.T) {
	srcData := t.TempDir()
	source := writeSource(t, srcData, "primary.csv", "code,name\n8539,lamp\n")

	// Build a populated on-disk cache to copy from.
	fromDir := filepath.Join(t.TempDir(), "from")
	from, err := Open(fromDir, []string{source})
	require.NoError(t, err)
	require.NoError(t, from.Save(testSnapshot(t, from, "model-a")))
	require.NoError(t, from.Close())

	toDir := filepath.Join(t.TempDir(), "to")
	to, err := Open(toDir, []string{source})
	require.NoError(t, err)
	defer to.Close()

	require.NoError(t, to.CopyFrom(fromDir))
	assert.True(t, to.IsValid("model-a"))

	loaded, err := to.Load()
	require.NoError(t, err)
	assert.Equal(t, 2, loaded.Catalog.Len())
}

func TestCopyFromFailureLeavesStoreUsable(t *testing.T) {
	srcData := t.TempDir()
	source := writeSource(t, srcData, "primary.csv", "code,name\n8539,lamp\n")

	// An external directory whose only entry cannot be opened: a dangling
	// symlink survives ReadDir but fails the file copy.
	fromDir := t.TempDir()
	require.NoError(t, os.Symlink(filepath.Join(fromDir, "absent"), filepath.Join(fromDir, "000001.sst")))

	toDir := filepath.Join(t.TempDir(), "to")
	to, err := Open(toDir, []string{source})
	require.NoError(t, err)
	defer to.Close()

	require.Error(t, to.CopyFrom(fromDir))

	// The failed copy degrades to a cache miss, not a wedged handle.
	assert.False(t, to.IsValid("model-a"))
	require.NoError(t, to.Save(testSnapshot(t, to, "model-a")))
	assert.True(t, to.IsValid("model-a"))
}

func TestVectorBlobRoundTrip(t *testing.T) {
	vec := []float32{0.25, -1.5, 3.0}
	got, err := unmarshalVector(marshalVector(vec))
	require.NoError(t, err)
	assert.Equal(t, vec, got)

	_, err = unmarshalVector([]byte{1, 2, 3})
	assert.ErrorIs(t, err, core.ErrCacheCorruption)
}
