package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeCode(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"already ten digits", "8539500000", "8539500000"},
		{"short code padded", "8539", "8539000000"},
		{"single digit", "8", "8000000000"},
		{"separators stripped", "8539.50-00.00", "8539500000"},
		{"overlong truncated", "853950000012", "8539500000"},
		{"no digits", "abc", ""},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeCode(tt.in))
		})
	}
}

func TestNormalizeCodeAlwaysTenDigits(t *testing.T) {
	// Every digit-only input of length <= 10 produces a 10-char key.
	inputs := []string{"1", "12", "123456", "0123456789"}
	for _, in := range inputs {
		got := NormalizeCode(in)
		assert.Len(t, got, 10, "input %q", in)
		for i := len(in); i < 10; i++ {
			assert.Equal(t, byte('0'), got[i], "pad position %d for %q", i, in)
		}
	}
}

func TestNormalizeText(t *testing.T) {
	assert.Equal(t, "led 전구 조명기기", NormalizeText("  LED　전구   조명기기 "))
	assert.Equal(t, "abc", NormalizeText("ＡＢＣ")) // fullwidth folded by NFKC
	assert.Equal(t, "", NormalizeText("   "))
}

func TestRestorePrefixes(t *testing.T) {
	r := ClassificationRecord{Key: "8539500000"}
	r.RestorePrefixes()
	assert.Equal(t, "85", r.Chapter)
	assert.Equal(t, "8539", r.Heading)
	assert.Equal(t, "853950", r.Subheading)
}

func TestProvenanceString(t *testing.T) {
	assert.Equal(t, "primary", SourcePrimary.String())
	assert.Equal(t, "primary+standard", (SourcePrimary | SourceStandard).String())
	assert.Equal(t, "primary+standard+notes", (SourcePrimary | SourceStandard | SourceNotes).String())
	assert.Equal(t, "unknown", Provenance(0).String())
}

func TestCatalogByKey(t *testing.T) {
	cat := &Catalog{Records: []ClassificationRecord{
		{Key: "8539500000", NameKo: "LED 램프"},
		{Key: "8539310000", NameKo: "형광램프"},
	}}
	assert.Equal(t, 2, cat.Len())
	assert.Equal(t, "LED 램프", cat.ByKey("8539500000").NameKo)
	assert.Nil(t, cat.ByKey("0000000000"))

	var nilCat *Catalog
	assert.Equal(t, 0, nilCat.Len())
}
