package cache

import (
	"encoding/hex"
	"io"
	"os"

	"github.com/go-crypt/x/blake2b"
)

// computeSourceHash hashes the bytes of every configured source file plus
// the embedding-model identifier. Missing files contribute a path marker so
// their appearance or disappearance still changes the hash.
func computeSourceHash(paths []string, modelID string) (string, error) {
	h, err := blake2b.New(32, nil)
	if err != nil {
		return "", err
	}
	for _, path := range paths {
		h.Write([]byte(path))
		f, err := os.Open(path)
		if err != nil {
			h.Write([]byte("<absent>"))
			continue
		}
		if _, err := io.Copy(h, f); err != nil {
			f.Close()
			return "", err
		}
		f.Close()
	}
	h.Write([]byte(modelID))
	return hex.EncodeToString(h.Sum(nil)), nil
}
