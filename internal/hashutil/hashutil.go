// Package hashutil computes content checksums and deterministic symbol
// IDs, derived from the (file, qualified_name, kind, start_line) tuple.
package hashutil

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
)

// HashFile computes the SHA-256 hex digest of a file's contents.
func HashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// HashBytes computes the SHA-256 hex digest of a byte slice.
func HashBytes(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}

// SymbolID derives the deterministic symbol identifier from
// (file, qualified_name, kind, start_line): equal inputs produce equal
// IDs so re-indexing yields stable references.
func SymbolID(file, qualifiedName, kind string, startLine int) string {
	data := fmt.Sprintf("%s\x00%s\x00%s\x00%d", file, qualifiedName, kind, startLine)
	return HashBytes([]byte(data))
}

// EdgeID derives a deterministic identifier for a reference, call edge, or
// type relationship row from its defining tuple, so repeated parses of
// unchanged content produce identical rows (write protocol no-op check).
func EdgeID(parts ...string) string {
	data := ""
	for _, p := range parts {
		data += p + "\x00"
	}
	return HashBytes([]byte(data))
}
