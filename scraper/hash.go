package scraper

import (
	"crypto/sha256"
	"encoding/hex"
)

// Hash fingerprints a page: lower-hex of the first 8 bytes of
// SHA-256 over the normalized HTML.
func Hash(html string) string {
	sum := sha256.Sum256([]byte(NormalizeForHash(html)))
	return hex.EncodeToString(sum[:8])
}
