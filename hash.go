package duallang

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// HashText computes the SHA-256 hash of the trimmed, NFC-normalized text.
// EPUBs produced by different tools mix composed and decomposed accents;
// normalizing lets both forms share a cache entry.
func HashText(text string) string {
	trimmed := norm.NFC.String(strings.TrimSpace(text))
	hash := sha256.Sum256([]byte(trimmed))
	return hex.EncodeToString(hash[:])
}

// CacheKey generates a cache key from a text hash and language pair.
func CacheKey(hash, sourceLang, targetLang string) string {
	return hash + ":" + sourceLang + ":" + targetLang
}

// CacheKeyExtended additionally differentiates translations by model.
func CacheKeyExtended(hash, sourceLang, targetLang, model string) string {
	return CacheKey(hash, sourceLang, targetLang) + ":" + model
}
