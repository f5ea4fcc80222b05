// Package cache provides span translation caches. Keys are built by
// duallang.CacheKey from the span hash and the language pair.
package cache

// TranslationCache is the interface for translation caching.
type TranslationCache interface {
	// Get retrieves a cached translation. Returns empty string and false if not found or expired.
	Get(key string) (string, bool)

	// Set stores a translation in the cache.
	Set(key string, value string) error
}

// ExportableCache is a cache whose contents can be listed for export.
type ExportableCache interface {
	TranslationCache
	// Entries returns all live entries.
	Entries() (map[string]string, error)
}
