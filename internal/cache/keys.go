package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/url"
	"sort"
)

// GenerateResourceKey generates a cache key for a resource fetched from fullURL.
// Query parameters are sorted so that equivalent URLs share a key.
func GenerateResourceKey(resourceName, fullURL string) string {
	normalized := NormalizeURL(fullURL)

	hash := sha256.Sum256([]byte(resourceName + ":" + normalized))
	// Truncate to 16 bytes for shorter cache keys
	return fmt.Sprintf("resource:%s:%s", resourceName, hex.EncodeToString(hash[:16]))
}

// NormalizeURL sorts query parameters of rawURL. Unparseable input is returned unchanged.
func NormalizeURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.RawQuery == "" {
		return rawURL
	}

	query := u.Query()
	for _, values := range query {
		sort.Strings(values)
	}
	// values are re-escaped: a decoded "&" or "=" must stay inside its value
	u.RawQuery = query.Encode()

	return u.String()
}
