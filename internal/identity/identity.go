// Package identity derives stable product identities from canonical product
// page URLs. The identity is the sole primary key for a product record and
// its price history, so derivation must be deterministic.
package identity

import (
	"fmt"
	"hash/fnv"
	"net/url"
	"regexp"
	"strings"
)

// productPath matches the canonical product path shape /<shop>/<item>/.
var productPath = regexp.MustCompile(`^/([^/]+)/([^/]+)/?$`)

// Derive returns the identity for rawURL. URLs with the canonical
// /<shop>/<item>/ path shape yield "<shop>_<item>"; anything else falls back
// to a 16 character hex digest of the full URL string. Query strings are
// ignored in the canonical path.
func Derive(rawURL string) string {
	shop, item, ok := SplitPath(rawURL)
	if !ok {
		return digest(rawURL)
	}

	return fmt.Sprintf("%s_%s", shop, item)
}

// SplitPath extracts the shop and item segments from rawURL's path.
// It reports false when the path does not have the canonical shape.
func SplitPath(rawURL string) (shop string, item string, ok bool) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return "", "", false
	}

	match := productPath.FindStringSubmatch(parsed.Path)
	if match == nil {
		return "", "", false
	}

	return match[1], match[2], true
}

// ShopID returns the shop segment of rawURL's path, or "" when the path does
// not have the canonical shape.
func ShopID(rawURL string) string {
	shop, _, _ := SplitPath(rawURL)
	return shop
}

// ItemCode returns the item segment of rawURL's path, or "" when the path
// does not have the canonical shape.
func ItemCode(rawURL string) string {
	_, item, _ := SplitPath(rawURL)
	return item
}

// HasProductShape reports whether rawURL's path looks like a product page
// address. Shape alone is necessary but not sufficient for classification.
func HasProductShape(rawURL string) bool {
	_, _, ok := SplitPath(rawURL)
	return ok
}

// digest returns a stable 16 character hex digest of s.
// FNV-1a is enough here: the digest only has to be deterministic and
// collision-resistant for ordinary URLs, not cryptographically strong.
func digest(s string) string {
	hash := fnv.New64a()
	_, _ = hash.Write([]byte(s))
	return strings.ToLower(fmt.Sprintf("%016x", hash.Sum64()))
}
