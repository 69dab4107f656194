package identity_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pricetracker/internal/identity"
)

func TestUnitDerive(t *testing.T) {
	tests := map[string]struct {
		url          string
		wantIdentity string
	}{
		"canonical product url": {
			url:          "https://item.example.co.jp/shop123/item456/",
			wantIdentity: "shop123_item456",
		},
		"canonical without trailing slash": {
			url:          "https://item.example.co.jp/shop123/item456",
			wantIdentity: "shop123_item456",
		},
		"query string ignored": {
			url:          "https://item.example.co.jp/shop123/item456/?ref=campaign&s=1",
			wantIdentity: "shop123_item456",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tt.wantIdentity, identity.Derive(tt.url),
				"should derive identity from canonical path segments")
		})
	}
}

func TestUnitDeriveFallbackDigest(t *testing.T) {
	urls := []string{
		"https://example.co.jp/",
		"https://example.co.jp/only-one-segment/",
		"https://example.co.jp/a/b/c/",
		"not a url at all",
	}

	for _, url := range urls {
		first := identity.Derive(url)
		second := identity.Derive(url)

		require.Equal(t, first, second, "digest should be deterministic for %q", url)
		assert.Len(t, first, 16, "digest should be 16 characters for %q", url)
		assert.Regexp(t, "^[0-9a-z]{16}$", first, "digest should be alphanumeric for %q", url)
	}
}

func TestUnitDeriveDigestDiffersPerInput(t *testing.T) {
	first := identity.Derive("https://example.co.jp/a/b/c/")
	second := identity.Derive("https://example.co.jp/a/b/d/")

	assert.NotEqual(t, first, second, "different urls should yield different digests")
}

func TestUnitSplitPath(t *testing.T) {
	shop, item, ok := identity.SplitPath("https://item.example.co.jp/testshop/itemcode123/")

	require.True(t, ok, "canonical path should be recognized")
	assert.Equal(t, "testshop", shop, "should extract shop segment")
	assert.Equal(t, "itemcode123", item, "should extract item segment")
}

func TestUnitHasProductShape(t *testing.T) {
	tests := map[string]struct {
		url  string
		want bool
	}{
		"product shape":      {url: "https://item.example.co.jp/shop/item/", want: true},
		"root":               {url: "https://item.example.co.jp/", want: false},
		"single segment":     {url: "https://item.example.co.jp/shop/", want: false},
		"three segments":     {url: "https://item.example.co.jp/a/b/c/", want: false},
		"search-like path":   {url: "https://search.example.co.jp/search?p=term", want: false},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tt.want, identity.HasProductShape(tt.url),
				"should classify url path shape")
		})
	}
}
