// Package cache provides the in-process TTL stores shared by the source
// adapters, plus the normalized key scheme that makes repeated lookups
// for the same track hit the same entry regardless of input quirks.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"regexp"
	"strings"
	"time"
	"unicode"

	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Store is a TTL-bounded key-value store safe for concurrent use.
type Store struct {
	ttl time.Duration
	c   *gocache.Cache
}

// New creates a store whose entries expire after ttl.
func New(ttl time.Duration) *Store {
	return &Store{ttl: ttl, c: gocache.New(ttl, 10*time.Minute)}
}

// Get returns the cached value for key and whether it was present.
func (s *Store) Get(key string) (any, bool) {
	return s.c.Get(key)
}

// Set stores value under key with the store's TTL.
func (s *Store) Set(key string, value any) {
	s.c.Set(key, value, s.ttl)
}

var (
	parenthetical = regexp.MustCompile(`\s*\(.*?\)`)
	nonAlnum      = regexp.MustCompile(`[^a-z0-9 ]`)
	deaccent      = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
)

// Key builds a cache key from title and artist: diacritics stripped,
// case folded, parenthetical content and punctuation removed, whitespace
// collapsed. "Beyoncé - Halo (Live)" and "beyonce - halo" key identically.
func Key(title, artist string) string {
	return normalizePart(artist) + "::" + normalizePart(title)
}

func normalizePart(s string) string {
	if stripped, _, err := transform.String(deaccent, s); err == nil {
		s = stripped
	}
	s = strings.ToLower(s)
	s = parenthetical.ReplaceAllString(s, "")
	s = nonAlnum.ReplaceAllString(s, "")
	return strings.Join(strings.Fields(s), " ")
}

// Fingerprint returns a stable content key for arbitrary text, used to
// cache lyrics classification by content rather than by track identity.
func Fingerprint(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}
