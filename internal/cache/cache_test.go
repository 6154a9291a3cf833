package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreRoundTrip(t *testing.T) {
	store := New(time.Minute)

	_, ok := store.Get("missing")
	assert.False(t, ok)

	store.Set("k", 42)
	v, ok := store.Get("k")
	require.True(t, ok)
	assert.Equal(t, 42, v)
}

func TestStoreExpiry(t *testing.T) {
	store := New(10 * time.Millisecond)
	store.Set("k", "v")

	time.Sleep(30 * time.Millisecond)

	_, ok := store.Get("k")
	assert.False(t, ok)
}

func TestKeyNormalization(t *testing.T) {
	// Accents, case, parentheticals and punctuation must not split
	// cache entries for the same track.
	assert.Equal(t, Key("halo", "beyonce"), Key("Halo (Live)", "Beyoncé"))
	assert.Equal(t, Key("Don't Stop Me Now", "Queen"), Key("dont stop me now", "QUEEN"))
	assert.Equal(t, Key("Song", "  Artist  Name "), Key("Song", "Artist Name"))

	// Different tracks stay distinct.
	assert.NotEqual(t, Key("Halo", "Beyoncé"), Key("XO", "Beyoncé"))
	assert.NotEqual(t, Key("Halo", "Beyoncé"), Key("Halo", "Depeche Mode"))
}

func TestKeySeparatesTitleAndArtist(t *testing.T) {
	assert.NotEqual(t, Key("b c", "a"), Key("c", "a b"))
}

func TestFingerprint(t *testing.T) {
	a := Fingerprint("some lyrics")
	b := Fingerprint("some lyrics")
	c := Fingerprint("other lyrics")

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Len(t, a, 64)
}
