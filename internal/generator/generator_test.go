package generator

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shortlink/pkg/base62"
)

func TestGenerateLengthAndAlphabet(t *testing.T) {
	gen := New()

	for i := 0; i < 100; i++ {
		alias, err := gen.Generate("https://example.com/some/long/path")
		require.NoError(t, err)
		assert.Len(t, alias, AliasLength)
		assert.True(t, base62.IsValid(alias), "alias %q contains non-base62 characters", alias)
	}
}

func TestGenerateVariesWithCounter(t *testing.T) {
	gen := New()

	// The same URL must yield different candidates on successive calls,
	// otherwise collision retries would spin on the same alias.
	first, err := gen.Generate("https://example.com")
	require.NoError(t, err)
	second, err := gen.Generate("https://example.com")
	require.NoError(t, err)
	assert.NotEqual(t, first, second)
}

func TestGenerateConcurrent(t *testing.T) {
	gen := New()

	const goroutines = 20
	const perGoroutine = 50

	var mu sync.Mutex
	seen := make(map[string]bool)

	var wg sync.WaitGroup
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perGoroutine; j++ {
				alias, err := gen.Generate("https://example.com/concurrent")
				assert.NoError(t, err)
				mu.Lock()
				seen[alias] = true
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	// The atomic counter makes every hashed input distinct.
	assert.Len(t, seen, goroutines*perGoroutine)
}

func TestValidateCustomAlias(t *testing.T) {
	cases := []struct {
		alias string
		valid bool
	}{
		{"My_Alias1", true},
		{"abcd", true},
		{"with-hyphen_and_20ch", true},
		{"ab", false},
		{"bad alias!", false},
		{"", false},
		{"way-too-long-alias-over-20", false},
		{"dots.not.ok", false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.valid, ValidateCustomAlias(tc.alias), "alias %q", tc.alias)
	}
}
