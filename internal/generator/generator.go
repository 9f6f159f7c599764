// Package generator produces collision-resistant aliases for short links and
// validates caller-supplied custom aliases.
package generator

import (
	"crypto/rand"
	"crypto/sha256"
	"fmt"
	"math/big"
	"regexp"
	"strconv"
	"sync/atomic"

	"shortlink/pkg/base62"
)

// AliasLength is the fixed length of generated aliases.
const AliasLength = 7

// digestPrefixLen is the number of digest bytes fed into the base62
// encoding. Five bytes (40 bits) always encode to at most seven symbols,
// so generated aliases never need truncation, only padding.
const digestPrefixLen = 5

const charset = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

// customAliasPattern accepts 4-20 alphanumerics, hyphens and underscores.
var customAliasPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{4,20}$`)

// Generator produces alias candidates by hashing the long URL together with
// a process-lifetime monotonic counter. Uniqueness is not guaranteed here:
// the caller verifies candidates against the store and retries on conflict.
type Generator struct {
	counter atomic.Uint64
}

// New returns a Generator with a fresh counter.
func New() *Generator {
	return &Generator{}
}

// Generate returns a 7-symbol base62 alias candidate for longURL.
//
// The long URL is combined with a strictly increasing counter so that
// repeated calls for the same URL yield different candidates, then hashed
// with SHA-256. A fixed-width prefix of the digest is base62-encoded; when
// the encoding comes out shorter than seven symbols it is left-padded with
// random alphabet symbols. The padding only fixes the length, it is not
// relied upon for uniqueness.
func (g *Generator) Generate(longURL string) (string, error) {
	n := g.counter.Add(1)
	sum := sha256.Sum256([]byte(longURL + ":" + strconv.FormatUint(n, 10)))

	var v uint64
	for _, b := range sum[:digestPrefixLen] {
		v = v<<8 | uint64(b)
	}

	code := base62.Encode(v)
	for len(code) < AliasLength {
		c, err := randomChar()
		if err != nil {
			return "", fmt.Errorf("failed to pad alias: %w", err)
		}
		code = string(c) + code
	}
	return code, nil
}

// ValidateCustomAlias reports whether a caller-supplied alias is acceptable:
// 4 to 20 characters from [A-Za-z0-9_-].
func ValidateCustomAlias(candidate string) bool {
	return customAliasPattern.MatchString(candidate)
}

func randomChar() (byte, error) {
	num, err := rand.Int(rand.Reader, big.NewInt(int64(len(charset))))
	if err != nil {
		return 0, err
	}
	return charset[num.Int64()], nil
}
