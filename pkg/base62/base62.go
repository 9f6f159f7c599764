// Package base62 provides base62 encoding and decoding.
//
// The character set is 0-9, A-Z, a-z (62 characters). Unlike base64 it
// contains no characters that need escaping in URLs, which makes it the
// usual choice for short-link aliases.
package base62

import (
	"errors"
	"math"
)

const chars = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

const base = 62

// ErrInvalidCharacter is returned when the input contains a character
// outside the base62 alphabet.
var ErrInvalidCharacter = errors.New("invalid character in base62 string")

// ErrOverflow is returned when the decoded value does not fit in a uint64.
var ErrOverflow = errors.New("decoded value exceeds uint64 range")

var charToValue [256]int8

func init() {
	for i := range charToValue {
		charToValue[i] = -1
	}
	for i := 0; i < len(chars); i++ {
		charToValue[chars[i]] = int8(i)
	}
}

// Encode converts num to its base62 representation.
// Encode(0) returns "0".
func Encode(num uint64) string {
	if num == 0 {
		return "0"
	}

	buf := make([]byte, 0, 11) // 64 bits never need more than 11 symbols
	for num > 0 {
		buf = append(buf, chars[num%base])
		num /= base
	}

	// Digits were produced least significant first.
	for i, j := 0, len(buf)-1; i < j; i, j = i+1, j-1 {
		buf[i], buf[j] = buf[j], buf[i]
	}
	return string(buf)
}

// Decode converts a base62 string back to a uint64.
func Decode(s string) (uint64, error) {
	var result uint64
	for i := 0; i < len(s); i++ {
		v := charToValue[s[i]]
		if v < 0 {
			return 0, ErrInvalidCharacter
		}
		if result > (math.MaxUint64-uint64(v))/base {
			return 0, ErrOverflow
		}
		result = result*base + uint64(v)
	}
	return result, nil
}

// IsValid reports whether s contains only base62 characters.
func IsValid(s string) bool {
	for i := 0; i < len(s); i++ {
		if charToValue[s[i]] < 0 {
			return false
		}
	}
	return true
}
