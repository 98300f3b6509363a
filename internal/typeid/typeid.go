// Package typeid derives storage-safe identifiers for generic type pairs.
package typeid

import (
	"crypto/sha256"
	"encoding/hex"
	"unicode/utf8"
)

// MaxTypeLength is the maximum number of bytes kept from a type string.
const MaxTypeLength = 512

// Truncate keeps at most MaxTypeLength bytes of typ. The cut never splits a
// multi-byte rune, so the result may be a few bytes shorter than the limit.
func Truncate(typ string) string {
	if len(typ) <= MaxTypeLength {
		return typ
	}
	cut := MaxTypeLength
	for cut > 0 && !utf8.RuneStart(typ[cut]) {
		cut--
	}
	return typ[:cut]
}

// Canonical formats the pair as "<a,b>" after truncating both sides.
func Canonical(a, b string) string {
	ta, tb := Truncate(a), Truncate(b)
	buf := make([]byte, 0, len(ta)+len(tb)+3)
	buf = append(buf, '<')
	buf = append(buf, ta...)
	buf = append(buf, ',')
	buf = append(buf, tb...)
	buf = append(buf, '>')
	return string(buf)
}

// HashPair returns the lowercase hex sha256 of Canonical(a, b).
func HashPair(a, b string) string {
	sum := sha256.Sum256([]byte(Canonical(a, b)))
	return hex.EncodeToString(sum[:])
}

// Pair is a truncated type pair with its hash.
type Pair struct {
	First  string
	Second string
	Hash   string
}

// NewPair truncates both type strings and hashes them.
func NewPair(a, b string) Pair {
	return Pair{
		First:  Truncate(a),
		Second: Truncate(b),
		Hash:   HashPair(a, b),
	}
}
