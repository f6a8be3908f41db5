package dna

import (
	"crypto/sha256"
	"strconv"
	"strings"

	"helixgate.io/models"
)

// Alphabet is the symbol set tokens are drawn from, indexed by 2-bit value:
// 00 -> A, 01 -> C, 10 -> T, 11 -> G.
const Alphabet = "ACTG"

// DefaultLength is the token length used when the deployment does not
// configure one.
const DefaultLength = 32

// SymbolsPerDigest is the number of symbols one SHA-256 digest yields
// (256 bits / 2 bits per symbol).
const SymbolsPerDigest = sha256.Size * 4

// Encode derives a DNA token of exactly length symbols from data.
//
// The function is total for any non-empty input and any length >= 1.
// It returns models.ErrEmptyInput for empty data and models.ErrInvalidLength
// for lengths below 1.
//
// Parameters:
//   - data: Input bytes (for HelixGate, the salted canonical node identity)
//   - length: Requested token length in symbols
//
// Returns:
//   - string: An ACTG token of exactly length symbols
//   - error: models.ErrEmptyInput or models.ErrInvalidLength
func Encode(data []byte, length int) (string, error) {
	if length < 1 {
		return "", models.ErrInvalidLength
	}
	if len(data) == 0 {
		return "", models.ErrEmptyInput
	}

	digest := sha256.Sum256(data)

	var b strings.Builder
	b.Grow(length)

	appendBlock(&b, digest[:], length)

	// Extend deterministically when the requested length exceeds one
	// digest. Each extension block hashes the original digest followed by
	// the running symbol count, so no block ever repeats verbatim.
	for b.Len() < length {
		ext := sha256.Sum256(strconv.AppendInt(append([]byte(nil), digest[:]...), int64(b.Len()), 10))
		appendBlock(&b, ext[:], length)
	}

	return b.String(), nil
}

// appendBlock appends symbols decoded from block until b holds limit symbols
// or the block is exhausted. Bits are consumed most significant first.
func appendBlock(b *strings.Builder, block []byte, limit int) {
	for _, byt := range block {
		for shift := 6; shift >= 0; shift -= 2 {
			if b.Len() >= limit {
				return
			}
			b.WriteByte(Alphabet[(byt>>shift)&0x3])
		}
	}
}

// Valid reports whether s is a well-formed token: non-empty and drawn
// entirely from the ACTG alphabet. It does not check the token against any
// identity; it is a cheap shape check performed before registry lookups.
func Valid(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case 'A', 'C', 'T', 'G':
		default:
			return false
		}
	}
	return true
}
