// Package refnum generates short human-readable reference numbers for
// quotes and policies. References are read over the phone, so the alphabet
// excludes characters that are easy to mishear or misread (0/O, 1/I/L).
package refnum

import (
	"crypto/rand"
	"fmt"
	"strings"
)

const (
	// alphabet holds the 31 unambiguous characters allowed after the prefix.
	alphabet = "ABCDEFGHJKMNPQRSTUVWXYZ23456789"

	// Length is the total reference length including the one-char prefix.
	Length = 10

	QuotePrefix  = "Q"
	PolicyPrefix = "P"
)

// Generate returns a new random reference with the given prefix, e.g.
// "QX7K2MNP4R". Uniqueness is the caller's concern: the store enforces it
// and the caller retries on conflict.
func Generate(prefix string) (string, error) {
	buf := make([]byte, Length-len(prefix))
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("refnum: read random: %w", err)
	}
	var b strings.Builder
	b.WriteString(prefix)
	for _, v := range buf {
		b.WriteByte(alphabet[int(v)%len(alphabet)])
	}
	return b.String(), nil
}

// Valid reports whether ref has the expected prefix, length, and alphabet.
func Valid(ref, prefix string) bool {
	if len(ref) != Length || !strings.HasPrefix(ref, prefix) {
		return false
	}
	for _, c := range ref[len(prefix):] {
		if !strings.ContainsRune(alphabet, c) {
			return false
		}
	}
	return true
}
