// Package admin guards the dashboard API with static bearer tokens and
// writes the audit trail for admin writes.
package admin

import (
	"crypto/sha256"
	"crypto/subtle"
	"fmt"
	"strings"
)

// minTokenLength rejects tokens short enough to guess.
const minTokenLength = 16

type token struct {
	name string
	hash [sha256.Size]byte
}

// Tokens is the set of accepted admin bearer tokens. Only hashes are kept.
type Tokens struct {
	tokens []token
}

// ParseTokens reads a comma-separated list of tokens. Each entry is either
// "name:secret" or a bare secret, which is named admin-1, admin-2, ...
// in list order.
func ParseTokens(list string) (Tokens, error) {
	var t Tokens
	for i, entry := range strings.Split(list, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		name, secret, ok := strings.Cut(entry, ":")
		if !ok {
			name, secret = fmt.Sprintf("admin-%d", i+1), entry
		}
		name, secret = strings.TrimSpace(name), strings.TrimSpace(secret)
		if name == "" {
			return Tokens{}, fmt.Errorf("admin token %d has an empty name", i+1)
		}
		if len(secret) < minTokenLength {
			return Tokens{}, fmt.Errorf("admin token %q is shorter than %d characters", name, minTokenLength)
		}
		t.tokens = append(t.tokens, token{name: name, hash: sha256.Sum256([]byte(secret))})
	}
	if len(t.tokens) == 0 {
		return Tokens{}, fmt.Errorf("no admin tokens configured")
	}
	return t, nil
}

// Len is the number of configured tokens.
func (t Tokens) Len() int {
	return len(t.tokens)
}

// Match returns the name of the token equal to secret. Every configured
// token is compared so timing does not reveal which one matched.
func (t Tokens) Match(secret string) (string, bool) {
	sum := sha256.Sum256([]byte(secret))
	var name string
	for _, tok := range t.tokens {
		if subtle.ConstantTimeCompare(sum[:], tok.hash[:]) == 1 {
			name = tok.name
		}
	}
	return name, name != ""
}
