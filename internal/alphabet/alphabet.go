// Package alphabet defines the set of characters a trained model considers
// part of a word. Everything outside the alphabet is treated as a separator
// by the tokenizer and makes a token unknown to the model.
package alphabet

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"unicode"
)

// ErrMalformed indicates an alphabet definition that yields no usable characters.
var ErrMalformed = errors.New("malformed alphabet definition")

// Alphabet is an immutable set of permitted runes. The zero value is empty
// and rejects every token; always construct via Load or FromRunes.
type Alphabet struct {
	set   map[rune]bool
	runes []rune // sorted, drives deterministic candidate enumeration
}

// Load reads an alphabet definition file. The format is plain UTF-8 text:
// every non-whitespace character outside of '#' comment lines becomes part
// of the alphabet. Characters are lower-cased, so a definition may list
// either or both cases.
func Load(path string) (*Alphabet, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening alphabet file: %w", err)
	}
	defer f.Close()

	var runes []rune
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(strings.TrimSpace(line), "#") {
			continue
		}
		for _, r := range line {
			if unicode.IsSpace(r) {
				continue
			}
			runes = append(runes, unicode.ToLower(r))
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading alphabet file: %w", err)
	}
	if len(runes) == 0 {
		return nil, fmt.Errorf("%w: %s contains no characters", ErrMalformed, path)
	}
	return FromRunes(runes), nil
}

// FromRunes builds an alphabet from a set of runes. Duplicates are collapsed
// and the stored order is sorted so enumeration is reproducible regardless of
// input order.
func FromRunes(runes []rune) *Alphabet {
	set := make(map[rune]bool, len(runes))
	for _, r := range runes {
		set[unicode.ToLower(r)] = true
	}
	uniq := make([]rune, 0, len(set))
	for r := range set {
		uniq = append(uniq, r)
	}
	sort.Slice(uniq, func(i, j int) bool { return uniq[i] < uniq[j] })
	return &Alphabet{set: set, runes: uniq}
}

// Contains reports whether r belongs to the alphabet. Case-insensitive.
func (a *Alphabet) Contains(r rune) bool {
	return a.set[unicode.ToLower(r)]
}

// IsValid reports whether every rune of token is in the alphabet. The empty
// token is not valid.
func (a *Alphabet) IsValid(token string) bool {
	if token == "" {
		return false
	}
	for _, r := range token {
		if !a.set[unicode.ToLower(r)] {
			return false
		}
	}
	return true
}

// Normalize lower-cases a token. Callers should normalize before any
// vocabulary lookup; the model stores normalized forms only.
func (a *Alphabet) Normalize(token string) string {
	return strings.ToLower(token)
}

// Runes returns the alphabet characters in sorted order. The returned slice
// must not be modified.
func (a *Alphabet) Runes() []rune {
	return a.runes
}

// Size returns the number of distinct characters.
func (a *Alphabet) Size() int {
	return len(a.runes)
}
