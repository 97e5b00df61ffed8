package corrector

import (
	"sort"
	"strings"

	"github.com/contextspell/internal/lm"
)

func normalizeWord(word string) string {
	return strings.ToLower(strings.TrimSpace(word))
}

// generateCandidates enumerates vocabulary words within edit distance two of
// word, plus the word itself. Enumeration walks positions left to right and
// alphabet runes in sorted order, so the output order is deterministic for a
// given model and word.
func (sc *SpellCorrector) generateCandidates(model *lm.Model, word string) []string {
	seen := make(map[string]bool)
	var out []string
	add := func(cand string) {
		if cand == "" || seen[cand] {
			return
		}
		if model.Known(cand) || sc.customWords[cand] {
			seen[cand] = true
			out = append(out, cand)
		}
	}

	// The original word is always a candidate, known or not.
	if !seen[word] {
		seen[word] = true
		out = append(out, word)
	}

	eachEdit(word, model.Alphabet().Runes(), func(e1 string) {
		add(e1)
		eachEdit(e1, model.Alphabet().Runes(), add)
	})
	return out
}

// eachEdit calls fn for every string one edit away from word: per position a
// delete, a transpose with the next rune, a replace by each alphabet rune,
// and an insert of each alphabet rune (including one past the end).
func eachEdit(word string, runes []rune, fn func(string)) {
	w := []rune(word)
	for i := 0; i <= len(w); i++ {
		if i < len(w) {
			// delete
			fn(string(w[:i]) + string(w[i+1:]))
			// transpose
			if i+1 < len(w) {
				t := make([]rune, len(w))
				copy(t, w)
				t[i], t[i+1] = t[i+1], t[i]
				fn(string(t))
			}
			// replace
			for _, r := range runes {
				if r == w[i] {
					continue
				}
				fn(string(w[:i]) + string(r) + string(w[i+1:]))
			}
		}
		// insert
		for _, r := range runes {
			fn(string(w[:i]) + string(r) + string(w[i:]))
		}
	}
}

// filterByFrequency truncates the candidate set to maxCandidatesToCheck,
// keeping the most frequent corpus words. The sort is stable over the
// generator order and the original word always survives, so truncation is
// reproducible.
func (sc *SpellCorrector) filterByFrequency(model *lm.Model, candidates []string, orig string) []string {
	if len(candidates) <= sc.maxCandidatesToCheck {
		return candidates
	}

	byCount := make([]string, len(candidates))
	copy(byCount, candidates)
	sort.SliceStable(byCount, func(i, j int) bool {
		return model.WordCount(byCount[i]) > model.WordCount(byCount[j])
	})

	kept := byCount[:sc.maxCandidatesToCheck]
	hasOrig := false
	for _, c := range kept {
		if c == orig {
			hasOrig = true
			break
		}
	}
	if !hasOrig {
		kept = append(kept[:len(kept)-1], orig)
	}

	// Re-emit in generator order so downstream tie-breaks stay stable.
	keep := make(map[string]bool, len(kept))
	for _, c := range kept {
		keep[c] = true
	}
	out := make([]string, 0, len(kept))
	for _, c := range candidates {
		if keep[c] {
			out = append(out, c)
		}
	}
	return out
}
