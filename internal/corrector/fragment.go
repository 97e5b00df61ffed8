package corrector

import (
	"encoding/json"
	"math"
	"strings"
	"unicode"

	"github.com/contextspell/internal/lm"
)

// fixEpsilon is the margin a replacement must beat the original word's own
// score by before FixFragment applies it. The known/unknown penalties do the
// real handicapping; this only guards against float noise.
const fixEpsilon = 1e-9

// bestReplacementLocked picks the replacement for position j of a lowered
// sentence, or the original word when nothing scores strictly better.
func (sc *SpellCorrector) bestReplacementLocked(words []string, j int) string {
	scored := sc.candidatesScoredLocked(words, j)
	if len(scored) == 0 {
		return words[j]
	}
	orig := sc.model.Alphabet().Normalize(words[j])
	if scored[0].Word == orig {
		return orig
	}
	origScore := math.Inf(-1)
	for _, s := range scored {
		if s.Word == orig {
			origScore = s.Score
			break
		}
	}
	if scored[0].Score > origScore+fixEpsilon {
		return scored[0].Word
	}
	return orig
}

// FixFragment corrects a fragment of raw text, preserving separators,
// punctuation and the casing of replaced words. Every position is corrected
// against the original sentence context in a single pass, so the result does
// not depend on processing order and the operation is idempotent on already
// correct text. Without a loaded model the input is returned unchanged.
func (sc *SpellCorrector) FixFragment(text string) string {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	if sc.model == nil {
		return text
	}

	origRunes := []rune(text)
	origSentences := sc.model.Tokenize(text)
	lowSentences := sc.model.Tokenize(strings.ToLower(text))
	if !parallelShape(origSentences, lowSentences) {
		// Case folding changed the token structure; correcting offsets
		// would be unsafe, so leave the fragment alone.
		return text
	}

	var b strings.Builder
	b.Grow(len(text))
	origPos := 0
	for i, sentence := range lowSentences {
		words := sentence.Words()
		for j, tok := range sentence {
			origTok := origSentences[i][j]
			b.WriteString(string(origRunes[origPos:origTok.Off]))
			origPos = origTok.Off + origTok.Len

			replacement := sc.bestReplacementLocked(words, j)
			if replacement == tok.Text {
				b.WriteString(origTok.Text)
			} else {
				b.WriteString(transferCase(replacement, origTok.Text))
			}
		}
	}
	b.WriteString(string(origRunes[origPos:]))
	return b.String()
}

// FixFragmentNormalized corrects a fragment and re-emits it in normalized
// form: lower-case words separated by single spaces, sentences terminated by
// a period. Without a loaded model the input is returned unchanged.
func (sc *SpellCorrector) FixFragmentNormalized(text string) string {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	if sc.model == nil {
		return text
	}

	var b strings.Builder
	for _, sentence := range sc.model.Tokenize(strings.ToLower(text)) {
		words := sentence.Words()
		for j := range words {
			if j > 0 {
				b.WriteByte(' ')
			}
			b.WriteString(sc.bestReplacementLocked(words, j))
		}
		if len(words) > 0 {
			b.WriteString(". ")
		}
	}
	return strings.TrimSuffix(b.String(), " ")
}

// misspelling is one entry of the GetALLCandidatesScoredJSON report.
type misspelling struct {
	PosFrom    int          `json:"pos_from"`
	Len        int          `json:"len"`
	Original   string       `json:"original"`
	Candidates []ScoredWord `json:"candidates"`
}

type misspellingReport struct {
	Results []misspelling `json:"results"`
}

// maxReportedCandidates bounds candidates per misspelling in the JSON report.
const maxReportedCandidates = 7

// GetALLCandidatesScoredJSON scans a whole fragment and reports every
// position whose top-scored candidate differs from the original word, with
// the candidate list for each. The result is a JSON document; malformed or
// unscorable input yields an empty result set, never an error.
func (sc *SpellCorrector) GetALLCandidatesScoredJSON(text string) string {
	sc.mu.RLock()
	defer sc.mu.RUnlock()

	report := misspellingReport{Results: []misspelling{}}
	if sc.model != nil {
		for _, sentence := range sc.model.Tokenize(strings.ToLower(text)) {
			words := sentence.Words()
			for j, tok := range sentence {
				scored := sc.candidatesScoredLocked(words, j)
				if len(scored) == 0 || scored[0].Word == tok.Text {
					continue
				}
				if len(scored) > maxReportedCandidates {
					scored = scored[:maxReportedCandidates]
				}
				report.Results = append(report.Results, misspelling{
					PosFrom:    tok.Off,
					Len:        tok.Len,
					Original:   tok.Text,
					Candidates: scored,
				})
			}
		}
	}

	out, err := json.MarshalIndent(report, "", "    ")
	if err != nil {
		return `{"results": []}`
	}
	return string(out)
}

// parallelShape checks that two tokenizations have identical sentence/token
// structure.
func parallelShape(a, b []lm.Sentence) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if len(a[i]) != len(b[i]) {
			return false
		}
	}
	return true
}

// transferCase copies the casing pattern of orig onto word, rune by rune;
// runes past the end of orig follow orig's last rune. This keeps "Teh" ->
// "The" and "TEH" -> "THE" without tracking a separate case mask.
func transferCase(word, orig string) string {
	origRunes := []rune(orig)
	if len(origRunes) == 0 {
		return word
	}
	out := make([]rune, 0, len(word))
	for k, r := range []rune(word) {
		n := k
		if n >= len(origRunes) {
			n = len(origRunes) - 1
		}
		if unicode.IsUpper(origRunes[n]) {
			r = unicode.ToUpper(r)
		}
		out = append(out, r)
	}
	return string(out)
}
