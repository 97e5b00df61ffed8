package lm

import (
	"github.com/contextspell/internal/alphabet"
)

// Token is a single word occurrence inside a fragment. Off and Len are rune
// offsets into the original text so callers can splice corrections back in
// without disturbing separators.
type Token struct {
	Text string
	Off  int
	Len  int
}

// Sentence is an ordered run of tokens between sentence boundaries.
type Sentence []Token

// sentence-terminating characters; everything else outside the alphabet is
// a plain separator
func isSentenceEnd(r rune) bool {
	switch r {
	case '.', '!', '?', ';', '\n':
		return true
	}
	return false
}

// Tokenize splits text into sentences of word tokens. A word is a maximal
// run of alphabet characters. Tokens keep their original (non-normalized)
// text; use the alphabet to normalize before vocabulary lookups.
func Tokenize(text string, ab *alphabet.Alphabet) []Sentence {
	var sentences []Sentence
	var current Sentence

	runes := []rune(text)
	start := -1
	flushWord := func(end int) {
		if start < 0 {
			return
		}
		current = append(current, Token{
			Text: string(runes[start:end]),
			Off:  start,
			Len:  end - start,
		})
		start = -1
	}
	flushSentence := func() {
		if len(current) > 0 {
			sentences = append(sentences, current)
			current = nil
		}
	}

	for i, r := range runes {
		if ab.Contains(r) {
			if start < 0 {
				start = i
			}
			continue
		}
		flushWord(i)
		if isSentenceEnd(r) {
			flushSentence()
		}
	}
	flushWord(len(runes))
	flushSentence()

	return sentences
}

// Words flattens a sentence into its token strings.
func (s Sentence) Words() []string {
	words := make([]string, len(s))
	for i, t := range s {
		words[i] = t.Text
	}
	return words
}
