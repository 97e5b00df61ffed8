package lm

import (
	"bufio"
	"errors"
	"fmt"
	"os"

	"github.com/contextspell/internal/alphabet"
)

// ErrEmptyCorpus indicates a training corpus with no usable tokens.
var ErrEmptyCorpus = errors.New("training corpus contains no words")

// maxLineSize bounds a single corpus line; corpora are expected to be
// newline-delimited text.
const maxLineSize = 16 * 1024 * 1024

// Train builds a model from a plain-text corpus file and an alphabet
// definition file. The corpus is streamed line by line; a newline always
// terminates a sentence, so memory use is bounded by line length.
func Train(corpusPath, alphabetPath string) (*Model, error) {
	ab, err := alphabet.Load(alphabetPath)
	if err != nil {
		return nil, fmt.Errorf("loading alphabet: %w", err)
	}

	f, err := os.Open(corpusPath)
	if err != nil {
		return nil, fmt.Errorf("opening corpus: %w", err)
	}
	defer f.Close()

	m := newModel(ab)

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 1024*1024), maxLineSize)
	for scanner.Scan() {
		for _, sentence := range Tokenize(scanner.Text(), ab) {
			m.addSentence(sentence)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading corpus: %w", err)
	}

	if m.totalTokens == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmptyCorpus, corpusPath)
	}
	return m, nil
}

// addSentence folds one sentence into the vocabulary and the n-gram tables.
func (m *Model) addSentence(sentence Sentence) {
	ids := make([]WordID, len(sentence))
	for i, tok := range sentence {
		// A full vocabulary degrades new words to the unknown bucket
		// rather than failing training.
		id, _ := m.vocab.AddWord(m.ab.Normalize(tok.Text))
		ids[i] = id
	}

	for i, w := range ids {
		m.gram1[w]++
		m.totalTokens++
		if i+1 < len(ids) {
			m.gram2[key2(w, ids[i+1])]++
		}
		if i+2 < len(ids) {
			m.gram3[key3(w, ids[i+1], ids[i+2])]++
		}
	}
}
