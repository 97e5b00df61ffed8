// Package lm implements the trigram statistical language model behind the
// spell corrector: vocabulary construction, n-gram counting, smoothed
// scoring, and the persisted binary model format.
package lm

import (
	"math"

	"github.com/contextspell/internal/alphabet"
)

// Smoothing constants. Probabilities are interpolated across the three
// n-gram orders, each order additively smoothed, so every n-gram -- seen or
// not -- scores above zero.
const (
	addK = 0.05

	weightGram1 = 0.05
	weightGram2 = 0.15
	weightGram3 = 0.80
)

// Model is a trained trigram language model. Immutable after training or
// loading; safe for concurrent readers.
type Model struct {
	ab    *alphabet.Alphabet
	vocab *Vocabulary

	gram1 map[WordID]int64
	gram2 map[uint64]int64
	gram3 map[uint64]int64

	totalTokens int64
	checkSum    uint64
}

// Stats summarises a trained model.
type Stats struct {
	VocabSize   int    `json:"vocab_size"`
	Gram1Count  int    `json:"gram1_count"`
	Gram2Count  int    `json:"gram2_count"`
	Gram3Count  int    `json:"gram3_count"`
	TotalTokens int64  `json:"total_tokens"`
	CheckSum    uint64 `json:"checksum"`
}

func newModel(ab *alphabet.Alphabet) *Model {
	return &Model{
		ab:    ab,
		vocab: NewVocabulary(),
		gram1: make(map[WordID]int64),
		gram2: make(map[uint64]int64),
		gram3: make(map[uint64]int64),
	}
}

// key2 and key3 pack word ids into single map keys, 21 bits per id.
func key2(a, b WordID) uint64 {
	return uint64(a)<<21 | uint64(b)
}

func key3(a, b, c WordID) uint64 {
	return uint64(a)<<42 | uint64(b)<<21 | uint64(c)
}

// Alphabet returns the alphabet the model was trained with.
func (m *Model) Alphabet() *alphabet.Alphabet {
	return m.ab
}

// Vocab returns the model vocabulary.
func (m *Model) Vocab() *Vocabulary {
	return m.vocab
}

// Known reports whether the normalized form of word is in the vocabulary.
func (m *Model) Known(word string) bool {
	return m.vocab.Has(m.ab.Normalize(word))
}

// WordCount returns the corpus frequency of word, zero for unknown words.
func (m *Model) WordCount(word string) int64 {
	return m.gram1[m.vocab.ID(m.ab.Normalize(word))]
}

// Stats returns summary statistics. CheckSum is zero until the model has
// been saved or loaded.
func (m *Model) Stats() Stats {
	return Stats{
		VocabSize:   m.vocab.Size(),
		Gram1Count:  len(m.gram1),
		Gram2Count:  len(m.gram2),
		Gram3Count:  len(m.gram3),
		TotalTokens: m.totalTokens,
		CheckSum:    m.checkSum,
	}
}

// CheckSum returns the content checksum recorded at save/load time.
func (m *Model) CheckSum() uint64 {
	return m.checkSum
}

// vocabPlusUnknown is the smoothing denominator vocabulary size: every known
// word plus the unknown/sentinel bucket.
func (m *Model) vocabPlusUnknown() float64 {
	return float64(m.vocab.Size() + 1)
}

func (m *Model) gram1Prob(w WordID) float64 {
	return (float64(m.gram1[w]) + addK) / (float64(m.totalTokens) + addK*m.vocabPlusUnknown())
}

func (m *Model) gram2Prob(a, w WordID) float64 {
	return (float64(m.gram2[key2(a, w)]) + addK) / (float64(m.gram1[a]) + addK*m.vocabPlusUnknown())
}

func (m *Model) gram3Prob(a, b, w WordID) float64 {
	return (float64(m.gram3[key3(a, b, w)]) + addK) / (float64(m.gram2[key2(a, b)]) + addK*m.vocabPlusUnknown())
}

// prob is the interpolated probability of w following context (a, b).
func (m *Model) prob(a, b, w WordID) float64 {
	return weightGram3*m.gram3Prob(a, b, w) +
		weightGram2*m.gram2Prob(b, w) +
		weightGram1*m.gram1Prob(w)
}

// ScoreIDs returns the log-probability of a sentence of word ids. The two
// context slots before the first word are the boundary sentinel.
func (m *Model) ScoreIDs(sentence []WordID) float64 {
	score := 0.0
	a, b := UnknownWordID, UnknownWordID
	for _, w := range sentence {
		score += math.Log(m.prob(a, b, w))
		a, b = b, w
	}
	return score
}

// Score returns the log-probability of a sentence of words. Words are
// normalized before lookup; out-of-vocabulary words map to the unknown
// sentinel.
func (m *Model) Score(words []string) float64 {
	ids := make([]WordID, len(words))
	for i, w := range words {
		ids[i] = m.vocab.ID(m.ab.Normalize(w))
	}
	return m.ScoreIDs(ids)
}

// ScoreNGram returns the smoothed log-probability of w3 following the
// context (w1, w2). Pass empty strings for context slots at an utterance
// edge; they map to the boundary sentinel.
func (m *Model) ScoreNGram(w1, w2, w3 string) float64 {
	a := m.vocab.ID(m.ab.Normalize(w1))
	b := m.vocab.ID(m.ab.Normalize(w2))
	w := m.vocab.ID(m.ab.Normalize(w3))
	return math.Log(m.prob(a, b, w))
}

// Tokenize splits text using the model's alphabet.
func (m *Model) Tokenize(text string) []Sentence {
	return Tokenize(text, m.ab)
}
