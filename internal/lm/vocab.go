package lm

// WordID is a dense identifier assigned to each vocabulary word at training
// time. Ids are stable for the lifetime of a model, including across
// save/load cycles.
type WordID uint32

// UnknownWordID doubles as the out-of-vocabulary id and the sentence
// boundary sentinel used when scoring near utterance edges.
const UnknownWordID WordID = 0

// maxWordID bounds the vocabulary so three ids pack into a single uint64
// n-gram key (21 bits each).
const maxWordID = 1<<21 - 1

// Vocabulary maps words to dense ids. Append-only during training, frozen
// once the model is built or loaded.
type Vocabulary struct {
	ids   map[string]WordID
	words []string // index = id-1; id 0 is the unknown sentinel
}

// NewVocabulary returns an empty vocabulary.
func NewVocabulary() *Vocabulary {
	return &Vocabulary{ids: make(map[string]WordID)}
}

// AddWord returns the id for word, assigning the next free id if the word
// is new. The second result is false when the vocabulary is full.
func (v *Vocabulary) AddWord(word string) (WordID, bool) {
	if id, ok := v.ids[word]; ok {
		return id, true
	}
	if len(v.words) >= maxWordID {
		return UnknownWordID, false
	}
	v.words = append(v.words, word)
	id := WordID(len(v.words))
	v.ids[word] = id
	return id, true
}

// ID returns the id of word, or UnknownWordID if it is not in the
// vocabulary.
func (v *Vocabulary) ID(word string) WordID {
	return v.ids[word]
}

// Has reports whether word is in the vocabulary.
func (v *Vocabulary) Has(word string) bool {
	_, ok := v.ids[word]
	return ok
}

// Word returns the word for id, or "" for the unknown sentinel and ids out
// of range.
func (v *Vocabulary) Word(id WordID) string {
	if id == UnknownWordID || int(id) > len(v.words) {
		return ""
	}
	return v.words[id-1]
}

// Size returns the number of known words, excluding the unknown sentinel.
func (v *Vocabulary) Size() int {
	return len(v.words)
}

// Each calls fn for every word in id order. Iteration order is stable.
func (v *Vocabulary) Each(fn func(word string, id WordID)) {
	for i, w := range v.words {
		fn(w, WordID(i+1))
	}
}
