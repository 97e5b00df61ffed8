// Package corrector implements the context-aware spell corrector: candidate
// generation over the model alphabet, language-model scoring with known/
// unknown word penalties, and whole-fragment correction.
package corrector

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/contextspell/internal/customdict"
	"github.com/contextspell/internal/lm"
)

var (
	// ErrNoModel is returned by operations that require a loaded model.
	ErrNoModel = errors.New("no language model loaded")

	// ErrInvalidBound is returned for non-positive configuration bounds.
	ErrInvalidBound = errors.New("bound must be positive")
)

// Defaults match the original engine's tuning.
const (
	DefaultKnownWordsPenalty    = 20.0
	DefaultUnknownWordsPenalty  = 5.0
	DefaultMaxCandidatesToCheck = 14
)

// ScoredWord is a candidate with its context score. Higher is better.
type ScoredWord struct {
	Word  string  `json:"candidate"`
	Score float64 `json:"score"`
}

// SpellCorrector owns one language model and corrects text against it.
// The model reference is swapped wholesale by LoadLangModel/TrainLangModel;
// scoring calls read it under a shared lock, so concurrent queries are safe
// while a reload is in flight.
type SpellCorrector struct {
	mu sync.RWMutex

	model *lm.Model

	knownWordsPenalty    float64
	unknownWordsPenalty  float64
	maxCandidatesToCheck int

	dict        *customdict.Dict
	customWords map[string]bool
}

// New returns a corrector with default penalties and no model loaded.
func New() *SpellCorrector {
	return &SpellCorrector{
		knownWordsPenalty:    DefaultKnownWordsPenalty,
		unknownWordsPenalty:  DefaultUnknownWordsPenalty,
		maxCandidatesToCheck: DefaultMaxCandidatesToCheck,
		customWords:          make(map[string]bool),
	}
}

// WithCustomDict attaches a Redis-backed custom dictionary. Stored words are
// loaded on the next LoadLangModel / RefreshCustomWords call.
func (sc *SpellCorrector) WithCustomDict(dict *customdict.Dict) *SpellCorrector {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.dict = dict
	return sc
}

// LoadLangModel replaces the owned model with one loaded from modelPath.
// On failure the previously loaded model stays in place.
func (sc *SpellCorrector) LoadLangModel(modelPath string) error {
	model, err := lm.Load(modelPath)
	if err != nil {
		return fmt.Errorf("loading language model: %w", err)
	}
	custom, err := sc.fetchCustomWords()
	if err != nil {
		return err
	}

	sc.mu.Lock()
	sc.model = model
	sc.customWords = custom
	sc.mu.Unlock()
	return nil
}

// TrainLangModel trains a model from corpusPath/alphabetPath and persists it
// to modelPath. The currently loaded model is left untouched; call
// LoadLangModel to switch to the new one.
func (sc *SpellCorrector) TrainLangModel(corpusPath, alphabetPath, modelPath string) error {
	model, err := lm.Train(corpusPath, alphabetPath)
	if err != nil {
		return fmt.Errorf("training language model: %w", err)
	}
	if err := model.Save(modelPath); err != nil {
		return fmt.Errorf("saving language model: %w", err)
	}
	return nil
}

// GetLangModel returns the currently loaded model.
func (sc *SpellCorrector) GetLangModel() (*lm.Model, error) {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	if sc.model == nil {
		return nil, ErrNoModel
	}
	return sc.model, nil
}

// SetPenalty configures the score penalties applied to replacement
// candidates. knownWordsPenalty handicaps replacing a word the model knows;
// unknownWordsPenalty handicaps replacing an unknown one.
func (sc *SpellCorrector) SetPenalty(knownWordsPenalty, unknownWordsPenalty float64) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.knownWordsPenalty = knownWordsPenalty
	sc.unknownWordsPenalty = unknownWordsPenalty
}

// SetMaxCandidatesToCheck bounds how many candidates are scored per word.
func (sc *SpellCorrector) SetMaxCandidatesToCheck(max int) error {
	if max <= 0 {
		return fmt.Errorf("%w: max candidates %d", ErrInvalidBound, max)
	}
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.maxCandidatesToCheck = max
	return nil
}

// AddWord stores a custom word and makes it known to the corrector. The
// store round trip happens outside the lock so scoring is never stalled on
// network I/O.
func (sc *SpellCorrector) AddWord(ctx context.Context, word string) error {
	sc.mu.RLock()
	dict := sc.dict
	sc.mu.RUnlock()
	if dict != nil {
		if err := dict.Add(ctx, word); err != nil {
			return err
		}
	}
	sc.mu.Lock()
	sc.customWords[normalizeWord(word)] = true
	sc.mu.Unlock()
	return nil
}

// RemoveWord deletes a custom word.
func (sc *SpellCorrector) RemoveWord(ctx context.Context, word string) error {
	sc.mu.RLock()
	dict := sc.dict
	sc.mu.RUnlock()
	if dict != nil {
		if err := dict.Remove(ctx, word); err != nil {
			return err
		}
	}
	sc.mu.Lock()
	delete(sc.customWords, normalizeWord(word))
	sc.mu.Unlock()
	return nil
}

// RefreshCustomWords reloads the custom word set from the attached
// dictionary store.
func (sc *SpellCorrector) RefreshCustomWords() error {
	custom, err := sc.fetchCustomWords()
	if err != nil {
		return err
	}
	sc.mu.Lock()
	sc.customWords = custom
	sc.mu.Unlock()
	return nil
}

func (sc *SpellCorrector) fetchCustomWords() (map[string]bool, error) {
	custom := make(map[string]bool)
	sc.mu.RLock()
	dict := sc.dict
	sc.mu.RUnlock()
	if dict == nil {
		return custom, nil
	}
	words, err := dict.All(context.Background())
	if err != nil {
		return nil, fmt.Errorf("loading custom words: %w", err)
	}
	for _, w := range words {
		custom[normalizeWord(w)] = true
	}
	return custom, nil
}

// GetCandidatesScored returns candidates for the word at position in the
// tokenized sentence, ordered by non-increasing score. An out-of-range
// position or a missing model yields an empty result.
func (sc *SpellCorrector) GetCandidatesScored(sentence []string, position int) []ScoredWord {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.candidatesScoredLocked(sentence, position)
}

// GetCandidatesScoredRaw is GetCandidatesScored over tokenizer output.
func (sc *SpellCorrector) GetCandidatesScoredRaw(sentence lm.Sentence, position int) []ScoredWord {
	return sc.GetCandidatesScored(sentence.Words(), position)
}

// GetCandidates returns candidate words only, in score order.
func (sc *SpellCorrector) GetCandidates(sentence []string, position int) []string {
	scored := sc.GetCandidatesScored(sentence, position)
	words := make([]string, len(scored))
	for i, s := range scored {
		words[i] = s.Word
	}
	return words
}

// GetCandidatesRaw is GetCandidates over tokenizer output.
func (sc *SpellCorrector) GetCandidatesRaw(sentence lm.Sentence, position int) []string {
	return sc.GetCandidates(sentence.Words(), position)
}

// candidatesScoredLocked does the real work; callers hold at least a read
// lock.
func (sc *SpellCorrector) candidatesScoredLocked(sentence []string, position int) []ScoredWord {
	model := sc.model
	if model == nil || position < 0 || position >= len(sentence) {
		return nil
	}

	orig := model.Alphabet().Normalize(sentence[position])
	known := model.Known(orig) || sc.customWords[orig]

	candidates := sc.generateCandidates(model, orig)
	candidates = sc.filterByFrequency(model, candidates, orig)

	// Context window: the candidate plus up to two tokens either side,
	// always taken from the original sentence.
	lo := position - 2
	if lo < 0 {
		lo = 0
	}
	hi := position + 2
	if hi > len(sentence)-1 {
		hi = len(sentence) - 1
	}

	scored := make([]ScoredWord, 0, len(candidates))
	window := make([]string, 0, 5)
	for _, cand := range candidates {
		window = window[:0]
		for i := lo; i <= hi; i++ {
			if i == position {
				window = append(window, cand)
			} else {
				window = append(window, sentence[i])
			}
		}
		score := model.Score(window)
		if cand != orig {
			if known {
				score -= sc.knownWordsPenalty
			} else {
				score -= sc.unknownWordsPenalty
			}
		}
		scored = append(scored, ScoredWord{Word: cand, Score: score})
	}

	// Stable sort: equal scores keep the deterministic generator order.
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})
	return scored
}
