package lm

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// trainTestModel trains a tiny model from a repeated sentence corpus.
func trainTestModel(t *testing.T, corpus string) *Model {
	t.Helper()
	dir := t.TempDir()

	corpusPath := filepath.Join(dir, "corpus.txt")
	if err := os.WriteFile(corpusPath, []byte(corpus), 0o644); err != nil {
		t.Fatalf("writing corpus: %v", err)
	}
	alphabetPath := filepath.Join(dir, "alphabet.txt")
	if err := os.WriteFile(alphabetPath, []byte("abcdefghijklmnopqrstuvwxyz\n"), 0o644); err != nil {
		t.Fatalf("writing alphabet: %v", err)
	}

	m, err := Train(corpusPath, alphabetPath)
	if err != nil {
		t.Fatalf("Train: %v", err)
	}
	return m
}

func catMatCorpus() string {
	return strings.Repeat("the cat sat on the mat\n", 50)
}

func TestTrainBuildsVocabulary(t *testing.T) {
	m := trainTestModel(t, catMatCorpus())

	for _, w := range []string{"the", "cat", "sat", "on", "mat"} {
		if !m.Known(w) {
			t.Errorf("Known(%q) = false, want true", w)
		}
	}
	if m.Known("sot") {
		t.Error("Known(sot) = true, want false")
	}
	if got := m.Vocab().Size(); got != 5 {
		t.Errorf("vocab size = %d, want 5", got)
	}
	if got := m.WordCount("the"); got != 100 {
		t.Errorf("WordCount(the) = %d, want 100", got)
	}
}

func TestTrainEmptyCorpus(t *testing.T) {
	dir := t.TempDir()
	corpusPath := filepath.Join(dir, "corpus.txt")
	alphabetPath := filepath.Join(dir, "alphabet.txt")
	if err := os.WriteFile(corpusPath, []byte("12345 !!! 67890\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(alphabetPath, []byte("abc\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := Train(corpusPath, alphabetPath)
	if !errors.Is(err, ErrEmptyCorpus) {
		t.Errorf("Train error = %v, want ErrEmptyCorpus", err)
	}
}

func TestTrainMissingFiles(t *testing.T) {
	dir := t.TempDir()
	alphabetPath := filepath.Join(dir, "alphabet.txt")
	if err := os.WriteFile(alphabetPath, []byte("abc\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := Train(filepath.Join(dir, "nope.txt"), alphabetPath); err == nil {
		t.Error("Train with missing corpus succeeded")
	}
	if _, err := Train(alphabetPath, filepath.Join(dir, "nope.txt")); err == nil {
		t.Error("Train with missing alphabet succeeded")
	}
}

func TestScorePrefersSeenContext(t *testing.T) {
	m := trainTestModel(t, catMatCorpus())

	seen := m.Score([]string{"the", "cat", "sat", "on", "the", "mat"})
	unseen := m.Score([]string{"the", "cat", "sot", "on", "the", "mat"})
	if seen <= unseen {
		t.Errorf("Score(seen) = %f, Score(unseen) = %f; want seen > unseen", seen, unseen)
	}
}

func TestScoreNGram(t *testing.T) {
	m := trainTestModel(t, catMatCorpus())

	likely := m.ScoreNGram("the", "cat", "sat")
	unlikely := m.ScoreNGram("the", "cat", "mat")
	if likely <= unlikely {
		t.Errorf("ScoreNGram(the,cat,sat) = %f not above ScoreNGram(the,cat,mat) = %f", likely, unlikely)
	}

	// Sentinel context at utterance edges must still score.
	edge := m.ScoreNGram("", "", "the")
	if edge >= 0 {
		t.Errorf("ScoreNGram at edge = %f, want negative log-probability", edge)
	}

	// Pure: repeated calls agree exactly.
	if again := m.ScoreNGram("the", "cat", "sat"); again != likely {
		t.Errorf("ScoreNGram not deterministic: %f then %f", likely, again)
	}
}

func TestScoreUnknownWordsStillFinite(t *testing.T) {
	m := trainTestModel(t, catMatCorpus())

	score := m.Score([]string{"qqq", "zzz", "xxx"})
	if score >= 0 {
		t.Errorf("Score of unknown words = %f, want negative", score)
	}
	if score != score || score <= -1e308 {
		t.Errorf("Score of unknown words = %f, want finite", score)
	}
}

func TestKeyPacking(t *testing.T) {
	// Distinct id tuples must map to distinct keys at the id limit.
	a, b, c := WordID(maxWordID), WordID(1), WordID(maxWordID)
	if key3(a, b, c) == key3(b, a, c) {
		t.Error("key3 collision for swapped ids")
	}
	if key2(a, b) == key2(b, a) {
		t.Error("key2 collision for swapped ids")
	}
}
