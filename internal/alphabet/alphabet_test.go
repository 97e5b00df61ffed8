package alphabet

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeAlphabetFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "alphabet.txt")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing alphabet file: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeAlphabetFile(t, "# english lower case\nabcdefghijklmnopqrstuvwxyz\n")

	ab, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got := ab.Size(); got != 26 {
		t.Errorf("Size = %d, want 26", got)
	}
	if !ab.Contains('q') {
		t.Error("Contains('q') = false, want true")
	}
	if ab.Contains('ё') {
		t.Error("Contains('ё') = true, want false")
	}
}

func TestLoadCaseFolding(t *testing.T) {
	path := writeAlphabetFile(t, "ABCabc")

	ab, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	// Upper and lower case collapse to one entry each.
	if got := ab.Size(); got != 3 {
		t.Errorf("Size = %d, want 3", got)
	}
	if !ab.Contains('A') || !ab.Contains('a') {
		t.Error("case-insensitive Contains failed")
	}
}

func TestLoadMalformed(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "empty file", content: ""},
		{name: "comments only", content: "# nothing here\n# still nothing\n"},
		{name: "whitespace only", content: "  \n\t\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeAlphabetFile(t, tt.content)
			_, err := Load(path)
			if !errors.Is(err, ErrMalformed) {
				t.Errorf("Load error = %v, want ErrMalformed", err)
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.txt"))
	if err == nil {
		t.Fatal("Load of missing file succeeded")
	}
	if errors.Is(err, ErrMalformed) {
		t.Errorf("missing file reported as malformed: %v", err)
	}
}

func TestIsValid(t *testing.T) {
	ab := FromRunes([]rune("abcdefghijklmnopqrstuvwxyz"))

	tests := []struct {
		token string
		want  bool
	}{
		{"cat", true},
		{"Cat", true},
		{"", false},
		{"cat!", false},
		{"c4t", false},
	}

	for _, tt := range tests {
		if got := ab.IsValid(tt.token); got != tt.want {
			t.Errorf("IsValid(%q) = %v, want %v", tt.token, got, tt.want)
		}
	}
}

func TestRunesSortedAndDeduplicated(t *testing.T) {
	ab := FromRunes([]rune("cbaacb"))

	got := ab.Runes()
	want := []rune{'a', 'b', 'c'}
	if len(got) != len(want) {
		t.Fatalf("Runes = %q, want %q", string(got), string(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Runes = %q, want %q", string(got), string(want))
		}
	}
}

func TestNormalize(t *testing.T) {
	ab := FromRunes([]rune("abc"))
	if got := ab.Normalize("AbC"); got != "abc" {
		t.Errorf("Normalize(AbC) = %q, want abc", got)
	}
}
