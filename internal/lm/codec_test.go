package lm

import (
	"encoding/binary"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestSaveLoadRoundTrip(t *testing.T) {
	m := trainTestModel(t, catMatCorpus())
	path := filepath.Join(t.TempDir(), "model.bin")

	if err := m.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	sentences := [][]string{
		{"the", "cat", "sat", "on", "the", "mat"},
		{"the", "cat", "sot", "on", "the", "mat"},
		{"mat", "the", "on"},
		{"unknownword"},
	}
	for _, s := range sentences {
		if got, want := loaded.Score(s), m.Score(s); got != want {
			t.Errorf("Score(%v) after round trip = %v, want %v", s, got, want)
		}
	}

	if got, want := loaded.ScoreNGram("the", "cat", "sat"), m.ScoreNGram("the", "cat", "sat"); got != want {
		t.Errorf("ScoreNGram after round trip = %v, want %v", got, want)
	}
	if loaded.Vocab().Size() != m.Vocab().Size() {
		t.Errorf("vocab size after round trip = %d, want %d", loaded.Vocab().Size(), m.Vocab().Size())
	}
	if loaded.CheckSum() != m.CheckSum() {
		t.Errorf("checksum after round trip = %x, want %x", loaded.CheckSum(), m.CheckSum())
	}
}

func TestSaveIsDeterministic(t *testing.T) {
	m := trainTestModel(t, catMatCorpus())
	dir := t.TempDir()
	pathA := filepath.Join(dir, "a.bin")
	pathB := filepath.Join(dir, "b.bin")

	if err := m.Save(pathA); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := m.Save(pathB); err != nil {
		t.Fatalf("Save: %v", err)
	}

	a, err := os.ReadFile(pathA)
	if err != nil {
		t.Fatal(err)
	}
	b, err := os.ReadFile(pathB)
	if err != nil {
		t.Fatal(err)
	}
	if string(a) != string(b) {
		t.Error("two saves of the same model produced different bytes")
	}
}

func TestLoadCorruptFiles(t *testing.T) {
	m := trainTestModel(t, catMatCorpus())
	dir := t.TempDir()
	path := filepath.Join(dir, "model.bin")
	if err := m.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}
	good, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name   string
		mutate func([]byte) []byte
	}{
		{
			name:   "truncated",
			mutate: func(b []byte) []byte { return b[:len(b)/2] },
		},
		{
			name:   "truncated trailer",
			mutate: func(b []byte) []byte { return b[:len(b)-8] },
		},
		{
			name: "bad magic",
			mutate: func(b []byte) []byte {
				b[0] ^= 0xff
				return b
			},
		},
		{
			name: "bad version",
			mutate: func(b []byte) []byte {
				b[8] ^= 0xff
				return b
			},
		},
		{
			name: "flipped payload byte",
			mutate: func(b []byte) []byte {
				b[len(b)/2] ^= 0x01
				return b
			},
		},
		{
			name:   "empty file",
			mutate: func(b []byte) []byte { return nil },
		},
		{
			// A count field larger than the remaining file must be
			// rejected up front, not used to size allocations.
			name: "huge alphabet count",
			mutate: func(b []byte) []byte {
				binary.LittleEndian.PutUint32(b[10:14], 0xffffffff)
				return b
			},
		},
		{
			name: "huge count in short file",
			mutate: func(b []byte) []byte {
				short := make([]byte, 0, 18)
				short = binary.LittleEndian.AppendUint64(short, 0x636f6e7370656c6c)
				short = binary.LittleEndian.AppendUint16(short, 1)
				short = binary.LittleEndian.AppendUint32(short, 200_000_000)
				return append(short, 0, 0, 0, 0)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bad := make([]byte, len(good))
			copy(bad, good)
			bad = tt.mutate(bad)

			badPath := filepath.Join(dir, "bad-"+tt.name+".bin")
			if err := os.WriteFile(badPath, bad, 0o644); err != nil {
				t.Fatal(err)
			}
			_, err := Load(badPath)
			if !errors.Is(err, ErrCorruptModel) {
				t.Errorf("Load error = %v, want ErrCorruptModel", err)
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.bin"))
	if err == nil {
		t.Fatal("Load of missing file succeeded")
	}
	if errors.Is(err, ErrCorruptModel) {
		t.Errorf("missing file reported as corrupt: %v", err)
	}
}
