package lm

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"hash/fnv"
	"io"
	"os"
	"sort"

	mmap "github.com/edsrzf/mmap-go"

	"github.com/contextspell/internal/alphabet"
)

// ErrCorruptModel indicates a model file that is truncated, checksum-broken,
// or written by an incompatible version.
var ErrCorruptModel = errors.New("corrupt or incompatible model file")

const (
	modelMagic   uint64 = 0x636f6e7370656c6c // "conspell"
	modelVersion uint16 = 1
)

// The on-disk layout is little-endian and self-describing:
//
//	magic, version,
//	alphabet (count + runes),
//	vocabulary (count + length-prefixed words, id = position+1),
//	gram1/gram2/gram3 tables (count + key/count pairs, keys ascending),
//	total token count,
//	FNV-1a checksum of everything above, closing magic.
//
// Tables are written in sorted key order so identical models serialize to
// identical bytes.

type binWriter struct {
	w   io.Writer
	err error
}

func (bw *binWriter) put(v interface{}) {
	if bw.err != nil {
		return
	}
	bw.err = binary.Write(bw.w, binary.LittleEndian, v)
}

func (bw *binWriter) putBytes(b []byte) {
	if bw.err != nil {
		return
	}
	_, bw.err = bw.w.Write(b)
}

// Save serializes the model to path. The written file round-trips exactly:
// a model loaded from it scores identically to the in-memory original.
func (m *Model) Save(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating model file: %w", err)
	}
	defer f.Close()

	buf := bufio.NewWriter(f)
	sum := fnv.New64a()
	bw := &binWriter{w: io.MultiWriter(buf, sum)}

	bw.put(modelMagic)
	bw.put(modelVersion)
	m.writeAlphabet(bw)
	m.writeVocab(bw)
	m.writeGram1(bw)
	m.writeGramN(bw, m.gram2)
	m.writeGramN(bw, m.gram3)
	bw.put(uint64(m.totalTokens))
	if bw.err != nil {
		return fmt.Errorf("writing model: %w", bw.err)
	}

	// checksum and closing magic are outside the checksummed region
	checkSum := sum.Sum64()
	tail := &binWriter{w: buf}
	tail.put(checkSum)
	tail.put(modelMagic)
	if tail.err != nil {
		return fmt.Errorf("writing model trailer: %w", tail.err)
	}
	if err := buf.Flush(); err != nil {
		return fmt.Errorf("flushing model file: %w", err)
	}
	m.checkSum = checkSum
	return nil
}

func (m *Model) writeAlphabet(bw *binWriter) {
	runes := m.ab.Runes()
	bw.put(uint32(len(runes)))
	for _, r := range runes {
		bw.put(int32(r))
	}
}

func (m *Model) writeVocab(bw *binWriter) {
	bw.put(uint32(m.vocab.Size()))
	m.vocab.Each(func(word string, _ WordID) {
		bw.put(uint32(len(word)))
		bw.putBytes([]byte(word))
	})
}

func (m *Model) writeGram1(bw *binWriter) {
	ids := make([]WordID, 0, len(m.gram1))
	for id := range m.gram1 {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	bw.put(uint32(len(ids)))
	for _, id := range ids {
		bw.put(uint32(id))
		bw.put(uint64(m.gram1[id]))
	}
}

func (m *Model) writeGramN(bw *binWriter, grams map[uint64]int64) {
	keys := make([]uint64, 0, len(grams))
	for k := range grams {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	bw.put(uint32(len(keys)))
	for _, k := range keys {
		bw.put(k)
		bw.put(uint64(grams[k]))
	}
}

// binReader is a bounds-checked cursor over the mapped file.
type binReader struct {
	data []byte
	off  int
	err  error
}

func (br *binReader) take(n int) []byte {
	if br.err != nil {
		return nil
	}
	if br.off+n > len(br.data) {
		br.err = fmt.Errorf("%w: truncated at offset %d", ErrCorruptModel, br.off)
		return nil
	}
	b := br.data[br.off : br.off+n]
	br.off += n
	return b
}

func (br *binReader) u16() uint16 {
	b := br.take(2)
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint16(b)
}

func (br *binReader) u32() uint32 {
	b := br.take(4)
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint32(b)
}

func (br *binReader) u64() uint64 {
	b := br.take(8)
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint64(b)
}

// count reads an element count and rejects any count whose elements could
// not fit in the remaining bytes. Counts size allocations, so a corrupt
// count must fail here rather than drive a huge make.
func (br *binReader) count(elemSize int) int {
	n := int(br.u32())
	if br.err != nil {
		return 0
	}
	if remaining := len(br.data) - br.off; n > remaining/elemSize {
		br.err = fmt.Errorf("%w: count %d exceeds remaining %d bytes", ErrCorruptModel, n, remaining)
		return 0
	}
	return n
}

// Load reads a model produced by Save. The file is memory-mapped for the
// duration of the decode and unmapped before returning; the loaded model
// holds no reference to the file.
func Load(path string) (*Model, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening model file: %w", err)
	}
	defer f.Close()

	st, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat model file: %w", err)
	}
	if st.Size() == 0 {
		return nil, fmt.Errorf("%w: empty file", ErrCorruptModel)
	}

	data, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		return nil, fmt.Errorf("mapping model file: %w", err)
	}
	defer data.Unmap()

	return decode([]byte(data))
}

func decode(data []byte) (*Model, error) {
	const trailerSize = 16 // checksum + closing magic
	if len(data) < trailerSize {
		return nil, fmt.Errorf("%w: file too short", ErrCorruptModel)
	}

	br := &binReader{data: data}
	if br.u64() != modelMagic {
		return nil, fmt.Errorf("%w: bad magic", ErrCorruptModel)
	}
	if v := br.u16(); v != modelVersion {
		return nil, fmt.Errorf("%w: version %d, want %d", ErrCorruptModel, v, modelVersion)
	}

	ab, err := readAlphabet(br)
	if err != nil {
		return nil, err
	}
	m := newModel(ab)
	if err := m.readVocab(br); err != nil {
		return nil, err
	}
	if err := m.readGram1(br); err != nil {
		return nil, err
	}
	if m.gram2, err = readGramN(br); err != nil {
		return nil, err
	}
	if m.gram3, err = readGramN(br); err != nil {
		return nil, err
	}
	m.totalTokens = int64(br.u64())
	if br.err != nil {
		return nil, br.err
	}

	payloadEnd := br.off
	storedSum := br.u64()
	if br.u64() != modelMagic {
		if br.err != nil {
			return nil, br.err
		}
		return nil, fmt.Errorf("%w: missing end marker", ErrCorruptModel)
	}
	if br.off != len(data) {
		return nil, fmt.Errorf("%w: %d trailing bytes", ErrCorruptModel, len(data)-br.off)
	}

	sum := fnv.New64a()
	sum.Write(data[:payloadEnd])
	if storedSum != sum.Sum64() {
		return nil, fmt.Errorf("%w: checksum mismatch", ErrCorruptModel)
	}
	m.checkSum = storedSum
	return m, nil
}

func readAlphabet(br *binReader) (*alphabet.Alphabet, error) {
	n := br.count(4)
	runes := make([]rune, 0, n)
	for i := 0; i < n && br.err == nil; i++ {
		runes = append(runes, rune(int32(br.u32())))
	}
	if br.err != nil {
		return nil, br.err
	}
	if len(runes) == 0 {
		return nil, fmt.Errorf("%w: empty alphabet", ErrCorruptModel)
	}
	return alphabet.FromRunes(runes), nil
}

func (m *Model) readVocab(br *binReader) error {
	// Each word costs at least its 4-byte length prefix.
	n := br.count(4)
	for i := 0; i < n; i++ {
		wordLen := int(br.u32())
		b := br.take(wordLen)
		if br.err != nil {
			return br.err
		}
		if _, ok := m.vocab.AddWord(string(b)); !ok {
			return fmt.Errorf("%w: vocabulary overflow", ErrCorruptModel)
		}
	}
	return br.err
}

func (m *Model) readGram1(br *binReader) error {
	n := br.count(12)
	for i := 0; i < n; i++ {
		id := WordID(br.u32())
		count := int64(br.u64())
		if br.err != nil {
			return br.err
		}
		m.gram1[id] = count
	}
	return br.err
}

func readGramN(br *binReader) (map[uint64]int64, error) {
	n := br.count(16)
	grams := make(map[uint64]int64, n)
	for i := 0; i < n; i++ {
		key := br.u64()
		count := int64(br.u64())
		if br.err != nil {
			return nil, br.err
		}
		grams[key] = count
	}
	return grams, br.err
}
