package segment

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"hash"
	"hash/crc32"
	"io"
	"os"

	"github.com/Adithya-Monish-Kumar-K/docindex/internal/indexer/index"
	apperrors "github.com/Adithya-Monish-Kumar-K/docindex/pkg/errors"
)

// DefaultMaxFieldLength bounds path and word lengths accepted by a Reader.
const DefaultMaxFieldLength = 1 << 20

// preallocLimit caps slice capacity taken from untrusted count fields.
const preallocLimit = 4096

// Info summarises an index file without building the in-memory index.
type Info struct {
	Header    Header
	Documents int
	Words     int
	Postings  int
	Size      int64
}

// Reader loads index files written by Writer.
type Reader struct {
	maxFieldLength uint64
}

// NewReader creates a Reader that rejects length fields above
// maxFieldLength bytes. A non-positive value selects DefaultMaxFieldLength.
func NewReader(maxFieldLength int) *Reader {
	if maxFieldLength <= 0 {
		maxFieldLength = DefaultMaxFieldLength
	}
	return &Reader{maxFieldLength: uint64(maxFieldLength)}
}

// Read loads the index stored at path. Any malformed or truncated content is
// reported as ErrCorruptIndex; no partially populated index is returned.
func (r *Reader) Read(path string) (*index.MemoryIndex, error) {
	snap, _, err := r.readSnapshot(path)
	if err != nil {
		return nil, err
	}
	idx, err := index.Restore(snap)
	if err != nil {
		return nil, apperrors.WithPath(err, path)
	}
	return idx, nil
}

// readSnapshot decodes path into a Snapshot without validating cross
// references between the word and document tables.
func (r *Reader) readSnapshot(path string) (index.Snapshot, Header, error) {
	var snap index.Snapshot
	header, err := r.scan(path, func(d *bodyDecoder) error {
		var err error
		snap, err = d.snapshot()
		return err
	})
	if err != nil {
		return index.Snapshot{}, Header{}, err
	}
	return snap, header, nil
}

// Stat walks the file and counts its contents.
func (r *Reader) Stat(path string) (Info, error) {
	var info Info
	header, err := r.scan(path, func(d *bodyDecoder) error {
		snap, err := d.snapshot()
		if err != nil {
			return err
		}
		info.Documents = len(snap.Documents)
		info.Words = len(snap.Terms)
		for _, t := range snap.Terms {
			info.Postings += len(t.DocIDs)
		}
		return nil
	})
	if err != nil {
		return Info{}, err
	}
	info.Header = header
	if fi, err := os.Stat(path); err == nil {
		info.Size = fi.Size()
	}
	return info, nil
}

func (r *Reader) scan(path string, decode func(*bodyDecoder) error) (Header, error) {
	f, err := os.Open(path)
	if err != nil {
		var sentinel error = apperrors.ErrPersistence
		if errors.Is(err, os.ErrNotExist) {
			sentinel = apperrors.ErrIndexNotFound
		}
		return Header{}, apperrors.Wrap(sentinel, path, fmt.Errorf("opening index file: %w", err))
	}
	defer f.Close()

	buf := bufio.NewReader(f)
	header, err := readHeader(buf)
	if err != nil {
		return Header{}, corrupt(path, err)
	}
	body, release, err := decompressReader(buf, header.Compression)
	if err != nil {
		return Header{}, corrupt(path, err)
	}
	defer release()

	d := newBodyDecoder(body, r.maxFieldLength)
	if err := decode(d); err != nil {
		return Header{}, corrupt(path, err)
	}
	if err := d.verify(); err != nil {
		return Header{}, corrupt(path, err)
	}
	return header, nil
}

func corrupt(path string, err error) error {
	return apperrors.Wrap(apperrors.ErrCorruptIndex, path, err)
}

func readHeader(r io.Reader) (Header, error) {
	b := make([]byte, HeaderSize)
	if _, err := io.ReadFull(r, b); err != nil {
		return Header{}, fmt.Errorf("reading header: %w", truncated(err))
	}
	h := Header{
		Magic:       binary.LittleEndian.Uint32(b[0:4]),
		Version:     binary.LittleEndian.Uint32(b[4:8]),
		Compression: Compression(b[8]),
	}
	if h.Magic != MagicBytes {
		return Header{}, fmt.Errorf("bad magic bytes %x", h.Magic)
	}
	if h.Version != FormatVersion {
		return Header{}, fmt.Errorf("unsupported format version %d", h.Version)
	}
	if !h.Compression.valid() {
		return Header{}, fmt.Errorf("unsupported compression %s", h.Compression)
	}
	return h, nil
}

// bodyDecoder mirrors bodyEncoder, hashing every byte it consumes.
type bodyDecoder struct {
	src            io.Reader
	in             io.Reader
	crc            hash.Hash32
	maxFieldLength uint64
	scratch        [8]byte
}

func newBodyDecoder(src io.Reader, maxFieldLength uint64) *bodyDecoder {
	crc := crc32.NewIEEE()
	return &bodyDecoder{
		src:            src,
		in:             io.TeeReader(src, crc),
		crc:            crc,
		maxFieldLength: maxFieldLength,
	}
}

func (d *bodyDecoder) snapshot() (index.Snapshot, error) {
	numDocs, err := d.u64()
	if err != nil {
		return index.Snapshot{}, fmt.Errorf("reading document count: %w", err)
	}
	docs := make([]index.Document, 0, min(numDocs, preallocLimit))
	for i := uint64(0); i < numDocs; i++ {
		id, err := d.u32()
		if err != nil {
			return index.Snapshot{}, fmt.Errorf("reading document %d id: %w", i, err)
		}
		path, err := d.str()
		if err != nil {
			return index.Snapshot{}, fmt.Errorf("reading document %d path: %w", id, err)
		}
		docs = append(docs, index.Document{ID: index.DocID(id), Path: path})
	}

	numWords, err := d.u64()
	if err != nil {
		return index.Snapshot{}, fmt.Errorf("reading word count: %w", err)
	}
	terms := make([]index.TermEntry, 0, min(numWords, preallocLimit))
	for i := uint64(0); i < numWords; i++ {
		word, err := d.str()
		if err != nil {
			return index.Snapshot{}, fmt.Errorf("reading word %d: %w", i, err)
		}
		n, err := d.u64()
		if err != nil {
			return index.Snapshot{}, fmt.Errorf("reading postings count for %q: %w", word, err)
		}
		ids := make([]index.DocID, 0, min(n, preallocLimit))
		for j := uint64(0); j < n; j++ {
			id, err := d.u32()
			if err != nil {
				return index.Snapshot{}, fmt.Errorf("reading postings for %q: %w", word, err)
			}
			ids = append(ids, index.DocID(id))
		}
		terms = append(terms, index.TermEntry{Term: word, DocIDs: ids})
	}
	return index.Snapshot{Documents: docs, Terms: terms}, nil
}

// verify reads the trailing checksum straight from the source so that it
// does not feed the running sum, then requires the body to end.
func (d *bodyDecoder) verify() error {
	want := d.crc.Sum32()
	if _, err := io.ReadFull(d.src, d.scratch[:4]); err != nil {
		return fmt.Errorf("reading checksum: %w", truncated(err))
	}
	if got := binary.LittleEndian.Uint32(d.scratch[:4]); got != want {
		return fmt.Errorf("checksum mismatch: stored %08x, computed %08x", got, want)
	}
	// Reading past the checksum makes compressed readers consume the frame
	// trailer, which is where a truncated frame shows up.
	switch _, err := io.ReadFull(d.src, d.scratch[:1]); {
	case err == nil:
		return errors.New("trailing data after checksum")
	case !errors.Is(err, io.EOF):
		return fmt.Errorf("reading end of body: %w", truncated(err))
	}
	return nil
}

func (d *bodyDecoder) u32() (uint32, error) {
	if _, err := io.ReadFull(d.in, d.scratch[:4]); err != nil {
		return 0, truncated(err)
	}
	return binary.LittleEndian.Uint32(d.scratch[:4]), nil
}

func (d *bodyDecoder) u64() (uint64, error) {
	if _, err := io.ReadFull(d.in, d.scratch[:8]); err != nil {
		return 0, truncated(err)
	}
	return binary.LittleEndian.Uint64(d.scratch[:8]), nil
}

func (d *bodyDecoder) str() (string, error) {
	n, err := d.u64()
	if err != nil {
		return "", err
	}
	if n > d.maxFieldLength {
		return "", fmt.Errorf("field length %d exceeds limit %d", n, d.maxFieldLength)
	}
	b := make([]byte, n)
	if _, err := io.ReadFull(d.in, b); err != nil {
		return "", truncated(err)
	}
	return string(b), nil
}

func truncated(err error) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return fmt.Errorf("unexpected end of file: %w", io.ErrUnexpectedEOF)
	}
	return err
}
