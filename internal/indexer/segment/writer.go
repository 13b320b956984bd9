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
	"path/filepath"

	"github.com/dchest/safefile"

	"github.com/Adithya-Monish-Kumar-K/docindex/internal/indexer/index"
	apperrors "github.com/Adithya-Monish-Kumar-K/docindex/pkg/errors"
)

// MagicBytes identifies a docindex file ("DIDX" little-endian).
const (
	MagicBytes    uint32 = 0x58444944
	FormatVersion uint32 = 1
	HeaderSize    int    = 16
)

// Header is the fixed, uncompressed prefix of every index file.
type Header struct {
	Magic       uint32
	Version     uint32
	Compression Compression
}

func (h Header) encode() []byte {
	b := make([]byte, HeaderSize)
	binary.LittleEndian.PutUint32(b[0:4], h.Magic)
	binary.LittleEndian.PutUint32(b[4:8], h.Version)
	b[8] = byte(h.Compression)
	return b
}

// errFieldTooLong marks a path or word that a Reader with the same limit
// would refuse to load.
var errFieldTooLong = errors.New("field exceeds length limit")

// Writer serialises index snapshots into index files.
type Writer struct {
	compression    Compression
	maxFieldLength uint64
}

// NewWriter creates a Writer that encodes file bodies with c and refuses
// paths or words longer than maxFieldLength bytes. A non-positive limit
// selects DefaultMaxFieldLength, matching NewReader.
func NewWriter(c Compression, maxFieldLength int) *Writer {
	if maxFieldLength <= 0 {
		maxFieldLength = DefaultMaxFieldLength
	}
	return &Writer{compression: c, maxFieldLength: uint64(maxFieldLength)}
}

// Write replaces the file at path with snap. The data goes to a temporary
// file in the same directory that is synced and renamed over path on commit,
// so an interrupted write never leaves a partial file under the final name.
// It returns the file size.
func (w *Writer) Write(snap index.Snapshot, path string) (int64, error) {
	if !w.compression.valid() {
		return 0, apperrors.Newf(apperrors.ErrInvalidInput, path, "unsupported compression %s", w.compression)
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return 0, apperrors.Wrap(apperrors.ErrPersistence, path, fmt.Errorf("creating index directory: %w", err))
		}
	}
	f, err := safefile.Create(path, 0644)
	if err != nil {
		return 0, apperrors.Wrap(apperrors.ErrPersistence, path, fmt.Errorf("creating temp index file: %w", err))
	}
	defer f.Close()

	size, err := w.writeFile(f, snap)
	if errors.Is(err, errFieldTooLong) {
		return 0, apperrors.Wrap(apperrors.ErrInvalidInput, path, err)
	}
	if err != nil {
		return 0, apperrors.Wrap(apperrors.ErrPersistence, path, err)
	}
	if err := f.Commit(); err != nil {
		return 0, apperrors.Wrap(apperrors.ErrPersistence, path, fmt.Errorf("committing index file: %w", err))
	}
	return size, nil
}

func (w *Writer) writeFile(f io.Writer, snap index.Snapshot) (int64, error) {
	counter := &countingWriter{w: f}
	buf := bufio.NewWriter(counter)
	header := Header{Magic: MagicBytes, Version: FormatVersion, Compression: w.compression}
	if _, err := buf.Write(header.encode()); err != nil {
		return 0, fmt.Errorf("writing header: %w", err)
	}
	body, err := compressWriter(buf, w.compression)
	if err != nil {
		return 0, err
	}
	enc := newBodyEncoder(body, w.maxFieldLength)
	if err := enc.snapshot(snap); err != nil {
		return 0, err
	}
	if err := enc.finish(); err != nil {
		return 0, err
	}
	if err := body.Close(); err != nil {
		return 0, fmt.Errorf("closing %s encoder: %w", w.compression, err)
	}
	if err := buf.Flush(); err != nil {
		return 0, fmt.Errorf("flushing index file: %w", err)
	}
	return counter.n, nil
}

// bodyEncoder writes the little-endian body fields and keeps a CRC-32 of
// everything written so far.
type bodyEncoder struct {
	dst            io.Writer
	crc            hash.Hash32
	out            io.Writer
	maxFieldLength uint64
	scratch        [8]byte
}

func newBodyEncoder(dst io.Writer, maxFieldLength uint64) *bodyEncoder {
	crc := crc32.NewIEEE()
	return &bodyEncoder{
		dst:            dst,
		crc:            crc,
		out:            io.MultiWriter(dst, crc),
		maxFieldLength: maxFieldLength,
	}
}

func (e *bodyEncoder) snapshot(snap index.Snapshot) error {
	if err := e.u64(uint64(len(snap.Documents))); err != nil {
		return fmt.Errorf("writing document count: %w", err)
	}
	for _, doc := range snap.Documents {
		if err := e.u32(uint32(doc.ID)); err != nil {
			return fmt.Errorf("writing document %d: %w", doc.ID, err)
		}
		if err := e.str(doc.Path); err != nil {
			return fmt.Errorf("writing path for document %d: %w", doc.ID, err)
		}
	}
	if err := e.u64(uint64(len(snap.Terms))); err != nil {
		return fmt.Errorf("writing word count: %w", err)
	}
	for _, entry := range snap.Terms {
		if err := e.str(entry.Term); err != nil {
			return fmt.Errorf("writing word %.32q: %w", entry.Term, err)
		}
		if err := e.u64(uint64(len(entry.DocIDs))); err != nil {
			return fmt.Errorf("writing postings count for %q: %w", entry.Term, err)
		}
		for _, id := range entry.DocIDs {
			if err := e.u32(uint32(id)); err != nil {
				return fmt.Errorf("writing postings for %q: %w", entry.Term, err)
			}
		}
	}
	return nil
}

// finish appends the checksum, which is itself not part of the sum.
func (e *bodyEncoder) finish() error {
	binary.LittleEndian.PutUint32(e.scratch[:4], e.crc.Sum32())
	if _, err := e.dst.Write(e.scratch[:4]); err != nil {
		return fmt.Errorf("writing checksum: %w", err)
	}
	return nil
}

func (e *bodyEncoder) u32(v uint32) error {
	binary.LittleEndian.PutUint32(e.scratch[:4], v)
	_, err := e.out.Write(e.scratch[:4])
	return err
}

func (e *bodyEncoder) u64(v uint64) error {
	binary.LittleEndian.PutUint64(e.scratch[:8], v)
	_, err := e.out.Write(e.scratch[:8])
	return err
}

func (e *bodyEncoder) str(s string) error {
	if uint64(len(s)) > e.maxFieldLength {
		return fmt.Errorf("%w: length %d, limit %d", errFieldTooLong, len(s), e.maxFieldLength)
	}
	if err := e.u64(uint64(len(s))); err != nil {
		return err
	}
	_, err := io.WriteString(e.out, s)
	return err
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}
