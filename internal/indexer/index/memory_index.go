package index

import (
	"math"
	"sort"

	"github.com/RoaringBitmap/roaring/v2"

	apperrors "github.com/Adithya-Monish-Kumar-K/docindex/pkg/errors"
)

// MemoryIndex maps normalised words to the set of documents containing them
// and keeps the bidirectional id/path table. It is not safe for concurrent
// mutation; the indexer feeds it from a single goroutine.
type MemoryIndex struct {
	index    map[string]*roaring.Bitmap
	idToPath map[DocID]string
	pathToID map[string]DocID
	nextID   DocID
}

func NewMemoryIndex() *MemoryIndex {
	return &MemoryIndex{
		index:    make(map[string]*roaring.Bitmap),
		idToPath: make(map[DocID]string),
		pathToID: make(map[string]DocID),
		nextID:   1,
	}
}

// AddDocument returns the id registered for path, allocating the next one if
// the path is new.
func (m *MemoryIndex) AddDocument(path string) DocID {
	if id, exists := m.pathToID[path]; exists {
		return id
	}
	id := m.nextID
	m.nextID++
	m.pathToID[path] = id
	m.idToPath[id] = path
	return id
}

// AddWordToDocument records that word occurs in id. The id is not checked
// against the document table.
func (m *MemoryIndex) AddWordToDocument(word string, id DocID) {
	docs, exists := m.index[word]
	if !exists {
		docs = roaring.New()
		m.index[word] = docs
	}
	docs.Add(uint32(id))
}

// DocumentsForWord returns the ids containing word in ascending order, or an
// empty slice when the word is unknown.
func (m *MemoryIndex) DocumentsForWord(word string) []DocID {
	docs, exists := m.index[word]
	if !exists {
		return []DocID{}
	}
	return toDocIDs(docs)
}

// DocFrequency returns how many documents contain word.
func (m *MemoryIndex) DocFrequency(word string) int {
	docs, exists := m.index[word]
	if !exists {
		return 0
	}
	return int(docs.GetCardinality())
}

// FileName returns the path for id, or "" if the id is unknown.
func (m *MemoryIndex) FileName(id DocID) string {
	return m.idToPath[id]
}

// FileID returns the id registered for path.
func (m *MemoryIndex) FileID(path string) (DocID, bool) {
	id, exists := m.pathToID[path]
	return id, exists
}

// DocumentIDs returns every registered id in ascending order.
func (m *MemoryIndex) DocumentIDs() []DocID {
	ids := make([]DocID, 0, len(m.idToPath))
	for id := range m.idToPath {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Words returns every indexed word in lexical order.
func (m *MemoryIndex) Words() []string {
	words := make([]string, 0, len(m.index))
	for w := range m.index {
		words = append(words, w)
	}
	sort.Strings(words)
	return words
}

func (m *MemoryIndex) DocCount() int {
	return len(m.idToPath)
}

func (m *MemoryIndex) WordCount() int {
	return len(m.index)
}

// NextID is the id the next new document will receive.
func (m *MemoryIndex) NextID() DocID {
	return m.nextID
}

// Snapshot copies the index state into a detached, deterministically ordered
// bundle for persistence.
func (m *MemoryIndex) Snapshot() Snapshot {
	docs := make([]Document, 0, len(m.idToPath))
	for _, id := range m.DocumentIDs() {
		docs = append(docs, Document{ID: id, Path: m.idToPath[id]})
	}
	words := m.Words()
	terms := make([]TermEntry, 0, len(words))
	for _, w := range words {
		terms = append(terms, TermEntry{
			Term:   w,
			DocIDs: toDocIDs(m.index[w]),
		})
	}
	return Snapshot{
		Documents: docs,
		Terms:     terms,
		NextID:    m.nextID,
	}
}

// Restore rebuilds an index from a snapshot. Zero or maximal ids, duplicate
// ids or paths, and term ids missing from the document table are rejected
// with ErrCorruptIndex. Allocation resumes above the largest document id, or at
// snap.NextID if that is higher.
func Restore(snap Snapshot) (*MemoryIndex, error) {
	m := NewMemoryIndex()
	var maxID DocID
	for _, doc := range snap.Documents {
		if doc.ID == 0 {
			return nil, apperrors.Newf(apperrors.ErrCorruptIndex, "", "document %q has reserved id 0", doc.Path)
		}
		if doc.ID == math.MaxUint32 {
			return nil, apperrors.Newf(apperrors.ErrCorruptIndex, "", "document %q has out of range id %d", doc.Path, doc.ID)
		}
		if _, dup := m.idToPath[doc.ID]; dup {
			return nil, apperrors.Newf(apperrors.ErrCorruptIndex, "", "duplicate document id %d", doc.ID)
		}
		if _, dup := m.pathToID[doc.Path]; dup {
			return nil, apperrors.Newf(apperrors.ErrCorruptIndex, "", "duplicate document path %q", doc.Path)
		}
		m.idToPath[doc.ID] = doc.Path
		m.pathToID[doc.Path] = doc.ID
		if doc.ID > maxID {
			maxID = doc.ID
		}
	}
	m.nextID = maxID + 1
	if snap.NextID > m.nextID {
		m.nextID = snap.NextID
	}

	for _, entry := range snap.Terms {
		if _, dup := m.index[entry.Term]; dup {
			return nil, apperrors.Newf(apperrors.ErrCorruptIndex, "", "duplicate term %q", entry.Term)
		}
		docs := roaring.New()
		for _, id := range entry.DocIDs {
			if _, known := m.idToPath[id]; !known {
				return nil, apperrors.Newf(apperrors.ErrCorruptIndex, "", "term %q references unknown document id %d", entry.Term, id)
			}
			docs.Add(uint32(id))
		}
		m.index[entry.Term] = docs
	}
	return m, nil
}

func toDocIDs(docs *roaring.Bitmap) []DocID {
	ids := make([]DocID, 0, docs.GetCardinality())
	it := docs.Iterator()
	for it.HasNext() {
		ids = append(ids, DocID(it.Next()))
	}
	return ids
}
