package index

// DocID identifies an indexed file. Ids start at 1 and are never reused
// within one index.
type DocID uint32

// Document pairs an id with the path it was registered under.
type Document struct {
	ID   DocID
	Path string
}

// TermEntry is a term with its document ids in ascending order.
type TermEntry struct {
	Term   string
	DocIDs []DocID
}

// Snapshot is the complete state of a MemoryIndex, detached from it.
// Documents are sorted by id and Terms by term.
type Snapshot struct {
	Documents []Document
	Terms     []TermEntry
	NextID    DocID
}
