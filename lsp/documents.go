package lsp

import (
	"cmp"
	"slices"
	"strings"
	"sync"

	"go.lsp.dev/protocol"
)

// Document is a snapshot of an open document.
type Document struct {
	URI     protocol.DocumentURI
	Version int32
	Content string
}

// Line returns line n (0-based) without its line terminator.
func (d Document) Line(n int) (string, bool) {
	if n < 0 {
		return "", false
	}

	rest := d.Content

	for range n {
		i := strings.IndexByte(rest, '\n')
		if i < 0 {
			return "", false
		}

		rest = rest[i+1:]
	}

	if i := strings.IndexByte(rest, '\n'); i >= 0 {
		rest = rest[:i]
	}

	return strings.TrimSuffix(rest, "\r"), true
}

// DocumentStore tracks the text of open documents.
type DocumentStore struct {
	mu   sync.RWMutex
	docs map[protocol.DocumentURI]Document
}

// NewDocumentStore creates an empty store.
func NewDocumentStore() *DocumentStore {
	return &DocumentStore{docs: make(map[protocol.DocumentURI]Document)}
}

// Open records doc as open, replacing any earlier text.
func (s *DocumentStore) Open(doc Document) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.docs[doc.URI] = doc
}

// Update replaces the text of an open document. It reports false if the
// document is not open.
func (s *DocumentStore) Update(uri protocol.DocumentURI, version int32, content string) (Document, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.docs[uri]; !ok {
		return Document{}, false
	}

	doc := Document{URI: uri, Version: version, Content: content}
	s.docs[uri] = doc

	return doc, true
}

// Close forgets a document.
func (s *DocumentStore) Close(uri protocol.DocumentURI) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.docs, uri)
}

// Get returns the current snapshot of a document.
func (s *DocumentStore) Get(uri protocol.DocumentURI) (Document, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, ok := s.docs[uri]

	return doc, ok
}

// IsOpen reports whether uri is open.
func (s *DocumentStore) IsOpen(uri protocol.DocumentURI) bool {
	_, ok := s.Get(uri)

	return ok
}

// All returns every open document, ordered by URI.
func (s *DocumentStore) All() []Document {
	s.mu.RLock()
	defer s.mu.RUnlock()

	docs := make([]Document, 0, len(s.docs))
	for _, doc := range s.docs {
		docs = append(docs, doc)
	}

	slices.SortFunc(docs, func(a, b Document) int {
		return cmp.Compare(a.URI, b.URI)
	})

	return docs
}
