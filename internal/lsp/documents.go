package lsp

import (
	"sync"

	"github.com/jsvensson/templfmt"
)

// Document is an open templ document as of a client version.
type Document struct {
	URI     string
	Path    string
	Text    string
	Version int32
}

// DocumentStore holds open templ documents keyed by URI.
type DocumentStore struct {
	mu   sync.RWMutex
	docs map[string]Document
}

func NewDocumentStore() *DocumentStore {
	return &DocumentStore{docs: make(map[string]Document)}
}

// IsTempl reports whether a document opened with languageID at uri is a
// templ document.
func IsTempl(uri, languageID string) bool {
	return languageID == templfmt.Templ.LanguageID || templfmt.Templ.Matches(uri)
}

func (s *DocumentStore) Open(uri, text string, version int32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[uri] = Document{URI: uri, Path: uriPath(uri), Text: text, Version: version}
}

// Update replaces the text of an open document. Changes for unknown
// documents or older than the stored version are dropped.
func (s *DocumentStore) Update(uri, text string, version int32) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.docs[uri]
	if !ok || version < doc.Version {
		return false
	}
	doc.Text = text
	doc.Version = version
	s.docs[uri] = doc
	return true
}

func (s *DocumentStore) Close(uri string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.docs, uri)
}

func (s *DocumentStore) Get(uri string) (Document, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.docs[uri]
	return doc, ok
}

// Current reports whether doc is still the stored version of its document.
func (s *DocumentStore) Current(doc Document) bool {
	cur, ok := s.Get(doc.URI)
	return ok && cur.Version == doc.Version
}
