package lsp

import (
	"path/filepath"
	"sync"
	"testing"
)

const buttonURI = "file:///src/components/button.templ"

func TestDocumentStore(t *testing.T) {
	store := NewDocumentStore()

	if _, ok := store.Get(buttonURI); ok {
		t.Fatal("Get() found a document before Open()")
	}

	store.Open(buttonURI, "templ Button() {}", 1)
	doc, ok := store.Get(buttonURI)
	if !ok {
		t.Fatal("document not found after Open()")
	}
	if doc.Text != "templ Button() {}" || doc.Version != 1 {
		t.Errorf("Get() = %+v after Open()", doc)
	}
	if want := filepath.FromSlash("/src/components/button.templ"); doc.Path != want {
		t.Errorf("Path = %q, want %q", doc.Path, want)
	}

	for i, text := range []string{"version 2", "version 3", "version 4"} {
		version := int32(i + 2)
		if !store.Update(buttonURI, text, version) {
			t.Fatalf("Update() to version %d rejected", version)
		}
		doc, _ := store.Get(buttonURI)
		if doc.Text != text || doc.Version != version {
			t.Errorf("Get() = %+v, want %q at version %d", doc, text, version)
		}
	}

	if store.Update(buttonURI, "stale", 3) {
		t.Error("Update() accepted an older version")
	}
	if doc, _ := store.Get(buttonURI); doc.Text != "version 4" {
		t.Errorf("stale update replaced the text: %q", doc.Text)
	}

	if store.Update("file:///src/other.templ", "x", 1) {
		t.Error("Update() accepted a document that was never opened")
	}

	store.Close(buttonURI)
	if _, ok := store.Get(buttonURI); ok {
		t.Error("document still present after Close()")
	}
}

func TestDocumentStoreCurrent(t *testing.T) {
	store := NewDocumentStore()
	store.Open(buttonURI, `<div class="a   b"></div>`, 3)

	doc, _ := store.Get(buttonURI)
	if !store.Current(doc) {
		t.Fatal("freshly opened document is not current")
	}

	store.Update(buttonURI, `<div class="c"></div>`, 4)
	if store.Current(doc) {
		t.Error("document is still current after a newer change")
	}

	store.Close(buttonURI)
	if store.Current(doc) {
		t.Error("closed document is still current")
	}
}

func TestIsTempl(t *testing.T) {
	tests := []struct {
		uri        string
		languageID string
		want       bool
	}{
		{uri: buttonURI, languageID: "plaintext", want: true},
		{uri: "untitled:Untitled-1", languageID: "templ", want: true},
		{uri: "file:///src/button_templ.go", languageID: "go", want: false},
	}

	for _, tt := range tests {
		if got := IsTempl(tt.uri, tt.languageID); got != tt.want {
			t.Errorf("IsTempl(%q, %q) = %v, want %v", tt.uri, tt.languageID, got, tt.want)
		}
	}
}

func TestDocumentStore_ConcurrentAccess(t *testing.T) {
	store := NewDocumentStore()
	store.Open(buttonURI, "initial", 0)

	var wg sync.WaitGroup
	for i := range 10 {
		wg.Add(2)
		go func() {
			defer wg.Done()
			store.Update(buttonURI, string(rune('0'+i)), int32(i+1))
		}()
		go func() {
			defer wg.Done()
			store.Get(buttonURI)
		}()
	}
	wg.Wait()

	doc, ok := store.Get(buttonURI)
	if !ok {
		t.Fatal("document not found after concurrent updates")
	}
	if doc.Text == "" {
		t.Error("document content is empty after concurrent updates")
	}
}
