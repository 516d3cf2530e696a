package document

import (
	"path/filepath"
	"strings"

	"grammarref/internal/grammar"
	"grammarref/internal/source"
)

// RawRule is one rule line as written in a chapter.
type RawRule struct {
	Text   string      `msgpack:"text"`
	Anchor string      `msgpack:"anchor"`
	Span   source.Span `msgpack:"span"`
}

// Mention is a category referenced from prose with [*name*](target).
type Mention struct {
	Name   string      `msgpack:"name"`
	Target string      `msgpack:"target"`
	Span   source.Span `msgpack:"span"`
}

// Record is everything extracted from one chapter.
type Record struct {
	Path     string        `msgpack:"path"`
	FileID   source.FileID `msgpack:"-"`
	Slug     string        `msgpack:"slug"`
	Rules    []RawRule     `msgpack:"rules"`
	Mentions []Mention     `msgpack:"mentions"`
}

// WithFile rebinds every span of a cached record to id.
func (r Record) WithFile(id source.FileID) Record {
	r.FileID = id
	if r.Rules != nil {
		rules := make([]RawRule, len(r.Rules))
		for i, rr := range r.Rules {
			rr.Span.File = id
			rules[i] = rr
		}
		r.Rules = rules
	}
	if r.Mentions != nil {
		mentions := make([]Mention, len(r.Mentions))
		for i, m := range r.Mentions {
			m.Span.File = id
			mentions[i] = m
		}
		r.Mentions = mentions
	}
	return r
}

// DocSlug derives the document part of default anchors from a chapter path.
func DocSlug(path string) string {
	base := filepath.Base(path)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	return grammar.Slug(base)
}

// DefaultAnchor is the anchor of a rule that has no explicit one.
func DefaultAnchor(docSlug, name string) string {
	return docSlug + "#" + grammar.Slug(name)
}
