package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveSourcesPlaceholders(t *testing.T) {
	rec := &VerdictRecord{Sources: SourceList{
		{Title: "Numeric", Ref: "12"},
		{Title: "Empty", Ref: ""},
		{Title: "Short", Ref: "abcd"},
	}}
	ResolveSources(rec, "some claim")
	for _, src := range rec.Sources {
		assert.Empty(t, src.Ref, "title %s", src.Title)
	}
}

func TestResolveSourcesSearchFallback(t *testing.T) {
	rec := &VerdictRecord{Sources: SourceList{
		{Title: "NASA Media Statement", Ref: "planetary defense office"},
	}}
	ResolveSources(rec, "asteroid 2025")
	assert.Equal(t,
		"https://www.google.com/search?q=NASA+Media+Statement+asteroid+2025",
		rec.Sources[0].Ref)
}

func TestResolveSourcesURLPassthrough(t *testing.T) {
	rec := &VerdictRecord{Sources: SourceList{
		{Title: "NASA", Ref: "https://nasa.gov"},
		{Title: "Plain", Ref: "http://example.com/a"},
	}}
	ResolveSources(rec, "whatever")
	assert.Equal(t, "https://nasa.gov", rec.Sources[0].Ref)
	assert.Equal(t, "http://example.com/a", rec.Sources[1].Ref)
}

func TestResolveSourcesIdempotent(t *testing.T) {
	rec := &VerdictRecord{Sources: SourceList{
		{Title: "Numeric", Ref: "12"},
		{Title: "Name only", Ref: "some archive"},
		{Title: "Linked", Ref: "https://example.com"},
	}}
	ResolveSources(rec, "the query")
	once := make(SourceList, len(rec.Sources))
	copy(once, rec.Sources)

	ResolveSources(rec, "the query")
	assert.Equal(t, once, rec.Sources)
}

func TestShortRefNeverLinks(t *testing.T) {
	for _, ref := range []string{"", "1", "12", "abc", "abcd"} {
		rec := &VerdictRecord{Sources: SourceList{{Title: "T", Ref: ref}}}
		ResolveSources(rec, "query")
		assert.Empty(t, rec.Sources[0].Ref, "ref %q", ref)
	}
}
