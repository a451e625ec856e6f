// Package content classifies source files into pages.
//
// A page is either templated (Markdown or HTML carrying an optional metadata
// block, rendered through a layout) or opaque (copied to the output as-is).
// The kind is decided by the file extension alone.
package content

import (
	"git.home.luguber.info/inful/sitebuilder/internal/foundation"
)

// Metadata is the frontmatter understood by the builder. Field names are the
// same in every dialect.
type Metadata struct {
	Layout     string `yaml:"layout,omitempty" toml:"layout,omitempty" json:"layout,omitempty"`
	Collection string `yaml:"collection,omitempty" toml:"collection,omitempty" json:"collection,omitempty"`
	Title      string `yaml:"title,omitempty" toml:"title,omitempty" json:"title,omitempty"`
}

// Kind tags a Page.
type Kind int

const (
	KindTemplated Kind = iota + 1
	KindOpaque
)

func (k Kind) String() string {
	switch k {
	case KindTemplated:
		return "templated"
	case KindOpaque:
		return "opaque"
	default:
		return "unknown"
	}
}

// Page is a classified source file. Route is already normalized.
//
// Templated pages carry Metadata and an HTML Body; opaque pages carry Bytes.
type Page struct {
	Kind       Kind
	SourcePath string
	Route      string
	Metadata   foundation.Option[Metadata]
	Body       string
	Bytes      []byte
}

// IsTemplated reports whether the page goes through a layout.
func (p Page) IsTemplated() bool {
	return p.Kind == KindTemplated
}

// Layout returns the requested layout name, or "" when none was given.
func (p Page) Layout() string {
	if m, ok := p.Metadata.Get(); ok {
		return m.Layout
	}
	return ""
}

// Collection returns the collection the page belongs to, or "".
func (p Page) Collection() string {
	if m, ok := p.Metadata.Get(); ok {
		return m.Collection
	}
	return ""
}

// Title returns the title set in the metadata, or "".
func (p Page) Title() string {
	if m, ok := p.Metadata.Get(); ok {
		return m.Title
	}
	return ""
}
