package layout

import (
	"sort"

	"git.home.luguber.info/inful/sitebuilder/internal/content"
	"git.home.luguber.info/inful/sitebuilder/internal/route"
)

// Entry is one page listed in a collection.
type Entry struct {
	Title string
	URL   string
	Route string
}

// Index groups templated pages by the collection named in their metadata.
type Index map[string][]Entry

// BuildIndex collects every templated page that names a collection. Entries in
// each collection are sorted by URL.
func BuildIndex(pages []content.Page) Index {
	idx := make(Index)
	for _, p := range pages {
		if !p.IsTemplated() || p.Collection() == "" {
			continue
		}
		idx[p.Collection()] = append(idx[p.Collection()], Entry{
			Title: PageTitle(p),
			URL:   route.URL(p.Route),
			Route: p.Route,
		})
	}
	for _, entries := range idx {
		sort.Slice(entries, func(i, j int) bool { return entries[i].URL < entries[j].URL })
	}
	return idx
}

// Names returns the collection names in sorted order.
func (i Index) Names() []string {
	names := make([]string, 0, len(i))
	for name := range i {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
