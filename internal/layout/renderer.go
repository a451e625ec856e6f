// Package layout wraps rendered page bodies in full HTML documents.
//
// Two layouts are built in: "default", used when a page names none, and
// "home". Further layouts, or overrides of the built-ins, are read from a
// directory of <name>.html html/template files. Every layout may use the
// "document" template and override its "title" and "main" blocks. Layout names
// are matched case-insensitively.
package layout

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"git.home.luguber.info/inful/sitebuilder/internal/content"
	ferrors "git.home.luguber.info/inful/sitebuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/sitebuilder/internal/logfields"
	"git.home.luguber.info/inful/sitebuilder/internal/route"
)

//go:embed templates/*.html
var builtinTemplates embed.FS

const (
	DefaultLayout = "default"
	HomeLayout    = "home"
)

// Site is the site-wide information every template receives.
type Site struct {
	Title    string
	BaseURL  string
	Language string
}

// PageData describes the page being rendered.
type PageData struct {
	Title      string
	URL        string
	Route      string
	Source     string
	Layout     string
	Collection string
}

// Data is the value layouts execute against.
type Data struct {
	Site        Site
	Page        PageData
	Content     template.HTML
	Collections Index
}

// Renderer owns the parsed layouts of a site.
type Renderer struct {
	site    Site
	layouts map[string]*template.Template
}

var funcs = template.FuncMap{
	"titleCase": titleCase,
	"lower":     strings.ToLower,
}

// New parses the built-in layouts and, when dir is not empty, every *.html file
// in dir.
func New(site Site, dir string) (*Renderer, error) {
	if site.BaseURL == "" {
		site.BaseURL = "/"
	}
	if !strings.HasSuffix(site.BaseURL, "/") {
		site.BaseURL += "/"
	}
	if site.Language == "" {
		site.Language = "en"
	}

	base, err := template.New("base").Funcs(funcs).ParseFS(builtinTemplates, "templates/base.html")
	if err != nil {
		return nil, ferrors.InternalError("failed to parse base layout").
			WithCause(fmt.Errorf("%w: %w", ErrTemplate, err)).
			Build()
	}

	r := &Renderer{site: site, layouts: make(map[string]*template.Template)}
	for _, name := range []string{DefaultLayout, HomeLayout} {
		raw, err := builtinTemplates.ReadFile("templates/" + name + ".html")
		if err != nil {
			return nil, ferrors.InternalError("failed to read built-in layout").
				WithCause(err).
				WithContext("layout", name).
				Build()
		}
		if err := r.add(base, name, string(raw)); err != nil {
			return nil, err
		}
	}

	if dir == "" {
		return r, nil
	}
	files, err := filepath.Glob(filepath.Join(dir, "*.html"))
	if err != nil {
		return nil, ferrors.InternalError("failed to list layouts").WithCause(err).Build()
	}
	for _, file := range files {
		raw, err := os.ReadFile(file)
		if err != nil {
			return nil, ferrors.FileSystemError("failed to read layout").
				WithCause(err).
				WithContext("path", file).
				Build()
		}
		name := strings.TrimSuffix(filepath.Base(file), filepath.Ext(file))
		if err := r.add(base, name, string(raw)); err != nil {
			return nil, err
		}
		slog.Debug("Loaded layout", logfields.Layout(name), logfields.Path(file))
	}
	return r, nil
}

func (r *Renderer) add(base *template.Template, name, raw string) error {
	clone, err := base.Clone()
	if err != nil {
		return ferrors.InternalError("failed to clone base layout").WithCause(err).Build()
	}
	t, err := clone.New(name).Parse(raw)
	if err != nil {
		return ferrors.LayoutError("failed to parse layout").
			WithCause(fmt.Errorf("%w: %w", ErrTemplate, err)).
			WithContext("layout", name).
			Build()
	}
	r.layouts[strings.ToLower(name)] = t
	return nil
}

// Render produces the HTML document for a templated page.
func (r *Renderer) Render(p content.Page, idx Index) ([]byte, error) {
	name := p.Layout()
	if name == "" {
		name = DefaultLayout
	}
	t, ok := r.layouts[strings.ToLower(name)]
	if !ok {
		return nil, ferrors.LayoutError("unknown layout").
			WithCause(&UnknownLayoutError{Route: p.Route, Layout: name}).
			WithContext("source", p.SourcePath).
			WithContext("layout", name).
			Build()
	}

	data := Data{
		Site: r.site,
		Page: PageData{
			Title:      PageTitle(p),
			URL:        route.URL(p.Route),
			Route:      p.Route,
			Source:     p.SourcePath,
			Layout:     strings.ToLower(name),
			Collection: p.Collection(),
		},
		// #nosec G203 -- page bodies are trusted site content
		Content:     template.HTML(p.Body),
		Collections: idx,
	}

	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return nil, ferrors.LayoutError("failed to render layout").
			WithCause(fmt.Errorf("%w: %w", ErrTemplate, err)).
			WithContext("source", p.SourcePath).
			WithContext("layout", name).
			Build()
	}
	return buf.Bytes(), nil
}
