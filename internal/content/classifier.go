package content

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"unicode/utf8"

	"github.com/yuin/goldmark"

	ferrors "git.home.luguber.info/inful/sitebuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/sitebuilder/internal/frontmatter"
	"git.home.luguber.info/inful/sitebuilder/internal/logfields"
	"git.home.luguber.info/inful/sitebuilder/internal/route"
	"git.home.luguber.info/inful/sitebuilder/internal/source"
)

// Extensions (without the dot) whose files are templated. Matching is case-sensitive.
const (
	ExtMarkdown = "md"
	ExtHTML     = "html"
	ExtHTM      = "htm"
)

// Classifier turns source descriptors into pages.
type Classifier struct {
	markdown goldmark.Markdown
	logger   *slog.Logger
}

// Option configures a Classifier.
type Option func(*Classifier)

// WithLogger sets the logger used for per-file debug output.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Classifier) {
		c.logger = logger
	}
}

// NewClassifier creates a Classifier.
func NewClassifier(opts ...Option) *Classifier {
	c := &Classifier{}
	for _, opt := range opts {
		opt(c)
	}
	if c.markdown == nil {
		c.markdown = NewMarkdown()
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	return c
}

// KindOf returns the page kind for a route. It depends on the extension only;
// dotfiles such as ".md" have none and are opaque.
func KindOf(r string) Kind {
	switch route.Ext(r) {
	case ExtMarkdown, ExtHTML, ExtHTM:
		return KindTemplated
	default:
		return KindOpaque
	}
}

// Classify reads the file behind d and returns the page it produces.
//
// Errors are *ferrors.ClassifiedError values carrying the source path; the
// underlying cause (frontmatter.ErrYAML and friends, or ErrSourceRead) is
// reachable through errors.Is.
func (c *Classifier) Classify(d source.Descriptor) (Page, error) {
	kind := KindOf(d.Route)
	page := Page{
		Kind:       kind,
		SourcePath: d.SourcePath,
		Route:      route.Normalize(d.Route, kind == KindTemplated),
	}

	if kind == KindOpaque {
		data, err := os.ReadFile(d.SourcePath)
		if err != nil {
			return Page{}, readError(d, err)
		}
		page.Bytes = data
		c.logger.Debug("Classified opaque file", logfields.Source(d.Route), logfields.Route(page.Route))
		return page, nil
	}

	f, err := os.Open(d.SourcePath)
	if err != nil {
		return Page{}, readError(d, err)
	}
	defer func() { _ = f.Close() }()

	s := frontmatter.NewStream(f)
	meta, err := frontmatter.Extract[Metadata](s)
	if err != nil {
		return Page{}, extractError(d, err)
	}
	body, err := io.ReadAll(s)
	if err != nil {
		return Page{}, readError(d, err)
	}
	if !utf8.Valid(body) {
		return Page{}, readError(d, errInvalidUTF8)
	}
	page.Metadata = meta

	if route.Ext(d.Route) == ExtMarkdown {
		rendered, err := renderMarkdown(c.markdown, body)
		if err != nil {
			return Page{}, ferrors.WrapError(fmt.Errorf("%w: %w", ErrMarkdown, err), ferrors.CategoryContent, "failed to render markdown").
				WithContext("source", d.Route).
				Build()
		}
		page.Body = rendered
	} else {
		page.Body = string(body)
	}

	c.logger.Debug("Classified templated file",
		logfields.Source(d.Route),
		logfields.Route(page.Route),
		logfields.Layout(page.Layout()))
	return page, nil
}

func readError(d source.Descriptor, err error) error {
	return ferrors.FileSystemError("failed to read source file").
		WithCause(fmt.Errorf("%w: %w", ErrSourceRead, err)).
		WithContext("source", d.Route).
		WithContext("path", d.SourcePath).
		Build()
}

func extractError(d source.Descriptor, err error) error {
	format := frontmatter.ErrorFormat(err)
	if format == frontmatter.FormatNone {
		return readError(d, err)
	}
	return ferrors.FrontmatterError("invalid frontmatter").
		WithCause(err).
		WithContext("source", d.Route).
		WithContext("format", format.String()).
		Build()
}
