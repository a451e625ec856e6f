package layout

import (
	"path"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"git.home.luguber.info/inful/sitebuilder/internal/content"
)

// PageTitle picks a human title for a templated page: the metadata title, else
// the text of the first <h1> in the body, else the file name title-cased.
func PageTitle(p content.Page) string {
	if t := strings.TrimSpace(p.Title()); t != "" {
		return t
	}
	if t := firstHeading(p.Body); t != "" {
		return t
	}
	return titleFromRoute(p.Route)
}

func firstHeading(body string) string {
	if !strings.Contains(body, "<h1") {
		return ""
	}
	doc, err := html.Parse(strings.NewReader(body))
	if err != nil {
		return ""
	}
	if h := findElement(doc, "h1"); h != nil {
		return strings.Join(strings.Fields(textOf(h)), " ")
	}
	return ""
}

func findElement(n *html.Node, tag string) *html.Node {
	if n.Type == html.ElementNode && n.Data == tag {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findElement(c, tag); found != nil {
			return found
		}
	}
	return nil
}

func textOf(n *html.Node) string {
	if n.Type == html.TextNode {
		return n.Data
	}
	var sb strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		sb.WriteString(textOf(c))
	}
	return sb.String()
}

// titleFromRoute derives a title from a normalized route. "blog/my-post/index.html"
// becomes "My Post"; the site root becomes "Home".
func titleFromRoute(r string) string {
	dir := path.Dir(r)
	if dir == "." {
		return "Home"
	}
	return titleCase(path.Base(dir))
}

func titleCase(s string) string {
	words := strings.FieldsFunc(s, func(r rune) bool {
		return r == '-' || r == '_' || r == ' '
	})
	return cases.Title(language.English).String(strings.Join(words, " "))
}
