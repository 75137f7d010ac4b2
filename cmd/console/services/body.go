package services

import (
	"html/template"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/net/html"
)

// mediaElements count as content even without any text.
var mediaElements = map[string]bool{
	"img":    true,
	"video":  true,
	"iframe": true,
	"audio":  true,
}

// BodyHasContent reports whether an editor body carries any visible text or
// media. An empty editor produces markup like "<p><br></p>", which has neither.
func BodyHasContent(body string) bool {
	if strings.TrimSpace(body) == "" {
		return false
	}
	doc, err := html.Parse(strings.NewReader(body))
	if err != nil {
		return true
	}
	return hasContent(doc)
}

func hasContent(n *html.Node) bool {
	switch n.Type {
	case html.TextNode:
		if strings.TrimSpace(n.Data) != "" {
			return true
		}
	case html.ElementNode:
		if mediaElements[n.Data] {
			return true
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if hasContent(c) {
			return true
		}
	}
	return false
}

var bodyPolicy = func() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AllowAttrs("class").OnElements("p", "span", "pre", "code", "li", "ol", "ul", "blockquote", "h1", "h2", "h3")
	p.AllowAttrs("style").OnElements("p", "span")
	return p
}()

// SanitizeBody strips scripts and unsafe attributes from post HTML while keeping
// formatting, links and images, and marks the result safe for templates.
func SanitizeBody(body string) template.HTML {
	return template.HTML(bodyPolicy.Sanitize(body))
}
