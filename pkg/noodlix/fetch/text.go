package fetch

import (
	"bytes"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/microcosm-cc/bluemonday"
)

// Link is an anchor found on a page
type Link struct {
	Text string
	Href string // absolute when the page URL allows resolving it
}

// Document is a page reduced to readable text
type Document struct {
	Title string
	Lines []string
	Links []Link
}

var readable = bluemonday.NewPolicy().
	AllowElements("p", "br", "div", "span", "h1", "h2", "h3", "h4", "h5", "h6",
		"ul", "ol", "li", "pre", "code", "blockquote", "table", "tr", "td", "th",
		"em", "strong", "b", "i").
	AllowAttrs("href").OnElements("a")

var blocks = "p, div, h1, h2, h3, h4, h5, h6, li, pre, blockquote, tr"

// Render turns a page into text lines. HTML is sanitized first so scripts,
// styles and forms never reach the output; anything else that is text is
// split into lines as is.
func Render(p *Page) (*Document, error) {
	if !strings.Contains(p.MIME, "html") && !strings.Contains(p.ContentType, "html") {
		return &Document{Lines: lines(string(p.Body))}, nil
	}

	raw, err := goquery.NewDocumentFromReader(bytes.NewReader(p.Body))
	if err != nil {
		return nil, err
	}
	doc := &Document{Title: strings.TrimSpace(raw.Find("title").First().Text())}

	body, err := raw.Find("body").Html()
	if err != nil || body == "" {
		body = string(p.Body)
	}
	clean, err := goquery.NewDocumentFromReader(strings.NewReader(readable.Sanitize(body)))
	if err != nil {
		return nil, err
	}

	base, _ := url.Parse(p.URL)
	clean.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		if href == "" || strings.HasPrefix(href, "#") {
			return
		}
		if base != nil {
			if ref, err := base.Parse(href); err == nil {
				href = ref.String()
			}
		}
		doc.Links = append(doc.Links, Link{Text: strings.Join(strings.Fields(s.Text()), " "), Href: href})
	})

	clean.Find("br").ReplaceWithHtml("\n")
	clean.Find(blocks).Each(func(_ int, s *goquery.Selection) {
		s.AppendHtml("\n")
	})
	doc.Lines = lines(clean.Text())
	return doc, nil
}

// lines splits text into trimmed non-empty lines with runs of spaces
// collapsed
func lines(text string) []string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		if line = strings.Join(strings.Fields(line), " "); line != "" {
			out = append(out, line)
		}
	}
	return out
}
