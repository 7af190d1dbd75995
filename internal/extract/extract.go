// Package extract pulls candidate parameter names and outbound links out of
// HTML markup.
package extract

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Extractor turns page markup into parameter names and links.
type Extractor interface {
	Extract(markup, baseURL string) (params, links []string)
}

// dataAttrPrefix marks custom data attributes whose names are reported as parameters.
const dataAttrPrefix = "data-"

// formFieldSelector matches elements whose name attribute is a request parameter.
const formFieldSelector = "input[name], select[name], textarea[name], button[name]"

// HTMLExtractor is the goquery-backed Extractor.
//
// Parameter names come from the name attribute of form fields and meta tags,
// plus every data-* attribute name. Links come from a[href], resolved against
// the page URL; only http and https links are kept, in document order,
// without duplicates. Malformed markup yields whatever the parser recovers.
type HTMLExtractor struct{}

// NewHTMLExtractor creates an HTML extractor.
func NewHTMLExtractor() *HTMLExtractor {
	return &HTMLExtractor{}
}

// Extract implements Extractor.
func (e *HTMLExtractor) Extract(markup, baseURL string) ([]string, []string) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return nil, nil
	}

	base, err := url.Parse(baseURL)
	if err != nil {
		base = &url.URL{}
	}

	return Parameters(doc), Links(doc, base)
}

// Parameters returns the distinct parameter names in doc, in document order.
func Parameters(doc *goquery.Document) []string {
	seen := make(map[string]bool)
	params := make([]string, 0)
	add := func(name string) {
		if name == "" || seen[name] {
			return
		}
		seen[name] = true
		params = append(params, name)
	}

	doc.Find(formFieldSelector).Each(func(_ int, s *goquery.Selection) {
		name, _ := s.Attr("name")
		add(name)
	})

	doc.Find("meta[name]").Each(func(_ int, s *goquery.Selection) {
		name, _ := s.Attr("name")
		add(name)
	})

	doc.Find("*").Each(func(_ int, s *goquery.Selection) {
		for _, node := range s.Nodes {
			for _, attr := range node.Attr {
				if strings.HasPrefix(attr.Key, dataAttrPrefix) && len(attr.Key) > len(dataAttrPrefix) {
					add(attr.Key)
				}
			}
		}
	})

	return params
}

// Links returns the distinct http(s) links of doc resolved against base.
func Links(doc *goquery.Document, base *url.URL) []string {
	seen := make(map[string]bool)
	links := make([]string, 0)

	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		link := resolveURL(strings.TrimSpace(href), base)
		if link == "" || seen[link] {
			return
		}
		seen[link] = true
		links = append(links, link)
	})

	return links
}

// resolveURL resolves href against base, returning "" for anything that is
// not an http(s) URL.
func resolveURL(href string, base *url.URL) string {
	parsed, err := url.Parse(href)
	if err != nil {
		return ""
	}

	resolved := base.ResolveReference(parsed)
	if resolved.Scheme != "http" && resolved.Scheme != "https" {
		return ""
	}

	return resolved.String()
}
