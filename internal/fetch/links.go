// Package fetch retrieves Other Support documents over HTTP.
package fetch

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// DocumentLinks returns the absolute URLs of every .docx link on an HTML
// page, in document order and deduplicated. base resolves relative hrefs.
func DocumentLinks(html, base string) ([]string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, &Error{
			URL:     base,
			Message: "failed to parse HTML",
			Cause:   err,
		}
	}

	baseURL, err := url.Parse(base)
	if err != nil {
		return nil, &Error{
			URL:     base,
			Message: "invalid base URL",
			Cause:   err,
		}
	}

	var links []string
	seen := make(map[string]bool)
	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		href, _ := sel.Attr("href")
		ref, err := url.Parse(strings.TrimSpace(href))
		if err != nil {
			return
		}
		resolved := baseURL.ResolveReference(ref)
		if !strings.HasSuffix(strings.ToLower(resolved.Path), ".docx") {
			return
		}
		abs := resolved.String()
		if seen[abs] {
			return
		}
		seen[abs] = true
		links = append(links, abs)
	})

	return links, nil
}
