package fetcher

import (
	"bytes"
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/charset"

	errs "imgdataset/pkg/errors"
)

// ScanPage fetches an HTML page and returns the absolute URLs of its images
// in document order, without duplicates. Non UTF-8 pages are transcoded
// using the declared or sniffed charset.
func (c *Client) ScanPage(pageURL string) ([]string, error) {
	base, err := url.Parse(pageURL)
	if err != nil {
		return nil, errs.Network(pageURL, 0, err)
	}

	resp, err := c.get(pageURL)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errs.Network(pageURL, resp.StatusCode, nil)
	}

	body, err := charset.NewReader(resp.Body, resp.Header.Get("Content-Type"))
	if err != nil {
		return nil, errs.New(errs.ErrorTypeMalformed, pageURL, "unsupported page encoding", err)
	}

	doc, err := html.Parse(body)
	if err != nil {
		return nil, errs.New(errs.ErrorTypeMalformed, pageURL, "failed to parse page", err)
	}

	urls := ExtractImageURLs(doc, base)
	c.logger.DebugWithFields("scanned page", map[string]interface{}{
		"url":    pageURL,
		"images": len(urls),
	})
	return urls, nil
}

// ParseImageURLs parses an HTML document and returns its image URLs
func ParseImageURLs(page []byte, base *url.URL) ([]string, error) {
	doc, err := html.Parse(bytes.NewReader(page))
	if err != nil {
		return nil, err
	}
	return ExtractImageURLs(doc, base), nil
}

// ExtractImageURLs walks a parsed document collecting img src, data-src
// and srcset candidates
func ExtractImageURLs(doc *html.Node, base *url.URL) []string {
	seen := make(map[string]bool)
	var urls []string

	add := func(raw string) {
		raw = strings.TrimSpace(raw)
		if raw == "" || strings.HasPrefix(raw, "data:") {
			return
		}
		ref, err := url.Parse(raw)
		if err != nil {
			return
		}
		if base != nil {
			ref = base.ResolveReference(ref)
		}
		abs := ref.String()
		if !seen[abs] {
			seen[abs] = true
			urls = append(urls, abs)
		}
	}

	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && (n.Data == "img" || n.Data == "source") {
			for _, attr := range n.Attr {
				switch attr.Key {
				case "src", "data-src":
					add(attr.Val)
				case "srcset", "data-srcset":
					for _, candidate := range splitSrcset(attr.Val) {
						add(candidate)
					}
				}
			}
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(doc)

	return urls
}

// splitSrcset returns the URL part of each "url descriptor" candidate.
// Candidates are separated by ", " since URLs may contain bare commas.
func splitSrcset(srcset string) []string {
	var out []string
	for _, candidate := range strings.Split(srcset, ", ") {
		fields := strings.Fields(candidate)
		if len(fields) > 0 {
			out = append(out, strings.TrimSuffix(fields[0], ","))
		}
	}
	return out
}
