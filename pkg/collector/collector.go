// Package collector builds image dictionaries from search result pages.
package collector

import (
	"net/url"
	"strings"

	"imgdataset/pkg/dictionary"
	"imgdataset/pkg/logger"
	"imgdataset/pkg/storage"
)

// QueryPlaceholder is replaced by the escaped query in the search URL
const QueryPlaceholder = "{query}"

// PageScanner lists the image URLs of a page
type PageScanner interface {
	ScanPage(pageURL string) ([]string, error)
}

// Collector turns a query into an id→URL dictionary
type Collector struct {
	scanner   PageScanner
	searchURL string
	logger    logger.Logger
}

// New creates a collector for a search URL template containing {query}
func New(scanner PageScanner, searchURL string, log logger.Logger) *Collector {
	if log == nil {
		log = logger.GetLogger()
	}
	return &Collector{
		scanner:   scanner,
		searchURL: searchURL,
		logger:    log,
	}
}

// SearchURL returns the page to scan for query
func (c *Collector) SearchURL(query string) string {
	return strings.ReplaceAll(c.searchURL, QueryPlaceholder, url.PathEscape(query))
}

// Collect scans the search page for query and keeps images that carry an
// ixid, keyed by it. The first URL seen for an id wins. limit <= 0 keeps
// everything.
func (c *Collector) Collect(query string, limit int) (*dictionary.Dictionary, error) {
	pageURL := c.SearchURL(query)

	urls, err := c.scanner.ScanPage(pageURL)
	if err != nil {
		return nil, err
	}

	dict := dictionary.New()
	skipped := 0
	for _, u := range urls {
		if limit > 0 && dict.Len() >= limit {
			break
		}
		id, err := storage.ResolveName("", u)
		if err != nil {
			skipped++
			continue
		}
		if _, exists := dict.Get(id); exists {
			continue
		}
		dict.Set(id, u)
	}

	c.logger.InfoWithFields("collected images", map[string]interface{}{
		"query":   query,
		"page":    pageURL,
		"found":   len(urls),
		"kept":    dict.Len(),
		"skipped": skipped,
	})

	return dict, nil
}
