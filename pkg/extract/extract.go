// Package extract turns a URL or raw HTML into the structured page fields
// the summarizer and the ingestion pipeline consume. Missing metadata is a
// normal condition and degrades to defaults; only transport and parse
// failures are errors.
package extract

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"
	"golang.org/x/text/language"

	"newsdesk/pkg/httpclient"
)

// ErrFetchFailed marks network or parse failures for a single URL. The
// ingestion pipeline recovers from it per article; interactive callers see
// it as-is.
var ErrFetchFailed = errors.New("fetch failed")

const (
	defaultLanguage = "en"
	defaultSiteName = "Unknown"
)

// Page holds everything extracted from one article page.
type Page struct {
	Title        string
	Description  string
	Text         string
	Language     string
	Domain       string
	SiteName     string
	CanonicalURL string
	OGType       string
	Authors      []string
	Image        string
}

// FromURL fetches pageURL with client and extracts its fields.
func FromURL(ctx context.Context, client *httpclient.Client, pageURL string) (*Page, error) {
	resp, err := client.Get(ctx, pageURL)
	if err != nil {
		return nil, fmt.Errorf("%w: get %s: %v", ErrFetchFailed, pageURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: get %s: status %d", ErrFetchFailed, pageURL, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 10<<20))
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", ErrFetchFailed, pageURL, err)
	}

	return FromHTML(string(body), pageURL)
}

// FromHTML extracts page fields from already-fetched HTML. pageURL supplies
// the domain and the canonical-URL fallback.
func FromHTML(html, pageURL string) (*Page, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("%w: parse %s: %v", ErrFetchFailed, pageURL, err)
	}

	page := &Page{
		Title:        metaContent(doc, "meta[property='og:title']"),
		Description:  firstNonEmpty(metaContent(doc, "meta[name='description']"), metaContent(doc, "meta[property='og:description']")),
		SiteName:     metaContent(doc, "meta[property='og:site_name']"),
		CanonicalURL: metaContent(doc, "meta[property='og:url']"),
		OGType:       metaContent(doc, "meta[property='og:type']"),
		Image:        metaContent(doc, "meta[property='og:image']"),
		Authors:      authors(doc),
	}

	if article, rErr := readability.FromReader(strings.NewReader(html), nil); rErr == nil {
		page.Text = strings.TrimSpace(article.TextContent)
		if page.Title == "" {
			page.Title = strings.TrimSpace(article.Title)
		}
		if page.Description == "" {
			page.Description = strings.TrimSpace(article.Excerpt)
		}
		if page.SiteName == "" {
			page.SiteName = strings.TrimSpace(article.SiteName)
		}
	}

	if page.Title == "" {
		page.Title = strings.TrimSpace(doc.Find("title").First().Text())
	}
	if page.Title == "" {
		page.Title = strings.TrimSpace(doc.Find("h1").First().Text())
	}

	if href, ok := doc.Find("link[rel='canonical']").Attr("href"); ok && page.CanonicalURL == "" {
		page.CanonicalURL = strings.TrimSpace(href)
	}
	if page.CanonicalURL == "" {
		page.CanonicalURL = pageURL
	}

	lang, _ := doc.Find("html").Attr("lang")
	page.Language = normalizeLanguage(firstNonEmpty(lang, metaContent(doc, "meta[property='og:locale']")))

	if page.SiteName == "" {
		page.SiteName = defaultSiteName
	}

	if u, uErr := url.Parse(page.CanonicalURL); uErr == nil && u.Hostname() != "" {
		page.Domain = u.Hostname()
	} else if u, uErr := url.Parse(pageURL); uErr == nil {
		page.Domain = u.Hostname()
	}

	return page, nil
}

// Domain returns the hostname of rawURL, or "" when unparseable.
func Domain(rawURL string) string {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return ""
	}
	return u.Hostname()
}

func metaContent(doc *goquery.Document, selector string) string {
	content, _ := doc.Find(selector).First().Attr("content")
	return strings.TrimSpace(content)
}

func authors(doc *goquery.Document) []string {
	seen := map[string]bool{}
	var out []string
	add := func(value string) {
		for _, part := range strings.Split(value, ",") {
			name := strings.TrimSpace(part)
			if name == "" || seen[strings.ToLower(name)] {
				continue
			}
			seen[strings.ToLower(name)] = true
			out = append(out, name)
		}
	}
	doc.Find("meta[name='author']").Each(func(_ int, s *goquery.Selection) {
		if v, ok := s.Attr("content"); ok {
			add(v)
		}
	})
	doc.Find("meta[property='article:author']").Each(func(_ int, s *goquery.Selection) {
		if v, ok := s.Attr("content"); ok && !strings.HasPrefix(v, "http") {
			add(v)
		}
	})
	return out
}

// normalizeLanguage reduces a BCP 47 tag to its base language ("en-US"
// becomes "en"); anything unparseable falls back to the default.
func normalizeLanguage(tag string) string {
	tag = strings.TrimSpace(strings.ReplaceAll(tag, "_", "-"))
	if tag == "" {
		return defaultLanguage
	}
	parsed, err := language.Parse(tag)
	if err != nil {
		return defaultLanguage
	}
	base, conf := parsed.Base()
	if conf == language.No {
		return defaultLanguage
	}
	return base.String()
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}
