// Package fetch retrieves candidate pages from a business's website. A fetch
// never fails the pipeline: any error is logged and comes back as "no text".
package fetch

import (
	"context"
	"log/slog"
	"math/rand"
	"net/url"
	"strings"
	"time"

	"github.com/gocolly/colly/v2"
)

// Paths worth a look beyond the landing page.
var auxPaths = []string{"/about", "/contact", "/team"}

// Anchor href fragments that mark a page as likely contact-bearing.
var auxKeywords = []string{"about", "contact", "team"}

func randomUserAgent() string {
	uas := []string{
		"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/121.0.0.0 Safari/537.36",
		"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	}
	r := rand.New(rand.NewSource(time.Now().UnixNano()))
	return uas[r.Intn(len(uas))]
}

type Options struct {
	Timeout     time.Duration // per-request; zero means 6s
	MaxPages    int           // includes the landing page; zero means 4
	MaxBodySize int           // bytes per response; zero means 512 KiB
}

func (o Options) withDefaults() Options {
	if o.Timeout <= 0 {
		o.Timeout = 6 * time.Second
	}
	if o.MaxPages <= 0 {
		o.MaxPages = 4
	}
	if o.MaxBodySize <= 0 {
		o.MaxBodySize = 512 * 1024
	}
	return o
}

// Fetcher grabs the landing page of a site plus a bounded set of auxiliary
// pages (/about, /contact, /team and about-like links discovered in anchors)
// and returns their raw HTML concatenated. One attempt per URL, no retries.
type Fetcher struct {
	logger *slog.Logger
	opts   Options
}

func New(logger *slog.Logger, opts Options) *Fetcher {
	return &Fetcher{logger: logger, opts: opts.withDefaults()}
}

// Fetch returns the concatenated text of the site's pages, or "" when the
// URL is missing or nothing could be retrieved.
func (f *Fetcher) Fetch(ctx context.Context, site string) string {
	site = strings.TrimSpace(site)
	if site == "" {
		return ""
	}

	base, err := url.Parse(site)
	if err != nil || base.Hostname() == "" {
		f.logger.Debug("Skipping malformed website URL", "url", site, "err", err)
		return ""
	}

	var pages []string
	var discovered []string

	c := colly.NewCollector(
		colly.AllowedDomains(base.Hostname(), "www."+base.Hostname()),
		colly.UserAgent(randomUserAgent()),
		colly.MaxBodySize(f.opts.MaxBodySize),
	)
	c.SetRequestTimeout(f.opts.Timeout)

	c.OnResponse(func(r *colly.Response) {
		pages = append(pages, string(r.Body))
	})

	c.OnHTML("a[href]", func(e *colly.HTMLElement) {
		href := e.Attr("href")
		lower := strings.ToLower(href)
		for _, kw := range auxKeywords {
			if strings.Contains(lower, kw) {
				if abs := e.Request.AbsoluteURL(href); abs != "" {
					discovered = append(discovered, abs)
				}
				return
			}
		}
	})

	c.OnError(func(r *colly.Response, err error) {
		f.logger.Debug("Fetch failed", "url", r.Request.URL.String(), "err", err)
	})

	if err := c.Visit(site); err != nil {
		f.logger.Debug("Fetch failed", "url", site, "err", err)
	}

	// Known paths first, then whatever the landing page linked to. The
	// collector skips already-visited and off-domain URLs on its own.
	var candidates []string
	for _, p := range auxPaths {
		candidates = append(candidates, base.Scheme+"://"+base.Host+p)
	}
	candidates = append(candidates, discovered...)

	visited := 1
	for _, cand := range candidates {
		if visited >= f.opts.MaxPages {
			break
		}
		if err := c.Visit(cand); err == nil {
			visited++
		}
	}

	return strings.Join(pages, " ")
}
