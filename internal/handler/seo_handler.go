package handler

import (
	"context"
	"encoding/xml"
	"fmt"
	"garage-site/internal/data"
	"garage-site/internal/logger"
	"garage-site/internal/service"
	"net/http"
	"strings"
)

// publishedLister lists published posts.
type publishedLister interface {
	Published(ctx context.Context, f service.Filter) ([]data.Post, *service.Pagination, error)
}

// SeoHandler holds dependencies for SEO-related handlers.
type SeoHandler struct {
	posts   publishedLister
	baseURL string
	log     logger.Logger
}

// NewSeoHandler creates a new SeoHandler. baseURL is the public origin of the
// site, e.g. https://garage.example.
func NewSeoHandler(posts publishedLister, baseURL string, log logger.Logger) *SeoHandler {
	return &SeoHandler{posts: posts, baseURL: strings.TrimSuffix(baseURL, "/"), log: log}
}

// robotsHandler serves robots.txt. The admin area and the API are excluded.
func (h *SeoHandler) robotsHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprintln(w, "User-agent: *")
	fmt.Fprintln(w, "Allow: /")
	fmt.Fprintln(w, "Disallow: /admin")
	fmt.Fprintln(w, "Disallow: /api/")
	fmt.Fprintln(w, "")
	fmt.Fprintf(w, "Sitemap: %s/sitemap.xml\n", h.baseURL)
}

const sitemapDateFormat = "2006-01-02"

// staticPages are always listed in the sitemap.
var staticPages = []string{"/", "/about", "/services", "/blog", "/gallery", "/contact"}

type sitemapURL struct {
	XMLName xml.Name `xml:"url"`
	Loc     string   `xml:"loc"`
	LastMod string   `xml:"lastmod,omitempty"`
}

type urlSet struct {
	XMLName xml.Name     `xml:"urlset"`
	Xmlns   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

// sitemapHandler generates and serves a dynamic sitemap.xml.
func (h *SeoHandler) sitemapHandler(w http.ResponseWriter, r *http.Request) {
	posts, _, err := h.posts.Published(r.Context(), service.Filter{})
	if err != nil {
		// The static pages are still worth listing.
		h.log.Error(err, "Failed to retrieve posts for sitemap")
		posts = nil
	}

	sitemap := urlSet{
		Xmlns: "http://www.sitemaps.org/schemas/sitemap/0.9",
		URLs:  make([]sitemapURL, 0, len(staticPages)+len(posts)),
	}
	for _, p := range staticPages {
		sitemap.URLs = append(sitemap.URLs, sitemapURL{Loc: h.baseURL + p})
	}
	for _, post := range posts {
		sitemap.URLs = append(sitemap.URLs, sitemapURL{
			Loc:     fmt.Sprintf("%s/blog/%d", h.baseURL, post.ID),
			LastMod: post.UpdatedAt.Format(sitemapDateFormat),
		})
	}

	w.Header().Set("Content-Type", "application/xml")
	w.Write([]byte(xml.Header))
	encoder := xml.NewEncoder(w)
	encoder.Indent("", "  ")
	if err := encoder.Encode(sitemap); err != nil {
		h.log.Error(err, "Failed to generate sitemap XML")
		return
	}
}
