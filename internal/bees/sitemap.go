package bees

import (
	"encoding/xml"
	"net/http"
	"time"
)

var fallbackSlugs = []string{"social-bee", "sales-bee", "bespoke-bee"}

// SlugStamp is a live Bee slug and when it last changed.
type SlugStamp struct {
	Slug      string
	UpdatedAt time.Time
}

type urlSet struct {
	XMLName xml.Name   `xml:"urlset"`
	XMLNS   string     `xml:"xmlns,attr"`
	URLs    []urlEntry `xml:"url"`
}

type urlEntry struct {
	Loc        string  `xml:"loc"`
	LastMod    string  `xml:"lastmod,omitempty"`
	ChangeFreq string  `xml:"changefreq,omitempty"`
	Priority   float64 `xml:"priority,omitempty"`
}

// BuildSitemap renders the home page plus one entry per Bee. A nil slugs
// slice means the store was unavailable and the default products are listed.
func BuildSitemap(baseURL string, slugs []SlugStamp, now time.Time) ([]byte, error) {
	set := urlSet{
		XMLNS: "http://www.sitemaps.org/schemas/sitemap/0.9",
		URLs: []urlEntry{{
			Loc:        baseURL,
			LastMod:    now.UTC().Format(time.RFC3339),
			ChangeFreq: "daily",
			Priority:   1,
		}},
	}
	if slugs == nil {
		for _, slug := range fallbackSlugs {
			slugs = append(slugs, SlugStamp{Slug: slug, UpdatedAt: now})
		}
	}
	for _, st := range slugs {
		set.URLs = append(set.URLs, urlEntry{
			Loc:        baseURL + "/bee/" + st.Slug,
			LastMod:    st.UpdatedAt.UTC().Format(time.RFC3339),
			ChangeFreq: "weekly",
			Priority:   0.8,
		})
	}
	body, err := xml.MarshalIndent(set, "", "  ")
	if err != nil {
		return nil, err
	}
	return append([]byte(xml.Header), body...), nil
}

// Sitemap handles GET /sitemap.xml.
func (h *Handler) Sitemap(w http.ResponseWriter, r *http.Request) {
	slugs, err := h.repo.ActiveSlugs(r.Context())
	if err != nil {
		h.logger.Warn("sitemap falling back to default bees", "error", err)
		slugs = nil
	} else if slugs == nil {
		slugs = []SlugStamp{}
	}
	body, err := BuildSitemap(h.baseURL, slugs, time.Now())
	if err != nil {
		h.logger.Error("failed to render sitemap", "error", err)
		http.Error(w, "failed to render sitemap", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/xml; charset=utf-8")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	_, _ = w.Write(body)
}
