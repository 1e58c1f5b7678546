package v1

import (
	"encoding/xml"
	"net/http"

	"atelier-backend/internal/usecase"
	"atelier-backend/pkg/logger"
)

type SitemapHandler struct {
	sitemapUC *usecase.SitemapUsecase
}

func NewSitemapHandler(sitemapUC *usecase.SitemapUsecase) *SitemapHandler {
	return &SitemapHandler{sitemapUC: sitemapUC}
}

type urlSet struct {
	XMLName xml.Name  `xml:"urlset"`
	Xmlns   string    `xml:"xmlns,attr"`
	URLs    []urlItem `xml:"url"`
}

type urlItem struct {
	Loc        string  `xml:"loc"`
	LastMod    string  `xml:"lastmod,omitempty"`
	ChangeFreq string  `xml:"changefreq,omitempty"`
	Priority   float32 `xml:"priority,omitempty"`
}

// GET /sitemap.xml
func (h *SitemapHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	items, err := h.sitemapUC.GenerateSitemap(r.Context())
	if err != nil {
		logger.WithContext(r.Context()).Error().Err(err).Msg("Failed to generate sitemap")
		http.Error(w, "Failed to generate sitemap", http.StatusInternalServerError)
		return
	}

	set := urlSet{
		Xmlns: "http://www.sitemaps.org/schemas/sitemap/0.9",
		URLs:  make([]urlItem, len(items)),
	}
	for i, item := range items {
		set.URLs[i] = urlItem(item)
	}

	w.Header().Set("Content-Type", "application/xml")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	_, _ = w.Write([]byte(xml.Header))
	if err := xml.NewEncoder(w).Encode(set); err != nil {
		logger.WithContext(r.Context()).Error().Err(err).Msg("Failed to encode sitemap")
	}
}
