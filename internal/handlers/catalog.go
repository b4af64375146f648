package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"contentwizard/internal/catalog"
)

// Catalog serves the read-only template catalog.
type Catalog struct {
	catalog *catalog.Catalog
}

// NewCatalog creates a new Catalog handler group.
func NewCatalog(cat *catalog.Catalog) *Catalog {
	return &Catalog{catalog: cat}
}

// ContentTypes lists content types, optionally narrowed by ?category= and
// ?niche=. Both filters combine with AND and keep catalog order.
func (c *Catalog) ContentTypes(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := catalog.Filter{
		Category: catalog.Category(q.Get("category")),
		Niche:    q.Get("niche"),
	}
	if f.Category != "" && !f.Category.Valid() {
		writeError(w, http.StatusBadRequest, "unknown category")
		return
	}
	writeOK(w, http.StatusOK, c.catalog.Filter(f))
}

// ContentType returns one content type. With ?niche= each block only lists
// the templates offered in that niche (universal ones included).
func (c *Catalog) ContentType(w http.ResponseWriter, r *http.Request) {
	ct, err := c.catalog.ContentType(chi.URLParam(r, "id"))
	if err != nil {
		fail(w, r, err)
		return
	}

	niche := r.URL.Query().Get("niche")
	if niche == "" {
		writeOK(w, http.StatusOK, ct)
		return
	}

	// Copy so the catalog's own blocks are left untouched.
	view := *ct
	view.Blocks = make([]catalog.Block, len(ct.Blocks))
	for i := range ct.Blocks {
		b := ct.Blocks[i]
		b.Templates = b.TemplatesFor(niche)
		view.Blocks[i] = b
	}
	writeOK(w, http.StatusOK, view)
}

// Niches lists the registered niches.
func (c *Catalog) Niches(w http.ResponseWriter, r *http.Request) {
	writeOK(w, http.StatusOK, c.catalog.Niches())
}

// Stats returns catalog size counters.
func (c *Catalog) Stats(w http.ResponseWriter, r *http.Request) {
	writeOK(w, http.StatusOK, c.catalog.Stats())
}
