package handlers

import (
	"net/http"

	"contentwizard/internal/cache"
	"contentwizard/internal/catalog"
	"contentwizard/internal/compose"
)

// Drafts keeps the constructor state between Mini App sessions.
type Drafts struct {
	drafts  DraftRepository
	catalog *catalog.Catalog
}

// NewDrafts creates a new Drafts handler group.
func NewDrafts(drafts DraftRepository, cat *catalog.Catalog) *Drafts {
	return &Drafts{drafts: drafts, catalog: cat}
}

// Save stores the caller's constructor state. The embedded project, if
// any, is forced onto the caller and its blocks are checked against the
// current catalog, so a stale draft cannot be stored.
func (h *Drafts) Save(w http.ResponseWriter, r *http.Request) {
	var d cache.Draft
	if err := decodeJSON(w, r, &d); err != nil {
		fail(w, r, err)
		return
	}
	if d.SelectedContentType != "" {
		if _, err := h.catalog.ContentType(d.SelectedContentType); err != nil {
			writeError(w, http.StatusUnprocessableEntity, "unknown content type")
			return
		}
	}
	if d.CurrentStep < 0 {
		writeError(w, http.StatusBadRequest, "currentStep must not be negative")
		return
	}

	userID := currentUser(r)
	if d.CurrentProject != nil {
		cp := *d.CurrentProject
		cp.UserID = userID
		if cp.ContentType == "" {
			cp.ContentType = d.SelectedContentType
		}
		if _, err := h.catalog.ContentType(cp.ContentType); err != nil {
			writeError(w, http.StatusUnprocessableEntity, "unknown content type")
			return
		}
		blocks := cp.Blocks
		cp.Blocks = nil
		p, err := compose.Restore(cp, h.catalog)
		if err != nil {
			fail(w, r, err)
			return
		}
		if len(blocks) > 0 {
			if err := replaceBlocks(p, blocks); err != nil {
				fail(w, r, err)
				return
			}
		}
		snap := p.Snapshot()
		d.CurrentProject = &snap
	}
	if err := h.drafts.Save(r.Context(), userID, d); err != nil {
		fail(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, map[string]bool{"saved": true})
}

// Load returns the caller's constructor state, or null data when there is
// none.
func (h *Drafts) Load(w http.ResponseWriter, r *http.Request) {
	d, err := h.drafts.Load(r.Context(), currentUser(r))
	if err != nil {
		fail(w, r, err)
		return
	}
	if d == nil {
		writeOK(w, http.StatusOK, nil)
		return
	}
	writeOK(w, http.StatusOK, d)
}

// Clear drops the caller's constructor state.
func (h *Drafts) Clear(w http.ResponseWriter, r *http.Request) {
	if err := h.drafts.Clear(r.Context(), currentUser(r)); err != nil {
		fail(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, map[string]bool{"cleared": true})
}
