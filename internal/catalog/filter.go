package catalog

// Filter narrows content types by category and niche. Zero-valued fields
// are unset and match everything; set fields combine with AND.
type Filter struct {
	Category Category
	Niche    string
}

// FilterContentTypes returns the content types matching f, in input order.
// It never reorders and never mutates its input.
func FilterContentTypes(types []ContentType, f Filter) []ContentType {
	out := make([]ContentType, 0, len(types))
	for _, ct := range types {
		if f.Category != "" && ct.Category != f.Category {
			continue
		}
		if f.Niche != "" && !ct.HasNiche(f.Niche) {
			continue
		}
		out = append(out, ct)
	}
	return out
}
