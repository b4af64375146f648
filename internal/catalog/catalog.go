// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package catalog holds the read-only registry of content types, their
// blocks, the template alternatives for each block and the variables each
// template declares. The catalog is declared in YAML, validated once at
// construction and never mutated afterwards.
package catalog

import (
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"slices"

	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var defaultCatalog []byte

// ErrNotFound is returned when a content type or niche id is unknown.
var ErrNotFound = errors.New("catalog: not found")

// Catalog is an immutable, validated registry of content types and niches.
// Returned values share memory with the catalog and must not be modified.
type Catalog struct {
	types     []ContentType
	typeIndex map[string]int
	niches    []Niche
	nicheIdx  map[string]int
	warnings  []Warning
}

// Stats summarises catalog size for the dashboard.
type Stats struct {
	ContentTypes int `json:"contentTypes"`
	Niches       int `json:"niches"`
	Templates    int `json:"templates"`
}

// document is the on-disk YAML layout. SharedTemplates exists so that
// anchors for universal templates have a home; it is not exposed.
type document struct {
	Niches          []Niche               `yaml:"niches"`
	SharedTemplates map[string][]Template `yaml:"shared_templates"`
	ContentTypes    []ContentType         `yaml:"content_types"`
}

// New validates the given content types and niches and builds a catalog.
// Any integrity problem is fatal and reported as an *IntegrityError.
// Non-fatal findings are logged and available through Warnings.
func New(types []ContentType, niches []Niche) (*Catalog, error) {
	types = cloneTypes(types)
	niches = cloneNiches(niches)

	warnings, err := validate(types, niches)
	if err != nil {
		return nil, err
	}

	c := &Catalog{
		types:     types,
		typeIndex: make(map[string]int, len(types)),
		niches:    niches,
		nicheIdx:  make(map[string]int, len(niches)),
		warnings:  warnings,
	}
	for i, ct := range types {
		c.typeIndex[ct.ID] = i
	}
	for i, n := range niches {
		c.nicheIdx[n.ID] = i
	}

	for _, w := range warnings {
		slog.Warn("catalog warning",
			"content_type", w.ContentType,
			"block", w.Block,
			"template", w.Template,
			"variable", w.Variable,
			"message", w.Message,
		)
	}
	return c, nil
}

// Parse decodes a YAML catalog document and validates it.
func Parse(data []byte) (*Catalog, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("catalog decode: %w", err)
	}
	return New(doc.ContentTypes, doc.Niches)
}

// LoadFile reads and parses a YAML catalog from disk.
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("catalog read %s: %w", path, err)
	}
	return Parse(data)
}

// Default returns the catalog embedded in the binary.
func Default() (*Catalog, error) {
	return Parse(defaultCatalog)
}

// Load returns the catalog at path, or the embedded one when path is empty.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Default()
	}
	return LoadFile(path)
}

// ListContentTypes returns every content type in declaration order.
func (c *Catalog) ListContentTypes() []ContentType {
	out := make([]ContentType, len(c.types))
	copy(out, c.types)
	return out
}

// ContentType returns the content type with the given id.
func (c *Catalog) ContentType(id string) (*ContentType, error) {
	i, ok := c.typeIndex[id]
	if !ok {
		return nil, fmt.Errorf("content type %q: %w", id, ErrNotFound)
	}
	return &c.types[i], nil
}

// Filter narrows the catalog's content types; see FilterContentTypes.
func (c *Catalog) Filter(f Filter) []ContentType {
	return FilterContentTypes(c.types, f)
}

// Niches returns every registered niche in declaration order.
func (c *Catalog) Niches() []Niche {
	out := make([]Niche, len(c.niches))
	copy(out, c.niches)
	return out
}

// Niche returns the niche with the given id.
func (c *Catalog) Niche(id string) (*Niche, error) {
	i, ok := c.nicheIdx[id]
	if !ok {
		return nil, fmt.Errorf("niche %q: %w", id, ErrNotFound)
	}
	return &c.niches[i], nil
}

// Warnings returns the non-fatal findings recorded at construction.
func (c *Catalog) Warnings() []Warning {
	out := make([]Warning, len(c.warnings))
	copy(out, c.warnings)
	return out
}

// Stats counts content types, niches and distinct template ids. Shared
// templates reused by several blocks are counted once.
func (c *Catalog) Stats() Stats {
	seen := make(map[string]bool)
	for _, ct := range c.types {
		for _, b := range ct.Blocks {
			for _, t := range b.Templates {
				seen[t.ID] = true
			}
		}
	}
	return Stats{
		ContentTypes: len(c.types),
		Niches:       len(c.niches),
		Templates:    len(seen),
	}
}

// cloneTypes deep-copies content types so the catalog shares no slices
// with its caller.
func cloneTypes(types []ContentType) []ContentType {
	out := slices.Clone(types)
	for i := range out {
		ct := &out[i]
		ct.Niches = slices.Clone(ct.Niches)
		ct.Blocks = slices.Clone(ct.Blocks)
		for j := range ct.Blocks {
			b := &ct.Blocks[j]
			b.Templates = slices.Clone(b.Templates)
			for k := range b.Templates {
				t := &b.Templates[k]
				t.Variables = slices.Clone(t.Variables)
				for v := range t.Variables {
					t.Variables[v].Options = slices.Clone(t.Variables[v].Options)
				}
			}
		}
	}
	return out
}

func cloneNiches(niches []Niche) []Niche {
	out := slices.Clone(niches)
	for i := range out {
		out[i].TargetAudience = slices.Clone(out[i].TargetAudience)
		out[i].PopularTopics = slices.Clone(out[i].PopularTopics)
	}
	return out
}
