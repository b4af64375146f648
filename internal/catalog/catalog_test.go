// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package catalog

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// validStyle is a style that passes validation, used by hand-built fixtures.
var validStyle = Style{Tone: ToneCasual, Length: LengthShort, Emotion: EmotionTrust}

func testNiches() []Niche {
	return []Niche{{ID: "finance", Name: "Finance"}, {ID: "health", Name: "Health"}}
}

func simpleType(id string, cat Category, niches ...string) ContentType {
	return ContentType{
		ID:       id,
		Name:     id,
		Category: cat,
		Niches:   niches,
		Blocks: []Block{{
			ID: id + "-heading", Name: "Heading", Type: BlockHeading, Required: true, Order: 1,
			Templates: []Template{{
				ID: "t1", Content: "{{x}}", Niche: UniversalNiche, Style: validStyle,
				Variables: []Variable{{Name: "x", Type: VariableText, Required: true}},
			}},
		}},
	}
}

func TestDefaultCatalogLoads(t *testing.T) {
	c, err := Default()
	if err != nil {
		t.Fatalf("Default: %v", err)
	}

	types := c.ListContentTypes()
	if len(types) != 7 {
		t.Fatalf("content types: got %d, want 7", len(types))
	}
	wantOrder := []string{
		"lead-magnet", "landing-sales", "landing-webinar", "email-payment",
		"presentation-product", "interactive-test", "sales-post",
	}
	for i, id := range wantOrder {
		if types[i].ID != id {
			t.Errorf("types[%d]: got %q, want %q", i, types[i].ID, id)
		}
	}

	if len(c.Niches()) != 5 {
		t.Errorf("niches: got %d, want 5", len(c.Niches()))
	}

	ls, err := c.ContentType("landing-sales")
	if err != nil {
		t.Fatalf("ContentType: %v", err)
	}
	cta, ok := ls.Block("ls-cta")
	if !ok {
		t.Fatal("expected ls-cta block")
	}
	if _, ok := cta.Template("cta-universal-1"); !ok {
		t.Error("shared cta template not resolved through yaml alias")
	}
	if len(c.Warnings()) != 0 {
		t.Errorf("expected no warnings, got %v", c.Warnings())
	}
}

func TestContentTypeNotFound(t *testing.T) {
	c, err := Default()
	if err != nil {
		t.Fatalf("Default: %v", err)
	}
	_, err = c.ContentType("nope")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	_, err = c.Niche("nope")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for niche, got %v", err)
	}
}

func TestStatsCountsSharedTemplatesOnce(t *testing.T) {
	c, err := Default()
	if err != nil {
		t.Fatalf("Default: %v", err)
	}
	s := c.Stats()
	if s.ContentTypes != 7 || s.Niches != 5 {
		t.Errorf("stats: %+v", s)
	}
	// 5 shared + 17 type-specific templates.
	if s.Templates != 22 {
		t.Errorf("templates: got %d, want 22", s.Templates)
	}
}

func TestNewRejectsIntegrityProblems(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(ct *ContentType)
		want   string
	}{
		{
			name:   "required block without templates",
			mutate: func(ct *ContentType) { ct.Blocks[0].Templates = nil },
			want:   "required block has no templates",
		},
		{
			name: "orphan placeholder",
			mutate: func(ct *ContentType) {
				ct.Blocks[0].Templates[0].Content = "{{x}} {{y}}"
			},
			want: "placeholder {{y}} has no variable",
		},
		{
			name: "duplicate order",
			mutate: func(ct *ContentType) {
				b := ct.Blocks[0]
				b.ID = "other"
				ct.Blocks = append(ct.Blocks, b)
			},
			want: "order 1 already used",
		},
		{
			name:   "unknown category",
			mutate: func(ct *ContentType) { ct.Category = "poster" },
			want:   "unknown category",
		},
		{
			name:   "unknown niche on content type",
			mutate: func(ct *ContentType) { ct.Niches = []string{"gaming"} },
			want:   `unknown niche "gaming"`,
		},
		{
			name: "select without options",
			mutate: func(ct *ContentType) {
				ct.Blocks[0].Templates[0].Variables[0].Type = VariableSelect
			},
			want: "has no options",
		},
		{
			name: "options on text variable",
			mutate: func(ct *ContentType) {
				ct.Blocks[0].Templates[0].Variables[0].Options = []string{"a"}
			},
			want: "has options but is not a select",
		},
		{
			name: "duplicate variable",
			mutate: func(ct *ContentType) {
				tmpl := &ct.Blocks[0].Templates[0]
				tmpl.Variables = append(tmpl.Variables, tmpl.Variables[0])
			},
			want: `duplicate variable "x"`,
		},
		{
			name: "invalid style",
			mutate: func(ct *ContentType) {
				ct.Blocks[0].Templates[0].Style.Tone = "angry"
			},
			want: "invalid style",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ct := simpleType("ct", CategoryLanding, "finance")
			tt.mutate(&ct)

			_, err := New([]ContentType{ct}, testNiches())
			var ie *IntegrityError
			if !errors.As(err, &ie) {
				t.Fatalf("expected *IntegrityError, got %v", err)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}

func TestNewCollectsAllProblems(t *testing.T) {
	a := simpleType("a", "bogus")
	a.Blocks[0].Templates = nil
	b := simpleType("a", CategoryEmail)

	_, err := New([]ContentType{a, b}, testNiches())
	var ie *IntegrityError
	if !errors.As(err, &ie) {
		t.Fatalf("expected *IntegrityError, got %v", err)
	}
	if len(ie.Problems) != 3 {
		t.Errorf("problems: got %d (%v), want 3", len(ie.Problems), ie.Problems)
	}
}

func TestOptionalBlockMayHaveNoTemplates(t *testing.T) {
	ct := simpleType("ct", CategoryLanding)
	ct.Blocks = append(ct.Blocks, Block{ID: "opt", Type: BlockImage, Order: 2})

	if _, err := New([]ContentType{ct}, testNiches()); err != nil {
		t.Fatalf("New: %v", err)
	}
}

func TestUnusedVariableIsWarning(t *testing.T) {
	ct := simpleType("ct", CategoryLanding)
	tmpl := &ct.Blocks[0].Templates[0]
	tmpl.Variables = append(tmpl.Variables, Variable{Name: "unused", Type: VariableText})

	c, err := New([]ContentType{ct}, testNiches())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	w := c.Warnings()
	if len(w) != 1 || w[0].Variable != "unused" {
		t.Errorf("warnings: got %+v", w)
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "catalog.yaml")
	doc := `
niches:
  - id: finance
    name: Финансы
content_types:
  - id: promo
    name: Promo
    category: social
    niches: [finance]
    blocks:
      - id: hook
        name: Hook
        type: heading
        required: true
        order: 1
        templates:
          - id: hook-1
            name: Hook 1
            content: "Хотите {{goal}}?"
            variables:
              - {name: goal, type: select, placeholder: Цель, options: [больше, меньше], required: true}
            niche: finance
            style: {tone: urgent, length: short, emotion: curiosity}
`
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}

	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	ct, err := c.ContentType("promo")
	if err != nil {
		t.Fatalf("ContentType: %v", err)
	}
	v, ok := ct.Blocks[0].Templates[0].Variable("goal")
	if !ok || len(v.Options) != 2 {
		t.Errorf("goal variable: %+v", v)
	}

	if _, err := Load(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestTemplatesFor(t *testing.T) {
	b := Block{Templates: []Template{
		{ID: "u", Niche: UniversalNiche},
		{ID: "f", Niche: "finance"},
		{ID: "h", Niche: "health"},
	}}

	ids := func(ts []Template) string {
		var s []string
		for _, t := range ts {
			s = append(s, t.ID)
		}
		return strings.Join(s, ",")
	}

	if got := ids(b.TemplatesFor("finance")); got != "u,f" {
		t.Errorf("finance: got %q", got)
	}
	if got := ids(b.TemplatesFor("")); got != "u,f,h" {
		t.Errorf("no niche: got %q", got)
	}
}

func TestOrderedBlocksToleratesGaps(t *testing.T) {
	ct := ContentType{Blocks: []Block{{ID: "c", Order: 10}, {ID: "a", Order: 1}, {ID: "b", Order: 4}}}
	got := ct.OrderedBlocks()
	if got[0].ID != "a" || got[1].ID != "b" || got[2].ID != "c" {
		t.Errorf("order: %v", got)
	}
	if ct.Blocks[0].ID != "c" {
		t.Error("OrderedBlocks mutated the content type")
	}
}

func TestOrderedBlocksExtremeOrders(t *testing.T) {
	ct := ContentType{Blocks: []Block{{ID: "last", Order: math.MaxInt}, {ID: "first", Order: math.MinInt}}}
	got := ct.OrderedBlocks()
	if got[0].ID != "first" || got[1].ID != "last" {
		t.Errorf("order: %v", got)
	}
}

func TestPlaceholderInsideExtraBraces(t *testing.T) {
	ct := simpleType("ct", CategoryLanding)
	ct.Blocks[0].Templates[0].Content = "{{{x}}} and {x}"

	if _, err := New([]ContentType{ct}, testNiches()); err != nil {
		t.Fatalf("New: %v", err)
	}
}

func TestNewCopiesInput(t *testing.T) {
	types := []ContentType{simpleType("ct", CategoryLanding, "finance")}
	niches := testNiches()
	niches[0].PopularTopics = []string{"budgeting"}

	c, err := New(types, niches)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	types[0].ID = "renamed"
	types[0].Blocks[0].Required = false
	types[0].Blocks[0].Templates[0].Content = "{{orphan}}"
	types[0].Niches[0] = "gaming"
	niches[0].PopularTopics[0] = "changed"

	ct, err := c.ContentType("ct")
	if err != nil {
		t.Fatalf("ContentType: %v", err)
	}
	if !ct.Blocks[0].Required || ct.Blocks[0].Templates[0].Content != "{{x}}" || ct.Niches[0] != "finance" {
		t.Errorf("catalog changed with its input: %+v", ct)
	}
	n, err := c.Niche("finance")
	if err != nil || n.PopularTopics[0] != "budgeting" {
		t.Errorf("niche changed with its input: %+v, %v", n, err)
	}
}
