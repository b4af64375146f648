package catalog

import (
	"fmt"
	"strings"

	"contentwizard/internal/substitute"
)

// IntegrityError lists every problem that prevented a catalog from loading.
type IntegrityError struct {
	Problems []string
}

func (e *IntegrityError) Error() string {
	return fmt.Sprintf("catalog integrity: %d problem(s): %s",
		len(e.Problems), strings.Join(e.Problems, "; "))
}

// Warning is a non-fatal catalog finding, such as a declared variable the
// template content never references.
type Warning struct {
	ContentType string `json:"contentType"`
	Block       string `json:"block"`
	Template    string `json:"template"`
	Variable    string `json:"variable,omitempty"`
	Message     string `json:"message"`
}

// validate checks every construction-time invariant and collects all
// problems rather than stopping at the first one.
func validate(types []ContentType, niches []Niche) ([]Warning, error) {
	var problems []string
	var warnings []Warning
	fail := func(format string, args ...any) {
		problems = append(problems, fmt.Sprintf(format, args...))
	}

	nicheIDs := make(map[string]bool, len(niches))
	for _, n := range niches {
		switch {
		case n.ID == "":
			fail("niche with empty id")
		case n.ID == UniversalNiche:
			fail("niche %q is reserved", n.ID)
		case nicheIDs[n.ID]:
			fail("duplicate niche %q", n.ID)
		}
		nicheIDs[n.ID] = true
	}

	typeIDs := make(map[string]bool, len(types))
	for _, ct := range types {
		if ct.ID == "" {
			fail("content type %q has empty id", ct.Name)
			continue
		}
		if typeIDs[ct.ID] {
			fail("duplicate content type %q", ct.ID)
		}
		typeIDs[ct.ID] = true

		if !ct.Category.Valid() {
			fail("%s: unknown category %q", ct.ID, ct.Category)
		}
		for _, n := range ct.Niches {
			if !nicheIDs[n] {
				fail("%s: unknown niche %q", ct.ID, n)
			}
		}

		blockIDs := make(map[string]bool, len(ct.Blocks))
		orders := make(map[int]string, len(ct.Blocks))
		for _, b := range ct.Blocks {
			where := ct.ID + "/" + b.ID
			if b.ID == "" {
				fail("%s: block %q has empty id", ct.ID, b.Name)
				continue
			}
			if blockIDs[b.ID] {
				fail("%s: duplicate block id", where)
			}
			blockIDs[b.ID] = true

			if other, taken := orders[b.Order]; taken {
				fail("%s: order %d already used by block %q", where, b.Order, other)
			} else {
				orders[b.Order] = b.ID
			}
			if !b.Type.Valid() {
				fail("%s: unknown block type %q", where, b.Type)
			}
			if b.Required && len(b.Templates) == 0 {
				fail("%s: required block has no templates", where)
			}

			templateIDs := make(map[string]bool, len(b.Templates))
			for _, t := range b.Templates {
				if t.ID == "" {
					fail("%s: template %q has empty id", where, t.Name)
					continue
				}
				if templateIDs[t.ID] {
					fail("%s: duplicate template %q", where, t.ID)
				}
				templateIDs[t.ID] = true

				tw, tp := validateTemplate(ct.ID, b.ID, t, nicheIDs)
				warnings = append(warnings, tw...)
				problems = append(problems, tp...)
			}
		}
	}

	if len(problems) > 0 {
		return nil, &IntegrityError{Problems: problems}
	}
	return warnings, nil
}

func validateTemplate(typeID, blockID string, t Template, nicheIDs map[string]bool) ([]Warning, []string) {
	var problems []string
	var warnings []Warning
	where := typeID + "/" + blockID + "/" + t.ID

	if t.Niche != UniversalNiche && !nicheIDs[t.Niche] {
		problems = append(problems, fmt.Sprintf("%s: unknown niche %q", where, t.Niche))
	}
	if !t.Style.Valid() {
		problems = append(problems, fmt.Sprintf("%s: invalid style %+v", where, t.Style))
	}

	declared := make(map[string]bool, len(t.Variables))
	for _, v := range t.Variables {
		if v.Name == "" {
			problems = append(problems, fmt.Sprintf("%s: variable with empty name", where))
			continue
		}
		if declared[v.Name] {
			problems = append(problems, fmt.Sprintf("%s: duplicate variable %q", where, v.Name))
		}
		declared[v.Name] = true

		if !v.Type.Valid() {
			problems = append(problems, fmt.Sprintf("%s: variable %q has unknown type %q", where, v.Name, v.Type))
		}
		if v.Type == VariableSelect && len(v.Options) == 0 {
			problems = append(problems, fmt.Sprintf("%s: select variable %q has no options", where, v.Name))
		}
		if v.Type != VariableSelect && len(v.Options) > 0 {
			problems = append(problems, fmt.Sprintf("%s: variable %q has options but is not a select", where, v.Name))
		}
	}

	used := make(map[string]bool)
	for _, name := range substitute.Placeholders(t.Content) {
		used[name] = true
		if !declared[name] {
			problems = append(problems, fmt.Sprintf("%s: placeholder {{%s}} has no variable", where, name))
		}
	}

	for _, v := range t.Variables {
		if v.Name != "" && !used[v.Name] {
			warnings = append(warnings, Warning{
				ContentType: typeID,
				Block:       blockID,
				Template:    t.ID,
				Variable:    v.Name,
				Message:     "variable is declared but never used in content",
			})
		}
	}
	return warnings, problems
}
