// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package catalog

import (
	"cmp"
	"slices"
)

// Category groups content types on the dashboard.
type Category string

const (
	CategoryLeadMagnet   Category = "lead-magnet"
	CategoryLanding      Category = "landing"
	CategoryEmail        Category = "email"
	CategoryPresentation Category = "presentation"
	CategoryInteractive  Category = "interactive"
	CategorySocial       Category = "social"
	CategoryLegal        Category = "legal"
)

// Categories lists every known category in display order.
var Categories = []Category{
	CategoryLeadMagnet, CategoryLanding, CategoryEmail, CategoryPresentation,
	CategoryInteractive, CategorySocial, CategoryLegal,
}

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	return slices.Contains(Categories, c)
}

// BlockType is the semantic role of a block inside a content type.
type BlockType string

const (
	BlockHeading      BlockType = "heading"
	BlockSubheading   BlockType = "subheading"
	BlockOffer        BlockType = "offer"
	BlockBenefits     BlockType = "benefits"
	BlockTestimonials BlockType = "testimonials"
	BlockObjections   BlockType = "objections"
	BlockCTA          BlockType = "cta"
	BlockContact      BlockType = "contact"
	BlockList         BlockType = "list"
	BlockText         BlockType = "text"
	BlockImage        BlockType = "image"
	BlockVideo        BlockType = "video"
	BlockForm         BlockType = "form"
)

var blockTypes = []BlockType{
	BlockHeading, BlockSubheading, BlockOffer, BlockBenefits, BlockTestimonials,
	BlockObjections, BlockCTA, BlockContact, BlockList, BlockText, BlockImage,
	BlockVideo, BlockForm,
}

// Valid reports whether t is one of the known block types.
func (t BlockType) Valid() bool {
	return slices.Contains(blockTypes, t)
}

// VariableType controls how the Mini App prompts for a variable.
type VariableType string

const (
	VariableText   VariableType = "text"
	VariableNumber VariableType = "number"
	VariableSelect VariableType = "select"
)

// Valid reports whether t is one of the known variable types.
func (t VariableType) Valid() bool {
	return t == VariableText || t == VariableNumber || t == VariableSelect
}

// Tone, Length and Emotion describe the style of a template.
type (
	Tone    string
	Length  string
	Emotion string
)

const (
	ToneFormal   Tone = "formal"
	ToneCasual   Tone = "casual"
	ToneUrgent   Tone = "urgent"
	ToneFriendly Tone = "friendly"

	LengthShort  Length = "short"
	LengthMedium Length = "medium"
	LengthLong   Length = "long"

	EmotionExcitement Emotion = "excitement"
	EmotionFear       Emotion = "fear"
	EmotionTrust      Emotion = "trust"
	EmotionCuriosity  Emotion = "curiosity"
)

// Style is the tone/length/emotion descriptor attached to every template.
// It doubles as the style hint passed to AI generation.
type Style struct {
	Tone    Tone    `json:"tone" yaml:"tone"`
	Length  Length  `json:"length" yaml:"length"`
	Emotion Emotion `json:"emotion" yaml:"emotion"`
}

// Valid reports whether every style field holds a known value.
func (s Style) Valid() bool {
	switch s.Tone {
	case ToneFormal, ToneCasual, ToneUrgent, ToneFriendly:
	default:
		return false
	}
	switch s.Length {
	case LengthShort, LengthMedium, LengthLong:
	default:
		return false
	}
	switch s.Emotion {
	case EmotionExcitement, EmotionFear, EmotionTrust, EmotionCuriosity:
	default:
		return false
	}
	return true
}

// UniversalNiche marks a template usable in every niche.
const UniversalNiche = "universal"

// Variable is a typed input slot declared by a template. Name doubles as the
// placeholder key in the template content.
type Variable struct {
	Name        string       `json:"name" yaml:"name"`
	Type        VariableType `json:"type" yaml:"type"`
	Placeholder string       `json:"placeholder" yaml:"placeholder"`
	Options     []string     `json:"options,omitempty" yaml:"options,omitempty"`
	Required    bool         `json:"required" yaml:"required"`
}

// Template is one concrete text alternative for a block.
type Template struct {
	ID        string     `json:"id" yaml:"id"`
	Name      string     `json:"name" yaml:"name"`
	Content   string     `json:"content" yaml:"content"`
	Variables []Variable `json:"variables" yaml:"variables"`
	Niche     string     `json:"niche" yaml:"niche"`
	Style     Style      `json:"style" yaml:"style"`
}

// Variable returns the declared variable with the given name.
func (t *Template) Variable(name string) (*Variable, bool) {
	for i := range t.Variables {
		if t.Variables[i].Name == name {
			return &t.Variables[i], true
		}
	}
	return nil, false
}

// Supports reports whether the template is offered for niche. Universal
// templates match every niche, and an empty niche matches every template.
func (t *Template) Supports(niche string) bool {
	return niche == "" || t.Niche == UniversalNiche || t.Niche == niche
}

// Block is a named section of a content type with its template alternatives.
type Block struct {
	ID          string     `json:"id" yaml:"id"`
	Name        string     `json:"name" yaml:"name"`
	Type        BlockType  `json:"type" yaml:"type"`
	Required    bool       `json:"required" yaml:"required"`
	Order       int        `json:"order" yaml:"order"`
	Description string     `json:"description" yaml:"description"`
	Templates   []Template `json:"templates" yaml:"templates"`
}

// Template returns the template with the given id if it belongs to the block.
func (b *Block) Template(id string) (*Template, bool) {
	for i := range b.Templates {
		if b.Templates[i].ID == id {
			return &b.Templates[i], true
		}
	}
	return nil, false
}

// TemplatesFor returns the block's templates offered in niche, in
// declaration order.
func (b *Block) TemplatesFor(niche string) []Template {
	out := make([]Template, 0, len(b.Templates))
	for i := range b.Templates {
		if b.Templates[i].Supports(niche) {
			out = append(out, b.Templates[i])
		}
	}
	return out
}

// ContentType is a top-level catalog entry such as a sales landing page.
type ContentType struct {
	ID          string   `json:"id" yaml:"id"`
	Name        string   `json:"name" yaml:"name"`
	Description string   `json:"description" yaml:"description"`
	Category    Category `json:"category" yaml:"category"`
	Niches      []string `json:"niches" yaml:"niches"`
	Blocks      []Block  `json:"blocks" yaml:"blocks"`
}

// Block returns the block with the given id.
func (ct *ContentType) Block(id string) (*Block, bool) {
	for i := range ct.Blocks {
		if ct.Blocks[i].ID == id {
			return &ct.Blocks[i], true
		}
	}
	return nil, false
}

// HasNiche reports whether niche is one of the content type's niches.
func (ct *ContentType) HasNiche(niche string) bool {
	return slices.Contains(ct.Niches, niche)
}

// OrderedBlocks returns the blocks sorted by Order, keeping declaration
// order between equal values.
func (ct *ContentType) OrderedBlocks() []Block {
	out := slices.Clone(ct.Blocks)
	slices.SortStableFunc(out, func(a, b Block) int { return cmp.Compare(a.Order, b.Order) })
	return out
}

// Niche is a target audience the catalog can be narrowed to.
type Niche struct {
	ID             string   `json:"id" yaml:"id"`
	Name           string   `json:"name" yaml:"name"`
	Description    string   `json:"description" yaml:"description"`
	TargetAudience []string `json:"targetAudience" yaml:"target_audience"`
	PopularTopics  []string `json:"popularTopics" yaml:"popular_topics"`
}
