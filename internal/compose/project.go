// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package compose is the project composition engine. It owns every mutation
// of a project's block selections and variable values, and derives rendered
// text and completeness from that state on demand.
//
// Every mutating method validates its arguments before touching the
// project, so a rejected call leaves the project exactly as it was.
package compose

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"

	"contentwizard/internal/catalog"
	"contentwizard/internal/models"
	"contentwizard/internal/substitute"
)

var (
	// ErrNotFound is returned when a block, template or project block id
	// does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidSelection is returned when a template does not belong to
	// the chosen block.
	ErrInvalidSelection = errors.New("template does not belong to block")

	// ErrUnknownVariable is returned when a variable write names a variable
	// the active template does not declare.
	ErrUnknownVariable = errors.New("unknown variable")

	// ErrInvalidStatus is returned by SetStatus for an unknown status.
	ErrInvalidStatus = errors.New("invalid project status")
)

// ProjectBlock is a user's concrete template choice for one catalog block.
type ProjectBlock struct {
	ID       string
	Block    *catalog.Block
	Template *catalog.Template
	// Content starts as the template content and may be replaced by
	// generated text. It is always rendered through the substitution engine.
	Content string
	Values  map[string]string
	Order   int

	seq uint64
}

// Value returns the entered value for name and whether one was set.
func (pb *ProjectBlock) Value(name string) (string, bool) {
	v, ok := pb.Values[name]
	return v, ok
}

// Project is a user project with its content type resolved against the
// catalog. Create one with New or Restore.
type Project struct {
	ID          uuid.UUID
	UserID      uuid.UUID
	Name        string
	ContentType *catalog.ContentType
	Status      models.ProjectStatus
	// Variables are project-wide values carried for the client. They take
	// no part in rendering.
	Variables map[string]string
	CreatedAt time.Time
	UpdatedAt time.Time

	blocks []*ProjectBlock
	seq    uint64
}

// New starts an empty draft project for ct.
func New(userID uuid.UUID, name string, ct *catalog.ContentType) *Project {
	now := time.Now().UTC()
	return &Project{
		ID:          uuid.New(),
		UserID:      userID,
		Name:        name,
		ContentType: ct,
		Status:      models.ProjectStatusDraft,
		Variables:   map[string]string{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func (p *Project) touch() {
	p.UpdatedAt = time.Now().UTC()
}

func (p *Project) nextSeq() uint64 {
	p.seq++
	return p.seq
}

func (p *Project) indexOf(projectBlockID string) int {
	return slices.IndexFunc(p.blocks, func(pb *ProjectBlock) bool { return pb.ID == projectBlockID })
}

// Block returns the project block with the given id.
func (p *Project) Block(projectBlockID string) (*ProjectBlock, error) {
	i := p.indexOf(projectBlockID)
	if i < 0 {
		return nil, fmt.Errorf("project block %q: %w", projectBlockID, ErrNotFound)
	}
	return p.blocks[i], nil
}

// BlockFor returns the selection for a catalog block id, if any.
func (p *Project) BlockFor(blockID string) (*ProjectBlock, bool) {
	for _, pb := range p.blocks {
		if pb.Block.ID == blockID {
			return pb, true
		}
	}
	return nil, false
}

// SelectTemplate selects templateID for the catalog block blockID. An
// existing selection for the same block is replaced by a fresh project
// block: new id, the new template's content and no variable values.
func (p *Project) SelectTemplate(blockID, templateID string) (*ProjectBlock, error) {
	block, ok := p.ContentType.Block(blockID)
	if !ok {
		return nil, fmt.Errorf("block %q in %q: %w", blockID, p.ContentType.ID, ErrNotFound)
	}
	tmpl, ok := block.Template(templateID)
	if !ok {
		return nil, fmt.Errorf("select %q for %q: %w", templateID, blockID, ErrInvalidSelection)
	}

	pb := &ProjectBlock{
		ID:       uuid.NewString(),
		Block:    block,
		Template: tmpl,
		Content:  tmpl.Content,
		Values:   map[string]string{},
		Order:    block.Order,
		seq:      p.nextSeq(),
	}

	p.blocks = slices.DeleteFunc(p.blocks, func(old *ProjectBlock) bool { return old.Block.ID == blockID })
	p.blocks = append(p.blocks, pb)
	p.touch()
	return pb, nil
}

// ReplaceBlocks replaces the whole selection with blocks. Every entry is
// checked like SelectTemplate followed by SetVariable, and its order is
// taken from the catalog block. A later entry for an already listed block
// replaces the earlier one. On error the project is unchanged.
func (p *Project) ReplaceBlocks(blocks []models.ProjectBlock) error {
	next := make([]*ProjectBlock, 0, len(blocks))
	seq := p.seq
	for _, sb := range blocks {
		block, ok := p.ContentType.Block(sb.BlockID)
		if !ok {
			return fmt.Errorf("block %q in %q: %w", sb.BlockID, p.ContentType.ID, ErrNotFound)
		}
		tmpl, ok := block.Template(sb.TemplateID)
		if !ok {
			return fmt.Errorf("select %q for %q: %w", sb.TemplateID, sb.BlockID, ErrInvalidSelection)
		}

		values := make(map[string]string, len(sb.Variables))
		for name, v := range sb.Variables {
			if _, ok := tmpl.Variable(name); !ok {
				return fmt.Errorf("variable %q on template %q: %w", name, tmpl.ID, ErrUnknownVariable)
			}
			values[name] = v
		}

		next = slices.DeleteFunc(next, func(old *ProjectBlock) bool { return old.Block.ID == block.ID })

		id := sb.ID
		if id == "" || slices.ContainsFunc(next, func(pb *ProjectBlock) bool { return pb.ID == id }) {
			id = uuid.NewString()
		}
		content := sb.Content
		if content == "" {
			content = tmpl.Content
		}
		seq++
		next = append(next, &ProjectBlock{
			ID:       id,
			Block:    block,
			Template: tmpl,
			Content:  content,
			Values:   values,
			Order:    block.Order,
			seq:      seq,
		})
	}

	p.blocks = next
	p.seq = seq
	p.touch()
	return nil
}

// SetVariable stores value for variable name on a project block. An empty
// value is an explicit value, distinct from unset.
func (p *Project) SetVariable(projectBlockID, name, value string) error {
	pb, err := p.Block(projectBlockID)
	if err != nil {
		return err
	}
	if _, ok := pb.Template.Variable(name); !ok {
		return fmt.Errorf("variable %q on template %q: %w", name, pb.Template.ID, ErrUnknownVariable)
	}
	pb.Values[name] = value
	p.touch()
	return nil
}

// UnsetVariable removes an entered value. Unknown names are rejected like
// SetVariable; clearing an unset variable is a no-op.
func (p *Project) UnsetVariable(projectBlockID, name string) error {
	pb, err := p.Block(projectBlockID)
	if err != nil {
		return err
	}
	if _, ok := pb.Template.Variable(name); !ok {
		return fmt.Errorf("variable %q on template %q: %w", name, pb.Template.ID, ErrUnknownVariable)
	}
	delete(pb.Values, name)
	p.touch()
	return nil
}

// SetContent replaces a block's working content, typically with generated
// text. Entered values are kept. An empty content restores the template's.
func (p *Project) SetContent(projectBlockID, content string) error {
	pb, err := p.Block(projectBlockID)
	if err != nil {
		return err
	}
	if content == "" {
		content = pb.Template.Content
	}
	pb.Content = content
	p.touch()
	return nil
}

// RemoveBlock deletes a project block. Removing an absent id is a no-op.
func (p *Project) RemoveBlock(projectBlockID string) {
	i := p.indexOf(projectBlockID)
	if i < 0 {
		return
	}
	p.blocks = slices.Delete(p.blocks, i, i+1)
	p.touch()
}

// RenderBlock renders a project block's current content with its values.
func (p *Project) RenderBlock(projectBlockID string) (string, error) {
	pb, err := p.Block(projectBlockID)
	if err != nil {
		return "", err
	}
	return substitute.Render(pb.Content, pb.Values), nil
}

// OrderedBlocks returns the project blocks sorted by order, with ties kept
// in insertion order.
func (p *Project) OrderedBlocks() []*ProjectBlock {
	out := slices.Clone(p.blocks)
	slices.SortStableFunc(out, func(a, b *ProjectBlock) int {
		if c := cmp.Compare(a.Order, b.Order); c != 0 {
			return c
		}
		return cmp.Compare(a.seq, b.seq)
	})
	return out
}

// Len returns the number of selected blocks.
func (p *Project) Len() int {
	return len(p.blocks)
}

// Rename sets the project's display name.
func (p *Project) Rename(name string) {
	p.Name = name
	p.touch()
}

// SetStatus moves the project to status.
func (p *Project) SetStatus(status models.ProjectStatus) error {
	if !status.Valid() {
		return fmt.Errorf("status %q: %w", status, ErrInvalidStatus)
	}
	p.Status = status
	p.touch()
	return nil
}
