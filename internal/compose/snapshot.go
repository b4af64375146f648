package compose

import (
	"fmt"
	"maps"
	"slices"

	"github.com/google/uuid"

	"contentwizard/internal/catalog"
	"contentwizard/internal/models"
)

// Resolver resolves a stored content type reference. *catalog.Catalog
// satisfies it.
type Resolver interface {
	ContentType(id string) (*catalog.ContentType, error)
}

// Snapshot returns the persisted shape of p. Blocks are listed in insertion
// order so that Restore reproduces tie-breaking.
func (p *Project) Snapshot() models.Project {
	blocks := make([]models.ProjectBlock, 0, len(p.blocks))
	for _, pb := range p.blocks {
		blocks = append(blocks, models.ProjectBlock{
			ID:         pb.ID,
			BlockID:    pb.Block.ID,
			TemplateID: pb.Template.ID,
			Content:    pb.Content,
			Variables:  maps.Clone(pb.Values),
			Order:      pb.Order,
		})
	}

	vars := maps.Clone(p.Variables)
	if vars == nil {
		vars = map[string]string{}
	}
	return models.Project{
		ID:          p.ID,
		UserID:      p.UserID,
		Name:        p.Name,
		ContentType: p.ContentType.ID,
		Status:      p.Status,
		Blocks:      blocks,
		Variables:   vars,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

// Restore resolves a stored project against the catalog. It fails with
// ErrNotFound when the content type, a block or a template no longer
// exists. Values for variables the template no longer declares are
// dropped, and a later entry for an already seen block replaces the
// earlier one.
func Restore(stored models.Project, r Resolver) (*Project, error) {
	ct, err := r.ContentType(stored.ContentType)
	if err != nil {
		return nil, fmt.Errorf("restore project %s: %w: %w", stored.ID, ErrNotFound, err)
	}

	status := stored.Status
	if status == "" {
		status = models.ProjectStatusDraft
	}
	if !status.Valid() {
		return nil, fmt.Errorf("restore project %s: status %q: %w", stored.ID, status, ErrInvalidStatus)
	}

	p := &Project{
		ID:          stored.ID,
		UserID:      stored.UserID,
		Name:        stored.Name,
		ContentType: ct,
		Status:      status,
		Variables:   maps.Clone(stored.Variables),
		CreatedAt:   stored.CreatedAt,
		UpdatedAt:   stored.UpdatedAt,
	}
	if p.Variables == nil {
		p.Variables = map[string]string{}
	}

	for _, sb := range stored.Blocks {
		pb, err := restoreBlock(ct, sb)
		if err != nil {
			return nil, fmt.Errorf("restore project %s: %w", stored.ID, err)
		}
		pb.seq = p.nextSeq()
		p.blocks = slices.DeleteFunc(p.blocks, func(old *ProjectBlock) bool { return old.Block.ID == pb.Block.ID })
		p.blocks = append(p.blocks, pb)
	}
	return p, nil
}

func restoreBlock(ct *catalog.ContentType, sb models.ProjectBlock) (*ProjectBlock, error) {
	block, ok := ct.Block(sb.BlockID)
	if !ok {
		return nil, fmt.Errorf("block %q in %q: %w", sb.BlockID, ct.ID, ErrNotFound)
	}
	tmpl, ok := block.Template(sb.TemplateID)
	if !ok {
		return nil, fmt.Errorf("template %q in block %q: %w", sb.TemplateID, sb.BlockID, ErrNotFound)
	}

	values := make(map[string]string, len(sb.Variables))
	for name, v := range sb.Variables {
		if _, ok := tmpl.Variable(name); ok {
			values[name] = v
		}
	}

	pb := &ProjectBlock{
		ID:       sb.ID,
		Block:    block,
		Template: tmpl,
		Content:  sb.Content,
		Values:   values,
		Order:    sb.Order,
	}
	if pb.ID == "" {
		pb.ID = uuid.NewString()
	}
	if pb.Content == "" {
		pb.Content = tmpl.Content
	}
	if pb.Order == 0 {
		pb.Order = block.Order
	}
	return pb, nil
}
