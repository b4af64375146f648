// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"contentwizard/internal/catalog"
	"contentwizard/internal/compose"
	"contentwizard/internal/export"
	"contentwizard/internal/middleware"
	"contentwizard/internal/models"
	"contentwizard/internal/substitute"
)

// Export history page size limits.
const (
	defaultHistoryLimit = 20
	maxHistoryLimit     = 100
)

// Projects handles project CRUD, the block constructor and exports.
// Every constructor call loads the stored project, resolves it against
// the catalog, applies one composition operation and writes the result
// back, so a rejected operation never reaches the database.
type Projects struct {
	projects ProjectRepository
	catalog  *catalog.Catalog
	exporter ProjectExporter
}

// NewProjects creates a new Projects handler group.
func NewProjects(projects ProjectRepository, cat *catalog.Catalog, exporter ProjectExporter) *Projects {
	return &Projects{projects: projects, catalog: cat, exporter: exporter}
}

// projectView is a stored project with its derived completeness.
type projectView struct {
	models.Project
	Completeness compose.Report `json:"completeness"`
}

func viewOf(stored *models.Project, p *compose.Project) projectView {
	return projectView{Project: *stored, Completeness: p.Missing()}
}

// renderedBlock is one project block as the preview shows it.
type renderedBlock struct {
	ID         string            `json:"id"`
	BlockID    string            `json:"blockId"`
	BlockName  string            `json:"blockName"`
	BlockType  catalog.BlockType `json:"blockType"`
	Required   bool              `json:"required"`
	TemplateID string            `json:"templateId"`
	Order      int               `json:"order"`
	Content    string            `json:"content"`
	Variables  map[string]string `json:"variables"`
	Rendered   string            `json:"rendered"`
	// Unfilled lists placeholders still visible in Rendered.
	Unfilled []string `json:"unfilled"`
}

func renderBlock(pb *compose.ProjectBlock) renderedBlock {
	unfilled := substitute.Unresolved(pb.Content, pb.Values)
	if unfilled == nil {
		unfilled = []string{}
	}
	return renderedBlock{
		ID:         pb.ID,
		BlockID:    pb.Block.ID,
		BlockName:  pb.Block.Name,
		BlockType:  pb.Block.Type,
		Required:   pb.Block.Required,
		TemplateID: pb.Template.ID,
		Order:      pb.Order,
		Content:    pb.Content,
		Variables:  pb.Values,
		Rendered:   substitute.Render(pb.Content, pb.Values),
		Unfilled:   unfilled,
	}
}

// load fetches the caller's project from the URL and resolves it.
func (h *Projects) load(r *http.Request) (*models.Project, *compose.Project, error) {
	id, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		return nil, nil, err
	}
	stored, err := h.projects.Get(currentUser(r), id)
	if err != nil {
		return nil, nil, err
	}
	if stored == nil {
		return nil, nil, errProjectNotFound
	}
	p, err := compose.Restore(*stored, h.catalog)
	if err != nil {
		return nil, nil, err
	}
	return stored, p, nil
}

// saveBlocks persists the project's block list and returns the stored row.
func (h *Projects) saveBlocks(p *compose.Project) (*models.Project, error) {
	blocks := p.Snapshot().Blocks
	stored, err := h.projects.Update(p.UserID, p.ID, models.ProjectPatch{Blocks: &blocks})
	if err != nil {
		return nil, err
	}
	if stored == nil {
		// Deleted between load and save.
		return nil, errProjectNotFound
	}
	return stored, nil
}

// List returns the caller's projects, newest first, optionally filtered by
// ?status=.
func (h *Projects) List(w http.ResponseWriter, r *http.Request) {
	status := models.ProjectStatus(r.URL.Query().Get("status"))
	if status != "" && !status.Valid() {
		writeError(w, http.StatusBadRequest, "unknown status")
		return
	}
	projects, err := h.projects.List(currentUser(r), status)
	if err != nil {
		fail(w, r, err)
		return
	}
	if projects == nil {
		projects = []models.Project{}
	}
	writeOK(w, http.StatusOK, projects)
}

// Stats returns the caller's project counters.
func (h *Projects) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.projects.Stats(currentUser(r))
	if err != nil {
		fail(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, stats)
}

type createProjectRequest struct {
	Name        string            `json:"name"`
	ContentType string            `json:"contentType"`
	Variables   map[string]string `json:"variables"`
}

// Create starts an empty draft for a catalog content type.
func (h *Projects) Create(w http.ResponseWriter, r *http.Request) {
	var req createProjectRequest
	if err := decodeJSON(w, r, &req); err != nil {
		fail(w, r, err)
		return
	}
	if msg := validateProjectName(req.Name); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}
	if msg := validateProjectVariables(req.Variables); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}
	ct, err := h.catalog.ContentType(req.ContentType)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "unknown content type")
		return
	}

	p := compose.New(currentUser(r), req.Name, ct)
	for k, v := range req.Variables {
		p.Variables[k] = v
	}
	snap := p.Snapshot()
	stored, err := h.projects.Create(&snap)
	if err != nil {
		fail(w, r, err)
		return
	}

	slog.Info("project created", "project_id", stored.ID, "user_id", stored.UserID, "content_type", ct.ID)
	writeOK(w, http.StatusCreated, viewOf(stored, p))
}

// Get returns one project with its completeness report.
func (h *Projects) Get(w http.ResponseWriter, r *http.Request) {
	stored, p, err := h.load(r)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, viewOf(stored, p))
}

// replaceBlocks swaps p's selection for blocks under the constructor's
// rules: catalog membership, declared variables and per-value checks.
func replaceBlocks(p *compose.Project, blocks []models.ProjectBlock) error {
	for _, b := range blocks {
		if msg := validateBlockContent(b.Content); msg != "" {
			return badRequest("%s", msg)
		}
	}
	if err := p.ReplaceBlocks(blocks); err != nil {
		return err
	}
	for _, pb := range p.OrderedBlocks() {
		for name, value := range pb.Values {
			v, _ := pb.Template.Variable(name)
			if msg := validateVariableValue(v, value); msg != "" {
				return badRequest("%s: %s", name, msg)
			}
		}
	}
	return nil
}

type updateProjectRequest struct {
	Name      *string                `json:"name"`
	Status    *models.ProjectStatus  `json:"status"`
	Variables *map[string]string     `json:"variables"`
	Blocks    *[]models.ProjectBlock `json:"blocks"`
}

// Update applies a partial update. A blocks list replaces the selection
// wholesale under the same rules as the constructor endpoints.
func (h *Projects) Update(w http.ResponseWriter, r *http.Request) {
	var req updateProjectRequest
	if err := decodeJSON(w, r, &req); err != nil {
		fail(w, r, err)
		return
	}

	stored, p, err := h.load(r)
	if err != nil {
		fail(w, r, err)
		return
	}

	var patch models.ProjectPatch
	if req.Blocks != nil {
		if err := replaceBlocks(p, *req.Blocks); err != nil {
			fail(w, r, err)
			return
		}
		blocks := p.Snapshot().Blocks
		patch.Blocks = &blocks
	}
	if req.Name != nil {
		if msg := validateProjectName(*req.Name); msg != "" {
			writeError(w, http.StatusBadRequest, msg)
			return
		}
		p.Rename(*req.Name)
		patch.Name = &p.Name
	}
	if req.Status != nil {
		if err := p.SetStatus(*req.Status); err != nil {
			fail(w, r, err)
			return
		}
		patch.Status = &p.Status
	}
	if req.Variables != nil {
		if msg := validateProjectVariables(*req.Variables); msg != "" {
			writeError(w, http.StatusBadRequest, msg)
			return
		}
		vars := *req.Variables
		if vars == nil {
			vars = map[string]string{}
		}
		p.Variables = vars
		patch.Variables = &vars
	}
	if patch.Empty() {
		writeOK(w, http.StatusOK, viewOf(stored, p))
		return
	}

	updated, err := h.projects.Update(p.UserID, p.ID, patch)
	if err != nil {
		fail(w, r, err)
		return
	}
	if updated == nil {
		fail(w, r, errProjectNotFound)
		return
	}
	writeOK(w, http.StatusOK, viewOf(updated, p))
}

// Delete removes a project.
func (h *Projects) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		fail(w, r, err)
		return
	}
	deleted, err := h.projects.Delete(currentUser(r), id)
	if err != nil {
		fail(w, r, err)
		return
	}
	if !deleted {
		fail(w, r, errProjectNotFound)
		return
	}
	slog.Info("project deleted", "project_id", id)
	writeOK(w, http.StatusOK, map[string]uuid.UUID{"id": id})
}

type selectTemplateRequest struct {
	BlockID    string `json:"blockId"`
	TemplateID string `json:"templateId"`
}

type blockResult struct {
	Block   renderedBlock `json:"block"`
	Project projectView   `json:"project"`
}

// SelectTemplate selects a template for a block, replacing any previous
// selection for that block together with its values.
func (h *Projects) SelectTemplate(w http.ResponseWriter, r *http.Request) {
	var req selectTemplateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		fail(w, r, err)
		return
	}
	if req.BlockID == "" || req.TemplateID == "" {
		writeError(w, http.StatusBadRequest, "blockId and templateId are required")
		return
	}

	_, p, err := h.load(r)
	if err != nil {
		fail(w, r, err)
		return
	}
	pb, err := p.SelectTemplate(req.BlockID, req.TemplateID)
	if err != nil {
		fail(w, r, err)
		return
	}
	stored, err := h.saveBlocks(p)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeOK(w, http.StatusCreated, blockResult{Block: renderBlock(pb), Project: viewOf(stored, p)})
}

type setVariableRequest struct {
	Value *string `json:"value"`
}

// SetVariable stores a value for one of the block template's variables.
func (h *Projects) SetVariable(w http.ResponseWriter, r *http.Request) {
	var req setVariableRequest
	if err := decodeJSON(w, r, &req); err != nil {
		fail(w, r, err)
		return
	}
	if req.Value == nil {
		writeError(w, http.StatusBadRequest, "value is required")
		return
	}

	_, p, err := h.load(r)
	if err != nil {
		fail(w, r, err)
		return
	}
	pbID, name := chi.URLParam(r, "pbId"), chi.URLParam(r, "name")

	pb, err := p.Block(pbID)
	if err != nil {
		fail(w, r, err)
		return
	}
	if v, ok := pb.Template.Variable(name); ok {
		if msg := validateVariableValue(v, *req.Value); msg != "" {
			writeError(w, http.StatusBadRequest, msg)
			return
		}
	}
	if err := p.SetVariable(pbID, name, *req.Value); err != nil {
		fail(w, r, err)
		return
	}
	h.respondBlock(w, r, p, pb)
}

// UnsetVariable clears a variable value so its placeholder shows again.
func (h *Projects) UnsetVariable(w http.ResponseWriter, r *http.Request) {
	_, p, err := h.load(r)
	if err != nil {
		fail(w, r, err)
		return
	}
	pbID := chi.URLParam(r, "pbId")
	if err := p.UnsetVariable(pbID, chi.URLParam(r, "name")); err != nil {
		fail(w, r, err)
		return
	}
	pb, _ := p.Block(pbID)
	h.respondBlock(w, r, p, pb)
}

type setContentRequest struct {
	Content string `json:"content"`
}

// SetContent replaces a block's working content, typically with generated
// copy. An empty content restores the template text.
func (h *Projects) SetContent(w http.ResponseWriter, r *http.Request) {
	var req setContentRequest
	if err := decodeJSON(w, r, &req); err != nil {
		fail(w, r, err)
		return
	}
	if msg := validateBlockContent(req.Content); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	_, p, err := h.load(r)
	if err != nil {
		fail(w, r, err)
		return
	}
	pbID := chi.URLParam(r, "pbId")
	if err := p.SetContent(pbID, req.Content); err != nil {
		fail(w, r, err)
		return
	}
	pb, _ := p.Block(pbID)
	h.respondBlock(w, r, p, pb)
}

func (h *Projects) respondBlock(w http.ResponseWriter, r *http.Request, p *compose.Project, pb *compose.ProjectBlock) {
	stored, err := h.saveBlocks(p)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, blockResult{Block: renderBlock(pb), Project: viewOf(stored, p)})
}

// RemoveBlock deletes a project block. Removing an absent block succeeds
// without writing.
func (h *Projects) RemoveBlock(w http.ResponseWriter, r *http.Request) {
	stored, p, err := h.load(r)
	if err != nil {
		fail(w, r, err)
		return
	}
	before := p.Len()
	p.RemoveBlock(chi.URLParam(r, "pbId"))
	if p.Len() == before {
		writeOK(w, http.StatusOK, viewOf(stored, p))
		return
	}
	stored, err = h.saveBlocks(p)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, viewOf(stored, p))
}

type renderResponse struct {
	Blocks       []renderedBlock `json:"blocks"`
	Completeness compose.Report  `json:"completeness"`
}

// Render returns the project's blocks in presentation order, rendered with
// the current values, and the completeness report.
func (h *Projects) Render(w http.ResponseWriter, r *http.Request) {
	_, p, err := h.load(r)
	if err != nil {
		fail(w, r, err)
		return
	}
	ordered := p.OrderedBlocks()
	blocks := make([]renderedBlock, 0, len(ordered))
	for _, pb := range ordered {
		blocks = append(blocks, renderBlock(pb))
	}
	writeOK(w, http.StatusOK, renderResponse{Blocks: blocks, Completeness: p.Missing()})
}

type exportRequest struct {
	Format string `json:"format"`
	Notify bool   `json:"notify"`
}

// Export renders the project into a document and returns a download link.
// With notify the link is also sent to the user's Telegram chat.
func (h *Projects) Export(w http.ResponseWriter, r *http.Request) {
	var req exportRequest
	if err := decodeJSON(w, r, &req); err != nil {
		fail(w, r, err)
		return
	}
	format, err := export.ParseFormat(req.Format)
	if err != nil {
		fail(w, r, err)
		return
	}

	_, p, err := h.load(r)
	if err != nil {
		fail(w, r, err)
		return
	}
	if p.Len() == 0 {
		writeError(w, http.StatusUnprocessableEntity, "project has no blocks to export")
		return
	}

	var chatID int64
	if sess := middleware.SessionFromCtx(r.Context()); sess != nil {
		// Private chats with the bot share the user's Telegram id.
		chatID = sess.TelegramID
	}
	rec, err := h.exporter.Export(r.Context(), export.Request{
		Project: p,
		Format:  format,
		ChatID:  chatID,
		Notify:  req.Notify,
	})
	if err != nil {
		fail(w, r, err)
		return
	}
	writeOK(w, http.StatusCreated, rec)
}

// Exports lists previous exports of a project with fresh download links.
func (h *Projects) Exports(w http.ResponseWriter, r *http.Request) {
	limit := defaultHistoryLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "limit must be a positive number")
			return
		}
		limit = min(n, maxHistoryLimit)
	}

	stored, _, err := h.load(r)
	if err != nil {
		fail(w, r, err)
		return
	}
	history, err := h.exporter.History(r.Context(), stored.UserID, stored.ID, limit)
	if err != nil {
		fail(w, r, err)
		return
	}
	if history == nil {
		history = []models.Export{}
	}
	writeOK(w, http.StatusOK, history)
}
