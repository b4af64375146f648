package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"maps"
	"net/http"
	"net/http/httptest"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"contentwizard/internal/ai"
	"contentwizard/internal/cache"
	"contentwizard/internal/catalog"
	"contentwizard/internal/export"
	"contentwizard/internal/middleware"
	"contentwizard/internal/models"
	"contentwizard/internal/session"
	"contentwizard/internal/telegram"
)

var testStyle = catalog.Style{Tone: catalog.ToneFriendly, Length: catalog.LengthShort, Emotion: catalog.EmotionTrust}

// testCatalog builds a small catalog: a webinar landing with two required
// blocks and one optional block, and an email newsletter.
func testCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	types := []catalog.ContentType{
		{
			ID: "webinar", Name: "Webinar landing", Category: catalog.CategoryLanding,
			Niches: []string{"finance"},
			Blocks: []catalog.Block{
				{
					ID: "heading", Name: "Heading", Type: catalog.BlockHeading, Required: true, Order: 1,
					Templates: []catalog.Template{
						{
							ID: "h-universal", Content: "Join {{topic}} live", Niche: catalog.UniversalNiche, Style: testStyle,
							Variables: []catalog.Variable{{Name: "topic", Type: catalog.VariableText, Required: true}},
						},
						{
							ID: "h-finance", Content: "Grow {{capital}} with us", Niche: "finance", Style: testStyle,
							Variables: []catalog.Variable{{Name: "capital", Type: catalog.VariableText, Required: true}},
						},
					},
				},
				{
					ID: "cta", Name: "Call to action", Type: catalog.BlockCTA, Required: true, Order: 2,
					Templates: []catalog.Template{{
						ID: "c1", Content: "{{action}} ({{format}})", Niche: catalog.UniversalNiche, Style: testStyle,
						Variables: []catalog.Variable{
							{Name: "action", Type: catalog.VariableText, Required: true},
							{Name: "format", Type: catalog.VariableSelect, Options: []string{"online", "offline"}},
						},
					}},
				},
				{
					ID: "testimonials", Name: "Testimonials", Type: catalog.BlockTestimonials, Order: 3,
					Templates: []catalog.Template{{ID: "t1", Content: "Loved it", Niche: catalog.UniversalNiche, Style: testStyle}},
				},
			},
		},
		{
			ID: "newsletter", Name: "Newsletter", Category: catalog.CategoryEmail,
			Niches: []string{"health"},
			Blocks: []catalog.Block{{
				ID: "body", Name: "Body", Type: catalog.BlockText, Required: true, Order: 1,
				Templates: []catalog.Template{{
					ID: "b1", Content: "Hi {{name}}", Niche: "health", Style: testStyle,
					Variables: []catalog.Variable{{Name: "name", Type: catalog.VariableText, Required: true}},
				}},
			}},
		},
	}
	niches := []catalog.Niche{{ID: "finance", Name: "Finance"}, {ID: "health", Name: "Health"}}

	c, err := catalog.New(types, niches)
	if err != nil {
		t.Fatalf("catalog.New: %v", err)
	}
	return c
}

// memProjects is an in-memory ProjectRepository.
type memProjects struct {
	mu       sync.Mutex
	projects map[uuid.UUID]models.Project
	updates  int
}

func newMemProjects() *memProjects {
	return &memProjects{projects: make(map[uuid.UUID]models.Project)}
}

func cloneProject(p models.Project) *models.Project {
	p.Blocks = slices.Clone(p.Blocks)
	for i := range p.Blocks {
		p.Blocks[i].Variables = maps.Clone(p.Blocks[i].Variables)
	}
	p.Variables = maps.Clone(p.Variables)
	return &p
}

func (m *memProjects) Create(p *models.Project) (*models.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.projects[p.ID] = *cloneProject(*p)
	return cloneProject(*p), nil
}

func (m *memProjects) Get(userID, id uuid.UUID) (*models.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.projects[id]
	if !ok || p.UserID != userID {
		return nil, nil
	}
	return cloneProject(p), nil
}

func (m *memProjects) List(userID uuid.UUID, status models.ProjectStatus) ([]models.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Project
	for _, p := range m.projects {
		if p.UserID == userID && (status == "" || p.Status == status) {
			out = append(out, *cloneProject(p))
		}
	}
	return out, nil
}

func (m *memProjects) Update(userID, id uuid.UUID, patch models.ProjectPatch) (*models.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.projects[id]
	if !ok || p.UserID != userID {
		return nil, nil
	}
	if patch.Name != nil {
		p.Name = *patch.Name
	}
	if patch.Status != nil {
		p.Status = *patch.Status
	}
	if patch.Blocks != nil {
		p.Blocks = slices.Clone(*patch.Blocks)
	}
	if patch.Variables != nil {
		p.Variables = maps.Clone(*patch.Variables)
	}
	p.UpdatedAt = time.Now().UTC()
	m.projects[id] = p
	m.updates++
	return cloneProject(p), nil
}

func (m *memProjects) Delete(userID, id uuid.UUID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.projects[id]
	if !ok || p.UserID != userID {
		return false, nil
	}
	delete(m.projects, id)
	return true, nil
}

func (m *memProjects) Stats(userID uuid.UUID) (models.ProjectStats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var s models.ProjectStats
	for _, p := range m.projects {
		if p.UserID != userID {
			continue
		}
		s.Total++
		switch p.Status {
		case models.ProjectStatusDraft:
			s.Draft++
		case models.ProjectStatusPublished:
			s.Published++
		case models.ProjectStatusArchived:
			s.Archived++
		}
	}
	return s, nil
}

func (m *memProjects) stored(id uuid.UUID) models.Project {
	m.mu.Lock()
	defer m.mu.Unlock()
	return *cloneProject(m.projects[id])
}

// memUsers is an in-memory UserRepository keyed by user id.
type memUsers struct {
	mu    sync.Mutex
	users map[uuid.UUID]*models.User
}

func newMemUsers() *memUsers {
	return &memUsers{users: make(map[uuid.UUID]*models.User)}
}

func (m *memUsers) UpsertTelegram(u *models.User) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.users {
		if existing.TelegramID == u.TelegramID {
			existing.FirstName, existing.Username = u.FirstName, u.Username
			cp := *existing
			return &cp, nil
		}
	}
	nu := *u
	nu.ID = uuid.New()
	nu.Plan = models.PlanFree
	nu.Preferences = models.DefaultPreferences()
	m.users[nu.ID] = &nu
	cp := nu
	return &cp, nil
}

func (m *memUsers) FindByID(id uuid.UUID) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (m *memUsers) UpdatePreferences(id uuid.UUID, p models.Preferences) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, nil
	}
	u.Preferences = p
	cp := *u
	return &cp, nil
}

// fakeSessions issues predictable tokens.
type fakeSessions struct {
	issued  []*session.Data
	revoked []string
}

func (f *fakeSessions) Issue(ctx context.Context, d *session.Data) (string, error) {
	d.ID = "sess-" + d.UserID.String()
	d.ExpiresAt = time.Now().Add(time.Hour)
	f.issued = append(f.issued, d)
	return "token-" + d.UserID.String(), nil
}

func (f *fakeSessions) Revoke(ctx context.Context, token string) error {
	f.revoked = append(f.revoked, token)
	return nil
}

// fakeInitData accepts a single raw initData string.
type fakeInitData struct {
	raw  string
	user telegram.WebAppUser
}

func (f *fakeInitData) Validate(raw string) (*telegram.InitData, error) {
	if raw != f.raw {
		return nil, telegram.ErrInvalidInitData
	}
	return &telegram.InitData{User: f.user, AuthDate: time.Now()}, nil
}

// fakeWriter records the last request and answers with a fixed result.
type fakeWriter struct {
	content string
	err     error
	lastGen ai.GenerateRequest
}

func (f *fakeWriter) Generate(ctx context.Context, req ai.GenerateRequest) (string, error) {
	f.lastGen = req
	return f.content, f.err
}

func (f *fakeWriter) Improve(ctx context.Context, content, instructions string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.content + " " + content, nil
}

// fakeExporter records export requests.
type fakeExporter struct {
	err     error
	last    export.Request
	history []models.Export
	limit   int
}

func (f *fakeExporter) Export(ctx context.Context, req export.Request) (*models.Export, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.last = req
	return &models.Export{
		ID:        uuid.New(),
		ProjectID: req.Project.ID,
		UserID:    req.Project.UserID,
		Format:    string(req.Format),
		URL:       "https://files.example.com/export?sig=1",
	}, nil
}

func (f *fakeExporter) History(ctx context.Context, userID, projectID uuid.UUID, limit int) ([]models.Export, error) {
	f.limit = limit
	return f.history, nil
}

// memDrafts is an in-memory DraftRepository.
type memDrafts struct {
	drafts map[uuid.UUID]cache.Draft
}

func (m *memDrafts) Save(ctx context.Context, userID uuid.UUID, d cache.Draft) error {
	d.SavedAt = time.Now().UTC()
	m.drafts[userID] = d
	return nil
}

func (m *memDrafts) Load(ctx context.Context, userID uuid.UUID) (*cache.Draft, error) {
	d, ok := m.drafts[userID]
	if !ok {
		return nil, nil
	}
	return &d, nil
}

func (m *memDrafts) Clear(ctx context.Context, userID uuid.UUID) error {
	delete(m.drafts, userID)
	return nil
}

// envelope mirrors the response envelope for decoding.
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

// call runs handler with an optional JSON body, session and chi URL params
// given as alternating key, value pairs.
func call(t *testing.T, handler http.HandlerFunc, method, target string, body any, sess *session.Data, params ...string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		if err := json.NewEncoder(&buf).Encode(b); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}

	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	rctx := chi.NewRouteContext()
	for i := 0; i+1 < len(params); i += 2 {
		rctx.URLParams.Add(params[i], params[i+1])
	}
	ctx := context.WithValue(req.Context(), chi.RouteCtxKey, rctx)
	if sess != nil {
		ctx = middleware.WithSession(ctx, sess)
	}
	req = req.WithContext(ctx)

	rr := httptest.NewRecorder()
	handler(rr, req)

	var env envelope
	if err := json.Unmarshal(rr.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode envelope: %v (body %q)", err, rr.Body.String())
	}
	if env.Success != (rr.Code < 400) {
		t.Errorf("success=%v with status %d", env.Success, rr.Code)
	}
	if !env.Success && env.Error == "" {
		t.Errorf("error response without message: %s", rr.Body.String())
	}
	return rr, env
}

func decodeData(t *testing.T, env envelope, v any) {
	t.Helper()
	if err := json.Unmarshal(env.Data, v); err != nil {
		t.Fatalf("decode data: %v (data %s)", err, env.Data)
	}
}

func testSession() *session.Data {
	return &session.Data{ID: "s1", UserID: uuid.New(), TelegramID: 4242, FirstName: "Anna"}
}
