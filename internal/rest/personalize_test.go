//go:build !integration

package rest

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"stylShop/business/personalize"
	"stylShop/domain"

	"github.com/labstack/echo/v4"
)

type memProfiles struct {
	mu      sync.Mutex
	data    map[uint]*personalize.AffinityProfile
	saveErr error
}

func (m *memProfiles) GetProfile(_ context.Context, userID uint) (*personalize.AffinityProfile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p, ok := m.data[userID]; ok {
		return p.Clone(), nil
	}
	return nil, nil
}

func (m *memProfiles) SaveProfile(_ context.Context, userID uint, p *personalize.AffinityProfile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	m.data[userID] = p.Clone()
	return nil
}

type staticSource struct {
	items []domain.CandidateItem
	calls int
}

func (s *staticSource) Candidates(_ context.Context, _ []string) ([]domain.CandidateItem, bool) {
	s.calls++
	return s.items, true
}

func newTestHandler(repo *memProfiles, src CandidateSource) *PersonalizeHandler {
	svc := personalize.NewService(repo, personalize.DefaultConfig(),
		personalize.WithRandSource(personalize.NewRandSource(1)))
	return NewPersonalizeHandler(svc, src)
}

func serve(t *testing.T, h echo.HandlerFunc, method, body string, userID uint) *httptest.ResponseRecorder {
	t.Helper()

	e := echo.New()
	req := httptest.NewRequest(method, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if userID != 0 {
		c.Set("user_id", userID)
	}
	if err := h(c); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	return rec
}

func TestPersonalizeHandler_RecordInteraction(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		userID     uint
		saveErr    error
		wantStatus int
	}{
		{
			name:       "recorded",
			body:       `{"item_id":"1","kind":"like","facets":{"tags":["denim"],"category":"casual","price_tier":"mid"}}`,
			userID:     1,
			wantStatus: http.StatusCreated,
		},
		{
			name:       "unknown kind",
			body:       `{"item_id":"1","kind":"share"}`,
			userID:     1,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "bad price tier",
			body:       `{"item_id":"1","kind":"view","facets":{"price_tier":"luxury"}}`,
			userID:     1,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "missing item",
			body:       `{"kind":"view"}`,
			userID:     1,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "persist failure is a warning",
			body:       `{"item_id":"1","kind":"cart","facets":{"brand":"Acme"}}`,
			userID:     1,
			saveErr:    errors.New("db down"),
			wantStatus: http.StatusAccepted,
		},
		{
			name:       "unauthenticated",
			body:       `{"item_id":"1","kind":"view"}`,
			wantStatus: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &memProfiles{data: map[uint]*personalize.AffinityProfile{}, saveErr: tt.saveErr}
			h := newTestHandler(repo, nil)

			rec := serve(t, h.RecordInteraction, http.MethodPost, tt.body, tt.userID)
			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d (body %s)", rec.Code, tt.wantStatus, rec.Body.String())
			}
			if tt.wantStatus == http.StatusAccepted {
				var body WarningResponse
				if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
					t.Fatalf("decode: %v", err)
				}
				if body.Warning == "" {
					t.Error("warning missing from 202 response")
				}
			}
		})
	}
}

func TestPersonalizeHandler_FeedUsesCatalogWhenEmpty(t *testing.T) {
	src := &staticSource{items: []domain.CandidateItem{
		{ID: "a1", Category: "A"}, {ID: "a2", Category: "A"}, {ID: "b1", Category: "B"},
	}}
	h := newTestHandler(&memProfiles{data: map[uint]*personalize.AffinityProfile{}}, src)

	rec := serve(t, h.Feed, http.MethodPost, `{}`, 1)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	if src.calls != 1 {
		t.Errorf("catalog calls = %d, want 1", src.calls)
	}
	for _, want := range []string{`"a1"`, `"b1"`, `"fallback":true`} {
		if !strings.Contains(rec.Body.String(), want) {
			t.Errorf("body missing %s: %s", want, rec.Body.String())
		}
	}
	if strings.Index(rec.Body.String(), `"b1"`) > strings.Index(rec.Body.String(), `"a2"`) {
		t.Errorf("cold start not diversified: %s", rec.Body.String())
	}
}

func TestPersonalizeHandler_RerankKeepsRequestCandidates(t *testing.T) {
	src := &staticSource{}
	h := newTestHandler(&memProfiles{data: map[uint]*personalize.AffinityProfile{}}, src)

	body := `{"candidates":[{"id":"x","category":"A"},{"id":"y","category":"B","price_tier":"low"}]}`
	rec := serve(t, h.Rerank, http.MethodPost, body, 1)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	if src.calls != 0 {
		t.Error("rerank consulted the catalog")
	}
	if !strings.Contains(rec.Body.String(), `"x"`) || !strings.Contains(rec.Body.String(), `"y"`) {
		t.Errorf("body = %s", rec.Body.String())
	}

	rec = serve(t, h.Rerank, http.MethodPost, `{"candidates":[{"category":"A"}]}`, 1)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("candidate without id: status = %d, want 400", rec.Code)
	}
}

func TestPersonalizeHandler_SetCategories(t *testing.T) {
	repo := &memProfiles{data: map[uint]*personalize.AffinityProfile{}}
	h := newTestHandler(repo, nil)

	if rec := serve(t, h.SetCategories, http.MethodPut, `{"categories":["formal","casual"]}`, 5); rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	if got := repo.data[5].SelectedCategories; len(got) != 2 {
		t.Errorf("stored categories = %v", got)
	}
	if rec := serve(t, h.SetCategories, http.MethodPut, `{"categories":["pyjamas"]}`, 5); rec.Code != http.StatusBadRequest {
		t.Errorf("unknown category: status = %d, want 400", rec.Code)
	}
}

func TestPersonalizeHandler_ResetProfile(t *testing.T) {
	repo := &memProfiles{data: map[uint]*personalize.AffinityProfile{}}
	h := newTestHandler(repo, nil)

	serve(t, h.RecordInteraction, http.MethodPost, `{"item_id":"1","kind":"purchase","facets":{"brand":"Acme"}}`, 2)
	if !repo.data[2].HasSignal() {
		t.Fatal("interaction not stored")
	}

	if rec := serve(t, h.ResetProfile, http.MethodDelete, ``, 2); rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if repo.data[2].HasSignal() {
		t.Error("reset not persisted")
	}
}
