package handlers

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-error-catalog/internal/domain"
	"github.com/tbourn/go-error-catalog/internal/services"
)

//
// Fakes
//

type fakeCatalog struct {
	mu      sync.Mutex
	entries []domain.ErrorEntry
	nextID  uint
	failAll error

	created []services.NewError
	votes   []uint
	deleted []uint
	query   string
	k       int
	page    int
}

func (f *fakeCatalog) List(ctx context.Context) ([]domain.ErrorEntry, error) {
	if f.failAll != nil {
		return nil, f.failAll
	}
	out := append([]domain.ErrorEntry{}, f.entries...)
	return out, nil
}

func (f *fakeCatalog) ListPage(ctx context.Context, page, pageSize int) ([]domain.ErrorEntry, int64, error) {
	if f.failAll != nil {
		return nil, 0, f.failAll
	}
	f.page = page
	start := (page - 1) * pageSize
	if start > len(f.entries) {
		start = len(f.entries)
	}
	end := start + pageSize
	if end > len(f.entries) {
		end = len(f.entries)
	}
	return append([]domain.ErrorEntry{}, f.entries[start:end]...), int64(len(f.entries)), nil
}

func (f *fakeCatalog) Top(ctx context.Context) (*domain.ErrorEntry, error) {
	if len(f.entries) == 0 {
		return nil, services.ErrErrorNotFound
	}
	best := f.entries[0]
	for _, e := range f.entries[1:] {
		if e.Votes > best.Votes {
			best = e
		}
	}
	return &best, nil
}

func (f *fakeCatalog) GetByID(ctx context.Context, id uint) (*domain.ErrorEntry, error) {
	for _, e := range f.entries {
		if e.ID == id {
			e := e
			return &e, nil
		}
	}
	return nil, services.ErrErrorNotFound
}

func (f *fakeCatalog) GetByName(ctx context.Context, name string) (*domain.ErrorEntry, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, services.ErrEmptyName
	}
	for _, e := range f.entries {
		if e.DetailedName == name {
			e := e
			return &e, nil
		}
	}
	return nil, services.ErrErrorNotFound
}

func (f *fakeCatalog) Create(ctx context.Context, in services.NewError) (*domain.ErrorEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAll != nil {
		return nil, f.failAll
	}
	f.created = append(f.created, in)
	for _, e := range f.entries {
		if e.DetailedName == in.DetailedName {
			return nil, services.ErrDuplicateName
		}
	}
	f.nextID++
	e := domain.ErrorEntry{ID: f.nextID, DetailedName: in.DetailedName, Description: in.Description, Votes: in.Votes}
	f.entries = append(f.entries, e)
	return &e, nil
}

func (f *fakeCatalog) AddVote(ctx context.Context, id uint) error {
	f.votes = append(f.votes, id)
	for i := range f.entries {
		if f.entries[i].ID == id {
			f.entries[i].Votes++
			return nil
		}
	}
	return services.ErrErrorNotFound
}

func (f *fakeCatalog) Delete(ctx context.Context, id uint) error {
	f.deleted = append(f.deleted, id)
	for i := range f.entries {
		if f.entries[i].ID == id {
			f.entries = append(f.entries[:i], f.entries[i+1:]...)
			return nil
		}
	}
	return services.ErrErrorNotFound
}

func (f *fakeCatalog) Search(ctx context.Context, q string, k int) ([]domain.ErrorEntry, error) {
	f.query, f.k = q, k
	if strings.TrimSpace(q) == "" {
		return nil, services.ErrEmptyQuery
	}
	return []domain.ErrorEntry{}, nil
}

type fakeRecorder struct {
	clientID, scope, key string
	resourceID           uint
	status               int
	err                  error
}

func (r *fakeRecorder) Remember(ctx context.Context, clientID, scope, key string, resourceID uint, status int) error {
	r.clientID, r.scope, r.key, r.resourceID, r.status = clientID, scope, key, resourceID, status
	return r.err
}

type fakeStats struct {
	count int64
	ts    *time.Time
}

func (s fakeStats) ErrorsStats(ctx context.Context) (int64, *time.Time, error) {
	return s.count, s.ts, nil
}

//
// Helpers
//

func seeded(names ...string) *fakeCatalog {
	f := &fakeCatalog{}
	for _, n := range names {
		f.nextID++
		f.entries = append(f.entries, domain.ErrorEntry{ID: f.nextID, DetailedName: n})
	}
	return f
}

func newTestRouter(h *Handlers, pre ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(pre...)
	r.GET("/errors", h.ListErrors)
	r.GET("/errors/top", h.TopError)
	r.GET("/errors/by-name", h.ErrorByName)
	r.GET("/errors/search", h.SearchErrors)
	r.GET("/errors/export.csv", h.ExportErrorsCSV)
	r.POST("/errors", h.CreateError)
	r.POST("/errors/:id/votes", h.VoteError)
	r.DELETE("/errors/:id", h.DeleteError)
	return r
}

func do(r http.Handler, method, path, body string, hdr ...string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	for i := 0; i+1 < len(hdr); i += 2 {
		req.Header.Set(hdr[i], hdr[i+1])
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeErr(t *testing.T, w *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var er ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &er); err != nil {
		t.Fatalf("decode error body: %v (%s)", err, w.Body.String())
	}
	return er
}

//
// Tests
//

func TestListErrors_EmptyIsArray(t *testing.T) {
	r := newTestRouter(New(&fakeCatalog{}))
	w := do(r, http.MethodGet, "/errors", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d", w.Code)
	}
	if strings.TrimSpace(w.Body.String()) != "[]" {
		t.Fatalf("want [], got %s", w.Body.String())
	}
}

func TestListErrors_Paged(t *testing.T) {
	r := newTestRouter(New(seeded("a", "b", "c")))
	w := do(r, http.MethodGet, "/errors?page=2&page_size=2", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d", w.Code)
	}
	if got := w.Header().Get("X-Total-Count"); got != "3" {
		t.Fatalf("X-Total-Count=%q", got)
	}
	var items []domain.ErrorEntry
	if err := json.Unmarshal(w.Body.Bytes(), &items); err != nil {
		t.Fatal(err)
	}
	if len(items) != 1 || items[0].DetailedName != "c" {
		t.Fatalf("unexpected page: %+v", items)
	}
}

func TestListErrors_ETag304(t *testing.T) {
	ts := time.Unix(1700000000, 0)
	h := New(seeded("a"), WithStats(fakeStats{count: 1, ts: &ts}))
	r := newTestRouter(h)

	w := do(r, http.MethodGet, "/errors", "")
	etag := w.Header().Get("ETag")
	if !strings.HasPrefix(etag, `W/"errors:1:`) {
		t.Fatalf("etag=%q", etag)
	}
	w = do(r, http.MethodGet, "/errors", "", "If-None-Match", etag)
	if w.Code != http.StatusNotModified {
		t.Fatalf("status=%d", w.Code)
	}
	w = do(r, http.MethodGet, "/errors", "", "If-None-Match", `W/"stale"`)
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d", w.Code)
	}
}

func TestListErrors_PageIsBounded(t *testing.T) {
	f := seeded("a", "b", "c")
	r := newTestRouter(New(f))
	w := do(r, http.MethodGet, "/errors?page=9223372036854775807&page_size=2", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d", w.Code)
	}
	if f.page != maxPage {
		t.Fatalf("page=%d; want %d", f.page, maxPage)
	}
	if got := w.Header().Get("X-Total-Count"); got != "3" {
		t.Fatalf("X-Total-Count=%q", got)
	}
	if strings.TrimSpace(w.Body.String()) != "[]" {
		t.Fatalf("want [], got %s", w.Body.String())
	}
}

func TestListErrors_IfNoneMatchListAndWildcard(t *testing.T) {
	ts := time.Unix(1700000000, 0)
	r := newTestRouter(New(seeded("a"), WithStats(fakeStats{count: 1, ts: &ts})))
	etag := do(r, http.MethodGet, "/errors", "").Header().Get("ETag")

	tests := []struct {
		name string
		inm  string
		want int
	}{
		{"list containing tag", `W/"stale", ` + etag + ` , W/"other"`, http.StatusNotModified},
		{"strong form of tag", strings.TrimPrefix(etag, "W/"), http.StatusNotModified},
		{"wildcard", "*", http.StatusNotModified},
		{"list without tag", `W/"stale", W/"other"`, http.StatusOK},
		{"empty entries", " , ,", http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(r, http.MethodGet, "/errors", "", "If-None-Match", tt.inm)
			if w.Code != tt.want {
				t.Fatalf("If-None-Match %q: status=%d want %d", tt.inm, w.Code, tt.want)
			}
		})
	}
}

func TestListErrors_StoreFailure(t *testing.T) {
	r := newTestRouter(New(&fakeCatalog{failAll: errors.New("db down")}))
	w := do(r, http.MethodGet, "/errors", "")
	if w.Code != http.StatusInternalServerError || decodeErr(t, w).Code != ErrCodeInternal {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
}

func TestTopError(t *testing.T) {
	r := newTestRouter(New(&fakeCatalog{}))
	if w := do(r, http.MethodGet, "/errors/top", ""); w.Code != http.StatusNotFound {
		t.Fatalf("empty: status=%d", w.Code)
	}

	f := seeded("a", "b")
	f.entries[1].Votes = 4
	r = newTestRouter(New(f))
	w := do(r, http.MethodGet, "/errors/top", "")
	var e domain.ErrorEntry
	_ = json.Unmarshal(w.Body.Bytes(), &e)
	if w.Code != http.StatusOK || e.DetailedName != "b" {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
}

func TestErrorByName(t *testing.T) {
	r := newTestRouter(New(seeded("NullReferenceException")))

	if w := do(r, http.MethodGet, "/errors/by-name?name=NullReferenceException", ""); w.Code != http.StatusOK {
		t.Fatalf("found: status=%d", w.Code)
	}
	w := do(r, http.MethodGet, "/errors/by-name?name=%20%20", "")
	if w.Code != http.StatusBadRequest || decodeErr(t, w).Code != ErrCodeBadRequest {
		t.Fatalf("blank: status=%d", w.Code)
	}
	if w := do(r, http.MethodGet, "/errors/by-name?name=Nope", ""); w.Code != http.StatusNotFound {
		t.Fatalf("missing: status=%d", w.Code)
	}
}

func TestSearchErrors(t *testing.T) {
	f := seeded("a")
	r := newTestRouter(New(f))

	w := do(r, http.MethodGet, "/errors/search?q=null+ref&k=3", "")
	if w.Code != http.StatusOK || strings.TrimSpace(w.Body.String()) != "[]" {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	if f.query != "null ref" || f.k != 3 {
		t.Fatalf("service got q=%q k=%d", f.query, f.k)
	}
	if w := do(r, http.MethodGet, "/errors/search", ""); w.Code != http.StatusBadRequest {
		t.Fatalf("empty q: status=%d", w.Code)
	}
}

func TestExportErrorsCSV(t *testing.T) {
	r := newTestRouter(New(seeded("a", "b")))
	w := do(r, http.MethodGet, "/errors/export.csv", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/csv") {
		t.Fatalf("content-type=%q", ct)
	}
	if cd := w.Header().Get("Content-Disposition"); !strings.Contains(cd, "errors.csv") {
		t.Fatalf("content-disposition=%q", cd)
	}
	recs, err := csv.NewReader(strings.NewReader(w.Body.String())).ReadAll()
	if err != nil {
		t.Fatalf("csv: %v", err)
	}
	if len(recs) != 3 {
		t.Fatalf("want header + 2 rows, got %d", len(recs))
	}
}

func TestCreateError_Created(t *testing.T) {
	f := &fakeCatalog{}
	r := newTestRouter(New(f))
	w := do(r, http.MethodPost, "/errors", `{"detailed_name":"IndexOutOfRange","description":"d","votes":2}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	var e domain.ErrorEntry
	_ = json.Unmarshal(w.Body.Bytes(), &e)
	if e.ID == 0 || e.DetailedName != "IndexOutOfRange" || e.Votes != 2 {
		t.Fatalf("unexpected entry: %+v", e)
	}
}

func TestCreateError_Validation(t *testing.T) {
	f := &fakeCatalog{}
	r := newTestRouter(New(f))

	w := do(r, http.MethodPost, "/errors", `{"detailed_name":"   ","link":"not a url"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status=%d", w.Code)
	}
	er := decodeErr(t, w)
	if er.Code != ErrCodeValidation {
		t.Fatalf("code=%q", er.Code)
	}
	if er.Fields["detailed_name"] == "" || er.Fields["link"] == "" {
		t.Fatalf("fields=%v", er.Fields)
	}

	w = do(r, http.MethodPost, "/errors", `{"detailed_name":`)
	if w.Code != http.StatusBadRequest || decodeErr(t, w).Code != ErrCodeBadRequest {
		t.Fatalf("malformed: status=%d", w.Code)
	}
	if len(f.created) != 0 {
		t.Fatalf("service must not be called, got %d calls", len(f.created))
	}
}

func TestCreateError_Duplicate(t *testing.T) {
	r := newTestRouter(New(seeded("Dup")))
	w := do(r, http.MethodPost, "/errors", `{"detailed_name":"Dup"}`)
	if w.Code != http.StatusConflict || decodeErr(t, w).Code != ErrCodeConflict {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
}

func TestCreateError_RecordsIdempotency(t *testing.T) {
	rec := &fakeRecorder{}
	r := newTestRouter(New(&fakeCatalog{}, WithIdempotency(rec)), func(c *gin.Context) {
		c.Set("clientID", "client-1")
		c.Set("idem.key", "k-1")
		c.Set("idem.scope", "POST /errors")
		c.Next()
	})
	w := do(r, http.MethodPost, "/errors", `{"detailed_name":"X"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("status=%d", w.Code)
	}
	if rec.clientID != "client-1" || rec.key != "k-1" || rec.scope != "POST /errors" || rec.resourceID != 1 || rec.status != http.StatusCreated {
		t.Fatalf("recorded %+v", rec)
	}
}

func TestCreateError_RecorderFailureStillCreates(t *testing.T) {
	rec := &fakeRecorder{err: errors.New("locked")}
	r := newTestRouter(New(&fakeCatalog{}, WithIdempotency(rec)), func(c *gin.Context) {
		c.Set("idem.key", "k-1")
		c.Set("idem.scope", "POST /errors")
		c.Next()
	})
	if w := do(r, http.MethodPost, "/errors", `{"detailed_name":"X"}`); w.Code != http.StatusCreated {
		t.Fatalf("status=%d", w.Code)
	}
}

func TestCreateError_Replay(t *testing.T) {
	f := seeded("Original")
	r := newTestRouter(New(f), func(c *gin.Context) {
		c.Set("idem.key", "k-1")
		c.Set("idem.scope", "POST /errors")
		c.Set("idem.resource", uint(1))
		c.Next()
	})
	w := do(r, http.MethodPost, "/errors", `{"detailed_name":"Original"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	if w.Header().Get("Idempotency-Replayed") != "true" {
		t.Fatalf("missing replay header")
	}
	if len(f.created) != 0 {
		t.Fatalf("replay must not create")
	}
}

func TestVoteError(t *testing.T) {
	f := seeded("a")
	r := newTestRouter(New(f))

	if w := do(r, http.MethodPost, "/errors/1/votes", ""); w.Code != http.StatusNoContent {
		t.Fatalf("status=%d", w.Code)
	}
	if f.entries[0].Votes != 1 {
		t.Fatalf("votes=%d", f.entries[0].Votes)
	}
	if w := do(r, http.MethodPost, "/errors/99/votes", ""); w.Code != http.StatusNotFound {
		t.Fatalf("missing: status=%d", w.Code)
	}
	for _, bad := range []string{"0", "-1", "abc", "1.5"} {
		w := do(r, http.MethodPost, "/errors/"+bad+"/votes", "")
		if w.Code != http.StatusBadRequest || decodeErr(t, w).Code != ErrCodeInvalidID {
			t.Fatalf("id %q: status=%d", bad, w.Code)
		}
	}
	if len(f.votes) != 2 {
		t.Fatalf("bad ids must not reach the service: %v", f.votes)
	}
}

func TestDeleteError(t *testing.T) {
	f := seeded("a", "b")
	r := newTestRouter(New(f))

	if w := do(r, http.MethodDelete, "/errors/1", ""); w.Code != http.StatusNoContent {
		t.Fatalf("status=%d", w.Code)
	}
	if len(f.entries) != 1 || f.entries[0].DetailedName != "b" {
		t.Fatalf("entries=%+v", f.entries)
	}
	if w := do(r, http.MethodDelete, "/errors/1", ""); w.Code != http.StatusNotFound {
		t.Fatalf("second delete: status=%d", w.Code)
	}
	if w := do(r, http.MethodDelete, "/errors/x", ""); w.Code != http.StatusBadRequest {
		t.Fatalf("bad id: status=%d", w.Code)
	}
}
