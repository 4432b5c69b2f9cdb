// Catalog HTTP handlers.
//
// This file exposes REST endpoints for error entries:
//   - GET    /errors              (list, optional paging, ETag support)
//   - GET    /errors/top          (most voted)
//   - GET    /errors/by-name      (exact name lookup)
//   - GET    /errors/search       (similarity search)
//   - GET    /errors/export.csv   (CSV download)
//   - POST   /errors              (create, Idempotency-Key aware)
//   - POST   /errors/{id}/votes   (add one vote)
//   - DELETE /errors/{id}         (delete)
//
// Handlers are transport-thin: they bind input, call the CatalogService and
// translate its error kinds into HTTP statuses via failErr.
package handlers

import (
	"bytes"
	"context"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-error-catalog/internal/domain"
	"github.com/tbourn/go-error-catalog/internal/export"
	"github.com/tbourn/go-error-catalog/internal/http/middleware"
	"github.com/tbourn/go-error-catalog/internal/services"
	"github.com/tbourn/go-error-catalog/internal/utils"
)

//
// Service contracts (context-aware)
//

// CatalogService defines the catalog operations consumed by HTTP handlers.
//
// Implementations should be safe for concurrent use and must honor the
// provided context for cancellation and timeouts.
type CatalogService interface {
	List(ctx context.Context) ([]domain.ErrorEntry, error)
	ListPage(ctx context.Context, page, pageSize int) ([]domain.ErrorEntry, int64, error)
	Top(ctx context.Context) (*domain.ErrorEntry, error)
	GetByID(ctx context.Context, id uint) (*domain.ErrorEntry, error)
	GetByName(ctx context.Context, name string) (*domain.ErrorEntry, error)
	Create(ctx context.Context, in services.NewError) (*domain.ErrorEntry, error)
	AddVote(ctx context.Context, id uint) error
	Delete(ctx context.Context, id uint) error
	Search(ctx context.Context, query string, k int) ([]domain.ErrorEntry, error)
}

// IdempotencyRecorder stores the outcome of a successful create so a retry
// with the same Idempotency-Key can be replayed.
type IdempotencyRecorder interface {
	Remember(ctx context.Context, clientID, scope, key string, resourceID uint, status int) error
}

// StatsProvider reports the aggregate used to build the list ETag.
type StatsProvider interface {
	ErrorsStats(ctx context.Context) (count int64, maxUpdatedAt *time.Time, err error)
}

//
// Handler wiring
//

// Handlers groups the catalog HTTP endpoints.
type Handlers struct {
	svc   CatalogService
	idem  IdempotencyRecorder
	stats StatsProvider
}

// Option customizes Handlers.
type Option func(*Handlers)

// WithIdempotency enables recording of Idempotency-Key outcomes.
func WithIdempotency(r IdempotencyRecorder) Option {
	return func(h *Handlers) { h.idem = r }
}

// WithStats enables weak ETags on the list endpoint.
func WithStats(s StatsProvider) Option {
	return func(h *Handlers) { h.stats = s }
}

// New constructs Handlers bound to svc.
func New(svc CatalogService, opts ...Option) *Handlers {
	registerValidators()
	h := &Handlers{svc: svc}
	for _, o := range opts {
		o(h)
	}
	return h
}

//
// DTOs
//

// CreateErrorRequest is the JSON payload for creating an entry.
type CreateErrorRequest struct {
	ErrorCategoryID int     `json:"error_category_id" binding:"gte=0" example:"1"`
	DetailedName    string  `json:"detailed_name" binding:"notblank,max=255" example:"NullReferenceException"`
	Description     string  `json:"description" binding:"max=10000" example:"Object reference not set to an instance of an object."`
	Link            string  `json:"link" binding:"omitempty,url,max=2048" example:"https://learn.microsoft.com/dotnet/api/system.nullreferenceexception"`
	CodeExample     string  `json:"code_example" binding:"max=10000" example:"string s = null; s.Length;"`
	IsUserExample   bool    `json:"is_user_example" example:"false"`
	Votes           int     `json:"votes" example:"0"`
	Rating          float64 `json:"rating" example:"4.5"`
}

func (r CreateErrorRequest) toNewError() services.NewError {
	return services.NewError{
		ErrorCategoryID: r.ErrorCategoryID,
		DetailedName:    r.DetailedName,
		Description:     r.Description,
		Link:            r.Link,
		CodeExample:     r.CodeExample,
		IsUserExample:   r.IsUserExample,
		Votes:           r.Votes,
		Rating:          r.Rating,
	}
}

//
// Helpers
//

const (
	defaultPageSize = 20
	maxPageSize     = 100
	maxPage         = math.MaxInt32 / maxPageSize
)

// pageParams reports whether paging was requested and the bounded values.
func pageParams(c *gin.Context) (page, pageSize int, paged bool) {
	ps, hasPage := c.GetQuery("page")
	pss, hasSize := c.GetQuery("page_size")
	if !hasPage && !hasSize {
		return 0, 0, false
	}
	page = utils.Clamp(utils.AtoiDefault(ps, 1), 1, maxPage)
	pageSize = utils.Clamp(utils.AtoiDefault(pss, defaultPageSize), 1, maxPageSize)
	return page, pageSize, true
}

// etagMatches applies the weak comparison of If-None-Match: the header may
// list several tags separated by commas, or be "*".
func etagMatches(header, etag string) bool {
	want := strings.TrimPrefix(etag, "W/")
	for _, tag := range strings.Split(header, ",") {
		tag = strings.TrimSpace(tag)
		if tag == "*" || (tag != "" && strings.TrimPrefix(tag, "W/") == want) {
			return true
		}
	}
	return false
}

func pathID(c *gin.Context) (uint, bool) {
	id, err := utils.ParseID(c.Param("id"))
	if err != nil {
		fail(c, http.StatusBadRequest, ErrCodeInvalidID, "id must be a positive integer")
		return 0, false
	}
	return id, true
}

//
// Handlers
//

// ListErrors godoc
// @ID          listErrors
// @Summary     List error entries
// @Description Returns all entries ordered by id. Passing page or page_size switches to paged output with X-Total-Count. Supports weak ETag via If-None-Match and may return 304.
// @Tags        Errors
// @Produce     json
//
// @Param       If-None-Match  header  string  false "Return 304 if ETag matches"  example(W/\"errors:3:1700000000\")
// @Param       page           query   int     false "Page number"                 minimum(1)
// @Param       page_size      query   int     false "Items per page"              minimum(1) maximum(100)
//
// @Success     200  {array}  domain.ErrorEntry
// @Header      200  {string} ETag           "Weak ETag for current catalog state"
// @Header      200  {integer} X-Total-Count "Total entries (paged requests only)"
// @Success     304  {string} string "Not Modified"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /errors [get]
func (h *Handlers) ListErrors(c *gin.Context) {
	ctx := c.Request.Context()

	// ETag pre-check (best effort).
	if h.stats != nil {
		if count, maxTS, err := h.stats.ErrorsStats(ctx); err == nil {
			var ts int64
			if maxTS != nil {
				ts = maxTS.UnixNano()
			}
			etag := fmt.Sprintf(`W/"errors:%d:%d"`, count, ts)
			c.Header("ETag", etag)
			if inm := c.GetHeader("If-None-Match"); inm != "" && etagMatches(inm, etag) {
				c.Status(http.StatusNotModified)
				return
			}
		}
	}

	if page, pageSize, paged := pageParams(c); paged {
		items, total, err := h.svc.ListPage(ctx, page, pageSize)
		if err != nil {
			failErr(c, err)
			return
		}
		c.Header("X-Total-Count", strconv.FormatInt(total, 10))
		ok(c, http.StatusOK, items)
		return
	}

	items, err := h.svc.List(ctx)
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusOK, items)
}

// TopError godoc
// @ID          topError
// @Summary     Most voted entry
// @Description Returns the entry with the highest vote count; ties go to the lowest id.
// @Tags        Errors
// @Produce     json
// @Success     200  {object} domain.ErrorEntry
// @Failure     404  {object} handlers.ErrorResponse "Catalog is empty"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /errors/top [get]
func (h *Handlers) TopError(c *gin.Context) {
	e, err := h.svc.Top(c.Request.Context())
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusOK, e)
}

// ErrorByName godoc
// @ID          errorByName
// @Summary     Find an entry by name
// @Tags        Errors
// @Produce     json
// @Param       name  query  string  true  "Exact detailed name"  example(NullReferenceException)
// @Success     200  {object} domain.ErrorEntry
// @Failure     400  {object} handlers.ErrorResponse "Name missing"
// @Failure     404  {object} handlers.ErrorResponse "No such entry"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /errors/by-name [get]
func (h *Handlers) ErrorByName(c *gin.Context) {
	e, err := h.svc.GetByName(c.Request.Context(), c.Query("name"))
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusOK, e)
}

// SearchErrors godoc
// @ID          searchErrors
// @Summary     Search entries
// @Description Ranks entries by token overlap between the query and each entry's name and description.
// @Tags        Errors
// @Produce     json
// @Param       q  query  string  true   "Free-text query"       example(null reference)
// @Param       k  query  int     false  "Maximum results"       minimum(1)
// @Success     200  {array}  domain.ErrorEntry
// @Failure     400  {object} handlers.ErrorResponse "Query missing"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /errors/search [get]
func (h *Handlers) SearchErrors(c *gin.Context) {
	k := utils.AtoiDefault(c.Query("k"), 0)
	items, err := h.svc.Search(c.Request.Context(), c.Query("q"), k)
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusOK, items)
}

// ExportErrorsCSV godoc
// @ID          exportErrorsCSV
// @Summary     Export the catalog as CSV
// @Tags        Errors
// @Produce     text/csv
// @Success     200  {string} string "CSV document"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /errors/export.csv [get]
func (h *Handlers) ExportErrorsCSV(c *gin.Context) {
	items, err := h.svc.List(c.Request.Context())
	if err != nil {
		failErr(c, err)
		return
	}
	var buf bytes.Buffer
	if err := export.WriteCSV(&buf, items); err != nil {
		_ = c.Error(err)
		fail(c, http.StatusInternalServerError, ErrCodeExportFailed, "could not encode catalog")
		return
	}
	c.Header("Content-Disposition", `attachment; filename="errors.csv"`)
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

// CreateError godoc
// @ID          createError
// @Summary     Create an entry
// @Description Adds a new entry. Detailed names are unique. Supports idempotency via the Idempotency-Key header (same key → same entry, Idempotency-Replayed: true).
// @Tags        Errors
// @Accept      json
// @Produce     json
//
// @Param       Idempotency-Key  header  string  false "Idempotency key for safe retries (UUID recommended)"  example(7a8d9f4c-1b2a-4c3d-8e9f-0123456789ab)
// @Param       X-Client-ID      header  string  false "Client identifier scoping idempotency keys"           example(web-42)
// @Param       body             body    handlers.CreateErrorRequest  true  "Entry payload"
//
// @Success     201  {object} domain.ErrorEntry
// @Header      201  {string} Idempotency-Replayed "true when served from a previous request"
// @Failure     400  {object} handlers.ErrorResponse "Invalid body"
// @Failure     409  {object} handlers.ErrorResponse "Duplicate detailed name"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /errors [post]
func (h *Handlers) CreateError(c *gin.Context) {
	ctx := c.Request.Context()

	// Replay path: the validator already found a prior result.
	if id, found := middleware.ReplayedResource(c); found {
		if prev, err := h.svc.GetByID(ctx, id); err == nil {
			c.Header(middleware.HeaderIdempotencyReplayed, "true")
			ok(c, http.StatusCreated, prev)
			return
		}
	}

	var req CreateErrorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		if fields, isValidation := fieldErrors(err); isValidation {
			failWith(c, http.StatusBadRequest, ErrorResponse{
				Code:    ErrCodeValidation,
				Message: "request validation failed",
				Fields:  fields,
			})
			return
		}
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}

	e, err := h.svc.Create(ctx, req.toNewError())
	if err != nil {
		failErr(c, err)
		return
	}

	// Store path (best effort).
	if key, scope, has := middleware.IdempotencyFrom(c); has && h.idem != nil {
		if err := h.idem.Remember(ctx, middleware.ClientIDFrom(c), scope, key, e.ID, http.StatusCreated); err != nil {
			middleware.LoggerFrom(c).Warn().Err(err).Str("idempotency_key", key).Msg("idempotency record not stored")
		}
	}
	ok(c, http.StatusCreated, e)
}

// VoteError godoc
// @ID          voteError
// @Summary     Up-vote an entry
// @Tags        Errors
// @Param       id  path  int  true  "Entry ID"  minimum(1)
// @Success     204  {string} string "No Content"
// @Failure     400  {object} handlers.ErrorResponse "Bad id"
// @Failure     404  {object} handlers.ErrorResponse "No such entry"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /errors/{id}/votes [post]
func (h *Handlers) VoteError(c *gin.Context) {
	id, valid := pathID(c)
	if !valid {
		return
	}
	if err := h.svc.AddVote(c.Request.Context(), id); err != nil {
		failErr(c, err)
		return
	}
	noContent(c)
}

// DeleteError godoc
// @ID          deleteError
// @Summary     Delete an entry
// @Tags        Errors
// @Param       id  path  int  true  "Entry ID"  minimum(1)
// @Success     204  {string} string "No Content"
// @Failure     400  {object} handlers.ErrorResponse "Bad id"
// @Failure     404  {object} handlers.ErrorResponse "No such entry"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /errors/{id} [delete]
func (h *Handlers) DeleteError(c *gin.Context) {
	id, valid := pathID(c)
	if !valid {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), id); err != nil {
		failErr(c, err)
		return
	}
	noContent(c)
}
