// Package services – CatalogService
//
// This file implements the CatalogService, which owns the business rules of
// the error catalog: vote ranking, detailed-name uniqueness, and not-found /
// conflict detection. Persistence is delegated to an ErrorRepo so the rules
// stay independent of the concrete store.
package services

import (
	"context"
	"errors"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/tbourn/go-error-catalog/internal/domain"
	"github.com/tbourn/go-error-catalog/internal/repo"
	"github.com/tbourn/go-error-catalog/internal/search"
)

// ErrorRepo defines the repository contract required by CatalogService.
//
// Implementations return repo.ErrNotFound for missing rows and
// repo.ErrDuplicate when the store rejects a duplicate detailed name.
type ErrorRepo interface {
	// List returns all entries in ascending ID order.
	List(ctx context.Context) ([]domain.ErrorEntry, error)
	// Count returns the number of entries.
	Count(ctx context.Context) (int64, error)
	// ListPage returns up to limit entries starting at offset.
	ListPage(ctx context.Context, offset, limit int) ([]domain.ErrorEntry, error)
	// GetByID fetches one entry by identifier.
	GetByID(ctx context.Context, id uint) (*domain.ErrorEntry, error)
	// GetByName fetches one entry by exact detailed name.
	GetByName(ctx context.Context, name string) (*domain.ErrorEntry, error)
	// Insert persists e and assigns its ID.
	Insert(ctx context.Context, e *domain.ErrorEntry) error
	// IncrementVotes atomically adds one vote.
	IncrementVotes(ctx context.Context, id uint) error
	// Delete removes an entry permanently.
	Delete(ctx context.Context, id uint) error
}

// NewError is the candidate entry accepted by Create. It has no identifier;
// the store assigns one.
type NewError struct {
	ErrorCategoryID int
	DetailedName    string
	Description     string
	Link            string
	CodeExample     string
	IsUserExample   bool
	Votes           int
	Rating          float64
}

// CatalogService implements the catalog use-cases.
type CatalogService struct {
	// Repo is the entry repository used by this service.
	Repo ErrorRepo

	// MaxSearchResults caps Search results when the caller asks for more
	// (or for k <= 0).
	MaxSearchResults int
	// Stopwords are ignored when tokenizing search queries and entries.
	Stopwords []string
	// MaxIndexedDocs bounds how many entries, in ID order, a search scans.
	// Zero scans all of them.
	MaxIndexedDocs int
	// MinTokens hides entries with fewer distinct terms from search.
	MinTokens int
}

// NewCatalogService constructs a CatalogService with default search limits.
func NewCatalogService(r ErrorRepo) *CatalogService {
	return &CatalogService{
		Repo:             r,
		MaxSearchResults: 10,
		Stopwords:        defaultStopwords,
		MinTokens:        1,
	}
}

// List returns every entry. An empty catalog yields an empty slice and no
// error.
func (s *CatalogService) List(ctx context.Context) ([]domain.ErrorEntry, error) {
	items, err := s.Repo.List(ctx)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []domain.ErrorEntry{}
	}
	return items, nil
}

// ListPage returns a page of entries and the total count. Invalid page or
// pageSize values fall back to 1 and 20. A page past the last one is empty.
func (s *CatalogService) ListPage(ctx context.Context, page, pageSize int) ([]domain.ErrorEntry, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}

	total, err := s.Repo.Count(ctx)
	if err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []domain.ErrorEntry{}, 0, nil
	}
	lastPage := total / int64(pageSize)
	if total%int64(pageSize) != 0 {
		lastPage++
	}
	if int64(page) > lastPage {
		return []domain.ErrorEntry{}, total, nil
	}

	items, err := s.Repo.ListPage(ctx, (page-1)*pageSize, pageSize)
	return items, total, err
}

// Top returns the entry with the most votes. Equal vote counts are resolved
// in favour of the lowest ID. An empty catalog yields ErrErrorNotFound.
func (s *CatalogService) Top(ctx context.Context) (*domain.ErrorEntry, error) {
	items, err := s.Repo.List(ctx)
	if err != nil {
		return nil, err
	}
	top := topEntry(items)
	if top == nil {
		return nil, ErrErrorNotFound
	}
	return top, nil
}

// GetByName returns the entry whose detailed name matches name exactly after
// normalization. A blank name yields ErrEmptyName regardless of catalog
// contents.
func (s *CatalogService) GetByName(ctx context.Context, name string) (*domain.ErrorEntry, error) {
	name = normalizeName(name)
	if name == "" {
		return nil, ErrEmptyName
	}
	e, err := s.Repo.GetByName(ctx, name)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrErrorNotFound
		}
		return nil, err
	}
	return e, nil
}

// GetByID returns a single entry or ErrErrorNotFound.
func (s *CatalogService) GetByID(ctx context.Context, id uint) (*domain.ErrorEntry, error) {
	e, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrErrorNotFound
		}
		return nil, err
	}
	return e, nil
}

// Create persists a new entry and returns it with its assigned ID.
//
// The name is checked for uniqueness before insert; a concurrent insert that
// slips past the check is caught by the store's unique index and reported
// the same way (ErrDuplicateName).
func (s *CatalogService) Create(ctx context.Context, in NewError) (*domain.ErrorEntry, error) {
	name := normalizeName(in.DetailedName)
	if name == "" {
		return nil, ErrEmptyName
	}

	if _, err := s.Repo.GetByName(ctx, name); err == nil {
		conflictsTotal.Inc()
		return nil, ErrDuplicateName
	} else if !errors.Is(err, repo.ErrNotFound) {
		return nil, err
	}

	votes := in.Votes
	if votes < 0 {
		votes = 0
	}
	e := &domain.ErrorEntry{
		ErrorCategoryID: in.ErrorCategoryID,
		DetailedName:    name,
		Description:     strings.TrimSpace(in.Description),
		Link:            strings.TrimSpace(in.Link),
		CodeExample:     in.CodeExample,
		IsUserExample:   in.IsUserExample,
		Votes:           votes,
		Rating:          in.Rating,
	}
	if err := s.Repo.Insert(ctx, e); err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			conflictsTotal.Inc()
			return nil, ErrDuplicateName
		}
		return nil, err
	}
	entriesCreatedTotal.Inc()
	return e, nil
}

// AddVote increments the entry's vote counter by exactly one.
func (s *CatalogService) AddVote(ctx context.Context, id uint) error {
	if err := s.Repo.IncrementVotes(ctx, id); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrErrorNotFound
		}
		return err
	}
	votesTotal.Inc()
	return nil
}

// Delete permanently removes the entry.
func (s *CatalogService) Delete(ctx context.Context, id uint) error {
	if err := s.Repo.Delete(ctx, id); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrErrorNotFound
		}
		return err
	}
	entriesDeletedTotal.Inc()
	return nil
}

// Search ranks entries by token overlap between the query and each entry's
// name and description. It returns at most k entries (capped by
// MaxSearchResults); entries that share no terms with the query are omitted.
func (s *CatalogService) Search(ctx context.Context, query string, k int) ([]domain.ErrorEntry, error) {
	if strings.TrimSpace(query) == "" {
		return nil, ErrEmptyQuery
	}
	limit := s.MaxSearchResults
	if limit <= 0 {
		limit = 10
	}
	if k <= 0 || k > limit {
		k = limit
	}

	items, err := s.Repo.List(ctx)
	if err != nil {
		return nil, err
	}

	byID := make(map[uint]domain.ErrorEntry, len(items))
	docs := make([]search.Document, 0, len(items))
	for _, e := range items {
		byID[e.ID] = e
		docs = append(docs, search.Document{ID: e.ID, Text: e.DetailedName + "\n" + e.Description})
	}
	idx := search.NewIndex(docs,
		search.WithStopwords(s.Stopwords),
		search.WithMaxDocs(s.MaxIndexedDocs),
		search.WithMinTokens(s.MinTokens),
	)

	out := []domain.ErrorEntry{}
	for _, r := range idx.TopK(query, k) {
		out = append(out, byID[r.ID])
	}
	return out, nil
}

// topEntry picks the entry with the highest vote count, preferring the lowest
// ID on ties. It returns nil for an empty slice.
func topEntry(items []domain.ErrorEntry) *domain.ErrorEntry {
	var best *domain.ErrorEntry
	for i := range items {
		e := &items[i]
		if best == nil || e.Votes > best.Votes || (e.Votes == best.Votes && e.ID < best.ID) {
			best = e
		}
	}
	if best == nil {
		return nil
	}
	out := *best
	return &out
}

// normalizeName trims surrounding whitespace and applies Unicode NFC so that
// visually identical names compare equal.
func normalizeName(s string) string {
	return norm.NFC.String(strings.TrimSpace(s))
}

// defaultStopwords keeps search focused on meaningful terms.
var defaultStopwords = []string{
	"a", "an", "and", "are", "as", "at", "be", "by", "for", "from", "in",
	"is", "it", "of", "on", "or", "that", "the", "this", "to", "was", "when",
	"with", "you", "your",
}
