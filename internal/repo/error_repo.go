// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for catalog
// entries (domain.ErrorEntry).
//
// All functions are context-aware and accept a *gorm.DB handle, making them
// safe for use within transactions or connection-scoped operations.
// They follow the "thin repository" approach: no business logic, only CRUD
// persistence and query composition.
//
// Error semantics:
//   - When an entry is not found, functions return ErrNotFound
//     (gorm.ErrRecordNotFound).
//   - A unique-name violation on insert is returned as ErrDuplicate.
//   - Other DB errors are propagated unchanged.
package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/tbourn/go-error-catalog/internal/domain"
)

// ListErrors returns every catalog entry ordered by ascending ID (insertion
// order). It returns an empty slice when the catalog is empty.
func ListErrors(ctx context.Context, db *gorm.DB) ([]domain.ErrorEntry, error) {
	out := []domain.ErrorEntry{}
	err := db.WithContext(ctx).
		Order("id asc").
		Find(&out).Error
	return out, err
}

// CountErrors returns the total number of catalog entries.
func CountErrors(ctx context.Context, db *gorm.DB) (int64, error) {
	var total int64
	err := db.WithContext(ctx).
		Model(&domain.ErrorEntry{}).
		Count(&total).Error
	return total, err
}

// ListErrorsPage returns a slice of entries ordered by ascending ID.
// The caller computes offset and limit (e.g., (page-1)*pageSize).
func ListErrorsPage(ctx context.Context, db *gorm.DB, offset, limit int) ([]domain.ErrorEntry, error) {
	out := []domain.ErrorEntry{}
	err := db.WithContext(ctx).
		Order("id asc").
		Offset(offset).
		Limit(limit).
		Find(&out).Error
	return out, err
}

// GetErrorByID fetches a single entry by primary key, or ErrNotFound.
func GetErrorByID(ctx context.Context, db *gorm.DB, id uint) (*domain.ErrorEntry, error) {
	var e domain.ErrorEntry
	if err := db.WithContext(ctx).Where("id = ?", id).First(&e).Error; err != nil {
		return nil, err
	}
	return &e, nil
}

// GetErrorByName fetches the entry whose detailed name equals name exactly,
// or ErrNotFound.
func GetErrorByName(ctx context.Context, db *gorm.DB, name string) (*domain.ErrorEntry, error) {
	var e domain.ErrorEntry
	if err := db.WithContext(ctx).Where("detailed_name = ?", name).First(&e).Error; err != nil {
		return nil, err
	}
	return &e, nil
}

// CreateError inserts e and fills in its generated ID and timestamps.
// A detailed-name collision yields ErrDuplicate.
func CreateError(ctx context.Context, db *gorm.DB, e *domain.ErrorEntry) error {
	if err := db.WithContext(ctx).Create(e).Error; err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return err
	}
	return nil
}

// IncrementVotes adds one vote to the entry in a single UPDATE statement so
// concurrent votes are never lost. Returns ErrNotFound when no row matched.
func IncrementVotes(ctx context.Context, db *gorm.DB, id uint) error {
	res := db.WithContext(ctx).
		Model(&domain.ErrorEntry{}).
		Where("id = ?", id).
		Update("votes", gorm.Expr("votes + ?", 1))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteError permanently removes the entry. Returns ErrNotFound when no row
// matched.
func DeleteError(ctx context.Context, db *gorm.DB, id uint) error {
	res := db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&domain.ErrorEntry{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// ErrorStore binds the free functions above to a database handle. It
// satisfies services.ErrorRepo.
type ErrorStore struct {
	DB *gorm.DB
}

// NewErrorStore returns an ErrorStore using db.
func NewErrorStore(db *gorm.DB) *ErrorStore { return &ErrorStore{DB: db} }

// List proxies ListErrors.
func (s *ErrorStore) List(ctx context.Context) ([]domain.ErrorEntry, error) {
	return ListErrors(ctx, s.DB)
}

// Count proxies CountErrors.
func (s *ErrorStore) Count(ctx context.Context) (int64, error) {
	return CountErrors(ctx, s.DB)
}

// ListPage proxies ListErrorsPage.
func (s *ErrorStore) ListPage(ctx context.Context, offset, limit int) ([]domain.ErrorEntry, error) {
	return ListErrorsPage(ctx, s.DB, offset, limit)
}

// GetByID proxies GetErrorByID.
func (s *ErrorStore) GetByID(ctx context.Context, id uint) (*domain.ErrorEntry, error) {
	return GetErrorByID(ctx, s.DB, id)
}

// GetByName proxies GetErrorByName.
func (s *ErrorStore) GetByName(ctx context.Context, name string) (*domain.ErrorEntry, error) {
	return GetErrorByName(ctx, s.DB, name)
}

// Insert proxies CreateError.
func (s *ErrorStore) Insert(ctx context.Context, e *domain.ErrorEntry) error {
	return CreateError(ctx, s.DB, e)
}

// IncrementVotes proxies IncrementVotes.
func (s *ErrorStore) IncrementVotes(ctx context.Context, id uint) error {
	return IncrementVotes(ctx, s.DB, id)
}

// Delete proxies DeleteError.
func (s *ErrorStore) Delete(ctx context.Context, id uint) error {
	return DeleteError(ctx, s.DB, id)
}
