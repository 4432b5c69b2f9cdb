// Package domain defines the persistence models for the error catalog. These
// types are mapped with GORM and form the core data layer of the service.
package domain

import "time"

// ErrorEntry is a catalog record describing one documented programming error
// or pitfall. DetailedName is the human-readable key and is unique across the
// catalog (enforced by a unique index as well as by the service layer).
//
// Fields:
//   - ID: auto-increment primary key assigned by the store.
//   - ErrorCategoryID: reference to a category; categories are not managed here.
//   - DetailedName: unique name of the error.
//   - Description / Link / CodeExample: free-form documentation.
//   - IsUserExample: true when the entry was submitted by a user.
//   - Votes: up-vote counter; only ever incremented by one.
//   - Rating: informational score, never mutated by catalog operations.
//   - CreatedAt / UpdatedAt: timestamps managed by GORM.
type ErrorEntry struct {
	ID              uint      `json:"id"                gorm:"primaryKey;autoIncrement"`
	ErrorCategoryID int       `json:"error_category_id" gorm:"not null;default:0;index"`
	DetailedName    string    `json:"detailed_name"     gorm:"type:varchar(255);not null;uniqueIndex:ux_errors_detailed_name"`
	Description     string    `json:"description"       gorm:"type:text"`
	Link            string    `json:"link"              gorm:"type:varchar(2048)"`
	CodeExample     string    `json:"code_example"      gorm:"type:text"`
	IsUserExample   bool      `json:"is_user_example"   gorm:"not null;default:false"`
	Votes           int       `json:"votes"             gorm:"not null;default:0;check:votes >= 0"`
	Rating          float64   `json:"rating"            gorm:"not null;default:0"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// TableName returns the database table name for ErrorEntry.
func (ErrorEntry) TableName() string { return "errors" }
