// Package export encodes catalog entries as CSV for the /errors/export.csv
// endpoint and the `catalog export` command, and decodes the same format back
// for seeding.
package export

import (
	"io"
	"time"

	"github.com/gocarina/gocsv"

	"github.com/tbourn/go-error-catalog/internal/domain"
)

// Row is the CSV representation of one catalog entry. Column order follows
// field order.
type Row struct {
	ID              uint    `csv:"id"`
	ErrorCategoryID int     `csv:"error_category_id"`
	DetailedName    string  `csv:"detailed_name"`
	Description     string  `csv:"description"`
	Link            string  `csv:"link"`
	CodeExample     string  `csv:"code_example"`
	IsUserExample   bool    `csv:"is_user_example"`
	Votes           int     `csv:"votes"`
	Rating          float64 `csv:"rating"`
	CreatedAt       string  `csv:"created_at"`
}

// ToRows converts entries to CSV rows.
func ToRows(entries []domain.ErrorEntry) []*Row {
	rows := make([]*Row, 0, len(entries))
	for _, e := range entries {
		var created string
		if !e.CreatedAt.IsZero() {
			created = e.CreatedAt.UTC().Format(time.RFC3339)
		}
		rows = append(rows, &Row{
			ID:              e.ID,
			ErrorCategoryID: e.ErrorCategoryID,
			DetailedName:    e.DetailedName,
			Description:     e.Description,
			Link:            e.Link,
			CodeExample:     e.CodeExample,
			IsUserExample:   e.IsUserExample,
			Votes:           e.Votes,
			Rating:          e.Rating,
			CreatedAt:       created,
		})
	}
	return rows
}

// WriteCSV writes entries with a header row. An empty slice still produces
// the header.
func WriteCSV(w io.Writer, entries []domain.ErrorEntry) error {
	return gocsv.Marshal(ToRows(entries), w)
}

// ReadCSV decodes rows previously written by WriteCSV.
func ReadCSV(r io.Reader) ([]*Row, error) {
	var rows []*Row
	if err := gocsv.Unmarshal(r, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}
