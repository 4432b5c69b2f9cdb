// Package seed loads initial catalog entries from YAML and inserts them
// through the catalog service. Seeding is an explicit step: it runs from the
// `catalog seed` command or once at server start when SEED_ON_START is set.
package seed

import (
	"bytes"
	"context"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"

	"github.com/tbourn/go-error-catalog/internal/domain"
	"github.com/tbourn/go-error-catalog/internal/export"
	"github.com/tbourn/go-error-catalog/internal/observability"
	"github.com/tbourn/go-error-catalog/internal/services"
)

//go:embed data.yaml
var defaultData []byte

// Entry is one seed record as written in YAML.
type Entry struct {
	Category      int     `yaml:"category"`
	Name          string  `yaml:"name"`
	Description   string  `yaml:"description"`
	Link          string  `yaml:"link"`
	Code          string  `yaml:"code"`
	IsUserExample bool    `yaml:"user_example"`
	Votes         int     `yaml:"votes"`
	Rating        float64 `yaml:"rating"`
}

type file struct {
	Entries []Entry `yaml:"entries"`
}

// Creator is the subset of CatalogService used for seeding.
type Creator interface {
	Create(ctx context.Context, in services.NewError) (*domain.ErrorEntry, error)
}

// Load decodes seed entries from r. Unknown fields are rejected so typos in
// hand-edited files surface early.
func Load(r io.Reader) ([]Entry, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var f file
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("decode seed: %w", err)
	}
	return f.Entries, nil
}

// LoadCSV decodes entries from the CSV format written by the export
// package. IDs in the file are ignored.
func LoadCSV(r io.Reader) ([]Entry, error) {
	rows, err := export.ReadCSV(r)
	if err != nil {
		return nil, fmt.Errorf("decode seed csv: %w", err)
	}
	out := make([]Entry, 0, len(rows))
	for _, row := range rows {
		out = append(out, Entry{
			Category:      row.ErrorCategoryID,
			Name:          row.DetailedName,
			Description:   row.Description,
			Link:          row.Link,
			Code:          row.CodeExample,
			IsUserExample: row.IsUserExample,
			Votes:         row.Votes,
			Rating:        row.Rating,
		})
	}
	return out, nil
}

// LoadFile reads seed entries from path. Files ending in .csv are decoded as
// CSV exports, anything else as YAML.
func LoadFile(path string) ([]Entry, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer fh.Close()
	if strings.EqualFold(filepath.Ext(path), ".csv") {
		return LoadCSV(fh)
	}
	return Load(fh)
}

// Default returns the embedded seed data set.
func Default() ([]Entry, error) {
	return Load(bytes.NewReader(defaultData))
}

// Resolve returns the entries at path, or the embedded set when path is empty.
func Resolve(path string) ([]Entry, error) {
	if path == "" {
		return Default()
	}
	return LoadFile(path)
}

// Run inserts every entry whose name is not yet in the catalog and returns
// how many were created. Existing names are skipped, so Run is safe to call
// on every start.
func Run(ctx context.Context, c Creator, entries []Entry) (int, error) {
	ctx, span := observability.Tracer().Start(ctx, "seed.Run")
	defer span.End()

	created := 0
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return created, err
		}
		_, err := c.Create(ctx, services.NewError{
			ErrorCategoryID: e.Category,
			DetailedName:    e.Name,
			Description:     e.Description,
			Link:            e.Link,
			CodeExample:     e.Code,
			IsUserExample:   e.IsUserExample,
			Votes:           e.Votes,
			Rating:          e.Rating,
		})
		switch services.KindOf(err) {
		case services.KindOK:
			created++
		case services.KindConflict:
			log.Debug().Str("name", e.Name).Msg("seed entry exists, skipping")
		case services.KindInvalid:
			log.Warn().Err(err).Str("name", e.Name).Msg("invalid seed entry, skipping")
		default:
			return created, fmt.Errorf("seed %q: %w", e.Name, err)
		}
	}
	log.Info().Int("created", created).Int("total", len(entries)).Msg("seed complete")
	return created, nil
}
