// Package snapshot exports the entry collection as a portable JSON document
// and imports such documents back as one all-or-nothing transaction.
//
// The format is a JSON array of entry objects using the field names of
// models.Entry. Import is additive: records overwrite entries with the same
// id and everything else is left untouched.
package snapshot

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/dmitrijs2005/daybook/internal/common"
	"github.com/dmitrijs2005/daybook/internal/dbx"
	"github.com/dmitrijs2005/daybook/internal/logging"
	"github.com/dmitrijs2005/daybook/internal/models"
	"github.com/dmitrijs2005/daybook/internal/repositories/entries"
)

// Counter is incremented by the number of records applied by each import.
// prometheus.Counter satisfies it.
type Counter interface {
	Add(float64)
}

type Codec struct {
	db       dbx.TxBeginner
	entries  entries.Repository
	log      logging.Logger
	imported Counter
}

type Option func(*Codec)

func WithLogger(l logging.Logger) Option {
	return func(c *Codec) { c.log = l }
}

// WithImportCounter counts applied records.
func WithImportCounter(ctr Counter) Option {
	return func(c *Codec) { c.imported = ctr }
}

// New returns a Codec reading through repo and importing inside
// transactions started on db.
func New(db dbx.TxBeginner, repo entries.Repository, opts ...Option) *Codec {
	c := &Codec{db: db, entries: repo, log: logging.Nop()}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Export returns every entry as an indented JSON array.
func (c *Codec) Export(ctx context.Context) ([]byte, error) {
	all, err := c.entries.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	data, err := json.MarshalIndent(all, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}
	c.log.Info(ctx, "snapshot exported", "records", len(all))
	return data, nil
}

// ExportTo writes Export's output followed by a newline to w.
func (c *Codec) ExportTo(ctx context.Context, w io.Writer) error {
	data, err := c.Export(ctx)
	if err != nil {
		return err
	}
	if _, err := w.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	return nil
}

// Import decodes data and upserts every record in a single transaction.
// Malformed payloads fail with common.ErrInvalidFormat before anything is
// written; a failed transaction fails with common.ErrWriteFailed and leaves
// the collection unchanged. It returns the number of distinct entries
// written; when ids repeat, the last record with that id wins.
func (c *Codec) Import(ctx context.Context, data []byte) (int, error) {
	recs, err := Decode(data)
	if err != nil {
		return 0, err
	}
	if len(recs) == 0 {
		return 0, nil
	}

	err = dbx.WithTx(ctx, c.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		return c.entries.WithTx(tx).SaveAll(ctx, recs)
	})
	if err != nil {
		c.log.Error(ctx, "snapshot import rolled back", "records", len(recs), "error", err)
		if errors.Is(err, common.ErrWriteFailed) {
			return 0, err
		}
		return 0, fmt.Errorf("%w: import: %w", common.ErrWriteFailed, err)
	}

	n := distinctIDs(recs)
	if c.imported != nil {
		c.imported.Add(float64(n))
	}
	c.log.Info(ctx, "snapshot imported", "records", len(recs), "entries", n)
	return n, nil
}

// ImportFrom reads r to the end and imports it.
func (c *Codec) ImportFrom(ctx context.Context, r io.Reader) (int, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return 0, fmt.Errorf("read snapshot: %w", err)
	}
	return c.Import(ctx, data)
}

// Decode parses a snapshot. The top level must be a JSON array whose
// elements are objects carrying a non-empty string "id" and a numeric
// "date". Unknown fields are ignored.
func Decode(data []byte) ([]models.Entry, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, fmt.Errorf("%w: snapshot must be a JSON array", common.ErrInvalidFormat)
	}

	var raw []json.RawMessage
	if err := json.Unmarshal(trimmed, &raw); err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrInvalidFormat, err)
	}

	recs := make([]models.Entry, 0, len(raw))
	for i, r := range raw {
		if err := checkRequired(r); err != nil {
			return nil, fmt.Errorf("%w: record %d: %w", common.ErrInvalidFormat, i, err)
		}
		var e models.Entry
		if err := json.Unmarshal(r, &e); err != nil {
			return nil, fmt.Errorf("%w: record %d: %w", common.ErrInvalidFormat, i, err)
		}
		if len(e.Tags) > 0 {
			e.Tags = models.NormalizeTags(e.Tags)
		}
		recs = append(recs, e)
	}
	return recs, nil
}

func distinctIDs(recs []models.Entry) int {
	seen := make(map[string]struct{}, len(recs))
	for _, r := range recs {
		seen[r.ID] = struct{}{}
	}
	return len(seen)
}

func checkRequired(r json.RawMessage) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(r, &fields); err != nil {
		return errors.New("not an object")
	}
	if fields == nil {
		return errors.New("not an object")
	}

	var id string
	if err := json.Unmarshal(fields["id"], &id); err != nil || id == "" {
		return errors.New(`missing or empty "id"`)
	}

	var date json.Number
	d := bytes.TrimSpace(fields["date"])
	if len(d) == 0 || d[0] == '"' || json.Unmarshal(d, &date) != nil || date == "" {
		return errors.New(`missing or non-numeric "date"`)
	}
	return nil
}
