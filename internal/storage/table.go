package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"slices"
	"strings"
	"time"

	"github.com/dmitrijs2005/daybook/internal/common"
	"github.com/dmitrijs2005/daybook/internal/dbx"
)

// Index declares a secondary, non-unique index column. Value extracts the
// column value from a record on every write.
type Index[T any] struct {
	Column string
	Value  func(T) any
}

// Collection declares a named persistent collection: the SQL table holding
// it, the unique key column and extractor, and its secondary indexes. The
// table itself is created by a schema migration; the record is stored as a
// JSON document in the "doc" column.
type Collection[T any] struct {
	Name      string
	KeyColumn string
	Key       func(T) string
	Indexes   []Index[T]
}

// Range selects index values for Table.ByIndex.
type Range struct {
	only         bool
	lower, upper any
}

// Only matches records whose index value equals v.
func Only(v any) Range { return Range{only: true, lower: v} }

// Between matches lower <= value < upper. A nil bound is open.
func Between(lower, upper any) Range { return Range{lower: lower, upper: upper} }

var identRe = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

// Table is a Collection bound to a database handle. Every method is a
// single statement and therefore its own transaction unless the table is
// bound to a *sql.Tx via WithTx.
type Table[T any] struct {
	db  dbx.DBTX
	c   Collection[T]
	obs Observer

	upsertSQL string
	getSQL    string
	allSQL    string
	deleteSQL string
	countSQL  string
}

// NewTable binds c to db. It panics if c names an invalid SQL identifier,
// since collections are declared in code.
func NewTable[T any](db dbx.DBTX, c Collection[T], obs Observer) *Table[T] {
	if obs == nil {
		obs = NopObserver{}
	}
	cols := []string{c.KeyColumn}
	for _, idx := range c.Indexes {
		cols = append(cols, idx.Column)
	}
	for _, id := range append([]string{c.Name}, cols...) {
		if !identRe.MatchString(id) {
			panic(fmt.Sprintf("storage: invalid identifier %q in collection %q", id, c.Name))
		}
	}
	cols = append(cols, "doc")

	updates := make([]string, 0, len(cols)-1)
	for _, col := range cols[1:] {
		updates = append(updates, fmt.Sprintf("%s = excluded.%s", col, col))
	}

	return &Table[T]{
		db:  db,
		c:   c,
		obs: obs,
		upsertSQL: fmt.Sprintf(`INSERT INTO %s (%s) VALUES (%s) ON CONFLICT(%s) DO UPDATE SET %s`,
			c.Name, strings.Join(cols, ", "), placeholders(len(cols)), c.KeyColumn, strings.Join(updates, ", ")),
		getSQL:    fmt.Sprintf(`SELECT doc FROM %s WHERE %s = ?`, c.Name, c.KeyColumn),
		allSQL:    fmt.Sprintf(`SELECT doc FROM %s`, c.Name),
		deleteSQL: fmt.Sprintf(`DELETE FROM %s WHERE %s = ?`, c.Name, c.KeyColumn),
		countSQL:  fmt.Sprintf(`SELECT COUNT(*) FROM %s`, c.Name),
	}
}

// WithTx returns the same collection bound to tx.
func (t *Table[T]) WithTx(tx dbx.DBTX) *Table[T] {
	cp := *t
	cp.db = tx
	return &cp
}

// Name returns the collection name.
func (t *Table[T]) Name() string { return t.c.Name }

// Get returns the record stored under key. A missing record is reported as
// ok == false with a nil error.
func (t *Table[T]) Get(ctx context.Context, key string) (rec T, ok bool, err error) {
	defer t.observe(OpGet, time.Now(), &err)

	var doc []byte
	err = t.db.QueryRowContext(ctx, t.getSQL, key).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return rec, false, nil
	}
	if err != nil {
		return rec, false, fmt.Errorf("%w: get %s[%s]: %w", common.ErrStorageUnavailable, t.c.Name, key, err)
	}
	if err := json.Unmarshal(doc, &rec); err != nil {
		return rec, false, fmt.Errorf("%w: decode %s[%s]: %w", common.ErrStorageUnavailable, t.c.Name, key, err)
	}
	return rec, true, nil
}

// GetAll returns every record in unspecified order. An empty collection
// yields an empty, non-nil slice.
func (t *Table[T]) GetAll(ctx context.Context) (recs []T, err error) {
	defer t.observe(OpGetAll, time.Now(), &err)
	return t.query(ctx, t.allSQL)
}

// ByIndex returns the records whose index column falls in r, ordered by
// that column ascending.
func (t *Table[T]) ByIndex(ctx context.Context, column string, r Range) (recs []T, err error) {
	defer t.observe(OpQuery, time.Now(), &err)

	if !slices.ContainsFunc(t.c.Indexes, func(idx Index[T]) bool { return idx.Column == column }) {
		return nil, fmt.Errorf("storage: %s has no index on %q", t.c.Name, column)
	}

	var (
		conds []string
		args  []any
	)
	switch {
	case r.only:
		conds, args = append(conds, column+" = ?"), append(args, r.lower)
	default:
		if r.lower != nil {
			conds, args = append(conds, column+" >= ?"), append(args, r.lower)
		}
		if r.upper != nil {
			conds, args = append(conds, column+" < ?"), append(args, r.upper)
		}
	}

	q := t.allSQL
	if len(conds) > 0 {
		q += " WHERE " + strings.Join(conds, " AND ")
	}
	q += " ORDER BY " + column
	return t.query(ctx, q, args...)
}

func (t *Table[T]) query(ctx context.Context, q string, args ...any) ([]T, error) {
	rows, err := t.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: select %s: %w", common.ErrStorageUnavailable, t.c.Name, err)
	}
	defer rows.Close()

	result := make([]T, 0)
	for rows.Next() {
		var doc []byte
		if err := rows.Scan(&doc); err != nil {
			return nil, fmt.Errorf("%w: scan %s: %w", common.ErrStorageUnavailable, t.c.Name, err)
		}
		var rec T
		if err := json.Unmarshal(doc, &rec); err != nil {
			return nil, fmt.Errorf("%w: decode %s: %w", common.ErrStorageUnavailable, t.c.Name, err)
		}
		result = append(result, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterate %s: %w", common.ErrStorageUnavailable, t.c.Name, err)
	}
	return result, nil
}

// Put inserts rec or replaces the record with the same key. Once issued the
// write is not cancelled by ctx.
func (t *Table[T]) Put(ctx context.Context, rec T) (err error) {
	defer t.observe(OpPut, time.Now(), &err)

	key := t.c.Key(rec)
	doc, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("%w: encode %s[%s]: %w", common.ErrWriteFailed, t.c.Name, key, err)
	}

	args := make([]any, 0, len(t.c.Indexes)+2)
	args = append(args, key)
	for _, idx := range t.c.Indexes {
		args = append(args, idx.Value(rec))
	}
	args = append(args, string(doc))

	if _, err := t.db.ExecContext(context.WithoutCancel(ctx), t.upsertSQL, args...); err != nil {
		return fmt.Errorf("%w: put %s[%s]: %w", common.ErrWriteFailed, t.c.Name, key, err)
	}
	return nil
}

// PutAll writes recs in order through the bound handle. Bind the table to a
// transaction with WithTx to make the batch atomic.
func (t *Table[T]) PutAll(ctx context.Context, recs []T) error {
	for _, rec := range recs {
		if err := t.Put(ctx, rec); err != nil {
			return err
		}
	}
	return nil
}

// Delete removes the record under key. Deleting a missing key is a no-op.
func (t *Table[T]) Delete(ctx context.Context, key string) (err error) {
	defer t.observe(OpDelete, time.Now(), &err)

	if _, err := t.db.ExecContext(context.WithoutCancel(ctx), t.deleteSQL, key); err != nil {
		return fmt.Errorf("%w: delete %s[%s]: %w", common.ErrWriteFailed, t.c.Name, key, err)
	}
	return nil
}

// Count returns the number of records.
func (t *Table[T]) Count(ctx context.Context) (n int, err error) {
	defer t.observe(OpCount, time.Now(), &err)

	if err := t.db.QueryRowContext(ctx, t.countSQL).Scan(&n); err != nil {
		return 0, fmt.Errorf("%w: count %s: %w", common.ErrStorageUnavailable, t.c.Name, err)
	}
	return n, nil
}

func (t *Table[T]) observe(op string, start time.Time, err *error) {
	t.obs.ObserveOp(t.c.Name, op, time.Since(start), *err)
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}
