// Package memory is an in-process storage backend with the conflict
// semantics of the postgres backend.
package memory

import (
	"context"
	"reflect"
	"slices"
	"strings"
	"sync"

	"github.com/shopspring/decimal"
	"github.com/yanun0323/errors"

	"mirage-indexer/internal/model"
	"mirage-indexer/internal/model/enum"
	"mirage-indexer/internal/persist"
	"mirage-indexer/pkg/exception"
)

type tables map[string]map[string]model.Record

func (t tables) clone() tables {
	out := make(tables, len(t))
	for name, rows := range t {
		cp := make(map[string]model.Record, len(rows))
		for k, v := range rows {
			cp[k] = v
		}
		out[name] = cp
	}
	return out
}

func (t tables) table(name string) map[string]model.Record {
	rows, ok := t[name]
	if !ok {
		rows = make(map[string]model.Record)
		t[name] = rows
	}
	return rows
}

// Backend keeps committed rows in memory. A transaction works on a copy
// that replaces the committed state only when it succeeds.
type Backend struct {
	mu      sync.Mutex
	state   tables
	commits int

	failures int
	failErr  error
}

var _ persist.Backend = (*Backend)(nil)

func New() *Backend {
	return &Backend{state: make(tables)}
}

// FailNext makes the next n transactions fail with err.
func (b *Backend) FailNext(n int, err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failures = n
	b.failErr = err
}

func (b *Backend) Transaction(ctx context.Context, fn func(persist.Writer) error) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	if b.failures > 0 {
		b.failures--
		return b.failErr
	}

	w := &writer{state: b.state.clone()}
	if err := fn(w); err != nil {
		return err
	}

	b.state = w.state
	b.commits++
	return nil
}

// Commits returns the number of committed transactions.
func (b *Backend) Commits() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.commits
}

// Count returns the number of rows stored in table.
func (b *Backend) Count(table model.Table) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.state[table.Name])
}

// Rows returns the rows of table T sorted by natural key.
func Rows[T model.Record](b *Backend) []T {
	var zero T
	table := zero.Table()

	b.mu.Lock()
	defer b.mu.Unlock()

	stored := b.state[table.Name]
	keys := make([]string, 0, len(stored))
	for k := range stored {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	out := make([]T, 0, len(keys))
	for _, k := range keys {
		if row, ok := stored[k].(T); ok {
			out = append(out, row)
		}
	}
	return out
}

type writer struct {
	state tables
}

func (w *writer) Insert(table model.Table, rows any) error {
	if !table.Validate() {
		return exception.ErrPersistInvalidTable
	}

	records, err := toRecords(rows)
	if err != nil {
		return err
	}

	stored := w.state.table(table.Name)
	seen := make(map[string]struct{}, len(records))
	for _, r := range records {
		if hasNul(reflect.ValueOf(r)) {
			return errors.Wrap(exception.ErrPersistInvalidText, "insert").With("table", table.Name).With("key", r.Key())
		}

		key := r.Key()
		if _, dup := seen[key]; dup && table.Policy == enum.ConflictReplace {
			return errors.Wrap(exception.ErrPersistDoubleUpdate, "insert").With("table", table.Name).With("key", key)
		}
		seen[key] = struct{}{}

		existing, ok := stored[key]
		switch {
		case !ok:
			stored[key] = r
		case table.Policy == enum.ConflictReplace && existing.Version() <= r.Version():
			stored[key] = r
		}
	}
	return nil
}

func (w *writer) DeleteOpenLimitOrders(ids []decimal.Decimal) error {
	open := w.state.table(model.TableOpenLimitOrders.Name)
	for _, id := range ids {
		delete(open, id.String())
	}
	return nil
}

func (w *writer) PruneClosedLimitOrders(ids []decimal.Decimal) error {
	open := w.state.table(model.TableOpenLimitOrders.Name)
	closed := w.state.table(model.TableClosedLimitOrders.Name)
	for _, id := range ids {
		if _, ok := closed[id.String()]; ok {
			delete(open, id.String())
		}
	}
	return nil
}

func toRecords(rows any) ([]model.Record, error) {
	v := reflect.ValueOf(rows)
	if v.Kind() != reflect.Slice {
		return nil, errors.Errorf("insert: rows must be a slice, got %T", rows)
	}
	out := make([]model.Record, 0, v.Len())
	for i := 0; i < v.Len(); i++ {
		r, ok := v.Index(i).Interface().(model.Record)
		if !ok {
			return nil, errors.Errorf("insert: %T is not a record", v.Index(i).Interface())
		}
		out = append(out, r)
	}
	return out, nil
}

func hasNul(v reflect.Value) bool {
	if v.Kind() != reflect.Struct {
		return false
	}
	for i := 0; i < v.NumField(); i++ {
		f := v.Field(i)
		switch f.Kind() {
		case reflect.String:
			if strings.Contains(f.String(), "\x00") {
				return true
			}
		case reflect.Pointer:
			if !f.IsNil() && f.Elem().Kind() == reflect.String && strings.Contains(f.Elem().String(), "\x00") {
				return true
			}
		}
	}
	return false
}
