/*
Persist writes assembled batches into storage.

# Module
  - coordinator: chunks every collection under the parameter limit inside one transaction
  - sanitizer: strips text storage rejects, used by the single fallback attempt
  - gorm backend: upserts with ON CONFLICT per table policy

# Sharded
  - none, one in-flight transaction per batch
*/
package persist

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/yanun0323/logs"

	"mirage-indexer/internal/model"
	"mirage-indexer/internal/obs"
	"mirage-indexer/pkg/exception"
)

// DefaultMaxParams is the postgres limit of bind parameters per statement.
const DefaultMaxParams = 65535

// Writer runs statements inside one storage transaction.
type Writer interface {
	// Insert writes rows, a slice of one record type, resolving conflicts
	// on the table's natural key with the table's policy.
	Insert(table model.Table, rows any) error
	// DeleteOpenLimitOrders removes open orders with the given ids.
	DeleteOpenLimitOrders(ids []decimal.Decimal) error
	// PruneClosedLimitOrders removes open orders with the given ids that
	// already have a closed row.
	PruneClosedLimitOrders(ids []decimal.Decimal) error
}

// Backend opens storage transactions. The transaction commits when fn
// returns nil and rolls back otherwise.
type Backend interface {
	Transaction(ctx context.Context, fn func(Writer) error) error
}

// WriteError reports the statement that failed inside a transaction.
type WriteError struct {
	Table string
	Start int
	End   int
	Err   error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("write %s rows [%d, %d): %v", e.Table, e.Start, e.End, e.Err)
}

func (e *WriteError) Unwrap() error {
	return e.Err
}

// CommitError is returned when both the commit and the sanitized fallback
// fail. Err is the fallback failure.
type CommitError struct {
	First error
	Err   error
}

func (e *CommitError) Error() string {
	return fmt.Sprintf("%v: %v (first attempt: %v)", exception.ErrPersistFallback, e.Err, e.First)
}

func (e *CommitError) Unwrap() error {
	return e.Err
}

func (e *CommitError) Is(target error) bool {
	return target == exception.ErrPersistFallback
}

// Coordinator writes a batch in one transaction, chunked to the parameter
// limit, with a single sanitize-and-retry fallback.
type Coordinator struct {
	backend   Backend
	maxParams int
	metrics   *obs.Metrics
}

func NewCoordinator(backend Backend, maxParams int, metrics *obs.Metrics) *Coordinator {
	if maxParams <= 0 {
		maxParams = DefaultMaxParams
	}
	return &Coordinator{
		backend:   backend,
		maxParams: maxParams,
		metrics:   metrics,
	}
}

// Commit persists every collection of batch atomically. When the
// transaction fails the batch is sanitized and committed once more.
func (c *Coordinator) Commit(ctx context.Context, batch model.Batch) error {
	if c.backend == nil {
		return exception.ErrPersistNilBackend
	}

	err := c.backend.Transaction(ctx, func(w Writer) error {
		return c.write(w, batch)
	})
	if err == nil {
		c.metrics.IncCommit(obs.CommitOK)
		return nil
	}

	logs.Infof("persist: commit failed, retrying with sanitized rows, err: %+v", err)

	clean := SanitizeBatch(batch, true)
	fallbackErr := c.backend.Transaction(ctx, func(w Writer) error {
		return c.write(w, clean)
	})
	if fallbackErr != nil {
		c.metrics.IncCommit(obs.CommitFailed)
		logs.Errorf("persist: sanitized commit failed, err: %+v", fallbackErr)
		return &CommitError{First: err, Err: fallbackErr}
	}

	c.metrics.IncCommit(obs.CommitFallback)
	return nil
}

func (c *Coordinator) write(w Writer, b model.Batch) error {
	if err := insertChunks(w, model.TableVaults, b.Vaults, c.maxParams, nil); err != nil {
		return err
	}
	if err := insertChunks(w, model.TableVaultUsers, b.VaultUsers, c.maxParams, nil); err != nil {
		return err
	}
	if err := insertChunks(w, model.TableVaultActivities, b.VaultActivities, c.maxParams, nil); err != nil {
		return err
	}
	if err := insertChunks(w, model.TableMarkets, b.Markets, c.maxParams, nil); err != nil {
		return err
	}
	if err := insertChunks(w, model.TableMarketConfigs, b.MarketConfigs, c.maxParams, nil); err != nil {
		return err
	}
	if err := insertChunks(w, model.TablePositions, b.Positions, c.maxParams, nil); err != nil {
		return err
	}
	if err := insertChunks(w, model.TableTrades, b.Trades, c.maxParams, nil); err != nil {
		return err
	}
	if err := insertChunks(w, model.TablePositionLimits, b.PositionLimits, c.maxParams, nil); err != nil {
		return err
	}
	if err := insertChunks(w, model.TableLimitOrders, b.LimitOrders, c.maxParams, nil); err != nil {
		return err
	}

	// an id that reached closed_limit_orders is never reopened
	if err := insertChunks(w, model.TableOpenLimitOrders, b.OpenLimitOrders, c.maxParams, func(chunk []model.OpenLimitOrder) error {
		ids := make([]decimal.Decimal, 0, len(chunk))
		for _, o := range chunk {
			ids = append(ids, o.ID)
		}
		return w.PruneClosedLimitOrders(ids)
	}); err != nil {
		return err
	}
	if err := insertChunks(w, model.TableClosedLimitOrders, b.ClosedLimitOrders, c.maxParams, func(chunk []model.ClosedLimitOrder) error {
		ids := make([]decimal.Decimal, 0, len(chunk))
		for _, o := range chunk {
			ids = append(ids, o.ID)
		}
		return w.DeleteOpenLimitOrders(ids)
	}); err != nil {
		return err
	}

	return insertChunks(w, model.TableMarketActivities, b.MarketActivities, c.maxParams, nil)
}

// ChunkSize returns how many rows of the given width fit in one statement.
func ChunkSize(maxParams, fields int) int {
	if fields <= 0 {
		return max(maxParams, 1)
	}
	return max(maxParams/fields, 1)
}

func insertChunks[T any](w Writer, table model.Table, rows []T, maxParams int, after func([]T) error) error {
	if len(rows) == 0 {
		return nil
	}
	if !table.Validate() {
		return &WriteError{Table: table.Name, End: len(rows), Err: exception.ErrPersistInvalidTable}
	}

	size := ChunkSize(maxParams, model.FieldCount[T]())
	for start := 0; start < len(rows); start += size {
		end := min(start+size, len(rows))
		chunk := rows[start:end]
		if err := w.Insert(table, chunk); err != nil {
			return &WriteError{Table: table.Name, Start: start, End: end, Err: err}
		}
		if after == nil {
			continue
		}
		if err := after(chunk); err != nil {
			return &WriteError{Table: table.Name, Start: start, End: end, Err: err}
		}
	}
	return nil
}
