package persist_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mirage-indexer/internal/model"
	"mirage-indexer/internal/persist"
	"mirage-indexer/internal/persist/memory"
	"mirage-indexer/pkg/exception"
)

var ts = time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

type call struct {
	op   string
	rows int
}

// recorder is a backend that records every statement it receives.
type recorder struct {
	calls []call
	fail  error
}

func (r *recorder) Transaction(_ context.Context, fn func(persist.Writer) error) error {
	return fn(r)
}

func (r *recorder) Insert(table model.Table, rows any) error {
	n := 0
	switch v := rows.(type) {
	case []model.VaultActivity:
		n = len(v)
	case []model.OpenLimitOrder:
		n = len(v)
	case []model.ClosedLimitOrder:
		n = len(v)
	default:
		n = -1
	}
	r.calls = append(r.calls, call{op: table.Name, rows: n})
	return r.fail
}

func (r *recorder) DeleteOpenLimitOrders(ids []decimal.Decimal) error {
	r.calls = append(r.calls, call{op: "delete_open", rows: len(ids)})
	return nil
}

func (r *recorder) PruneClosedLimitOrders(ids []decimal.Decimal) error {
	r.calls = append(r.calls, call{op: "prune_open", rows: len(ids)})
	return nil
}

func activity(version, index int64, eventType string) model.VaultActivity {
	return model.VaultActivity{
		TransactionVersion:   version,
		EventIndex:           index,
		EventType:            eventType,
		TypeHash:             "hash",
		CollateralType:       "0x1::coin::A",
		BorrowType:           "0x1::coin::B",
		TransactionTimestamp: ts,
	}
}

func vault(version int64, rate string) model.Vault {
	return model.Vault{
		TransactionVersion:   version,
		CollateralType:       "0x1::coin::A",
		BorrowType:           "0x1::coin::B",
		TypeHash:             "hash",
		CachedExchangeRate:   decimal.RequireFromString(rate),
		TransactionTimestamp: ts,
	}
}

func openOrder(version int64, id int64) model.OpenLimitOrder {
	return model.OpenLimitOrder{TransactionVersion: version, TypeHash: "m", UserAddr: "0x1", ID: decimal.NewFromInt(id), TransactionTimestamp: ts}
}

func closedOrder(version int64, id int64) model.ClosedLimitOrder {
	return model.ClosedLimitOrder{TransactionVersion: version, TypeHash: "m", UserAddr: "0x1", ID: decimal.NewFromInt(id), TransactionTimestamp: ts}
}

func TestChunkSize(t *testing.T) {
	testCases := []struct {
		desc      string
		maxParams int
		fields    int
		expected  int
	}{
		{desc: "postgres limit", maxParams: 65535, fields: 19, expected: 3449},
		{desc: "exact", maxParams: 20, fields: 10, expected: 2},
		{desc: "wider than limit", maxParams: 5, fields: 10, expected: 1},
		{desc: "no fields", maxParams: 7, fields: 0, expected: 7},
	}

	for _, tc := range testCases {
		t.Run(tc.desc, func(t *testing.T) {
			assert.Equal(t, tc.expected, persist.ChunkSize(tc.maxParams, tc.fields))
		})
	}
}

func TestCoordinatorChunks(t *testing.T) {
	rec := &recorder{}
	width := model.FieldCount[model.VaultActivity]()
	c := persist.NewCoordinator(rec, width*2, nil)

	var batch model.Batch
	for i := int64(0); i < 5; i++ {
		batch.VaultActivities = append(batch.VaultActivities, activity(1, i, "BorrowEvent"))
	}

	require.NoError(t, c.Commit(context.Background(), batch))
	require.Equal(t, []call{
		{op: "vault_activities", rows: 2},
		{op: "vault_activities", rows: 2},
		{op: "vault_activities", rows: 1},
	}, rec.calls)
}

func TestCoordinatorOrder(t *testing.T) {
	rec := &recorder{}
	c := persist.NewCoordinator(rec, 0, nil)

	batch := model.Batch{
		Vaults:            []model.Vault{vault(1, "1")},
		VaultUsers:        []model.VaultUser{{TypeHash: "hash", UserAddr: "0x1"}},
		VaultActivities:   []model.VaultActivity{activity(1, 0, "BorrowEvent")},
		Markets:           []model.Market{{TypeHash: "m"}},
		MarketConfigs:     []model.MarketConfig{{TypeHash: "m"}},
		Positions:         []model.Position{{ID: decimal.NewFromInt(1)}},
		Trades:            []model.Trade{{ID: decimal.NewFromInt(1)}},
		PositionLimits:    []model.PositionLimit{{TypeHash: "m", UserAddr: "0x1"}},
		LimitOrders:       []model.LimitOrder{{ID: decimal.NewFromInt(2)}},
		OpenLimitOrders:   []model.OpenLimitOrder{openOrder(1, 2), openOrder(1, 3)},
		ClosedLimitOrders: []model.ClosedLimitOrder{closedOrder(1, 3)},
		MarketActivities:  []model.MarketActivity{{TypeHash: "m"}},
	}

	require.NoError(t, c.Commit(context.Background(), batch))

	ops := make([]string, 0, len(rec.calls))
	for _, cl := range rec.calls {
		ops = append(ops, cl.op)
	}
	require.Equal(t, []string{
		"vaults",
		"vault_users",
		"vault_activities",
		"markets",
		"market_configs",
		"positions",
		"trades",
		"position_limits",
		"limit_orders",
		"open_limit_orders",
		"prune_open",
		"closed_limit_orders",
		"delete_open",
		"market_activities",
	}, ops)
	assert.Equal(t, 2, rec.calls[10].rows)
	assert.Equal(t, 1, rec.calls[12].rows)
}

func TestCoordinatorEmptyBatch(t *testing.T) {
	rec := &recorder{}
	c := persist.NewCoordinator(rec, 0, nil)
	require.NoError(t, c.Commit(context.Background(), model.Batch{}))
	require.Empty(t, rec.calls)
}

func TestCoordinatorNilBackend(t *testing.T) {
	c := persist.NewCoordinator(nil, 0, nil)
	require.ErrorIs(t, c.Commit(context.Background(), model.Batch{}), exception.ErrPersistNilBackend)
}

func TestCoordinatorSanitizeFallback(t *testing.T) {
	backend := memory.New()
	c := persist.NewCoordinator(backend, 0, nil)

	batch := model.Batch{
		VaultActivities: []model.VaultActivity{
			activity(7, 0, "Borrow\x00Event"),
			activity(7, 1, "RepayEvent"),
		},
	}

	require.NoError(t, c.Commit(context.Background(), batch))
	require.Equal(t, 1, backend.Commits())

	rows := memory.Rows[model.VaultActivity](backend)
	require.Len(t, rows, 2)
	assert.Equal(t, "BorrowEvent", rows[0].EventType)
	assert.Equal(t, "RepayEvent", rows[1].EventType)

	// the caller's batch is left untouched
	assert.Equal(t, "Borrow\x00Event", batch.VaultActivities[0].EventType)
}

func TestCoordinatorFallbackOnce(t *testing.T) {
	t.Run("recovers", func(t *testing.T) {
		backend := memory.New()
		backend.FailNext(1, errors.New("connection reset"))
		c := persist.NewCoordinator(backend, 0, nil)

		require.NoError(t, c.Commit(context.Background(), model.Batch{Vaults: []model.Vault{vault(1, "1")}}))
		require.Equal(t, 1, backend.Commits())
		require.Equal(t, 1, backend.Count(model.TableVaults))
	})

	t.Run("gives up after one retry", func(t *testing.T) {
		backend := memory.New()
		backend.FailNext(3, context.DeadlineExceeded)
		c := persist.NewCoordinator(backend, 0, nil)

		err := c.Commit(context.Background(), model.Batch{Vaults: []model.Vault{vault(1, "1")}})
		require.Error(t, err)
		require.ErrorIs(t, err, context.DeadlineExceeded)
		require.ErrorIs(t, err, exception.ErrPersistFallback)

		var commitErr *persist.CommitError
		require.ErrorAs(t, err, &commitErr)
		require.ErrorIs(t, commitErr.First, context.DeadlineExceeded)
		require.Zero(t, backend.Commits())

		// exactly two attempts were consumed
		require.NoError(t, c.Commit(context.Background(), model.Batch{Vaults: []model.Vault{vault(1, "1")}}))
	})
}

func TestCoordinatorWriteError(t *testing.T) {
	rec := &recorder{fail: errors.New("boom")}
	c := persist.NewCoordinator(rec, 0, nil)

	err := c.Commit(context.Background(), model.Batch{VaultActivities: []model.VaultActivity{activity(1, 0, "x")}})
	var writeErr *persist.WriteError
	require.ErrorAs(t, err, &writeErr)
	assert.Equal(t, "vault_activities", writeErr.Table)
	assert.Equal(t, 0, writeErr.Start)
	assert.Equal(t, 1, writeErr.End)
	assert.EqualError(t, writeErr.Err, "boom")
}

func TestSnapshotReplaceIsGuarded(t *testing.T) {
	backend := memory.New()
	c := persist.NewCoordinator(backend, 0, nil)
	ctx := context.Background()

	require.NoError(t, c.Commit(ctx, model.Batch{Vaults: []model.Vault{vault(20, "2")}}))
	require.NoError(t, c.Commit(ctx, model.Batch{Vaults: []model.Vault{vault(10, "1")}}))

	rows := memory.Rows[model.Vault](backend)
	require.Len(t, rows, 1)
	assert.Equal(t, int64(20), rows[0].TransactionVersion)
	assert.Equal(t, "2", rows[0].CachedExchangeRate.String())

	require.NoError(t, c.Commit(ctx, model.Batch{Vaults: []model.Vault{vault(30, "3")}}))
	rows = memory.Rows[model.Vault](backend)
	assert.Equal(t, int64(30), rows[0].TransactionVersion)
}

func TestActivityIgnoreIsIdempotent(t *testing.T) {
	backend := memory.New()
	c := persist.NewCoordinator(backend, 0, nil)
	ctx := context.Background()

	batch := model.Batch{VaultActivities: []model.VaultActivity{activity(5, 0, "BorrowEvent"), activity(5, 1, "RepayEvent")}}
	require.NoError(t, c.Commit(ctx, batch))
	require.NoError(t, c.Commit(ctx, batch))
	require.Equal(t, 2, backend.Count(model.TableVaultActivities))
}

func TestOrderLifecycle(t *testing.T) {
	backend := memory.New()
	c := persist.NewCoordinator(backend, 0, nil)
	ctx := context.Background()

	// cancel without a place is a no-op on the open set
	require.NoError(t, c.Commit(ctx, model.Batch{ClosedLimitOrders: []model.ClosedLimitOrder{closedOrder(1, 7)}}))
	require.Equal(t, 1, backend.Count(model.TableClosedLimitOrders))
	require.Zero(t, backend.Count(model.TableOpenLimitOrders))

	// a closed id is never reopened
	require.NoError(t, c.Commit(ctx, model.Batch{OpenLimitOrders: []model.OpenLimitOrder{openOrder(2, 7), openOrder(2, 8)}}))
	open := memory.Rows[model.OpenLimitOrder](backend)
	require.Len(t, open, 1)
	assert.Equal(t, "8", open[0].ID.String())

	// place and cancel in one batch
	require.NoError(t, c.Commit(ctx, model.Batch{
		OpenLimitOrders:   []model.OpenLimitOrder{openOrder(3, 9)},
		ClosedLimitOrders: []model.ClosedLimitOrder{closedOrder(3, 9), closedOrder(3, 8)},
	}))
	require.Zero(t, backend.Count(model.TableOpenLimitOrders))
	require.Equal(t, 3, backend.Count(model.TableClosedLimitOrders))
}

func TestSanitize(t *testing.T) {
	user := "0x1\x00"
	rows := []model.VaultActivity{activity(1, 0, "bad\xffname")}
	rows[0].UserAddr = &user

	out := persist.Sanitize(rows, true)
	require.Len(t, out, 1)
	assert.Equal(t, "badname", out[0].EventType)
	require.NotNil(t, out[0].UserAddr)
	assert.Equal(t, "0x1", *out[0].UserAddr)

	// the source row and its pointee are untouched
	assert.Equal(t, "0x1\x00", user)
	assert.Equal(t, "bad\xffname", rows[0].EventType)

	assert.Nil(t, persist.Sanitize[model.VaultActivity](nil, true))
	assert.Equal(t, "abc", persist.CleanText("a\x00b\xc3c"))
}

func TestSanitizeBatch(t *testing.T) {
	batch := model.Batch{
		Vaults:           []model.Vault{{FeeTo: "0x\x002"}},
		MarketActivities: []model.MarketActivity{{EventType: "Open\x00"}},
	}
	clean := persist.SanitizeBatch(batch, false)
	assert.Equal(t, "0x2", clean.Vaults[0].FeeTo)
	assert.Equal(t, "Open", clean.MarketActivities[0].EventType)
	assert.Nil(t, clean.Trades)
}
