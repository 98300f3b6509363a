package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"mirage-indexer/internal/model"
	"mirage-indexer/internal/persist"
)

func TestTransactionRollback(t *testing.T) {
	b := New()
	boom := errors.New("boom")

	err := b.Transaction(context.Background(), func(w persist.Writer) error {
		require.NoError(t, w.Insert(model.TableVaults, []model.Vault{{TypeHash: "a"}}))
		return boom
	})
	require.ErrorIs(t, err, boom)
	require.Zero(t, b.Count(model.TableVaults))
	require.Zero(t, b.Commits())
}

func TestInsertRejectsNul(t *testing.T) {
	b := New()
	err := b.Transaction(context.Background(), func(w persist.Writer) error {
		return w.Insert(model.TableVaults, []model.Vault{{TypeHash: "a", FeeTo: "0x\x00"}})
	})
	require.Error(t, err)
	require.Zero(t, b.Count(model.TableVaults))
}

func TestInsertRejectsDoubleUpdate(t *testing.T) {
	b := New()
	err := b.Transaction(context.Background(), func(w persist.Writer) error {
		return w.Insert(model.TableVaults, []model.Vault{{TypeHash: "a"}, {TypeHash: "a", TransactionVersion: 2}})
	})
	require.Error(t, err)

	// ignore tables accept duplicates, first row wins
	err = b.Transaction(context.Background(), func(w persist.Writer) error {
		return w.Insert(model.TableOpenLimitOrders, []model.OpenLimitOrder{
			{ID: decimal.NewFromInt(1), TransactionVersion: 1},
			{ID: decimal.NewFromInt(1), TransactionVersion: 2},
		})
	})
	require.NoError(t, err)
	rows := Rows[model.OpenLimitOrder](b)
	require.Len(t, rows, 1)
	require.Equal(t, int64(1), rows[0].TransactionVersion)
}

func TestInsertRejectsNonRecords(t *testing.T) {
	b := New()
	err := b.Transaction(context.Background(), func(w persist.Writer) error {
		return w.Insert(model.TableVaults, []string{"x"})
	})
	require.Error(t, err)

	err = b.Transaction(context.Background(), func(w persist.Writer) error {
		return w.Insert(model.Table{}, []model.Vault{{}})
	})
	require.Error(t, err)
}

func TestTransactionHonorsContext(t *testing.T) {
	b := New()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := b.Transaction(ctx, func(persist.Writer) error { return nil })
	require.ErrorIs(t, err, context.Canceled)
}
