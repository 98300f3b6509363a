package persist

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"mirage-indexer/internal/model"
	"mirage-indexer/internal/model/enum"
)

// GormBackend runs batches against a gorm database.
type GormBackend struct {
	db *gorm.DB
}

func NewGormBackend(db *gorm.DB) *GormBackend {
	return &GormBackend{db: db}
}

func (b *GormBackend) Transaction(ctx context.Context, fn func(Writer) error) error {
	return b.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(gormWriter{tx: tx})
	})
}

type gormWriter struct {
	tx *gorm.DB
}

func (w gormWriter) Insert(table model.Table, rows any) error {
	return insertStatement(w.tx, table, rows).Error
}

func (w gormWriter) DeleteOpenLimitOrders(ids []decimal.Decimal) error {
	if len(ids) == 0 {
		return nil
	}
	return deleteOpenStatement(w.tx, ids).Error
}

func (w gormWriter) PruneClosedLimitOrders(ids []decimal.Decimal) error {
	if len(ids) == 0 {
		return nil
	}
	return pruneOpenStatement(w.tx, ids).Error
}

func insertStatement(db *gorm.DB, table model.Table, rows any) *gorm.DB {
	return db.Table(table.Name).Clauses(onConflict(table)).Create(rows)
}

func deleteOpenStatement(db *gorm.DB, ids []decimal.Decimal) *gorm.DB {
	return db.Where("id IN ?", ids).Delete(&model.OpenLimitOrder{})
}

func pruneOpenStatement(db *gorm.DB, ids []decimal.Decimal) *gorm.DB {
	return db.
		Where("id IN ?", ids).
		Where(fmt.Sprintf("id IN (SELECT id FROM %s)", model.TableClosedLimitOrders.Name)).
		Delete(&model.OpenLimitOrder{})
}

func onConflict(table model.Table) clause.OnConflict {
	columns := make([]clause.Column, 0, len(table.Keys))
	for _, key := range table.Keys {
		columns = append(columns, clause.Column{Name: key})
	}

	if table.Policy != enum.ConflictReplace {
		return clause.OnConflict{Columns: columns, DoNothing: true}
	}

	return clause.OnConflict{
		Columns:   columns,
		UpdateAll: true,
		Where: clause.Where{Exprs: []clause.Expression{
			clause.Expr{SQL: fmt.Sprintf(`"%s"."%s" <= excluded."%s"`, table.Name, model.VersionColumn, model.VersionColumn)},
		}},
	}
}
