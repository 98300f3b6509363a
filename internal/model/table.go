package model

import (
	"reflect"
	"strings"
	"sync"

	"mirage-indexer/internal/model/enum"
)

// Table describes where a record kind is stored and how conflicts on its
// natural key are resolved.
type Table struct {
	Name   string
	Keys   []string
	Policy enum.ConflictPolicy
}

// VersionColumn guards replace statements so an older row never overwrites
// a newer one.
const VersionColumn = "transaction_version"

// Record is a row that can be written by the persistence layer.
type Record interface {
	Table() Table
	// Key is the natural key rendered as text, unique within the table.
	Key() string
	Version() int64
}

var (
	TableVaults            = Table{Name: "vaults", Keys: []string{"type_hash"}, Policy: enum.ConflictReplace}
	TableVaultUsers        = Table{Name: "vault_users", Keys: []string{"user_addr", "type_hash"}, Policy: enum.ConflictReplace}
	TableVaultActivities   = Table{Name: "vault_activities", Keys: []string{"transaction_version", "event_index", "type_hash"}, Policy: enum.ConflictIgnore}
	TableMarkets           = Table{Name: "markets", Keys: []string{"type_hash"}, Policy: enum.ConflictReplace}
	TableMarketConfigs     = Table{Name: "market_configs", Keys: []string{"type_hash"}, Policy: enum.ConflictReplace}
	TablePositions         = Table{Name: "positions", Keys: []string{"id"}, Policy: enum.ConflictReplace}
	TablePositionLimits    = Table{Name: "position_limits", Keys: []string{"user_addr", "type_hash"}, Policy: enum.ConflictReplace}
	TableLimitOrders       = Table{Name: "limit_orders", Keys: []string{"id"}, Policy: enum.ConflictReplace}
	TableTrades            = Table{Name: "trades", Keys: []string{"id", "transaction_version", "event_index"}, Policy: enum.ConflictIgnore}
	TableOpenLimitOrders   = Table{Name: "open_limit_orders", Keys: []string{"id"}, Policy: enum.ConflictIgnore}
	TableClosedLimitOrders = Table{Name: "closed_limit_orders", Keys: []string{"id"}, Policy: enum.ConflictIgnore}
	TableMarketActivities  = Table{Name: "market_activities", Keys: []string{"transaction_version", "event_index", "type_hash"}, Policy: enum.ConflictIgnore}
)

// Tables lists every table in commit order.
func Tables() []Table {
	return []Table{
		TableVaults,
		TableVaultUsers,
		TableVaultActivities,
		TableMarkets,
		TableMarketConfigs,
		TablePositions,
		TableTrades,
		TablePositionLimits,
		TableLimitOrders,
		TableOpenLimitOrders,
		TableClosedLimitOrders,
		TableMarketActivities,
	}
}

func (t Table) Validate() bool {
	return t.Name != "" && len(t.Keys) != 0 && t.Policy.IsAvailable()
}

var fieldCounts sync.Map

// FieldCount returns the number of stored columns of a record type, which
// is the number of bind parameters one row contributes to an insert.
func FieldCount[T any]() int {
	typ := reflect.TypeOf((*T)(nil)).Elem()
	if v, ok := fieldCounts.Load(typ); ok {
		return v.(int)
	}
	n := 0
	for i := 0; i < typ.NumField(); i++ {
		f := typ.Field(i)
		if !f.IsExported() || strings.HasPrefix(f.Tag.Get("gorm"), "-") {
			continue
		}
		n++
	}
	fieldCounts.Store(typ, n)
	return n
}

func joinKey(parts ...string) string {
	return strings.Join(parts, "|")
}
