package model

import (
	"cmp"
	"slices"
	"strings"
)

// Batch holds every record produced for one version range.
type Batch struct {
	Vaults          []Vault
	VaultUsers      []VaultUser
	VaultActivities []VaultActivity

	Markets           []Market
	MarketConfigs     []MarketConfig
	Positions         []Position
	Trades            []Trade
	PositionLimits    []PositionLimit
	LimitOrders       []LimitOrder
	OpenLimitOrders   []OpenLimitOrder
	ClosedLimitOrders []ClosedLimitOrder
	MarketActivities  []MarketActivity
}

// Append moves every record of other to the end of b.
func (b *Batch) Append(other Batch) {
	b.Vaults = append(b.Vaults, other.Vaults...)
	b.VaultUsers = append(b.VaultUsers, other.VaultUsers...)
	b.VaultActivities = append(b.VaultActivities, other.VaultActivities...)
	b.Markets = append(b.Markets, other.Markets...)
	b.MarketConfigs = append(b.MarketConfigs, other.MarketConfigs...)
	b.Positions = append(b.Positions, other.Positions...)
	b.Trades = append(b.Trades, other.Trades...)
	b.PositionLimits = append(b.PositionLimits, other.PositionLimits...)
	b.LimitOrders = append(b.LimitOrders, other.LimitOrders...)
	b.OpenLimitOrders = append(b.OpenLimitOrders, other.OpenLimitOrders...)
	b.ClosedLimitOrders = append(b.ClosedLimitOrders, other.ClosedLimitOrders...)
	b.MarketActivities = append(b.MarketActivities, other.MarketActivities...)
}

// Counts returns the number of records per table name.
func (b Batch) Counts() map[string]int {
	return map[string]int{
		TableVaults.Name:            len(b.Vaults),
		TableVaultUsers.Name:        len(b.VaultUsers),
		TableVaultActivities.Name:   len(b.VaultActivities),
		TableMarkets.Name:           len(b.Markets),
		TableMarketConfigs.Name:     len(b.MarketConfigs),
		TablePositions.Name:         len(b.Positions),
		TableTrades.Name:            len(b.Trades),
		TablePositionLimits.Name:    len(b.PositionLimits),
		TableLimitOrders.Name:       len(b.LimitOrders),
		TableOpenLimitOrders.Name:   len(b.OpenLimitOrders),
		TableClosedLimitOrders.Name: len(b.ClosedLimitOrders),
		TableMarketActivities.Name:  len(b.MarketActivities),
	}
}

// Len returns the total number of records.
func (b Batch) Len() int {
	n := 0
	for _, c := range b.Counts() {
		n += c
	}
	return n
}

// Dedupe collapses snapshot records sharing a natural key into the one with
// the highest version. A replace statement cannot touch the same row twice.
func (b *Batch) Dedupe() {
	b.Vaults = Latest(b.Vaults)
	b.VaultUsers = Latest(b.VaultUsers)
	b.Markets = Latest(b.Markets)
	b.MarketConfigs = Latest(b.MarketConfigs)
	b.Positions = Latest(b.Positions)
	b.PositionLimits = Latest(b.PositionLimits)
	b.LimitOrders = Latest(b.LimitOrders)
}

// Latest keeps one record per key. On equal versions the later one wins.
// The first appearance of each key decides its position in the result.
func Latest[T Record](rows []T) []T {
	if len(rows) < 2 {
		return rows
	}
	index := make(map[string]int, len(rows))
	out := make([]T, 0, len(rows))
	for _, row := range rows {
		key := row.Key()
		i, ok := index[key]
		if !ok {
			index[key] = len(out)
			out = append(out, row)
			continue
		}
		if row.Version() >= out[i].Version() {
			out[i] = row
		}
	}
	return out
}

// Sort orders every collection by its canonical key so that storage order
// is deterministic.
func (b *Batch) Sort() {
	slices.SortStableFunc(b.Vaults, func(x, y Vault) int {
		return compareStrings(x.CollateralType, y.CollateralType, x.BorrowType, y.BorrowType)
	})
	slices.SortStableFunc(b.VaultUsers, func(x, y VaultUser) int {
		return compareStrings(x.UserAddr, y.UserAddr, x.CollateralType, y.CollateralType, x.BorrowType, y.BorrowType)
	})
	slices.SortStableFunc(b.VaultActivities, func(x, y VaultActivity) int {
		if c := compareStrings(x.CollateralType, y.CollateralType, x.BorrowType, y.BorrowType); c != 0 {
			return c
		}
		return compareEvents(x.TransactionVersion, y.TransactionVersion, x.EventIndex, y.EventIndex)
	})

	slices.SortStableFunc(b.Markets, func(x, y Market) int {
		return compareStrings(x.MarginType, y.MarginType, x.PerpType, y.PerpType)
	})
	slices.SortStableFunc(b.MarketConfigs, func(x, y MarketConfig) int {
		return compareStrings(x.MarginType, y.MarginType, x.PerpType, y.PerpType)
	})
	slices.SortStableFunc(b.PositionLimits, func(x, y PositionLimit) int {
		return compareStrings(x.UserAddr, y.UserAddr, x.MarginType, y.MarginType, x.PerpType, y.PerpType)
	})
	slices.SortStableFunc(b.Positions, func(x, y Position) int { return x.ID.Cmp(y.ID) })
	slices.SortStableFunc(b.Trades, func(x, y Trade) int { return x.ID.Cmp(y.ID) })
	slices.SortStableFunc(b.LimitOrders, func(x, y LimitOrder) int { return x.ID.Cmp(y.ID) })
	slices.SortStableFunc(b.OpenLimitOrders, func(x, y OpenLimitOrder) int { return x.ID.Cmp(y.ID) })
	slices.SortStableFunc(b.ClosedLimitOrders, func(x, y ClosedLimitOrder) int { return x.ID.Cmp(y.ID) })
	slices.SortStableFunc(b.MarketActivities, func(x, y MarketActivity) int {
		if c := compareStrings(x.MarginType, y.MarginType, x.PerpType, y.PerpType); c != 0 {
			return c
		}
		return compareEvents(x.TransactionVersion, y.TransactionVersion, x.EventIndex, y.EventIndex)
	})
}

// compareStrings compares pairs (x0, y0), (x1, y1), ... in order.
func compareStrings(pairs ...string) int {
	for i := 0; i+1 < len(pairs); i += 2 {
		if c := strings.Compare(pairs[i], pairs[i+1]); c != 0 {
			return c
		}
	}
	return 0
}

func compareEvents(xVersion, yVersion, xIndex, yIndex int64) int {
	if c := cmp.Compare(xVersion, yVersion); c != 0 {
		return c
	}
	return cmp.Compare(xIndex, yIndex)
}
