package persist

import (
	"reflect"
	"strings"

	"github.com/bytedance/sonic"

	"mirage-indexer/internal/model"
)

// CleanText strips NUL bytes and invalid UTF-8 sequences, which text
// columns reject.
func CleanText(s string) string {
	return strings.ToValidUTF8(strings.ReplaceAll(s, "\x00", ""), "")
}

// SanitizeBatch returns a copy of b with every text field cleaned. With
// drop set, rows that still fail a JSON round trip are left out.
func SanitizeBatch(b model.Batch, drop bool) model.Batch {
	return model.Batch{
		Vaults:            Sanitize(b.Vaults, drop),
		VaultUsers:        Sanitize(b.VaultUsers, drop),
		VaultActivities:   Sanitize(b.VaultActivities, drop),
		Markets:           Sanitize(b.Markets, drop),
		MarketConfigs:     Sanitize(b.MarketConfigs, drop),
		Positions:         Sanitize(b.Positions, drop),
		Trades:            Sanitize(b.Trades, drop),
		PositionLimits:    Sanitize(b.PositionLimits, drop),
		LimitOrders:       Sanitize(b.LimitOrders, drop),
		OpenLimitOrders:   Sanitize(b.OpenLimitOrders, drop),
		ClosedLimitOrders: Sanitize(b.ClosedLimitOrders, drop),
		MarketActivities:  Sanitize(b.MarketActivities, drop),
	}
}

// Sanitize cleans the text fields of every row.
func Sanitize[T any](rows []T, drop bool) []T {
	if rows == nil {
		return nil
	}
	out := make([]T, 0, len(rows))
	for _, row := range rows {
		cleanFields(reflect.ValueOf(&row).Elem())
		if drop && !roundTrips(row) {
			continue
		}
		out = append(out, row)
	}
	return out
}

func cleanFields(v reflect.Value) {
	if v.Kind() != reflect.Struct {
		return
	}
	for i := 0; i < v.NumField(); i++ {
		f := v.Field(i)
		if !f.CanSet() {
			continue
		}
		switch f.Kind() {
		case reflect.String:
			f.SetString(CleanText(f.String()))
		case reflect.Pointer:
			if f.IsNil() || f.Elem().Kind() != reflect.String {
				continue
			}
			// rows may share the pointee, never write through it
			p := reflect.New(f.Type().Elem())
			p.Elem().SetString(CleanText(f.Elem().String()))
			f.Set(p)
		}
	}
}

func roundTrips[T any](row T) bool {
	data, err := sonic.Marshal(row)
	if err != nil {
		return false
	}
	var back T
	return sonic.Unmarshal(data, &back) == nil
}
