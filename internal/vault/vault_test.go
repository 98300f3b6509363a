package vault

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mirage-indexer/internal/chain"
	"mirage-indexer/internal/codec"
	"mirage-indexer/internal/model"
	"mirage-indexer/internal/typeid"
	"mirage-indexer/pkg/exception"
)

const (
	testAddress    = "0x2fcf786835005f86fecba4f394f306e5444658f391bcaf301608ed78c8d64c65"
	collateralType = "0x1::aptos_coin::AptosCoin"
	borrowType     = "0x2fcf786835005f86fecba4f394f306e5444658f391bcaf301608ed78c8d64c65::mirage::MUSD"
)

const vaultPayload = `{
	"total_collateral": "1000000",
	"borrow": {"elastic": "500", "base": "450"},
	"fees": {"last_time": "1690000000", "fees_earned": {"value": "12"}},
	"interest_per_second": "31709791",
	"collateralization_rate": "7500",
	"liquidation_multiplier": "10500",
	"borrow_fee": "50",
	"distribution_part": "10",
	"fee_to": "0xfee",
	"cached_exchange_rate": "123456789",
	"last_interest_update": "1690000001",
	"emergency": false,
	"dev_cut": "100"
}`

func tag(module, name string, generics ...string) chain.StructTag {
	return chain.StructTag{
		Address:           chain.StandardizeAddress(testAddress),
		Module:            module,
		Name:              name,
		GenericTypeParams: generics,
	}
}

func TestIsSupported(t *testing.T) {
	r := NewRegistry(testAddress)

	tests := []struct {
		name     string
		tag      chain.StructTag
		resource bool
		event    bool
	}{
		{"vault resource", tag("vault", "Vault", collateralType, borrowType), true, false},
		{"user info resource", tag("vault", "UserInfo", collateralType, borrowType), true, false},
		{"borrow event", tag("vault", "BorrowEvent", collateralType, borrowType), false, true},
		{"wrong module", tag("governance", "Vault", collateralType, borrowType), false, false},
		{"market module", tag("market", "Vault", collateralType, borrowType), false, false},
		{"unknown name", tag("vault", "Treasury", collateralType, borrowType), false, false},
		{"one generic", tag("vault", "Vault", collateralType), false, false},
		{"three generics", tag("vault", "Vault", collateralType, borrowType, borrowType), false, false},
		{"wrong address", chain.StructTag{Address: chain.StandardizeAddress("0x1"), Module: "vault", Name: "Vault", GenericTypeParams: []string{"a", "b"}}, false, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.resource, r.IsResourceSupported(tc.tag))
			assert.Equal(t, tc.event, r.IsEventSupported(tc.tag))
		})
	}
}

func TestHandleVaultWrite(t *testing.T) {
	r := NewRegistry(testAddress)
	ts := time.Unix(1690000000, 0).UTC()

	batch, err := r.HandleWrite(tag("vault", "Vault", collateralType, borrowType), testAddress, []byte(vaultPayload), 10, ts)
	require.NoError(t, err)
	require.Len(t, batch.Vaults, 1)
	require.Equal(t, 1, batch.Len())

	v := batch.Vaults[0]
	assert.Equal(t, int64(10), v.TransactionVersion)
	assert.Equal(t, typeid.HashPair(collateralType, borrowType), v.TypeHash)
	assert.Equal(t, collateralType, v.CollateralType)
	assert.Equal(t, "500", v.BorrowElastic.String())
	assert.Equal(t, "450", v.BorrowBase.String())
	assert.Equal(t, "12", v.FeesAccrued.String())
	assert.Equal(t, "1690000000", v.LastFeesAccrueTime.String())
	assert.Equal(t, chain.StandardizeAddress("0xfee"), v.FeeTo)
	assert.False(t, v.IsEmergency)
	assert.Equal(t, ts, v.TransactionTimestamp)
}

func TestHandleUserInfoWrite(t *testing.T) {
	r := NewRegistry(testAddress)
	payload := `{"user_collateral": {"value": "77"}, "user_borrow_part": "33"}`

	batch, err := r.HandleWrite(tag("vault", "UserInfo", collateralType, borrowType), "0xABC", []byte(payload), 11, time.Time{})
	require.NoError(t, err)
	require.Len(t, batch.VaultUsers, 1)

	u := batch.VaultUsers[0]
	assert.Equal(t, chain.StandardizeAddress("0xabc"), u.UserAddr)
	assert.Equal(t, "77", u.UserCollateral.String())
	assert.Equal(t, "33", u.UserBorrowPart.String())
	assert.Equal(t, typeid.HashPair(collateralType, borrowType), u.TypeHash)
}

func TestDecodeResourceErrors(t *testing.T) {
	r := NewRegistry(testAddress)

	_, err := r.DecodeResource("Vault", []byte(`{"total_collateral": "1"}`), 42)
	var decodeErr *codec.DecodeError
	require.ErrorAs(t, err, &decodeErr)
	require.Equal(t, int64(42), decodeErr.Version)
	require.Equal(t, "Vault", decodeErr.TypeName)
	require.Contains(t, decodeErr.Payload, "total_collateral")

	_, err = r.DecodeResource("Treasury", []byte(`{}`), 1)
	require.ErrorAs(t, err, &decodeErr)
	require.ErrorIs(t, err, exception.ErrUnregisteredKind)

	_, err = r.DecodeEvent("NopeEvent", []byte(`{}`), 1)
	require.ErrorIs(t, err, exception.ErrUnregisteredKind)
}

func TestDecimalPrecision(t *testing.T) {
	r := NewRegistry(testAddress)
	payload := `{"user_addr": "0x1", "borrow_amount": "340282366920938463463374607431768211455"}`

	ev, err := r.DecodeEvent("BorrowEvent", []byte(payload), 1)
	require.NoError(t, err)
	require.Equal(t, "340282366920938463463374607431768211455", ev.(BorrowEvent).BorrowAmount.String())
}

func TestEventProjection(t *testing.T) {
	r := NewRegistry(testAddress)
	user := chain.StandardizeAddress("0x5")
	liquidator := chain.StandardizeAddress("0x6")

	tests := []struct {
		name    string
		payload string
		check   func(t *testing.T, a activityView)
	}{
		{"ExchangeRateEvent", `{"rate":"9"}`, func(t *testing.T, a activityView) {
			assert.Equal(t, "9", a.Rate)
			assert.Nil(t, a.UserAddr)
		}},
		{"AccrueFeesEvent", `{"accrued_amount":"3"}`, func(t *testing.T, a activityView) {
			assert.Equal(t, "3", a.AccruedAmount)
		}},
		{"RegisterUserEvent", `{"user_addr":"0x5"}`, func(t *testing.T, a activityView) {
			require.NotNil(t, a.UserAddr)
			assert.Equal(t, user, *a.UserAddr)
			assert.Equal(t, "", a.CollateralAmount)
		}},
		{"AddCollateralEvent", `{"user_addr":"0x5","collateral_amount":"100"}`, func(t *testing.T, a activityView) {
			assert.Equal(t, "100", a.CollateralAmount)
		}},
		{"RemoveCollateralEvent", `{"user_addr":"0x5","collateral_amount":"40"}`, func(t *testing.T, a activityView) {
			assert.Equal(t, "40", a.CollateralAmount)
		}},
		{"BorrowEvent", `{"user_addr":"0x5","borrow_amount":"8"}`, func(t *testing.T, a activityView) {
			assert.Equal(t, "8", a.BorrowAmount)
		}},
		{"RepayEvent", `{"user_addr":"0x5","repay_amount":"6"}`, func(t *testing.T, a activityView) {
			assert.Equal(t, "6", a.BorrowAmount)
		}},
		{"LiquidationEvent", `{"user_addr":"0x5","liquidator_addr":"0x6","collateral_amount":"1","borrow_amount":"2"}`, func(t *testing.T, a activityView) {
			require.NotNil(t, a.LiquidatorAddr)
			assert.Equal(t, liquidator, *a.LiquidatorAddr)
			assert.Equal(t, "1", a.CollateralAmount)
			assert.Equal(t, "2", a.BorrowAmount)
		}},
		{"WithdrawFeesEvent", `{"withdraw_addr":"0x6","fees_earned":"5","borrow_amount":"4"}`, func(t *testing.T, a activityView) {
			require.NotNil(t, a.WithdrawAddr)
			assert.Equal(t, liquidator, *a.WithdrawAddr)
			assert.Equal(t, "5", a.FeesEarned)
			assert.Nil(t, a.UserAddr)
		}},
		{"InterestRateChangeEvent", `{"old_interest_per_second":"1","new_interest_per_second":"2"}`, func(t *testing.T, a activityView) {
			assert.Equal(t, "1", a.OldInterestPerSecond)
			assert.Equal(t, "2", a.NewInterestPerSecond)
		}},
	}
	require.Len(t, tests, int(_event_kind_end)-1)

	for i, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			ev := chain.Event{
				GUID:           chain.EventGUID{CreationNumber: 3},
				SequenceNumber: chain.U64(i),
				Data:           []byte(tc.payload),
			}
			eventTag := tag("vault", tc.name, collateralType, borrowType)
			require.True(t, r.IsEventSupported(eventTag))

			batch, err := r.HandleEvent(eventTag, ev, i, 99, time.Time{})
			require.NoError(t, err)
			require.Len(t, batch.VaultActivities, 1)
			require.Equal(t, 1, batch.Len())

			row := batch.VaultActivities[0]
			assert.Equal(t, int64(99), row.TransactionVersion)
			assert.Equal(t, int64(i), row.EventIndex)
			assert.Equal(t, int64(3), row.EventCreationNumber)
			assert.Equal(t, int64(i), row.EventSequenceNumber)
			assert.Equal(t, tc.name, row.EventType)
			assert.Equal(t, typeid.HashPair(collateralType, borrowType), row.TypeHash)

			tc.check(t, activityView{
				UserAddr:             row.UserAddr,
				WithdrawAddr:         row.WithdrawAddr,
				LiquidatorAddr:       row.LiquidatorAddr,
				CollateralAmount:     nullString(row.CollateralAmount),
				BorrowAmount:         nullString(row.BorrowAmount),
				AccruedAmount:        nullString(row.AccruedAmount),
				Rate:                 nullString(row.Rate),
				FeesEarned:           nullString(row.FeesEarned),
				OldInterestPerSecond: nullString(row.OldInterestPerSecond),
				NewInterestPerSecond: nullString(row.NewInterestPerSecond),
			})
		})
	}
}

type activityView struct {
	UserAddr, WithdrawAddr, LiquidatorAddr *string

	CollateralAmount, BorrowAmount, AccruedAmount, Rate, FeesEarned string
	OldInterestPerSecond, NewInterestPerSecond                      string
}

func nullString(d decimal.NullDecimal) string {
	if !d.Valid {
		return ""
	}
	return d.Decimal.String()
}

func TestEventKindNames(t *testing.T) {
	for k := _event_kind_beg + 1; k < _event_kind_end; k++ {
		require.True(t, k.IsAvailable())
		_, ok := eventDecoders[k.String()]
		require.True(t, ok, k.String())
	}
	require.Len(t, eventDecoders, int(_event_kind_end)-1)
	require.Equal(t, "Unknown", EventKind(0).String())
	require.Len(t, resourceDecoders, int(_resource_kind_end)-1)
}

func TestResourceKindNames(t *testing.T) {
	for k := _resource_kind_beg + 1; k < _resource_kind_end; k++ {
		_, ok := resourceDecoders[k.String()]
		require.True(t, ok, k.String())
	}
	require.Equal(t, "Vault", ResourceVault.String())
	require.Equal(t, "Unknown", ResourceKind(0).String())
	require.Equal(t, "Unknown", _resource_kind_end.String())
}

func TestProjectEventTypeFromKind(t *testing.T) {
	ev := BorrowEvent{UserAddr: "0x1", BorrowAmount: decimal.NewFromInt(5)}
	batch := ProjectEvent(ev, model.EventContext{Version: 3, EventType: "Stale"})
	require.Len(t, batch.VaultActivities, 1)
	assert.Equal(t, EventBorrow.String(), batch.VaultActivities[0].EventType)
	assert.Equal(t, int64(3), batch.VaultActivities[0].TransactionVersion)
}
