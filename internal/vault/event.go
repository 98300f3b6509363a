package vault

import (
	"github.com/shopspring/decimal"

	"mirage-indexer/internal/chain"
	"mirage-indexer/internal/model"
)

// Event is a decoded vault event. Every kind maps its payload onto the
// columns of the activity row it populates.
type Event interface {
	Kind() EventKind
	activity() activityFields
}

// activityFields is the per-kind part of a VaultActivity row.
type activityFields struct {
	CollateralAmount     decimal.NullDecimal
	BorrowAmount         decimal.NullDecimal
	UserAddr             *string
	WithdrawAddr         *string
	LiquidatorAddr       *string
	AccruedAmount        decimal.NullDecimal
	Rate                 decimal.NullDecimal
	FeesEarned           decimal.NullDecimal
	OldInterestPerSecond decimal.NullDecimal
	NewInterestPerSecond decimal.NullDecimal
}

type ExchangeRateEvent struct {
	Rate decimal.Decimal `json:"rate"`
}

func (ExchangeRateEvent) Kind() EventKind { return EventExchangeRate }

func (e ExchangeRateEvent) activity() activityFields {
	return activityFields{Rate: some(e.Rate)}
}

type AccrueFeesEvent struct {
	AccruedAmount decimal.Decimal `json:"accrued_amount"`
}

func (AccrueFeesEvent) Kind() EventKind { return EventAccrueFees }

func (e AccrueFeesEvent) activity() activityFields {
	return activityFields{AccruedAmount: some(e.AccruedAmount)}
}

type RegisterUserEvent struct {
	UserAddr string `json:"user_addr"`
}

func (RegisterUserEvent) Kind() EventKind { return EventRegisterUser }

func (e RegisterUserEvent) activity() activityFields {
	return activityFields{UserAddr: addr(e.UserAddr)}
}

type AddCollateralEvent struct {
	UserAddr         string          `json:"user_addr"`
	CollateralAmount decimal.Decimal `json:"collateral_amount"`
}

func (AddCollateralEvent) Kind() EventKind { return EventAddCollateral }

func (e AddCollateralEvent) activity() activityFields {
	return activityFields{
		UserAddr:         addr(e.UserAddr),
		CollateralAmount: some(e.CollateralAmount),
	}
}

type RemoveCollateralEvent struct {
	UserAddr         string          `json:"user_addr"`
	CollateralAmount decimal.Decimal `json:"collateral_amount"`
}

func (RemoveCollateralEvent) Kind() EventKind { return EventRemoveCollateral }

func (e RemoveCollateralEvent) activity() activityFields {
	return activityFields{
		UserAddr:         addr(e.UserAddr),
		CollateralAmount: some(e.CollateralAmount),
	}
}

type BorrowEvent struct {
	UserAddr     string          `json:"user_addr"`
	BorrowAmount decimal.Decimal `json:"borrow_amount"`
}

func (BorrowEvent) Kind() EventKind { return EventBorrow }

func (e BorrowEvent) activity() activityFields {
	return activityFields{
		UserAddr:     addr(e.UserAddr),
		BorrowAmount: some(e.BorrowAmount),
	}
}

// RepayEvent stores the repaid amount in the borrow_amount column.
type RepayEvent struct {
	UserAddr    string          `json:"user_addr"`
	RepayAmount decimal.Decimal `json:"repay_amount"`
}

func (RepayEvent) Kind() EventKind { return EventRepay }

func (e RepayEvent) activity() activityFields {
	return activityFields{
		UserAddr:     addr(e.UserAddr),
		BorrowAmount: some(e.RepayAmount),
	}
}

type LiquidationEvent struct {
	UserAddr         string          `json:"user_addr"`
	LiquidatorAddr   string          `json:"liquidator_addr"`
	CollateralAmount decimal.Decimal `json:"collateral_amount"`
	BorrowAmount     decimal.Decimal `json:"borrow_amount"`
}

func (LiquidationEvent) Kind() EventKind { return EventLiquidation }

func (e LiquidationEvent) activity() activityFields {
	return activityFields{
		UserAddr:         addr(e.UserAddr),
		LiquidatorAddr:   addr(e.LiquidatorAddr),
		CollateralAmount: some(e.CollateralAmount),
		BorrowAmount:     some(e.BorrowAmount),
	}
}

type WithdrawFeesEvent struct {
	WithdrawAddr string          `json:"withdraw_addr"`
	FeesEarned   decimal.Decimal `json:"fees_earned"`
	BorrowAmount decimal.Decimal `json:"borrow_amount"`
}

func (WithdrawFeesEvent) Kind() EventKind { return EventWithdrawFees }

func (e WithdrawFeesEvent) activity() activityFields {
	return activityFields{
		WithdrawAddr: addr(e.WithdrawAddr),
		FeesEarned:   some(e.FeesEarned),
		BorrowAmount: some(e.BorrowAmount),
	}
}

type InterestRateChangeEvent struct {
	OldInterestPerSecond decimal.Decimal `json:"old_interest_per_second"`
	NewInterestPerSecond decimal.Decimal `json:"new_interest_per_second"`
}

func (InterestRateChangeEvent) Kind() EventKind { return EventInterestRateChange }

func (e InterestRateChangeEvent) activity() activityFields {
	return activityFields{
		OldInterestPerSecond: some(e.OldInterestPerSecond),
		NewInterestPerSecond: some(e.NewInterestPerSecond),
	}
}

// newActivity merges the per-kind fields with the event context.
func newActivity(ctx model.EventContext, f activityFields) model.VaultActivity {
	return model.VaultActivity{
		TransactionVersion:   ctx.Version,
		EventCreationNumber:  ctx.CreationNumber,
		EventSequenceNumber:  ctx.SequenceNumber,
		EventIndex:           ctx.Index,
		EventType:            ctx.EventType,
		TypeHash:             ctx.Pair.Hash,
		CollateralType:       ctx.Pair.First,
		BorrowType:           ctx.Pair.Second,
		CollateralAmount:     f.CollateralAmount,
		BorrowAmount:         f.BorrowAmount,
		UserAddr:             f.UserAddr,
		WithdrawAddr:         f.WithdrawAddr,
		LiquidatorAddr:       f.LiquidatorAddr,
		AccruedAmount:        f.AccruedAmount,
		Rate:                 f.Rate,
		FeesEarned:           f.FeesEarned,
		OldInterestPerSecond: f.OldInterestPerSecond,
		NewInterestPerSecond: f.NewInterestPerSecond,
		TransactionTimestamp: ctx.Timestamp,
	}
}

func some(d decimal.Decimal) decimal.NullDecimal {
	return decimal.NewNullDecimal(d)
}

func addr(s string) *string {
	v := chain.StandardizeAddress(s)
	return &v
}

func standardize(s string) string {
	return chain.StandardizeAddress(s)
}
