package market

import (
	"github.com/shopspring/decimal"

	"mirage-indexer/internal/chain"
)

// Event is a decoded market event. Every kind describes the records it
// produces through its payload.
type Event interface {
	Kind() EventKind
	payload() payload
}

type orderMarker uint8

const (
	markerNone orderMarker = iota
	markerOpen
	markerClose
)

// payload is the per-kind part of the records an event produces.
type payload struct {
	activity activityFields
	trade    *fill
	marker   orderMarker
	// user and id of the order marker
	orderUser string
	orderID   decimal.Decimal
}

type fill struct {
	user   string
	id     decimal.Decimal
	isLong bool
	size   decimal.Decimal
	price  decimal.Decimal
	fee    decimal.Decimal
	pnl    decimal.Decimal
}

// activityFields is the per-kind part of a MarketActivity row.
type activityFields struct {
	UserAddr             *string
	PositionLimit        decimal.NullDecimal
	ID                   decimal.NullDecimal
	PerpPrice            decimal.NullDecimal
	IsLong               *bool
	MarginAmount         decimal.NullDecimal
	PositionSize         decimal.NullDecimal
	MaintenanceMargin    decimal.NullDecimal
	Fee                  decimal.NullDecimal
	Pnl                  decimal.NullDecimal
	CallerAddr           *string
	TakeProfitPrice      decimal.NullDecimal
	StopLossPrice        decimal.NullDecimal
	TriggerPrice         decimal.NullDecimal
	MaxPriceSlippage     decimal.NullDecimal
	IsIncrease           *bool
	TriggersAbove        *bool
	TriggerPaymentAmount decimal.NullDecimal
	Expiration           decimal.NullDecimal
	NextFundingPos       *bool
	NextFundingRate      decimal.NullDecimal
}

type RegisterUserEvent struct {
	UserAddr      string          `json:"user_addr"`
	PositionLimit decimal.Decimal `json:"position_limit"`
}

func (RegisterUserEvent) Kind() EventKind { return EventRegisterUser }

func (e RegisterUserEvent) payload() payload {
	return payload{activity: activityFields{
		UserAddr:      addr(e.UserAddr),
		PositionLimit: some(e.PositionLimit),
	}}
}

type UpdatePositionLimitEvent struct {
	UserAddr      string          `json:"user_addr"`
	PositionLimit decimal.Decimal `json:"position_limit"`
}

func (UpdatePositionLimitEvent) Kind() EventKind { return EventUpdatePositionLimit }

func (e UpdatePositionLimitEvent) payload() payload {
	return payload{activity: activityFields{
		UserAddr:      addr(e.UserAddr),
		PositionLimit: some(e.PositionLimit),
	}}
}

type OpenPositionEvent struct {
	UserAddr          string          `json:"user_addr"`
	ID                decimal.Decimal `json:"id"`
	IsLong            bool            `json:"is_long"`
	OpeningPrice      decimal.Decimal `json:"opening_price"`
	MarginAmount      decimal.Decimal `json:"margin_amount"`
	PositionSize      decimal.Decimal `json:"position_size"`
	MaintenanceMargin decimal.Decimal `json:"maintenance_margin"`
	Fee               decimal.Decimal `json:"fee"`
	TakeProfitPrice   decimal.Decimal `json:"take_profit_price"`
	StopLossPrice     decimal.Decimal `json:"stop_loss_price"`
}

func (OpenPositionEvent) Kind() EventKind { return EventOpenPosition }

func (e OpenPositionEvent) payload() payload {
	return payload{
		activity: activityFields{
			UserAddr:          addr(e.UserAddr),
			ID:                some(e.ID),
			PerpPrice:         some(e.OpeningPrice),
			IsLong:            flag(e.IsLong),
			MarginAmount:      some(e.MarginAmount),
			PositionSize:      some(e.PositionSize),
			MaintenanceMargin: some(e.MaintenanceMargin),
			Fee:               some(e.Fee),
			TakeProfitPrice:   some(e.TakeProfitPrice),
			StopLossPrice:     some(e.StopLossPrice),
		},
		trade: &fill{
			user:   e.UserAddr,
			id:     e.ID,
			isLong: e.IsLong,
			size:   e.PositionSize,
			price:  e.OpeningPrice,
			fee:    e.Fee,
			pnl:    decimal.Zero,
		},
	}
}

type ClosePositionEvent struct {
	UserAddr     string          `json:"user_addr"`
	ID           decimal.Decimal `json:"id"`
	IsLong       bool            `json:"is_long"`
	PositionSize decimal.Decimal `json:"position_size"`
	ClosingPrice decimal.Decimal `json:"closing_price"`
	Fee          decimal.Decimal `json:"fee"`
	Pnl          decimal.Decimal `json:"pnl"`
	Winner       bool            `json:"winner"`
}

func (ClosePositionEvent) Kind() EventKind { return EventClosePosition }

func (e ClosePositionEvent) payload() payload {
	pnl := signedPnl(e.Pnl, e.Winner)
	return payload{
		activity: activityFields{
			UserAddr:  addr(e.UserAddr),
			ID:        some(e.ID),
			PerpPrice: some(e.ClosingPrice),
			Fee:       some(e.Fee),
			Pnl:       some(pnl),
		},
		trade: &fill{
			user:   e.UserAddr,
			id:     e.ID,
			isLong: e.IsLong,
			size:   e.PositionSize,
			price:  e.ClosingPrice,
			fee:    e.Fee,
			pnl:    pnl,
		},
	}
}

type UpdateMarginEvent struct {
	UserAddr     string          `json:"user_addr"`
	ID           decimal.Decimal `json:"id"`
	MarginAmount decimal.Decimal `json:"margin_amount"`
}

func (UpdateMarginEvent) Kind() EventKind { return EventUpdateMargin }

func (e UpdateMarginEvent) payload() payload {
	return payload{activity: activityFields{
		UserAddr:     addr(e.UserAddr),
		ID:           some(e.ID),
		MarginAmount: some(e.MarginAmount),
	}}
}

// UpdatePositionSizeEvent records a resize. The trade size is the signed
// change of position size.
type UpdatePositionSizeEvent struct {
	UserAddr         string          `json:"user_addr"`
	ID               decimal.Decimal `json:"id"`
	IsLong           bool            `json:"is_long"`
	PrevPositionSize decimal.Decimal `json:"prev_position_size"`
	PositionSize     decimal.Decimal `json:"position_size"`
	NewOpeningPrice  decimal.Decimal `json:"new_opening_price"`
	Fee              decimal.Decimal `json:"fee"`
	Pnl              decimal.Decimal `json:"pnl"`
	Winner           bool            `json:"winner"`
}

func (UpdatePositionSizeEvent) Kind() EventKind { return EventUpdatePositionSize }

func (e UpdatePositionSizeEvent) payload() payload {
	pnl := signedPnl(e.Pnl, e.Winner)
	return payload{
		activity: activityFields{
			UserAddr:     addr(e.UserAddr),
			ID:           some(e.ID),
			PerpPrice:    some(e.NewOpeningPrice),
			PositionSize: some(e.PositionSize),
			Fee:          some(e.Fee),
			Pnl:          some(pnl),
		},
		trade: &fill{
			user:   e.UserAddr,
			id:     e.ID,
			isLong: e.IsLong,
			size:   e.PositionSize.Sub(e.PrevPositionSize),
			price:  e.NewOpeningPrice,
			fee:    e.Fee,
			pnl:    pnl,
		},
	}
}

type LiquidatePositionEvent struct {
	UserAddr       string          `json:"user_addr"`
	ID             decimal.Decimal `json:"id"`
	LiquidatorAddr string          `json:"liquidator_addr"`
}

func (LiquidatePositionEvent) Kind() EventKind { return EventLiquidatePosition }

func (e LiquidatePositionEvent) payload() payload {
	return payload{activity: activityFields{
		UserAddr:   addr(e.UserAddr),
		ID:         some(e.ID),
		CallerAddr: addr(e.LiquidatorAddr),
	}}
}

type UpdateTpslEvent struct {
	UserAddr        string          `json:"user_addr"`
	ID              decimal.Decimal `json:"id"`
	TakeProfitPrice decimal.Decimal `json:"take_profit_price"`
	StopLossPrice   decimal.Decimal `json:"stop_loss_price"`
}

func (UpdateTpslEvent) Kind() EventKind { return EventUpdateTpsl }

func (e UpdateTpslEvent) payload() payload {
	return payload{activity: activityFields{
		UserAddr:        addr(e.UserAddr),
		ID:              some(e.ID),
		TakeProfitPrice: some(e.TakeProfitPrice),
		StopLossPrice:   some(e.StopLossPrice),
	}}
}

type TriggerTpslEvent struct {
	UserAddr   string          `json:"user_addr"`
	ID         decimal.Decimal `json:"id"`
	CallerAddr string          `json:"caller_addr"`
}

func (TriggerTpslEvent) Kind() EventKind { return EventTriggerTpsl }

func (e TriggerTpslEvent) payload() payload {
	return payload{activity: activityFields{
		UserAddr:   addr(e.UserAddr),
		ID:         some(e.ID),
		CallerAddr: addr(e.CallerAddr),
	}}
}

type PlaceLimitOrderEvent struct {
	UserAddr             string          `json:"user_addr"`
	ID                   decimal.Decimal `json:"id"`
	IsLong               bool            `json:"is_long"`
	MarginAmount         decimal.Decimal `json:"margin_amount"`
	PositionSize         decimal.Decimal `json:"position_size"`
	TriggerPrice         decimal.Decimal `json:"trigger_price"`
	MaxPriceSlippage     decimal.Decimal `json:"max_price_slippage"`
	IsIncrease           bool            `json:"is_increase"`
	TriggersAbove        bool            `json:"triggers_above"`
	Expiration           decimal.Decimal `json:"expiration"`
	TriggerPaymentAmount decimal.Decimal `json:"trigger_payment_amount"`
}

func (PlaceLimitOrderEvent) Kind() EventKind { return EventPlaceLimitOrder }

func (e PlaceLimitOrderEvent) payload() payload {
	return payload{
		activity: activityFields{
			UserAddr:             addr(e.UserAddr),
			ID:                   some(e.ID),
			IsLong:               flag(e.IsLong),
			MarginAmount:         some(e.MarginAmount),
			PositionSize:         some(e.PositionSize),
			TriggerPrice:         some(e.TriggerPrice),
			MaxPriceSlippage:     some(e.MaxPriceSlippage),
			IsIncrease:           flag(e.IsIncrease),
			TriggersAbove:        flag(e.TriggersAbove),
			Expiration:           some(e.Expiration),
			TriggerPaymentAmount: some(e.TriggerPaymentAmount),
		},
		marker:    markerOpen,
		orderUser: e.UserAddr,
		orderID:   e.ID,
	}
}

type UpdateLimitOrderEvent struct {
	UserAddr             string          `json:"user_addr"`
	ID                   decimal.Decimal `json:"id"`
	MarginAmount         decimal.Decimal `json:"margin_amount"`
	PositionSize         decimal.Decimal `json:"position_size"`
	TriggerPrice         decimal.Decimal `json:"trigger_price"`
	MaxPriceSlippage     decimal.Decimal `json:"max_price_slippage"`
	TriggersAbove        bool            `json:"triggers_above"`
	Expiration           decimal.Decimal `json:"expiration"`
	TriggerPaymentAmount decimal.Decimal `json:"trigger_payment_amount"`
}

func (UpdateLimitOrderEvent) Kind() EventKind { return EventUpdateLimitOrder }

func (e UpdateLimitOrderEvent) payload() payload {
	return payload{activity: activityFields{
		UserAddr:             addr(e.UserAddr),
		ID:                   some(e.ID),
		MarginAmount:         some(e.MarginAmount),
		PositionSize:         some(e.PositionSize),
		TriggerPrice:         some(e.TriggerPrice),
		MaxPriceSlippage:     some(e.MaxPriceSlippage),
		TriggersAbove:        flag(e.TriggersAbove),
		Expiration:           some(e.Expiration),
		TriggerPaymentAmount: some(e.TriggerPaymentAmount),
	}}
}

type CancelLimitOrderEvent struct {
	UserAddr string          `json:"user_addr"`
	ID       decimal.Decimal `json:"id"`
}

func (CancelLimitOrderEvent) Kind() EventKind { return EventCancelLimitOrder }

func (e CancelLimitOrderEvent) payload() payload {
	return payload{
		activity: activityFields{
			UserAddr: addr(e.UserAddr),
			ID:       some(e.ID),
		},
		marker:    markerClose,
		orderUser: e.UserAddr,
		orderID:   e.ID,
	}
}

type TriggerLimitOrderEvent struct {
	UserAddr   string          `json:"user_addr"`
	ID         decimal.Decimal `json:"id"`
	CallerAddr string          `json:"caller_addr"`
}

func (TriggerLimitOrderEvent) Kind() EventKind { return EventTriggerLimitOrder }

func (e TriggerLimitOrderEvent) payload() payload {
	return payload{
		activity: activityFields{
			UserAddr:   addr(e.UserAddr),
			ID:         some(e.ID),
			CallerAddr: addr(e.CallerAddr),
		},
		marker:    markerClose,
		orderUser: e.UserAddr,
		orderID:   e.ID,
	}
}

type UpdateFundingEvent struct {
	NextFundingPos  bool            `json:"next_funding_pos"`
	NextFundingRate decimal.Decimal `json:"next_funding_rate"`
}

func (UpdateFundingEvent) Kind() EventKind { return EventUpdateFunding }

func (e UpdateFundingEvent) payload() payload {
	return payload{activity: activityFields{
		NextFundingPos:  flag(e.NextFundingPos),
		NextFundingRate: some(e.NextFundingRate),
	}}
}

// signedPnl negates the unsigned pnl magnitude of a losing trade.
func signedPnl(pnl decimal.Decimal, winner bool) decimal.Decimal {
	if winner {
		return pnl
	}
	return pnl.Neg()
}

func some(d decimal.Decimal) decimal.NullDecimal {
	return decimal.NewNullDecimal(d)
}

func flag(b bool) *bool {
	return &b
}

func addr(s string) *string {
	v := chain.StandardizeAddress(s)
	return &v
}
