package model

import (
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

// Market is the latest state of one margin/perp market.
type Market struct {
	TransactionVersion      int64           `gorm:"column:transaction_version;not null" json:"transaction_version"`
	MarginType              string          `gorm:"column:margin_type;type:varchar(512);not null" json:"margin_type"`
	PerpType                string          `gorm:"column:perp_type;type:varchar(512);not null" json:"perp_type"`
	TypeHash                string          `gorm:"column:type_hash;type:varchar(64);not null" json:"type_hash"`
	TotalLongMargin         decimal.Decimal `gorm:"column:total_long_margin;type:numeric;not null" json:"total_long_margin"`
	TotalShortMargin        decimal.Decimal `gorm:"column:total_short_margin;type:numeric;not null" json:"total_short_margin"`
	LongOpenInterest        decimal.Decimal `gorm:"column:long_oi;type:numeric;not null" json:"long_oi"`
	ShortOpenInterest       decimal.Decimal `gorm:"column:short_oi;type:numeric;not null" json:"short_oi"`
	LongFundingAccumulated  decimal.Decimal `gorm:"column:long_funding_accumulated;type:numeric;not null" json:"long_funding_accumulated"`
	ShortFundingAccumulated decimal.Decimal `gorm:"column:short_funding_accumulated;type:numeric;not null" json:"short_funding_accumulated"`
	NextFundingPos          bool            `gorm:"column:next_funding_pos;not null" json:"next_funding_pos"`
	NextFundingRate         decimal.Decimal `gorm:"column:next_funding_rate;type:numeric;not null" json:"next_funding_rate"`
	LastFundingRound        decimal.Decimal `gorm:"column:last_funding_round;type:numeric;not null" json:"last_funding_round"`
	IsLongCloseOnly         bool            `gorm:"column:is_long_close_only;not null" json:"is_long_close_only"`
	IsShortCloseOnly        bool            `gorm:"column:is_short_close_only;not null" json:"is_short_close_only"`
	TransactionTimestamp    time.Time       `gorm:"column:transaction_timestamp;not null" json:"transaction_timestamp"`
}

func (Market) TableName() string { return TableMarkets.Name }
func (Market) Table() Table      { return TableMarkets }
func (m Market) Key() string     { return m.TypeHash }
func (m Market) Version() int64  { return m.TransactionVersion }

// MarketConfig is the latest configuration of one market.
type MarketConfig struct {
	TransactionVersion   int64           `gorm:"column:transaction_version;not null" json:"transaction_version"`
	MarginType           string          `gorm:"column:margin_type;type:varchar(512);not null" json:"margin_type"`
	PerpType             string          `gorm:"column:perp_type;type:varchar(512);not null" json:"perp_type"`
	TypeHash             string          `gorm:"column:type_hash;type:varchar(64);not null" json:"type_hash"`
	MaxLeverage          decimal.Decimal `gorm:"column:max_leverage;type:numeric;not null" json:"max_leverage"`
	MinOrderSize         decimal.Decimal `gorm:"column:min_order_size;type:numeric;not null" json:"min_order_size"`
	MaxOrderSize         decimal.Decimal `gorm:"column:max_order_size;type:numeric;not null" json:"max_order_size"`
	MaxOpenInterest      decimal.Decimal `gorm:"column:max_oi;type:numeric;not null" json:"max_oi"`
	MaxOpenInterestDiff  decimal.Decimal `gorm:"column:max_oi_imbalance;type:numeric;not null" json:"max_oi_imbalance"`
	MaintenanceMargin    decimal.Decimal `gorm:"column:maintenance_margin;type:numeric;not null" json:"maintenance_margin"`
	BaseMakerFee         decimal.Decimal `gorm:"column:base_maker_fee;type:numeric;not null" json:"base_maker_fee"`
	BaseTakerFee         decimal.Decimal `gorm:"column:base_taker_fee;type:numeric;not null" json:"base_taker_fee"`
	LiquidationFee       decimal.Decimal `gorm:"column:liquidation_fee;type:numeric;not null" json:"liquidation_fee"`
	MinFundingRate       decimal.Decimal `gorm:"column:min_funding_rate;type:numeric;not null" json:"min_funding_rate"`
	MaxFundingRate       decimal.Decimal `gorm:"column:max_funding_rate;type:numeric;not null" json:"max_funding_rate"`
	FundingInterval      decimal.Decimal `gorm:"column:funding_interval;type:numeric;not null" json:"funding_interval"`
	TransactionTimestamp time.Time       `gorm:"column:transaction_timestamp;not null" json:"transaction_timestamp"`
}

func (MarketConfig) TableName() string { return TableMarketConfigs.Name }
func (MarketConfig) Table() Table      { return TableMarketConfigs }
func (c MarketConfig) Key() string     { return c.TypeHash }
func (c MarketConfig) Version() int64  { return c.TransactionVersion }

// Position is the latest state of one open position.
type Position struct {
	TransactionVersion     int64           `gorm:"column:transaction_version;not null" json:"transaction_version"`
	MarginType             string          `gorm:"column:margin_type;type:varchar(512);not null" json:"margin_type"`
	PerpType               string          `gorm:"column:perp_type;type:varchar(512);not null" json:"perp_type"`
	TypeHash               string          `gorm:"column:type_hash;type:varchar(64);not null" json:"type_hash"`
	UserAddr               string          `gorm:"column:user_addr;type:varchar(66);not null" json:"user_addr"`
	ID                     decimal.Decimal `gorm:"column:id;type:numeric;not null" json:"id"`
	IsLong                 bool            `gorm:"column:is_long;not null" json:"is_long"`
	OpeningPrice           decimal.Decimal `gorm:"column:opening_price;type:numeric;not null" json:"opening_price"`
	Margin                 decimal.Decimal `gorm:"column:margin;type:numeric;not null" json:"margin"`
	PositionSize           decimal.Decimal `gorm:"column:position_size;type:numeric;not null" json:"position_size"`
	MaintenanceMargin      decimal.Decimal `gorm:"column:maintenance_margin;type:numeric;not null" json:"maintenance_margin"`
	TakeProfitPrice        decimal.Decimal `gorm:"column:take_profit_price;type:numeric;not null" json:"take_profit_price"`
	StopLossPrice          decimal.Decimal `gorm:"column:stop_loss_price;type:numeric;not null" json:"stop_loss_price"`
	LastFundingAccumulated decimal.Decimal `gorm:"column:last_funding_accumulated;type:numeric;not null" json:"last_funding_accumulated"`
	TransactionTimestamp   time.Time       `gorm:"column:transaction_timestamp;not null" json:"transaction_timestamp"`
}

func (Position) TableName() string { return TablePositions.Name }
func (Position) Table() Table      { return TablePositions }
func (p Position) Key() string     { return p.ID.String() }
func (p Position) Version() int64  { return p.TransactionVersion }

// PositionLimit is the latest position count limit of a trader in a market.
type PositionLimit struct {
	TransactionVersion   int64           `gorm:"column:transaction_version;not null" json:"transaction_version"`
	MarginType           string          `gorm:"column:margin_type;type:varchar(512);not null" json:"margin_type"`
	PerpType             string          `gorm:"column:perp_type;type:varchar(512);not null" json:"perp_type"`
	TypeHash             string          `gorm:"column:type_hash;type:varchar(64);not null" json:"type_hash"`
	UserAddr             string          `gorm:"column:user_addr;type:varchar(66);not null" json:"user_addr"`
	PositionLimit        decimal.Decimal `gorm:"column:position_limit;type:numeric;not null" json:"position_limit"`
	TransactionTimestamp time.Time       `gorm:"column:transaction_timestamp;not null" json:"transaction_timestamp"`
}

func (PositionLimit) TableName() string { return TablePositionLimits.Name }
func (PositionLimit) Table() Table      { return TablePositionLimits }
func (l PositionLimit) Key() string     { return joinKey(l.UserAddr, l.TypeHash) }
func (l PositionLimit) Version() int64  { return l.TransactionVersion }

// LimitOrder is the latest state of one resting limit order. OrderIndex is
// the position inside the owner's order list at that version and is
// reassigned on every write.
type LimitOrder struct {
	TransactionVersion   int64           `gorm:"column:transaction_version;not null" json:"transaction_version"`
	MarginType           string          `gorm:"column:margin_type;type:varchar(512);not null" json:"margin_type"`
	PerpType             string          `gorm:"column:perp_type;type:varchar(512);not null" json:"perp_type"`
	TypeHash             string          `gorm:"column:type_hash;type:varchar(64);not null" json:"type_hash"`
	UserAddr             string          `gorm:"column:user_addr;type:varchar(66);not null" json:"user_addr"`
	ID                   decimal.Decimal `gorm:"column:id;type:numeric;not null" json:"id"`
	OrderIndex           int64           `gorm:"column:order_index;not null" json:"order_index"`
	IsLong               bool            `gorm:"column:is_long;not null" json:"is_long"`
	IsIncrease           bool            `gorm:"column:is_increase;not null" json:"is_increase"`
	PositionSize         decimal.Decimal `gorm:"column:position_size;type:numeric;not null" json:"position_size"`
	Margin               decimal.Decimal `gorm:"column:margin;type:numeric;not null" json:"margin"`
	TriggerPrice         decimal.Decimal `gorm:"column:trigger_price;type:numeric;not null" json:"trigger_price"`
	TriggersAbove        bool            `gorm:"column:triggers_above;not null" json:"triggers_above"`
	TriggerPayment       decimal.Decimal `gorm:"column:trigger_payment;type:numeric;not null" json:"trigger_payment"`
	MaxPriceSlippage     decimal.Decimal `gorm:"column:max_price_slippage;type:numeric;not null" json:"max_price_slippage"`
	Expiration           decimal.Decimal `gorm:"column:expiration;type:numeric;not null" json:"expiration"`
	TransactionTimestamp time.Time       `gorm:"column:transaction_timestamp;not null" json:"transaction_timestamp"`
}

func (LimitOrder) TableName() string { return TableLimitOrders.Name }
func (LimitOrder) Table() Table      { return TableLimitOrders }
func (o LimitOrder) Key() string     { return o.ID.String() }
func (o LimitOrder) Version() int64  { return o.TransactionVersion }

// Trade is a fill derived from an open, close or resize event.
type Trade struct {
	TransactionVersion   int64           `gorm:"column:transaction_version;not null" json:"transaction_version"`
	EventIndex           int64           `gorm:"column:event_index;not null" json:"event_index"`
	TypeHash             string          `gorm:"column:type_hash;type:varchar(64);not null" json:"type_hash"`
	MarginType           string          `gorm:"column:margin_type;type:varchar(512);not null" json:"margin_type"`
	PerpType             string          `gorm:"column:perp_type;type:varchar(512);not null" json:"perp_type"`
	UserAddr             string          `gorm:"column:user_addr;type:varchar(66);not null" json:"user_addr"`
	ID                   decimal.Decimal `gorm:"column:id;type:numeric;not null" json:"id"`
	IsLong               bool            `gorm:"column:is_long;not null" json:"is_long"`
	Size                 decimal.Decimal `gorm:"column:size;type:numeric;not null" json:"size"`
	Price                decimal.Decimal `gorm:"column:price;type:numeric;not null" json:"price"`
	Fee                  decimal.Decimal `gorm:"column:fee;type:numeric;not null" json:"fee"`
	Pnl                  decimal.Decimal `gorm:"column:pnl;type:numeric;not null" json:"pnl"`
	TransactionTimestamp time.Time       `gorm:"column:transaction_timestamp;not null" json:"transaction_timestamp"`
}

func (Trade) TableName() string { return TableTrades.Name }
func (Trade) Table() Table      { return TableTrades }
func (t Trade) Version() int64  { return t.TransactionVersion }
func (t Trade) Key() string {
	return joinKey(t.ID.String(), strconv.FormatInt(t.TransactionVersion, 10), strconv.FormatInt(t.EventIndex, 10))
}

// OpenLimitOrder marks an order id as placed and not yet closed.
type OpenLimitOrder struct {
	TransactionVersion   int64           `gorm:"column:transaction_version;not null" json:"transaction_version"`
	TypeHash             string          `gorm:"column:type_hash;type:varchar(64);not null" json:"type_hash"`
	MarginType           string          `gorm:"column:margin_type;type:varchar(512);not null" json:"margin_type"`
	PerpType             string          `gorm:"column:perp_type;type:varchar(512);not null" json:"perp_type"`
	UserAddr             string          `gorm:"column:user_addr;type:varchar(66);not null" json:"user_addr"`
	ID                   decimal.Decimal `gorm:"column:id;type:numeric;not null" json:"id"`
	TransactionTimestamp time.Time       `gorm:"column:transaction_timestamp;not null" json:"transaction_timestamp"`
}

func (OpenLimitOrder) TableName() string { return TableOpenLimitOrders.Name }
func (OpenLimitOrder) Table() Table      { return TableOpenLimitOrders }
func (o OpenLimitOrder) Key() string     { return o.ID.String() }
func (o OpenLimitOrder) Version() int64  { return o.TransactionVersion }

// ClosedLimitOrder marks an order id as cancelled or triggered. A closed
// id never reopens.
type ClosedLimitOrder struct {
	TransactionVersion   int64           `gorm:"column:transaction_version;not null" json:"transaction_version"`
	TypeHash             string          `gorm:"column:type_hash;type:varchar(64);not null" json:"type_hash"`
	MarginType           string          `gorm:"column:margin_type;type:varchar(512);not null" json:"margin_type"`
	PerpType             string          `gorm:"column:perp_type;type:varchar(512);not null" json:"perp_type"`
	UserAddr             string          `gorm:"column:user_addr;type:varchar(66);not null" json:"user_addr"`
	ID                   decimal.Decimal `gorm:"column:id;type:numeric;not null" json:"id"`
	TransactionTimestamp time.Time       `gorm:"column:transaction_timestamp;not null" json:"transaction_timestamp"`
}

func (ClosedLimitOrder) TableName() string { return TableClosedLimitOrders.Name }
func (ClosedLimitOrder) Table() Table      { return TableClosedLimitOrders }
func (o ClosedLimitOrder) Key() string     { return o.ID.String() }
func (o ClosedLimitOrder) Version() int64  { return o.TransactionVersion }

// MarketActivity is one market event. Only the columns relevant to
// EventType are set.
type MarketActivity struct {
	TransactionVersion   int64               `gorm:"column:transaction_version;not null" json:"transaction_version"`
	EventCreationNumber  int64               `gorm:"column:event_creation_number;not null" json:"event_creation_number"`
	EventSequenceNumber  int64               `gorm:"column:event_sequence_number;not null" json:"event_sequence_number"`
	EventIndex           int64               `gorm:"column:event_index;not null" json:"event_index"`
	EventType            string              `gorm:"column:event_type;type:varchar(64);not null" json:"event_type"`
	TypeHash             string              `gorm:"column:type_hash;type:varchar(64);not null" json:"type_hash"`
	MarginType           string              `gorm:"column:margin_type;type:varchar(512);not null" json:"margin_type"`
	PerpType             string              `gorm:"column:perp_type;type:varchar(512);not null" json:"perp_type"`
	UserAddr             *string             `gorm:"column:user_addr;type:varchar(66)" json:"user_addr"`
	PositionLimit        decimal.NullDecimal `gorm:"column:position_limit;type:numeric" json:"position_limit"`
	ID                   decimal.NullDecimal `gorm:"column:id;type:numeric" json:"id"`
	PerpPrice            decimal.NullDecimal `gorm:"column:perp_price;type:numeric" json:"perp_price"`
	IsLong               *bool               `gorm:"column:is_long" json:"is_long"`
	MarginAmount         decimal.NullDecimal `gorm:"column:margin_amount;type:numeric" json:"margin_amount"`
	PositionSize         decimal.NullDecimal `gorm:"column:position_size;type:numeric" json:"position_size"`
	MaintenanceMargin    decimal.NullDecimal `gorm:"column:maintenance_margin;type:numeric" json:"maintenance_margin"`
	Fee                  decimal.NullDecimal `gorm:"column:fee;type:numeric" json:"fee"`
	Pnl                  decimal.NullDecimal `gorm:"column:pnl;type:numeric" json:"pnl"`
	CallerAddr           *string             `gorm:"column:caller_addr;type:varchar(66)" json:"caller_addr"`
	TakeProfitPrice      decimal.NullDecimal `gorm:"column:take_profit_price;type:numeric" json:"take_profit_price"`
	StopLossPrice        decimal.NullDecimal `gorm:"column:stop_loss_price;type:numeric" json:"stop_loss_price"`
	TriggerPrice         decimal.NullDecimal `gorm:"column:trigger_price;type:numeric" json:"trigger_price"`
	MaxPriceSlippage     decimal.NullDecimal `gorm:"column:max_price_slippage;type:numeric" json:"max_price_slippage"`
	IsIncrease           *bool               `gorm:"column:is_increase" json:"is_increase"`
	TriggersAbove        *bool               `gorm:"column:triggers_above" json:"triggers_above"`
	TriggerPaymentAmount decimal.NullDecimal `gorm:"column:trigger_payment_amount;type:numeric" json:"trigger_payment_amount"`
	Expiration           decimal.NullDecimal `gorm:"column:expiration;type:numeric" json:"expiration"`
	NextFundingPos       *bool               `gorm:"column:next_funding_pos" json:"next_funding_pos"`
	NextFundingRate      decimal.NullDecimal `gorm:"column:next_funding_rate;type:numeric" json:"next_funding_rate"`
	TransactionTimestamp time.Time           `gorm:"column:transaction_timestamp;not null" json:"transaction_timestamp"`
}

func (MarketActivity) TableName() string { return TableMarketActivities.Name }
func (MarketActivity) Table() Table      { return TableMarketActivities }
func (a MarketActivity) Version() int64  { return a.TransactionVersion }
func (a MarketActivity) Key() string {
	return joinKey(strconv.FormatInt(a.TransactionVersion, 10), strconv.FormatInt(a.EventIndex, 10), a.TypeHash)
}
