package model

import (
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

// Vault is the latest lending parameters of one collateral/borrow pair.
type Vault struct {
	TransactionVersion    int64           `gorm:"column:transaction_version;not null" json:"transaction_version"`
	CollateralType        string          `gorm:"column:collateral_type;type:varchar(512);not null" json:"collateral_type"`
	BorrowType            string          `gorm:"column:borrow_type;type:varchar(512);not null" json:"borrow_type"`
	TypeHash              string          `gorm:"column:type_hash;type:varchar(64);not null" json:"type_hash"`
	TotalCollateral       decimal.Decimal `gorm:"column:total_collateral;type:numeric;not null" json:"total_collateral"`
	BorrowElastic         decimal.Decimal `gorm:"column:borrow_elastic;type:numeric;not null" json:"borrow_elastic"`
	BorrowBase            decimal.Decimal `gorm:"column:borrow_base;type:numeric;not null" json:"borrow_base"`
	LastFeesAccrueTime    decimal.Decimal `gorm:"column:last_fees_accrue_time;type:numeric;not null" json:"last_fees_accrue_time"`
	FeesAccrued           decimal.Decimal `gorm:"column:fees_accrued;type:numeric;not null" json:"fees_accrued"`
	InterestPerSecond     decimal.Decimal `gorm:"column:interest_per_second;type:numeric;not null" json:"interest_per_second"`
	CollateralizationRate decimal.Decimal `gorm:"column:collateralization_rate;type:numeric;not null" json:"collateralization_rate"`
	LiquidationMultiplier decimal.Decimal `gorm:"column:liquidation_multiplier;type:numeric;not null" json:"liquidation_multiplier"`
	BorrowFee             decimal.Decimal `gorm:"column:borrow_fee;type:numeric;not null" json:"borrow_fee"`
	DistributionPart      decimal.Decimal `gorm:"column:distribution_part;type:numeric;not null" json:"distribution_part"`
	FeeTo                 string          `gorm:"column:fee_to;type:varchar(66);not null" json:"fee_to"`
	CachedExchangeRate    decimal.Decimal `gorm:"column:cached_exchange_rate;type:numeric;not null" json:"cached_exchange_rate"`
	LastInterestUpdate    decimal.Decimal `gorm:"column:last_interest_update;type:numeric;not null" json:"last_interest_update"`
	IsEmergency           bool            `gorm:"column:is_emergency;not null" json:"is_emergency"`
	DevCut                decimal.Decimal `gorm:"column:dev_cut;type:numeric;not null" json:"dev_cut"`
	TransactionTimestamp  time.Time       `gorm:"column:transaction_timestamp;not null" json:"transaction_timestamp"`
}

func (Vault) TableName() string { return TableVaults.Name }
func (Vault) Table() Table      { return TableVaults }
func (v Vault) Key() string     { return v.TypeHash }
func (v Vault) Version() int64  { return v.TransactionVersion }

// VaultUser is the latest position of one user inside a vault.
type VaultUser struct {
	TransactionVersion   int64           `gorm:"column:transaction_version;not null" json:"transaction_version"`
	CollateralType       string          `gorm:"column:collateral_type;type:varchar(512);not null" json:"collateral_type"`
	BorrowType           string          `gorm:"column:borrow_type;type:varchar(512);not null" json:"borrow_type"`
	TypeHash             string          `gorm:"column:type_hash;type:varchar(64);not null" json:"type_hash"`
	UserAddr             string          `gorm:"column:user_addr;type:varchar(66);not null" json:"user_addr"`
	UserCollateral       decimal.Decimal `gorm:"column:user_collateral;type:numeric;not null" json:"user_collateral"`
	UserBorrowPart       decimal.Decimal `gorm:"column:user_borrow_part;type:numeric;not null" json:"user_borrow_part"`
	TransactionTimestamp time.Time       `gorm:"column:transaction_timestamp;not null" json:"transaction_timestamp"`
}

func (VaultUser) TableName() string { return TableVaultUsers.Name }
func (VaultUser) Table() Table      { return TableVaultUsers }
func (u VaultUser) Key() string     { return joinKey(u.UserAddr, u.TypeHash) }
func (u VaultUser) Version() int64  { return u.TransactionVersion }

// VaultActivity is one vault event. Only the columns relevant to
// EventType are set.
type VaultActivity struct {
	TransactionVersion   int64               `gorm:"column:transaction_version;not null" json:"transaction_version"`
	EventCreationNumber  int64               `gorm:"column:event_creation_number;not null" json:"event_creation_number"`
	EventSequenceNumber  int64               `gorm:"column:event_sequence_number;not null" json:"event_sequence_number"`
	EventIndex           int64               `gorm:"column:event_index;not null" json:"event_index"`
	EventType            string              `gorm:"column:event_type;type:varchar(64);not null" json:"event_type"`
	TypeHash             string              `gorm:"column:type_hash;type:varchar(64);not null" json:"type_hash"`
	CollateralType       string              `gorm:"column:collateral_type;type:varchar(512);not null" json:"collateral_type"`
	BorrowType           string              `gorm:"column:borrow_type;type:varchar(512);not null" json:"borrow_type"`
	CollateralAmount     decimal.NullDecimal `gorm:"column:collateral_amount;type:numeric" json:"collateral_amount"`
	BorrowAmount         decimal.NullDecimal `gorm:"column:borrow_amount;type:numeric" json:"borrow_amount"`
	UserAddr             *string             `gorm:"column:user_addr;type:varchar(66)" json:"user_addr"`
	WithdrawAddr         *string             `gorm:"column:withdraw_addr;type:varchar(66)" json:"withdraw_addr"`
	LiquidatorAddr       *string             `gorm:"column:liquidator_addr;type:varchar(66)" json:"liquidator_addr"`
	AccruedAmount        decimal.NullDecimal `gorm:"column:accrued_amount;type:numeric" json:"accrued_amount"`
	Rate                 decimal.NullDecimal `gorm:"column:rate;type:numeric" json:"rate"`
	FeesEarned           decimal.NullDecimal `gorm:"column:fees_earned;type:numeric" json:"fees_earned"`
	OldInterestPerSecond decimal.NullDecimal `gorm:"column:old_interest_per_second;type:numeric" json:"old_interest_per_second"`
	NewInterestPerSecond decimal.NullDecimal `gorm:"column:new_interest_per_second;type:numeric" json:"new_interest_per_second"`
	TransactionTimestamp time.Time           `gorm:"column:transaction_timestamp;not null" json:"transaction_timestamp"`
}

func (VaultActivity) TableName() string { return TableVaultActivities.Name }
func (VaultActivity) Table() Table      { return TableVaultActivities }
func (a VaultActivity) Version() int64  { return a.TransactionVersion }
func (a VaultActivity) Key() string {
	return joinKey(strconv.FormatInt(a.TransactionVersion, 10), strconv.FormatInt(a.EventIndex, 10), a.TypeHash)
}
