package vault

import (
	"github.com/shopspring/decimal"

	"mirage-indexer/internal/codec"
	"mirage-indexer/internal/model"
)

// Resource is a decoded vault resource.
type Resource interface {
	project(ctx model.WriteContext) model.Batch
}

// FeeInfo tracks accrued protocol fees.
type FeeInfo struct {
	LastTime   decimal.Decimal `json:"last_time"`
	FeesEarned codec.Coin      `json:"fees_earned"`
}

// Vault is the lending state of one collateral/borrow pair.
type Vault struct {
	TotalCollateral       decimal.Decimal `json:"total_collateral"`
	Borrow                codec.Rebase    `json:"borrow"`
	Fees                  FeeInfo         `json:"fees"`
	InterestPerSecond     decimal.Decimal `json:"interest_per_second"`
	CollateralizationRate decimal.Decimal `json:"collateralization_rate"`
	LiquidationMultiplier decimal.Decimal `json:"liquidation_multiplier"`
	BorrowFee             decimal.Decimal `json:"borrow_fee"`
	DistributionPart      decimal.Decimal `json:"distribution_part"`
	FeeTo                 string          `json:"fee_to"`
	CachedExchangeRate    decimal.Decimal `json:"cached_exchange_rate"`
	LastInterestUpdate    decimal.Decimal `json:"last_interest_update"`
	Emergency             bool            `json:"emergency"`
	DevCut                decimal.Decimal `json:"dev_cut"`
}

func (v Vault) project(ctx model.WriteContext) model.Batch {
	return model.Batch{Vaults: []model.Vault{{
		TransactionVersion:    ctx.Version,
		CollateralType:        ctx.Pair.First,
		BorrowType:            ctx.Pair.Second,
		TypeHash:              ctx.Pair.Hash,
		TotalCollateral:       v.TotalCollateral,
		BorrowElastic:         v.Borrow.Elastic,
		BorrowBase:            v.Borrow.Base,
		LastFeesAccrueTime:    v.Fees.LastTime,
		FeesAccrued:           v.Fees.FeesEarned.Value,
		InterestPerSecond:     v.InterestPerSecond,
		CollateralizationRate: v.CollateralizationRate,
		LiquidationMultiplier: v.LiquidationMultiplier,
		BorrowFee:             v.BorrowFee,
		DistributionPart:      v.DistributionPart,
		FeeTo:                 standardize(v.FeeTo),
		CachedExchangeRate:    v.CachedExchangeRate,
		LastInterestUpdate:    v.LastInterestUpdate,
		IsEmergency:           v.Emergency,
		DevCut:                v.DevCut,
		TransactionTimestamp:  ctx.Timestamp,
	}}}
}

// UserInfo is one user's position inside a vault. The owner is the account
// the resource is stored under.
type UserInfo struct {
	UserCollateral codec.Coin      `json:"user_collateral"`
	UserBorrowPart decimal.Decimal `json:"user_borrow_part"`
}

func (u UserInfo) project(ctx model.WriteContext) model.Batch {
	return model.Batch{VaultUsers: []model.VaultUser{{
		TransactionVersion:   ctx.Version,
		CollateralType:       ctx.Pair.First,
		BorrowType:           ctx.Pair.Second,
		TypeHash:             ctx.Pair.Hash,
		UserAddr:             ctx.Address,
		UserCollateral:       u.UserCollateral.Value,
		UserBorrowPart:       u.UserBorrowPart,
		TransactionTimestamp: ctx.Timestamp,
	}}}
}
