package market

import (
	"github.com/shopspring/decimal"

	"mirage-indexer/internal/codec"
	"mirage-indexer/internal/model"
)

// Resource is a decoded market resource.
type Resource interface {
	project(ctx model.WriteContext) model.Batch
}

// Config is the parameter set embedded in a Market resource.
type Config struct {
	MaxLeverage       decimal.Decimal `json:"max_leverage"`
	MinOrderSize      decimal.Decimal `json:"min_order_size"`
	MaxOrderSize      decimal.Decimal `json:"max_order_size"`
	MaxOI             decimal.Decimal `json:"max_oi"`
	MaxOIImbalance    decimal.Decimal `json:"max_oi_imbalance"`
	MaintenanceMargin decimal.Decimal `json:"maintenance_margin"`
	BaseMakerFee      decimal.Decimal `json:"base_maker_fee"`
	BaseTakerFee      decimal.Decimal `json:"base_taker_fee"`
	LiquidationFee    decimal.Decimal `json:"liquidation_fee"`
	MinFundingRate    decimal.Decimal `json:"min_funding_rate"`
	MaxFundingRate    decimal.Decimal `json:"max_funding_rate"`
	FundingInterval   decimal.Decimal `json:"funding_interval"`
}

// Market is the state of one margin/perp market.
type Market struct {
	TotalLongMargin         decimal.Decimal `json:"total_long_margin"`
	TotalShortMargin        decimal.Decimal `json:"total_short_margin"`
	LongOI                  decimal.Decimal `json:"long_oi"`
	ShortOI                 decimal.Decimal `json:"short_oi"`
	LongFundingAccumulated  decimal.Decimal `json:"long_funding_accumulated"`
	ShortFundingAccumulated decimal.Decimal `json:"short_funding_accumulated"`
	NextFundingPos          bool            `json:"next_funding_pos"`
	NextFundingRate         decimal.Decimal `json:"next_funding_rate"`
	LastFundingRound        decimal.Decimal `json:"last_funding_round"`
	IsLongCloseOnly         bool            `json:"is_long_close_only"`
	IsShortCloseOnly        bool            `json:"is_short_close_only"`
	Config                  Config          `json:"config"`
}

func (m Market) project(ctx model.WriteContext) model.Batch {
	c := m.Config
	return model.Batch{
		Markets: []model.Market{{
			TransactionVersion:      ctx.Version,
			MarginType:              ctx.Pair.First,
			PerpType:                ctx.Pair.Second,
			TypeHash:                ctx.Pair.Hash,
			TotalLongMargin:         m.TotalLongMargin,
			TotalShortMargin:        m.TotalShortMargin,
			LongOpenInterest:        m.LongOI,
			ShortOpenInterest:       m.ShortOI,
			LongFundingAccumulated:  m.LongFundingAccumulated,
			ShortFundingAccumulated: m.ShortFundingAccumulated,
			NextFundingPos:          m.NextFundingPos,
			NextFundingRate:         m.NextFundingRate,
			LastFundingRound:        m.LastFundingRound,
			IsLongCloseOnly:         m.IsLongCloseOnly,
			IsShortCloseOnly:        m.IsShortCloseOnly,
			TransactionTimestamp:    ctx.Timestamp,
		}},
		MarketConfigs: []model.MarketConfig{{
			TransactionVersion:   ctx.Version,
			MarginType:           ctx.Pair.First,
			PerpType:             ctx.Pair.Second,
			TypeHash:             ctx.Pair.Hash,
			MaxLeverage:          c.MaxLeverage,
			MinOrderSize:         c.MinOrderSize,
			MaxOrderSize:         c.MaxOrderSize,
			MaxOpenInterest:      c.MaxOI,
			MaxOpenInterestDiff:  c.MaxOIImbalance,
			MaintenanceMargin:    c.MaintenanceMargin,
			BaseMakerFee:         c.BaseMakerFee,
			BaseTakerFee:         c.BaseTakerFee,
			LiquidationFee:       c.LiquidationFee,
			MinFundingRate:       c.MinFundingRate,
			MaxFundingRate:       c.MaxFundingRate,
			FundingInterval:      c.FundingInterval,
			TransactionTimestamp: ctx.Timestamp,
		}},
	}
}

// Position is one open position held in a Trader resource.
type Position struct {
	ID                     decimal.Decimal `json:"id"`
	IsLong                 bool            `json:"is_long"`
	OpeningPrice           decimal.Decimal `json:"opening_price"`
	Margin                 codec.Coin      `json:"margin"`
	PositionSize           decimal.Decimal `json:"position_size"`
	MaintenanceMargin      decimal.Decimal `json:"maintenance_margin"`
	TakeProfitPrice        decimal.Decimal `json:"take_profit_price"`
	StopLossPrice          decimal.Decimal `json:"stop_loss_price"`
	LastFundingAccumulated decimal.Decimal `json:"last_funding_accumulated"`
}

// Trader is an account's positions and limit in one market.
type Trader struct {
	PositionLimit decimal.Decimal `json:"position_limit"`
	Positions     []Position      `json:"positions"`
}

func (tr Trader) project(ctx model.WriteContext) model.Batch {
	b := model.Batch{
		PositionLimits: []model.PositionLimit{{
			TransactionVersion:   ctx.Version,
			MarginType:           ctx.Pair.First,
			PerpType:             ctx.Pair.Second,
			TypeHash:             ctx.Pair.Hash,
			UserAddr:             ctx.Address,
			PositionLimit:        tr.PositionLimit,
			TransactionTimestamp: ctx.Timestamp,
		}},
		Positions: make([]model.Position, 0, len(tr.Positions)),
	}
	for _, p := range tr.Positions {
		b.Positions = append(b.Positions, model.Position{
			TransactionVersion:     ctx.Version,
			MarginType:             ctx.Pair.First,
			PerpType:               ctx.Pair.Second,
			TypeHash:               ctx.Pair.Hash,
			UserAddr:               ctx.Address,
			ID:                     p.ID,
			IsLong:                 p.IsLong,
			OpeningPrice:           p.OpeningPrice,
			Margin:                 p.Margin.Value,
			PositionSize:           p.PositionSize,
			MaintenanceMargin:      p.MaintenanceMargin,
			TakeProfitPrice:        p.TakeProfitPrice,
			StopLossPrice:          p.StopLossPrice,
			LastFundingAccumulated: p.LastFundingAccumulated,
			TransactionTimestamp:   ctx.Timestamp,
		})
	}
	return b
}

// Order is one resting limit order held in a LimitOrders resource.
type Order struct {
	ID               decimal.Decimal `json:"id"`
	IsLong           bool            `json:"is_long"`
	IsIncrease       bool            `json:"is_increase"`
	PositionSize     decimal.Decimal `json:"position_size"`
	Margin           codec.Coin      `json:"margin"`
	TriggerPrice     decimal.Decimal `json:"trigger_price"`
	TriggersAbove    bool            `json:"triggers_above"`
	TriggerPayment   codec.Coin      `json:"trigger_payment"`
	MaxPriceSlippage decimal.Decimal `json:"max_price_slippage"`
	Expiration       decimal.Decimal `json:"expiration"`
}

// LimitOrders is an account's ordered list of resting orders.
type LimitOrders struct {
	Orders []Order `json:"orders"`
}

func (lo LimitOrders) project(ctx model.WriteContext) model.Batch {
	rows := make([]model.LimitOrder, 0, len(lo.Orders))
	for i, o := range lo.Orders {
		rows = append(rows, model.LimitOrder{
			TransactionVersion:   ctx.Version,
			MarginType:           ctx.Pair.First,
			PerpType:             ctx.Pair.Second,
			TypeHash:             ctx.Pair.Hash,
			UserAddr:             ctx.Address,
			ID:                   o.ID,
			OrderIndex:           int64(i),
			IsLong:               o.IsLong,
			IsIncrease:           o.IsIncrease,
			PositionSize:         o.PositionSize,
			Margin:               o.Margin.Value,
			TriggerPrice:         o.TriggerPrice,
			TriggersAbove:        o.TriggersAbove,
			TriggerPayment:       o.TriggerPayment.Value,
			MaxPriceSlippage:     o.MaxPriceSlippage,
			Expiration:           o.Expiration,
			TransactionTimestamp: ctx.Timestamp,
		})
	}
	return model.Batch{LimitOrders: rows}
}
