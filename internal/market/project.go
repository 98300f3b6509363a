package market

import (
	"mirage-indexer/internal/chain"
	"mirage-indexer/internal/model"
)

// ProjectResource turns a decoded resource into snapshot records.
func ProjectResource(res Resource, ctx model.WriteContext) model.Batch {
	return res.project(ctx)
}

// ProjectEvent turns a decoded event into its activity row and any trade
// or order marker it implies.
func ProjectEvent(ev Event, ctx model.EventContext) model.Batch {
	ctx.EventType = ev.Kind().String()
	p := ev.payload()
	b := model.Batch{MarketActivities: []model.MarketActivity{newActivity(ctx, p.activity)}}

	if p.trade != nil {
		b.Trades = []model.Trade{{
			TransactionVersion:   ctx.Version,
			EventIndex:           ctx.Index,
			TypeHash:             ctx.Pair.Hash,
			MarginType:           ctx.Pair.First,
			PerpType:             ctx.Pair.Second,
			UserAddr:             chain.StandardizeAddress(p.trade.user),
			ID:                   p.trade.id,
			IsLong:               p.trade.isLong,
			Size:                 p.trade.size,
			Price:                p.trade.price,
			Fee:                  p.trade.fee,
			Pnl:                  p.trade.pnl,
			TransactionTimestamp: ctx.Timestamp,
		}}
	}

	switch p.marker {
	case markerOpen:
		b.OpenLimitOrders = []model.OpenLimitOrder{{
			TransactionVersion:   ctx.Version,
			TypeHash:             ctx.Pair.Hash,
			MarginType:           ctx.Pair.First,
			PerpType:             ctx.Pair.Second,
			UserAddr:             chain.StandardizeAddress(p.orderUser),
			ID:                   p.orderID,
			TransactionTimestamp: ctx.Timestamp,
		}}
	case markerClose:
		b.ClosedLimitOrders = []model.ClosedLimitOrder{{
			TransactionVersion:   ctx.Version,
			TypeHash:             ctx.Pair.Hash,
			MarginType:           ctx.Pair.First,
			PerpType:             ctx.Pair.Second,
			UserAddr:             chain.StandardizeAddress(p.orderUser),
			ID:                   p.orderID,
			TransactionTimestamp: ctx.Timestamp,
		}}
	}
	return b
}

// newActivity merges the per-kind fields with the event context.
func newActivity(ctx model.EventContext, f activityFields) model.MarketActivity {
	return model.MarketActivity{
		TransactionVersion:   ctx.Version,
		EventCreationNumber:  ctx.CreationNumber,
		EventSequenceNumber:  ctx.SequenceNumber,
		EventIndex:           ctx.Index,
		EventType:            ctx.EventType,
		TypeHash:             ctx.Pair.Hash,
		MarginType:           ctx.Pair.First,
		PerpType:             ctx.Pair.Second,
		UserAddr:             f.UserAddr,
		PositionLimit:        f.PositionLimit,
		ID:                   f.ID,
		PerpPrice:            f.PerpPrice,
		IsLong:               f.IsLong,
		MarginAmount:         f.MarginAmount,
		PositionSize:         f.PositionSize,
		MaintenanceMargin:    f.MaintenanceMargin,
		Fee:                  f.Fee,
		Pnl:                  f.Pnl,
		CallerAddr:           f.CallerAddr,
		TakeProfitPrice:      f.TakeProfitPrice,
		StopLossPrice:        f.StopLossPrice,
		TriggerPrice:         f.TriggerPrice,
		MaxPriceSlippage:     f.MaxPriceSlippage,
		IsIncrease:           f.IsIncrease,
		TriggersAbove:        f.TriggersAbove,
		TriggerPaymentAmount: f.TriggerPaymentAmount,
		Expiration:           f.Expiration,
		NextFundingPos:       f.NextFundingPos,
		NextFundingRate:      f.NextFundingRate,
		TransactionTimestamp: ctx.Timestamp,
	}
}
