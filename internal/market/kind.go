package market

// EventKind enumerates the market events the indexer understands.
type EventKind uint8

const (
	_event_kind_beg EventKind = iota
	EventRegisterUser
	EventUpdatePositionLimit
	EventOpenPosition
	EventClosePosition
	EventUpdateMargin
	EventUpdatePositionSize
	EventLiquidatePosition
	EventUpdateTpsl
	EventTriggerTpsl
	EventPlaceLimitOrder
	EventUpdateLimitOrder
	EventCancelLimitOrder
	EventTriggerLimitOrder
	EventUpdateFunding
	_event_kind_end
)

var eventKindNames = [...]string{
	EventRegisterUser:        "RegisterUserEvent",
	EventUpdatePositionLimit: "UpdatePositionLimitEvent",
	EventOpenPosition:        "OpenPositionEvent",
	EventClosePosition:       "ClosePositionEvent",
	EventUpdateMargin:        "UpdateMarginEvent",
	EventUpdatePositionSize:  "UpdatePositionSizeEvent",
	EventLiquidatePosition:   "LiquidatePositionEvent",
	EventUpdateTpsl:          "UpdateTpslEvent",
	EventTriggerTpsl:         "TriggerTpslEvent",
	EventPlaceLimitOrder:     "PlaceLimitOrderEvent",
	EventUpdateLimitOrder:    "UpdateLimitOrderEvent",
	EventCancelLimitOrder:    "CancelLimitOrderEvent",
	EventTriggerLimitOrder:   "TriggerLimitOrderEvent",
	EventUpdateFunding:       "UpdateFundingEvent",
}

func (k EventKind) IsAvailable() bool {
	return k > _event_kind_beg && k < _event_kind_end
}

// String returns the on-chain struct name of the event.
func (k EventKind) String() string {
	if !k.IsAvailable() {
		return "Unknown"
	}
	return eventKindNames[k]
}

// ResourceKind enumerates the market resources the indexer understands.
type ResourceKind uint8

const (
	_resource_kind_beg ResourceKind = iota
	ResourceMarket
	ResourceTrader
	ResourceLimitOrders
	_resource_kind_end
)

func (k ResourceKind) IsAvailable() bool {
	return k > _resource_kind_beg && k < _resource_kind_end
}

var resourceKindNames = [...]string{
	ResourceMarket:      "Market",
	ResourceTrader:      "Trader",
	ResourceLimitOrders: "LimitOrders",
}

// String returns the on-chain struct name of the resource.
func (k ResourceKind) String() string {
	if !k.IsAvailable() {
		return "Unknown"
	}
	return resourceKindNames[k]
}
