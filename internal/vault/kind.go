package vault

// EventKind enumerates the vault events the indexer understands.
type EventKind uint8

const (
	_event_kind_beg EventKind = iota
	EventExchangeRate
	EventAccrueFees
	EventRegisterUser
	EventAddCollateral
	EventRemoveCollateral
	EventBorrow
	EventRepay
	EventLiquidation
	EventWithdrawFees
	EventInterestRateChange
	_event_kind_end
)

var eventKindNames = [...]string{
	EventExchangeRate:       "ExchangeRateEvent",
	EventAccrueFees:         "AccrueFeesEvent",
	EventRegisterUser:       "RegisterUserEvent",
	EventAddCollateral:      "AddCollateralEvent",
	EventRemoveCollateral:   "RemoveCollateralEvent",
	EventBorrow:             "BorrowEvent",
	EventRepay:              "RepayEvent",
	EventLiquidation:        "LiquidationEvent",
	EventWithdrawFees:       "WithdrawFeesEvent",
	EventInterestRateChange: "InterestRateChangeEvent",
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

// ResourceKind enumerates the vault resources the indexer understands.
type ResourceKind uint8

const (
	_resource_kind_beg ResourceKind = iota
	ResourceVault
	ResourceUserInfo
	_resource_kind_end
)

func (k ResourceKind) IsAvailable() bool {
	return k > _resource_kind_beg && k < _resource_kind_end
}

var resourceKindNames = [...]string{
	ResourceVault:    "Vault",
	ResourceUserInfo: "UserInfo",
}

// String returns the on-chain struct name of the resource.
func (k ResourceKind) String() string {
	if !k.IsAvailable() {
		return "Unknown"
	}
	return resourceKindNames[k]
}
