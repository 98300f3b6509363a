// Package market decodes and projects the perpetuals module.
package market

import (
	"time"

	"mirage-indexer/internal/chain"
	"mirage-indexer/internal/codec"
	"mirage-indexer/internal/model"
	"mirage-indexer/internal/typeid"
	"mirage-indexer/pkg/exception"
)

// ModuleName is the Move module name of the perpetuals module.
const ModuleName = "market"

// typeArgCount is the number of generic parameters of every market struct.
const typeArgCount = 2

var resourceDecoders = map[string]func([]byte) (Resource, error){
	ResourceMarket.String():      decodeResource[Market],
	ResourceTrader.String():      decodeResource[Trader],
	ResourceLimitOrders.String(): decodeResource[LimitOrders],
}

var eventDecoders = map[string]func([]byte) (Event, error){
	EventRegisterUser.String():        decodeEvent[RegisterUserEvent],
	EventUpdatePositionLimit.String(): decodeEvent[UpdatePositionLimitEvent],
	EventOpenPosition.String():        decodeEvent[OpenPositionEvent],
	EventClosePosition.String():       decodeEvent[ClosePositionEvent],
	EventUpdateMargin.String():        decodeEvent[UpdateMarginEvent],
	EventUpdatePositionSize.String():  decodeEvent[UpdatePositionSizeEvent],
	EventLiquidatePosition.String():   decodeEvent[LiquidatePositionEvent],
	EventUpdateTpsl.String():          decodeEvent[UpdateTpslEvent],
	EventTriggerTpsl.String():         decodeEvent[TriggerTpslEvent],
	EventPlaceLimitOrder.String():     decodeEvent[PlaceLimitOrderEvent],
	EventUpdateLimitOrder.String():    decodeEvent[UpdateLimitOrderEvent],
	EventCancelLimitOrder.String():    decodeEvent[CancelLimitOrderEvent],
	EventTriggerLimitOrder.String():   decodeEvent[TriggerLimitOrderEvent],
	EventUpdateFunding.String():       decodeEvent[UpdateFundingEvent],
}

func decodeResource[T Resource](payload []byte) (Resource, error) {
	v, err := codec.Decode[T](payload)
	if err != nil {
		return nil, err
	}
	return v, nil
}

func decodeEvent[T Event](payload []byte) (Event, error) {
	v, err := codec.Decode[T](payload)
	if err != nil {
		return nil, err
	}
	return v, nil
}

// Registry recognizes market resources and events published at one address.
type Registry struct {
	address string
}

// NewRegistry returns a registry bound to the protocol address.
func NewRegistry(address string) *Registry {
	return &Registry{address: chain.StandardizeAddress(address)}
}

func (r *Registry) Name() string {
	return ModuleName
}

func (r *Registry) matches(tag chain.StructTag) bool {
	return tag.InModule(r.address, ModuleName, typeArgCount)
}

// IsResourceSupported reports whether tag names a known market resource.
func (r *Registry) IsResourceSupported(tag chain.StructTag) bool {
	_, ok := resourceDecoders[tag.Name]
	return ok && r.matches(tag)
}

// IsEventSupported reports whether tag names a known market event.
func (r *Registry) IsEventSupported(tag chain.StructTag) bool {
	_, ok := eventDecoders[tag.Name]
	return ok && r.matches(tag)
}

// DecodeResource decodes payload as the resource called name.
func (r *Registry) DecodeResource(name string, payload []byte, version int64) (Resource, error) {
	decode, ok := resourceDecoders[name]
	if !ok {
		return nil, codec.NewDecodeError(version, name, payload, exception.ErrUnregisteredKind)
	}
	res, err := decode(payload)
	if err != nil {
		return nil, codec.NewDecodeError(version, name, payload, err)
	}
	return res, nil
}

// DecodeEvent decodes payload as the event called name.
func (r *Registry) DecodeEvent(name string, payload []byte, version int64) (Event, error) {
	decode, ok := eventDecoders[name]
	if !ok {
		return nil, codec.NewDecodeError(version, name, payload, exception.ErrUnregisteredKind)
	}
	ev, err := decode(payload)
	if err != nil {
		return nil, codec.NewDecodeError(version, name, payload, err)
	}
	return ev, nil
}

// HandleWrite decodes and projects one supported resource write.
func (r *Registry) HandleWrite(tag chain.StructTag, owner string, payload []byte, version int64, ts time.Time) (model.Batch, error) {
	res, err := r.DecodeResource(tag.Name, payload, version)
	if err != nil {
		return model.Batch{}, err
	}
	return ProjectResource(res, model.WriteContext{
		Version:   version,
		Timestamp: ts,
		Address:   chain.StandardizeAddress(owner),
		Pair:      typeid.NewPair(tag.GenericTypeParams[0], tag.GenericTypeParams[1]),
	}), nil
}

// HandleEvent decodes and projects one supported event at position index.
func (r *Registry) HandleEvent(tag chain.StructTag, ev chain.Event, index int, version int64, ts time.Time) (model.Batch, error) {
	decoded, err := r.DecodeEvent(tag.Name, ev.Data, version)
	if err != nil {
		return model.Batch{}, err
	}
	return ProjectEvent(decoded, model.EventContext{
		Version:        version,
		Timestamp:      ts,
		Index:          int64(index),
		CreationNumber: ev.GUID.CreationNumber.Int64(),
		SequenceNumber: ev.SequenceNumber.Int64(),
		Pair:           typeid.NewPair(tag.GenericTypeParams[0], tag.GenericTypeParams[1]),
	}), nil
}
