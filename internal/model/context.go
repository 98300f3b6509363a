package model

import (
	"time"

	"mirage-indexer/internal/typeid"
)

// WriteContext carries the transaction data a resource write is projected with.
type WriteContext struct {
	Version   int64
	Timestamp time.Time
	// Address is the standardized account that owns the resource.
	Address string
	Pair    typeid.Pair
}

// EventContext carries the transaction data an event is projected with.
type EventContext struct {
	Version        int64
	Timestamp      time.Time
	Index          int64
	CreationNumber int64
	SequenceNumber int64
	EventType      string
	Pair           typeid.Pair
}
