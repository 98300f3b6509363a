// Package chain holds the transaction shapes consumed from the node REST API.
package chain

import (
	"encoding/json"
	"strconv"
	"time"

	"github.com/yanun0323/errors"

	"mirage-indexer/pkg/exception"
)

const (
	TypeUserTransaction    = "user_transaction"
	TypeGenesisTransaction = "genesis_transaction"
	TypeBlockMetadata      = "block_metadata_transaction"
	TypeStateCheckpoint    = "state_checkpoint_transaction"

	ChangeWriteResource  = "write_resource"
	ChangeDeleteResource = "delete_resource"
	ChangeWriteModule    = "write_module"
	ChangeWriteTableItem = "write_table_item"
)

// U64 is an unsigned integer that the node encodes as a decimal string.
// Bare JSON numbers are accepted as well.
type U64 uint64

func (u *U64) UnmarshalJSON(b []byte) error {
	if len(b) == 0 || string(b) == "null" {
		*u = 0
		return nil
	}
	if b[0] == '"' {
		if len(b) < 2 || b[len(b)-1] != '"' {
			return errors.Wrap(exception.ErrDecodeNumber, "unterminated string").With("raw", string(b))
		}
		b = b[1 : len(b)-1]
	}
	v, err := strconv.ParseUint(string(b), 10, 64)
	if err != nil {
		return errors.Wrap(exception.ErrDecodeNumber, err.Error()).With("raw", string(b))
	}
	*u = U64(v)
	return nil
}

func (u U64) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(strconv.FormatUint(uint64(u), 10))), nil
}

func (u U64) Int64() int64 {
	return int64(u)
}

// Transaction is one committed transaction. Only user transactions carry
// changes and events that the indexer cares about.
type Transaction struct {
	Type      string           `json:"type"`
	Version   U64              `json:"version"`
	Timestamp U64              `json:"timestamp"`
	Success   bool             `json:"success"`
	Changes   []WriteSetChange `json:"changes"`
	Events    []Event          `json:"events"`
}

// IsUser reports whether the transaction was submitted by a user.
func (t Transaction) IsUser() bool {
	return t.Type == TypeUserTransaction
}

// Time converts the microsecond timestamp into UTC.
func (t Transaction) Time() time.Time {
	return time.UnixMicro(int64(t.Timestamp)).UTC()
}

// WriteSetChange is one state write. Data is only set for resource writes.
type WriteSetChange struct {
	Type    string        `json:"type"`
	Address string        `json:"address"`
	Data    *MoveResource `json:"data,omitempty"`
}

// Resource returns the written resource when the change is a resource write.
func (c WriteSetChange) Resource() (*MoveResource, bool) {
	if c.Type != ChangeWriteResource || c.Data == nil {
		return nil, false
	}
	return c.Data, true
}

// MoveResource is a typed resource with a raw JSON payload.
type MoveResource struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// EventGUID identifies the event handle that emitted an event.
type EventGUID struct {
	CreationNumber U64    `json:"creation_number"`
	AccountAddress string `json:"account_address"`
}

// Event is a notification emitted during execution.
type Event struct {
	GUID           EventGUID       `json:"guid"`
	SequenceNumber U64             `json:"sequence_number"`
	Type           string          `json:"type"`
	Data           json.RawMessage `json:"data"`
}
