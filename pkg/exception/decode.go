package exception

import "github.com/yanun0323/errors"

// Decode errors
var (
	ErrDecodePayload      = errors.New("decode: payload does not match expected shape")
	ErrDecodeMissingField = errors.New("decode: missing field")
	ErrDecodeNumber       = errors.New("decode: malformed number")
	ErrUnregisteredKind   = errors.New("decode: kind is not registered, call IsSupported first")
)
