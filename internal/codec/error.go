package codec

import "fmt"

// DecodeError is returned when a recognized payload cannot be decoded.
type DecodeError struct {
	Version  int64
	TypeName string
	Payload  string
	Err      error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s at version %d: %v, payload: %s", e.TypeName, e.Version, e.Err, e.Payload)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// NewDecodeError wraps err with the version, type name and raw payload.
func NewDecodeError(version int64, typeName string, payload []byte, err error) *DecodeError {
	return &DecodeError{
		Version:  version,
		TypeName: typeName,
		Payload:  string(payload),
		Err:      err,
	}
}
