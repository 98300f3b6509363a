package exception

import "github.com/yanun0323/errors"

// Persistence errors
var (
	ErrPersistNilBackend   = errors.New("persist: nil backend")
	ErrPersistFallback     = errors.New("persist: commit failed after sanitize fallback")
	ErrPersistInvalidTable = errors.New("persist: invalid table descriptor")
	ErrPersistInvalidText  = errors.New("persist: invalid byte sequence for encoding UTF8")
	ErrPersistDoubleUpdate = errors.New("persist: ON CONFLICT DO UPDATE command cannot affect row a second time")
)
