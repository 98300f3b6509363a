package exception

import "github.com/yanun0323/errors"

// Config errors
var (
	ErrConfigInvalid = errors.New("config: invalid")
	ErrConfigAddress = errors.New("config: invalid protocol address")
)
