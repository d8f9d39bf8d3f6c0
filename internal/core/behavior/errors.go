package behavior

import "errors"

var (
	ErrUnknownBehavior = errors.New("unknown behavior")
	ErrInvalidScript   = errors.New("invalid behavior script")
)
