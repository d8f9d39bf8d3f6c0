package models

import "errors"

var ErrInvalidColor = errors.New("invalid color")
