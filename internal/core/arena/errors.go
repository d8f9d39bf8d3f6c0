package arena

import "errors"

var ErrNilRobot = errors.New("robot is nil")
