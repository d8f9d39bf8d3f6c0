package match

import "errors"

var (
	ErrNotEnoughRobots = errors.New("at least two robots are required to start a match")
	ErrNoRounds        = errors.New("tournament needs at least one round")
	ErrInvalidTickRate = errors.New("tick rate too high to pace")
)
