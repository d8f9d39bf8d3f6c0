package match

import (
	"github.com/zeusync/crobots/internal/core/arena"
	"github.com/zeusync/crobots/internal/core/events/bus"
	"github.com/zeusync/crobots/internal/core/observability/log"
)

// Event types published on the bus.
var (
	EventMatchStarted   = "match.started"
	EventRobotDestroyed = arena.EventRobotDestroyed.String()
	EventBattleWon      = arena.EventBattleWon.String()
	EventMatchFinished  = "match.finished"
)

const eventSource = "match"

// RobotEvent is the payload of robot.destroyed and battle.won.
type RobotEvent struct {
	MatchID string `json:"match_id"`
	Cycle   uint64 `json:"cycle"`
	RobotID string `json:"robot_id"`
	Robot   string `json:"robot"`
}

// StartedEvent is the payload of match.started.
type StartedEvent struct {
	MatchID string   `json:"match_id"`
	Seed    uint64   `json:"seed"`
	Robots  []string `json:"robots"`
}

func (r *Runner) publish(typ string, data any) {
	if r.bus == nil {
		return
	}
	if err := r.bus.Publish(bus.NewEvent(typ, eventSource, data)); err != nil {
		r.logger.Warn("event handler failed", log.String("event", typ), log.Error(err))
	}
}
