package arena

import "github.com/zeusync/crobots/internal/core/models"

// EventKind identifies a tick outcome.
type EventKind uint8

const (
	EventRobotDestroyed EventKind = iota + 1
	EventBattleWon
)

func (k EventKind) String() string {
	switch k {
	case EventRobotDestroyed:
		return "robot.destroyed"
	case EventBattleWon:
		return "battle.won"
	default:
		return "unknown"
	}
}

// Event is a notification produced during a tick.
type Event struct {
	Kind  EventKind
	Cycle uint64
	Robot *models.Robot
}

// TickReport lists the events of one Update in the order they occurred.
// Destruction events precede the win check.
type TickReport struct {
	Cycle  uint64
	Events []Event
}

// Winner returns the sole survivor if this tick signalled a win.
func (t TickReport) Winner() (*models.Robot, bool) {
	for _, e := range t.Events {
		if e.Kind == EventBattleWon {
			return e.Robot, true
		}
	}
	return nil, false
}

// Destroyed returns the robots destroyed during this tick.
func (t TickReport) Destroyed() []*models.Robot {
	var out []*models.Robot
	for _, e := range t.Events {
		if e.Kind == EventRobotDestroyed {
			out = append(out, e.Robot)
		}
	}
	return out
}
