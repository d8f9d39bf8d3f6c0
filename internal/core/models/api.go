package models

// Controller decides a robot's commands for one tick. Execute is called once
// per living robot per tick, before the robot integrates its motion.
type Controller interface {
	Execute(api *API)
}

// ControllerFunc adapts a plain function to Controller.
type ControllerFunc func(api *API)

func (f ControllerFunc) Execute(api *API) { f(api) }

// Scanner finds the nearest living robot inside a scan cone.
type Scanner interface {
	ScanForTarget(scanner *Robot, direction, resolution float64) *Robot
}

// API is the bounded view a controller gets of its own robot. It wraps a
// single robot and is reused across ticks.
type API struct {
	robot *Robot
}

func (a *API) X() float64             { return a.robot.position.X }
func (a *API) Y() float64             { return a.robot.position.Y }
func (a *API) Heading() float64       { return a.robot.heading }
func (a *API) TurretHeading() float64 { return a.robot.turretHeading }
func (a *API) Speed() float64         { return a.robot.speed }
func (a *API) Health() int            { return a.robot.health }

func (a *API) Drive(heading, speed float64) { a.robot.Drive(heading, speed) }

func (a *API) Scan(direction, resolution float64) int {
	return a.robot.Scan(direction, resolution)
}

func (a *API) Cannon(direction, rng float64) bool {
	return a.robot.Cannon(direction, rng)
}

// Random returns a uniform integer in [0, n). Non-positive n yields 0.
func (a *API) Random(n int) int {
	if n <= 0 {
		return 0
	}
	return a.robot.rng.IntN(n)
}

// Locate asks the battlefield for the nearest living robot inside the cone
// centred on direction. It reports the distance to it, or false when the cone
// is empty or the robot is not on a battlefield.
func (a *API) Locate(direction, resolution float64) (float64, bool) {
	if a.robot.scanner == nil {
		return 0, false
	}
	target := a.robot.scanner.ScanForTarget(a.robot, direction, resolution)
	if target == nil {
		return 0, false
	}
	return a.robot.DistanceTo(target), true
}
