package behavior

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/zeusync/crobots/internal/core/models"
	"gopkg.in/yaml.v3"
)

// Aim bases.
const (
	BaseHeading  = "heading"
	BaseAbsolute = "absolute"
	BaseRandom   = "random"
)

// Script is a declarative robot behaviour loaded from YAML. Each section is
// optional; a missing section issues no command.
//
//	name: Spinner
//	color: "#ff8800"
//	drive:  { base: heading, offset: 5, speed: 2 }
//	walls:  { margin: 100, turn: 90 }
//	scan:   { base: heading, offset: 180, resolution: 5 }
//	cannon: { base: heading, offset: 180, range: 500, chance: 30 }
type Script struct {
	Name   string        `yaml:"name"`
	Color  *models.Color `yaml:"color,omitempty"`
	Drive  *DriveRule    `yaml:"drive,omitempty"`
	Walls  *WallRule     `yaml:"walls,omitempty"`
	Scan   *ScanRule     `yaml:"scan,omitempty"`
	Cannon *CannonRule   `yaml:"cannon,omitempty"`
}

// Aim computes a direction relative to the robot.
type Aim struct {
	Base   string  `yaml:"base"`
	Offset float64 `yaml:"offset"`
	Jitter int     `yaml:"jitter"`
}

type DriveRule struct {
	Aim   `yaml:",inline"`
	Speed float64 `yaml:"speed"`
}

// WallRule turns the robot by Turn degrees whenever it is within Margin of
// any wall.
type WallRule struct {
	Margin float64 `yaml:"margin"`
	Turn   float64 `yaml:"turn"`
}

type ScanRule struct {
	Aim        `yaml:",inline"`
	Resolution float64 `yaml:"resolution"`
}

// CannonRule aims the turret with probability Chance percent per tick
// (100 when unset).
type CannonRule struct {
	Aim    `yaml:",inline"`
	Range  float64 `yaml:"range"`
	Chance *int    `yaml:"chance,omitempty"`
}

// LoadScript decodes and validates a script.
func LoadScript(r io.Reader) (*Script, error) {
	var s Script
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&s); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty document", ErrInvalidScript)
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidScript, err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// LoadScriptFile reads a script from path.
func LoadScriptFile(path string) (*Script, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open behavior script: %w", err)
	}
	defer f.Close()

	s, err := LoadScript(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// Validate checks the script for values the runtime cannot interpret.
func (s *Script) Validate() error {
	if s.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidScript)
	}
	aims := map[string]*Aim{}
	if s.Drive != nil {
		aims["drive"] = &s.Drive.Aim
		if s.Drive.Speed < 0 {
			return fmt.Errorf("%w: drive speed must not be negative", ErrInvalidScript)
		}
	}
	if s.Scan != nil {
		aims["scan"] = &s.Scan.Aim
	}
	if s.Cannon != nil {
		aims["cannon"] = &s.Cannon.Aim
		if c := s.Cannon.Chance; c != nil && (*c < 0 || *c > 100) {
			return fmt.Errorf("%w: cannon chance %d outside 0..100", ErrInvalidScript, *c)
		}
	}
	if s.Walls != nil && s.Walls.Margin < 0 {
		return fmt.Errorf("%w: walls margin must not be negative", ErrInvalidScript)
	}
	for section, aim := range aims {
		switch aim.Base {
		case "", BaseHeading, BaseAbsolute, BaseRandom:
		default:
			return fmt.Errorf("%w: %s: unknown base %q", ErrInvalidScript, section, aim.Base)
		}
		if aim.Jitter < 0 {
			return fmt.Errorf("%w: %s: jitter must not be negative", ErrInvalidScript, section)
		}
	}
	return nil
}

// Controller returns a controller running this script.
func (s *Script) Controller() models.Controller {
	return scriptController{script: s}
}

type scriptController struct {
	script *Script
}

func (c scriptController) Execute(api *models.API) {
	s := c.script

	speed := api.Speed()
	if s.Drive != nil {
		speed = s.Drive.Speed
		api.Drive(s.Drive.direction(api), speed)
	}
	if s.Walls != nil && nearWall(api, s.Walls.Margin) {
		api.Drive(api.Heading()+s.Walls.Turn, speed)
	}
	if s.Scan != nil {
		api.Scan(s.Scan.direction(api), s.Scan.Resolution)
	}
	if s.Cannon != nil {
		chance := 100
		if s.Cannon.Chance != nil {
			chance = *s.Cannon.Chance
		}
		if chance >= 100 || api.Random(100) < chance {
			api.Cannon(s.Cannon.direction(api), s.Cannon.Range)
		}
	}
}

func (a Aim) direction(api *models.API) float64 {
	var dir float64
	switch a.Base {
	case BaseAbsolute:
		dir = a.Offset
	case BaseRandom:
		dir = float64(api.Random(360)) + a.Offset
	default:
		dir = api.Heading() + a.Offset
	}
	if a.Jitter > 0 {
		dir += float64(api.Random(2*a.Jitter+1) - a.Jitter)
	}
	return dir
}
