package behavior

import (
	"fmt"
	"slices"
	"strings"

	"github.com/zeusync/crobots/internal/core/models"
)

var builtins = map[string]func() models.Controller{
	"sniper":  func() models.Controller { return Sniper{} },
	"rook":    func() models.Controller { return Rook{} },
	"rabbit":  func() models.Controller { return Rabbit{} },
	"counter": func() models.Controller { return Counter{} },
	"hunter":  func() models.Controller { return &Hunter{} },
}

// New returns a fresh instance of the named built-in behaviour. Names are
// case-insensitive.
func New(name string) (models.Controller, error) {
	factory, ok := builtins[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownBehavior, name)
	}
	return factory(), nil
}

// Names lists the built-in behaviours in sorted order.
func Names() []string {
	names := make([]string, 0, len(builtins))
	for name := range builtins {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
