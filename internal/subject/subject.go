// Package subject expands a modifier's collection into the game entities it
// may apply to and filters them by the modifier's subject requirements.
package subject

import (
	"errors"
	"fmt"

	"github.com/cory-johannsen/yieldpreview/internal/gamestate"
)

// ErrKindMismatch is returned when a rule reads a subject kind it does not
// support.
var ErrKindMismatch = errors.New("subject kind mismatch")

// Kind discriminates Subject.
type Kind int

const (
	// Empty is the "nothing resolvable" sentinel. Effects on it contribute zero.
	Empty Kind = iota
	City
	Plot
	Player
	Unit
)

// String returns the name of k.
func (k Kind) String() string {
	switch k {
	case Empty:
		return "Empty"
	case City:
		return "City"
	case Plot:
		return "Plot"
	case Player:
		return "Player"
	case Unit:
		return "Unit"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Subject is a game entity a modifier applies to. Only the fields matching
// Kind are set, except that a Plot subject always carries its owning City.
type Subject struct {
	Kind   Kind
	Player *gamestate.Player
	City   *gamestate.City
	Plot   *gamestate.Plot
	Unit   *gamestate.Unit
}

// EmptySubject returns the sentinel.
func EmptySubject() Subject { return Subject{Kind: Empty} }

// CitySubject wraps c.
func CitySubject(c *gamestate.City) Subject { return Subject{Kind: City, City: c} }

// PlotSubject wraps p, owned by c.
func PlotSubject(c *gamestate.City, p *gamestate.Plot) Subject {
	return Subject{Kind: Plot, City: c, Plot: p}
}

// PlayerSubject wraps p.
func PlayerSubject(p *gamestate.Player) Subject { return Subject{Kind: Player, Player: p} }

// UnitSubject wraps u.
func UnitSubject(u *gamestate.Unit) Subject { return Subject{Kind: Unit, Unit: u} }

// PlotIndex returns the map plot a subject stands on: a plot's own index, a
// city's centre, or a unit's location.
func (s Subject) PlotIndex() (int, bool) {
	switch s.Kind {
	case Plot:
		return s.Plot.Index, true
	case City:
		return s.City.Location, true
	case Unit:
		return s.Unit.Plot, true
	default:
		return 0, false
	}
}

// String renders s for logs.
func (s Subject) String() string {
	switch s.Kind {
	case City:
		return fmt.Sprintf("City(%d %s)", s.City.ID, s.City.Name)
	case Plot:
		return fmt.Sprintf("Plot(%d of city %d)", s.Plot.Index, s.City.ID)
	case Player:
		return fmt.Sprintf("Player(%d)", s.Player.ID)
	case Unit:
		return fmt.Sprintf("Unit(%d %s)", s.Unit.ID, s.Unit.Type)
	default:
		return "Empty"
	}
}
