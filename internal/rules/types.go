// Package rules defines the bot program model: the sensed values a rule can
// match on, the rule itself and the ordered program, together with the pure
// editing operations the editor applies to it.
package rules

// Cell is what may occupy a neighboring grid square.
type Cell string

const (
	CellWall  Cell = "wall"
	CellEmpty Cell = "empty"
	CellGhost Cell = "ghost"
	CellBerry Cell = "berry"
)

// Berry reports whether the level's berry has been eaten.
type Berry string

const (
	BerryTaken    Berry = "taken"
	BerryNotTaken Berry = "notTaken"
)

// State is one of the eight labels of the bot's internal state machine.
type State string

const (
	StateA State = "a"
	StateB State = "b"
	StateC State = "c"
	StateD State = "d"
	StateE State = "e"
	StateF State = "f"
	StateG State = "g"
	StateH State = "h"
)

// Move is the action a matching rule performs.
type Move string

const (
	MoveUp    Move = "up"
	MoveDown  Move = "down"
	MoveLeft  Move = "left"
	MoveRight Move = "right"
	MoveWait  Move = "wait"
)

// Click orders. A field advances to the next element on each click; optional
// fields pass through "absent" after the last element.
var (
	cellOrder  = []Cell{CellWall, CellEmpty, CellGhost, CellBerry}
	berryOrder = []Berry{BerryTaken, BerryNotTaken}
	stateOrder = []State{StateA, StateB, StateC, StateD, StateE, StateF, StateG, StateH}
	moveOrder  = []Move{MoveWait, MoveUp, MoveRight, MoveDown, MoveLeft}
)

// Cells returns every Cell in click order.
func Cells() []Cell { return append([]Cell(nil), cellOrder...) }

// Berries returns every Berry in click order.
func Berries() []Berry { return append([]Berry(nil), berryOrder...) }

// States returns every State in click order.
func States() []State { return append([]State(nil), stateOrder...) }

// Moves returns every Move in click order.
func Moves() []Move { return append([]Move(nil), moveOrder...) }

// Label returns the upper-case letter shown for a state.
func (s State) Label() string {
	switch s {
	case StateA:
		return "A"
	case StateB:
		return "B"
	case StateC:
		return "C"
	case StateD:
		return "D"
	case StateE:
		return "E"
	case StateF:
		return "F"
	case StateG:
		return "G"
	case StateH:
		return "H"
	default:
		return "?"
	}
}

// Valid reports whether c is one of the declared cells.
func (c Cell) Valid() bool { return indexOf(cellOrder, c) >= 0 }

// Valid reports whether b is one of the declared berry values.
func (b Berry) Valid() bool { return indexOf(berryOrder, b) >= 0 }

// Valid reports whether s is one of the declared states.
func (s State) Valid() bool { return indexOf(stateOrder, s) >= 0 }

// Valid reports whether m is one of the declared moves.
func (m Move) Valid() bool { return indexOf(moveOrder, m) >= 0 }

func indexOf[T comparable](order []T, v T) int {
	for i, o := range order {
		if o == v {
			return i
		}
	}
	return -1
}

// cycleOptional advances an optional value: nil goes to the first element,
// the last element goes back to nil. Unknown values also reset to nil.
func cycleOptional[T comparable](order []T, cur *T) *T {
	if cur == nil {
		next := order[0]
		return &next
	}
	i := indexOf(order, *cur)
	if i < 0 || i == len(order)-1 {
		return nil
	}
	next := order[i+1]
	return &next
}

// cycleRequired advances a mandatory value and wraps around. Unknown values
// restart at the first element.
func cycleRequired[T comparable](order []T, cur T) T {
	i := indexOf(order, cur)
	return order[(i+1)%len(order)]
}

// NextCell returns the neighbor sensor value after one click.
func NextCell(c *Cell) *Cell { return cycleOptional(cellOrder, c) }

// NextBerry returns the berry sensor value after one click.
func NextBerry(b *Berry) *Berry { return cycleOptional(berryOrder, b) }

// NextState returns the state sensor value after one click.
func NextState(s *State) *State { return cycleOptional(stateOrder, s) }

// NextMove returns the move after one click.
func NextMove(m Move) Move { return cycleRequired(moveOrder, m) }

// NextNextState returns the next-state value after one click. Unlike the
// state sensor it never becomes absent.
func NextNextState(s State) State { return cycleRequired(stateOrder, s) }
