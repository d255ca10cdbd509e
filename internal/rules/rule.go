package rules

// Rule maps what the bot senses to what it does. A nil sensor matches
// anything; NextMove and NextState are always set.
type Rule struct {
	Up        *Cell  `json:"up"`
	Down      *Cell  `json:"down"`
	Left      *Cell  `json:"left"`
	Right     *Cell  `json:"right"`
	Berry     *Berry `json:"berry"`
	State     *State `json:"state"`
	NextMove  Move   `json:"nextMove"`
	NextState State  `json:"nextState"`
}

// NewRule returns the rule appended by the editor: every sensor absent,
// waiting, and moving to state A.
func NewRule() Rule {
	return Rule{NextMove: MoveWait, NextState: StateA}
}

// Field names one editable slot of a rule.
type Field int

const (
	FieldState Field = iota
	FieldUp
	FieldDown
	FieldLeft
	FieldRight
	FieldBerry
	FieldNextMove
	FieldNextState
)

// Fields lists the editable fields in the order the editor lays them out.
var Fields = []Field{
	FieldState, FieldUp, FieldDown, FieldLeft, FieldRight,
	FieldBerry, FieldNextMove, FieldNextState,
}

func (f Field) String() string {
	switch f {
	case FieldState:
		return "state"
	case FieldUp:
		return "up"
	case FieldDown:
		return "down"
	case FieldLeft:
		return "left"
	case FieldRight:
		return "right"
	case FieldBerry:
		return "berry"
	case FieldNextMove:
		return "nextMove"
	case FieldNextState:
		return "nextState"
	default:
		return "unknown"
	}
}

// Optional reports whether the field can be absent.
func (f Field) Optional() bool {
	return f != FieldNextMove && f != FieldNextState
}

// Cycle returns a copy of r with field f advanced by one click.
func (r Rule) Cycle(f Field) Rule {
	switch f {
	case FieldState:
		r.State = NextState(r.State)
	case FieldUp:
		r.Up = NextCell(r.Up)
	case FieldDown:
		r.Down = NextCell(r.Down)
	case FieldLeft:
		r.Left = NextCell(r.Left)
	case FieldRight:
		r.Right = NextCell(r.Right)
	case FieldBerry:
		r.Berry = NextBerry(r.Berry)
	case FieldNextMove:
		r.NextMove = NextMove(r.NextMove)
	case FieldNextState:
		r.NextState = NextNextState(r.NextState)
	}
	return r
}

// Equal compares rules by value rather than by sensor pointer identity.
func (r Rule) Equal(o Rule) bool {
	return eqPtr(r.Up, o.Up) && eqPtr(r.Down, o.Down) &&
		eqPtr(r.Left, o.Left) && eqPtr(r.Right, o.Right) &&
		eqPtr(r.Berry, o.Berry) && eqPtr(r.State, o.State) &&
		r.NextMove == o.NextMove && r.NextState == o.NextState
}

func eqPtr[T comparable](a, b *T) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

// Ptr returns a pointer to v; handy when building rules in literals.
func Ptr[T any](v T) *T { return &v }
