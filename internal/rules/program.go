package rules

// Program is an ordered list of rules. Order matters: the server uses the
// first rule that matches.
//
// The editing methods never modify the receiver; they return a new Program.
type Program []Rule

// Len returns the number of rules.
func (p Program) Len() int { return len(p) }

func (p Program) inRange(i int) bool { return i >= 0 && i < len(p) }

func (p Program) clone() Program {
	out := make(Program, len(p))
	copy(out, p)
	return out
}

// Replace overwrites the rule at index. Out-of-range indexes are ignored.
func (p Program) Replace(index int, rule Rule) Program {
	if !p.inRange(index) {
		return p
	}
	out := p.clone()
	out[index] = rule
	return out
}

// Remove deletes the rule at index and shifts the tail left. Out-of-range
// indexes are ignored.
func (p Program) Remove(index int) Program {
	if !p.inRange(index) {
		return p
	}
	out := make(Program, 0, len(p)-1)
	out = append(out, p[:index]...)
	return append(out, p[index+1:]...)
}

// SwapAdjacent exchanges the rules at first and first+1. Nothing happens
// unless both indexes are in range.
func (p Program) SwapAdjacent(first int) Program {
	if !p.inRange(first) || !p.inRange(first+1) {
		return p
	}
	out := p.clone()
	out[first], out[first+1] = out[first+1], out[first]
	return out
}

// MoveUp moves the rule at index one slot towards the front.
func (p Program) MoveUp(index int) Program { return p.SwapAdjacent(index - 1) }

// MoveDown moves the rule at index one slot towards the back.
func (p Program) MoveDown(index int) Program { return p.SwapAdjacent(index) }

// Append adds a NewRule at the end.
func (p Program) Append() Program {
	out := make(Program, len(p), len(p)+1)
	copy(out, p)
	return append(out, NewRule())
}

// CycleField advances one field of the rule at index. Out-of-range indexes
// are ignored.
func (p Program) CycleField(index int, f Field) Program {
	if !p.inRange(index) {
		return p
	}
	return p.Replace(index, p[index].Cycle(f))
}
