// Package history tracks dashboard fragments: an in-session back/forward
// stack and a persisted list of recent views.
package history

// Navigator is a bounded back/forward stack of fragments, the terminal
// analogue of browser history
type Navigator struct {
	entries []string
	pos     int
	max     int
}

// NewNavigator keeps at most max entries; max <= 0 means 100
func NewNavigator(max int) *Navigator {
	if max <= 0 {
		max = 100
	}
	return &Navigator{pos: -1, max: max}
}

// Push records a new current fragment and drops the forward entries.
// Pushing the current fragment again is a no-op.
func (n *Navigator) Push(fragment string) {
	if n.pos >= 0 && n.entries[n.pos] == fragment {
		return
	}
	n.entries = append(n.entries[:n.pos+1], fragment)
	if len(n.entries) > n.max {
		n.entries = n.entries[len(n.entries)-n.max:]
	}
	n.pos = len(n.entries) - 1
}

// Back moves one entry back
func (n *Navigator) Back() (string, bool) {
	if n.pos <= 0 {
		return "", false
	}
	n.pos--
	return n.entries[n.pos], true
}

// Forward moves one entry forward
func (n *Navigator) Forward() (string, bool) {
	if n.pos < 0 || n.pos >= len(n.entries)-1 {
		return "", false
	}
	n.pos++
	return n.entries[n.pos], true
}

// Current returns the current fragment
func (n *Navigator) Current() string {
	if n.pos < 0 {
		return ""
	}
	return n.entries[n.pos]
}

// Len returns the number of entries
func (n *Navigator) Len() int {
	return len(n.entries)
}
