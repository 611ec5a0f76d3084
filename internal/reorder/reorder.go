// Package reorder computes full orderings from drag gestures. It is pure
// sequence arithmetic: the caller feeds it drag start / drag over / drop and
// gets back the complete new id order to send as one reorder request.
package reorder

// Placement says which side of the target the dragged id lands on.
type Placement int

const (
	Before Placement = iota
	After
)

// Move splices source out of ids and reinserts it relative to target.
// Unknown source or target ids, or source == target, return the input order
// unchanged. The input slice is never modified.
func Move(ids []string, source, target string, place Placement) []string {
	if source == target {
		return append([]string(nil), ids...)
	}
	srcIdx := index(ids, source)
	if srcIdx < 0 || index(ids, target) < 0 {
		return append([]string(nil), ids...)
	}

	without := make([]string, 0, len(ids)-1)
	for _, id := range ids {
		if id != source {
			without = append(without, id)
		}
	}

	tgtIdx := index(without, target)
	insertAt := tgtIdx
	if place == After {
		insertAt = tgtIdx + 1
	}

	out := make([]string, 0, len(ids))
	out = append(out, without[:insertAt]...)
	out = append(out, source)
	out = append(out, without[insertAt:]...)
	return out
}

func index(ids []string, id string) int {
	for i, v := range ids {
		if v == id {
			return i
		}
	}
	return -1
}

// Gesture tracks one drag from start to drop, independent of any input
// event API: capture the source on drag start, keep updating the target on
// drag over, and emit the full new order on drop.
type Gesture struct {
	source string
	target string
	place  Placement
	active bool
}

// Start begins a drag of the given id.
func (g *Gesture) Start(source string) {
	g.source = source
	g.target = ""
	g.active = true
}

// Over records the id currently under the dragged one.
func (g *Gesture) Over(target string, place Placement) {
	if !g.active {
		return
	}
	g.target = target
	g.place = place
}

// Active reports whether a drag is in progress.
func (g *Gesture) Active() bool {
	return g.active
}

// Drop ends the drag and returns the new full ordering. A drop with no
// target recorded (or no active drag) returns ids unchanged and false.
func (g *Gesture) Drop(ids []string) ([]string, bool) {
	if !g.active || g.target == "" {
		g.active = false
		return append([]string(nil), ids...), false
	}
	out := Move(ids, g.source, g.target, g.place)
	g.active = false
	return out, true
}

// Cancel abandons the drag without emitting an order.
func (g *Gesture) Cancel() {
	g.active = false
	g.source = ""
	g.target = ""
}
