package reorder

import (
	"reflect"
	"testing"
)

func TestMove(t *testing.T) {
	tests := []struct {
		name   string
		ids    []string
		source string
		target string
		place  Placement
		want   []string
	}{
		{"drag b after d", []string{"a", "b", "c", "d"}, "b", "d", After, []string{"a", "c", "d", "b"}},
		{"drag b before d", []string{"a", "b", "c", "d"}, "b", "d", Before, []string{"a", "c", "b", "d"}},
		{"drag d before a", []string{"a", "b", "c", "d"}, "d", "a", Before, []string{"d", "a", "b", "c"}},
		{"drag a after b (adjacent)", []string{"a", "b", "c"}, "a", "b", After, []string{"b", "a", "c"}},
		{"drag onto itself", []string{"a", "b"}, "a", "a", After, []string{"a", "b"}},
		{"unknown source", []string{"a", "b"}, "zz", "a", After, []string{"a", "b"}},
		{"unknown target", []string{"a", "b"}, "a", "zz", After, []string{"a", "b"}},
		{"single element", []string{"a"}, "a", "a", Before, []string{"a"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Move(tt.ids, tt.source, tt.target, tt.place)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Move() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMoveDoesNotMutateInput(t *testing.T) {
	ids := []string{"a", "b", "c", "d"}
	Move(ids, "b", "d", After)
	if !reflect.DeepEqual(ids, []string{"a", "b", "c", "d"}) {
		t.Fatalf("input mutated: %v", ids)
	}
}

func TestGesture(t *testing.T) {
	ids := []string{"a", "b", "c", "d"}

	var g Gesture
	g.Start("b")
	if !g.Active() {
		t.Fatal("gesture not active after Start")
	}
	g.Over("c", After)
	g.Over("d", After) // target keeps updating during the drag

	got, ok := g.Drop(ids)
	if !ok {
		t.Fatal("Drop with a target must emit an order")
	}
	if want := []string{"a", "c", "d", "b"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("Drop = %v, want %v", got, want)
	}
	if g.Active() {
		t.Error("gesture still active after Drop")
	}
}

func TestGestureDropWithoutTarget(t *testing.T) {
	ids := []string{"a", "b"}

	var g Gesture
	g.Start("a")
	got, ok := g.Drop(ids)
	if ok {
		t.Fatal("Drop without a target must not emit an order")
	}
	if !reflect.DeepEqual(got, ids) {
		t.Fatalf("Drop = %v, want input unchanged", got)
	}
}

func TestGestureCancel(t *testing.T) {
	var g Gesture
	g.Start("a")
	g.Over("b", Before)
	g.Cancel()
	if g.Active() {
		t.Fatal("gesture active after Cancel")
	}
	if _, ok := g.Drop([]string{"a", "b"}); ok {
		t.Fatal("Drop after Cancel must not emit an order")
	}
}

func TestGestureOverBeforeStartIgnored(t *testing.T) {
	var g Gesture
	g.Over("b", Before)
	if _, ok := g.Drop([]string{"a", "b"}); ok {
		t.Fatal("Drop without Start must not emit an order")
	}
}
