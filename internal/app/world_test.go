package app

import (
	"errors"
	"testing"
	"time"
)

func TestWorldSpawnAndStep(t *testing.T) {
	w := NewWorld()
	e, err := w.Spawn("ship", 1, 2, 10, -4, 0)
	if err != nil {
		t.Fatalf("Spawn: %v", err)
	}
	if e.ID != 1 {
		t.Errorf("first id = %d, want 1", e.ID)
	}

	w.Step(500 * time.Millisecond)
	if e.X != 6 || e.Y != 0 {
		t.Errorf("position = (%v, %v), want (6, 0)", e.X, e.Y)
	}
	if w.Ticks() != 1 || w.Elapsed() != 500*time.Millisecond {
		t.Errorf("ticks = %d, elapsed = %v", w.Ticks(), w.Elapsed())
	}
}

func TestWorldSpawnErrors(t *testing.T) {
	w := NewWorld()
	if _, err := w.Spawn("", 0, 0, 0, 0, 0); err == nil {
		t.Error("expected error for empty name")
	}
	_, err := w.Spawn("orphan", 0, 0, 0, 0, 7)
	if !errors.Is(err, ErrNoEntity) {
		t.Errorf("err = %v, want ErrNoEntity", err)
	}
	if w.Len() != 0 {
		t.Errorf("Len = %d, want 0", w.Len())
	}
}

func TestWorldDespawnRemovesDescendants(t *testing.T) {
	w := NewWorld()
	root, _ := w.Spawn("root", 0, 0, 0, 0, 0)
	a, _ := w.Spawn("a", 0, 0, 0, 0, root.ID)
	_, _ = w.Spawn("b", 0, 0, 0, 0, a.ID)
	other, _ := w.Spawn("other", 0, 0, 0, 0, 0)

	removed, err := w.Despawn(root.ID)
	if err != nil {
		t.Fatalf("Despawn: %v", err)
	}
	if len(removed) != 3 || removed[0] != 1 || removed[2] != 3 {
		t.Errorf("removed = %v, want [1 2 3]", removed)
	}
	if _, ok := w.Entity(other.ID); !ok || w.Len() != 1 {
		t.Error("unrelated entity should remain")
	}

	var ee *EntityError
	if _, err := w.Despawn(root.ID); !errors.As(err, &ee) || ee.ID != root.ID {
		t.Errorf("second Despawn err = %v", err)
	}
}

func TestWorldTree(t *testing.T) {
	w := NewWorld()
	if got, _ := w.Tree(0); got != "(empty)" {
		t.Errorf("empty tree = %q", got)
	}

	sun, _ := w.Spawn("sun", 0, 0, 0, 0, 0)
	earth, _ := w.Spawn("earth", 1, 0, 0, 0, sun.ID)
	_, _ = w.Spawn("moon", 1.5, 0, 0, 0, earth.ID)
	_, _ = w.Spawn("mars", 2, 0, 0, 0, sun.ID)
	_, _ = w.Spawn("comet", 9, 9, 0, 0, 0)

	want := "1 sun (0.0, 0.0)\n" +
		"├─ 2 earth (1.0, 0.0)\n" +
		"│  └─ 3 moon (1.5, 0.0)\n" +
		"└─ 4 mars (2.0, 0.0)\n" +
		"5 comet (9.0, 9.0)"
	if got, err := w.Tree(0); err != nil || got != want {
		t.Errorf("Tree(0) =\n%s\nwant\n%s", got, want)
	}

	if got, _ := w.Tree(earth.ID); got != "2 earth (1.0, 0.0)\n└─ 3 moon (1.5, 0.0)" {
		t.Errorf("Tree(2) = %q", got)
	}
	if _, err := w.Tree(42); !errors.Is(err, ErrNoEntity) {
		t.Errorf("Tree(42) err = %v", err)
	}
}

func TestWorldMove(t *testing.T) {
	w := NewWorld()
	e, _ := w.Spawn("x", 0, 0, 0, 0, 0)
	if err := w.Move(e.ID, 3, 4); err != nil || e.X != 3 || e.Y != 4 {
		t.Errorf("Move = %v, at (%v, %v)", err, e.X, e.Y)
	}
	if err := w.Move(99, 0, 0); !errors.Is(err, ErrNoEntity) {
		t.Errorf("Move(99) err = %v", err)
	}
}
