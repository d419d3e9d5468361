package app

import (
	"fmt"
	"slices"
	"strings"
	"time"
)

// Entity is a named point that drifts with its velocity every tick.
type Entity struct {
	ID     int
	Name   string
	X, Y   float64
	VX, VY float64

	// Parent is 0 for top-level entities.
	Parent int
}

// World is the host state the loop advances and console handlers edit.
// It is owned by the loop goroutine; handlers see it only while
// dispatching, which happens inside the tick.
type World struct {
	entities map[int]*Entity
	nextID   int

	ticks   uint64
	elapsed time.Duration
}

// NewWorld creates an empty world.
func NewWorld() *World {
	return &World{
		entities: make(map[int]*Entity),
		nextID:   1,
	}
}

// Spawn adds an entity and returns it. A non-zero parent must exist.
func (w *World) Spawn(name string, x, y, vx, vy float64, parent int) (*Entity, error) {
	if name == "" {
		return nil, fmt.Errorf("spawn: empty name")
	}
	if parent != 0 {
		if _, ok := w.entities[parent]; !ok {
			return nil, &EntityError{Op: "spawn under", ID: parent, Err: ErrNoEntity}
		}
	}
	e := &Entity{ID: w.nextID, Name: name, X: x, Y: y, VX: vx, VY: vy, Parent: parent}
	w.entities[e.ID] = e
	w.nextID++
	return e, nil
}

// Despawn removes an entity and all of its descendants, returning the
// removed ids in ascending order.
func (w *World) Despawn(id int) ([]int, error) {
	if _, ok := w.entities[id]; !ok {
		return nil, &EntityError{Op: "despawn", ID: id, Err: ErrNoEntity}
	}
	removed := []int{id}
	for i := 0; i < len(removed); i++ {
		removed = append(removed, w.children(removed[i])...)
	}
	for _, r := range removed {
		delete(w.entities, r)
	}
	slices.Sort(removed)
	return removed, nil
}

// Move places an entity at x, y.
func (w *World) Move(id int, x, y float64) error {
	e, ok := w.entities[id]
	if !ok {
		return &EntityError{Op: "move", ID: id, Err: ErrNoEntity}
	}
	e.X, e.Y = x, y
	return nil
}

// Entity returns the entity with id.
func (w *World) Entity(id int) (*Entity, bool) {
	e, ok := w.entities[id]
	return e, ok
}

// Entities returns every entity ordered by id.
func (w *World) Entities() []*Entity {
	out := make([]*Entity, 0, len(w.entities))
	for _, e := range w.entities {
		out = append(out, e)
	}
	slices.SortFunc(out, func(a, b *Entity) int { return a.ID - b.ID })
	return out
}

// Len returns the number of entities.
func (w *World) Len() int {
	return len(w.entities)
}

// Ticks returns how many steps the world has taken.
func (w *World) Ticks() uint64 {
	return w.ticks
}

// Elapsed returns the simulated time.
func (w *World) Elapsed() time.Duration {
	return w.elapsed
}

// Step advances every entity by dt.
func (w *World) Step(dt time.Duration) {
	s := dt.Seconds()
	for _, e := range w.entities {
		e.X += e.VX * s
		e.Y += e.VY * s
	}
	w.ticks++
	w.elapsed += dt
}

func (w *World) children(id int) []int {
	var ids []int
	for _, e := range w.entities {
		if e.Parent == id {
			ids = append(ids, e.ID)
		}
	}
	slices.Sort(ids)
	return ids
}

// Tree draws the hierarchy under id, or every top-level entity when id is 0.
func (w *World) Tree(id int) (string, error) {
	var roots []int
	if id == 0 {
		roots = w.children(0)
	} else {
		if _, ok := w.entities[id]; !ok {
			return "", &EntityError{Op: "tree", ID: id, Err: ErrNoEntity}
		}
		roots = []int{id}
	}
	if len(roots) == 0 {
		return "(empty)", nil
	}

	var b strings.Builder
	for _, r := range roots {
		w.writeTree(&b, r, "", "")
	}
	return strings.TrimRight(b.String(), "\n"), nil
}

func (w *World) writeTree(b *strings.Builder, id int, lead, indent string) {
	e := w.entities[id]
	fmt.Fprintf(b, "%s%d %s (%.1f, %.1f)\n", lead, e.ID, e.Name, e.X, e.Y)
	kids := w.children(id)
	for i, k := range kids {
		if i == len(kids)-1 {
			w.writeTree(b, k, indent+"└─ ", indent+"   ")
		} else {
			w.writeTree(b, k, indent+"├─ ", indent+"│  ")
		}
	}
}
