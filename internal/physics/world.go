// Package physics provides an in-memory collision world implementing the
// simulation core's collaborator interface. It is deliberately simple:
// static sphere obstacles plus registered actors, brute-force queries. The
// core treats it as external and already synchronized.
package physics

import (
	"math"
	"sort"
	"sync"

	"volley/server/internal/sim"
)

// Obstacle is a static collision sphere.
type Obstacle struct {
	ID     string
	Center sim.Vec3
	Radius float64
	Mask   uint32
}

// Actor is a mutable damageable body registered with the world.
type Actor struct {
	ID     string
	Pos    sim.Vec3
	Radius float64
	Mask   uint32
	Health float64
}

func (a *Actor) ActorID() string            { return a.ID }
func (a *Actor) ActorPosition() sim.Vec3    { return a.Pos }
func (a *Actor) ApplyHealthDelta(d float64) { a.Health += d }

// World is a brute-force implementation of sim.Physics.
type World struct {
	mu        sync.RWMutex
	obstacles []Obstacle
	actors    map[string]*Actor
	order     []string
}

func NewWorld() *World {
	return &World{actors: make(map[string]*Actor)}
}

func (w *World) AddObstacle(obstacle Obstacle) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.obstacles = append(w.obstacles, obstacle)
}

func (w *World) AddActor(actor *Actor) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, exists := w.actors[actor.ID]; !exists {
		w.order = append(w.order, actor.ID)
	}
	w.actors[actor.ID] = actor
}

func (w *World) RemoveActor(id string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, exists := w.actors[id]; !exists {
		return
	}
	delete(w.actors, id)
	for i, existing := range w.order {
		if existing == id {
			w.order = append(w.order[:i], w.order[i+1:]...)
			break
		}
	}
}

// QueryIntersect reports every collider overlapping the shape. Obstacles
// come first, then actors in registration order; the ordering is part of
// the collaborator contract relied on for discrete dedup.
func (w *World) QueryIntersect(shape sim.Shape, mask uint32) []sim.Contact {
	w.mu.RLock()
	defer w.mu.RUnlock()

	var contacts []sim.Contact
	for _, obstacle := range w.obstacles {
		if obstacle.Mask&mask == 0 {
			continue
		}
		if contact, ok := sphereContact(shape, obstacle.Center, obstacle.Radius, obstacle.ID); ok {
			contacts = append(contacts, contact)
		}
	}
	for _, id := range w.order {
		actor := w.actors[id]
		if actor.Mask&mask == 0 {
			continue
		}
		if contact, ok := sphereContact(shape, actor.Pos, actor.Radius, actor.ID); ok {
			contacts = append(contacts, contact)
		}
	}
	return contacts
}

// QueryRay reports the nearest hit along the unit direction within
// maxDistance.
func (w *World) QueryRay(origin, direction sim.Vec3, maxDistance float64, mask uint32) (sim.RayHit, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()

	best := sim.RayHit{Distance: math.Inf(1)}
	found := false
	consider := func(id string, center sim.Vec3, radius float64) {
		distance, ok := raySphere(origin, direction, center, radius)
		if !ok || distance > maxDistance || distance >= best.Distance {
			return
		}
		point := origin.Add(direction.Scale(distance))
		normal := point.Sub(center)
		if unit, ok := normal.Normalized(); ok {
			best = sim.RayHit{OtherID: id, Point: point, Normal: &unit, Distance: distance}
		} else {
			best = sim.RayHit{OtherID: id, Point: point, Distance: distance}
		}
		found = true
	}

	for _, obstacle := range w.obstacles {
		if obstacle.Mask&mask != 0 {
			consider(obstacle.ID, obstacle.Center, obstacle.Radius)
		}
	}
	for _, id := range w.order {
		actor := w.actors[id]
		if actor.Mask&mask != 0 {
			consider(actor.ID, actor.Pos, actor.Radius)
		}
	}
	return best, found
}

// QueryRadius enumerates actors whose centers sit within radius of the
// point, nearest first.
func (w *World) QueryRadius(point sim.Vec3, radius float64, mask uint32) []sim.ActorRef {
	w.mu.RLock()
	defer w.mu.RUnlock()

	type scored struct {
		actor    *Actor
		distance float64
	}
	var matched []scored
	for _, id := range w.order {
		actor := w.actors[id]
		if actor.Mask&mask == 0 {
			continue
		}
		distance := actor.Pos.DistanceTo(point)
		if distance <= radius {
			matched = append(matched, scored{actor, distance})
		}
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].distance < matched[j].distance })

	refs := make([]sim.ActorRef, 0, len(matched))
	for _, m := range matched {
		refs = append(refs, m.actor)
	}
	return refs
}

func (w *World) Actor(id string) (sim.ActorRef, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	actor, ok := w.actors[id]
	if !ok {
		return nil, false
	}
	return actor, true
}

func sphereContact(shape sim.Shape, center sim.Vec3, radius float64, id string) (sim.Contact, bool) {
	offset := shape.Center.Sub(center)
	distance := offset.Length()
	if distance > shape.Radius+radius {
		return sim.Contact{}, false
	}
	contact := sim.Contact{OtherID: id, Point: shape.Center}
	if unit, ok := offset.Normalized(); ok {
		contact.Point = center.Add(unit.Scale(radius))
		contact.Normal = &unit
	}
	return contact, true
}

// raySphere solves the quadratic for a unit-direction ray against a sphere
// and returns the nearest non-negative root.
func raySphere(origin, direction, center sim.Vec3, radius float64) (float64, bool) {
	oc := origin.Sub(center)
	b := oc.Dot(direction)
	c := oc.Dot(oc) - radius*radius
	disc := b*b - c
	if disc < 0 {
		return 0, false
	}
	sqrtDisc := math.Sqrt(disc)
	t := -b - sqrtDisc
	if t < 0 {
		t = -b + sqrtDisc
	}
	if t < 0 {
		return 0, false
	}
	return t, true
}
