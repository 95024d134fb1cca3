package sim

import (
	"errors"
	"fmt"
	"time"

	"volley/server/effects/contract"
)

var (
	// ErrZeroDirection rejects spawn requests whose heading cannot be
	// normalized.
	ErrZeroDirection = errors.New("spawn direction must not be the zero vector")
	// ErrNonPositiveSpeed rejects spawn requests that could never move.
	ErrNonPositiveSpeed = errors.New("spawn speed must be positive")
)

type slot struct {
	entity     *Entity
	generation uint32
}

// Registry owns the active entity set. Slots are arena indices tagged with a
// generation counter, so a stale id always resolves to "not found" instead
// of aliasing whatever reused the slot.
//
// Entities spawned during a tick sit on a pending list and join the active
// iteration at the next commit, which keeps ForEachActive stable while
// cascades (explosion spawning a burn zone) run inside the tick.
type Registry struct {
	slots   []slot
	free    []uint32
	pending []*Entity
	live    int
}

func NewRegistry() *Registry {
	return &Registry{}
}

// Spawn validates the spec and allocates an entity. Nothing is created when
// validation fails.
func (r *Registry) Spawn(spec EntitySpec, now time.Time) (EntityID, error) {
	kind := spec.Kind
	if kind == "" {
		kind = contract.EntityKindProjectile
	}

	direction := spec.Direction
	if kind == contract.EntityKindProjectile {
		unit, ok := spec.Direction.Normalized()
		if !ok {
			return EntityID{}, fmt.Errorf("spawn %q: %w", spec.Type, ErrZeroDirection)
		}
		if spec.Speed <= 0 {
			return EntityID{}, fmt.Errorf("spawn %q: %w", spec.Type, ErrNonPositiveSpeed)
		}
		direction = unit
	}

	motion := spec.Motion
	if motion == "" {
		motion = contract.MotionKinematic
	}
	impact := spec.Impact
	if impact == "" {
		impact = contract.ImpactConsume
	}
	strategy := spec.Strategy
	if strategy == "" {
		strategy = contract.CollisionAuto
	}

	entity := &Entity{
		Kind:          kind,
		Type:          spec.Type,
		OwnerID:       spec.OwnerID,
		Position:      spec.Position,
		Direction:     direction,
		Speed:         spec.Speed,
		Velocity:      direction.Scale(spec.Speed),
		Radius:        spec.Radius,
		SpawnPosition: spec.Position,
		SpawnTime:     now,
		MaxLifetime:   spec.MaxLifetime,
		MaxDistance:   spec.MaxDistance,
		State:         StateActive,
		Motion:        motion,
		GravityScale:  spec.GravityScale,
		Strategy:      strategy,
		Impact:        impact,
		BounceBudget:  spec.BounceBudget,
		Homing:        spec.Homing,
		CollisionMask: spec.CollisionMask,
		Payloads:      append([]contract.EffectPayload(nil), spec.Payloads...),
		OnComplete:    spec.OnComplete,
		prevPosition:  spec.Position,
		pending:       true,
	}

	var index uint32
	if n := len(r.free); n > 0 {
		index = r.free[n-1]
		r.free = r.free[:n-1]
	} else {
		r.slots = append(r.slots, slot{generation: 1})
		index = uint32(len(r.slots) - 1)
	}
	r.slots[index].entity = entity
	entity.ID = EntityID{Index: index, Generation: r.slots[index].generation}
	r.pending = append(r.pending, entity)
	r.live++
	return entity.ID, nil
}

// Get resolves an id to its live entity, including ones still pending their
// first tick. Stale or unknown ids return nil.
func (r *Registry) Get(id EntityID) *Entity {
	if id.IsZero() || int(id.Index) >= len(r.slots) {
		return nil
	}
	s := r.slots[id.Index]
	if s.entity == nil || s.generation != id.Generation {
		return nil
	}
	return s.entity
}

// Remove reclaims the slot. Removing a stale or unknown id is a no-op. The
// generation bumps immediately so every outstanding reference goes stale.
func (r *Registry) Remove(id EntityID) {
	entity := r.Get(id)
	if entity == nil {
		return
	}
	if entity.pending {
		for i, p := range r.pending {
			if p == entity {
				r.pending = append(r.pending[:i], r.pending[i+1:]...)
				break
			}
		}
	}
	r.slots[id.Index].entity = nil
	r.slots[id.Index].generation++
	r.free = append(r.free, id.Index)
	r.live--
}

// CommitPending makes entities spawned since the last tick visible to
// ForEachActive. Called once at the top of every tick.
func (r *Registry) CommitPending() {
	for _, entity := range r.pending {
		entity.pending = false
	}
	r.pending = r.pending[:0]
}

// ForEachActive visits every committed entity in slot order. Entities
// spawned during the walk stay invisible until the next commit, so the
// iteration is never invalidated by cascades.
func (r *Registry) ForEachActive(fn func(*Entity)) {
	for i := range r.slots {
		entity := r.slots[i].entity
		if entity == nil || entity.pending {
			continue
		}
		fn(entity)
	}
}

// Len reports the number of live entities, pending included.
func (r *Registry) Len() int {
	return r.live
}
