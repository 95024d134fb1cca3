package sim

import (
	"volley/server/effects/contract"
)

// Resolver turns physics queries into at most one authoritative collision
// event per entity per tick.
type Resolver struct {
	physics Physics
}

func NewResolver(physics Physics) *Resolver {
	return &Resolver{physics: physics}
}

// Resolve checks the segment the entity traversed this tick and returns the
// single contact that counts, or nil. Contacts against the owner and against
// targets the entity already hit are skipped, which is what lets piercing
// entities pass through without re-triggering.
//
// Strategy selection: swept queries are mandatory once the per-tick travel
// exceeds the entity's own extent, because a discrete overlap test can step
// straight over a thin target at that ratio.
func (r *Resolver) Resolve(e *Entity) *CollisionEvent {
	if r.physics == nil || e.Kind != contract.EntityKindProjectile || e.State != StateActive {
		return nil
	}

	travel := e.Position.Sub(e.prevPosition)
	travelLen := travel.Length()

	strategy := e.Strategy
	if strategy == contract.CollisionAuto {
		if travelLen > e.Radius {
			strategy = contract.CollisionSwept
		} else {
			strategy = contract.CollisionDiscrete
		}
	}

	switch strategy {
	case contract.CollisionSwept:
		return r.resolveSwept(e, travel, travelLen)
	default:
		return r.resolveDiscrete(e)
	}
}

// resolveSwept casts from the previous position along the tick's travel and
// takes the nearest admissible hit strictly inside the traversed distance.
// The entity is snapped onto the hit point so the payload resolves where the
// contact actually happened.
func (r *Resolver) resolveSwept(e *Entity, travel Vec3, travelLen float64) *CollisionEvent {
	if travelLen <= 1e-9 {
		return nil
	}
	direction := travel.Scale(1 / travelLen)

	origin := e.prevPosition
	remaining := travelLen
	// Walk past inadmissible hits (owner, already-pierced targets) so a
	// piercing entity still sees the target behind them.
	for i := 0; i < 8; i++ {
		hit, ok := r.physics.QueryRay(origin, direction, remaining, e.CollisionMask)
		if !ok || hit.Distance >= remaining {
			return nil
		}
		if r.admissible(e, hit.OtherID) {
			// The snap shortens this tick's path; the distance integral
			// must count the walked segment, not the intended one.
			walked := hit.Point.Sub(e.prevPosition).Length()
			if refund := travelLen - walked; refund > 0 {
				e.DistanceTraveled -= refund
				if e.DistanceTraveled < 0 {
					e.DistanceTraveled = 0
				}
			}
			e.Position = hit.Point
			// A surviving entity continues from the snap point, so the
			// closed-form track is stale from here on.
			e.steered = true
			return &CollisionEvent{
				EntityID: e.ID,
				OtherID:  hit.OtherID,
				Point:    hit.Point,
				Normal:   hit.Normal,
			}
		}
		advance := hit.Distance + 1e-6
		origin = origin.Add(direction.Scale(advance))
		remaining -= advance
		if remaining <= 0 {
			return nil
		}
	}
	return nil
}

// resolveDiscrete overlaps the current shape against the world and takes the
// first admissible contact in the collaborator's reporting order.
func (r *Resolver) resolveDiscrete(e *Entity) *CollisionEvent {
	contacts := r.physics.QueryIntersect(Shape{Center: e.Position, Radius: e.Radius}, e.CollisionMask)
	for _, contact := range contacts {
		if !r.admissible(e, contact.OtherID) {
			continue
		}
		return &CollisionEvent{
			EntityID: e.ID,
			OtherID:  contact.OtherID,
			Point:    contact.Point,
			Normal:   contact.Normal,
		}
	}
	return nil
}

func (r *Resolver) admissible(e *Entity, otherID string) bool {
	if otherID == "" {
		return false
	}
	if otherID == e.OwnerID {
		return false
	}
	return !e.AlreadyHit(otherID)
}
