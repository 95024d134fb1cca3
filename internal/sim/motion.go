package sim

import (
	"time"

	"volley/server/effects/contract"
)

// Integrator advances entity kinematics one tick at a time. It owns no
// entity state; everything it touches lives on the entity itself.
type Integrator struct {
	gravity Vec3
	physics Physics
}

func NewIntegrator(gravity Vec3, physics Physics) *Integrator {
	return &Integrator{gravity: gravity, physics: physics}
}

// Advance moves the entity for one tick. The previous position is kept on
// the entity so the collision resolver can sweep the traversed segment, and
// the distance integral accumulates the actual path length.
//
// When the travel budget would be exceeded the move is clamped to land
// exactly on the cap boundary; the scheduler retires the entity afterwards.
func (ig *Integrator) Advance(e *Entity, now time.Time, dt float64) {
	if e.Kind != contract.EntityKindProjectile || e.State != StateActive {
		e.prevPosition = e.Position
		return
	}
	if dt <= 0 {
		e.prevPosition = e.Position
		return
	}

	ig.steerHoming(e, dt)

	prev := e.Position
	var next Vec3
	switch e.Motion {
	case contract.MotionDynamic:
		e.Velocity = e.Velocity.Add(ig.gravity.Scale(e.GravityScale * dt))
		next = prev.Add(e.Velocity.Scale(dt))
	default: // kinematic
		if e.steered {
			next = prev.Add(e.Direction.Scale(e.Speed * dt))
		} else {
			elapsed := e.Elapsed(now).Seconds()
			next = e.SpawnPosition.Add(e.Direction.Scale(e.Speed * elapsed))
		}
	}

	step := next.Sub(prev)
	stepLen := step.Length()

	if e.MaxDistance > 0 && e.DistanceTraveled+stepLen >= e.MaxDistance {
		// No overshoot past the budget: clamp onto the cap boundary.
		allowed := e.MaxDistance - e.DistanceTraveled
		if allowed < 0 {
			allowed = 0
		}
		if stepLen > 1e-9 {
			next = prev.Add(step.Scale(allowed / stepLen))
		} else {
			next = prev
		}
		stepLen = allowed
		e.DistanceTraveled = e.MaxDistance
	} else {
		e.DistanceTraveled += stepLen
	}

	e.prevPosition = prev
	e.Position = next

	// Keep the heading in sync for dynamic motion so bounces and swept
	// queries see the true travel direction.
	if e.Motion == contract.MotionDynamic {
		if unit, ok := e.Velocity.Normalized(); ok {
			e.Direction = unit
		}
	}
}

// steerHoming bends the heading toward the target while preserving speed.
// It never touches the collision or payload state machine.
func (ig *Integrator) steerHoming(e *Entity, dt float64) {
	if e.Homing == nil || e.Homing.Strength <= 0 || ig.physics == nil {
		return
	}
	target, ok := ig.physics.Actor(e.Homing.TargetID)
	if !ok {
		return
	}
	toTarget := target.ActorPosition().Sub(e.Position)
	steered := steerToward(e.Direction, toTarget, e.Homing.Strength*dt)
	if steered == e.Direction {
		return
	}
	e.Direction = steered
	e.steered = true
	if e.Motion == contract.MotionDynamic {
		// Redirect the momentum, keep the magnitude.
		e.Velocity = steered.Scale(e.Velocity.Length())
	}
}
