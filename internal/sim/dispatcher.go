package sim

import (
	"context"
	"math/rand"
	"time"

	"volley/server/effects/contract"
	"volley/server/logging"
	"volley/server/logging/combat"
)

// Dispatcher resolves authoritative hits into payload effects and drives the
// per-hit state machine (consume, pierce, bounce). Area payloads may cascade
// new entities through the registry; those spawns stay pending until the
// next tick.
type Dispatcher struct {
	physics   Physics
	registry  *Registry
	publisher logging.Publisher
	rng       *rand.Rand
}

func NewDispatcher(physics Physics, registry *Registry, publisher logging.Publisher, rng *rand.Rand) *Dispatcher {
	if publisher == nil {
		publisher = logging.NopPublisher()
	}
	return &Dispatcher{physics: physics, registry: registry, publisher: publisher, rng: rng}
}

// ResolveHit applies the entity's payloads for the event and advances the
// hit state machine. The target is recorded first, so even a panic partway
// through can never double-apply against the same target.
func (d *Dispatcher) ResolveHit(e *Entity, event CollisionEvent, now time.Time, tick uint64) {
	if e.State != StateActive {
		return
	}
	e.recordHit(event.OtherID)

	for _, payload := range e.Payloads {
		if payload.Kind == contract.PayloadDamageOverTime {
			// Over-time payloads belong to zone entities; a projectile
			// carrying one converts it into a zone at the hit point. The
			// conversion is unconditional: TriggerChance rolls once per
			// pulse, never against the zone spawn, so the effective pulse
			// probability stays linear in the configured chance.
			d.spawnZone(e, event.Point, payload, now, tick)
			continue
		}
		if !d.triggers(payload) {
			continue
		}
		switch payload.Kind {
		case contract.PayloadInstantDamage:
			d.applyInstant(e, event, payload, tick)
		case contract.PayloadAreaDamage:
			d.applyArea(e, event.Point, payload, now, tick)
		}
	}

	switch e.Impact {
	case contract.ImpactPierce:
		// Stays active; the recorded target protects against re-hits.
	case contract.ImpactBounce:
		d.bounce(e, event)
	default:
		e.transition(StateConsumed, contract.EndReasonHit)
	}
}

// TickAreaEffect applies a zone's over-time payloads on their cadence. The
// zone's own expiry is the scheduler's business.
func (d *Dispatcher) TickAreaEffect(e *Entity, now time.Time, tick uint64) {
	if e.Kind != contract.EntityKindAreaEffect || e.State != StateActive {
		return
	}
	for _, payload := range e.Payloads {
		if payload.Kind != contract.PayloadDamageOverTime {
			continue
		}
		interval := time.Duration(payload.TickIntervalMs) * time.Millisecond
		if interval <= 0 {
			continue
		}
		if e.nextPayloadTick.IsZero() {
			e.nextPayloadTick = e.SpawnTime.Add(interval)
		}
		for !now.Before(e.nextPayloadTick) {
			if d.triggers(payload) {
				d.applyArea(e, e.Position, contract.EffectPayload{
					Kind:      contract.PayloadAreaDamage,
					Magnitude: payload.Magnitude,
					Radius:    payload.Radius,
				}, e.nextPayloadTick, tick)
			}
			e.nextPayloadTick = e.nextPayloadTick.Add(interval)
		}
	}
}

func (d *Dispatcher) applyInstant(e *Entity, event CollisionEvent, payload contract.EffectPayload, tick uint64) {
	actor, ok := d.physics.Actor(event.OtherID)
	if !ok {
		return
	}
	actor.ApplyHealthDelta(-payload.Magnitude)
	combat.DamageApplied(context.Background(), d.publisher, tick,
		logging.EntityRef{ID: e.ID.String(), Kind: logging.EntityKindEntity},
		logging.EntityRef{ID: event.OtherID, Kind: logging.EntityKindActor},
		combat.DamageAppliedPayload{
			PayloadKind: string(payload.Kind),
			Magnitude:   payload.Magnitude,
			Point:       [3]float64{event.Point.X, event.Point.Y, event.Point.Z},
		}, nil)
}

// applyArea deals uniform damage to every actor inside the radius (no
// falloff) and, when the payload carries a duration, cascades a burn zone
// governed by the ordinary entity lifecycle.
func (d *Dispatcher) applyArea(e *Entity, center Vec3, payload contract.EffectPayload, now time.Time, tick uint64) {
	targets := d.physics.QueryRadius(center, payload.Radius, e.CollisionMask)
	for _, target := range targets {
		if target.ActorID() == e.OwnerID {
			continue
		}
		target.ApplyHealthDelta(-payload.Magnitude)
	}
	combat.AreaResolved(context.Background(), d.publisher, tick,
		logging.EntityRef{ID: e.ID.String(), Kind: logging.EntityKindEntity},
		combat.AreaResolvedPayload{
			Radius:    payload.Radius,
			Center:    [3]float64{center.X, center.Y, center.Z},
			Targets:   len(targets),
			Magnitude: payload.Magnitude,
		}, nil)

	if payload.DurationMs > 0 && payload.TickIntervalMs > 0 {
		d.spawnZone(e, center, contract.EffectPayload{
			Kind:           contract.PayloadDamageOverTime,
			Magnitude:      payload.Magnitude,
			Radius:         payload.Radius,
			DurationMs:     payload.DurationMs,
			TickIntervalMs: payload.TickIntervalMs,
		}, now, tick)
	}
}

// spawnZone cascades a damage-over-time zone entity. It goes through the
// normal registry path: same validation, same scheduler, pending until the
// next tick.
func (d *Dispatcher) spawnZone(e *Entity, center Vec3, payload contract.EffectPayload, now time.Time, tick uint64) {
	if d.registry == nil || payload.DurationMs <= 0 {
		return
	}
	_, err := d.registry.Spawn(EntitySpec{
		Kind:          contract.EntityKindAreaEffect,
		Type:          e.Type + ".zone",
		OwnerID:       e.OwnerID,
		Position:      center,
		Radius:        payload.Radius,
		MaxLifetime:   time.Duration(payload.DurationMs) * time.Millisecond,
		CollisionMask: e.CollisionMask,
		Payloads:      []contract.EffectPayload{payload},
	}, now)
	if err != nil {
		// Zone specs are produced internally; a failure here is a bug worth
		// surfacing, not a tick abort.
		combat.TickFault(context.Background(), d.publisher, tick,
			logging.EntityRef{ID: e.ID.String(), Kind: logging.EntityKindEntity},
			combat.TickFaultPayload{Stage: "cascade", Err: err.Error()})
	}
}

// bounce reflects the heading about the contact normal, or straight back
// when the contact carries none, and consumes the entity once the budget is
// spent.
func (d *Dispatcher) bounce(e *Entity, event CollisionEvent) {
	if e.BounceBudget <= 0 {
		e.transition(StateConsumed, contract.EndReasonHit)
		return
	}
	e.BounceBudget--

	if event.Normal != nil {
		if normal, ok := event.Normal.Normalized(); ok {
			e.Direction = e.Direction.Reflect(normal)
			e.Velocity = e.Velocity.Reflect(normal)
		}
	} else {
		e.Direction = e.Direction.Negate()
		e.Velocity = e.Velocity.Negate()
	}
	e.steered = true
}

func (d *Dispatcher) triggers(payload contract.EffectPayload) bool {
	if payload.TriggerChance <= 0 || payload.TriggerChance >= 1 {
		return true
	}
	if d.rng == nil {
		return true
	}
	return d.rng.Float64() < payload.TriggerChance
}
