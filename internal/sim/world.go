package sim

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"volley/server/effects/contract"
	"volley/server/logging"
	"volley/server/logging/combat"
	"volley/server/logging/lifecycle"
)

// World wires the registry, integrator, resolver, dispatcher, and scheduler
// into one tick-driven core. All mutation happens inside Step; callers on
// other goroutines go through the Loop's command queue.
type World struct {
	cfg        Config
	registry   *Registry
	integrator *Integrator
	resolver   *Resolver
	dispatcher *Dispatcher
	scheduler  *Scheduler
	physics    Physics
	publisher  logging.Publisher
	clock      logging.Clock

	tick      uint64
	seq       contract.Seq
	endEvents []contract.EntityEndEvent
}

func NewWorld(cfg Config, physics Physics, publisher logging.Publisher, clock logging.Clock, rng *rand.Rand) *World {
	if cfg.TickRate <= 0 {
		cfg.TickRate = DefaultConfig().TickRate
	}
	if cfg.DefaultRadius <= 0 {
		cfg.DefaultRadius = DefaultConfig().DefaultRadius
	}
	if cfg.DefaultMask == 0 {
		cfg.DefaultMask = DefaultConfig().DefaultMask
	}
	if publisher == nil {
		publisher = logging.NopPublisher()
	}
	if clock == nil {
		clock = logging.SystemClock{}
	}
	registry := NewRegistry()
	return &World{
		cfg:        cfg,
		registry:   registry,
		integrator: NewIntegrator(cfg.Gravity, physics),
		resolver:   NewResolver(physics),
		dispatcher: NewDispatcher(physics, registry, publisher, rng),
		scheduler:  NewScheduler(publisher, cfg.ExpireEffect),
		physics:    physics,
		publisher:  publisher,
		clock:      clock,
	}
}

// Spawn validates and stages an entity. It becomes visible to the tick flow
// at the next Step.
func (w *World) Spawn(spec EntitySpec) (EntityID, error) {
	if spec.CollisionMask == 0 {
		spec.CollisionMask = w.cfg.DefaultMask
	}
	if spec.Radius <= 0 && spec.Kind != contract.EntityKindAreaEffect {
		spec.Radius = w.cfg.DefaultRadius
	}
	now := w.clock.Now()
	id, err := w.registry.Spawn(spec, now)
	if err != nil {
		return EntityID{}, err
	}
	lifecycle.EntitySpawned(context.Background(), w.publisher, w.tick,
		logging.EntityRef{ID: id.String(), Kind: logging.EntityKindEntity},
		lifecycle.EntitySpawnedPayload{
			Kind:     string(spec.Kind),
			Position: [3]float64{spec.Position.X, spec.Position.Y, spec.Position.Z},
			Speed:    spec.Speed,
		}, nil)
	return id, nil
}

// SpawnFromConfig converts a wire spawn config into a spec and spawns it.
func (w *World) SpawnFromConfig(typeName, ownerID string, cfg contract.SpawnConfig, onComplete CompletionFunc) (EntityID, error) {
	spec := SpecFromConfig(typeName, ownerID, cfg)
	spec.OnComplete = onComplete
	return w.Spawn(spec)
}

// SpecFromConfig maps the flat wire config onto an EntitySpec.
func SpecFromConfig(typeName, ownerID string, cfg contract.SpawnConfig) EntitySpec {
	return EntitySpec{
		Kind:         cfg.Kind,
		Type:         typeName,
		OwnerID:      ownerID,
		Position:     Vec3{cfg.StartPosition[0], cfg.StartPosition[1], cfg.StartPosition[2]},
		Direction:    Vec3{cfg.Direction[0], cfg.Direction[1], cfg.Direction[2]},
		Speed:        cfg.Speed,
		Radius:       cfg.Radius,
		MaxLifetime:  time.Duration(cfg.Duration) * time.Millisecond,
		MaxDistance:  cfg.MaxDistance,
		Motion:       cfg.Motion,
		GravityScale: cfg.GravityScale,
		Impact:       cfg.Impact,
		BounceBudget: cfg.BounceBudget,
		Homing:       cfg.Homing,
		Payloads:     cfg.Payload,
	}
}

// Remove cancels an entity from outside (owner despawn, room leave). The
// entity goes straight to Expired; a resolved-but-unapplied hit is
// suppressed, already-applied effects stay. Unknown ids are a no-op.
func (w *World) Remove(id EntityID) {
	event, ok := w.scheduler.Cancel(w.registry, id, w.clock.Now(), w.tick)
	if !ok {
		return
	}
	w.recordEnd(event)
}

// Get returns the live entity for id, or nil.
func (w *World) Get(id EntityID) *Entity {
	return w.registry.Get(id)
}

// Registry exposes the entity set for spawner composition (dependency
// injection instead of a package-level singleton).
func (w *World) Registry() *Registry {
	return w.registry
}

// Tick reports the last completed simulation tick.
func (w *World) Tick() uint64 {
	return w.tick
}

// Step advances the core one tick: commit pending spawns, integrate motion,
// resolve collisions, dispatch payloads, then sweep expiries. A fault in one
// entity's resolution is contained to that entity.
func (w *World) Step(now time.Time, dt float64) {
	w.tick++
	w.registry.CommitPending()

	w.registry.ForEachActive(func(e *Entity) {
		w.stepEntity(e, now, dt)
	})

	for _, event := range w.scheduler.Sweep(w.registry, now, w.tick) {
		w.recordEnd(event)
	}
}

func (w *World) stepEntity(e *Entity, now time.Time, dt float64) {
	defer func() {
		if r := recover(); r != nil {
			combat.TickFault(context.Background(), w.publisher, w.tick,
				logging.EntityRef{ID: e.ID.String(), Kind: logging.EntityKindEntity},
				combat.TickFaultPayload{Stage: "step", Err: fmt.Sprint(r)})
			// The entity is in an unknown state; retire it rather than let
			// it fault every subsequent tick.
			e.transition(StateExpired, contract.EndReasonCancelled)
		}
	}()

	switch e.Kind {
	case contract.EntityKindAreaEffect:
		w.dispatcher.TickAreaEffect(e, now, w.tick)
	default:
		w.integrator.Advance(e, now, dt)
		if event := w.resolver.Resolve(e); event != nil {
			w.dispatcher.ResolveHit(e, *event, now, w.tick)
		}
	}
}

func (w *World) recordEnd(event contract.EntityEndEvent) {
	w.seq++
	event.Seq = w.seq
	w.endEvents = append(w.endEvents, event)
}

// DrainEndEvents returns the completion events accumulated since the last
// drain, for broadcast to collaborators.
func (w *World) DrainEndEvents() []contract.EntityEndEvent {
	if len(w.endEvents) == 0 {
		return nil
	}
	drained := w.endEvents
	w.endEvents = nil
	return drained
}
