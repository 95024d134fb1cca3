package sim

import (
	"math"
	"testing"
	"time"

	"volley/server/effects/contract"
	"volley/server/logging"
)

func fixedClock(at time.Time) logging.ClockFunc {
	return func() time.Time { return at }
}

func TestWorldStraightFlightExpires(t *testing.T) {
	start := time.Unix(100, 0)
	world := NewWorld(Config{}, &fakePhysics{}, nil, fixedClock(start), nil)

	completions := 0
	id, err := world.Spawn(EntitySpec{
		Type: "bolt", Position: Vec3{X: 1}, Direction: Vec3{Z: 1}, Speed: 10,
		MaxLifetime: time.Second,
		OnComplete:  func(Completion) { completions++ },
	})
	if err != nil {
		t.Fatalf("spawn failed: %v", err)
	}

	now := start
	for i := 0; i < 10; i++ {
		now = now.Add(100 * time.Millisecond)
		world.Step(now, 0.1)
	}

	ended := world.DrainEndEvents()
	if len(ended) != 1 {
		t.Fatalf("expected one end event, got %d", len(ended))
	}
	if ended[0].Reason != contract.EndReasonExpired {
		t.Fatalf("reason %q, want expired", ended[0].Reason)
	}
	if ended[0].ID != id.String() {
		t.Fatalf("ended id %q, want %q", ended[0].ID, id.String())
	}
	if ended[0].Seq != 1 {
		t.Fatalf("seq %d, want 1", ended[0].Seq)
	}
	if completions != 1 {
		t.Fatalf("completions %d", completions)
	}
	if world.Get(id) != nil {
		t.Fatalf("retired entity still live")
	}
}

func TestWorldDistanceCapEndsOnBoundary(t *testing.T) {
	start := time.Unix(0, 0)
	world := NewWorld(Config{}, &fakePhysics{}, nil, fixedClock(start), nil)

	var final Completion
	_, err := world.Spawn(EntitySpec{
		Type: "bolt", Direction: Vec3{X: 1}, Speed: 10, MaxDistance: 2.5,
		OnComplete: func(c Completion) { final = c },
	})
	if err != nil {
		t.Fatalf("spawn failed: %v", err)
	}

	now := start
	for i := 0; i < 5; i++ {
		now = now.Add(100 * time.Millisecond)
		world.Step(now, 0.1)
	}

	ended := world.DrainEndEvents()
	if len(ended) != 1 || ended[0].Reason != contract.EndReasonDistance {
		t.Fatalf("expected distance end, got %+v", ended)
	}
	if final.DistanceTraveled != 2.5 {
		t.Fatalf("distance %v, want exactly the cap", final.DistanceTraveled)
	}
	if final.Position.Sub(Vec3{X: 2.5}).Length() > 1e-9 {
		t.Fatalf("final position %v overshot the cap", final.Position)
	}
}

// planePhysics reports a swept hit against a wall plane at x=5 and lets the
// dummy actor behind it take damage.
func planeHitPhysics(dummy *fakeActor) *fakePhysics {
	return &fakePhysics{
		actors: map[string]*fakeActor{dummy.id: dummy},
		ray: func(origin, direction Vec3, maxDistance float64, mask uint32) (RayHit, bool) {
			if direction.X <= 0 {
				return RayHit{}, false
			}
			distance := (5 - origin.X) / direction.X
			if distance < 0 || distance > maxDistance {
				return RayHit{}, false
			}
			normal := Vec3{X: -1}
			return RayHit{OtherID: dummy.id, Point: origin.Add(direction.Scale(distance)), Normal: &normal, Distance: distance}, true
		},
	}
}

func TestWorldHitConsumesAndDamages(t *testing.T) {
	dummy := &fakeActor{id: "dummy", health: 100}
	start := time.Unix(0, 0)
	world := NewWorld(Config{}, planeHitPhysics(dummy), nil, fixedClock(start), nil)

	_, err := world.Spawn(EntitySpec{
		Type: "bolt", Direction: Vec3{X: 1}, Speed: 10,
		Payloads: []contract.EffectPayload{{Kind: contract.PayloadInstantDamage, Magnitude: 25}},
	})
	if err != nil {
		t.Fatalf("spawn failed: %v", err)
	}

	now := start
	var ended []contract.EntityEndEvent
	for i := 0; i < 10 && len(ended) == 0; i++ {
		now = now.Add(100 * time.Millisecond)
		world.Step(now, 0.1)
		ended = append(ended, world.DrainEndEvents()...)
	}

	if len(ended) != 1 || ended[0].Reason != contract.EndReasonHit {
		t.Fatalf("expected hit end, got %+v", ended)
	}
	if dummy.health != 75 {
		t.Fatalf("dummy health %v, want 75", dummy.health)
	}
}

// A swept hit snaps the entity onto the contact point mid-tick; the distance
// integral must count the walked segment only, and a surviving piercing
// entity continues from the snap point instead of rejoining the closed-form
// track.
func TestWorldPiercingHitKeepsDistanceIntegral(t *testing.T) {
	dummy := &fakeActor{id: "dummy", health: 100}
	physics := &fakePhysics{
		actors: map[string]*fakeActor{dummy.id: dummy},
		ray: func(origin, direction Vec3, maxDistance float64, mask uint32) (RayHit, bool) {
			if direction.X <= 0 || origin.X >= 3 {
				return RayHit{}, false
			}
			distance := (3 - origin.X) / direction.X
			if distance > maxDistance {
				return RayHit{}, false
			}
			normal := Vec3{X: -1}
			return RayHit{OtherID: dummy.id, Point: origin.Add(direction.Scale(distance)), Normal: &normal, Distance: distance}, true
		},
	}
	start := time.Unix(0, 0)
	world := NewWorld(Config{}, physics, nil, fixedClock(start), nil)

	id, err := world.Spawn(EntitySpec{
		Type: "piercer", Direction: Vec3{X: 1}, Speed: 10,
		Impact:   contract.ImpactPierce,
		Payloads: []contract.EffectPayload{{Kind: contract.PayloadInstantDamage, Magnitude: 10}},
	})
	if err != nil {
		t.Fatalf("spawn failed: %v", err)
	}

	world.Step(start.Add(500*time.Millisecond), 0.5)
	e := world.Get(id)
	if e == nil {
		t.Fatalf("piercing entity retired on first hit")
	}
	if e.Position.Sub(Vec3{X: 3}).Length() > 1e-9 {
		t.Fatalf("position %v after hit, want the wall at x=3", e.Position)
	}
	if math.Abs(e.DistanceTraveled-3) > 1e-9 {
		t.Fatalf("distance %v after hit, want 3", e.DistanceTraveled)
	}

	world.Step(start.Add(time.Second), 0.5)
	e = world.Get(id)
	if e == nil {
		t.Fatalf("piercing entity retired after passing through")
	}
	if e.Position.Sub(Vec3{X: 8}).Length() > 1e-9 {
		t.Fatalf("position %v, want x=8 continuing from the snap point", e.Position)
	}
	if math.Abs(e.DistanceTraveled-8) > 1e-9 {
		t.Fatalf("distance %v, want the walked path of 8", e.DistanceTraveled)
	}
	if dummy.health != 90 {
		t.Fatalf("dummy health %v, want a single application", dummy.health)
	}
}

func TestWorldExplosionCascadesAndBurnsOut(t *testing.T) {
	dummy := &fakeActor{id: "dummy", health: 1000}
	physics := planeHitPhysics(dummy)
	physics.radius = func(point Vec3, radius float64, mask uint32) []ActorRef {
		return []ActorRef{dummy}
	}
	start := time.Unix(0, 0)
	world := NewWorld(Config{}, physics, nil, fixedClock(start), nil)

	_, err := world.Spawn(EntitySpec{
		Type: "fireball", Direction: Vec3{X: 1}, Speed: 10,
		Payloads: []contract.EffectPayload{{
			Kind: contract.PayloadAreaDamage, Magnitude: 40, Radius: 8,
			DurationMs: 1000, TickIntervalMs: 500,
		}},
	})
	if err != nil {
		t.Fatalf("spawn failed: %v", err)
	}

	now := start
	var ended []contract.EntityEndEvent
	for i := 0; i < 30; i++ {
		now = now.Add(100 * time.Millisecond)
		world.Step(now, 0.1)
		ended = append(ended, world.DrainEndEvents()...)
	}

	// The projectile lands, the blast applies, and the cascaded zone lives
	// its full second before expiring on its own.
	if len(ended) != 2 {
		t.Fatalf("expected projectile and zone ends, got %+v", ended)
	}
	if ended[0].Reason != contract.EndReasonHit {
		t.Fatalf("projectile end %q", ended[0].Reason)
	}
	if ended[1].Reason != contract.EndReasonExpired {
		t.Fatalf("zone end %q", ended[1].Reason)
	}
	if ended[1].Seq != ended[0].Seq+1 {
		t.Fatalf("seq not monotonic: %d then %d", ended[0].Seq, ended[1].Seq)
	}
	// 40 blast plus two 40-magnitude zone ticks inside the second.
	if dummy.health != 1000-3*40 {
		t.Fatalf("dummy health %v", dummy.health)
	}
}

func TestWorldRemoveIdempotent(t *testing.T) {
	start := time.Unix(0, 0)
	world := NewWorld(Config{}, &fakePhysics{}, nil, fixedClock(start), nil)

	id, _ := world.Spawn(EntitySpec{Type: "bolt", Direction: Vec3{X: 1}, Speed: 10})
	world.Step(start.Add(33*time.Millisecond), 1.0/30)

	world.Remove(id)
	world.Remove(id)

	ended := world.DrainEndEvents()
	if len(ended) != 1 {
		t.Fatalf("double remove emitted %d events", len(ended))
	}
	if ended[0].Reason != contract.EndReasonCancelled {
		t.Fatalf("reason %q, want cancelled", ended[0].Reason)
	}
}

func TestWorldFaultIsolatedToEntity(t *testing.T) {
	physics := &fakePhysics{
		ray: func(origin, direction Vec3, maxDistance float64, mask uint32) (RayHit, bool) {
			if mask == 2 {
				panic("corrupt collider")
			}
			return RayHit{}, false
		},
	}
	start := time.Unix(0, 0)
	world := NewWorld(Config{}, physics, nil, fixedClock(start), nil)

	faulty, _ := world.Spawn(EntitySpec{
		Type: "cursed", Direction: Vec3{X: 1}, Speed: 10, CollisionMask: 2,
	})
	healthy, _ := world.Spawn(EntitySpec{
		Type: "bolt", Direction: Vec3{X: 1}, Speed: 10, CollisionMask: 1,
	})

	world.Step(start.Add(100*time.Millisecond), 0.1)

	ended := world.DrainEndEvents()
	if len(ended) != 1 || ended[0].ID != faulty.String() {
		t.Fatalf("expected only the faulty entity retired, got %+v", ended)
	}
	if ended[0].Reason != contract.EndReasonCancelled {
		t.Fatalf("fault end reason %q", ended[0].Reason)
	}
	if world.Get(healthy) == nil {
		t.Fatalf("healthy entity was dragged down")
	}

	// The world keeps ticking afterwards.
	world.Step(start.Add(200*time.Millisecond), 0.1)
	if world.Get(healthy) == nil {
		t.Fatalf("healthy entity lost on the following tick")
	}
}

func TestWorldSpawnDefaults(t *testing.T) {
	start := time.Unix(0, 0)
	world := NewWorld(Config{}, &fakePhysics{}, nil, fixedClock(start), nil)

	id, err := world.Spawn(EntitySpec{Type: "bolt", Direction: Vec3{X: 1}, Speed: 10})
	if err != nil {
		t.Fatalf("spawn failed: %v", err)
	}
	entity := world.Get(id)
	if entity.Radius != DefaultConfig().DefaultRadius {
		t.Fatalf("radius default %v", entity.Radius)
	}
	if entity.CollisionMask != ^uint32(0) {
		t.Fatalf("mask default %x", entity.CollisionMask)
	}
}

func TestWorldSpawnFromConfigWire(t *testing.T) {
	start := time.Unix(0, 0)
	world := NewWorld(Config{}, &fakePhysics{}, nil, fixedClock(start), nil)

	id, err := world.SpawnFromConfig("fireball", "caster", contract.SpawnConfig{
		StartPosition: [3]float64{1, 2, 3},
		Direction:     [3]float64{0, 0, 1},
		Speed:         30,
		Duration:      2500,
		MaxDistance:   60,
	}, nil)
	if err != nil {
		t.Fatalf("spawn failed: %v", err)
	}
	entity := world.Get(id)
	if entity.Position != (Vec3{X: 1, Y: 2, Z: 3}) {
		t.Fatalf("position %v", entity.Position)
	}
	if entity.OwnerID != "caster" || entity.Type != "fireball" {
		t.Fatalf("identity %q/%q", entity.Type, entity.OwnerID)
	}
	if entity.MaxLifetime != 2500*time.Millisecond {
		t.Fatalf("lifetime %v", entity.MaxLifetime)
	}
	if entity.MaxDistance != 60 {
		t.Fatalf("max distance %v", entity.MaxDistance)
	}
}

func TestWorldSnapshot(t *testing.T) {
	start := time.Unix(0, 0)
	world := NewWorld(Config{}, &fakePhysics{}, nil, fixedClock(start), nil)

	world.Spawn(EntitySpec{Type: "bolt", Position: Vec3{X: 2}, Direction: Vec3{X: 1}, Speed: 10})
	world.Step(start.Add(100*time.Millisecond), 0.1)

	snap := world.Snapshot()
	if snap.Tick != 1 {
		t.Fatalf("snapshot tick %d", snap.Tick)
	}
	if len(snap.Entities) != 1 {
		t.Fatalf("snapshot entities %d", len(snap.Entities))
	}
	if snap.Entities[0].Position.X <= 2 {
		t.Fatalf("snapshot position did not advance: %v", snap.Entities[0].Position)
	}
}
