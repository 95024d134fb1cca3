package sim

import (
	"testing"
	"time"

	"volley/server/effects/contract"
)

func TestSchedulerLifetimeExpiry(t *testing.T) {
	registry := NewRegistry()
	start := time.Unix(0, 0)
	entity := spawnEntity(t, registry, EntitySpec{
		Type: "bolt", Direction: Vec3{X: 1}, Speed: 10,
		MaxLifetime: 2 * time.Second,
	}, start)
	registry.CommitPending()
	id := entity.ID

	s := NewScheduler(nil, nil)
	if ended := s.Sweep(registry, start.Add(time.Second), 1); len(ended) != 0 {
		t.Fatalf("entity expired early: %+v", ended)
	}
	ended := s.Sweep(registry, start.Add(2*time.Second), 2)
	if len(ended) != 1 {
		t.Fatalf("expected one end event, got %d", len(ended))
	}
	if ended[0].Reason != contract.EndReasonExpired {
		t.Fatalf("reason %q, want expired", ended[0].Reason)
	}
	if registry.Get(id) != nil {
		t.Fatalf("expired entity still resolves")
	}
}

func TestSchedulerDistanceExpiry(t *testing.T) {
	registry := NewRegistry()
	start := time.Unix(0, 0)
	entity := spawnEntity(t, registry, EntitySpec{
		Type: "bolt", Direction: Vec3{X: 1}, Speed: 10,
		MaxDistance: 30,
	}, start)
	registry.CommitPending()
	entity.DistanceTraveled = 30

	ended := NewScheduler(nil, nil).Sweep(registry, start.Add(time.Second), 1)
	if len(ended) != 1 || ended[0].Reason != contract.EndReasonDistance {
		t.Fatalf("expected distance expiry, got %+v", ended)
	}
}

func TestSchedulerHitWinsSimultaneousExpiry(t *testing.T) {
	registry := NewRegistry()
	start := time.Unix(0, 0)
	entity := spawnEntity(t, registry, EntitySpec{
		Type: "bolt", Direction: Vec3{X: 1}, Speed: 10,
		MaxLifetime: time.Second,
	}, start)
	registry.CommitPending()

	// The dispatcher consumed the entity this tick; the sweep at the exact
	// lifetime boundary must keep the hit reason.
	entity.transition(StateConsumed, contract.EndReasonHit)
	ended := NewScheduler(nil, nil).Sweep(registry, start.Add(time.Second), 1)
	if len(ended) != 1 || ended[0].Reason != contract.EndReasonHit {
		t.Fatalf("hit lost to expiry: %+v", ended)
	}
}

func TestSchedulerCompletionExactlyOnce(t *testing.T) {
	registry := NewRegistry()
	start := time.Unix(0, 0)
	completions := 0
	var got Completion
	entity := spawnEntity(t, registry, EntitySpec{
		Type: "bolt", Direction: Vec3{X: 1}, Speed: 10,
		MaxLifetime: time.Second,
		OnComplete: func(c Completion) {
			completions++
			got = c
		},
	}, start)
	registry.CommitPending()
	id := entity.ID

	s := NewScheduler(nil, nil)
	s.Sweep(registry, start.Add(time.Second), 1)
	// A late cancel against the retired handle is a stale no-op.
	if _, ok := s.Cancel(registry, id, start.Add(2*time.Second), 2); ok {
		t.Fatalf("cancel resolved a retired handle")
	}
	s.Sweep(registry, start.Add(3*time.Second), 3)

	if completions != 1 {
		t.Fatalf("completion delivered %d times", completions)
	}
	if got.ID != id || got.Reason != contract.EndReasonExpired {
		t.Fatalf("completion %+v", got)
	}
}

func TestSchedulerCancelReasonCancelled(t *testing.T) {
	registry := NewRegistry()
	start := time.Unix(0, 0)
	var got Completion
	entity := spawnEntity(t, registry, EntitySpec{
		Type: "bolt", Direction: Vec3{X: 1}, Speed: 10,
		OnComplete: func(c Completion) { got = c },
	}, start)
	registry.CommitPending()

	event, ok := NewScheduler(nil, nil).Cancel(registry, entity.ID, start.Add(time.Second), 1)
	if !ok {
		t.Fatalf("cancel missed a live entity")
	}
	if event.Reason != contract.EndReasonCancelled {
		t.Fatalf("reason %q, want cancelled", event.Reason)
	}
	if got.Reason != contract.EndReasonCancelled {
		t.Fatalf("completion reason %q", got.Reason)
	}
}

func TestSchedulerExpireEffectOnlyForCleanExpiry(t *testing.T) {
	registry := NewRegistry()
	start := time.Unix(0, 0)
	fired := map[string]int{}
	s := NewScheduler(nil, func(e *Entity) { fired[e.Type]++ })

	expired := spawnEntity(t, registry, EntitySpec{
		Type: "fizzle", Direction: Vec3{X: 1}, Speed: 10, MaxLifetime: time.Second,
	}, start)
	_ = expired

	hit := spawnEntity(t, registry, EntitySpec{
		Type: "landed", Direction: Vec3{X: 1}, Speed: 10, MaxLifetime: time.Second,
	}, start)
	hit.recordHit("dummy")
	hit.transition(StateConsumed, contract.EndReasonHit)

	cancelled := spawnEntity(t, registry, EntitySpec{
		Type: "pulled", Direction: Vec3{X: 1}, Speed: 10,
	}, start)
	registry.CommitPending()

	s.Cancel(registry, cancelled.ID, start, 1)
	s.Sweep(registry, start.Add(time.Second), 2)

	if fired["fizzle"] != 1 {
		t.Fatalf("clean expiry did not fire the hook: %v", fired)
	}
	if fired["landed"] != 0 || fired["pulled"] != 0 {
		t.Fatalf("hook fired for non-expiry ends: %v", fired)
	}
}
