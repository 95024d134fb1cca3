package sim

import (
	"context"
	"time"

	"volley/server/effects/contract"
	"volley/server/logging"
	"volley/server/logging/lifecycle"
)

// Scheduler enforces lifetime and distance budgets and retires finished
// entities. Every spawned entity flows through exactly one completion
// notification here, whether it hit, aged out, ran out of range, or was
// cancelled from outside.
type Scheduler struct {
	publisher logging.Publisher
	// expireEffect runs for entities that age out without ever hitting
	// anything. Optional policy; most casts want nothing here.
	expireEffect func(*Entity)
}

func NewScheduler(publisher logging.Publisher, expireEffect func(*Entity)) *Scheduler {
	if publisher == nil {
		publisher = logging.NopPublisher()
	}
	return &Scheduler{publisher: publisher, expireEffect: expireEffect}
}

// Sweep walks the committed entities, expires the ones past their budgets,
// and removes everything that left the Active state this tick. A hit this
// tick wins over a simultaneous budget expiry: the state is already
// Consumed and the transition guard keeps it that way.
func (s *Scheduler) Sweep(registry *Registry, now time.Time, tick uint64) []contract.EntityEndEvent {
	var ended []contract.EntityEndEvent

	registry.ForEachActive(func(e *Entity) {
		if e.State == StateActive {
			if e.MaxLifetime > 0 && e.Elapsed(now) >= e.MaxLifetime {
				e.transition(StateExpired, contract.EndReasonExpired)
			} else if e.DistanceExhausted() {
				e.transition(StateExpired, contract.EndReasonDistance)
			}
		}
		if e.State == StateActive {
			return
		}
		ended = append(ended, s.retire(registry, e, now, tick))
	})
	return ended
}

// Cancel expires an entity from outside the tick flow (owner despawn, room
// leave). Any hit that has not been applied yet is suppressed by the state
// transition; effects already applied stay applied.
func (s *Scheduler) Cancel(registry *Registry, id EntityID, now time.Time, tick uint64) (contract.EntityEndEvent, bool) {
	entity := registry.Get(id)
	if entity == nil {
		return contract.EntityEndEvent{}, false
	}
	entity.transition(StateExpired, contract.EndReasonCancelled)
	return s.retire(registry, entity, now, tick), true
}

// retire notifies exactly once and removes the entity. After removal the
// registry generation has moved on, so nothing can reach the entity again.
func (s *Scheduler) retire(registry *Registry, e *Entity, now time.Time, tick uint64) contract.EntityEndEvent {
	event := contract.EntityEndEvent{
		Tick:   contract.Tick(tick),
		ID:     e.ID.String(),
		Reason: e.endReason,
	}
	if !e.notified {
		e.notified = true

		if s.expireEffect != nil && e.State == StateExpired && len(e.hitTargets) == 0 &&
			e.endReason != contract.EndReasonCancelled {
			s.expireEffect(e)
		}

		lifecycle.EntityEnded(context.Background(), s.publisher, tick,
			logging.EntityRef{ID: e.ID.String(), Kind: logging.EntityKindEntity},
			lifecycle.EntityEndedPayload{
				Reason:           string(e.endReason),
				Position:         [3]float64{e.Position.X, e.Position.Y, e.Position.Z},
				DistanceTraveled: e.DistanceTraveled,
				LifetimeMs:       e.Elapsed(now).Milliseconds(),
				TargetsHit:       len(e.hitTargets),
				BouncesRemaining: e.BounceBudget,
			}, nil)

		if e.OnComplete != nil {
			e.OnComplete(e.completion())
		}
	}
	registry.Remove(e.ID)
	return event
}
