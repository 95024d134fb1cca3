package sim

import (
	"fmt"
	"time"

	"volley/server/effects/contract"
)

// EntityID is a stable arena handle. Generations start at 1, so the zero
// EntityID never resolves to a live entity.
type EntityID struct {
	Index      uint32 `json:"index"`
	Generation uint32 `json:"generation"`
}

func (id EntityID) IsZero() bool {
	return id.Generation == 0
}

func (id EntityID) String() string {
	return fmt.Sprintf("entity-%d:%d", id.Index, id.Generation)
}

// ParseEntityID reverses EntityID.String for ids received over the wire.
func ParseEntityID(s string) (EntityID, bool) {
	var index, generation uint32
	if _, err := fmt.Sscanf(s, "entity-%d:%d", &index, &generation); err != nil {
		return EntityID{}, false
	}
	return EntityID{Index: index, Generation: generation}, true
}

// EntityState tracks the lifecycle phase. Transitions are monotonic:
// Active may move to Consumed or Expired, never back.
type EntityState uint8

const (
	StateActive EntityState = iota
	StateConsumed
	StateExpired
)

func (s EntityState) String() string {
	switch s {
	case StateActive:
		return "active"
	case StateConsumed:
		return "consumed"
	case StateExpired:
		return "expired"
	default:
		return "unknown"
	}
}

// CollisionEvent is the single authoritative contact chosen for an entity
// in one tick.
type CollisionEvent struct {
	EntityID EntityID
	OtherID  string
	Point    Vec3
	Normal   *Vec3
}

// Completion is delivered to the spawner exactly once per entity.
type Completion struct {
	ID               EntityID
	Type             string
	Reason           contract.EndReason
	Position         Vec3
	DistanceTraveled float64
	TargetsHit       int
}

type CompletionFunc func(Completion)

// EntitySpec carries everything needed to spawn an entity. Wire-level spawn
// configs are converted into a spec before they reach the registry.
type EntitySpec struct {
	Kind          contract.EntityKind
	Type          string
	OwnerID       string
	Position      Vec3
	Direction     Vec3
	Speed         float64
	Radius        float64
	MaxLifetime   time.Duration
	MaxDistance   float64
	Motion        contract.MotionKind
	GravityScale  float64
	Strategy      contract.CollisionStrategy
	Impact        contract.ImpactPolicy
	BounceBudget  int
	Homing        *contract.HomingSpec
	CollisionMask uint32
	Payloads      []contract.EffectPayload
	OnComplete    CompletionFunc
}

// Entity is a live simulated projectile or area effect. All mutation happens
// inside a tick: the integrator moves it, the resolver and dispatcher settle
// hits, and the scheduler retires it.
type Entity struct {
	ID            EntityID
	Kind          contract.EntityKind
	Type          string
	OwnerID       string
	Position      Vec3
	Direction     Vec3
	Speed         float64
	Velocity      Vec3
	Radius        float64
	SpawnPosition Vec3
	SpawnTime     time.Time
	MaxLifetime   time.Duration
	MaxDistance   float64

	DistanceTraveled float64
	State            EntityState
	Motion           contract.MotionKind
	GravityScale     float64
	Strategy         contract.CollisionStrategy
	Impact           contract.ImpactPolicy
	BounceBudget     int
	Homing           *contract.HomingSpec
	CollisionMask    uint32
	Payloads         []contract.EffectPayload
	OnComplete       CompletionFunc

	// prevPosition anchors this tick's swept query and distance integral.
	prevPosition Vec3
	// steered flips once homing, a bounce, or a swept snap bends the
	// path; from then on
	// kinematic motion integrates incrementally instead of by closed form.
	steered bool
	// hitTargets dedups piercing contacts across the entity's lifetime.
	hitTargets map[string]struct{}
	// nextPayloadTick drives damage-over-time cadence.
	nextPayloadTick time.Time
	endReason       contract.EndReason
	notified        bool
	pending         bool
}

// transition applies a monotonic state change; once consumed or expired the
// entity never returns to Active and the first end reason sticks.
func (e *Entity) transition(state EntityState, reason contract.EndReason) bool {
	if e.State != StateActive || state == StateActive {
		return false
	}
	e.State = state
	e.endReason = reason
	return true
}

// Elapsed reports the time alive at now.
func (e *Entity) Elapsed(now time.Time) time.Duration {
	return now.Sub(e.SpawnTime)
}

// DistanceExhausted reports whether the travel budget is spent.
func (e *Entity) DistanceExhausted() bool {
	return e.MaxDistance > 0 && e.DistanceTraveled >= e.MaxDistance
}

// AlreadyHit reports whether the target was struck before by this entity.
func (e *Entity) AlreadyHit(targetID string) bool {
	_, ok := e.hitTargets[targetID]
	return ok
}

func (e *Entity) recordHit(targetID string) {
	if e.hitTargets == nil {
		e.hitTargets = make(map[string]struct{}, 4)
	}
	e.hitTargets[targetID] = struct{}{}
}

func (e *Entity) completion() Completion {
	return Completion{
		ID:               e.ID,
		Type:             e.Type,
		Reason:           e.endReason,
		Position:         e.Position,
		DistanceTraveled: e.DistanceTraveled,
		TargetsHit:       len(e.hitTargets),
	}
}
