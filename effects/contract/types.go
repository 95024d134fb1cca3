package contract

// Seq is a monotonic sequence id used for idempotency in transport events.
// Tick is the authoritative simulation tick number.
type Seq int64
type Tick int64

// EntityKind separates moving projectiles from stationary area effects.
type EntityKind string

const (
	EntityKindProjectile EntityKind = "projectile"
	EntityKindAreaEffect EntityKind = "area-effect"
)

// PayloadKind enumerates the gameplay payloads an entity can carry.
type PayloadKind string

const (
	PayloadInstantDamage  PayloadKind = "instant-damage"
	PayloadAreaDamage     PayloadKind = "area-damage"
	PayloadDamageOverTime PayloadKind = "damage-over-time"
)

// MotionKind enumerates movement profiles applied to entities.
type MotionKind string

const (
	// MotionKinematic drives position directly from elapsed time.
	MotionKinematic MotionKind = "kinematic"
	// MotionDynamic integrates velocity under gravity each tick.
	MotionDynamic MotionKind = "dynamic"
)

// ImpactPolicy controls how an entity resolves hits.
type ImpactPolicy string

const (
	// ImpactConsume ends the entity on its first resolved hit.
	ImpactConsume ImpactPolicy = "consume"
	// ImpactPierce keeps the entity alive; each target is hit at most once.
	ImpactPierce ImpactPolicy = "pierce"
	// ImpactBounce reflects about the contact normal until the budget runs out.
	ImpactBounce ImpactPolicy = "bounce"
)

// CollisionStrategy selects the per-tick detection query.
type CollisionStrategy string

const (
	// CollisionAuto promotes to swept whenever speed*dt can outrun the shape.
	CollisionAuto CollisionStrategy = "auto"
	// CollisionDiscrete overlaps the current shape against the world.
	CollisionDiscrete CollisionStrategy = "discrete"
	// CollisionSwept casts from the previous position along the heading.
	CollisionSwept CollisionStrategy = "swept"
)

// EndReason qualifies why an entity completed.
type EndReason string

const (
	EndReasonHit       EndReason = "hit"
	EndReasonExpired   EndReason = "expired"
	EndReasonDistance  EndReason = "distance"
	EndReasonCancelled EndReason = "cancelled"
)

// EffectPayload describes one gameplay consequence applied when an entity
// hits (instant, area) or while it lives (damage over time).
type EffectPayload struct {
	Kind           PayloadKind `json:"kind" jsonschema:"enum=instant-damage,enum=area-damage,enum=damage-over-time,description=Gameplay consequence applied by the entity"`
	Magnitude      float64     `json:"magnitude" jsonschema:"minimum=0,description=Damage applied per application"`
	Radius         float64     `json:"radius,omitempty" jsonschema:"minimum=0,description=Spatial reach for area and over-time payloads"`
	DurationMs     int64       `json:"durationMs,omitempty" jsonschema:"minimum=0,description=Lifetime of the spawned over-time zone"`
	TickIntervalMs int64       `json:"tickIntervalMs,omitempty" jsonschema:"minimum=0,description=Cadence of over-time applications"`
	TriggerChance  float64     `json:"triggerChance,omitempty" jsonschema:"minimum=0,maximum=1,description=Probability each application of the payload lands; zero means always. Over-time payloads roll per pulse and the zone itself always spawns"`
}

// HomingSpec steers an entity toward a target each tick without touching
// its collision or payload state machine.
type HomingSpec struct {
	TargetID string  `json:"targetId" jsonschema:"description=Actor the entity steers toward"`
	Strength float64 `json:"strength" jsonschema:"minimum=0,maximum=1,description=Blend factor applied to the heading each tick"`
}

// SpawnConfig is the wire form of a spawn request. Vector fields are always
// 3-element arrays; clients never send structured vector objects.
type SpawnConfig struct {
	Kind          EntityKind      `json:"kind,omitempty" jsonschema:"enum=projectile,enum=area-effect,description=Entity kind; defaults to projectile"`
	StartPosition [3]float64      `json:"startPosition" jsonschema:"description=World-space spawn point"`
	Direction     [3]float64      `json:"direction" jsonschema:"description=Initial heading; must not be the zero vector"`
	Speed         float64         `json:"speed" jsonschema:"exclusiveMinimum=0,description=Units per second along the heading"`
	Duration      int64           `json:"duration,omitempty" jsonschema:"minimum=0,description=Max lifetime in milliseconds; zero means unbounded"`
	MaxDistance   float64         `json:"maxDistance,omitempty" jsonschema:"minimum=0,description=Travel budget in world units; zero means unbounded"`
	Radius        float64         `json:"radius,omitempty" jsonschema:"minimum=0,description=Collision sphere radius"`
	Motion        MotionKind      `json:"motion,omitempty" jsonschema:"enum=kinematic,enum=dynamic,description=Movement profile; defaults to kinematic"`
	GravityScale  float64         `json:"gravityScale,omitempty" jsonschema:"description=Multiplier on world gravity for dynamic motion"`
	Impact        ImpactPolicy    `json:"impact,omitempty" jsonschema:"enum=consume,enum=pierce,enum=bounce,description=Hit resolution policy; defaults to consume"`
	BounceBudget  int             `json:"bounceBudget,omitempty" jsonschema:"minimum=0,description=Reflections allowed before a bouncing entity is consumed"`
	Homing        *HomingSpec     `json:"homing,omitempty" jsonschema:"description=Optional per-tick steering toward a target"`
	Payload       []EffectPayload `json:"payload,omitempty" jsonschema:"description=Effects applied when the entity resolves a hit"`
}

// SpawnEvent is the wire envelope observed by clients: a registered type
// name plus its config bag.
type SpawnEvent struct {
	Type   string      `json:"type" jsonschema:"description=Registered effect type name"`
	Config SpawnConfig `json:"config"`
}

// EntityEndEvent denotes the authoritative completion of an entity. Exactly
// one is emitted per spawned entity.
type EntityEndEvent struct {
	Tick   Tick      `json:"tick"`
	Seq    Seq       `json:"seq"`
	ID     string    `json:"id"`
	Reason EndReason `json:"reason"`
}
