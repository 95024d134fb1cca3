package contract

// Built-in effect type names. These are part of the wire contract consumed
// by clients, so they live alongside the other contract metadata.
const (
	EffectTypeFireball    = "fireball"
	EffectTypeMeteor      = "meteor"
	EffectTypePiercerBolt = "piercer-bolt"
	EffectTypeBounceOrb   = "bounce-orb"
	EffectTypeExplosion   = "explosion"
	EffectTypeBurnZone    = "burn-zone"
)

// BuiltInRegistry materialises the spawn templates for the built-in effect
// types. Callers receive fresh struct instances so they can customise
// behaviour without mutating the package-level templates.
func BuiltInRegistry() Registry {
	return Registry{
		EffectTypeFireball: {
			Direction:   [3]float64{0, 0, 1},
			Speed:       20,
			Duration:    3000,
			MaxDistance: 60,
			Radius:      0.4,
			Motion:      MotionKinematic,
			Impact:      ImpactConsume,
			Payload: []EffectPayload{
				{Kind: PayloadInstantDamage, Magnitude: 25},
				{
					Kind:           PayloadAreaDamage,
					Magnitude:      10,
					Radius:         4,
					DurationMs:     2000,
					TickIntervalMs: 500,
				},
			},
		},
		EffectTypeMeteor: {
			Direction:    [3]float64{0, 0.35, 1},
			Speed:        14,
			Duration:     6000,
			Radius:       1.2,
			Motion:       MotionDynamic,
			GravityScale: 1,
			Impact:       ImpactConsume,
			Payload: []EffectPayload{
				{
					Kind:           PayloadAreaDamage,
					Magnitude:      40,
					Radius:         8,
					DurationMs:     4000,
					TickIntervalMs: 400,
				},
			},
		},
		EffectTypePiercerBolt: {
			Direction:   [3]float64{0, 0, 1},
			Speed:       45,
			Duration:    1500,
			MaxDistance: 50,
			Radius:      0.2,
			Motion:      MotionKinematic,
			Impact:      ImpactPierce,
			Payload: []EffectPayload{
				{Kind: PayloadInstantDamage, Magnitude: 15},
			},
		},
		EffectTypeBounceOrb: {
			Direction:    [3]float64{0, 0.2, 1},
			Speed:        12,
			Duration:     5000,
			Radius:       0.5,
			Motion:       MotionDynamic,
			GravityScale: 0.6,
			Impact:       ImpactBounce,
			BounceBudget: 3,
			Payload: []EffectPayload{
				{Kind: PayloadInstantDamage, Magnitude: 8},
			},
		},
		// Short-fuse shell: bursts on the first contact and leaves a burn
		// zone behind.
		EffectTypeExplosion: {
			Direction:   [3]float64{0, 0, 1},
			Speed:       30,
			Duration:    500,
			MaxDistance: 10,
			Radius:      0.8,
			Motion:      MotionKinematic,
			Impact:      ImpactConsume,
			Payload: []EffectPayload{
				{
					Kind:           PayloadAreaDamage,
					Magnitude:      60,
					Radius:         6,
					DurationMs:     1500,
					TickIntervalMs: 500,
				},
			},
		},
		// Burn zones normally cascade out of an area payload, but clients may
		// also place them directly (trap-style casts).
		EffectTypeBurnZone: {
			Kind:     EntityKindAreaEffect,
			Duration: 3000,
			Radius:   3,
			Payload: []EffectPayload{
				{
					Kind:           PayloadDamageOverTime,
					Magnitude:      5,
					Radius:         3,
					DurationMs:     3000,
					TickIntervalMs: 500,
				},
			},
		},
	}
}
