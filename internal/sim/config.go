package sim

// Config tunes the simulation core. Zero values fall back to the defaults
// at construction time.
type Config struct {
	// TickRate is the fixed simulation frequency in Hz.
	TickRate int
	// CatchupMaxTicks clamps how far a late tick may stretch its delta.
	CatchupMaxTicks int
	// Gravity applies to dynamic-motion entities, scaled per entity.
	Gravity Vec3
	// DefaultMask is the collision filter used when a spawn leaves it unset.
	DefaultMask uint32
	// DefaultRadius is the collision sphere used when a spawn leaves it unset.
	DefaultRadius float64
	// ExpireEffect, when set, runs for entities that expire without ever
	// hitting anything (terminal fizzle visuals and the like).
	ExpireEffect func(*Entity)
}

func DefaultConfig() Config {
	return Config{
		TickRate:        30,
		CatchupMaxTicks: 4,
		Gravity:         Vec3{Y: -9.81},
		DefaultMask:     ^uint32(0),
		DefaultRadius:   0.25,
	}
}
