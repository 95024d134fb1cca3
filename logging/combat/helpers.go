package combat

import (
	"context"

	"volley/server/logging"
)

const (
	// EventDamageApplied is emitted when a payload deals damage to an actor.
	EventDamageApplied logging.EventType = "combat.damage_applied"
	// EventAreaResolved is emitted after an area payload enumerates targets.
	EventAreaResolved logging.EventType = "combat.area_resolved"
	// EventTickFault is emitted when one entity's resolution panics.
	EventTickFault logging.EventType = "combat.tick_fault"
)

// DamageAppliedPayload describes a single damage application.
type DamageAppliedPayload struct {
	PayloadKind string     `json:"payloadKind"`
	Magnitude   float64    `json:"magnitude"`
	Point       [3]float64 `json:"point"`
}

// AreaResolvedPayload summarises an area query resolution.
type AreaResolvedPayload struct {
	Radius    float64    `json:"radius"`
	Center    [3]float64 `json:"center"`
	Targets   int        `json:"targets"`
	Magnitude float64    `json:"magnitude"`
}

// TickFaultPayload records a recovered per-entity failure.
type TickFaultPayload struct {
	Stage string `json:"stage"`
	Err   string `json:"err"`
}

// DamageApplied publishes a damage application event.
func DamageApplied(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, target logging.EntityRef, payload DamageAppliedPayload, extra map[string]any) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventDamageApplied,
		Tick:     tick,
		Actor:    actor,
		Targets:  []logging.EntityRef{target},
		Severity: logging.SeverityInfo,
		Category: logging.CategoryCombat,
		Payload:  payload,
		Extra:    extra,
	})
}

// AreaResolved publishes an area resolution event.
func AreaResolved(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload AreaResolvedPayload, extra map[string]any) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventAreaResolved,
		Tick:     tick,
		Actor:    actor,
		Severity: logging.SeverityInfo,
		Category: logging.CategoryCombat,
		Payload:  payload,
		Extra:    extra,
	})
}

// TickFault publishes a recovered per-entity fault.
func TickFault(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload TickFaultPayload) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventTickFault,
		Tick:     tick,
		Actor:    actor,
		Severity: logging.SeverityError,
		Category: logging.CategorySystem,
		Payload:  payload,
	})
}
