package lifecycle

import (
	"context"

	"volley/server/logging"
)

const (
	// EventEntitySpawned is emitted when the registry accepts a spawn.
	EventEntitySpawned logging.EventType = "lifecycle.entity_spawned"
	// EventEntityEnded is emitted exactly once when an entity completes.
	EventEntityEnded logging.EventType = "lifecycle.entity_ended"
)

// EntitySpawnedPayload captures spawn metadata for a new entity.
type EntitySpawnedPayload struct {
	Kind     string     `json:"kind"`
	Position [3]float64 `json:"position"`
	Speed    float64    `json:"speed"`
	Cascade  bool       `json:"cascade,omitempty"`
}

// EntityEndedPayload captures why an entity completed.
type EntityEndedPayload struct {
	Reason           string     `json:"reason"`
	Position         [3]float64 `json:"position"`
	DistanceTraveled float64    `json:"distanceTraveled"`
	LifetimeMs       int64      `json:"lifetimeMs"`
	TargetsHit       int        `json:"targetsHit,omitempty"`
	BouncesRemaining int        `json:"bouncesRemaining,omitempty"`
}

// EntitySpawned publishes an entity spawn event.
func EntitySpawned(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload EntitySpawnedPayload, extra map[string]any) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventEntitySpawned,
		Tick:     tick,
		Actor:    actor,
		Severity: logging.SeverityInfo,
		Category: logging.CategoryLifecycle,
		Payload:  payload,
		Extra:    extra,
	})
}

// EntityEnded publishes the completion event for an entity.
func EntityEnded(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload EntityEndedPayload, extra map[string]any) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventEntityEnded,
		Tick:     tick,
		Actor:    actor,
		Severity: logging.SeverityInfo,
		Category: logging.CategoryLifecycle,
		Payload:  payload,
		Extra:    extra,
	})
}
