package sim

import (
	"time"

	"volley/server/effects/contract"
)

// CommandType enumerates the supported simulation commands.
type CommandType string

const (
	CommandSpawn  CommandType = "Spawn"
	CommandRemove CommandType = "Remove"
)

// SpawnCommand carries a wire spawn event staged for the next tick.
type SpawnCommand struct {
	Type   string               `json:"type"`
	Config contract.SpawnConfig `json:"config"`
	// Notify receives the allocated id, or the validation error, once the
	// command is applied.
	Notify func(EntityID, error) `json:"-"`
}

// RemoveCommand cancels a live entity.
type RemoveCommand struct {
	ID string `json:"id"`
}

// Command represents an intent captured for processing on the next tick.
type Command struct {
	OriginTick uint64         `json:"originTick"`
	ActorID    string         `json:"actorId"`
	Type       CommandType    `json:"type"`
	IssuedAt   time.Time      `json:"issuedAt"`
	Spawn      *SpawnCommand  `json:"spawn,omitempty"`
	Remove     *RemoveCommand `json:"remove,omitempty"`
}
