package server

import (
	"volley/server/effects/contract"
	"volley/server/internal/sim"
)

// clientMessage is the envelope read from a websocket client. Spawn requests
// follow the observed wire convention: a type name plus a flat config bag
// with 3-element arrays for every vector field.
type clientMessage struct {
	Type   string               `json:"type"`
	Config contract.SpawnConfig `json:"config,omitempty"`
	Effect string               `json:"effect,omitempty"`
	ID     string               `json:"id,omitempty"`
	SentAt int64                `json:"sentAt,omitempty"`
}

const (
	messageTypeSpawn     = "spawn"
	messageTypeRemove    = "remove"
	messageTypeHeartbeat = "heartbeat"
)

type joinResponse struct {
	Ver      int          `json:"ver"`
	ID       string       `json:"id"`
	Types    []string     `json:"types"`
	Entities sim.Snapshot `json:"entities"`
}

type stateMessage struct {
	Ver        int                       `json:"ver"`
	Type       string                    `json:"type"`
	Tick       uint64                    `json:"t"`
	Entities   []sim.RenderEntity        `json:"entities"`
	Ended      []contract.EntityEndEvent `json:"ended,omitempty"`
	ServerTime int64                     `json:"serverTime"`
}

type spawnAck struct {
	Ver   int    `json:"ver"`
	Type  string `json:"type"`
	ID    string `json:"id,omitempty"`
	Error string `json:"error,omitempty"`
}

type heartbeatMessage struct {
	Ver        int    `json:"ver"`
	Type       string `json:"type"`
	ServerTime int64  `json:"serverTime"`
	ClientTime int64  `json:"clientTime"`
}
