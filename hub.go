package server

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"volley/server/effects/contract"
	"volley/server/internal/sim"
	"volley/server/logging"
	"volley/server/logging/network"
)

const (
	protocolVersion   = 1
	writeWait         = 10 * time.Second
	heartbeatInterval = 2 * time.Second
	disconnectAfter   = 3 * heartbeatInterval
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	CheckOrigin:     func(*http.Request) bool { return true },
}

type subscriber struct {
	id   string
	conn *websocket.Conn
	mu   sync.Mutex

	lastHeartbeat time.Time
	// owned tracks entities spawned over this connection so they can be
	// cancelled when the session goes away.
	owned map[string]struct{}
}

func (s *subscriber) send(data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return s.conn.WriteMessage(websocket.TextMessage, data)
}

// Hub bridges websocket sessions and the simulation loop. Commands flow in
// through the loop's queue; snapshots and completion events flow back out
// through the AfterStep hook.
type Hub struct {
	loop      *sim.Loop
	templates contract.Registry
	publisher logging.Publisher

	mu          sync.Mutex
	subscribers map[string]*subscriber
}

func NewHub(loop *sim.Loop, templates contract.Registry, publisher logging.Publisher) *Hub {
	if publisher == nil {
		publisher = logging.NopPublisher()
	}
	return &Hub{
		loop:        loop,
		templates:   templates,
		publisher:   publisher,
		subscribers: make(map[string]*subscriber),
	}
}

// Routes registers the hub's HTTP surface.
func (h *Hub) Routes(mux *http.ServeMux) {
	mux.HandleFunc("/ws", h.handleWebsocket)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func (h *Hub) handleWebsocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("websocket upgrade failed: %v", err)
		return
	}

	sub := &subscriber{
		id:            uuid.NewString(),
		conn:          conn,
		lastHeartbeat: time.Now(),
		owned:         make(map[string]struct{}),
	}

	h.mu.Lock()
	h.subscribers[sub.id] = sub
	h.mu.Unlock()

	network.SessionOpened(r.Context(), h.publisher,
		logging.EntityRef{ID: sub.id, Kind: logging.EntityKindActor})

	// Entity state is only read on the loop goroutine; the join carries an
	// empty snapshot and the next broadcast delivers the live one.
	join := joinResponse{
		Ver:      protocolVersion,
		ID:       sub.id,
		Types:    h.templates.Names(),
		Entities: sim.Snapshot{},
	}
	if data, err := json.Marshal(join); err == nil {
		if err := sub.send(data); err != nil {
			h.drop(sub, "join write failed")
			return
		}
	}

	h.readPump(sub)
}

func (h *Hub) readPump(sub *subscriber) {
	defer h.drop(sub, "read loop closed")
	for {
		_, data, err := sub.conn.ReadMessage()
		if err != nil {
			return
		}
		var msg clientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			continue
		}
		h.dispatch(sub, msg)
	}
}

func (h *Hub) dispatch(sub *subscriber, msg clientMessage) {
	switch msg.Type {
	case messageTypeSpawn:
		h.enqueueSpawn(sub, msg)
	case messageTypeRemove:
		h.loop.Enqueue(sim.Command{
			ActorID:  sub.id,
			Type:     sim.CommandRemove,
			IssuedAt: time.Now(),
			Remove:   &sim.RemoveCommand{ID: msg.ID},
		})
	case messageTypeHeartbeat:
		sub.mu.Lock()
		sub.lastHeartbeat = time.Now()
		sub.mu.Unlock()
		reply := heartbeatMessage{
			Ver:        protocolVersion,
			Type:       messageTypeHeartbeat,
			ServerTime: time.Now().UnixMilli(),
			ClientTime: msg.SentAt,
		}
		if data, err := json.Marshal(reply); err == nil {
			_ = sub.send(data)
		}
	}
}

func (h *Hub) enqueueSpawn(sub *subscriber, msg clientMessage) {
	effectType := msg.Effect
	if effectType == "" {
		// Older clients put the effect name in the envelope's type slot
		// when it is not one of the control verbs.
		effectType = msg.Type
	}
	ok, reason := h.loop.Enqueue(sim.Command{
		ActorID:  sub.id,
		Type:     sim.CommandSpawn,
		IssuedAt: time.Now(),
		Spawn: &sim.SpawnCommand{
			Type:   effectType,
			Config: msg.Config,
			Notify: func(id sim.EntityID, err error) {
				ack := spawnAck{Ver: protocolVersion, Type: "spawnAck"}
				if err != nil {
					ack.Error = err.Error()
				} else {
					ack.ID = id.String()
					h.trackOwned(sub, id.String())
				}
				if data, marshalErr := json.Marshal(ack); marshalErr == nil {
					_ = sub.send(data)
				}
			},
		},
	})
	if !ok {
		ack := spawnAck{Ver: protocolVersion, Type: "spawnAck", Error: reason}
		if data, err := json.Marshal(ack); err == nil {
			_ = sub.send(data)
		}
	}
}

func (h *Hub) trackOwned(sub *subscriber, entityID string) {
	sub.mu.Lock()
	defer sub.mu.Unlock()
	sub.owned[entityID] = struct{}{}
}

// Broadcast pushes the tick's render stream and completion events to every
// subscriber; it is installed as the loop's AfterStep hook.
func (h *Hub) Broadcast(result sim.LoopStepResult) {
	msg := stateMessage{
		Ver:        protocolVersion,
		Type:       "state",
		Tick:       result.Tick,
		Entities:   result.Snapshot.Entities,
		Ended:      result.EndEvents,
		ServerTime: time.Now().UnixMilli(),
	}
	data, err := json.Marshal(msg)
	if err != nil {
		log.Printf("failed to marshal state message: %v", err)
		return
	}

	h.mu.Lock()
	subs := make([]*subscriber, 0, len(h.subscribers))
	for _, sub := range h.subscribers {
		subs = append(subs, sub)
	}
	h.mu.Unlock()

	cutoff := time.Now().Add(-disconnectAfter)
	for _, sub := range subs {
		sub.mu.Lock()
		stale := sub.lastHeartbeat.Before(cutoff)
		sub.mu.Unlock()
		if stale {
			h.drop(sub, "heartbeat timeout")
			continue
		}
		if err := sub.send(data); err != nil {
			h.drop(sub, "write failed")
		}
	}
}

// drop tears down a session and cancels the entities it still owns. The
// cancellations go through the command queue so the world is only touched
// on the loop goroutine.
func (h *Hub) drop(sub *subscriber, reason string) {
	h.mu.Lock()
	if _, ok := h.subscribers[sub.id]; !ok {
		h.mu.Unlock()
		return
	}
	delete(h.subscribers, sub.id)
	h.mu.Unlock()

	sub.conn.Close()

	sub.mu.Lock()
	owned := make([]string, 0, len(sub.owned))
	for id := range sub.owned {
		owned = append(owned, id)
	}
	sub.owned = make(map[string]struct{})
	sub.mu.Unlock()

	for _, id := range owned {
		h.loop.Enqueue(sim.Command{
			ActorID:  sub.id,
			Type:     sim.CommandRemove,
			IssuedAt: time.Now(),
			Remove:   &sim.RemoveCommand{ID: id},
		})
	}

	network.SessionClosed(context.Background(), h.publisher,
		logging.EntityRef{ID: sub.id, Kind: logging.EntityKindActor},
		network.SessionClosedPayload{Reason: reason})
}
