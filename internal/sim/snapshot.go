package sim

// RenderEntity is one row of the read-only stream handed to the render
// collaborator each tick. The core never reads anything back from it.
type RenderEntity struct {
	ID       string `json:"id"`
	Position Vec3   `json:"position"`
	State    string `json:"state"`
}

// Snapshot captures the state exposed to non-simulation callers.
type Snapshot struct {
	Tick     uint64         `json:"t"`
	Entities []RenderEntity `json:"entities,omitempty"`
}

// Snapshot copies the committed entity set for broadcasting.
func (w *World) Snapshot() Snapshot {
	snapshot := Snapshot{Tick: w.tick}
	w.registry.ForEachActive(func(e *Entity) {
		snapshot.Entities = append(snapshot.Entities, RenderEntity{
			ID:       e.ID.String(),
			Position: e.Position,
			State:    e.State.String(),
		})
	})
	return snapshot
}
