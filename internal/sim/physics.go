package sim

// Shape is the collision volume an entity presents to the physics
// collaborator. The core only needs spheres.
type Shape struct {
	Center Vec3
	Radius float64
}

// Contact is one overlap reported by a discrete intersection query.
type Contact struct {
	OtherID string
	Point   Vec3
	Normal  *Vec3
}

// RayHit is the nearest hit reported by a swept query.
type RayHit struct {
	OtherID  string
	Point    Vec3
	Normal   *Vec3
	Distance float64
}

// ActorRef is an external actor handle owned by the physics collaborator.
// The core applies damage through it and reads positions for homing.
type ActorRef interface {
	ActorID() string
	ActorPosition() Vec3
	ApplyHealthDelta(delta float64)
}

// Physics is the external, already-synchronized collision collaborator. The
// core queries it read-mostly during a tick and never owns its state.
type Physics interface {
	// QueryIntersect reports colliders overlapping the shape, in the
	// collaborator's stable reporting order.
	QueryIntersect(shape Shape, mask uint32) []Contact
	// QueryRay casts from origin along the unit direction and reports the
	// nearest hit within maxDistance, if any.
	QueryRay(origin, direction Vec3, maxDistance float64, mask uint32) (RayHit, bool)
	// QueryRadius enumerates actors within radius of the point.
	QueryRadius(point Vec3, radius float64, mask uint32) []ActorRef
	// Actor resolves a live actor by id.
	Actor(id string) (ActorRef, bool)
}
