package sim

// fakeActor is a minimal damageable body for tests.
type fakeActor struct {
	id     string
	pos    Vec3
	health float64
}

func (a *fakeActor) ActorID() string            { return a.id }
func (a *fakeActor) ActorPosition() Vec3        { return a.pos }
func (a *fakeActor) ApplyHealthDelta(d float64) { a.health += d }

// fakePhysics lets each test script the collision collaborator directly.
// Unset query funcs report nothing.
type fakePhysics struct {
	intersect func(shape Shape, mask uint32) []Contact
	ray       func(origin, direction Vec3, maxDistance float64, mask uint32) (RayHit, bool)
	radius    func(point Vec3, radius float64, mask uint32) []ActorRef
	actors    map[string]*fakeActor
}

func (p *fakePhysics) QueryIntersect(shape Shape, mask uint32) []Contact {
	if p.intersect == nil {
		return nil
	}
	return p.intersect(shape, mask)
}

func (p *fakePhysics) QueryRay(origin, direction Vec3, maxDistance float64, mask uint32) (RayHit, bool) {
	if p.ray == nil {
		return RayHit{}, false
	}
	return p.ray(origin, direction, maxDistance, mask)
}

func (p *fakePhysics) QueryRadius(point Vec3, radius float64, mask uint32) []ActorRef {
	if p.radius == nil {
		return nil
	}
	return p.radius(point, radius, mask)
}

func (p *fakePhysics) Actor(id string) (ActorRef, bool) {
	actor, ok := p.actors[id]
	if !ok {
		return nil, false
	}
	return actor, true
}
