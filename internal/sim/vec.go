package sim

import (
	"encoding/json"
	"fmt"
	"math"
)

// Vec3 is a position or direction in world space. It marshals as a
// 3-element array so vector fields stay flat on the wire.
type Vec3 struct {
	X float64
	Y float64
	Z float64
}

func (v Vec3) Add(o Vec3) Vec3 {
	return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z}
}

func (v Vec3) Sub(o Vec3) Vec3 {
	return Vec3{v.X - o.X, v.Y - o.Y, v.Z - o.Z}
}

func (v Vec3) Scale(s float64) Vec3 {
	return Vec3{v.X * s, v.Y * s, v.Z * s}
}

func (v Vec3) Dot(o Vec3) float64 {
	return v.X*o.X + v.Y*o.Y + v.Z*o.Z
}

func (v Vec3) Length() float64 {
	return math.Sqrt(v.Dot(v))
}

func (v Vec3) DistanceTo(o Vec3) float64 {
	return v.Sub(o).Length()
}

// Normalized returns the unit vector, or false when the length is too
// small to normalize safely.
func (v Vec3) Normalized() (Vec3, bool) {
	length := v.Length()
	if length < 1e-9 {
		return Vec3{}, false
	}
	return v.Scale(1 / length), true
}

// Reflect mirrors the vector about the plane described by the unit normal.
func (v Vec3) Reflect(normal Vec3) Vec3 {
	return v.Sub(normal.Scale(2 * v.Dot(normal)))
}

// Negate flips the vector; used as the bounce fallback when the contact
// carries no normal.
func (v Vec3) Negate() Vec3 {
	return Vec3{-v.X, -v.Y, -v.Z}
}

func (v Vec3) IsZero() bool {
	return v.X == 0 && v.Y == 0 && v.Z == 0
}

func (v Vec3) MarshalJSON() ([]byte, error) {
	return json.Marshal([3]float64{v.X, v.Y, v.Z})
}

func (v *Vec3) UnmarshalJSON(data []byte) error {
	var arr [3]float64
	if err := json.Unmarshal(data, &arr); err != nil {
		return fmt.Errorf("vec3 expects a 3-element array: %w", err)
	}
	v.X, v.Y, v.Z = arr[0], arr[1], arr[2]
	return nil
}

func (v Vec3) String() string {
	return fmt.Sprintf("[%.3f %.3f %.3f]", v.X, v.Y, v.Z)
}

// steerToward rotates dir toward the unit vector to target by blending the
// two and renormalizing. strength is clamped to [0,1]; 1 snaps directly at
// the target, 0 leaves dir unchanged. The returned vector is always unit
// length so the caller's speed magnitude is preserved.
func steerToward(dir Vec3, toTarget Vec3, strength float64) Vec3 {
	if strength <= 0 {
		return dir
	}
	if strength > 1 {
		strength = 1
	}
	desired, ok := toTarget.Normalized()
	if !ok {
		return dir
	}
	blended := dir.Scale(1 - strength).Add(desired.Scale(strength))
	unit, ok := blended.Normalized()
	if !ok {
		// Exactly opposed and fully blended out; keep the current heading.
		return dir
	}
	return unit
}
