package core

import "github.com/go-gl/mathgl/mgl32"

// Ray represents a ray with an origin and direction.
// The direction is unit length for rays produced by the camera; rays
// transformed into object space may carry a stretched direction.
type Ray struct {
	Origin    mgl32.Vec3
	Direction mgl32.Vec3
}

// NewRay creates a new ray
func NewRay(origin, direction mgl32.Vec3) Ray {
	return Ray{Origin: origin, Direction: direction}
}

// At returns the point at parameter t along the ray
func (r Ray) At(t float32) mgl32.Vec3 {
	return r.Origin.Add(r.Direction.Mul(t))
}
