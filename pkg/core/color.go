package core

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// Color is an RGB color with components nominally in [0, 1].
// It shares the vector type so shading math composes directly.
type Color = mgl32.Vec3

// NewColor creates a color from red, green and blue components
func NewColor(r, g, b float32) Color {
	return Color{r, g, b}
}

// White is the neutral transmission color
func White() Color {
	return Color{1, 1, 1}
}

// MulElem returns the component-wise product of two vectors
func MulElem(a, b mgl32.Vec3) mgl32.Vec3 {
	return mgl32.Vec3{a.X() * b.X(), a.Y() * b.Y(), a.Z() * b.Z()}
}

// Lerp linearly interpolates between a and b by t
func Lerp(a, b mgl32.Vec3, t float32) mgl32.Vec3 {
	return a.Mul(1 - t).Add(b.Mul(t))
}

// Reflect mirrors the incoming vector about the normal
func Reflect(incoming, normal mgl32.Vec3) mgl32.Vec3 {
	return incoming.Sub(normal.Mul(2 * incoming.Dot(normal)))
}

// Refract bends the incoming unit vector through a surface with the given
// ratio of refraction indices. Returns false on total internal reflection.
func Refract(incoming, normal mgl32.Vec3, eta float32) (mgl32.Vec3, bool) {
	cosI := -incoming.Dot(normal)
	sin2T := eta * eta * (1 - cosI*cosI)
	if sin2T > 1 {
		return mgl32.Vec3{}, false
	}
	cosT := math32.Sqrt(1 - sin2T)
	return incoming.Mul(eta).Add(normal.Mul(eta*cosI - cosT)), true
}
