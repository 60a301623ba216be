package scene

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/fw03/go-scene-raytracer/pkg/core"
)

// Camera is a pinhole camera looking from Position towards LookAt
type Camera struct {
	Position mgl32.Vec3
	LookAt   mgl32.Vec3
	Up       mgl32.Vec3
	FOV      float32 // Field of view in radians
	Width    int     // Output resolution
	Height   int
}

// NewCamera creates a camera with the given resolution
func NewCamera(position, lookAt, up mgl32.Vec3, fov float32, width, height int) Camera {
	return Camera{
		Position: position,
		LookAt:   lookAt,
		Up:       up,
		FOV:      fov,
		Width:    width,
		Height:   height,
	}
}

// Ray builds the primary ray through normalised screen coordinates.
// nx is aspect-corrected and grows to the right, ny grows downward,
// both spanning [-1, 1] across the image. The direction is unit length.
func (c *Camera) Ray(nx, ny float32) core.Ray {
	forward := c.LookAt.Sub(c.Position).Normalize()
	right := forward.Cross(c.Up).Normalize()
	up := right.Cross(forward)

	focal := 1 / math32.Tan(c.FOV/2)
	direction := right.Mul(nx).Sub(up.Mul(ny)).Add(forward.Mul(focal)).Normalize()
	return core.NewRay(c.Position, direction)
}
