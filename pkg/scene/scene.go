package scene

import (
	"github.com/chewxy/math32"

	"github.com/fw03/go-scene-raytracer/pkg/core"
)

// Scene is the fully-populated input to the renderer: objects, point
// lights, a camera and global settings. The renderer treats it read-only.
type Scene struct {
	Objects  []*Object
	Lights   []Light
	Camera   Camera
	Settings Settings
}

// Raycast returns the hit nearest to the ray origin across all objects.
// On equal distance the earlier object wins (insertion order).
func (s *Scene) Raycast(ray core.Ray, epsilon float32) (Hit, bool) {
	var (
		best       Hit
		found      bool
		bestDistSq = float32(math32.MaxFloat32)
	)

	for _, object := range s.Objects {
		hit, ok := object.Intersect(ray, epsilon)
		if !ok {
			continue
		}
		distSq := hit.Point.Sub(ray.Origin).LenSqr()
		if distSq < bestDistSq {
			bestDistSq = distSq
			best = hit
			found = true
		}
	}

	return best, found
}

// Clone returns a copy of the scene for a render to hold on to. Objects are
// immutable after construction, so the clone shares them; the object and
// light lists, camera and settings are copied so that concurrent edits to
// the original scene structure do not reach a running render.
func (s *Scene) Clone() *Scene {
	objects := make([]*Object, len(s.Objects))
	copy(objects, s.Objects)
	lights := make([]Light, len(s.Lights))
	copy(lights, s.Lights)

	return &Scene{
		Objects:  objects,
		Lights:   lights,
		Camera:   s.Camera,
		Settings: s.Settings,
	}
}
