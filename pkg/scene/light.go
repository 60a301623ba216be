package scene

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/fw03/go-scene-raytracer/pkg/core"
)

// Light is a point light source with a unit color and a scalar intensity
type Light struct {
	Position  mgl32.Vec3
	Color     core.Color
	Intensity float32
}

// NewLight splits an emissive color into a unit color and its magnitude as
// the intensity, the way scene files describe lights
func NewLight(position mgl32.Vec3, emissive core.Color) Light {
	intensity := emissive.Len()
	color := core.White()
	if intensity > 0 {
		color = emissive.Mul(1 / intensity)
	}
	return Light{Position: position, Color: color, Intensity: intensity}
}
