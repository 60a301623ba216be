package scene

import "github.com/fw03/go-scene-raytracer/pkg/core"

// Skybox is the directional environment background: an equirectangular
// image when present, otherwise a constant color.
type Skybox struct {
	Color core.Color
	Image *Texture
}

// NewColorSkybox creates a constant-color skybox
func NewColorSkybox(color core.Color) Skybox {
	return Skybox{Color: color}
}

// NewImageSkybox creates a skybox sampled from an equirectangular image
func NewImageSkybox(image *Texture) Skybox {
	return Skybox{Image: image}
}

// Settings holds the global render settings of a scene
type Settings struct {
	AmbientColor     core.Color
	AmbientIntensity float32
	Skybox           Skybox
	AntiAliasing     bool
	MaxDepth         int
}

// DefaultSettings returns black ambient, no skybox image and the
// recommended recursion depth
func DefaultSettings() Settings {
	return Settings{
		AmbientColor:     core.NewColor(0, 0, 0),
		AmbientIntensity: 0,
		Skybox:           NewColorSkybox(core.NewColor(0, 0, 0)),
		AntiAliasing:     false,
		MaxDepth:         5,
	}
}
