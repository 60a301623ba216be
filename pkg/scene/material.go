package scene

import "github.com/fw03/go-scene-raytracer/pkg/core"

// IlluminationModel is the MTL illumination model integer (0 through 10).
// Only a few models select extra shading branches; the rest shade diffuse
// only.
type IlluminationModel int

// Specular reports whether the model adds a specular highlight term
func (m IlluminationModel) Specular() bool { return m == 2 }

// Reflection reports whether the model traces a mirror reflection ray
func (m IlluminationModel) Reflection() bool { return m == 3 || m == 4 }

// Transparency reports whether the model is a transparency variant
func (m IlluminationModel) Transparency() bool { return m == 6 || m == 7 }

// Material holds the surface attributes of a mesh group. Nil pointer fields
// mean the attribute is absent and the renderer substitutes its defaults.
type Material struct {
	Name             string
	Diffuse          *core.Color
	Specular         *core.Color
	SpecularExponent *float32
	Texture          *Texture // Diffuse texture map
	Illum            IlluminationModel
	Dissolve         *float32 // 1 = opaque, 0 = fully transparent
	RefractionIndex  *float32
}

// DissolveOrOpaque returns the material's dissolve value, treating a missing
// material or missing attribute as fully opaque
func (m *Material) DissolveOrOpaque() float32 {
	if m == nil || m.Dissolve == nil {
		return 1
	}
	return *m.Dissolve
}

// ExponentOrDefault returns the specular exponent, defaulting to 1
func (m *Material) ExponentOrDefault() float32 {
	if m == nil || m.SpecularExponent == nil {
		return 1
	}
	return *m.SpecularExponent
}

// Transparent reports whether the surface passes light through: a dissolve
// strictly between opaque and fully transparent
func (m *Material) Transparent() bool {
	d := m.DissolveOrOpaque()
	return d > 0 && d < 1
}
