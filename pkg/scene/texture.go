package scene

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/fw03/go-scene-raytracer/pkg/core"
)

// Texture is a row-major RGB bitmap with components in [0, 1]
type Texture struct {
	Width  int
	Height int
	Pixels []core.Color // Pixels[y*Width + x]
}

// NewTexture creates a texture from pixel data
func NewTexture(width, height int, pixels []core.Color) *Texture {
	return &Texture{Width: width, Height: height, Pixels: pixels}
}

// At returns the texel at integer coordinates, wrapping both axes
func (t *Texture) At(x, y int) core.Color {
	return t.Pixels[wrap(y, t.Height)*t.Width+wrap(x, t.Width)]
}

// Sample returns the nearest texel for the given UV coordinates. U wraps
// horizontally; V addresses the image bottom-up, matching OBJ convention.
func (t *Texture) Sample(uv mgl32.Vec2) core.Color {
	x := int(math32.Floor(uv.X() * float32(t.Width)))
	y := int(math32.Floor((1 - uv.Y()) * float32(t.Height)))
	return t.At(x, y)
}

func wrap(i, n int) int {
	i %= n
	if i < 0 {
		i += n
	}
	return i
}
