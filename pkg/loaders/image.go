package loaders

import (
	"fmt"
	"image"
	_ "image/jpeg" // JPEG decoder
	_ "image/png"  // PNG decoder
	"os"

	"github.com/fw03/go-scene-raytracer/pkg/core"
	"github.com/fw03/go-scene-raytracer/pkg/scene"
)

// LoadImage decodes a PNG or JPEG file into a texture with components
// normalized to [0, 1]
func LoadImage(filename string) (*scene.Texture, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open image file: %w", err)
	}
	defer file.Close()

	img, _, err := image.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image %s: %w", filename, err)
	}

	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()
	pixels := make([]core.Color, width*height)

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			r, g, b, _ := img.At(x+bounds.Min.X, y+bounds.Min.Y).RGBA()
			// RGBA returns uint32 in [0, 65535]
			pixels[y*width+x] = core.NewColor(
				float32(r)/65535.0,
				float32(g)/65535.0,
				float32(b)/65535.0,
			)
		}
	}

	return scene.NewTexture(width, height, pixels), nil
}
