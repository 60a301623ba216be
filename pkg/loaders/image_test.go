package loaders

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func TestLoadImage(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 2, 1))
	img.SetRGBA(0, 0, color.RGBA{255, 0, 0, 255})
	img.SetRGBA(1, 0, color.RGBA{0, 0, 255, 255})

	path := filepath.Join(t.TempDir(), "tex.png")
	file, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := png.Encode(file, img); err != nil {
		t.Fatal(err)
	}
	file.Close()

	tex, err := LoadImage(path)
	if err != nil {
		t.Fatal(err)
	}

	if tex.Width != 2 || tex.Height != 1 {
		t.Fatalf("texture size %dx%d, want 2x1", tex.Width, tex.Height)
	}
	if !tex.At(0, 0).ApproxEqualThreshold(mgl32.Vec3{1, 0, 0}, 1e-3) {
		t.Errorf("At(0,0) = %v, want red", tex.At(0, 0))
	}
	if !tex.At(1, 0).ApproxEqualThreshold(mgl32.Vec3{0, 0, 1}, 1e-3) {
		t.Errorf("At(1,0) = %v, want blue", tex.At(1, 0))
	}
}

func TestLoadImage_Errors(t *testing.T) {
	if _, err := LoadImage("/does/not/exist.png"); err == nil {
		t.Error("expected an error for a missing file")
	}

	path := writeFile(t, t.TempDir(), "not_an_image.png", "plain text")
	if _, err := LoadImage(path); err == nil {
		t.Error("expected a decode error")
	}
}
