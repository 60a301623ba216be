package loaders

import (
	"strings"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

const triangleOBJ = `
v 0 0 0
v 1 0 0
v 0 1 0
f 1 2 3
`

func TestLoadScene(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "tri.obj", triangleOBJ)
	path := writeFile(t, dir, "scene.yaml", `
models:
  - name: Tri
    file: tri.obj
    position: {x: 1, y: 2, z: 3}
    rotation: {x: 0, y: 90, z: 0}
    scale: {x: 2, y: 2, z: 2}
point_lights:
  - position: {x: 0, y: 5, z: 0}
    ke: {r: 0, g: 3, b: 4}
camera:
  position: {x: 0, y: 0, z: 10}
  look_at: {x: 0, y: 0, z: 0}
  up_vec: {x: 0, y: 1, z: 0}
  field_of_view: 90
  resolution: {width: 640, height: 480}
extra_args:
  ambient_color: {r: 1, g: 1, b: 1}
  ambient_intensity: 0.1
  background_color: {r: 0.2, g: 0.3, b: 0.4}
  anti_aliasing: true
  max_depth: 8
`)

	s, err := LoadScene(path)
	if err != nil {
		t.Fatal(err)
	}

	if len(s.Objects) != 1 {
		t.Fatalf("got %d objects, want 1", len(s.Objects))
	}
	obj := s.Objects[0]
	if obj.Name != "Tri" || len(obj.Triangles) != 1 {
		t.Errorf("object = %q with %d triangles", obj.Name, len(obj.Triangles))
	}
	if obj.Translation != (mgl32.Vec3{1, 2, 3}) {
		t.Errorf("Translation = %v", obj.Translation)
	}
	if obj.Scale != (mgl32.Vec3{2, 2, 2}) {
		t.Errorf("Scale = %v", obj.Scale)
	}
	// 90 degrees about Y turns +X into -Z
	rotated := obj.Rotation.Rotate(mgl32.Vec3{1, 0, 0})
	if !rotated.ApproxEqualThreshold(mgl32.Vec3{0, 0, -1}, 1e-5) {
		t.Errorf("Rotation maps +X to %v, want -Z", rotated)
	}

	if len(s.Lights) != 1 {
		t.Fatalf("got %d lights, want 1", len(s.Lights))
	}
	light := s.Lights[0]
	if !mgl32.FloatEqualThreshold(light.Intensity, 5, 1e-5) {
		t.Errorf("Intensity = %v, want |ke| = 5", light.Intensity)
	}
	if !light.Color.ApproxEqualThreshold(mgl32.Vec3{0, 0.6, 0.8}, 1e-5) {
		t.Errorf("Color = %v, want unit ke", light.Color)
	}

	if s.Camera.Width != 640 || s.Camera.Height != 480 {
		t.Errorf("resolution = %dx%d", s.Camera.Width, s.Camera.Height)
	}
	if !mgl32.FloatEqualThreshold(s.Camera.FOV, mgl32.DegToRad(90), 1e-5) {
		t.Errorf("FOV = %v rad, want pi/2", s.Camera.FOV)
	}

	if s.Settings.MaxDepth != 8 {
		t.Errorf("MaxDepth = %d, want 8", s.Settings.MaxDepth)
	}
	if !s.Settings.AntiAliasing {
		t.Error("AntiAliasing should be enabled")
	}
	if s.Settings.AmbientIntensity != 0.1 {
		t.Errorf("AmbientIntensity = %v", s.Settings.AmbientIntensity)
	}
	if !s.Settings.Skybox.Color.ApproxEqualThreshold(mgl32.Vec3{0.2, 0.3, 0.4}, 1e-5) {
		t.Errorf("Skybox color = %v", s.Settings.Skybox.Color)
	}
}

func TestLoadScene_Defaults(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "scene.yaml", `
camera:
  position: {x: 0, y: 0, z: 5}
  look_at: {x: 0, y: 0, z: 0}
  field_of_view: 60
  resolution: {width: 64, height: 64}
`)

	s, err := LoadScene(path)
	if err != nil {
		t.Fatal(err)
	}

	if s.Camera.Up != (mgl32.Vec3{0, 1, 0}) {
		t.Errorf("Up = %v, want the Y axis default", s.Camera.Up)
	}
	if s.Settings.MaxDepth != 5 {
		t.Errorf("MaxDepth = %d, want the default 5", s.Settings.MaxDepth)
	}
	if len(s.Objects) != 0 || len(s.Lights) != 0 {
		t.Error("empty document should produce an empty scene")
	}
}

func TestLoadScene_ZeroScaleBecomesUnit(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "tri.obj", triangleOBJ)
	path := writeFile(t, dir, "scene.yaml", `
models:
  - name: Tri
    file: tri.obj
camera:
  position: {x: 0, y: 0, z: 5}
  look_at: {x: 0, y: 0, z: 0}
  field_of_view: 60
  resolution: {width: 64, height: 64}
`)

	s, err := LoadScene(path)
	if err != nil {
		t.Fatal(err)
	}
	if s.Objects[0].Scale != (mgl32.Vec3{1, 1, 1}) {
		t.Errorf("Scale = %v, unspecified scale must not collapse the mesh", s.Objects[0].Scale)
	}
}

func TestLoadScene_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		errPart string
	}{
		{
			name:    "Missing resolution",
			content: "camera:\n  field_of_view: 60\n",
			errPart: "resolution",
		},
		{
			name:    "Missing model file",
			content: "models:\n  - name: Ghost\n    file: ghost.obj\ncamera:\n  field_of_view: 60\n  resolution: {width: 4, height: 4}\n",
			errPart: "Ghost",
		},
		{
			name:    "Malformed document",
			content: "models: [\n",
			errPart: "parse",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, t.TempDir(), "scene.yaml", tt.content)
			_, err := LoadScene(path)
			if err == nil {
				t.Fatal("expected an error")
			}
			if !strings.Contains(err.Error(), tt.errPart) {
				t.Errorf("error %q does not mention %q", err, tt.errPart)
			}
		})
	}
}

func TestLoadScene_FileNotFound(t *testing.T) {
	if _, err := LoadScene("/does/not/exist.yaml"); err == nil {
		t.Error("expected an error for a missing scene file")
	}
}
