package loaders

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-gl/mathgl/mgl32"
	"gopkg.in/yaml.v2"

	"github.com/fw03/go-scene-raytracer/pkg/core"
	"github.com/fw03/go-scene-raytracer/pkg/scene"
)

// sceneFile mirrors the YAML scene document layout
type sceneFile struct {
	Models      []modelEntry `yaml:"models"`
	PointLights []lightEntry `yaml:"point_lights"`
	Camera      cameraEntry  `yaml:"camera"`
	ExtraArgs   extraArgs    `yaml:"extra_args"`
}

type modelEntry struct {
	Name     string   `yaml:"name"`
	File     string   `yaml:"file"`
	Position xyzEntry `yaml:"position"`
	Rotation xyzEntry `yaml:"rotation"` // Euler angles in degrees
	Scale    xyzEntry `yaml:"scale"`
}

type lightEntry struct {
	Position xyzEntry `yaml:"position"`
	Ke       rgbEntry `yaml:"ke"` // Emissive color; magnitude becomes intensity
}

type cameraEntry struct {
	Position    xyzEntry        `yaml:"position"`
	LookAt      xyzEntry        `yaml:"look_at"`
	UpVec       xyzEntry        `yaml:"up_vec"`
	FieldOfView float32         `yaml:"field_of_view"` // Degrees
	Resolution  resolutionEntry `yaml:"resolution"`
}

type resolutionEntry struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

type extraArgs struct {
	AmbientColor     rgbEntry `yaml:"ambient_color"`
	AmbientIntensity float32  `yaml:"ambient_intensity"`
	BackgroundColor  rgbEntry `yaml:"background_color"`
	SkyboxImage      string   `yaml:"skybox_image"`
	AntiAliasing     bool     `yaml:"anti_aliasing"`
	MaxDepth         int      `yaml:"max_depth"`
}

type xyzEntry struct {
	X float32 `yaml:"x"`
	Y float32 `yaml:"y"`
	Z float32 `yaml:"z"`
}

func (e xyzEntry) vec() mgl32.Vec3 {
	return mgl32.Vec3{e.X, e.Y, e.Z}
}

type rgbEntry struct {
	R float32 `yaml:"r"`
	G float32 `yaml:"g"`
	B float32 `yaml:"b"`
}

func (e rgbEntry) color() core.Color {
	return core.NewColor(e.R, e.G, e.B)
}

// LoadScene reads a YAML scene description and assembles the scene,
// loading referenced OBJ models and the skybox image relative to the
// scene file's directory.
func LoadScene(path string) (*scene.Scene, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scene file: %w", err)
	}

	var doc sceneFile
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse scene file %s: %w", path, err)
	}

	return assembleScene(&doc, filepath.Dir(path))
}

func assembleScene(doc *sceneFile, baseDir string) (*scene.Scene, error) {
	s := &scene.Scene{}

	for _, model := range doc.Models {
		obj, err := LoadOBJ(filepath.Join(baseDir, model.File))
		if err != nil {
			return nil, fmt.Errorf("failed to load model %q: %w", model.Name, err)
		}

		scale := model.Scale.vec()
		if scale == (mgl32.Vec3{}) {
			scale = mgl32.Vec3{1, 1, 1}
		}
		rotation := mgl32.AnglesToQuat(
			mgl32.DegToRad(model.Rotation.X),
			mgl32.DegToRad(model.Rotation.Y),
			mgl32.DegToRad(model.Rotation.Z),
			mgl32.XYZ,
		)

		s.Objects = append(s.Objects, scene.NewObject(
			model.Name, obj.Triangles, obj.Materials,
			model.Position.vec(), rotation, scale,
		))
	}

	for _, light := range doc.PointLights {
		s.Lights = append(s.Lights, scene.NewLight(light.Position.vec(), light.Ke.color()))
	}

	up := doc.Camera.UpVec.vec()
	if up == (mgl32.Vec3{}) {
		up = mgl32.Vec3{0, 1, 0}
	}
	width := doc.Camera.Resolution.Width
	height := doc.Camera.Resolution.Height
	if width < 1 || height < 1 {
		return nil, fmt.Errorf("invalid camera resolution %dx%d", width, height)
	}
	s.Camera = scene.NewCamera(
		doc.Camera.Position.vec(),
		doc.Camera.LookAt.vec(),
		up,
		mgl32.DegToRad(doc.Camera.FieldOfView),
		width, height,
	)

	s.Settings = scene.DefaultSettings()
	s.Settings.AmbientColor = doc.ExtraArgs.AmbientColor.color()
	s.Settings.AmbientIntensity = doc.ExtraArgs.AmbientIntensity
	s.Settings.AntiAliasing = doc.ExtraArgs.AntiAliasing
	if doc.ExtraArgs.MaxDepth >= 1 {
		s.Settings.MaxDepth = doc.ExtraArgs.MaxDepth
	}
	s.Settings.Skybox = scene.NewColorSkybox(doc.ExtraArgs.BackgroundColor.color())
	if doc.ExtraArgs.SkyboxImage != "" {
		img, err := LoadImage(filepath.Join(baseDir, doc.ExtraArgs.SkyboxImage))
		if err != nil {
			return nil, fmt.Errorf("failed to load skybox: %w", err)
		}
		s.Settings.Skybox.Image = img
	}

	return s, nil
}
