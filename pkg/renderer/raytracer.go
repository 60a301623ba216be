package renderer

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/fw03/go-scene-raytracer/pkg/core"
	"github.com/fw03/go-scene-raytracer/pkg/scene"
)

// noMaterialColor substitutes for missing diffuse and specular colors
var noMaterialColor = core.NewColor(0.9, 0.9, 0.9)

// aaOffsets are the deterministic 2x2 subpixel sample positions used when
// anti-aliasing is enabled
var aaOffsets = [4][2]float32{{0.25, 0.25}, {0.75, 0.25}, {0.25, 0.75}, {0.75, 0.75}}

// Raytracer traces rays through a scene. It holds the scene read-only for
// the duration of a render and is safe for concurrent use.
type Raytracer struct {
	scene    *scene.Scene
	epsilon  float32
	maxDepth int
}

// NewRaytracer creates a raytracer with the given intersection tolerance
// and recursion limit (at least 1)
func NewRaytracer(s *scene.Scene, epsilon float32, maxDepth int) *Raytracer {
	if maxDepth < 1 {
		maxDepth = 1
	}
	return &Raytracer{scene: s, epsilon: epsilon, maxDepth: maxDepth}
}

// Render computes the color of one pixel. With anti-aliasing enabled the
// pixel is sampled at four fixed subpixel offsets and averaged; otherwise
// one ray is traced.
func (rt *Raytracer) Render(pixelX, pixelY, width, height int) core.Color {
	if rt.scene.Settings.AntiAliasing {
		var sum core.Color
		for _, offset := range aaOffsets {
			ray := rt.primaryRay(float32(pixelX)+offset[0], float32(pixelY)+offset[1], width, height)
			sum = sum.Add(rt.Shade(ray, 0))
		}
		return sum.Mul(1.0 / float32(len(aaOffsets)))
	}

	ray := rt.primaryRay(float32(pixelX), float32(pixelY), width, height)
	return rt.Shade(ray, 0)
}

// primaryRay maps image coordinates to normalised device coordinates (y
// down, x aspect-corrected) and asks the camera for the ray through them
func (rt *Raytracer) primaryRay(px, py float32, width, height int) core.Ray {
	w := float32(width)
	h := float32(height)
	nx := (px/w*2 - 1) * (w / h)
	ny := py/h*2 - 1
	return rt.scene.Camera.Ray(nx, ny)
}

// Shade traces the ray and accumulates surface contributions front to
// back. Each transparent pass keeps only the energy the surface lets
// through; an opaque surface ends the accumulation.
func (rt *Raytracer) Shade(ray core.Ray, depth int) core.Color {
	hits := rt.raycastTransparent(ray)
	if len(hits) == 0 {
		return rt.Skybox(ray.Direction)
	}

	var color core.Color
	energy := float32(1)
	for i := range hits {
		hit := &hits[i]
		color = color.Add(rt.shadeSingle(ray, hit, depth).Mul(energy))
		energy *= 1 - hit.Material.DissolveOrOpaque()
	}
	return color
}

// raycastTransparent marches the ray through transparent surfaces,
// collecting up to maxDepth successive hits. The last hit is opaque unless
// the depth limit cut the march short.
func (rt *Raytracer) raycastTransparent(ray core.Ray) []scene.Hit {
	var hits []scene.Hit
	for i := 0; i < rt.maxDepth; i++ {
		hit, ok := rt.scene.Raycast(ray, rt.epsilon)
		if !ok {
			break
		}
		hits = append(hits, hit)
		if !hit.Material.Transparent() {
			break
		}
		// Restart just past the surface
		ray.Origin = hit.Point.Add(ray.Direction.Mul(rt.epsilon))
	}
	return hits
}

// transmissionColor folds the filter colors of the hits along a shadow
// ray, starting from white. Any opaque hit zeroes the result.
func transmissionColor(hits []scene.Hit) core.Color {
	color := core.White()
	for i := range hits {
		hit := &hits[i]
		filter := core.White()
		if hit.Material != nil && hit.Material.Diffuse != nil {
			filter = *hit.Material.Diffuse
		}
		color = core.MulElem(color, filter.Mul(1-hit.Material.DissolveOrOpaque()))
	}
	return color
}

// Skybox samples the environment for a direction: the nearest texel of the
// equirectangular image when present, the background color otherwise
func (rt *Raytracer) Skybox(direction mgl32.Vec3) core.Color {
	sky := rt.scene.Settings.Skybox
	if sky.Image == nil {
		return sky.Color
	}

	u := math32.Atan2(direction.X(), direction.Z())/(2*math32.Pi) + 0.5
	v := math32.Acos(mgl32.Clamp(direction.Y()+0.08, -1, 1)) / math32.Pi

	x := int(u * float32(sky.Image.Width))
	y := int(v * float32(sky.Image.Height))
	return sky.Image.At(x, y)
}

// shadeSingle evaluates lighting at one surface: ambient, then per light a
// shadow-filtered diffuse term, an optional specular highlight and an
// optional mirror reflection mixed in by a Schlick-style Fresnel weight.
func (rt *Raytracer) shadeSingle(ray core.Ray, hit *scene.Hit, depth int) core.Color {
	if depth >= rt.maxDepth {
		return rt.Skybox(ray.Direction)
	}

	normal := hit.Normal
	if normal.Len() > 0 {
		normal = normal.Normalize()
	}

	diffuse := noMaterialColor
	if m := hit.Material; m != nil {
		switch {
		case m.Texture != nil:
			diffuse = m.Texture.Sample(hit.UV)
		case m.Diffuse != nil:
			diffuse = *m.Diffuse
		}
	}
	specular := noMaterialColor
	if m := hit.Material; m != nil && m.Specular != nil {
		specular = *m.Specular
	}

	settings := &rt.scene.Settings
	color := core.MulElem(settings.AmbientColor, diffuse).Mul(settings.AmbientIntensity)

	for i := range rt.scene.Lights {
		light := &rt.scene.Lights[i]
		toLight := light.Position.Sub(hit.Point)
		lightDir := toLight.Normalize()

		shadowRay := core.NewRay(hit.Point.Add(lightDir.Mul(rt.epsilon)), lightDir)
		transmission := core.MulElem(transmissionColor(rt.raycastTransparent(shadowRay)), light.Color)
		if transmission == (core.Color{}) {
			continue
		}

		attenuation := light.Intensity / toLight.LenSqr()

		// Lambert term filtered by whatever the shadow ray passed through
		color = color.Add(core.MulElem(diffuse, transmission).
			Mul(attenuation * math32.Max(0, lightDir.Dot(normal))))

		if m := hit.Material; m != nil && m.Illum.Specular() {
			reflected := core.Reflect(lightDir.Mul(-1), normal)
			highlight := math32.Pow(math32.Max(0, reflected.Dot(shadowRay.Direction.Mul(-1))), m.ExponentOrDefault())
			color = color.Add(core.MulElem(specular, transmission).Mul(attenuation * highlight))
		}

		if m := hit.Material; m != nil && m.Illum.Reflection() {
			reflectDir := core.Reflect(ray.Direction, normal)
			reflectRay := core.NewRay(hit.Point.Add(reflectDir.Mul(rt.epsilon)), reflectDir)
			reflectionColor := rt.Shade(reflectRay, depth+1)

			// Schlick with F0 = 0.04; the exponent division damps the
			// reflectivity of low-shininess materials
			fresnel := 0.04 + 0.96*(1-reflectDir.Dot(normal))
			mix := 1 - math32.Pow(fresnel, m.ExponentOrDefault()/1000)
			color = core.Lerp(color, reflectionColor, mix)
		}
	}

	return color
}
