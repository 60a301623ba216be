package scene

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/fw03/go-scene-raytracer/pkg/core"
)

// NoMaterial marks a triangle without a material reference
const NoMaterial = -1

// Triangle represents a single triangle with per-vertex attributes
type Triangle struct {
	A, B, C                   mgl32.Vec3 // Vertex positions
	ANormal, BNormal, CNormal mgl32.Vec3 // Per-vertex normals
	AUV, BUV, CUV             mgl32.Vec2 // Per-vertex texture coordinates
	MaterialIndex             int        // Index into the owning object's materials, NoMaterial for none

	bbox core.AABB // Cached bounding box
}

// NewTriangle creates a triangle with full per-vertex attributes
func NewTriangle(a, b, c mgl32.Vec3, normals [3]mgl32.Vec3, uvs [3]mgl32.Vec2, materialIndex int) Triangle {
	return Triangle{
		A: a, B: b, C: c,
		ANormal: normals[0], BNormal: normals[1], CNormal: normals[2],
		AUV: uvs[0], BUV: uvs[1], CUV: uvs[2],
		MaterialIndex: materialIndex,
		bbox:          core.NewAABBFromPoints(a, b, c),
	}
}

// NewFlatTriangle creates a triangle whose vertex normals all equal the face
// normal and which carries no UVs or material
func NewFlatTriangle(a, b, c mgl32.Vec3) Triangle {
	normal := b.Sub(a).Cross(c.Sub(a))
	if normal.Len() > 0 {
		normal = normal.Normalize()
	}
	return NewTriangle(a, b, c, [3]mgl32.Vec3{normal, normal, normal}, [3]mgl32.Vec2{}, NoMaterial)
}

// BoundingBox returns the axis-aligned bounding box for this triangle
func (t *Triangle) BoundingBox() core.AABB {
	return t.bbox
}

// Intersect tests the ray against the triangle plane and returns the
// barycentric weights (wa, wb, wc) of the hit, or false on a miss.
// Hits closer than epsilon along the ray are rejected; back faces are not
// culled. Zero-area triangles never intersect.
func (t *Triangle) Intersect(ray core.Ray, epsilon float32) (mgl32.Vec3, bool) {
	edgeAB := t.B.Sub(t.A)
	edgeAC := t.C.Sub(t.A)
	n := edgeAB.Cross(edgeAC)

	// Unnormalised plane normal: only signs and area ratios are needed
	tHit := t.A.Sub(ray.Origin).Dot(n) / ray.Direction.Dot(n)
	if !(tHit >= epsilon) || math32.IsInf(tHit, 0) {
		// Rejects behind-origin hits, grazing parallels and NaN from
		// degenerate triangles in one comparison
		return mgl32.Vec3{}, false
	}

	p := ray.At(tHit)

	// Signed double-areas of the three sub-triangles around p
	areaAB := edgeAB.Cross(p.Sub(t.A)).Dot(n)
	areaBC := t.C.Sub(t.B).Cross(p.Sub(t.B)).Dot(n)
	areaCA := t.A.Sub(t.C).Cross(p.Sub(t.C)).Dot(n)
	if areaAB < 0 || areaBC < 0 || areaCA < 0 {
		return mgl32.Vec3{}, false
	}

	total := areaAB + areaBC + areaCA
	if total <= 0 {
		return mgl32.Vec3{}, false
	}

	// wa is the area opposite vertex A, and so on
	return mgl32.Vec3{areaBC / total, areaCA / total, areaAB / total}, true
}

// InterpolatePoint returns the position at the given barycentric weights
func (t *Triangle) InterpolatePoint(weights mgl32.Vec3) mgl32.Vec3 {
	return t.A.Mul(weights.X()).Add(t.B.Mul(weights.Y())).Add(t.C.Mul(weights.Z()))
}

// InterpolateNormal returns the vertex-normal blend at the given weights.
// The result is not necessarily unit length.
func (t *Triangle) InterpolateNormal(weights mgl32.Vec3) mgl32.Vec3 {
	return t.ANormal.Mul(weights.X()).Add(t.BNormal.Mul(weights.Y())).Add(t.CNormal.Mul(weights.Z()))
}

// InterpolateUV returns the texture coordinates at the given weights
func (t *Triangle) InterpolateUV(weights mgl32.Vec3) mgl32.Vec2 {
	return t.AUV.Mul(weights.X()).Add(t.BUV.Mul(weights.Y())).Add(t.CUV.Mul(weights.Z()))
}
