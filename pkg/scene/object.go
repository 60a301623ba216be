package scene

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/fw03/go-scene-raytracer/pkg/core"
)

// Hit describes a world-space surface intersection
type Hit struct {
	ObjectName string
	Point      mgl32.Vec3
	Normal     mgl32.Vec3 // Not necessarily unit length; renormalise where it matters
	UV         mgl32.Vec2
	Material   *Material // Nil when the triangle carries no material
}

// Object owns a triangle mesh with its materials and a translation,
// rotation and non-uniform scale placing it in the world. Triangles and
// the BVH over them are immutable after construction.
type Object struct {
	Name      string
	Triangles []Triangle
	Materials []Material

	Translation mgl32.Vec3
	Rotation    mgl32.Quat
	Scale       mgl32.Vec3

	transform mgl32.Mat4 // M = T * R * S
	inverse   mgl32.Mat4
	bvh       *core.BVH
}

// NewObject composes the object transform, its inverse and the BVH over the
// triangles. Scale components must be non-zero for the inverse to exist.
func NewObject(name string, triangles []Triangle, materials []Material, translation mgl32.Vec3, rotation mgl32.Quat, scale mgl32.Vec3) *Object {
	o := &Object{
		Name:        name,
		Triangles:   triangles,
		Materials:   materials,
		Translation: translation,
		Rotation:    rotation,
		Scale:       scale,
	}

	o.transform = mgl32.Translate3D(translation.Elem()).
		Mul4(rotation.Mat4()).
		Mul4(mgl32.Scale3D(scale.Elem()))
	o.inverse = o.transform.Inv()

	prims := make([]core.Bounded, len(triangles))
	for i := range triangles {
		prims[i] = &o.Triangles[i]
	}
	o.bvh = core.NewBVH(prims)

	return o
}

// NewStaticObject creates an object with an identity transform
func NewStaticObject(name string, triangles []Triangle, materials []Material) *Object {
	return NewObject(name, triangles, materials, mgl32.Vec3{}, mgl32.QuatIdent(), mgl32.Vec3{1, 1, 1})
}

// Intersect traces the world-space ray against the object and returns the
// nearest hit in world space. The ray is transformed into object space
// without renormalising the direction; the same epsilon applies in both
// spaces.
func (o *Object) Intersect(rayWorld core.Ray, epsilon float32) (Hit, bool) {
	rayObj := core.NewRay(
		core.TransformPoint(o.inverse, rayWorld.Origin),
		core.TransformDirection(o.inverse, rayWorld.Direction),
	)

	var (
		bestTri     *Triangle
		bestWeights mgl32.Vec3
		bestDistSq  = float32(math32.MaxFloat32)
	)

	for _, prim := range o.bvh.Traverse(rayObj, nil) {
		tri := prim.(*Triangle)
		weights, ok := tri.Intersect(rayObj, epsilon)
		if !ok {
			continue
		}
		distSq := tri.InterpolatePoint(weights).Sub(rayObj.Origin).LenSqr()
		if distSq < bestDistSq {
			bestDistSq = distSq
			bestTri = tri
			bestWeights = weights
		}
	}

	if bestTri == nil {
		return Hit{}, false
	}

	hit := Hit{
		ObjectName: o.Name,
		Point:      core.TransformPoint(o.transform, bestTri.InterpolatePoint(bestWeights)),
		Normal:     core.TransformDirection(o.transform, bestTri.InterpolateNormal(bestWeights)),
		UV:         bestTri.InterpolateUV(bestWeights),
	}
	if i := bestTri.MaterialIndex; i >= 0 && i < len(o.Materials) {
		hit.Material = &o.Materials[i]
	}
	return hit, true
}
