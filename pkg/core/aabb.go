package core

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// AABB represents an axis-aligned bounding box
type AABB struct {
	Min mgl32.Vec3 // Minimum corner
	Max mgl32.Vec3 // Maximum corner
}

// NewAABB creates a new AABB from min and max points
func NewAABB(min, max mgl32.Vec3) AABB {
	return AABB{Min: min, Max: max}
}

// NewAABBFromPoints creates an AABB that bounds all given points
func NewAABBFromPoints(points ...mgl32.Vec3) AABB {
	if len(points) == 0 {
		return AABB{}
	}

	min := points[0]
	max := points[0]

	for _, point := range points[1:] {
		for axis := 0; axis < 3; axis++ {
			min[axis] = math32.Min(min[axis], point[axis])
			max[axis] = math32.Max(max[axis], point[axis])
		}
	}

	return AABB{Min: min, Max: max}
}

// Hit tests if a ray intersects this AABB using the slab method
func (aabb AABB) Hit(ray Ray, tMin, tMax float32) bool {
	for axis := 0; axis < 3; axis++ {
		min := aabb.Min[axis]
		max := aabb.Max[axis]
		origin := ray.Origin[axis]
		direction := ray.Direction[axis]

		// Ray parallel to this slab: inside or out, never crossing
		if math32.Abs(direction) < 1e-8 {
			if origin < min || origin > max {
				return false
			}
			continue
		}

		invDirection := 1.0 / direction
		t1 := (min - origin) * invDirection
		t2 := (max - origin) * invDirection

		if t1 > t2 {
			t1, t2 = t2, t1
		}

		tMin = math32.Max(tMin, t1)
		tMax = math32.Min(tMax, t2)

		if tMin > tMax {
			return false
		}
	}

	return true
}

// Union returns an AABB that bounds both this AABB and another
func (aabb AABB) Union(other AABB) AABB {
	var min, max mgl32.Vec3
	for axis := 0; axis < 3; axis++ {
		min[axis] = math32.Min(aabb.Min[axis], other.Min[axis])
		max[axis] = math32.Max(aabb.Max[axis], other.Max[axis])
	}
	return AABB{Min: min, Max: max}
}

// Center returns the center point of the AABB
func (aabb AABB) Center() mgl32.Vec3 {
	return aabb.Min.Add(aabb.Max).Mul(0.5)
}

// Size returns the extent of the AABB along each axis
func (aabb AABB) Size() mgl32.Vec3 {
	return aabb.Max.Sub(aabb.Min)
}

// LongestAxis returns the axis (0=X, 1=Y, 2=Z) with the longest extent
func (aabb AABB) LongestAxis() int {
	size := aabb.Size()
	if size.X() > size.Y() && size.X() > size.Z() {
		return 0
	}
	if size.Y() > size.Z() {
		return 1
	}
	return 2
}
