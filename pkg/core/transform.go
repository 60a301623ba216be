package core

import "github.com/go-gl/mathgl/mgl32"

// TransformPoint applies the homogeneous transform to a position
func TransformPoint(m mgl32.Mat4, p mgl32.Vec3) mgl32.Vec3 {
	return m.Mul4x1(p.Vec4(1)).Vec3()
}

// TransformDirection applies the linear part of the transform to a direction.
// The result is not renormalised.
func TransformDirection(m mgl32.Mat4, v mgl32.Vec3) mgl32.Vec3 {
	return m.Mul4x1(v.Vec4(0)).Vec3()
}
