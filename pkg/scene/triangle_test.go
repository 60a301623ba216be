package scene

import (
	"math/rand"
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/fw03/go-scene-raytracer/pkg/core"
)

const testEpsilon = 1e-5

func TestTriangle_Intersect(t *testing.T) {
	// Triangle in the XY plane
	tri := NewFlatTriangle(
		mgl32.Vec3{0, 0, 0},
		mgl32.Vec3{1, 0, 0},
		mgl32.Vec3{0, 1, 0},
	)

	tests := []struct {
		name      string
		ray       core.Ray
		shouldHit bool
	}{
		{
			name:      "Ray hits triangle interior",
			ray:       core.NewRay(mgl32.Vec3{0.25, 0.25, -1}, mgl32.Vec3{0, 0, 1}),
			shouldHit: true,
		},
		{
			name:      "Ray misses triangle",
			ray:       core.NewRay(mgl32.Vec3{1, 1, -1}, mgl32.Vec3{0, 0, 1}),
			shouldHit: false,
		},
		{
			name:      "Ray parallel to triangle plane",
			ray:       core.NewRay(mgl32.Vec3{0.25, 0.25, -1}, mgl32.Vec3{1, 0, 0}),
			shouldHit: false,
		},
		{
			name:      "Triangle behind ray origin",
			ray:       core.NewRay(mgl32.Vec3{0.25, 0.25, 1}, mgl32.Vec3{0, 0, 1}),
			shouldHit: false,
		},
		{
			name:      "Back face is not culled",
			ray:       core.NewRay(mgl32.Vec3{0.25, 0.25, 1}, mgl32.Vec3{0, 0, -1}),
			shouldHit: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			weights, ok := tri.Intersect(tt.ray, testEpsilon)
			if ok != tt.shouldHit {
				t.Fatalf("Intersect hit=%v, want %v", ok, tt.shouldHit)
			}
			if !ok {
				return
			}

			sum := weights.X() + weights.Y() + weights.Z()
			if sum < 1-1e-4 || sum > 1+1e-4 {
				t.Errorf("barycentric weights sum to %v, want 1", sum)
			}
			for i := 0; i < 3; i++ {
				if weights[i] < 0 || weights[i] > 1 {
					t.Errorf("weight %d = %v outside [0, 1]", i, weights[i])
				}
			}
		})
	}
}

func TestTriangle_IntersectVertices(t *testing.T) {
	tri := NewFlatTriangle(
		mgl32.Vec3{0, 0, 0},
		mgl32.Vec3{2, 0, 0},
		mgl32.Vec3{0, 2, 0},
	)

	tests := []struct {
		name    string
		target  mgl32.Vec3
		weights mgl32.Vec3
	}{
		{"Vertex A", mgl32.Vec3{0, 0, 0}, mgl32.Vec3{1, 0, 0}},
		{"Vertex B", mgl32.Vec3{2, 0, 0}, mgl32.Vec3{0, 1, 0}},
		{"Vertex C", mgl32.Vec3{0, 2, 0}, mgl32.Vec3{0, 0, 1}},
		{"Edge midpoint AB", mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0.5, 0.5, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ray := core.NewRay(tt.target.Add(mgl32.Vec3{0, 0, -1}), mgl32.Vec3{0, 0, 1})
			weights, ok := tri.Intersect(ray, testEpsilon)
			if !ok {
				t.Fatal("expected hit")
			}
			if !weights.ApproxEqualThreshold(tt.weights, 1e-4) {
				t.Errorf("weights = %v, want %v", weights, tt.weights)
			}
		})
	}
}

func TestTriangle_ZeroAreaNeverIntersects(t *testing.T) {
	// All vertices collinear
	tri := NewFlatTriangle(
		mgl32.Vec3{0, 0, 0},
		mgl32.Vec3{1, 0, 0},
		mgl32.Vec3{2, 0, 0},
	)

	random := rand.New(rand.NewSource(3))
	for i := 0; i < 100; i++ {
		ray := core.NewRay(
			mgl32.Vec3{random.Float32()*4 - 2, random.Float32()*4 - 2, random.Float32()*4 - 2},
			mgl32.Vec3{random.Float32()*2 - 1, random.Float32()*2 - 1, random.Float32()*2 - 1},
		)
		if _, ok := tri.Intersect(ray, testEpsilon); ok {
			t.Fatalf("zero-area triangle reported a hit for ray %+v", ray)
		}
	}
}

// Grazing rays near an edge must respond consistently to tiny epsilon
// perturbations: the hit/miss answer may differ between nearby rays but
// the same ray must answer the same every time.
func TestTriangle_EdgeGrazeStability(t *testing.T) {
	tri := NewFlatTriangle(
		mgl32.Vec3{0, 0, 0},
		mgl32.Vec3{1, 0, 0},
		mgl32.Vec3{0, 1, 0},
	)
	ray := core.NewRay(mgl32.Vec3{0.5, 1e-7, -1}, mgl32.Vec3{0, 0, 1})

	_, first := tri.Intersect(ray, testEpsilon)
	for i := 0; i < 10; i++ {
		if _, ok := tri.Intersect(ray, testEpsilon); ok != first {
			t.Fatal("unstable intersection result for identical input")
		}
	}
}

func TestTriangle_EpsilonRejectsNearOrigin(t *testing.T) {
	tri := NewFlatTriangle(
		mgl32.Vec3{-1, -1, 0},
		mgl32.Vec3{1, -1, 0},
		mgl32.Vec3{0, 1, 0},
	)

	// Origin sits a hair in front of the plane; a large epsilon rejects
	ray := core.NewRay(mgl32.Vec3{0, 0, -1e-6}, mgl32.Vec3{0, 0, 1})
	if _, ok := tri.Intersect(ray, 1e-3); ok {
		t.Error("hit closer than epsilon should be rejected")
	}
	if _, ok := tri.Intersect(ray, 1e-8); !ok {
		t.Error("hit farther than epsilon should be accepted")
	}
}

func TestTriangle_Interpolation(t *testing.T) {
	tri := NewTriangle(
		mgl32.Vec3{0, 0, 0}, mgl32.Vec3{2, 0, 0}, mgl32.Vec3{0, 2, 0},
		[3]mgl32.Vec3{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}},
		[3]mgl32.Vec2{{0, 0}, {1, 0}, {0, 1}},
		NoMaterial,
	)

	weights := mgl32.Vec3{0.5, 0.25, 0.25}

	point := tri.InterpolatePoint(weights)
	if !point.ApproxEqualThreshold(mgl32.Vec3{0.5, 0.5, 0}, 1e-5) {
		t.Errorf("InterpolatePoint = %v", point)
	}

	normal := tri.InterpolateNormal(weights)
	if !normal.ApproxEqualThreshold(mgl32.Vec3{0.5, 0.25, 0.25}, 1e-5) {
		t.Errorf("InterpolateNormal = %v", normal)
	}

	uv := tri.InterpolateUV(weights)
	if uv.X() != 0.25 || uv.Y() != 0.25 {
		t.Errorf("InterpolateUV = %v", uv)
	}
}

func TestTriangle_BoundingBox(t *testing.T) {
	tri := NewFlatTriangle(
		mgl32.Vec3{0, 0, 0},
		mgl32.Vec3{2, 0, 0},
		mgl32.Vec3{1, 3, -1},
	)

	bbox := tri.BoundingBox()
	if bbox.Min != (mgl32.Vec3{0, 0, -1}) || bbox.Max != (mgl32.Vec3{2, 3, 0}) {
		t.Errorf("BoundingBox = [%v, %v]", bbox.Min, bbox.Max)
	}
}
