package core

import (
	"sort"

	"github.com/chewxy/math32"
)

// Bounded is implemented by primitives the BVH can organize.
type Bounded interface {
	BoundingBox() AABB
}

// BVHNode represents a node in the Bounding Volume Hierarchy
type BVHNode struct {
	BoundingBox AABB
	Left        *BVHNode
	Right       *BVHNode
	Primitives  []Bounded // Populated for leaf nodes (nil for internal nodes)
}

// BVH represents a Bounding Volume Hierarchy for fast ray queries.
// It is built once and immutable afterwards, so concurrent traversals
// are safe.
type BVH struct {
	Root *BVHNode
}

// NewBVH constructs a BVH from a slice of primitives
func NewBVH(primitives []Bounded) *BVH {
	if len(primitives) == 0 {
		return &BVH{Root: nil}
	}

	// Copy so that sorting during the build does not reorder the caller's slice
	prims := make([]Bounded, len(primitives))
	copy(prims, primitives)

	return &BVH{Root: buildBVH(prims)}
}

// Leaf threshold: nodes with this many or fewer primitives become leaves
const leafThreshold = 8

// buildBVH recursively builds the BVH using median splits with leaf thresholding
func buildBVH(prims []Bounded) *BVHNode {
	boundingBox := prims[0].BoundingBox()
	for i := 1; i < len(prims); i++ {
		boundingBox = boundingBox.Union(prims[i].BoundingBox())
	}

	// Small groups are cheaper to scan linearly than to split further
	if len(prims) <= leafThreshold {
		return &BVHNode{
			BoundingBox: boundingBox,
			Primitives:  prims,
		}
	}

	// Median split along the longest axis; fast to build and good enough
	// for typical triangle meshes
	axis := boundingBox.LongestAxis()
	sortPrimitivesByAxis(prims, axis)

	mid := len(prims) / 2
	return &BVHNode{
		BoundingBox: boundingBox,
		Left:        buildBVH(prims[:mid]),
		Right:       buildBVH(prims[mid:]),
	}
}

// sortPrimitivesByAxis sorts primitives by bounding box center along the given axis
func sortPrimitivesByAxis(prims []Bounded, axis int) {
	sort.Slice(prims, func(i, j int) bool {
		return prims[i].BoundingBox().Center()[axis] < prims[j].BoundingBox().Center()[axis]
	})
}

// Traverse appends every primitive whose bounding box is pierced by the ray
// to candidates and returns the extended slice. No ordering is guaranteed;
// the caller selects the nearest actual intersection.
func (bvh *BVH) Traverse(ray Ray, candidates []Bounded) []Bounded {
	if bvh.Root == nil {
		return candidates
	}
	return traverseNode(bvh.Root, ray, candidates)
}

func traverseNode(node *BVHNode, ray Ray, candidates []Bounded) []Bounded {
	if !node.BoundingBox.Hit(ray, 0, math32.MaxFloat32) {
		return candidates
	}

	if node.Primitives != nil {
		for _, prim := range node.Primitives {
			if prim.BoundingBox().Hit(ray, 0, math32.MaxFloat32) {
				candidates = append(candidates, prim)
			}
		}
		return candidates
	}

	if node.Left != nil {
		candidates = traverseNode(node.Left, ray, candidates)
	}
	if node.Right != nil {
		candidates = traverseNode(node.Right, ray, candidates)
	}
	return candidates
}
