package main

import (
	"bufio"
	"fmt"
	"io"

	"github.com/spaghettifunk/trigon/engine/math"
	"github.com/spaghettifunk/trigon/engine/renderer"
)

// ReadScene parses a triangle soup: a leading triangle count followed by nine
// whitespace-separated floats (three vertices) per triangle. Besides the
// filled geometry it derives the wireframe streams: one axis-aligned box per
// triangle and one box around the whole scene.
func ReadScene(r io.Reader) (*renderer.SceneData, error) {
	br := bufio.NewReader(r)

	var count int
	if _, err := fmt.Fscan(br, &count); err != nil {
		return nil, fmt.Errorf("reading triangle count: %w", err)
	}
	if count < 0 {
		return nil, fmt.Errorf("negative triangle count %d", count)
	}

	triangles := make([]TriangleVertexSet, 0, count)
	for i := 0; i < count; i++ {
		var t TriangleVertexSet
		if _, err := fmt.Fscan(br,
			&t[0].X, &t[0].Y, &t[0].Z,
			&t[1].X, &t[1].Y, &t[1].Z,
			&t[2].X, &t[2].Y, &t[2].Z,
		); err != nil {
			return nil, fmt.Errorf("reading triangle %d: %w", i, err)
		}
		triangles = append(triangles, t)
	}

	return buildScene(triangles), nil
}

// TriangleVertexSet is the three corners of one input triangle.
type TriangleVertexSet [3]math.Vec3

func buildScene(triangles []TriangleVertexSet) *renderer.SceneData {
	fill := make([]renderer.TriangleVertex, 0, len(triangles)*3)
	boxes := make([]renderer.WireframeVertex, 0, len(triangles)*24)

	var sceneMin, sceneMax math.Vec3
	for i, t := range triangles {
		normal := t[1].Sub(t[0]).Cross(t[2].Sub(t[0]))
		if normal.LengthSquared() > 0 {
			normal = normal.Normalized()
		}
		for _, p := range t {
			fill = append(fill, renderer.TriangleVertex{
				Position:   p,
				Normal:     normal,
				ColorIndex: renderer.ColorRegular,
			})
		}

		lo, hi := bounds(t[:])
		boxes = appendBoxEdges(boxes, lo, hi, renderer.ColorBoundingBox)

		if i == 0 {
			sceneMin, sceneMax = lo, hi
		} else {
			sceneMin = vecMin(sceneMin, lo)
			sceneMax = vecMax(sceneMax, hi)
		}
	}

	var broad []renderer.WireframeVertex
	if len(triangles) > 0 {
		broad = appendBoxEdges(nil, sceneMin, sceneMax, renderer.ColorWireframe)
	}

	return &renderer.SceneData{
		TriangleVertices:    renderer.TriangleVertexBytes(fill),
		BroadPhaseVertices:  renderer.WireframeVertexBytes(broad),
		BoundingBoxVertices: renderer.WireframeVertexBytes(boxes),
	}
}

func bounds(points []math.Vec3) (math.Vec3, math.Vec3) {
	lo, hi := points[0], points[0]
	for _, p := range points[1:] {
		lo = vecMin(lo, p)
		hi = vecMax(hi, p)
	}
	return lo, hi
}

func vecMin(a, b math.Vec3) math.Vec3 {
	return math.NewVec3(min(a.X, b.X), min(a.Y, b.Y), min(a.Z, b.Z))
}

func vecMax(a, b math.Vec3) math.Vec3 {
	return math.NewVec3(max(a.X, b.X), max(a.Y, b.Y), max(a.Z, b.Z))
}

// appendBoxEdges emits the twelve edges of an axis-aligned box as line-list
// vertices.
func appendBoxEdges(dst []renderer.WireframeVertex, lo, hi math.Vec3, color uint32) []renderer.WireframeVertex {
	corner := func(x, y, z bool) math.Vec3 {
		p := lo
		if x {
			p.X = hi.X
		}
		if y {
			p.Y = hi.Y
		}
		if z {
			p.Z = hi.Z
		}
		return p
	}

	edges := [12][2][3]bool{
		// Bottom face.
		{{false, false, false}, {true, false, false}},
		{{true, false, false}, {true, false, true}},
		{{true, false, true}, {false, false, true}},
		{{false, false, true}, {false, false, false}},
		// Top face.
		{{false, true, false}, {true, true, false}},
		{{true, true, false}, {true, true, true}},
		{{true, true, true}, {false, true, true}},
		{{false, true, true}, {false, true, false}},
		// Verticals.
		{{false, false, false}, {false, true, false}},
		{{true, false, false}, {true, true, false}},
		{{true, false, true}, {true, true, true}},
		{{false, false, true}, {false, true, true}},
	}
	for _, e := range edges {
		dst = append(dst,
			renderer.WireframeVertex{Position: corner(e[0][0], e[0][1], e[0][2]), ColorIndex: color},
			renderer.WireframeVertex{Position: corner(e[1][0], e[1][1], e[1][2]), ColorIndex: color},
		)
	}
	return dst
}
