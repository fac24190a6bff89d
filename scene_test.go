package main

import (
	"strings"
	"testing"

	"github.com/spaghettifunk/trigon/engine/math"
	"github.com/spaghettifunk/trigon/engine/renderer"
)

func TestReadSceneSingleTriangle(t *testing.T) {
	input := "1\n0 0 0  1 0 0  0 1 0\n"

	scene, err := ReadScene(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ReadScene: %s", err)
	}

	if got := len(scene.TriangleVertices); got != 3*int(renderer.TriangleVertexStride) {
		t.Errorf("fill stream = %d bytes, want %d", got, 3*renderer.TriangleVertexStride)
	}
	// One box around the triangle plus one around the scene, 24 line
	// vertices each.
	if got := len(scene.BoundingBoxVertices); got != 24*int(renderer.WireframeVertexStride) {
		t.Errorf("bbox stream = %d bytes, want %d", got, 24*renderer.WireframeVertexStride)
	}
	if got := len(scene.BroadPhaseVertices); got != 24*int(renderer.WireframeVertexStride) {
		t.Errorf("broad-phase stream = %d bytes, want %d", got, 24*renderer.WireframeVertexStride)
	}
}

func TestReadSceneEmpty(t *testing.T) {
	scene, err := ReadScene(strings.NewReader("0\n"))
	if err != nil {
		t.Fatalf("ReadScene: %s", err)
	}
	if len(scene.TriangleVertices) != 0 || len(scene.BroadPhaseVertices) != 0 || len(scene.BoundingBoxVertices) != 0 {
		t.Errorf("empty scene produced vertex bytes: %d %d %d",
			len(scene.TriangleVertices), len(scene.BroadPhaseVertices), len(scene.BoundingBoxVertices))
	}
}

func TestReadSceneRejectsTruncatedInput(t *testing.T) {
	for _, input := range []string{"", "2\n0 0 0 1 0 0 0 1 0\n", "-1\n", "x\n"} {
		if _, err := ReadScene(strings.NewReader(input)); err == nil {
			t.Errorf("input %q: expected error", input)
		}
	}
}

func TestBuildSceneNormals(t *testing.T) {
	triangles := []TriangleVertexSet{
		{math.NewVec3(0, 0, 0), math.NewVec3(1, 0, 0), math.NewVec3(0, 1, 0)},
	}
	scene := buildScene(triangles)

	vertices := make([]renderer.TriangleVertex, 3)
	copy(renderer.TriangleVertexBytes(vertices), scene.TriangleVertices)

	want := math.NewVec3(0, 0, 1)
	for i, v := range vertices {
		if !v.Normal.Compare(want, 1e-6) {
			t.Errorf("vertex %d normal = %+v, want %+v", i, v.Normal, want)
		}
		if v.ColorIndex != renderer.ColorRegular {
			t.Errorf("vertex %d color index = %d", i, v.ColorIndex)
		}
	}
}

func TestBuildSceneDegenerateTriangle(t *testing.T) {
	triangles := []TriangleVertexSet{
		{math.NewVec3(0, 0, 0), math.NewVec3(1, 1, 1), math.NewVec3(2, 2, 2)},
	}
	scene := buildScene(triangles)

	vertices := make([]renderer.TriangleVertex, 3)
	copy(renderer.TriangleVertexBytes(vertices), scene.TriangleVertices)
	if !vertices[0].Normal.Compare(math.NewVec3Zero(), 1e-6) {
		t.Errorf("degenerate normal = %+v, want zero", vertices[0].Normal)
	}
}
