package core

import "testing"

func TestAlignPadsShorterPaths(t *testing.T) {
	paths := Paths{
		{0, 1, 2},
		{0, 1},
	}
	aligned := Align(paths)
	if len(aligned[1]) != 3 {
		t.Fatalf("expected shorter path padded to length 3, got %d", len(aligned[1]))
	}
	if aligned[1][2] != 1 {
		t.Fatalf("expected padded entries to repeat the last node, got %d", aligned[1][2])
	}
}

func TestAlignIsIdempotent(t *testing.T) {
	paths := Paths{{0, 1, 2}, {0, 1}}
	once := Align(paths)
	twice := Align(once)
	for i := range once {
		if len(once[i]) != len(twice[i]) {
			t.Fatalf("Align should be idempotent on length")
		}
		for t2 := range once[i] {
			if once[i][t2] != twice[i][t2] {
				t.Fatalf("Align should be idempotent on content at %d", t2)
			}
		}
	}
}

func TestPathsAtClampsPastEnd(t *testing.T) {
	paths := Paths{{0, 1, 2}}
	if v := paths.At(0, 100); v != 2 {
		t.Fatalf("expected clamped access to return last node 2, got %d", v)
	}
}
