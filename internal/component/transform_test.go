package component

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func TestLocalMatrixTranslates(t *testing.T) {
	tr := NewTransform()
	tr.Position = mgl32.Vec3{1, 2, 3}
	tr.Scale = mgl32.Vec3{2, 2, 2}

	got := LocalMatrix(tr).Mul4x1(mgl32.Vec4{1, 0, 0, 1}).Vec3()
	want := mgl32.Vec3{3, 2, 3}
	if !got.ApproxEqual(want) {
		t.Errorf("Expected %v, got %v", want, got)
	}
}

func TestEulerDegreesYaw(t *testing.T) {
	tr := NewTransform()
	tr.Rotation = EulerDegrees(0, 90, 0)

	got := Forward(tr)
	want := mgl32.Vec3{-1, 0, 0}
	if !got.ApproxEqualThreshold(want, 1e-5) {
		t.Errorf("Expected forward %v after 90 degree yaw, got %v", want, got)
	}
}

func TestNewNameNormalises(t *testing.T) {
	composed := NewName("  Caf\u00e9 ")
	decomposed := NewName("Cafe\u0301")
	if composed != decomposed {
		t.Errorf("Expected %q and %q to normalise equal", composed.Value, decomposed.Value)
	}
	if composed.Value != "Caf\u00e9" {
		t.Errorf("Expected trimmed name, got %q", composed.Value)
	}
}
