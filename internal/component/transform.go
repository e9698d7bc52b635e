package component

import "github.com/go-gl/mathgl/mgl32"

// Transform is an entity's local position, rotation and scale, relative to
// its hierarchy parent. Pure data; matrices are derived by LocalMatrix.
type Transform struct {
	Position mgl32.Vec3
	Rotation mgl32.Quat
	Scale    mgl32.Vec3
}

// WorldTransform caches the composed parent-to-root matrix, written by
// TransformSystem every tick.
type WorldTransform struct {
	Matrix mgl32.Mat4
}

// Velocity is a linear velocity in units per second, applied to Transform
// by MovementSystem.
type Velocity struct {
	Linear mgl32.Vec3
}

var (
	GlobalRight   = mgl32.Vec3{1, 0, 0}
	GlobalUp      = mgl32.Vec3{0, 1, 0}
	GlobalForward = mgl32.Vec3{0, 0, -1}
)

func NewTransform() Transform {
	return Transform{
		Rotation: mgl32.QuatIdent(),
		Scale:    mgl32.Vec3{1, 1, 1},
	}
}

// EulerDegrees builds a rotation from XYZ euler angles in degrees.
func EulerDegrees(x, y, z float32) mgl32.Quat {
	return mgl32.AnglesToQuat(mgl32.DegToRad(x), mgl32.DegToRad(y), mgl32.DegToRad(z), mgl32.XYZ)
}

// LocalMatrix composes translate * rotate * scale.
func LocalMatrix(t Transform) mgl32.Mat4 {
	return mgl32.Translate3D(t.Position.X(), t.Position.Y(), t.Position.Z()).
		Mul4(t.Rotation.Mat4()).
		Mul4(mgl32.Scale3D(t.Scale.X(), t.Scale.Y(), t.Scale.Z()))
}

func Right(t Transform) mgl32.Vec3   { return t.Rotation.Rotate(GlobalRight) }
func Up(t Transform) mgl32.Vec3      { return t.Rotation.Rotate(GlobalUp) }
func Forward(t Transform) mgl32.Vec3 { return t.Rotation.Rotate(GlobalForward) }

// WorldPosition extracts the translation column of a world matrix.
func WorldPosition(w WorldTransform) mgl32.Vec3 {
	return w.Matrix.Col(3).Vec3()
}
