package math

// Vec4 is a 4-component vector. Tangent bases store the handedness
// sign in W alongside the XYZ direction.
type Vec4 struct {
	X, Y, Z, W float32
}

// XYZ returns the first three components as a Vec3.
func (v Vec4) XYZ() Vec3 {
	return Vec3{v.X, v.Y, v.Z}
}

// FromVec3 builds a Vec4 from a Vec3 and an explicit W.
func FromVec3(v Vec3, w float32) Vec4 {
	return Vec4{v.X, v.Y, v.Z, w}
}
