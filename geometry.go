package flatten

import "github.com/chewxy/math32"

// Point is a position in layout space.
type Point struct {
	X, Y float32
}

// Add returns p translated by v.
func (p Point) Add(v Vector) Point {
	return Point{X: p.X + v.X, Y: p.Y + v.Y}
}

// Sub returns the vector from q to p.
func (p Point) Sub(q Point) Vector {
	return Vector{X: p.X - q.X, Y: p.Y - q.Y}
}

// ToVector returns the vector from the origin to p.
func (p Point) ToVector() Vector {
	return Vector{X: p.X, Y: p.Y}
}

// Vector is a displacement in layout space.
type Vector struct {
	X, Y float32
}

// Add returns the sum of two vectors.
func (v Vector) Add(o Vector) Vector {
	return Vector{X: v.X + o.X, Y: v.Y + o.Y}
}

// Neg returns -v.
func (v Vector) Neg() Vector {
	return Vector{X: -v.X, Y: -v.Y}
}

// IsZero reports whether both components are zero.
func (v Vector) IsZero() bool {
	return v.X == 0 && v.Y == 0
}

// Size is a width and height in layout space.
type Size struct {
	Width, Height float32
}

// Add returns the component-wise sum.
func (s Size) Add(o Size) Size {
	return Size{Width: s.Width + o.Width, Height: s.Height + o.Height}
}

// IsEmpty reports whether the size has no area.
func (s Size) IsEmpty() bool {
	return s.Width <= 0 || s.Height <= 0
}

// Rect is an axis-aligned rectangle stored as min/max bounds.
type Rect struct {
	MinX, MinY float32
	MaxX, MaxY float32
}

// RectFromXYWH returns the rectangle with origin (x, y) and the given size.
func RectFromXYWH(x, y, w, h float32) Rect {
	return Rect{MinX: x, MinY: y, MaxX: x + w, MaxY: y + h}
}

// RectFromOriginSize returns the rectangle at origin with size s.
func RectFromOriginSize(origin Point, s Size) Rect {
	return RectFromXYWH(origin.X, origin.Y, s.Width, s.Height)
}

// MaxRect returns a rectangle covering the whole representable layout space.
// Picture instances use it as their local clip rect.
func MaxRect() Rect {
	const big = 1e20
	return Rect{MinX: -big, MinY: -big, MaxX: big, MaxY: big}
}

// EmptyRect returns an empty rectangle (inverted bounds for union operations).
func EmptyRect() Rect {
	return Rect{
		MinX: math32.MaxFloat32,
		MinY: math32.MaxFloat32,
		MaxX: -math32.MaxFloat32,
		MaxY: -math32.MaxFloat32,
	}
}

// IsEmpty returns true if the rectangle has no area.
func (r Rect) IsEmpty() bool {
	return r.MinX >= r.MaxX || r.MinY >= r.MaxY
}

// Origin returns the top-left corner.
func (r Rect) Origin() Point {
	return Point{X: r.MinX, Y: r.MinY}
}

// Size returns the extent of the rectangle.
func (r Rect) Size() Size {
	return Size{Width: r.Width(), Height: r.Height()}
}

// Width returns the width of the rectangle.
func (r Rect) Width() float32 {
	if r.IsEmpty() {
		return 0
	}
	return r.MaxX - r.MinX
}

// Height returns the height of the rectangle.
func (r Rect) Height() float32 {
	if r.IsEmpty() {
		return 0
	}
	return r.MaxY - r.MinY
}

// WithSize returns a rectangle with the same origin and a new size.
func (r Rect) WithSize(s Size) Rect {
	return RectFromOriginSize(r.Origin(), s)
}

// Translate returns r moved by v.
func (r Rect) Translate(v Vector) Rect {
	return Rect{MinX: r.MinX + v.X, MinY: r.MinY + v.Y, MaxX: r.MaxX + v.X, MaxY: r.MaxY + v.Y}
}

// Inflate grows the rectangle by dx on the left and right and dy on the top
// and bottom. Negative values shrink it.
func (r Rect) Inflate(dx, dy float32) Rect {
	return Rect{MinX: r.MinX - dx, MinY: r.MinY - dy, MaxX: r.MaxX + dx, MaxY: r.MaxY + dy}
}

// Union returns the smallest rectangle containing both r and other.
func (r Rect) Union(other Rect) Rect {
	return Rect{
		MinX: math32.Min(r.MinX, other.MinX),
		MinY: math32.Min(r.MinY, other.MinY),
		MaxX: math32.Max(r.MaxX, other.MaxX),
		MaxY: math32.Max(r.MaxY, other.MaxY),
	}
}

// Intersect returns the overlap of r and other and whether it is non-empty.
func (r Rect) Intersect(other Rect) (Rect, bool) {
	out := Rect{
		MinX: math32.Max(r.MinX, other.MinX),
		MinY: math32.Max(r.MinY, other.MinY),
		MaxX: math32.Min(r.MaxX, other.MaxX),
		MaxY: math32.Min(r.MaxY, other.MaxY),
	}
	if out.IsEmpty() {
		return Rect{}, false
	}
	return out, true
}

// Contains reports whether p lies inside r. The max edges are exclusive.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.MinX && p.X < r.MaxX && p.Y >= r.MinY && p.Y < r.MaxY
}

// Transform is a 2D affine transformation matrix.
// The matrix is stored in row-major order as:
//
//	| A  B  C |
//	| D  E  F |
//
// Where a point (x, y) is transformed to:
//
//	x' = A*x + B*y + C
//	y' = D*x + E*y + F
type Transform struct {
	A, B, C float32
	D, E, F float32
}

// Identity returns the identity transformation.
func Identity() Transform {
	return Transform{A: 1, E: 1}
}

// Translation creates a translation transformation.
func Translation(x, y float32) Transform {
	return Transform{A: 1, C: x, E: 1, F: y}
}

// Scale creates a scaling transformation.
func Scale(x, y float32) Transform {
	return Transform{A: x, E: y}
}

// Rotation creates a rotation transformation (angle in radians).
func Rotation(angle float32) Transform {
	sin, cos := math32.Sincos(angle)
	return Transform{A: cos, B: -sin, D: sin, E: cos}
}

// Multiply returns the product of two transformations (t applied after o).
func (t Transform) Multiply(o Transform) Transform {
	return Transform{
		A: t.A*o.A + t.B*o.D,
		B: t.A*o.B + t.B*o.E,
		C: t.A*o.C + t.B*o.F + t.C,
		D: t.D*o.A + t.E*o.D,
		E: t.D*o.B + t.E*o.E,
		F: t.D*o.C + t.E*o.F + t.F,
	}
}

// TransformPoint maps p through the matrix.
func (t Transform) TransformPoint(p Point) Point {
	return Point{X: t.A*p.X + t.B*p.Y + t.C, Y: t.D*p.X + t.E*p.Y + t.F}
}

// IsIdentity returns true if this is the identity transformation.
func (t Transform) IsIdentity() bool {
	return t == Identity()
}

// IsAxisAligned reports whether the transform maps axis-aligned rectangles
// to axis-aligned rectangles.
func (t Transform) IsAxisAligned() bool {
	return (t.B == 0 && t.D == 0) || (t.A == 0 && t.E == 0)
}
