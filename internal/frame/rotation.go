// Package frame provides the 3x3 rotation-matrix primitives used by the
// coordinate pipeline.
//
// All rotations are right-handed and active: RotZ(θ) carries the x axis
// toward the y axis for positive θ. Composition is ordinary matrix
// multiplication, so in a product the rightmost factor applies first to a
// column vector. Getting either convention wrong produces answers that look
// plausible and are silently wrong, which is why the conventions live in one
// package and are pinned by tests.
package frame

import (
	"errors"
	"fmt"

	"github.com/soniakeys/unit"
	"gonum.org/v1/gonum/mat"
)

// ErrShapeMismatch reports matrix dimensions inconsistent with 3-vector math.
var ErrShapeMismatch = errors.New("shape mismatch")

// RotX returns the rotation by a about the X axis.
func RotX(a unit.Angle) *mat.Dense {
	s, c := a.Sincos()
	return mat.NewDense(3, 3, []float64{
		1, 0, 0,
		0, c, -s,
		0, s, c,
	})
}

// RotY returns the rotation by a about the Y axis.
func RotY(a unit.Angle) *mat.Dense {
	s, c := a.Sincos()
	return mat.NewDense(3, 3, []float64{
		c, 0, s,
		0, 1, 0,
		-s, 0, c,
	})
}

// RotZ returns the rotation by a about the Z axis.
func RotZ(a unit.Angle) *mat.Dense {
	s, c := a.Sincos()
	return mat.NewDense(3, 3, []float64{
		c, -s, 0,
		s, c, 0,
		0, 0, 1,
	})
}

// LatitudeRotation returns RotY(lat) with its rows reversed. Applied after
// the meridian Z rotation, it maps terrestrial vectors into the observer's
// north/east/up basis: row 0 picks out north, row 1 east, row 2 up.
// Depends only on latitude, so callers cache it per location.
func LatitudeRotation(lat unit.Angle) *mat.Dense {
	s, c := lat.Sincos()
	return mat.NewDense(3, 3, []float64{
		-s, 0, c,
		0, 1, 0,
		c, 0, s,
	})
}

// Identity returns a fresh 3x3 identity matrix.
func Identity() *mat.Dense {
	return mat.NewDense(3, 3, []float64{
		1, 0, 0,
		0, 1, 0,
		0, 0, 1,
	})
}

// Transpose returns a concrete copy of the transpose of m.
func Transpose(m *mat.Dense) *mat.Dense {
	var t mat.Dense
	t.CloneFrom(m.T())
	return &t
}

// Compose multiplies the given matrices left to right. The rightmost factor
// applies first to a column vector. Every factor must be 3x3.
func Compose(ms ...*mat.Dense) (*mat.Dense, error) {
	if len(ms) == 0 {
		return nil, fmt.Errorf("compose: %w: no factors", ErrShapeMismatch)
	}
	for _, m := range ms {
		if r, c := m.Dims(); r != 3 || c != 3 {
			return nil, fmt.Errorf("compose: %w: %dx%d factor, want 3x3", ErrShapeMismatch, r, c)
		}
	}
	out := mat.DenseCopyOf(ms[0])
	for _, m := range ms[1:] {
		var p mat.Dense
		p.Mul(out, m)
		out = &p
	}
	return out, nil
}

// Apply returns m·v for a 3x3 matrix m.
func Apply(m mat.Matrix, v [3]float64) ([3]float64, error) {
	if r, c := m.Dims(); r != 3 || c != 3 {
		return [3]float64{}, fmt.Errorf("apply: %w: %dx%d matrix, want 3x3", ErrShapeMismatch, r, c)
	}
	var out [3]float64
	for i := 0; i < 3; i++ {
		out[i] = m.At(i, 0)*v[0] + m.At(i, 1)*v[1] + m.At(i, 2)*v[2]
	}
	return out, nil
}
