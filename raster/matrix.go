// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package raster

import "math"

// matrix is a 2D affine transform:
//
//	| A C E |
//	| B D F |
//
// mapping (x, y) to (A*x + C*y + E, B*x + D*y + F).
type matrix struct {
	A, B, C, D, E, F float64
}

func identityMatrix() matrix {
	return matrix{A: 1, D: 1}
}

func (m matrix) apply(x, y float64) (float64, float64) {
	return m.A*x + m.C*y + m.E, m.B*x + m.D*y + m.F
}

// mul returns m * n, so n applies first.
func (m matrix) mul(n matrix) matrix {
	return matrix{
		A: m.A*n.A + m.C*n.B,
		B: m.B*n.A + m.D*n.B,
		C: m.A*n.C + m.C*n.D,
		D: m.B*n.C + m.D*n.D,
		E: m.A*n.E + m.C*n.F + m.E,
		F: m.B*n.E + m.D*n.F + m.F,
	}
}

func (m matrix) translate(dx, dy float64) matrix {
	return m.mul(matrix{A: 1, D: 1, E: dx, F: dy})
}

func (m matrix) scale(sx, sy float64) matrix {
	return m.mul(matrix{A: sx, D: sy})
}

func (m matrix) rotate(radians float64) matrix {
	sin, cos := math.Sincos(radians)
	return m.mul(matrix{A: cos, B: sin, C: -sin, D: cos})
}

// axisAligned reports whether the matrix has no rotation or skew, so
// axis-aligned rectangles map to axis-aligned rectangles.
func (m matrix) axisAligned() bool {
	return m.B == 0 && m.C == 0
}

// invert returns the inverse transform. ok is false for a degenerate
// matrix.
func (m matrix) invert() (matrix, bool) {
	det := m.A*m.D - m.B*m.C
	if det == 0 {
		return matrix{}, false
	}
	inv := 1 / det
	return matrix{
		A: m.D * inv,
		B: -m.B * inv,
		C: -m.C * inv,
		D: m.A * inv,
		E: (m.C*m.F - m.D*m.E) * inv,
		F: (m.B*m.E - m.A*m.F) * inv,
	}, true
}
