// Package numkernel implements the numeric-kernel seam of SPEC_FULL §6.2:
// the handful of dense linear-algebra operations (dot product, matrix-vector
// product, matrix-matrix product) the `*`/`LinearAlgebra`-adjacent portions
// of the standard library need, behind a small Kernel interface so the
// interpreter core never imports a BLAS package directly.
//
// Grounded on `_examples/other_examples/ca58d2ee_gonum-gonum__blas.go.go`,
// the only BLAS reference material in the retrieval pack — its blas.Float64
// interface (Ddot/Dgemv/Dgemm) is exactly the shape this package wraps. The
// concrete Kernel implementation backs onto gonum.org/v1/gonum/blas/gonum's
// Implementation{}, the pack's only real Go BLAS backend.
package numkernel

import (
	"github.com/jlvm/jlvm/internal/heap"
	"github.com/jlvm/jlvm/internal/jlerror"
	"github.com/jlvm/jlvm/internal/types"
	"github.com/jlvm/jlvm/internal/value"

	"gonum.org/v1/gonum/blas"
	"gonum.org/v1/gonum/blas/gonum"
)

// Kernel is the numeric-backend seam: anything satisfying it can execute
// dense dot/matvec/matmul for a Float64 Array (spec.md §6.2's "at minimum a
// dot/matvec/matmul kernel interface").
type Kernel interface {
	Dot(x, y []float64) float64
	Gemv(m, n int, alpha float64, a []float64, x []float64, beta float64, y []float64)
	Gemm(m, n, k int, alpha float64, a, b []float64, beta float64, c []float64)
}

// gonumKernel backs Kernel with gonum's reference BLAS implementation.
type gonumKernel struct {
	impl blas.Float64
}

// Default is the package-level Kernel that MatMul and Dot call into, backed by gonum's pure-Go BLAS (no cgo/system BLAS dependency,
// matching the rest of this module's build-anywhere posture).
var Default Kernel = gonumKernel{impl: gonum.Implementation{}}

func (k gonumKernel) Dot(x, y []float64) float64 {
	return k.impl.Ddot(len(x), x, 1, y, 1)
}

// Gemv computes y := alpha*A*x + beta*y for an m x n column-major A.
func (k gonumKernel) Gemv(m, n int, alpha float64, a, x []float64, beta float64, y []float64) {
	k.impl.Dgemv(blas.ColMajor, blas.NoTrans, m, n, alpha, a, m, x, 1, beta, y, 1)
}

// Gemm computes C := alpha*A*B + beta*C for m x k A, k x n B, m x n C, all
// column-major.
func (k gonumKernel) Gemm(m, n, k int, alpha float64, a, b []float64, beta float64, c []float64) {
	kern := k.impl
	kern.Dgemm(blas.ColMajor, blas.NoTrans, blas.NoTrans, m, n, k, alpha, a, m, b, k, beta, c, m)
}

// toFloat64Slice extracts a Float64-element Array's backing Memory as a
// plain []float64, the shape every blas.Float64 routine wants.
func toFloat64Slice(a *heap.Array) ([]float64, error) {
	if a.ElemType() != types.Float64 {
		return nil, jlerror.NewTypeError("numkernel", "Array{Float64}", a.JLType().String())
	}
	out := make([]float64, a.Len())
	for i := range out {
		out[i] = a.Mem.Data[a.Offset+i].AsFloat64()
	}
	return out, nil
}

// MatMul implements Julia's `*` between two Float64 matrices (SPEC_FULL
// §6.2), column-major throughout to match heap.Array's own layout.
func MatMul(a, b *heap.Array) (*heap.Array, error) {
	if a.Ndims() != 2 || b.Ndims() != 2 {
		return nil, jlerror.NewDimensionMismatch(a.Shape, b.Shape)
	}
	m, k := a.Shape[0], a.Shape[1]
	k2, n := b.Shape[0], b.Shape[1]
	if k != k2 {
		return nil, jlerror.NewDimensionMismatch(a.Shape, b.Shape)
	}
	af, err := toFloat64Slice(a)
	if err != nil {
		return nil, err
	}
	bf, err := toFloat64Slice(b)
	if err != nil {
		return nil, err
	}
	cf := make([]float64, m*n)
	Default.Gemm(m, n, k, 1, af, bf, 0, cf)
	out := make([]value.Value, m*n)
	for i, v := range cf {
		out[i] = value.Float64(v)
	}
	return heap.NewArrayFrom(types.Float64, []int{m, n}, out), nil
}

// Dot implements Julia's `dot`/`LinearAlgebra.dot` between two Float64
// vectors.
func Dot(a, b *heap.Array) (float64, error) {
	af, err := toFloat64Slice(a)
	if err != nil {
		return 0, err
	}
	bf, err := toFloat64Slice(b)
	if err != nil {
		return 0, err
	}
	if len(af) != len(bf) {
		return 0, jlerror.NewDimensionMismatch(a.Shape, b.Shape)
	}
	return Default.Dot(af, bf), nil
}
