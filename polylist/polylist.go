// Package polylist implements the product-list polynomial P = sum_j c_j *
// prod_k g_{j,k}(x), the symbolic representation MLSumcheck proves sums over
// (spec.md §3, §4.2).
package polylist

import (
	"errors"
	"fmt"

	"github.com/arkworks-rs/sumcheck/field"
	"github.com/arkworks-rs/sumcheck/mle"
)

// ErrMalformedInput is returned for empty products or variable-count mismatches.
var ErrMalformedInput = errors.New("polylist: malformed input")

// Product is one (coefficient, arity-m handle tuple) term of the sum.
type Product struct {
	Coefficient field.Element
	Handles     []int // indices into ListOfProducts.Pool
}

// ListOfProducts is the product-list polynomial P. Pool deduplicates MLE
// handles structurally equal ones share a single pool slot, which is what
// gives the prover its "linear in unique MLEs" memory bound (spec.md §4.2,
// §9).
type ListOfProducts struct {
	NumVars          int
	MaxMultiplicands int
	Products         []Product
	Pool             []*mle.Dense
}

// New returns an empty product-list polynomial over the given number of
// variables.
func New(numVars int) *ListOfProducts {
	return &ListOfProducts{NumVars: numVars}
}

// AddProduct appends one product c * prod(handles) to P. Each handle is
// looked up in the pool: a structurally identical existing entry is reused,
// otherwise a new pool slot is allocated. Returns ErrMalformedInput if
// handles is empty or any handle's variable count does not match NumVars.
func (l *ListOfProducts) AddProduct(coefficient field.Element, handles []*mle.Dense) error {
	if len(handles) == 0 {
		return fmt.Errorf("%w: AddProduct: empty handle list", ErrMalformedInput)
	}
	indices := make([]int, len(handles))
	for i, h := range handles {
		if h.NumVars != l.NumVars {
			return fmt.Errorf("%w: AddProduct: handle %d has %d vars, want %d", ErrMalformedInput, i, h.NumVars, l.NumVars)
		}
		indices[i] = l.internPoolIndex(h)
	}
	l.Products = append(l.Products, Product{Coefficient: coefficient, Handles: indices})
	if len(handles) > l.MaxMultiplicands {
		l.MaxMultiplicands = len(handles)
	}
	return nil
}

// internPoolIndex returns the pool slot for h, reusing a structurally
// identical existing entry (same NumVars and evaluation table) if present.
func (l *ListOfProducts) internPoolIndex(h *mle.Dense) int {
	for i, existing := range l.Pool {
		if existing == h || existing.Equal(h) {
			return i
		}
	}
	l.Pool = append(l.Pool, h)
	return len(l.Pool) - 1
}

// Degree is the current max_multiplicands d.
func (l *ListOfProducts) Degree() int { return l.MaxMultiplicands }

// Evaluate computes P(point) directly from the pool (used by callers after a
// sumcheck completes, to check the verifier's claimed final value against an
// oracle evaluation of P — spec.md §8 "Completeness").
func (l *ListOfProducts) Evaluate(point []field.Element) (field.Element, error) {
	poolVals := make([]field.Element, len(l.Pool))
	for i, h := range l.Pool {
		v, err := h.Evaluate(point)
		if err != nil {
			return field.Zero(), fmt.Errorf("polylist: Evaluate: pool[%d]: %w", i, err)
		}
		poolVals[i] = v
	}
	sum := field.Zero()
	for _, p := range l.Products {
		term := p.Coefficient
		for _, idx := range p.Handles {
			term = term.Mul(poolVals[idx])
		}
		sum = sum.Add(term)
	}
	return sum, nil
}

// HypercubeSum computes the claimed sum H = sum_{x in {0,1}^n} P(x) directly
// from the pool's evaluation tables, without going through sumcheck. Callers
// use this to derive the claim a Prove call will need to substantiate
// (spec.md §4.3 "the prover claims H and must justify it interactively").
func (l *ListOfProducts) HypercubeSum() field.Element {
	sum := field.Zero()
	size := 1 << l.NumVars
	for i := 0; i < size; i++ {
		for _, p := range l.Products {
			term := p.Coefficient
			for _, idx := range p.Handles {
				term = term.Mul(l.Pool[idx].Evals[i])
			}
			sum = sum.Add(term)
		}
	}
	return sum
}
