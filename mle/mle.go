// Package mle implements dense multilinear extensions over the hypercube
// {0,1}^n, stored as their 2^n evaluations in little-endian bit order (spec.md
// §3, §4.1).
package mle

import (
	"errors"
	"fmt"

	"github.com/arkworks-rs/sumcheck/field"
)

// ErrMalformedInput is returned when a caller-supplied evaluation table is not
// a valid hypercube (its length is not a power of two).
var ErrMalformedInput = errors.New("mle: malformed input")

// Dense is the dense evaluation-table representation of a multilinear
// extension. NumVars is the variable count the table was built with; Evals
// may later be handed to FixFirstVariable by a caller folding rounds, which
// does not mutate Dense itself.
type Dense struct {
	NumVars int
	Evals   []field.Element
}

// New builds a Dense MLE from its evaluations on {0,1}^n. len(evals) must be
// a power of two (n = log2(len(evals))); n = 0 (a single constant value) is
// allowed.
func New(evals []field.Element) (*Dense, error) {
	n, err := log2PowerOfTwo(len(evals))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedInput, err)
	}
	cp := make([]field.Element, len(evals))
	copy(cp, evals)
	return &Dense{NumVars: n, Evals: cp}, nil
}

// Clone returns a deep copy whose Evals a caller may fold independently.
func (d *Dense) Clone() *Dense {
	cp := make([]field.Element, len(d.Evals))
	copy(cp, d.Evals)
	return &Dense{NumVars: d.NumVars, Evals: cp}
}

// Equal reports whether d and o have identical evaluation tables; used by
// polylist's pool deduplication to recognize structurally identical MLEs.
func (d *Dense) Equal(o *Dense) bool {
	if d.NumVars != o.NumVars || len(d.Evals) != len(o.Evals) {
		return false
	}
	for i := range d.Evals {
		if !d.Evals[i].Equal(o.Evals[i]) {
			return false
		}
	}
	return true
}

// FixFirstVariable performs the single round-fold operation spec.md §4.1
// names as the mechanism that moves prover state forward:
//
//	new[i] = old[2i] + x*(old[2i+1] - old[2i])
//
// table's length must be even (and non-zero); the result has half the
// length. table is not modified.
func FixFirstVariable(table []field.Element, x field.Element) []field.Element {
	if len(table)%2 != 0 || len(table) == 0 {
		panic("mle: FixFirstVariable: table length must be a positive even number")
	}
	half := len(table) / 2
	out := make([]field.Element, half)
	for i := 0; i < half; i++ {
		a := table[2*i]
		b := table[2*i+1]
		out[i] = a.Add(x.Mul(b.Sub(a)))
	}
	return out
}

// Evaluate computes the standard multilinear-extension evaluation at point,
// by repeatedly applying FixFirstVariable until a single element remains
// (spec.md §4.1). len(point) must equal d.NumVars.
func (d *Dense) Evaluate(point []field.Element) (field.Element, error) {
	if len(point) != d.NumVars {
		return field.Zero(), fmt.Errorf("%w: evaluate: point has %d coordinates, want %d", ErrMalformedInput, len(point), d.NumVars)
	}
	table := d.Evals
	for _, x := range point {
		table = FixFirstVariable(table, x)
	}
	return table[0], nil
}

func log2PowerOfTwo(n int) (int, error) {
	if n <= 0 {
		return 0, fmt.Errorf("length must be positive, got %d", n)
	}
	bits := 0
	for v := n; v > 1; v >>= 1 {
		if v&1 != 0 {
			return 0, fmt.Errorf("length %d is not a power of two", n)
		}
		bits++
	}
	return bits, nil
}
