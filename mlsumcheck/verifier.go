package mlsumcheck

import (
	"fmt"

	"github.com/arkworks-rs/sumcheck/field"
)

// VerifierState is the MLSumcheck verifier core (spec.md §4.5): it tracks the
// running asserted sum and the accumulated challenge point across rounds.
// CheckRoundPolynomial and Advance are split so a caller (the non-interactive
// driver) can reject a malformed or inconsistent round polynomial *before*
// absorbing it into the transcript, per spec.md §7.
type VerifierState struct {
	NumVars          int
	MaxMultiplicands int
	AssertedSum      field.Element
	Point            []field.Element
	Round            int

	weights []field.Element // barycentric weights for nodes 0..d, cached once
}

// NewVerifierState starts verification of a claimed sum over a polynomial
// with the given shape.
func NewVerifierState(numVars, maxMultiplicands int, claimedSum field.Element) (*VerifierState, error) {
	if numVars < 0 {
		return nil, fmt.Errorf("%w: NewVerifierState: numVars must be >= 0", ErrMalformedInput)
	}
	if maxMultiplicands < 1 {
		return nil, fmt.Errorf("%w: NewVerifierState: maxMultiplicands must be >= 1", ErrMalformedInput)
	}
	return &VerifierState{
		NumVars:          numVars,
		MaxMultiplicands: maxMultiplicands,
		AssertedSum:      claimedSum,
		Point:            make([]field.Element, 0, numVars),
		weights:          barycentricWeights(maxMultiplicands),
	}, nil
}

// CheckRoundPolynomial validates poly's length and its consistency with the
// current asserted sum (spec.md §4.5 steps 1-2): p_r(0) + p_r(1) must equal
// the running asserted sum. It does not mutate VerifierState.
func (vs *VerifierState) CheckRoundPolynomial(poly []field.Element) error {
	if vs.Round >= vs.NumVars {
		return fmt.Errorf("%w: CheckRoundPolynomial", ErrReset)
	}
	want := vs.MaxMultiplicands + 1
	if len(poly) != want {
		return fmt.Errorf("%w: CheckRoundPolynomial: round %d: got %d evaluations, want %d", ErrMalformedInput, vs.Round+1, len(poly), want)
	}
	sum := poly[0].Add(poly[1])
	if !sum.Equal(vs.AssertedSum) {
		return &VerifyError{Round: vs.Round + 1, Expected: vs.AssertedSum, Actual: sum}
	}
	return nil
}

// Advance interpolates poly at challenge via barycentric interpolation on
// the fixed nodes {0,1,...,d}, updates the asserted sum to that value,
// appends challenge to the accumulated point, and advances the round
// counter (spec.md §4.5 steps 3-5). The caller must have already appended
// poly to the transcript and drawn challenge from it; Advance assumes poly
// already passed CheckRoundPolynomial.
func (vs *VerifierState) Advance(poly []field.Element, challenge field.Element) {
	vs.AssertedSum = evalBarycentric(poly, vs.weights, challenge)
	vs.Point = append(vs.Point, challenge)
	vs.Round++
}

// barycentricWeights precomputes w_i = 1 / prod_{j != i} (i - j) for the
// fixed integer nodes 0..d. Naive repeated Lagrange interpolation is a
// historical bug site at moderate d (spec.md §9); precomputed barycentric
// weights keep evalBarycentric a single pass over the nodes.
func barycentricWeights(d int) []field.Element {
	n := d + 1
	weights := make([]field.Element, n)
	for i := 0; i < n; i++ {
		prod := field.One()
		for j := 0; j < n; j++ {
			if i == j {
				continue
			}
			prod = prod.Mul(field.FromInt64(int64(i - j)))
		}
		weights[i] = prod.Inverse()
	}
	return weights
}

// evalBarycentric evaluates the degree-<=d polynomial interpolating
// (0,ys[0]),(1,ys[1]),...,(d,ys[d]) at x, using the precomputed weights.
func evalBarycentric(ys []field.Element, weights []field.Element, x field.Element) field.Element {
	n := len(ys)
	for i := 0; i < n; i++ {
		if node := field.FromInt64(int64(i)); x.Equal(node) {
			return ys[i]
		}
	}
	numer := field.Zero()
	denom := field.Zero()
	for i := 0; i < n; i++ {
		diff := x.Sub(field.FromInt64(int64(i)))
		term := weights[i].Mul(diff.Inverse())
		numer = numer.Add(term.Mul(ys[i]))
		denom = denom.Add(term)
	}
	return numer.Mul(denom.Inverse())
}
