// Package gkr implements GKRRoundSumcheck (spec.md §4.7): the specialized
// sumcheck for one round of the GKR layered-circuit interactive proof,
//
//	H(g) = Σ_{y,z} f1(g,y,z)·f2(y)·f3(z)  +  Σ_y f1(g,y,y)·f2(y)·f3(y)
//
// It is built entirely on top of MLSumcheck. Fixing g in f1 and lifting f2,f3
// to a shared 2l-variable space turns the first sum into an ordinary
// product-list term. The second, diagonal sum is folded into the *same*
// 2l-variable term using the equality polynomial eq(y,z) — the standard
// multilinear indicator of y=z — as a selector: eq zeroes every off-diagonal
// hypercube point, so
//
//	Σ_{y,z} f1|_g(y,z)·eq(y,z)·f2(y)·f3(z) = Σ_y f1|_g(y,y)·f2(y)·f3(y)
//
// on the hypercube. The two sums become two Products of one ListOfProducts
// over 2l variables — spec.md §4.7's "the driver runs MLSumcheck on the
// concatenation" — delegated to the mlsumcheck driver as a single proof.
package gkr

import (
	"fmt"

	"github.com/arkworks-rs/sumcheck/field"
	"github.com/arkworks-rs/sumcheck/mle"
	"github.com/arkworks-rs/sumcheck/mlsumcheck"
	"github.com/arkworks-rs/sumcheck/polylist"
	"github.com/arkworks-rs/sumcheck/transcript"
)

// ErrMalformedInput is returned when f1, f2, f3, or g do not have the shape l
// requires.
var ErrMalformedInput = mlsumcheck.ErrMalformedInput

// Proof is the GKRRoundSumcheck proof: the single underlying MLSumcheck
// proof over the 2l-variable reduced polynomial.
type Proof struct {
	Sum *mlsumcheck.Proof
}

// Result is what Verify returns on acceptance: the challenge point (length
// 2l, y-coordinates followed by z-coordinates) and the final asserted value,
// enough for a caller holding oracle access to f1, f2, f3 to finalize the
// check (spec.md §4.7 "Output"). FinalCheck performs that finalization.
type Result struct {
	Point []field.Element
	Value field.Element
}

func validate(f1, f2, f3 *mle.Dense, g []field.Element) (int, error) {
	l := len(g)
	if l == 0 {
		return 0, fmt.Errorf("%w: gkr: g must be non-empty", ErrMalformedInput)
	}
	if f1.NumVars != 3*l {
		return 0, fmt.Errorf("%w: gkr: f1 has %d vars, want 3*%d", ErrMalformedInput, f1.NumVars, l)
	}
	if f2.NumVars != l {
		return 0, fmt.Errorf("%w: gkr: f2 has %d vars, want %d", ErrMalformedInput, f2.NumVars, l)
	}
	if f3.NumVars != l {
		return 0, fmt.Errorf("%w: gkr: f3 has %d vars, want %d", ErrMalformedInput, f3.NumVars, l)
	}
	return l, nil
}

// fixLeading folds the first len(xs) variables of f's table to xs, in order,
// via iterated FixFirstVariable (spec.md §4.7: "f1|_g ... precomputed ... via
// iterated fix_first_variable"), yielding f1|_g as a Dense over the remaining
// variables.
func fixLeading(f *mle.Dense, xs []field.Element) *mle.Dense {
	table := f.Evals
	for _, x := range xs {
		table = mle.FixFirstVariable(table, x)
	}
	return &mle.Dense{NumVars: f.NumVars - len(xs), Evals: table}
}

// liftLow returns a 2l-variable MLE whose value at (y,z) is f(y): y occupies
// the low l bits, so f's table is tiled once per z-block. The multilinear
// extension of a function with no z-dependence has no z-dependence at any
// point, boolean or not, so this lift is exact everywhere, not just on the
// hypercube.
func liftLow(f *mle.Dense, l int) *mle.Dense {
	blockSize := 1 << l
	out := make([]field.Element, blockSize*blockSize)
	for z := 0; z < blockSize; z++ {
		copy(out[z*blockSize:(z+1)*blockSize], f.Evals)
	}
	return &mle.Dense{NumVars: 2 * l, Evals: out}
}

// liftHigh returns a 2l-variable MLE whose value at (y,z) is f(z): z occupies
// the high l bits, so each of f's values is broadcast across its z-block.
func liftHigh(f *mle.Dense, l int) *mle.Dense {
	blockSize := 1 << l
	out := make([]field.Element, blockSize*blockSize)
	for z := 0; z < blockSize; z++ {
		v := f.Evals[z]
		for y := 0; y < blockSize; y++ {
			out[z*blockSize+y] = v
		}
	}
	return &mle.Dense{NumVars: 2 * l, Evals: out}
}

// equalityMLE builds the 2l-variable dense MLE whose hypercube values are the
// indicator of y=z: 1 where the low and high l-bit halves of the index
// agree, 0 elsewhere. Its multilinear extension is the standard "eq"
// polynomial, eq(y,z) = Π_i (y_i z_i + (1-y_i)(1-z_i)).
func equalityMLE(l int) *mle.Dense {
	blockSize := 1 << l
	out := make([]field.Element, blockSize*blockSize)
	for y := 0; y < blockSize; y++ {
		out[y*blockSize+y] = field.One()
	}
	return &mle.Dense{NumVars: 2 * l, Evals: out}
}

// eqClosedForm evaluates eq(ys,zs) directly from its product formula, for
// use in FinalCheck where only f1, f2, f3's own oracle access is available.
func eqClosedForm(ys, zs []field.Element) field.Element {
	acc := field.One()
	one := field.One()
	for i := range ys {
		a, b := ys[i], zs[i]
		term := a.Mul(b).Add(one.Sub(a).Mul(one.Sub(b)))
		acc = acc.Mul(term)
	}
	return acc
}

// buildReduced derives the single 2l-variable product-list polynomial the
// reduction produces (spec.md §4.7 "Reduction").
func buildReduced(f1, f2, f3 *mle.Dense, g []field.Element, l int) *polylist.ListOfProducts {
	f1g := fixLeading(f1, g)
	f2lifted := liftLow(f2, l)
	f3lifted := liftHigh(f3, l)
	eq := equalityMLE(l)

	p := polylist.New(2 * l)
	_ = p.AddProduct(field.One(), []*mle.Dense{f1g, f2lifted, f3lifted})
	_ = p.AddProduct(field.One(), []*mle.Dense{f1g, eq, f2lifted, f3lifted})
	return p
}

// Prove runs the non-interactive GKRRoundSumcheck prover under a fresh
// transcript (spec.md §6 "GKRRoundSumcheck.prove").
func Prove(f1, f2, f3 *mle.Dense, g []field.Element, transcriptLabel string) (*Proof, error) {
	return ProveWithTranscript(f1, f2, f3, g, transcript.New(transcriptLabel))
}

// ProveWithTranscript runs the prover against a caller-owned transcript, so a
// larger protocol can compose several GKR rounds over one Fiat-Shamir
// session (spec.md §4.6 "as-subprotocol mode").
func ProveWithTranscript(f1, f2, f3 *mle.Dense, g []field.Element, tr *transcript.Transcript) (*Proof, error) {
	l, err := validate(f1, f2, f3, g)
	if err != nil {
		return nil, err
	}
	p := buildReduced(f1, f2, f3, g, l)
	sumProof, err := mlsumcheck.ProveWithTranscript(p, tr)
	if err != nil {
		return nil, fmt.Errorf("gkr: %w", err)
	}
	return &Proof{Sum: sumProof}, nil
}

// ClaimedSum computes H(g) directly, for a prover (or test) that needs the
// value it is about to claim before calling Prove.
func ClaimedSum(f1, f2, f3 *mle.Dense, g []field.Element) (field.Element, error) {
	l, err := validate(f1, f2, f3, g)
	if err != nil {
		return field.Zero(), err
	}
	return buildReduced(f1, f2, f3, g, l).HypercubeSum(), nil
}

// Verify runs the non-interactive GKRRoundSumcheck verifier under a fresh
// transcript (spec.md §6 "GKRRoundSumcheck.verify").
func Verify(l int, g []field.Element, claimedSum field.Element, proof *Proof, transcriptLabel string) (Result, error) {
	return VerifyWithTranscript(l, g, claimedSum, proof, transcript.New(transcriptLabel))
}

// VerifyWithTranscript mirrors ProveWithTranscript for a caller-owned
// transcript.
func VerifyWithTranscript(l int, g []field.Element, claimedSum field.Element, proof *Proof, tr *transcript.Transcript) (Result, error) {
	if len(g) != l {
		return Result{}, fmt.Errorf("%w: gkr: Verify: len(g) = %d, want %d", ErrMalformedInput, len(g), l)
	}
	shape := mlsumcheck.Shape{NumVars: 2 * l, MaxMultiplicands: 4, NumProducts: 2}
	point, value, err := mlsumcheck.VerifyWithTranscript(shape, claimedSum, proof.Sum, tr)
	if err != nil {
		return Result{}, fmt.Errorf("gkr: %w", err)
	}
	return Result{Point: point, Value: value}, nil
}

// FinalCheck performs the oracle-side finalization spec.md §4.7 leaves to "a
// verifier holding g and oracle access to f1,f2,f3": it recomputes the
// claimed value at result.Point directly from f1, f2, f3 and g, using the
// closed form of eq, and reports whether it matches result.Value.
func FinalCheck(f1, f2, f3 *mle.Dense, g []field.Element, result Result) (bool, error) {
	l := len(g)
	if len(result.Point) != 2*l {
		return false, fmt.Errorf("%w: gkr: FinalCheck: point has %d coordinates, want %d", ErrMalformedInput, len(result.Point), 2*l)
	}
	ry := result.Point[:l]
	rz := result.Point[l:]

	full := make([]field.Element, 0, 3*l)
	full = append(full, g...)
	full = append(full, result.Point...)
	v1, err := f1.Evaluate(full)
	if err != nil {
		return false, err
	}
	v2, err := f2.Evaluate(ry)
	if err != nil {
		return false, err
	}
	v3, err := f3.Evaluate(rz)
	if err != nil {
		return false, err
	}
	eq := eqClosedForm(ry, rz)
	want := v1.Mul(v2).Mul(v3).Mul(field.One().Add(eq))
	return want.Equal(result.Value), nil
}
