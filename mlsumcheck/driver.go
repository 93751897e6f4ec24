// Package mlsumcheck implements the interactive sumcheck protocol for
// product-list polynomials (spec.md §4.4-4.6) and the non-interactive
// Fiat-Shamir driver on top of it.
package mlsumcheck

import (
	"fmt"

	"github.com/arkworks-rs/sumcheck/field"
	"github.com/arkworks-rs/sumcheck/polylist"
	"github.com/arkworks-rs/sumcheck/transcript"
)

// Proof is the non-interactive sumcheck proof: the ordered sequence of
// round polynomials, each d+1 field evaluations (spec.md §3, §6).
type Proof struct {
	RoundPolys [][]field.Element
}

// Shape is the public description of a product-list polynomial a verifier
// needs: spec.md §6 "The verifier derives n and d from the polynomial
// description passed in out-of-band, not from the proof."
type Shape struct {
	NumVars          int
	MaxMultiplicands int
	NumProducts      int
}

// ShapeOf extracts the public Shape of a product-list polynomial.
func ShapeOf(p *polylist.ListOfProducts) Shape {
	return Shape{
		NumVars:          p.NumVars,
		MaxMultiplicands: p.MaxMultiplicands,
		NumProducts:      len(p.Products),
	}
}

// Prove runs the non-interactive prover: it initializes a fresh transcript
// under transcriptLabel and emits a Proof (spec.md §4.6, §6).
func Prove(p *polylist.ListOfProducts, transcriptLabel string) (*Proof, error) {
	return ProveWithTranscript(p, transcript.New(transcriptLabel))
}

// ProveWithTranscript runs the prover against a caller-owned transcript, so
// MLSumcheck can be composed as a subroutine of a larger protocol (spec.md
// §4.6 "as-subprotocol mode", §9 "Transcript composition") without
// re-initializing Fiat-Shamir. The caller is responsible for having already
// absorbed anything that must precede this sub-proof.
func ProveWithTranscript(p *polylist.ListOfProducts, tr *transcript.Transcript) (*Proof, error) {
	bindShape(tr, ShapeOf(p))
	ps, err := NewProverState(p)
	if err != nil {
		return nil, err
	}
	proof := &Proof{RoundPolys: make([][]field.Element, 0, p.NumVars)}
	for r := 0; r < p.NumVars; r++ {
		poly, err := ps.NextRoundPolynomial()
		if err != nil {
			return nil, err
		}
		tr.AppendFieldSlice("round-poly", poly)
		challenge := tr.ChallengeField("round-challenge")
		if err := ps.FixVariable(challenge); err != nil {
			return nil, err
		}
		proof.RoundPolys = append(proof.RoundPolys, poly)
	}
	return proof, nil
}

// Verify runs the non-interactive verifier against a fresh transcript under
// transcriptLabel (spec.md §6). On success it returns the accumulated
// challenge point and the final asserted value; the caller completes
// verification by checking that value against an oracle evaluation of the
// original polynomial at that point (spec.md §4.5 step 6).
func Verify(shape Shape, claimedSum field.Element, proof *Proof, transcriptLabel string) ([]field.Element, field.Element, error) {
	return VerifyWithTranscript(shape, claimedSum, proof, transcript.New(transcriptLabel))
}

// VerifyWithTranscript mirrors ProveWithTranscript for a caller-owned
// transcript.
func VerifyWithTranscript(shape Shape, claimedSum field.Element, proof *Proof, tr *transcript.Transcript) ([]field.Element, field.Element, error) {
	bindShape(tr, shape)
	if len(proof.RoundPolys) != shape.NumVars {
		return nil, field.Zero(), fmt.Errorf("%w: Verify: proof has %d round polynomials, want %d", ErrMalformedInput, len(proof.RoundPolys), shape.NumVars)
	}
	vs, err := NewVerifierState(shape.NumVars, shape.MaxMultiplicands, claimedSum)
	if err != nil {
		return nil, field.Zero(), err
	}
	for r := 0; r < shape.NumVars; r++ {
		poly := proof.RoundPolys[r]
		// Reject before absorbing: spec.md §7 forbids letting a malformed or
		// inconsistent message influence the transcript state.
		if err := vs.CheckRoundPolynomial(poly); err != nil {
			return nil, field.Zero(), err
		}
		tr.AppendFieldSlice("round-poly", poly)
		challenge := tr.ChallengeField("round-challenge")
		vs.Advance(poly, challenge)
	}
	return vs.Point, vs.AssertedSum, nil
}

// bindShape absorbs the polynomial's public shape into the transcript before
// any round material, so a prover cannot re-use a transcript across
// differently-shaped statements undetected (spec.md §4.6).
func bindShape(tr *transcript.Transcript, shape Shape) {
	tr.Append("shape.num-vars", encodeInt(shape.NumVars))
	tr.Append("shape.max-multiplicands", encodeInt(shape.MaxMultiplicands))
	tr.Append("shape.num-products", encodeInt(shape.NumProducts))
}

func encodeInt(x int) []byte {
	out := make([]byte, 8)
	v := uint64(x)
	for i := 0; i < 8; i++ {
		out[i] = byte(v >> (8 * i))
	}
	return out
}
