package mlsumcheck

import (
	"errors"
	"testing"

	"github.com/arkworks-rs/sumcheck/field"
	"github.com/arkworks-rs/sumcheck/mle"
	"github.com/arkworks-rs/sumcheck/polylist"
	"github.com/arkworks-rs/sumcheck/transcript"
)

func mustMLE(t *testing.T, vals ...uint64) *mle.Dense {
	t.Helper()
	xs := make([]field.Element, len(vals))
	for i, v := range vals {
		xs[i] = field.FromUint64(v)
	}
	m, err := mle.New(xs)
	if err != nil {
		t.Fatalf("mle.New: %v", err)
	}
	return m
}

// TestConstantPolynomial is spec.md §8 scenario 1.
func TestConstantPolynomial(t *testing.T) {
	g := mustMLE(t, 1, 1, 1, 1, 1, 1, 1, 1)
	p := polylist.New(3)
	if err := p.AddProduct(field.One(), []*mle.Dense{g}); err != nil {
		t.Fatalf("AddProduct: %v", err)
	}
	claimed := field.FromUint64(8)
	proof, err := Prove(p, "test")
	if err != nil {
		t.Fatalf("Prove: %v", err)
	}
	point, finalValue, err := Verify(ShapeOf(p), claimed, proof, "test")
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if !finalValue.Equal(field.One()) {
		t.Fatalf("final value = %s, want 1", finalValue)
	}
	direct, err := p.Evaluate(point)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if !direct.Equal(finalValue) {
		t.Fatalf("oracle evaluation %s does not match final value %s", direct, finalValue)
	}
}

func buildSimpleProduct(t *testing.T) *polylist.ListOfProducts {
	t.Helper()
	g1 := mustMLE(t, 1, 2, 3, 4)
	g2 := mustMLE(t, 5, 6, 7, 8)
	p := polylist.New(2)
	if err := p.AddProduct(field.One(), []*mle.Dense{g1, g2}); err != nil {
		t.Fatalf("AddProduct: %v", err)
	}
	return p
}

// TestSimpleProduct is spec.md §8 scenario 2.
func TestSimpleProduct(t *testing.T) {
	p := buildSimpleProduct(t)
	claimed := field.FromUint64(70) // 1*5+2*6+3*7+4*8
	proof, err := Prove(p, "test")
	if err != nil {
		t.Fatalf("Prove: %v", err)
	}
	point, finalValue, err := Verify(ShapeOf(p), claimed, proof, "test")
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	direct, err := p.Evaluate(point)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if !direct.Equal(finalValue) {
		t.Fatalf("oracle evaluation %s does not match final value %s", direct, finalValue)
	}
}

// TestBadSumRejected is spec.md §8 scenario 3.
func TestBadSumRejected(t *testing.T) {
	p := buildSimpleProduct(t)
	claimed := field.FromUint64(69)
	proof, err := Prove(p, "test")
	if err != nil {
		t.Fatalf("Prove: %v", err)
	}
	_, _, err = Verify(ShapeOf(p), claimed, proof, "test")
	if err == nil {
		t.Fatalf("expected rejection for bad claimed sum")
	}
	if !errors.Is(err, ErrReject) {
		t.Fatalf("expected ErrReject, got %v", err)
	}
	var ve *VerifyError
	if !errors.As(err, &ve) {
		t.Fatalf("expected *VerifyError, got %T", err)
	}
	if ve.Round != 1 {
		t.Fatalf("expected rejection at round 1, got round %d", ve.Round)
	}
}

// TestMutatedProofRejected is spec.md §8 scenario 4.
func TestMutatedProofRejected(t *testing.T) {
	p := buildSimpleProduct(t)
	claimed := field.FromUint64(70)
	proof, err := Prove(p, "test")
	if err != nil {
		t.Fatalf("Prove: %v", err)
	}
	proof.RoundPolys[0][0] = proof.RoundPolys[0][0].Add(field.One())
	_, _, err = Verify(ShapeOf(p), claimed, proof, "test")
	if err == nil {
		t.Fatalf("expected rejection of mutated proof")
	}
	if !errors.Is(err, ErrReject) {
		t.Fatalf("expected ErrReject, got %v", err)
	}
}

func TestDeterminism(t *testing.T) {
	p := buildSimpleProduct(t)
	proof1, err := Prove(p, "test")
	if err != nil {
		t.Fatalf("Prove: %v", err)
	}
	proof2, err := Prove(p, "test")
	if err != nil {
		t.Fatalf("Prove: %v", err)
	}
	if len(proof1.RoundPolys) != len(proof2.RoundPolys) {
		t.Fatalf("round count mismatch")
	}
	for i := range proof1.RoundPolys {
		for j := range proof1.RoundPolys[i] {
			if !proof1.RoundPolys[i][j].Equal(proof2.RoundPolys[i][j]) {
				t.Fatalf("round %d eval %d diverged between identical proves", i, j)
			}
		}
	}
}

func TestDedupKeepsProverLinearInUniqueMLEs(t *testing.T) {
	h := mustMLE(t, 1, 2, 3, 4)
	p := polylist.New(2)
	if err := p.AddProduct(field.One(), []*mle.Dense{h, h, h}); err != nil {
		t.Fatalf("AddProduct: %v", err)
	}
	if err := p.AddProduct(field.One(), []*mle.Dense{h}); err != nil {
		t.Fatalf("AddProduct: %v", err)
	}
	if len(p.Pool) != 1 {
		t.Fatalf("pool size = %d, want 1", len(p.Pool))
	}
	ps, err := NewProverState(p)
	if err != nil {
		t.Fatalf("NewProverState: %v", err)
	}
	if len(ps.Tables) != 1 {
		t.Fatalf("prover table count = %d, want 1", len(ps.Tables))
	}
}

func TestWrongLengthRoundPolynomialRejected(t *testing.T) {
	p := buildSimpleProduct(t)
	proof, err := Prove(p, "test")
	if err != nil {
		t.Fatalf("Prove: %v", err)
	}
	proof.RoundPolys[0] = proof.RoundPolys[0][:len(proof.RoundPolys[0])-1]
	_, _, err = Verify(ShapeOf(p), field.FromUint64(70), proof, "test")
	if !errors.Is(err, ErrMalformedInput) {
		t.Fatalf("expected ErrMalformedInput, got %v", err)
	}
}

func TestEmptyProductListRejected(t *testing.T) {
	p := polylist.New(2)
	if _, err := NewProverState(p); !errors.Is(err, ErrMalformedInput) {
		t.Fatalf("expected ErrMalformedInput, got %v", err)
	}
}

// TestDegreeBoundAtVariousD checks barycentric interpolation correctness at
// several degrees, per spec.md §9's note that naive interpolation has
// historically produced off-by-one errors at moderate d.
func TestDegreeBoundAtVariousD(t *testing.T) {
	for _, d := range []int{1, 2, 3, 5, 8, 16, 32} {
		numVars := 2
		handles := make([]*mle.Dense, d)
		vals := make([]uint64, 1<<numVars)
		for i := range vals {
			vals[i] = uint64(i + 1)
		}
		for k := 0; k < d; k++ {
			handles[k] = mustMLE(t, vals...)
		}
		p := polylist.New(numVars)
		if err := p.AddProduct(field.One(), handles); err != nil {
			t.Fatalf("AddProduct (d=%d): %v", d, err)
		}
		zeros := make([]field.Element, numVars)
		claimed := field.Zero()
		for b0 := uint64(0); b0 < 2; b0++ {
			for b1 := uint64(0); b1 < 2; b1++ {
				v, err := p.Evaluate([]field.Element{field.FromUint64(b0), field.FromUint64(b1)})
				if err != nil {
					t.Fatalf("Evaluate: %v", err)
				}
				claimed = claimed.Add(v)
			}
		}
		_ = zeros
		proof, err := Prove(p, "test-d")
		if err != nil {
			t.Fatalf("Prove (d=%d): %v", d, err)
		}
		point, finalValue, err := Verify(ShapeOf(p), claimed, proof, "test-d")
		if err != nil {
			t.Fatalf("Verify (d=%d): %v", d, err)
		}
		direct, err := p.Evaluate(point)
		if err != nil {
			t.Fatalf("Evaluate(point) (d=%d): %v", d, err)
		}
		if !direct.Equal(finalValue) {
			t.Fatalf("d=%d: oracle eval %s != final value %s", d, direct, finalValue)
		}
	}
}

func TestAsSubprotocolTranscriptComposition(t *testing.T) {
	p := buildSimpleProduct(t)
	claimed := field.FromUint64(70)

	trP := transcript.New("outer")
	trP.Append("pre", []byte("context"))
	proof, err := ProveWithTranscript(p, trP)
	if err != nil {
		t.Fatalf("ProveWithTranscript: %v", err)
	}

	trV := transcript.New("outer")
	trV.Append("pre", []byte("context"))
	_, _, err = VerifyWithTranscript(ShapeOf(p), claimed, proof, trV)
	if err != nil {
		t.Fatalf("VerifyWithTranscript: %v", err)
	}
}
