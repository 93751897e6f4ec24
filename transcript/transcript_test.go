package transcript

import (
	"testing"

	"github.com/arkworks-rs/sumcheck/field"
)

func TestDeterminism(t *testing.T) {
	t1 := New("test")
	t2 := New("test")
	t1.AppendField("x", field.FromUint64(42))
	t2.AppendField("x", field.FromUint64(42))
	if t1.ChallengeField("c") != t2.ChallengeField("c") {
		t.Fatalf("identical transcripts diverged")
	}
}

func TestDivergesOnDifferentAbsorbedBytes(t *testing.T) {
	t1 := New("test")
	t2 := New("test")
	t1.AppendField("x", field.FromUint64(42))
	t2.AppendField("x", field.FromUint64(43))
	if t1.ChallengeField("c") == t2.ChallengeField("c") {
		t.Fatalf("transcripts with different absorbed data should diverge")
	}
}

func TestDivergesOnDifferentLabel(t *testing.T) {
	t1 := New("label-a")
	t2 := New("label-b")
	if t1.ChallengeField("c") == t2.ChallengeField("c") {
		t.Fatalf("transcripts with different init labels should diverge")
	}
}

func TestSequentialChallengesDiffer(t *testing.T) {
	tr := New("test")
	c1 := tr.ChallengeField("round1")
	c2 := tr.ChallengeField("round2")
	if c1 == c2 {
		t.Fatalf("sequential challenges should (overwhelmingly likely) differ")
	}
}

func TestAppendFieldSliceMatchesManualAppends(t *testing.T) {
	xs := []field.Element{field.FromUint64(1), field.FromUint64(2), field.FromUint64(3)}
	t1 := New("test")
	t1.AppendFieldSlice("poly", xs)
	c1 := t1.ChallengeField("c")

	t2 := New("test")
	buf := make([]byte, 0, 24)
	for _, x := range xs {
		b := x.Bytes()
		buf = append(buf, b[:]...)
	}
	t2.Append("poly", buf)
	c2 := t2.ChallengeField("c")
	if c1 != c2 {
		t.Fatalf("AppendFieldSlice should match manual concatenation")
	}
}
