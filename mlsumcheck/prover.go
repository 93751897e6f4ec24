package mlsumcheck

import (
	"fmt"
	"runtime"
	"sync"

	"github.com/arkworks-rs/sumcheck/field"
	"github.com/arkworks-rs/sumcheck/polylist"
)

// ProverState is IPForMLSumcheck's prover core (spec.md §4.4): the working
// tables it folds round by round, one per unique MLE in the pool. Re-entrancy
// within one session is forbidden by construction — the only way forward is
// NextRoundPolynomial followed by FixVariable, in that order, n times.
type ProverState struct {
	NumVars          int
	MaxMultiplicands int
	Products         []polylist.Product
	Tables           [][]field.Element
	Round            int // rounds fully folded so far, in [0, NumVars]
}

// NewProverState builds the initial per-round working tables by copying each
// pool MLE's evaluations (spec.md §4.4 "Initialization"). It returns
// ErrMalformedInput if P has no products.
func NewProverState(p *polylist.ListOfProducts) (*ProverState, error) {
	if len(p.Products) == 0 {
		return nil, fmt.Errorf("%w: NewProverState: product list is empty", ErrMalformedInput)
	}
	tables := make([][]field.Element, len(p.Pool))
	for i, m := range p.Pool {
		tbl := make([]field.Element, len(m.Evals))
		copy(tbl, m.Evals)
		tables[i] = tbl
	}
	return &ProverState{
		NumVars:          p.NumVars,
		MaxMultiplicands: p.MaxMultiplicands,
		Products:         p.Products,
		Tables:           tables,
	}, nil
}

// NextRoundPolynomial computes p_r, the d+1 evaluations of the current
// round's univariate polynomial at t = 0,1,...,d (spec.md §4.4). It does not
// mutate state; call FixVariable with the verifier's challenge afterward to
// advance to the next round.
func (ps *ProverState) NextRoundPolynomial() ([]field.Element, error) {
	if ps.Round >= ps.NumVars {
		return nil, fmt.Errorf("%w: NextRoundPolynomial", ErrReset)
	}
	h := len(ps.Tables[0]) / 2
	return computeRoundPolynomial(ps.Products, ps.Tables, h, ps.MaxMultiplicands), nil
}

// FixVariable folds every working table on the verifier's round challenge,
// halving their length, and advances the round counter (spec.md §4.4 "After
// emitting p_r, await challenge... Then update every working table").
func (ps *ProverState) FixVariable(challenge field.Element) error {
	if ps.Round >= ps.NumVars {
		return fmt.Errorf("%w: FixVariable", ErrReset)
	}
	for k, tbl := range ps.Tables {
		ps.Tables[k] = foldTable(tbl, challenge)
	}
	ps.Round++
	return nil
}

// foldTable computes the same fold as mle.FixFirstVariable,
// new[i] = old[2i] + x*(old[2i+1] - old[2i]), but does not check the table
// length: an odd trailing element is dropped instead of causing a panic.
func foldTable(table []field.Element, x field.Element) []field.Element {
	half := len(table) / 2
	out := make([]field.Element, half)
	for i := 0; i < half; i++ {
		a := table[2*i]
		b := table[2*i+1]
		out[i] = a.Add(x.Mul(b.Sub(a)))
	}
	return out
}

// computeRoundPolynomial is the hot loop spec.md §4.4-5 describes: for each
// of the H remaining hypercube points, fold every table's current pair with
// the arithmetic-sequence trick (value at t=0 and t=1 computed directly,
// then stepped by a constant addition for t=2..d), multiply out each
// product, and reduce. The H-range is split into disjoint chunks that
// accumulate independently and are summed at the end by field addition,
// which is associative/commutative — so the result is bit-exact regardless
// of how many goroutines ran it (spec.md §5).
func computeRoundPolynomial(products []polylist.Product, tables [][]field.Element, h, d int) []field.Element {
	workers := runtime.GOMAXPROCS(0)
	if workers > h {
		workers = h
	}
	if workers < 1 {
		workers = 1
	}
	chunkSize := (h + workers - 1) / workers
	partials := make([][]field.Element, workers)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		start := w * chunkSize
		end := start + chunkSize
		if end > h {
			end = h
		}
		if start >= end {
			partials[w] = make([]field.Element, d+1)
			continue
		}
		wg.Add(1)
		go func(w, start, end int) {
			defer wg.Done()
			partials[w] = accumulateRange(products, tables, start, end, d)
		}(w, start, end)
	}
	wg.Wait()

	out := make([]field.Element, d+1)
	for _, partial := range partials {
		for t := range out {
			out[t] = out[t].Add(partial[t])
		}
	}
	return out
}

func accumulateRange(products []polylist.Product, tables [][]field.Element, start, end, d int) []field.Element {
	acc := make([]field.Element, d+1)
	cur := make([]field.Element, len(tables))
	step := make([]field.Element, len(tables))
	for i := start; i < end; i++ {
		for k, tbl := range tables {
			a := tbl[2*i]
			b := tbl[2*i+1]
			cur[k] = a
			step[k] = b.Sub(a)
		}
		for t := 0; t <= d; t++ {
			for _, p := range products {
				term := p.Coefficient
				for _, handle := range p.Handles {
					term = term.Mul(cur[handle])
				}
				acc[t] = acc[t].Add(term)
			}
			if t < d {
				for k := range cur {
					cur[k] = cur[k].Add(step[k])
				}
			}
		}
	}
	return acc
}
